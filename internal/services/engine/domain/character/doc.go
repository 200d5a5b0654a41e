// Package character assembles characters and creatures from catalog
// templates and purchase decisions, and keeps the XP ledger that pays for
// them.
//
// Assembly only emits property nodes. Values are never stored on the
// character: stats are recomputed from its graph by the compute package.
package character
