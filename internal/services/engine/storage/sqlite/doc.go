// Package sqlite provides SQLite-backed engine persistence.
//
// Characters are stored as JSON documents next to a few indexed columns;
// rolls are append-only and listed newest first.
package sqlite
