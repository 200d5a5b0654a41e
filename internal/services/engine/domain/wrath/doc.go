// Package wrath resolves dice tests: a pool of d6 plus Wrath dice compared
// against a difficulty number (DN).
//
// Every die showing 4 or more is an icon; a 6 is also an exalted icon but
// still counts once. A test succeeds when icons reach the DN, and the excess
// is the shift. On Wrath dice only, a 1 is a complication and a 6 is glory,
// whatever the test outcome.
//
// Rolling is separated from classification: Resolve classifies known faces
// and PerformTest rolls faces from a dice.Source before resolving them, so
// tests and replays can fix every face.
package wrath
