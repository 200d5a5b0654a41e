// Package dice rolls pools of uniform dice from an injectable random source.
package dice

import "errors"

var (
	// ErrMissingDice indicates that a request named no dice at all.
	ErrMissingDice = errors.New("at least one die spec is required")
	// ErrInvalidDiceSpec indicates a spec with non-positive sides or a negative count.
	ErrInvalidDiceSpec = errors.New("dice spec must have positive sides and non-negative count")
	// ErrSequenceExhausted indicates a fixed Sequence ran out of faces.
	ErrSequenceExhausted = errors.New("dice sequence exhausted")
	// ErrFaceOutOfRange indicates a face that cannot appear on the die being rolled.
	ErrFaceOutOfRange = errors.New("die face out of range")
)

// D6 is the die used by every pool in the Wrath & Glory rules.
const D6 = 6

// Source yields uniformly distributed integers in [0, n).
//
// *math/rand.Rand satisfies Source.
type Source interface {
	Intn(n int) int
}

// Spec describes Count dice with Sides faces each.
type Spec struct {
	Sides int
	Count int
}

// Roll holds the faces rolled for one Spec.
type Roll struct {
	Sides   int
	Results []int
	Total   int
}

// Result holds every Roll of a request, in Spec order.
type Result struct {
	Rolls []Roll
	Total int
}

// Request is a seeded roll of one or more specs.
type Request struct {
	Dice []Spec
	Seed int64
}
