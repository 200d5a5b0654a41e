package wrath

import (
	"errors"
	"fmt"

	"github.com/louisbranch/wrathforge/internal/core/check"
	"github.com/louisbranch/wrathforge/internal/core/dice"
)

var (
	// ErrInvalidDicePool indicates a negative pool size.
	ErrInvalidDicePool = errors.New("dice pool must be non-negative")
	// ErrInvalidDifficulty indicates a negative difficulty number.
	ErrInvalidDifficulty = errors.New("difficulty must be non-negative")
	// ErrInvalidWrathDice indicates a negative Wrath dice count.
	ErrInvalidWrathDice = errors.New("wrath dice must be non-negative")
)

// Face thresholds.
const (
	IconFace         = 4
	ExaltedFace      = 6
	ComplicationFace = 1
	GloryFace        = 6
)

// DefaultWrathDice is the number of Wrath dice in a standard test.
const DefaultWrathDice = 1

// TestResult is the classified outcome of one test.
type TestResult struct {
	DicePool      int   `json:"dicePool"`
	Difficulty    int   `json:"difficulty"`
	PoolDice      []int `json:"poolDice"`
	WrathDice     []int `json:"wrathDice"`
	Icons         int   `json:"icons"`
	ExaltedIcons  int   `json:"exaltedIcons"`
	Success       bool  `json:"success"`
	Shift         int   `json:"shift"`
	Complications int   `json:"complications"`
	Glory         int   `json:"glory"`
}

// Validate checks the inputs of a test.
func Validate(pool, dn, wrathDice int) error {
	if pool < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDicePool, pool)
	}
	if dn < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDifficulty, dn)
	}
	if wrathDice < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWrathDice, wrathDice)
	}
	return nil
}

// PerformTest rolls pool dice followed by wrathDice Wrath dice from src and
// resolves them against dn. A dn of zero is valid and always succeeds.
func PerformTest(src dice.Source, pool, dn, wrathDice int) (TestResult, error) {
	if err := Validate(pool, dn, wrathDice); err != nil {
		return TestResult{}, err
	}
	result, err := dice.RollWithSource(src, []dice.Spec{
		{Sides: dice.D6, Count: pool},
		{Sides: dice.D6, Count: wrathDice},
	})
	if err != nil {
		return TestResult{}, err
	}
	return Resolve(result.Rolls[0].Results, result.Rolls[1].Results, dn)
}

// Resolve classifies known pool and Wrath faces against dn.
func Resolve(poolFaces, wrathFaces []int, dn int) (TestResult, error) {
	if dn < 0 {
		return TestResult{}, fmt.Errorf("%w: %d", ErrInvalidDifficulty, dn)
	}
	for _, face := range append(append([]int(nil), poolFaces...), wrathFaces...) {
		if face < 1 || face > dice.D6 {
			return TestResult{}, fmt.Errorf("%w: %d on d%d", dice.ErrFaceOutOfRange, face, dice.D6)
		}
	}

	r := TestResult{
		DicePool:   len(poolFaces),
		Difficulty: dn,
		PoolDice:   append([]int{}, poolFaces...),
		WrathDice:  append([]int{}, wrathFaces...),
	}
	count := func(face int) {
		if face >= IconFace {
			r.Icons++
		}
		if face == ExaltedFace {
			r.ExaltedIcons++
		}
	}
	for _, face := range poolFaces {
		count(face)
	}
	for _, face := range wrathFaces {
		count(face)
		switch face {
		case ComplicationFace:
			r.Complications++
		case GloryFace:
			r.Glory++
		}
	}

	outcome := check.Check(r.Icons, dn)
	r.Success = outcome.Success
	r.Shift = outcome.Shift
	return r, nil
}

// DicePool is attribute + skill + bonus dice. No cap is applied.
func DicePool(attribute, skill, bonus int) int {
	return attribute + skill + bonus
}

// AttributeModifier is floor(value/2).
func AttributeModifier(value int) int {
	if value < 0 {
		return -((-value + 1) / 2)
	}
	return value / 2
}
