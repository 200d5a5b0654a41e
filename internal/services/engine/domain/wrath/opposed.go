package wrath

import (
	"github.com/louisbranch/wrathforge/internal/core/check"
	"github.com/louisbranch/wrathforge/internal/core/dice"
)

// Winner names the side that won an opposed test.
type Winner string

const (
	WinnerAttacker Winner = "attacker"
	WinnerDefender Winner = "defender"
	WinnerTie      Winner = "tie"
)

// Side is one participant of an opposed test.
type Side struct {
	DicePool  int `json:"dicePool"`
	WrathDice int `json:"wrathDice"`
}

// OpposedResult compares the icons of two tests rolled at DN 0.
type OpposedResult struct {
	Attacker TestResult `json:"attacker"`
	Defender TestResult `json:"defender"`
	Winner   Winner     `json:"winner"`
	Margin   int        `json:"margin"`
}

// OpposedTest rolls the attacker then the defender from src, both at DN 0,
// and compares their icons. Equal icons are a tie with margin 0.
func OpposedTest(src dice.Source, attacker, defender Side) (OpposedResult, error) {
	a, err := PerformTest(src, attacker.DicePool, 0, attacker.WrathDice)
	if err != nil {
		return OpposedResult{}, err
	}
	d, err := PerformTest(src, defender.DicePool, 0, defender.WrathDice)
	if err != nil {
		return OpposedResult{}, err
	}
	return Compare(a, d), nil
}

// Compare decides an opposed test from two resolved results.
func Compare(attacker, defender TestResult) OpposedResult {
	order, margin := check.Compare(attacker.Icons, defender.Icons)
	winner := WinnerTie
	switch order {
	case 1:
		winner = WinnerAttacker
	case -1:
		winner = WinnerDefender
	}
	return OpposedResult{Attacker: attacker, Defender: defender, Winner: winner, Margin: margin}
}
