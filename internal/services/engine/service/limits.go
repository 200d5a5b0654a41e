package service

import (
	"fmt"
	"strconv"

	apperrors "github.com/louisbranch/wrathforge/internal/platform/errors"
)

// Input limits applied by the gRPC and MCP surfaces before a test reaches
// the service. The service and the dice engine accept any pool size.
const (
	MaxInputDicePool  = 100
	MaxInputWrathDice = 20
)

// CheckInputLimits rejects explicit pools, bonus dice and Wrath dice above
// the transport limits.
func (s TestSide) CheckInputLimits() error {
	if s.DicePool != nil {
		if err := checkPool(*s.DicePool); err != nil {
			return err
		}
	}
	if err := checkPool(s.BonusDice); err != nil {
		return err
	}
	if s.WrathDice != nil {
		return checkWrath(*s.WrathDice)
	}
	return nil
}

// CheckInputLimits checks both sides of an opposed test.
func (r OpposedRequest) CheckInputLimits() error {
	if err := r.Attacker.CheckInputLimits(); err != nil {
		return err
	}
	return r.Defender.CheckInputLimits()
}

// CheckInputLimits checks the pool and Wrath dice of an odds request.
func (r ProbabilityRequest) CheckInputLimits() error {
	if err := checkPool(r.DicePool); err != nil {
		return err
	}
	if r.WrathDice != nil {
		return checkWrath(*r.WrathDice)
	}
	return nil
}

func checkPool(n int) error {
	if n <= MaxInputDicePool {
		return nil
	}
	return apperrors.WithMetadata(apperrors.CodeDicePoolTooLarge,
		fmt.Sprintf("dice pool %d exceeds %d", n, MaxInputDicePool),
		map[string]string{"Max": strconv.Itoa(MaxInputDicePool)})
}

func checkWrath(n int) error {
	if n <= MaxInputWrathDice {
		return nil
	}
	return apperrors.WithMetadata(apperrors.CodeDiceWrathTooLarge,
		fmt.Sprintf("%d wrath dice exceeds %d", n, MaxInputWrathDice),
		map[string]string{"Max": strconv.Itoa(MaxInputWrathDice)})
}
