package dice

import "math/rand"

// RollDice rolls every spec in request with a generator seeded from
// request.Seed, so the same request always yields the same Result.
//
// Rolls appear in the order of request.Dice. A spec with Count 0 yields an
// empty Roll, which is how an empty dice pool is represented.
func RollDice(request Request) (Result, error) {
	if len(request.Dice) == 0 {
		return Result{}, ErrMissingDice
	}
	return RollWithSource(rand.New(rand.NewSource(request.Seed)), request.Dice)
}

// RollWithSource rolls specs using src.
func RollWithSource(src Source, specs []Spec) (Result, error) {
	if len(specs) == 0 {
		return Result{}, ErrMissingDice
	}

	rolls := make([]Roll, 0, len(specs))
	total := 0
	for _, spec := range specs {
		roll, err := rollSpec(src, spec)
		if err != nil {
			return Result{}, err
		}
		rolls = append(rolls, roll)
		total += roll.Total
	}

	return Result{Rolls: rolls, Total: total}, nil
}

// Pool rolls count d6 from src.
func Pool(src Source, count int) ([]int, error) {
	roll, err := rollSpec(src, Spec{Sides: D6, Count: count})
	if err != nil {
		return nil, err
	}
	return roll.Results, nil
}

func rollSpec(src Source, spec Spec) (Roll, error) {
	if spec.Sides <= 0 || spec.Count < 0 {
		return Roll{}, ErrInvalidDiceSpec
	}
	results := make([]int, spec.Count)
	total := 0
	for i := range results {
		value := rollDie(src, spec.Sides)
		results[i] = value
		total += value
	}
	return Roll{Sides: spec.Sides, Results: results, Total: total}, nil
}

// rollDie rolls a single die with the provided number of sides.
func rollDie(src Source, sides int) int {
	return src.Intn(sides) + 1
}
