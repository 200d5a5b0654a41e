package wrath

import "math"

// ProbabilityResult describes the odds of a test before rolling.
type ProbabilityResult struct {
	DicePool      int     `json:"dicePool"`
	Difficulty    int     `json:"difficulty"`
	WrathDice     int     `json:"wrathDice"`
	Success       float64 `json:"success"`
	ExpectedIcons float64 `json:"expectedIcons"`
	Complication  float64 `json:"complication"`
	Glory         float64 `json:"glory"`
	// IconDistribution[k] is the probability of exactly k icons.
	IconDistribution []float64 `json:"iconDistribution"`
}

// Probability computes the exact odds of a test. Each die is an icon with
// probability 1/2; complication and glory are the odds of at least one 1 or
// one 6 on the Wrath dice.
func Probability(pool, dn, wrathDice int) (ProbabilityResult, error) {
	if err := Validate(pool, dn, wrathDice); err != nil {
		return ProbabilityResult{}, err
	}
	n := pool + wrathDice

	// dist[k] after i dice is P(k icons among i dice).
	dist := make([]float64, n+1)
	dist[0] = 1
	for i := 1; i <= n; i++ {
		for k := i; k >= 1; k-- {
			dist[k] = (dist[k] + dist[k-1]) / 2
		}
		dist[0] /= 2
	}

	success := 0.0
	for k := dn; k <= n; k++ {
		success += dist[k]
	}
	if success > 1 {
		success = 1
	}
	none := math.Pow(5.0/6.0, float64(wrathDice))

	return ProbabilityResult{
		DicePool:         pool,
		Difficulty:       dn,
		WrathDice:        wrathDice,
		Success:          success,
		ExpectedIcons:    float64(n) / 2,
		Complication:     1 - none,
		Glory:            1 - none,
		IconDistribution: dist,
	}, nil
}
