// Package check compares success counts against difficulty numbers.
package check

// MeetsDifficulty reports whether icons reach difficulty. A difficulty of
// zero is always met.
func MeetsDifficulty(icons, difficulty int) bool {
	return icons >= difficulty
}

// Margin is icons minus difficulty; negative on failure.
func Margin(icons, difficulty int) int {
	return icons - difficulty
}

// Shift is the number of icons beyond the difficulty available to spend on
// extra effects. It is zero whenever the check fails.
func Shift(icons, difficulty int) int {
	if !MeetsDifficulty(icons, difficulty) {
		return 0
	}
	return Margin(icons, difficulty)
}

// Result represents the outcome of a difficulty check.
type Result struct {
	Success bool
	Margin  int
	Shift   int
}

// Check performs a difficulty check and returns the result.
func Check(icons, difficulty int) Result {
	return Result{
		Success: MeetsDifficulty(icons, difficulty),
		Margin:  Margin(icons, difficulty),
		Shift:   Shift(icons, difficulty),
	}
}

// Compare orders two icon totals: 1 when a is higher, -1 when b is higher,
// 0 on a tie. The second value is the absolute difference.
func Compare(a, b int) (int, int) {
	switch {
	case a > b:
		return 1, a - b
	case b > a:
		return -1, b - a
	default:
		return 0, 0
	}
}
