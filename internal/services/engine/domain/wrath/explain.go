package wrath

// Explain step codes.
const (
	StepRollPool     = "ROLL_POOL"
	StepRollWrath    = "ROLL_WRATH"
	StepCountIcons   = "COUNT_ICONS"
	StepCompareDN    = "COMPARE_DN"
	StepWrathOutcome = "WRATH_OUTCOME"
)

// ExplainStep is one deterministic step of a test resolution.
type ExplainStep struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Explain returns the steps that produced result, in order.
func Explain(result TestResult) []ExplainStep {
	return []ExplainStep{
		{
			Code:    StepRollPool,
			Message: "Roll the dice pool",
			Data: map[string]any{
				"dice_pool": result.DicePool,
				"faces":     result.PoolDice,
			},
		},
		{
			Code:    StepRollWrath,
			Message: "Roll the Wrath dice",
			Data: map[string]any{
				"wrath_dice": len(result.WrathDice),
				"faces":      result.WrathDice,
			},
		},
		{
			Code:    StepCountIcons,
			Message: "Count dice showing 4 or more as icons",
			Data: map[string]any{
				"icons":         result.Icons,
				"exalted_icons": result.ExaltedIcons,
			},
		},
		{
			Code:    StepCompareDN,
			Message: "Compare icons to the difficulty number",
			Data: map[string]any{
				"icons":      result.Icons,
				"difficulty": result.Difficulty,
				"success":    result.Success,
				"shift":      result.Shift,
			},
		},
		{
			Code:    StepWrathOutcome,
			Message: "Check Wrath dice for complications and glory",
			Data: map[string]any{
				"complications": result.Complications,
				"glory":         result.Glory,
			},
		},
	}
}
