package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/wrathforge/internal/services/engine/domain/ability"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/wrath"
	"github.com/louisbranch/wrathforge/internal/services/engine/service"
)

// TestPerformInput represents the MCP tool input for a test. The pool comes
// from dice_pool when given, otherwise from the character's skill or
// attribute.
type TestPerformInput struct {
	CharacterID    string   `json:"character_id,omitempty" jsonschema:"character whose sheet builds the pool and whose log records the roll"`
	DicePool       *int     `json:"dice_pool,omitempty" jsonschema:"explicit base pool, overriding the sheet, at most 100"`
	Skill          string   `json:"skill,omitempty" jsonschema:"skill tested, read from the character"`
	Attribute      string   `json:"attribute,omitempty" jsonschema:"attribute tested when no skill is named"`
	Abilities      []string `json:"abilities,omitempty" jsonschema:"ability ids to check instead of the character's own"`
	Rank           int      `json:"rank,omitempty" jsonschema:"rank for rank-scaled abilities"`
	Keywords       []string `json:"keywords,omitempty" jsonschema:"keywords of the tester"`
	Threat         string   `json:"threat,omitempty" jsonschema:"threat rating adding bonus dice"`
	BonusDice      int      `json:"bonus_dice,omitempty" jsonschema:"flat bonus dice, may be negative"`
	WrathDice      *int     `json:"wrath_dice,omitempty" jsonschema:"number of wrath dice, defaults to 1"`
	TargetKeywords []string `json:"target_keywords,omitempty" jsonschema:"keywords of the target"`
	TargetType     string   `json:"target_type,omitempty" jsonschema:"kind of target"`
	DamageType     string   `json:"damage_type,omitempty" jsonschema:"damage type of the attack"`
	Situation      string   `json:"situation,omitempty" jsonschema:"situation tag such as charging or fear"`
	AlliesEngaged  int      `json:"allies_engaged,omitempty" jsonschema:"allies engaged with the target"`
	Difficulty     int      `json:"difficulty" jsonschema:"difficulty number (DN)"`
	Seed           *int64   `json:"seed,omitempty" jsonschema:"optional seed for a deterministic roll"`
	Locale         string   `json:"locale,omitempty" jsonschema:"optional locale for names and error messages"`
}

// OpposedSideInput is one participant of an opposed test.
type OpposedSideInput struct {
	CharacterID    string   `json:"character_id,omitempty" jsonschema:"character whose sheet builds the pool"`
	DicePool       *int     `json:"dice_pool,omitempty" jsonschema:"explicit base pool, overriding the sheet, at most 100"`
	Skill          string   `json:"skill,omitempty" jsonschema:"skill tested"`
	Attribute      string   `json:"attribute,omitempty" jsonschema:"attribute tested when no skill is named"`
	Abilities      []string `json:"abilities,omitempty" jsonschema:"ability ids to check"`
	Rank           int      `json:"rank,omitempty" jsonschema:"rank for rank-scaled abilities"`
	Keywords       []string `json:"keywords,omitempty" jsonschema:"keywords of this side"`
	Threat         string   `json:"threat,omitempty" jsonschema:"threat rating adding bonus dice"`
	BonusDice      int      `json:"bonus_dice,omitempty" jsonschema:"flat bonus dice"`
	WrathDice      *int     `json:"wrath_dice,omitempty" jsonschema:"number of wrath dice, defaults to 1"`
	TargetKeywords []string `json:"target_keywords,omitempty" jsonschema:"keywords of the opponent"`
	TargetType     string   `json:"target_type,omitempty" jsonschema:"kind of opponent"`
	DamageType     string   `json:"damage_type,omitempty" jsonschema:"damage type"`
	Situation      string   `json:"situation,omitempty" jsonschema:"situation tag"`
	AlliesEngaged  int      `json:"allies_engaged,omitempty" jsonschema:"allies engaged with the opponent"`
}

// TestOpposedInput represents the MCP tool input for an opposed test.
type TestOpposedInput struct {
	Attacker OpposedSideInput `json:"attacker" jsonschema:"attacking side"`
	Defender OpposedSideInput `json:"defender" jsonschema:"defending side"`
	Seed     *int64           `json:"seed,omitempty" jsonschema:"optional seed for a deterministic roll"`
	Locale   string           `json:"locale,omitempty" jsonschema:"optional locale for error messages"`
}

// TestResultView is the outcome of rolling one pool.
type TestResultView struct {
	DicePool      int   `json:"dice_pool" jsonschema:"dice rolled"`
	Difficulty    int   `json:"difficulty" jsonschema:"difficulty number"`
	PoolDice      []int `json:"pool_dice" jsonschema:"faces of the regular dice"`
	WrathDice     []int `json:"wrath_dice" jsonschema:"faces of the wrath dice"`
	Icons         int   `json:"icons" jsonschema:"total icons"`
	ExaltedIcons  int   `json:"exalted_icons" jsonschema:"sixes rolled"`
	Success       bool  `json:"success" jsonschema:"whether icons met the difficulty"`
	Shift         int   `json:"shift" jsonschema:"icons beyond the difficulty number"`
	Complications int   `json:"complications" jsonschema:"wrath dice showing 1"`
	Glory         int   `json:"glory" jsonschema:"wrath dice showing 6"`
}

// PoolView itemizes a dice pool.
type PoolView struct {
	Base        int  `json:"base" jsonschema:"base pool"`
	AbilityDice int  `json:"ability_dice" jsonschema:"dice added by abilities"`
	ThreatDice  int  `json:"threat_dice" jsonschema:"dice added by threat rating"`
	BonusDice   int  `json:"bonus_dice" jsonschema:"flat bonus dice"`
	Total       int  `json:"total" jsonschema:"dice rolled"`
	WrathDice   int  `json:"wrath_dice" jsonschema:"wrath dice rolled"`
	SkillRanks  int  `json:"skill_ranks,omitempty" jsonschema:"skill ranks from the sheet"`
	Attribute   int  `json:"attribute,omitempty" jsonschema:"attribute value from the sheet"`
	FromSheet   bool `json:"from_sheet" jsonschema:"whether the base came from the sheet"`
}

// AbilityView is the combined effect of the abilities that applied.
type AbilityView struct {
	Applied        bool     `json:"applied" jsonschema:"whether any ability applied"`
	Abilities      []string `json:"abilities" jsonschema:"abilities that applied"`
	BonusDice      int      `json:"bonus_dice" jsonschema:"bonus dice granted"`
	RerollType     string   `json:"reroll_type,omitempty" jsonschema:"reroll granted"`
	RerollCount    int      `json:"reroll_count,omitempty" jsonschema:"dice that may be rerolled"`
	AutoIcons      int      `json:"auto_icons,omitempty" jsonschema:"icons granted without rolling"`
	SpecialEffects []string `json:"special_effects" jsonschema:"effects to narrate"`
	Warnings       []string `json:"warnings" jsonschema:"abilities that could not be evaluated"`
}

// ExplainView is one step of a test's resolution.
type ExplainView struct {
	Code    string         `json:"code" jsonschema:"stable step identifier"`
	Message string         `json:"message" jsonschema:"step description"`
	Data    map[string]any `json:"data,omitempty" jsonschema:"step values"`
}

// TestPerformResult represents the MCP tool output for a test.
type TestPerformResult struct {
	Result         TestResultView `json:"result" jsonschema:"roll outcome"`
	DifficultyName string         `json:"difficulty_name" jsonschema:"localized difficulty name"`
	Pool           PoolView       `json:"pool" jsonschema:"pool breakdown"`
	Abilities      AbilityView    `json:"abilities" jsonschema:"abilities that applied"`
	Explain        []ExplainView  `json:"explain" jsonschema:"resolution steps"`
	SeedUsed       int64          `json:"seed_used" jsonschema:"seed the roll used"`
	SeedSource     string         `json:"seed_source" jsonschema:"CLIENT or SERVER"`
	RollID         string         `json:"roll_id,omitempty" jsonschema:"roll log entry, when logged"`
}

// TestOpposedResult represents the MCP tool output for an opposed test.
type TestOpposedResult struct {
	Attacker          TestResultView `json:"attacker" jsonschema:"attacker's roll"`
	Defender          TestResultView `json:"defender" jsonschema:"defender's roll"`
	Winner            string         `json:"winner" jsonschema:"attacker, defender or tie"`
	Margin            int            `json:"margin" jsonschema:"icon difference"`
	AttackerPool      PoolView       `json:"attacker_pool" jsonschema:"attacker's pool"`
	DefenderPool      PoolView       `json:"defender_pool" jsonschema:"defender's pool"`
	AttackerAbilities AbilityView    `json:"attacker_abilities" jsonschema:"attacker's abilities"`
	DefenderAbilities AbilityView    `json:"defender_abilities" jsonschema:"defender's abilities"`
	SeedUsed          int64          `json:"seed_used" jsonschema:"seed the roll used"`
	SeedSource        string         `json:"seed_source" jsonschema:"CLIENT or SERVER"`
	RollID            string         `json:"roll_id,omitempty" jsonschema:"roll log entry, when logged"`
}

// TestProbabilityInput represents the MCP tool input for test odds.
type TestProbabilityInput struct {
	DicePool   int    `json:"dice_pool" jsonschema:"dice in the pool"`
	Difficulty int    `json:"difficulty" jsonschema:"difficulty number (DN)"`
	WrathDice  *int   `json:"wrath_dice,omitempty" jsonschema:"number of wrath dice, defaults to 1"`
	Locale     string `json:"locale,omitempty" jsonschema:"optional locale for names and error messages"`
}

// TestProbabilityResult represents the MCP tool output for test odds.
type TestProbabilityResult struct {
	DicePool         int       `json:"dice_pool" jsonschema:"dice in the pool"`
	Difficulty       int       `json:"difficulty" jsonschema:"difficulty number"`
	DifficultyName   string    `json:"difficulty_name" jsonschema:"localized difficulty name"`
	WrathDice        int       `json:"wrath_dice" jsonschema:"wrath dice in the pool"`
	Success          float64   `json:"success" jsonschema:"probability of success"`
	ExpectedIcons    float64   `json:"expected_icons" jsonschema:"mean icons"`
	Complication     float64   `json:"complication" jsonschema:"probability of at least one complication"`
	Glory            float64   `json:"glory" jsonschema:"probability of at least one glory"`
	IconDistribution []float64 `json:"icon_distribution" jsonschema:"probability of exactly k icons, by k"`
}

// AbilityApplyInput represents the MCP tool input for evaluating abilities.
type AbilityApplyInput struct {
	CharacterID    string   `json:"character_id,omitempty" jsonschema:"character whose abilities, rank and keywords are used"`
	Abilities      []string `json:"abilities,omitempty" jsonschema:"ability ids, overriding the character's"`
	Rank           int      `json:"rank,omitempty" jsonschema:"rank for rank-scaled abilities"`
	Keywords       []string `json:"keywords,omitempty" jsonschema:"keywords of the tester"`
	Skill          string   `json:"skill,omitempty" jsonschema:"skill being tested"`
	Attribute      string   `json:"attribute,omitempty" jsonschema:"attribute being tested"`
	TargetKeywords []string `json:"target_keywords,omitempty" jsonschema:"keywords of the target"`
	TargetType     string   `json:"target_type,omitempty" jsonschema:"kind of target"`
	DamageType     string   `json:"damage_type,omitempty" jsonschema:"damage type"`
	Situation      string   `json:"situation,omitempty" jsonschema:"situation tag"`
	AlliesEngaged  int      `json:"allies_engaged,omitempty" jsonschema:"allies engaged with the target"`
	Locale         string   `json:"locale,omitempty" jsonschema:"optional locale for error messages"`
}

// AbilityApplyResult represents the MCP tool output for evaluated
// abilities.
type AbilityApplyResult struct {
	Effect AbilityView `json:"effect" jsonschema:"combined effect of the abilities that applied"`
	Rank   int         `json:"rank" jsonschema:"rank used for scaling"`
}

// TestPerformTool defines the MCP tool schema for tests.
func TestPerformTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "test_perform",
		Description: "Rolls a Wrath & Glory test against a difficulty number",
	}
}

// TestOpposedTool defines the MCP tool schema for opposed tests.
func TestOpposedTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "test_opposed",
		Description: "Rolls an opposed test and compares the icons of both sides",
	}
}

// TestProbabilityTool defines the MCP tool schema for test odds.
func TestProbabilityTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "test_probability",
		Description: "Computes the exact odds of a test without rolling",
	}
}

// AbilityApplyTool defines the MCP tool schema for evaluating abilities.
func AbilityApplyTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ability_apply",
		Description: "Evaluates which abilities apply to a test and their combined effect",
	}
}

// TestPerformHandler executes a test.
func TestPerformHandler(engine Engine) mcp.ToolHandlerFor[TestPerformInput, TestPerformResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TestPerformInput) (*mcp.CallToolResult, TestPerformResult, error) {
		callCtx, cancel, meta, err := begin(ctx, input.Locale)
		if err != nil {
			return nil, TestPerformResult{}, err
		}
		defer cancel()

		req := service.TestRequest{
			TestSide: service.TestSide{
				CharacterID: input.CharacterID,
				DicePool:    input.DicePool,
				Skill:       input.Skill,
				Attribute:   input.Attribute,
				Abilities:   input.Abilities,
				Rank:        input.Rank,
				Keywords:    input.Keywords,
				Threat:      input.Threat,
				BonusDice:   input.BonusDice,
				WrathDice:   input.WrathDice,
			},
			Circumstances: service.Circumstances{
				TargetKeywords: input.TargetKeywords,
				TargetType:     input.TargetType,
				DamageType:     input.DamageType,
				Situation:      input.Situation,
				AlliesEngaged:  input.AlliesEngaged,
			},
			Difficulty: input.Difficulty,
			Seed:       input.Seed,
			Locale:     input.Locale,
		}
		if err := req.CheckInputLimits(); err != nil {
			return nil, TestPerformResult{}, toolError("test", err, input.Locale)
		}
		resp, err := engine.PerformTest(callCtx, req)
		if err != nil {
			return nil, TestPerformResult{}, toolError("test", err, input.Locale)
		}

		result := TestPerformResult{
			Result:         testResultView(resp.Result),
			DifficultyName: resp.DifficultyName,
			Pool:           poolView(resp.Pool),
			Abilities:      abilityView(resp.Abilities),
			Explain:        make([]ExplainView, 0, len(resp.Explain)),
			SeedUsed:       resp.SeedUsed,
			SeedSource:     string(resp.SeedSource),
			RollID:         resp.RollID,
		}
		for _, step := range resp.Explain {
			result.Explain = append(result.Explain, ExplainView{Code: step.Code, Message: step.Message, Data: step.Data})
		}
		return CallToolResultWithMetadata(meta), result, nil
	}
}

// TestOpposedHandler executes an opposed test.
func TestOpposedHandler(engine Engine) mcp.ToolHandlerFor[TestOpposedInput, TestOpposedResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TestOpposedInput) (*mcp.CallToolResult, TestOpposedResult, error) {
		callCtx, cancel, meta, err := begin(ctx, input.Locale)
		if err != nil {
			return nil, TestOpposedResult{}, err
		}
		defer cancel()

		req := service.OpposedRequest{
			Attacker: input.Attacker.toService(),
			Defender: input.Defender.toService(),
			Seed:     input.Seed,
		}
		if err := req.CheckInputLimits(); err != nil {
			return nil, TestOpposedResult{}, toolError("opposed test", err, input.Locale)
		}
		resp, err := engine.OpposedTest(callCtx, req)
		if err != nil {
			return nil, TestOpposedResult{}, toolError("opposed test", err, input.Locale)
		}
		return CallToolResultWithMetadata(meta), TestOpposedResult{
			Attacker:          testResultView(resp.Result.Attacker),
			Defender:          testResultView(resp.Result.Defender),
			Winner:            string(resp.Result.Winner),
			Margin:            resp.Result.Margin,
			AttackerPool:      poolView(resp.AttackerPool),
			DefenderPool:      poolView(resp.DefenderPool),
			AttackerAbilities: abilityView(resp.AttackerAbilities),
			DefenderAbilities: abilityView(resp.DefenderAbilities),
			SeedUsed:          resp.SeedUsed,
			SeedSource:        string(resp.SeedSource),
			RollID:            resp.RollID,
		}, nil
	}
}

// TestProbabilityHandler executes an odds computation.
func TestProbabilityHandler(engine Engine) mcp.ToolHandlerFor[TestProbabilityInput, TestProbabilityResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TestProbabilityInput) (*mcp.CallToolResult, TestProbabilityResult, error) {
		callCtx, cancel, meta, err := begin(ctx, input.Locale)
		if err != nil {
			return nil, TestProbabilityResult{}, err
		}
		defer cancel()

		req := service.ProbabilityRequest{
			DicePool:   input.DicePool,
			Difficulty: input.Difficulty,
			WrathDice:  input.WrathDice,
			Locale:     input.Locale,
		}
		if err := req.CheckInputLimits(); err != nil {
			return nil, TestProbabilityResult{}, toolError("probability", err, input.Locale)
		}
		resp, err := engine.Probability(callCtx, req)
		if err != nil {
			return nil, TestProbabilityResult{}, toolError("probability", err, input.Locale)
		}
		distribution := resp.IconDistribution
		if distribution == nil {
			distribution = []float64{}
		}
		return CallToolResultWithMetadata(meta), TestProbabilityResult{
			DicePool:         resp.DicePool,
			Difficulty:       resp.Difficulty,
			DifficultyName:   resp.DifficultyName,
			WrathDice:        resp.WrathDice,
			Success:          resp.Success,
			ExpectedIcons:    resp.ExpectedIcons,
			Complication:     resp.Complication,
			Glory:            resp.Glory,
			IconDistribution: distribution,
		}, nil
	}
}

// AbilityApplyHandler executes an ability evaluation.
func AbilityApplyHandler(engine Engine) mcp.ToolHandlerFor[AbilityApplyInput, AbilityApplyResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AbilityApplyInput) (*mcp.CallToolResult, AbilityApplyResult, error) {
		callCtx, cancel, meta, err := begin(ctx, input.Locale)
		if err != nil {
			return nil, AbilityApplyResult{}, err
		}
		defer cancel()

		resp, err := engine.ApplyAbilities(callCtx, service.ApplyAbilitiesRequest{
			CharacterID: input.CharacterID,
			Abilities:   input.Abilities,
			Rank:        input.Rank,
			Keywords:    input.Keywords,
			Skill:       input.Skill,
			Attribute:   input.Attribute,
			Circumstances: service.Circumstances{
				TargetKeywords: input.TargetKeywords,
				TargetType:     input.TargetType,
				DamageType:     input.DamageType,
				Situation:      input.Situation,
				AlliesEngaged:  input.AlliesEngaged,
			},
		})
		if err != nil {
			return nil, AbilityApplyResult{}, toolError("ability apply", err, input.Locale)
		}
		return CallToolResultWithMetadata(meta), AbilityApplyResult{Effect: abilityView(resp.Result), Rank: resp.Rank}, nil
	}
}

func (in OpposedSideInput) toService() service.OpposedSide {
	return service.OpposedSide{
		TestSide: service.TestSide{
			CharacterID: in.CharacterID,
			DicePool:    in.DicePool,
			Skill:       in.Skill,
			Attribute:   in.Attribute,
			Abilities:   in.Abilities,
			Rank:        in.Rank,
			Keywords:    in.Keywords,
			Threat:      in.Threat,
			BonusDice:   in.BonusDice,
			WrathDice:   in.WrathDice,
		},
		Circumstances: service.Circumstances{
			TargetKeywords: in.TargetKeywords,
			TargetType:     in.TargetType,
			DamageType:     in.DamageType,
			Situation:      in.Situation,
			AlliesEngaged:  in.AlliesEngaged,
		},
	}
}

func testResultView(r wrath.TestResult) TestResultView {
	return TestResultView{
		DicePool:      r.DicePool,
		Difficulty:    r.Difficulty,
		PoolDice:      nonNilInts(r.PoolDice),
		WrathDice:     nonNilInts(r.WrathDice),
		Icons:         r.Icons,
		ExaltedIcons:  r.ExaltedIcons,
		Success:       r.Success,
		Shift:         r.Shift,
		Complications: r.Complications,
		Glory:         r.Glory,
	}
}

func poolView(p service.PoolBreakdown) PoolView {
	return PoolView{
		Base:        p.Base,
		AbilityDice: p.AbilityDice,
		ThreatDice:  p.ThreatDice,
		BonusDice:   p.BonusDice,
		Total:       p.Total,
		WrathDice:   p.WrathDice,
		SkillRanks:  p.SkillRanks,
		Attribute:   p.Attribute,
		FromSheet:   p.FromSheet,
	}
}

func abilityView(r ability.Result) AbilityView {
	return AbilityView{
		Applied:        r.Applied,
		Abilities:      nonNilStrings(r.Abilities),
		BonusDice:      r.BonusDice,
		RerollType:     r.RerollType,
		RerollCount:    r.RerollCount,
		AutoIcons:      r.AutoIcons,
		SpecialEffects: nonNilStrings(r.SpecialEffects),
		Warnings:       nonNilStrings(r.Warnings),
	}
}
