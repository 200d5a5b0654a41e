package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/text/language"

	apperrors "github.com/louisbranch/wrathforge/internal/platform/errors"
	"github.com/louisbranch/wrathforge/internal/random"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/ability"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/character"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/compute"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/property"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/wrath"
	"github.com/louisbranch/wrathforge/internal/services/engine/storage"
)

// TestSide is who rolls and with what. The pool is DicePool when set;
// otherwise the character's Skill total (skill ranks plus the linked
// attribute) or, without a skill, its Attribute value.
type TestSide struct {
	CharacterID string `json:"characterId,omitempty"`
	DicePool    *int   `json:"dicePool,omitempty"`
	Skill       string `json:"skill,omitempty"`
	Attribute   string `json:"attribute,omitempty"`
	// Abilities overrides the abilities granted by the character's sheet.
	Abilities []string `json:"abilities,omitempty"`
	Rank      int      `json:"rank,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
	Threat    string   `json:"threat,omitempty"`
	BonusDice int      `json:"bonusDice,omitempty"`
	WrathDice *int     `json:"wrathDice,omitempty"`
}

// Circumstances describe the target and situation abilities are checked
// against.
type Circumstances struct {
	TargetKeywords []string `json:"targetKeywords,omitempty"`
	TargetType     string   `json:"targetType,omitempty"`
	DamageType     string   `json:"damageType,omitempty"`
	Situation      string   `json:"situation,omitempty"`
	AlliesEngaged  int      `json:"alliesEngaged,omitempty"`
}

// TestRequest is a single test against a difficulty number. Seeds are
// 64-bit and travel as decimal strings in JSON.
type TestRequest struct {
	TestSide
	Circumstances
	Difficulty int    `json:"difficulty"`
	Seed       *int64 `json:"seed,omitempty,string"`
	Locale     string `json:"locale,omitempty"`
}

// PoolBreakdown itemizes a dice pool.
type PoolBreakdown struct {
	Base        int  `json:"base"`
	AbilityDice int  `json:"abilityDice"`
	ThreatDice  int  `json:"threatDice"`
	BonusDice   int  `json:"bonusDice"`
	Total       int  `json:"total"`
	WrathDice   int  `json:"wrathDice"`
	SkillRanks  int  `json:"skillRanks,omitempty"`
	Attribute   int  `json:"attribute,omitempty"`
	FromSheet   bool `json:"fromSheet"`
}

// TestResponse is a resolved test.
type TestResponse struct {
	Result         wrath.TestResult    `json:"result"`
	DifficultyName string              `json:"difficultyName"`
	Pool           PoolBreakdown       `json:"pool"`
	Abilities      ability.Result      `json:"abilities"`
	Explain        []wrath.ExplainStep `json:"explain"`
	SeedUsed       int64               `json:"seedUsed,string"`
	SeedSource     random.SeedSource   `json:"seedSource"`
	RollID         string              `json:"rollId,omitempty"`
}

// PerformTest builds the dice pool, rolls it and resolves it against the
// difficulty. Tests naming a character are appended to the roll log.
func (s *Service) PerformTest(ctx context.Context, req TestRequest) (TestResponse, error) {
	ctx, span := s.tracer.Start(ctx, "engine.PerformTest")
	defer span.End()

	resp, err := s.performTest(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return TestResponse{}, err
	}
	span.SetAttributes(
		attribute.Int("wrathforge.dice_pool", resp.Pool.Total),
		attribute.Int("wrathforge.dn", req.Difficulty),
		attribute.Int("wrathforge.wrath_dice", resp.Pool.WrathDice),
		attribute.Bool("wrathforge.success", resp.Result.Success),
		attribute.String("wrathforge.seed_source", string(resp.SeedSource)),
	)
	return resp, nil
}

func (s *Service) performTest(ctx context.Context, req TestRequest) (TestResponse, error) {
	if req.Difficulty < 0 {
		return TestResponse{}, domainError(fmt.Errorf("%w: %d", wrath.ErrInvalidDifficulty, req.Difficulty))
	}
	pool, applied, err := s.buildPool(ctx, req.TestSide, req.Circumstances)
	if err != nil {
		return TestResponse{}, err
	}
	seed, source, err := s.seedGen(req.Seed)
	if err != nil {
		return TestResponse{}, fmt.Errorf("resolve seed: %w", err)
	}
	result, err := wrath.PerformTest(rand.New(rand.NewSource(seed)), pool.Total, req.Difficulty, pool.WrathDice)
	if err != nil {
		return TestResponse{}, domainError(err)
	}

	resp := TestResponse{
		Result:         result,
		DifficultyName: wrath.LocalizedDifficultyName(localeTag(req.Locale), req.Difficulty),
		Pool:           pool,
		Abilities:      applied,
		Explain:        wrath.Explain(result),
		SeedUsed:       seed,
		SeedSource:     source,
	}
	if req.CharacterID != "" {
		rollID, err := s.logRoll(ctx, storage.Roll{
			CharacterID: req.CharacterID,
			Kind:        storage.RollTest,
			Seed:        seed,
			DicePool:    result.DicePool,
			Difficulty:  result.Difficulty,
			Success:     result.Success,
			Icons:       result.Icons,
		}, &resp)
		if err != nil {
			return TestResponse{}, err
		}
		resp.RollID = rollID
	}
	return resp, nil
}

// buildPool sums the base pool, ability bonus dice, threat bonus dice and
// flat bonus dice of one side.
func (s *Service) buildPool(ctx context.Context, side TestSide, circ Circumstances) (PoolBreakdown, ability.Result, error) {
	var (
		c      character.Character
		stats  compute.EntityStats
		loaded bool
	)
	if side.CharacterID != "" {
		var err error
		c, err = s.characters.GetCharacter(ctx, side.CharacterID)
		if err != nil {
			return PoolBreakdown{}, ability.Result{}, domainError(err)
		}
		stats, _ = c.Stats()
		loaded = true
	}

	var pool PoolBreakdown
	switch {
	case side.DicePool != nil:
		pool.Base = *side.DicePool
	case !loaded:
		return PoolBreakdown{}, ability.Result{}, apperrors.New(apperrors.CodeDiceInvalidPool, "a dice pool or a character is required")
	case side.Skill != "":
		skill, ok := property.CanonicalStat(side.Skill)
		if !ok || !property.IsSkill(skill) {
			return PoolBreakdown{}, ability.Result{}, apperrors.WithMetadata(apperrors.CodeDiceUnknownSkill,
				fmt.Sprintf("unknown skill %q", side.Skill), map[string]string{"Skill": side.Skill})
		}
		linked := stats.Attribute(property.SkillAttribute[skill])
		pool.Base = stats.Skill(skill)
		pool.Attribute = linked
		pool.SkillRanks = pool.Base - linked
		pool.FromSheet = true
	case side.Attribute != "":
		attr, ok := property.CanonicalStat(side.Attribute)
		if !ok || !property.IsAttribute(attr) {
			return PoolBreakdown{}, ability.Result{}, apperrors.WithMetadata(apperrors.CodeDiceUnknownSkill,
				fmt.Sprintf("unknown attribute %q", side.Attribute), map[string]string{"Skill": side.Attribute})
		}
		pool.Base = stats.Attribute(attr)
		pool.Attribute = pool.Base
		pool.FromSheet = true
	default:
		return PoolBreakdown{}, ability.Result{}, apperrors.New(apperrors.CodeDiceInvalidPool, "a skill or attribute is required to roll from a character")
	}
	if pool.Base < 0 {
		return PoolBreakdown{}, ability.Result{}, domainError(fmt.Errorf("%w: %d", wrath.ErrInvalidDicePool, pool.Base))
	}

	abilityIDs := side.Abilities
	if abilityIDs == nil && loaded {
		abilityIDs = c.Abilities()
	}
	if err := s.checkAbilities(abilityIDs); err != nil {
		return PoolBreakdown{}, ability.Result{}, err
	}
	actx := s.abilityContext(c, loaded, side, circ)
	applied := s.abilities.Apply(abilityIDs, actx)
	pool.AbilityDice = applied.BonusDice

	threat := c.Threat
	if side.Threat != "" {
		parsed, err := character.ParseThreat(side.Threat)
		if err != nil {
			return PoolBreakdown{}, ability.Result{}, domainError(err)
		}
		threat = parsed
	}
	pool.ThreatDice = threat.BonusDice()
	pool.BonusDice = side.BonusDice
	pool.Total = max(0, pool.Base+pool.AbilityDice+pool.ThreatDice+pool.BonusDice)

	pool.WrathDice = wrath.DefaultWrathDice
	if side.WrathDice != nil {
		if *side.WrathDice < 0 {
			return PoolBreakdown{}, ability.Result{}, domainError(fmt.Errorf("%w: %d", wrath.ErrInvalidWrathDice, *side.WrathDice))
		}
		pool.WrathDice = *side.WrathDice
	}
	return pool, applied, nil
}

func (s *Service) abilityContext(c character.Character, loaded bool, side TestSide, circ Circumstances) ability.Context {
	actx := ability.Context{
		Rank:           side.Rank,
		Keywords:       side.Keywords,
		Skill:          side.Skill,
		Attribute:      side.Attribute,
		TargetKeywords: circ.TargetKeywords,
		TargetType:     circ.TargetType,
		DamageType:     circ.DamageType,
		Situation:      circ.Situation,
		AlliesEngaged:  circ.AlliesEngaged,
	}
	if loaded {
		if actx.Rank == 0 {
			actx.Rank = c.Rank
		}
		if actx.Keywords == nil {
			actx.Keywords = c.Keywords
		}
	}
	if actx.Rank == 0 {
		actx.Rank = 1
	}
	return actx
}

func (s *Service) checkAbilities(ids []string) error {
	for _, id := range ids {
		if _, ok := s.content.Ability(id); !ok {
			return apperrors.WithMetadata(apperrors.CodeAbilityUnknown,
				fmt.Sprintf("unknown ability %q", id), map[string]string{"AbilityID": id})
		}
	}
	return nil
}

// OpposedSide is one participant of an opposed test.
type OpposedSide struct {
	TestSide
	Circumstances
}

// OpposedRequest is an opposed test. Both sides roll at DN 0.
type OpposedRequest struct {
	Attacker OpposedSide `json:"attacker"`
	Defender OpposedSide `json:"defender"`
	Seed     *int64      `json:"seed,omitempty,string"`
}

// OpposedResponse is a resolved opposed test.
type OpposedResponse struct {
	Result            wrath.OpposedResult `json:"result"`
	AttackerPool      PoolBreakdown       `json:"attackerPool"`
	DefenderPool      PoolBreakdown       `json:"defenderPool"`
	AttackerAbilities ability.Result      `json:"attackerAbilities"`
	DefenderAbilities ability.Result      `json:"defenderAbilities"`
	SeedUsed          int64               `json:"seedUsed,string"`
	SeedSource        random.SeedSource   `json:"seedSource"`
	RollID            string              `json:"rollId,omitempty"`
}

// OpposedTest rolls the attacker then the defender from one seeded stream
// and compares their icons. It is logged against the attacker's character,
// or the defender's when only the defender names one.
func (s *Service) OpposedTest(ctx context.Context, req OpposedRequest) (OpposedResponse, error) {
	ctx, span := s.tracer.Start(ctx, "engine.OpposedTest")
	defer span.End()

	attacker, attackerAbilities, err := s.buildPool(ctx, req.Attacker.TestSide, req.Attacker.Circumstances)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return OpposedResponse{}, err
	}
	defender, defenderAbilities, err := s.buildPool(ctx, req.Defender.TestSide, req.Defender.Circumstances)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return OpposedResponse{}, err
	}
	seed, source, err := s.seedGen(req.Seed)
	if err != nil {
		return OpposedResponse{}, fmt.Errorf("resolve seed: %w", err)
	}
	result, err := wrath.OpposedTest(rand.New(rand.NewSource(seed)),
		wrath.Side{DicePool: attacker.Total, WrathDice: attacker.WrathDice},
		wrath.Side{DicePool: defender.Total, WrathDice: defender.WrathDice},
	)
	if err != nil {
		return OpposedResponse{}, domainError(err)
	}
	span.SetAttributes(
		attribute.Int("wrathforge.attacker_pool", attacker.Total),
		attribute.Int("wrathforge.defender_pool", defender.Total),
		attribute.String("wrathforge.winner", string(result.Winner)),
	)

	resp := OpposedResponse{
		Result:            result,
		AttackerPool:      attacker,
		DefenderPool:      defender,
		AttackerAbilities: attackerAbilities,
		DefenderAbilities: defenderAbilities,
		SeedUsed:          seed,
		SeedSource:        source,
	}
	characterID := strings.TrimSpace(req.Attacker.CharacterID)
	if characterID == "" {
		characterID = strings.TrimSpace(req.Defender.CharacterID)
	}
	if characterID != "" {
		rollID, err := s.logRoll(ctx, storage.Roll{
			CharacterID: characterID,
			Kind:        storage.RollOpposed,
			Seed:        seed,
			DicePool:    attacker.Total,
			Success:     result.Winner == wrath.WinnerAttacker,
			Icons:       result.Attacker.Icons,
		}, &resp)
		if err != nil {
			return OpposedResponse{}, err
		}
		resp.RollID = rollID
	}
	return resp, nil
}

// ProbabilityRequest asks for the odds of a test.
type ProbabilityRequest struct {
	DicePool   int    `json:"dicePool"`
	Difficulty int    `json:"difficulty"`
	WrathDice  *int   `json:"wrathDice,omitempty"`
	Locale     string `json:"locale,omitempty"`
}

// ProbabilityResponse carries the odds and the difficulty's name.
type ProbabilityResponse struct {
	wrath.ProbabilityResult
	DifficultyName string `json:"difficultyName"`
}

// Probability returns the exact odds of a test without rolling.
func (s *Service) Probability(ctx context.Context, req ProbabilityRequest) (ProbabilityResponse, error) {
	_, span := s.tracer.Start(ctx, "engine.Probability")
	defer span.End()

	wrathDice := wrath.DefaultWrathDice
	if req.WrathDice != nil {
		wrathDice = *req.WrathDice
	}
	p, err := wrath.Probability(req.DicePool, req.Difficulty, wrathDice)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return ProbabilityResponse{}, domainError(err)
	}
	return ProbabilityResponse{
		ProbabilityResult: p,
		DifficultyName:    wrath.LocalizedDifficultyName(localeTag(req.Locale), req.Difficulty),
	}, nil
}

// logRoll stores roll with doc as its document and returns the roll id.
func (s *Service) logRoll(ctx context.Context, roll storage.Roll, doc any) (string, error) {
	rollID, err := s.idGen()
	if err != nil {
		return "", fmt.Errorf("generate roll id: %w", err)
	}
	roll.ID = rollID
	roll.CreatedAt = s.now()
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode roll: %w", err)
	}
	roll.Document = data
	if err := s.rolls.AppendRoll(ctx, roll); err != nil {
		return "", domainError(err)
	}
	return rollID, nil
}

// localeTag parses a request locale, defaulting to en-US.
func localeTag(locale string) language.Tag {
	if locale = strings.TrimSpace(locale); locale == "" {
		locale = apperrors.DefaultLocale
	}
	return language.Make(locale)
}
