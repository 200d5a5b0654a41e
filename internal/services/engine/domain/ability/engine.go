package ability

import (
	"fmt"
	"log"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/louisbranch/wrathforge/internal/services/engine/domain/property"
)

// GetStuckInID is the mob ability whose bonus dice repeat for every ally
// engaged with the same target.
const GetStuckInID = "get-stuck-in"

// Catalog looks up abilities by id.
type Catalog interface {
	Ability(id string) (Ability, bool)
}

// Engine applies abilities from a catalog.
type Engine struct {
	catalog Catalog
	warnf   func(format string, args ...any)
	perAlly map[string]bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithWarnf replaces log.Printf as the sink for formula warnings.
func WithWarnf(fn func(format string, args ...any)) Option {
	return func(e *Engine) {
		if fn != nil {
			e.warnf = fn
		}
	}
}

// WithPerAllyAbilities replaces the set of abilities whose bonus dice are
// multiplied by Context.AlliesEngaged.
func WithPerAllyAbilities(ids ...string) Option {
	return func(e *Engine) {
		e.perAlly = make(map[string]bool, len(ids))
		for _, id := range ids {
			e.perAlly[id] = true
		}
	}
}

// NewEngine returns an engine reading abilities from catalog.
func NewEngine(catalog Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		warnf:   log.Printf,
		perAlly: map[string]bool{GetStuckInID: true},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Applicable returns the abilities among ids whose conditions all hold.
// Unknown ids are skipped.
func (e *Engine) Applicable(ids []string, ctx Context) []Ability {
	var out []Ability
	for _, id := range ids {
		a, ok := e.catalog.Ability(id)
		if !ok {
			continue
		}
		if Applies(a, ctx) {
			out = append(out, a)
		}
	}
	return out
}

// Apply combines the effects of every applicable ability among ids.
func (e *Engine) Apply(ids []string, ctx Context) Result {
	combined := Result{SpecialEffects: []string{}}
	for _, a := range e.Applicable(ids, ctx) {
		r := e.ApplyOne(a, ctx)
		combined.Applied = true
		combined.Abilities = append(combined.Abilities, a.ID)
		combined.BonusDice += r.BonusDice
		if r.RerollType != "" {
			combined.RerollType = r.RerollType
			combined.RerollCount += r.RerollCount
		}
		combined.AutoIcons += r.AutoIcons
		combined.SpecialEffects = append(combined.SpecialEffects, r.SpecialEffects...)
		combined.Warnings = append(combined.Warnings, r.Warnings...)
	}
	return combined
}

// ApplyOne returns the effects of a without checking its conditions.
func (e *Engine) ApplyOne(a Ability, ctx Context) Result {
	r := Result{Applied: true, Abilities: []string{a.ID}, SpecialEffects: []string{}}
	for _, effect := range a.Effects {
		switch effect.Type {
		case EffectBonusDice:
			if effect.BonusDice == "" {
				continue
			}
			dice, ok := BonusDice(effect.BonusDice, ctx.Rank)
			if !ok {
				warning := fmt.Sprintf("ability %s: could not parse bonus dice formula %q", a.ID, effect.BonusDice)
				e.warnf("%s", warning)
				r.Warnings = append(r.Warnings, warning)
			}
			if e.perAlly[a.ID] && ctx.AlliesEngaged > 0 {
				dice *= ctx.AlliesEngaged
			}
			r.BonusDice += dice
		case EffectReroll:
			r.RerollType = effect.RerollType
			r.RerollCount = max(effect.RerollCount, 1)
		case EffectAutoSuccess:
			r.AutoIcons = effect.AutoIcons
		case EffectSpecial:
			if effect.SpecialText != "" {
				r.SpecialEffects = append(r.SpecialEffects, effect.SpecialText)
			}
		case EffectHeal:
			if effect.HealAmount != "" {
				healType := effect.HealType
				if healType == "" {
					healType = "wounds"
				}
				r.SpecialEffects = append(r.SpecialEffects, fmt.Sprintf("Heal %s %s", effect.HealAmount, healType))
			}
		case EffectDamageModifier:
			if effect.DamageBonus != "" {
				r.SpecialEffects = append(r.SpecialEffects, "Damage: "+effect.DamageBonus)
			}
		case EffectCondition:
			if effect.Condition != "" {
				r.SpecialEffects = append(r.SpecialEffects, "Apply condition: "+effect.Condition)
			}
		}
	}
	return r
}

// Applies reports whether every condition of a holds for ctx.
func Applies(a Ability, ctx Context) bool {
	for _, c := range a.Conditions {
		if !c.Matches(ctx) {
			return false
		}
	}
	return true
}

// Matches reports whether c holds for ctx. A skill test with neither skill
// nor attribute named matches any test that names one of them.
func (c Condition) Matches(ctx Context) bool {
	switch c.Type {
	case ConditionSkillTest:
		if c.Skill != "" && !sameName(c.Skill, ctx.Skill) {
			return false
		}
		return c.Attribute == "" || sameName(c.Attribute, ctx.Attribute)
	case ConditionTargetKeyword:
		return c.TargetKeyword == "" || slices.ContainsFunc(ctx.TargetKeywords, func(k string) bool {
			return strings.EqualFold(k, c.TargetKeyword)
		})
	case ConditionTargetType:
		return c.TargetType == "" || c.TargetType == ctx.TargetType
	case ConditionDamageType:
		return c.DamageType == "" || c.DamageType == ctx.DamageType
	case ConditionSituation:
		return c.Situation == "" || c.Situation == ctx.Situation
	default:
		return true
	}
}

func sameName(a, b string) bool {
	return b != "" && property.NormalizeName(a) == property.NormalizeName(b)
}

var rankTimes = regexp.MustCompile(`^rank\s*\*\s*(\d+)$`)

// BonusDice evaluates a bonus dice formula for rank. It reports false, with
// zero dice, when the formula is outside the grammar.
func BonusDice(formula string, rank int) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(formula))
	switch lower {
	case "rank":
		return rank, true
	case "doublerank", "double rank":
		return rank * 2, true
	}
	if m := rankTimes.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return rank * n, true
		}
	}
	if n, err := strconv.Atoi(lower); err == nil {
		return n, true
	}
	return 0, false
}
