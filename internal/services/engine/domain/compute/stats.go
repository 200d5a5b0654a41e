package compute

import (
	"fmt"
	"math"
	"strings"

	"github.com/louisbranch/wrathforge/internal/core/formula"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/property"
)

// DefaultSpeed is the base speed when no Speed constant is present.
const DefaultSpeed = 6

// DerivedPrefix prefixes the computation ids of derived stats.
const DerivedPrefix = "derived-"

// Derived stat names.
const (
	StatDefence          = "defence"
	StatResilience       = "resilience"
	StatDetermination    = "determination"
	StatMaxWounds        = "maxWounds"
	StatMaxShock         = "maxShock"
	StatSpeed            = "speed"
	StatPassiveAwareness = "passiveAwareness"
	StatConviction       = "conviction"
	StatResolve          = "resolve"
	StatInfluence        = "influence"
	StatWealth           = "wealth"
)

// DerivedStats lists the derived stat names in sheet order.
var DerivedStats = []string{
	StatDefence,
	StatResilience,
	StatDetermination,
	StatMaxWounds,
	StatMaxShock,
	StatSpeed,
	StatPassiveAwareness,
	StatConviction,
	StatResolve,
	StatInfluence,
	StatWealth,
}

// derivedAliases maps normalized target names to derived stats.
var derivedAliases = func() map[string]string {
	out := map[string]string{
		"wounds":  StatMaxWounds,
		"shock":   StatMaxShock,
		"defense": StatDefence,
	}
	for _, name := range DerivedStats {
		out[property.NormalizeName(name)] = name
	}
	return out
}()

// EntityStats is the computed snapshot of an entity.
type EntityStats struct {
	Attributes       map[string]int `json:"attributes"`
	Skills           map[string]int `json:"skills"`
	Defence          int            `json:"defence"`
	Resilience       int            `json:"resilience"`
	Determination    int            `json:"determination"`
	MaxWounds        int            `json:"maxWounds"`
	MaxShock         int            `json:"maxShock"`
	Speed            int            `json:"speed"`
	PassiveAwareness int            `json:"passiveAwareness"`
	Conviction       int            `json:"conviction"`
	Resolve          int            `json:"resolve"`
	Influence        int            `json:"influence"`
	Wealth           int            `json:"wealth"`
}

// Attribute returns the value of an attribute in any spelling, or the floor
// when unknown.
func (s EntityStats) Attribute(name string) int {
	if c, ok := property.CanonicalStat(name); ok {
		if v, ok := s.Attributes[c]; ok {
			return v
		}
	}
	return AttributeFloor
}

// Skill returns the value of a skill in any spelling, or 0 when unknown.
func (s EntityStats) Skill(name string) int {
	if c, ok := property.CanonicalStat(name); ok {
		return s.Skills[c]
	}
	return SkillFloor
}

// Derived returns a derived stat by name or alias.
func (s EntityStats) Derived(name string) (int, bool) {
	stat, ok := derivedAliases[property.NormalizeName(name)]
	if !ok {
		return 0, false
	}
	return *s.derivedField(stat), true
}

func (s *EntityStats) derivedField(stat string) *int {
	switch stat {
	case StatDefence:
		return &s.Defence
	case StatResilience:
		return &s.Resilience
	case StatDetermination:
		return &s.Determination
	case StatMaxWounds:
		return &s.MaxWounds
	case StatMaxShock:
		return &s.MaxShock
	case StatSpeed:
		return &s.Speed
	case StatPassiveAwareness:
		return &s.PassiveAwareness
	case StatConviction:
		return &s.Conviction
	case StatResolve:
		return &s.Resolve
	case StatInfluence:
		return &s.Influence
	case StatWealth:
		return &s.Wealth
	}
	panic("compute: unknown derived stat " + stat)
}

// DerivedInput carries the values derived stats depend on.
type DerivedInput struct {
	Initiative int
	Willpower  int
	Agility    int
	Intellect  int
	Toughness  int
	Tier       int
	Armour     int
	BaseSpeed  int
}

// Derive computes the derived stats from attributes and tier. A zero
// BaseSpeed means DefaultSpeed.
func Derive(in DerivedInput) map[string]int {
	baseSpeed := in.BaseSpeed
	if baseSpeed == 0 {
		baseSpeed = DefaultSpeed
	}
	return map[string]int{
		StatDefence:          1 + half(in.Initiative),
		StatResilience:       1 + in.Toughness + in.Armour,
		StatDetermination:    1 + half(in.Willpower),
		StatMaxWounds:        in.Tier + in.Toughness,
		StatMaxShock:         in.Tier + in.Willpower,
		StatSpeed:            baseSpeed + half(in.Agility),
		StatPassiveAwareness: half(in.Intellect),
		StatConviction:       in.Willpower,
		StatResolve:          max(1, half(in.Willpower)),
		StatInfluence:        in.Tier,
		StatWealth:           in.Tier,
	}
}

// half is floor(v/2) for any sign.
func half(v int) int {
	return int(math.Floor(float64(v) / 2))
}

// Stats computes g and derives an EntityStats snapshot. The returned Result
// also carries a derived-<name> computation for every derived stat.
func Stats(g property.Graph, tier int) (EntityStats, Result) {
	result := Compute(g, tier)
	stats := EntityStats{
		Attributes: make(map[string]int, len(property.Attributes)),
		Skills:     make(map[string]int, len(property.Skills)),
	}
	for _, name := range property.Attributes {
		stats.Attributes[name] = AttributeFloor
	}
	for _, name := range property.Skills {
		stats.Skills[name] = SkillFloor
	}

	for _, n := range g.Enabled() {
		var target map[string]int
		var floor int
		switch n.Type {
		case property.TypeAttribute:
			target, floor = stats.Attributes, AttributeFloor
		case property.TypeSkill:
			target, floor = stats.Skills, SkillFloor
		default:
			continue
		}
		name, ok := property.CanonicalStat(property.SemanticName(n))
		if !ok {
			continue
		}
		if _, known := target[name]; !known {
			continue
		}
		c, ok := result.Lookup(n.ID)
		if !ok {
			continue
		}
		target[name] = max(floor, int(math.Floor(c.Result)))
	}

	derived := Derive(DerivedInput{
		Initiative: stats.Attributes["initiative"],
		Willpower:  stats.Attributes["willpower"],
		Agility:    stats.Attributes["agility"],
		Intellect:  stats.Attributes["intellect"],
		Toughness:  stats.Attributes["toughness"],
		Tier:       tier,
		Armour:     int(math.Floor(result.Variables["armour"])),
		BaseSpeed:  int(math.Floor(result.Variables["speed"])),
	})

	bonuses := derivedBonuses(g, result.Variables, &result)
	for _, stat := range DerivedStats {
		base := derived[stat]
		value := float64(base)
		c := Computation{PropertyID: DerivedPrefix + stat, Base: float64(base)}
		c.Breakdown = append(c.Breakdown, "Base: "+num(float64(base)))
		for _, b := range bonuses[stat] {
			value += b.Value
			c.Effects = append(c.Effects, b)
			c.Breakdown = append(c.Breakdown, fmt.Sprintf("%s: %s", b.Name, signed(b.Value)))
		}
		c.Result = value
		c.Breakdown = append(c.Breakdown, "Total: "+num(value))
		result.Computations = append(result.Computations, c)

		*stats.derivedField(stat) = int(math.Floor(value))
		result.Variables[stat] = value
	}
	return stats, result
}

// derivedBonuses collects add effects and bonuses whose specific target is a
// derived stat, keyed by stat. Other operations on derived stats are
// reported.
func derivedBonuses(g property.Graph, vars formula.Variables, result *Result) map[string][]AppliedEffect {
	out := make(map[string][]AppliedEffect)
	for _, n := range g.Enabled() {
		var names []string
		var op property.Operation
		var amount string
		switch n.Type {
		case property.TypeBonus:
			names = []string{n.BonusTarget}
			op = property.OperationAdd
			amount = num(n.BonusAmount)
		case property.TypeEffect:
			if n.Target == nil || n.Target.Type != property.TargetSpecific {
				continue
			}
			names = n.Target.Names
			op = n.Operation
			amount = n.Amount
		default:
			continue
		}
		for _, target := range names {
			stat, ok := derivedAliases[property.NormalizeName(target)]
			if !ok {
				continue
			}
			if op != property.OperationAdd {
				if op == property.OperationSet || op == property.OperationMultiply {
					result.Errors = append(result.Errors, PropertyError{
						PropertyID:   DerivedPrefix + stat,
						PropertyName: stat,
						Formula:      amount,
						Message:      fmt.Sprintf("%s effect %q is not supported on derived stats", op, n.Name),
					})
				}
				continue
			}
			v, err := formula.Evaluate(strings.TrimSpace(amount), vars)
			if err != nil {
				result.Errors = append(result.Errors, PropertyError{
					PropertyID:   DerivedPrefix + stat,
					PropertyName: stat,
					Formula:      amount,
					Message:      fmt.Sprintf("effect %q: %v", n.Name, err),
				})
				continue
			}
			out[stat] = append(out[stat], AppliedEffect{Name: n.Name, Operation: op, Value: v, Source: n.ID})
		}
	}
	return out
}
