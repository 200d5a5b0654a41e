package compute

import (
	"fmt"
	"strconv"

	"github.com/louisbranch/wrathforge/internal/core/formula"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/property"
)

// Floors applied after computation.
const (
	AttributeFloor = 1
	SkillFloor     = 0
)

// AppliedEffect is one effect that changed a computed value.
type AppliedEffect struct {
	Name      string             `json:"name"`
	Operation property.Operation `json:"operation"`
	Value     float64            `json:"value"`
	Source    string             `json:"source"`
}

// Computation is the audit record of one computed property.
type Computation struct {
	PropertyID string          `json:"propertyId"`
	Base       float64         `json:"base"`
	Result     float64         `json:"result"`
	Effects    []AppliedEffect `json:"effects"`
	Breakdown  []string        `json:"breakdown"`
}

// PropertyError records a failure scoped to one property.
type PropertyError struct {
	PropertyID   string `json:"propertyId"`
	PropertyName string `json:"propertyName"`
	Formula      string `json:"formula,omitempty"`
	Message      string `json:"message"`
}

func (e PropertyError) Error() string {
	if e.Formula != "" {
		return fmt.Sprintf("%s (%s): %s [%s]", e.PropertyName, e.PropertyID, e.Message, e.Formula)
	}
	return fmt.Sprintf("%s (%s): %s", e.PropertyName, e.PropertyID, e.Message)
}

// Result holds every computation in evaluation order, the accumulated
// errors and the final variable namespace.
type Result struct {
	Computations []Computation     `json:"computations"`
	Errors       []PropertyError   `json:"errors,omitempty"`
	Variables    formula.Variables `json:"variables"`
}

// Lookup returns the computation for propertyID.
func (r Result) Lookup(propertyID string) (Computation, bool) {
	for _, c := range r.Computations {
		if c.PropertyID == propertyID {
			return c, true
		}
	}
	return Computation{}, false
}

// modifier is an effect or bonus node normalized for matching.
type modifier struct {
	id        string
	name      string
	operation property.Operation
	amount    string
	target    property.Target
}

type engine struct {
	nodes     []property.Node
	modifiers []modifier
	vars      formula.Variables
	result    Result
}

// Compute evaluates the enabled subtree of g. tier is seeded into the
// namespace before any pass; a constant named Tier overrides it.
func Compute(g property.Graph, tier int) Result {
	e := newEngine(g, tier)
	e.attributes()
	e.constants()
	e.skills()
	e.resources()
	e.result.Variables = e.vars
	return e.result
}

func newEngine(g property.Graph, tier int) *engine {
	e := &engine{
		nodes: g.Enabled(),
		vars:  formula.Variables{"tier": float64(tier)},
	}
	for _, name := range property.Attributes {
		e.vars[name] = AttributeFloor
	}
	for _, n := range e.nodes {
		switch n.Type {
		case property.TypeEffect:
			if n.Target == nil {
				continue
			}
			e.modifiers = append(e.modifiers, modifier{
				id:        n.ID,
				name:      n.Name,
				operation: n.Operation,
				amount:    n.Amount,
				target:    *n.Target,
			})
		case property.TypeBonus:
			e.modifiers = append(e.modifiers, modifier{
				id:        n.ID,
				name:      n.Name,
				operation: property.OperationAdd,
				amount:    strconv.FormatFloat(n.BonusAmount, 'g', -1, 64),
				target:    property.Target{Type: property.TargetSpecific, Names: []string{n.BonusTarget}},
			})
		case property.TypeConstant:
			if n.Value != nil && n.Value.Number != nil {
				e.vars[property.SemanticName(n)] = *n.Value.Number
			}
		}
	}
	return e
}

func (e *engine) attributes() {
	for _, n := range e.nodes {
		if n.Type != property.TypeAttribute {
			continue
		}
		c := Computation{PropertyID: n.ID, Base: n.BaseValue}
		value := n.BaseValue
		c.Breakdown = append(c.Breakdown, "Base: "+num(n.BaseValue))

		var sets, multiplies, adds []modifier
		for _, m := range e.targeting(n) {
			switch m.operation {
			case property.OperationSet:
				sets = append(sets, m)
			case property.OperationMultiply:
				multiplies = append(multiplies, m)
			case property.OperationAdd:
				adds = append(adds, m)
			}
		}

		for i, m := range sets {
			if i > 0 {
				c.Breakdown = append(c.Breakdown, fmt.Sprintf("%s: set ignored, %s applied first", m.name, sets[0].name))
				continue
			}
			amount, ok := e.amount(n, m)
			if !ok {
				continue
			}
			value = amount
			c.Effects = append(c.Effects, applied(m, amount))
			c.Breakdown = append(c.Breakdown, fmt.Sprintf("%s: set to %s", m.name, num(amount)))
		}
		for _, m := range multiplies {
			amount, ok := e.amount(n, m)
			if !ok {
				continue
			}
			value *= amount
			c.Effects = append(c.Effects, applied(m, amount))
			c.Breakdown = append(c.Breakdown, fmt.Sprintf("%s: ×%s", m.name, num(amount)))
		}
		for _, m := range adds {
			amount, ok := e.amount(n, m)
			if !ok {
				continue
			}
			value += amount
			c.Effects = append(c.Effects, applied(m, amount))
			c.Breakdown = append(c.Breakdown, fmt.Sprintf("%s: %s", m.name, signed(amount)))
		}

		c.Result = clamp(value, AttributeFloor, &c)
		e.vars[property.SemanticName(n)] = c.Result
		e.result.Computations = append(e.result.Computations, c)
	}
}

func (e *engine) constants() {
	for _, n := range e.nodes {
		if n.Type != property.TypeConstant || n.Value == nil {
			continue
		}
		if !n.Value.IsFormula() {
			if n.Value.Number == nil {
				continue
			}
			v := *n.Value.Number
			e.result.Computations = append(e.result.Computations, Computation{
				PropertyID: n.ID,
				Base:       v,
				Result:     v,
				Breakdown:  []string{"Value: " + num(v)},
			})
			continue
		}
		v, err := formula.Evaluate(n.Value.Formula, e.vars)
		if err != nil {
			e.fail(n, n.Value.Formula, err)
			continue
		}
		e.vars[property.SemanticName(n)] = v
		e.result.Computations = append(e.result.Computations, Computation{
			PropertyID: n.ID,
			Base:       v,
			Result:     v,
			Breakdown:  []string{"Formula: " + n.Value.Formula, "Result: " + num(v)},
		})
	}
}

func (e *engine) skills() {
	for _, n := range e.nodes {
		if n.Type != property.TypeSkill {
			continue
		}
		name := property.SemanticName(n)
		linked := n.LinkedAttribute
		if linked == "" {
			linked = property.SkillAttribute[name]
		}
		if canonical, ok := property.CanonicalStat(linked); ok {
			linked = canonical
		}
		attrValue := e.vars[linked]

		c := Computation{PropertyID: n.ID, Base: n.BaseValue + attrValue}
		c.Breakdown = append(c.Breakdown, "Skill Ranks: "+num(n.BaseValue))
		if linked != "" {
			c.Breakdown = append(c.Breakdown, fmt.Sprintf("%s: %s", linked, num(attrValue)))
		}
		value := c.Base

		for _, m := range e.targeting(n) {
			switch m.operation {
			case property.OperationAdd:
				amount, ok := e.amount(n, m)
				if !ok {
					continue
				}
				value += amount
				c.Effects = append(c.Effects, applied(m, amount))
				c.Breakdown = append(c.Breakdown, fmt.Sprintf("%s: %s", m.name, signed(amount)))
			case property.OperationSet, property.OperationMultiply:
				e.result.Errors = append(e.result.Errors, PropertyError{
					PropertyID:   n.ID,
					PropertyName: n.Name,
					Formula:      m.amount,
					Message:      fmt.Sprintf("%s effect %q is not supported on skills", m.operation, m.name),
				})
			}
		}

		c.Result = clamp(value, SkillFloor, &c)
		e.vars[name] = c.Result
		e.result.Computations = append(e.result.Computations, c)
	}
}

func (e *engine) resources() {
	for _, n := range e.nodes {
		if n.Type != property.TypeResource || n.Maximum == "" {
			continue
		}
		v, err := formula.Evaluate(n.Maximum, e.vars)
		if err != nil {
			e.fail(n, n.Maximum, err)
			continue
		}
		e.result.Computations = append(e.result.Computations, Computation{
			PropertyID: n.ID,
			Base:       v,
			Result:     v,
			Breakdown:  []string{"Formula: " + n.Maximum, "Maximum: " + num(v)},
		})
	}
}

// targeting returns the modifiers that apply to n, in encounter order.
func (e *engine) targeting(n property.Node) []modifier {
	key := property.NormalizeName(property.SemanticName(n))
	var out []modifier
	for _, m := range e.modifiers {
		if matches(m.target, key, n, e.nodes) {
			out = append(out, m)
		}
	}
	return out
}

func matches(target property.Target, key string, n property.Node, nodes []property.Node) bool {
	switch target.Type {
	case property.TargetAll:
		return true
	case property.TargetSpecific:
		for _, name := range target.Names {
			if property.NormalizeName(name) == key {
				return true
			}
		}
	case property.TargetTags:
		for _, id := range resolveTagTargets(target, nodes) {
			if id == n.ID {
				return true
			}
		}
	}
	return false
}

// resolveTagTargets returns the ids of nodes selected by a tags target.
//
// TODO: match target.Tags against node tags once content declares tag
// targets; until then a tags target selects nothing.
func resolveTagTargets(target property.Target, nodes []property.Node) []string {
	return nil
}

// amount evaluates a modifier against the current namespace, recording a
// PropertyError on the target when it fails.
func (e *engine) amount(target property.Node, m modifier) (float64, bool) {
	v, err := formula.Evaluate(m.amount, e.vars)
	if err != nil {
		e.result.Errors = append(e.result.Errors, PropertyError{
			PropertyID:   target.ID,
			PropertyName: target.Name,
			Formula:      m.amount,
			Message:      fmt.Sprintf("effect %q: %v", m.name, err),
		})
		return 0, false
	}
	return v, true
}

func (e *engine) fail(n property.Node, expr string, err error) {
	e.result.Errors = append(e.result.Errors, PropertyError{
		PropertyID:   n.ID,
		PropertyName: n.Name,
		Formula:      expr,
		Message:      err.Error(),
	})
}

func applied(m modifier, value float64) AppliedEffect {
	return AppliedEffect{Name: m.name, Operation: m.operation, Value: value, Source: m.id}
}

func clamp(value, floor float64, c *Computation) float64 {
	if value < floor {
		c.Breakdown = append(c.Breakdown, fmt.Sprintf("Minimum: %s", num(floor)))
		value = floor
	}
	c.Breakdown = append(c.Breakdown, "Total: "+num(value))
	return value
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func signed(v float64) string {
	if v < 0 {
		return num(v)
	}
	return "+" + num(v)
}
