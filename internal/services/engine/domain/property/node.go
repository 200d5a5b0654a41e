package property

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// Type discriminates the property variants.
type Type string

const (
	TypeAttribute Type = "attribute"
	TypeSkill     Type = "skill"
	TypeResource  Type = "resource"
	TypeConstant  Type = "constant"
	TypeEffect    Type = "effect"
	TypeBonus     Type = "bonus"
	TypeFolder    Type = "folder"
	TypeFeature   Type = "feature"
	TypeAction    Type = "action"
	TypeNote      Type = "note"
)

// Valid reports whether t is a known property type.
func (t Type) Valid() bool {
	switch t {
	case TypeAttribute, TypeSkill, TypeResource, TypeConstant, TypeEffect,
		TypeBonus, TypeFolder, TypeFeature, TypeAction, TypeNote:
		return true
	}
	return false
}

// Operation is how an effect changes its target.
type Operation string

const (
	OperationAdd      Operation = "add"
	OperationMultiply Operation = "multiply"
	OperationSet      Operation = "set"
	// Advantage and disadvantage change dice, not values; numeric passes
	// skip them.
	OperationAdvantage    Operation = "advantage"
	OperationDisadvantage Operation = "disadvantage"
)

// TargetType selects how an effect finds its targets.
type TargetType string

const (
	TargetSpecific TargetType = "specific"
	TargetAll      TargetType = "all"
	TargetTags     TargetType = "tags"
)

// Target is the selector of an effect.
type Target struct {
	Type  TargetType `json:"type"`
	Names []string   `json:"names,omitempty"`
	Tags  []string   `json:"tags,omitempty"`
}

// Value is a constant's value: a literal number or a formula.
type Value struct {
	Number  *float64
	Formula string
}

// Num returns a literal Value.
func Num(v float64) Value {
	return Value{Number: &v}
}

// Formula returns a formula Value.
func Formula(expr string) Value {
	return Value{Formula: expr}
}

// IsFormula reports whether v must be evaluated.
func (v Value) IsFormula() bool {
	return v.Number == nil && v.Formula != ""
}

func (v Value) String() string {
	if v.Number != nil {
		return strconv.FormatFloat(*v.Number, 'g', -1, 64)
	}
	return v.Formula
}

// MarshalJSON encodes v as a JSON number or string.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Number != nil {
		return json.Marshal(*v.Number)
	}
	return json.Marshal(v.Formula)
}

// UnmarshalJSON accepts a JSON number or string.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value{Formula: s}
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("constant value must be a number or formula: %w", err)
	}
	*v = Value{Number: &n}
	return nil
}

// Node is one property. Fields beyond the common header apply to the
// variant named by Type and are left zero otherwise.
type Node struct {
	ID          string   `json:"id"`
	Type        Type     `json:"type"`
	Name        string   `json:"name"`
	Parent      string   `json:"parent,omitempty"`
	Children    []string `json:"children,omitempty"`
	Order       int      `json:"order"`
	Tags        []string `json:"tags,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Enabled     bool     `json:"enabled"`
	Description string   `json:"description,omitempty"`
	Source      string   `json:"source,omitempty"`

	// Attribute and skill.
	BaseValue float64 `json:"baseValue,omitempty"`
	// Skill.
	LinkedAttribute string `json:"linkedAttribute,omitempty"`

	// Resource.
	Current float64 `json:"current,omitempty"`
	Maximum string  `json:"maximum,omitempty"`
	ResetOn string  `json:"resetOn,omitempty"`

	// Constant.
	Value *Value `json:"value,omitempty"`

	// Effect.
	Operation Operation `json:"operation,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Target    *Target   `json:"target,omitempty"`

	// Bonus.
	BonusTarget string  `json:"bonusTarget,omitempty"`
	BonusAmount float64 `json:"bonusAmount,omitempty"`

	// Feature and note.
	Text             string   `json:"text,omitempty"`
	GrantedAbilities []string `json:"grantedAbilities,omitempty"`

	// Action.
	ActionType    string   `json:"actionType,omitempty"`
	SkillTest     string   `json:"skillTest,omitempty"`
	DamageFormula string   `json:"damageFormula,omitempty"`
	Traits        []string `json:"traits,omitempty"`
}

// HasTag reports whether n carries tag.
func (n Node) HasTag(tag string) bool {
	return slices.Contains(n.Tags, tag)
}

// clone returns a copy of n that shares no slices with it.
func (n Node) clone() Node {
	out := n
	out.Children = cloneStrings(n.Children)
	out.Tags = cloneStrings(n.Tags)
	out.Keywords = cloneStrings(n.Keywords)
	out.GrantedAbilities = cloneStrings(n.GrantedAbilities)
	out.Traits = cloneStrings(n.Traits)
	if n.Value != nil {
		v := *n.Value
		if v.Number != nil {
			num := *v.Number
			v.Number = &num
		}
		out.Value = &v
	}
	if n.Target != nil {
		target := *n.Target
		target.Names = cloneStrings(n.Target.Names)
		target.Tags = cloneStrings(n.Target.Tags)
		out.Target = &target
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
