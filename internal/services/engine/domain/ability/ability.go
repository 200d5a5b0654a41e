package ability

// Activation says when an ability can be used.
type Activation string

const (
	ActivationPassive       Activation = "passive"
	ActivationTest          Activation = "test"
	ActivationCombatAction  Activation = "combat-action"
	ActivationFreeAction    Activation = "free-action"
	ActivationReflexive     Activation = "reflexive"
	ActivationRegroup       Activation = "regroup"
	ActivationOncePerScene  Activation = "once-per-scene"
	ActivationOncePerCombat Activation = "once-per-combat"
)

// Valid reports whether a is a known activation.
func (a Activation) Valid() bool {
	switch a {
	case ActivationPassive, ActivationTest, ActivationCombatAction, ActivationFreeAction,
		ActivationReflexive, ActivationRegroup, ActivationOncePerScene, ActivationOncePerCombat:
		return true
	}
	return false
}

// ConditionType discriminates conditions.
type ConditionType string

const (
	ConditionAlways        ConditionType = "always"
	ConditionSkillTest     ConditionType = "skill-test"
	ConditionTargetKeyword ConditionType = "target-keyword"
	ConditionTargetType    ConditionType = "target-type"
	ConditionDamageType    ConditionType = "damage-type"
	ConditionSituation     ConditionType = "combat-situation"
)

// Target types.
const (
	TargetAlly  = "ally"
	TargetEnemy = "enemy"
	TargetSelf  = "self"
)

// Damage types.
const (
	DamageMelee   = "melee"
	DamageRanged  = "ranged"
	DamagePsychic = "psychic"
)

// Condition is one requirement of an ability. Only the fields that belong to
// Type are read; an empty field matches anything.
type Condition struct {
	Type          ConditionType `json:"type"`
	Skill         string        `json:"skill,omitempty"`
	Attribute     string        `json:"attribute,omitempty"`
	TargetKeyword string        `json:"targetKeyword,omitempty"`
	TargetType    string        `json:"targetType,omitempty"`
	DamageType    string        `json:"damageType,omitempty"`
	Situation     string        `json:"situation,omitempty"`
}

// EffectType discriminates effects.
type EffectType string

const (
	EffectBonusDice      EffectType = "bonus-dice"
	EffectReroll         EffectType = "reroll"
	EffectAutoSuccess    EffectType = "auto-success"
	EffectDamageModifier EffectType = "damage-modifier"
	EffectHeal           EffectType = "heal"
	EffectCondition      EffectType = "condition"
	EffectSpecial        EffectType = "special"
)

// Effect is one thing an ability does when it applies.
type Effect struct {
	Type EffectType `json:"type"`

	// BonusDice is "rank", "doubleRank", "rank * N" or an integer.
	BonusDice string `json:"bonusDice,omitempty"`

	RerollType  string `json:"rerollType,omitempty"`
	RerollCount int    `json:"rerollCount,omitempty"`

	AutoIcons int `json:"autoIcons,omitempty"`

	DamageBonus   string `json:"damageBonus,omitempty"`
	DamagePenalty string `json:"damagePenalty,omitempty"`

	HealAmount string `json:"healAmount,omitempty"`
	HealType   string `json:"healType,omitempty"`

	Condition string `json:"condition,omitempty"`

	SpecialText string `json:"specialText,omitempty"`
}

// Source names where an ability comes from.
type Source struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Ability is a catalog entry.
type Ability struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	Activation    Activation  `json:"activation"`
	Conditions    []Condition `json:"conditions,omitempty"`
	Effects       []Effect    `json:"effects"`
	UsesPerScene  int         `json:"usesPerScene,omitempty"`
	UsesPerCombat int         `json:"usesPerCombat,omitempty"`
	Source        *Source     `json:"source,omitempty"`
}

// Context describes the test an ability is checked against.
type Context struct {
	Rank           int      `json:"rank"`
	Keywords       []string `json:"keywords,omitempty"`
	Skill          string   `json:"skill,omitempty"`
	Attribute      string   `json:"attribute,omitempty"`
	TargetKeywords []string `json:"targetKeywords,omitempty"`
	TargetType     string   `json:"targetType,omitempty"`
	DamageType     string   `json:"damageType,omitempty"`
	Situation      string   `json:"situation,omitempty"`
	AlliesEngaged  int      `json:"alliesEngaged,omitempty"`
}

// Result is the combined effect of the applicable abilities.
type Result struct {
	Applied        bool     `json:"applied"`
	Abilities      []string `json:"abilities,omitempty"`
	BonusDice      int      `json:"bonusDice"`
	RerollType     string   `json:"rerollType,omitempty"`
	RerollCount    int      `json:"rerollCount,omitempty"`
	AutoIcons      int      `json:"autoIcons,omitempty"`
	SpecialEffects []string `json:"specialEffects"`
	Warnings       []string `json:"warnings,omitempty"`
}
