package ability

import (
	"fmt"
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

type fakeCatalog map[string]Ability

func (c fakeCatalog) Ability(id string) (Ability, bool) {
	a, ok := c[id]
	return a, ok
}

var loyalCompassion = Ability{
	ID:         "loyal-compassion",
	Name:       "Loyal Compassion",
	Activation: ActivationTest,
	Conditions: []Condition{
		{Type: ConditionSkillTest, Skill: "medicae"},
		{Type: ConditionTargetKeyword, TargetKeyword: "IMPERIUM"},
	},
	Effects: []Effect{{Type: EffectBonusDice, BonusDice: "doubleRank"}},
}

var getStuckIn = Ability{
	ID:         GetStuckInID,
	Name:       "Get Stuck In",
	Activation: ActivationTest,
	Conditions: []Condition{
		{Type: ConditionDamageType, DamageType: DamageMelee},
		{Type: ConditionSituation, Situation: "outnumbered"},
	},
	Effects: []Effect{
		{Type: EffectBonusDice, BonusDice: "rank"},
		{Type: EffectSpecial, SpecialText: "+Rank bonus dice for EACH ally engaged with the same target"},
	},
}

func testCatalog() fakeCatalog {
	return fakeCatalog{
		loyalCompassion.ID: loyalCompassion,
		getStuckIn.ID:      getStuckIn,
		"fiery-invective": {
			ID:         "fiery-invective",
			Activation: ActivationFreeAction,
			Conditions: []Condition{{Type: ConditionAlways}},
			Effects:    []Effect{{Type: EffectHeal, HealAmount: "1d3+rank", HealType: "shock"}},
		},
		"lucky": {
			ID:      "lucky",
			Effects: []Effect{{Type: EffectReroll, RerollType: "failures"}, {Type: EffectAutoSuccess, AutoIcons: 1}},
		},
		"broken": {
			ID:      "broken",
			Effects: []Effect{{Type: EffectBonusDice, BonusDice: "rank + 1"}},
		},
	}
}

func TestAppliesIsConjunction(t *testing.T) {
	tests := []struct {
		name string
		ctx  Context
		want bool
	}{
		{"both match", Context{Skill: "medicae", TargetKeywords: []string{"IMPERIUM", "ASTRA MILITARUM"}}, true},
		{"wrong skill", Context{Skill: "tech", TargetKeywords: []string{"IMPERIUM"}}, false},
		{"missing keyword", Context{Skill: "medicae", TargetKeywords: []string{"CHAOS"}}, false},
		{"no test", Context{TargetKeywords: []string{"IMPERIUM"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Applies(loyalCompassion, tt.ctx); got != tt.want {
				t.Errorf("Applies() = %v, want %v", got, tt.want)
			}
		})
	}
	if !Applies(Ability{ID: "empty"}, Context{}) {
		t.Error("an ability without conditions always applies")
	}
}

func TestConditionMatches(t *testing.T) {
	tests := []struct {
		name string
		cond Condition
		ctx  Context
		want bool
	}{
		{"any skill test", Condition{Type: ConditionSkillTest}, Context{Skill: "persuasion"}, true},
		{"attribute test counts", Condition{Type: ConditionSkillTest}, Context{Attribute: "willpower"}, true},
		{"unconstrained without a test", Condition{Type: ConditionSkillTest}, Context{}, true},
		{"skill required without a test", Condition{Type: ConditionSkillTest, Skill: "medicae"}, Context{}, false},
		{"skill spelling", Condition{Type: ConditionSkillTest, Skill: "ballisticSkill"}, Context{Skill: "Ballistic Skill"}, true},
		{"attribute mismatch", Condition{Type: ConditionSkillTest, Skill: "medicae", Attribute: "intellect"}, Context{Skill: "medicae", Attribute: "willpower"}, false},
		{"keyword case", Condition{Type: ConditionTargetKeyword, TargetKeyword: "IMPERIUM"}, Context{TargetKeywords: []string{"imperium"}}, true},
		{"ally", Condition{Type: ConditionTargetType, TargetType: TargetAlly}, Context{TargetType: TargetAlly}, true},
		{"enemy is not ally", Condition{Type: ConditionTargetType, TargetType: TargetAlly}, Context{TargetType: TargetEnemy}, false},
		{"ranged is not melee", Condition{Type: ConditionDamageType, DamageType: DamageMelee}, Context{DamageType: DamageRanged}, false},
		{"always", Condition{Type: ConditionAlways}, Context{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cond.Matches(tt.ctx); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBonusDice(t *testing.T) {
	tests := []struct {
		formula string
		rank    int
		want    int
		ok      bool
	}{
		{"rank", 3, 3, true},
		{"doubleRank", 2, 4, true},
		{"double rank", 2, 4, true},
		{"Rank * 3", 2, 6, true},
		{"rank*2", 1, 2, true},
		{"2", 5, 2, true},
		{"rank + 1", 2, 0, false},
		{"lots", 2, 0, false},
	}
	for _, tt := range tests {
		got, ok := BonusDice(tt.formula, tt.rank)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BonusDice(%q, %d) = %d, %v; want %d, %v", tt.formula, tt.rank, got, ok, tt.want, tt.ok)
		}
	}
}

func TestHospitallerLoyalCompassion(t *testing.T) {
	engine := NewEngine(testCatalog())
	got := engine.Apply([]string{"loyal-compassion"}, Context{
		Rank:           2,
		Keywords:       []string{"IMPERIUM", "ADEPTA SORORITAS"},
		Skill:          "medicae",
		TargetKeywords: []string{"IMPERIUM", "ASTRA MILITARUM"},
		TargetType:     TargetAlly,
	})
	if !got.Applied || got.BonusDice != 4 {
		t.Fatalf("result = %+v, want 4 bonus dice", got)
	}
	if !reflect.DeepEqual(got.Abilities, []string{"loyal-compassion"}) {
		t.Errorf("abilities = %v", got.Abilities)
	}
}

func TestGetStuckInScalesPerAlly(t *testing.T) {
	ctx := Context{Rank: 2, DamageType: DamageMelee, Situation: "outnumbered", AlliesEngaged: 3}

	got := NewEngine(testCatalog()).Apply([]string{GetStuckInID}, ctx)
	if got.BonusDice != 6 {
		t.Errorf("bonus dice = %d, want 6", got.BonusDice)
	}
	if len(got.SpecialEffects) != 1 {
		t.Errorf("special effects = %v", got.SpecialEffects)
	}

	ctx.AlliesEngaged = 0
	if got := NewEngine(testCatalog()).Apply([]string{GetStuckInID}, ctx); got.BonusDice != 2 {
		t.Errorf("without allies = %d, want 2", got.BonusDice)
	}

	ctx.AlliesEngaged = 3
	plain := NewEngine(testCatalog(), WithPerAllyAbilities())
	if got := plain.Apply([]string{GetStuckInID}, ctx); got.BonusDice != 2 {
		t.Errorf("per-ally disabled = %d, want 2", got.BonusDice)
	}
}

func TestApplyCombinesEffects(t *testing.T) {
	engine := NewEngine(testCatalog())
	got := engine.Apply([]string{"fiery-invective", "lucky", "lucky", "missing"}, Context{Rank: 1})
	want := Result{
		Applied:        true,
		Abilities:      []string{"fiery-invective", "lucky", "lucky"},
		RerollType:     "failures",
		RerollCount:    2,
		AutoIcons:      2,
		SpecialEffects: []string{"Heal 1d3+rank shock"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Apply() = %+v, want %+v", got, want)
	}

	none := engine.Apply([]string{"loyal-compassion"}, Context{Skill: "tech"})
	if none.Applied || none.BonusDice != 0 || none.SpecialEffects == nil {
		t.Errorf("inapplicable result = %+v", none)
	}
}

func TestUnparsableFormulaWarns(t *testing.T) {
	var warnings []string
	engine := NewEngine(testCatalog(), WithWarnf(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}))
	got := engine.Apply([]string{"broken"}, Context{Rank: 2})
	if got.BonusDice != 0 || !got.Applied {
		t.Errorf("result = %+v", got)
	}
	if len(warnings) != 1 || len(got.Warnings) != 1 || warnings[0] != got.Warnings[0] {
		t.Errorf("warnings = %v / %v", warnings, got.Warnings)
	}
}

func TestApplySumsBonusDice(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		catalog := fakeCatalog{}
		n := rapid.IntRange(0, 6).Draw(t, "abilities")
		rank := rapid.IntRange(1, 5).Draw(t, "rank")
		var ids []string
		want := 0
		for i := range n {
			id := fmt.Sprintf("a%d", i)
			formula := rapid.SampledFrom([]string{"rank", "doubleRank", "rank * 3", "1", "bad"}).Draw(t, "formula")
			dice, _ := BonusDice(formula, rank)
			applies := rapid.Bool().Draw(t, "applies")
			cond := Condition{Type: ConditionTargetType, TargetType: TargetEnemy}
			if applies {
				cond.TargetType = TargetAlly
				want += dice
			}
			catalog[id] = Ability{ID: id, Conditions: []Condition{cond}, Effects: []Effect{{Type: EffectBonusDice, BonusDice: formula}}}
			ids = append(ids, id)
		}
		engine := NewEngine(catalog, WithWarnf(func(string, ...any) {}))
		if got := engine.Apply(ids, Context{Rank: rank, TargetType: TargetAlly}); got.BonusDice != want {
			t.Fatalf("bonus dice = %d, want %d", got.BonusDice, want)
		}
	})
}
