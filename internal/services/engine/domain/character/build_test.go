package character

import (
	"errors"
	"reflect"
	"testing"

	"github.com/louisbranch/wrathforge/internal/services/engine/content"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/ability"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/wrath"
)

func hospitaller() BuildRequest {
	return BuildRequest{
		Name:           "Sister Amalia",
		Tier:           1,
		Rank:           2,
		SpeciesID:      "human",
		ArchetypeID:    "sister-hospitaller",
		KeywordChoices: map[string]string{"[ORDER]": "Our Martyred Lady"},
		Attributes:     map[string]int{"intellect": 4},
		Skills:         map[string]int{"Medicae": 3},
	}
}

func TestBuildHospitaller(t *testing.T) {
	registry := content.MustDefault()
	c, err := Build(registry, hospitaller())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wantKeywords := []string{"IMPERIUM", "HUMAN", "ADEPTUS MINISTORUM", "ADEPTA SORORITAS", "OUR MARTYRED LADY"}
	if !reflect.DeepEqual(c.Keywords, wantKeywords) {
		t.Errorf("keywords = %v", c.Keywords)
	}
	if c.XP.Spent() != 24+18 {
		t.Errorf("xp spent = %d, want 42; items %+v", c.XP.Spent(), c.XP.Items)
	}
	if !reflect.DeepEqual(c.Abilities(), []string{"loyal-compassion"}) {
		t.Errorf("abilities = %v", c.Abilities())
	}

	stats, result := c.Stats()
	if len(result.Errors) != 0 {
		t.Fatalf("compute errors: %v", result.Errors)
	}
	if stats.Attribute("intellect") != 4 || stats.Attribute("willpower") != 4 {
		t.Errorf("attributes = %v", stats.Attributes)
	}
	if stats.Skill("medicae") != 7 {
		t.Errorf("medicae total = %d, want 7", stats.Skill("medicae"))
	}
	if stats.Speed != 6 {
		t.Errorf("speed = %d, want 6", stats.Speed)
	}

	engine := ability.NewEngine(registry)
	applied := engine.Apply(c.Abilities(), ability.Context{
		Rank:           c.Rank,
		Keywords:       c.Keywords,
		Skill:          "medicae",
		TargetKeywords: []string{"IMPERIUM"},
	})
	intellect := stats.Attribute("intellect")
	if got := wrath.DicePool(intellect, stats.Skill("medicae")-intellect, applied.BonusDice); got != 11 {
		t.Errorf("dice pool = %d, want 11", got)
	}
}

func TestBuildSpeciesBonuses(t *testing.T) {
	registry := content.MustDefault()

	astartes, err := Build(registry, BuildRequest{Name: "Brother Tarkus", Tier: 2, SpeciesID: "adeptus-astartes", KeywordChoices: map[string]string{"CHAPTER": "ultramarines"}})
	if err != nil {
		t.Fatalf("Build astartes: %v", err)
	}
	stats, _ := astartes.Stats()
	if stats.Attribute("strength") != 5 || stats.Skill("weaponSkill") != 8 {
		t.Errorf("strength/weapon skill = %d/%d", stats.Attribute("strength"), stats.Skill("weaponSkill"))
	}
	if stats.Resolve != 3 || stats.Speed != 9 {
		t.Errorf("resolve/speed = %d/%d, want 3/9", stats.Resolve, stats.Speed)
	}
	if !astartes.HasKeyword("ultramarines") {
		t.Errorf("keywords = %v", astartes.Keywords)
	}

	primaris, err := Build(registry, BuildRequest{Name: "Sergeant Vell", Tier: 3, SpeciesID: "primaris-astartes"})
	if err != nil {
		t.Fatalf("Build primaris: %v", err)
	}
	stats, _ = primaris.Stats()
	if stats.MaxWounds != 3+6+3 {
		t.Errorf("primaris wounds = %d, want 12", stats.MaxWounds)
	}
}

func TestBuildInfluenceBonus(t *testing.T) {
	c, err := Build(content.MustDefault(), BuildRequest{Name: "Magos Vey", Tier: 1, SpeciesID: "human", ArchetypeID: "inquisitorial-sage", KeywordChoices: map[string]string{"ORDO": "Ordo Hereticus"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	stats, _ := c.Stats()
	if stats.Influence != 2 {
		t.Errorf("influence = %d, want 2", stats.Influence)
	}
}

func TestBuildErrors(t *testing.T) {
	registry := content.MustDefault()
	tests := []struct {
		name string
		edit func(*BuildRequest)
		want error
	}{
		{name: "empty name", edit: func(r *BuildRequest) { r.Name = " " }, want: ErrEmptyName},
		{name: "tier", edit: func(r *BuildRequest) { r.Tier = 6 }, want: ErrInvalidTier},
		{name: "unknown species", edit: func(r *BuildRequest) { r.SpeciesID = "tau" }, want: ErrUnknownSpecies},
		{name: "unknown archetype", edit: func(r *BuildRequest) { r.ArchetypeID = "tech-priest" }, want: ErrUnknownArchetype},
		{name: "species mismatch", edit: func(r *BuildRequest) { r.SpeciesID = "ork" }, want: ErrSpeciesMismatch},
		{name: "missing keyword choice", edit: func(r *BuildRequest) { r.KeywordChoices = nil }, want: ErrKeywordChoiceMissing},
		{name: "attribute below archetype bonus", edit: func(r *BuildRequest) { r.Attributes = map[string]int{"intellect": 3} }, want: ErrAttributeOutOfRange},
		{name: "attribute above maximum", edit: func(r *BuildRequest) { r.Attributes = map[string]int{"strength": 9} }, want: ErrAttributeOutOfRange},
		{name: "unknown attribute", edit: func(r *BuildRequest) { r.Attributes = map[string]int{"luck": 2} }, want: ErrAttributeOutOfRange},
		{name: "skill above maximum", edit: func(r *BuildRequest) { r.Skills = map[string]int{"tech": 6} }, want: ErrSkillOutOfRange},
		{name: "xp exceeded", edit: func(r *BuildRequest) { r.Attributes = map[string]int{"intellect": 8} }, want: ErrXPExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := hospitaller()
			tt.edit(&req)
			_, err := Build(registry, req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuildXPExceededReportsBudget(t *testing.T) {
	req := hospitaller()
	req.Attributes = map[string]int{"intellect": 8}
	_, err := Build(content.MustDefault(), req)
	var buildErr *BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("error = %v", err)
	}
	if buildErr.Value != 24+18+280 || buildErr.Max != 100 {
		t.Errorf("build error = %+v", buildErr)
	}
}

func TestBuildSeedsEverySheetEntry(t *testing.T) {
	c, err := Build(content.MustDefault(), hospitaller())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, id := range []string{"attr-strength", "attr-fellowship", "skill-athletics", "skill-weaponSkill", "species-human-speed", "archetype-sister-hospitaller-ability"} {
		if _, ok := c.Graph.Node(id); !ok {
			t.Errorf("missing node %s", id)
		}
	}
	medicae, _ := c.Graph.Node("skill-medicae")
	if medicae.BaseValue != 3 || medicae.LinkedAttribute != "intellect" || medicae.Name != "Medicae" {
		t.Errorf("medicae = %+v", medicae)
	}
}
