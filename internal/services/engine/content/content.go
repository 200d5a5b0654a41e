// Package content holds the static rule catalogs: species, archetypes,
// abilities and keywords. The catalogs are embedded, decoded and validated
// once, and never change afterwards.
package content

import (
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/ability"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/property"
)

// Book is a rulebook reference.
type Book struct {
	Book string `json:"book"`
	Page int    `json:"page"`
}

// Species is a playable species template.
type Species struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	XPCost            int             `json:"xpCost"`
	BaseAttributes    map[string]int  `json:"baseAttributes,omitempty"`
	BaseSkills        map[string]int  `json:"baseSkills,omitempty"`
	AttributeMaximums map[string]int  `json:"attributeMaximums"`
	Properties        []property.Node `json:"properties,omitempty"`
	Speed             int             `json:"speed"`
	Size              string          `json:"size"`
	Keywords          []string        `json:"keywords"`
	Description       string          `json:"description"`
	Source            Book            `json:"source"`
}

// AttributeMaximum returns the species cap for attr, defaulting to 8.
func (s Species) AttributeMaximum(attr string) int {
	if v, ok := s.AttributeMaximums[attr]; ok {
		return v
	}
	return 8
}

// KeywordChoice is a bracketed keyword the player must replace.
type KeywordChoice struct {
	BracketedKeywordID string `json:"bracketedKeywordId"`
	Required           bool   `json:"required"`
}

// ArchetypeAbility links an archetype to its ability.
type ArchetypeAbility struct {
	AbilityID  string `json:"abilityId"`
	Name       string `json:"name"`
	GameEffect string `json:"gameEffect"`
}

// Archetype is a character concept template.
type Archetype struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Faction            string           `json:"faction"`
	Tier               int              `json:"tier"`
	Description        string           `json:"description"`
	SpeciesRestriction []string         `json:"speciesRestriction"`
	Cost               int              `json:"cost"`
	Keywords           []string         `json:"keywords"`
	KeywordChoices     []KeywordChoice  `json:"keywordChoices,omitempty"`
	AttributeBonuses   map[string]int   `json:"attributeBonuses,omitempty"`
	SkillBonuses       map[string]int   `json:"skillBonuses,omitempty"`
	Ability            ArchetypeAbility `json:"ability"`
	InfluenceBonus     int              `json:"influenceBonus"`
	Source             Book             `json:"source"`
}

// AllowsSpecies reports whether speciesID may take the archetype. An empty
// restriction allows every species.
func (a Archetype) AllowsSpecies(speciesID string) bool {
	if len(a.SpeciesRestriction) == 0 {
		return true
	}
	for _, id := range a.SpeciesRestriction {
		if id == speciesID {
			return true
		}
	}
	return false
}

// Keyword categories.
const (
	KeywordSpecial   = "special"
	KeywordFaction   = "faction"
	KeywordBracketed = "bracketed"
	KeywordWargear   = "wargear"
	KeywordPsychic   = "psychic"
)

// Keyword is a keyword definition.
type Keyword struct {
	Keyword     string   `json:"keyword"`
	Category    string   `json:"category"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	GameEffect  string   `json:"gameEffect,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

// Ability is the catalog form of an ability.
type Ability = ability.Ability
