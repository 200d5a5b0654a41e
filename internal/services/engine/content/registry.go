package content

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/louisbranch/wrathforge/internal/services/engine/domain/property"
)

//go:embed data/species.v1.json
var speciesJSON []byte

//go:embed data/archetypes.v1.json
var archetypesJSON []byte

//go:embed data/abilities.v1.json
var abilitiesJSON []byte

//go:embed data/keywords.v1.json
var keywordsJSON []byte

var (
	loadOnce      sync.Once
	embedded      *Registry
	embeddedError error
)

// Registry is a read-only set of catalogs. Lookups return copies of the
// slices callers are likely to edit.
type Registry struct {
	species    []Species
	archetypes []Archetype
	abilities  []Ability
	keywords   []Keyword

	speciesByID   map[string]int
	archetypeByID map[string]int
	abilityByID   map[string]int
	keywordByID   map[string]int
}

// Default returns the embedded catalogs, decoding them on first use.
func Default() (*Registry, error) {
	loadOnce.Do(func() {
		embedded, embeddedError = Load(speciesJSON, archetypesJSON, abilitiesJSON, keywordsJSON)
	})
	return embedded, embeddedError
}

// MustDefault is Default for callers that cannot recover from a broken
// build.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

// Load decodes and cross-checks the four catalogs.
func Load(speciesData, archetypeData, abilityData, keywordData []byte) (*Registry, error) {
	r := &Registry{}
	if err := json.Unmarshal(speciesData, &r.species); err != nil {
		return nil, fmt.Errorf("decode species: %w", err)
	}
	if err := json.Unmarshal(archetypeData, &r.archetypes); err != nil {
		return nil, fmt.Errorf("decode archetypes: %w", err)
	}
	if err := json.Unmarshal(abilityData, &r.abilities); err != nil {
		return nil, fmt.Errorf("decode abilities: %w", err)
	}
	if err := json.Unmarshal(keywordData, &r.keywords); err != nil {
		return nil, fmt.Errorf("decode keywords: %w", err)
	}

	var err error
	if r.speciesByID, err = index(r.species, func(s Species) string { return s.ID }); err != nil {
		return nil, fmt.Errorf("species: %w", err)
	}
	if r.archetypeByID, err = index(r.archetypes, func(a Archetype) string { return a.ID }); err != nil {
		return nil, fmt.Errorf("archetypes: %w", err)
	}
	if r.abilityByID, err = index(r.abilities, func(a Ability) string { return a.ID }); err != nil {
		return nil, fmt.Errorf("abilities: %w", err)
	}
	if r.keywordByID, err = index(r.keywords, func(k Keyword) string { return k.Keyword }); err != nil {
		return nil, fmt.Errorf("keywords: %w", err)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func index[T any](items []T, key func(T) string) (map[string]int, error) {
	out := make(map[string]int, len(items))
	for i, item := range items {
		id := key(item)
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("entry %d has no id", i)
		}
		if _, dup := out[id]; dup {
			return nil, fmt.Errorf("duplicate id %q", id)
		}
		out[id] = i
	}
	return out, nil
}

func (r *Registry) validate() error {
	for _, s := range r.species {
		for attr := range s.BaseAttributes {
			if !property.IsAttribute(attr) {
				return fmt.Errorf("species %s: unknown attribute %q", s.ID, attr)
			}
		}
		for skill := range s.BaseSkills {
			if !property.IsSkill(skill) {
				return fmt.Errorf("species %s: unknown skill %q", s.ID, skill)
			}
		}
		for _, n := range s.Properties {
			if n.ID == "" || !n.Type.Valid() {
				return fmt.Errorf("species %s: invalid property %q", s.ID, n.ID)
			}
		}
	}
	for _, a := range r.archetypes {
		for _, id := range a.SpeciesRestriction {
			if _, ok := r.speciesByID[id]; !ok {
				return fmt.Errorf("archetype %s: unknown species %q", a.ID, id)
			}
		}
		if _, ok := r.abilityByID[a.Ability.AbilityID]; a.Ability.AbilityID != "" && !ok {
			return fmt.Errorf("archetype %s: unknown ability %q", a.ID, a.Ability.AbilityID)
		}
		for _, choice := range a.KeywordChoices {
			if _, ok := r.Keyword(choice.BracketedKeywordID); !ok {
				return fmt.Errorf("archetype %s: unknown keyword %q", a.ID, choice.BracketedKeywordID)
			}
		}
		for attr := range a.AttributeBonuses {
			if !property.IsAttribute(attr) {
				return fmt.Errorf("archetype %s: unknown attribute %q", a.ID, attr)
			}
		}
		for skill := range a.SkillBonuses {
			if !property.IsSkill(skill) {
				return fmt.Errorf("archetype %s: unknown skill %q", a.ID, skill)
			}
		}
	}
	for _, a := range r.abilities {
		if !a.Activation.Valid() {
			return fmt.Errorf("ability %s: unknown activation %q", a.ID, a.Activation)
		}
	}
	return nil
}

// Species returns the species with id.
func (r *Registry) Species(id string) (Species, bool) {
	i, ok := r.speciesByID[id]
	if !ok {
		return Species{}, false
	}
	return r.species[i], true
}

// Archetype returns the archetype with id.
func (r *Registry) Archetype(id string) (Archetype, bool) {
	i, ok := r.archetypeByID[id]
	if !ok {
		return Archetype{}, false
	}
	return r.archetypes[i], true
}

// Ability returns the ability with id.
func (r *Registry) Ability(id string) (Ability, bool) {
	i, ok := r.abilityByID[id]
	if !ok {
		return Ability{}, false
	}
	return r.abilities[i], true
}

// Keyword returns the definition of keyword, ignoring case and surrounding
// brackets when the bracketed form is not defined.
func (r *Registry) Keyword(keyword string) (Keyword, bool) {
	key := strings.ToUpper(strings.TrimSpace(keyword))
	if i, ok := r.keywordByID[key]; ok {
		return r.keywords[i], true
	}
	if i, ok := r.keywordByID[strings.Trim(key, "[]")]; ok {
		return r.keywords[i], true
	}
	return Keyword{}, false
}

// AllSpecies returns every species in catalog order.
func (r *Registry) AllSpecies() []Species {
	return append([]Species(nil), r.species...)
}

// AllArchetypes returns every archetype in catalog order.
func (r *Registry) AllArchetypes() []Archetype {
	return append([]Archetype(nil), r.archetypes...)
}

// AllAbilities returns every ability in catalog order.
func (r *Registry) AllAbilities() []Ability {
	return append([]Ability(nil), r.abilities...)
}

// AllKeywords returns every keyword in catalog order.
func (r *Registry) AllKeywords() []Keyword {
	return append([]Keyword(nil), r.keywords...)
}

// ArchetypesForSpecies returns the archetypes speciesID may take.
func (r *Registry) ArchetypesForSpecies(speciesID string) []Archetype {
	var out []Archetype
	for _, a := range r.archetypes {
		if a.AllowsSpecies(speciesID) {
			out = append(out, a)
		}
	}
	return out
}
