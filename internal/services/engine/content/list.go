package content

import (
	"errors"
	"fmt"

	"github.com/louisbranch/wrathforge/internal/services/engine/content/filter"
)

// Kind names one catalog.
type Kind string

const (
	KindSpecies    Kind = "species"
	KindArchetypes Kind = "archetypes"
	KindAbilities  Kind = "abilities"
	KindKeywords   Kind = "keywords"
)

// ErrUnknownKind is returned for a catalog name outside Kind.
var ErrUnknownKind = errors.New("unknown catalog kind")

var kindFields = map[Kind]filter.Fields{
	KindSpecies: {
		"id": filter.FieldString, "name": filter.FieldString, "size": filter.FieldString,
		"xp_cost": filter.FieldInt, "speed": filter.FieldInt,
	},
	KindArchetypes: {
		"id": filter.FieldString, "name": filter.FieldString, "faction": filter.FieldString,
		"ability": filter.FieldString, "tier": filter.FieldInt, "cost": filter.FieldInt,
	},
	KindAbilities: {
		"id": filter.FieldString, "name": filter.FieldString, "activation": filter.FieldString,
		"source": filter.FieldString,
	},
	KindKeywords: {
		"keyword": filter.FieldString, "name": filter.FieldString, "category": filter.FieldString,
	},
}

// Fields returns the filterable fields of kind.
func Fields(kind Kind) (filter.Fields, error) {
	fields, ok := kindFields[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return fields, nil
}

// List returns the entries of kind that match filterStr, in catalog order.
func (r *Registry) List(kind Kind, filterStr string) ([]any, error) {
	fields, err := Fields(kind)
	if err != nil {
		return nil, err
	}
	f, err := filter.Parse(filterStr, fields)
	if err != nil {
		return nil, err
	}

	var out []any
	keep := func(entry any, resolve filter.Resolver) error {
		ok, err := f.Match(resolve)
		if err != nil {
			return err
		}
		if ok {
			out = append(out, entry)
		}
		return nil
	}

	switch kind {
	case KindSpecies:
		for _, s := range r.species {
			if err := keep(s, speciesResolver(s)); err != nil {
				return nil, err
			}
		}
	case KindArchetypes:
		for _, a := range r.archetypes {
			if err := keep(a, archetypeResolver(a)); err != nil {
				return nil, err
			}
		}
	case KindAbilities:
		for _, a := range r.abilities {
			if err := keep(a, abilityResolver(a)); err != nil {
				return nil, err
			}
		}
	case KindKeywords:
		for _, k := range r.keywords {
			if err := keep(k, keywordResolver(k)); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func fieldMap(values map[string]any) filter.Resolver {
	return func(name string) (any, bool) {
		v, ok := values[name]
		return v, ok
	}
}

func speciesResolver(s Species) filter.Resolver {
	return fieldMap(map[string]any{
		"id": s.ID, "name": s.Name, "size": s.Size, "xp_cost": s.XPCost, "speed": s.Speed,
	})
}

func archetypeResolver(a Archetype) filter.Resolver {
	return fieldMap(map[string]any{
		"id": a.ID, "name": a.Name, "faction": a.Faction, "ability": a.Ability.AbilityID,
		"tier": a.Tier, "cost": a.Cost,
	})
}

func abilityResolver(a Ability) filter.Resolver {
	source := ""
	if a.Source != nil {
		source = a.Source.ID
	}
	return fieldMap(map[string]any{
		"id": a.ID, "name": a.Name, "activation": string(a.Activation), "source": source,
	})
}

func keywordResolver(k Keyword) filter.Resolver {
	return fieldMap(map[string]any{
		"keyword": k.Keyword, "name": k.Name, "category": k.Category,
	})
}
