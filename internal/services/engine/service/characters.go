package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/wrathforge/internal/platform/errors"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/character"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/property"
)

// CreateCharacterRequest describes a character or, when Threat is set, a
// bestiary creature. Creatures skip species, archetype and XP; their
// Attributes and Skills are written to the sheet as given.
type CreateCharacterRequest struct {
	Name           string            `json:"name"`
	Tier           int               `json:"tier"`
	Rank           int               `json:"rank,omitempty"`
	SpeciesID      string            `json:"speciesId,omitempty"`
	ArchetypeID    string            `json:"archetypeId,omitempty"`
	KeywordChoices map[string]string `json:"keywordChoices,omitempty"`
	Attributes     map[string]int    `json:"attributes,omitempty"`
	Skills         map[string]int    `json:"skills,omitempty"`
	Threat         string            `json:"threat,omitempty"`
	Keywords       []string          `json:"keywords,omitempty"`
}

// CharacterPage is one page of stored characters.
type CharacterPage struct {
	Characters    []character.Character `json:"characters"`
	NextPageToken string                `json:"nextPageToken,omitempty"`
}

// CreateCharacter assembles and stores a new entity.
func (s *Service) CreateCharacter(ctx context.Context, req CreateCharacterRequest) (character.Character, error) {
	var (
		c   character.Character
		err error
	)
	if strings.TrimSpace(req.Threat) != "" {
		c, err = newCreature(req)
	} else {
		c, err = character.Build(s.content, character.BuildRequest{
			Name:           req.Name,
			Tier:           req.Tier,
			Rank:           req.Rank,
			SpeciesID:      req.SpeciesID,
			ArchetypeID:    req.ArchetypeID,
			KeywordChoices: req.KeywordChoices,
			Attributes:     req.Attributes,
			Skills:         req.Skills,
		})
	}
	if err != nil {
		return character.Character{}, s.createError(err, req)
	}

	if c.ID, err = s.idGen(); err != nil {
		return character.Character{}, fmt.Errorf("generate character id: %w", err)
	}
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	if err := s.characters.CreateCharacter(ctx, c); err != nil {
		return character.Character{}, domainError(err)
	}
	return c, nil
}

// createError adds the request's species to mismatch errors, which only
// know the archetype.
func (s *Service) createError(err error, req CreateCharacterRequest) error {
	mapped := domainError(err)
	if apperrors.IsCode(mapped, apperrors.CodeCharacterArchetypeSpeciesMismatch) {
		if meta := apperrors.GetMetadata(mapped); meta != nil {
			meta["SpeciesID"] = req.SpeciesID
		}
	}
	return mapped
}

func newCreature(req CreateCharacterRequest) (character.Character, error) {
	for name := range req.Attributes {
		if !property.IsAttribute(name) {
			return character.Character{}, &character.BuildError{Err: character.ErrAttributeOutOfRange, Field: name}
		}
	}
	for name := range req.Skills {
		if !property.IsSkill(name) {
			return character.Character{}, &character.BuildError{Err: character.ErrSkillOutOfRange, Field: name}
		}
	}
	threat, err := character.ParseThreat(req.Threat)
	if err != nil {
		return character.Character{}, err
	}
	c, err := character.NewCreature(req.Name, req.Tier, threat)
	if err != nil {
		return character.Character{}, err
	}
	if req.Rank > 0 {
		c.Rank = req.Rank
	}
	c.SpeciesID = req.SpeciesID
	for _, kw := range req.Keywords {
		if kw = strings.ToUpper(strings.TrimSpace(kw)); kw != "" && !c.HasKeyword(kw) {
			c.Keywords = append(c.Keywords, kw)
		}
	}

	g := c.Graph
	for i, attr := range property.Attributes {
		v, ok := lookupStat(req.Attributes, attr)
		if !ok {
			continue
		}
		if g, err = g.Add(property.Node{
			ID: property.AttributePrefix + attr, Type: property.TypeAttribute, Name: attr,
			Order: 10 + i, Tags: []string{"attribute"}, Enabled: true, BaseValue: float64(v),
		}, ""); err != nil {
			return character.Character{}, err
		}
	}
	for i, skill := range property.Skills {
		v, ok := lookupStat(req.Skills, skill)
		if !ok {
			continue
		}
		if g, err = g.Add(property.Node{
			ID: property.SkillPrefix + skill, Type: property.TypeSkill, Name: property.SkillDisplayNames[skill],
			Order: 100 + i, Tags: []string{"skill"}, Enabled: true, BaseValue: float64(v),
			LinkedAttribute: property.SkillAttribute[skill],
		}, ""); err != nil {
			return character.Character{}, err
		}
	}
	c.Graph = g
	return c, nil
}

// lookupStat finds canonical in values keyed by any spelling.
func lookupStat(values map[string]int, canonical string) (int, bool) {
	for name, v := range values {
		if c, ok := property.CanonicalStat(name); ok && c == canonical {
			return v, true
		}
	}
	return 0, false
}

// GetCharacter returns a stored entity.
func (s *Service) GetCharacter(ctx context.Context, id string) (character.Character, error) {
	c, err := s.characters.GetCharacter(ctx, id)
	if err != nil {
		return character.Character{}, domainError(err)
	}
	return c, nil
}

// ListCharacters returns stored entities ordered by id.
func (s *Service) ListCharacters(ctx context.Context, size int, pageToken string) (CharacterPage, error) {
	page, err := s.characters.ListCharacters(ctx, pageSize(size), pageToken)
	if err != nil {
		return CharacterPage{}, domainError(err)
	}
	return CharacterPage{Characters: page.Characters, NextPageToken: page.NextPageToken}, nil
}

// DeleteCharacter removes a stored entity. Its rolls stay in the log.
func (s *Service) DeleteCharacter(ctx context.Context, id string) error {
	return domainError(s.characters.DeleteCharacter(ctx, id))
}

// AddProperty inserts node under parentID (the root when empty) and stores
// the new snapshot.
func (s *Service) AddProperty(ctx context.Context, characterID string, node property.Node, parentID string) (character.Character, error) {
	return s.editGraph(ctx, characterID, func(g property.Graph) (property.Graph, error) {
		node.Children = nil
		return g.Add(node, parentID)
	})
}

// RemoveProperty removes propertyID and its subtree.
func (s *Service) RemoveProperty(ctx context.Context, characterID, propertyID string) (character.Character, error) {
	return s.editGraph(ctx, characterID, func(g property.Graph) (property.Graph, error) {
		return g.Remove(propertyID)
	})
}

// SetPropertyEnabled toggles propertyID. Disabled properties and their
// subtrees are left out of computation.
func (s *Service) SetPropertyEnabled(ctx context.Context, characterID, propertyID string, enabled bool) (character.Character, error) {
	return s.editGraph(ctx, characterID, func(g property.Graph) (property.Graph, error) {
		return g.SetEnabled(propertyID, enabled)
	})
}

func (s *Service) editGraph(ctx context.Context, characterID string, edit func(property.Graph) (property.Graph, error)) (character.Character, error) {
	c, err := s.characters.GetCharacter(ctx, characterID)
	if err != nil {
		return character.Character{}, domainError(err)
	}
	g, err := edit(c.Graph)
	if err != nil {
		return character.Character{}, domainError(err)
	}
	c.Graph = g
	c.UpdatedAt = s.now()
	if err := s.characters.PutCharacter(ctx, c); err != nil {
		return character.Character{}, domainError(err)
	}
	return c, nil
}
