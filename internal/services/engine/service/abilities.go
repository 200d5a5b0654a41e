package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/louisbranch/wrathforge/internal/services/engine/domain/ability"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/character"
)

// ApplyAbilitiesRequest evaluates abilities against a test's context
// without rolling. With a CharacterID and no Abilities, the character's
// granted abilities are used, along with its rank and keywords.
type ApplyAbilitiesRequest struct {
	CharacterID string   `json:"characterId,omitempty"`
	Abilities   []string `json:"abilities,omitempty"`
	Rank        int      `json:"rank,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Skill       string   `json:"skill,omitempty"`
	Attribute   string   `json:"attribute,omitempty"`
	Circumstances
}

// ApplyAbilitiesResponse lists the abilities that applied and their
// combined effect.
type ApplyAbilitiesResponse struct {
	ability.Result
	Rank int `json:"rank"`
}

// ApplyAbilities runs the ability engine on its own.
func (s *Service) ApplyAbilities(ctx context.Context, req ApplyAbilitiesRequest) (ApplyAbilitiesResponse, error) {
	ctx, span := s.tracer.Start(ctx, "engine.ApplyAbilities")
	defer span.End()

	var (
		c      character.Character
		loaded bool
	)
	if req.CharacterID != "" {
		var err error
		c, err = s.characters.GetCharacter(ctx, req.CharacterID)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return ApplyAbilitiesResponse{}, domainError(err)
		}
		loaded = true
	}
	ids := req.Abilities
	if ids == nil && loaded {
		ids = c.Abilities()
	}
	if err := s.checkAbilities(ids); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return ApplyAbilitiesResponse{}, err
	}

	actx := s.abilityContext(c, loaded, TestSide{
		Rank:      req.Rank,
		Keywords:  req.Keywords,
		Skill:     req.Skill,
		Attribute: req.Attribute,
	}, req.Circumstances)
	result := s.abilities.Apply(ids, actx)
	span.SetAttributes(
		attribute.Int("wrathforge.ability_count", len(ids)),
		attribute.Int("wrathforge.bonus_dice", result.BonusDice),
	)
	return ApplyAbilitiesResponse{Result: result, Rank: actx.Rank}, nil
}
