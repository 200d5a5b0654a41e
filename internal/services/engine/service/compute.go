package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/louisbranch/wrathforge/internal/services/engine/domain/character"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/compute"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/property"
)

// ComputeRequest names a stored character, or carries an inline graph with
// its tier and optional threat.
type ComputeRequest struct {
	CharacterID string          `json:"characterId,omitempty"`
	Graph       *property.Graph `json:"graph,omitempty"`
	Tier        int             `json:"tier,omitempty"`
	Threat      string          `json:"threat,omitempty"`
}

// ComputeResponse is the computed snapshot of an entity with its audit
// trail.
type ComputeResponse struct {
	CharacterID  string                  `json:"characterId,omitempty"`
	Stats        compute.EntityStats     `json:"stats"`
	Computations []compute.Computation   `json:"computations"`
	Errors       []compute.PropertyError `json:"errors,omitempty"`
	Abilities    []string                `json:"abilities,omitempty"`
}

// ComputeCharacter recomputes an entity's stats. Formula failures are
// reported per property in Errors and do not fail the call.
func (s *Service) ComputeCharacter(ctx context.Context, req ComputeRequest) (ComputeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "engine.ComputeCharacter")
	defer span.End()

	c, err := s.resolveEntity(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return ComputeResponse{}, err
	}
	stats, result := c.Stats()
	span.SetAttributes(
		attribute.String("wrathforge.character_id", c.ID),
		attribute.Int("wrathforge.property_count", c.Graph.Len()),
		attribute.Int("wrathforge.error_count", len(result.Errors)),
	)
	return ComputeResponse{
		CharacterID:  c.ID,
		Stats:        stats,
		Computations: result.Computations,
		Errors:       result.Errors,
		Abilities:    c.Abilities(),
	}, nil
}

func (s *Service) resolveEntity(ctx context.Context, req ComputeRequest) (character.Character, error) {
	if req.CharacterID != "" {
		c, err := s.characters.GetCharacter(ctx, req.CharacterID)
		if err != nil {
			return character.Character{}, domainError(err)
		}
		return c, nil
	}
	if req.Graph == nil {
		return character.Character{}, domainError(property.ErrMissingRoot)
	}
	tier := req.Tier
	if tier == 0 {
		tier = character.MinTier
	}
	c := character.Character{Kind: character.KindCharacter, Tier: tier, Rank: 1, Graph: *req.Graph}
	if req.Threat != "" {
		threat, err := character.ParseThreat(req.Threat)
		if err != nil {
			return character.Character{}, domainError(err)
		}
		c.Kind = character.KindBestiary
		c.Threat = threat
	}
	if tier < character.MinTier || tier > character.MaxTier {
		return character.Character{}, domainError(&character.BuildError{
			Err: character.ErrInvalidTier, Field: "tier", Value: tier, Min: character.MinTier, Max: character.MaxTier,
		})
	}
	return c, nil
}
