package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/louisbranch/wrathforge/internal/platform/errors"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/character"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/property"
	"github.com/louisbranch/wrathforge/internal/services/engine/service"
)

// Engine is the rules engine behind the tools. *service.Service and the
// gRPC engine client both implement it.
type Engine interface {
	CreateCharacter(ctx context.Context, req service.CreateCharacterRequest) (character.Character, error)
	GetCharacter(ctx context.Context, id string) (character.Character, error)
	ListCharacters(ctx context.Context, size int, pageToken string) (service.CharacterPage, error)
	DeleteCharacter(ctx context.Context, id string) error
	AddProperty(ctx context.Context, characterID string, node property.Node, parentID string) (character.Character, error)
	RemoveProperty(ctx context.Context, characterID, propertyID string) (character.Character, error)
	SetPropertyEnabled(ctx context.Context, characterID, propertyID string, enabled bool) (character.Character, error)
	ComputeCharacter(ctx context.Context, req service.ComputeRequest) (service.ComputeResponse, error)
	PerformTest(ctx context.Context, req service.TestRequest) (service.TestResponse, error)
	OpposedTest(ctx context.Context, req service.OpposedRequest) (service.OpposedResponse, error)
	ApplyAbilities(ctx context.Context, req service.ApplyAbilitiesRequest) (service.ApplyAbilitiesResponse, error)
	Probability(ctx context.Context, req service.ProbabilityRequest) (service.ProbabilityResponse, error)
	ListCatalog(ctx context.Context, req service.ListCatalogRequest) (service.ListCatalogResponse, error)
	ListRolls(ctx context.Context, req service.ListRollsRequest) (service.ListRollsResponse, error)
}

// toolError describes a failed engine call. Domain errors carry their
// localized message and code so the model can correct its input.
func toolError(op string, err error, locale string) error {
	if msg, ok := apperrors.UserMessage(err, locale); ok {
		return fmt.Errorf("%s failed: %s [%s]", op, msg, apperrors.GetCode(err))
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

// asObject re-encodes v as a generic JSON object.
func asObject(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// fromObject decodes a generic JSON object into v, rejecting unknown
// fields.
func fromObject(in map[string]any, v any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nonNilInts(values []int) []int {
	if values == nil {
		return []int{}
	}
	return values
}
