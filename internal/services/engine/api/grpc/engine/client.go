package engine

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/louisbranch/wrathforge/internal/platform/errors"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/character"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/property"
	"github.com/louisbranch/wrathforge/internal/services/engine/service"
)

// Client calls a remote engine with the application service's signatures.
// Failures carrying engine error details come back as platform errors with
// their code and metadata.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient returns a client over conn.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, req any) (Resp, error) {
	var resp Resp
	in, err := encode(req)
	if err != nil {
		return resp, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FullMethod(method), in, out); err != nil {
		return resp, apperrors.FromGRPC(err)
	}
	if err := decode(out, &resp, false); err != nil {
		return resp, fmt.Errorf("%s response: %w", method, err)
	}
	return resp, nil
}

func (c *Client) CreateCharacter(ctx context.Context, req service.CreateCharacterRequest) (character.Character, error) {
	return invoke[character.Character](ctx, c, MethodCreateCharacter, req)
}

func (c *Client) GetCharacter(ctx context.Context, id string) (character.Character, error) {
	return invoke[character.Character](ctx, c, MethodGetCharacter, GetCharacterRequest{CharacterID: id})
}

func (c *Client) ListCharacters(ctx context.Context, size int, pageToken string) (service.CharacterPage, error) {
	return invoke[service.CharacterPage](ctx, c, MethodListCharacters, ListCharactersRequest{PageSize: size, PageToken: pageToken})
}

func (c *Client) DeleteCharacter(ctx context.Context, id string) error {
	_, err := invoke[DeleteCharacterResponse](ctx, c, MethodDeleteCharacter, DeleteCharacterRequest{CharacterID: id})
	return err
}

func (c *Client) AddProperty(ctx context.Context, characterID string, node property.Node, parentID string) (character.Character, error) {
	return invoke[character.Character](ctx, c, MethodAddProperty, AddPropertyRequest{CharacterID: characterID, ParentID: parentID, Property: node})
}

func (c *Client) RemoveProperty(ctx context.Context, characterID, propertyID string) (character.Character, error) {
	return invoke[character.Character](ctx, c, MethodRemoveProperty, RemovePropertyRequest{CharacterID: characterID, PropertyID: propertyID})
}

func (c *Client) SetPropertyEnabled(ctx context.Context, characterID, propertyID string, enabled bool) (character.Character, error) {
	return invoke[character.Character](ctx, c, MethodSetPropertyEnabled, SetPropertyEnabledRequest{CharacterID: characterID, PropertyID: propertyID, Enabled: enabled})
}

func (c *Client) ComputeCharacter(ctx context.Context, req service.ComputeRequest) (service.ComputeResponse, error) {
	return invoke[service.ComputeResponse](ctx, c, MethodComputeCharacter, req)
}

func (c *Client) PerformTest(ctx context.Context, req service.TestRequest) (service.TestResponse, error) {
	return invoke[service.TestResponse](ctx, c, MethodPerformTest, req)
}

func (c *Client) OpposedTest(ctx context.Context, req service.OpposedRequest) (service.OpposedResponse, error) {
	return invoke[service.OpposedResponse](ctx, c, MethodOpposedTest, req)
}

func (c *Client) ApplyAbilities(ctx context.Context, req service.ApplyAbilitiesRequest) (service.ApplyAbilitiesResponse, error) {
	return invoke[service.ApplyAbilitiesResponse](ctx, c, MethodApplyAbilities, req)
}

func (c *Client) Probability(ctx context.Context, req service.ProbabilityRequest) (service.ProbabilityResponse, error) {
	return invoke[service.ProbabilityResponse](ctx, c, MethodProbability, req)
}

func (c *Client) ListCatalog(ctx context.Context, req service.ListCatalogRequest) (service.ListCatalogResponse, error) {
	return invoke[service.ListCatalogResponse](ctx, c, MethodListCatalog, req)
}

func (c *Client) ListRolls(ctx context.Context, req service.ListRollsRequest) (service.ListRollsResponse, error) {
	return invoke[service.ListRollsResponse](ctx, c, MethodListRolls, req)
}
