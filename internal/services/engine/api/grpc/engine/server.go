package engine

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/louisbranch/wrathforge/internal/platform/errors"
	"github.com/louisbranch/wrathforge/internal/platform/requestctx"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/character"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/property"
	"github.com/louisbranch/wrathforge/internal/services/engine/service"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "wrathforge.engine.v1.EngineService"

// Method names.
const (
	MethodCreateCharacter    = "CreateCharacter"
	MethodGetCharacter       = "GetCharacter"
	MethodListCharacters     = "ListCharacters"
	MethodDeleteCharacter    = "DeleteCharacter"
	MethodAddProperty        = "AddProperty"
	MethodRemoveProperty     = "RemoveProperty"
	MethodSetPropertyEnabled = "SetPropertyEnabled"
	MethodComputeCharacter   = "ComputeCharacter"
	MethodPerformTest        = "PerformTest"
	MethodOpposedTest        = "OpposedTest"
	MethodApplyAbilities     = "ApplyAbilities"
	MethodProbability        = "Probability"
	MethodListCatalog        = "ListCatalog"
	MethodListRolls          = "ListRolls"
)

// FullMethod returns the gRPC path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// GetCharacterRequest names a stored character.
type GetCharacterRequest struct {
	CharacterID string `json:"characterId"`
}

// ListCharactersRequest pages through stored characters.
type ListCharactersRequest struct {
	PageSize  int    `json:"pageSize,omitempty"`
	PageToken string `json:"pageToken,omitempty"`
}

// DeleteCharacterRequest names the character to delete.
type DeleteCharacterRequest struct {
	CharacterID string `json:"characterId"`
}

// DeleteCharacterResponse is empty.
type DeleteCharacterResponse struct{}

// AddPropertyRequest inserts Property under ParentID, or the root when
// ParentID is empty.
type AddPropertyRequest struct {
	CharacterID string        `json:"characterId"`
	ParentID    string        `json:"parentId,omitempty"`
	Property    property.Node `json:"property"`
}

// RemovePropertyRequest removes a property and its subtree.
type RemovePropertyRequest struct {
	CharacterID string `json:"characterId"`
	PropertyID  string `json:"propertyId"`
}

// SetPropertyEnabledRequest toggles a property.
type SetPropertyEnabledRequest struct {
	CharacterID string `json:"characterId"`
	PropertyID  string `json:"propertyId"`
	Enabled     bool   `json:"enabled"`
}

type handlerFunc func(ctx context.Context, svc *service.Service, in *structpb.Struct) (any, error)

// unary adapts a service operation to a Struct handler.
func unary[Req, Resp any](call func(*service.Service, context.Context, Req) (Resp, error)) handlerFunc {
	return func(ctx context.Context, svc *service.Service, in *structpb.Struct) (any, error) {
		var req Req
		if err := decode(in, &req, true); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return call(svc, ctx, req)
	}
}

type limitedRequest interface {
	CheckInputLimits() error
}

// limited rejects requests above the input limits before call runs.
func limited[Req limitedRequest, Resp any](call func(*service.Service, context.Context, Req) (Resp, error)) func(*service.Service, context.Context, Req) (Resp, error) {
	return func(s *service.Service, ctx context.Context, req Req) (Resp, error) {
		if err := req.CheckInputLimits(); err != nil {
			var zero Resp
			return zero, err
		}
		return call(s, ctx, req)
	}
}

var handlers = map[string]handlerFunc{
	MethodCreateCharacter: unary((*service.Service).CreateCharacter),
	MethodGetCharacter: unary(func(s *service.Service, ctx context.Context, req GetCharacterRequest) (character.Character, error) {
		return s.GetCharacter(ctx, req.CharacterID)
	}),
	MethodListCharacters: unary(func(s *service.Service, ctx context.Context, req ListCharactersRequest) (service.CharacterPage, error) {
		return s.ListCharacters(ctx, req.PageSize, req.PageToken)
	}),
	MethodDeleteCharacter: unary(func(s *service.Service, ctx context.Context, req DeleteCharacterRequest) (DeleteCharacterResponse, error) {
		return DeleteCharacterResponse{}, s.DeleteCharacter(ctx, req.CharacterID)
	}),
	MethodAddProperty: unary(func(s *service.Service, ctx context.Context, req AddPropertyRequest) (character.Character, error) {
		return s.AddProperty(ctx, req.CharacterID, req.Property, req.ParentID)
	}),
	MethodRemoveProperty: unary(func(s *service.Service, ctx context.Context, req RemovePropertyRequest) (character.Character, error) {
		return s.RemoveProperty(ctx, req.CharacterID, req.PropertyID)
	}),
	MethodSetPropertyEnabled: unary(func(s *service.Service, ctx context.Context, req SetPropertyEnabledRequest) (character.Character, error) {
		return s.SetPropertyEnabled(ctx, req.CharacterID, req.PropertyID, req.Enabled)
	}),
	MethodComputeCharacter: unary((*service.Service).ComputeCharacter),
	MethodPerformTest:      unary(limited((*service.Service).PerformTest)),
	MethodOpposedTest:      unary(limited((*service.Service).OpposedTest)),
	MethodApplyAbilities:   unary((*service.Service).ApplyAbilities),
	MethodProbability:      unary(limited((*service.Service).Probability)),
	MethodListCatalog:      unary((*service.Service).ListCatalog),
	MethodListRolls:        unary((*service.Service).ListRolls),
}

// methodOrder fixes the order methods are listed in the service descriptor.
var methodOrder = []string{
	MethodCreateCharacter,
	MethodGetCharacter,
	MethodListCharacters,
	MethodDeleteCharacter,
	MethodAddProperty,
	MethodRemoveProperty,
	MethodSetPropertyEnabled,
	MethodComputeCharacter,
	MethodPerformTest,
	MethodOpposedTest,
	MethodApplyAbilities,
	MethodProbability,
	MethodListCatalog,
	MethodListRolls,
}

type structHandler interface {
	handle(ctx context.Context, method string, in *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the engine service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*structHandler)(nil),
	Methods:     methodDescs(),
	Streams:     []grpc.StreamDesc{},
}

func methodDescs() []grpc.MethodDesc {
	out := make([]grpc.MethodDesc, 0, len(methodOrder))
	for _, name := range methodOrder {
		out = append(out, grpc.MethodDesc{
			MethodName: name,
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(structpb.Struct)
				if err := dec(in); err != nil {
					return nil, err
				}
				h := srv.(structHandler)
				if interceptor == nil {
					return h.handle(ctx, name, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
				return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
					return h.handle(ctx, name, req.(*structpb.Struct))
				})
			},
		})
	}
	return out
}

// Server serves the engine service from an application service.
type Server struct {
	svc *service.Service
}

// NewServer returns a Server over svc.
func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

// Register installs the engine service on registrar.
func Register(registrar grpc.ServiceRegistrar, svc *service.Service) {
	registrar.RegisterService(&ServiceDesc, NewServer(svc))
}

func (s *Server) handle(ctx context.Context, method string, in *structpb.Struct) (*structpb.Struct, error) {
	h, ok := handlers[method]
	if !ok {
		return nil, status.Errorf(codes.Unimplemented, "method %s not implemented", method)
	}
	if s == nil || s.svc == nil {
		return nil, status.Error(codes.Unavailable, "engine service is not configured")
	}
	resp, err := h(ctx, s.svc, in)
	if err != nil {
		converted := apperrors.HandleError(err, requestctx.LocaleFromContext(ctx))
		if status.Code(converted) == codes.Internal {
			log.Printf("%s failed (request %s): %v", method, requestctx.RequestIDFromContext(ctx), err)
		}
		return nil, converted
	}
	out, err := encode(resp)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("%s: %v", method, err))
	}
	return out, nil
}
