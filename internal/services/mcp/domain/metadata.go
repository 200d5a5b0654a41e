package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc/metadata"

	"github.com/louisbranch/wrathforge/internal/platform/id"
	"github.com/louisbranch/wrathforge/internal/platform/requestctx"
	"github.com/louisbranch/wrathforge/internal/platform/timeouts"
	enginegrpc "github.com/louisbranch/wrathforge/internal/services/engine/api/grpc/engine"
)

// RequestIDMetaKey is the CallToolResult meta key holding the engine
// request id.
const RequestIDMetaKey = "request_id"

// callTimeout caps one engine call made for a tool.
const callTimeout = timeouts.GRPCRequest

// ToolCallMetadata carries the correlation id of one tool call.
type ToolCallMetadata struct {
	RequestID string
}

// NewOutgoingContext tags ctx with a fresh request id and the caller's
// locale, both as gRPC metadata for a remote engine and as request context
// values for an in-process one.
func NewOutgoingContext(ctx context.Context, locale string) (context.Context, ToolCallMetadata, error) {
	requestID, err := id.NewID()
	if err != nil {
		return nil, ToolCallMetadata{}, fmt.Errorf("generate request id: %w", err)
	}
	callCtx := metadata.AppendToOutgoingContext(ctx, enginegrpc.RequestIDHeader, requestID)
	callCtx = enginegrpc.WithLocale(callCtx, locale)
	callCtx = requestctx.WithRequestID(callCtx, requestID)
	callCtx = requestctx.WithLocale(callCtx, locale)
	return callCtx, ToolCallMetadata{RequestID: requestID}, nil
}

// CallToolResultWithMetadata builds a tool result with correlation metadata.
// The SDK fills in the content from the structured result.
func CallToolResultWithMetadata(meta ToolCallMetadata) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Meta: map[string]any{
			RequestIDMetaKey: meta.RequestID,
		},
	}
}

// begin bounds a tool's engine call and tags it for correlation.
func begin(ctx context.Context, locale string) (context.Context, context.CancelFunc, ToolCallMetadata, error) {
	runCtx, cancel := context.WithTimeout(ctx, callTimeout)
	callCtx, meta, err := NewOutgoingContext(runCtx, locale)
	if err != nil {
		cancel()
		return nil, nil, ToolCallMetadata{}, fmt.Errorf("create request metadata: %w", err)
	}
	return callCtx, cancel, meta, nil
}
