package engine

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/louisbranch/wrathforge/internal/platform/id"
	"github.com/louisbranch/wrathforge/internal/platform/requestctx"
)

// LocaleHeader is the gRPC metadata key selecting the language of error
// messages.
const LocaleHeader = "x-wrathforge-locale"

// RequestIDHeader is the gRPC metadata key for request correlation ids.
const RequestIDHeader = "x-wrathforge-request-id"

const acceptLanguageHeader = "accept-language"

// WithLocale returns a context whose outgoing calls ask for locale.
func WithLocale(ctx context.Context, locale string) context.Context {
	if locale = strings.TrimSpace(locale); locale == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, LocaleHeader, locale)
}

// UnaryServerInterceptor copies the caller's locale into the request
// context and makes sure every call has a request id, echoing it back in the
// response headers.
func UnaryServerInterceptor(idGenerator func() (string, error)) grpc.UnaryServerInterceptor {
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)

		requestID := firstValue(md, RequestIDHeader)
		if requestID == "" {
			generated, err := idGenerator()
			if err != nil {
				return nil, status.Errorf(codes.Internal, "generate request id: %v", err)
			}
			requestID = generated
		}
		ctx = requestctx.WithRequestID(ctx, requestID)
		ctx = requestctx.WithLocale(ctx, requestLocale(md))
		if err := grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID)); err != nil {
			return nil, status.Errorf(codes.Internal, "set response metadata: %v", err)
		}
		return handler(ctx, req)
	}
}

// requestLocale prefers the explicit locale header over the first
// Accept-Language tag.
func requestLocale(md metadata.MD) string {
	if locale := firstValue(md, LocaleHeader); locale != "" {
		return locale
	}
	accept := firstValue(md, acceptLanguageHeader)
	tag, _, _ := strings.Cut(accept, ",")
	tag, _, _ = strings.Cut(tag, ";")
	return strings.TrimSpace(tag)
}

// firstValue returns the first printable ASCII value for key.
func firstValue(md metadata.MD, key string) string {
	for _, value := range md.Get(key) {
		if isPrintableASCII(value) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func isPrintableASCII(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < 0x20 || value[i] > 0x7e {
			return false
		}
	}
	return true
}
