package errors

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGRPCCode(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeCharacterEmptyName, codes.InvalidArgument},
		{CodeDiceInvalidPool, codes.InvalidArgument},
		{CodeDicePoolTooLarge, codes.InvalidArgument},
		{CodeCharacterXPExceeded, codes.FailedPrecondition},
		{CodeNotFound, codes.NotFound},
		{CodePropertyNotFound, codes.NotFound},
		{CodeAlreadyExists, codes.AlreadyExists},
		{CodeInvalidPageToken, codes.InvalidArgument},
		{CodeUnknown, codes.Internal},
	}
	for _, tt := range tests {
		if got := tt.code.GRPCCode(); got != tt.want {
			t.Errorf("%s.GRPCCode() = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestHandleErrorRoundTrip(t *testing.T) {
	cause := errors.New("no such species")
	domainErr := WrapWithMetadata(CodeCharacterUnknownSpecies, "unknown species tau", map[string]string{"SpeciesID": "tau"}, cause)

	grpcErr := HandleError(fmt.Errorf("build: %w", domainErr), "pt-BR")
	st, ok := status.FromError(grpcErr)
	if !ok {
		t.Fatalf("expected status, got %v", grpcErr)
	}
	if st.Code() != codes.InvalidArgument {
		t.Errorf("code = %v", st.Code())
	}
	if msg, ok := LocalizedMessage(grpcErr); !ok || msg != "Espécie desconhecida: tau." {
		t.Errorf("localized = %q, %v", msg, ok)
	}

	back := FromGRPC(grpcErr)
	if !IsCode(back, CodeCharacterUnknownSpecies) {
		t.Errorf("round trip code = %s", GetCode(back))
	}
	if GetMetadata(back)["SpeciesID"] != "tau" {
		t.Errorf("metadata = %v", GetMetadata(back))
	}
}

func TestHandleErrorUnknown(t *testing.T) {
	if HandleError(nil, "") != nil {
		t.Fatal("nil error should stay nil")
	}
	st, _ := status.FromError(HandleError(errors.New("boom"), ""))
	if st.Code() != codes.Internal {
		t.Errorf("code = %v", st.Code())
	}
	passthrough := status.Error(codes.Unavailable, "down")
	if got := HandleError(passthrough, ""); got != passthrough {
		t.Errorf("status errors should pass through, got %v", got)
	}
	if GetCode(errors.New("plain")) != CodeUnknown {
		t.Error("plain errors have no code")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(CodeNotFound, "character missing"))
	if !errors.Is(err, New(CodeNotFound, "")) {
		t.Error("expected errors.Is to match by code")
	}
	if errors.Is(err, New(CodeAlreadyExists, "")) {
		t.Error("different codes must not match")
	}
}

func TestUserMessage(t *testing.T) {
	err := fmt.Errorf("list: %w", WithMetadata(CodeCatalogInvalidKind, "unknown kind", map[string]string{"Kind": "talents"}))
	if msg, ok := UserMessage(err, "pt-BR"); !ok || msg != "Catálogo desconhecido: talents." {
		t.Errorf("pt-BR = %q, %v", msg, ok)
	}
	if msg, ok := UserMessage(err, ""); !ok || msg != "Unknown catalog talents." {
		t.Errorf("default = %q, %v", msg, ok)
	}
	if _, ok := UserMessage(errors.New("plain"), "en-US"); ok {
		t.Error("plain errors have no user message")
	}
}
