package service

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/louisbranch/wrathforge/internal/platform/errors"
	"github.com/louisbranch/wrathforge/internal/services/engine/content"
)

// ListCatalogRequest names a catalog and an optional AIP-160 filter.
type ListCatalogRequest struct {
	Kind   string `json:"kind"`
	Filter string `json:"filter,omitempty"`
}

// ListCatalogResponse holds the matching entries in catalog order.
type ListCatalogResponse struct {
	Kind    string `json:"kind"`
	Entries []any  `json:"entries"`
}

// ListCatalog lists species, archetypes, abilities or keywords.
func (s *Service) ListCatalog(ctx context.Context, req ListCatalogRequest) (ListCatalogResponse, error) {
	_, span := s.tracer.Start(ctx, "engine.ListCatalog")
	defer span.End()

	kind := content.Kind(strings.ToLower(strings.TrimSpace(req.Kind)))
	entries, err := s.content.List(kind, req.Filter)
	if err != nil {
		if errors.Is(err, content.ErrUnknownKind) {
			return ListCatalogResponse{}, apperrors.WrapWithMetadata(apperrors.CodeCatalogInvalidKind, err.Error(),
				map[string]string{"Kind": req.Kind}, err)
		}
		return ListCatalogResponse{}, apperrors.Wrap(apperrors.CodeCatalogInvalidFilter, err.Error(), err)
	}
	if entries == nil {
		entries = []any{}
	}
	return ListCatalogResponse{Kind: string(kind), Entries: entries}, nil
}
