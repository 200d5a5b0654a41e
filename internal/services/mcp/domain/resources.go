package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/wrathforge/internal/services/engine/service"
)

const (
	characterURIPrefix = "character://"
	catalogURIPrefix   = "catalog://"
)

// CharacterResourceTemplate exposes stored characters as JSON documents.
func CharacterResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "character",
		Title:       "Character",
		Description: "A stored character with its property graph. URI format: character://{character_id}",
		MIMEType:    "application/json",
		URITemplate: "character://{character_id}",
	}
}

// CatalogResourceTemplate exposes whole catalogs as JSON documents.
func CatalogResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "catalog",
		Title:       "Catalog",
		Description: "All entries of one catalog. URI format: catalog://{kind} with kind species, archetypes, abilities or keywords",
		MIMEType:    "application/json",
		URITemplate: "catalog://{kind}",
	}
}

// CharacterResourceHandler reads character://{character_id}.
func CharacterResourceHandler(engine Engine) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if engine == nil {
			return nil, fmt.Errorf("engine is not configured")
		}
		uri, characterID, err := resourceParam(req, characterURIPrefix)
		if err != nil {
			return nil, err
		}
		callCtx, cancel, _, err := begin(ctx, "")
		if err != nil {
			return nil, err
		}
		defer cancel()

		c, err := engine.GetCharacter(callCtx, characterID)
		if err != nil {
			return nil, toolError("character read", err, "")
		}
		return jsonResource(uri, c)
	}
}

// CatalogResourceHandler reads catalog://{kind}.
func CatalogResourceHandler(engine Engine) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if engine == nil {
			return nil, fmt.Errorf("engine is not configured")
		}
		uri, kind, err := resourceParam(req, catalogURIPrefix)
		if err != nil {
			return nil, err
		}
		callCtx, cancel, _, err := begin(ctx, "")
		if err != nil {
			return nil, err
		}
		defer cancel()

		resp, err := engine.ListCatalog(callCtx, service.ListCatalogRequest{Kind: kind})
		if err != nil {
			return nil, toolError("catalog read", err, "")
		}
		return jsonResource(uri, resp)
	}
}

// resourceParam returns the URI and the single path segment after prefix.
func resourceParam(req *mcp.ReadResourceRequest, prefix string) (string, string, error) {
	if req == nil || req.Params == nil || req.Params.URI == "" {
		return "", "", fmt.Errorf("resource uri is required")
	}
	uri := req.Params.URI
	rest, ok := strings.CutPrefix(uri, prefix)
	rest = strings.TrimSpace(rest)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", "", fmt.Errorf("invalid resource uri %q: expected %s{id}", uri, prefix)
	}
	return uri, rest, nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
