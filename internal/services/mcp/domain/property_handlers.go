package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/wrathforge/internal/services/engine/domain/property"
)

// PropertyAddInput represents the MCP tool input for adding a property.
type PropertyAddInput struct {
	CharacterID string         `json:"character_id" jsonschema:"character identifier"`
	ParentID    string         `json:"parent_id,omitempty" jsonschema:"folder to add under, defaults to the root"`
	Property    map[string]any `json:"property" jsonschema:"property node (id, type, name and the fields of its type)"`
	Locale      string         `json:"locale,omitempty" jsonschema:"optional locale for error messages"`
}

// PropertyRemoveInput represents the MCP tool input for removing a
// property and its descendants.
type PropertyRemoveInput struct {
	CharacterID string `json:"character_id" jsonschema:"character identifier"`
	PropertyID  string `json:"property_id" jsonschema:"property identifier"`
	Locale      string `json:"locale,omitempty" jsonschema:"optional locale for error messages"`
}

// PropertySetEnabledInput represents the MCP tool input for toggling a
// property.
type PropertySetEnabledInput struct {
	CharacterID string `json:"character_id" jsonschema:"character identifier"`
	PropertyID  string `json:"property_id" jsonschema:"property identifier"`
	Enabled     bool   `json:"enabled" jsonschema:"whether the property applies"`
	Locale      string `json:"locale,omitempty" jsonschema:"optional locale for error messages"`
}

// PropertyAddTool defines the MCP tool schema for adding properties.
func PropertyAddTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "property_add",
		Description: "Adds a property (effect, bonus, feature, resource...) to a character sheet",
	}
}

// PropertyRemoveTool defines the MCP tool schema for removing properties.
func PropertyRemoveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "property_remove",
		Description: "Removes a property and everything under it from a character sheet",
	}
}

// PropertySetEnabledTool defines the MCP tool schema for toggling properties.
func PropertySetEnabledTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "property_set_enabled",
		Description: "Enables or disables a property without removing it",
	}
}

// PropertyAddHandler executes a property addition.
func PropertyAddHandler(engine Engine) mcp.ToolHandlerFor[PropertyAddInput, CharacterResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PropertyAddInput) (*mcp.CallToolResult, CharacterResult, error) {
		characterID := strings.TrimSpace(input.CharacterID)
		if characterID == "" {
			return nil, CharacterResult{}, fmt.Errorf("character_id is required")
		}
		if input.Property == nil {
			return nil, CharacterResult{}, fmt.Errorf("property is required")
		}
		var node property.Node
		if err := fromObject(input.Property, &node); err != nil {
			return nil, CharacterResult{}, fmt.Errorf("decode property: %w", err)
		}

		callCtx, cancel, meta, err := begin(ctx, input.Locale)
		if err != nil {
			return nil, CharacterResult{}, err
		}
		defer cancel()

		c, err := engine.AddProperty(callCtx, characterID, node, strings.TrimSpace(input.ParentID))
		if err != nil {
			return nil, CharacterResult{}, toolError("property add", err, input.Locale)
		}
		return CallToolResultWithMetadata(meta), CharacterResult{Character: summarize(c)}, nil
	}
}

// PropertyRemoveHandler executes a property removal.
func PropertyRemoveHandler(engine Engine) mcp.ToolHandlerFor[PropertyRemoveInput, CharacterResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PropertyRemoveInput) (*mcp.CallToolResult, CharacterResult, error) {
		characterID, propertyID, err := propertyRef(input.CharacterID, input.PropertyID)
		if err != nil {
			return nil, CharacterResult{}, err
		}
		callCtx, cancel, meta, err := begin(ctx, input.Locale)
		if err != nil {
			return nil, CharacterResult{}, err
		}
		defer cancel()

		c, err := engine.RemoveProperty(callCtx, characterID, propertyID)
		if err != nil {
			return nil, CharacterResult{}, toolError("property remove", err, input.Locale)
		}
		return CallToolResultWithMetadata(meta), CharacterResult{Character: summarize(c)}, nil
	}
}

// PropertySetEnabledHandler executes a property toggle.
func PropertySetEnabledHandler(engine Engine) mcp.ToolHandlerFor[PropertySetEnabledInput, CharacterResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PropertySetEnabledInput) (*mcp.CallToolResult, CharacterResult, error) {
		characterID, propertyID, err := propertyRef(input.CharacterID, input.PropertyID)
		if err != nil {
			return nil, CharacterResult{}, err
		}
		callCtx, cancel, meta, err := begin(ctx, input.Locale)
		if err != nil {
			return nil, CharacterResult{}, err
		}
		defer cancel()

		c, err := engine.SetPropertyEnabled(callCtx, characterID, propertyID, input.Enabled)
		if err != nil {
			return nil, CharacterResult{}, toolError("property set enabled", err, input.Locale)
		}
		return CallToolResultWithMetadata(meta), CharacterResult{Character: summarize(c)}, nil
	}
}

func propertyRef(characterID, propertyID string) (string, string, error) {
	characterID = strings.TrimSpace(characterID)
	propertyID = strings.TrimSpace(propertyID)
	if characterID == "" {
		return "", "", fmt.Errorf("character_id is required")
	}
	if propertyID == "" {
		return "", "", fmt.Errorf("property_id is required")
	}
	return characterID, propertyID, nil
}
