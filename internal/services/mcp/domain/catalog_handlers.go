package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/wrathforge/internal/services/engine/service"
)

// CatalogListInput represents the MCP tool input for listing catalog
// entries.
type CatalogListInput struct {
	Kind   string `json:"kind" jsonschema:"species, archetypes, abilities or keywords"`
	Filter string `json:"filter,omitempty" jsonschema:"optional AIP-160 filter such as tier <= 2"`
	Locale string `json:"locale,omitempty" jsonschema:"optional locale for error messages"`
}

// CatalogListResult represents the MCP tool output for catalog entries.
type CatalogListResult struct {
	Kind    string           `json:"kind" jsonschema:"catalog listed"`
	Entries []map[string]any `json:"entries" jsonschema:"matching entries in catalog order"`
}

// CatalogListTool defines the MCP tool schema for listing catalogs.
func CatalogListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "catalog_list",
		Description: "Lists species, archetypes, abilities or keywords, optionally filtered",
	}
}

// CatalogListHandler executes a catalog listing.
func CatalogListHandler(engine Engine) mcp.ToolHandlerFor[CatalogListInput, CatalogListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CatalogListInput) (*mcp.CallToolResult, CatalogListResult, error) {
		if strings.TrimSpace(input.Kind) == "" {
			return nil, CatalogListResult{}, fmt.Errorf("kind is required")
		}
		callCtx, cancel, meta, err := begin(ctx, input.Locale)
		if err != nil {
			return nil, CatalogListResult{}, err
		}
		defer cancel()

		resp, err := engine.ListCatalog(callCtx, service.ListCatalogRequest{Kind: input.Kind, Filter: input.Filter})
		if err != nil {
			return nil, CatalogListResult{}, toolError("catalog list", err, input.Locale)
		}
		result, err := catalogResult(resp)
		if err != nil {
			return nil, CatalogListResult{}, err
		}
		return CallToolResultWithMetadata(meta), result, nil
	}
}

func catalogResult(resp service.ListCatalogResponse) (CatalogListResult, error) {
	result := CatalogListResult{Kind: resp.Kind, Entries: make([]map[string]any, 0, len(resp.Entries))}
	for i, entry := range resp.Entries {
		obj, err := asObject(entry)
		if err != nil {
			return CatalogListResult{}, fmt.Errorf("encode %s entry %d: %w", resp.Kind, i, err)
		}
		result.Entries = append(result.Entries, obj)
	}
	return result, nil
}

// RollLogListInput represents the MCP tool input for reading the roll log.
type RollLogListInput struct {
	CharacterID string `json:"character_id,omitempty" jsonschema:"only rolls of this character"`
	PageSize    int    `json:"page_size,omitempty" jsonschema:"maximum rolls to return"`
	PageToken   string `json:"page_token,omitempty" jsonschema:"token from a previous page"`
	Locale      string `json:"locale,omitempty" jsonschema:"optional locale for error messages"`
}

// RollLogEntry is one logged roll.
type RollLogEntry struct {
	ID          string         `json:"id" jsonschema:"roll identifier"`
	CharacterID string         `json:"character_id" jsonschema:"character the roll is logged against"`
	Kind        string         `json:"kind" jsonschema:"test or opposed"`
	Seed        int64          `json:"seed" jsonschema:"seed that replays the roll"`
	DicePool    int            `json:"dice_pool" jsonschema:"dice rolled"`
	Difficulty  int            `json:"difficulty" jsonschema:"difficulty number"`
	Success     bool           `json:"success" jsonschema:"whether the test succeeded"`
	Icons       int            `json:"icons" jsonschema:"icons rolled"`
	Result      map[string]any `json:"result,omitempty" jsonschema:"full response of the roll"`
	CreatedAt   string         `json:"created_at" jsonschema:"RFC3339 time of the roll"`
}

// RollLogListResult represents the MCP tool output for a roll log page.
type RollLogListResult struct {
	Rolls         []RollLogEntry `json:"rolls" jsonschema:"rolls, newest first"`
	NextPageToken string         `json:"next_page_token,omitempty" jsonschema:"token for the next page"`
}

// RollLogListTool defines the MCP tool schema for reading the roll log.
func RollLogListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_log_list",
		Description: "Lists logged rolls, newest first, with the seeds that replay them",
	}
}

// RollLogListHandler executes a roll log listing.
func RollLogListHandler(engine Engine) mcp.ToolHandlerFor[RollLogListInput, RollLogListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollLogListInput) (*mcp.CallToolResult, RollLogListResult, error) {
		callCtx, cancel, meta, err := begin(ctx, input.Locale)
		if err != nil {
			return nil, RollLogListResult{}, err
		}
		defer cancel()

		resp, err := engine.ListRolls(callCtx, service.ListRollsRequest{
			CharacterID: strings.TrimSpace(input.CharacterID),
			PageSize:    input.PageSize,
			PageToken:   input.PageToken,
		})
		if err != nil {
			return nil, RollLogListResult{}, toolError("roll log list", err, input.Locale)
		}
		result := RollLogListResult{
			Rolls:         make([]RollLogEntry, 0, len(resp.Rolls)),
			NextPageToken: resp.NextPageToken,
		}
		for _, roll := range resp.Rolls {
			entry := RollLogEntry{
				ID:          roll.ID,
				CharacterID: roll.CharacterID,
				Kind:        roll.Kind,
				Seed:        roll.Seed,
				DicePool:    roll.DicePool,
				Difficulty:  roll.Difficulty,
				Success:     roll.Success,
				Icons:       roll.Icons,
				CreatedAt:   formatTime(roll.CreatedAt),
			}
			if len(roll.Result) > 0 {
				if err := json.Unmarshal(roll.Result, &entry.Result); err != nil {
					return nil, RollLogListResult{}, fmt.Errorf("decode roll %s: %w", roll.ID, err)
				}
			}
			result.Rolls = append(result.Rolls, entry)
		}
		return CallToolResultWithMetadata(meta), result, nil
	}
}
