package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/wrathforge/internal/services/engine/domain/character"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/property"
	"github.com/louisbranch/wrathforge/internal/services/engine/service"
)

// CharacterSummary is the compact view of a stored character or creature.
type CharacterSummary struct {
	ID            string   `json:"id" jsonschema:"character identifier"`
	Kind          string   `json:"kind" jsonschema:"character or bestiary"`
	Name          string   `json:"name" jsonschema:"display name"`
	Tier          int      `json:"tier" jsonschema:"campaign tier"`
	Rank          int      `json:"rank" jsonschema:"character rank"`
	SpeciesID     string   `json:"species_id,omitempty" jsonschema:"species identifier"`
	ArchetypeID   string   `json:"archetype_id,omitempty" jsonschema:"archetype identifier"`
	Threat        string   `json:"threat,omitempty" jsonschema:"threat level of a creature"`
	Keywords      []string `json:"keywords" jsonschema:"keywords of the character"`
	XPTotal       int      `json:"xp_total" jsonschema:"XP budget of the tier"`
	XPSpent       int      `json:"xp_spent" jsonschema:"XP spent on the build"`
	PropertyCount int      `json:"property_count" jsonschema:"number of properties in the sheet"`
	CreatedAt     string   `json:"created_at" jsonschema:"RFC3339 creation time"`
	UpdatedAt     string   `json:"updated_at" jsonschema:"RFC3339 last update time"`
}

func summarize(c character.Character) CharacterSummary {
	return CharacterSummary{
		ID:            c.ID,
		Kind:          string(c.Kind),
		Name:          c.Name,
		Tier:          c.Tier,
		Rank:          c.Rank,
		SpeciesID:     c.SpeciesID,
		ArchetypeID:   c.ArchetypeID,
		Threat:        string(c.Threat),
		Keywords:      nonNilStrings(c.Keywords),
		XPTotal:       c.XP.Total,
		XPSpent:       c.XP.Spent(),
		PropertyCount: c.Graph.Len(),
		CreatedAt:     formatTime(c.CreatedAt),
		UpdatedAt:     formatTime(c.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// CharacterCreateInput represents the MCP tool input for creating a
// character or, when threat is set, a bestiary creature.
type CharacterCreateInput struct {
	Name           string            `json:"name" jsonschema:"character name"`
	Tier           int               `json:"tier" jsonschema:"campaign tier from 1 to 5"`
	Rank           int               `json:"rank,omitempty" jsonschema:"optional rank, defaults to 1"`
	SpeciesID      string            `json:"species_id,omitempty" jsonschema:"species identifier, required for characters"`
	ArchetypeID    string            `json:"archetype_id,omitempty" jsonschema:"optional archetype identifier"`
	KeywordChoices map[string]string `json:"keyword_choices,omitempty" jsonschema:"choices for bracketed keywords, keyed by the bracketed keyword"`
	Attributes     map[string]int    `json:"attributes,omitempty" jsonschema:"attribute ratings by name"`
	Skills         map[string]int    `json:"skills,omitempty" jsonschema:"skill ranks by name"`
	Threat         string            `json:"threat,omitempty" jsonschema:"threat rating (Troop, Elite, Champion or Nemesis) that makes this a bestiary creature"`
	Keywords       []string          `json:"keywords,omitempty" jsonschema:"creature keywords"`
	Locale         string            `json:"locale,omitempty" jsonschema:"optional locale for error messages"`
}

// CharacterResult represents the MCP tool output for one character.
type CharacterResult struct {
	Character CharacterSummary `json:"character" jsonschema:"the character"`
}

// CharacterCreateTool defines the MCP tool schema for creating characters.
func CharacterCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "character_create",
		Description: "Creates a character from a species and archetype, or a bestiary creature when a threat level is given",
	}
}

// CharacterCreateHandler executes a character creation request.
func CharacterCreateHandler(engine Engine) mcp.ToolHandlerFor[CharacterCreateInput, CharacterResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterCreateInput) (*mcp.CallToolResult, CharacterResult, error) {
		callCtx, cancel, meta, err := begin(ctx, input.Locale)
		if err != nil {
			return nil, CharacterResult{}, err
		}
		defer cancel()

		c, err := engine.CreateCharacter(callCtx, service.CreateCharacterRequest{
			Name:           input.Name,
			Tier:           input.Tier,
			Rank:           input.Rank,
			SpeciesID:      input.SpeciesID,
			ArchetypeID:    input.ArchetypeID,
			KeywordChoices: input.KeywordChoices,
			Attributes:     input.Attributes,
			Skills:         input.Skills,
			Threat:         input.Threat,
			Keywords:       input.Keywords,
		})
		if err != nil {
			return nil, CharacterResult{}, toolError("character create", err, input.Locale)
		}
		return CallToolResultWithMetadata(meta), CharacterResult{Character: summarize(c)}, nil
	}
}

// CharacterGetInput represents the MCP tool input for reading a character.
type CharacterGetInput struct {
	CharacterID string `json:"character_id" jsonschema:"character identifier"`
	Locale      string `json:"locale,omitempty" jsonschema:"optional locale for error messages"`
}

// CharacterSheetResult represents the MCP tool output for a full sheet.
type CharacterSheetResult struct {
	Character CharacterSummary `json:"character" jsonschema:"the character"`
	Sheet     map[string]any   `json:"sheet" jsonschema:"full character document including the property graph"`
}

// CharacterGetTool defines the MCP tool schema for reading characters.
func CharacterGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "character_get",
		Description: "Returns a character with its full property graph",
	}
}

// CharacterGetHandler executes a character read.
func CharacterGetHandler(engine Engine) mcp.ToolHandlerFor[CharacterGetInput, CharacterSheetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterGetInput) (*mcp.CallToolResult, CharacterSheetResult, error) {
		characterID := strings.TrimSpace(input.CharacterID)
		if characterID == "" {
			return nil, CharacterSheetResult{}, fmt.Errorf("character_id is required")
		}
		callCtx, cancel, meta, err := begin(ctx, input.Locale)
		if err != nil {
			return nil, CharacterSheetResult{}, err
		}
		defer cancel()

		c, err := engine.GetCharacter(callCtx, characterID)
		if err != nil {
			return nil, CharacterSheetResult{}, toolError("character get", err, input.Locale)
		}
		sheet, err := asObject(c)
		if err != nil {
			return nil, CharacterSheetResult{}, fmt.Errorf("encode character sheet: %w", err)
		}
		return CallToolResultWithMetadata(meta), CharacterSheetResult{Character: summarize(c), Sheet: sheet}, nil
	}
}

// CharacterListInput represents the MCP tool input for listing characters.
type CharacterListInput struct {
	PageSize  int    `json:"page_size,omitempty" jsonschema:"maximum characters to return"`
	PageToken string `json:"page_token,omitempty" jsonschema:"token from a previous page"`
}

// CharacterListResult represents the MCP tool output for a character page.
type CharacterListResult struct {
	Characters    []CharacterSummary `json:"characters" jsonschema:"characters on this page"`
	NextPageToken string             `json:"next_page_token,omitempty" jsonschema:"token for the next page"`
}

// CharacterListTool defines the MCP tool schema for listing characters.
func CharacterListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "character_list",
		Description: "Lists stored characters and creatures",
	}
}

// CharacterListHandler executes a character listing.
func CharacterListHandler(engine Engine) mcp.ToolHandlerFor[CharacterListInput, CharacterListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterListInput) (*mcp.CallToolResult, CharacterListResult, error) {
		callCtx, cancel, meta, err := begin(ctx, "")
		if err != nil {
			return nil, CharacterListResult{}, err
		}
		defer cancel()

		page, err := engine.ListCharacters(callCtx, input.PageSize, input.PageToken)
		if err != nil {
			return nil, CharacterListResult{}, toolError("character list", err, "")
		}
		result := CharacterListResult{
			Characters:    make([]CharacterSummary, 0, len(page.Characters)),
			NextPageToken: page.NextPageToken,
		}
		for _, c := range page.Characters {
			result.Characters = append(result.Characters, summarize(c))
		}
		return CallToolResultWithMetadata(meta), result, nil
	}
}

// CharacterDeleteInput represents the MCP tool input for deleting a
// character.
type CharacterDeleteInput struct {
	CharacterID string `json:"character_id" jsonschema:"character identifier"`
}

// CharacterDeleteResult represents the MCP tool output for a deletion.
type CharacterDeleteResult struct {
	CharacterID string `json:"character_id" jsonschema:"deleted character identifier"`
	Deleted     bool   `json:"deleted" jsonschema:"whether the character was deleted"`
}

// CharacterDeleteTool defines the MCP tool schema for deleting characters.
func CharacterDeleteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "character_delete",
		Description: "Deletes a stored character",
	}
}

// CharacterDeleteHandler executes a character deletion.
func CharacterDeleteHandler(engine Engine) mcp.ToolHandlerFor[CharacterDeleteInput, CharacterDeleteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterDeleteInput) (*mcp.CallToolResult, CharacterDeleteResult, error) {
		characterID := strings.TrimSpace(input.CharacterID)
		if characterID == "" {
			return nil, CharacterDeleteResult{}, fmt.Errorf("character_id is required")
		}
		callCtx, cancel, meta, err := begin(ctx, "")
		if err != nil {
			return nil, CharacterDeleteResult{}, err
		}
		defer cancel()

		if err := engine.DeleteCharacter(callCtx, characterID); err != nil {
			return nil, CharacterDeleteResult{}, toolError("character delete", err, "")
		}
		return CallToolResultWithMetadata(meta), CharacterDeleteResult{CharacterID: characterID, Deleted: true}, nil
	}
}

// CharacterComputeInput represents the MCP tool input for computing stats,
// either of a stored character or of an inline property graph.
type CharacterComputeInput struct {
	CharacterID string         `json:"character_id,omitempty" jsonschema:"stored character identifier"`
	Graph       map[string]any `json:"graph,omitempty" jsonschema:"inline property graph {rootPropertyId, properties} used when no character_id is given"`
	Tier        int            `json:"tier,omitempty" jsonschema:"tier of the inline graph"`
	Threat      string         `json:"threat,omitempty" jsonschema:"threat rating of the inline graph"`
	Locale      string         `json:"locale,omitempty" jsonschema:"optional locale for error messages"`
}

// PropertyErrorResult is a formula failure scoped to one property.
type PropertyErrorResult struct {
	PropertyID   string `json:"property_id" jsonschema:"failing property"`
	PropertyName string `json:"property_name" jsonschema:"failing property name"`
	Formula      string `json:"formula,omitempty" jsonschema:"formula that failed"`
	Message      string `json:"message" jsonschema:"failure description"`
}

// CharacterComputeResult represents the MCP tool output for computed stats.
type CharacterComputeResult struct {
	CharacterID  string                `json:"character_id,omitempty" jsonschema:"character identifier, if stored"`
	Stats        map[string]any        `json:"stats" jsonschema:"computed attributes, skills and derived stats"`
	Computations []map[string]any      `json:"computations" jsonschema:"per-property audit trail of applied effects"`
	Errors       []PropertyErrorResult `json:"errors" jsonschema:"formula failures that were skipped"`
	Abilities    []string              `json:"abilities" jsonschema:"abilities granted by enabled properties"`
}

// CharacterComputeTool defines the MCP tool schema for computing stats.
func CharacterComputeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "character_compute",
		Description: "Computes a character's attributes, skills and derived stats with an audit trail",
	}
}

// CharacterComputeHandler executes a stat computation.
func CharacterComputeHandler(engine Engine) mcp.ToolHandlerFor[CharacterComputeInput, CharacterComputeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterComputeInput) (*mcp.CallToolResult, CharacterComputeResult, error) {
		req := service.ComputeRequest{
			CharacterID: strings.TrimSpace(input.CharacterID),
			Tier:        input.Tier,
			Threat:      input.Threat,
		}
		if req.CharacterID == "" && input.Graph == nil {
			return nil, CharacterComputeResult{}, fmt.Errorf("character_id or graph is required")
		}
		if req.CharacterID == "" {
			var g property.Graph
			if err := fromObject(input.Graph, &g); err != nil {
				return nil, CharacterComputeResult{}, fmt.Errorf("decode graph: %w", err)
			}
			req.Graph = &g
		}

		callCtx, cancel, meta, err := begin(ctx, input.Locale)
		if err != nil {
			return nil, CharacterComputeResult{}, err
		}
		defer cancel()

		resp, err := engine.ComputeCharacter(callCtx, req)
		if err != nil {
			return nil, CharacterComputeResult{}, toolError("character compute", err, input.Locale)
		}
		result, err := computeResult(resp)
		if err != nil {
			return nil, CharacterComputeResult{}, err
		}
		return CallToolResultWithMetadata(meta), result, nil
	}
}

func computeResult(resp service.ComputeResponse) (CharacterComputeResult, error) {
	stats, err := asObject(resp.Stats)
	if err != nil {
		return CharacterComputeResult{}, fmt.Errorf("encode stats: %w", err)
	}
	result := CharacterComputeResult{
		CharacterID:  resp.CharacterID,
		Stats:        stats,
		Computations: make([]map[string]any, 0, len(resp.Computations)),
		Errors:       make([]PropertyErrorResult, 0, len(resp.Errors)),
		Abilities:    nonNilStrings(resp.Abilities),
	}
	for _, c := range resp.Computations {
		entry, err := asObject(c)
		if err != nil {
			return CharacterComputeResult{}, fmt.Errorf("encode computation %s: %w", c.PropertyID, err)
		}
		result.Computations = append(result.Computations, entry)
	}
	for _, e := range resp.Errors {
		result.Errors = append(result.Errors, PropertyErrorResult{
			PropertyID:   e.PropertyID,
			PropertyName: e.PropertyName,
			Formula:      e.Formula,
			Message:      e.Message,
		})
	}
	return result, nil
}
