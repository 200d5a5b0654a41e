package service

import (
	"context"
	"encoding/json"
	"time"
)

// ListRollsRequest pages through the roll log, newest first.
type ListRollsRequest struct {
	CharacterID string `json:"characterId,omitempty"`
	PageSize    int    `json:"pageSize,omitempty"`
	PageToken   string `json:"pageToken,omitempty"`
}

// RollEntry is one logged roll. Result is the response the roll returned.
type RollEntry struct {
	ID          string          `json:"id"`
	CharacterID string          `json:"characterId"`
	Kind        string          `json:"kind"`
	Seed        int64           `json:"seed,string"`
	DicePool    int             `json:"dicePool"`
	Difficulty  int             `json:"difficulty"`
	Success     bool            `json:"success"`
	Icons       int             `json:"icons"`
	Result      json.RawMessage `json:"result,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ListRollsResponse is one page of the roll log.
type ListRollsResponse struct {
	Rolls         []RollEntry `json:"rolls"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
}

// ListRolls returns logged rolls, optionally for one character.
func (s *Service) ListRolls(ctx context.Context, req ListRollsRequest) (ListRollsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "engine.ListRolls")
	defer span.End()

	page, err := s.rolls.ListRolls(ctx, req.CharacterID, pageSize(req.PageSize), req.PageToken)
	if err != nil {
		return ListRollsResponse{}, domainError(err)
	}
	out := ListRollsResponse{Rolls: make([]RollEntry, 0, len(page.Rolls)), NextPageToken: page.NextPageToken}
	for _, r := range page.Rolls {
		entry := RollEntry{
			ID:          r.ID,
			CharacterID: r.CharacterID,
			Kind:        r.Kind,
			Seed:        r.Seed,
			DicePool:    r.DicePool,
			Difficulty:  r.Difficulty,
			Success:     r.Success,
			Icons:       r.Icons,
			CreatedAt:   r.CreatedAt,
		}
		if json.Valid(r.Document) {
			entry.Result = json.RawMessage(r.Document)
		}
		out.Rolls = append(out.Rolls, entry)
	}
	return out, nil
}
