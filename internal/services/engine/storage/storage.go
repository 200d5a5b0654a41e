// Package storage defines persistence contracts for engine state: stored
// characters and the log of dice tests rolled against them.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/wrathforge/internal/services/engine/domain/character"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a record with the same id already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrInvalidPageToken indicates a page token the store did not issue.
	ErrInvalidPageToken = errors.New("invalid page token")
)

// CharacterPage is one page of characters ordered by id.
type CharacterPage struct {
	Characters    []character.Character
	NextPageToken string
}

// CharacterStore persists characters. Put inserts or replaces; Create
// inserts only.
type CharacterStore interface {
	CreateCharacter(ctx context.Context, c character.Character) error
	PutCharacter(ctx context.Context, c character.Character) error
	GetCharacter(ctx context.Context, id string) (character.Character, error)
	ListCharacters(ctx context.Context, pageSize int, pageToken string) (CharacterPage, error)
	DeleteCharacter(ctx context.Context, id string) error
}

// Roll kinds.
const (
	RollTest    = "test"
	RollOpposed = "opposed"
)

// Roll is one logged dice test. The indexed fields describe the test (the
// attacker's side for opposed tests); Document holds the full JSON response
// returned to the caller.
type Roll struct {
	ID          string
	CharacterID string
	Kind        string
	Seed        int64
	DicePool    int
	Difficulty  int
	Success     bool
	Icons       int
	Document    []byte
	CreatedAt   time.Time
}

// RollPage is one page of rolls, newest first.
type RollPage struct {
	Rolls         []Roll
	NextPageToken string
}

// RollLog records dice tests. An empty characterID lists every roll.
type RollLog interface {
	AppendRoll(ctx context.Context, roll Roll) error
	ListRolls(ctx context.Context, characterID string, pageSize int, pageToken string) (RollPage, error)
}
