package sqlite

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/wrathforge/internal/services/engine/storage"
)

type rollRow struct {
	ID          string `db:"id"`
	CharacterID string `db:"character_id"`
	Kind        string `db:"kind"`
	Seed        int64  `db:"seed"`
	DicePool    int    `db:"dice_pool"`
	Difficulty  int    `db:"dn"`
	Success     bool   `db:"success"`
	Icons       int    `db:"icons"`
	Document    string `db:"document"`
	CreatedAt   int64  `db:"created_at"`
}

const rollColumns = `id, character_id, kind, seed, dice_pool, dn, success, icons, document, created_at`

// AppendRoll records one dice test.
func (s *Store) AppendRoll(ctx context.Context, roll storage.Roll) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(roll.ID) == "" {
		return fmt.Errorf("roll id is required")
	}
	if strings.TrimSpace(roll.Kind) == "" {
		return fmt.Errorf("roll kind is required")
	}
	createdAt := roll.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO roll_log (`+rollColumns+`)
		 VALUES (:id, :character_id, :kind, :seed, :dice_pool, :dn, :success, :icons, :document, :created_at)`,
		rollRow{
			ID:          roll.ID,
			CharacterID: strings.TrimSpace(roll.CharacterID),
			Kind:        roll.Kind,
			Seed:        roll.Seed,
			DicePool:    roll.DicePool,
			Difficulty:  roll.Difficulty,
			Success:     roll.Success,
			Icons:       roll.Icons,
			Document:    string(roll.Document),
			CreatedAt:   toMillis(createdAt),
		},
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("append roll: %w", err)
	}
	return nil
}

// ListRolls returns rolls newest first, optionally for one character.
func (s *Store) ListRolls(ctx context.Context, characterID string, pageSize int, pageToken string) (storage.RollPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.RollPage{}, err
	}
	if pageSize <= 0 {
		return storage.RollPage{}, fmt.Errorf("page size must be greater than zero")
	}

	var (
		where []string
		args  []any
	)
	if characterID = strings.TrimSpace(characterID); characterID != "" {
		where = append(where, "character_id = ?")
		args = append(args, characterID)
	}
	if pageToken = strings.TrimSpace(pageToken); pageToken != "" {
		millis, id, err := parseRollToken(pageToken)
		if err != nil {
			return storage.RollPage{}, err
		}
		where = append(where, "(created_at < ? OR (created_at = ? AND id < ?))")
		args = append(args, millis, millis, id)
	}
	query := `SELECT ` + rollColumns + ` FROM roll_log`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, pageSize+1)

	var rows []rollRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return storage.RollPage{}, fmt.Errorf("list rolls: %w", err)
	}

	page := storage.RollPage{Rolls: make([]storage.Roll, 0, min(len(rows), pageSize))}
	for i, row := range rows {
		if i == pageSize {
			last := rows[pageSize-1]
			page.NextPageToken = rollToken(last.CreatedAt, last.ID)
			break
		}
		page.Rolls = append(page.Rolls, storage.Roll{
			ID:          row.ID,
			CharacterID: row.CharacterID,
			Kind:        row.Kind,
			Seed:        row.Seed,
			DicePool:    row.DicePool,
			Difficulty:  row.Difficulty,
			Success:     row.Success,
			Icons:       row.Icons,
			Document:    []byte(row.Document),
			CreatedAt:   fromMillis(row.CreatedAt),
		})
	}
	return page, nil
}

// rollToken encodes the keyset position of a roll as "<millis>.<id>".
func rollToken(millis int64, id string) string {
	return strconv.FormatInt(millis, 10) + "." + id
}

func parseRollToken(token string) (int64, string, error) {
	raw, id, ok := strings.Cut(token, ".")
	if !ok || id == "" {
		return 0, "", fmt.Errorf("%w: %q", storage.ErrInvalidPageToken, token)
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q", storage.ErrInvalidPageToken, token)
	}
	return millis, id, nil
}
