package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/wrathforge/internal/services/engine/domain/character"
	"github.com/louisbranch/wrathforge/internal/services/engine/storage"
)

type characterRow struct {
	ID          string `db:"id"`
	Kind        string `db:"kind"`
	Name        string `db:"name"`
	Tier        int    `db:"tier"`
	SpeciesID   string `db:"species_id"`
	ArchetypeID string `db:"archetype_id"`
	Threat      string `db:"threat"`
	Document    string `db:"document"`
	CreatedAt   int64  `db:"created_at"`
	UpdatedAt   int64  `db:"updated_at"`
}

const characterColumns = `id, kind, name, tier, species_id, archetype_id, threat, document, created_at, updated_at`

func toCharacterRow(c character.Character) (characterRow, error) {
	if strings.TrimSpace(c.ID) == "" {
		return characterRow{}, fmt.Errorf("character id is required")
	}
	createdAt := c.CreatedAt.UTC()
	updatedAt := c.UpdatedAt.UTC()
	switch {
	case createdAt.IsZero() && updatedAt.IsZero():
		createdAt = time.Now().UTC()
		updatedAt = createdAt
	case createdAt.IsZero():
		createdAt = updatedAt
	case updatedAt.IsZero():
		updatedAt = createdAt
	}
	c.CreatedAt = createdAt
	c.UpdatedAt = updatedAt

	doc, err := json.Marshal(c)
	if err != nil {
		return characterRow{}, fmt.Errorf("encode character %s: %w", c.ID, err)
	}
	return characterRow{
		ID:          c.ID,
		Kind:        string(c.Kind),
		Name:        c.Name,
		Tier:        c.Tier,
		SpeciesID:   c.SpeciesID,
		ArchetypeID: c.ArchetypeID,
		Threat:      string(c.Threat),
		Document:    string(doc),
		CreatedAt:   toMillis(createdAt),
		UpdatedAt:   toMillis(updatedAt),
	}, nil
}

func (r characterRow) character() (character.Character, error) {
	var c character.Character
	if err := json.Unmarshal([]byte(r.Document), &c); err != nil {
		return character.Character{}, fmt.Errorf("decode character %s: %w", r.ID, err)
	}
	c.ID = r.ID
	c.CreatedAt = fromMillis(r.CreatedAt)
	c.UpdatedAt = fromMillis(r.UpdatedAt)
	return c, nil
}

// CreateCharacter inserts a new character.
func (s *Store) CreateCharacter(ctx context.Context, c character.Character) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	row, err := toCharacterRow(c)
	if err != nil {
		return err
	}
	_, err = s.db.NamedExecContext(ctx,
		`INSERT INTO characters (`+characterColumns+`)
		 VALUES (:id, :kind, :name, :tier, :species_id, :archetype_id, :threat, :document, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create character: %w", err)
	}
	return nil
}

// PutCharacter inserts a character or replaces the stored one, keeping its
// creation time.
func (s *Store) PutCharacter(ctx context.Context, c character.Character) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	row, err := toCharacterRow(c)
	if err != nil {
		return err
	}
	_, err = s.db.NamedExecContext(ctx,
		`INSERT INTO characters (`+characterColumns+`)
		 VALUES (:id, :kind, :name, :tier, :species_id, :archetype_id, :threat, :document, :created_at, :updated_at)
		 ON CONFLICT(id) DO UPDATE SET
		   kind = excluded.kind,
		   name = excluded.name,
		   tier = excluded.tier,
		   species_id = excluded.species_id,
		   archetype_id = excluded.archetype_id,
		   threat = excluded.threat,
		   document = excluded.document,
		   updated_at = excluded.updated_at`,
		row,
	)
	if err != nil {
		return fmt.Errorf("put character: %w", err)
	}
	return nil
}

// GetCharacter returns one character by id.
func (s *Store) GetCharacter(ctx context.Context, id string) (character.Character, error) {
	if err := s.ready(ctx); err != nil {
		return character.Character{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return character.Character{}, fmt.Errorf("character id is required")
	}
	var row characterRow
	err := s.db.GetContext(ctx, &row, `SELECT `+characterColumns+` FROM characters WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return character.Character{}, storage.ErrNotFound
		}
		return character.Character{}, fmt.Errorf("get character: %w", err)
	}
	return row.character()
}

// ListCharacters returns one page of characters ordered by id. The page
// token is the last id of the previous page.
func (s *Store) ListCharacters(ctx context.Context, pageSize int, pageToken string) (storage.CharacterPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.CharacterPage{}, err
	}
	if pageSize <= 0 {
		return storage.CharacterPage{}, fmt.Errorf("page size must be greater than zero")
	}
	var rows []characterRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+characterColumns+`
		   FROM characters
		  WHERE id > ?
		  ORDER BY id ASC
		  LIMIT ?`,
		strings.TrimSpace(pageToken), pageSize+1,
	)
	if err != nil {
		return storage.CharacterPage{}, fmt.Errorf("list characters: %w", err)
	}

	page := storage.CharacterPage{Characters: make([]character.Character, 0, min(len(rows), pageSize))}
	for _, row := range rows {
		c, err := row.character()
		if err != nil {
			return storage.CharacterPage{}, err
		}
		page.Characters = append(page.Characters, c)
	}
	if len(page.Characters) > pageSize {
		page.NextPageToken = page.Characters[pageSize-1].ID
		page.Characters = page.Characters[:pageSize]
	}
	return page, nil
}

// DeleteCharacter removes a character. Its rolls stay in the log.
func (s *Store) DeleteCharacter(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
