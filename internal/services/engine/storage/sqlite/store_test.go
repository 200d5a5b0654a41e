package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/wrathforge/internal/services/engine/domain/character"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/property"
	"github.com/louisbranch/wrathforge/internal/services/engine/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "engine.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func newCharacter(t *testing.T, id, name string) character.Character {
	t.Helper()
	c, err := character.New(name, 2)
	if err != nil {
		t.Fatalf("new character: %v", err)
	}
	c.ID = id
	g, err := c.Graph.Add(property.Node{ID: "attr-strength", Type: property.TypeAttribute, Name: "Strength", Enabled: true, BaseValue: 3}, "")
	if err != nil {
		t.Fatalf("add strength: %v", err)
	}
	c.Graph = g
	return c
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "engine.db")
	for i := 0; i < 2; i++ {
		store, err := Open(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
}

func TestCharacterRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	input := newCharacter(t, "char-1", "Sister Amalia")
	input.CreatedAt = now
	input.UpdatedAt = now
	input.Keywords = []string{"IMPERIUM"}

	if err := store.CreateCharacter(ctx, input); err != nil {
		t.Fatalf("create character: %v", err)
	}
	got, err := store.GetCharacter(ctx, "char-1")
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	if got.Name != input.Name || got.Tier != 2 || !got.CreatedAt.Equal(now) {
		t.Fatalf("character = %+v", got)
	}
	if !got.HasKeyword("imperium") {
		t.Errorf("keywords = %v", got.Keywords)
	}
	strength, ok := got.Graph.Node("attr-strength")
	if !ok || strength.BaseValue != 3 || strength.Parent != property.RootID {
		t.Errorf("strength = %+v, %v", strength, ok)
	}
	stats, _ := got.Stats()
	if stats.Attribute("strength") != 3 {
		t.Errorf("stored strength = %d", stats.Attribute("strength"))
	}
}

func TestCreateCharacterReturnsAlreadyExists(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	c := newCharacter(t, "char-dup", "Duplicate")
	if err := store.CreateCharacter(context.Background(), c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.CreateCharacter(context.Background(), c); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate create error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestPutCharacterKeepsCreatedAt(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	created := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	c := newCharacter(t, "char-put", "Before")
	c.CreatedAt = created
	c.UpdatedAt = created
	if err := store.PutCharacter(ctx, c); err != nil {
		t.Fatalf("put: %v", err)
	}
	c.Name = "After"
	c.CreatedAt = created.Add(time.Hour)
	c.UpdatedAt = created.Add(2 * time.Hour)
	if err := store.PutCharacter(ctx, c); err != nil {
		t.Fatalf("put again: %v", err)
	}
	got, err := store.GetCharacter(ctx, "char-put")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "After" || !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(created.Add(2*time.Hour)) {
		t.Errorf("character = %q created %v updated %v", got.Name, got.CreatedAt, got.UpdatedAt)
	}
}

func TestGetAndDeleteMissingCharacter(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.GetCharacter(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("get error = %v", err)
	}
	if err := store.DeleteCharacter(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("delete error = %v", err)
	}
}

func TestListCharactersPaginates(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	for _, id := range []string{"c", "a", "e", "b", "d"} {
		if err := store.CreateCharacter(ctx, newCharacter(t, id, "Name "+id)); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	var ids []string
	token := ""
	for pages := 0; ; pages++ {
		if pages > 5 {
			t.Fatal("pagination did not terminate")
		}
		page, err := store.ListCharacters(ctx, 2, token)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for _, c := range page.Characters {
			ids = append(ids, c.ID)
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	if fmt.Sprint(ids) != "[a b c d e]" {
		t.Errorf("ids = %v", ids)
	}

	if err := store.DeleteCharacter(ctx, "c"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	page, err := store.ListCharacters(ctx, 10, "")
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(page.Characters) != 4 || page.NextPageToken != "" {
		t.Errorf("page = %d characters, token %q", len(page.Characters), page.NextPageToken)
	}
}

func TestRollsListNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		characterID := "char-1"
		if i == 2 {
			characterID = "char-2"
		}
		roll := storage.Roll{
			ID:          fmt.Sprintf("roll-%d", i),
			CharacterID: characterID,
			Kind:        storage.RollTest,
			Seed:        int64(i),
			DicePool:    i + 1,
			Difficulty:  3,
			Success:     i%2 == 0,
			Icons:       i,
			Document:    []byte(`{"success":true}`),
			CreatedAt:   base.Add(time.Duration(i/2) * time.Second),
		}
		if err := store.AppendRoll(ctx, roll); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	var ids []string
	token := ""
	for pages := 0; ; pages++ {
		if pages > 5 {
			t.Fatal("pagination did not terminate")
		}
		page, err := store.ListRolls(ctx, "char-1", 3, token)
		if err != nil {
			t.Fatalf("list rolls: %v", err)
		}
		for _, r := range page.Rolls {
			ids = append(ids, r.ID)
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	if fmt.Sprint(ids) != "[roll-4 roll-3 roll-1 roll-0]" {
		t.Errorf("ids = %v", ids)
	}

	all, err := store.ListRolls(ctx, "", 10, "")
	if err != nil {
		t.Fatalf("list all rolls: %v", err)
	}
	if len(all.Rolls) != 5 || string(all.Rolls[0].Document) != `{"success":true}` || all.Rolls[0].Seed != 4 || !all.Rolls[0].Success || all.Rolls[0].DicePool != 5 {
		t.Errorf("all rolls = %+v", all.Rolls)
	}

	if _, err := store.ListRolls(ctx, "", 10, "garbage"); !errors.Is(err, storage.ErrInvalidPageToken) {
		t.Errorf("invalid token error = %v", err)
	}
	if err := store.AppendRoll(ctx, storage.Roll{ID: "roll-0", Kind: storage.RollTest}); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Errorf("duplicate roll error = %v", err)
	}
}
