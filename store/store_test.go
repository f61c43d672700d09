package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func openMemory(t *testing.T) (*Store, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	s, err := Open(context.Background(), ":memory:", WithClock(c.now))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, c
}

func TestSave_AssignsIDAndTimestamps(t *testing.T) {
	s, c := openMemory(t)
	ctx := context.Background()

	d, err := s.Save(ctx, Document{Title: "draft", State: []byte(`{"root":{}}`)})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(d.ID) != 26 {
		t.Fatalf("ID: got %q, want a 26 character ULID", d.ID)
	}
	if !d.CreatedAt.Equal(c.t) || !d.UpdatedAt.Equal(c.t) {
		t.Fatalf("timestamps: got %v/%v, want %v", d.CreatedAt, d.UpdatedAt, c.t)
	}

	got, err := s.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "draft" || string(got.State) != `{"root":{}}` {
		t.Fatalf("Get: got %q %s, want %q %s", got.Title, got.State, "draft", `{"root":{}}`)
	}
}

func TestSave_ReplaceKeepsCreatedAt(t *testing.T) {
	s, c := openMemory(t)
	ctx := context.Background()

	first, err := s.Save(ctx, Document{ID: "doc", State: []byte("1")})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	c.advance(time.Hour)
	second, err := s.Save(ctx, Document{ID: "doc", Title: "renamed", State: []byte("2")})
	if err != nil {
		t.Fatalf("Save again: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("CreatedAt: got %v, want %v", second.CreatedAt, first.CreatedAt)
	}
	if !second.UpdatedAt.Equal(c.t) {
		t.Fatalf("UpdatedAt: got %v, want %v", second.UpdatedAt, c.t)
	}
	got, err := s.Get(ctx, "doc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "renamed" || string(got.State) != "2" {
		t.Fatalf("Get: got %q %s, want %q %s", got.Title, got.State, "renamed", "2")
	}
}

func TestSave_RejectsEmptyState(t *testing.T) {
	s, _ := openMemory(t)
	if _, err := s.Save(context.Background(), Document{Title: "x"}); err == nil {
		t.Fatalf("Save without state: got nil error")
	}
}

func TestList_NewestFirstWithoutState(t *testing.T) {
	s, c := openMemory(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := s.Save(ctx, Document{ID: id, State: []byte(id)}); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
		c.advance(time.Minute)
	}

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids []string
	for _, d := range docs {
		ids = append(ids, d.ID)
		if d.State != nil {
			t.Fatalf("List returned state for %s", d.ID)
		}
	}
	if len(ids) != 3 || ids[0] != "c" || ids[1] != "b" || ids[2] != "a" {
		t.Fatalf("List order: got %v, want [c b a]", ids)
	}
}

func TestGetDelete_NotFound(t *testing.T) {
	s, _ := openMemory(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get: got %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete: got %v, want ErrNotFound", err)
	}

	if _, err := s.Save(ctx, Document{ID: "x", State: []byte("{}")}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete(ctx, "x"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete: got %v, want ErrNotFound", err)
	}
}

func TestOpen_FilePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "docs.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	d, err := s.Save(ctx, Document{State: []byte("{}")})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if _, err := s.Get(ctx, d.ID); err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
}
