package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cinehub/apiserver/types"
	"github.com/google/go-cmp/cmp"
)

func TestCatalogInsertAssignsIDs(t *testing.T) {
	ctx := context.Background()
	s := NewCatalogStore()

	first, err := s.Insert(ctx, types.Movie{Name: "Drishyam"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first.ID != 1 {
		t.Fatalf("expected first id 1, got %d", first.ID)
	}
	if first.CreatedAt.IsZero() {
		t.Fatalf("expected CreatedAt to be stamped")
	}

	second, err := s.Insert(ctx, types.Movie{Name: "Premam"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if second.ID != 2 {
		t.Fatalf("expected second id 2, got %d", second.ID)
	}

	// Deleting the newest record frees its id for reuse: the next id is
	// always max+1 over the remaining records.
	if err := s.Delete(ctx, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	third, err := s.Insert(ctx, types.Movie{Name: "Joji"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if third.ID != 2 {
		t.Fatalf("expected reused id 2, got %d", third.ID)
	}
}

func TestCatalogInsertRequiresName(t *testing.T) {
	s := NewCatalogStore()

	_, err := s.Insert(context.Background(), types.Movie{Name: "   "})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCatalogInsertRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewCatalogStore()

	in := types.Movie{
		Name:            "Kumbalangi Nights",
		Details:         "Four brothers",
		Genre:           "Drama",
		PosterURL:       "https://example.com/poster.jpg",
		PopularityScore: 92,
	}
	created, err := s.Insert(ctx, in)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	want := in
	want.ID = created.ID
	want.CreatedAt = created.CreatedAt
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogUpdateEmptyPatchIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewCatalogStore()

	created, err := s.Insert(ctx, types.Movie{Name: "Trance", Genre: "Thriller", PopularityScore: 70})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	updated, err := s.Update(ctx, created.ID, types.MoviePatch{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if diff := cmp.Diff(created, updated); diff != "" {
		t.Fatalf("empty patch changed the record (-want +got):\n%s", diff)
	}
}

func TestCatalogUpdateNeverTouchesIDOrCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := NewCatalogStore()

	created, err := s.Insert(ctx, types.Movie{Name: "Malik", PopularityScore: 60})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	name := "Malik (Director's Cut)"
	score := 75
	updated, err := s.Update(ctx, created.ID, types.MoviePatch{Name: &name, PopularityScore: &score})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.ID != created.ID {
		t.Fatalf("id changed: %d -> %d", created.ID, updated.ID)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}
	if updated.Name != name || updated.PopularityScore != score {
		t.Fatalf("patch not applied: %+v", updated)
	}
}

func TestCatalogUpdateMissing(t *testing.T) {
	s := NewCatalogStore()

	_, err := s.Update(context.Background(), 42, types.MoviePatch{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogDeleteMissingLeavesCatalogUnchanged(t *testing.T) {
	ctx := context.Background()
	s := NewCatalogStore()

	if _, err := s.Insert(ctx, types.Movie{Name: "Virus"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	before, _ := s.List(ctx)

	if err := s.Delete(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	after, _ := s.List(ctx)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("failed delete mutated the catalog (-want +got):\n%s", diff)
	}
}

func TestCatalogListReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewCatalogStore()

	if _, err := s.Insert(ctx, types.Movie{Name: "Uyare", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	snapshot, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	snapshot[0].Name = "mutated"

	got, err := s.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Uyare" {
		t.Fatalf("snapshot mutation leaked into the store: %q", got.Name)
	}
}
