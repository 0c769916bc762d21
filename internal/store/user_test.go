package store

import (
	"context"
	"errors"
	"testing"

	"github.com/cinehub/apiserver/types"
)

func TestUserInsertEnforcesEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	if _, err := s.Insert(ctx, types.User{ID: "u1", Email: "fan@example.com"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	_, err := s.Insert(ctx, types.User{ID: "u2", Email: "FAN@example.com"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserGetByEmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	if _, err := s.Insert(ctx, types.User{ID: "u1", Email: "Fan@Example.com", Name: "Fan"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.GetByEmail(ctx, "fan@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != "u1" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestUserMutateAppliesUnderOneCriticalSection(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	if _, err := s.Insert(ctx, types.User{ID: "u1", Email: "fan@example.com", Points: 90}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	updated, err := s.Mutate(ctx, "u1", func(u *types.User) {
		u.Points += 10
		u.LevelTitle = "Reviewer"
		u.ReviewsCount++
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if updated.Points != 100 || updated.LevelTitle != "Reviewer" || updated.ReviewsCount != 1 {
		t.Fatalf("mutation not applied atomically: %+v", updated)
	}

	stored, err := s.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored != updated {
		t.Fatalf("stored record diverged from returned copy: %+v vs %+v", stored, updated)
	}
}

func TestUserMutateMissing(t *testing.T) {
	s := NewUserStore()

	_, err := s.Mutate(context.Background(), "ghost", func(u *types.User) {})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserInsertRequiresIDAndEmail(t *testing.T) {
	s := NewUserStore()

	if _, err := s.Insert(context.Background(), types.User{ID: "u1"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := s.Insert(context.Background(), types.User{Email: "x@y.z"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
