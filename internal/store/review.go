package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cinehub/apiserver/types"
)

// ReviewStore holds reviews in memory. Reviews are append-only: there
// is no edit or delete path, and the like counter is the only field
// mutated after creation.
type ReviewStore struct {
	mu      sync.RWMutex
	reviews []types.Review
}

func NewReviewStore() *ReviewStore {
	return &ReviewStore{}
}

// Add appends a review. The caller supplies a fully populated record,
// including id and timestamp.
func (s *ReviewStore) Add(ctx context.Context, review types.Review) (types.Review, error) {
	if strings.TrimSpace(review.ID) == "" {
		return types.Review{}, ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reviews = append(s.reviews, review)
	return review, nil
}

// ListByMovie returns the reviews for a movie, newest first.
func (s *ReviewStore) ListByMovie(ctx context.Context, movieID int) ([]types.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Review, 0)
	for _, r := range s.reviews {
		if r.MovieID == movieID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// AddLike increments a review's like counter and returns the updated
// record.
func (s *ReviewStore) AddLike(ctx context.Context, id string) (types.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reviews {
		if s.reviews[i].ID == id {
			s.reviews[i].Likes++
			return s.reviews[i], nil
		}
	}
	return types.Review{}, ErrNotFound
}
