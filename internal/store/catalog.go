package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cinehub/apiserver/types"
)

// CatalogStore holds the movie catalog in memory.
//
// Movies are kept in insertion order; List returns copies so readers
// never observe a partially applied mutation. All mutation happens
// under the write lock.
type CatalogStore struct {
	mu     sync.RWMutex
	movies []types.Movie
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{}
}

// Insert adds a movie to the catalog, assigning the next id
// (max existing id + 1, or 1 for an empty catalog) and stamping
// CreatedAt when the caller left it unset. The name is required.
func (s *CatalogStore) Insert(ctx context.Context, movie types.Movie) (types.Movie, error) {
	if strings.TrimSpace(movie.Name) == "" {
		return types.Movie{}, fmt.Errorf("%w: name is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	maxID := 0
	for _, m := range s.movies {
		if m.ID > maxID {
			maxID = m.ID
		}
	}
	movie.ID = maxID + 1
	if movie.CreatedAt.IsZero() {
		movie.CreatedAt = time.Now()
	}

	s.movies = append(s.movies, movie)
	return movie, nil
}

// Get retrieves a movie by id.
func (s *CatalogStore) Get(ctx context.Context, id int) (types.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.movies {
		if m.ID == id {
			return m, nil
		}
	}
	return types.Movie{}, ErrNotFound
}

// Update applies a partial patch to an existing movie. ID and
// CreatedAt are immutable; nil patch fields leave the current values
// in place, so an empty patch is a no-op that returns the stored record.
func (s *CatalogStore) Update(ctx context.Context, id int, patch types.MoviePatch) (types.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.movies {
		if s.movies[i].ID != id {
			continue
		}
		m := &s.movies[i]
		if patch.Name != nil {
			if strings.TrimSpace(*patch.Name) == "" {
				return types.Movie{}, fmt.Errorf("%w: name is required", ErrValidation)
			}
			m.Name = *patch.Name
		}
		if patch.Details != nil {
			m.Details = *patch.Details
		}
		if patch.Genre != nil {
			m.Genre = *patch.Genre
		}
		if patch.PosterURL != nil {
			m.PosterURL = *patch.PosterURL
		}
		if patch.PopularityScore != nil {
			m.PopularityScore = *patch.PopularityScore
		}
		return *m, nil
	}
	return types.Movie{}, ErrNotFound
}

// Delete removes a movie from the catalog. Dependent reviews are not
// cascaded; they keep referencing the deleted id.
func (s *CatalogStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.movies {
		if s.movies[i].ID == id {
			s.movies = append(s.movies[:i], s.movies[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// List returns a snapshot of the whole catalog in insertion order.
func (s *CatalogStore) List(ctx context.Context) ([]types.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Movie, len(s.movies))
	copy(out, s.movies)
	return out, nil
}

// Len reports the current catalog size.
func (s *CatalogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movies)
}
