package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cinehub/apiserver/internal/store"
	"github.com/cinehub/apiserver/types"
)

const (
	defaultPageLimit = 20

	minPopularityScore = 0
	maxPopularityScore = 100
)

// CatalogRepository defines persistence operations for the movie catalog.
type CatalogRepository interface {
	Insert(ctx context.Context, movie types.Movie) (types.Movie, error)
	Get(ctx context.Context, id int) (types.Movie, error)
	Update(ctx context.Context, id int, patch types.MoviePatch) (types.Movie, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]types.Movie, error)
}

// CatalogService encapsulates catalog use-cases: the filter/sort/page
// query engine and the administrative CRUD surface.
type CatalogService struct {
	repo CatalogRepository
}

func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// Query filters, sorts, and pages the catalog.
//
// The filter and sort are applied to a snapshot of the store taken at
// invocation time, producing a fixed ordered sequence that is then
// sliced at [offset, offset+limit). The sort is stable, so repeated
// queries against an unchanged store return identical order even for
// ties. No isolation is guaranteed across calls: the store may mutate
// between pages, and callers accumulating pages must de-duplicate by id.
func (s *CatalogService) Query(ctx context.Context, filter types.MovieFilter, limit, offset int) (types.MoviePage, error) {
	if limit < 1 {
		limit = defaultPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	movies, err := s.repo.List(ctx)
	if err != nil {
		return types.MoviePage{}, err
	}

	filtered := movies[:0:0]
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, m := range movies {
		if search != "" && !strings.Contains(strings.ToLower(m.Name), search) {
			continue
		}
		if filter.Genre != "" && filter.Genre != types.GenreAll && m.Genre != filter.Genre {
			continue
		}
		filtered = append(filtered, m)
	}

	sortMovies(filtered, filter.SortBy)

	total := len(filtered)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	results := make([]types.Movie, end-start)
	copy(results, filtered[start:end])

	nextOffset := offset + limit
	return types.MoviePage{
		Results:    results,
		NextOffset: nextOffset,
		HasMore:    nextOffset < total,
		TotalCount: total,
	}, nil
}

// sortMovies orders movies in place. The sort must stay stable: tie
// order for equal keys is insertion order, and the paging contract
// depends on it.
func sortMovies(movies []types.Movie, sortBy string) {
	switch sortBy {
	case types.SortNewest:
		// A missing timestamp is the zero time, which sorts last.
		sort.SliceStable(movies, func(i, j int) bool {
			return movies[i].CreatedAt.After(movies[j].CreatedAt)
		})
	case types.SortPopularityAsc:
		sort.SliceStable(movies, func(i, j int) bool {
			return movies[i].PopularityScore < movies[j].PopularityScore
		})
	default:
		sort.SliceStable(movies, func(i, j int) bool {
			return movies[i].PopularityScore > movies[j].PopularityScore
		})
	}
}

// Get retrieves a single movie by id.
func (s *CatalogService) Get(ctx context.Context, id int) (types.Movie, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a new movie after validating the popularity bounds.
func (s *CatalogService) Create(ctx context.Context, movie types.Movie) (types.Movie, error) {
	if err := validateScore(movie.PopularityScore); err != nil {
		return types.Movie{}, err
	}
	return s.repo.Insert(ctx, movie)
}

// Update applies a partial patch to an existing movie.
func (s *CatalogService) Update(ctx context.Context, id int, patch types.MoviePatch) (types.Movie, error) {
	if patch.PopularityScore != nil {
		if err := validateScore(*patch.PopularityScore); err != nil {
			return types.Movie{}, err
		}
	}
	return s.repo.Update(ctx, id, patch)
}

// Delete removes a movie from the catalog. Reviews referencing the
// movie are left in place.
func (s *CatalogService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func validateScore(score int) error {
	if score < minPopularityScore || score > maxPopularityScore {
		return fmt.Errorf("%w: popularity_score must be between %d and %d",
			store.ErrValidation, minPopularityScore, maxPopularityScore)
	}
	return nil
}
