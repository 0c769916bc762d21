package services

import (
	"context"
	"sort"

	"github.com/cinehub/apiserver/types"
)

// DefaultRecommendationCount is how many movies a recommendation
// request returns when the caller does not ask for a specific count.
const DefaultRecommendationCount = 4

// RecommendationService derives related movies for a reference movie.
//
// This is a genre-match heuristic, not a learned model: same-genre
// movies by popularity first, then the most popular movies from other
// genres to fill the remainder.
type RecommendationService struct {
	repo CatalogRepository
}

func NewRecommendationService(repo CatalogRepository) *RecommendationService {
	return &RecommendationService{repo: repo}
}

// Recommend returns up to count movies related to the reference movie.
// An unknown reference yields an empty list. The result is shorter than
// count only when the catalog has fewer than count other movies.
func (s *RecommendationService) Recommend(ctx context.Context, movieID, count int) ([]types.Movie, error) {
	if count < 1 {
		count = DefaultRecommendationCount
	}

	movies, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var reference *types.Movie
	for i := range movies {
		if movies[i].ID == movieID {
			reference = &movies[i]
			break
		}
	}
	if reference == nil {
		return []types.Movie{}, nil
	}

	var sameGenre, otherGenre []types.Movie
	for _, m := range movies {
		if m.ID == movieID {
			continue
		}
		if m.Genre == reference.Genre {
			sameGenre = append(sameGenre, m)
		} else {
			otherGenre = append(otherGenre, m)
		}
	}

	byPopularity := func(movies []types.Movie) {
		sort.SliceStable(movies, func(i, j int) bool {
			return movies[i].PopularityScore > movies[j].PopularityScore
		})
	}
	byPopularity(sameGenre)
	byPopularity(otherGenre)

	out := make([]types.Movie, 0, count)
	out = append(out, take(sameGenre, count)...)
	if len(out) < count {
		out = append(out, take(otherGenre, count-len(out))...)
	}
	return out, nil
}

func take(movies []types.Movie, n int) []types.Movie {
	if len(movies) > n {
		return movies[:n]
	}
	return movies
}
