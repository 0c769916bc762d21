package services

import (
	"context"
	"sort"

	"github.com/cinehub/apiserver/types"
)

// Level titles, highest band first. Bands have a closed lower bound and
// an open upper bound, so together they partition all non-negative
// point totals.
const (
	LevelNewbie        = "Newbie"
	LevelReviewer      = "Reviewer"
	LevelCritic        = "Critic"
	LevelExpertCritic  = "Expert Critic"
	LevelMasterReviewer = "Master Reviewer"
)

// DefaultLeaderboardSize is how many entries a leaderboard holds when
// the caller does not ask for a specific size.
const DefaultLeaderboardSize = 10

// LevelFor maps a point total to its level title.
func LevelFor(points int) string {
	switch {
	case points >= 5000:
		return LevelMasterReviewer
	case points >= 1500:
		return LevelExpertCritic
	case points >= 500:
		return LevelCritic
	case points >= 100:
		return LevelReviewer
	default:
		return LevelNewbie
	}
}

// UserRepository defines the persistence operations the reputation
// engine needs.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	Mutate(ctx context.Context, id string, fn func(*types.User)) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
}

// ReputationService owns point awards, level titles, and the
// leaderboard view.
type ReputationService struct {
	users UserRepository
}

func NewReputationService(users UserRepository) *ReputationService {
	return &ReputationService{users: users}
}

// AwardPoints credits delta points to a user and recomputes the level
// title in the same critical section. The engine does not assume delta
// is positive, but no caller deducts points today.
func (s *ReputationService) AwardPoints(ctx context.Context, userID string, delta int) (types.User, error) {
	return s.users.Mutate(ctx, userID, func(u *types.User) {
		u.Points += delta
		u.LevelTitle = LevelFor(u.Points)
	})
}

// AwardReviewPoints credits a submitted review: the point award, level
// recompute, and review counter bump happen atomically, so no reader
// observes the counter without the points or vice versa.
func (s *ReputationService) AwardReviewPoints(ctx context.Context, userID string, delta int) (types.User, error) {
	return s.users.Mutate(ctx, userID, func(u *types.User) {
		u.Points += delta
		u.LevelTitle = LevelFor(u.Points)
		u.ReviewsCount++
	})
}

// Leaderboard returns the top non-admin users by points, ranked from 1.
// Ties keep store insertion order (the sort is stable). A limit < 1
// falls back to DefaultLeaderboardSize.
func (s *ReputationService) Leaderboard(ctx context.Context, limit int) ([]types.LeaderboardEntry, error) {
	if limit < 1 {
		limit = DefaultLeaderboardSize
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	ranked := users[:0:0]
	for _, u := range users {
		if u.Role == types.RoleAdmin {
			continue
		}
		ranked = append(ranked, u)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Points > ranked[j].Points
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	entries := make([]types.LeaderboardEntry, len(ranked))
	for i, u := range ranked {
		entries[i] = types.LeaderboardEntry{
			UserID:     u.ID,
			Name:       u.Name,
			Points:     u.Points,
			LevelTitle: u.LevelTitle,
			Rank:       i + 1,
		}
	}
	return entries, nil
}
