package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cinehub/apiserver/internal/store"
	"github.com/cinehub/apiserver/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewAwardPoints is the fixed reputation award for one accepted
// review.
const ReviewAwardPoints = 10

// ReviewSubmittedChannel is the broker channel review events are
// published on.
const ReviewSubmittedChannel = "reviews.submitted"

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	Add(ctx context.Context, review types.Review) (types.Review, error)
	ListByMovie(ctx context.Context, movieID int) ([]types.Review, error)
	AddLike(ctx context.Context, id string) (types.Review, error)
}

// EventPublisher publishes domain events to a broker channel. A nil
// publisher disables eventing.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// ReviewSubmittedEvent is the payload published after an accepted
// review.
type ReviewSubmittedEvent struct {
	ReviewID     string `json:"review_id"`
	MovieID      int    `json:"movie_id"`
	UserID       string `json:"user_id"`
	Rating       int    `json:"rating"`
	PointsEarned int    `json:"points_earned"`
	LevelTitle   string `json:"level_title"`
}

// ReviewService orchestrates review submission: the review append and
// the reputation award form a single logical unit.
type ReviewService struct {
	reviews    ReviewRepository
	reputation *ReputationService
	events     EventPublisher
	logger     *zap.Logger

	// mu serializes submissions so the award and the append are never
	// interleaved with another submission's.
	mu sync.Mutex
}

func NewReviewService(reviews ReviewRepository, reputation *ReputationService, events EventPublisher, logger *zap.Logger) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{
		reviews:    reviews,
		reputation: reputation,
		events:     events,
		logger:     logger,
	}
}

// Submit appends a review for movieID authored by userID and credits
// the fixed point award. It fails with store.ErrNotFound when the user
// does not exist and store.ErrValidation on a bad rating or empty text.
// The returned int is the points earned.
func (s *ReviewService) Submit(ctx context.Context, movieID int, userID, text string, rating int) (types.Review, int, error) {
	if rating < 1 || rating > 5 {
		return types.Review{}, 0, fmt.Errorf("%w: rating must be between 1 and 5", store.ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return types.Review{}, 0, fmt.Errorf("%w: text is required", store.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The award validates the author exists; nothing is written when it
	// fails, and the append below cannot fail afterwards.
	user, err := s.reputation.AwardReviewPoints(ctx, userID, ReviewAwardPoints)
	if err != nil {
		return types.Review{}, 0, err
	}

	review := types.Review{
		ID:        uuid.NewString(),
		MovieID:   movieID,
		UserID:    userID,
		UserName:  user.Name,
		Rating:    rating,
		Text:      text,
		CreatedAt: time.Now(),
	}
	review, err = s.reviews.Add(ctx, review)
	if err != nil {
		return types.Review{}, 0, err
	}

	s.publishSubmitted(ctx, review, user)
	return review, ReviewAwardPoints, nil
}

// ListByMovie returns a movie's reviews, newest first.
func (s *ReviewService) ListByMovie(ctx context.Context, movieID int) ([]types.Review, error) {
	return s.reviews.ListByMovie(ctx, movieID)
}

// publishSubmitted emits the review event. Publishing is best-effort:
// a broker failure is logged and never fails the submission.
func (s *ReviewService) publishSubmitted(ctx context.Context, review types.Review, user types.User) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(ReviewSubmittedEvent{
		ReviewID:     review.ID,
		MovieID:      review.MovieID,
		UserID:       review.UserID,
		Rating:       review.Rating,
		PointsEarned: ReviewAwardPoints,
		LevelTitle:   user.LevelTitle,
	})
	if err != nil {
		s.logger.Error("failed to encode review event", zap.Error(err))
		return
	}

	if _, err := s.events.Publish(ctx, ReviewSubmittedChannel, payload, map[string]string{
		"content-type": "application/json",
	}); err != nil {
		s.logger.Warn("failed to publish review event",
			zap.String("review_id", review.ID),
			zap.Error(err))
	}
}
