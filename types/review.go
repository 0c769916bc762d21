package types

import "time"

// Review represents a user's rating and write-up for a movie.
// Reviews are append-only; the like counter is the only field with a
// mutation path after creation.
type Review struct {
	// ID is the unique identifier of the review.
	ID string `json:"id"`

	// MovieID references the reviewed movie. It is not enforced as a
	// foreign key: a review may outlive its movie.
	MovieID int `json:"movie_id"`

	// UserID references the author.
	UserID string `json:"user_id"`

	// UserName is a snapshot of the author's display name at write
	// time. It does not track later name changes.
	UserName string `json:"user_name"`

	// Rating is the author's score for the movie, 1-5.
	Rating int `json:"rating"`

	// Text is the review body.
	Text string `json:"text"`

	// Likes counts reader likes, starting at 0.
	Likes int `json:"likes"`

	// CreatedAt is the timestamp at which the review was submitted.
	CreatedAt time.Time `json:"created_at"`
}
