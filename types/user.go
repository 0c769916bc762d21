package types

import "time"

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an account in the system.
// It contains identity, role, reputation, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id"`

	// Email is the user's login email address, unique across the store.
	Email string `json:"email"`

	// Name is the user's display name.
	Name string `json:"name"`

	// Role indicates the user's authorization level within the system
	// (RoleAdmin or RoleUser).
	Role string `json:"role"`

	// Points is the user's reputation point total. It never decreases
	// in the current design.
	Points int `json:"points"`

	// LevelTitle is the reputation tier derived from Points. It is
	// recomputed on every points change and is never an independent
	// source of truth.
	LevelTitle string `json:"level_title"`

	// ReviewsCount is the number of reviews the user has submitted.
	ReviewsCount int `json:"reviews_count"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-"`

	// JoinedAt is the timestamp when the account was registered.
	JoinedAt time.Time `json:"joined_at"`
}

// LeaderboardEntry is one ranked row of the points leaderboard.
type LeaderboardEntry struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Points     int    `json:"points"`
	LevelTitle string `json:"level_title"`

	// Rank is the 1-based position in points-descending order.
	Rank int `json:"rank"`
}
