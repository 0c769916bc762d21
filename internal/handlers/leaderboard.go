package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/cinehub/apiserver/internal/services"
	"github.com/cinehub/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
)

// LeaderboardHandler serves the reputation leaderboard and user
// profiles.
type LeaderboardHandler struct {
	reputation  *services.ReputationService
	userService *services.UserService
}

func NewLeaderboardHandler(reputation *services.ReputationService, userService *services.UserService) *LeaderboardHandler {
	return &LeaderboardHandler{
		reputation:  reputation,
		userService: userService,
	}
}

// Leaderboard returns the top non-admin users by points.
func (h *LeaderboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := services.DefaultLeaderboardSize
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := h.reputation.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build leaderboard")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// GetUser returns a user's public profile.
func (h *LeaderboardHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "userID"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
