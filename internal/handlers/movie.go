package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cinehub/apiserver/internal/services"
	"github.com/cinehub/apiserver/internal/storage"
	"github.com/cinehub/apiserver/internal/store"
	"github.com/cinehub/apiserver/types"
	"github.com/go-chi/chi/v5"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	maxPosterBytes     = 10 << 20
	maxMultipartMemory = 16 << 20
	formFieldPoster    = "poster"
)

// MovieHandler provides HTTP handlers for the catalog, reviews, and
// recommendations.
type MovieHandler struct {
	catalog    *services.CatalogService
	reviews    *services.ReviewService
	recommends *services.RecommendationService
	users      *services.UserService
	posters    *storage.Storage
}

// NewMovieHandler constructs a handler with the provided services.
// posters may be nil, which disables the poster endpoints.
func NewMovieHandler(
	catalog *services.CatalogService,
	reviews *services.ReviewService,
	recommends *services.RecommendationService,
	users *services.UserService,
	posters *storage.Storage,
) *MovieHandler {
	return &MovieHandler{
		catalog:    catalog,
		reviews:    reviews,
		recommends: recommends,
		users:      users,
		posters:    posters,
	}
}

// MovieRouter registers movie routes on the given router.
func MovieRouter(r chi.Router, handler *MovieHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/", handler.ListMovies)
	r.With(authMiddleware, handler.requireAdmin).Post("/", handler.CreateMovie)
	r.Route("/{movieID}", func(r chi.Router) {
		r.Get("/", handler.GetMovie)
		r.With(authMiddleware, handler.requireAdmin).Put("/", handler.UpdateMovie)
		r.With(authMiddleware, handler.requireAdmin).Delete("/", handler.DeleteMovie)

		r.Get("/reviews", handler.ListReviews)
		r.With(authMiddleware).Post("/reviews", handler.SubmitReview)
		r.Get("/recommendations", handler.Recommendations)

		r.Get("/poster", handler.GetPoster)
		r.With(authMiddleware, handler.requireAdmin).Post("/poster", handler.UploadPoster)
	})
}

func (h *MovieHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.catalog.Query(r.Context(), filter, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list movies")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *MovieHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := parseMovieID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	movie, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "movie not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch movie")
		return
	}

	writeJSON(w, http.StatusOK, movie)
}

func (h *MovieHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var req CreateMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	created, err := h.catalog.Create(r.Context(), types.Movie{
		Name:            strings.TrimSpace(req.Name),
		Details:         req.Details,
		Genre:           req.Genre,
		PosterURL:       req.PosterURL,
		PopularityScore: req.PopularityScore,
	})
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create movie")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *MovieHandler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, err := parseMovieID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var patch types.MoviePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.catalog.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "movie not found")
		case errors.Is(err, store.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update movie")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *MovieHandler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := parseMovieID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "movie not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete movie")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MovieHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, err := parseMovieID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reviews, err := h.reviews.ListByMovie(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	writeJSON(w, http.StatusOK, reviews)
}

func (h *MovieHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	id, err := parseMovieID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	review, pointsEarned, err := h.reviews.Submit(r.Context(), id, userID, req.Text, req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, store.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to submit review")
		}
		return
	}

	writeJSON(w, http.StatusCreated, SubmitReviewResponse{
		Review:       review,
		PointsEarned: pointsEarned,
	})
}

func (h *MovieHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	id, err := parseMovieID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	count := services.DefaultRecommendationCount
	if raw := strings.TrimSpace(r.URL.Query().Get("count")); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil || count < 1 {
			writeError(w, http.StatusBadRequest, "invalid count")
			return
		}
	}

	movies, err := h.recommends.Recommend(r.Context(), id, count)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute recommendations")
		return
	}

	writeJSON(w, http.StatusOK, movies)
}

// UploadPoster stores a poster image for the movie and points the
// movie's poster_url at the streaming endpoint.
func (h *MovieHandler) UploadPoster(w http.ResponseWriter, r *http.Request) {
	if h.posters == nil {
		writeError(w, http.StatusNotImplemented, "poster storage is not configured")
		return
	}

	id, err := parseMovieID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.catalog.Get(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "movie not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch movie")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldPoster)
	if err != nil {
		writeError(w, http.StatusBadRequest, "poster file is required")
		return
	}
	defer file.Close()

	data, err := readFileLimited(file, maxPosterBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "poster must be an image")
		return
	}

	key := posterKey(id)
	if err := h.posters.Put(r.Context(), key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store poster")
		return
	}

	posterURL := fmt.Sprintf("/movies/%d/poster", id)
	updated, err := h.catalog.Update(r.Context(), id, types.MoviePatch{PosterURL: &posterURL})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update movie")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// GetPoster streams the stored poster image.
func (h *MovieHandler) GetPoster(w http.ResponseWriter, r *http.Request) {
	if h.posters == nil {
		writeError(w, http.StatusNotImplemented, "poster storage is not configured")
		return
	}

	id, err := parseMovieID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reader, err := h.posters.Get(r.Context(), posterKey(id))
	if err != nil {
		writeError(w, http.StatusNotFound, "poster not found")
		return
	}
	defer reader.Close()

	// Sniff the content type from the first chunk before streaming.
	head := make([]byte, 512)
	n, _ := io.ReadFull(reader, head)
	head = head[:n]

	w.Header().Set("Content-Type", http.DetectContentType(head))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(head)
	_, _ = io.Copy(w, reader)
}

// CreateMovieRequest is the JSON payload for creating a movie.
type CreateMovieRequest struct {
	Name            string `json:"name"`
	Details         string `json:"details"`
	Genre           string `json:"genre"`
	PosterURL       string `json:"poster_url"`
	PopularityScore int    `json:"popularity_score"`
}

// SubmitReviewRequest is the JSON payload for submitting a review.
// The author is the authenticated user.
type SubmitReviewRequest struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

// SubmitReviewResponse pairs the created review with the points the
// author earned for it.
type SubmitReviewResponse struct {
	Review       types.Review `json:"review"`
	PointsEarned int          `json:"points_earned"`
}

func parsePagination(r *http.Request) (limit, offset int, err error) {
	limit = defaultLimit

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, errors.New("invalid limit")
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("offset")); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("invalid offset")
		}
	}

	return limit, offset, nil
}

func parseFilter(r *http.Request) (types.MovieFilter, error) {
	filter := types.MovieFilter{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Genre:  strings.TrimSpace(r.URL.Query().Get("genre")),
		SortBy: strings.TrimSpace(r.URL.Query().Get("sortBy")),
	}

	switch filter.SortBy {
	case "", types.SortPopularityDesc, types.SortPopularityAsc, types.SortNewest:
	default:
		return types.MovieFilter{}, errors.New("invalid sortBy")
	}
	return filter, nil
}

func parseMovieID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "movieID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid movie id")
	}
	return id, nil
}

func posterKey(movieID int) string {
	return fmt.Sprintf("posters/%d", movieID)
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}

func (h *MovieHandler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromContext(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		user, err := h.users.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to load user")
			return
		}

		if !strings.EqualFold(user.Role, types.RoleAdmin) {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
