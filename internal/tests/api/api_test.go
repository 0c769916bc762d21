package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cinehub/apiserver/config"
	"github.com/cinehub/apiserver/internal/server"
	"github.com/cinehub/apiserver/types"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("JWT_SECRET", "api-test-secret")

	cfg := config.Config{
		Admin: config.AdminConfig{
			Email:    "admin@example.com",
			Password: "admin-password",
			Name:     "Admin User",
		},
		// Storage and MQ backends stay disabled; the catalog starts
		// empty so tests control every record.
		SeedDemoData: false,
	}

	srv, err := server.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("failed to construct server: %v", err)
	}

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

type authResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

type reviewResponse struct {
	Review       types.Review `json:"review"`
	PointsEarned int          `json:"points_earned"`
}

func doJSON(t *testing.T, method, url, token string, body any, wantStatus int, out any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		msg, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: status %d, want %d: %s", method, url, resp.StatusCode, wantStatus, strings.TrimSpace(string(msg)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func loginAdmin(t *testing.T, baseURL string) string {
	t.Helper()
	var auth authResponse
	doJSON(t, http.MethodPost, baseURL+"/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "admin-password",
	}, http.StatusOK, &auth)
	if auth.Token == "" {
		t.Fatal("missing admin token")
	}
	return auth.Token
}

func TestMovieLifecycle(t *testing.T) {
	ts := startTestServer(t)
	adminToken := loginAdmin(t, ts.URL)

	var created types.Movie
	doJSON(t, http.MethodPost, ts.URL+"/movies", adminToken, map[string]any{
		"name":             "Kumbalangi Nights",
		"genre":            "Drama",
		"popularity_score": 92,
	}, http.StatusCreated, &created)
	if created.ID == 0 {
		t.Fatal("expected assigned movie id")
	}

	var updated types.Movie
	doJSON(t, http.MethodPut, fmt.Sprintf("%s/movies/%d", ts.URL, created.ID), adminToken, map[string]any{
		"details": "Four brothers by the lake.",
	}, http.StatusOK, &updated)
	if updated.Details != "Four brothers by the lake." {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.Name != "Kumbalangi Nights" {
		t.Fatalf("patch clobbered untouched field: %+v", updated)
	}

	var fetched types.Movie
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/movies/%d", ts.URL, created.ID), "", nil, http.StatusOK, &fetched)
	if fetched.ID != created.ID {
		t.Fatalf("unexpected movie: %+v", fetched)
	}

	doJSON(t, http.MethodDelete, fmt.Sprintf("%s/movies/%d", ts.URL, created.ID), adminToken, nil, http.StatusNoContent, nil)
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/movies/%d", ts.URL, created.ID), "", nil, http.StatusNotFound, nil)
	doJSON(t, http.MethodDelete, fmt.Sprintf("%s/movies/%d", ts.URL, created.ID), adminToken, nil, http.StatusNotFound, nil)
}

func TestCatalogQueryPaging(t *testing.T) {
	ts := startTestServer(t)
	adminToken := loginAdmin(t, ts.URL)

	for i, score := range []int{10, 50, 30, 90, 20} {
		doJSON(t, http.MethodPost, ts.URL+"/movies", adminToken, map[string]any{
			"name":             fmt.Sprintf("Movie %d", i+1),
			"genre":            "Drama",
			"popularity_score": score,
		}, http.StatusCreated, nil)
	}

	var page types.MoviePage
	doJSON(t, http.MethodGet, ts.URL+"/movies?genre=All&sortBy=popularity_desc&limit=2&offset=0", "", nil, http.StatusOK, &page)

	if len(page.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(page.Results))
	}
	if page.Results[0].PopularityScore != 90 || page.Results[1].PopularityScore != 50 {
		t.Fatalf("unexpected page order: %+v", page.Results)
	}
	if page.NextOffset != 2 || !page.HasMore || page.TotalCount != 5 {
		t.Fatalf("unexpected page metadata: %+v", page)
	}
}

func TestCatalogAdminGate(t *testing.T) {
	ts := startTestServer(t)

	var auth authResponse
	doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", map[string]string{
		"email":    "fan@example.com",
		"password": "secret",
	}, http.StatusCreated, &auth)

	// Unauthenticated and non-admin writes are both rejected.
	doJSON(t, http.MethodPost, ts.URL+"/movies", "", map[string]any{"name": "X"}, http.StatusUnauthorized, nil)
	doJSON(t, http.MethodPost, ts.URL+"/movies", auth.Token, map[string]any{"name": "X"}, http.StatusForbidden, nil)
}

func TestReviewSubmissionAndLeaderboard(t *testing.T) {
	ts := startTestServer(t)
	adminToken := loginAdmin(t, ts.URL)

	var movie types.Movie
	doJSON(t, http.MethodPost, ts.URL+"/movies", adminToken, map[string]any{
		"name":             "Premam",
		"genre":            "Romance",
		"popularity_score": 85,
	}, http.StatusCreated, &movie)

	var auth authResponse
	doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", map[string]string{
		"email":    "fan@example.com",
		"password": "secret",
		"name":     "Cinema Fan",
	}, http.StatusCreated, &auth)
	if auth.User.Points != 20 {
		t.Fatalf("expected signup bonus of 20 points, got %d", auth.User.Points)
	}

	var submitted reviewResponse
	doJSON(t, http.MethodPost, fmt.Sprintf("%s/movies/%d/reviews", ts.URL, movie.ID), auth.Token, map[string]any{
		"text":   "Absolute masterpiece!",
		"rating": 5,
	}, http.StatusCreated, &submitted)

	if submitted.PointsEarned != 10 {
		t.Fatalf("expected 10 points earned, got %d", submitted.PointsEarned)
	}
	if submitted.Review.UserName != "Cinema Fan" {
		t.Fatalf("expected author snapshot, got %q", submitted.Review.UserName)
	}

	var reviews []types.Review
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/movies/%d/reviews", ts.URL, movie.ID), "", nil, http.StatusOK, &reviews)
	if len(reviews) != 1 || reviews[0].ID != submitted.Review.ID {
		t.Fatalf("unexpected review list: %+v", reviews)
	}

	var entries []types.LeaderboardEntry
	doJSON(t, http.MethodGet, ts.URL+"/leaderboard", "", nil, http.StatusOK, &entries)
	if len(entries) != 1 {
		t.Fatalf("expected one non-admin entry, got %d", len(entries))
	}
	if entries[0].Points != 30 || entries[0].Rank != 1 {
		t.Fatalf("unexpected leaderboard entry: %+v", entries[0])
	}

	var me types.User
	doJSON(t, http.MethodGet, ts.URL+"/auth/me", auth.Token, nil, http.StatusOK, &me)
	if me.Points != 30 || me.ReviewsCount != 1 {
		t.Fatalf("unexpected profile after review: %+v", me)
	}
}

func TestRecommendations(t *testing.T) {
	ts := startTestServer(t)
	adminToken := loginAdmin(t, ts.URL)

	for _, m := range []map[string]any{
		{"name": "A", "genre": "Drama", "popularity_score": 90},
		{"name": "B", "genre": "Drama", "popularity_score": 70},
		{"name": "C", "genre": "Action", "popularity_score": 95},
	} {
		doJSON(t, http.MethodPost, ts.URL+"/movies", adminToken, m, http.StatusCreated, nil)
	}

	var recommended []types.Movie
	doJSON(t, http.MethodGet, ts.URL+"/movies/1/recommendations", "", nil, http.StatusOK, &recommended)
	if len(recommended) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recommended))
	}
	if recommended[0].Name != "B" || recommended[1].Name != "C" {
		t.Fatalf("unexpected recommendation order: %+v", recommended)
	}
}

func TestRequestValidation(t *testing.T) {
	ts := startTestServer(t)
	adminToken := loginAdmin(t, ts.URL)

	var movie types.Movie
	doJSON(t, http.MethodPost, ts.URL+"/movies", adminToken, map[string]any{
		"name":  "Drishyam",
		"genre": "Thriller",
	}, http.StatusCreated, &movie)

	doJSON(t, http.MethodGet, ts.URL+"/movies?sortBy=bogus", "", nil, http.StatusBadRequest, nil)
	doJSON(t, http.MethodGet, ts.URL+"/movies/not-a-number", "", nil, http.StatusBadRequest, nil)
	doJSON(t, http.MethodPost, ts.URL+"/movies", adminToken, map[string]any{
		"name":             "Broken",
		"popularity_score": 250,
	}, http.StatusBadRequest, nil)

	var auth authResponse
	doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", map[string]string{
		"email":    "fan@example.com",
		"password": "secret",
	}, http.StatusCreated, &auth)

	reviewURL := fmt.Sprintf("%s/movies/%d/reviews", ts.URL, movie.ID)
	doJSON(t, http.MethodPost, reviewURL, auth.Token, map[string]any{"text": "great", "rating": 6}, http.StatusBadRequest, nil)
	doJSON(t, http.MethodPost, reviewURL, auth.Token, map[string]any{"text": "", "rating": 3}, http.StatusBadRequest, nil)
	doJSON(t, http.MethodPost, reviewURL, "", map[string]any{"text": "great", "rating": 3}, http.StatusUnauthorized, nil)

	// Failed submissions must not award points.
	var me types.User
	doJSON(t, http.MethodGet, ts.URL+"/auth/me", auth.Token, nil, http.StatusOK, &me)
	if me.Points != 20 || me.ReviewsCount != 0 {
		t.Fatalf("rejected reviews should not change reputation: %+v", me)
	}
}

func TestAuthFlows(t *testing.T) {
	ts := startTestServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", map[string]string{
		"email":    "fan@example.com",
		"password": "secret",
	}, http.StatusCreated, nil)

	// Registering the same email again collides.
	doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", map[string]string{
		"email":    "fan@example.com",
		"password": "other",
	}, http.StatusConflict, nil)

	doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", map[string]string{
		"email":    "fan@example.com",
		"password": "wrong",
	}, http.StatusUnauthorized, nil)

	var auth authResponse
	doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", map[string]string{
		"email":    "fan@example.com",
		"password": "secret",
	}, http.StatusOK, &auth)

	var profile types.User
	doJSON(t, http.MethodGet, ts.URL+"/users/"+auth.User.ID, "", nil, http.StatusOK, &profile)
	if profile.ID != auth.User.ID {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}
