// Package seed populates the in-memory stores at startup: the
// bootstrap administrator always, and a demo catalog with users and
// reviews when enabled. Since nothing outlives the process, seeding
// happens at server construction rather than through a CLI command.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/cinehub/apiserver/config"
	"github.com/cinehub/apiserver/internal/services"
	"github.com/cinehub/apiserver/internal/store"
	"github.com/cinehub/apiserver/types"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const demoCatalogSize = 100

// demoUserPassword is the login password for the generated demo
// accounts. Development convenience only.
const demoUserPassword = "letmein"

var genres = []string{"Drama", "Thriller", "Comedy", "Action", "Romance", "Mystery", "Sci-Fi"}

var movieTitles = []string{
	"Kumbalangi Nights", "Premam", "Drishyam", "Bangalore Days", "Maheshinte Prathikaaram",
	"Angamaly Diaries", "Thondimuthalum Driksakshiyum", "Uyare", "Virus", "Joji",
	"The Great Indian Kitchen", "Minnal Murali", "Ayyappanum Koshiyum", "Trance", "Ee.Ma.Yau",
	"Churuli", "Nayattu", "Malik", "Kurup", "Bheeshma Parvam",
	"Jana Gana Mana", "Hridayam", "Thallumaala", "Nna Thaan Case Kodu", "Rorschach",
	"Mukundan Unni Associates", "Romancham", "2018", "Kaathal", "Nanpakal Nerathu Mayakkam",
	"Bramayugam", "Manjummel Boys", "Aavesham", "Premalu", "Kishkindha Kaandam",
	"Turbo", "Guruvayoor Ambalanadayil", "Varshangalkku Shesham", "Aadujeevitham", "Kannur Squad",
}

// Bootstrap creates the administrator account and, when enabled, the
// demo data set.
func Bootstrap(ctx context.Context, cfg config.Config, catalog *store.CatalogStore, users *store.UserStore, reviews *store.ReviewStore) error {
	adminHash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := users.Insert(ctx, types.User{
		ID:           uuid.NewString(),
		Email:        cfg.Admin.Email,
		Name:         cfg.Admin.Name,
		Role:         types.RoleAdmin,
		LevelTitle:   services.LevelFor(0),
		PasswordHash: string(adminHash),
	}); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if !cfg.SeedDemoData {
		return nil
	}
	return demoData(ctx, catalog, users, reviews)
}

func demoData(ctx context.Context, catalog *store.CatalogStore, users *store.UserStore, reviews *store.ReviewStore) error {
	now := time.Now()
	for i := 0; i < demoCatalogSize; i++ {
		title := movieTitles[i%len(movieTitles)]
		if i >= len(movieTitles) {
			title = fmt.Sprintf("%s %d", title, i/len(movieTitles)+1)
		}
		genre := genres[i%len(genres)]

		if _, err := catalog.Insert(ctx, types.Movie{
			Name:            title,
			Details:         fmt.Sprintf("A compelling %s that explores the depths of human emotion and storytelling.", genre),
			Genre:           genre,
			PosterURL:       fmt.Sprintf("https://picsum.photos/300/450?random=%d", i+1),
			PopularityScore: 50 + rand.Intn(50),
			CreatedAt:       now.AddDate(0, 0, -i*5),
		}); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}

	demoHash, err := bcrypt.GenerateFromPassword([]byte(demoUserPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	demoUsers := []types.User{
		{
			ID:           uuid.NewString(),
			Email:        "superfan@kerala.com",
			Name:         "Cinema Bhranthan",
			Role:         types.RoleUser,
			Points:       1250,
			ReviewsCount: 45,
		},
		{
			ID:           uuid.NewString(),
			Email:        "newbie@test.com",
			Name:         "Movie Buff",
			Role:         types.RoleUser,
			Points:       40,
			ReviewsCount: 2,
		},
	}
	for i := range demoUsers {
		demoUsers[i].LevelTitle = services.LevelFor(demoUsers[i].Points)
		demoUsers[i].PasswordHash = string(demoHash)
		if _, err := users.Insert(ctx, demoUsers[i]); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}

	demoReviews := []types.Review{
		{
			ID:        uuid.NewString(),
			MovieID:   1,
			UserID:    demoUsers[0].ID,
			UserName:  demoUsers[0].Name,
			Rating:    5,
			Text:      "Absolute masterpiece!",
			Likes:     12,
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID:        uuid.NewString(),
			MovieID:   1,
			UserID:    demoUsers[1].ID,
			UserName:  demoUsers[1].Name,
			Rating:    4,
			Text:      "Great cinematography.",
			Likes:     2,
			CreatedAt: now.Add(-1 * time.Hour),
		},
	}
	for _, r := range demoReviews {
		if _, err := reviews.Add(ctx, r); err != nil {
			return fmt.Errorf("seed reviews: %w", err)
		}
	}
	return nil
}
