package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cinehub/apiserver/config"
	"github.com/cinehub/apiserver/internal/handlers"
	"github.com/cinehub/apiserver/internal/mq"
	"github.com/cinehub/apiserver/internal/seed"
	"github.com/cinehub/apiserver/internal/services"
	"github.com/cinehub/apiserver/internal/storage"
	"github.com/cinehub/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	logger     *zap.Logger
	broker     *mq.MQ
}

// New constructs a Server: in-memory stores, the engines on top of
// them, optional poster storage and event broker backends, and the
// route table.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	catalogStore := store.NewCatalogStore()
	userStore := store.NewUserStore()
	reviewStore := store.NewReviewStore()

	posters, err := newPosterStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	broker, err := newBroker(ctx, cfg.MQ)
	if err != nil {
		return nil, err
	}
	var events services.EventPublisher
	if broker != nil {
		events = broker
	}

	catalogService := services.NewCatalogService(catalogStore)
	userService := services.NewUserService(userStore)
	reputationService := services.NewReputationService(userStore)
	recommendationService := services.NewRecommendationService(catalogStore)
	reviewService := services.NewReviewService(reviewStore, reputationService, events, logger)

	if err := seed.Bootstrap(ctx, cfg, catalogStore, userStore, reviewStore); err != nil {
		return nil, err
	}

	authMiddleware := handlers.RequireAuth(jwtSecret)
	movieHandler := handlers.NewMovieHandler(catalogService, reviewService, recommendationService, userService, posters)
	leaderboardHandler := handlers.NewLeaderboardHandler(reputationService, userService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/movies", func(r chi.Router) {
		handlers.MovieRouter(r, movieHandler, authMiddleware)
	})
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, jwtSecret)
	})
	router.Get("/leaderboard", leaderboardHandler.Leaderboard)
	router.Get("/users/{userID}", leaderboardHandler.GetUser)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		logger:     logger,
		broker:     broker,
	}, nil
}

// Router exposes the chi router for route registration and tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.broker != nil {
		_ = s.broker.Close()
	}
	return s.httpServer.Close()
}

// newPosterStorage builds the configured object-storage backend, or
// nil when poster uploads are disabled.
func newPosterStorage(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		st := storage.NewStorage(client)
		if err := st.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return st, nil
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		st := storage.NewStorage(client)
		if err := st.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// newBroker builds the configured event broker, or nil when event
// publishing is disabled.
func newBroker(ctx context.Context, cfg config.MQConfig) (*mq.MQ, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}
