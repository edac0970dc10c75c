package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"consensus-be/internal/config"
	"consensus-be/internal/container"
	"consensus-be/internal/handler"
	"consensus-be/internal/middleware"
	"consensus-be/internal/store"
	"consensus-be/pkg/database"
	"consensus-be/pkg/logger"
	"consensus-be/pkg/redis"
)

// Resources holds all resources that need cleanup
type Resources struct {
	db          *database.PostgresDB
	redisClient *redis.Client
	server      *http.Server
	log         *logger.Logger
	mu          sync.Mutex
	closed      bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error

	r.log.Info("Starting graceful shutdown...")

	if r.server != nil {
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		} else {
			r.log.Info("HTTP server shutdown complete")
		}
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			r.log.WithError(err).Error("Failed to close Redis connection")
			errs = append(errs, fmt.Errorf("Redis close: %w", err))
		} else {
			r.log.Info("Redis connection closed")
		}
	}

	if r.db != nil {
		r.db.Close()
		r.log.Info("Database connection pool closed")
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errs), errs)
	}

	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":          cfg.Port,
		"log_level":     cfg.LogLevel,
		"environment":   cfg.Environment,
		"store_backend": cfg.StoreBackend,
	}).Info("Starting consensus-be server")

	ctx := context.Background()

	deps, err := container.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	// Select the poll persistence backend
	var (
		persist store.Persistence
		db      *database.PostgresDB
	)
	switch cfg.StoreBackend {
	case "postgres":
		db, err = database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		pgPersist := store.NewPostgresPersistence(db)
		if err := pgPersist.EnsureSchema(ctx); err != nil {
			log.WithError(err).Fatal("Failed to prepare database schema")
		}
		persist = pgPersist
	case "redis":
		if !deps.HasRedis() {
			log.Fatal("STORE_BACKEND=redis requires REDIS_URL")
		}
		persist = store.NewRedisPersistence(deps.GetRedisClient())
	case "memory":
		persist = store.NewMemoryPersistence()
		log.Warn("Using in-memory poll store, polls will not survive a restart")
	default:
		log.WithField("backend", cfg.StoreBackend).Fatal("Unknown store backend")
	}

	pollStore := store.New(persist, store.Options{
		Strict: cfg.StoreStrict,
		Logger: log.Logger,
	})
	// A corrupt persisted document aborts startup rather than serving
	// over broken state.
	if err := pollStore.Load(ctx); err != nil {
		log.WithError(err).Fatal("Failed to load poll collection")
	}

	router := setupRouter(deps, pollStore)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	resources := &Resources{
		db:          db,
		redisClient: deps.GetRedisClient(),
		server:      server,
		log:         log,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error occurred")
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(deps *container.Container, pollStore *store.Store) *chi.Mux {
	cfg := deps.GetConfig()
	log := deps.GetLogger()

	r := chi.NewRouter()

	corsConfig := &middleware.CORSConfig{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		ExposedHeaders:   []string{"Content-Length", "ETag"},
		AllowCredentials: true,
		MaxAge:           86400,
	}

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	var states handler.StateStore
	if deps.HasRedis() {
		states = handler.NewRedisStateStore(deps.GetRedisClient())
	} else {
		states = handler.NewMemoryStateStore()
	}

	healthHandler := handler.NewHealthHandler(deps)
	pollHandler := handler.NewPollHandler(pollStore, cfg, log)
	searchHandler := handler.NewSearchHandler(deps.GetYelpService(), log)
	multimodalHandler := handler.NewMultimodalHandler(deps.GetGeminiService(), deps.GetYelpService(), log)
	calendarHandler := handler.NewCalendarHandler(deps.GetCalendarService(), states, log)

	r.Get("/health", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		pollHandler.RegisterRoutes(r)

		r.Route("/yelp", func(r chi.Router) {
			r.Post("/chat", searchHandler.Chat)
			r.Post("/search", searchHandler.Search)
		})

		r.Route("/gemini", func(r chi.Router) {
			r.Post("/process-audio", multimodalHandler.ProcessAudio)
			r.Post("/process-image", multimodalHandler.ProcessImage)
			r.Post("/transcribe-audio", multimodalHandler.TranscribeAudio)
			r.Post("/multimodal-search", multimodalHandler.MultimodalSearch)
		})

		r.Route("/calendar", func(r chi.Router) {
			r.Get("/auth/start", calendarHandler.StartAuth)
			r.Get("/auth/callback", calendarHandler.AuthCallback)
			r.Post("/create-event", calendarHandler.CreateEvent)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"type":"not_found","message":"Endpoint not found"}}`))
	})

	log.Info("Router configured successfully")
	return r
}
