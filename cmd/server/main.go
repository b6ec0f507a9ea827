package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/mstamatov/userpipe-backend/internal/config"
	"github.com/mstamatov/userpipe-backend/internal/database"
	"github.com/mstamatov/userpipe-backend/internal/handlers"
	"github.com/mstamatov/userpipe-backend/internal/middleware"
	"github.com/mstamatov/userpipe-backend/internal/provider"
	"github.com/mstamatov/userpipe-backend/internal/routes"
	"github.com/mstamatov/userpipe-backend/internal/services"
	"github.com/mstamatov/userpipe-backend/pkg/utils"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL
	log.Println("Connecting to PostgreSQL...")
	db, err := database.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL: ", err)
	}
	defer db.Close()

	// Connect to Redis
	log.Println("Connecting to Redis...")
	rdb, err := database.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}
	defer rdb.Close()

	store := services.NewPostgresStore(db)
	cache := services.NewRedisCache(rdb)

	var fetcher services.Fetcher
	if cfg.ProviderURL == "fake" {
		log.Println("⚠️  Using local fake provider (no network fetches)")
		fetcher = provider.NewFakeProvider()
	} else {
		fetcher = provider.NewClient(cfg.ProviderURL)
	}

	pipeline := &services.Pipeline{
		Fetcher:    fetcher,
		Normalizer: &services.Normalizer{Anon: utils.NewAnonymizer(cfg.AnonSalt)},
		Cache:      cache,
		Store:      store,
		BatchSize:  cfg.BatchSize,
		Interval:   cfg.FetchInterval,
		CacheTTL:   cfg.CacheTTL,
	}
	go pipeline.Run(ctx)

	// Setup router
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(rdb))

	// Health check (no store access)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	userHandler := &handlers.UserHandler{
		Cache:           cache,
		Store:           store,
		RepopulateCache: cfg.RepopulateCacheOnMiss,
		CacheTTL:        cfg.CacheTTL,
	}
	routes.SetupRoutes(r, userHandler)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("🚀 Read gateway running on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Failed to start server: ", err)
	}
}
