// Package main is the entry point for the Recipe Box API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkordes/recipe-box/internal/config"
	"github.com/pkordes/recipe-box/internal/filestore"
	"github.com/pkordes/recipe-box/internal/handler"
	"github.com/pkordes/recipe-box/internal/middleware"
	"github.com/pkordes/recipe-box/internal/repo"
	"github.com/pkordes/recipe-box/internal/service"
	"github.com/pkordes/recipe-box/spec"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use the default logger before the configured one exists.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Storage backend --------------------------------------------------
	// DATABASE_URL selects Postgres; otherwise recipes live as JSON files
	// under DATA_DIR. Both backends satisfy the same repo interfaces, so
	// nothing past this block knows which one is active.
	var (
		recipes  repo.RecipeRepo
		tagIndex repo.TagIndex
	)
	if cfg.UsePostgres() {
		// pgxpool manages a pool of Postgres connections.
		// New() does not open connections immediately — the first query does.
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		// Verify the DB is reachable before accepting traffic.
		if err := pool.Ping(context.Background()); err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		recipes = repo.NewRecipeRepo(pool)
		tagIndex = repo.NewTagIndex(pool)
		slog.Info("storage backend ready", "backend", "postgres")
	} else {
		recipes, err = filestore.NewRecipeRepo(cfg.DataDir)
		if err != nil {
			slog.Error("failed to open file store", "error", err)
			os.Exit(1)
		}
		tagIndex, err = filestore.NewTagIndex(cfg.DataDir)
		if err != nil {
			slog.Error("failed to open tag index", "error", err)
			os.Exit(1)
		}
		slog.Info("storage backend ready", "backend", "filestore", "data_dir", cfg.DataDir)
	}

	// --- Services ---------------------------------------------------------
	recipeSvc := service.NewRecipeService(recipes, tagIndex, logger)
	tagSvc := service.NewTagService(tagIndex)
	exportSvc := service.NewExportService(recipes, tagIndex)
	maintSvc := service.NewMaintenanceService(recipes, tagIndex)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	srv := handler.NewServer(recipeSvc, tagSvc, exportSvc, maintSvc, spec.OpenAPI)
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
