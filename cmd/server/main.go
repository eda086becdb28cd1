package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"token-session-service/internal/audit"
	auditrepo "token-session-service/internal/audit/repository"
	"token-session-service/internal/config"
	"token-session-service/internal/db"
	"token-session-service/internal/security"
	"token-session-service/internal/server"
	"token-session-service/internal/session/handler"
	sessionrepo "token-session-service/internal/session/repository"
	"token-session-service/internal/session/service"
	"token-session-service/internal/telemetry"
	userrepo "token-session-service/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.NewProviders(ctx, cfg.OTLPEndpoint, "token-session-service")
	if err != nil {
		logger.Fatal("init telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	database, backend, err := openDatabase(cfg)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer database.Close()
	logger.Info("database ready", zap.String("backend", backend))

	codec := security.NewTokenCodec([]byte(cfg.JWTSecret), cfg.AccessTTL(), cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)
	auditor := audit.NewLogger(auditrepo.NewSQLRepository(database))

	engine := service.NewEngine(
		userrepo.NewSQLRepository(database),
		sessionrepo.NewSQLRepository(database),
		hasher,
		codec,
		auditor,
	)

	router := server.NewRouter(logger, handler.New(engine, logger, cfg.RotateReturnsExpiresIn))
	srv := server.New(cfg.HTTPAddr, router)

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// openDatabase prefers Postgres when DATABASE_URL is set and falls back to
// embedded SQLite for local development.
func openDatabase(cfg *config.Config) (*sql.DB, string, error) {
	if cfg.DatabaseURL != "" {
		d, err := db.Open(cfg.DatabaseURL)
		return d, "postgres", err
	}
	path := cfg.SQLitePath
	if path == "" {
		path = "sessions.db"
	}
	d, err := db.OpenSQLite(path)
	return d, "sqlite", err
}
