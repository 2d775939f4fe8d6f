package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"bookreview/internal/config"
	"bookreview/internal/database"
	"bookreview/internal/pkg/logger"
	"bookreview/internal/repository"
)

// Revoked tokens are kept this long so reuse of a rotated token is still detected.
const revokedRetention = 30 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	lg, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		lg.Fatal("db connect failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now().UTC()
	deleted, err := repository.NewRefreshTokenRepository(db).DeleteStale(ctx, now, now.Add(-revokedRetention))
	if err != nil {
		lg.Fatal("cleanup refresh_tokens failed", zap.Error(err))
	}
	lg.Info("auth cleanup completed", zap.Int64("refresh_tokens", deleted))
}
