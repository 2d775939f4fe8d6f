package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"bookreview/internal/config"
	"bookreview/internal/database"
	"bookreview/internal/pkg/logger"
)

func main() {
	direction := flag.String("direction", "up", "up or down")
	steps := flag.Int("steps", 0, "number of migrations to apply, 0 for all")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	lg, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	if !database.IsPostgres(cfg.DatabaseURL) {
		lg.Fatal("sql migrations target PostgreSQL; SQLite uses auto migrate", zap.String("dsn", cfg.DatabaseURL))
	}
	if err := database.Migrate(cfg.DatabaseURL, *direction, *steps); err != nil {
		lg.Fatal("migrate failed", zap.String("direction", *direction), zap.Error(err))
	}
	lg.Info("migrations applied", zap.String("direction", *direction), zap.Int("steps", *steps))
}
