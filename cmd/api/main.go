// @title           Book Review API
// @version         1.0
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.basic BasicAuth
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookreview/internal/config"
	"bookreview/internal/database"
	"bookreview/internal/expand"
	"bookreview/internal/middleware"
	"bookreview/internal/modules/auth"
	"bookreview/internal/modules/book"
	"bookreview/internal/modules/favorite"
	"bookreview/internal/modules/notification"
	"bookreview/internal/modules/review"
	"bookreview/internal/modules/user"
	jwtsvc "bookreview/internal/pkg/jwt"
	"bookreview/internal/pkg/logger"
	"bookreview/internal/ratelimit"
	"bookreview/internal/repository"
	"bookreview/internal/router"
	"bookreview/internal/storage"
)

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

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		lg.Fatal("db connect failed", zap.Error(err))
	}
	switch {
	case database.IsPostgres(cfg.DatabaseURL):
		if err := database.Migrate(cfg.DatabaseURL, "up", 0); err != nil {
			lg.Fatal("migrations failed", zap.Error(err))
		}
	case cfg.AutoMigrate:
		if err := database.AutoMigrate(db); err != nil {
			lg.Fatal("auto migrate failed", zap.Error(err))
		}
	}

	limiter, err := newLimiter(cfg, lg)
	if err != nil {
		lg.Fatal("rate limiter init failed", zap.Error(err))
	}

	files, err := newStorage(ctx, cfg)
	if err != nil {
		lg.Fatal("storage init failed", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	bookRepo := repository.NewBookRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := auth.NewService(userRepo, tokenRepo, j, cfg.RefreshTokenPepper, cfg.JWTRefreshTTL)
	hub := notification.NewHub()
	expands := expand.Default()

	deps := router.Deps{
		Log:         lg,
		Authn:       middleware.NewAuthenticator(j, userRepo, authService),
		Limiter:     limiter,
		CORSOrigins: cfg.CORSAllowedOrigins,
		DocsEnabled: cfg.DocsEnabled,

		Auth:          auth.NewHandler(authService),
		Users:         user.NewHandler(user.NewService(userRepo, files, lg), expands),
		Books:         book.NewHandler(book.NewService(bookRepo, files, lg), expands),
		Reviews:       review.NewHandler(review.NewService(reviewRepo, bookRepo, hub), expands),
		Favorites:     favorite.NewHandler(favorite.NewService(favoriteRepo, bookRepo, hub), expands),
		Notifications: notification.NewHandler(hub, j, userRepo, lg, originChecker(cfg)),
	}
	if cfg.StorageDriver == "local" {
		deps.MediaDir = cfg.MediaDir
		deps.MediaURL = cfg.MediaURL
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("http server started", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("http server shutdown", zap.Error(err))
	}
	hub.Close()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Redis is used when configured so limits hold across instances.
func newLimiter(cfg *config.Config, lg *zap.Logger) (ratelimit.Limiter, error) {
	if cfg.RateLimitRPS <= 0 {
		lg.Info("rate limiting disabled")
		return nil, nil
	}
	if cfg.RedisAddr != "" {
		rdb, err := ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		limit := ratelimit.WindowLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)
		lg.Info("rate limiting via redis", zap.String("addr", cfg.RedisAddr), zap.Int("per_second", limit))
		return ratelimit.NewRedis(rdb, limit), nil
	}
	return ratelimit.NewMemory(cfg.RateLimitRPS, cfg.RateLimitBurst), nil
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.StorageDriver == "s3" {
		return storage.NewS3(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicURL:       cfg.S3PublicURL,
		}, cfg.MaxUploadBytes())
	}
	return storage.NewLocal(cfg.MediaDir, cfg.MediaURL, cfg.MaxUploadBytes()), nil
}

// Outside production any origin may open a socket.
func originChecker(cfg *config.Config) func(*http.Request) bool {
	if !cfg.IsProduction() {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(cfg.CORSAllowedOrigins, origin)
	}
}
