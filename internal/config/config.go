package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix = "BOOKREVIEW_"

	defaultJWTSecret          = "change-me-jwt-secret"
	defaultRefreshTokenPepper = "change-me-refresh-pepper"
)

// Config is read from BOOKREVIEW_* environment variables (a .env file is loaded first).
// BOOKREVIEW_JWT_ACCESS_TTL maps to the jwt_access_ttl key, and so on.
type Config struct {
	AppEnv      string `koanf:"app_env" validate:"required"`
	HTTPAddr    string `koanf:"http_addr" validate:"required"`
	LogLevel    string `koanf:"log_level" validate:"required,oneof=debug info warn error"`
	DatabaseURL string `koanf:"database_url" validate:"required"`
	AutoMigrate bool   `koanf:"auto_migrate"`

	JWTSecret          string        `koanf:"jwt_secret" validate:"required"`
	JWTAccessTTL       time.Duration `koanf:"jwt_access_ttl" validate:"required"`
	JWTRefreshTTL      time.Duration `koanf:"jwt_refresh_ttl" validate:"required"`
	RefreshTokenPepper string        `koanf:"refresh_token_pepper" validate:"required"`

	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
	DocsEnabled        bool     `koanf:"docs_enabled"`

	StorageDriver     string `koanf:"storage_driver" validate:"required,oneof=local s3"`
	MediaDir          string `koanf:"media_dir"`
	MediaURL          string `koanf:"media_url"`
	MaxUploadMB       int64  `koanf:"max_upload_mb" validate:"gt=0"`
	S3Bucket          string `koanf:"s3_bucket" validate:"required_if=StorageDriver s3"`
	S3Region          string `koanf:"s3_region"`
	S3AccessKeyID     string `koanf:"s3_access_key_id"`
	S3SecretAccessKey string `koanf:"s3_secret_access_key"`
	S3PublicURL       string `koanf:"s3_public_url"`

	RedisAddr      string  `koanf:"redis_addr"`
	RedisPassword  string  `koanf:"redis_password"`
	RateLimitRPS   float64 `koanf:"rate_limit_rps" validate:"gte=0"`
	RateLimitBurst int     `koanf:"rate_limit_burst" validate:"gte=0"`
}

func Default() *Config {
	return &Config{
		AppEnv:             "dev",
		HTTPAddr:           ":8080",
		LogLevel:           "info",
		DatabaseURL:        "bookreview.db",
		AutoMigrate:        true,
		JWTSecret:          defaultJWTSecret,
		JWTAccessTTL:       5 * time.Minute,
		JWTRefreshTTL:      24 * time.Hour,
		RefreshTokenPepper: defaultRefreshTokenPepper,
		CORSAllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		DocsEnabled:        true,
		StorageDriver:      "local",
		MediaDir:           "./media",
		MediaURL:           "/media",
		MaxUploadMB:        50,
		S3Region:           "us-east-1",
		RateLimitRPS:       20,
		RateLimitBurst:     40,
	}
}

// Load overlays the environment on top of Default and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.CORSAllowedOrigins = trimAll(cfg.CORSAllowedOrigins)
	// docs default to off in production unless asked for
	if cfg.IsProduction() && !k.Exists("docs_enabled") {
		cfg.DocsEnabled = false
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.JWTRefreshTTL <= cfg.JWTAccessTTL {
		return fmt.Errorf("JWT_REFRESH_TTL must be longer than JWT_ACCESS_TTL")
	}

	if cfg.IsProduction() {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.RefreshTokenPepper, defaultRefreshTokenPepper) {
			return fmt.Errorf("in prod/release REFRESH_TOKEN_PEPPER must be set and not default")
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	appEnv := strings.ToLower(strings.TrimSpace(c.AppEnv))
	return appEnv == "prod" || appEnv == "production" || appEnv == "release"
}

func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, s := range strings.Split(item, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
