package auth

import (
	"context"
	"time"

	"bookreview/internal/domain"
	"bookreview/internal/pkg/jwt"
)

// UserRepositoryInterface lists only the methods the auth service uses.
type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id int64, preloads ...string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// RefreshTokenRepositoryInterface stores refresh tokens.
type RefreshTokenRepositoryInterface interface {
	Create(ctx context.Context, t *domain.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error)
	Rotate(ctx context.Context, currentID int64, next *domain.RefreshToken, at time.Time) error
	MarkReuse(ctx context.Context, t *domain.RefreshToken, at time.Time) error
	Revoke(ctx context.Context, id int64, at time.Time) error
}

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
	ValidateToken(token string) (*jwt.Claims, error)
}
