package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bookreview/internal/domain"
	"bookreview/internal/repository"
)

// dummyHash keeps password checks for unknown usernames as slow as real ones.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), bcrypt.DefaultCost)

// Service issues and checks access and refresh tokens.
type Service struct {
	users              UserRepositoryInterface
	tokens             RefreshTokenRepositoryInterface
	jwt                jwtService
	refreshTokenPepper string
	refreshTTL         time.Duration
	now                func() time.Time
}

func NewService(
	users UserRepositoryInterface,
	tokens RefreshTokenRepositoryInterface,
	jwt jwtService,
	refreshTokenPepper string,
	refreshTTL time.Duration,
) *Service {
	return &Service{
		users:              users,
		tokens:             tokens,
		jwt:                jwt,
		refreshTokenPepper: refreshTokenPepper,
		refreshTTL:         refreshTTL,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

// CheckCredentials returns the active user owning username/password.
func (s *Service) CheckCredentials(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if repository.IsNotFound(err) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Obtain logs a user in and starts a new refresh token family.
func (s *Service) Obtain(ctx context.Context, req ObtainRequest, userAgent, ip string) (*TokenPair, error) {
	user, err := s.CheckCredentials(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	access, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	refreshRaw, refreshHash, err := generateOpaqueRefreshToken(s.refreshTokenPepper)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Create(ctx, &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: refreshHash,
		FamilyID:  uuid.NewString(),
		ExpiresAt: now.Add(s.refreshTTL),
		UserAgent: nullableString(userAgent),
		IP:        nullableString(ip),
	}); err != nil {
		return nil, err
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refreshRaw}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// consumed; presenting it again revokes its whole family.
func (s *Service) Refresh(ctx context.Context, refreshRaw, userAgent, ip string) (*TokenPair, error) {
	now := s.now()
	current, err := s.tokens.GetByHash(ctx, hashTokenWithPepper(refreshRaw, s.refreshTokenPepper))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if current.IsExpired(now) {
		return nil, ErrInvalidRefreshToken
	}
	if current.UsedAt != nil {
		if err := s.tokens.MarkReuse(ctx, current, now); err != nil {
			return nil, err
		}
		return nil, ErrRefreshTokenReused
	}
	if current.RevokedAt != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, current.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidRefreshToken
	}

	access, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	newRaw, newHash, err := generateOpaqueRefreshToken(s.refreshTokenPepper)
	if err != nil {
		return nil, err
	}

	next := &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: newHash,
		FamilyID:  current.FamilyID,
		ExpiresAt: now.Add(s.refreshTTL),
		UserAgent: nullableString(userAgent),
		IP:        nullableString(ip),
	}
	if err := s.tokens.Rotate(ctx, current.ID, next, now); err != nil {
		if errors.Is(err, repository.ErrTokenConsumed) {
			if markErr := s.tokens.MarkReuse(ctx, current, now); markErr != nil {
				return nil, markErr
			}
			return nil, ErrRefreshTokenReused
		}
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: newRaw}, nil
}

// Verify accepts a valid access token or a live refresh token.
func (s *Service) Verify(ctx context.Context, token string) error {
	if _, err := s.jwt.ValidateToken(token); err == nil {
		return nil
	}

	t, err := s.tokens.GetByHash(ctx, hashTokenWithPepper(token, s.refreshTokenPepper))
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrInvalidToken
		}
		return err
	}
	if t.IsExpired(s.now()) || t.IsRevoked() {
		return ErrInvalidToken
	}
	return nil
}

// Blacklist revokes a refresh token. Unknown tokens are an error so clients
// notice they sent garbage.
func (s *Service) Blacklist(ctx context.Context, refreshRaw string) error {
	t, err := s.tokens.GetByHash(ctx, hashTokenWithPepper(refreshRaw, s.refreshTokenPepper))
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrInvalidRefreshToken
		}
		return err
	}
	if t.IsExpired(s.now()) {
		return ErrInvalidRefreshToken
	}
	return s.tokens.Revoke(ctx, t.ID, s.now())
}

func generateOpaqueRefreshToken(pepper string) (raw string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	hash = hashTokenWithPepper(raw, pepper)
	return raw, hash, nil
}

func hashTokenWithPepper(raw, pepper string) string {
	sum := sha256.Sum256([]byte(raw + pepper))
	return hex.EncodeToString(sum[:])
}

func nullableString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
