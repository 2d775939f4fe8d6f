package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"bookreview/internal/domain"
)

// ErrTokenConsumed is returned by Rotate when the token was used or revoked
// between lookup and rotation.
var ErrTokenConsumed = errors.New("refresh token already consumed")

// RefreshTokenRepository provides DB access for refresh tokens.
type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *RefreshTokenRepository) GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Rotate marks current as used and stores next in the same family, atomically.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, currentID int64, next *domain.RefreshToken, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.RefreshToken{}).
			Where("id = ? AND used_at IS NULL AND revoked_at IS NULL", currentID).
			Updates(map[string]any{"used_at": at, "revoked_at": at})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenConsumed
		}
		next.RotatedFrom = &currentID
		return tx.Create(next).Error
	})
}

// MarkReuse flags a replayed token and revokes every live token of its family.
func (r *RefreshTokenRepository) MarkReuse(ctx context.Context, t *domain.RefreshToken, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.RefreshToken{}).
			Where("id = ?", t.ID).
			Update("reuse_detected_at", at).Error; err != nil {
			return err
		}
		return tx.Model(&domain.RefreshToken{}).
			Where("family_id = ? AND revoked_at IS NULL", t.FamilyID).
			Update("revoked_at", at).Error
	})
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at).Error
}

func (r *RefreshTokenRepository) RevokeByUser(ctx context.Context, userID int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", at).Error
}

// DeleteStale removes expired tokens and tokens revoked before revokedBefore.
func (r *RefreshTokenRepository) DeleteStale(ctx context.Context, now, revokedBefore time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", now, revokedBefore).
		Delete(&domain.RefreshToken{})
	return res.RowsAffected, res.Error
}
