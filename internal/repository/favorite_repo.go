package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookreview/internal/domain"
	"bookreview/internal/filter"
	"bookreview/internal/pkg/pagination"
)

// FavoriteRepository stores users' favorite books.
type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) Create(ctx context.Context, f *domain.Favorite) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(f).Error
}

// GetForUser looks a favorite up within the user's own list, so another
// user's favorite reads as not found.
func (r *FavoriteRepository) GetForUser(ctx context.Context, id, userID int64, preloads ...string) (*domain.Favorite, error) {
	var f domain.Favorite
	err := withPreloads(r.db.WithContext(ctx), preloads).
		Where("id = ? AND user_id = ?", id, userID).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Exists reports whether the book is already in the user's list, ignoring excludeID.
func (r *FavoriteRepository) Exists(ctx context.Context, userID, bookID, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Favorite{}).
		Where("user_id = ? AND book_id = ? AND id <> ?", userID, bookID, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *FavoriteRepository) List(ctx context.Context, q *filter.Query, p pagination.Params, preloads []string) ([]domain.Favorite, int64, error) {
	return list[domain.Favorite](ctx, r.db, q, p, preloads)
}

func (r *FavoriteRepository) Update(ctx context.Context, f *domain.Favorite) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(f).Error
}

func (r *FavoriteRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Favorite{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
