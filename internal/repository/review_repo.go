package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookreview/internal/domain"
	"bookreview/internal/filter"
	"bookreview/internal/pkg/pagination"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rv).Error
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int64, preloads ...string) (*domain.Review, error) {
	var rv domain.Review
	if err := withPreloads(r.db.WithContext(ctx), preloads).First(&rv, id).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

// Exists reports whether reviewerID already reviewed bookID, ignoring excludeID.
func (r *ReviewRepository) Exists(ctx context.Context, bookID, reviewerID, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("book_id = ? AND reviewer_id = ? AND id <> ?", bookID, reviewerID, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *ReviewRepository) List(ctx context.Context, q *filter.Query, p pagination.Params, preloads []string) ([]domain.Review, int64, error) {
	return list[domain.Review](ctx, r.db, q, p, preloads)
}

func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(rv).Error
}

func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
