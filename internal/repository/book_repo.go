package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookreview/internal/domain"
	"bookreview/internal/filter"
	"bookreview/internal/pkg/pagination"
)

type BookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) *BookRepository {
	return &BookRepository{db: db}
}

func (r *BookRepository) Create(ctx context.Context, b *domain.Book) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error
}

func (r *BookRepository) GetBySlug(ctx context.Context, slug string, preloads ...string) (*domain.Book, error) {
	var b domain.Book
	err := withPreloads(r.db.WithContext(ctx), preloads).
		Where("slug = ?", slug).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookRepository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	var b domain.Book
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Book{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

func (r *BookRepository) List(ctx context.Context, q *filter.Query, p pagination.Params, preloads []string) ([]domain.Book, int64, error) {
	return list[domain.Book](ctx, r.db, q, p, preloads)
}

func (r *BookRepository) Update(ctx context.Context, b *domain.Book) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(b).Error
}

// Delete removes the book along with its reviews and favorites.
func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&domain.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&domain.Review{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Book{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
