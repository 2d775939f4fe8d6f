package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookreview/internal/domain"
	"bookreview/internal/filter"
	"bookreview/internal/pkg/pagination"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) DB() *gorm.DB { return r.db }

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id int64, preloads ...string) (*domain.User, error) {
	var u domain.User
	if err := withPreloads(r.db.WithContext(ctx), preloads).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Where("username = ?", strings.TrimSpace(username)).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("username = ?", strings.TrimSpace(username)).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) List(ctx context.Context, q *filter.Query, p pagination.Params, preloads []string) ([]domain.User, int64, error) {
	return list[domain.User](ctx, r.db, q, p, preloads)
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(u).Error
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login", at).Error
}

// Delete removes the user with everything hanging off the account:
// their favorites, reviews, books (with the books' reviews and favorites)
// and refresh tokens. It returns the stored media URLs of the removed books.
func (r *UserRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	var media []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var books []domain.Book
		if err := tx.Select("id", "cover_image", "file").Where("author_id = ?", id).Find(&books).Error; err != nil {
			return err
		}
		bookIDs := make([]int64, 0, len(books))
		for _, b := range books {
			bookIDs = append(bookIDs, b.ID)
			if b.CoverImage != nil {
				media = append(media, *b.CoverImage)
			}
			if b.File != nil {
				media = append(media, *b.File)
			}
		}
		if len(bookIDs) > 0 {
			if err := tx.Where("book_id IN ?", bookIDs).Delete(&domain.Favorite{}).Error; err != nil {
				return err
			}
			if err := tx.Where("book_id IN ?", bookIDs).Delete(&domain.Review{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("reviewer_id = ?", id).Delete(&domain.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&domain.Book{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.RefreshToken{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return media, nil
}
