package repository

import (
	"context"

	"gorm.io/gorm"

	"bookreview/internal/filter"
	"bookreview/internal/pkg/pagination"
)

// list counts the filtered rows, then fetches one page with preloads applied.
func list[T any](ctx context.Context, db *gorm.DB, q *filter.Query, p pagination.Params, preloads []string) ([]T, int64, error) {
	var total int64
	if err := q.Scope(db.WithContext(ctx).Model(new(T))).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]T, 0)
	if total == 0 || int64(p.Offset()) >= total {
		return items, total, nil
	}

	tx := q.Ordered(db.WithContext(ctx).Model(new(T)))
	for _, path := range preloads {
		tx = tx.Preload(path)
	}
	if err := tx.Offset(p.Offset()).Limit(p.PageSize).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func withPreloads(db *gorm.DB, preloads []string) *gorm.DB {
	for _, path := range preloads {
		db = db.Preload(path)
	}
	return db
}
