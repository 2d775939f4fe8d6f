package domain

import (
	"time"
)

type FavoriteReason int

const (
	ReasonOther FavoriteReason = iota
	ReasonRecommended
	ReasonReading
	ReasonListing
	ReasonPersonalInterest
	ReasonPurchasing
	ReasonGift
	ReasonCollection
)

func (r FavoriteReason) Valid() bool {
	return r >= ReasonOther && r <= ReasonCollection
}

// Favorite marks a book in a user's personal list. One row per (user, book).
type Favorite struct {
	ID        int64          `json:"id" gorm:"primaryKey"`
	UserID    int64          `json:"user" gorm:"not null;index;uniqueIndex:idx_favorite_user_book"`
	BookID    int64          `json:"book" gorm:"not null;index;uniqueIndex:idx_favorite_user_book"`
	Reason    FavoriteReason `json:"reason" gorm:"not null"`
	Notes     *string        `json:"notes" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
	Book *Book `json:"-" gorm:"foreignKey:BookID"`
}

func (Favorite) TableName() string {
	return "favorites"
}

func (f *Favorite) OwnerID() int64 { return f.UserID }
