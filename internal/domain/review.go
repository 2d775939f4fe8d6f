package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is unique per (book, reviewer).
type Review struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	BookID     int64     `json:"book" gorm:"not null;index;uniqueIndex:idx_review_book_reviewer"`
	ReviewerID int64     `json:"reviewer" gorm:"not null;index;uniqueIndex:idx_review_book_reviewer"`
	Title      string    `json:"title" gorm:"size:200;not null"`
	Content    string    `json:"content" gorm:"type:text"`
	Rating     int       `json:"rating" gorm:"not null"`
	IsTrusted  bool      `json:"is_trusted" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time `json:"updated_at"`

	Book     *Book `json:"-" gorm:"foreignKey:BookID"`
	Reviewer *User `json:"-" gorm:"foreignKey:ReviewerID"`
}

func (Review) TableName() string { return "reviews" }

func (r *Review) OwnerID() int64 { return r.ReviewerID }
