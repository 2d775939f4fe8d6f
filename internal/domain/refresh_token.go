package domain

import "time"

// RefreshToken stores opaque refresh tokens issued by the token endpoints.
//
// Security notes:
// - We never store the raw token in DB, only its peppered SHA-256 hash (TokenHash).
// - On refresh we rotate tokens: the old row is marked used and a new row joins the same family.
// - Presenting a used token again revokes the whole family.
type RefreshToken struct {
	ID int64 `json:"id" gorm:"primaryKey"`

	UserID int64 `json:"user_id" gorm:"index;not null"`

	TokenHash string `json:"-" gorm:"size:64;uniqueIndex;not null"`
	FamilyID  string `json:"family_id" gorm:"size:36;index;not null"`

	RotatedFrom     *int64     `json:"rotated_from"`
	UserAgent       *string    `json:"user_agent" gorm:"size:255"`
	IP              *string    `json:"ip" gorm:"size:64"`
	CreatedAt       time.Time  `json:"created_at"`
	ExpiresAt       time.Time  `json:"expires_at" gorm:"index;not null"`
	UsedAt          *time.Time `json:"used_at"`
	RevokedAt       *time.Time `json:"revoked_at" gorm:"index"`
	ReuseDetectedAt *time.Time `json:"reuse_detected_at"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil || t.UsedAt != nil
}
