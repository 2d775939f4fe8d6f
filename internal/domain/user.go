package domain

import "time"

type UserRole string

const (
	RoleOther    UserRole = "other"
	RoleAdmin    UserRole = "admin"
	RoleAuthor   UserRole = "author"
	RoleReviewer UserRole = "reviewer"
)

// SelfAssignable reports whether a role may be chosen at registration.
func (r UserRole) SelfAssignable() bool {
	return r == RoleAuthor || r == RoleReviewer || r == RoleOther
}

func (r UserRole) Valid() bool {
	return r.SelfAssignable() || r == RoleAdmin
}

type User struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email        string     `json:"email" gorm:"size:254"`
	FirstName    string     `json:"first_name" gorm:"size:150"`
	LastName     string     `json:"last_name" gorm:"size:150"`
	PasswordHash string     `json:"-" gorm:"column:password_hash;not null"`
	Role         UserRole   `json:"role" gorm:"size:16;index;not null"`
	IsActive     bool       `json:"is_active" gorm:"not null"`
	LastLogin    *time.Time `json:"last_login"`
	DateJoined   time.Time  `json:"date_joined" gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time  `json:"-"`

	Books     []Book     `json:"-" gorm:"foreignKey:AuthorID"`
	Reviews   []Review   `json:"-" gorm:"foreignKey:ReviewerID"`
	Favorites []Favorite `json:"-" gorm:"foreignKey:UserID"`
}

func (User) TableName() string { return "users" }

// OwnerID makes a user the owner of their own account.
func (u *User) OwnerID() int64 { return u.ID }

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
