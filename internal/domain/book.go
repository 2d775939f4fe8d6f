package domain

import "time"

type Language int

const (
	LanguageEnglish Language = iota + 1
	LanguageSpanish
	LanguageFrench
	LanguageGerman
	LanguageItalian
	LanguagePortuguese
	LanguageRussian
	LanguageChinese
	LanguageJapanese
	LanguageArabic
)

var languageLabels = map[Language]string{
	LanguageEnglish:    "English",
	LanguageSpanish:    "Spanish",
	LanguageFrench:     "French",
	LanguageGerman:     "German",
	LanguageItalian:    "Italian",
	LanguagePortuguese: "Portuguese",
	LanguageRussian:    "Russian",
	LanguageChinese:    "Chinese",
	LanguageJapanese:   "Japanese",
	LanguageArabic:     "Arabic",
}

func (l Language) Valid() bool {
	_, ok := languageLabels[l]
	return ok
}

func (l Language) String() string {
	return languageLabels[l]
}

// Book is written by a user with the author role and looked up by slug.
type Book struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	Title           string    `json:"title" gorm:"size:200;not null"`
	Slug            string    `json:"slug" gorm:"size:250;uniqueIndex;not null"`
	AuthorID        int64     `json:"author" gorm:"index;not null"`
	Description     string    `json:"description" gorm:"type:text"`
	Content         string    `json:"content" gorm:"type:text"`
	Language        Language  `json:"language" gorm:"not null"`
	Pages           *int      `json:"pages"`
	PublicationDate time.Time `json:"publication_date" gorm:"type:date;not null"`
	Publisher       *string   `json:"publisher" gorm:"size:200"`
	CoverImage      *string   `json:"cover_image" gorm:"size:500"`
	File            *string   `json:"file" gorm:"size:500"`
	IsAvailable     bool      `json:"is_available" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time `json:"updated_at"`

	Author  *User    `json:"-" gorm:"foreignKey:AuthorID"`
	Reviews []Review `json:"-" gorm:"foreignKey:BookID"`
}

func (Book) TableName() string { return "books" }

func (b *Book) OwnerID() int64 { return b.AuthorID }
