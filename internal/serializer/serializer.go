// Package serializer renders domain objects as API JSON. Relations render as
// ids unless the expand set asks for them, in which case the preloaded object
// is embedded instead.
package serializer

import (
	"time"

	"bookreview/internal/domain"
	"bookreview/internal/expand"
)

const DateLayout = "2006-01-02"

type UserJSON struct {
	ID         int64           `json:"id"`
	Username   string          `json:"username"`
	Email      string          `json:"email"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Role       domain.UserRole `json:"role"`
	IsActive   bool            `json:"is_active"`
	LastLogin  *time.Time      `json:"last_login"`
	DateJoined time.Time       `json:"date_joined"`
	Books      any             `json:"books,omitempty"`
	Reviews    any             `json:"reviews,omitempty"`
	Favorites  any             `json:"favorites,omitempty"`
}

type BookJSON struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	Author          any             `json:"author"`
	Description     string          `json:"description"`
	Content         string          `json:"content"`
	Language        domain.Language `json:"language"`
	LanguageDisplay string          `json:"language_display"`
	Pages           *int            `json:"pages"`
	PublicationDate string          `json:"publication_date"`
	Publisher       *string         `json:"publisher"`
	CoverImage      *string         `json:"cover_image"`
	File            *string         `json:"file"`
	IsAvailable     bool            `json:"is_available"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Reviews         any             `json:"reviews,omitempty"`
}

type ReviewJSON struct {
	ID        int64     `json:"id"`
	Book      any       `json:"book"`
	Reviewer  any       `json:"reviewer"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	IsTrusted bool      `json:"is_trusted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FavoriteJSON struct {
	ID        int64                 `json:"id"`
	User      any                   `json:"user"`
	Book      any                   `json:"book"`
	Reason    domain.FavoriteReason `json:"reason"`
	Notes     *string               `json:"notes"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func User(u *domain.User, s *expand.Set) UserJSON {
	out := UserJSON{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
		IsActive:   u.IsActive,
		LastLogin:  u.LastLogin,
		DateJoined: u.DateJoined,
	}
	if s.Has("books") {
		out.Books = Books(u.Books, s.Child("books"))
	}
	if s.Has("reviews") {
		out.Reviews = Reviews(u.Reviews, s.Child("reviews"))
	}
	// favorites are private to their owner
	if s.Has("favorites") && s.Viewer() == u.ID {
		out.Favorites = Favorites(u.Favorites, s.Child("favorites"))
	}
	return out
}

func Users(users []domain.User, s *expand.Set) []UserJSON {
	out := make([]UserJSON, 0, len(users))
	for i := range users {
		out = append(out, User(&users[i], s))
	}
	return out
}

func Book(b *domain.Book, s *expand.Set) BookJSON {
	out := BookJSON{
		ID:              b.ID,
		Title:           b.Title,
		Slug:            b.Slug,
		Author:          b.AuthorID,
		Description:     b.Description,
		Content:         b.Content,
		Language:        b.Language,
		LanguageDisplay: b.Language.String(),
		Pages:           b.Pages,
		PublicationDate: b.PublicationDate.Format(DateLayout),
		Publisher:       b.Publisher,
		CoverImage:      b.CoverImage,
		File:            b.File,
		IsAvailable:     b.IsAvailable,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if s.Has("author") && b.Author != nil {
		out.Author = User(b.Author, s.Child("author"))
	}
	if s.Has("reviews") {
		out.Reviews = Reviews(b.Reviews, s.Child("reviews"))
	}
	return out
}

func Books(books []domain.Book, s *expand.Set) []BookJSON {
	out := make([]BookJSON, 0, len(books))
	for i := range books {
		out = append(out, Book(&books[i], s))
	}
	return out
}

func Review(r *domain.Review, s *expand.Set) ReviewJSON {
	out := ReviewJSON{
		ID:        r.ID,
		Book:      r.BookID,
		Reviewer:  r.ReviewerID,
		Title:     r.Title,
		Content:   r.Content,
		Rating:    r.Rating,
		IsTrusted: r.IsTrusted,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if s.Has("book") && r.Book != nil {
		out.Book = Book(r.Book, s.Child("book"))
	}
	if s.Has("reviewer") && r.Reviewer != nil {
		out.Reviewer = User(r.Reviewer, s.Child("reviewer"))
	}
	return out
}

func Reviews(reviews []domain.Review, s *expand.Set) []ReviewJSON {
	out := make([]ReviewJSON, 0, len(reviews))
	for i := range reviews {
		out = append(out, Review(&reviews[i], s))
	}
	return out
}

func Favorite(f *domain.Favorite, s *expand.Set) FavoriteJSON {
	out := FavoriteJSON{
		ID:        f.ID,
		User:      f.UserID,
		Book:      f.BookID,
		Reason:    f.Reason,
		Notes:     f.Notes,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
	if s.Has("user") && f.User != nil {
		out.User = User(f.User, s.Child("user"))
	}
	if s.Has("book") && f.Book != nil {
		out.Book = Book(f.Book, s.Child("book"))
	}
	return out
}

func Favorites(favorites []domain.Favorite, s *expand.Set) []FavoriteJSON {
	out := make([]FavoriteJSON, 0, len(favorites))
	for i := range favorites {
		out = append(out, Favorite(&favorites[i], s))
	}
	return out
}
