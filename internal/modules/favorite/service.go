package favorite

import (
	"context"
	"fmt"
	"net/url"

	"bookreview/internal/domain"
	"bookreview/internal/filter"
	"bookreview/internal/modules/notification"
	"bookreview/internal/pkg/pagination"
	"bookreview/internal/repository"
)

const msgDuplicate = "The fields user, book must make a unique set."

type Repository interface {
	Create(ctx context.Context, f *domain.Favorite) error
	GetForUser(ctx context.Context, id, userID int64, preloads ...string) (*domain.Favorite, error)
	Exists(ctx context.Context, userID, bookID, excludeID int64) (bool, error)
	List(ctx context.Context, q *filter.Query, p pagination.Params, preloads []string) ([]domain.Favorite, int64, error)
	Update(ctx context.Context, f *domain.Favorite) error
	Delete(ctx context.Context, id int64) error
}

type BookLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Book, error)
}

type Notifier interface {
	Notify(userID int64, eventType string, data any) bool
}

var Filters = filter.NewSet(
	filter.Field{Param: "book", Column: "book_id", Kind: filter.Int},
	filter.Field{Param: "reason", Column: "reason", Kind: filter.Int},
	filter.Field{Param: "notes", Column: "notes"},
).
	Orderable(map[string]string{"created_at": "created_at", "reason": "reason"}).
	DefaultOrder("created_at DESC", "id DESC")

type Service struct {
	repo     Repository
	books    BookLookup
	notifier Notifier
}

func NewService(repo Repository, books BookLookup, notifier Notifier) *Service {
	return &Service{repo: repo, books: books, notifier: notifier}
}

// Get only finds favorites that belong to userID.
func (s *Service) Get(ctx context.Context, id, userID int64, preloads []string) (*domain.Favorite, error) {
	f, err := s.repo.GetForUser(ctx, id, userID, preloads...)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// List returns the favorites of userID.
func (s *Service) List(ctx context.Context, userID int64, values url.Values, p pagination.Params, preloads []string) ([]domain.Favorite, int64, error) {
	q, errs := Filters.Parse(values)
	if errs != nil {
		return nil, 0, &ValidationError{Fields: errs}
	}
	q.Where("user_id = ?", userID)
	return s.repo.List(ctx, q, p, preloads)
}

func (s *Service) Create(ctx context.Context, actor *domain.User, req CreateFavoriteRequest) (*domain.Favorite, error) {
	f := &domain.Favorite{UserID: actor.ID, Reason: domain.ReasonOther}
	book, err := s.apply(ctx, f, req.patch(), false)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, f); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fieldError("non_field_errors", msgDuplicate)
		}
		return nil, err
	}

	if s.notifier != nil && book.AuthorID != actor.ID {
		s.notifier.Notify(book.AuthorID, notification.TypeFavoriteCreated, map[string]any{
			"favorite": f.ID,
			"book":     book.ID,
			"slug":     book.Slug,
			"user":     actor.ID,
			"reason":   f.Reason,
		})
	}
	return f, nil
}

// Update changes f. full resets reason and notes that are absent from req.
func (s *Service) Update(ctx context.Context, f *domain.Favorite, req PatchFavoriteRequest, full bool) (*domain.Favorite, error) {
	if _, err := s.apply(ctx, f, req, full); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, f); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fieldError("non_field_errors", msgDuplicate)
		}
		return nil, err
	}
	return f, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) apply(ctx context.Context, f *domain.Favorite, req PatchFavoriteRequest, full bool) (*domain.Book, error) {
	bookID := f.BookID
	if req.Book != nil {
		bookID = *req.Book
	}
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fieldError("book", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", bookID))
		}
		return nil, err
	}
	if bookID != f.BookID {
		exists, err := s.repo.Exists(ctx, f.UserID, bookID, f.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fieldError("non_field_errors", msgDuplicate)
		}
		f.BookID = bookID
		f.Book = nil
	}

	switch {
	case req.Reason != nil:
		if !req.Reason.Valid() {
			return nil, fieldError("reason", fmt.Sprintf("\"%d\" is not a valid choice.", *req.Reason))
		}
		f.Reason = *req.Reason
	case full:
		f.Reason = domain.ReasonOther
	}
	if req.Notes != nil || full {
		f.Notes = req.Notes
	}
	return book, nil
}
