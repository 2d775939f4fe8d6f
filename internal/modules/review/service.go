package review

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"bookreview/internal/domain"
	"bookreview/internal/filter"
	"bookreview/internal/modules/notification"
	"bookreview/internal/pkg/pagination"
	"bookreview/internal/repository"
)

const msgDuplicate = "The fields book, reviewer must make a unique set."

type Repository interface {
	Create(ctx context.Context, rv *domain.Review) error
	GetByID(ctx context.Context, id int64, preloads ...string) (*domain.Review, error)
	Exists(ctx context.Context, bookID, reviewerID, excludeID int64) (bool, error)
	List(ctx context.Context, q *filter.Query, p pagination.Params, preloads []string) ([]domain.Review, int64, error)
	Update(ctx context.Context, rv *domain.Review) error
	Delete(ctx context.Context, id int64) error
}

type BookLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Book, error)
}

// Notifier pushes an event to a connected user.
type Notifier interface {
	Notify(userID int64, eventType string, data any) bool
}

var Filters = filter.NewSet(
	filter.Field{Param: "book", Column: "book_id", Kind: filter.Int},
	filter.Field{Param: "reviewer", Column: "reviewer_id", Kind: filter.Int},
	filter.Field{Param: "title", Column: "title"},
	filter.Field{Param: "content", Column: "content"},
	filter.Field{Param: "rating", Column: "rating", Kind: filter.Int},
	filter.Field{Param: "is_trusted", Column: "is_trusted", Kind: filter.Bool},
).
	Orderable(map[string]string{"rating": "rating", "created_at": "created_at"}).
	DefaultOrder("created_at DESC", "updated_at DESC", "id DESC")

type Service struct {
	repo     Repository
	books    BookLookup
	notifier Notifier
}

func NewService(repo Repository, books BookLookup, notifier Notifier) *Service {
	return &Service{repo: repo, books: books, notifier: notifier}
}

func (s *Service) Get(ctx context.Context, id int64, preloads []string) (*domain.Review, error) {
	rv, err := s.repo.GetByID(ctx, id, preloads...)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rv, nil
}

func (s *Service) List(ctx context.Context, values url.Values, p pagination.Params, preloads []string) ([]domain.Review, int64, error) {
	q, errs := Filters.Parse(values)
	if errs != nil {
		return nil, 0, &ValidationError{Fields: errs}
	}
	return s.repo.List(ctx, q, p, preloads)
}

// Create posts a review by actor and notifies the book's author.
func (s *Service) Create(ctx context.Context, actor *domain.User, req CreateReviewRequest) (*domain.Review, error) {
	rv := &domain.Review{ReviewerID: actor.ID}
	book, err := s.apply(ctx, actor, rv, req.patch())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rv); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fieldError("non_field_errors", msgDuplicate)
		}
		return nil, err
	}

	if s.notifier != nil && book.AuthorID != actor.ID {
		s.notifier.Notify(book.AuthorID, notification.TypeReviewCreated, map[string]any{
			"review":   rv.ID,
			"book":     book.ID,
			"slug":     book.Slug,
			"reviewer": actor.ID,
			"rating":   rv.Rating,
		})
	}
	return rv, nil
}

func (s *Service) Update(ctx context.Context, actor *domain.User, rv *domain.Review, req PatchReviewRequest) (*domain.Review, error) {
	if _, err := s.apply(ctx, actor, rv, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rv); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fieldError("non_field_errors", msgDuplicate)
		}
		return nil, err
	}
	return rv, nil
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

// apply copies req onto rv and returns the (possibly new) book of the review.
// is_trusted is only honoured for admins.
func (s *Service) apply(ctx context.Context, actor *domain.User, rv *domain.Review, req PatchReviewRequest) (*domain.Book, error) {
	bookID := rv.BookID
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
	if bookID != rv.BookID {
		exists, err := s.repo.Exists(ctx, bookID, rv.ReviewerID, rv.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fieldError("non_field_errors", msgDuplicate)
		}
		rv.BookID = bookID
		rv.Book = nil
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fieldError("title", "This field may not be blank.")
		}
		rv.Title = title
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, fieldError("content", "This field may not be blank.")
		}
		rv.Content = *req.Content
	}
	if req.Rating != nil {
		rv.Rating = *req.Rating
	}
	if req.IsTrusted != nil && actor.IsAdmin() {
		rv.IsTrusted = *req.IsTrusted
	}
	return book, nil
}
