package book

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"bookreview/internal/domain"
	"bookreview/internal/filter"
	"bookreview/internal/pkg/pagination"
	"bookreview/internal/pkg/slug"
	"bookreview/internal/repository"
	"bookreview/internal/storage"
)

const (
	msgSlugTaken = "book with this slug already exists."
	slugAttempts = 5
	coverPrefix  = "books/covers"
	filePrefix   = "books/files"
	dateLayout   = "2006-01-02"
)

type Repository interface {
	Create(ctx context.Context, b *domain.Book) error
	GetBySlug(ctx context.Context, slug string, preloads ...string) (*domain.Book, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, q *filter.Query, p pagination.Params, preloads []string) ([]domain.Book, int64, error)
	Update(ctx context.Context, b *domain.Book) error
	Delete(ctx context.Context, id int64) error
}

// Filters are the list query parameters accepted on /books/.
var Filters = filter.NewSet(
	filter.Field{Param: "title", Column: "title"},
	filter.Field{Param: "author", Column: "author_id", Kind: filter.Int},
	filter.Field{Param: "description", Column: "description"},
	filter.Field{Param: "content", Column: "content"},
	filter.Field{Param: "language", Column: "language", Kind: filter.Int},
	filter.Field{Param: "pages", Column: "pages", Kind: filter.Int},
	filter.Field{Param: "publication_date", Column: "publication_date", Kind: filter.Date},
	filter.Field{Param: "publisher", Column: "publisher"},
	filter.Field{Param: "is_available", Column: "is_available", Kind: filter.Bool},
).
	Search("title", "description", "content").
	Orderable(map[string]string{
		"title":            "title",
		"publication_date": "publication_date",
		"pages":            "pages",
		"created_at":       "created_at",
	}).
	DefaultOrder("created_at DESC", "updated_at DESC", "id DESC")

type Service struct {
	repo  Repository
	files storage.Storage
	log   *zap.Logger
}

func NewService(repo Repository, files storage.Storage, log *zap.Logger) *Service {
	return &Service{repo: repo, files: files, log: log}
}

func (s *Service) Get(ctx context.Context, slug string, preloads []string) (*domain.Book, error) {
	b, err := s.repo.GetBySlug(ctx, slug, preloads...)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, values url.Values, p pagination.Params, preloads []string) ([]domain.Book, int64, error) {
	q, errs := Filters.Parse(values)
	if errs != nil {
		return nil, 0, &ValidationError{Fields: errs}
	}
	return s.repo.List(ctx, q, p, preloads)
}

// Create stores a new book written by author. A missing slug is derived from the title.
func (s *Service) Create(ctx context.Context, author *domain.User, req CreateBookRequest, up Uploads) (*domain.Book, error) {
	b := &domain.Book{AuthorID: author.ID, IsAvailable: true}
	if err := apply(b, req.patch(), true); err != nil {
		return nil, err
	}

	if req.Slug != "" {
		if err := s.checkSlug(ctx, req.Slug); err != nil {
			return nil, err
		}
		b.Slug = req.Slug
	} else {
		generated, err := s.generateSlug(ctx, b.Title)
		if err != nil {
			return nil, err
		}
		b.Slug = generated
	}

	saved, err := s.store(ctx, b, up)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		s.discard(ctx, saved...)
		if repository.IsUniqueViolation(err) {
			return nil, fieldError("slug", msgSlugTaken)
		}
		return nil, err
	}
	return b, nil
}

// Update changes b. full replaces optional fields that are absent from req.
func (s *Service) Update(ctx context.Context, b *domain.Book, req PatchBookRequest, up Uploads, full bool) (*domain.Book, error) {
	if req.Slug != nil && *req.Slug != b.Slug {
		if err := s.checkSlug(ctx, *req.Slug); err != nil {
			return nil, err
		}
	}
	if err := apply(b, req, full); err != nil {
		return nil, err
	}

	oldCover, oldFile := b.CoverImage, b.File
	saved, err := s.store(ctx, b, up)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, b); err != nil {
		s.discard(ctx, saved...)
		if repository.IsUniqueViolation(err) {
			return nil, fieldError("slug", msgSlugTaken)
		}
		return nil, err
	}

	if up.CoverImage != nil && oldCover != nil {
		s.discard(ctx, *oldCover)
	}
	if up.File != nil && oldFile != nil {
		s.discard(ctx, *oldFile)
	}
	return b, nil
}

// Delete removes the book, its reviews and favorites, then its stored files.
func (s *Service) Delete(ctx context.Context, b *domain.Book) error {
	if err := s.repo.Delete(ctx, b.ID); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	if b.CoverImage != nil {
		s.discard(ctx, *b.CoverImage)
	}
	if b.File != nil {
		s.discard(ctx, *b.File)
	}
	return nil
}

func apply(b *domain.Book, req PatchBookRequest, full bool) error {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return fieldError("title", "This field may not be blank.")
		}
		b.Title = title
	}
	if req.Slug != nil {
		b.Slug = *req.Slug
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.Content != nil {
		b.Content = *req.Content
	}
	if req.Language != nil {
		if !req.Language.Valid() {
			return fieldError("language", fmt.Sprintf("\"%d\" is not a valid choice.", *req.Language))
		}
		b.Language = *req.Language
	}
	if req.PublicationDate != nil {
		d, err := time.ParseInLocation(dateLayout, *req.PublicationDate, time.UTC)
		if err != nil {
			return fieldError("publication_date", "Date has wrong format. Use YYYY-MM-DD.")
		}
		b.PublicationDate = d
	}
	if req.Pages != nil || full {
		b.Pages = req.Pages
	}
	if req.Publisher != nil || full {
		b.Publisher = req.Publisher
	}
	switch {
	case req.IsAvailable != nil:
		b.IsAvailable = *req.IsAvailable
	case full:
		b.IsAvailable = true
	}
	return nil
}

func (s *Service) checkSlug(ctx context.Context, value string) error {
	exists, err := s.repo.SlugExists(ctx, value)
	if err != nil {
		return err
	}
	if exists {
		return fieldError("slug", msgSlugTaken)
	}
	return nil
}

func (s *Service) generateSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	if base != "" {
		exists, err := s.repo.SlugExists(ctx, base)
		if err != nil {
			return "", err
		}
		if !exists {
			return base, nil
		}
	}
	for i := 0; i < slugAttempts; i++ {
		candidate, err := slug.WithSuffix(base)
		if err != nil {
			return "", err
		}
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fieldError("slug", "Could not generate a unique slug, please provide one.")
}

// store saves the uploads and points b at them. It returns the new URLs.
func (s *Service) store(ctx context.Context, b *domain.Book, up Uploads) ([]string, error) {
	var saved []string
	if up.CoverImage != nil {
		u, err := s.files.Save(ctx, coverPrefix, up.CoverImage, storage.ImageTypes)
		if err != nil {
			return nil, uploadError("cover_image", err)
		}
		saved = append(saved, u)
		b.CoverImage = &u
	}
	if up.File != nil {
		u, err := s.files.Save(ctx, filePrefix, up.File, storage.DocumentTypes)
		if err != nil {
			s.discard(ctx, saved...)
			return nil, uploadError("file", err)
		}
		saved = append(saved, u)
		b.File = &u
	}
	return saved, nil
}

func (s *Service) discard(ctx context.Context, urls ...string) {
	for _, u := range urls {
		if err := s.files.Delete(ctx, u); err != nil {
			s.log.Warn("failed to delete stored file", zap.String("url", u), zap.Error(err))
		}
	}
}

func uploadError(field string, err error) error {
	switch err {
	case storage.ErrEmptyFile:
		return fieldError(field, "The submitted file is empty.")
	case storage.ErrFileTooLarge:
		return fieldError(field, "The submitted file is too large.")
	case storage.ErrInvalidMimeType:
		if field == "cover_image" {
			return fieldError(field, "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		}
		return fieldError(field, "Unsupported file type.")
	}
	return err
}
