package book

import (
	"mime/multipart"

	"bookreview/internal/domain"
)

// CreateBookRequest is the create and full-replacement (PUT) body, JSON or multipart.
type CreateBookRequest struct {
	Title           string          `json:"title" form:"title" validate:"required,max=200"`
	Slug            string          `json:"slug" form:"slug" validate:"omitempty,max=250,slug"`
	Description     string          `json:"description" form:"description"`
	Content         string          `json:"content" form:"content"`
	Language        domain.Language `json:"language" form:"language" validate:"required,gte=1,lte=10"`
	Pages           *int            `json:"pages" form:"pages" validate:"omitempty,gt=0"`
	PublicationDate string          `json:"publication_date" form:"publication_date" validate:"required,datetime=2006-01-02"`
	Publisher       *string         `json:"publisher" form:"publisher" validate:"omitempty,max=200"`
	IsAvailable     *bool           `json:"is_available" form:"is_available"`
}

// PatchBookRequest is the partial (PATCH) body; nil fields are left alone.
type PatchBookRequest struct {
	Title           *string          `json:"title" form:"title" validate:"omitempty,max=200"`
	Slug            *string          `json:"slug" form:"slug" validate:"omitempty,max=250,slug"`
	Description     *string          `json:"description" form:"description"`
	Content         *string          `json:"content" form:"content"`
	Language        *domain.Language `json:"language" form:"language" validate:"omitempty,gte=1,lte=10"`
	Pages           *int             `json:"pages" form:"pages" validate:"omitempty,gt=0"`
	PublicationDate *string          `json:"publication_date" form:"publication_date" validate:"omitempty,datetime=2006-01-02"`
	Publisher       *string          `json:"publisher" form:"publisher" validate:"omitempty,max=200"`
	IsAvailable     *bool            `json:"is_available" form:"is_available"`
}

func (r CreateBookRequest) patch() PatchBookRequest {
	p := PatchBookRequest{
		Title:           &r.Title,
		Slug:            &r.Slug,
		Description:     &r.Description,
		Content:         &r.Content,
		Language:        &r.Language,
		Pages:           r.Pages,
		PublicationDate: &r.PublicationDate,
		Publisher:       r.Publisher,
		IsAvailable:     r.IsAvailable,
	}
	if r.Slug == "" {
		p.Slug = nil
	}
	return p
}

// Uploads are the optional files of a multipart request.
type Uploads struct {
	CoverImage *multipart.FileHeader
	File       *multipart.FileHeader
}
