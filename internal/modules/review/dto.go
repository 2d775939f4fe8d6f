package review

// CreateReviewRequest is the create and full-replacement (PUT) body.
type CreateReviewRequest struct {
	Book      int64  `json:"book" validate:"required,gt=0"`
	Title     string `json:"title" validate:"required,max=200"`
	Content   string `json:"content" validate:"required"`
	Rating    int    `json:"rating" validate:"required,gte=1,lte=5"`
	IsTrusted *bool  `json:"is_trusted"`
}

type PatchReviewRequest struct {
	Book      *int64  `json:"book" validate:"omitempty,gt=0"`
	Title     *string `json:"title" validate:"omitempty,max=200"`
	Content   *string `json:"content"`
	Rating    *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	IsTrusted *bool   `json:"is_trusted"`
}

func (r CreateReviewRequest) patch() PatchReviewRequest {
	return PatchReviewRequest{
		Book:      &r.Book,
		Title:     &r.Title,
		Content:   &r.Content,
		Rating:    &r.Rating,
		IsTrusted: r.IsTrusted,
	}
}
