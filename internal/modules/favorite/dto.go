package favorite

import "bookreview/internal/domain"

// CreateFavoriteRequest is the create and full-replacement (PUT) body.
type CreateFavoriteRequest struct {
	Book   int64                  `json:"book" validate:"required,gt=0"`
	Reason *domain.FavoriteReason `json:"reason" validate:"omitempty,gte=0,lte=7"`
	Notes  *string                `json:"notes"`
}

type PatchFavoriteRequest struct {
	Book   *int64                 `json:"book" validate:"omitempty,gt=0"`
	Reason *domain.FavoriteReason `json:"reason" validate:"omitempty,gte=0,lte=7"`
	Notes  *string                `json:"notes"`
}

func (r CreateFavoriteRequest) patch() PatchFavoriteRequest {
	return PatchFavoriteRequest{Book: &r.Book, Reason: r.Reason, Notes: r.Notes}
}
