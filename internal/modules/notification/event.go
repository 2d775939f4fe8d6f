package notification

import "time"

const (
	TypeReviewCreated   = "review.created"
	TypeFavoriteCreated = "favorite.created"
)

// Event is the JSON frame pushed to connected users.
type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}
