package serializer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreview/internal/domain"
	"bookreview/internal/expand"
)

func sampleBook() *domain.Book {
	author := &domain.User{ID: 1, Username: "tolkien", Role: domain.RoleAuthor, IsActive: true}
	reviewer := &domain.User{ID: 2, Username: "critic", Role: domain.RoleReviewer, IsActive: true}
	return &domain.Book{
		ID:              10,
		Title:           "The Hobbit",
		Slug:            "the-hobbit",
		AuthorID:        author.ID,
		Author:          author,
		Language:        domain.LanguageEnglish,
		PublicationDate: time.Date(1937, 9, 21, 0, 0, 0, 0, time.UTC),
		IsAvailable:     true,
		Reviews: []domain.Review{
			{ID: 100, BookID: 10, ReviewerID: reviewer.ID, Reviewer: reviewer, Title: "Great", Rating: 5},
		},
	}
}

func toMap(t *testing.T, v any) map[string]any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestBook_NoExpansion(t *testing.T) {
	m := toMap(t, Book(sampleBook(), nil))

	assert.Equal(t, float64(1), m["author"])
	assert.Equal(t, "1937-09-21", m["publication_date"])
	assert.Equal(t, "English", m["language_display"])
	_, hasReviews := m["reviews"]
	assert.False(t, hasReviews)
}

func TestBook_ExpandAuthor(t *testing.T) {
	s := expand.Default().Parse(expand.Books, "author")
	m := toMap(t, Book(sampleBook(), s))

	author, ok := m["author"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "tolkien", author["username"])
	_, leaksPassword := author["password"]
	assert.False(t, leaksPassword)
}

func TestBook_ExpandNestedReviewer(t *testing.T) {
	s := expand.Default().Parse(expand.Books, "reviews.reviewer")
	m := toMap(t, Book(sampleBook(), s))

	reviews, ok := m["reviews"].([]any)
	require.True(t, ok)
	require.Len(t, reviews, 1)
	review := reviews[0].(map[string]any)
	assert.Equal(t, "critic", review["reviewer"].(map[string]any)["username"])
	assert.Equal(t, float64(10), review["book"])
}

func TestUser_ExpandEmptyListRendersArray(t *testing.T) {
	s := expand.Default().Parse(expand.Users, "books")
	m := toMap(t, User(&domain.User{ID: 3, Username: "nobody"}, s))

	assert.Equal(t, []any{}, m["books"])
	_, hasReviews := m["reviews"]
	assert.False(t, hasReviews)
}

func TestFavorite_Expand(t *testing.T) {
	b := sampleBook()
	f := &domain.Favorite{ID: 5, UserID: 2, BookID: b.ID, Book: b, Reason: domain.ReasonGift}

	m := toMap(t, Favorite(f, expand.Default().Parse(expand.Favorites, "book")))
	assert.Equal(t, "the-hobbit", m["book"].(map[string]any)["slug"])
	assert.Equal(t, float64(2), m["user"])
	assert.Equal(t, float64(domain.ReasonGift), m["reason"])
}

func TestUser_FavoritesOnlyForOwner(t *testing.T) {
	notes := "gift"
	u := &domain.User{
		ID:        3,
		Username:  "reader",
		Favorites: []domain.Favorite{{ID: 1, UserID: 3, BookID: 10, Notes: &notes}},
	}
	reg := expand.Default()

	own := toMap(t, User(u, reg.Parse(expand.Users, "favorites").WithViewer(3)))
	favs, ok := own["favorites"].([]any)
	require.True(t, ok)
	assert.Len(t, favs, 1)

	other := toMap(t, User(u, reg.Parse(expand.Users, "favorites").WithViewer(4)))
	_, leaked := other["favorites"]
	assert.False(t, leaked)

	anonymous := toMap(t, User(u, reg.Parse(expand.Users, "favorites")))
	_, leaked = anonymous["favorites"]
	assert.False(t, leaked)
}
