package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_Simple(t *testing.T) {
	s := Default().Parse(Books, "author")

	assert.True(t, s.Has("author"))
	assert.False(t, s.Has("reviews"))
	assert.Equal(t, []string{"Author"}, Default().Preloads(Books, s))
}

func TestParse_IgnoresUnpermitted(t *testing.T) {
	s := Default().Parse(Books, "author,password,reviewer")

	assert.Equal(t, []string{"author"}, s.Names())
}

func TestParse_MultipleValuesAndSpaces(t *testing.T) {
	s := Default().Parse(Reviews, " book ", "reviewer,")

	assert.Equal(t, []string{"book", "reviewer"}, s.Names())
}

func TestParse_Nested(t *testing.T) {
	reg := Default()
	s := reg.Parse(Books, "reviews.reviewer,author")

	assert.True(t, s.Has("reviews"))
	assert.True(t, s.Child("reviews").Has("reviewer"))
	assert.Equal(t, []string{"Author", "Reviews", "Reviews.Reviewer"}, reg.Preloads(Books, s))
	assert.Equal(t, "author,reviews.reviewer", s.String())
}

func TestParse_NestedValidatedAgainstTarget(t *testing.T) {
	// reviews permit book and reviewer, not author
	s := Default().Parse(Books, "reviews.author")

	assert.True(t, s.Has("reviews"))
	assert.True(t, s.Child("reviews").Empty())
}

func TestParse_DepthLimit(t *testing.T) {
	s := Default().Parse(Books, "reviews.book.author")

	assert.True(t, s.Child("reviews").Has("book"))
	assert.True(t, s.Child("reviews").Child("book").Empty())
}

func TestParse_Wildcard(t *testing.T) {
	s := Default().Parse(Users, "*")

	assert.Equal(t, []string{"books", "favorites", "reviews"}, s.Names())
}

func TestNilSet(t *testing.T) {
	var s *Set
	assert.False(t, s.Has("author"))
	assert.Nil(t, s.Child("author"))
	assert.True(t, s.Empty())
	assert.Empty(t, Default().Preloads(Books, s))
}

func TestPermitted(t *testing.T) {
	assert.Equal(t, []string{"book", "user"}, Default().Permitted(Favorites))
	assert.Empty(t, Default().Permitted("unknown"))
}

func TestParse_RootOnlyRelation(t *testing.T) {
	reg := Default()

	assert.True(t, reg.Parse(Users, "favorites").Has("favorites"))

	s := reg.Parse(Books, "author.favorites,author.books")
	assert.Equal(t, []string{"books"}, s.Child("author").Names())
	assert.Equal(t, []string{"Author", "Author.Books"}, reg.Preloads(Books, s))

	s = reg.Parse(Reviews, "reviewer.*")
	assert.Equal(t, []string{"books", "reviews"}, s.Child("reviewer").Names())
}

func TestWithViewer_PropagatesToChildren(t *testing.T) {
	s := Default().Parse(Books, "reviews.reviewer").WithViewer(7)

	assert.Equal(t, int64(7), s.Viewer())
	assert.Equal(t, int64(7), s.Child("reviews").Child("reviewer").Viewer())

	var empty *Set
	assert.Nil(t, empty.WithViewer(7))
	assert.Zero(t, empty.Viewer())
}
