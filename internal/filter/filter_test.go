package filter

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bookreview/internal/database"
	"bookreview/internal/domain"
	"bookreview/internal/pkg/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:filter_test_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	author := domain.User{Username: "author", PasswordHash: "x", Role: domain.RoleAuthor, IsActive: true}
	require.NoError(t, db.Create(&author).Error)

	pages := 300
	books := []domain.Book{
		{Title: "Dune", Slug: "dune", AuthorID: author.ID, Description: "Desert planet", Language: domain.LanguageEnglish, Pages: &pages, PublicationDate: time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC), IsAvailable: true},
		{Title: "Solaris", Slug: "solaris", AuthorID: author.ID, Content: "An ocean that thinks", Language: domain.LanguageRussian, PublicationDate: time.Date(1961, 1, 1, 0, 0, 0, 0, time.UTC), IsAvailable: false},
		{Title: "100% Pure", Slug: "pure", AuthorID: author.ID, Language: domain.LanguageEnglish, PublicationDate: time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC), IsAvailable: true},
	}
	require.NoError(t, db.Create(&books).Error)
	return db
}

func bookSet() *Set {
	return NewSet(
		Field{Param: "title", Column: "title", Kind: String, Lookup: IContains},
		Field{Param: "language", Column: "language", Kind: Int},
		Field{Param: "is_available", Column: "is_available", Kind: Bool},
		Field{Param: "publication_date", Column: "publication_date", Kind: Date},
	).
		Search("title", "description", "content").
		Orderable(map[string]string{"title": "title", "publication_date": "publication_date"}).
		DefaultOrder("id ASC")
}

func titles(t *testing.T, db *gorm.DB, values url.Values) []string {
	t.Helper()
	q, errs := bookSet().Parse(values)
	require.Nil(t, errs)
	var books []domain.Book
	require.NoError(t, q.Ordered(db.Model(&domain.Book{})).Find(&books).Error)
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func TestParse_ExactAndBool(t *testing.T) {
	db := setupDB(t)

	assert.Equal(t, []string{"Solaris"}, titles(t, db, url.Values{"language": {"7"}}))
	assert.Equal(t, []string{"Dune", "100% Pure"}, titles(t, db, url.Values{"is_available": {"true"}}))
	assert.Equal(t, []string{"Dune"}, titles(t, db, url.Values{"publication_date": {"1965-08-01"}}))
}

func TestParse_SearchAcrossColumns(t *testing.T) {
	db := setupDB(t)

	assert.Equal(t, []string{"Dune"}, titles(t, db, url.Values{"search": {"DESERT"}}))
	assert.Equal(t, []string{"Solaris"}, titles(t, db, url.Values{"search": {"ocean"}}))
	assert.Equal(t, []string{"100% Pure"}, titles(t, db, url.Values{"search": {"100%"}}))
}

func TestParse_Ordering(t *testing.T) {
	db := setupDB(t)

	assert.Equal(t, []string{"Solaris", "Dune", "100% Pure"}, titles(t, db, url.Values{"ordering": {"-title"}}))
	assert.Equal(t, []string{"Solaris", "Dune", "100% Pure"}, titles(t, db, url.Values{"ordering": {"publication_date"}}))
	// unknown ordering names fall back to the default order
	assert.Equal(t, []string{"Dune", "Solaris", "100% Pure"}, titles(t, db, url.Values{"ordering": {"password"}}))
}

func TestParse_InvalidValues(t *testing.T) {
	_, errs := bookSet().Parse(url.Values{"language": {"english"}, "is_available": {"maybe"}, "publication_date": {"yesterday"}})

	assert.Len(t, errs, 3)
	assert.Contains(t, errs, "language")
	assert.Contains(t, errs, "is_available")
	assert.Contains(t, errs, "publication_date")
}

func TestQuery_WhereAndNil(t *testing.T) {
	db := setupDB(t)
	q, errs := bookSet().Parse(url.Values{})
	require.Nil(t, errs)
	q.Where("slug = ?", "solaris")

	var count int64
	require.NoError(t, q.Scope(db.Model(&domain.Book{})).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var nilQuery *Query
	require.NoError(t, nilQuery.Ordered(db.Model(&domain.Book{})).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}
