package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bookreview/internal/database"
	"bookreview/internal/domain"
	"bookreview/internal/filter"
	"bookreview/internal/pkg/logger"
	"bookreview/internal/pkg/pagination"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repository_test_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func createUser(t *testing.T, repo *UserRepository, username string, role domain.UserRole) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, PasswordHash: "hash", Role: role, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func createBook(t *testing.T, repo *BookRepository, authorID int64, slug string) *domain.Book {
	t.Helper()
	b := &domain.Book{
		Title:           slug,
		Slug:            slug,
		AuthorID:        authorID,
		Language:        domain.LanguageEnglish,
		PublicationDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		IsAvailable:     true,
	}
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	createUser(t, users, "alice", domain.RoleAuthor)

	err := users.Create(context.Background(), &domain.User{Username: "alice", PasswordHash: "x", Role: domain.RoleOther})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	exists, err := users.ExistsByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := NewUserRepository(db)
	books := NewBookRepository(db)
	reviews := NewReviewRepository(db)
	favorites := NewFavoriteRepository(db)

	author := createUser(t, users, "author", domain.RoleAuthor)
	reader := createUser(t, users, "reader", domain.RoleReviewer)
	book := createBook(t, books, author.ID, "my-book")
	cover, file := "/media/books/covers/c.png", "/media/books/files/f.pdf"
	book.CoverImage, book.File = &cover, &file
	require.NoError(t, db.Save(book).Error)

	require.NoError(t, reviews.Create(ctx, &domain.Review{BookID: book.ID, ReviewerID: reader.ID, Title: "ok", Rating: 4}))
	require.NoError(t, favorites.Create(ctx, &domain.Favorite{BookID: book.ID, UserID: reader.ID}))

	media, err := users.Delete(ctx, author.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{cover, file}, media)

	var count int64
	db.Model(&domain.Book{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&domain.Review{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&domain.Favorite{}).Count(&count)
	assert.Zero(t, count)

	_, err = users.GetByID(ctx, reader.ID)
	assert.NoError(t, err)

	_, err = users.Delete(ctx, author.ID)
	assert.True(t, IsNotFound(err))
}

func TestBookRepository_ListPaginatesWithPreloads(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := NewUserRepository(db)
	books := NewBookRepository(db)

	author := createUser(t, users, "author", domain.RoleAuthor)
	for i := 0; i < 5; i++ {
		createBook(t, books, author.ID, fmt.Sprintf("book-%d", i))
	}

	q, errs := filter.NewSet().DefaultOrder("id ASC").Parse(nil)
	require.Nil(t, errs)

	items, total, err := books.List(ctx, q, pagination.Params{Page: 2, PageSize: 2}, []string{"Author"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, items, 2)
	assert.Equal(t, "book-2", items[0].Slug)
	require.NotNil(t, items[0].Author)
	assert.Equal(t, "author", items[0].Author.Username)

	items, total, err = books.List(ctx, q, pagination.Params{Page: 9, PageSize: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, items)
}

func TestReviewRepository_UniquePerReviewer(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := NewUserRepository(db)
	books := NewBookRepository(db)
	reviews := NewReviewRepository(db)

	author := createUser(t, users, "author", domain.RoleAuthor)
	reviewer := createUser(t, users, "reviewer", domain.RoleReviewer)
	book := createBook(t, books, author.ID, "b")

	first := &domain.Review{BookID: book.ID, ReviewerID: reviewer.ID, Title: "one", Rating: 5}
	require.NoError(t, reviews.Create(ctx, first))

	exists, err := reviews.Exists(ctx, book.ID, reviewer.ID, 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = reviews.Exists(ctx, book.ID, reviewer.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	err = reviews.Create(ctx, &domain.Review{BookID: book.ID, ReviewerID: reviewer.ID, Title: "two", Rating: 1})
	assert.True(t, IsUniqueViolation(err))
}

func TestFavoriteRepository_GetForUserScopesOwner(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := NewUserRepository(db)
	books := NewBookRepository(db)
	favorites := NewFavoriteRepository(db)

	author := createUser(t, users, "author", domain.RoleAuthor)
	owner := createUser(t, users, "owner", domain.RoleOther)
	other := createUser(t, users, "other", domain.RoleOther)
	book := createBook(t, books, author.ID, "b")

	fav := &domain.Favorite{UserID: owner.ID, BookID: book.ID, Reason: domain.ReasonGift}
	require.NoError(t, favorites.Create(ctx, fav))

	got, err := favorites.GetForUser(ctx, fav.ID, owner.ID, "Book")
	require.NoError(t, err)
	require.NotNil(t, got.Book)
	assert.Equal(t, "b", got.Book.Slug)

	_, err = favorites.GetForUser(ctx, fav.ID, other.ID)
	assert.True(t, IsNotFound(err))
}

func TestRefreshTokenRepository_RotateAndReuse(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	tokens := NewRefreshTokenRepository(db)
	now := time.Now().UTC()

	first := &domain.RefreshToken{UserID: 1, TokenHash: "h1", FamilyID: "fam", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, tokens.Create(ctx, first))

	second := &domain.RefreshToken{UserID: 1, TokenHash: "h2", FamilyID: "fam", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, tokens.Rotate(ctx, first.ID, second, now))
	require.NotNil(t, second.RotatedFrom)
	assert.Equal(t, first.ID, *second.RotatedFrom)

	third := &domain.RefreshToken{UserID: 1, TokenHash: "h3", FamilyID: "fam", ExpiresAt: now.Add(time.Hour)}
	assert.ErrorIs(t, tokens.Rotate(ctx, first.ID, third, now), ErrTokenConsumed)

	used, err := tokens.GetByHash(ctx, "h1")
	require.NoError(t, err)
	require.NoError(t, tokens.MarkReuse(ctx, used, now))

	live, err := tokens.GetByHash(ctx, "h2")
	require.NoError(t, err)
	assert.True(t, live.IsRevoked())

	used, err = tokens.GetByHash(ctx, "h1")
	require.NoError(t, err)
	assert.NotNil(t, used.ReuseDetectedAt)
}

func TestRefreshTokenRepository_DeleteStale(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	tokens := NewRefreshTokenRepository(db)
	now := time.Now().UTC()
	old := now.Add(-40 * 24 * time.Hour)

	require.NoError(t, tokens.Create(ctx, &domain.RefreshToken{UserID: 1, TokenHash: "expired", FamilyID: "a", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, tokens.Create(ctx, &domain.RefreshToken{UserID: 1, TokenHash: "revoked", FamilyID: "b", ExpiresAt: now.Add(time.Hour), RevokedAt: &old}))
	require.NoError(t, tokens.Create(ctx, &domain.RefreshToken{UserID: 1, TokenHash: "live", FamilyID: "c", ExpiresAt: now.Add(time.Hour)}))

	n, err := tokens.DeleteStale(ctx, now, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = tokens.GetByHash(ctx, "live")
	assert.NoError(t, err)
}
