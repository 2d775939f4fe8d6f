package database

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreview/internal/domain"
	"bookreview/internal/pkg/logger"
)

func TestConnectSQLiteAndAutoMigrate(t *testing.T) {
	dsn := fmt.Sprintf("file:database_test_%s?mode=memory&cache=shared", t.Name())
	db, err := Connect(dsn, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"users", "books", "reviews", "favorites", "refresh_tokens"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&domain.Review{}, "idx_review_book_reviewer"))
	assert.True(t, db.Migrator().HasIndex(&domain.Favorite{}, "idx_favorite_user_book"))
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://u:p@localhost/db"))
	assert.True(t, IsPostgres("postgresql://u:p@localhost/db"))
	assert.False(t, IsPostgres("bookreview.db"))
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h/db", migrateURL("postgres://u:p@h/db"))
	assert.Equal(t, "pgx5://u:p@h/db", migrateURL("postgresql://u:p@h/db"))
	assert.Equal(t, "pgx5://u:p@h/db", migrateURL("pgx5://u:p@h/db"))
}

func TestMigrationsEmbedded(t *testing.T) {
	up, err := migrationsFS.ReadFile("migrations/000001_init.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "idx_review_book_reviewer")

	_, err = migrationsFS.ReadFile("migrations/000001_init.down.sql")
	require.NoError(t, err)
}
