package user

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreview/internal/domain"
	"bookreview/internal/expand"
	"bookreview/internal/pkg/logger"
	"bookreview/internal/repository"
	"bookreview/internal/serializer"
	"bookreview/internal/storage"
	"bookreview/internal/testutil"
)

type fixture struct {
	env      *testutil.Env
	router   *gin.Engine
	mediaDir string
	alice    *domain.User
	bob      *domain.User
	admin    *domain.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	env := testutil.NewEnv(t)

	mediaDir := t.TempDir()
	r := env.Engine()
	files := storage.NewLocal(mediaDir, "/media", 1<<20)
	NewHandler(NewService(repository.NewUserRepository(env.DB), files, logger.Nop()), expand.Default()).
		RegisterRoutes(r.Group("/api/users", env.Authn.Authenticate(false)))

	return &fixture{
		env:      env,
		router:   r,
		mediaDir: mediaDir,
		alice:    env.CreateUser(t, "alice", domain.RoleAuthor),
		bob:      env.CreateUser(t, "bob", domain.RoleReviewer),
		admin:    env.CreateUser(t, "admin", domain.RoleAdmin),
	}
}

func userPath(u *domain.User) string {
	return "/api/users/" + strconv.FormatInt(u.ID, 10)
}

func TestRegister(t *testing.T) {
	f := setup(t)

	body := map[string]any{
		"username": "newbie",
		"email":    "Newbie@Example.com",
		"password": "Str0ng-Passw0rd!",
	}
	rec := testutil.Do(f.router, http.MethodPost, "/api/users/", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got map[string]any
	testutil.DecodeData(t, rec, &got)
	assert.Equal(t, "newbie", got["username"])
	assert.Equal(t, "newbie@example.com", got["email"])
	assert.Equal(t, string(domain.RoleOther), got["role"])
	assert.Equal(t, true, got["is_active"])
	assert.NotContains(t, got, "password")
	assert.NotContains(t, got, "password_hash")

	rec = testutil.Do(f.router, http.MethodPost, "/api/users/", body, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, testutil.Decode(t, rec).Error.Details, "username")
}

func TestRegister_Invalid(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{name: "admin is not self-assignable", body: map[string]any{"username": "sneaky", "password": "Str0ng-Passw0rd!", "role": "admin"}, field: "role"},
		{name: "weak password", body: map[string]any{"username": "weak", "password": "12345678"}, field: "password"},
		{name: "bad username", body: map[string]any{"username": "no spaces", "password": "Str0ng-Passw0rd!"}, field: "username"},
		{name: "missing password", body: map[string]any{"username": "nopass"}, field: "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.Do(f.router, http.MethodPost, "/api/users/", tt.body, "")
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, testutil.Decode(t, rec).Error.Details, tt.field)
		})
	}

	rec := testutil.Do(f.router, http.MethodPost, "/api/users/", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, testutil.Decode(t, rec).Error.Details, "non_field_errors")
}

func TestMe(t *testing.T) {
	f := setup(t)

	rec := testutil.Do(f.router, http.MethodGet, "/api/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = testutil.Do(f.router, http.MethodGet, "/api/users/me", nil, f.env.Bearer(t, f.bob))
	require.Equal(t, http.StatusOK, rec.Code)
	var got serializer.UserJSON
	testutil.DecodeData(t, rec, &got)
	assert.Equal(t, f.bob.ID, got.ID)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		rec = testutil.Do(f.router, method, "/api/users/me", map[string]any{}, f.env.Bearer(t, f.bob))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
	}
}

func TestBasicAuthNotAcceptedOnUsers(t *testing.T) {
	f := setup(t)
	rec := testutil.Do(f.router, http.MethodGet, "/api/users/me", nil, testutil.Basic(f.bob))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRetrieve_OwnerOrAdmin(t *testing.T) {
	f := setup(t)

	rec := testutil.Do(f.router, http.MethodGet, userPath(f.alice), nil, f.env.Bearer(t, f.bob))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testutil.Do(f.router, http.MethodGet, userPath(f.alice), nil, f.env.Bearer(t, f.alice))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = testutil.Do(f.router, http.MethodGet, userPath(f.alice), nil, f.env.Bearer(t, f.admin))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = testutil.Do(f.router, http.MethodGet, "/api/users/424242", nil, f.env.Bearer(t, f.admin))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestList_RequiresAuthentication(t *testing.T) {
	f := setup(t)

	rec := testutil.Do(f.router, http.MethodGet, "/api/users/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = testutil.Do(f.router, http.MethodGet, "/api/users/?ordering=username&page_size=2", nil, f.env.Bearer(t, f.bob))
	require.Equal(t, http.StatusOK, rec.Code)
	var page testutil.Page[serializer.UserJSON]
	testutil.DecodeData(t, rec, &page)
	assert.Equal(t, int64(3), page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "admin", page.Results[0].Username)
	assert.NotNil(t, page.Next)
}

func TestUpdate_RoleOnlyByAdmin(t *testing.T) {
	f := setup(t)

	rec := testutil.Do(f.router, http.MethodPatch, userPath(f.bob), map[string]any{"role": "admin", "first_name": "Bob"}, f.env.Bearer(t, f.bob))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got serializer.UserJSON
	testutil.DecodeData(t, rec, &got)
	assert.Equal(t, domain.RoleReviewer, got.Role)
	assert.Equal(t, "Bob", got.FirstName)

	rec = testutil.Do(f.router, http.MethodPatch, userPath(f.bob), map[string]any{"role": "author"}, f.env.Bearer(t, f.admin))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	testutil.DecodeData(t, rec, &got)
	assert.Equal(t, domain.RoleAuthor, got.Role)

	rec = testutil.Do(f.router, http.MethodPatch, userPath(f.bob), map[string]any{"username": "alice"}, f.env.Bearer(t, f.bob))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, testutil.Decode(t, rec).Error.Details, "username")
}

func TestDestroy_CascadesToBooks(t *testing.T) {
	f := setup(t)
	book := f.env.CreateBook(t, f.alice, "Gone")

	rec := testutil.Do(f.router, http.MethodDelete, userPath(f.alice), nil, f.env.Bearer(t, f.bob))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testutil.Do(f.router, http.MethodDelete, userPath(f.alice), nil, f.env.Bearer(t, f.alice))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	require.NoError(t, f.env.DB.Model(&domain.Book{}).Where("id = ?", book.ID).Count(&count).Error)
	assert.Zero(t, count)

	// the token of a deleted user no longer authenticates
	rec = testutil.Do(f.router, http.MethodGet, "/api/users/me", nil, f.env.Bearer(t, f.alice))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDestroy_RemovesBookMedia(t *testing.T) {
	f := setup(t)
	book := f.env.CreateBook(t, f.alice, "Illustrated")

	rel := filepath.Join("books", "covers", "cover.png")
	abs := filepath.Join(f.mediaDir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte("png"), 0o644))
	url := "/media/" + filepath.ToSlash(rel)
	book.CoverImage = &url
	require.NoError(t, f.env.DB.Save(book).Error)

	rec := testutil.Do(f.router, http.MethodDelete, userPath(f.alice), nil, f.env.Bearer(t, f.admin))
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err := os.Stat(abs)
	assert.True(t, os.IsNotExist(err))
}
