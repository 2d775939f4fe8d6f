// Package testutil wires an in-memory SQLite database, token service and
// authenticator for handler tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bookreview/internal/database"
	"bookreview/internal/domain"
	"bookreview/internal/middleware"
	"bookreview/internal/modules/auth"
	"bookreview/internal/pkg/jwt"
	"bookreview/internal/pkg/logger"
	"bookreview/internal/repository"
)

// Password is the password of every user made by CreateUser.
const Password = "Str0ng-Passw0rd!"

var dbSeq atomic.Int64

type Env struct {
	DB     *gorm.DB
	JWT    *jwt.Service
	Users  *repository.UserRepository
	Tokens *repository.RefreshTokenRepository
	Auth   *auth.Service
	Authn  *middleware.Authenticator
}

func NewEnv(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:testutil_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := database.Connect(dsn, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	jwtService := jwt.New("test-secret", 15*time.Minute)
	users := repository.NewUserRepository(db)
	tokens := repository.NewRefreshTokenRepository(db)
	authService := auth.NewService(users, tokens, jwtService, "test-pepper", 24*time.Hour)

	return &Env{
		DB:     db,
		JWT:    jwtService,
		Users:  users,
		Tokens: tokens,
		Auth:   authService,
		Authn:  middleware.NewAuthenticator(jwtService, users, authService),
	}
}

// Engine returns a bare gin engine with panic recovery.
func (e *Env) Engine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(logger.Nop()))
	return r
}

func (e *Env) CreateUser(t *testing.T, username string, role domain.UserRole) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	u := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, e.Users.Create(context.Background(), u))
	return u
}

func (e *Env) CreateBook(t *testing.T, author *domain.User, title string) *domain.Book {
	t.Helper()
	b := &domain.Book{
		Title:           title,
		Slug:            strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		AuthorID:        author.ID,
		Description:     "About " + title,
		Content:         "Once upon a time",
		Language:        domain.LanguageEnglish,
		PublicationDate: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		IsAvailable:     true,
	}
	require.NoError(t, e.DB.Create(b).Error)
	return b
}

// Bearer returns an Authorization header value for u.
func (e *Env) Bearer(t *testing.T, u *domain.User) string {
	t.Helper()
	token, err := e.JWT.GenerateToken(u.ID, string(u.Role))
	require.NoError(t, err)
	return "Bearer " + token
}

// Basic returns a Basic Authorization header value for u.
func Basic(u *domain.User) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(u.Username+":"+Password))
}

// Do sends body as JSON. authorization may be empty.
func Do(h http.Handler, method, path string, body any, authorization string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Envelope is the decoded response body.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func Decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

// DecodeData unmarshals the data member into dst.
func DecodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := Decode(t, rec)
	require.True(t, env.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

// Page is a decoded list response.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
