package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"bookreview/internal/domain"
	"bookreview/internal/pkg/jwt"
	"bookreview/internal/pkg/response"
)

const (
	ctxUser   = "user"
	ctxUserID = "user_id"
	ctxRole   = "role"
)

type UserLoader interface {
	GetByID(ctx context.Context, id int64, preloads ...string) (*domain.User, error)
}

// CredentialChecker verifies a username/password pair for Basic auth.
type CredentialChecker interface {
	CheckCredentials(ctx context.Context, username, password string) (*domain.User, error)
}

// Authenticator resolves the requester from the Authorization header.
// Requests without the header pass through as anonymous; bad credentials
// are rejected even where anonymous access would be allowed.
type Authenticator struct {
	jwt   *jwt.Service
	users UserLoader
	creds CredentialChecker
}

func NewAuthenticator(jwtService *jwt.Service, users UserLoader, creds CredentialChecker) *Authenticator {
	return &Authenticator{jwt: jwtService, users: users, creds: creds}
}

// Authenticate accepts Bearer tokens, and Basic credentials when allowBasic is set.
func (a *Authenticator) Authenticate(allowBasic bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.Next()
			return
		}

		scheme, credentials, _ := strings.Cut(header, " ")
		credentials = strings.TrimSpace(credentials)

		switch {
		case strings.EqualFold(scheme, "Bearer") && credentials != "":
			user, err := a.bearer(c.Request.Context(), credentials)
			if err != nil {
				code, msg := "INVALID_TOKEN", "Given token not valid for any token type"
				if errors.Is(err, jwt.ErrExpiredToken) {
					code, msg = "TOKEN_EXPIRED", "Token is expired"
				}
				response.Unauthorized(c, code, msg)
				return
			}
			setUser(c, user)

		case strings.EqualFold(scheme, "Basic") && allowBasic && a.creds != nil:
			username, password, ok := c.Request.BasicAuth()
			if !ok {
				response.Unauthorized(c, "INVALID_AUTH_FORMAT", "Invalid basic header")
				return
			}
			user, err := a.creds.CheckCredentials(c.Request.Context(), username, password)
			if err != nil {
				response.Unauthorized(c, "INVALID_CREDENTIALS", "Invalid username/password")
				return
			}
			setUser(c, user)

		default:
			response.Unauthorized(c, "INVALID_AUTH_FORMAT", "Authorization header format must be Bearer {token}")
			return
		}

		c.Next()
	}
}

func (a *Authenticator) bearer(ctx context.Context, token string) (*domain.User, error) {
	claims, err := a.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	user, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, jwt.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, jwt.ErrInvalidToken
	}
	return user, nil
}

func setUser(c *gin.Context, u *domain.User) {
	c.Set(ctxUser, u)
	c.Set(ctxUserID, u.ID)
	c.Set(ctxRole, string(u.Role))
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}
