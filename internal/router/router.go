// Package router assembles the gin engine: global middleware, the /api
// groups with their authentication mode, docs and system routes.
package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookreview/internal/docs"
	"bookreview/internal/middleware"
	"bookreview/internal/modules/auth"
	"bookreview/internal/modules/book"
	"bookreview/internal/modules/favorite"
	"bookreview/internal/modules/notification"
	"bookreview/internal/modules/review"
	"bookreview/internal/modules/user"
	"bookreview/internal/pkg/response"
	"bookreview/internal/ratelimit"
)

type Deps struct {
	Log         *zap.Logger
	Authn       *middleware.Authenticator
	Limiter     ratelimit.Limiter // nil disables rate limiting
	CORSOrigins []string
	DocsEnabled bool
	// MediaDir is served under MediaURL when set (local storage only).
	MediaDir string
	MediaURL string

	Auth          *auth.Handler
	Users         *user.Handler
	Books         *book.Handler
	Reviews       *review.Handler
	Favorites     *favorite.Handler
	Notifications *notification.Handler
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Not found")
	})
	r.NoMethod(response.MethodNotAllowed)

	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(d.Log),
		middleware.CORS(d.CORSOrigins),
	)
	if d.Limiter != nil {
		r.Use(middleware.RateLimit(d.Limiter, d.Log))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.MediaDir != "" && d.MediaURL != "" {
		r.Static("/"+strings.Trim(d.MediaURL, "/"), d.MediaDir)
	}

	api := r.Group("/api")
	{
		d.Auth.RegisterRoutes(api)

		// Basic auth is only accepted on the content resources.
		d.Users.RegisterRoutes(api.Group("/users", d.Authn.Authenticate(false)))
		d.Books.RegisterRoutes(api.Group("/books", d.Authn.Authenticate(true)))
		d.Reviews.RegisterRoutes(api.Group("/reviews", d.Authn.Authenticate(true)))
		d.Favorites.RegisterRoutes(api.Group("/favorites", d.Authn.Authenticate(true)))

		if d.Notifications != nil {
			d.Notifications.RegisterRoutes(api.Group("/ws"))
		}
		if d.DocsEnabled {
			docs.RegisterRoutes(api)
		}
	}

	return r
}
