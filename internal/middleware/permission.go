package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"bookreview/internal/permission"
	"bookreview/internal/pkg/response"
)

// PermissionRequest describes the current request to the permission evaluator.
func PermissionRequest(c *gin.Context) permission.Request {
	return permission.Request{User: CurrentUser(c), Method: c.Request.Method}
}

// RequirePermission runs the request-level check of p before the handler.
// Object-level checks happen in handlers once the object is loaded.
func RequirePermission(p permission.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := permission.Check(p, PermissionRequest(c)); err != nil {
			AbortPermission(c, err)
			return
		}
		c.Next()
	}
}

// AbortPermission writes 401 for ErrNotAuthenticated and 403 otherwise.
func AbortPermission(c *gin.Context, err error) {
	if errors.Is(err, permission.ErrNotAuthenticated) {
		response.Unauthorized(c, "NOT_AUTHENTICATED", "Authentication credentials were not provided")
		return
	}
	response.Forbidden(c)
}
