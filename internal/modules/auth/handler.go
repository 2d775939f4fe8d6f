package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookreview/internal/pkg/request"
	"bookreview/internal/pkg/response"
)

// Handler serves the token endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	tokens := api.Group("/token")
	{
		tokens.POST("/", h.Obtain)
		tokens.POST("/refresh/", h.Refresh)
		tokens.POST("/verify/", h.Verify)
		tokens.POST("/blacklist/", h.Blacklist)
	}
}

// Obtain
// @Summary		Obtain token pair
// @Description	Takes a set of user credentials and returns an access and refresh token pair.
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	ObtainRequest	true	"credentials"
// @Success		200	{object}	TokenPair
// @Failure		400	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Router		/token/ [post]
func (h *Handler) Obtain(c *gin.Context) {
	var req ObtainRequest
	if !request.BindJSON(c, &req) {
		return
	}

	pair, err := h.service.Obtain(c.Request.Context(), req, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", ErrInvalidCredentials.Error())
			return
		}
		response.Internal(c, err)
		return
	}

	response.Success(c, http.StatusOK, pair)
}

// Refresh
// @Summary		Refresh token pair
// @Description	Rotates the refresh token and returns a new pair. Reusing a rotated token revokes the whole session.
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	RefreshRequest	true	"refresh token"
// @Success		200	{object}	TokenPair
// @Failure		401	{object}	map[string]interface{}
// @Router		/token/refresh/ [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !request.BindJSON(c, &req) {
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), req.Refresh, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRefreshToken):
			response.Error(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Token is invalid or expired")
		case errors.Is(err, ErrRefreshTokenReused):
			response.Error(c, http.StatusUnauthorized, "REFRESH_TOKEN_REUSED", "Token is blacklisted")
		default:
			response.Internal(c, err)
		}
		return
	}

	response.Success(c, http.StatusOK, pair)
}

// Verify
// @Summary		Verify token
// @Description	Returns 200 when the access or refresh token is valid.
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	VerifyRequest	true	"token"
// @Success		200	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Router		/token/verify/ [post]
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if !request.BindJSON(c, &req) {
		return
	}

	if err := h.service.Verify(c.Request.Context(), req.Token); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired")
			return
		}
		response.Internal(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Blacklist
// @Summary		Blacklist refresh token
// @Description	Revokes the refresh token (logout).
// @Tags		Auth
// @Accept		json
// @Param		body	body	RefreshRequest	true	"refresh token"
// @Success		204	"No Content"
// @Failure		401	{object}	map[string]interface{}
// @Router		/token/blacklist/ [post]
func (h *Handler) Blacklist(c *gin.Context) {
	var req RefreshRequest
	if !request.BindJSON(c, &req) {
		return
	}

	if err := h.service.Blacklist(c.Request.Context(), req.Refresh); err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			response.Error(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Token is invalid or expired")
			return
		}
		response.Internal(c, err)
		return
	}

	response.NoContent(c)
}
