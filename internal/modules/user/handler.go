package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookreview/internal/domain"
	"bookreview/internal/expand"
	"bookreview/internal/middleware"
	"bookreview/internal/permission"
	"bookreview/internal/pkg/pagination"
	"bookreview/internal/pkg/request"
	"bookreview/internal/pkg/response"
	"bookreview/internal/serializer"
)

type Handler struct {
	svc     *Service
	expands *expand.Registry
}

func NewHandler(svc *Service, expands *expand.Registry) *Handler {
	return &Handler{svc: svc, expands: expands}
}

// RegisterRoutes mounts /users. The group must already run authentication.
func (h *Handler) RegisterRoutes(users *gin.RouterGroup) {
	users.POST("/", middleware.RequirePermission(permission.RegisterPolicy), h.Create)

	authed := users.Group("", middleware.RequirePermission(permission.UserPolicy))
	{
		authed.GET("/", h.List)
		authed.GET("/me", h.Me)
		authed.POST("/me", response.MethodNotAllowed)
		authed.PUT("/me", response.MethodNotAllowed)
		authed.PATCH("/me", response.MethodNotAllowed)
		authed.DELETE("/me", response.MethodNotAllowed)
		authed.GET("/:id", h.Retrieve)
		authed.PUT("/:id", h.Update)
		authed.PATCH("/:id", h.PartialUpdate)
		authed.DELETE("/:id", h.Destroy)
	}
}

// Create
// @Summary		Register
// @Description	Creates an account. role is one of author, reviewer, other (default).
// @Tags		Users
// @Accept		json
// @Produce		json
// @Param		body	body	CreateUserRequest	true	"account"
// @Success		201	{object}	serializer.UserJSON
// @Failure		400	{object}	map[string]interface{}
// @Router		/users/ [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !request.BindJSON(c, &req) {
		return
	}

	u, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, serializer.User(u, nil))
}

// List
// @Summary		List users
// @Tags		Users
// @Security	BearerAuth
// @Produce		json
// @Param		search		query	string	false	"search username, email and names"
// @Param		ordering	query	string	false	"username, date_joined (prefix - for descending)"
// @Param		expand		query	string	false	"books, reviews, favorites"
// @Param		page		query	int		false	"page number"
// @Param		page_size	query	int		false	"page size"
// @Success		200	{object}	pagination.Page
// @Failure		401	{object}	map[string]interface{}
// @Router		/users/ [get]
func (h *Handler) List(c *gin.Context) {
	set := h.expands.Parse(expand.Users, c.QueryArray("expand")...).WithViewer(middleware.CurrentUser(c).ID)
	p := pagination.FromQuery(c)

	users, total, err := h.svc.List(c.Request.Context(), c.Request.URL.Query(), p, h.expands.Preloads(expand.Users, set))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.New(c, p, total, serializer.Users(users, set)))
}

// Me
// @Summary		Current user
// @Tags		Users
// @Security	BearerAuth
// @Produce		json
// @Success		200	{object}	serializer.UserJSON
// @Failure		401	{object}	map[string]interface{}
// @Router		/users/me [get]
func (h *Handler) Me(c *gin.Context) {
	set := h.expands.Parse(expand.Users, c.QueryArray("expand")...).WithViewer(middleware.CurrentUser(c).ID)
	u, err := h.svc.Get(c.Request.Context(), middleware.CurrentUser(c).ID, h.expands.Preloads(expand.Users, set))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, serializer.User(u, set))
}

// Retrieve
// @Summary		Get user
// @Tags		Users
// @Security	BearerAuth
// @Produce		json
// @Param		id	path	int	true	"user id"
// @Param		expand	query	string	false	"books, reviews, favorites"
// @Success		200	{object}	serializer.UserJSON
// @Failure		403	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/users/{id} [get]
func (h *Handler) Retrieve(c *gin.Context) {
	set := h.expands.Parse(expand.Users, c.QueryArray("expand")...).WithViewer(middleware.CurrentUser(c).ID)
	u, ok := h.object(c, h.expands.Preloads(expand.Users, set))
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, serializer.User(u, set))
}

// Update
// @Summary		Replace user
// @Tags		Users
// @Security	BearerAuth
// @Accept		json
// @Produce		json
// @Param		id	path	int	true	"user id"
// @Param		body	body	UpdateUserRequest	true	"account"
// @Success		200	{object}	serializer.UserJSON
// @Failure		400	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Router		/users/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	target, ok := h.object(c, nil)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !request.BindJSON(c, &req) {
		return
	}
	h.save(c, target, req.patch())
}

// PartialUpdate
// @Summary		Update user
// @Tags		Users
// @Security	BearerAuth
// @Accept		json
// @Produce		json
// @Param		id	path	int	true	"user id"
// @Param		body	body	PatchUserRequest	true	"fields to change"
// @Success		200	{object}	serializer.UserJSON
// @Failure		400	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Router		/users/{id} [patch]
func (h *Handler) PartialUpdate(c *gin.Context) {
	target, ok := h.object(c, nil)
	if !ok {
		return
	}
	var req PatchUserRequest
	if !request.BindJSON(c, &req) {
		return
	}
	h.save(c, target, req)
}

// Destroy
// @Summary		Delete user
// @Description	Deletes the account with its books, reviews and favorites.
// @Tags		Users
// @Security	BearerAuth
// @Param		id	path	int	true	"user id"
// @Success		204	"No Content"
// @Failure		403	{object}	map[string]interface{}
// @Router		/users/{id} [delete]
func (h *Handler) Destroy(c *gin.Context) {
	target, ok := h.object(c, nil)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), target.ID); err != nil {
		h.fail(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) save(c *gin.Context, target *domain.User, req PatchUserRequest) {
	u, err := h.svc.Update(c.Request.Context(), middleware.CurrentUser(c), target, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, serializer.User(u, nil))
}

// object loads the :id user and runs the object-level permission check.
func (h *Handler) object(c *gin.Context, preloads []string) (*domain.User, bool) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		response.NotFound(c, "User")
		return nil, false
	}
	u, err := h.svc.Get(c.Request.Context(), id, preloads)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	if err := permission.CheckObject(permission.UserPolicy, middleware.PermissionRequest(c), u); err != nil {
		middleware.AbortPermission(c, err)
		return nil, false
	}
	return u, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationError(c, verr.Fields)
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "User")
	default:
		response.Internal(c, err)
	}
}
