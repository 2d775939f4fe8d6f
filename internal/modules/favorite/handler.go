package favorite

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

// RegisterRoutes mounts /favorites. Every route needs an authenticated user
// and only ever sees that user's favorites.
func (h *Handler) RegisterRoutes(favorites *gin.RouterGroup) {
	favorites.Use(middleware.RequirePermission(permission.FavoritePolicy))
	{
		favorites.GET("/", h.List)
		favorites.POST("/", h.Create)
		favorites.GET("/:id", h.Retrieve)
		favorites.PUT("/:id", h.Update)
		favorites.PATCH("/:id", h.PartialUpdate)
		favorites.DELETE("/:id", h.Destroy)
	}
}

// List
// @Summary		List own favorites
// @Tags		Favorites
// @Security	BearerAuth
// @Produce		json
// @Param		book		query	int		false	"book id"
// @Param		reason		query	int		false	"reason 0-7"
// @Param		notes		query	string	false	"exact notes"
// @Param		expand		query	string	false	"book, user"
// @Param		page		query	int		false	"page number"
// @Param		page_size	query	int		false	"page size"
// @Success		200	{object}	pagination.Page
// @Failure		401	{object}	map[string]interface{}
// @Router		/favorites/ [get]
func (h *Handler) List(c *gin.Context) {
	set := h.expands.Parse(expand.Favorites, c.QueryArray("expand")...)
	p := pagination.FromQuery(c)

	favorites, total, err := h.svc.List(c.Request.Context(), middleware.CurrentUser(c).ID, c.Request.URL.Query(), p, h.expands.Preloads(expand.Favorites, set))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.New(c, p, total, serializer.Favorites(favorites, set)))
}

// Create
// @Summary		Add favorite
// @Description	The book's author is notified.
// @Tags		Favorites
// @Security	BearerAuth
// @Accept		json
// @Produce		json
// @Param		body	body	CreateFavoriteRequest	true	"favorite"
// @Success		201	{object}	serializer.FavoriteJSON
// @Failure		400	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Router		/favorites/ [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateFavoriteRequest
	if !request.BindJSON(c, &req) {
		return
	}

	f, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, serializer.Favorite(f, nil))
}

// Retrieve
// @Summary		Get favorite
// @Tags		Favorites
// @Security	BearerAuth
// @Produce		json
// @Param		id		path	int		true	"favorite id"
// @Param		expand	query	string	false	"book, user"
// @Success		200	{object}	serializer.FavoriteJSON
// @Failure		404	{object}	map[string]interface{}
// @Router		/favorites/{id} [get]
func (h *Handler) Retrieve(c *gin.Context) {
	set := h.expands.Parse(expand.Favorites, c.QueryArray("expand")...)
	f, ok := h.object(c, h.expands.Preloads(expand.Favorites, set))
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, serializer.Favorite(f, set))
}

// Update
// @Summary		Replace favorite
// @Tags		Favorites
// @Security	BearerAuth
// @Accept		json
// @Produce		json
// @Param		id		path	int						true	"favorite id"
// @Param		body	body	CreateFavoriteRequest	true	"favorite"
// @Success		200	{object}	serializer.FavoriteJSON
// @Failure		400	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/favorites/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	f, ok := h.object(c, nil)
	if !ok {
		return
	}
	var req CreateFavoriteRequest
	if !request.BindJSON(c, &req) {
		return
	}
	h.save(c, f, req.patch(), true)
}

// PartialUpdate
// @Summary		Update favorite
// @Tags		Favorites
// @Security	BearerAuth
// @Accept		json
// @Produce		json
// @Param		id		path	int						true	"favorite id"
// @Param		body	body	PatchFavoriteRequest	true	"fields to change"
// @Success		200	{object}	serializer.FavoriteJSON
// @Failure		400	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/favorites/{id} [patch]
func (h *Handler) PartialUpdate(c *gin.Context) {
	f, ok := h.object(c, nil)
	if !ok {
		return
	}
	var req PatchFavoriteRequest
	if !request.BindJSON(c, &req) {
		return
	}
	h.save(c, f, req, false)
}

// Destroy
// @Summary		Remove favorite
// @Tags		Favorites
// @Security	BearerAuth
// @Param		id	path	int	true	"favorite id"
// @Success		204	"No Content"
// @Failure		404	{object}	map[string]interface{}
// @Router		/favorites/{id} [delete]
func (h *Handler) Destroy(c *gin.Context) {
	f, ok := h.object(c, nil)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), f.ID); err != nil {
		h.fail(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) save(c *gin.Context, f *domain.Favorite, req PatchFavoriteRequest, full bool) {
	updated, err := h.svc.Update(c.Request.Context(), f, req, full)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, serializer.Favorite(updated, nil))
}

func (h *Handler) object(c *gin.Context, preloads []string) (*domain.Favorite, bool) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		response.NotFound(c, "Favorite")
		return nil, false
	}
	f, err := h.svc.Get(c.Request.Context(), id, middleware.CurrentUser(c).ID, preloads)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	if err := permission.CheckObject(permission.FavoritePolicy, middleware.PermissionRequest(c), f); err != nil {
		middleware.AbortPermission(c, err)
		return nil, false
	}
	return f, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationError(c, verr.Fields)
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "Favorite")
	default:
		response.Internal(c, err)
	}
}
