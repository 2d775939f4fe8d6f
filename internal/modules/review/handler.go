package review

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

// RegisterRoutes mounts /reviews. Any authenticated user may read, writes need the reviewer role.
func (h *Handler) RegisterRoutes(reviews *gin.RouterGroup) {
	reviews.Use(middleware.RequirePermission(permission.ReviewPolicy))
	{
		reviews.GET("/", h.List)
		reviews.POST("/", h.Create)
		reviews.GET("/:id", h.Retrieve)
		reviews.PUT("/:id", h.Update)
		reviews.PATCH("/:id", h.PartialUpdate)
		reviews.DELETE("/:id", h.Destroy)
	}
}

// List
// @Summary		List reviews
// @Tags		Reviews
// @Security	BearerAuth
// @Security	BasicAuth
// @Produce		json
// @Param		book		query	int		false	"book id"
// @Param		reviewer	query	int		false	"reviewer id"
// @Param		rating		query	int		false	"rating 1-5"
// @Param		is_trusted	query	bool	false	"trusted only"
// @Param		ordering	query	string	false	"rating, created_at"
// @Param		expand		query	string	false	"book, reviewer"
// @Param		page		query	int		false	"page number"
// @Param		page_size	query	int		false	"page size"
// @Success		200	{object}	pagination.Page
// @Failure		400	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Router		/reviews/ [get]
func (h *Handler) List(c *gin.Context) {
	set := h.expands.Parse(expand.Reviews, c.QueryArray("expand")...)
	p := pagination.FromQuery(c)

	reviews, total, err := h.svc.List(c.Request.Context(), c.Request.URL.Query(), p, h.expands.Preloads(expand.Reviews, set))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.New(c, p, total, serializer.Reviews(reviews, set)))
}

// Create
// @Summary		Write review
// @Description	One review per book and reviewer. The book's author is notified.
// @Tags		Reviews
// @Security	BearerAuth
// @Accept		json
// @Produce		json
// @Param		body	body	CreateReviewRequest	true	"review"
// @Success		201	{object}	serializer.ReviewJSON
// @Failure		400	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Router		/reviews/ [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if !request.BindJSON(c, &req) {
		return
	}

	rv, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, serializer.Review(rv, nil))
}

// Retrieve
// @Summary		Get review
// @Tags		Reviews
// @Security	BearerAuth
// @Security	BasicAuth
// @Produce		json
// @Param		id		path	int		true	"review id"
// @Param		expand	query	string	false	"book, reviewer"
// @Success		200	{object}	serializer.ReviewJSON
// @Failure		404	{object}	map[string]interface{}
// @Router		/reviews/{id} [get]
func (h *Handler) Retrieve(c *gin.Context) {
	set := h.expands.Parse(expand.Reviews, c.QueryArray("expand")...)
	rv, ok := h.object(c, h.expands.Preloads(expand.Reviews, set))
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, serializer.Review(rv, set))
}

// Update
// @Summary		Replace review
// @Tags		Reviews
// @Security	BearerAuth
// @Accept		json
// @Produce		json
// @Param		id		path	int					true	"review id"
// @Param		body	body	CreateReviewRequest	true	"review"
// @Success		200	{object}	serializer.ReviewJSON
// @Failure		400	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/reviews/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	rv, ok := h.object(c, nil)
	if !ok {
		return
	}
	var req CreateReviewRequest
	if !request.BindJSON(c, &req) {
		return
	}
	h.save(c, rv, req.patch())
}

// PartialUpdate
// @Summary		Update review
// @Tags		Reviews
// @Security	BearerAuth
// @Accept		json
// @Produce		json
// @Param		id		path	int					true	"review id"
// @Param		body	body	PatchReviewRequest	true	"fields to change"
// @Success		200	{object}	serializer.ReviewJSON
// @Failure		400	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/reviews/{id} [patch]
func (h *Handler) PartialUpdate(c *gin.Context) {
	rv, ok := h.object(c, nil)
	if !ok {
		return
	}
	var req PatchReviewRequest
	if !request.BindJSON(c, &req) {
		return
	}
	h.save(c, rv, req)
}

// Destroy
// @Summary		Delete review
// @Tags		Reviews
// @Security	BearerAuth
// @Param		id	path	int	true	"review id"
// @Success		204	"No Content"
// @Failure		403	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/reviews/{id} [delete]
func (h *Handler) Destroy(c *gin.Context) {
	rv, ok := h.object(c, nil)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), rv.ID); err != nil {
		h.fail(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) save(c *gin.Context, rv *domain.Review, req PatchReviewRequest) {
	updated, err := h.svc.Update(c.Request.Context(), middleware.CurrentUser(c), rv, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, serializer.Review(updated, nil))
}

func (h *Handler) object(c *gin.Context, preloads []string) (*domain.Review, bool) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		response.NotFound(c, "Review")
		return nil, false
	}
	rv, err := h.svc.Get(c.Request.Context(), id, preloads)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	if err := permission.CheckObject(permission.ReviewPolicy, middleware.PermissionRequest(c), rv); err != nil {
		middleware.AbortPermission(c, err)
		return nil, false
	}
	return rv, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationError(c, verr.Fields)
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "Review")
	default:
		response.Internal(c, err)
	}
}
