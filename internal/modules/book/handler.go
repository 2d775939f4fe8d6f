package book

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

// RegisterRoutes mounts /books. Any authenticated user may read, writes need the author role.
func (h *Handler) RegisterRoutes(books *gin.RouterGroup) {
	books.Use(middleware.RequirePermission(permission.BookPolicy))
	{
		books.GET("/", h.List)
		books.POST("/", h.Create)
		books.GET("/:slug", h.Retrieve)
		books.PUT("/:slug", h.Update)
		books.PATCH("/:slug", h.PartialUpdate)
		books.DELETE("/:slug", h.Destroy)
	}
}

// List
// @Summary		List books
// @Tags		Books
// @Security	BearerAuth
// @Security	BasicAuth
// @Produce		json
// @Param		title			query	string	false	"exact title"
// @Param		author			query	int		false	"author id"
// @Param		language		query	int		false	"language code 1-10"
// @Param		pages			query	int		false	"page count"
// @Param		publication_date	query	string	false	"YYYY-MM-DD"
// @Param		publisher		query	string	false	"exact publisher"
// @Param		is_available	query	bool	false	"availability"
// @Param		search			query	string	false	"search title, description and content"
// @Param		ordering		query	string	false	"title, publication_date, pages, created_at"
// @Param		expand			query	string	false	"author, reviews"
// @Param		page			query	int		false	"page number"
// @Param		page_size		query	int		false	"page size"
// @Success		200	{object}	pagination.Page
// @Failure		400	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Router		/books/ [get]
func (h *Handler) List(c *gin.Context) {
	set := h.expands.Parse(expand.Books, c.QueryArray("expand")...)
	p := pagination.FromQuery(c)

	books, total, err := h.svc.List(c.Request.Context(), c.Request.URL.Query(), p, h.expands.Preloads(expand.Books, set))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.New(c, p, total, serializer.Books(books, set)))
}

// Create
// @Summary		Create book
// @Description	JSON, or multipart/form-data when uploading cover_image or file.
// @Tags		Books
// @Security	BearerAuth
// @Accept		json,mpfd
// @Produce		json
// @Param		body	body	CreateBookRequest	true	"book"
// @Success		201	{object}	serializer.BookJSON
// @Failure		400	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Router		/books/ [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateBookRequest
	up, ok := h.bind(c, &req)
	if !ok {
		return
	}

	b, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c), req, up)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, serializer.Book(b, nil))
}

// Retrieve
// @Summary		Get book
// @Tags		Books
// @Security	BearerAuth
// @Security	BasicAuth
// @Produce		json
// @Param		slug	path	string	true	"book slug"
// @Param		expand	query	string	false	"author, reviews, reviews.reviewer"
// @Success		200	{object}	serializer.BookJSON
// @Failure		404	{object}	map[string]interface{}
// @Router		/books/{slug} [get]
func (h *Handler) Retrieve(c *gin.Context) {
	set := h.expands.Parse(expand.Books, c.QueryArray("expand")...)
	b, ok := h.object(c, h.expands.Preloads(expand.Books, set))
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, serializer.Book(b, set))
}

// Update
// @Summary		Replace book
// @Tags		Books
// @Security	BearerAuth
// @Accept		json,mpfd
// @Produce		json
// @Param		slug	path	string	true	"book slug"
// @Param		body	body	CreateBookRequest	true	"book"
// @Success		200	{object}	serializer.BookJSON
// @Failure		400	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/books/{slug} [put]
func (h *Handler) Update(c *gin.Context) {
	b, ok := h.object(c, nil)
	if !ok {
		return
	}
	var req CreateBookRequest
	up, ok := h.bind(c, &req)
	if !ok {
		return
	}
	h.save(c, b, req.patch(), up, true)
}

// PartialUpdate
// @Summary		Update book
// @Tags		Books
// @Security	BearerAuth
// @Accept		json,mpfd
// @Produce		json
// @Param		slug	path	string	true	"book slug"
// @Param		body	body	PatchBookRequest	true	"fields to change"
// @Success		200	{object}	serializer.BookJSON
// @Failure		400	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/books/{slug} [patch]
func (h *Handler) PartialUpdate(c *gin.Context) {
	b, ok := h.object(c, nil)
	if !ok {
		return
	}
	var req PatchBookRequest
	up, ok := h.bind(c, &req)
	if !ok {
		return
	}
	h.save(c, b, req, up, false)
}

// Destroy
// @Summary		Delete book
// @Tags		Books
// @Security	BearerAuth
// @Param		slug	path	string	true	"book slug"
// @Success		204	"No Content"
// @Failure		403	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/books/{slug} [delete]
func (h *Handler) Destroy(c *gin.Context) {
	b, ok := h.object(c, nil)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), b); err != nil {
		h.fail(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) save(c *gin.Context, b *domain.Book, req PatchBookRequest, up Uploads, full bool) {
	updated, err := h.svc.Update(c.Request.Context(), b, req, up, full)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, serializer.Book(updated, nil))
}

// bind reads a JSON or multipart body. Files only come with multipart.
func (h *Handler) bind(c *gin.Context, dst any) (Uploads, bool) {
	var up Uploads
	if !request.IsMultipart(c) {
		return up, request.BindJSON(c, dst)
	}
	if !request.BindForm(c, dst) {
		return up, false
	}
	if fh, err := c.FormFile("cover_image"); err == nil {
		up.CoverImage = fh
	}
	if fh, err := c.FormFile("file"); err == nil {
		up.File = fh
	}
	return up, true
}

func (h *Handler) object(c *gin.Context, preloads []string) (*domain.Book, bool) {
	b, err := h.svc.Get(c.Request.Context(), c.Param("slug"), preloads)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	if err := permission.CheckObject(permission.BookPolicy, middleware.PermissionRequest(c), b); err != nil {
		middleware.AbortPermission(c, err)
		return nil, false
	}
	return b, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationError(c, verr.Fields)
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "Book")
	default:
		response.Internal(c, err)
	}
}
