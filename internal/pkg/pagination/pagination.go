package pagination

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Params struct {
	Page     int
	PageSize int
}

func (p Params) Offset() int { return (p.Page - 1) * p.PageSize }

// Page is the list envelope: count of all matching rows plus links to neighbour pages.
type Page struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// FromQuery reads page and page_size. Values out of range fall back to defaults
// rather than failing the request.
func FromQuery(c *gin.Context) Params {
	p := Params{Page: 1, PageSize: DefaultPageSize}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && v > 0 {
		if v > MaxPageSize {
			v = MaxPageSize
		}
		p.PageSize = v
	}
	return p
}

// New builds a Page whose next/previous links keep the rest of the request query.
func New(c *gin.Context, p Params, count int64, results any) Page {
	page := Page{Count: count, Results: results}
	if int64(p.Page*p.PageSize) < count {
		page.Next = link(c, p.Page+1)
	}
	if p.Page > 1 {
		page.Previous = link(c, p.Page-1)
	}
	return page
}

func link(c *gin.Context, page int) *string {
	u := url.URL{
		Scheme: "http",
		Host:   c.Request.Host,
		Path:   c.Request.URL.Path,
	}
	if c.Request.TLS != nil {
		u.Scheme = "https"
	}
	q := c.Request.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
