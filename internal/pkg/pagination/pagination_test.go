package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestFromQuery(t *testing.T) {
	p := FromQuery(newContext("/api/books/?page=3&page_size=5"))
	assert.Equal(t, Params{Page: 3, PageSize: 5}, p)
	assert.Equal(t, 10, p.Offset())

	p = FromQuery(newContext("/api/books/?page=-1&page_size=1000"))
	assert.Equal(t, Params{Page: 1, PageSize: MaxPageSize}, p)

	p = FromQuery(newContext("/api/books/?page=abc"))
	assert.Equal(t, Params{Page: 1, PageSize: DefaultPageSize}, p)
}

func TestNew_Links(t *testing.T) {
	c := newContext("/api/books/?page=2&page_size=10&search=dune")
	page := New(c, FromQuery(c), 35, []int{})

	require.NotNil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://example.com/api/books/?page=3&page_size=10&search=dune", *page.Next)
	assert.Equal(t, "http://example.com/api/books/?page_size=10&search=dune", *page.Previous)
}

func TestNew_SinglePage(t *testing.T) {
	c := newContext("/api/books/")
	page := New(c, FromQuery(c), 3, []int{1, 2, 3})

	assert.Nil(t, page.Next)
	assert.Nil(t, page.Previous)
	assert.Equal(t, int64(3), page.Count)
}
