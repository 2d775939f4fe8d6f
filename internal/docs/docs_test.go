package docs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api"))
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestJSON_IsValidAndComplete(t *testing.T) {
	var doc struct {
		Swagger  string                    `json:"swagger"`
		BasePath string                    `json:"basePath"`
		Info     map[string]any            `json:"info"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(JSON(), &doc))

	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "/api", doc.BasePath)
	assert.Equal(t, "Book Review API", doc.Info["title"])
	for _, p := range []string{"/token/", "/token/refresh/", "/users/", "/users/me", "/books/{slug}", "/reviews/{id}", "/favorites/{id}", "/ws/notifications"} {
		assert.Contains(t, doc.Paths, p)
	}
	assert.Contains(t, doc.Paths["/books/{slug}"], "patch")
}

func TestRoutes(t *testing.T) {
	r := newRouter()

	rec := get(r, "/api/docs/schema/json/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, json.Valid(rec.Body.Bytes()))

	rec = get(r, "/api/docs/schema/")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(r, "/api/docs/schema/yaml/")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "2.0", doc["swagger"])

	rec = get(r, "/api/docs/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/api/docs/ui/index.html", rec.Header().Get("Location"))

	rec = get(r, "/api/docs/ui/index.html")
	assert.Equal(t, http.StatusOK, rec.Code)
}
