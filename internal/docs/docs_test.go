package docs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocsEndpoints(t *testing.T) {
	h, err := NewHandler()
	require.NoError(t, err)
	router := chi.NewRouter()
	h.MountRoutes(router)

	t.Run("ui", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api-docs", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "SwaggerUIBundle")
		assert.Contains(t, rec.Body.String(), `url: "/api-docs.json"`)
		assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "https://unpkg.com")
	})

	t.Run("yaml", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api-docs.yaml", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "openapi: 3.0.3")
	})

	t.Run("json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api-docs.json", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var doc struct {
			OpenAPI string                    `json:"openapi"`
			Paths   map[string]map[string]any `json:"paths"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, "3.0.3", doc.OpenAPI)
		for _, path := range []string{"/auth/register", "/auth/login", "/feedback", "/feedback/my", "/feedback/{id}"} {
			assert.Contains(t, doc.Paths, path)
		}
		assert.Contains(t, doc.Paths["/feedback/{id}"], "put")
		assert.Contains(t, doc.Paths["/feedback/{id}"], "delete")
	})
}

func TestToJSONRejectsInvalidYAML(t *testing.T) {
	_, err := toJSON([]byte("openapi: [unterminated"))
	assert.Error(t, err)
}
