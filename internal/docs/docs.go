// Package docs serves the OpenAPI description of the HTTP API.
package docs

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIYAML []byte

//go:embed swagger.html
var swaggerPage []byte

// uiCSP lets the Swagger UI page load its bundle from the CDN. Every other
// route keeps the strict default policy.
const uiCSP = "default-src 'self'; script-src 'self' 'unsafe-inline' https://unpkg.com; " +
	"style-src 'self' 'unsafe-inline' https://unpkg.com; img-src 'self' data: https://unpkg.com"

// Handler serves the document as YAML, as JSON and through Swagger UI.
type Handler struct {
	yamlDoc []byte
	jsonDoc []byte
}

// NewHandler converts the embedded YAML document once up front.
func NewHandler() (*Handler, error) {
	jsonDoc, err := toJSON(openAPIYAML)
	if err != nil {
		return nil, err
	}
	return &Handler{yamlDoc: openAPIYAML, jsonDoc: jsonDoc}, nil
}

// MountRoutes attaches /api-docs, /api-docs.json and /api-docs.yaml.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/api-docs", h.serveUI)
	r.Get("/api-docs.json", h.serveJSON)
	r.Get("/api-docs.yaml", h.serveYAML)
}

func (h *Handler) serveUI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", uiCSP)
	_, _ = w.Write(swaggerPage)
}

func (h *Handler) serveYAML(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(h.yamlDoc)
}

func (h *Handler) serveJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.jsonDoc)
}

func toJSON(doc []byte) ([]byte, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(doc, &tree); err != nil {
		return nil, fmt.Errorf("parse openapi yaml: %w", err)
	}
	out, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encode openapi json: %w", err)
	}
	return out, nil
}
