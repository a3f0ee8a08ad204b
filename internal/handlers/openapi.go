package handlers

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIYAML []byte

// OpenAPIHandler handles OpenAPI specification requests
type OpenAPIHandler struct {
	document []byte

	once    sync.Once
	jsonDoc []byte
	jsonErr error
}

// NewOpenAPIHandler serves document, or the embedded API description when
// document is nil.
func NewOpenAPIHandler(document []byte) *OpenAPIHandler {
	if document == nil {
		document = openAPIYAML
	}
	return &OpenAPIHandler{document: document}
}

// RegisterRoutes registers OpenAPI routes
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/openapi.yaml", h.ServeYAML).Methods("GET")
	r.HandleFunc("/api/v1/openapi.json", h.ServeJSON).Methods("GET")
}

// ServeYAML serves the OpenAPI spec in YAML format
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	if _, err := w.Write(h.document); err != nil {
		http.Error(w, "Failed to write response", http.StatusInternalServerError)
	}
}

// ServeJSON serves the OpenAPI spec in JSON format, converted once
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		var doc map[string]any
		if h.jsonErr = yaml.Unmarshal(h.document, &doc); h.jsonErr != nil {
			return
		}
		h.jsonDoc, h.jsonErr = json.Marshal(doc)
	})
	if h.jsonErr != nil {
		http.Error(w, "Failed to parse OpenAPI specification", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(h.jsonDoc); err != nil {
		http.Error(w, "Failed to write response", http.StatusInternalServerError)
	}
}
