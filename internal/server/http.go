package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gridstat/diversity/internal/model"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *Server) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/indexes", s.handleAddIndex)
	mux.HandleFunc("POST /v1/indexes/preconfigured", s.handleAddPreconfigured)
	mux.HandleFunc("POST /v1/describe", s.handleDescribe)
	mux.HandleFunc("GET /v1/catalog", s.handleGetCatalog)
	mux.HandleFunc("GET /v1/runs", s.handleListRuns)
	mux.HandleFunc("GET /v1/runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /v1/tables/{table}/fields", s.handleListFields)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// errorStatus maps an engine error to an HTTP status code. Validation
// failures are the client's fault, enrichment failures belong to the
// upstream service, everything else is internal.
func errorStatus(err error) int {
	var (
		dup     *model.DuplicateFieldError
		missing *model.MissingFieldError
		enrich  *model.EnrichmentError
	)
	switch {
	case errors.As(err, &dup):
		return http.StatusConflict
	case errors.As(err, &missing):
		return http.StatusBadRequest
	case errors.As(err, &enrich):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
