package server

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gridstat/diversity/internal/model"
)

// handleListRuns handles GET /v1/runs.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.RunFilter{
		Table: q.Get("table"),
		Index: q.Get("index"),
	}

	if v := q.Get("status"); v != "" {
		for _, st := range strings.Split(v, ",") {
			status := model.RunStatus(st)
			if !status.IsValid() {
				writeError(w, http.StatusBadRequest, "unknown status "+strconv.Quote(st))
				return
			}
			filter.Status = append(filter.Status, status)
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	runs, total, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	// Ensure runs is never null in JSON output.
	if runs == nil {
		runs = []*model.IndexRun{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"total": total,
	})
}

// handleGetRun handles GET /v1/runs/{id}.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	run, err := s.store.GetRun(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get run")
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// handleGetCatalog handles GET /v1/catalog.
func (s *Server) handleGetCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"indices": s.catalog.Indices,
	})
}

// handleListFields handles GET /v1/tables/{table}/fields.
func (s *Server) handleListFields(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	if table == "" {
		writeError(w, http.StatusBadRequest, "table is required")
		return
	}

	schema, err := s.store.ListFields(r.Context(), table)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"table":  table,
		"fields": schema,
	})
}
