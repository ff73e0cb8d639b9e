package server

import (
	"encoding/json"
	"net/http"

	"github.com/gridstat/diversity/internal/index"
	"github.com/gridstat/diversity/internal/model"
)

// handleAddIndex handles POST /v1/indexes.
func (s *Server) handleAddIndex(w http.ResponseWriter, r *http.Request) {
	var req index.AddIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Table == "" {
		writeError(w, http.StatusBadRequest, "table is required")
		return
	}
	if len(req.InputFields) == 0 {
		writeError(w, http.StatusBadRequest, "input_fields is required")
		return
	}

	run, err := s.engine.AddIndex(r.Context(), req)
	if err != nil {
		// The run record, when one was created, documents the failure.
		writeJSON(w, errorStatus(err), map[string]any{
			"error": err.Error(),
			"run":   run,
		})
		return
	}

	writeJSON(w, http.StatusCreated, run)
}

// preconfiguredInput is the body of POST /v1/indexes/preconfigured.
// Either index names one catalog entry or all requests every entry.
type preconfiguredInput struct {
	Table            string `json:"table"`
	Index            string `json:"index,omitempty"`
	All              bool   `json:"all,omitempty"`
	OutputField      string `json:"output_field,omitempty"`
	KeepEnrichFields bool   `json:"keep_enrich_fields,omitempty"`
	CreatedBy        string `json:"created_by,omitempty"`
}

// preconfiguredResult is one entry of the "all" response.
type preconfiguredResult struct {
	Index string          `json:"index"`
	Run   *model.IndexRun `json:"run,omitempty"`
	Error string          `json:"error,omitempty"`
}

// handleAddPreconfigured handles POST /v1/indexes/preconfigured.
func (s *Server) handleAddPreconfigured(w http.ResponseWriter, r *http.Request) {
	var in preconfiguredInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.Table == "" {
		writeError(w, http.StatusBadRequest, "table is required")
		return
	}
	if in.Index == "" && !in.All {
		writeError(w, http.StatusBadRequest, "index or all is required")
		return
	}
	if in.Index != "" && in.All {
		writeError(w, http.StatusBadRequest, "index and all are mutually exclusive")
		return
	}

	if in.All {
		results := s.engine.AddAllPreconfigured(r.Context(), in.Table, in.KeepEnrichFields, in.CreatedBy)
		out := make([]preconfiguredResult, len(results))
		failed := 0
		for i, res := range results {
			out[i] = preconfiguredResult{Index: res.Index, Run: res.Run}
			if res.Err != nil {
				out[i].Error = res.Err.Error()
				failed++
			}
		}
		status := http.StatusCreated
		if failed == len(results) {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, map[string]any{
			"results": out,
			"failed":  failed,
		})
		return
	}

	run, err := s.engine.AddPreconfigured(r.Context(), index.PreconfiguredRequest{
		Table:            in.Table,
		Index:            in.Index,
		OutputField:      in.OutputField,
		KeepEnrichFields: in.KeepEnrichFields,
		CreatedBy:        in.CreatedBy,
	})
	if err != nil {
		writeJSON(w, errorStatus(err), map[string]any{
			"error": err.Error(),
			"run":   run,
		})
		return
	}

	writeJSON(w, http.StatusCreated, run)
}

// handleDescribe handles POST /v1/describe.
func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	var req index.DescribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Table == "" || req.Column == "" {
		writeError(w, http.StatusBadRequest, "table and column are required")
		return
	}

	updated, err := s.engine.Describe(r.Context(), req)
	if err != nil {
		writeJSON(w, errorStatus(err), map[string]any{
			"error":        err.Error(),
			"rows_updated": updated,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"table":        req.Table,
		"column":       req.Column,
		"rows_updated": updated,
	})
}
