package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gridstat/diversity/internal/catalog"
	"github.com/gridstat/diversity/internal/index"
	"github.com/gridstat/diversity/internal/model"
)

// newTestServer wires a handler to an in-memory store with one table.
func newTestServer(t *testing.T, ms *mockStore, authToken string) http.Handler {
	t.Helper()
	c, err := catalog.Load("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	engine := index.New(ms, c, nil, nil, nil)
	return New(engine, ms, c, nil).NewHTTPHandler(authToken)
}

func tractsStore() *mockStore {
	ms := newMockStore()
	tbl := ms.addTable("tracts", "objectid",
		model.Field{Name: "pop_a", Type: model.FieldTypeFloat},
		model.Field{Name: "pop_b", Type: model.FieldTypeFloat})
	tbl.rows[1] = map[string]float64{"pop_a": 90, "pop_b": 10}
	tbl.rows[2] = map[string]float64{"pop_a": 50, "pop_b": 50}
	return ms
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	h := newTestServer(t, tractsStore(), "")
	rec := doJSON(t, h, http.MethodGet, "/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestServer(t, tractsStore(), "secret")

	// Health is exempt.
	rec := doJSON(t, h, http.MethodGet, "/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rec.Code)
	}

	// Missing token.
	rec = doJSON(t, h, http.MethodGet, "/v1/runs", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no-token status = %d, want 401", rec.Code)
	}

	// Wrong token.
	req := httptest.NewRequest(http.MethodGet, "/v1/runs", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong-token status = %d, want 401", rec.Code)
	}

	// Correct token.
	req = httptest.NewRequest(http.MethodGet, "/v1/runs", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("good-token status = %d, want 200", rec.Code)
	}
}

func TestHandleAddIndex(t *testing.T) {
	ms := tractsStore()
	h := newTestServer(t, ms, "")

	rec := doJSON(t, h, http.MethodPost, "/v1/indexes", map[string]any{
		"table":        "tracts",
		"input_fields": []string{"pop_a", "pop_b"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var run model.IndexRun
	if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
		t.Fatalf("unmarshal run: %v", err)
	}
	if run.Status != model.StatusDone {
		t.Errorf("run status = %q, want done", run.Status)
	}
	if run.RowsUpdated != 2 {
		t.Errorf("rows updated = %d, want 2", run.RowsUpdated)
	}
	if run.OutputField != index.DefaultOutputField {
		t.Errorf("output field = %q, want default", run.OutputField)
	}

	got := ms.tables["tracts"].rows[2][index.DefaultOutputField]
	if got != 0.5 {
		t.Errorf("row 2 score = %v, want 0.5", got)
	}
}

func TestHandleAddIndex_Validation(t *testing.T) {
	h := newTestServer(t, tractsStore(), "")

	for _, tc := range []struct {
		name string
		body any
		want int
	}{
		{"MissingTable", map[string]any{"input_fields": []string{"pop_a"}}, http.StatusBadRequest},
		{"MissingInputFields", map[string]any{"table": "tracts"}, http.StatusBadRequest},
		{"UnknownField", map[string]any{"table": "tracts", "input_fields": []string{"nope"}}, http.StatusBadRequest},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/v1/indexes", tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tc.want, rec.Body)
			}
		})
	}
}

func TestHandleAddIndex_InvalidJSON(t *testing.T) {
	h := newTestServer(t, tractsStore(), "")
	req := httptest.NewRequest(http.MethodPost, "/v1/indexes", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleAddIndex_Duplicate(t *testing.T) {
	ms := tractsStore()
	h := newTestServer(t, ms, "")

	body := map[string]any{"table": "tracts", "input_fields": []string{"pop_a", "pop_b"}}
	if rec := doJSON(t, h, http.MethodPost, "/v1/indexes", body); rec.Code != http.StatusCreated {
		t.Fatalf("first run status = %d: %s", rec.Code, rec.Body)
	}

	rec := doJSON(t, h, http.MethodPost, "/v1/indexes", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second run status = %d, want 409: %s", rec.Code, rec.Body)
	}

	var out struct {
		Error string          `json:"error"`
		Run   *model.IndexRun `json:"run"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Run == nil || out.Run.Status != model.StatusFailed {
		t.Fatalf("expected failed run in response, got %+v", out.Run)
	}
}

func TestHandleAddPreconfigured_Validation(t *testing.T) {
	h := newTestServer(t, tractsStore(), "")

	for _, tc := range []struct {
		name string
		body any
	}{
		{"MissingTable", map[string]any{"index": "income"}},
		{"NeitherIndexNorAll", map[string]any{"table": "tracts"}},
		{"BothIndexAndAll", map[string]any{"table": "tracts", "index": "income", "all": true}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/v1/indexes/preconfigured", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestHandleAddPreconfigured_NoEnricher(t *testing.T) {
	h := newTestServer(t, tractsStore(), "")
	rec := doJSON(t, h, http.MethodPost, "/v1/indexes/preconfigured", map[string]any{
		"table": "tracts",
		"index": "income",
	})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502: %s", rec.Code, rec.Body)
	}
}

func TestHandleDescribe(t *testing.T) {
	ms := tractsStore()
	h := newTestServer(t, ms, "")

	rec := doJSON(t, h, http.MethodPost, "/v1/describe", map[string]any{
		"table":  "tracts",
		"column": "pop_a",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var out struct {
		RowsUpdated int64 `json:"rows_updated"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.RowsUpdated != 2 {
		t.Errorf("rows updated = %d, want 2", out.RowsUpdated)
	}
	if !ms.tables["tracts"].schema.Has("pop_a_std") || !ms.tables["tracts"].schema.Has("pop_a_quartile") {
		t.Error("companion columns not added")
	}
}

func TestHandleGetCatalog(t *testing.T) {
	h := newTestServer(t, tractsStore(), "")
	rec := doJSON(t, h, http.MethodGet, "/v1/catalog", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var out struct {
		Indices map[string]catalog.Entry `json:"indices"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := out.Indices["income"]; !ok {
		t.Errorf("income index missing from catalog: %v", out.Indices)
	}
}

func TestHandleRuns(t *testing.T) {
	ms := tractsStore()
	h := newTestServer(t, ms, "")

	rec := doJSON(t, h, http.MethodPost, "/v1/indexes", map[string]any{
		"table":        "tracts",
		"input_fields": []string{"pop_a", "pop_b"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add index: %d: %s", rec.Code, rec.Body)
	}
	var created model.IndexRun
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal created run: %v", err)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/runs?table=tracts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list struct {
		Runs  []*model.IndexRun `json:"runs"`
		Total int               `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if list.Total != 1 || len(list.Runs) != 1 {
		t.Fatalf("list = %+v, want 1 run", list)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/runs/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/runs/run-missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing run status = %d, want 404", rec.Code)
	}
}

func TestHandleListRuns_BadStatus(t *testing.T) {
	h := newTestServer(t, tractsStore(), "")
	rec := doJSON(t, h, http.MethodGet, "/v1/runs?status=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleListFields(t *testing.T) {
	h := newTestServer(t, tractsStore(), "")

	rec := doJSON(t, h, http.MethodGet, "/v1/tables/tracts/fields", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var out struct {
		Fields model.Schema `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Fields) != 3 {
		t.Errorf("fields = %v, want 3 columns", out.Fields)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/tables/nope/fields", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown table status = %d, want 404", rec.Code)
	}
}
