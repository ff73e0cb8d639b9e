package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gridstat/diversity/internal/model"
)

// HTTPEnricher implements Enricher against an enrichment service
// speaking HTTP/JSON.
type HTTPEnricher struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPEnricher creates an enricher targeting the given base URL
// (e.g. "http://localhost:9010"). When token is non-empty, an
// Authorization header is set on every request.
func NewHTTPEnricher(baseURL, token string) *HTTPEnricher {
	return &HTTPEnricher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

type enrichRequest struct {
	Table     string   `json:"table"`
	Variables []string `json:"variables"`
}

type enrichResponse struct {
	Fields []string `json:"fields"`
	Error  string   `json:"error,omitempty"`
}

// Enrich posts the variable list to the service and returns the column
// names it reports adding. Failures come back as *model.EnrichmentError.
func (e *HTTPEnricher) Enrich(ctx context.Context, table string, variables []string) ([]string, error) {
	data, err := json.Marshal(enrichRequest{Table: table, Variables: variables})
	if err != nil {
		return nil, &model.EnrichmentError{Err: fmt.Errorf("marshaling request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/enrich", bytes.NewReader(data))
	if err != nil {
		return nil, &model.EnrichmentError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &model.EnrichmentError{Err: fmt.Errorf("performing request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.EnrichmentError{Err: fmt.Errorf("reading response: %w", err)}
	}

	var decoded enrichResponse
	if resp.StatusCode >= 400 {
		if json.Unmarshal(body, &decoded) == nil && decoded.Error != "" {
			return nil, &model.EnrichmentError{Err: fmt.Errorf("service returned %d: %s", resp.StatusCode, decoded.Error)}
		}
		return nil, &model.EnrichmentError{Err: fmt.Errorf("service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &model.EnrichmentError{Err: fmt.Errorf("decoding response: %w", err)}
	}
	if len(decoded.Fields) == 0 {
		return nil, &model.EnrichmentError{Err: fmt.Errorf("service added no fields for %d variable(s)", len(variables))}
	}
	return decoded.Fields, nil
}
