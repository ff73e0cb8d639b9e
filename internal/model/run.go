package model

import "time"

// RunStatus represents the current state of an index run.
type RunStatus string

const (
	StatusPending        RunStatus = "pending"
	StatusValidated      RunStatus = "validated"
	StatusSchemaExtended RunStatus = "schema_extended"
	StatusRowsUpdated    RunStatus = "rows_updated"
	StatusDone           RunStatus = "done"
	StatusFailed         RunStatus = "failed"
)

// String returns the string representation of the status.
func (s RunStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s RunStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusValidated, StatusSchemaExtended,
		StatusRowsUpdated, StatusDone, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the status is an end state.
func (s RunStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// IndexRun records one diversity index computation against a dataset
// table. Runs are append-only history; the row data itself lives in
// the dataset table.
type IndexRun struct {
	ID           string     `json:"id"`
	Table        string     `json:"table"`
	IndexName    string     `json:"index_name,omitempty"` // preconfigured index name, empty for ad hoc runs
	OutputField  string     `json:"output_field"`
	InputFields  []string   `json:"input_fields"`
	EnrichFields []string   `json:"enrich_fields,omitempty"` // columns the enrichment step added
	Status       RunStatus  `json:"status"`
	RowsUpdated  int64      `json:"rows_updated"`
	FailedKeys   []int64    `json:"failed_keys,omitempty"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CreatedBy    string     `json:"created_by,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// RunFilter holds criteria for querying index runs.
type RunFilter struct {
	Status []RunStatus `json:"status,omitempty"`
	Table  string      `json:"table,omitempty"`
	Index  string      `json:"index,omitempty"`
	Limit  int         `json:"limit,omitempty"`
	Offset int         `json:"offset,omitempty"`
}
