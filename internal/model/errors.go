package model

import (
	"fmt"
	"strconv"
	"strings"
)

// DuplicateFieldError reports that the requested output field already
// exists on the dataset table. The caller must rename or drop the
// existing column before retrying.
type DuplicateFieldError struct {
	Table string
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("output field %q already exists on table %q", e.Field, e.Table)
}

// MissingFieldError reports input fields absent from the dataset table.
// It carries every missing name, not just the first, so one error is
// enough to fix the request.
type MissingFieldError struct {
	Table  string
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("input fields not found on table %q: %s", e.Table, strings.Join(e.Fields, ", "))
}

// SchemaMutationError reports that the store rejected a schema change.
// Schema changes are all-or-nothing; this error aborts the invocation.
type SchemaMutationError struct {
	Table string
	Field string
	Err   error
}

func (e *SchemaMutationError) Error() string {
	return fmt.Sprintf("adding field %q to table %q: %v", e.Field, e.Table, e.Err)
}

func (e *SchemaMutationError) Unwrap() error {
	return e.Err
}

// RowError records a single failed row during a row update pass.
type RowError struct {
	Key int64
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Key, e.Err)
}

// PartialUpdateError reports rows that failed during an update pass.
// All other rows were written correctly and the added column is kept;
// the failed keys identify exactly which rows need attention.
type PartialUpdateError struct {
	Table string
	Field string
	Rows  []RowError
}

func (e *PartialUpdateError) Error() string {
	keys := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		keys[i] = strconv.FormatInt(r.Key, 10)
	}
	return fmt.Sprintf("updating field %q on table %q: %d row(s) failed: %s",
		e.Field, e.Table, len(e.Rows), strings.Join(keys, ", "))
}

// FailedKeys returns the primary key values of the failed rows.
func (e *PartialUpdateError) FailedKeys() []int64 {
	keys := make([]int64, len(e.Rows))
	for i, r := range e.Rows {
		keys[i] = r.Key
	}
	return keys
}

// EnrichmentError reports a failure from the external enrichment
// service. The affected index is abandoned; other indices in an
// "all" run continue.
type EnrichmentError struct {
	Index string
	Err   error
}

func (e *EnrichmentError) Error() string {
	if e.Index == "" {
		return fmt.Sprintf("enrichment failed: %v", e.Err)
	}
	return fmt.Sprintf("enrichment for index %q failed: %v", e.Index, e.Err)
}

func (e *EnrichmentError) Unwrap() error {
	return e.Err
}
