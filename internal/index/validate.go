package index

import (
	"fmt"

	"github.com/gridstat/diversity/internal/model"
)

// validateSchema checks the requested output and input field names
// against the table's current schema before anything is mutated.
// It collects every missing input field so a single error is enough
// to correct the request.
func validateSchema(table string, schema model.Schema, outputField string, selection []string) error {
	if len(selection) == 0 {
		return fmt.Errorf("no input fields given for table %q", table)
	}

	if schema.Has(outputField) {
		return &model.DuplicateFieldError{Table: table, Field: outputField}
	}

	var missing []string
	for _, name := range selection {
		if !schema.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &model.MissingFieldError{Table: table, Fields: missing}
	}

	return nil
}
