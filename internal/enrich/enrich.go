// Package enrich talks to the external enrichment service that appends
// demographic variables to dataset tables. The service is an opaque
// collaborator: it adds one column per requested variable, populates it
// per record, and reports back the column names it added.
package enrich

import "context"

// Enricher appends the named variables to the table as new columns and
// returns the column names it added, in request order.
type Enricher interface {
	Enrich(ctx context.Context, table string, variables []string) ([]string, error)
}
