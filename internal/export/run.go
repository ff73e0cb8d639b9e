package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/gridstat/diversity/internal/store"
)

// Run exports a table once and writes the payload to every destination.
// Destination failures are collected so one broken target does not stop
// the others.
func Run(ctx context.Context, s store.Store, table string, fields []string, dests []Destination, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	var buf bytes.Buffer
	if err := ExportJSONL(ctx, s, table, fields, &buf); err != nil {
		return err
	}
	data := buf.Bytes()

	var errs []error
	for i, dest := range dests {
		if err := dest.Write(ctx, data); err != nil {
			logger.Error("export destination write failed", "destination", i, "err", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("export %s: %d of %d destinations failed: %w", table, len(errs), len(dests), errs[0])
	}

	logger.Info("export completed", "table", table, "destinations", len(dests), "bytes", len(data))
	return nil
}
