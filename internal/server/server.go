// Package server exposes the diversity engine over HTTP.
package server

import (
	"log/slog"

	"github.com/gridstat/diversity/internal/catalog"
	"github.com/gridstat/diversity/internal/index"
	"github.com/gridstat/diversity/internal/store"
)

// Server holds the handler dependencies: the engine runs the index
// workflows, the store answers read-only queries directly.
type Server struct {
	engine  *index.Engine
	store   store.Store
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// New returns a Server backed by the given engine and store.
func New(engine *index.Engine, s store.Store, c *catalog.Catalog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:  engine,
		store:   s,
		catalog: c,
		logger:  logger,
	}
}
