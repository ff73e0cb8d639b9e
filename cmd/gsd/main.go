package main

import (
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/gridstat/diversity/internal/catalog"
	"github.com/gridstat/diversity/internal/config"
	"github.com/gridstat/diversity/internal/enrich"
	"github.com/gridstat/diversity/internal/events"
	"github.com/gridstat/diversity/internal/index"
	"github.com/gridstat/diversity/internal/store/postgres"
	"github.com/gridstat/diversity/internal/ui"
	"github.com/spf13/cobra"
)

// version is overridden at build time via -ldflags.
var version = "dev"

var (
	jsonOutput  bool
	actor       string
	catalogFile string
	databaseURL string
)

func defaultActor() string {
	out, err := exec.Command("git", "config", "user.name").Output()
	if err == nil {
		name := strings.TrimSpace(string(out))
		if name != "" {
			return name
		}
	}
	return "unknown"
}

var rootCmd = &cobra.Command{
	Use:     "gsd <command>",
	Short:   "Gini-Simpson diversity index tool for dataset tables",
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
	},
}

// environment holds everything a command needs to run a workflow.
type environment struct {
	cfg     *config.Config
	store   *postgres.PostgresStore
	catalog *catalog.Catalog
	engine  *index.Engine
	events  events.Publisher
	logger  *slog.Logger
}

func (e *environment) close() {
	if e.events != nil {
		_ = e.events.Close()
	}
	if e.store != nil {
		_ = e.store.Close()
	}
}

// openEnvironment connects to the database and builds the engine from
// configuration. The caller must close the returned environment.
func openEnvironment() (*environment, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if databaseURL != "" {
		os.Setenv("GSD_DATABASE_URL", databaseURL)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if catalogFile != "" {
		cfg.CatalogFile = catalogFile
	}

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}

	st, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	var publisher events.Publisher
	if cfg.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			st.Close()
			return nil, err
		}
		publisher = pub
	} else {
		publisher = &events.NoopPublisher{}
	}

	var enricher enrich.Enricher
	if cfg.EnrichURL != "" {
		enricher = enrich.NewHTTPEnricher(cfg.EnrichURL, cfg.EnrichToken)
	}

	return &environment{
		cfg:     cfg,
		store:   st,
		catalog: cat,
		engine:  index.New(st, cat, enricher, publisher, logger),
		events:  publisher,
		logger:  logger,
	}, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", defaultActor(), "actor name for created_by fields")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "path to a user catalog file (overrides GSD_CATALOG_FILE)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "database connection URL (overrides GSD_DATABASE_URL)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(preconfiguredCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
