package config

import (
	"fmt"
	"os"
)

type Config struct {
	DatabaseURL string // GSD_DATABASE_URL (required)
	HTTPAddr    string // GSD_HTTP_ADDR (default ":8080")
	NATSURL     string // GSD_NATS_URL (optional, empty = no events)
	AuthToken   string // GSD_AUTH_TOKEN (optional, empty = auth disabled)
	CatalogFile string // GSD_CATALOG_FILE (optional user catalog overlay)

	// Enrichment service settings
	EnrichURL   string // GSD_ENRICH_URL (optional, empty = preconfigured workflow disabled)
	EnrichToken string // GSD_ENRICH_TOKEN (optional)

	// Export settings
	ExportS3Bucket   string // GSD_EXPORT_S3_BUCKET (enables S3 when set)
	ExportS3Endpoint string // GSD_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	ExportS3Region   string // GSD_EXPORT_S3_REGION (default "us-east-1")
	ExportS3Key      string // GSD_EXPORT_S3_KEY (default: per-table timestamped key)
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:      os.Getenv("GSD_DATABASE_URL"),
		HTTPAddr:         envOrDefault("GSD_HTTP_ADDR", ":8080"),
		NATSURL:          os.Getenv("GSD_NATS_URL"),
		AuthToken:        os.Getenv("GSD_AUTH_TOKEN"),
		CatalogFile:      os.Getenv("GSD_CATALOG_FILE"),
		EnrichURL:        os.Getenv("GSD_ENRICH_URL"),
		EnrichToken:      os.Getenv("GSD_ENRICH_TOKEN"),
		ExportS3Bucket:   os.Getenv("GSD_EXPORT_S3_BUCKET"),
		ExportS3Endpoint: os.Getenv("GSD_EXPORT_S3_ENDPOINT"),
		ExportS3Region:   envOrDefault("GSD_EXPORT_S3_REGION", "us-east-1"),
		ExportS3Key:      os.Getenv("GSD_EXPORT_S3_KEY"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("GSD_DATABASE_URL is required")
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
