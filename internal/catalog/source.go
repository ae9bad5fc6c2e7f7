package catalog

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/postgres"
)

// Source produces the raw listing records of a catalog.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]Listing, error)
}

// NewSource picks the configured source. db may be nil unless the source is
// postgres.
func NewSource(cfg config.CatalogConfig, db *postgres.Client) (Source, error) {
	switch cfg.Source {
	case "csv":
		return CSVSource{Path: cfg.CSVPath}, nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("catalog source postgres: no database connection")
		}
		return NewPostgresStore(db), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

// StaticSource serves a fixed set of records; the CLI and tests use it.
type StaticSource []Listing

func (s StaticSource) Name() string {
	return "static"
}

func (s StaticSource) Load(context.Context) ([]Listing, error) {
	out := make([]Listing, len(s))
	copy(out, s)
	return out, nil
}
