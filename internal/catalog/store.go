package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	apperrors "github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/resilience"
)

// Schema creates the listings table. position fixes catalog order, so it
// also fixes listing IDs for every process that loads from this table.
const Schema = `
CREATE TABLE IF NOT EXISTS job_listings (
    position     BIGSERIAL PRIMARY KEY,
    title        TEXT NOT NULL DEFAULT '',
    company      TEXT NOT NULL DEFAULT '',
    location     TEXT NOT NULL DEFAULT '',
    salary       TEXT NOT NULL DEFAULT '',
    job_type     TEXT NOT NULL DEFAULT '',
    date_posted  TEXT NOT NULL DEFAULT '',
    url          TEXT NOT NULL DEFAULT '',
    logo_url     TEXT NOT NULL DEFAULT '',
    description  TEXT NOT NULL DEFAULT '',
    batch_id     TEXT NOT NULL DEFAULT '',
    imported_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS job_listings_url_key ON job_listings (url) WHERE url <> '';
`

// PostgresStore reads and writes listings in the job_listings table.
type PostgresStore struct {
	db     *postgres.Client
	retry  resilience.RetryConfig
	logger *slog.Logger
}

func NewPostgresStore(db *postgres.Client) *PostgresStore {
	return &PostgresStore{
		db:     db,
		retry:  resilience.RetryConfig{MaxAttempts: 4},
		logger: slog.Default().With("component", "listing-store"),
	}
}

func (s *PostgresStore) Name() string {
	return "postgres:job_listings"
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("creating listing schema: %w", err)
	}
	return nil
}

// Load returns every listing ordered by position. Transient database errors
// are retried with backoff.
func (s *PostgresStore) Load(ctx context.Context) ([]Listing, error) {
	var listings []Listing
	err := resilience.Retry(ctx, "load-listings", s.retry, func() error {
		var err error
		listings, err = s.loadOnce(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCatalogUnavailable, err)
	}
	if len(listings) == 0 {
		return nil, apperrors.ErrEmptyCatalog
	}
	s.logger.Info("listings loaded", "count", len(listings))
	return listings, nil
}

func (s *PostgresStore) loadOnce(ctx context.Context) ([]Listing, error) {
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT title, company, location, salary, job_type, date_posted, url, logo_url, description
		FROM job_listings ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()

	var listings []Listing
	for rows.Next() {
		var l Listing
		if err := rows.Scan(&l.Title, &l.Company, &l.Location, &l.Salary, &l.JobType,
			&l.DatePosted, &l.URL, &l.LogoURL, &l.Description); err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating listings: %w", err)
	}
	return listings, nil
}

// InsertResult reports what an import did.
type InsertResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// InsertNew appends listings in one transaction, skipping any whose URL is
// already stored. Listings without a URL are always appended.
func (s *PostgresStore) InsertNew(ctx context.Context, batchID string, listings []Listing) (InsertResult, error) {
	var res InsertResult
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO job_listings
				(title, company, location, salary, job_type, date_posted, url, logo_url, description, batch_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (url) WHERE url <> '' DO NOTHING`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()
		for _, l := range listings {
			out, err := stmt.ExecContext(ctx, l.Title, l.Company, l.Location, l.Salary, l.JobType,
				l.DatePosted, l.URL, l.LogoURL, l.Description, batchID)
			if err != nil {
				return fmt.Errorf("inserting listing %q: %w", l.URL, err)
			}
			n, err := out.RowsAffected()
			if err != nil {
				return fmt.Errorf("reading rows affected: %w", err)
			}
			if n == 0 {
				res.Skipped++
			} else {
				res.Inserted++
			}
		}
		return nil
	})
	if err != nil {
		return InsertResult{}, err
	}
	s.logger.Info("listings imported", "batch_id", batchID, "inserted", res.Inserted, "skipped", res.Skipped)
	return res, nil
}
