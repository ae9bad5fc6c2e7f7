// Package catalog holds the immutable, ordered set of job listings the search
// engine serves, together with the sources it can be loaded from (CSV export
// of the scraper, or the Postgres listings table).
//
// A listing's ID is its 0-based position in the loaded catalog. Nothing else
// identifies a listing across loads: reordering or re-importing the source
// changes every ID, so links persisted by callers are only valid for the
// catalog snapshot they came from.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Listing is one catalog row. Raw fields are kept as delivered by the
// producer; Salary and DatePosted are parsed once into SalaryValue and
// PostedAt, which are absent when the raw text is not usable.
type Listing struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Salary      string `json:"salary"`
	JobType     string `json:"job_type"`
	DatePosted  string `json:"date_posted"`
	URL         string `json:"url"`
	LogoURL     string `json:"logo_url"`
	Description string `json:"description"`

	SalaryValue  *float64   `json:"-"`
	PostedAt     *time.Time `json:"-"`
	DocumentText string     `json:"-"`
}

// IndexText is the raw text indexed for the listing, in field order title,
// description, company, location, job type.
func (l *Listing) IndexText() string {
	return strings.Join([]string{l.Title, l.Description, l.Company, l.Location, l.JobType}, " ")
}

// TextNormalizer turns raw listing text into normalized document text.
type TextNormalizer interface {
	Normalize(text string) string
}

// Catalog is safe for concurrent reads and never changes after Build.
type Catalog struct {
	listings []Listing
	loadedAt time.Time
}

// BuildOptions controls derivation of per-listing fields.
type BuildOptions struct {
	Normalizer  TextNormalizer
	Concurrency int
	// Now anchors relative post dates such as "3 hari yang lalu".
	Now time.Time
}

// Build assigns positional IDs and derives SalaryValue, PostedAt and
// DocumentText for every record. Derivation runs on up to
// opts.Concurrency goroutines. An empty record set is an error.
func Build(ctx context.Context, records []Listing, opts BuildOptions) (*Catalog, error) {
	if len(records) == 0 {
		return nil, apperrors.ErrEmptyCatalog
	}
	if opts.Normalizer == nil {
		return nil, fmt.Errorf("building catalog: normalizer is required")
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	workers := opts.Concurrency
	if workers <= 0 {
		workers = 1
	}

	listings := make([]Listing, len(records))
	copy(listings, records)

	chunk := (len(listings) + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(listings); start += chunk {
		end := min(start+chunk, len(listings))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%256 == 0 && gctx.Err() != nil {
					return gctx.Err()
				}
				l := &listings[i]
				l.ID = i
				if v, ok := ParseSalary(l.Salary); ok {
					l.SalaryValue = &v
				}
				if t, ok := ParsePostedDate(l.DatePosted, opts.Now); ok {
					l.PostedAt = &t
				}
				l.DocumentText = opts.Normalizer.Normalize(l.IndexText())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("deriving listing fields: %w", err)
	}
	return &Catalog{listings: listings, loadedAt: opts.Now}, nil
}

func (c *Catalog) Len() int {
	return len(c.listings)
}

// Get returns the listing with the given id, or ErrListingNotFound when id
// is negative or not below Len.
func (c *Catalog) Get(id int) (*Listing, error) {
	if id < 0 || id >= len(c.listings) {
		return nil, apperrors.Newf(apperrors.ErrListingNotFound, 404, "job id %d not found", id)
	}
	l := c.listings[id]
	return &l, nil
}

// At returns a pointer into the catalog for read-only use by the pipeline.
func (c *Catalog) At(i int) *Listing {
	return &c.listings[i]
}

// Titles returns every listing title in catalog order.
func (c *Catalog) Titles() []string {
	titles := make([]string, len(c.listings))
	for i := range c.listings {
		titles[i] = c.listings[i].Title
	}
	return titles
}

// Documents returns every listing's normalized document text in catalog
// order.
func (c *Catalog) Documents() []string {
	docs := make([]string, len(c.listings))
	for i := range c.listings {
		docs[i] = c.listings[i].DocumentText
	}
	return docs
}

func (c *Catalog) LoadedAt() time.Time {
	return c.loadedAt
}
