package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/errors"
)

// RequiredColumns are the text columns the index is built from. A CSV
// without any of them cannot be served.
var RequiredColumns = []string{"Title", "Description", "Company", "Location", "JobType"}

// columnAliases maps lower-cased CSV headers to listing fields.
var columnAliases = map[string]string{
	"title":       "Title",
	"company":     "Company",
	"location":    "Location",
	"salary":      "Salary",
	"jobtype":     "JobType",
	"job_type":    "JobType",
	"dateposted":  "DatePosted",
	"date_posted": "DatePosted",
	"url":         "URL",
	"companylogo": "LogoURL",
	"logo":        "LogoURL",
	"logourl":     "LogoURL",
	"logo_url":    "LogoURL",
	"description": "Description",
}

// ReadCSV decodes the scraper's export. The header row decides column
// positions; optional columns that are absent, and short rows, yield empty
// strings.
func ReadCSV(r io.Reader) ([]Listing, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.ErrEmptyCatalog
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if field, ok := columnAliases[key]; ok {
			if _, dup := positions[field]; !dup {
				positions[field] = i
			}
		}
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := positions[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrMissingColumn, strings.Join(missing, ", "))
	}
	for _, col := range []string{"Salary", "DatePosted", "URL", "LogoURL"} {
		if _, ok := positions[col]; !ok {
			slog.Warn("catalog column absent, defaulting to empty", "column", col)
		}
	}

	field := func(row []string, name string) string {
		i, ok := positions[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var listings []Listing
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}
		listings = append(listings, Listing{
			Title:       field(row, "Title"),
			Company:     field(row, "Company"),
			Location:    field(row, "Location"),
			Salary:      field(row, "Salary"),
			JobType:     field(row, "JobType"),
			DatePosted:  field(row, "DatePosted"),
			URL:         field(row, "URL"),
			LogoURL:     field(row, "LogoURL"),
			Description: field(row, "Description"),
		})
	}
	if len(listings) == 0 {
		return nil, apperrors.ErrEmptyCatalog
	}
	return listings, nil
}

// CSVSource loads listings from a CSV file on disk.
type CSVSource struct {
	Path string
}

func (s CSVSource) Name() string {
	return "csv:" + s.Path
}

func (s CSVSource) Load(ctx context.Context) ([]Listing, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", apperrors.ErrCatalogUnavailable, s.Path, err)
	}
	defer f.Close()
	listings, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", s.Path, err)
	}
	return listings, nil
}
