// Package ingestion defines the request/response types and Kafka event schemas
// used by the listing import pipeline.
package ingestion

import (
	"time"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/catalog"
)

// ListingRecord is one listing as delivered by the scraper or an API client.
// Only Title is required; missing fields default to empty strings.
type ListingRecord struct {
	Title       string `json:"title" validate:"required,max=300"`
	Company     string `json:"company" validate:"max=300"`
	Location    string `json:"location" validate:"max=200"`
	Salary      string `json:"salary" validate:"max=100"`
	JobType     string `json:"job_type" validate:"max=100"`
	DatePosted  string `json:"date_posted" validate:"max=100"`
	URL         string `json:"url" validate:"omitempty,url,max=2048"`
	LogoURL     string `json:"logo_url" validate:"omitempty,url,max=2048"`
	Description string `json:"description" validate:"max=65536"`
}

func (r ListingRecord) Listing() catalog.Listing {
	return catalog.Listing{
		Title:       r.Title,
		Company:     r.Company,
		Location:    r.Location,
		Salary:      r.Salary,
		JobType:     r.JobType,
		DatePosted:  r.DatePosted,
		URL:         r.URL,
		LogoURL:     r.LogoURL,
		Description: r.Description,
	}
}

// RecordFromListing is the inverse of ListingRecord.Listing, used for CSV
// imports.
func RecordFromListing(l catalog.Listing) ListingRecord {
	return ListingRecord{
		Title:       l.Title,
		Company:     l.Company,
		Location:    l.Location,
		Salary:      l.Salary,
		JobType:     l.JobType,
		DatePosted:  l.DatePosted,
		URL:         l.URL,
		LogoURL:     l.LogoURL,
		Description: l.Description,
	}
}

// ImportRequest is the JSON body accepted by the listings endpoint.
type ImportRequest struct {
	Listings []ListingRecord `json:"listings" validate:"required,min=1,max=5000"`
}

// RejectedRecord reports why one record of a batch was not imported.
type RejectedRecord struct {
	Index  int               `json:"index"`
	Fields map[string]string `json:"fields"`
}

// ImportResponse is returned after a batch has been stored.
type ImportResponse struct {
	BatchID  string           `json:"batch_id"`
	Inserted int              `json:"inserted"`
	Skipped  int              `json:"skipped"`
	Rejected []RejectedRecord `json:"rejected,omitempty"`
}

// CatalogUpdatedEvent is published after new listings are stored. Searchers
// rebuild their index when they receive it.
type CatalogUpdatedEvent struct {
	BatchID   string    `json:"batch_id"`
	Inserted  int       `json:"inserted"`
	Origin    string    `json:"origin"`
	UpdatedAt time.Time `json:"updated_at"`
}
