// Package publisher stores validated listings in PostgreSQL and announces
// each stored batch on Kafka so searchers rebuild their index.
package publisher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/ingestion/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/kafka"
	"github.com/google/uuid"
)

// ListingWriter is satisfied by catalog.PostgresStore.
type ListingWriter interface {
	InsertNew(ctx context.Context, batchID string, listings []catalog.Listing) (catalog.InsertResult, error)
}

// EventPublisher is satisfied by kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, events ...kafka.Event) error
}

type Publisher struct {
	store    ListingWriter
	producer EventPublisher
	logger   *slog.Logger
}

// New creates a Publisher. producer may be nil when Kafka is disabled;
// searchers then only see new listings after an explicit reload.
func New(store ListingWriter, producer EventPublisher) *Publisher {
	return &Publisher{
		store:    store,
		producer: producer,
		logger:   slog.Default().With("component", "publisher"),
	}
}

// Import validates records, stores the valid ones as one batch and
// publishes a CatalogUpdatedEvent when anything new was stored. Invalid
// records are reported, not fatal, unless none is valid.
func (p *Publisher) Import(ctx context.Context, origin string, records []ingestion.ListingRecord) (*ingestion.ImportResponse, error) {
	valid, rejected := validator.Partition(records)
	if len(valid) == 0 {
		return &ingestion.ImportResponse{Rejected: rejected},
			apperrors.New(apperrors.ErrInvalidInput, 400, "no valid listings in batch")
	}

	listings := make([]catalog.Listing, len(valid))
	for i, r := range valid {
		listings[i] = r.Listing()
	}
	batchID := uuid.NewString()
	res, err := p.store.InsertNew(ctx, batchID, listings)
	if err != nil {
		return nil, fmt.Errorf("storing batch %s: %w", batchID, err)
	}

	resp := &ingestion.ImportResponse{
		BatchID:  batchID,
		Inserted: res.Inserted,
		Skipped:  res.Skipped,
		Rejected: rejected,
	}
	if res.Inserted == 0 || p.producer == nil {
		return resp, nil
	}

	event := kafka.Event{
		Key: batchID,
		Value: ingestion.CatalogUpdatedEvent{
			BatchID:   batchID,
			Inserted:  res.Inserted,
			Origin:    origin,
			UpdatedAt: time.Now().UTC(),
		},
	}
	if err := p.producer.Publish(ctx, event); err != nil {
		// listings are stored; searchers pick them up on the next reload
		p.logger.Error("failed to publish catalog update",
			"batch_id", batchID,
			"inserted", res.Inserted,
			"error", err,
		)
	}
	return resp, nil
}

// ImportCSV reads a scraper export and imports its rows.
func (p *Publisher) ImportCSV(ctx context.Context, origin string, r io.Reader) (*ingestion.ImportResponse, error) {
	listings, err := catalog.ReadCSV(r)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, 400, "reading csv: %v", err)
	}
	records := make([]ingestion.ListingRecord, len(listings))
	for i, l := range listings {
		records[i] = ingestion.RecordFromListing(l)
	}
	return p.Import(ctx, origin, records)
}
