// Package consumer listens for catalog-updated events on Kafka and rebuilds
// the searcher's index when new listings have been stored.
package consumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/kafka"
)

// Reloader is satisfied by indexer.Engine.
type Reloader interface {
	Reload(ctx context.Context) (*indexer.Snapshot, error)
}

// CacheInvalidator drops cached search responses built from an older
// snapshot. It is optional.
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// ReloadConsumer wraps a Kafka consumer to drive index rebuilds.
type ReloadConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

func New(kafkaConsumer *kafka.Consumer) *ReloadConsumer {
	return &ReloadConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "reload-consumer"),
	}
}

// Start blocks until ctx is cancelled.
func (rc *ReloadConsumer) Start(ctx context.Context) error {
	rc.logger.Info("reload consumer starting")
	return rc.consumer.Start(ctx)
}

// HandleMessage returns a MessageHandler that reloads the engine for every
// catalog update that stored at least one listing. Undecodable messages are
// logged and skipped. cache may be nil.
func HandleMessage(engine Reloader, cache CacheInvalidator) kafka.MessageHandler {
	logger := slog.Default().With("component", "reload-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.CatalogUpdatedEvent](value)
		if err != nil {
			logger.Error("failed to decode catalog update",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		if event.Inserted == 0 {
			logger.Debug("catalog update without new listings", "batch_id", event.BatchID)
			return nil
		}
		snap, err := engine.Reload(ctx)
		if err != nil {
			return fmt.Errorf("reloading after batch %s: %w", event.BatchID, err)
		}
		if cache != nil {
			if err := cache.InvalidateAll(ctx); err != nil {
				logger.Warn("cache invalidation after reload failed", "error", err)
			}
		}
		logger.Info("index reloaded from catalog update",
			"batch_id", event.BatchID,
			"inserted", event.Inserted,
			"generation", snap.Generation,
			"listings", snap.Catalog.Len(),
		)
		return nil
	}
}
