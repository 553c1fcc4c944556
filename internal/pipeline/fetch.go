package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"telanews/internal/metrics"
	"telanews/internal/source"
	"telanews/internal/store"
)

// Fetcher pulls a batch of headlines from the news source and inserts
// the ones the store has not seen. Re-running against an unchanged feed
// inserts nothing, which is what makes the fetch stage idempotent.
type Fetcher struct {
	source    source.Source
	store     store.Store
	batchSize int
	log       *slog.Logger
}

var _ Stage = (*Fetcher)(nil)

func NewFetcher(src source.Source, st store.Store, batchSize int, log *slog.Logger) *Fetcher {
	return &Fetcher{source: src, store: st, batchSize: batchSize, log: log}
}

func (f *Fetcher) Name() string { return "fetch" }

func (f *Fetcher) Run(ctx context.Context) StageResult {
	items, err := f.source.Fetch(ctx, f.batchSize)
	if err != nil {
		return failed(fmt.Errorf("fetch headlines: %w", err))
	}
	metrics.Global.AddItemsFetched(len(items))

	if len(items) == 0 {
		f.log.Debug("source returned no items")
		return success()
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.NewsID)
	}

	existing, err := f.store.ExistingIDs(ctx, ids)
	if err != nil {
		return failed(fmt.Errorf("check existing ids: %w", err))
	}

	var fresh []store.Item
	for _, item := range items {
		if !existing[item.NewsID] {
			fresh = append(fresh, item)
		}
	}

	if len(fresh) == 0 {
		f.log.Debug("no new items", "seen", len(items))
		return success()
	}

	if err := f.store.InsertItems(ctx, fresh); err != nil {
		return failed(fmt.Errorf("insert items: %w", err))
	}

	metrics.Global.AddItemsInserted(len(fresh))
	f.log.Info("inserted new items", "count", len(fresh), "seen", len(items))
	return success()
}
