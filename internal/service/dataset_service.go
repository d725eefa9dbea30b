// Package service composes the analytic core over the currently loaded
// dataset and owns reload/restore semantics. Aggregation, classification and
// ranking stay pure; this layer only injects the data, the reference date and
// the caching policy.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/retailpulse/backend-go/internal/analytics"
	"github.com/retailpulse/backend-go/internal/cache"
	"github.com/retailpulse/backend-go/internal/domain"
	"github.com/retailpulse/backend-go/internal/repository/postgres"
	"github.com/retailpulse/backend-go/internal/storage"
	"github.com/retailpulse/backend-go/internal/workflow"
)

// Summary feeds the dashboard's statistics cards for one selected store.
type Summary struct {
	StoreID          string `json:"store_id"`
	TotalProducts    int    `json:"total_products"`
	LowStockCount    int    `json:"low_stock_count"`
	ExpiringCount    int    `json:"expiring_count"`
	PendingTransfers int    `json:"pending_transfers"`
}

// DatasetService holds the current product and transfer collections. A reload
// swaps both collections and the workflow in one critical section, so readers
// see either the old dataset or the new one, never a mix.
type DatasetService struct {
	mu        sync.RWMutex
	products  []domain.Product
	transfers []domain.Transfer
	flow      *workflow.Workflow
	version   uint64

	snapshots postgres.SnapshotStore
	cache     cache.MetricsCache
	archive   storage.ObjectStorage
}

// NewDatasetService wires the service. snapshots and archive may be nil when
// persistence or archiving is disabled; cacheImpl falls back to a noop cache.
func NewDatasetService(snapshots postgres.SnapshotStore, cacheImpl cache.MetricsCache, archive storage.ObjectStorage) *DatasetService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopMetricsCache()
	}
	return &DatasetService{
		flow:      workflow.New(nil),
		snapshots: snapshots,
		cache:     cacheImpl,
		archive:   archive,
	}
}

// Reload atomically replaces the dataset and resets every transfer to
// pending. Returns the new dataset version.
func (s *DatasetService) Reload(products []domain.Product, transfers []domain.Transfer) uint64 {
	flow := workflow.New(transfers)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = products
	s.transfers = transfers
	s.flow = flow
	s.version++

	return s.version
}

// Ingest replaces the dataset and, when persistence is enabled, stores the
// snapshot. Persistence failures are logged but do not fail the ingest: the
// in-memory dataset is already live.
func (s *DatasetService) Ingest(ctx context.Context, products []domain.Product, transfers []domain.Transfer) uint64 {
	version := s.Reload(products, transfers)

	if s.snapshots != nil {
		if _, err := s.snapshots.SaveDataset(ctx, products, transfers); err != nil {
			log.Warn().Err(err).Msg("dataset: snapshot persist failed")
		}
	}

	return version
}

// Restore loads the latest persisted snapshot, if any, into memory. Called at
// startup so a restarted server serves the last upload.
func (s *DatasetService) Restore(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}

	products, transfers, err := s.snapshots.LoadLatest(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 && len(transfers) == 0 {
		return nil
	}

	version := s.Reload(products, transfers)
	log.Info().
		Uint64("version", version).
		Int("products", len(products)).
		Int("transfers", len(transfers)).
		Msg("dataset: restored latest snapshot")

	return nil
}

// ArchiveRaw stores the raw upload bytes in the archive bucket, when one is
// configured. Best effort: failures are logged, never surfaced.
func (s *DatasetService) ArchiveRaw(ctx context.Context, key string, data []byte) {
	if s.archive == nil || len(data) == 0 {
		return
	}
	if err := s.archive.UploadObject(ctx, key, data); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("dataset: upload archive failed")
	}
}

// Version returns the current dataset version.
func (s *DatasetService) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version
}

// Products returns the current collection, optionally filtered by store.
func (s *DatasetService) Products(storeID string) []domain.Product {
	s.mu.RLock()
	products := s.products
	s.mu.RUnlock()

	if storeID == "" {
		return products
	}

	filtered := make([]domain.Product, 0)
	for _, p := range products {
		if p.StoreID == storeID {
			filtered = append(filtered, p)
		}
	}

	return filtered
}

// Transfers returns the current transfer collection, optionally filtered by
// origin store.
func (s *DatasetService) Transfers(fromStore string) []domain.Transfer {
	s.mu.RLock()
	transfers := s.transfers
	s.mu.RUnlock()

	if fromStore == "" {
		return transfers
	}

	filtered := make([]domain.Transfer, 0)
	for _, t := range transfers {
		if t.FromStore == fromStore {
			filtered = append(filtered, t)
		}
	}

	return filtered
}

// Stores returns the sorted unique store ids in the current inventory.
func (s *DatasetService) Stores() []string {
	s.mu.RLock()
	products := s.products
	s.mu.RUnlock()

	return analytics.StoreIDs(products)
}

// StoreMetrics computes one store's metrics for the given reference date,
// consulting the cache first. Cache keys carry the dataset version and the
// date, so stale entries are never served after a reload or across midnight.
func (s *DatasetService) StoreMetrics(ctx context.Context, storeID string, today time.Time) domain.StoreMetrics {
	s.mu.RLock()
	products := s.products
	version := s.version
	s.mu.RUnlock()

	day := today.Format("2006-01-02")
	if metrics, ok, err := s.cache.GetStoreMetrics(ctx, version, storeID, day); err == nil && ok {
		return metrics
	} else if err != nil {
		log.Warn().Err(err).Msg("dataset: cache get metrics failed")
	}

	metrics := analytics.Aggregate(products, storeID, today)

	if err := s.cache.SetStoreMetrics(ctx, version, storeID, day, metrics); err != nil {
		log.Warn().Err(err).Msg("dataset: cache set metrics failed")
	}

	return metrics
}

// Alerts classifies the store's products (all stores when storeID is empty).
func (s *DatasetService) Alerts(storeID string, today time.Time) analytics.AlertReport {
	return analytics.Classify(s.Products(storeID), today)
}

// Rankings computes the comparison rankings over the selected stores. An
// empty selection defaults to all stores; selections are capped at
// analytics.MaxComparisonStores either way.
func (s *DatasetService) Rankings(storeIDs []string, today time.Time) analytics.Rankings {
	s.mu.RLock()
	products := s.products
	s.mu.RUnlock()

	if len(storeIDs) == 0 {
		storeIDs = analytics.StoreIDs(products)
	}
	if len(storeIDs) > analytics.MaxComparisonStores {
		storeIDs = storeIDs[:analytics.MaxComparisonStores]
	}

	return analytics.RankStores(analytics.AggregateAll(products, storeIDs, today))
}

// SalesByStore ranks expected sales across the entire product collection.
func (s *DatasetService) SalesByStore() []analytics.StoreSales {
	s.mu.RLock()
	products := s.products
	s.mu.RUnlock()

	return analytics.RankSalesByStore(products)
}

// Summary assembles the dashboard statistics cards for one store.
func (s *DatasetService) Summary(storeID string, today time.Time) Summary {
	s.mu.RLock()
	products := s.products
	transfers := s.transfers
	flow := s.flow
	s.mu.RUnlock()

	metrics := analytics.Aggregate(products, storeID, today)
	statuses := flow.Statuses()

	pending := 0
	for _, t := range transfers {
		if t.FromStore != storeID {
			continue
		}
		if statuses[t.Key()] == domain.StatusPending {
			pending++
		}
	}

	return Summary{
		StoreID:          storeID,
		TotalProducts:    metrics.TotalProducts,
		LowStockCount:    metrics.LowStockCount,
		ExpiringCount:    metrics.ExpiringCount,
		PendingTransfers: pending,
	}
}

// Workflow returns the current batch's approval workflow.
func (s *DatasetService) Workflow() *workflow.Workflow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.flow
}
