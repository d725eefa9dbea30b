// Package analytics holds the pure computational core of the dashboard:
// store-level metric aggregation, alert classification and ranking. Every
// function takes the reference date explicitly and reads no ambient state,
// so results are deterministic for a fixed input.
package analytics

import (
	"sort"
	"time"

	"github.com/retailpulse/backend-go/internal/domain"
)

const (
	// LowStockThreshold marks a product as low stock when its units fall below it.
	LowStockThreshold = 10
	// ExpiryWindowDays is the "expiring soon" horizon in calendar days, inclusive.
	ExpiryWindowDays = 7
)

// Aggregate rolls one store's subset of the product collection up into
// StoreMetrics. Products belonging to other stores are ignored.
//
// Efficiency divides by total stock units, not product count. That is the
// established formula for this dashboard; see DESIGN.md before changing it.
func Aggregate(products []domain.Product, storeID string, today time.Time) domain.StoreMetrics {
	m := domain.StoreMetrics{StoreID: storeID}

	for _, p := range products {
		if p.StoreID != storeID {
			continue
		}

		m.TotalProducts++
		m.TotalStock += p.Stock
		if p.Stock < LowStockThreshold {
			m.LowStockCount++
		}
		if d := p.DaysToExpiry(today); d >= 0 && d <= ExpiryWindowDays {
			m.ExpiringCount++
		}
		m.TotalValue += p.FinalPrice * float64(p.Stock)
		m.ExpectedSales += p.RemainingExpectedSales
	}

	if m.TotalStock > 0 {
		m.Efficiency = float64(m.TotalStock-m.LowStockCount) / float64(m.TotalStock) * 100
	}

	return m
}

// AggregateAll computes StoreMetrics for each requested store, in the order
// the store ids are given.
func AggregateAll(products []domain.Product, storeIDs []string, today time.Time) []domain.StoreMetrics {
	metrics := make([]domain.StoreMetrics, 0, len(storeIDs))
	for _, id := range storeIDs {
		metrics = append(metrics, Aggregate(products, id, today))
	}

	return metrics
}

// StoreIDs returns the sorted unique store ids present in the collection.
func StoreIDs(products []domain.Product) []string {
	seen := make(map[string]struct{}, len(products))
	ids := make([]string, 0)
	for _, p := range products {
		if _, ok := seen[p.StoreID]; ok {
			continue
		}
		seen[p.StoreID] = struct{}{}
		ids = append(ids, p.StoreID)
	}
	sort.Strings(ids)

	return ids
}
