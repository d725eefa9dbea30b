package analytics

import (
	"sort"

	"github.com/retailpulse/backend-go/internal/domain"
)

const (
	// TopRankedStores is how many stores each comparison ranking surfaces.
	TopRankedStores = 3
	// MaxComparisonStores caps the store-comparison selection.
	MaxComparisonStores = 6
	// TopSalesStores caps the expected-sales-by-store view.
	TopSalesStores = 15
)

// PerformanceBand is the categorical label a value receives relative to the
// maximum of its displayed set.
type PerformanceBand string

const (
	BandHigh   PerformanceBand = "high"
	BandMedium PerformanceBand = "medium"
	BandLow    PerformanceBand = "low"
)

// Band maps value/max to a performance band. When max is zero or negative the
// ratio is undefined and everything is banded low.
func Band(value, max float64) PerformanceBand {
	if max <= 0 {
		return BandLow
	}

	ratio := value / max
	switch {
	case ratio > 0.8:
		return BandHigh
	case ratio > 0.5:
		return BandMedium
	default:
		return BandLow
	}
}

// Rankings are the three top-N comparison views over a set of store metrics.
type Rankings struct {
	TopPerformers  []domain.StoreMetrics `json:"top_performers"`
	NeedsAttention []domain.StoreMetrics `json:"needs_attention"`
	HighestValue   []domain.StoreMetrics `json:"highest_value"`
}

// RankStores produces the comparison rankings. All sorts are stable: stores
// that tie keep their input order, so a fixed input always yields the same
// output.
func RankStores(metrics []domain.StoreMetrics) Rankings {
	return Rankings{
		TopPerformers: topStores(metrics, func(a, b domain.StoreMetrics) bool {
			return a.Efficiency > b.Efficiency
		}),
		NeedsAttention: topStores(metrics, func(a, b domain.StoreMetrics) bool {
			return a.LowStockCount+a.ExpiringCount > b.LowStockCount+b.ExpiringCount
		}),
		HighestValue: topStores(metrics, func(a, b domain.StoreMetrics) bool {
			return a.TotalValue > b.TotalValue
		}),
	}
}

func topStores(metrics []domain.StoreMetrics, more func(a, b domain.StoreMetrics) bool) []domain.StoreMetrics {
	ranked := append([]domain.StoreMetrics(nil), metrics...)
	sort.SliceStable(ranked, func(i, j int) bool { return more(ranked[i], ranked[j]) })
	if len(ranked) > TopRankedStores {
		ranked = ranked[:TopRankedStores]
	}

	return ranked
}

// StoreSales is one bar of the expected-sales-by-store view.
type StoreSales struct {
	StoreID       string          `json:"store_id"`
	ExpectedSales float64         `json:"expected_sales"`
	Band          PerformanceBand `json:"band"`
}

// RankSalesByStore totals remaining expected sales per store over the whole
// product collection, sorts descending and keeps the top TopSalesStores.
// Bands are computed against the maximum of the displayed set, after the cap.
func RankSalesByStore(products []domain.Product) []StoreSales {
	totals := make(map[string]float64)
	order := make([]string, 0)
	for _, p := range products {
		if _, ok := totals[p.StoreID]; !ok {
			order = append(order, p.StoreID)
		}
		totals[p.StoreID] += p.RemainingExpectedSales
	}

	ranked := make([]StoreSales, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, StoreSales{StoreID: id, ExpectedSales: totals[id]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ExpectedSales > ranked[j].ExpectedSales
	})
	if len(ranked) > TopSalesStores {
		ranked = ranked[:TopSalesStores]
	}

	var max float64
	for _, s := range ranked {
		if s.ExpectedSales > max {
			max = s.ExpectedSales
		}
	}
	for i := range ranked {
		ranked[i].Band = Band(ranked[i].ExpectedSales, max)
	}

	return ranked
}
