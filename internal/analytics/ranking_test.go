package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpulse/backend-go/internal/domain"
)

func TestBand(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		max   float64
		want  PerformanceBand
	}{
		{"above 80 percent is high", 90, 100, BandHigh},
		{"exactly 80 percent is medium", 80, 100, BandMedium},
		{"above 50 percent is medium", 60, 100, BandMedium},
		{"exactly 50 percent is low", 50, 100, BandLow},
		{"below 50 percent is low", 10, 100, BandLow},
		{"zero max bands everything low", 10, 0, BandLow},
		{"negative max bands everything low", 10, -5, BandLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Band(tt.value, tt.max))
		})
	}
}

func TestRankStores(t *testing.T) {
	metrics := []domain.StoreMetrics{
		{StoreID: "S1", Efficiency: 90, LowStockCount: 1, ExpiringCount: 0, TotalValue: 100},
		{StoreID: "S2", Efficiency: 95, LowStockCount: 4, ExpiringCount: 3, TotalValue: 500},
		{StoreID: "S3", Efficiency: 80, LowStockCount: 2, ExpiringCount: 2, TotalValue: 300},
		{StoreID: "S4", Efficiency: 70, LowStockCount: 0, ExpiringCount: 1, TotalValue: 200},
	}

	rankings := RankStores(metrics)

	t.Run("top performers by efficiency", func(t *testing.T) {
		require.Len(t, rankings.TopPerformers, TopRankedStores)
		assert.Equal(t, "S2", rankings.TopPerformers[0].StoreID)
		assert.Equal(t, "S1", rankings.TopPerformers[1].StoreID)
		assert.Equal(t, "S3", rankings.TopPerformers[2].StoreID)
	})

	t.Run("needs attention by combined alert count", func(t *testing.T) {
		require.Len(t, rankings.NeedsAttention, TopRankedStores)
		assert.Equal(t, "S2", rankings.NeedsAttention[0].StoreID)
		assert.Equal(t, "S3", rankings.NeedsAttention[1].StoreID)
		assert.Equal(t, "S1", rankings.NeedsAttention[2].StoreID)
	})

	t.Run("highest value by inventory value", func(t *testing.T) {
		require.Len(t, rankings.HighestValue, TopRankedStores)
		assert.Equal(t, "S2", rankings.HighestValue[0].StoreID)
		assert.Equal(t, "S3", rankings.HighestValue[1].StoreID)
		assert.Equal(t, "S4", rankings.HighestValue[2].StoreID)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		assert.Equal(t, "S1", metrics[0].StoreID)
		assert.Equal(t, "S4", metrics[3].StoreID)
	})
}

func TestRankStoresStableTies(t *testing.T) {
	metrics := []domain.StoreMetrics{
		{StoreID: "S1", Efficiency: 50},
		{StoreID: "S2", Efficiency: 50},
		{StoreID: "S3", Efficiency: 50},
	}

	rankings := RankStores(metrics)

	// tied stores keep their input order
	require.Len(t, rankings.TopPerformers, 3)
	assert.Equal(t, "S1", rankings.TopPerformers[0].StoreID)
	assert.Equal(t, "S2", rankings.TopPerformers[1].StoreID)
	assert.Equal(t, "S3", rankings.TopPerformers[2].StoreID)
}

func TestRankStoresFewerThanTop(t *testing.T) {
	metrics := []domain.StoreMetrics{
		{StoreID: "S1", Efficiency: 50},
	}

	rankings := RankStores(metrics)

	assert.Len(t, rankings.TopPerformers, 1)
	assert.Len(t, rankings.NeedsAttention, 1)
	assert.Len(t, rankings.HighestValue, 1)
}

func TestRankSalesByStore(t *testing.T) {
	t.Run("totals sort and band", func(t *testing.T) {
		products := []domain.Product{
			{ProductID: "P1", StoreID: "S1", RemainingExpectedSales: 60},
			{ProductID: "P2", StoreID: "S2", RemainingExpectedSales: 100},
			{ProductID: "P3", StoreID: "S1", RemainingExpectedSales: 30},
			{ProductID: "P4", StoreID: "S3", RemainingExpectedSales: 40},
		}

		ranked := RankSalesByStore(products)

		require.Len(t, ranked, 3)
		assert.Equal(t, StoreSales{StoreID: "S2", ExpectedSales: 100, Band: BandHigh}, ranked[0])
		assert.Equal(t, StoreSales{StoreID: "S1", ExpectedSales: 90, Band: BandHigh}, ranked[1])
		assert.Equal(t, StoreSales{StoreID: "S3", ExpectedSales: 40, Band: BandLow}, ranked[2])
	})

	t.Run("caps the view and bands against displayed max", func(t *testing.T) {
		products := make([]domain.Product, 0, 20)
		for i := 0; i < 20; i++ {
			products = append(products, domain.Product{
				ProductID:              fmt.Sprintf("P%d", i),
				StoreID:                fmt.Sprintf("S%02d", i),
				RemainingExpectedSales: float64(i + 1),
			})
		}

		ranked := RankSalesByStore(products)

		require.Len(t, ranked, TopSalesStores)
		assert.Equal(t, "S19", ranked[0].StoreID)
		assert.Equal(t, BandHigh, ranked[0].Band)
		assert.Equal(t, "S05", ranked[TopSalesStores-1].StoreID)
	})

	t.Run("all zero sales band low", func(t *testing.T) {
		products := []domain.Product{
			{ProductID: "P1", StoreID: "S1"},
			{ProductID: "P2", StoreID: "S2"},
		}

		ranked := RankSalesByStore(products)

		require.Len(t, ranked, 2)
		assert.Equal(t, BandLow, ranked[0].Band)
		assert.Equal(t, BandLow, ranked[1].Band)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, RankSalesByStore(nil))
	})
}
