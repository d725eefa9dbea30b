package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpulse/backend-go/internal/domain"
)

func TestClassify(t *testing.T) {
	today := date("2026-08-01")

	t.Run("window boundaries", func(t *testing.T) {
		tests := []struct {
			name     string
			expiry   string
			expired  bool
			expiring bool
		}{
			{"yesterday is expired only", "2026-07-31", true, false},
			{"today is expiring", "2026-08-01", false, true},
			{"day seven is expiring", "2026-08-08", false, true},
			{"day eight is neither", "2026-08-09", false, false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				products := []domain.Product{
					{ProductID: "P1", StoreID: "S1", Stock: 50, ExpiryDate: date(tt.expiry)},
				}

				report := Classify(products, today)

				assert.Equal(t, tt.expired, report.Expired.Count == 1)
				assert.Equal(t, tt.expiring, report.ExpiringSoon.Count == 1)
				assert.Zero(t, report.LowStock.Count)
			})
		}
	})

	t.Run("groups overlap independently", func(t *testing.T) {
		products := []domain.Product{
			// expiring soon and low stock at once
			{ProductID: "P1", StoreID: "S1", Stock: 3, ExpiryDate: date("2026-08-04")},
		}

		report := Classify(products, today)

		assert.Zero(t, report.Expired.Count)
		require.Equal(t, 1, report.ExpiringSoon.Count)
		require.Equal(t, 1, report.LowStock.Count)
		assert.Equal(t, "P1", report.ExpiringSoon.Products[0].ProductID)
		assert.Equal(t, "P1", report.LowStock.Products[0].ProductID)
	})

	t.Run("preserves input order", func(t *testing.T) {
		products := []domain.Product{
			{ProductID: "P3", StoreID: "S1", Stock: 1, ExpiryDate: date("2027-01-01")},
			{ProductID: "P1", StoreID: "S1", Stock: 2, ExpiryDate: date("2027-01-01")},
			{ProductID: "P2", StoreID: "S1", Stock: 3, ExpiryDate: date("2027-01-01")},
		}

		report := Classify(products, today)

		require.Equal(t, 3, report.LowStock.Count)
		assert.Equal(t, "P3", report.LowStock.Products[0].ProductID)
		assert.Equal(t, "P1", report.LowStock.Products[1].ProductID)
		assert.Equal(t, "P2", report.LowStock.Products[2].ProductID)
	})

	t.Run("severities are fixed per group", func(t *testing.T) {
		report := Classify(nil, today)

		assert.Equal(t, SeverityCritical, report.Expired.Severity)
		assert.Equal(t, SeverityHigh, report.ExpiringSoon.Severity)
		assert.Equal(t, SeverityMedium, report.LowStock.Severity)
	})

	t.Run("empty input yields empty groups not nil", func(t *testing.T) {
		report := Classify(nil, today)

		assert.NotNil(t, report.Expired.Products)
		assert.NotNil(t, report.ExpiringSoon.Products)
		assert.NotNil(t, report.LowStock.Products)
	})

	t.Run("idempotent for a fixed input", func(t *testing.T) {
		products := []domain.Product{
			{ProductID: "P1", StoreID: "S1", Stock: 3, ExpiryDate: date("2026-07-20")},
			{ProductID: "P2", StoreID: "S1", Stock: 30, ExpiryDate: date("2026-08-03")},
		}

		first := Classify(products, today)
		second := Classify(products, today)

		assert.Equal(t, first, second)
	})
}
