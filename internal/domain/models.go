// internal/domain/models.go
package domain

import "time"

// Product is one row of store inventory for the current analysis session.
// Records are immutable once loaded; a new upload replaces the whole collection.
type Product struct {
	ProductID              string    `json:"product_id" db:"product_id"`
	ProductName            string    `json:"product_name" db:"product_name"`
	StoreID                string    `json:"store_id" db:"store_id"`
	ExpiryDate             time.Time `json:"expiry_date" db:"expiry_date"`
	Stock                  int       `json:"stock" db:"stock"`
	MRP                    float64   `json:"MRP" db:"mrp"`
	FinalPrice             float64   `json:"final_price" db:"final_price"`
	RemainingExpectedSales float64   `json:"remaining_expected_sales" db:"remaining_expected_sales"`
}

// DaysToExpiry is the number of calendar days until the product expires,
// measured at date granularity. Negative means already expired.
func (p Product) DaysToExpiry(today time.Time) int {
	return daysBetween(today, p.ExpiryDate)
}

// Discount is the absolute markdown from MRP.
func (p Product) Discount() float64 {
	return p.MRP - p.FinalPrice
}

// DiscountPercentage returns the markdown as a percentage of MRP, 0 when MRP is 0.
func (p Product) DiscountPercentage() float64 {
	if p.MRP <= 0 {
		return 0
	}
	return p.Discount() / p.MRP * 100
}

func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// TransferKey is the stable natural identity of a transfer within one loaded
// batch: (product_id, from_store, to_store). List position is never used as
// identity, so reordering or filtering the collection cannot remap decisions.
type TransferKey struct {
	ProductID string `json:"product_id"`
	FromStore string `json:"from_store"`
	ToStore   string `json:"to_store"`
}

// Transfer is a suggested inter-store stock movement produced by the
// optimization backend. DaysToExpiry is supplied by that backend as an
// urgency signal and is not recomputed from a date.
type Transfer struct {
	ProductID    string  `json:"product_id" db:"product_id"`
	FromStore    string  `json:"from_store" db:"from_store"`
	ToStore      string  `json:"to_store" db:"to_store"`
	Quantity     int     `json:"quantity" db:"quantity"`
	DistanceKM   float64 `json:"distance_km" db:"distance_km"`
	DaysToExpiry int     `json:"days_to_expiry" db:"days_to_expiry"`
}

// Key returns the transfer's natural identity.
func (t Transfer) Key() TransferKey {
	return TransferKey{ProductID: t.ProductID, FromStore: t.FromStore, ToStore: t.ToStore}
}

// Urgent reports whether the transfer should be flagged for immediate action.
func (t Transfer) Urgent() bool {
	return t.DaysToExpiry <= 3
}

// StoreMetrics is the per-store rollup of the current product collection.
// It is derived on demand and never persisted.
type StoreMetrics struct {
	StoreID       string  `json:"store_id"`
	TotalProducts int     `json:"total_products"`
	TotalStock    int     `json:"total_stock"`
	LowStockCount int     `json:"low_stock_count"`
	ExpiringCount int     `json:"expiring_count"`
	TotalValue    float64 `json:"total_value"`
	ExpectedSales float64 `json:"expected_sales"`
	Efficiency    float64 `json:"efficiency"`
}
