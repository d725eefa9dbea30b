package analytics

import (
	"time"

	"github.com/retailpulse/backend-go/internal/domain"
)

// Severity is the urgency label attached to an alert group. It is a
// presentation hint, not a domain invariant.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// AlertGroup is one bucket of products sharing an alert condition.
type AlertGroup struct {
	Severity Severity         `json:"severity"`
	Count    int              `json:"count"`
	Products []domain.Product `json:"products"`
}

// AlertReport holds the three alert buckets for a product collection.
// Groups are computed independently, so a product can appear in more than
// one (e.g. both expiring soon and low stock).
type AlertReport struct {
	Expired      AlertGroup `json:"expired"`
	ExpiringSoon AlertGroup `json:"expiring_soon"`
	LowStock     AlertGroup `json:"low_stock"`
}

// Classify buckets products into expired / expiring-soon / low-stock groups.
// Expired is strictly before today at date granularity; expiring soon is the
// closed window [0, ExpiryWindowDays] and excludes already-expired items.
// Input order is preserved within each group.
func Classify(products []domain.Product, today time.Time) AlertReport {
	report := AlertReport{
		Expired:      AlertGroup{Severity: SeverityCritical, Products: []domain.Product{}},
		ExpiringSoon: AlertGroup{Severity: SeverityHigh, Products: []domain.Product{}},
		LowStock:     AlertGroup{Severity: SeverityMedium, Products: []domain.Product{}},
	}

	for _, p := range products {
		d := p.DaysToExpiry(today)
		if d < 0 {
			report.Expired.Products = append(report.Expired.Products, p)
		}
		if d >= 0 && d <= ExpiryWindowDays {
			report.ExpiringSoon.Products = append(report.ExpiringSoon.Products, p)
		}
		if p.Stock < LowStockThreshold {
			report.LowStock.Products = append(report.LowStock.Products, p)
		}
	}

	report.Expired.Count = len(report.Expired.Products)
	report.ExpiringSoon.Count = len(report.ExpiringSoon.Products)
	report.LowStock.Count = len(report.LowStock.Products)

	return report
}
