package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retailpulse/backend-go/internal/domain"
	"github.com/retailpulse/backend-go/internal/service"
)

type DashboardHandler struct {
	service *service.DatasetService
}

func NewDashboardHandler(service *service.DatasetService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// referenceDate resolves the analysis date. The ?date=YYYY-MM-DD override
// exists so clients (and tests) can pin the reference day; otherwise the
// server's current date is injected here, at the edge, keeping the core pure.
func referenceDate(c *gin.Context) time.Time {
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		if day, err := time.Parse("2006-01-02", raw); err == nil {
			return day
		}
	}
	return time.Now()
}

type productView struct {
	domain.Product
	DaysToExpiry       int     `json:"days_to_expiry"`
	Discount           float64 `json:"discount"`
	DiscountPercentage float64 `json:"discount_percentage"`
}

func (h *DashboardHandler) GetInventory(c *gin.Context) {
	today := referenceDate(c)
	products := h.service.Products(strings.TrimSpace(c.Query("store_id")))

	items := make([]productView, 0, len(products))
	for _, p := range products {
		items = append(items, productView{
			Product:            p,
			DaysToExpiry:       p.DaysToExpiry(today),
			Discount:           p.Discount(),
			DiscountPercentage: p.DiscountPercentage(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

type transferView struct {
	domain.Transfer
	Status domain.TransferStatus `json:"status"`
	Urgent bool                  `json:"urgent"`
}

func (h *DashboardHandler) GetTransfers(c *gin.Context) {
	transfers := h.service.Transfers(strings.TrimSpace(c.Query("from_store")))
	statuses := h.service.Workflow().Statuses()

	items := make([]transferView, 0, len(transfers))
	for _, t := range transfers {
		status, ok := statuses[t.Key()]
		if !ok {
			status = domain.StatusPending
		}
		items = append(items, transferView{
			Transfer: t,
			Status:   status,
			Urgent:   t.Urgent(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

func (h *DashboardHandler) GetStores(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stores": h.service.Stores()})
}

func (h *DashboardHandler) GetStoreMetrics(c *gin.Context) {
	storeID := c.Param("store")
	metrics := h.service.StoreMetrics(c.Request.Context(), storeID, referenceDate(c))

	c.JSON(http.StatusOK, metrics)
}

func (h *DashboardHandler) GetStoreAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Alerts(c.Param("store"), referenceDate(c)))
}

func (h *DashboardHandler) GetStoreSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Summary(c.Param("store"), referenceDate(c)))
}

// GetRankings compares the selected stores. Stores come from repeated
// ?store_ids params or one comma-separated value; empty means all stores.
func (h *DashboardHandler) GetRankings(c *gin.Context) {
	rawIDs := c.QueryArray("store_ids")
	if len(rawIDs) == 0 {
		if single := strings.TrimSpace(c.Query("store_ids")); single != "" {
			rawIDs = strings.Split(single, ",")
		}
	}

	storeIDs := make([]string, 0, len(rawIDs))
	seen := make(map[string]struct{})
	for _, raw := range rawIDs {
		for _, part := range strings.Split(raw, ",") {
			id := strings.TrimSpace(part)
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			storeIDs = append(storeIDs, id)
		}
	}

	c.JSON(http.StatusOK, h.service.Rankings(storeIDs, referenceDate(c)))
}

func (h *DashboardHandler) GetSalesByStore(c *gin.Context) {
	ranked := h.service.SalesByStore()

	c.JSON(http.StatusOK, gin.H{
		"stores": ranked,
		"total":  len(ranked),
	})
}
