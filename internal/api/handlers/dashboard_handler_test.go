package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpulse/backend-go/internal/domain"
	"github.com/retailpulse/backend-go/internal/service"
)

func setupDashboardRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	expiry := func(value string) time.Time {
		d, err := time.Parse("2006-01-02", value)
		require.NoError(t, err)
		return d
	}

	svc := service.NewDatasetService(nil, nil, nil)
	svc.Reload(
		[]domain.Product{
			{ProductID: "P1", StoreID: "S1", Stock: 5, MRP: 4, FinalPrice: 3, ExpiryDate: expiry("2026-08-05"), RemainingExpectedSales: 40},
			{ProductID: "P2", StoreID: "S1", Stock: 20, MRP: 2, FinalPrice: 2, ExpiryDate: expiry("2026-09-20"), RemainingExpectedSales: 60},
			{ProductID: "P3", StoreID: "S2", Stock: 50, MRP: 1, FinalPrice: 1, ExpiryDate: expiry("2026-09-20"), RemainingExpectedSales: 10},
		},
		[]domain.Transfer{
			{ProductID: "P1", FromStore: "S1", ToStore: "S2", Quantity: 2, DaysToExpiry: 2},
		},
	)

	handler := NewDashboardHandler(svc)
	router := gin.New()
	router.GET("/inventory", handler.GetInventory)
	router.GET("/stores", handler.GetStores)
	router.GET("/stores/:store/metrics", handler.GetStoreMetrics)
	router.GET("/stores/:store/alerts", handler.GetStoreAlerts)
	router.GET("/stores/:store/summary", handler.GetStoreSummary)
	router.GET("/analytics/rankings", handler.GetRankings)
	router.GET("/analytics/sales_by_store", handler.GetSalesByStore)
	router.GET("/transfers", handler.GetTransfers)

	return router
}

func getJSON(t *testing.T, router *gin.Engine, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

func TestGetInventory(t *testing.T) {
	router := setupDashboardRouter(t)

	var resp struct {
		Total int `json:"total"`
		Items []struct {
			ProductID          string  `json:"product_id"`
			DaysToExpiry       int     `json:"days_to_expiry"`
			Discount           float64 `json:"discount"`
			DiscountPercentage float64 `json:"discount_percentage"`
		} `json:"items"`
	}

	code := getJSON(t, router, "/inventory?date=2026-08-01", &resp)

	assert.Equal(t, http.StatusOK, code)
	require.Equal(t, 3, resp.Total)
	assert.Equal(t, "P1", resp.Items[0].ProductID)
	assert.Equal(t, 4, resp.Items[0].DaysToExpiry)
	assert.InDelta(t, 1.0, resp.Items[0].Discount, 1e-9)
	assert.InDelta(t, 25.0, resp.Items[0].DiscountPercentage, 1e-9)

	t.Run("store filter", func(t *testing.T) {
		code := getJSON(t, router, "/inventory?store_id=S2&date=2026-08-01", &resp)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, 1, resp.Total)
	})
}

func TestGetStores(t *testing.T) {
	router := setupDashboardRouter(t)

	var resp struct {
		Stores []string `json:"stores"`
	}
	code := getJSON(t, router, "/stores", &resp)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"S1", "S2"}, resp.Stores)
}

func TestGetStoreMetrics(t *testing.T) {
	router := setupDashboardRouter(t)

	var metrics domain.StoreMetrics
	code := getJSON(t, router, "/stores/S1/metrics?date=2026-08-01", &metrics)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "S1", metrics.StoreID)
	assert.Equal(t, 25, metrics.TotalStock)
	assert.Equal(t, 1, metrics.LowStockCount)
	assert.Equal(t, 1, metrics.ExpiringCount)
	assert.InDelta(t, 96.0, metrics.Efficiency, 1e-9)
}

func TestGetStoreAlerts(t *testing.T) {
	router := setupDashboardRouter(t)

	var resp struct {
		ExpiringSoon struct {
			Severity string `json:"severity"`
			Count    int    `json:"count"`
		} `json:"expiring_soon"`
		LowStock struct {
			Count int `json:"count"`
		} `json:"low_stock"`
	}
	code := getJSON(t, router, "/stores/S1/alerts?date=2026-08-01", &resp)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "high", resp.ExpiringSoon.Severity)
	assert.Equal(t, 1, resp.ExpiringSoon.Count)
	assert.Equal(t, 1, resp.LowStock.Count)
}

func TestGetStoreSummary(t *testing.T) {
	router := setupDashboardRouter(t)

	var summary service.Summary
	code := getJSON(t, router, "/stores/S1/summary?date=2026-08-01", &summary)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, summary.TotalProducts)
	assert.Equal(t, 1, summary.PendingTransfers)
}

func TestGetRankings(t *testing.T) {
	router := setupDashboardRouter(t)

	var resp struct {
		TopPerformers []domain.StoreMetrics `json:"top_performers"`
	}

	t.Run("comma separated selection", func(t *testing.T) {
		code := getJSON(t, router, "/analytics/rankings?store_ids=S1,S2&date=2026-08-01", &resp)

		assert.Equal(t, http.StatusOK, code)
		require.Len(t, resp.TopPerformers, 2)
		assert.Equal(t, "S2", resp.TopPerformers[0].StoreID)
	})

	t.Run("empty selection covers all stores", func(t *testing.T) {
		code := getJSON(t, router, "/analytics/rankings?date=2026-08-01", &resp)

		assert.Equal(t, http.StatusOK, code)
		assert.Len(t, resp.TopPerformers, 2)
	})
}

func TestGetSalesByStore(t *testing.T) {
	router := setupDashboardRouter(t)

	var resp struct {
		Total  int `json:"total"`
		Stores []struct {
			StoreID       string  `json:"store_id"`
			ExpectedSales float64 `json:"expected_sales"`
			Band          string  `json:"band"`
		} `json:"stores"`
	}
	code := getJSON(t, router, "/analytics/sales_by_store", &resp)

	assert.Equal(t, http.StatusOK, code)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "S1", resp.Stores[0].StoreID)
	assert.InDelta(t, 100.0, resp.Stores[0].ExpectedSales, 1e-9)
	assert.Equal(t, "high", resp.Stores[0].Band)
}

func TestGetTransfers(t *testing.T) {
	router := setupDashboardRouter(t)

	var resp struct {
		Total int `json:"total"`
		Items []struct {
			ProductID string `json:"product_id"`
			Status    string `json:"status"`
			Urgent    bool   `json:"urgent"`
		} `json:"items"`
	}
	code := getJSON(t, router, "/transfers", &resp)

	assert.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "P1", resp.Items[0].ProductID)
	assert.Equal(t, "pending", resp.Items[0].Status)
	assert.True(t, resp.Items[0].Urgent)
}
