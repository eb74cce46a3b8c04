package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func (c *testClient) backdateSale(saleID int64, createdAt string) {
	c.t.Helper()
	c.h.db.MustExec(`UPDATE sale_transactions SET created_at = ? WHERE id = ?`, createdAt, saleID)
}

func (c *testClient) dailyReport(date string) dailyReportResponse {
	c.t.Helper()
	rec := c.doAuth(http.MethodGet, "/reports/daily?date="+date, nil)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	var report dailyReportResponse
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &report))
	return report
}

func TestDailyReportAggregation(t *testing.T) {
	c := newTestClient(t)
	a := c.createProduct("Gizmo", nil, 10, 6, 100)
	b := c.createProduct("Gadget", nil, 12.5, 7.5, 100)

	// Two sales on the report day: $20 revenue / $12 cost and $25 / $15.
	s1, code := c.createSale([]map[string]any{{"product_id": a.ID, "quantity": 2}}, 20)
	require.Equal(t, http.StatusCreated, code)
	s2, code := c.createSale([]map[string]any{{"product_id": b.ID, "quantity": 2}}, 25)
	require.Equal(t, http.StatusCreated, code)
	// One sale the day after, which must not count.
	s3, code := c.createSale([]map[string]any{{"product_id": a.ID, "quantity": 1}}, 10)
	require.Equal(t, http.StatusCreated, code)

	c.backdateSale(s1.ID, "2024-03-05 09:30:00")
	c.backdateSale(s2.ID, "2024-03-05 23:59:59")
	c.backdateSale(s3.ID, "2024-03-06 00:00:00")

	report := c.dailyReport("2024-03-05")
	require.Equal(t, "2024-03-05", report.Date)
	require.EqualValues(t, 2, report.TransactionCount)
	require.True(t, report.TotalSales.Equal(decimal.RequireFromString("45.00")), report.TotalSales.String())
	require.True(t, report.TotalCost.Equal(decimal.RequireFromString("27.00")), report.TotalCost.String())
	require.True(t, report.GrossProfit.Equal(decimal.RequireFromString("18.00")), report.GrossProfit.String())

	// Identical on a repeat read.
	require.Equal(t, report, c.dailyReport("2024-03-05"))
}

func TestDailyReportEmptyDay(t *testing.T) {
	c := newTestClient(t)
	report := c.dailyReport("2024-01-01")
	require.Zero(t, report.TransactionCount)
	require.True(t, report.TotalSales.IsZero())
	require.True(t, report.TotalCost.IsZero())
	require.True(t, report.GrossProfit.IsZero())
}

func TestDailyReportUsesLiveCostPrice(t *testing.T) {
	c := newTestClient(t)
	p := c.createProduct("Volatile", nil, 10, 4, 50)

	sale, code := c.createSale([]map[string]any{{"product_id": p.ID, "quantity": 3}}, 30)
	require.Equal(t, http.StatusCreated, code)
	c.backdateSale(sale.ID, "2024-03-05 12:00:00")

	// Cost basis is not snapshotted: raising cost_price after the sale
	// changes what the report says about that day.
	rec := c.doAuth(http.MethodPut, "/products/"+itoa(p.ID), map[string]any{
		"cost_price": 6.0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	report := c.dailyReport("2024-03-05")
	require.True(t, report.TotalCost.Equal(decimal.RequireFromString("18.00")), report.TotalCost.String())
	require.True(t, report.GrossProfit.Equal(decimal.RequireFromString("12.00")))
}

func TestDailyReportRejectsBadDate(t *testing.T) {
	c := newTestClient(t)

	rec := c.doAuth(http.MethodGet, "/reports/daily", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.doAuth(http.MethodGet, "/reports/daily?date=03-05-2024", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
