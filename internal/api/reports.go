package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type dailyReportResponse struct {
	Date             string          `json:"date"`
	TotalSales       decimal.Decimal `json:"total_sales"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	GrossProfit      decimal.Decimal `json:"gross_profit"`
	TransactionCount int64           `json:"transaction_count"`
}

// getDailyReport aggregates sales for one calendar day, [start, end).
// Cost of goods uses each product's current cost_price, not a snapshot;
// unit_price is the only value frozen at sale time.
func (h *Handler) getDailyReport(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		respondError(w, http.StatusBadRequest, "date is required")
		return
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}
	start := day.Format("2006-01-02") + " 00:00:00"
	end := day.AddDate(0, 0, 1).Format("2006-01-02") + " 00:00:00"

	// Sums run in decimal space in application code; SQLite SUM would
	// coerce the decimal text columns to floats.
	var amounts []decimal.Decimal
	if err := h.db.Select(&amounts, `SELECT total_amount FROM sale_transactions
        WHERE created_at >= ? AND created_at < ?`, start, end); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	totalSales := decimal.Zero
	for _, amount := range amounts {
		totalSales = totalSales.Add(amount)
	}

	var costRows []struct {
		Quantity  int64           `db:"quantity"`
		CostPrice decimal.Decimal `db:"cost_price"`
	}
	if err := h.db.Select(&costRows, `SELECT si.quantity, p.cost_price
        FROM sale_items si
        JOIN sale_transactions st ON st.id = si.transaction_id
        JOIN products p ON p.id = si.product_id
        WHERE st.created_at >= ? AND st.created_at < ?`, start, end); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sale costs")
		return
	}
	totalCost := decimal.Zero
	for _, row := range costRows {
		totalCost = totalCost.Add(row.CostPrice.Mul(decimal.NewFromInt(row.Quantity)))
	}

	respondJSON(w, http.StatusOK, dailyReportResponse{
		Date:             date,
		TotalSales:       totalSales,
		TotalCost:        totalCost,
		GrossProfit:      totalSales.Sub(totalCost),
		TransactionCount: int64(len(amounts)),
	})
}
