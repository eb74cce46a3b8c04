package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storepos/m/domain"
)

type saleItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type createSaleRequest struct {
	Items      []saleItemRequest `json:"items"`
	AmountPaid decimal.Decimal   `json:"amount_paid"`
}

type saleLine struct {
	productID int64
	quantity  int64
	unitPrice decimal.Decimal
	subtotal  decimal.Decimal
}

// createSale runs the whole checkout as one transaction: every line is
// validated against current stock, unit prices are snapshotted, and the
// transaction row, its line items and every stock decrement commit or roll
// back together.
func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "sale requires at least one item")
		return
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			respondError(w, http.StatusBadRequest, "item quantity must be positive")
			return
		}
	}
	if !req.AmountPaid.IsPositive() {
		respondError(w, http.StatusBadRequest, "amount_paid must be positive")
		return
	}
	amountPaid := req.AmountPaid.Round(2)

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()

	// Validate every line and lock in prices before writing anything.
	total := decimal.Zero
	lines := make([]saleLine, 0, len(req.Items))
	for _, item := range req.Items {
		product, err := productByID(tx, item.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondError(w, http.StatusNotFound, fmt.Sprintf("product %d not found", item.ProductID))
				return
			}
			respondError(w, http.StatusInternalServerError, "unable to load product")
			return
		}
		if product.StockQuantity < item.Quantity {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("insufficient stock for product %s", product.Name))
			return
		}
		subtotal := product.SellingPrice.Mul(decimal.NewFromInt(item.Quantity))
		total = total.Add(subtotal)
		lines = append(lines, saleLine{
			productID: item.ProductID,
			quantity:  item.Quantity,
			unitPrice: product.SellingPrice,
			subtotal:  subtotal,
		})
	}

	if amountPaid.LessThan(total) {
		respondError(w, http.StatusBadRequest, "amount paid is less than total amount")
		return
	}
	change := amountPaid.Sub(total)

	res, err := tx.Exec(`INSERT INTO sale_transactions (receipt_number, user_id, total_amount, amount_paid, change_amount)
        VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), userIDFromContext(r), total, amountPaid, change)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create sale record")
		return
	}
	saleID, err := res.LastInsertId()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create sale record")
		return
	}

	for _, line := range lines {
		if _, err := tx.Exec(`INSERT INTO sale_items (transaction_id, product_id, quantity, unit_price, subtotal)
            VALUES (?, ?, ?, ?, ?)`,
			saleID, line.productID, line.quantity, line.unitPrice, line.subtotal); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to add sale items")
			return
		}

		// Relative decrement with a stock post-condition; a concurrent sale
		// that drained the product between validation and here aborts the tx.
		decRes, err := tx.Exec(`UPDATE products
            SET stock_quantity = stock_quantity - ?, updated_at = CURRENT_TIMESTAMP
            WHERE id = ? AND stock_quantity >= ?`,
			line.quantity, line.productID, line.quantity)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to update stock")
			return
		}
		affected, err := decRes.RowsAffected()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to update stock")
			return
		}
		if affected == 0 {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("insufficient stock for product %d", line.productID))
			return
		}
	}

	var sale domain.SaleTransaction
	if err := tx.Get(&sale, `SELECT id, receipt_number, user_id, total_amount, amount_paid, change_amount, created_at
        FROM sale_transactions WHERE id = ?`, saleID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sale record")
		return
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize sale")
		return
	}
	respondJSON(w, http.StatusCreated, sale)
}

type saleItemDetail struct {
	domain.SaleItem
	ProductName string `db:"product_name" json:"product_name"`
}

type saleDetailsResponse struct {
	Transaction domain.SaleTransaction `json:"transaction"`
	Items       []saleItemDetail       `json:"items"`
}

func (h *Handler) getSaleDetails(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var sale domain.SaleTransaction
	err = h.db.Get(&sale, `SELECT id, receipt_number, user_id, total_amount, amount_paid, change_amount, created_at
        FROM sale_transactions WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, fmt.Sprintf("transaction %d not found", id))
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load transaction")
		return
	}

	// Product name comes from a live join: renames show through, while
	// unit_price and subtotal stay frozen at sale time.
	items := []saleItemDetail{}
	err = h.db.Select(&items, `SELECT si.id, si.transaction_id, si.product_id, si.quantity,
            si.unit_price, si.subtotal, si.created_at, p.name AS product_name
        FROM sale_items si
        JOIN products p ON p.id = si.product_id
        WHERE si.transaction_id = ?
        ORDER BY si.id ASC`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sale items")
		return
	}

	respondJSON(w, http.StatusOK, saleDetailsResponse{Transaction: sale, Items: items})
}
