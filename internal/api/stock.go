package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type stockAdjustmentRequest struct {
	Adjustment int64  `json:"adjustment"`
	Reason     string `json:"reason,omitempty"`
}

// adjustStock applies a signed correction to a product's on-hand quantity.
// The update is relative and guarded at the storage layer so concurrent
// adjustments cannot lose writes or drive stock below zero.
func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req stockAdjustmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := productByID(h.db, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, fmt.Sprintf("product %d not found", id))
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load product")
		return
	}

	res, err := h.db.Exec(`UPDATE products
        SET stock_quantity = stock_quantity + ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ? AND stock_quantity + ? >= 0`,
		req.Adjustment, id, req.Adjustment)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to adjust stock")
		return
	}
	affected, err := res.RowsAffected()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to adjust stock")
		return
	}
	if affected == 0 {
		respondError(w, http.StatusBadRequest, "stock adjustment would result in negative quantity")
		return
	}

	if req.Reason != "" {
		// Audit-only annotation; not persisted.
		log.Printf("stock adjusted for product %d by %+d: %s", id, req.Adjustment, req.Reason)
	}

	product, err := productByID(h.db, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load adjusted product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}
