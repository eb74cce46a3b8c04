package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storepos/m/domain"
)

const productColumns = `id, name, barcode, selling_price, cost_price, stock_quantity, created_at, updated_at`

// productByID loads one product through either the pool or an open tx.
func productByID(q sqlx.Queryer, id int64) (domain.Product, error) {
	var p domain.Product
	err := sqlx.Get(q, &p, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	return p, err
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

type createProductRequest struct {
	Name          string          `json:"name"`
	Barcode       *string         `json:"barcode"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	StockQuantity int64           `json:"stock_quantity"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !req.SellingPrice.IsPositive() || !req.CostPrice.IsPositive() {
		respondError(w, http.StatusBadRequest, "selling_price and cost_price must be positive")
		return
	}
	if req.StockQuantity < 0 {
		respondError(w, http.StatusBadRequest, "stock_quantity must not be negative")
		return
	}

	if req.Barcode != nil {
		var exists bool
		if err := h.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM products WHERE barcode = ?)`, *req.Barcode); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to check barcode")
			return
		}
		if exists {
			respondError(w, http.StatusConflict, fmt.Sprintf("product with barcode %s already exists", *req.Barcode))
			return
		}
	}

	res, err := h.db.Exec(`INSERT INTO products (name, barcode, selling_price, cost_price, stock_quantity) VALUES (?, ?, ?, ?, ?)`,
		req.Name, req.Barcode, req.SellingPrice.Round(2), req.CostPrice.Round(2), req.StockQuantity)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create product")
		return
	}
	id, err := res.LastInsertId()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create product")
		return
	}

	product, err := productByID(h.db, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load created product")
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products := []domain.Product{}
	if err := h.db.Select(&products, `SELECT `+productColumns+` FROM products ORDER BY name ASC`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

type updateProductRequest struct {
	Name          domain.Optional[string]          `json:"name"`
	Barcode       domain.Optional[string]          `json:"barcode"`
	SellingPrice  domain.Optional[decimal.Decimal] `json:"selling_price"`
	CostPrice     domain.Optional[decimal.Decimal] `json:"cost_price"`
	StockQuantity domain.Optional[int64]           `json:"stock_quantity"`
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req updateProductRequest
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

	// Self-match is allowed: only another product holding the barcode conflicts.
	if req.Barcode.Set && req.Barcode.Valid {
		var exists bool
		if err := h.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM products WHERE barcode = ? AND id != ?)`, req.Barcode.Value, id); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to check barcode")
			return
		}
		if exists {
			respondError(w, http.StatusConflict, "barcode already exists for another product")
			return
		}
	}

	var (
		clauses []string
		args    []any
	)
	if req.Name.Set {
		if !req.Name.Valid || strings.TrimSpace(req.Name.Value) == "" {
			respondError(w, http.StatusBadRequest, "name must not be empty")
			return
		}
		clauses = append(clauses, "name = ?")
		args = append(args, req.Name.Value)
	}
	if req.Barcode.Set {
		clauses = append(clauses, "barcode = ?")
		if req.Barcode.Valid {
			args = append(args, req.Barcode.Value)
		} else {
			args = append(args, nil)
		}
	}
	if req.SellingPrice.Set {
		if !req.SellingPrice.Valid || !req.SellingPrice.Value.IsPositive() {
			respondError(w, http.StatusBadRequest, "selling_price must be positive")
			return
		}
		clauses = append(clauses, "selling_price = ?")
		args = append(args, req.SellingPrice.Value.Round(2))
	}
	if req.CostPrice.Set {
		if !req.CostPrice.Valid || !req.CostPrice.Value.IsPositive() {
			respondError(w, http.StatusBadRequest, "cost_price must be positive")
			return
		}
		clauses = append(clauses, "cost_price = ?")
		args = append(args, req.CostPrice.Value.Round(2))
	}
	if req.StockQuantity.Set {
		if !req.StockQuantity.Valid || req.StockQuantity.Value < 0 {
			respondError(w, http.StatusBadRequest, "stock_quantity must not be negative")
			return
		}
		clauses = append(clauses, "stock_quantity = ?")
		args = append(args, req.StockQuantity.Value)
	}

	clauses = append(clauses, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)
	query := `UPDATE products SET ` + strings.Join(clauses, ", ") + ` WHERE id = ?`
	if _, err := h.db.Exec(query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update product")
		return
	}

	product, err := productByID(h.db, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load updated product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "manager") {
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if _, err := productByID(h.db, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load product")
		return
	}

	var referenced bool
	if err := h.db.Get(&referenced, `SELECT EXISTS(SELECT 1 FROM sale_items WHERE product_id = ?)`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to check sale history")
		return
	}
	if referenced {
		respondError(w, http.StatusConflict, "product is referenced by sale history")
		return
	}

	if _, err := h.db.Exec(`DELETE FROM products WHERE id = ?`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete product")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) searchProductByBarcode(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")
	if barcode == "" {
		respondError(w, http.StatusBadRequest, "barcode is required")
		return
	}

	var product domain.Product
	err := h.db.Get(&product, `SELECT `+productColumns+` FROM products WHERE barcode = ?`, barcode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A miss is a normal outcome, not an error.
			respondJSON(w, http.StatusOK, nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to search products")
		return
	}
	respondJSON(w, http.StatusOK, product)
}
