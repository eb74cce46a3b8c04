package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"storepos/m/domain"
)

func (c *testClient) createSale(items []map[string]any, amountPaid float64) (*domain.SaleTransaction, int) {
	c.t.Helper()
	rec := c.doAuth(http.MethodPost, "/sales", map[string]any{
		"items":       items,
		"amount_paid": amountPaid,
	})
	if rec.Code != http.StatusCreated {
		return nil, rec.Code
	}
	var sale domain.SaleTransaction
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &sale))
	return &sale, rec.Code
}

func (c *testClient) tableCount(table string) int {
	c.t.Helper()
	var count int
	require.NoError(c.t, c.h.db.Get(&count, `SELECT COUNT(*) FROM `+table))
	return count
}

func TestCreateSaleExactPayment(t *testing.T) {
	c := newTestClient(t)
	p := c.createProduct("Soap", nil, 10, 5, 100)

	sale, code := c.createSale([]map[string]any{
		{"product_id": p.ID, "quantity": 5},
	}, 50)
	require.Equal(t, http.StatusCreated, code)

	require.True(t, sale.TotalAmount.Equal(decimal.RequireFromString("50.00")), sale.TotalAmount.String())
	require.True(t, sale.AmountPaid.Equal(decimal.RequireFromString("50.00")))
	require.True(t, sale.ChangeAmount.Equal(decimal.RequireFromString("0.00")))
	require.NotEmpty(t, sale.ReceiptNumber)
	require.NotNil(t, sale.UserID)

	require.EqualValues(t, 95, c.getProduct(p.ID).StockQuantity)
}

func TestCreateSaleMultipleLinesWithChange(t *testing.T) {
	c := newTestClient(t)
	a := c.createProduct("Tea", nil, 12.5, 8, 20)
	b := c.createProduct("Sugar", nil, 7.25, 4.5, 30)

	sale, code := c.createSale([]map[string]any{
		{"product_id": a.ID, "quantity": 2},
		{"product_id": b.ID, "quantity": 3},
	}, 50)
	require.Equal(t, http.StatusCreated, code)

	// 2*12.50 + 3*7.25 = 46.75, change 3.25
	require.True(t, sale.TotalAmount.Equal(decimal.RequireFromString("46.75")), sale.TotalAmount.String())
	require.True(t, sale.ChangeAmount.Equal(decimal.RequireFromString("3.25")), sale.ChangeAmount.String())

	require.EqualValues(t, 18, c.getProduct(a.ID).StockQuantity)
	require.EqualValues(t, 27, c.getProduct(b.ID).StockQuantity)

	// Line items carry the locked-in prices and their sum matches the total.
	rec := c.doAuth(http.MethodGet, "/sales/"+itoa(sale.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var details saleDetailsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	require.Len(t, details.Items, 2)
	sum := decimal.Zero
	for _, item := range details.Items {
		require.True(t, item.Subtotal.Equal(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))))
		sum = sum.Add(item.Subtotal)
	}
	require.True(t, sum.Equal(sale.TotalAmount))
}

func TestCreateSaleUnderpaymentRollsBack(t *testing.T) {
	c := newTestClient(t)
	p := c.createProduct("Candles", nil, 10, 5, 100)

	_, code := c.createSale([]map[string]any{
		{"product_id": p.ID, "quantity": 2},
	}, 15)
	require.Equal(t, http.StatusBadRequest, code)

	require.Zero(t, c.tableCount("sale_transactions"))
	require.Zero(t, c.tableCount("sale_items"))
	require.EqualValues(t, 100, c.getProduct(p.ID).StockQuantity)
}

func TestCreateSaleInsufficientStockRollsBack(t *testing.T) {
	c := newTestClient(t)
	p := c.createProduct("Matches", nil, 4, 2, 2)

	rec := c.doAuth(http.MethodPost, "/sales", map[string]any{
		"items":       []map[string]any{{"product_id": p.ID, "quantity": 5}},
		"amount_paid": 20.0,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "insufficient stock for product Matches", errorMessage(t, rec))

	require.Zero(t, c.tableCount("sale_transactions"))
	require.Zero(t, c.tableCount("sale_items"))
	require.EqualValues(t, 2, c.getProduct(p.ID).StockQuantity)
}

func TestCreateSaleFailsMidListWithoutPartialWrites(t *testing.T) {
	c := newTestClient(t)
	a := c.createProduct("Plenty", nil, 5, 3, 50)
	b := c.createProduct("Scarce", nil, 5, 3, 1)

	// Second line fails validation; the first line must not persist anything.
	_, code := c.createSale([]map[string]any{
		{"product_id": a.ID, "quantity": 10},
		{"product_id": b.ID, "quantity": 3},
	}, 100)
	require.Equal(t, http.StatusBadRequest, code)

	require.Zero(t, c.tableCount("sale_transactions"))
	require.Zero(t, c.tableCount("sale_items"))
	require.EqualValues(t, 50, c.getProduct(a.ID).StockQuantity)
	require.EqualValues(t, 1, c.getProduct(b.ID).StockQuantity)
}

func TestCreateSaleUnknownProduct(t *testing.T) {
	c := newTestClient(t)
	rec := c.doAuth(http.MethodPost, "/sales", map[string]any{
		"items":       []map[string]any{{"product_id": 31337, "quantity": 1}},
		"amount_paid": 10.0,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "product 31337 not found", errorMessage(t, rec))
}

func TestCreateSaleInputValidation(t *testing.T) {
	c := newTestClient(t)
	p := c.createProduct("Thing", nil, 10, 5, 10)

	rec := c.doAuth(http.MethodPost, "/sales", map[string]any{
		"items":       []map[string]any{},
		"amount_paid": 10.0,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.doAuth(http.MethodPost, "/sales", map[string]any{
		"items":       []map[string]any{{"product_id": p.ID, "quantity": 0}},
		"amount_paid": 10.0,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaleDetailsSnapshotPriceLiveName(t *testing.T) {
	c := newTestClient(t)
	p := c.createProduct("Original Name", nil, 10, 5, 10)

	sale, code := c.createSale([]map[string]any{
		{"product_id": p.ID, "quantity": 1},
	}, 10)
	require.Equal(t, http.StatusCreated, code)

	// Rename the product and raise its price after the sale.
	rec := c.doAuth(http.MethodPut, "/products/"+itoa(p.ID), map[string]any{
		"name":          "New Name",
		"selling_price": 99.99,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.doAuth(http.MethodGet, "/sales/"+itoa(sale.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var details saleDetailsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	require.Len(t, details.Items, 1)

	// unit_price is frozen at sale time; the name joins live.
	require.True(t, details.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")), details.Items[0].UnitPrice.String())
	require.Equal(t, "New Name", details.Items[0].ProductName)

	// Reads are idempotent.
	again := c.doAuth(http.MethodGet, "/sales/"+itoa(sale.ID), nil)
	require.Equal(t, rec.Body.String(), again.Body.String())
}

func TestSaleDetailsNotFound(t *testing.T) {
	c := newTestClient(t)
	rec := c.doAuth(http.MethodGet, "/sales/777", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "transaction 777 not found", errorMessage(t, rec))
}
