package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"storepos/m/domain"
)

func TestAdjustStockUpAndDown(t *testing.T) {
	c := newTestClient(t)
	p := c.createProduct("Widget", nil, 10, 5, 50)

	rec := c.doAuth(http.MethodPost, "/products/"+itoa(p.ID)+"/stock", map[string]any{
		"adjustment": 25,
		"reason":     "delivery received",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.EqualValues(t, 75, updated.StockQuantity)

	rec = c.doAuth(http.MethodPost, "/products/"+itoa(p.ID)+"/stock", map[string]any{
		"adjustment": -5,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.EqualValues(t, 70, updated.StockQuantity)
}

func TestAdjustStockToExactlyZeroThenFail(t *testing.T) {
	c := newTestClient(t)
	p := c.createProduct("Drainable", nil, 10, 5, 7)

	// Draining to exactly zero succeeds.
	rec := c.doAuth(http.MethodPost, "/products/"+itoa(p.ID)+"/stock", map[string]any{
		"adjustment": -7,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.EqualValues(t, 0, updated.StockQuantity)

	// One more unit below zero is rejected and leaves stock untouched.
	rec = c.doAuth(http.MethodPost, "/products/"+itoa(p.ID)+"/stock", map[string]any{
		"adjustment": -1,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "stock adjustment would result in negative quantity", errorMessage(t, rec))

	require.EqualValues(t, 0, c.getProduct(p.ID).StockQuantity)
}

func TestAdjustStockUnknownProduct(t *testing.T) {
	c := newTestClient(t)
	rec := c.doAuth(http.MethodPost, "/products/424242/stock", map[string]any{
		"adjustment": 1,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "product 424242 not found", errorMessage(t, rec))
}
