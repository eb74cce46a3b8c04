package domain

import "github.com/shopspring/decimal"

func init() {
	// Money travels over the API as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID            int64           `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Barcode       *string         `db:"barcode" json:"barcode"`
	SellingPrice  decimal.Decimal `db:"selling_price" json:"selling_price"`
	CostPrice     decimal.Decimal `db:"cost_price" json:"cost_price"`
	StockQuantity int64           `db:"stock_quantity" json:"stock_quantity"`
	CreatedAt     string          `db:"created_at" json:"created_at"`
	UpdatedAt     string          `db:"updated_at" json:"updated_at"`
}
