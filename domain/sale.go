package domain

import "github.com/shopspring/decimal"

type SaleTransaction struct {
	ID            int64           `db:"id" json:"id"`
	ReceiptNumber string          `db:"receipt_number" json:"receipt_number"`
	UserID        *int64          `db:"user_id" json:"user_id,omitempty"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	AmountPaid    decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	ChangeAmount  decimal.Decimal `db:"change_amount" json:"change_amount"`
	CreatedAt     string          `db:"created_at" json:"created_at"`
}

type SaleItem struct {
	ID            int64           `db:"id" json:"id"`
	TransactionID int64           `db:"transaction_id" json:"transaction_id"`
	ProductID     int64           `db:"product_id" json:"product_id"`
	Quantity      int64           `db:"quantity" json:"quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price" json:"unit_price"`
	Subtotal      decimal.Decimal `db:"subtotal" json:"subtotal"`
	CreatedAt     string          `db:"created_at" json:"created_at"`
}
