package domain

type StoreSettings struct {
	ID        int64   `db:"id" json:"id"`
	StoreName string  `db:"store_name" json:"store_name"`
	Address   *string `db:"address" json:"address"`
	Phone     *string `db:"phone" json:"phone"`
	CreatedAt string  `db:"created_at" json:"created_at"`
	UpdatedAt string  `db:"updated_at" json:"updated_at"`
}
