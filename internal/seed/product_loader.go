package seed

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// LoadProducts ingests the CSV into the products table, ignoring rows whose
// barcode is already present. Expected columns:
// name,barcode,selling_price,cost_price,stock_quantity
func LoadProducts(db *sqlx.DB, csvPath string) {
	file, err := os.Open(csvPath)
	if err != nil {
		log.Printf("unable to load product catalog %s: %v", csvPath, err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Printf("unable to read product header: %v", err)
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Printf("unable to start catalog transaction: %v", err)
		return
	}
	stmt, err := tx.Preparex(`INSERT OR IGNORE INTO products (name, barcode, selling_price, cost_price, stock_quantity) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		log.Printf("unable to prepare product insert: %v", err)
		_ = tx.Rollback()
		return
	}
	defer stmt.Close()

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("unable to read product row: %v", err)
			continue
		}
		if len(record) < 5 {
			continue
		}
		name := strings.TrimSpace(record[0])
		barcode := strings.TrimSpace(record[1])
		if name == "" || barcode == "" {
			// Barcode is the dedupe key; rows without one cannot be
			// loaded idempotently.
			continue
		}
		sell, err := decimal.NewFromString(strings.TrimSpace(record[2]))
		if err != nil || !sell.IsPositive() {
			continue
		}
		cost, err := decimal.NewFromString(strings.TrimSpace(record[3]))
		if err != nil || !cost.IsPositive() {
			continue
		}
		stock, err := strconv.ParseInt(strings.TrimSpace(record[4]), 10, 64)
		if err != nil || stock < 0 {
			continue
		}

		if _, err := stmt.Exec(name, barcode, sell.Round(2), cost.Round(2), stock); err != nil {
			log.Printf("unable to insert product %s: %v", name, err)
		} else {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("unable to commit product seed: %v", err)
	} else {
		log.Printf("seeded product catalog with %d rows", rows)
	}
}
