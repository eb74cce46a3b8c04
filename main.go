package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"storepos/m/internal/api"
	"storepos/m/internal/config"
	"storepos/m/internal/database"
	"storepos/m/internal/migrations"
	"storepos/m/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	seed.LoadProducts(db, cfg.CatalogCSV)

	handler := api.New(db, cfg.Secret)

	log.Printf("StorePOS server starting on :%s", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
