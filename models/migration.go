package models

import (
	"log"

	"github.com/tallersur/presupuestos_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Client{}, &Product{}, &CustomPrice{},
		&Quote{}, &QuoteItem{}, &Payment{},
		&User{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
