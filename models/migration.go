package models

import (
	"log"

	"bitbucket.org/australdata/gestion_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&TaxDocument{},
		&DteSyncRun{}, &DteSyncRunError{},
		&BankMovement{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
