package models

import (
	"log"

	"bitbucket.org/gestionsur/gestion_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&BankMovement{}, &MovementMatch{},
		&Expense{}, &Invoice{}, &Payment{},
		&Supplier{}, &Customer{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
