package models

import (
	"log"

	"bitbucket.org/mmdatafocus/rosca_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Member{}, &Group{}, &GroupMember{},
		&Collection{}, &CollectionPayment{},
		&LoanCycle{}, &LoanSequence{}, &GroupFund{},
		&Loan{}, &LoanTransaction{},
		&InterestDistribution{},
		&Savings{}, &SavingsTransaction{},
		&User{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
