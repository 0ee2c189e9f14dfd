package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Savings is a member's redistributed-principal balance, used by the
// no-interest scheme variant.
type Savings struct {
	ID        int             `gorm:"primary_key" json:"id"`
	MemberId  int             `gorm:"unique;not null" json:"member_id"`
	Total     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// SavingsTransaction mirrors LoanTransaction's append-only discipline for
// the savings ledger.
type SavingsTransaction struct {
	ID              int             `gorm:"primary_key" json:"id"`
	SavingsId       int             `gorm:"index;not null" json:"savings_id"`
	MemberId        int             `gorm:"index;not null" json:"member_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	ResultingTotal  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"resulting_total"`
	TransactionDate time.Time       `gorm:"not null" json:"transaction_date"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
