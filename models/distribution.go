package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/rosca_backend/config"
	"github.com/shopspring/decimal"
)

// InterestDistribution is one member's share of a completed loan's interest.
// Rows are created in a batch when the loan transitions to COMPLETED.
type InterestDistribution struct {
	ID               int             `gorm:"primary_key" json:"id"`
	LoanId           int             `gorm:"index;not null" json:"loan_id"`
	GroupMemberId    int             `gorm:"index;not null" json:"group_member_id"`
	Amount           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	DistributionDate time.Time       `gorm:"not null" json:"distribution_date"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func GetDistributionsForLoan(ctx context.Context, loanId int) ([]*InterestDistribution, error) {
	db := config.GetDB()
	var records []*InterestDistribution
	err := db.WithContext(ctx).
		Where("loan_id = ?", loanId).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
