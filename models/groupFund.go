package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/rosca_backend/config"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
	"github.com/shopspring/decimal"
)

// GroupFund is the cycle-scoped pool bookkeeping record. The invariant
//
//	TotalFunds == InvestmentPool + InterestPool
//	              - EmergencyReserve - InsuranceFund - AdminFee
//
// must hold after every update.
type GroupFund struct {
	ID               int             `gorm:"primary_key" json:"id"`
	LoanCycleId      int             `gorm:"unique;not null" json:"loan_cycle_id"`
	InvestmentPool   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"investment_pool"`
	InterestPool     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"interest_pool"`
	EmergencyReserve decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"emergency_reserve"`
	InsuranceFund    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"insurance_fund"`
	AdminFee         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"admin_fee"`
	TotalFunds       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_funds"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// RecalculateTotal re-derives the cached TotalFunds from the pools.
func (f *GroupFund) RecalculateTotal() {
	f.TotalFunds = f.InvestmentPool.Add(f.InterestPool).
		Sub(f.EmergencyReserve).Sub(f.InsuranceFund).Sub(f.AdminFee)
}

func GetGroupFundByCycle(ctx context.Context, cycleId int) (*GroupFund, error) {
	db := config.GetDB()
	var fund GroupFund
	err := db.WithContext(ctx).Where("loan_cycle_id = ?", cycleId).Take(&fund).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &fund, nil
}
