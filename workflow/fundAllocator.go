package workflow

import (
	"bitbucket.org/mmdatafocus/rosca_backend/config"
	"bitbucket.org/mmdatafocus/rosca_backend/models"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AllocationPercents configures how the interest pool is split into reserve
// categories.
type AllocationPercents struct {
	Reserve   decimal.Decimal
	Insurance decimal.Decimal
	AdminFee  decimal.Decimal
}

func DefaultAllocationPercents() AllocationPercents {
	return AllocationPercents{
		Reserve:   config.FundReservePercent(),
		Insurance: config.FundInsurancePercent(),
		AdminFee:  config.FundAdminFeePercent(),
	}
}

// FundAllocation is the absolute split of an interest pool value.
type FundAllocation struct {
	EmergencyReserve decimal.Decimal `json:"emergency_reserve"`
	InsuranceFund    decimal.Decimal `json:"insurance_fund"`
	AdminFee         decimal.Decimal `json:"admin_fee"`
	Distributable    decimal.Decimal `json:"distributable"`
}

// AllocateFund splits the cumulative interest pool into reserve categories.
// It always recomputes from the full pool value, never incrementally, so
// calling it twice with the same input yields identical output.
func AllocateFund(interestPool decimal.Decimal, pct AllocationPercents) FundAllocation {
	reserve := utils.ApplyPercent(interestPool, pct.Reserve)
	insurance := utils.ApplyPercent(interestPool, pct.Insurance)
	adminFee := utils.ApplyPercent(interestPool, pct.AdminFee)
	return FundAllocation{
		EmergencyReserve: reserve,
		InsuranceFund:    insurance,
		AdminFee:         adminFee,
		Distributable:    interestPool.Sub(reserve).Sub(insurance).Sub(adminFee),
	}
}

// applyFundAllocation re-reads the fund inside the caller's transaction,
// recomputes the reserve split from the cumulative interest pool and stores
// the refreshed totals.
func applyFundAllocation(tx *gorm.DB, cycleId int, pct AllocationPercents) (*models.GroupFund, error) {
	var fund models.GroupFund
	if err := tx.Where("loan_cycle_id = ?", cycleId).Take(&fund).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	alloc := AllocateFund(fund.InterestPool, pct)
	fund.EmergencyReserve = alloc.EmergencyReserve
	fund.InsuranceFund = alloc.InsuranceFund
	fund.AdminFee = alloc.AdminFee
	fund.RecalculateTotal()

	err := tx.Model(&models.GroupFund{}).Where("id = ?", fund.ID).
		Updates(map[string]interface{}{
			"emergency_reserve": fund.EmergencyReserve,
			"insurance_fund":    fund.InsuranceFund,
			"admin_fee":         fund.AdminFee,
			"total_funds":       fund.TotalFunds,
		}).Error
	if err != nil {
		return nil, err
	}
	return &fund, nil
}
