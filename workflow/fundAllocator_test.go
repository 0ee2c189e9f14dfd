package workflow

import (
	"testing"

	"bitbucket.org/mmdatafocus/rosca_backend/models"
	"github.com/shopspring/decimal"
)

func testPercents() AllocationPercents {
	return AllocationPercents{
		Reserve:   dec("10"),
		Insurance: dec("5"),
		AdminFee:  dec("0.5"),
	}
}

func TestAllocateFund_DefaultSplit(t *testing.T) {
	alloc := AllocateFund(dec("1000"), testPercents())

	if !alloc.EmergencyReserve.Equal(dec("100")) {
		t.Errorf("reserve = %s, want 100", alloc.EmergencyReserve)
	}
	if !alloc.InsuranceFund.Equal(dec("50")) {
		t.Errorf("insurance = %s, want 50", alloc.InsuranceFund)
	}
	if !alloc.AdminFee.Equal(dec("5")) {
		t.Errorf("admin fee = %s, want 5", alloc.AdminFee)
	}
	if !alloc.Distributable.Equal(dec("845")) {
		t.Errorf("distributable = %s, want 845", alloc.Distributable)
	}
}

func TestAllocateFund_IsIdempotent(t *testing.T) {
	pool := dec("1234.56")
	first := AllocateFund(pool, testPercents())
	second := AllocateFund(pool, testPercents())

	if !first.EmergencyReserve.Equal(second.EmergencyReserve) ||
		!first.InsuranceFund.Equal(second.InsuranceFund) ||
		!first.AdminFee.Equal(second.AdminFee) ||
		!first.Distributable.Equal(second.Distributable) {
		t.Errorf("repeated allocation diverged: %+v vs %+v", first, second)
	}
}

func TestAllocateFund_ZeroPool(t *testing.T) {
	alloc := AllocateFund(decimal.Zero, testPercents())

	if !alloc.EmergencyReserve.IsZero() || !alloc.InsuranceFund.IsZero() ||
		!alloc.AdminFee.IsZero() || !alloc.Distributable.IsZero() {
		t.Errorf("zero pool produced nonzero allocation: %+v", alloc)
	}
}

func TestGroupFund_TotalInvariantAfterAllocation(t *testing.T) {
	fund := models.GroupFund{
		InvestmentPool: dec("5000"),
		InterestPool:   dec("1000"),
	}

	alloc := AllocateFund(fund.InterestPool, testPercents())
	fund.EmergencyReserve = alloc.EmergencyReserve
	fund.InsuranceFund = alloc.InsuranceFund
	fund.AdminFee = alloc.AdminFee
	fund.RecalculateTotal()

	want := fund.InvestmentPool.Add(fund.InterestPool).
		Sub(fund.EmergencyReserve).Sub(fund.InsuranceFund).Sub(fund.AdminFee)
	if !fund.TotalFunds.Equal(want) {
		t.Errorf("total funds = %s, want %s", fund.TotalFunds, want)
	}
	if !fund.TotalFunds.Equal(dec("5845")) {
		t.Errorf("total funds = %s, want 5845", fund.TotalFunds)
	}
}
