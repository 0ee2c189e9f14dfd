package workflow

import (
	"bitbucket.org/mmdatafocus/rosca_backend/models"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
	"github.com/shopspring/decimal"
)

// ScheduleRow is one projected week of a loan's amortization table.
type ScheduleRow struct {
	Week             int             `json:"week"`
	BalanceBefore    decimal.Decimal `json:"balance_before"`
	PrincipalPayment decimal.Decimal `json:"principal_payment"`
	InterestPayment  decimal.Decimal `json:"interest_payment"`
	TotalPayment     decimal.Decimal `json:"total_payment"`
	BalanceAfter     decimal.Decimal `json:"balance_after"`
}

// GenerateSchedule produces the full week-by-week amortization table for a
// loan. weeklyRate is a percentage (1.0 means 1% per week).
//
// Under the DECLINING policy, interest for a week is computed on the balance
// before that week's payment, so interest strictly decreases until payoff.
// Under the NONE policy every row carries zero interest.
//
// Each row is rounded to 2 decimals as it is built, not at the end, so that
// the sum of rows reproduces exactly what a ledger built week-by-week would
// record. The schedule is a pure projection: the LoanTransaction log is the
// authoritative state, never this table.
func GenerateSchedule(principal, weeklyPrincipal, weeklyRate decimal.Decimal, totalWeeks int, policy models.InterestPolicy) []ScheduleRow {

	rows := make([]ScheduleRow, 0, totalWeeks)
	remaining := principal

	for week := 1; week <= totalWeeks; week++ {
		balanceBefore := remaining

		principalPayment := weeklyPrincipal
		if balanceBefore.LessThan(weeklyPrincipal) {
			principalPayment = balanceBefore
		}
		principalPayment = utils.Round2(principalPayment)

		interestPayment := decimal.Zero
		if policy == models.InterestPolicyDeclining {
			interestPayment = utils.ApplyPercent(balanceBefore, weeklyRate)
		}

		balanceAfter := utils.Round2(balanceBefore.Sub(principalPayment))
		if balanceAfter.IsNegative() {
			balanceAfter = decimal.Zero
		}

		rows = append(rows, ScheduleRow{
			Week:             week,
			BalanceBefore:    utils.Round2(balanceBefore),
			PrincipalPayment: principalPayment,
			InterestPayment:  interestPayment,
			TotalPayment:     utils.Round2(principalPayment.Add(interestPayment)),
			BalanceAfter:     balanceAfter,
		})

		remaining = balanceAfter
	}

	return rows
}
