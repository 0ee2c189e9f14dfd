package workflow

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/rosca_backend/config"
	"bitbucket.org/mmdatafocus/rosca_backend/models"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const daysPerWeek = 7

var hundred = decimal.NewFromInt(100)

// RepaymentRequest is one repayment event against a loan.
//
// OverdueWeeks is a manual override: nil means "not supplied" (the engine
// derives missed weeks from the payment date), while a non-nil positive
// value replaces the simulated penalty entirely. This is distinct from a
// zero value on purpose.
type RepaymentRequest struct {
	PaymentDate   time.Time
	IsLate        bool
	OverdueWeeks  *int
	PaymentMethod models.PaymentMethod
}

// RepaymentBreakdown is the computed split of one repayment.
type RepaymentBreakdown struct {
	Principal   decimal.Decimal `json:"principal"`
	Interest    decimal.Decimal `json:"interest"`
	Penalty     decimal.Decimal `json:"penalty"`
	Total       decimal.Decimal `json:"total"`
	NewBalance  decimal.Decimal `json:"new_balance"`
	NewWeek     int             `json:"new_week"`
	MissedWeeks int             `json:"missed_weeks"`
	IsLate      bool            `json:"is_late"`
	Completed   bool            `json:"completed"`
}

// RepaymentResult is the full outcome of a processed repayment.
type RepaymentResult struct {
	Breakdown     *RepaymentBreakdown            `json:"breakdown"`
	Loan          *models.Loan                   `json:"loan"`
	Transaction   *models.LoanTransaction        `json:"transaction"`
	Distributions []*models.InterestDistribution `json:"distributions,omitempty"`
}

// ComputeRepayment derives the principal/interest/penalty split for one
// repayment without touching any state. weeklyRate and penaltyPct are
// percentages (1.0 means 1%).
//
// Interest-bearing policy: principal amortizes straight-line
// (principal/totalWeeks every week), interest accrues on the balance before
// this payment, and every missed week accrues both interest and a flat
// penalty on the same unreduced balance. The week counter jumps forward by
// 1 + missed weeks to track elapsed time.
//
// Principal-only policy: missed weeks are still derived for display but
// produce no interest or penalty, and the week counter advances by exactly 1.
func ComputeRepayment(loan *models.Loan, req RepaymentRequest, policy models.InterestPolicy, penaltyPct decimal.Decimal) (*RepaymentBreakdown, error) {

	if loan.Status == models.LoanStatusCompleted {
		return nil, utils.NewConflictError("loan is already completed")
	}
	if loan.TotalWeeks <= 0 {
		return nil, utils.NewValidationError("loan total weeks must be positive")
	}
	if req.PaymentDate.Before(loan.DisbursedAt) {
		return nil, utils.NewValidationError("payment date is before disbursal")
	}

	elapsedDays := int(req.PaymentDate.Sub(loan.DisbursedAt).Hours() / 24)
	expectedWeek := elapsedDays/daysPerWeek + 1
	missedWeeks := expectedWeek - loan.CurrentWeek - 1
	if missedWeeks < 0 {
		missedWeeks = 0
	}

	weeklyPrincipal := utils.Round2(loan.Principal.Div(decimal.NewFromInt(int64(loan.TotalWeeks))))

	newBalance := loan.Remaining.Sub(weeklyPrincipal)
	completed := !newBalance.IsPositive()
	if newBalance.IsNegative() {
		newBalance = decimal.Zero
	}

	if policy == models.InterestPolicyNone {
		return &RepaymentBreakdown{
			Principal:   weeklyPrincipal,
			Interest:    decimal.Zero,
			Penalty:     decimal.Zero,
			Total:       weeklyPrincipal,
			NewBalance:  newBalance,
			NewWeek:     loan.CurrentWeek + 1,
			MissedWeeks: missedWeeks,
			IsLate:      missedWeeks > 0 || req.IsLate,
			Completed:   completed,
		}, nil
	}

	weeklyInterest := utils.ApplyPercent(loan.Remaining, loan.WeeklyRate)

	// Missed weeks are simulated as a fold over a balance that was never
	// reduced (no principal was paid for those weeks), so interest and
	// penalty both accrue on the same stale balance each missed week.
	accumulatedInterest := decimal.Zero
	accumulatedPenalty := decimal.Zero
	tempRemaining := loan.Remaining
	for i := 0; i < missedWeeks; i++ {
		accumulatedInterest = accumulatedInterest.Add(utils.ApplyPercent(tempRemaining, loan.WeeklyRate))
		accumulatedPenalty = accumulatedPenalty.Add(utils.ApplyPercent(tempRemaining, penaltyPct))
	}

	overdueWeeks := missedWeeks
	if req.OverdueWeeks != nil && *req.OverdueWeeks > 0 {
		overdueWeeks = *req.OverdueWeeks
	}
	latePenalty := accumulatedPenalty
	if overdueWeeks != missedWeeks {
		// Manual override replaces the simulated value entirely.
		latePenalty = utils.Round2(loan.Remaining.Mul(penaltyPct).Mul(decimal.NewFromInt(int64(overdueWeeks))).Div(hundred))
	}

	interest := weeklyInterest.Add(accumulatedInterest)

	return &RepaymentBreakdown{
		Principal:   weeklyPrincipal,
		Interest:    interest,
		Penalty:     latePenalty,
		Total:       weeklyPrincipal.Add(interest).Add(latePenalty),
		NewBalance:  newBalance,
		NewWeek:     loan.CurrentWeek + 1 + missedWeeks,
		MissedWeeks: missedWeeks,
		IsLate:      missedWeeks > 0 || req.IsLate,
		Completed:   completed,
	}, nil
}

// ProcessRepayment applies one repayment to a loan: it persists the loan
// mutation, appends the transaction record, routes interest and penalty into
// the cycle's fund, re-runs the allocator, and on completion distributes the
// accumulated interest (or redistributes principal as savings under the
// principal-only policy). All effects land in a single DB transaction
// serialized by the cycle posting lock.
func ProcessRepayment(ctx context.Context, loanId int, req RepaymentRequest) (*RepaymentResult, error) {

	ctx, span := startSpan(ctx, "workflow.ProcessRepayment")
	defer span.End()

	logger := config.GetLogger()
	policy := models.ActiveInterestPolicy()
	penaltyPct := config.LatePenaltyWeeklyPercent()

	if err := req.PaymentMethod.Validate(); err != nil {
		return nil, utils.NewValidationError(err.Error())
	}
	if req.PaymentDate.IsZero() {
		return nil, utils.NewValidationError("payment date is required")
	}
	if req.OverdueWeeks != nil && *req.OverdueWeeks < 0 {
		return nil, utils.NewValidationError("overdue weeks cannot be negative")
	}

	loan, err := models.GetLoan(ctx, loanId)
	if err != nil {
		return nil, err
	}
	if err := authorizeLoanAccess(ctx, loan); err != nil {
		return nil, err
	}

	// Best-effort front gate. Reliability must not depend on Redis: the
	// MySQL advisory lock inside the transaction is the authoritative
	// serializer.
	if locker := config.GetRedisLock(); locker != nil {
		if lock, lockErr := locker.Obtain(ctx, repaymentLockKey(loanId), 30*time.Second, nil); lockErr == nil {
			defer lock.Release(context.Background())
		}
	}

	var result *RepaymentResult

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := AcquireCyclePostingLock(tx, loan.LoanCycleId); err != nil {
			return err
		}
		defer ReleaseCyclePostingLock(tx, loan.LoanCycleId)

		// Re-read under lock so two concurrent repayments can never both
		// observe the same pre-payment balance.
		var locked models.Loan
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&locked, loanId).Error; err != nil {
			return utils.ErrorRecordNotFound
		}

		breakdown, err := ComputeRepayment(&locked, req, policy, penaltyPct)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"remaining":            breakdown.NewBalance,
			"current_week":         breakdown.NewWeek,
			"total_interest_paid":  locked.TotalInterestPaid.Add(breakdown.Interest),
			"total_principal_paid": locked.TotalPrincipalPaid.Add(breakdown.Principal),
			"late_payment_penalty": locked.LatePaymentPenalty.Add(breakdown.Penalty),
		}
		if breakdown.Completed {
			updates["status"] = models.LoanStatusCompleted
			updates["completed_at"] = req.PaymentDate
		}
		if err := tx.Model(&models.Loan{}).Where("id = ?", locked.ID).Updates(updates).Error; err != nil {
			return err
		}

		transaction := models.LoanTransaction{
			LoanId:           locked.ID,
			TransactionDate:  req.PaymentDate,
			PrincipalAmount:  breakdown.Principal,
			InterestAmount:   breakdown.Interest,
			PenaltyAmount:    breakdown.Penalty,
			RemainingBalance: breakdown.NewBalance,
			WeekNumber:       breakdown.NewWeek,
			PaymentMethod:    req.PaymentMethod,
		}
		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}

		var distributions []*models.InterestDistribution

		if policy == models.InterestPolicyDeclining {
			// Interest and penalty income feed the cycle's interest pool;
			// increments are applied at the store level to avoid lost
			// updates across concurrent repayments in the same cycle.
			income := breakdown.Interest.Add(breakdown.Penalty)
			if err := tx.Model(&models.GroupFund{}).
				Where("loan_cycle_id = ?", locked.LoanCycleId).
				Update("interest_pool", gorm.Expr("interest_pool + ?", income)).Error; err != nil {
				return err
			}
			if _, err := applyFundAllocation(tx, locked.LoanCycleId, DefaultAllocationPercents()); err != nil {
				return err
			}

			if breakdown.Completed {
				totalInterest := locked.TotalInterestPaid.Add(breakdown.Interest)
				distributions, err = distributeInterest(tx, logger, &locked, totalInterest, req.PaymentDate)
				if err != nil {
					return err
				}
			}
		} else {
			// Principal-only variant: collected principal accrues in the
			// investment pool until completion, then the whole collected
			// amount is redistributed as member savings and the pools zeroed.
			if !breakdown.Completed {
				if err := tx.Model(&models.GroupFund{}).
					Where("loan_cycle_id = ?", locked.LoanCycleId).
					Updates(map[string]interface{}{
						"investment_pool": gorm.Expr("investment_pool + ?", breakdown.Principal),
						"total_funds":     gorm.Expr("total_funds + ?", breakdown.Principal),
					}).Error; err != nil {
					return err
				}
			} else {
				totalPrincipal := locked.TotalPrincipalPaid.Add(breakdown.Principal)
				if err := redistributeSavings(tx, logger, &locked, totalPrincipal, req.PaymentDate); err != nil {
					return err
				}
				if err := tx.Model(&models.GroupFund{}).
					Where("loan_cycle_id = ?", locked.LoanCycleId).
					Updates(map[string]interface{}{
						"investment_pool": decimal.Zero,
						"total_funds":     decimal.Zero,
					}).Error; err != nil {
					return err
				}
			}
		}

		if breakdown.Completed {
			if err := tx.Model(&models.LoanSequence{}).
				Where("id = ?", locked.LoanSequenceId).
				Update("status", models.SequenceStatusCompleted).Error; err != nil {
				return err
			}
		}

		var updated models.Loan
		if err := tx.First(&updated, locked.ID).Error; err != nil {
			return err
		}

		result = &RepaymentResult{
			Breakdown:     breakdown,
			Loan:          &updated,
			Transaction:   &transaction,
			Distributions: distributions,
		}
		return nil
	})
	if err != nil {
		config.LogError(logger, "repaymentWorkflow.go", "ProcessRepayment", "Transaction", loanId, err)
		return nil, err
	}

	return result, nil
}

func repaymentLockKey(loanId int) string {
	return fmt.Sprintf("rosca:repay:%d", loanId)
}

// authorizeLoanAccess allows admins to act on any loan and plain users only
// on loans linked to their own member identity.
func authorizeLoanAccess(ctx context.Context, loan *models.Loan) error {
	role, ok := utils.GetRoleFromContext(ctx)
	if !ok || role == "" {
		return utils.ErrorUnauthorized
	}
	if role == string(models.UserRoleAdmin) {
		return nil
	}
	memberId, ok := utils.GetMemberIdFromContext(ctx)
	if !ok || memberId == 0 || memberId != loan.MemberId {
		return utils.ErrorForbidden
	}
	return nil
}
