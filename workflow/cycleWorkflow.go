package workflow

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/rosca_backend/config"
	"bitbucket.org/mmdatafocus/rosca_backend/models"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuildRotation assigns rotation weeks in member-list order: week i+1 goes to
// memberIds[i], and every sequence's loan amount is the full weekly pool
// (totalMembers x weeklyAmount).
func BuildRotation(memberIds []int, weeklyAmount decimal.Decimal) []models.LoanSequence {
	loanAmount := weeklyAmount.Mul(decimal.NewFromInt(int64(len(memberIds))))
	sequences := make([]models.LoanSequence, 0, len(memberIds))
	for i, memberId := range memberIds {
		sequences = append(sequences, models.LoanSequence{
			WeekNumber: i + 1,
			MemberId:   memberId,
			LoanAmount: loanAmount,
			Status:     models.SequenceStatusPending,
		})
	}
	return sequences
}

// CreateLoanCycle creates a rotation cycle with its week-per-member sequences
// and a fresh zeroed fund, all in one transaction. Only admins may create
// cycles.
func CreateLoanCycle(ctx context.Context, input *models.NewLoanCycle) (*models.LoanCycle, error) {
	logger := config.GetLogger()

	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if !input.WeeklyAmount.IsPositive() {
		return nil, utils.NewValidationError("weekly amount must be positive")
	}
	if len(input.MemberIds) != len(utils.UniqueSlice(input.MemberIds)) {
		return nil, utils.NewValidationError("member ids must be unique")
	}
	if err := utils.ValidateUnique[models.LoanCycle](ctx, "cycle_number", input.CycleNumber, 0); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourcesId[models.Member](ctx, input.MemberIds); err != nil {
		return nil, err
	}
	if input.GroupId != 0 {
		if err := utils.ValidateResourceId[models.Group](ctx, input.GroupId); err != nil {
			return nil, err
		}
	}

	cycle := models.LoanCycle{
		CycleNumber:  input.CycleNumber,
		GroupId:      input.GroupId,
		StartDate:    input.StartDate,
		TotalMembers: len(input.MemberIds),
		WeeklyAmount: input.WeeklyAmount,
		IsActive:     utils.NewTrue(),
		Sequences:    BuildRotation(input.MemberIds, input.WeeklyAmount),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cycle).Error; err != nil {
			return err
		}
		fund := models.GroupFund{LoanCycleId: cycle.ID}
		if err := tx.Create(&fund).Error; err != nil {
			return err
		}
		cycle.Fund = &fund
		return nil
	})
	if err != nil {
		config.LogError(logger, "cycleWorkflow.go", "CreateLoanCycle", "Transaction", input.CycleNumber, err)
		return nil, err
	}

	return &cycle, nil
}

// NewDisbursement is the disburse-loan input. TotalWeeks defaults to the
// cycle's member count when omitted.
type NewDisbursement struct {
	DisbursedAt        time.Time        `json:"disbursed_at" binding:"required"`
	WeeklyRate         *decimal.Decimal `json:"weekly_rate"`
	TotalWeeks         int              `json:"total_weeks"`
	Guarantor1MemberId int              `json:"guarantor1_member_id"`
	Guarantor2MemberId int              `json:"guarantor2_member_id"`
}

// DisburseLoan hands the week's pooled amount to the sequence's member:
// sequence PENDING -> DISBURSED, a Loan row is opened for the full sequence
// amount, and the cycle's investment pool is debited. The whole transition
// runs under the cycle posting lock.
func DisburseLoan(ctx context.Context, sequenceId int, input *NewDisbursement) (*models.Loan, error) {
	ctx, span := startSpan(ctx, "workflow.DisburseLoan")
	defer span.End()

	logger := config.GetLogger()

	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if input.TotalWeeks < 0 {
		return nil, utils.NewValidationError("total weeks cannot be negative")
	}
	if input.WeeklyRate != nil && input.WeeklyRate.IsNegative() {
		return nil, utils.NewValidationError("weekly rate cannot be negative")
	}

	sequence, err := models.GetLoanSequence(ctx, sequenceId)
	if err != nil {
		return nil, err
	}
	// One active loan per member: the rotation hands each member the pool
	// once, so a second disbursement before payoff is a posting mistake.
	if existing, err := models.GetActiveLoanForMember(ctx, sequence.MemberId); err == nil && existing != nil {
		return nil, utils.NewConflictError("member already has an active loan")
	}

	var loan models.Loan

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := AcquireCyclePostingLock(tx, sequence.LoanCycleId); err != nil {
			return err
		}
		defer ReleaseCyclePostingLock(tx, sequence.LoanCycleId)

		var locked models.LoanSequence
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&locked, sequenceId).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		if locked.Status != models.SequenceStatusPending {
			return utils.NewConflictError("sequence is already disbursed")
		}

		var cycle models.LoanCycle
		if err := tx.First(&cycle, locked.LoanCycleId).Error; err != nil {
			return utils.ErrorRecordNotFound
		}

		totalWeeks := input.TotalWeeks
		if totalWeeks == 0 {
			totalWeeks = cycle.TotalMembers
		}
		weeklyRate := decimal.Zero
		if models.ActiveInterestPolicy() == models.InterestPolicyDeclining {
			weeklyRate = config.DefaultWeeklyRatePercent()
			if input.WeeklyRate != nil {
				weeklyRate = *input.WeeklyRate
			}
		}

		err := tx.Model(&models.LoanSequence{}).Where("id = ?", locked.ID).
			Updates(map[string]interface{}{
				"status":       models.SequenceStatusDisbursed,
				"disbursed_at": input.DisbursedAt,
			}).Error
		if err != nil {
			return err
		}

		loan = models.Loan{
			MemberId:           locked.MemberId,
			GroupId:            cycle.GroupId,
			LoanCycleId:        cycle.ID,
			LoanSequenceId:     locked.ID,
			Principal:          locked.LoanAmount,
			Remaining:          locked.LoanAmount,
			WeeklyRate:         weeklyRate,
			TotalWeeks:         totalWeeks,
			CurrentWeek:        0,
			Status:             models.LoanStatusActive,
			DisbursedAt:        input.DisbursedAt,
			Guarantor1MemberId: input.Guarantor1MemberId,
			Guarantor2MemberId: input.Guarantor2MemberId,
		}
		if err := tx.Create(&loan).Error; err != nil {
			return err
		}

		// The disbursed amount leaves the investment pool; the decrement is
		// applied at the store level so concurrent postings in the same
		// cycle never lose an update.
		err = tx.Model(&models.GroupFund{}).
			Where("loan_cycle_id = ?", cycle.ID).
			Updates(map[string]interface{}{
				"investment_pool": gorm.Expr("investment_pool - ?", locked.LoanAmount),
				"total_funds":     gorm.Expr("total_funds - ?", locked.LoanAmount),
			}).Error
		if err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		config.LogError(logger, "cycleWorkflow.go", "DisburseLoan", "Transaction", sequenceId, err)
		return nil, err
	}

	return &loan, nil
}

// requireAdmin gates operations that mutate cycle-level state.
func requireAdmin(ctx context.Context) error {
	role, ok := utils.GetRoleFromContext(ctx)
	if !ok || role == "" {
		return utils.ErrorUnauthorized
	}
	if role != string(models.UserRoleAdmin) {
		return utils.ErrorForbidden
	}
	return nil
}
