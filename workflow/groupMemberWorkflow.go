package workflow

import (
	"context"

	"bitbucket.org/mmdatafocus/rosca_backend/config"
	"bitbucket.org/mmdatafocus/rosca_backend/models"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GroupMemberResult is a created membership plus any contributions
// retroactively recorded for the weeks before the member joined.
type GroupMemberResult struct {
	GroupMember       *models.GroupMember         `json:"group_member"`
	BackdatedPayments []*models.CollectionPayment `json:"backdated_payments"`
}

// AddGroupMember enrolls a member into a group. A member joining an active
// cycle at week N>1 owes the N-1 earlier weeks, so the enrollment transaction
// retroactively records a paid contribution for every week 1..N-1 that has no
// payment from this member yet, updating the week's collection total, the
// member's cumulative contribution and their savings ledger alongside.
// Without an active cycle there is no ledger to backfill into, so none of
// those rows are created. Partial backfill corrupts collection totals, so
// everything commits or nothing does.
func AddGroupMember(ctx context.Context, groupId int, input *models.NewGroupMember) (*GroupMemberResult, error) {
	logger := config.GetLogger()

	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if input.WeeklyAmount != nil && !input.WeeklyAmount.IsPositive() {
		return nil, utils.NewValidationError("weekly amount must be positive")
	}

	group, err := models.GetGroup(ctx, groupId)
	if err != nil {
		return nil, err
	}
	if _, err := models.GetMember(ctx, input.MemberId); err != nil {
		return nil, err
	}
	if existing, err := models.GetGroupMember(ctx, groupId, input.MemberId); err == nil && existing != nil {
		return nil, utils.NewConflictError("member is already in group")
	}

	result := &GroupMemberResult{}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		weeklyAmount, cycleId, err := resolveWeeklyAmount(tx, group.ID, input.WeeklyAmount)
		if err != nil {
			return err
		}

		gm := models.GroupMember{
			GroupId:      group.ID,
			MemberId:     input.MemberId,
			JoiningWeek:  input.JoiningWeek,
			JoiningDate:  input.JoiningDate,
			WeeklyAmount: weeklyAmount,
			IsActive:     utils.NewTrue(),
		}
		if err := tx.Create(&gm).Error; err != nil {
			return err
		}

		payments, err := backfillContributions(tx, cycleId, &gm)
		if err != nil {
			return err
		}

		result.GroupMember = &gm
		result.BackdatedPayments = payments
		return nil
	})
	if err != nil {
		config.LogError(logger, "groupMemberWorkflow.go", "AddGroupMember", "Transaction", input.MemberId, err)
		return nil, err
	}

	return result, nil
}

// resolveWeeklyAmount picks the member's weekly contribution and the cycle
// that backdated payments belong to. An explicit amount wins; otherwise the
// group's active cycle supplies it. A zero cycle id means no active cycle
// exists and suppresses the backfill entirely.
func resolveWeeklyAmount(tx *gorm.DB, groupId int, explicit *decimal.Decimal) (decimal.Decimal, int, error) {
	var cycle models.LoanCycle
	err := tx.Where("group_id = ? AND is_active = ?", groupId, true).
		Order("cycle_number DESC").
		Take(&cycle).Error
	if err != nil {
		if explicit == nil {
			return decimal.Zero, 0, utils.NewValidationError("weekly amount is required when the group has no active cycle")
		}
		return *explicit, 0, nil
	}
	if explicit != nil {
		return *explicit, cycle.ID, nil
	}
	return cycle.WeeklyAmount, cycle.ID, nil
}

// weeksOwedBefore lists the weeks a mid-cycle joiner owes contributions for.
// A zero cycle id means the group has no active cycle: every payment row
// must reference a real cycle, so nothing is owed.
func weeksOwedBefore(cycleId int, joiningWeek int) []int {
	if cycleId == 0 {
		return nil
	}
	weeks := make([]int, 0, joiningWeek-1)
	for week := 1; week < joiningWeek; week++ {
		weeks = append(weeks, week)
	}
	return weeks
}

// backfillContributions creates a paid collection payment for every owed week
// that lacks one, keeping the weekly collection totals and the savings ledger
// in step with the new rows.
func backfillContributions(tx *gorm.DB, cycleId int, gm *models.GroupMember) ([]*models.CollectionPayment, error) {

	owed := weeksOwedBefore(cycleId, gm.JoiningWeek)
	payments := make([]*models.CollectionPayment, 0, len(owed))

	for _, week := range owed {
		var count int64
		err := tx.Model(&models.CollectionPayment{}).
			Where("loan_cycle_id = ? AND week = ? AND member_id = ?", cycleId, week, gm.MemberId).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		if count > 0 {
			continue
		}

		payment := &models.CollectionPayment{
			LoanCycleId: cycleId,
			Week:        week,
			MemberId:    gm.MemberId,
			Amount:      gm.WeeklyAmount,
			Status:      models.CollectionPaymentStatusPaid,
			PaymentDate: gm.JoiningDate,
		}
		if err := tx.Create(payment).Error; err != nil {
			return nil, err
		}

		if err := bumpCollectionTotal(tx, cycleId, week, gm); err != nil {
			return nil, err
		}

		payments = append(payments, payment)
	}

	if len(payments) == 0 {
		return payments, nil
	}

	backfilled := gm.WeeklyAmount.Mul(decimal.NewFromInt(int64(len(payments))))

	err := tx.Model(&models.GroupMember{}).Where("id = ?", gm.ID).
		Update("total_contributed", gorm.Expr("total_contributed + ?", backfilled)).Error
	if err != nil {
		return nil, err
	}
	gm.TotalContributed = gm.TotalContributed.Add(backfilled)

	if err := creditSavings(tx, gm.MemberId, backfilled, gm.JoiningDate); err != nil {
		return nil, err
	}

	return payments, nil
}

// bumpCollectionTotal adds the member's weekly amount to the week's pooled
// total, creating the week's collection row on first contribution.
func bumpCollectionTotal(tx *gorm.DB, cycleId int, week int, gm *models.GroupMember) error {
	var collection models.Collection
	err := tx.Where(models.Collection{LoanCycleId: cycleId, Week: week}).
		Attrs(models.Collection{CollectionDate: gm.JoiningDate}).
		FirstOrCreate(&collection).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.Collection{}).Where("id = ?", collection.ID).
		Update("total_amount", gorm.Expr("total_amount + ?", gm.WeeklyAmount)).Error
}
