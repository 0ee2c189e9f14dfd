package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bitbucket.org/mmdatafocus/rosca_backend/config"
	"bitbucket.org/mmdatafocus/rosca_backend/models"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SplitProportional divides pool across weights so that each share is
// round2(pool * weight/totalWeight). When every weight is zero the pool is
// split equally instead; that branch is a normal outcome, not an error.
// Rounding drift is absorbed by the last positive-weight share so the shares
// always sum to the pool exactly.
func SplitProportional(pool decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(weights))
	if len(weights) == 0 || !pool.IsPositive() {
		return shares
	}

	total := decimal.Zero
	for _, w := range weights {
		total = total.Add(w)
	}

	if total.IsZero() {
		count := decimal.NewFromInt(int64(len(weights)))
		equal := utils.Round2(pool.Div(count))
		allocated := decimal.Zero
		for i := range shares {
			shares[i] = equal
			allocated = allocated.Add(equal)
		}
		shares[len(shares)-1] = shares[len(shares)-1].Add(pool.Sub(allocated))
		return shares
	}

	allocated := decimal.Zero
	lastPositive := -1
	for i, w := range weights {
		shares[i] = utils.Round2(pool.Mul(w).Div(total))
		allocated = allocated.Add(shares[i])
		if w.IsPositive() {
			lastPositive = i
		}
	}
	if lastPositive >= 0 {
		shares[lastPositive] = shares[lastPositive].Add(pool.Sub(allocated))
	}
	return shares
}

// distributeInterest pays out a completed loan's accumulated interest to the
// active members of the loan's group, weighted by cumulative contribution.
// Zero total contributions means there is nothing to apportion: no records
// are created and the call succeeds.
func distributeInterest(tx *gorm.DB, logger *logrus.Logger, loan *models.Loan, totalInterest decimal.Decimal, date time.Time) ([]*models.InterestDistribution, error) {

	if !totalInterest.IsPositive() || loan.GroupId == 0 {
		return nil, nil
	}

	var members []*models.GroupMember
	err := tx.Where("group_id = ? AND is_active = ?", loan.GroupId, true).
		Order("joining_week ASC, id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	totalContributed := decimal.Zero
	weights := make([]decimal.Decimal, len(members))
	for i, gm := range members {
		weights[i] = gm.TotalContributed
		totalContributed = totalContributed.Add(gm.TotalContributed)
	}
	if totalContributed.IsZero() {
		logger.WithFields(logrus.Fields{
			"loan_id":  loan.ID,
			"group_id": loan.GroupId,
		}).Warn("skipping interest distribution, group has no contributions")
		return nil, nil
	}

	shares := SplitProportional(totalInterest, weights)

	distributions := make([]*models.InterestDistribution, 0, len(members))
	for i, gm := range members {
		if shares[i].IsZero() {
			continue
		}
		record := &models.InterestDistribution{
			LoanId:           loan.ID,
			GroupMemberId:    gm.ID,
			Amount:           shares[i],
			DistributionDate: date,
		}
		if err := tx.Create(record).Error; err != nil {
			return nil, err
		}
		err := tx.Model(&models.GroupMember{}).Where("id = ?", gm.ID).
			Update("total_benefit_received", gorm.Expr("total_benefit_received + ?", shares[i])).Error
		if err != nil {
			return nil, err
		}
		distributions = append(distributions, record)
	}
	return distributions, nil
}

// redistributeSavings credits a completed loan's collected principal back to
// members as savings, weighted by each member's paid-in collection payments.
// The weights come from the loan's cycle when it has paid rows, otherwise
// from the whole membership's payment history.
func redistributeSavings(tx *gorm.DB, logger *logrus.Logger, loan *models.Loan, totalPrincipal decimal.Decimal, date time.Time) error {

	if !totalPrincipal.IsPositive() {
		return nil
	}

	totals, err := paidTotalsByMemberTx(tx, loan.LoanCycleId)
	if err != nil {
		return err
	}
	if len(totals) == 0 {
		totals, err = paidTotalsByMemberTx(tx, 0)
		if err != nil {
			return err
		}
	}
	if len(totals) == 0 {
		logger.WithFields(logrus.Fields{
			"loan_id":       loan.ID,
			"loan_cycle_id": loan.LoanCycleId,
		}).Warn("skipping savings redistribution, no paid collection payments found")
		return nil
	}

	memberIds := make([]int, 0, len(totals))
	for memberId := range totals {
		memberIds = append(memberIds, memberId)
	}
	sort.Ints(memberIds)

	weights := make([]decimal.Decimal, len(memberIds))
	for i, memberId := range memberIds {
		weights[i] = totals[memberId]
	}

	shares := SplitProportional(totalPrincipal, weights)

	for i, memberId := range memberIds {
		if shares[i].IsZero() {
			continue
		}
		if err := creditSavings(tx, memberId, shares[i], date); err != nil {
			return err
		}
	}
	return nil
}

// creditSavings adds an amount to a member's savings running total and
// appends the matching transaction row. Both writes ride the caller's
// transaction.
func creditSavings(tx *gorm.DB, memberId int, amount decimal.Decimal, date time.Time) error {
	var savings models.Savings
	err := tx.Where(models.Savings{MemberId: memberId}).FirstOrCreate(&savings).Error
	if err != nil {
		return err
	}

	newTotal := savings.Total.Add(amount)
	err = tx.Model(&models.Savings{}).Where("id = ?", savings.ID).
		Update("total", newTotal).Error
	if err != nil {
		return err
	}

	return tx.Create(&models.SavingsTransaction{
		SavingsId:       savings.ID,
		MemberId:        memberId,
		Amount:          amount,
		ResultingTotal:  newTotal,
		TransactionDate: date,
	}).Error
}

// paidTotalsByMemberTx mirrors models.PaidTotalsByMember but runs on the
// caller's transaction so redistribution reads its own cycle's writes.
func paidTotalsByMemberTx(tx *gorm.DB, cycleId int) (map[int]decimal.Decimal, error) {
	type row struct {
		MemberId int
		Total    decimal.Decimal
	}
	dbCtx := tx.Model(&models.CollectionPayment{}).
		Select("member_id, SUM(amount) AS total").
		Where("status = ?", models.CollectionPaymentStatusPaid)
	if cycleId > 0 {
		dbCtx = dbCtx.Where("loan_cycle_id = ?", cycleId)
	}
	var rows []row
	if err := dbCtx.Group("member_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	totals := make(map[int]decimal.Decimal, len(rows))
	for _, r := range rows {
		totals[r.MemberId] = r.Total
	}
	return totals, nil
}

// BenefitEstimate is the mid-cycle projection of one member's entitlement.
type BenefitEstimate struct {
	GroupId            int             `json:"group_id"`
	MemberId           int             `json:"member_id"`
	Week               int             `json:"week"`
	MemberContribution decimal.Decimal `json:"member_contribution"`
	TotalContributions decimal.Decimal `json:"total_contributions"`
	Pool               decimal.Decimal `json:"pool"`
	Benefit            decimal.Decimal `json:"benefit"`
	EqualSplit         bool            `json:"equal_split"`
}

// EstimateBenefit projects a member's share of the week's pool from the
// group's membership roster alone. A member who joined earlier has a longer
// contribution window and therefore a proportionally larger estimate. When
// nobody has contributed yet the pool splits equally across members active
// by that week.
func EstimateBenefit(members []*models.GroupMember, memberId int, week int) (*BenefitEstimate, error) {
	if week < 1 {
		return nil, utils.NewValidationError("week must be positive")
	}

	var target *models.GroupMember
	pool := decimal.Zero
	totalContributions := decimal.Zero
	activeByWeek := 0

	contributionAt := func(gm *models.GroupMember) decimal.Decimal {
		weeks := week - gm.JoiningWeek + 1
		if weeks < 0 {
			weeks = 0
		}
		return gm.WeeklyAmount.Mul(decimal.NewFromInt(int64(weeks)))
	}

	for _, gm := range members {
		if gm.MemberId == memberId {
			target = gm
		}
		if gm.JoiningWeek <= week {
			pool = pool.Add(gm.WeeklyAmount)
			activeByWeek++
		}
		totalContributions = totalContributions.Add(contributionAt(gm))
	}
	if target == nil {
		return nil, utils.ErrorRecordNotFound
	}

	memberContribution := contributionAt(target)

	estimate := &BenefitEstimate{
		GroupId:            target.GroupId,
		MemberId:           memberId,
		Week:               week,
		MemberContribution: utils.Round2(memberContribution),
		TotalContributions: utils.Round2(totalContributions),
		Pool:               utils.Round2(pool),
	}

	if totalContributions.IsZero() {
		estimate.EqualSplit = true
		if activeByWeek > 0 {
			estimate.Benefit = utils.Round2(pool.Div(decimal.NewFromInt(int64(activeByWeek))))
		}
		return estimate, nil
	}

	estimate.Benefit = utils.Round2(pool.Mul(memberContribution).Div(totalContributions))
	return estimate, nil
}

// CalculateBenefit computes the mid-cycle estimate for one member and caches
// it onto their membership record and Redis. The cached value is display
// state only; reads never depend on it.
func CalculateBenefit(ctx context.Context, groupId int, memberId int, week int) (*BenefitEstimate, error) {
	logger := config.GetLogger()

	if _, err := models.GetGroup(ctx, groupId); err != nil {
		return nil, err
	}
	members, err := models.GetActiveGroupMembers(ctx, groupId)
	if err != nil {
		return nil, err
	}

	estimate, err := EstimateBenefit(members, memberId, week)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND member_id = ? AND is_active = ?", groupId, memberId, true).
		Update("benefit_estimate", estimate.Benefit).Error
	if err != nil {
		config.LogError(logger, "distributionWorkflow.go", "CalculateBenefit", "UpdateEstimate", memberId, err)
		return nil, err
	}

	_ = config.SetRedisObject(benefitCacheKey(groupId, memberId, week), estimate, time.Hour)

	return estimate, nil
}

func benefitCacheKey(groupId, memberId, week int) string {
	return fmt.Sprintf("Benefit:%d:%d:%d", groupId, memberId, week)
}
