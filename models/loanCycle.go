package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/rosca_backend/config"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
	"github.com/shopspring/decimal"
)

// LoanCycle is one rotation of the association: every member contributes
// WeeklyAmount each week and receives the pooled amount as a loan in their
// assigned week.
type LoanCycle struct {
	ID           int             `gorm:"primary_key" json:"id"`
	CycleNumber  int             `gorm:"unique;not null" json:"cycle_number" binding:"required"`
	GroupId      int             `gorm:"index;default:0" json:"group_id"`
	StartDate    time.Time       `gorm:"not null" json:"start_date" binding:"required"`
	TotalMembers int             `gorm:"not null" json:"total_members"`
	WeeklyAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"weekly_amount"`
	IsActive     *bool           `gorm:"not null" json:"is_active"`
	Sequences    []LoanSequence  `gorm:"foreignKey:LoanCycleId" json:"sequences"`
	Fund         *GroupFund      `gorm:"foreignKey:LoanCycleId" json:"fund"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// LoanSequence assigns one rotation week to one member. Week numbers within
// a cycle are unique and contiguous from 1.
type LoanSequence struct {
	ID          int             `gorm:"primary_key" json:"id"`
	LoanCycleId int             `gorm:"index:idx_sequence_cycle_week,unique;not null" json:"loan_cycle_id"`
	WeekNumber  int             `gorm:"index:idx_sequence_cycle_week,unique;not null" json:"week_number"`
	MemberId    int             `gorm:"index;not null" json:"member_id"`
	LoanAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"loan_amount"`
	Status      SequenceStatus  `gorm:"type:enum('PENDING', 'DISBURSED', 'COMPLETED');default:PENDING" json:"status"`
	DisbursedAt *time.Time      `json:"disbursed_at"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewLoanCycle struct {
	CycleNumber  int             `json:"cycle_number" binding:"required,min=1"`
	GroupId      int             `json:"group_id"`
	StartDate    time.Time       `json:"start_date" binding:"required"`
	WeeklyAmount decimal.Decimal `json:"weekly_amount" binding:"required"`
	MemberIds    []int           `json:"member_ids" binding:"required,min=1"`
}

func GetLoanCycle(ctx context.Context, id int) (*LoanCycle, error) {
	cycle, err := utils.FetchSingleModel[LoanCycle](ctx, id, "Sequences", "Fund")
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

func GetLoanSequence(ctx context.Context, id int) (*LoanSequence, error) {
	return utils.FetchSingleModel[LoanSequence](ctx, id)
}

func GetActiveLoanCycle(ctx context.Context) (*LoanCycle, error) {
	db := config.GetDB()
	var cycle LoanCycle
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("cycle_number DESC").
		Take(&cycle).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &cycle, nil
}
