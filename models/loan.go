package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/rosca_backend/config"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Loan is a credit extended to a member for one rotation week. The loan row
// carries running totals; the append-only LoanTransaction log is the
// canonical audit trail.
type Loan struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	MemberId           int             `gorm:"index;not null" json:"member_id"`
	GroupId            int             `gorm:"index;default:0" json:"group_id"`
	LoanCycleId        int             `gorm:"index;not null" json:"loan_cycle_id"`
	LoanSequenceId     int             `gorm:"index;not null" json:"loan_sequence_id"`
	Principal          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"principal"`
	Remaining          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"remaining"`
	WeeklyRate         decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"weekly_rate"`
	TotalWeeks         int             `gorm:"not null" json:"total_weeks"`
	CurrentWeek        int             `gorm:"not null;default:0" json:"current_week"`
	TotalInterestPaid  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_interest_paid"`
	TotalPrincipalPaid decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_principal_paid"`
	LatePaymentPenalty decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"late_payment_penalty"`
	Status             LoanStatus      `gorm:"type:enum('ACTIVE', 'COMPLETED', 'DEFAULTED');default:ACTIVE" json:"status"`
	DisbursedAt        time.Time       `gorm:"not null" json:"disbursed_at"`
	CompletedAt        *time.Time      `json:"completed_at"`
	Guarantor1MemberId int             `gorm:"default:0" json:"guarantor1_member_id"`
	Guarantor2MemberId int             `gorm:"default:0" json:"guarantor2_member_id"`
	Transactions       []LoanTransaction `gorm:"foreignKey:LoanId" json:"transactions"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// LoanTransaction records one repayment event. Rows are append-only: never
// updated, never deleted.
type LoanTransaction struct {
	ID               int             `gorm:"primary_key" json:"id"`
	LoanId           int             `gorm:"index;not null" json:"loan_id"`
	TransactionDate  time.Time       `gorm:"not null" json:"transaction_date"`
	PrincipalAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"principal_amount"`
	InterestAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"interest_amount"`
	PenaltyAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"penalty_amount"`
	RemainingBalance decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"remaining_balance"`
	WeekNumber       int             `gorm:"not null" json:"week_number"`
	PaymentMethod    PaymentMethod   `gorm:"size:20" json:"payment_method"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func GetLoan(ctx context.Context, id int) (*Loan, error) {
	return utils.FetchSingleModel[Loan](ctx, id)
}

// GetLoanWithTransactions preloads the transaction history newest-first.
func GetLoanWithTransactions(ctx context.Context, id int) (*Loan, error) {
	db := config.GetDB()
	var loan Loan
	err := db.WithContext(ctx).
		Preload("Transactions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("loan_transactions.transaction_date DESC, loan_transactions.id DESC")
		}).
		First(&loan, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &loan, nil
}

func GetActiveLoanForMember(ctx context.Context, memberId int) (*Loan, error) {
	db := config.GetDB()
	var loan Loan
	err := db.WithContext(ctx).
		Where("member_id = ? AND status = ?", memberId, LoanStatusActive).
		Take(&loan).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &loan, nil
}
