package handlers

import (
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/rosca_backend/models"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
	"bitbucket.org/mmdatafocus/rosca_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type repaymentInput struct {
	PaymentDate   time.Time            `json:"payment_date" binding:"required"`
	IsLate        bool                 `json:"is_late"`
	OverdueWeeks  *int                 `json:"overdue_weeks"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
}

// RepayLoan posts one repayment against a loan and returns the breakdown,
// the updated loan, the transaction record and any completion distributions.
func RepayLoan(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	var input repaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}

	result, err := workflow.ProcessRepayment(c.Request.Context(), id, workflow.RepaymentRequest{
		PaymentDate:   input.PaymentDate,
		IsLate:        input.IsLate,
		OverdueWeeks:  input.OverdueWeeks,
		PaymentMethod: input.PaymentMethod,
	})
	if err != nil {
		respondError(c, "loan.go", "RepayLoan", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetLoan returns a loan with its transaction history newest-first.
func GetLoan(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	loan, err := models.GetLoanWithTransactions(c.Request.Context(), id)
	if err != nil {
		respondError(c, "loan.go", "GetLoan", err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

// GetLoanDistributions returns the interest payouts recorded when the loan
// completed.
func GetLoanDistributions(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	if err := utils.ValidateResourceId[models.Loan](c.Request.Context(), id); err != nil {
		respondError(c, "loan.go", "GetLoanDistributions", err)
		return
	}
	records, err := models.GetDistributionsForLoan(c.Request.Context(), id)
	if err != nil {
		respondError(c, "loan.go", "GetLoanDistributions", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetLoanSchedule returns the projected amortization table for a loan.
func GetLoanSchedule(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	loan, err := models.GetLoan(c.Request.Context(), id)
	if err != nil {
		respondError(c, "loan.go", "GetLoanSchedule", err)
		return
	}

	if loan.TotalWeeks <= 0 {
		respondError(c, "loan.go", "GetLoanSchedule", utils.NewValidationError("loan has no repayment term"))
		return
	}
	weeklyPrincipal := utils.Round2(loan.Principal.Div(decimal.NewFromInt(int64(loan.TotalWeeks))))
	rows := workflow.GenerateSchedule(loan.Principal, weeklyPrincipal, loan.WeeklyRate, loan.TotalWeeks, models.ActiveInterestPolicy())

	c.JSON(http.StatusOK, gin.H{
		"loan_id":  loan.ID,
		"schedule": rows,
	})
}
