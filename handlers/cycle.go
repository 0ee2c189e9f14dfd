package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/rosca_backend/models"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
	"bitbucket.org/mmdatafocus/rosca_backend/workflow"
	"github.com/gin-gonic/gin"
)

// CreateCycle builds a rotation cycle with its sequences and a fresh fund.
func CreateCycle(c *gin.Context) {
	var input models.NewLoanCycle
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}

	cycle, err := workflow.CreateLoanCycle(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "cycle.go", "CreateCycle", err)
		return
	}
	c.JSON(http.StatusCreated, cycle)
}

// GetActiveCycle returns the latest cycle still collecting contributions.
func GetActiveCycle(c *gin.Context) {
	cycle, err := models.GetActiveLoanCycle(c.Request.Context())
	if err != nil {
		respondError(c, "cycle.go", "GetActiveCycle", err)
		return
	}
	c.JSON(http.StatusOK, cycle)
}

// GetCycleContributions returns each member's paid-in total for a cycle, the
// same weights savings redistribution uses.
func GetCycleContributions(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	if err := utils.ValidateResourceId[models.LoanCycle](c.Request.Context(), id); err != nil {
		respondError(c, "cycle.go", "GetCycleContributions", err)
		return
	}
	totals, err := models.PaidTotalsByMember(c.Request.Context(), id)
	if err != nil {
		respondError(c, "cycle.go", "GetCycleContributions", err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// GetCycle returns a cycle with its sequences and fund.
func GetCycle(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	cycle, err := models.GetLoanCycle(c.Request.Context(), id)
	if err != nil {
		respondError(c, "cycle.go", "GetCycle", err)
		return
	}
	c.JSON(http.StatusOK, cycle)
}

// DisburseSequence transitions a rotation week's sequence to DISBURSED and
// opens the loan.
func DisburseSequence(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	var input workflow.NewDisbursement
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}

	loan, err := workflow.DisburseLoan(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "cycle.go", "DisburseSequence", err)
		return
	}
	c.JSON(http.StatusCreated, loan)
}
