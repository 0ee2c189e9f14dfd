package handlers

import (
	"fmt"
	"net/http"

	"bitbucket.org/mmdatafocus/rosca_backend/models"
	"bitbucket.org/mmdatafocus/rosca_backend/models/reports"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
	"github.com/gin-gonic/gin"
)

// ExportCycleLedger streams a cycle's repayment ledger and fund summary as
// an xlsx download. Admin only.
func ExportCycleLedger(c *gin.Context) {
	role, _ := utils.GetRoleFromContext(c.Request.Context())
	if role != string(models.UserRoleAdmin) {
		respondError(c, "report.go", "ExportCycleLedger", utils.ErrorForbidden)
		return
	}

	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	f, err := reports.ExportCycleLedgerExcel(c.Request.Context(), id)
	if err != nil {
		respondError(c, "report.go", "ExportCycleLedger", err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=cycle-%d-ledger.xlsx", id))
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
