package reports

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/rosca_backend/config"
	"bitbucket.org/mmdatafocus/rosca_backend/models"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// CycleLedgerRow is one repayment event joined with its loan and member, the
// flat shape exported to the spreadsheet.
type CycleLedgerRow struct {
	WeekNumber       int
	MemberName       string
	TransactionDate  string
	PrincipalAmount  decimal.Decimal
	InterestAmount   decimal.Decimal
	PenaltyAmount    decimal.Decimal
	RemainingBalance decimal.Decimal
	PaymentMethod    string
}

func getCycleLedgerRows(ctx context.Context, cycleId int) ([]*CycleLedgerRow, error) {

	sql := `
SELECT
    lt.week_number,
    members.name AS member_name,
    DATE_FORMAT(lt.transaction_date, '%Y-%m-%d') AS transaction_date,
    lt.principal_amount,
    lt.interest_amount,
    lt.penalty_amount,
    lt.remaining_balance,
    lt.payment_method
FROM
    loan_transactions lt
    JOIN loans ON loans.id = lt.loan_id
    LEFT JOIN members ON members.id = loans.member_id
WHERE
    loans.loan_cycle_id = ?
ORDER BY
    lt.transaction_date ASC, lt.id ASC;
`

	var rows []*CycleLedgerRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, cycleId).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ExportCycleLedgerExcel renders the full repayment ledger of a cycle plus
// its fund summary as a spreadsheet.
func ExportCycleLedgerExcel(ctx context.Context, cycleId int) (*excelize.File, error) {

	fund, err := models.GetGroupFundByCycle(ctx, cycleId)
	if err != nil {
		return nil, err
	}
	rows, err := getCycleLedgerRows(ctx, cycleId)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Sheet1"
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, err
	}

	// Add headers
	f.SetCellValue(sheet, "A1", "Week")
	f.SetCellValue(sheet, "B1", "Member")
	f.SetCellValue(sheet, "C1", "Date")
	f.SetCellValue(sheet, "D1", "Principal")
	f.SetCellValue(sheet, "E1", "Interest")
	f.SetCellValue(sheet, "F1", "Penalty")
	f.SetCellValue(sheet, "G1", "Remaining")
	f.SetCellValue(sheet, "H1", "Method")

	// Add data
	for i, r := range rows {
		rowNo := i + 2
		f.SetCellValue(sheet, "A"+fmt.Sprint(rowNo), r.WeekNumber)
		f.SetCellValue(sheet, "B"+fmt.Sprint(rowNo), r.MemberName)
		f.SetCellValue(sheet, "C"+fmt.Sprint(rowNo), r.TransactionDate)
		f.SetCellValue(sheet, "D"+fmt.Sprint(rowNo), r.PrincipalAmount.StringFixed(2))
		f.SetCellValue(sheet, "E"+fmt.Sprint(rowNo), r.InterestAmount.StringFixed(2))
		f.SetCellValue(sheet, "F"+fmt.Sprint(rowNo), r.PenaltyAmount.StringFixed(2))
		f.SetCellValue(sheet, "G"+fmt.Sprint(rowNo), r.RemainingBalance.StringFixed(2))
		f.SetCellValue(sheet, "H"+fmt.Sprint(rowNo), r.PaymentMethod)
	}

	// Fund summary below the ledger
	summaryRow := len(rows) + 4
	labels := []struct {
		name  string
		value decimal.Decimal
	}{
		{"Investment Pool", fund.InvestmentPool},
		{"Interest Pool", fund.InterestPool},
		{"Emergency Reserve", fund.EmergencyReserve},
		{"Insurance Fund", fund.InsuranceFund},
		{"Admin Fee", fund.AdminFee},
		{"Total Funds", fund.TotalFunds},
	}
	for i, l := range labels {
		f.SetCellValue(sheet, "A"+fmt.Sprint(summaryRow+i), l.name)
		f.SetCellValue(sheet, "B"+fmt.Sprint(summaryRow+i), utils.Round2(l.value).StringFixed(2))
	}

	return f, nil
}
