package workflow

import (
	"errors"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/rosca_backend/models"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
)

var testPenaltyPct = dec("0.5")

func testLoan() *models.Loan {
	return &models.Loan{
		ID:          1,
		MemberId:    7,
		LoanCycleId: 1,
		Principal:   dec("1000"),
		Remaining:   dec("1000"),
		WeeklyRate:  dec("1"),
		TotalWeeks:  10,
		CurrentWeek: 0,
		Status:      models.LoanStatusActive,
		DisbursedAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}
}

func payAt(loan *models.Loan, days int) RepaymentRequest {
	return RepaymentRequest{
		PaymentDate:   loan.DisbursedAt.AddDate(0, 0, days),
		PaymentMethod: models.PaymentMethodCash,
	}
}

func TestComputeRepayment_FirstWeek(t *testing.T) {
	loan := testLoan()

	b, err := ComputeRepayment(loan, payAt(loan, 3), models.InterestPolicyDeclining, testPenaltyPct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !b.Principal.Equal(dec("100")) {
		t.Errorf("principal = %s, want 100", b.Principal)
	}
	if !b.Interest.Equal(dec("10")) {
		t.Errorf("interest = %s, want 10", b.Interest)
	}
	if !b.Penalty.IsZero() {
		t.Errorf("penalty = %s, want 0", b.Penalty)
	}
	if !b.Total.Equal(dec("110")) {
		t.Errorf("total = %s, want 110", b.Total)
	}
	if !b.NewBalance.Equal(dec("900")) {
		t.Errorf("new balance = %s, want 900", b.NewBalance)
	}
	if b.NewWeek != 1 {
		t.Errorf("new week = %d, want 1", b.NewWeek)
	}
	if b.MissedWeeks != 0 || b.IsLate || b.Completed {
		t.Errorf("missed=%d isLate=%v completed=%v, want 0/false/false", b.MissedWeeks, b.IsLate, b.Completed)
	}
}

func TestComputeRepayment_FinalWeekCompletes(t *testing.T) {
	loan := testLoan()
	loan.Remaining = dec("100")
	loan.CurrentWeek = 9

	b, err := ComputeRepayment(loan, payAt(loan, 9*7+3), models.InterestPolicyDeclining, testPenaltyPct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !b.Interest.Equal(dec("1")) {
		t.Errorf("interest = %s, want 1", b.Interest)
	}
	if !b.Total.Equal(dec("101")) {
		t.Errorf("total = %s, want 101", b.Total)
	}
	if !b.NewBalance.IsZero() {
		t.Errorf("new balance = %s, want 0", b.NewBalance)
	}
	if !b.Completed {
		t.Error("expected loan to complete")
	}
}

func TestComputeRepayment_MissedWeeksAccrueOnStaleBalance(t *testing.T) {
	loan := testLoan()
	loan.Remaining = dec("500")
	loan.CurrentWeek = 2

	// Payment lands in week 5, so weeks 3 and 4 were skipped.
	b, err := ComputeRepayment(loan, payAt(loan, 4*7+2), models.InterestPolicyDeclining, testPenaltyPct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.MissedWeeks != 2 {
		t.Fatalf("missed weeks = %d, want 2", b.MissedWeeks)
	}
	// Current week's interest (5) plus 5 per missed week on the unreduced
	// balance. The penalty is flat per missed week, never compounding.
	if !b.Interest.Equal(dec("15")) {
		t.Errorf("interest = %s, want 15", b.Interest)
	}
	if !b.Penalty.Equal(dec("5")) {
		t.Errorf("penalty = %s, want 5", b.Penalty)
	}
	if b.NewWeek != loan.CurrentWeek+3 {
		t.Errorf("new week = %d, want %d", b.NewWeek, loan.CurrentWeek+3)
	}
	if !b.IsLate {
		t.Error("expected late flag")
	}
}

func TestComputeRepayment_OverdueOverrideReplacesPenalty(t *testing.T) {
	loan := testLoan()
	loan.Remaining = dec("500")
	loan.CurrentWeek = 0

	overdue := 4
	req := payAt(loan, 3)
	req.OverdueWeeks = &overdue

	b, err := ComputeRepayment(loan, req, models.InterestPolicyDeclining, testPenaltyPct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No weeks were actually missed, but the override supplies 4.
	if b.MissedWeeks != 0 {
		t.Fatalf("missed weeks = %d, want 0", b.MissedWeeks)
	}
	if !b.Penalty.Equal(dec("10")) {
		t.Errorf("penalty = %s, want 10 (500 x 0.5%% x 4)", b.Penalty)
	}
}

func TestComputeRepayment_ZeroOverrideKeepsSimulatedPenalty(t *testing.T) {
	loan := testLoan()
	loan.Remaining = dec("500")
	loan.CurrentWeek = 2

	zero := 0
	req := payAt(loan, 4*7+2)
	req.OverdueWeeks = &zero

	b, err := ComputeRepayment(loan, req, models.InterestPolicyDeclining, testPenaltyPct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.Penalty.Equal(dec("5")) {
		t.Errorf("penalty = %s, want simulated 5", b.Penalty)
	}
}

func TestComputeRepayment_BalanceClampsAtZero(t *testing.T) {
	loan := testLoan()
	loan.Remaining = dec("50")
	loan.CurrentWeek = 9

	b, err := ComputeRepayment(loan, payAt(loan, 9*7+1), models.InterestPolicyDeclining, testPenaltyPct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.NewBalance.IsNegative() || !b.NewBalance.IsZero() {
		t.Errorf("new balance = %s, want clamped 0", b.NewBalance)
	}
	if !b.Completed {
		t.Error("expected loan to complete")
	}
}

func TestComputeRepayment_CompletedLoanIsConflict(t *testing.T) {
	loan := testLoan()
	loan.Status = models.LoanStatusCompleted

	_, err := ComputeRepayment(loan, payAt(loan, 3), models.InterestPolicyDeclining, testPenaltyPct)
	if !errors.Is(err, utils.ErrorConflict) {
		t.Fatalf("got %v, want conflict error", err)
	}
}

func TestComputeRepayment_PaymentBeforeDisbursalIsRejected(t *testing.T) {
	loan := testLoan()

	req := RepaymentRequest{PaymentDate: loan.DisbursedAt.AddDate(0, 0, -1)}
	_, err := ComputeRepayment(loan, req, models.InterestPolicyDeclining, testPenaltyPct)
	if !utils.IsValidationError(err) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestComputeRepayment_PrincipalOnlyVariant(t *testing.T) {
	loan := testLoan()
	loan.Principal = dec("600")
	loan.Remaining = dec("600")

	remaining := loan.Remaining
	for week := 0; week < 10; week++ {
		loan.Remaining = remaining
		loan.CurrentWeek = week

		b, err := ComputeRepayment(loan, payAt(loan, week*7+2), models.InterestPolicyNone, testPenaltyPct)
		if err != nil {
			t.Fatalf("week %d: unexpected error: %v", week+1, err)
		}
		if !b.Principal.Equal(dec("60")) || !b.Total.Equal(dec("60")) {
			t.Errorf("week %d: payment = %s/%s, want 60/60", week+1, b.Principal, b.Total)
		}
		if !b.Interest.IsZero() || !b.Penalty.IsZero() {
			t.Errorf("week %d: interest=%s penalty=%s, want zero", week+1, b.Interest, b.Penalty)
		}
		if b.NewWeek != week+1 {
			t.Errorf("week %d: new week = %d, want %d", week+1, b.NewWeek, week+1)
		}
		remaining = b.NewBalance
	}
	if !remaining.IsZero() {
		t.Errorf("remaining after 10 payments = %s, want 0", remaining)
	}
}

func TestComputeRepayment_PrincipalOnlyMissedWeeksDisplayOnly(t *testing.T) {
	loan := testLoan()
	loan.CurrentWeek = 1

	// Payment lands in week 5; the variant reports the gap but charges
	// nothing for it and the week counter does not jump.
	b, err := ComputeRepayment(loan, payAt(loan, 4*7+2), models.InterestPolicyNone, testPenaltyPct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.MissedWeeks != 3 {
		t.Errorf("missed weeks = %d, want 3", b.MissedWeeks)
	}
	if !b.Interest.IsZero() || !b.Penalty.IsZero() {
		t.Errorf("interest=%s penalty=%s, want zero", b.Interest, b.Penalty)
	}
	if b.NewWeek != 2 {
		t.Errorf("new week = %d, want 2", b.NewWeek)
	}
}
