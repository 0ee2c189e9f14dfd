package workflow

import (
	"testing"

	"bitbucket.org/mmdatafocus/rosca_backend/models"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
	"github.com/shopspring/decimal"
)

// NOTE: These tests are intentionally DB-free. They validate the pure
// amortization math; posting paths that need MySQL belong in an integration
// environment.

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func weeklyPrincipalOf(principal decimal.Decimal, weeks int) decimal.Decimal {
	return utils.Round2(principal.Div(decimal.NewFromInt(int64(weeks))))
}

func TestGenerateSchedule_PrincipalSumsToLoan(t *testing.T) {
	cases := []struct {
		principal string
		weeks     int
		rate      string
	}{
		{"1000", 10, "1"},
		{"600", 10, "0"},
		{"100", 3, "1.5"},
		{"999.99", 7, "2"},
	}

	for _, tc := range cases {
		principal := dec(tc.principal)
		rows := GenerateSchedule(principal, weeklyPrincipalOf(principal, tc.weeks), dec(tc.rate), tc.weeks, models.InterestPolicyDeclining)

		if len(rows) != tc.weeks {
			t.Fatalf("principal=%s: got %d rows, want %d", tc.principal, len(rows), tc.weeks)
		}

		sum := decimal.Zero
		for _, r := range rows {
			sum = sum.Add(r.PrincipalPayment)
		}
		diff := principal.Sub(sum).Abs()
		if diff.GreaterThan(dec("0.01")) {
			t.Errorf("principal=%s weeks=%d: principal sum %s differs from loan by %s", tc.principal, tc.weeks, sum, diff)
		}

		final := rows[len(rows)-1].BalanceAfter
		if final.GreaterThan(dec("0.01")) {
			t.Errorf("principal=%s weeks=%d: final balance %s not retired", tc.principal, tc.weeks, final)
		}
	}
}

func TestGenerateSchedule_DecliningInterestIsMonotonic(t *testing.T) {
	principal := dec("1000")
	rows := GenerateSchedule(principal, weeklyPrincipalOf(principal, 10), dec("1"), 10, models.InterestPolicyDeclining)

	for i := 1; i < len(rows); i++ {
		if rows[i].InterestPayment.GreaterThan(rows[i-1].InterestPayment) {
			t.Errorf("week %d interest %s exceeds week %d interest %s",
				rows[i].Week, rows[i].InterestPayment, rows[i-1].Week, rows[i-1].InterestPayment)
		}
	}

	if !rows[0].InterestPayment.Equal(dec("10")) {
		t.Errorf("week 1 interest = %s, want 10", rows[0].InterestPayment)
	}
	if !rows[9].InterestPayment.Equal(dec("1")) {
		t.Errorf("week 10 interest = %s, want 1", rows[9].InterestPayment)
	}
}

func TestGenerateSchedule_PrincipalOnlyPolicy(t *testing.T) {
	principal := dec("600")
	rows := GenerateSchedule(principal, weeklyPrincipalOf(principal, 10), dec("1"), 10, models.InterestPolicyNone)

	for _, r := range rows {
		if !r.InterestPayment.IsZero() {
			t.Errorf("week %d interest = %s, want 0", r.Week, r.InterestPayment)
		}
		if !r.PrincipalPayment.Equal(dec("60")) {
			t.Errorf("week %d principal = %s, want 60", r.Week, r.PrincipalPayment)
		}
		if !r.TotalPayment.Equal(dec("60")) {
			t.Errorf("week %d total = %s, want 60", r.Week, r.TotalPayment)
		}
	}
	if !rows[9].BalanceAfter.IsZero() {
		t.Errorf("final balance = %s, want 0", rows[9].BalanceAfter)
	}
}

func TestGenerateSchedule_LastPaymentClampsToBalance(t *testing.T) {
	// 100 over 3 weeks rounds the weekly principal to 33.33; no week may
	// push the balance negative.
	principal := dec("100")
	rows := GenerateSchedule(principal, weeklyPrincipalOf(principal, 3), dec("1"), 3, models.InterestPolicyDeclining)

	for _, r := range rows {
		if r.BalanceAfter.IsNegative() {
			t.Errorf("week %d balance went negative: %s", r.Week, r.BalanceAfter)
		}
		if r.PrincipalPayment.GreaterThan(r.BalanceBefore) {
			t.Errorf("week %d principal %s exceeds balance %s", r.Week, r.PrincipalPayment, r.BalanceBefore)
		}
	}
}
