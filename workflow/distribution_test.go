package workflow

import (
	"errors"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/rosca_backend/models"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
	"github.com/shopspring/decimal"
)

func TestSplitProportional_SumsToPool(t *testing.T) {
	cases := []struct {
		pool    string
		weights []string
	}{
		{"100", []string{"1", "1", "1"}},
		{"845", []string{"400", "200", "100"}},
		{"0.03", []string{"1", "2"}},
		{"999.99", []string{"7", "13", "21", "3"}},
	}

	for _, tc := range cases {
		weights := make([]decimal.Decimal, len(tc.weights))
		for i, w := range tc.weights {
			weights[i] = dec(w)
		}

		shares := SplitProportional(dec(tc.pool), weights)

		sum := decimal.Zero
		for _, s := range shares {
			sum = sum.Add(s)
		}
		if !sum.Equal(dec(tc.pool)) {
			t.Errorf("pool=%s weights=%v: shares sum to %s", tc.pool, tc.weights, sum)
		}
	}
}

func TestSplitProportional_ZeroWeightsFallsBackToEqualSplit(t *testing.T) {
	shares := SplitProportional(dec("100"), []decimal.Decimal{decimal.Zero, decimal.Zero, decimal.Zero})

	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s)
	}
	if !sum.Equal(dec("100")) {
		t.Fatalf("shares sum to %s, want 100", sum)
	}
	if !shares[0].Equal(dec("33.33")) || !shares[1].Equal(dec("33.33")) {
		t.Errorf("equal split = %s/%s, want 33.33 each", shares[0], shares[1])
	}
	if !shares[2].Equal(dec("33.34")) {
		t.Errorf("last share = %s, want 33.34 (absorbs remainder)", shares[2])
	}
}

func TestSplitProportional_ZeroWeightMemberGetsNothing(t *testing.T) {
	shares := SplitProportional(dec("100"), []decimal.Decimal{decimal.Zero, dec("5")})

	if !shares[0].IsZero() {
		t.Errorf("zero-weight share = %s, want 0", shares[0])
	}
	if !shares[1].Equal(dec("100")) {
		t.Errorf("full-weight share = %s, want 100", shares[1])
	}
}

func TestSplitProportional_EmptyAndNonPositivePool(t *testing.T) {
	if shares := SplitProportional(dec("100"), nil); len(shares) != 0 {
		t.Errorf("empty weights produced %d shares", len(shares))
	}
	shares := SplitProportional(decimal.Zero, []decimal.Decimal{dec("1"), dec("2")})
	for i, s := range shares {
		if !s.IsZero() {
			t.Errorf("share %d = %s for zero pool, want 0", i, s)
		}
	}
}

func benefitMembers() []*models.GroupMember {
	joined := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	return []*models.GroupMember{
		{ID: 1, GroupId: 1, MemberId: 11, JoiningWeek: 1, JoiningDate: joined, WeeklyAmount: dec("100")},
		{ID: 2, GroupId: 1, MemberId: 12, JoiningWeek: 3, JoiningDate: joined, WeeklyAmount: dec("100")},
	}
}

func TestEstimateBenefit_EarlierJoinerEarnsMore(t *testing.T) {
	members := benefitMembers()

	early, err := EstimateBenefit(members, 11, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	late, err := EstimateBenefit(members, 12, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Week 4: contributions are 400 and 200, pool is 200.
	if !early.MemberContribution.Equal(dec("400")) {
		t.Errorf("early contribution = %s, want 400", early.MemberContribution)
	}
	if !late.MemberContribution.Equal(dec("200")) {
		t.Errorf("late contribution = %s, want 200", late.MemberContribution)
	}
	if !early.Pool.Equal(dec("200")) {
		t.Errorf("pool = %s, want 200", early.Pool)
	}
	if !early.Benefit.Equal(dec("133.33")) {
		t.Errorf("early benefit = %s, want 133.33", early.Benefit)
	}
	if !late.Benefit.Equal(dec("66.67")) {
		t.Errorf("late benefit = %s, want 66.67", late.Benefit)
	}
	if !early.Benefit.GreaterThan(late.Benefit) {
		t.Error("earlier joiner must receive the larger estimate")
	}
}

func TestEstimateBenefit_NotYetJoinedMemberExcludedFromPool(t *testing.T) {
	members := benefitMembers()

	est, err := EstimateBenefit(members, 11, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Week 2: only the first member is active, pool is their weekly amount.
	if !est.Pool.Equal(dec("100")) {
		t.Errorf("pool = %s, want 100", est.Pool)
	}
}

func TestEstimateBenefit_ZeroContributionsFallsBackToEqualSplit(t *testing.T) {
	joined := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	members := []*models.GroupMember{
		{ID: 1, GroupId: 1, MemberId: 11, JoiningWeek: 1, JoiningDate: joined, WeeklyAmount: decimal.Zero},
		{ID: 2, GroupId: 1, MemberId: 12, JoiningWeek: 1, JoiningDate: joined, WeeklyAmount: decimal.Zero},
	}

	est, err := EstimateBenefit(members, 11, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !est.EqualSplit {
		t.Error("expected equal-split fallback")
	}
	if !est.Benefit.IsZero() {
		t.Errorf("benefit = %s, want 0 for empty pool", est.Benefit)
	}
}

func TestEstimateBenefit_UnknownMember(t *testing.T) {
	_, err := EstimateBenefit(benefitMembers(), 99, 4)
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("got %v, want record not found", err)
	}
}

func TestEstimateBenefit_InvalidWeek(t *testing.T) {
	_, err := EstimateBenefit(benefitMembers(), 11, 0)
	if !utils.IsValidationError(err) {
		t.Fatalf("got %v, want validation error", err)
	}
}
