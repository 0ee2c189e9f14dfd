package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want string }{
		{"10.005", "10.01"},
		{"10.004", "10"},
		{"33.333333", "33.33"},
		{"-1.005", "-1.01"},
		{"0", "0"},
	}
	for _, tc := range cases {
		got := Round2(dec(t, tc.in))
		if !got.Equal(dec(t, tc.want)) {
			t.Errorf("Round2(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestApplyPercent(t *testing.T) {
	cases := []struct{ amount, pct, want string }{
		{"1000", "1", "10"},
		{"500", "0.5", "2.5"},
		{"1000", "10", "100"},
		{"845", "0", "0"},
		{"33.33", "1", "0.33"},
	}
	for _, tc := range cases {
		got := ApplyPercent(dec(t, tc.amount), dec(t, tc.pct))
		if !got.Equal(dec(t, tc.want)) {
			t.Errorf("ApplyPercent(%s, %s) = %s, want %s", tc.amount, tc.pct, got, tc.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"aung@example.com", "ma.thida+rosca@mail.co"}
	invalid := []string{"", "not-an-email", "a@b", "@example.com"}

	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = false, want true", e)
		}
	}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = true, want false", e)
		}
	}
}

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]int{3, 1, 3, 2, 1})
	want := []int{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %d, want %d (order must be preserved)", i, got[i], want[i])
		}
	}
}
