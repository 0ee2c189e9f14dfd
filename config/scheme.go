package config

import (
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// Scheme variant selection. The ledger supports two mutually exclusive
// computation modes, chosen at deployment level (not per cycle):
//
//   - SCHEME_INTEREST_POLICY=DECLINING  interest-bearing declining-balance
//     loans with late penalties and interest distribution on completion
//   - SCHEME_INTEREST_POLICY=NONE       principal-only loans with savings
//     redistribution on completion
const (
	InterestPolicyDeclining = "DECLINING"
	InterestPolicyNone      = "NONE"
)

func SchemeInterestPolicy() string {
	v := strings.ToUpper(strings.TrimSpace(os.Getenv("SCHEME_INTEREST_POLICY")))
	if v == InterestPolicyNone {
		return InterestPolicyNone
	}
	return InterestPolicyDeclining
}

// Fund allocation percentages applied to the cumulative interest pool.
// Env overrides (optional):
// - FUND_RESERVE_PERCENT (default 10)
// - FUND_INSURANCE_PERCENT (default 5)
// - FUND_ADMIN_FEE_PERCENT (default 0.5)
func FundReservePercent() decimal.Decimal {
	return decimalFromEnv("FUND_RESERVE_PERCENT", "10")
}

func FundInsurancePercent() decimal.Decimal {
	return decimalFromEnv("FUND_INSURANCE_PERCENT", "5")
}

func FundAdminFeePercent() decimal.Decimal {
	return decimalFromEnv("FUND_ADMIN_FEE_PERCENT", "0.5")
}

// LatePenaltyWeeklyPercent is the flat per-missed-week penalty applied on the
// outstanding balance (default 0.5%).
func LatePenaltyWeeklyPercent() decimal.Decimal {
	return decimalFromEnv("LATE_PENALTY_WEEKLY_PERCENT", "0.5")
}

// DefaultWeeklyRatePercent is the declining-balance interest rate used when a
// disbursement does not specify one (default 1% per week).
func DefaultWeeklyRatePercent() decimal.Decimal {
	return decimalFromEnv("DEFAULT_WEEKLY_RATE_PERCENT", "1")
}

func decimalFromEnv(key string, def string) decimal.Decimal {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		v = def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		d, _ = decimal.NewFromString(def)
	}
	return d
}
