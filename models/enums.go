package models

import (
	"errors"

	"bitbucket.org/mmdatafocus/rosca_backend/config"
)

type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusCompleted LoanStatus = "COMPLETED"
	LoanStatusDefaulted LoanStatus = "DEFAULTED"
)

type SequenceStatus string

const (
	SequenceStatusPending   SequenceStatus = "PENDING"
	SequenceStatusDisbursed SequenceStatus = "DISBURSED"
	SequenceStatusCompleted SequenceStatus = "COMPLETED"
)

type CollectionPaymentStatus string

const (
	CollectionPaymentStatusPaid    CollectionPaymentStatus = "PAID"
	CollectionPaymentStatusPending CollectionPaymentStatus = "PENDING"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "ADMIN"
	UserRoleUser  UserRole = "USER"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
)

func (m PaymentMethod) Validate() error {
	switch m {
	case "", PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodMobileMoney:
		return nil
	}
	return errors.New("invalid payment method")
}

// InterestPolicy selects the scheme variant: declining-balance interest with
// late penalties, or principal-only with savings redistribution.
type InterestPolicy string

const (
	InterestPolicyDeclining InterestPolicy = InterestPolicy(config.InterestPolicyDeclining)
	InterestPolicyNone      InterestPolicy = InterestPolicy(config.InterestPolicyNone)
)

// ActiveInterestPolicy returns the deployment-level scheme variant.
func ActiveInterestPolicy() InterestPolicy {
	return InterestPolicy(config.SchemeInterestPolicy())
}
