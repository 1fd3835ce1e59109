package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// Payment is one checkout session at the gateway, keyed by the merchant order id.
type Payment struct {
	OrderID   string
	PayeeID   uint64
	PayerID   uint64
	ModuleID  uint64
	Amount    decimal.Decimal
	Currency  string
	Status    PaymentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PayoutPolicy decides what part of a successful payment reaches the tutor wallet.
type PayoutPolicy string

const (
	// PayoutPolicyNet withholds the platform fee at credit time.
	PayoutPolicyNet   PayoutPolicy = "NET"
	// PayoutPolicyGross credits the full amount; the fee is only reported.
	PayoutPolicyGross PayoutPolicy = "GROSS"
)

func (p PayoutPolicy) Valid() bool {
	return p == PayoutPolicyNet || p == PayoutPolicyGross
}

// Module is the read-only view of a tutor's teaching module used to resolve the payee.
type Module struct {
	ID      uint64
	TutorID uint64
	Title   string
}

// Checkout holds the fields posted to the gateway's hosted checkout page.
type Checkout struct {
	CheckoutURL string
	MerchantID  string
	OrderID     string
	Items       string
	Amount      string
	Currency    string
	Hash        string
	ReturnURL   string
	CancelURL   string
	NotifyURL   string
}

// Revenue is the platform share of all successful payments.
type Revenue struct {
	GrossSuccess decimal.Decimal
	FeePercent   decimal.Decimal
	Revenue      decimal.Decimal
}
