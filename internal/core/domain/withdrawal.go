package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "PENDING"
	WithdrawalStatusApproved WithdrawalStatus = "APPROVED"
	WithdrawalStatusRejected WithdrawalStatus = "REJECTED"
)

func (s WithdrawalStatus) IsTerminal() bool {
	return s == WithdrawalStatusApproved || s == WithdrawalStatusRejected
}

// ParseDecision accepts an admin decision in any letter case.
func ParseDecision(s string) (WithdrawalStatus, error) {
	switch WithdrawalStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case WithdrawalStatusApproved:
		return WithdrawalStatusApproved, nil
	case WithdrawalStatusRejected:
		return WithdrawalStatusRejected, nil
	}
	return "", ErrInvalidDecision
}

type WithdrawalMethod string

const (
	WithdrawalMethodBankTransfer WithdrawalMethod = "BANK_TRANSFER"
	WithdrawalMethodMobileWallet WithdrawalMethod = "MOBILE_WALLET"
)

func (m WithdrawalMethod) Valid() bool {
	return m == WithdrawalMethodBankTransfer || m == WithdrawalMethodMobileWallet
}

// PayoutDestination is where the disbursement channel sends the money.
type PayoutDestination struct {
	BankName      string
	Branch        string
	AccountNumber string
	AccountHolder string
}

func (d PayoutDestination) Valid() bool {
	return strings.TrimSpace(d.AccountNumber) != "" && strings.TrimSpace(d.AccountHolder) != ""
}

// Withdrawal is a tutor's cash-out request. Amount is debited from the wallet
// when the request is admitted, not when it is approved.
type Withdrawal struct {
	ID              uuid.UUID
	TutorID         uint64
	Amount          decimal.Decimal
	Method          WithdrawalMethod
	Destination     PayoutDestination
	Status          WithdrawalStatus
	AdminID         *uint64
	CreatedAt       time.Time
	DecidedAt       *time.Time
	PayoutReference string
	PaidOutAt       *time.Time
	PayoutAttempts  int
}

func (w *Withdrawal) PaidOut() bool {
	return w.PaidOutAt != nil
}

type WithdrawalSummary struct {
	PendingTotal  decimal.Decimal
	ApprovedTotal decimal.Decimal
	PendingCount  int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

type WithdrawalPage struct {
	Items []*Withdrawal
	Total int
	Page  Page
}
