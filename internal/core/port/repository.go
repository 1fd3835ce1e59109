package port

import (
	"context"

	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

// Transactor runs fn as one atomic unit of work. Calls made with the context
// passed to fn join the same transaction, including nested WithinTx calls.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Update functions receive the row locked for the rest of the transaction.
// Returning domain.ErrNoUpdatedData skips the write without failing the transaction.
type UpdateWalletFn func(*domain.Wallet) error
type UpdatePaymentFn func(*domain.Payment) error
type UpdateWithdrawalFn func(*domain.Withdrawal) error

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type Repository interface {
	Transactor

	// Wallet
	ReadWallet(ctx context.Context, payeeID uint64) (*domain.Wallet, error)
	UpdateWallet(ctx context.Context, payeeID uint64, create bool, updateFn UpdateWalletFn) (*domain.Wallet, error)

	// Payment
	CreatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	ReadPayment(ctx context.Context, orderID string) (*domain.Payment, error)
	UpdatePayment(ctx context.Context, orderID string, updateFn UpdatePaymentFn) (*domain.Payment, error)
	SumPayments(ctx context.Context, status domain.PaymentStatus) (decimal.Decimal, error)

	// Withdrawal
	CreateWithdrawal(ctx context.Context, withdrawal *domain.Withdrawal) (*domain.Withdrawal, error)
	ReadWithdrawal(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error)
	UpdateWithdrawal(ctx context.Context, id uuid.UUID, updateFn UpdateWithdrawalFn) (*domain.Withdrawal, error)
	ListWithdrawals(ctx context.Context, tutorID *uint64, page domain.Page) (*domain.WithdrawalPage, error)
	ListUnpaidWithdrawals(ctx context.Context) ([]*domain.Withdrawal, error)
	SummarizeWithdrawals(ctx context.Context) (*domain.WithdrawalSummary, error)

	// Module
	CreateModule(ctx context.Context, module *domain.Module) (*domain.Module, error)
	ReadModule(ctx context.Context, moduleID uint64) (*domain.Module, error)
}
