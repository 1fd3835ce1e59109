package port

import (
	"context"

	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

type WalletService interface {
	GetAvailableBalance(ctx context.Context, payeeID uint64) (decimal.Decimal, error)
	Credit(ctx context.Context, payeeID uint64, amount decimal.Decimal) (*domain.Wallet, error)
	Refund(ctx context.Context, payeeID uint64, amount decimal.Decimal) (*domain.Wallet, error)
	AdmitWithdrawal(ctx context.Context, payeeID uint64, amount decimal.Decimal,
		method domain.WithdrawalMethod, destination domain.PayoutDestination) (*domain.Withdrawal, error)

	ListWithdrawals(ctx context.Context, page domain.Page) (*domain.WithdrawalPage, error)
	ListTutorWithdrawals(ctx context.Context, tutorID uint64, page domain.Page) (*domain.WithdrawalPage, error)
	WithdrawalSummary(ctx context.Context) (*domain.WithdrawalSummary, error)
}

type PaymentService interface {
	InitiateCheckout(ctx context.Context, orderID string, moduleID uint64,
		amount decimal.Decimal, payerID uint64) (*domain.Checkout, error)
	HandleNotify(ctx context.Context, payload domain.NotifyPayload) (*domain.NotifyResult, error)
	PlatformRevenue(ctx context.Context) (*domain.Revenue, error)
	RegisterModule(ctx context.Context, module *domain.Module) (*domain.Module, error)
}

type ApprovalService interface {
	Decide(ctx context.Context, withdrawalID uuid.UUID, decision domain.WithdrawalStatus, adminID uint64) (*domain.Withdrawal, error)
	Payout(ctx context.Context, withdrawalID uuid.UUID) (*domain.Withdrawal, error)
}
