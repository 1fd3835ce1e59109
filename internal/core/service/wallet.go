package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/port"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

// WalletService owns every balance mutation. Other services change a wallet
// only through its methods, passing their transaction context along.
type WalletService struct {
	repo      port.Repository
	publisher port.EventPublisher
	logger    *zap.Logger
}

func NewWalletService(repo port.Repository, publisher port.EventPublisher, logger *zap.Logger) (*WalletService, error) {
	return &WalletService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// GetAvailableBalance returns zero for a payee that has never been credited.
func (s *WalletService) GetAvailableBalance(ctx context.Context, payeeID uint64) (decimal.Decimal, error) {
	wallet, err := s.repo.ReadWallet(ctx, payeeID)
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, exposeError(s.logger, "Read wallet", err)
	}

	return wallet.Available, nil
}

func (s *WalletService) Credit(ctx context.Context, payeeID uint64, amount decimal.Decimal) (*domain.Wallet, error) {
	amount, err := domain.NormalizeAmount(amount)
	if err != nil {
		return nil, err
	}

	var wallet *domain.Wallet
	err = retryOnConflict(ctx, func(ctx context.Context) error {
		var err error
		wallet, err = s.repo.UpdateWallet(ctx, payeeID, true, func(w *domain.Wallet) error {
			available, err := w.Available.Add(amount)
			if err != nil {
				return fmt.Errorf("math error: %w", err)
			}
			w.Available = available
			w.UpdatedAt = now()
			return nil
		})
		return err
	})
	if err != nil {
		return nil, exposeError(s.logger, "Credit wallet", err)
	}

	s.logger.Debug("Wallet credited",
		zap.Uint64("payee", payeeID),
		zap.Stringer("amount", amount),
		zap.Stringer("available", wallet.Available))

	return wallet, nil
}

// Refund returns funds reserved by a rejected withdrawal.
func (s *WalletService) Refund(ctx context.Context, payeeID uint64, amount decimal.Decimal) (*domain.Wallet, error) {
	return s.Credit(ctx, payeeID, amount)
}

// AdmitWithdrawal reserves amount from the wallet and records a pending
// withdrawal in the same transaction. The wallet row stays locked between the
// balance check and the decrement.
func (s *WalletService) AdmitWithdrawal(ctx context.Context,
	payeeID uint64,
	amount decimal.Decimal,
	method domain.WithdrawalMethod,
	destination domain.PayoutDestination,
) (*domain.Withdrawal, error) {
	amount, err := domain.NormalizeAmount(amount)
	if err != nil {
		return nil, err
	}
	if !method.Valid() {
		return nil, domain.ErrBadRequest
	}
	if !destination.Valid() {
		return nil, domain.ErrInvalidDestination
	}

	var created *domain.Withdrawal
	err = retryOnConflict(ctx, func(ctx context.Context) error {
		return s.repo.WithinTx(ctx, func(ctx context.Context) error {
			_, err := s.repo.UpdateWallet(ctx, payeeID, false, func(w *domain.Wallet) error {
				if w.Available.Cmp(amount) < 0 {
					return domain.ErrInsufficientFunds
				}
				rest, err := w.Available.Sub(amount)
				if err != nil {
					return fmt.Errorf("math error: %w", err)
				}
				w.Available = rest
				w.UpdatedAt = now()
				return nil
			})
			if err != nil {
				if errors.Is(err, domain.ErrDataNotFound) {
					return domain.ErrInsufficientFunds
				}
				return err
			}

			created, err = s.repo.CreateWithdrawal(ctx, &domain.Withdrawal{
				ID:          uuid.New(),
				TutorID:     payeeID,
				Amount:      amount,
				Method:      method,
				Destination: destination,
				Status:      domain.WithdrawalStatusPending,
				CreatedAt:   now(),
			})
			return err
		})
	})
	if err != nil {
		return nil, exposeError(s.logger, "Admit withdrawal", err)
	}

	s.logger.Info("Withdrawal admitted",
		zap.Stringer("withdrawal", created.ID),
		zap.Uint64("tutor", payeeID),
		zap.Stringer("amount", amount))
	publish(ctx, s.publisher, s.logger, domain.EventWithdrawalAdmitted, created.ID.String(), created)

	return created, nil
}

func (s *WalletService) ListWithdrawals(ctx context.Context, page domain.Page) (*domain.WithdrawalPage, error) {
	list, err := s.repo.ListWithdrawals(ctx, nil, page.Normalize())
	if err != nil {
		return nil, exposeError(s.logger, "List withdrawals", err)
	}
	return list, nil
}

func (s *WalletService) ListTutorWithdrawals(ctx context.Context, tutorID uint64, page domain.Page) (*domain.WithdrawalPage, error) {
	list, err := s.repo.ListWithdrawals(ctx, &tutorID, page.Normalize())
	if err != nil {
		return nil, exposeError(s.logger, "List tutor withdrawals", err)
	}
	return list, nil
}

func (s *WalletService) WithdrawalSummary(ctx context.Context) (*domain.WithdrawalSummary, error) {
	summary, err := s.repo.SummarizeWithdrawals(ctx)
	if err != nil {
		return nil, exposeError(s.logger, "Summarize withdrawals", err)
	}
	return summary, nil
}
