package service

import (
	"context"
	"errors"

	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/port"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApprovalService moves withdrawals from PENDING to APPROVED or REJECTED and
// pays approved ones out.
type ApprovalService struct {
	repo      port.Repository
	wallet    port.WalletService
	disburser port.Disburser
	scheduler port.PayoutScheduler
	publisher port.EventPublisher
	logger    *zap.Logger
}

func NewApprovalService(repo port.Repository,
	wallet port.WalletService,
	disburser port.Disburser,
	scheduler port.PayoutScheduler,
	publisher port.EventPublisher,
	logger *zap.Logger,
) (*ApprovalService, error) {
	return &ApprovalService{
		repo:      repo,
		wallet:    wallet,
		disburser: disburser,
		scheduler: scheduler,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// Decide finalizes a pending withdrawal. A rejection refunds the reserved
// amount in the same transaction as the status change.
func (s *ApprovalService) Decide(ctx context.Context,
	withdrawalID uuid.UUID,
	decision domain.WithdrawalStatus,
	adminID uint64,
) (*domain.Withdrawal, error) {
	if !decision.IsTerminal() {
		return nil, domain.ErrInvalidDecision
	}

	var decided *domain.Withdrawal
	err := retryOnConflict(ctx, func(ctx context.Context) error {
		return s.repo.WithinTx(ctx, func(ctx context.Context) error {
			w, err := s.repo.UpdateWithdrawal(ctx, withdrawalID, func(w *domain.Withdrawal) error {
				if w.Status.IsTerminal() {
					return domain.ErrAlreadyFinalized
				}
				decidedAt := now()
				w.AdminID = &adminID
				w.DecidedAt = &decidedAt
				w.Status = decision
				return nil
			})
			if err != nil {
				return err
			}

			if decision == domain.WithdrawalStatusRejected {
				if _, err := s.wallet.Refund(ctx, w.TutorID, w.Amount); err != nil {
					return err
				}
			}

			decided = w
			return nil
		})
	})
	if err != nil {
		return nil, exposeError(s.logger, "Decide withdrawal", err)
	}

	s.logger.Info("Withdrawal decided",
		zap.Stringer("withdrawal", withdrawalID),
		zap.String("decision", string(decision)),
		zap.Uint64("admin", adminID))
	publish(ctx, s.publisher, s.logger, domain.EventWithdrawalDecided, withdrawalID.String(), decided)

	return decided, nil
}

// Payout sends an approved withdrawal to the disbursement channel. The attempt
// is claimed and committed before the channel is called, so no row lock is held
// while waiting on it. The withdrawal id is the idempotency key the channel
// uses to keep repeated calls from paying twice. A channel failure leaves the
// withdrawal APPROVED and schedules a retry.
func (s *ApprovalService) Payout(ctx context.Context, withdrawalID uuid.UUID) (*domain.Withdrawal, error) {
	var claimed *domain.Withdrawal
	var alreadyPaid bool

	err := retryOnConflict(ctx, func(ctx context.Context) error {
		w, err := s.repo.UpdateWithdrawal(ctx, withdrawalID, func(w *domain.Withdrawal) error {
			if w.Status != domain.WithdrawalStatusApproved {
				return domain.ErrWithdrawalNotApproved
			}
			if w.PaidOut() {
				return domain.ErrNoUpdatedData
			}
			w.PayoutAttempts++
			return nil
		})
		alreadyPaid = errors.Is(err, domain.ErrNoUpdatedData)
		if err != nil && !alreadyPaid {
			return err
		}
		claimed = w
		return nil
	})
	if err != nil {
		return nil, exposeError(s.logger, "Claim payout", err)
	}
	if alreadyPaid {
		return claimed, nil
	}

	d, err := s.disburser.Disburse(ctx, claimed)
	if err != nil {
		s.logger.Error("Disbursement failed, payout rescheduled",
			zap.Stringer("withdrawal", withdrawalID),
			zap.Int("attempts", claimed.PayoutAttempts),
			zap.Error(err))
		if s.scheduler != nil {
			s.scheduler.SchedulePayout(withdrawalID)
		}
		return nil, domain.ErrDisbursement
	}

	var result *domain.Withdrawal
	var paidNow bool
	err = retryOnConflict(ctx, func(ctx context.Context) error {
		w, err := s.repo.UpdateWithdrawal(ctx, withdrawalID, func(w *domain.Withdrawal) error {
			// a concurrent payout with the same idempotency key got here first
			if w.PaidOut() {
				return domain.ErrNoUpdatedData
			}
			paidAt := now()
			w.PaidOutAt = &paidAt
			w.PayoutReference = d.Reference
			return nil
		})
		paidNow = err == nil
		if err != nil && !errors.Is(err, domain.ErrNoUpdatedData) {
			return err
		}
		result = w
		return nil
	})
	if err != nil {
		s.logger.Error("Disbursed payout not recorded",
			zap.Stringer("withdrawal", withdrawalID),
			zap.String("reference", d.Reference),
			zap.Error(err))
		return nil, exposeError(s.logger, "Record payout", err)
	}

	if paidNow {
		s.logger.Info("Withdrawal paid out",
			zap.Stringer("withdrawal", withdrawalID),
			zap.String("reference", result.PayoutReference))
		publish(ctx, s.publisher, s.logger, domain.EventWithdrawalPaidOut, withdrawalID.String(), result)
	}

	return result, nil
}
