package disbursement

import (
	"context"
	"errors"
	"time"

	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/port"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultRetryDelay = time.Minute
	queueSize         = 16
)

// Scheduler retries failed payouts on a fixed pool of workers.
type Scheduler struct {
	ctx        context.Context
	logger     *zap.Logger
	queue      chan uuid.UUID
	retryDelay time.Duration
}

var _ port.PayoutScheduler = (*Scheduler)(nil)

func NewScheduler(ctx context.Context, retryDelay time.Duration, log *zap.Logger) *Scheduler {
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	return &Scheduler{
		ctx:        ctx,
		logger:     log,
		queue:      make(chan uuid.UUID, queueSize),
		retryDelay: retryDelay,
	}
}

// SchedulePayout queues the withdrawal after the retry delay. It never blocks.
func (s *Scheduler) SchedulePayout(withdrawalID uuid.UUID) {
	s.logger.Debug("Payout scheduled", zap.Stringer("withdrawal", withdrawalID), zap.Duration("delay", s.retryDelay))
	go s.retryRequest(withdrawalID, s.retryDelay)
}

func (s *Scheduler) retryRequest(withdrawalID uuid.UUID, waitFor time.Duration) {
	r := time.NewTimer(waitFor)
	defer r.Stop()

	select {
	case <-r.C:
	case <-s.ctx.Done():
		return
	}

	select {
	case s.queue <- withdrawalID:
	case <-s.ctx.Done():
	}
}

// StartWorkers runs workers until the scheduler context is done.
func (s *Scheduler) StartWorkers(processor port.PayoutProcessor, workers int) {
	for i := 0; i < workers; i++ {
		go s.work(processor)
	}
}

func (s *Scheduler) work(processor port.PayoutProcessor) {
	for {
		select {
		case withdrawalID := <-s.queue:
			log := s.logger.With(zap.Stringer("withdrawal", withdrawalID))
			log.Debug("Start processing payout")

			_, err := processor.Payout(s.ctx, withdrawalID)
			switch {
			case err == nil:
				log.Debug("Finished processing payout")
			case errors.Is(err, domain.ErrDisbursement):
				// Payout has already put it back on the queue
				log.Debug("Payout failed again")
			case errors.Is(err, domain.ErrWithdrawalNotApproved), errors.Is(err, domain.ErrDataNotFound):
				log.Warn("Payout dropped", zap.Error(err))
			case errors.Is(err, context.Canceled):
				return
			default:
				log.Error("Unexpected error on payout", zap.Error(err))
				s.SchedulePayout(withdrawalID)
			}
		case <-s.ctx.Done():
			s.logger.Debug("Finished payout worker")
			return
		}
	}
}

// RecallPayouts queues approved withdrawals whose earlier payout attempts failed.
func RecallPayouts(ctx context.Context, repo port.Repository, scheduler port.PayoutScheduler) (int, error) {
	withdrawals, err := repo.ListUnpaidWithdrawals(ctx)
	if err != nil {
		return 0, err
	}
	for _, w := range withdrawals {
		scheduler.SchedulePayout(w.ID)
	}

	return len(withdrawals), nil
}
