package service

import (
	"context"
	"errors"
	"time"

	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/port"
	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
)

const (
	conflictRetries    = 3
	conflictRetryDelay = 25 * time.Millisecond
)

// errors callers are allowed to see; anything else is logged and reported as ErrInternal
var exposedErrors = []error{
	domain.ErrDataNotFound,
	domain.ErrConflictingData,
	domain.ErrConcurrencyConflict,
	domain.ErrBadRequest,
	domain.ErrDuplicateOrder,
	domain.ErrUntrustedCallback,
	domain.ErrInvalidAmount,
	domain.ErrInsufficientFunds,
	domain.ErrUnknownModule,
	domain.ErrInvalidDestination,
	domain.ErrAlreadyFinalized,
	domain.ErrInvalidDecision,
	domain.ErrWithdrawalNotApproved,
	domain.ErrDisbursement,
	context.DeadlineExceeded,
	context.Canceled,
}

func exposeError(logger *zap.Logger, op string, err error) error {
	for _, e := range exposedErrors {
		if errors.Is(err, e) {
			return e
		}
	}
	logger.Error(op, zap.Error(err))
	return domain.ErrInternal
}

type retryScopeKey struct{}

// retryOnConflict reruns op while the store reports a concurrency conflict.
// Nested calls run op once: only the outermost unit of work can be retried.
func retryOnConflict(ctx context.Context, op func(ctx context.Context) error) error {
	if ctx.Value(retryScopeKey{}) != nil {
		return op(ctx)
	}
	ctx = context.WithValue(ctx, retryScopeKey{}, struct{}{})

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(conflictRetryDelay), conflictRetries), ctx)

	return backoff.Retry(func() error {
		err := op(ctx)
		if err == nil || errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		return backoff.Permanent(err)
	}, b)
}

func publish(ctx context.Context, publisher port.EventPublisher, logger *zap.Logger,
	eventType string, key string, payload any) {
	if publisher == nil {
		return
	}
	err := publisher.Publish(ctx, domain.Event{
		Type:       eventType,
		Key:        key,
		Payload:    payload,
		OccurredAt: now(),
	})
	if err != nil {
		logger.Warn("Publish event", zap.String("type", eventType), zap.String("key", key), zap.Error(err))
	}
}

var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
