package port

import (
	"context"
	"time"

	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/google/uuid"
)

// Disbursement is the result of sending a withdrawal to the external payout channel.
type Disbursement struct {
	Reference string
}

//go:generate mockgen -source=gateway.go -destination=mock/gateway.go -package=mock
type Disburser interface {
	// Disburse must be idempotent for the same withdrawal id.
	Disburse(ctx context.Context, withdrawal *domain.Withdrawal) (*Disbursement, error)
}

type PayoutScheduler interface {
	SchedulePayout(withdrawalID uuid.UUID)
}

type PayoutProcessor interface {
	Payout(ctx context.Context, withdrawalID uuid.UUID) (*domain.Withdrawal, error)
}

type Alerter interface {
	Alert(ctx context.Context, alert domain.Alert) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NotifyCache remembers orders that already reached a terminal status so
// redelivered callbacks can be answered without touching the database.
type NotifyCache interface {
	IsProcessed(ctx context.Context, orderID string) (bool, error)
	MarkProcessed(ctx context.Context, orderID string, status domain.PaymentStatus) error
	// ClaimAlert reports true only for the first claim of key within window.
	ClaimAlert(ctx context.Context, key string, window time.Duration) (bool, error)
}
