package domain

import "time"

const (
	EventPaymentSucceeded   = "payment.succeeded"
	EventPaymentFailed      = "payment.failed"
	EventWithdrawalAdmitted = "withdrawal.admitted"
	EventWithdrawalDecided  = "withdrawal.decided"
	EventWithdrawalPaidOut  = "withdrawal.paid_out"
)

// Event is published after the unit of work that produced it has committed.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

type AlertSeverity string

const (
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

// Alert is an internal notice for administrators. It never reaches the gateway.
type Alert struct {
	Severity AlertSeverity `json:"severity"`
	Kind     string        `json:"kind"`
	Message  string        `json:"message"`
	OrderID  string        `json:"order_id,omitempty"`
	SentAt   time.Time     `json:"sent_at"`
}
