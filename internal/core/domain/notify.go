package domain

import "strings"

// Gateway status codes reported in the notify callback.
const (
	GatewayStatusSuccess    = "2"
	GatewayStatusPending    = "0"
	GatewayStatusCancelled  = "-1"
	GatewayStatusFailed     = "-2"
	GatewayStatusChargeback = "-3"
)

type GatewayOutcome int

const (
	// GatewayOutcomeInformational covers statuses that must not move the payment.
	GatewayOutcomeInformational GatewayOutcome = iota
	GatewayOutcomeSuccess
	GatewayOutcomeFailure
)

func ParseGatewayStatus(code string) GatewayOutcome {
	switch strings.TrimSpace(code) {
	case GatewayStatusSuccess:
		return GatewayOutcomeSuccess
	case GatewayStatusCancelled, GatewayStatusFailed:
		return GatewayOutcomeFailure
	default:
		return GatewayOutcomeInformational
	}
}

// NotifyPayload is the gateway's asynchronous payment notification as received.
type NotifyPayload struct {
	MerchantID      string
	OrderID         string
	PayhereAmount   string
	PayhereCurrency string
	StatusCode      string
	MD5Sig          string
}

type NotifyAction string

const (
	NotifyActionCompleted NotifyAction = "COMPLETED"
	NotifyActionFailed    NotifyAction = "FAILED"
	NotifyActionDuplicate NotifyAction = "DUPLICATE"
	NotifyActionUnknown   NotifyAction = "UNKNOWN_ORDER"
	NotifyActionIgnored   NotifyAction = "IGNORED"
)

// NotifyResult tells what handling a callback did.
type NotifyResult struct {
	OrderID  string
	Action   NotifyAction
	Status   PaymentStatus
	Credited *Wallet
}
