package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/port"
	"github.com/MikeRez0/tutorpay/internal/core/utils"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

const (
	defaultNotifyTimeout = 10 * time.Second
	alertWindow          = 10 * time.Minute
)

// GatewayOptions configures the hosted checkout integration.
type GatewayOptions struct {
	MerchantID     string
	MerchantSecret string
	Currency       string

	CheckoutURL string
	ReturnURL   string
	CancelURL   string
	NotifyURL   string

	NotifyTimeout      time.Duration
	PlatformFeePercent decimal.Decimal
	PayoutPolicy       domain.PayoutPolicy
}

type PaymentService struct {
	repo      port.Repository
	wallet    port.WalletService
	cache     port.NotifyCache
	alerter   port.Alerter
	publisher port.EventPublisher
	opts      GatewayOptions
	logger    *zap.Logger
}

func NewPaymentService(repo port.Repository,
	wallet port.WalletService,
	cache port.NotifyCache,
	alerter port.Alerter,
	publisher port.EventPublisher,
	opts GatewayOptions,
	logger *zap.Logger,
) (*PaymentService, error) {
	if opts.MerchantID == "" {
		return nil, errors.New("merchant id is not configured")
	}
	if !opts.PayoutPolicy.Valid() {
		return nil, fmt.Errorf("unknown payout policy %q", opts.PayoutPolicy)
	}
	if opts.PlatformFeePercent.IsNeg() || opts.PlatformFeePercent.Cmp(decimal.Hundred) >= 0 {
		return nil, fmt.Errorf("platform fee percent %s out of range [0, 100)", opts.PlatformFeePercent)
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = defaultNotifyTimeout
	}
	if opts.MerchantSecret == "" {
		logger.Warn("Merchant secret is empty, every notify callback will be rejected")
	}

	return &PaymentService{
		repo:      repo,
		wallet:    wallet,
		cache:     cache,
		alerter:   alerter,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
	}, nil
}

func (s *PaymentService) InitiateCheckout(ctx context.Context,
	orderID string,
	moduleID uint64,
	amount decimal.Decimal,
	payerID uint64,
) (*domain.Checkout, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, domain.ErrBadRequest
	}
	amount, err := domain.NormalizeAmount(amount)
	if err != nil {
		return nil, err
	}

	module, err := s.repo.ReadModule(ctx, moduleID)
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			return nil, domain.ErrUnknownModule
		}
		return nil, exposeError(s.logger, "Read module", err)
	}

	created := now()
	_, err = s.repo.CreatePayment(ctx, &domain.Payment{
		OrderID:   orderID,
		PayeeID:   module.TutorID,
		PayerID:   payerID,
		ModuleID:  module.ID,
		Amount:    amount,
		Currency:  s.opts.Currency,
		Status:    domain.PaymentStatusPending,
		CreatedAt: created,
		UpdatedAt: created,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflictingData) {
			return nil, domain.ErrDuplicateOrder
		}
		return nil, exposeError(s.logger, "Create payment", err)
	}

	s.logger.Info("Checkout initiated",
		zap.String("order", orderID),
		zap.Uint64("module", module.ID),
		zap.Uint64("payer", payerID),
		zap.Stringer("amount", amount))

	return &domain.Checkout{
		CheckoutURL: s.opts.CheckoutURL,
		MerchantID:  s.opts.MerchantID,
		OrderID:     orderID,
		Items:       module.Title,
		Amount:      utils.FormatAmount(amount),
		Currency:    s.opts.Currency,
		Hash:        utils.CheckoutHash(s.opts.MerchantID, orderID, amount, s.opts.Currency, s.opts.MerchantSecret),
		ReturnURL:   s.opts.ReturnURL,
		CancelURL:   s.opts.CancelURL,
		NotifyURL:   s.opts.NotifyURL,
	}, nil
}

// HandleNotify applies a gateway callback. It is safe to call any number of
// times with the same payload: a terminal payment is never processed again.
func (s *PaymentService) HandleNotify(ctx context.Context, payload domain.NotifyPayload) (*domain.NotifyResult, error) {
	log := s.logger.With(zap.String("order", payload.OrderID), zap.String("status_code", payload.StatusCode))

	trusted := payload.MerchantID == s.opts.MerchantID &&
		utils.VerifyNotify(payload.MD5Sig, payload.MerchantID, payload.OrderID,
			payload.PayhereAmount, payload.PayhereCurrency, payload.StatusCode, s.opts.MerchantSecret)
	if !trusted {
		log.Warn("Untrusted notify callback discarded")
		s.alert(ctx, domain.AlertSeverityCritical, "untrusted_callback",
			"notify callback failed signature verification", payload.OrderID)
		return nil, domain.ErrUntrustedCallback
	}

	processed, err := s.cache.IsProcessed(ctx, payload.OrderID)
	if err != nil {
		log.Warn("Notify cache lookup failed", zap.Error(err))
	} else if processed {
		log.Debug("Notify for processed order answered from cache")
		return &domain.NotifyResult{OrderID: payload.OrderID, Action: domain.NotifyActionDuplicate}, nil
	}

	outcome := domain.ParseGatewayStatus(payload.StatusCode)

	ctx, cancel := context.WithTimeout(ctx, s.opts.NotifyTimeout)
	defer cancel()

	var result *domain.NotifyResult
	var mismatch bool
	err = retryOnConflict(ctx, func(ctx context.Context) error {
		result = &domain.NotifyResult{OrderID: payload.OrderID}
		mismatch = false

		return s.repo.WithinTx(ctx, func(ctx context.Context) error {
			payment, err := s.repo.UpdatePayment(ctx, payload.OrderID, func(p *domain.Payment) error {
				result.Status = p.Status
				if p.Status.IsTerminal() {
					result.Action = domain.NotifyActionDuplicate
					return domain.ErrNoUpdatedData
				}

				switch outcome {
				case domain.GatewayOutcomeSuccess:
					if !matchesAttempt(p, payload) {
						mismatch = true
						result.Action = domain.NotifyActionIgnored
						return domain.ErrNoUpdatedData
					}
					p.Status = domain.PaymentStatusSuccess
					result.Action = domain.NotifyActionCompleted
				case domain.GatewayOutcomeFailure:
					p.Status = domain.PaymentStatusFailed
					result.Action = domain.NotifyActionFailed
				default:
					result.Action = domain.NotifyActionIgnored
					return domain.ErrNoUpdatedData
				}

				p.UpdatedAt = now()
				result.Status = p.Status
				return nil
			})
			if errors.Is(err, domain.ErrDataNotFound) {
				result.Action = domain.NotifyActionUnknown
				return nil
			}
			if errors.Is(err, domain.ErrNoUpdatedData) {
				return nil
			}
			if err != nil {
				return err
			}

			if result.Action != domain.NotifyActionCompleted {
				return nil
			}

			amount, err := s.payoutAmount(payment.Amount)
			if err != nil {
				return err
			}
			result.Credited, err = s.wallet.Credit(ctx, payment.PayeeID, amount)
			return err
		})
	})
	if err != nil {
		log.Error("Notify processing failed, payment left pending", zap.Error(err))
		return nil, exposeError(s.logger, "Handle notify", err)
	}

	s.afterNotify(ctx, log, result, mismatch)

	return result, nil
}

func (s *PaymentService) afterNotify(ctx context.Context, log *zap.Logger, result *domain.NotifyResult, mismatch bool) {
	switch result.Action {
	case domain.NotifyActionCompleted, domain.NotifyActionFailed:
		log.Info("Payment finalized", zap.String("status", string(result.Status)))
		eventType := domain.EventPaymentSucceeded
		if result.Status == domain.PaymentStatusFailed {
			eventType = domain.EventPaymentFailed
		}
		publish(ctx, s.publisher, s.logger, eventType, result.OrderID, result)
		s.markProcessed(ctx, log, result)
	case domain.NotifyActionDuplicate:
		log.Debug("Duplicate notify for finalized payment")
		s.markProcessed(ctx, log, result)
	case domain.NotifyActionUnknown:
		log.Warn("Notify for unknown order ignored")
	case domain.NotifyActionIgnored:
		if mismatch {
			log.Error("Notify amount or currency differs from checkout, payment left pending")
			s.alert(ctx, domain.AlertSeverityCritical, "amount_mismatch",
				"success notify does not match the checkout amount", result.OrderID)
			return
		}
		log.Info("Informational notify status ignored")
	}
}

func (s *PaymentService) markProcessed(ctx context.Context, log *zap.Logger, result *domain.NotifyResult) {
	if err := s.cache.MarkProcessed(ctx, result.OrderID, result.Status); err != nil {
		log.Warn("Notify cache update failed", zap.Error(err))
	}
}

// alert raises an admin alert once per kind and order within alertWindow. A
// cache failure lets the alert through.
func (s *PaymentService) alert(ctx context.Context, severity domain.AlertSeverity, kind, message, orderID string) {
	claimed, err := s.cache.ClaimAlert(ctx, kind+":"+orderID, alertWindow)
	if err != nil {
		s.logger.Warn("Alert dedupe lookup failed", zap.String("kind", kind), zap.Error(err))
	} else if !claimed {
		s.logger.Debug("Repeated alert suppressed", zap.String("kind", kind), zap.String("order", orderID))
		return
	}

	err = s.alerter.Alert(ctx, domain.Alert{
		Severity: severity,
		Kind:     kind,
		Message:  message,
		OrderID:  orderID,
		SentAt:   now(),
	})
	if err != nil {
		s.logger.Error("Admin alert failed", zap.String("kind", kind), zap.Error(err))
	}
}

func matchesAttempt(p *domain.Payment, payload domain.NotifyPayload) bool {
	amount, err := decimal.Parse(strings.TrimSpace(payload.PayhereAmount))
	if err != nil {
		return false
	}
	return amount.Cmp(p.Amount) == 0 && strings.EqualFold(strings.TrimSpace(payload.PayhereCurrency), p.Currency)
}

// payoutAmount is what the tutor wallet receives for a successful payment.
func (s *PaymentService) payoutAmount(gross decimal.Decimal) (decimal.Decimal, error) {
	if s.opts.PayoutPolicy == domain.PayoutPolicyGross {
		return gross, nil
	}
	fee, err := platformFee(gross, s.opts.PlatformFeePercent)
	if err != nil {
		return decimal.Zero, err
	}
	net, err := gross.Sub(fee)
	if err != nil {
		return decimal.Zero, fmt.Errorf("math error: %w", err)
	}
	return net, nil
}

// RegisterModule adds a catalog module so checkouts can resolve its tutor.
func (s *PaymentService) RegisterModule(ctx context.Context, module *domain.Module) (*domain.Module, error) {
	module.Title = strings.TrimSpace(module.Title)
	if module.ID == 0 || module.TutorID == 0 || module.Title == "" {
		return nil, domain.ErrBadRequest
	}

	created, err := s.repo.CreateModule(ctx, module)
	if err != nil {
		return nil, exposeError(s.logger, "Create module", err)
	}
	s.logger.Info("Module registered", zap.Uint64("module", created.ID), zap.Uint64("tutor", created.TutorID))
	return created, nil
}

func (s *PaymentService) PlatformRevenue(ctx context.Context) (*domain.Revenue, error) {
	gross, err := s.repo.SumPayments(ctx, domain.PaymentStatusSuccess)
	if err != nil {
		return nil, exposeError(s.logger, "Sum payments", err)
	}

	revenue, err := platformFee(gross, s.opts.PlatformFeePercent)
	if err != nil {
		return nil, exposeError(s.logger, "Platform revenue", err)
	}

	return &domain.Revenue{
		GrossSuccess: gross,
		FeePercent:   s.opts.PlatformFeePercent,
		Revenue:      revenue,
	}, nil
}

// platformFee is percent of amount, rounded to cents.
func platformFee(amount, percent decimal.Decimal) (decimal.Decimal, error) {
	fee, err := amount.Mul(percent)
	if err != nil {
		return decimal.Zero, fmt.Errorf("math error: %w", err)
	}
	fee, err = fee.Quo(decimal.Hundred)
	if err != nil {
		return decimal.Zero, fmt.Errorf("math error: %w", err)
	}
	return fee.Round(2), nil
}
