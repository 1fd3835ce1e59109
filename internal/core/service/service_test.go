package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MikeRez0/tutorpay/internal/adapter/cache"
	"github.com/MikeRez0/tutorpay/internal/adapter/storage/memory"
	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/port"
	"github.com/MikeRez0/tutorpay/internal/core/port/mock"
	"github.com/MikeRez0/tutorpay/internal/core/service"
	"github.com/MikeRez0/tutorpay/internal/core/utils"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	merchantID     = "1211149"
	merchantSecret = "MzA1NjcxNzI2MzQ"
	currency       = "LKR"
	tutorID        = uint64(7)
	studentID      = uint64(21)
	adminID        = uint64(1)
	moduleID       = uint64(100)
)

var destination = domain.PayoutDestination{
	BankName:      "BOC",
	AccountNumber: "0012345",
	AccountHolder: "T. Perera",
}

func gatewayOptions(policy domain.PayoutPolicy) service.GatewayOptions {
	return service.GatewayOptions{
		MerchantID:         merchantID,
		MerchantSecret:     merchantSecret,
		Currency:           currency,
		CheckoutURL:        "https://sandbox.payhere.lk/pay/checkout",
		PlatformFeePercent: decimal.MustParse("10"),
		PayoutPolicy:       policy,
	}
}

func signedNotify(orderID, amount, cur, status string) domain.NotifyPayload {
	return domain.NotifyPayload{
		MerchantID:      merchantID,
		OrderID:         orderID,
		PayhereAmount:   amount,
		PayhereCurrency: cur,
		StatusCode:      status,
		MD5Sig:          utils.NotifyHash(merchantID, orderID, amount, cur, status, merchantSecret),
	}
}

type deps struct {
	repo     *memory.Repository
	wallet   *service.WalletService
	payment  *service.PaymentService
	approval *service.ApprovalService
}

type depsOption func(d *depsConfig)

type depsConfig struct {
	policy    domain.PayoutPolicy
	cache     port.NotifyCache
	alerter   port.Alerter
	disburser port.Disburser
	scheduler port.PayoutScheduler
	publisher port.EventPublisher
	wallet    func(inner port.WalletService) port.WalletService
}

func newDeps(t *testing.T, ctrl *gomock.Controller, opts ...depsOption) *deps {
	t.Helper()

	conf := &depsConfig{policy: domain.PayoutPolicyNet, cache: cache.NewLocal()}
	for _, opt := range opts {
		opt(conf)
	}
	if conf.alerter == nil {
		conf.alerter = mock.NewMockAlerter(ctrl)
	}
	if conf.disburser == nil {
		conf.disburser = mock.NewMockDisburser(ctrl)
	}

	log := zap.NewNop()
	repo := memory.NewRepository()

	_, err := repo.CreateModule(context.Background(), &domain.Module{ID: moduleID, TutorID: tutorID, Title: "Physics"})
	require.NoError(t, err)

	wallet, err := service.NewWalletService(repo, conf.publisher, log)
	require.NoError(t, err)
	var walletPort port.WalletService = wallet
	if conf.wallet != nil {
		walletPort = conf.wallet(wallet)
	}
	payment, err := service.NewPaymentService(repo, walletPort, conf.cache, conf.alerter, conf.publisher,
		gatewayOptions(conf.policy), log)
	require.NoError(t, err)
	approval, err := service.NewApprovalService(repo, walletPort, conf.disburser, conf.scheduler, conf.publisher, log)
	require.NoError(t, err)

	return &deps{repo: repo, wallet: wallet, payment: payment, approval: approval}
}

func (d *deps) balance(t *testing.T) string {
	t.Helper()
	available, err := d.wallet.GetAvailableBalance(context.Background(), tutorID)
	require.NoError(t, err)
	return utils.FormatAmount(available)
}

func (d *deps) credit(t *testing.T, amount string) {
	t.Helper()
	_, err := d.wallet.Credit(context.Background(), tutorID, decimal.MustParse(amount))
	require.NoError(t, err)
}

func (d *deps) admit(t *testing.T, amount string) *domain.Withdrawal {
	t.Helper()
	w, err := d.wallet.AdmitWithdrawal(context.Background(), tutorID, decimal.MustParse(amount),
		domain.WithdrawalMethodBankTransfer, destination)
	require.NoError(t, err)
	return w
}

// brokenWallet fails every balance change with err.
type brokenWallet struct {
	port.WalletService
	err error
}

func (w brokenWallet) Credit(context.Context, uint64, decimal.Decimal) (*domain.Wallet, error) {
	return nil, w.err
}

func (w brokenWallet) Refund(context.Context, uint64, decimal.Decimal) (*domain.Wallet, error) {
	return nil, w.err
}

func TestService_NewPaymentService(t *testing.T) {
	log := zap.NewNop()

	tests := []struct {
		name   string
		modify func(o *service.GatewayOptions)
	}{
		{name: "no merchant", modify: func(o *service.GatewayOptions) { o.MerchantID = "" }},
		{name: "unknown policy", modify: func(o *service.GatewayOptions) { o.PayoutPolicy = "HALF" }},
		{name: "negative fee", modify: func(o *service.GatewayOptions) { o.PlatformFeePercent = decimal.MustParse("-1") }},
		{name: "fee of 100", modify: func(o *service.GatewayOptions) { o.PlatformFeePercent = decimal.Hundred }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			opts := gatewayOptions(domain.PayoutPolicyNet)
			test.modify(&opts)
			_, err := service.NewPaymentService(memory.NewRepository(), nil, nil, nil, nil, opts, log)
			assert.Error(t, err)
		})
	}
}

func TestService_AdmitAndReject(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	d := newDeps(t, ctrl)
	d.credit(t, "500.00")

	w := d.admit(t, "500.00")
	assert.Equal(t, domain.WithdrawalStatusPending, w.Status)
	assert.Equal(t, "0.00", d.balance(t))

	_, err := d.wallet.AdmitWithdrawal(ctx, tutorID, decimal.MustParse("0.01"),
		domain.WithdrawalMethodBankTransfer, destination)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	rejected, err := d.approval.Decide(ctx, w.ID, domain.WithdrawalStatusRejected, adminID)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusRejected, rejected.Status)
	require.NotNil(t, rejected.AdminID)
	assert.Equal(t, adminID, *rejected.AdminID)
	assert.NotNil(t, rejected.DecidedAt)
	assert.Equal(t, "500.00", d.balance(t))

	_, err = d.approval.Decide(ctx, w.ID, domain.WithdrawalStatusApproved, adminID)
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
	assert.Equal(t, "500.00", d.balance(t))
}

func TestService_AdmitWithdrawalValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d := newDeps(t, ctrl)
	d.credit(t, "100")

	tests := []struct {
		name        string
		amount      string
		method      domain.WithdrawalMethod
		destination domain.PayoutDestination
		expError    error
	}{
		{name: "zero", amount: "0", method: domain.WithdrawalMethodBankTransfer, destination: destination, expError: domain.ErrInvalidAmount},
		{name: "negative", amount: "-5", method: domain.WithdrawalMethodBankTransfer, destination: destination, expError: domain.ErrInvalidAmount},
		{name: "fraction of a cent", amount: "0.005", method: domain.WithdrawalMethodBankTransfer, destination: destination, expError: domain.ErrInvalidAmount},
		{name: "sub-cent remainder", amount: "99.999", method: domain.WithdrawalMethodBankTransfer, destination: destination, expError: domain.ErrInvalidAmount},
		{name: "unknown method", amount: "5", method: "CHEQUE", destination: destination, expError: domain.ErrBadRequest},
		{name: "no account", amount: "5", method: domain.WithdrawalMethodMobileWallet, destination: domain.PayoutDestination{AccountHolder: "T"}, expError: domain.ErrInvalidDestination},
		{name: "more than balance", amount: "100.01", method: domain.WithdrawalMethodBankTransfer, destination: destination, expError: domain.ErrInsufficientFunds},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := d.wallet.AdmitWithdrawal(context.Background(), tutorID, decimal.MustParse(test.amount),
				test.method, test.destination)
			assert.ErrorIs(t, err, test.expError)
			assert.Equal(t, "100.00", d.balance(t))
		})
	}

	t.Run("never credited", func(t *testing.T) {
		_, err := d.wallet.AdmitWithdrawal(context.Background(), 999, decimal.MustParse("1"),
			domain.WithdrawalMethodBankTransfer, destination)
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	})
}

func TestService_ConcurrentAdmissions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d := newDeps(t, ctrl)
	d.credit(t, "100")

	const callers = 10
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = d.wallet.AdmitWithdrawal(context.Background(), tutorID, decimal.MustParse("100"),
				domain.WithdrawalMethodBankTransfer, destination)
		}(i)
	}
	wg.Wait()

	admitted := 0
	for _, err := range errs {
		if err == nil {
			admitted++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	}
	assert.Equal(t, 1, admitted)
	assert.Equal(t, "0.00", d.balance(t))

	summary, err := d.wallet.WithdrawalSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PendingCount)
	assert.Equal(t, "100.00", utils.FormatAmount(summary.PendingTotal))
}

func TestService_DecideInvalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d := newDeps(t, ctrl)

	_, err := d.approval.Decide(context.Background(), uuid.New(), domain.WithdrawalStatusPending, adminID)
	assert.ErrorIs(t, err, domain.ErrInvalidDecision)

	_, err = d.approval.Decide(context.Background(), uuid.New(), domain.WithdrawalStatusApproved, adminID)
	assert.ErrorIs(t, err, domain.ErrDataNotFound)
}

func TestService_Checkout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	d := newDeps(t, ctrl)

	checkout, err := d.payment.InitiateCheckout(ctx, " ORD-1 ", moduleID, decimal.MustParse("1500"), studentID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", checkout.OrderID)
	assert.Equal(t, "1500.00", checkout.Amount)
	assert.Equal(t, "Physics", checkout.Items)
	assert.Equal(t, currency, checkout.Currency)
	assert.Equal(t, utils.CheckoutHash(merchantID, "ORD-1", decimal.MustParse("1500"), currency, merchantSecret),
		checkout.Hash)

	payment, err := d.repo.ReadPayment(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
	assert.Equal(t, tutorID, payment.PayeeID)
	assert.Equal(t, studentID, payment.PayerID)

	tests := []struct {
		name     string
		orderID  string
		moduleID uint64
		amount   string
		expError error
	}{
		{name: "empty order", orderID: "  ", moduleID: moduleID, amount: "10", expError: domain.ErrBadRequest},
		{name: "zero amount", orderID: "ORD-2", moduleID: moduleID, amount: "0", expError: domain.ErrInvalidAmount},
		{name: "fraction of a cent", orderID: "ORD-2", moduleID: moduleID, amount: "10.005", expError: domain.ErrInvalidAmount},
		{name: "unknown module", orderID: "ORD-3", moduleID: 404, amount: "10", expError: domain.ErrUnknownModule},
		{name: "duplicate order", orderID: "ORD-1", moduleID: moduleID, amount: "10", expError: domain.ErrDuplicateOrder},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := d.payment.InitiateCheckout(ctx, test.orderID, test.moduleID, decimal.MustParse(test.amount), studentID)
			assert.ErrorIs(t, err, test.expError)
		})
	}
}

func TestService_NotifyPayoutPolicy(t *testing.T) {
	tests := []struct {
		name       string
		policy     domain.PayoutPolicy
		expBalance string
	}{
		{name: "net", policy: domain.PayoutPolicyNet, expBalance: "900.00"},
		{name: "gross", policy: domain.PayoutPolicyGross, expBalance: "1000.00"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			ctx := context.Background()

			d := newDeps(t, ctrl, func(c *depsConfig) { c.policy = test.policy })

			_, err := d.payment.InitiateCheckout(ctx, "ORD-1", moduleID, decimal.MustParse("1000"), studentID)
			require.NoError(t, err)

			result, err := d.payment.HandleNotify(ctx, signedNotify("ORD-1", "1000.00", currency, domain.GatewayStatusSuccess))
			require.NoError(t, err)
			assert.Equal(t, domain.NotifyActionCompleted, result.Action)
			assert.Equal(t, domain.PaymentStatusSuccess, result.Status)
			require.NotNil(t, result.Credited)
			assert.Equal(t, test.expBalance, d.balance(t))

			revenue, err := d.payment.PlatformRevenue(ctx)
			require.NoError(t, err)
			assert.Equal(t, "1000.00", utils.FormatAmount(revenue.GrossSuccess))
			assert.Equal(t, "100.00", utils.FormatAmount(revenue.Revenue))
		})
	}
}

func TestService_NotifyIdempotent(t *testing.T) {
	tests := []struct {
		name  string
		cache func(ctrl *gomock.Controller) port.NotifyCache
	}{
		{
			name:  "local cache",
			cache: func(*gomock.Controller) port.NotifyCache { return cache.NewLocal() },
		},
		{
			name: "cache unavailable",
			cache: func(ctrl *gomock.Controller) port.NotifyCache {
				c := mock.NewMockNotifyCache(ctrl)
				c.EXPECT().IsProcessed(gomock.Any(), "ORD-1").Return(false, errors.New("connection refused")).AnyTimes()
				c.EXPECT().MarkProcessed(gomock.Any(), "ORD-1", gomock.Any()).Return(errors.New("connection refused")).AnyTimes()
				return c
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			ctx := context.Background()

			d := newDeps(t, ctrl, func(c *depsConfig) { c.cache = test.cache(ctrl) })

			_, err := d.payment.InitiateCheckout(ctx, "ORD-1", moduleID, decimal.MustParse("250"), studentID)
			require.NoError(t, err)

			payload := signedNotify("ORD-1", "250.00", currency, domain.GatewayStatusSuccess)
			first, err := d.payment.HandleNotify(ctx, payload)
			require.NoError(t, err)
			assert.Equal(t, domain.NotifyActionCompleted, first.Action)

			for i := 0; i < 3; i++ {
				again, err := d.payment.HandleNotify(ctx, payload)
				require.NoError(t, err)
				assert.Equal(t, domain.NotifyActionDuplicate, again.Action)
			}

			failed, err := d.payment.HandleNotify(ctx, signedNotify("ORD-1", "250.00", currency, domain.GatewayStatusFailed))
			require.NoError(t, err)
			assert.Equal(t, domain.NotifyActionDuplicate, failed.Action)

			assert.Equal(t, "225.00", d.balance(t))
			payment, err := d.repo.ReadPayment(ctx, "ORD-1")
			require.NoError(t, err)
			assert.Equal(t, domain.PaymentStatusSuccess, payment.Status)
		})
	}
}

func TestService_NotifyOutcomes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	publisher := mock.NewMockEventPublisher(ctrl)
	d := newDeps(t, ctrl, func(c *depsConfig) { c.publisher = publisher })

	for _, orderID := range []string{"ORD-F", "ORD-P", "ORD-C"} {
		_, err := d.payment.InitiateCheckout(ctx, orderID, moduleID, decimal.MustParse("40"), studentID)
		require.NoError(t, err)
	}

	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event domain.Event) error {
			assert.Equal(t, domain.EventPaymentFailed, event.Type)
			assert.Equal(t, "ORD-F", event.Key)
			return nil
		})

	tests := []struct {
		name      string
		payload   domain.NotifyPayload
		expAction domain.NotifyAction
		expStatus domain.PaymentStatus
	}{
		{name: "failed", payload: signedNotify("ORD-F", "40.00", currency, domain.GatewayStatusFailed),
			expAction: domain.NotifyActionFailed, expStatus: domain.PaymentStatusFailed},
		{name: "pending is informational", payload: signedNotify("ORD-P", "40.00", currency, domain.GatewayStatusPending),
			expAction: domain.NotifyActionIgnored, expStatus: domain.PaymentStatusPending},
		{name: "chargeback is informational", payload: signedNotify("ORD-C", "40.00", currency, domain.GatewayStatusChargeback),
			expAction: domain.NotifyActionIgnored, expStatus: domain.PaymentStatusPending},
		{name: "unknown order", payload: signedNotify("ORD-404", "40.00", currency, domain.GatewayStatusSuccess),
			expAction: domain.NotifyActionUnknown},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := d.payment.HandleNotify(ctx, test.payload)
			require.NoError(t, err)
			assert.Equal(t, test.expAction, result.Action)
			if test.expStatus != "" {
				payment, err := d.repo.ReadPayment(ctx, test.payload.OrderID)
				require.NoError(t, err)
				assert.Equal(t, test.expStatus, payment.Status)
			}
		})
	}

	assert.Equal(t, "0.00", d.balance(t))
}

func TestService_UntrustedNotify(t *testing.T) {
	good := signedNotify("ORD-1", "250.00", currency, domain.GatewayStatusSuccess)

	tests := []struct {
		name   string
		modify func(p *domain.NotifyPayload)
	}{
		{name: "wrong signature", modify: func(p *domain.NotifyPayload) { p.MD5Sig = "00000000000000000000000000000000" }},
		{name: "empty signature", modify: func(p *domain.NotifyPayload) { p.MD5Sig = "" }},
		{name: "other merchant", modify: func(p *domain.NotifyPayload) {
			p.MerchantID = "999"
			p.MD5Sig = utils.NotifyHash("999", p.OrderID, p.PayhereAmount, p.PayhereCurrency, p.StatusCode, merchantSecret)
		}},
		{name: "tampered amount", modify: func(p *domain.NotifyPayload) { p.PayhereAmount = "25000.00" }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			ctx := context.Background()

			alerter := mock.NewMockAlerter(ctrl)
			d := newDeps(t, ctrl, func(c *depsConfig) { c.alerter = alerter })

			_, err := d.payment.InitiateCheckout(ctx, "ORD-1", moduleID, decimal.MustParse("250"), studentID)
			require.NoError(t, err)

			alerter.EXPECT().Alert(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, alert domain.Alert) error {
					assert.Equal(t, domain.AlertSeverityCritical, alert.Severity)
					assert.Equal(t, "untrusted_callback", alert.Kind)
					return nil
				})

			payload := good
			test.modify(&payload)
			result, err := d.payment.HandleNotify(ctx, payload)
			assert.ErrorIs(t, err, domain.ErrUntrustedCallback)
			assert.Nil(t, result)

			payment, err := d.repo.ReadPayment(ctx, "ORD-1")
			require.NoError(t, err)
			assert.Equal(t, domain.PaymentStatusPending, payment.Status)
			assert.Equal(t, "0.00", d.balance(t))
		})
	}
}

func TestService_NotifyAmountMismatch(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
	}{
		{name: "amount", amount: "1.00", currency: currency},
		{name: "currency", amount: "250.00", currency: "USD"},
		{name: "not a number", amount: "abc", currency: currency},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			ctx := context.Background()

			alerter := mock.NewMockAlerter(ctrl)
			d := newDeps(t, ctrl, func(c *depsConfig) { c.alerter = alerter })

			_, err := d.payment.InitiateCheckout(ctx, "ORD-1", moduleID, decimal.MustParse("250"), studentID)
			require.NoError(t, err)

			alerter.EXPECT().Alert(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, alert domain.Alert) error {
					assert.Equal(t, "amount_mismatch", alert.Kind)
					assert.Equal(t, "ORD-1", alert.OrderID)
					return errors.New("queue is down")
				})

			result, err := d.payment.HandleNotify(ctx, signedNotify("ORD-1", test.amount, test.currency, domain.GatewayStatusSuccess))
			require.NoError(t, err)
			assert.Equal(t, domain.NotifyActionIgnored, result.Action)

			payment, err := d.repo.ReadPayment(ctx, "ORD-1")
			require.NoError(t, err)
			assert.Equal(t, domain.PaymentStatusPending, payment.Status)
			assert.Equal(t, "0.00", d.balance(t))
		})
	}
}

func TestService_NotifyTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockRepository(ctrl)
	repo.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ func(context.Context) error) error {
			<-ctx.Done()
			return ctx.Err()
		})

	opts := gatewayOptions(domain.PayoutPolicyNet)
	opts.NotifyTimeout = 20 * time.Millisecond
	s, err := service.NewPaymentService(repo, nil, cache.NewLocal(), mock.NewMockAlerter(ctrl), nil, opts, zap.NewNop())
	require.NoError(t, err)

	_, err = s.HandleNotify(context.Background(), signedNotify("ORD-1", "250.00", currency, domain.GatewayStatusSuccess))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestService_RegisterModule(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d := newDeps(t, ctrl)

	tests := []struct {
		name     string
		module   domain.Module
		expError error
	}{
		{name: "good", module: domain.Module{ID: 1, TutorID: tutorID, Title: "  Chemistry "}},
		{name: "no id", module: domain.Module{TutorID: tutorID, Title: "Chemistry"}, expError: domain.ErrBadRequest},
		{name: "no tutor", module: domain.Module{ID: 2, Title: "Chemistry"}, expError: domain.ErrBadRequest},
		{name: "blank title", module: domain.Module{ID: 2, TutorID: tutorID, Title: "   "}, expError: domain.ErrBadRequest},
		{name: "exists", module: domain.Module{ID: moduleID, TutorID: tutorID, Title: "Physics"}, expError: domain.ErrConflictingData},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			module := test.module
			created, err := d.payment.RegisterModule(context.Background(), &module)
			assert.ErrorIs(t, err, test.expError)
			if test.expError == nil {
				assert.Equal(t, "Chemistry", created.Title)
			}
		})
	}
}

func TestService_Payout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	disburser := mock.NewMockDisburser(ctrl)
	scheduler := mock.NewMockPayoutScheduler(ctrl)
	publisher := mock.NewMockEventPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	d := newDeps(t, ctrl, func(c *depsConfig) {
		c.disburser = disburser
		c.scheduler = scheduler
		c.publisher = publisher
	})
	d.credit(t, "300")
	w := d.admit(t, "300")

	_, err := d.approval.Payout(ctx, w.ID)
	assert.ErrorIs(t, err, domain.ErrWithdrawalNotApproved)

	_, err = d.approval.Decide(ctx, w.ID, domain.WithdrawalStatusApproved, adminID)
	require.NoError(t, err)

	gomock.InOrder(
		disburser.EXPECT().Disburse(gomock.Any(), gomock.Any()).Return(nil, errors.New("bank is down")),
		scheduler.EXPECT().SchedulePayout(w.ID),
	)
	_, err = d.approval.Payout(ctx, w.ID)
	assert.ErrorIs(t, err, domain.ErrDisbursement)

	unpaid, err := d.repo.ListUnpaidWithdrawals(ctx)
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, 1, unpaid[0].PayoutAttempts)
	assert.Equal(t, domain.WithdrawalStatusApproved, unpaid[0].Status)

	disburser.EXPECT().Disburse(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, withdrawal *domain.Withdrawal) (*port.Disbursement, error) {
			assert.Equal(t, w.ID, withdrawal.ID)
			return &port.Disbursement{Reference: "BANK-42"}, nil
		})
	paid, err := d.approval.Payout(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "BANK-42", paid.PayoutReference)
	assert.NotNil(t, paid.PaidOutAt)
	assert.Equal(t, 2, paid.PayoutAttempts)

	again, err := d.approval.Payout(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "BANK-42", again.PayoutReference)

	unpaid, err = d.repo.ListUnpaidWithdrawals(ctx)
	require.NoError(t, err)
	assert.Empty(t, unpaid)
	assert.Equal(t, "0.00", d.balance(t))
}

func TestService_RepositoryErrors(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	type prepareMocks func(repo *mock.MockRepository)

	tests := []struct {
		name     string
		mock     prepareMocks
		call     func(s *service.WalletService) error
		expError error
	}{
		{
			name: "balance of unknown payee",
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().ReadWallet(gomock.Any(), tutorID).Return(nil, domain.ErrDataNotFound)
			},
			call: func(s *service.WalletService) error {
				available, err := s.GetAvailableBalance(ctx, tutorID)
				assert.True(t, available.IsZero())
				return err
			},
		},
		{
			name: "storage failure is hidden",
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().ReadWallet(gomock.Any(), tutorID).Return(nil, errors.New("connection reset"))
			},
			call: func(s *service.WalletService) error {
				_, err := s.GetAvailableBalance(ctx, tutorID)
				return err
			},
			expError: domain.ErrInternal,
		},
		{
			name: "conflict is retried",
			mock: func(repo *mock.MockRepository) {
				gomock.InOrder(
					repo.EXPECT().UpdateWallet(gomock.Any(), tutorID, true, gomock.Any()).
						Return(nil, domain.ErrConcurrencyConflict).Times(2),
					repo.EXPECT().UpdateWallet(gomock.Any(), tutorID, true, gomock.Any()).
						Return(&domain.Wallet{PayeeID: tutorID, Available: decimal.MustParse("5")}, nil),
				)
			},
			call: func(s *service.WalletService) error {
				_, err := s.Credit(ctx, tutorID, decimal.MustParse("5"))
				return err
			},
		},
		{
			name: "conflict retries are bounded",
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().UpdateWallet(gomock.Any(), tutorID, true, gomock.Any()).
					Return(nil, domain.ErrConcurrencyConflict).Times(4)
			},
			call: func(s *service.WalletService) error {
				_, err := s.Credit(ctx, tutorID, decimal.MustParse("5"))
				return err
			},
			expError: domain.ErrConcurrencyConflict,
		},
		{
			name: "summary failure",
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().SummarizeWithdrawals(gomock.Any()).Return(nil, errors.New("syntax error"))
			},
			call: func(s *service.WalletService) error {
				_, err := s.WithdrawalSummary(ctx)
				return err
			},
			expError: domain.ErrInternal,
		},
		{
			name: "page is normalized",
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().ListWithdrawals(gomock.Any(), nil, domain.Page{Number: 1, Size: domain.MaxPageSize}).
					Return(&domain.WithdrawalPage{}, nil)
			},
			call: func(s *service.WalletService) error {
				_, err := s.ListWithdrawals(ctx, domain.Page{Number: -3, Size: 5000})
				return err
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := mock.NewMockRepository(ctrl)
			test.mock(repo)

			s, err := service.NewWalletService(repo, nil, log)
			require.NoError(t, err)

			err = test.call(s)
			if test.expError == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, test.expError)
			}
		})
	}
}

func TestService_AdmitPublishesEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	publisher := mock.NewMockEventPublisher(ctrl)
	d := newDeps(t, ctrl, func(c *depsConfig) { c.publisher = publisher })
	d.credit(t, "50")

	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event domain.Event) error {
			assert.Equal(t, domain.EventWithdrawalAdmitted, event.Type)
			return errors.New("broker unreachable")
		})

	w := d.admit(t, "20")
	assert.Equal(t, domain.WithdrawalStatusPending, w.Status)
	assert.Equal(t, "30.00", d.balance(t))
}

func TestService_CreditAmountScale(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	d := newDeps(t, ctrl)

	_, err := d.wallet.Credit(ctx, tutorID, decimal.MustParse("1.001"))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = d.wallet.Refund(ctx, tutorID, decimal.MustParse("0.009"))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	wallet, err := d.wallet.Credit(ctx, tutorID, decimal.MustParse("1.500"))
	require.NoError(t, err)
	assert.Equal(t, "1.5", wallet.Available.String())
	assert.Equal(t, "1.50", d.balance(t))

	w := d.admit(t, "1.500")
	assert.Equal(t, "1.5", w.Amount.String())
	assert.Equal(t, "0.00", d.balance(t))
}

func TestService_PayoutReleasesStoreBeforeDisbursing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	disburser := mock.NewMockDisburser(ctrl)
	d := newDeps(t, ctrl, func(c *depsConfig) { c.disburser = disburser })
	d.credit(t, "300")
	w := d.admit(t, "300")
	_, err := d.approval.Decide(ctx, w.ID, domain.WithdrawalStatusApproved, adminID)
	require.NoError(t, err)

	disburser.EXPECT().Disburse(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, withdrawal *domain.Withdrawal) (*port.Disbursement, error) {
			done := make(chan error, 1)
			go func() {
				stored, err := d.repo.ReadWithdrawal(context.Background(), withdrawal.ID)
				if err == nil {
					assert.Equal(t, 1, stored.PayoutAttempts)
					assert.Nil(t, stored.PaidOutAt)
					_, err = d.wallet.Credit(context.Background(), 99, decimal.MustParse("5"))
				}
				done <- err
			}()

			select {
			case err := <-done:
				require.NoError(t, err)
			case <-time.After(time.Second):
				t.Error("store is locked while the disbursement channel is called")
			}
			return &port.Disbursement{Reference: "BANK-7"}, nil
		})

	paid, err := d.approval.Payout(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "BANK-7", paid.PayoutReference)
	assert.Equal(t, 1, paid.PayoutAttempts)

	stored, err := d.repo.ReadWithdrawal(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "BANK-7", stored.PayoutReference)
	assert.NotNil(t, stored.PaidOutAt)
}

func TestService_RejectRollsBackOnRefundFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	d := newDeps(t, ctrl, func(c *depsConfig) {
		c.wallet = func(inner port.WalletService) port.WalletService {
			return brokenWallet{WalletService: inner, err: errors.New("wallet row is gone")}
		}
	})
	d.credit(t, "100")
	w := d.admit(t, "100")

	_, err := d.approval.Decide(ctx, w.ID, domain.WithdrawalStatusRejected, adminID)
	assert.ErrorIs(t, err, domain.ErrInternal)

	stored, err := d.repo.ReadWithdrawal(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusPending, stored.Status)
	assert.Nil(t, stored.AdminID)
	assert.Nil(t, stored.DecidedAt)
	assert.Equal(t, "0.00", d.balance(t))

	approved, err := d.approval.Decide(ctx, w.ID, domain.WithdrawalStatusApproved, adminID)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusApproved, approved.Status)
}

func TestService_NotifyRollsBackOnCreditFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	d := newDeps(t, ctrl, func(c *depsConfig) {
		c.wallet = func(inner port.WalletService) port.WalletService {
			return brokenWallet{WalletService: inner, err: errors.New("wallet row is gone")}
		}
	})

	_, err := d.payment.InitiateCheckout(ctx, "ORD-1", moduleID, decimal.MustParse("250"), studentID)
	require.NoError(t, err)

	payload := signedNotify("ORD-1", "250.00", currency, domain.GatewayStatusSuccess)
	result, err := d.payment.HandleNotify(ctx, payload)
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.Nil(t, result)

	payment, err := d.repo.ReadPayment(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
	assert.Equal(t, "0.00", d.balance(t))

	// the gateway redelivers to a healthy instance sharing the same store
	healthy, err := service.NewPaymentService(d.repo, d.wallet, cache.NewLocal(), mock.NewMockAlerter(ctrl), nil,
		gatewayOptions(domain.PayoutPolicyNet), zap.NewNop())
	require.NoError(t, err)

	result, err = healthy.HandleNotify(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, domain.NotifyActionCompleted, result.Action)
	assert.Equal(t, "225.00", d.balance(t))
}

func TestService_UntrustedNotifyAlertsOncePerOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	alerter := mock.NewMockAlerter(ctrl)
	d := newDeps(t, ctrl, func(c *depsConfig) { c.alerter = alerter })

	var orders []string
	alerter.EXPECT().Alert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, alert domain.Alert) error {
			assert.Equal(t, "untrusted_callback", alert.Kind)
			orders = append(orders, alert.OrderID)
			return nil
		}).Times(2)

	for i := 0; i < 5; i++ {
		forged := signedNotify("ORD-1", "25000.00", currency, domain.GatewayStatusSuccess)
		forged.MD5Sig = "00000000000000000000000000000000"
		_, err := d.payment.HandleNotify(ctx, forged)
		assert.ErrorIs(t, err, domain.ErrUntrustedCallback)
	}

	forged := signedNotify("ORD-2", "10.00", currency, domain.GatewayStatusSuccess)
	forged.MerchantID = "999"
	_, err := d.payment.HandleNotify(ctx, forged)
	assert.ErrorIs(t, err, domain.ErrUntrustedCallback)

	assert.Equal(t, []string{"ORD-1", "ORD-2"}, orders)
}

func TestService_AlertDedupeFailsOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	notifyCache := mock.NewMockNotifyCache(ctrl)
	notifyCache.EXPECT().ClaimAlert(gomock.Any(), "untrusted_callback:ORD-1", gomock.Any()).
		Return(false, errors.New("connection refused")).Times(2)
	alerter := mock.NewMockAlerter(ctrl)
	alerter.EXPECT().Alert(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	d := newDeps(t, ctrl, func(c *depsConfig) {
		c.cache = notifyCache
		c.alerter = alerter
	})

	for i := 0; i < 2; i++ {
		forged := signedNotify("ORD-1", "250.00", currency, domain.GatewayStatusSuccess)
		forged.MD5Sig = ""
		_, err := d.payment.HandleNotify(ctx, forged)
		assert.ErrorIs(t, err, domain.ErrUntrustedCallback)
	}
}
