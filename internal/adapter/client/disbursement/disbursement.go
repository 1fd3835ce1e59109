package disbursement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MikeRez0/tutorpay/internal/adapter/config"
	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/port"
	"github.com/MikeRez0/tutorpay/internal/core/utils"
	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
)

const (
	defaultMaxElapsed = 30 * time.Second
	defaultRetryAfter = 10 * time.Second
	payoutsPath       = "/api/payouts"
)

// Client sends approved withdrawals to the external payout channel. The
// withdrawal id travels as Idempotency-Key so a retried request never pays twice.
type Client struct {
	logger     *zap.Logger
	endpoint   string
	apiKey     string
	httpClient *http.Client

	initialInterval time.Duration
	maxElapsed      time.Duration
}

var _ port.Disburser = (*Client)(nil)

func NewClient(cfg *config.Disbursement, log *zap.Logger) (*Client, error) {
	if cfg.HostString == "" {
		return nil, errors.New("disbursement address is not configured")
	}

	host := strings.TrimRight(cfg.HostString, "/")
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}

	maxElapsed := cfg.MaxElapsed
	if maxElapsed <= 0 {
		maxElapsed = defaultMaxElapsed
	}

	return &Client{
		logger:          log,
		endpoint:        host + payoutsPath,
		apiKey:          cfg.APIKey,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		initialInterval: 500 * time.Millisecond,
		maxElapsed:      maxElapsed,
	}, nil
}

type payoutRequest struct {
	WithdrawalID  string `json:"withdrawal_id"`
	TutorID       uint64 `json:"tutor_id"`
	Amount        string `json:"amount"`
	Method        string `json:"method"`
	BankName      string `json:"bank_name,omitempty"`
	Branch        string `json:"branch,omitempty"`
	AccountNumber string `json:"account_number"`
	AccountHolder string `json:"account_holder"`
}

type payoutResponse struct {
	Reference string `json:"reference"`
}

type errPayoutRequest struct {
	StatusCode int
	RetryAfter time.Duration
}

func (e *errPayoutRequest) Error() string {
	return fmt.Sprintf("payout channel responded %d", e.StatusCode)
}

func (e *errPayoutRequest) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

func (c *Client) Disburse(ctx context.Context, withdrawal *domain.Withdrawal) (*port.Disbursement, error) {
	body, err := json.Marshal(payoutRequest{
		WithdrawalID:  withdrawal.ID.String(),
		TutorID:       withdrawal.TutorID,
		Amount:        utils.FormatAmount(withdrawal.Amount),
		Method:        string(withdrawal.Method),
		BankName:      withdrawal.Destination.BankName,
		Branch:        withdrawal.Destination.Branch,
		AccountNumber: withdrawal.Destination.AccountNumber,
		AccountHolder: withdrawal.Destination.AccountHolder,
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding payout request: %w", err)
	}

	log := c.logger.With(zap.Stringer("withdrawal", withdrawal.ID))

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialInterval
	policy.MaxElapsedTime = c.maxElapsed

	var result *port.Disbursement
	err = backoff.Retry(func() error {
		d, err := c.requestPayout(ctx, withdrawal.ID.String(), body)
		if err == nil {
			result = d
			return nil
		}

		var reqErr *errPayoutRequest
		if errors.As(err, &reqErr) {
			if !reqErr.retryable() {
				return backoff.Permanent(err)
			}
			if reqErr.RetryAfter > 0 {
				log.Debug("Payout channel asked to slow down", zap.Duration("retry_after", reqErr.RetryAfter))
				if err := sleep(ctx, reqErr.RetryAfter); err != nil {
					return backoff.Permanent(err)
				}
			}
		}
		log.Warn("Payout request failed, retrying", zap.Error(err))
		return err
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return nil, err
	}

	log.Debug("Payout accepted", zap.String("reference", result.Reference))
	return result, nil
}

func (c *Client) requestPayout(ctx context.Context, idempotencyKey string, body []byte) (*port.Disbursement, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error on %s : %w", c.endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error %s : %w", c.endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		reqErr := &errPayoutRequest{StatusCode: resp.StatusCode}
		if resp.StatusCode == http.StatusTooManyRequests {
			reqErr.RetryAfter = defaultRetryAfter
			if sec, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				reqErr.RetryAfter = time.Duration(sec) * time.Second
			}
		}
		return nil, reqErr
	}

	var result payoutResponse
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		return nil, fmt.Errorf("error on response decode: %w", err)
	}
	if result.Reference == "" {
		return nil, errors.New("payout channel returned an empty reference")
	}

	return &port.Disbursement{Reference: result.Reference}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Simulated accepts every payout without calling out. It backs DEV runs that
// have no payout channel configured.
type Simulated struct {
	logger *zap.Logger
}

func NewSimulated(log *zap.Logger) *Simulated {
	return &Simulated{logger: log}
}

func (s *Simulated) Disburse(_ context.Context, withdrawal *domain.Withdrawal) (*port.Disbursement, error) {
	s.logger.Info("Simulated payout", zap.Stringer("withdrawal", withdrawal.ID), zap.Stringer("amount", withdrawal.Amount))
	return &port.Disbursement{Reference: "SIM-" + withdrawal.ID.String()}, nil
}
