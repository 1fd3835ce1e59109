// Package memory is a process-local implementation of port.Repository.
// A transaction holds the store mutex until it ends and is rolled back by
// restoring a snapshot, so units of work are fully serialized.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/port"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

type Repository struct {
	mu          sync.Mutex
	wallets     map[uint64]domain.Wallet
	payments    map[string]domain.Payment
	withdrawals map[uuid.UUID]domain.Withdrawal
	modules     map[uint64]domain.Module
}

var _ port.Repository = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{
		wallets:     make(map[uint64]domain.Wallet),
		payments:    make(map[string]domain.Payment),
		withdrawals: make(map[uuid.UUID]domain.Withdrawal),
		modules:     make(map[uint64]domain.Module),
	}
}

type txKey struct{}

type snapshot struct {
	wallets     map[uint64]domain.Wallet
	payments    map[string]domain.Payment
	withdrawals map[uuid.UUID]domain.Withdrawal
	modules     map[uint64]domain.Module
}

func (r *Repository) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Repository)
	return ok && owner == r
}

func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.snapshot()
	err := fn(context.WithValue(ctx, txKey{}, r))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

// lock takes the store mutex unless ctx already belongs to a transaction.
func (r *Repository) lock(ctx context.Context) func() {
	if r.inTx(ctx) {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *Repository) snapshot() snapshot {
	s := snapshot{
		wallets:     make(map[uint64]domain.Wallet, len(r.wallets)),
		payments:    make(map[string]domain.Payment, len(r.payments)),
		withdrawals: make(map[uuid.UUID]domain.Withdrawal, len(r.withdrawals)),
		modules:     make(map[uint64]domain.Module, len(r.modules)),
	}
	for k, v := range r.wallets {
		s.wallets[k] = v
	}
	for k, v := range r.payments {
		s.payments[k] = v
	}
	for k, v := range r.withdrawals {
		s.withdrawals[k] = cloneWithdrawal(v)
	}
	for k, v := range r.modules {
		s.modules[k] = v
	}
	return s
}

func (r *Repository) restore(s snapshot) {
	r.wallets = s.wallets
	r.payments = s.payments
	r.withdrawals = s.withdrawals
	r.modules = s.modules
}

func (r *Repository) ReadWallet(ctx context.Context, payeeID uint64) (*domain.Wallet, error) {
	defer r.lock(ctx)()

	w, ok := r.wallets[payeeID]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	return &w, nil
}

func (r *Repository) UpdateWallet(ctx context.Context, payeeID uint64, create bool,
	updateFn port.UpdateWalletFn) (*domain.Wallet, error) {
	defer r.lock(ctx)()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, ok := r.wallets[payeeID]
	if !ok {
		if !create {
			return nil, domain.ErrDataNotFound
		}
		w = domain.Wallet{PayeeID: payeeID, Available: decimal.Zero}
	}

	err := updateFn(&w)
	if err != nil {
		if errors.Is(err, domain.ErrNoUpdatedData) {
			return &w, err
		}
		return nil, err
	}
	if w.Available.IsNeg() {
		return nil, errors.New("wallet balance must not be negative")
	}

	r.wallets[payeeID] = w
	return &w, nil
}

func (r *Repository) CreatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	defer r.lock(ctx)()

	if _, ok := r.payments[payment.OrderID]; ok {
		return nil, domain.ErrConflictingData
	}
	r.payments[payment.OrderID] = *payment
	return payment, nil
}

func (r *Repository) ReadPayment(ctx context.Context, orderID string) (*domain.Payment, error) {
	defer r.lock(ctx)()

	p, ok := r.payments[orderID]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	return &p, nil
}

func (r *Repository) UpdatePayment(ctx context.Context, orderID string,
	updateFn port.UpdatePaymentFn) (*domain.Payment, error) {
	defer r.lock(ctx)()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, ok := r.payments[orderID]
	if !ok {
		return nil, domain.ErrDataNotFound
	}

	err := updateFn(&p)
	if err != nil {
		if errors.Is(err, domain.ErrNoUpdatedData) {
			return &p, err
		}
		return nil, err
	}

	r.payments[orderID] = p
	return &p, nil
}

func (r *Repository) SumPayments(ctx context.Context, status domain.PaymentStatus) (decimal.Decimal, error) {
	defer r.lock(ctx)()

	sum := decimal.Zero
	for _, p := range r.payments {
		if p.Status != status {
			continue
		}
		var err error
		sum, err = sum.Add(p.Amount)
		if err != nil {
			return decimal.Zero, err
		}
	}
	return sum, nil
}

func (r *Repository) CreateWithdrawal(ctx context.Context, withdrawal *domain.Withdrawal) (*domain.Withdrawal, error) {
	defer r.lock(ctx)()

	if _, ok := r.withdrawals[withdrawal.ID]; ok {
		return nil, domain.ErrConflictingData
	}
	r.withdrawals[withdrawal.ID] = cloneWithdrawal(*withdrawal)
	return withdrawal, nil
}

func (r *Repository) ReadWithdrawal(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error) {
	defer r.lock(ctx)()

	w, ok := r.withdrawals[id]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	w = cloneWithdrawal(w)
	return &w, nil
}

func (r *Repository) UpdateWithdrawal(ctx context.Context, id uuid.UUID,
	updateFn port.UpdateWithdrawalFn) (*domain.Withdrawal, error) {
	defer r.lock(ctx)()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, ok := r.withdrawals[id]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	w = cloneWithdrawal(w)

	err := updateFn(&w)
	if err != nil {
		if errors.Is(err, domain.ErrNoUpdatedData) {
			return &w, err
		}
		return nil, err
	}

	r.withdrawals[id] = cloneWithdrawal(w)
	return &w, nil
}

// newest first, as the postgres adapter orders them
func (r *Repository) sortedWithdrawals(filter func(*domain.Withdrawal) bool) []*domain.Withdrawal {
	list := make([]*domain.Withdrawal, 0)
	for _, w := range r.withdrawals {
		w := cloneWithdrawal(w)
		if filter(&w) {
			list = append(list, &w)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID.String() > list[j].ID.String()
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

func (r *Repository) ListWithdrawals(ctx context.Context, tutorID *uint64, page domain.Page) (*domain.WithdrawalPage, error) {
	defer r.lock(ctx)()

	all := r.sortedWithdrawals(func(w *domain.Withdrawal) bool {
		return tutorID == nil || w.TutorID == *tutorID
	})

	from := page.Offset()
	if from > len(all) {
		from = len(all)
	}
	to := from + page.Size
	if to > len(all) {
		to = len(all)
	}

	return &domain.WithdrawalPage{
		Items: all[from:to],
		Total: len(all),
		Page:  page,
	}, nil
}

func (r *Repository) ListUnpaidWithdrawals(ctx context.Context) ([]*domain.Withdrawal, error) {
	defer r.lock(ctx)()

	return r.sortedWithdrawals(func(w *domain.Withdrawal) bool {
		return w.Status == domain.WithdrawalStatusApproved && !w.PaidOut() && w.PayoutAttempts > 0
	}), nil
}

func (r *Repository) SummarizeWithdrawals(ctx context.Context) (*domain.WithdrawalSummary, error) {
	defer r.lock(ctx)()

	summary := domain.WithdrawalSummary{PendingTotal: decimal.Zero, ApprovedTotal: decimal.Zero}
	for _, w := range r.withdrawals {
		var err error
		switch w.Status {
		case domain.WithdrawalStatusPending:
			summary.PendingCount++
			summary.PendingTotal, err = summary.PendingTotal.Add(w.Amount)
		case domain.WithdrawalStatusApproved:
			summary.ApprovedTotal, err = summary.ApprovedTotal.Add(w.Amount)
		}
		if err != nil {
			return nil, err
		}
	}
	return &summary, nil
}

func (r *Repository) CreateModule(ctx context.Context, module *domain.Module) (*domain.Module, error) {
	defer r.lock(ctx)()

	if _, ok := r.modules[module.ID]; ok {
		return nil, domain.ErrConflictingData
	}
	r.modules[module.ID] = *module
	return module, nil
}

func (r *Repository) ReadModule(ctx context.Context, moduleID uint64) (*domain.Module, error) {
	defer r.lock(ctx)()

	m, ok := r.modules[moduleID]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	return &m, nil
}

func cloneWithdrawal(w domain.Withdrawal) domain.Withdrawal {
	if w.AdminID != nil {
		v := *w.AdminID
		w.AdminID = &v
	}
	if w.DecidedAt != nil {
		v := *w.DecidedAt
		w.DecidedAt = &v
	}
	if w.PaidOutAt != nil {
		v := *w.PaidOutAt
		w.PaidOutAt = &v
	}
	return w
}
