package repository

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/MikeRez0/tutorpay/internal/adapter/storage"
	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/port"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository struct {
	db *storage.DB
}

var _ port.Repository = (*Repository)(nil)

func NewRepository(db *storage.DB) (*Repository, error) {
	return &Repository{db: db}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrDataNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return domain.ErrConflictingData
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
			return domain.ErrConcurrencyConflict
		}
	}
	return err
}

func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return mapError(r.db.WithinTx(ctx, fn))
}

// updateLocked runs lock, updateFn and write in one transaction. A
// domain.ErrNoUpdatedData from updateFn skips write and is returned as is.
func (r *Repository) updateLocked(ctx context.Context,
	lock func(ctx context.Context, q storage.Querier) error,
	updateFn func() error,
	write func(ctx context.Context, q storage.Querier) error,
) error {
	var skipped bool
	err := r.db.WithinTx(ctx, func(ctx context.Context) error {
		q := r.db.Conn(ctx)
		if err := lock(ctx, q); err != nil {
			return err
		}
		if err := updateFn(); err != nil {
			if errors.Is(err, domain.ErrNoUpdatedData) {
				skipped = true
				return nil
			}
			return err
		}
		return write(ctx, q)
	})
	if err != nil {
		return mapError(err)
	}
	if skipped {
		return domain.ErrNoUpdatedData
	}
	return nil
}

func (r *Repository) queryRow(ctx context.Context, statement sq.Sqlizer, dest ...any) error {
	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}
	return mapError(r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(dest...))
}

func (r *Repository) exec(ctx context.Context, q storage.Querier, statement sq.Sqlizer) error {
	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, sql, args...)
	return mapError(err)
}

// * Wallet

func (r *Repository) selectWallet() sq.SelectBuilder {
	return r.db.QueryBuilder.
		Select("payee_id", "available", "updated_at").
		From("wallets")
}

func scanWallet(row scanner, w *domain.Wallet) error {
	return row.Scan(&w.PayeeID, &w.Available, &w.UpdatedAt)
}

func (r *Repository) ReadWallet(ctx context.Context, payeeID uint64) (*domain.Wallet, error) {
	sql, args, err := r.selectWallet().Where(sq.Eq{"payee_id": payeeID}).ToSql()
	if err != nil {
		return nil, err
	}

	wallet := domain.Wallet{}
	err = scanWallet(r.db.Conn(ctx).QueryRow(ctx, sql, args...), &wallet)
	if err != nil {
		return nil, mapError(err)
	}
	return &wallet, nil
}

func (r *Repository) UpdateWallet(ctx context.Context, payeeID uint64, create bool,
	updateFn port.UpdateWalletFn) (*domain.Wallet, error) {
	wallet := domain.Wallet{}

	err := r.updateLocked(ctx,
		func(ctx context.Context, q storage.Querier) error {
			if create {
				err := r.exec(ctx, q, r.db.QueryBuilder.
					Insert("wallets").
					Columns("payee_id", "available", "updated_at").
					Values(payeeID, decimal.Zero, sq.Expr("now()")).
					Suffix("ON CONFLICT (payee_id) DO NOTHING"))
				if err != nil {
					return err
				}
			}

			sql, args, err := r.selectWallet().
				Where(sq.Eq{"payee_id": payeeID}).
				Suffix("FOR UPDATE").
				ToSql()
			if err != nil {
				return err
			}
			return scanWallet(q.QueryRow(ctx, sql, args...), &wallet)
		},
		func() error { return updateFn(&wallet) },
		func(ctx context.Context, q storage.Querier) error {
			return r.exec(ctx, q, r.db.QueryBuilder.
				Update("wallets").
				Set("available", wallet.Available).
				Set("updated_at", wallet.UpdatedAt).
				Where(sq.Eq{"payee_id": payeeID}))
		})
	if err != nil && !errors.Is(err, domain.ErrNoUpdatedData) {
		return nil, err
	}

	return &wallet, err
}

// * Payment

var paymentColumns = []string{
	"order_id", "payee_id", "payer_id", "module_id", "amount", "currency", "status", "created_at", "updated_at",
}

func scanPayment(row scanner, p *domain.Payment) error {
	return row.Scan(
		&p.OrderID,
		&p.PayeeID,
		&p.PayerID,
		&p.ModuleID,
		&p.Amount,
		&p.Currency,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *Repository) CreatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	statement := r.db.QueryBuilder.Insert("payments").
		Columns(paymentColumns...).
		Values(
			payment.OrderID,
			payment.PayeeID,
			payment.PayerID,
			payment.ModuleID,
			payment.Amount,
			payment.Currency,
			payment.Status,
			payment.CreatedAt,
			payment.UpdatedAt,
		)

	err := r.exec(ctx, r.db.Conn(ctx), statement)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *Repository) ReadPayment(ctx context.Context, orderID string) (*domain.Payment, error) {
	sql, args, err := r.db.QueryBuilder.
		Select(paymentColumns...).
		From("payments").
		Where(sq.Eq{"order_id": orderID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	payment := domain.Payment{}
	err = scanPayment(r.db.Conn(ctx).QueryRow(ctx, sql, args...), &payment)
	if err != nil {
		return nil, mapError(err)
	}
	return &payment, nil
}

func (r *Repository) UpdatePayment(ctx context.Context, orderID string,
	updateFn port.UpdatePaymentFn) (*domain.Payment, error) {
	payment := domain.Payment{}

	err := r.updateLocked(ctx,
		func(ctx context.Context, q storage.Querier) error {
			sql, args, err := r.db.QueryBuilder.
				Select(paymentColumns...).
				From("payments").
				Where(sq.Eq{"order_id": orderID}).
				Suffix("FOR UPDATE").
				ToSql()
			if err != nil {
				return err
			}
			return scanPayment(q.QueryRow(ctx, sql, args...), &payment)
		},
		func() error { return updateFn(&payment) },
		func(ctx context.Context, q storage.Querier) error {
			return r.exec(ctx, q, r.db.QueryBuilder.
				Update("payments").
				Set("status", payment.Status).
				Set("updated_at", payment.UpdatedAt).
				Where(sq.Eq{"order_id": orderID}))
		})
	if err != nil && !errors.Is(err, domain.ErrNoUpdatedData) {
		return nil, err
	}

	return &payment, err
}

func (r *Repository) SumPayments(ctx context.Context, status domain.PaymentStatus) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.queryRow(ctx, r.db.QueryBuilder.
		Select("COALESCE(SUM(amount), 0)").
		From("payments").
		Where(sq.Eq{"status": status}), &sum)
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// * Withdrawal

var withdrawalColumns = []string{
	"id", "tutor_id", "amount", "method",
	"bank_name", "branch", "account_number", "account_holder",
	"status", "admin_id", "created_at", "decided_at",
	"payout_reference", "paid_out_at", "payout_attempts",
}

func scanWithdrawal(row scanner, w *domain.Withdrawal) error {
	return row.Scan(
		&w.ID,
		&w.TutorID,
		&w.Amount,
		&w.Method,
		&w.Destination.BankName,
		&w.Destination.Branch,
		&w.Destination.AccountNumber,
		&w.Destination.AccountHolder,
		&w.Status,
		&w.AdminID,
		&w.CreatedAt,
		&w.DecidedAt,
		&w.PayoutReference,
		&w.PaidOutAt,
		&w.PayoutAttempts,
	)
}

func (r *Repository) selectWithdrawals() sq.SelectBuilder {
	return r.db.QueryBuilder.Select(withdrawalColumns...).From("withdrawals")
}

func (r *Repository) listWithdrawals(ctx context.Context, statement sq.SelectBuilder) ([]*domain.Withdrawal, error) {
	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	list := make([]*domain.Withdrawal, 0)
	for rows.Next() {
		w := domain.Withdrawal{}
		if err := scanWithdrawal(rows, &w); err != nil {
			return nil, err
		}
		list = append(list, &w)
	}

	err = rows.Err()
	if err != nil {
		return nil, mapError(err)
	}

	return list, nil
}

func (r *Repository) CreateWithdrawal(ctx context.Context, withdrawal *domain.Withdrawal) (*domain.Withdrawal, error) {
	statement := r.db.QueryBuilder.Insert("withdrawals").
		Columns(withdrawalColumns...).
		Values(
			withdrawal.ID,
			withdrawal.TutorID,
			withdrawal.Amount,
			withdrawal.Method,
			withdrawal.Destination.BankName,
			withdrawal.Destination.Branch,
			withdrawal.Destination.AccountNumber,
			withdrawal.Destination.AccountHolder,
			withdrawal.Status,
			withdrawal.AdminID,
			withdrawal.CreatedAt,
			withdrawal.DecidedAt,
			withdrawal.PayoutReference,
			withdrawal.PaidOutAt,
			withdrawal.PayoutAttempts,
		)

	err := r.exec(ctx, r.db.Conn(ctx), statement)
	if err != nil {
		return nil, err
	}
	return withdrawal, nil
}

func (r *Repository) ReadWithdrawal(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error) {
	sql, args, err := r.selectWithdrawals().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	withdrawal := domain.Withdrawal{}
	err = scanWithdrawal(r.db.Conn(ctx).QueryRow(ctx, sql, args...), &withdrawal)
	if err != nil {
		return nil, mapError(err)
	}
	return &withdrawal, nil
}

func (r *Repository) UpdateWithdrawal(ctx context.Context, id uuid.UUID,
	updateFn port.UpdateWithdrawalFn) (*domain.Withdrawal, error) {
	withdrawal := domain.Withdrawal{}

	err := r.updateLocked(ctx,
		func(ctx context.Context, q storage.Querier) error {
			sql, args, err := r.selectWithdrawals().
				Where(sq.Eq{"id": id}).
				Suffix("FOR UPDATE").
				ToSql()
			if err != nil {
				return err
			}
			return scanWithdrawal(q.QueryRow(ctx, sql, args...), &withdrawal)
		},
		func() error { return updateFn(&withdrawal) },
		func(ctx context.Context, q storage.Querier) error {
			return r.exec(ctx, q, r.db.QueryBuilder.
				Update("withdrawals").
				Set("status", withdrawal.Status).
				Set("admin_id", withdrawal.AdminID).
				Set("decided_at", withdrawal.DecidedAt).
				Set("payout_reference", withdrawal.PayoutReference).
				Set("paid_out_at", withdrawal.PaidOutAt).
				Set("payout_attempts", withdrawal.PayoutAttempts).
				Where(sq.Eq{"id": id}))
		})
	if err != nil && !errors.Is(err, domain.ErrNoUpdatedData) {
		return nil, err
	}

	return &withdrawal, err
}

func (r *Repository) ListWithdrawals(ctx context.Context, tutorID *uint64, page domain.Page) (*domain.WithdrawalPage, error) {
	filter := sq.And{}
	if tutorID != nil {
		filter = append(filter, sq.Eq{"tutor_id": *tutorID})
	}

	var total int
	err := r.queryRow(ctx, r.db.QueryBuilder.
		Select("COUNT(*)").
		From("withdrawals").
		Where(filter), &total)
	if err != nil {
		return nil, err
	}

	items, err := r.listWithdrawals(ctx, r.selectWithdrawals().
		Where(filter).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset())))
	if err != nil {
		return nil, err
	}

	return &domain.WithdrawalPage{
		Items: items,
		Total: total,
		Page:  page,
	}, nil
}

func (r *Repository) ListUnpaidWithdrawals(ctx context.Context) ([]*domain.Withdrawal, error) {
	return r.listWithdrawals(ctx, r.selectWithdrawals().
		Where(sq.Eq{"status": domain.WithdrawalStatusApproved, "paid_out_at": nil}).
		Where(sq.Gt{"payout_attempts": 0}).
		OrderBy("created_at DESC", "id DESC"))
}

func (r *Repository) SummarizeWithdrawals(ctx context.Context) (*domain.WithdrawalSummary, error) {
	summary := domain.WithdrawalSummary{}

	err := r.queryRow(ctx, r.db.QueryBuilder.
		Select().
		Column(sq.Expr("COALESCE(SUM(amount) FILTER (WHERE status = ?), 0)", domain.WithdrawalStatusPending)).
		Column(sq.Expr("COALESCE(SUM(amount) FILTER (WHERE status = ?), 0)", domain.WithdrawalStatusApproved)).
		Column(sq.Expr("COUNT(*) FILTER (WHERE status = ?)", domain.WithdrawalStatusPending)).
		From("withdrawals"),
		&summary.PendingTotal, &summary.ApprovedTotal, &summary.PendingCount)
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

// * Module

func (r *Repository) ReadModule(ctx context.Context, moduleID uint64) (*domain.Module, error) {
	module := domain.Module{}
	err := r.queryRow(ctx, r.db.QueryBuilder.
		Select("id", "tutor_id", "title").
		From("modules").
		Where(sq.Eq{"id": moduleID}),
		&module.ID, &module.TutorID, &module.Title)
	if err != nil {
		return nil, err
	}
	return &module, nil
}

// CreateModule registers a module so checkouts can resolve its tutor.
func (r *Repository) CreateModule(ctx context.Context, module *domain.Module) (*domain.Module, error) {
	err := r.exec(ctx, r.db.Conn(ctx), r.db.QueryBuilder.
		Insert("modules").
		Columns("id", "tutor_id", "title").
		Values(module.ID, module.TutorID, module.Title))
	if err != nil {
		return nil, err
	}
	return module, nil
}
