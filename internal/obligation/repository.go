package obligation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/platform/db"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// Repository defines obligation data access. The engine only ever consumes
// this contract; the pgx implementation below is one collaborator behind it.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	List(ctx context.Context, req ListRequest) ([]Obligation, error)
	Get(ctx context.Context, id int64) (Obligation, error)
	ListEvents(ctx context.Context, obligationID int64) ([]PaymentEvent, error)
}

// TxRepository defines mutations within a transaction.
type TxRepository interface {
	Create(ctx context.Context, o Obligation) (int64, error)
	Update(ctx context.Context, o Obligation) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context, side Side) error
	AppendEvent(ctx context.Context, ev PaymentEvent) error
}

var _ Repository = (*pgRepository)(nil)
var _ TxRepository = (*pgTxRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx})
	})
}

const obligationColumns = `
	o.id, o.side, o.description, o.counterparty_id,
	COALESCE(c.name, ''), o.category_id, COALESCE(cat.name, ''),
	o.account_id, o.kind, o.status,
	o.total_amount::text, o.paid_amount::text,
	o.entry_date, o.due_date, o.payment_date,
	o.installment_num, o.total_installments,
	o.reference, o.notes, o.is_fixed_cost,
	o.created_at, o.updated_at`

const obligationJoins = `
	FROM obligations o
	LEFT JOIN counterparties c ON c.id = o.counterparty_id
	LEFT JOIN categories cat ON cat.id = o.category_id`

func (r *pgRepository) List(ctx context.Context, req ListRequest) ([]Obligation, error) {
	query := `SELECT` + obligationColumns + obligationJoins + `
		WHERE ($1 = '' OR o.side = $1)
		  AND ($2 = '' OR o.status = $2)
		ORDER BY o.due_date, o.id`
	args := []any{string(req.Side), string(req.Status)}
	if req.Limit > 0 {
		query += ` LIMIT $3`
		args = append(args, req.Limit)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("obligation: list: %w", err)
	}
	defer rows.Close()

	var out []Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Obligation, error) {
	query := `SELECT` + obligationColumns + obligationJoins + ` WHERE o.id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	o, err := scanObligation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Obligation{}, ErrNotFound
	}
	return o, err
}

func (r *pgRepository) ListEvents(ctx context.Context, obligationID int64) ([]PaymentEvent, error) {
	query := `
		SELECT id, obligation_id, from_status, to_status, amount::text, occurred_at
		FROM obligation_events
		WHERE obligation_id = $1
		ORDER BY occurred_at, id`
	rows, err := r.pool.Query(ctx, query, obligationID)
	if err != nil {
		return nil, fmt.Errorf("obligation: list events: %w", err)
	}
	defer rows.Close()

	var out []PaymentEvent
	for rows.Next() {
		var ev PaymentEvent
		var amount string
		if err := rows.Scan(&ev.ID, &ev.ObligationID, &ev.FromStatus, &ev.ToStatus, &amount, &ev.OccurredAt); err != nil {
			return nil, err
		}
		ev.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("obligation: parse event amount: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

type pgTxRepository struct {
	tx pgx.Tx
}

func (t *pgTxRepository) Create(ctx context.Context, o Obligation) (int64, error) {
	query := `
		INSERT INTO obligations (
			side, description, counterparty_id, category_id, account_id,
			kind, status, total_amount, paid_amount,
			entry_date, due_date, payment_date,
			installment_num, total_installments,
			reference, notes, is_fixed_cost, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,NOW(),NOW())
		RETURNING id`
	var id int64
	err := t.tx.QueryRow(ctx, query,
		string(o.Side), o.Description, o.CounterpartyID,
		int8Ptr(o.CategoryID), int8Ptr(o.AccountID),
		string(o.Kind), string(o.Status),
		o.TotalAmount.String(), o.PaidAmount.String(),
		o.EntryDate, o.DueDate, timestampPtr(o.PaymentDate),
		o.InstallmentNum, o.TotalInstallment,
		o.Reference, o.Notes, o.IsFixedCost,
	).Scan(&id)
	if err != nil {
		return 0, mapConstraint(fmt.Errorf("obligation: create: %w", err))
	}
	return id, nil
}

func (t *pgTxRepository) Update(ctx context.Context, o Obligation) error {
	query := `
		UPDATE obligations SET
			description = $2, counterparty_id = $3, category_id = $4,
			account_id = $5, status = $6, total_amount = $7, paid_amount = $8,
			entry_date = $9, due_date = $10, payment_date = $11,
			reference = $12, notes = $13, is_fixed_cost = $14, updated_at = NOW()
		WHERE id = $1`
	tag, err := t.tx.Exec(ctx, query,
		o.ID, o.Description, o.CounterpartyID,
		int8Ptr(o.CategoryID), int8Ptr(o.AccountID),
		string(o.Status), o.TotalAmount.String(), o.PaidAmount.String(),
		o.EntryDate, o.DueDate, timestampPtr(o.PaymentDate),
		o.Reference, o.Notes, o.IsFixedCost,
	)
	if err != nil {
		return mapConstraint(fmt.Errorf("obligation: update: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTxRepository) Delete(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM obligations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("obligation: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTxRepository) DeleteAll(ctx context.Context, side Side) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM obligations WHERE side = $1`, string(side)); err != nil {
		return fmt.Errorf("obligation: delete all: %w", err)
	}
	return nil
}

func (t *pgTxRepository) AppendEvent(ctx context.Context, ev PaymentEvent) error {
	query := `
		INSERT INTO obligation_events (id, obligation_id, from_status, to_status, amount, occurred_at)
		VALUES ($1,$2,$3,$4,$5,$6)`
	if _, err := t.tx.Exec(ctx, query,
		ev.ID, ev.ObligationID, string(ev.FromStatus), string(ev.ToStatus),
		ev.Amount.String(), ev.OccurredAt,
	); err != nil {
		return mapConstraint(fmt.Errorf("obligation: append event: %w", err))
	}
	return nil
}

func scanObligation(row pgx.Row) (Obligation, error) {
	var o Obligation
	var categoryID, accountID pgtype.Int8
	var paymentDate pgtype.Timestamptz
	var total, paid string
	err := row.Scan(
		&o.ID, &o.Side, &o.Description, &o.CounterpartyID,
		&o.CounterpartyName, &categoryID, &o.CategoryName,
		&accountID, &o.Kind, &o.Status,
		&total, &paid,
		&o.EntryDate, &o.DueDate, &paymentDate,
		&o.InstallmentNum, &o.TotalInstallment,
		&o.Reference, &o.Notes, &o.IsFixedCost,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return Obligation{}, err
	}
	if categoryID.Valid {
		o.CategoryID = &categoryID.Int64
	}
	if accountID.Valid {
		o.AccountID = &accountID.Int64
	}
	if paymentDate.Valid {
		pd := paymentDate.Time
		o.PaymentDate = &pd
	}
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return Obligation{}, fmt.Errorf("obligation: parse total: %w", err)
	}
	if o.PaidAmount, err = decimal.NewFromString(paid); err != nil {
		return Obligation{}, fmt.Errorf("obligation: parse paid: %w", err)
	}
	return o, nil
}

func int8Ptr(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}

func timestampPtr(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName != "" {
		return fmt.Errorf("%w: %s", shared.ErrConflict, pgErr.ConstraintName)
	}
	return err
}
