package expense

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/labcore/lis/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type expenseRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &expenseRepoPG{pool: pool}
}

func (r *expenseRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// amount travels as text so NUMERIC keeps its exact scale.
const expenseCols = `id, date, description, amount::text, created_at, updated_at`

func scanExpense(row pgx.Row) (*Expense, error) {
	var (
		e      Expense
		amount string
	)
	err := row.Scan(&e.ID, &e.Date, &e.Description, &amount, &e.CreatedAt, &e.UpdatedAt)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *expenseRepoPG) Create(ctx context.Context, e *Expense) error {
	e.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO expense (id, date, description, amount)
		VALUES ($1, $2, $3, $4::numeric)
		RETURNING created_at, updated_at`,
		e.ID, e.Date, e.Description, e.Amount.String(),
	).Scan(&e.CreatedAt, &e.UpdatedAt)
}

func (r *expenseRepoPG) Update(ctx context.Context, e *Expense) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE expense SET date = $2, description = $3, amount = $4::numeric, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		e.ID, e.Date, e.Description, e.Amount.String(),
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	return err
}

func (r *expenseRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM expense WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *expenseRepoPG) List(ctx context.Context, from, to *time.Time) ([]*Expense, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+expenseCols+` FROM expense
		WHERE ($1::timestamptz IS NULL OR date >= $1)
		  AND ($2::timestamptz IS NULL OR date <= $2)
		ORDER BY date DESC, created_at DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
