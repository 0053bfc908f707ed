package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labcore/lis/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type inventoryRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &inventoryRepoPG{pool: pool}
}

func (r *inventoryRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const itemCols = `id, item_code, item_name, description, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.ItemCode, &it.ItemName, &it.Description, &it.CreatedAt, &it.UpdatedAt)
	if db.IsNoRows(err) {
		return nil, ErrItemNotFound
	}
	return &it, err
}

func (r *inventoryRepoPG) CreateItem(ctx context.Context, it *Item) error {
	it.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO inventory_item (id, item_code, item_name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		it.ID, it.ItemCode, it.ItemName, it.Description,
	).Scan(&it.CreatedAt, &it.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *inventoryRepoPG) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	return scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+itemCols+` FROM inventory_item WHERE id = $1`, id))
}

func (r *inventoryRepoPG) LockItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	return scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+itemCols+` FROM inventory_item WHERE id = $1 FOR UPDATE`, id))
}

func (r *inventoryRepoPG) UpdateItem(ctx context.Context, it *Item) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE inventory_item SET item_code = $2, item_name = $3, description = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		it.ID, it.ItemCode, it.ItemName, it.Description,
	).Scan(&it.CreatedAt, &it.UpdatedAt)
	switch {
	case db.IsNoRows(err):
		return ErrItemNotFound
	case db.IsUniqueViolation(err):
		return ErrDuplicate
	}
	return err
}

func (r *inventoryRepoPG) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM inventory_item WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return ErrInUse
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *inventoryRepoPG) ListItems(ctx context.Context) ([]*Item, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+itemCols+` FROM inventory_item ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *inventoryRepoPG) HasTransactions(ctx context.Context, itemID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM inventory_transaction WHERE item_id = $1)`, itemID).Scan(&exists)
	return exists, err
}

const txCols = `id, date, item_id, item_name, quantity, transaction_type, remarks, created_at`

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.Date, &t.ItemID, &t.ItemName, &t.Quantity, &t.TransactionType, &t.Remarks, &t.CreatedAt)
	if db.IsNoRows(err) {
		return nil, ErrTransactionNotFound
	}
	return &t, err
}

func (r *inventoryRepoPG) CreateTransaction(ctx context.Context, t *Transaction) error {
	t.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO inventory_transaction (id, date, item_id, item_name, quantity, transaction_type, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		t.ID, t.Date, t.ItemID, t.ItemName, t.Quantity, t.TransactionType, t.Remarks,
	).Scan(&t.CreatedAt)
	if db.IsForeignKeyViolation(err) {
		return ErrItemNotFound
	}
	return err
}

func (r *inventoryRepoPG) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM inventory_transaction WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *inventoryRepoPG) ListTransactions(ctx context.Context, f TransactionFilter) ([]*Transaction, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}

	q := `SELECT ` + txCols + ` FROM inventory_transaction`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	if f.Ascending {
		q += ` ORDER BY date ASC, created_at ASC`
	} else {
		q += ` ORDER BY date DESC, created_at DESC`
	}

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *inventoryRepoPG) Stock(ctx context.Context, itemID uuid.UUID) (float64, error) {
	var stock float64
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN transaction_type = 'addition' THEN quantity ELSE -quantity END), 0)
		FROM inventory_transaction WHERE item_id = $1`, itemID).Scan(&stock)
	return stock, err
}

func (r *inventoryRepoPG) StockLevels(ctx context.Context) ([]*StockLevel, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT i.id, i.item_code, i.item_name, i.description,
			COALESCE(SUM(t.quantity) FILTER (WHERE t.transaction_type = 'addition'), 0),
			COALESCE(SUM(t.quantity) FILTER (WHERE t.transaction_type = 'removal'), 0)
		FROM inventory_item i
		LEFT JOIN inventory_transaction t ON t.item_id = i.id
		GROUP BY i.id
		ORDER BY i.item_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*StockLevel{}
	for rows.Next() {
		var s StockLevel
		if err := rows.Scan(&s.ItemID, &s.ItemCode, &s.ItemName, &s.Description, &s.TotalAdditions, &s.TotalIssues); err != nil {
			return nil, err
		}
		s.CurrentStock = s.TotalAdditions - s.TotalIssues
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *inventoryRepoPG) DailyTotals(ctx context.Context, days int) ([]*DailyItemTotal, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		WITH recent AS (
			SELECT DISTINCT (date AT TIME ZONE 'UTC')::date AS day
			FROM inventory_transaction
			ORDER BY day DESC
			LIMIT $1
		)
		SELECT to_char((t.date AT TIME ZONE 'UTC')::date, 'YYYY-MM-DD') AS day, t.item_id, t.item_name,
			COALESCE(SUM(t.quantity) FILTER (WHERE t.transaction_type = 'addition'), 0),
			COALESCE(SUM(t.quantity) FILTER (WHERE t.transaction_type = 'removal'), 0),
			COUNT(*)
		FROM inventory_transaction t
		JOIN recent ON recent.day = (t.date AT TIME ZONE 'UTC')::date
		GROUP BY 1, t.item_id, t.item_name
		ORDER BY 1 DESC, t.item_name`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*DailyItemTotal{}
	for rows.Next() {
		var d DailyItemTotal
		if err := rows.Scan(&d.Date, &d.ItemID, &d.ItemName, &d.TotalAdditions, &d.TotalIssues, &d.TransactionCount); err != nil {
			return nil, err
		}
		d.NetChange = d.TotalAdditions - d.TotalIssues
		out = append(out, &d)
	}
	return out, rows.Err()
}
