package catalog

import (
	"context"
	"encoding/json"
	"fmt"

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

type templateRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &templateRepoPG{pool: pool}
}

func (r *templateRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const templateCols = `id, test_code, test_name, test_price, test_type, category, specimen, performed, reported,
	fields, is_diagnostic_test, report_extras, scale_config, visual_scale, created_at, updated_at`

func scanTemplate(row pgx.Row) (*Template, error) {
	var t Template
	var fields, extras, scale, visual []byte
	err := row.Scan(&t.ID, &t.TestCode, &t.TestName, &t.TestPrice, &t.TestType, &t.Category, &t.Specimen,
		&t.Performed, &t.Reported, &fields, &t.IsDiagnosticTest, &extras, &scale, &visual,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fields, &t.Fields); err != nil {
		return nil, fmt.Errorf("decode fields of %s: %w", t.TestName, err)
	}
	if len(extras) > 0 {
		t.ReportExtras = json.RawMessage(extras)
	}
	if len(scale) > 0 {
		if err := json.Unmarshal(scale, &t.ScaleConfig); err != nil {
			return nil, fmt.Errorf("decode scale config of %s: %w", t.TestName, err)
		}
	}
	if len(visual) > 0 {
		if err := json.Unmarshal(visual, &t.VisualScale); err != nil {
			return nil, fmt.Errorf("decode visual scale of %s: %w", t.TestName, err)
		}
	}
	if t.Fields == nil {
		t.Fields = []Field{}
	}
	return &t, nil
}

// jsonArgs encodes the JSONB columns of t. Nil optional values become SQL NULL.
func jsonArgs(t *Template) (fields, extras, scale, visual []byte, err error) {
	if t.Fields == nil {
		t.Fields = []Field{}
	}
	if fields, err = json.Marshal(t.Fields); err != nil {
		return
	}
	if len(t.ReportExtras) > 0 {
		extras = []byte(t.ReportExtras)
	}
	if t.ScaleConfig != nil {
		if scale, err = json.Marshal(t.ScaleConfig); err != nil {
			return
		}
	}
	if t.VisualScale != nil {
		visual, err = json.Marshal(t.VisualScale)
	}
	return
}

func (r *templateRepoPG) Create(ctx context.Context, t *Template) error {
	t.ID = uuid.New()
	fields, extras, scale, visual, err := jsonArgs(t)
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO test_template (
			id, test_code, test_name, test_price, test_type, category, specimen, performed, reported,
			fields, is_diagnostic_test, report_extras, scale_config, visual_scale
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10::jsonb,$11,$12::jsonb,$13::jsonb,$14::jsonb)
		RETURNING created_at, updated_at`,
		t.ID, t.TestCode, t.TestName, t.TestPrice, t.TestType, t.Category, t.Specimen, t.Performed, t.Reported,
		fields, t.IsDiagnosticTest, extras, scale, visual,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *templateRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Template, error) {
	t, err := scanTemplate(r.conn(ctx).QueryRow(ctx, `SELECT `+templateCols+` FROM test_template WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return t, err
}

func (r *templateRepoPG) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Template, error) {
	if len(ids) == 0 {
		return []*Template{}, nil
	}
	return r.list(ctx, `SELECT `+templateCols+` FROM test_template WHERE id = ANY($1) ORDER BY test_code`, ids)
}

func (r *templateRepoPG) Update(ctx context.Context, t *Template) error {
	fields, extras, scale, visual, err := jsonArgs(t)
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	err = r.conn(ctx).QueryRow(ctx, `
		UPDATE test_template SET
			test_code=$2, test_name=$3, test_price=$4, test_type=$5, category=$6, specimen=$7,
			performed=$8, reported=$9, fields=$10::jsonb, is_diagnostic_test=$11,
			report_extras=$12::jsonb, scale_config=$13::jsonb, visual_scale=$14::jsonb, updated_at=NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		t.ID, t.TestCode, t.TestName, t.TestPrice, t.TestType, t.Category, t.Specimen,
		t.Performed, t.Reported, fields, t.IsDiagnosticTest, extras, scale, visual,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	switch {
	case db.IsNoRows(err):
		return ErrNotFound
	case db.IsUniqueViolation(err):
		return ErrDuplicate
	}
	return err
}

func (r *templateRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM test_template WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *templateRepoPG) List(ctx context.Context) ([]*Template, error) {
	return r.list(ctx, `SELECT `+templateCols+` FROM test_template ORDER BY test_code`)
}

func (r *templateRepoPG) list(ctx context.Context, sql string, args ...interface{}) ([]*Template, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// Search matches name or category by substring and the code by prefix.
func (r *templateRepoPG) Search(ctx context.Context, q string, limit int) ([]*Summary, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, test_code, test_name, test_price, category
		FROM test_template
		WHERE test_name ILIKE '%' || $1 || '%'
		   OR category ILIKE '%' || $1 || '%'
		   OR test_code::text LIKE $1 || '%'
		ORDER BY test_code
		LIMIT $2`, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.TestCode, &s.TestName, &s.TestPrice, &s.Category); err != nil {
			return nil, err
		}
		items = append(items, &s)
	}
	return items, rows.Err()
}
