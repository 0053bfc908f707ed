package settings

import (
	"context"

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

type settingsRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &settingsRepoPG{pool: pool}
}

func (r *settingsRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *settingsRepoPG) GetLabInfo(ctx context.Context) (*LabInfo, error) {
	var li LabInfo
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT lab_name, phone_number, email, address, logo_url, website, description, updated_at
		FROM lab_info WHERE id = 1`,
	).Scan(&li.LabName, &li.PhoneNumber, &li.Email, &li.Address, &li.LogoURL, &li.Website, &li.Description, &li.UpdatedAt)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return &li, err
}

func (r *settingsRepoPG) SaveLabInfo(ctx context.Context, li *LabInfo) (bool, error) {
	var created bool
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO lab_info (id, lab_name, phone_number, email, address, logo_url, website, description)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			lab_name = EXCLUDED.lab_name, phone_number = EXCLUDED.phone_number, email = EXCLUDED.email,
			address = EXCLUDED.address, logo_url = EXCLUDED.logo_url, website = EXCLUDED.website,
			description = EXCLUDED.description, updated_at = NOW()
		RETURNING updated_at, (xmax = 0)`,
		li.LabName, li.PhoneNumber, li.Email, li.Address, li.LogoURL, li.Website, li.Description,
	).Scan(&li.UpdatedAt, &created)
	return created, err
}

func (r *settingsRepoPG) GetGeneral(ctx context.Context) (*General, error) {
	var g General
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT print_show_header, print_show_footer, header_top_margin, table_width_mode, updated_by, updated_at
		FROM general_settings WHERE id = 1`,
	).Scan(&g.PrintShowHeader, &g.PrintShowFooter, &g.HeaderTopMargin, &g.TableWidthMode, &g.UpdatedBy, &g.UpdatedAt)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return &g, err
}

func (r *settingsRepoPG) SaveGeneral(ctx context.Context, g *General) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO general_settings (id, print_show_header, print_show_footer, header_top_margin, table_width_mode, updated_by)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			print_show_header = EXCLUDED.print_show_header, print_show_footer = EXCLUDED.print_show_footer,
			header_top_margin = EXCLUDED.header_top_margin, table_width_mode = EXCLUDED.table_width_mode,
			updated_by = EXCLUDED.updated_by, updated_at = NOW()
		RETURNING updated_at`,
		g.PrintShowHeader, g.PrintShowFooter, g.HeaderTopMargin, g.TableWidthMode, g.UpdatedBy,
	).Scan(&g.UpdatedAt)
}

const filterCols = `filter_type, days_limit, is_active, history_results_count, history_results_direction,
	updated_by, updated_at`

func scanFilter(row pgx.Row) (*Filter, error) {
	var f Filter
	err := row.Scan(&f.FilterType, &f.DaysLimit, &f.IsActive, &f.HistoryResultsCount, &f.HistoryResultsDirection,
		&f.UpdatedBy, &f.UpdatedAt)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return &f, err
}

func (r *settingsRepoPG) ListFilters(ctx context.Context) ([]*Filter, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+filterCols+` FROM filter_setting`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Filter{}
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *settingsRepoPG) GetFilter(ctx context.Context, t FilterType) (*Filter, error) {
	return scanFilter(r.conn(ctx).QueryRow(ctx, `SELECT `+filterCols+` FROM filter_setting WHERE filter_type = $1`, t))
}

func (r *settingsRepoPG) SaveFilter(ctx context.Context, f *Filter) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO filter_setting (filter_type, days_limit, is_active, history_results_count,
			history_results_direction, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (filter_type) DO UPDATE SET
			days_limit = EXCLUDED.days_limit, is_active = EXCLUDED.is_active,
			history_results_count = EXCLUDED.history_results_count,
			history_results_direction = EXCLUDED.history_results_direction,
			updated_by = EXCLUDED.updated_by, updated_at = NOW()
		RETURNING updated_at`,
		f.FilterType, f.DaysLimit, f.IsActive, f.HistoryResultsCount, f.HistoryResultsDirection, f.UpdatedBy,
	).Scan(&f.UpdatedAt)
}
