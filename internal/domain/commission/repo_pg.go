package commission

import (
	"context"
	"fmt"
	"strings"

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

type patientFinderPG struct{ pool *pgxpool.Pool }

func NewPatientFinderPG(pool *pgxpool.Pool) PatientFinder {
	return &patientFinderPG{pool: pool}
}

func (r *patientFinderPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const billingCols = `id, ref_no, name, phone, referenced_by, total, discount_amount,
	net_total, paid_amount, payment_status, commission_routine, commission_special, created_at`

func scanBilling(row pgx.Row) (*PatientBilling, error) {
	var p PatientBilling
	err := row.Scan(&p.ID, &p.RefNo, &p.Name, &p.Phone, &p.ReferencedBy, &p.Total, &p.DiscountAmount,
		&p.NetTotal, &p.PaidAmount, &p.PaymentStatus, &p.Commission.Routine, &p.Commission.Special, &p.CreatedAt)
	return &p, err
}

func (r *patientFinderPG) FindReferrals(ctx context.Context, f Filter) ([]*PatientBilling, error) {
	where := []string{"created_at >= $1", "created_at <= $2"}
	args := []interface{}{f.From, f.To}
	if f.ExcludeSelf {
		args = append(args, SelfReferral)
		where = append(where, fmt.Sprintf("referenced_by <> $%d", len(args)))
	}
	if f.DoctorName != "" {
		args = append(args, f.DoctorName)
		where = append(where, fmt.Sprintf("referenced_by = $%d", len(args)))
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+billingCols+` FROM patient WHERE `+strings.Join(where, " AND ")+` ORDER BY created_at, id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("query referrals: %w", err)
	}
	defer rows.Close()

	var patients []*PatientBilling
	byID := make(map[string]*PatientBilling)
	ids := make([]string, 0)
	for rows.Next() {
		p, err := scanBilling(rows)
		if err != nil {
			return nil, fmt.Errorf("scan referral: %w", err)
		}
		p.Tests = []TestLine{}
		patients = append(patients, p)
		byID[p.ID.String()] = p
		ids = append(ids, p.ID.String())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate referrals: %w", err)
	}
	if len(ids) == 0 {
		return patients, nil
	}

	testRows, err := r.conn(ctx).Query(ctx, `
		SELECT patient_id::text, test_id::text, test_name, test_type, price
		FROM patient_test WHERE patient_id = ANY($1::uuid[])
		ORDER BY patient_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("query referral tests: %w", err)
	}
	defer testRows.Close()

	for testRows.Next() {
		var pid string
		var t TestLine
		if err := testRows.Scan(&pid, &t.TestID, &t.TestName, &t.TestType, &t.Price); err != nil {
			return nil, fmt.Errorf("scan referral test: %w", err)
		}
		if p, ok := byID[pid]; ok {
			p.Tests = append(p.Tests, t)
		}
	}
	if err := testRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate referral tests: %w", err)
	}
	return patients, nil
}
