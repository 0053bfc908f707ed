package patient

import (
	"context"
	"encoding/json"
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

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, ref_no, case_no, name, age, gender, phone, father_husband_name, nic_no, specimen,
	payment_status, result_status, referenced_by, result_added_by, payment_status_updated_by,
	patient_registered_by, final_report_approved_by,
	total, discount_percentage, discount_amount, net_total, paid_amount, due_amount,
	commission_routine, commission_special, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.RefNo, &p.CaseNo, &p.Name, &p.Age, &p.Gender, &p.Phone,
		&p.FatherHusbandName, &p.NICNo, &p.Specimen,
		&p.PaymentStatus, &p.ResultStatus, &p.ReferencedBy, &p.ResultAddedBy, &p.PaymentStatusUpdatedBy,
		&p.PatientRegisteredBy, &p.FinalReportApprovedBy,
		&p.Total, &p.DiscountPercentage, &p.DiscountAmount, &p.NetTotal, &p.PaidAmount, &p.DueAmount,
		&p.Commission.Routine, &p.Commission.Special, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Tests = []TestLine{}
	p.Results = []Result{}
	return &p, nil
}

// NextRefNo bumps the shared counter. The first number handed out is 100001.
func (r *patientRepoPG) NextRefNo(ctx context.Context) (int64, error) {
	var seq int64
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO ref_counter (name, seq) VALUES ('patient_ref', 100001)
		ON CONFLICT (name) DO UPDATE SET seq = ref_counter.seq + 1
		RETURNING seq`).Scan(&seq)
	return seq, err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (
			id, ref_no, case_no, name, age, gender, phone, father_husband_name, nic_no, specimen,
			payment_status, result_status, referenced_by, result_added_by, payment_status_updated_by,
			patient_registered_by, final_report_approved_by,
			total, discount_percentage, discount_amount, net_total, paid_amount, due_amount,
			commission_routine, commission_special
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,
			$11,$12,$13,$14,$15,$16,$17,
			$18,$19,$20,$21,$22,$23,$24,$25
		) RETURNING created_at, updated_at`,
		p.ID, p.RefNo, p.CaseNo, p.Name, p.Age, p.Gender, p.Phone, p.FatherHusbandName, p.NICNo, p.Specimen,
		p.PaymentStatus, p.ResultStatus, p.ReferencedBy, p.ResultAddedBy, p.PaymentStatusUpdatedBy,
		p.PatientRegisteredBy, p.FinalReportApprovedBy,
		p.Total, p.DiscountPercentage, p.DiscountAmount, p.NetTotal, p.PaidAmount, p.DueAmount,
		p.Commission.Routine, p.Commission.Special,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}

	batch := &pgx.Batch{}
	for i, t := range p.Tests {
		batch.Queue(`
			INSERT INTO patient_test (patient_id, position, test_id, test_name, test_type, price, is_diagnostic)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			p.ID, i, t.TestID, t.TestName, t.TestType, t.Price, t.IsDiagnosticTest)
	}
	return r.sendBatch(ctx, batch)
}

func (r *patientRepoPG) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	var br pgx.BatchResults
	if tx := db.TxFromContext(ctx); tx != nil {
		br = tx.SendBatch(ctx, batch)
	} else {
		br = r.pool.SendBatch(ctx, batch)
	}
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	return nil
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.getOne(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id)
}

// FindForReport matches refNo and phone exactly; name, when given, case-insensitively.
func (r *patientRepoPG) FindForReport(ctx context.Context, refNo, phone, name string) (*Patient, error) {
	if name == "" {
		return r.getOne(ctx, `SELECT `+patientCols+` FROM patient WHERE ref_no = $1 AND phone = $2`, refNo, phone)
	}
	return r.getOne(ctx, `SELECT `+patientCols+` FROM patient
		WHERE ref_no = $1 AND phone = $2 AND lower(name) = lower($3)`, refNo, phone, name)
}

func (r *patientRepoPG) getOne(ctx context.Context, sql string, args ...interface{}) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, sql, args...))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, []*Patient{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *patientRepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error) {
	var where []string
	var args []interface{}
	add := func(clause string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.Since != nil {
		add("created_at >= $%d", *f.Since)
	}
	if f.PaymentStatus != "" {
		add("payment_status = $%d", f.PaymentStatus)
	}
	if f.ResultStatus != "" {
		add("result_status = $%d", f.ResultStatus)
	}
	if f.ReferencedBy != "" {
		add("referenced_by = $%d", f.ReferencedBy)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	items, err := r.list(ctx, fmt.Sprintf(`SELECT %s FROM patient%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		patientCols, cond, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *patientRepoPG) ListByResultStatus(ctx context.Context, statuses ...ResultStatus) ([]*Patient, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return r.list(ctx, `SELECT `+patientCols+` FROM patient WHERE result_status = ANY($1) ORDER BY created_at`, names)
}

func (r *patientRepoPG) list(ctx context.Context, sql string, args ...interface{}) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// loadChildren fills tests and results for patients in two queries.
func (r *patientRepoPG) loadChildren(ctx context.Context, patients []*Patient) error {
	if len(patients) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*Patient, len(patients))
	ids := make([]uuid.UUID, 0, len(patients))
	for _, p := range patients {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT patient_id, test_id, test_name, test_type, price, is_diagnostic
		FROM patient_test WHERE patient_id = ANY($1) ORDER BY patient_id, position`, ids)
	if err != nil {
		return fmt.Errorf("query patient tests: %w", err)
	}
	for rows.Next() {
		var pid uuid.UUID
		var t TestLine
		if err := rows.Scan(&pid, &t.TestID, &t.TestName, &t.TestType, &t.Price, &t.IsDiagnosticTest); err != nil {
			rows.Close()
			return fmt.Errorf("scan patient test: %w", err)
		}
		byID[pid].Tests = append(byID[pid].Tests, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.conn(ctx).Query(ctx, `
		SELECT patient_id, test_id, test_name, fields
		FROM patient_result WHERE patient_id = ANY($1) ORDER BY patient_id, added_at`, ids)
	if err != nil {
		return fmt.Errorf("query patient results: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pid uuid.UUID
		var res Result
		var fields []byte
		if err := rows.Scan(&pid, &res.TestID, &res.TestName, &fields); err != nil {
			return fmt.Errorf("scan patient result: %w", err)
		}
		if err := json.Unmarshal(fields, &res.Fields); err != nil {
			return fmt.Errorf("decode result fields: %w", err)
		}
		byID[pid].Results = append(byID[pid].Results, res)
	}
	return rows.Err()
}

func (r *patientRepoPG) Search(ctx context.Context, q string, limit int) ([]*Summary, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, name, age, gender, phone, referenced_by
		FROM patient WHERE name ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC LIMIT $2`, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.Age, &s.Gender, &s.Phone, &s.ReferencedBy); err != nil {
			return nil, err
		}
		items = append(items, &s)
	}
	return items, rows.Err()
}

func (r *patientRepoPG) UpdatePayment(ctx context.Context, id uuid.UUID, status PaymentStatus, updatedBy string) (*Patient, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET payment_status = $2, payment_status_updated_by = $3, updated_at = NOW()
		WHERE id = $1`, id, status, updatedBy)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *patientRepoPG) UpdateBilling(ctx context.Context, p *Patient) error {
	return r.affectOne(ctx, `
		UPDATE patient SET total=$2, discount_percentage=$3, discount_amount=$4, net_total=$5,
			paid_amount=$6, due_amount=$7, payment_status=$8, payment_status_updated_by=$9, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Total, p.DiscountPercentage, p.DiscountAmount, p.NetTotal,
		p.PaidAmount, p.DueAmount, p.PaymentStatus, p.PaymentStatusUpdatedBy)
}

func (r *patientRepoPG) RemoveTest(ctx context.Context, id, testID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_test WHERE patient_id = $1 AND test_id = $2`, id, testID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTestNotFound
	}
	return nil
}

func (r *patientRepoPG) SaveResults(ctx context.Context, p *Patient) error {
	batch := &pgx.Batch{}
	for _, res := range p.Results {
		fields, err := json.Marshal(res.Fields)
		if err != nil {
			return fmt.Errorf("encode result fields: %w", err)
		}
		batch.Queue(`
			INSERT INTO patient_result (patient_id, test_id, test_name, fields)
			VALUES ($1, $2, $3, $4::jsonb)
			ON CONFLICT (patient_id, test_id)
			DO UPDATE SET test_name = EXCLUDED.test_name, fields = EXCLUDED.fields`,
			p.ID, res.TestID, res.TestName, fields)
	}
	if err := r.sendBatch(ctx, batch); err != nil {
		return err
	}
	return r.affectOne(ctx, `
		UPDATE patient SET result_status = $2, result_added_by = $3, updated_at = NOW() WHERE id = $1`,
		p.ID, p.ResultStatus, p.ResultAddedBy)
}

func (r *patientRepoPG) ResetResults(ctx context.Context, id uuid.UUID) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_result WHERE patient_id = $1`, id); err != nil {
		return err
	}
	return r.affectOne(ctx, `
		UPDATE patient SET result_status = $2, result_added_by = '', final_report_approved_by = '', updated_at = NOW()
		WHERE id = $1`, id, ResultPending)
}

func (r *patientRepoPG) Approve(ctx context.Context, id uuid.UUID, approvedBy string) error {
	return r.affectOne(ctx, `
		UPDATE patient SET final_report_approved_by = $2, updated_at = NOW() WHERE id = $1`, id, approvedBy)
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return r.affectOne(ctx, `DELETE FROM patient WHERE id = $1`, id)
}

func (r *patientRepoPG) affectOne(ctx context.Context, sql string, args ...interface{}) error {
	tag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
