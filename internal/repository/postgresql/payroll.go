package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const payrollPeriodConstraint = "uk_payroll_employee_period"

const payrollSelect = `
	SELECT pr.id, pr.employee_id, pr.period_month, pr.period_year,
		   pr.base_salary, pr.overtime_hours, pr.overtime_rate, pr.bonus, pr.deductions,
		   pr.overtime_pay, pr.gross_salary, pr.total_deductions, pr.net_salary,
		   pr.status, pr.payment_method, pr.payment_date, pr.notes, pr.created_at, pr.updated_at,
		   e.first_name || ' ' || e.last_name AS employee_name, e.employee_code, e.email,
		   e.department, e.position
	FROM payroll_records pr
	LEFT JOIN employees e ON pr.employee_id = e.id
`

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

func scanPayrollRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	var deductionsBytes []byte

	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.PeriodMonth, &rec.PeriodYear,
		&rec.BaseSalary, &rec.OvertimeHours, &rec.OvertimeRate, &rec.Bonus, &deductionsBytes,
		&rec.OvertimePay, &rec.GrossSalary, &rec.TotalDeductions, &rec.NetSalary,
		&rec.Status, &rec.PaymentMethod, &rec.PaymentDate, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.EmployeeName, &rec.EmployeeCode, &rec.EmployeeEmail, &rec.Department, &rec.Position,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, err
	}

	rec.Deductions = []payroll.Deduction{}
	if len(deductionsBytes) > 0 {
		if err := json.Unmarshal(deductionsBytes, &rec.Deductions); err != nil {
			return payroll.PayrollRecord{}, fmt.Errorf("failed to unmarshal deductions: %w", err)
		}
	}
	return rec, nil
}

func collectPayrollRecords(rows pgx.Rows) ([]payroll.PayrollRecord, error) {
	defer rows.Close()

	records := []payroll.PayrollRecord{}
	for rows.Next() {
		rec, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func marshalDeductions(deductions []payroll.Deduction) ([]byte, error) {
	if deductions == nil {
		deductions = []payroll.Deduction{}
	}
	b, err := json.Marshal(deductions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal deductions: %w", err)
	}
	return b, nil
}

func (r *payrollRepository) Create(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	deductionsJSON, err := marshalDeductions(record.Deductions)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	query := `
		INSERT INTO payroll_records (
			employee_id, period_month, period_year, base_salary, overtime_hours, overtime_rate, bonus,
			deductions, overtime_pay, gross_salary, total_deductions, net_salary,
			status, payment_method, payment_date, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`

	var id string
	err = q.QueryRow(ctx, query,
		record.EmployeeID, record.PeriodMonth, record.PeriodYear, record.BaseSalary, record.OvertimeHours,
		record.OvertimeRate, record.Bonus, deductionsJSON, record.OvertimePay, record.GrossSalary,
		record.TotalDeductions, record.NetSalary, record.Status, record.PaymentMethod, record.PaymentDate, record.Notes,
	).Scan(&id)
	if err != nil {
		if database.ConstraintViolated(err, payrollPeriodConstraint) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanPayrollRecord(q.QueryRow(ctx, payrollSelect+` WHERE pr.id = $1`, id))
	if err != nil && !errors.Is(err, payroll.ErrPayrollRecordNotFound) {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, err
}

func (r *payrollRepository) ExistsForPeriod(ctx context.Context, employeeID string, month, year int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM payroll_records WHERE employee_id = $1 AND period_month = $2 AND period_year = $3)
	`, employeeID, month, year).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check payroll period: %w", err)
	}
	return exists, nil
}

func (r *payrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.PeriodMonth != nil {
		conditions = append(conditions, fmt.Sprintf("pr.period_month = $%d", argIdx))
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}
	if filter.PeriodYear != nil {
		conditions = append(conditions, fmt.Sprintf("pr.period_year = $%d", argIdx))
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("pr.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("pr.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Department != nil && *filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("e.department = $%d", argIdx))
		args = append(args, *filter.Department)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM payroll_records pr LEFT JOIN employees e ON pr.employee_id = e.id WHERE %s`, whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	validSortColumns := map[string]string{
		"period":        "pr.period_year %[1]s, pr.period_month %[1]s",
		"net_salary":    "pr.net_salary %[1]s",
		"employee_name": "e.first_name %[1]s, e.last_name %[1]s",
		"created_at":    "pr.created_at %[1]s",
	}
	sortExpr, ok := validSortColumns[filter.SortBy]
	if !ok {
		sortExpr = validSortColumns["period"]
	}
	sortOrder := "DESC"
	if strings.ToUpper(filter.SortOrder) == "ASC" {
		sortOrder = "ASC"
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s, pr.id`, payrollSelect, whereClause, fmt.Sprintf(sortExpr, sortOrder))
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	records, err := collectPayrollRecords(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *payrollRepository) ListByPeriod(ctx context.Context, month, year int) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, payrollSelect+`
		WHERE pr.period_month = $1 AND pr.period_year = $2
		ORDER BY e.employee_code
	`, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll period: %w", err)
	}
	return collectPayrollRecords(rows)
}

func (r *payrollRepository) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := payrollSelect + ` WHERE pr.employee_id = $1 ORDER BY pr.period_year DESC, pr.period_month DESC`
	args := []interface{}{employeeID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee payroll: %w", err)
	}
	return collectPayrollRecords(rows)
}

// Update refuses to touch paid records; the status check happens in the same statement.
func (r *payrollRepository) Update(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	deductionsJSON, err := marshalDeductions(record.Deductions)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	query := `
		UPDATE payroll_records SET
			base_salary = $1, overtime_hours = $2, overtime_rate = $3, bonus = $4, deductions = $5,
			overtime_pay = $6, gross_salary = $7, total_deductions = $8, net_salary = $9,
			status = $10, payment_method = $11, payment_date = $12, notes = $13, updated_at = NOW()
		WHERE id = $14 AND status <> 'paid'
	`
	tag, err := q.Exec(ctx, query,
		record.BaseSalary, record.OvertimeHours, record.OvertimeRate, record.Bonus, deductionsJSON,
		record.OvertimePay, record.GrossSalary, record.TotalDeductions, record.NetSalary,
		record.Status, record.PaymentMethod, record.PaymentDate, record.Notes, record.ID,
	)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to update payroll record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.PayrollRecord{}, r.missingOrPaid(ctx, record.ID, payroll.ErrPayrollRecordAlreadyPaid)
	}

	return r.GetByID(ctx, record.ID)
}

func (r *payrollRepository) MarkPaid(ctx context.Context, id string, method payroll.PaymentMethod, paidOn time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_records
		SET status = 'paid', payment_method = $1, payment_date = $2, updated_at = NOW()
		WHERE id = $3 AND status <> 'paid'
	`, method, paidOn, id)
	if err != nil {
		return fmt.Errorf("failed to mark payroll record paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrPaid(ctx, id, payroll.ErrPayrollRecordAlreadyPaid)
	}
	return nil
}

func (r *payrollRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_records WHERE id = $1 AND status <> 'paid'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payroll record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrPaid(ctx, id, payroll.ErrCannotDeletePaidRecord)
	}
	return nil
}

// missingOrPaid explains why a guarded write matched no rows.
func (r *payrollRepository) missingOrPaid(ctx context.Context, id string, paidErr error) error {
	q := GetQuerier(ctx, r.db)

	var status payroll.PayrollStatus
	err := q.QueryRow(ctx, `SELECT status FROM payroll_records WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.ErrPayrollRecordNotFound
		}
		return fmt.Errorf("failed to check payroll status: %w", err)
	}
	return paidErr
}
