package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
)

type payrollRow struct {
	payroll.PayrollRecord
}

type PayrollRepository struct {
	s *Store
}

func (s *Store) Payrolls() *PayrollRepository {
	return &PayrollRepository{s: s}
}

// hydratePayroll fills the employee join; must be called with the lock held.
func (s *Store) hydratePayroll(row payrollRow) payroll.PayrollRecord {
	rec := row.PayrollRecord
	rec.Deductions = slices.Clone(rec.Deductions)
	if rec.Deductions == nil {
		rec.Deductions = []payroll.Deduction{}
	}
	rec.EmployeeName, rec.EmployeeCode, rec.EmployeeEmail, rec.Department, rec.Position = nil, nil, nil, nil, nil
	if e, ok := s.employees[rec.EmployeeID]; ok {
		name, code, email, dept, pos := e.FullName(), e.EmployeeCode, e.Email, e.Department, e.Position
		rec.EmployeeName, rec.EmployeeCode, rec.EmployeeEmail, rec.Department, rec.Position = &name, &code, &email, &dept, &pos
	}
	return rec
}

func (r *PayrollRepository) Create(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range r.s.payrolls {
		if row.EmployeeID == record.EmployeeID && row.PeriodMonth == record.PeriodMonth && row.PeriodYear == record.PeriodYear {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
	}
	record.ID = newID()
	record.CreatedAt = r.s.now()
	record.UpdatedAt = record.CreatedAt
	if record.PaymentMethod == "" {
		record.PaymentMethod = payroll.PaymentMethodBankTransfer
	}
	if record.Status == "" {
		record.Status = payroll.PayrollStatusPending
	}
	row := payrollRow{PayrollRecord: record}
	row.Deductions = slices.Clone(record.Deductions)
	r.s.payrolls[record.ID] = row
	return r.s.hydratePayroll(row), nil
}

func (r *PayrollRepository) GetByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.payrolls[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return r.s.hydratePayroll(row), nil
}

func (r *PayrollRepository) ExistsForPeriod(ctx context.Context, employeeID string, month, year int) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, row := range r.s.payrolls {
		if row.EmployeeID == employeeID && row.PeriodMonth == month && row.PeriodYear == year {
			return true, nil
		}
	}
	return false, nil
}

func (r *PayrollRepository) all(match func(payroll.PayrollRecord) bool) []payroll.PayrollRecord {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []payroll.PayrollRecord{}
	for _, row := range r.s.payrolls {
		rec := r.s.hydratePayroll(row)
		if match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func periodKey(rec payroll.PayrollRecord) int {
	return rec.PeriodYear*100 + rec.PeriodMonth
}

func (r *PayrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	out := r.all(func(rec payroll.PayrollRecord) bool {
		if filter.PeriodMonth != nil && rec.PeriodMonth != *filter.PeriodMonth {
			return false
		}
		if filter.PeriodYear != nil && rec.PeriodYear != *filter.PeriodYear {
			return false
		}
		if filter.Status != nil && *filter.Status != "" && string(rec.Status) != *filter.Status {
			return false
		}
		if filter.EmployeeID != nil && *filter.EmployeeID != "" && rec.EmployeeID != *filter.EmployeeID {
			return false
		}
		if filter.Department != nil && *filter.Department != "" && (rec.Department == nil || *rec.Department != *filter.Department) {
			return false
		}
		return true
	})

	asc := strings.ToUpper(filter.SortOrder) == "ASC"
	less := func(a, b payroll.PayrollRecord) bool { return periodKey(a) < periodKey(b) }
	switch filter.SortBy {
	case "net_salary":
		less = func(a, b payroll.PayrollRecord) bool { return a.NetSalary.LessThan(b.NetSalary) }
	case "employee_name":
		less = func(a, b payroll.PayrollRecord) bool { return deref(a.EmployeeName) < deref(b.EmployeeName) }
	case "created_at":
		less = func(a, b payroll.PayrollRecord) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})

	total := int64(len(out))
	if filter.Limit > 0 {
		page := max(filter.Page, 1)
		start := min((page-1)*filter.Limit, len(out))
		end := min(start+filter.Limit, len(out))
		out = out[start:end]
	}
	return out, total, nil
}

func (r *PayrollRepository) ListByPeriod(ctx context.Context, month, year int) ([]payroll.PayrollRecord, error) {
	out := r.all(func(rec payroll.PayrollRecord) bool { return rec.PeriodMonth == month && rec.PeriodYear == year })
	sort.Slice(out, func(i, j int) bool { return deref(out[i].EmployeeCode) < deref(out[j].EmployeeCode) })
	return out, nil
}

func (r *PayrollRepository) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]payroll.PayrollRecord, error) {
	out := r.all(func(rec payroll.PayrollRecord) bool { return rec.EmployeeID == employeeID })
	sort.Slice(out, func(i, j int) bool { return periodKey(out[i]) > periodKey(out[j]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *PayrollRepository) Update(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.payrolls[record.ID]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	if row.IsPaid() {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyPaid
	}
	record.EmployeeID = row.EmployeeID
	record.PeriodMonth, record.PeriodYear = row.PeriodMonth, row.PeriodYear
	record.CreatedAt = row.CreatedAt
	record.UpdatedAt = r.s.now()
	next := payrollRow{PayrollRecord: record}
	next.Deductions = slices.Clone(record.Deductions)
	r.s.payrolls[record.ID] = next
	return r.s.hydratePayroll(next), nil
}

func (r *PayrollRepository) MarkPaid(ctx context.Context, id string, method payroll.PaymentMethod, paidOn time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.payrolls[id]
	if !ok {
		return payroll.ErrPayrollRecordNotFound
	}
	if row.IsPaid() {
		return payroll.ErrPayrollRecordAlreadyPaid
	}
	row.Status = payroll.PayrollStatusPaid
	row.PaymentMethod = method
	row.PaymentDate = &paidOn
	row.UpdatedAt = r.s.now()
	r.s.payrolls[id] = row
	return nil
}

func (r *PayrollRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.payrolls[id]
	if !ok {
		return payroll.ErrPayrollRecordNotFound
	}
	if row.IsPaid() {
		return payroll.ErrCannotDeletePaidRecord
	}
	delete(r.s.payrolls, id)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
