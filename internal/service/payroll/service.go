package payroll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/payslip"
	"github.com/shopspring/decimal"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

type PayrollServiceImpl struct {
	tx           database.Transactor
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		tx:           tx,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
	}
}

// Helper to get the linked employee from JWT context
func getEmployeeIDFromContext(ctx context.Context) (string, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}
	if claims.EmployeeID == nil {
		return "", payroll.ErrEmployeeNotLinked
	}
	return *claims.EmployeeID, nil
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func parseDate(value string) time.Time {
	date, _ := time.Parse(time.DateOnly, value)
	return date
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// settle recomputes the record and applies paid-status defaults.
func settle(rec *payroll.PayrollRecord) error {
	if err := rec.Recalculate(); err != nil {
		return err
	}
	if rec.NetSalary.IsNegative() {
		slog.Warn("payroll net salary is negative",
			"employee_id", rec.EmployeeID,
			"period_month", rec.PeriodMonth,
			"period_year", rec.PeriodYear,
			"net_salary", rec.NetSalary.String(),
		)
	}
	if rec.IsPaid() && rec.PaymentDate == nil {
		paidOn := today()
		rec.PaymentDate = &paidOn
	}
	return nil
}

// ========== CALCULATOR ==========

func (s *PayrollServiceImpl) Calculate(ctx context.Context, req payroll.CalculateRequest) (payroll.CalculationResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.CalculationResponse{}, err
	}

	// every supplied deduction counts here; blank lines are only dropped when saving
	calc := payroll.Calculate(payroll.CalculationInput{
		BaseSalary:    req.BaseSalary,
		OvertimeHours: req.OvertimeHours,
		OvertimeRate:  req.OvertimeRate,
		Bonus:         req.Bonus,
		Deductions:    req.Deductions,
	}.Rounded(payroll.MoneyPlaces)).Round(payroll.MoneyPlaces)

	return payroll.CalculationResponse{
		HourlyRate:      calc.HourlyRate,
		OvertimeRate:    calc.OvertimeRate,
		OvertimePay:     calc.OvertimePay,
		GrossSalary:     calc.GrossSalary,
		TotalDeductions: calc.TotalDeductions,
		NetSalary:       calc.NetSalary,
	}, nil
}

// ========== PAYROLL RECORDS ==========

func (s *PayrollServiceImpl) Create(ctx context.Context, req payroll.CreatePayrollRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return payroll.PayrollRecordResponse{}, payroll.ErrEmployeeNotFound
		}
		return payroll.PayrollRecordResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	record := payroll.PayrollRecord{
		EmployeeID:    emp.ID,
		PeriodMonth:   req.PeriodMonth,
		PeriodYear:    req.PeriodYear,
		BaseSalary:    emp.Salary,
		OvertimeHours: valueOrZero(req.OvertimeHours),
		OvertimeRate:  valueOrZero(req.OvertimeRate),
		Bonus:         valueOrZero(req.Bonus),
		Deductions:    payroll.CleanDeductions(req.Deductions),
		Status:        payroll.PayrollStatusPending,
		PaymentMethod: payroll.PaymentMethodBankTransfer,
		Notes:         req.Notes,
	}
	if req.BaseSalary != nil {
		record.BaseSalary = *req.BaseSalary
	}
	if req.Status != nil {
		record.Status = payroll.PayrollStatus(*req.Status)
	}
	if req.PaymentMethod != nil {
		record.PaymentMethod = payroll.PaymentMethod(*req.PaymentMethod)
	}
	if req.PaymentDate != nil {
		paidOn := parseDate(*req.PaymentDate)
		record.PaymentDate = &paidOn
	}
	// client supplied net_salary is ignored
	if err := settle(&record); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	created, err := s.payrollRepo.Create(ctx, record)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollRecordAlreadyExists) {
			return payroll.PayrollRecordResponse{}, payroll.ErrPayrollRecordAlreadyExists
		}
		return payroll.PayrollRecordResponse{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return created.ToResponse(), nil
}

func (s *PayrollServiceImpl) getRecord(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	record, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollRecordNotFound) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return record, nil
}

func (s *PayrollServiceImpl) Get(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	record, err := s.getRecord(ctx, id)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	return record.ToResponse(), nil
}

func (s *PayrollServiceImpl) List(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}

	records, total, err := s.payrollRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, fmt.Errorf("failed to list payroll records: %w", err)
	}

	responses := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, rec.ToResponse())
	}

	return payroll.ListPayrollRecordResponse{
		Data:       responses,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

func (s *PayrollServiceImpl) Update(ctx context.Context, req payroll.UpdatePayrollRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	record, err := s.getRecord(ctx, req.ID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if record.IsPaid() {
		return payroll.PayrollRecordResponse{}, payroll.ErrPayrollRecordAlreadyPaid
	}

	if req.BaseSalary != nil {
		record.BaseSalary = *req.BaseSalary
	}
	if req.OvertimeHours != nil {
		record.OvertimeHours = *req.OvertimeHours
	}
	if req.OvertimeRate != nil {
		record.OvertimeRate = *req.OvertimeRate
	}
	if req.Bonus != nil {
		record.Bonus = *req.Bonus
	}
	if req.Deductions != nil {
		record.Deductions = payroll.CleanDeductions(*req.Deductions)
	}
	if req.Status != nil {
		record.Status = payroll.PayrollStatus(*req.Status)
	}
	if req.PaymentMethod != nil {
		record.PaymentMethod = payroll.PaymentMethod(*req.PaymentMethod)
	}
	if req.PaymentDate != nil {
		paidOn := parseDate(*req.PaymentDate)
		record.PaymentDate = &paidOn
	}
	if req.Notes != nil {
		record.Notes = req.Notes
	}
	if err := settle(&record); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	updated, err := s.payrollRepo.Update(ctx, record)
	if err != nil {
		switch {
		case errors.Is(err, payroll.ErrPayrollRecordNotFound),
			errors.Is(err, payroll.ErrPayrollRecordAlreadyPaid):
			return payroll.PayrollRecordResponse{}, err
		}
		return payroll.PayrollRecordResponse{}, fmt.Errorf("failed to update payroll record: %w", err)
	}

	return updated.ToResponse(), nil
}

func (s *PayrollServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.payrollRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, payroll.ErrPayrollRecordNotFound),
			errors.Is(err, payroll.ErrCannotDeletePaidRecord):
			return err
		}
		return fmt.Errorf("failed to delete payroll record: %w", err)
	}
	return nil
}

// Process creates a processed record for every active employee missing one for the period.
func (s *PayrollServiceImpl) Process(ctx context.Context, req payroll.ProcessPayrollRequest) ([]payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	created := []payroll.PayrollRecordResponse{}
	skipped := 0

	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		employees, err := s.employeeRepo.ListActive(txCtx)
		if err != nil {
			return fmt.Errorf("failed to list active employees: %w", err)
		}

		for _, emp := range employees {
			exists, err := s.payrollRepo.ExistsForPeriod(txCtx, emp.ID, req.PeriodMonth, req.PeriodYear)
			if err != nil {
				return fmt.Errorf("failed to check existing payroll: %w", err)
			}
			if exists {
				skipped++
				continue
			}

			record := payroll.PayrollRecord{
				EmployeeID:    emp.ID,
				PeriodMonth:   req.PeriodMonth,
				PeriodYear:    req.PeriodYear,
				BaseSalary:    emp.Salary,
				Deductions:    []payroll.Deduction{},
				Status:        payroll.PayrollStatusProcessed,
				PaymentMethod: payroll.PaymentMethodBankTransfer,
			}
			if err := settle(&record); err != nil {
				return fmt.Errorf("failed to calculate payroll for employee %s: %w", emp.EmployeeCode, err)
			}

			rec, err := s.payrollRepo.Create(txCtx, record)
			if err != nil {
				return fmt.Errorf("failed to create payroll for employee %s: %w", emp.EmployeeCode, err)
			}
			created = append(created, rec.ToResponse())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("payroll processed",
		"period_month", req.PeriodMonth,
		"period_year", req.PeriodYear,
		"created", len(created),
		"skipped", skipped,
	)
	return created, nil
}

func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, req payroll.MarkPaidRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	method := payroll.PaymentMethodBankTransfer
	if req.PaymentMethod != nil {
		method = payroll.PaymentMethod(*req.PaymentMethod)
	}
	paidOn := today()
	if req.PaymentDate != nil {
		paidOn = parseDate(*req.PaymentDate)
	}

	if err := s.payrollRepo.MarkPaid(ctx, req.ID, method, paidOn); err != nil {
		switch {
		case errors.Is(err, payroll.ErrPayrollRecordNotFound),
			errors.Is(err, payroll.ErrPayrollRecordAlreadyPaid):
			return payroll.PayrollRecordResponse{}, err
		}
		return payroll.PayrollRecordResponse{}, fmt.Errorf("failed to mark payroll paid: %w", err)
	}

	return s.Get(ctx, req.ID)
}

// ========== REPORTING ==========

func (s *PayrollServiceImpl) Summary(ctx context.Context, month, year int) (payroll.PayrollSummaryResponse, error) {
	period := payroll.ProcessPayrollRequest{PeriodMonth: month, PeriodYear: year}
	if err := period.Validate(); err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}

	records, err := s.payrollRepo.ListByPeriod(ctx, month, year)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, fmt.Errorf("failed to list payroll for period: %w", err)
	}

	return payroll.PayrollSummaryResponse{
		PeriodMonth:  month,
		PeriodYear:   year,
		PayrollStats: payroll.Summarize(records),
	}, nil
}

func (s *PayrollServiceImpl) WritePayslip(ctx context.Context, id string, w io.Writer) (string, error) {
	record, err := s.getRecord(ctx, id)
	if err != nil {
		return "", err
	}
	return s.renderPayslip(record, w)
}

func (s *PayrollServiceImpl) renderPayslip(record payroll.PayrollRecord, w io.Writer) (string, error) {
	if err := payslip.Render(w, record); err != nil {
		return "", fmt.Errorf("failed to render payslip: %w", err)
	}
	return payslip.Filename(record), nil
}

// ========== SELF-SERVICE ==========

func (s *PayrollServiceImpl) ListMine(ctx context.Context) ([]payroll.PayrollRecordResponse, error) {
	employeeID, err := getEmployeeIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.payrollRepo.ListByEmployee(ctx, employeeID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}

	responses := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, rec.ToResponse())
	}
	return responses, nil
}

func (s *PayrollServiceImpl) WriteMyPayslip(ctx context.Context, id string, w io.Writer) (string, error) {
	employeeID, err := getEmployeeIDFromContext(ctx)
	if err != nil {
		return "", err
	}

	record, err := s.getRecord(ctx, id)
	if err != nil {
		return "", err
	}
	// someone else's record is reported as missing
	if record.EmployeeID != employeeID {
		return "", payroll.ErrPayrollRecordNotFound
	}
	return s.renderPayslip(record, w)
}
