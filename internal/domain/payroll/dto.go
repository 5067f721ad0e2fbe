package payroll

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== CALCULATOR DTOs ==========

type CalculateRequest struct {
	BaseSalary    decimal.Decimal `json:"base_salary"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	OvertimeRate  decimal.Decimal `json:"overtime_rate"`
	Bonus         decimal.Decimal `json:"bonus"`
	Deductions    []Deduction     `json:"deductions"`
}

func (r *CalculateRequest) Validate() error {
	var errs validator.ValidationErrors
	validateFigures(&errs, &r.BaseSalary, &r.OvertimeHours, &r.OvertimeRate, &r.Bonus)
	validateDeductions(&errs, r.Deductions)
	return errs.Err()
}

type CalculationResponse struct {
	HourlyRate      decimal.Decimal `json:"hourly_rate"`
	OvertimeRate    decimal.Decimal `json:"overtime_rate"`
	OvertimePay     decimal.Decimal `json:"overtime_pay"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`
}

// ========== PAYROLL RECORD DTOs ==========

type CreatePayrollRequest struct {
	EmployeeID    string           `json:"employee_id"`
	PeriodMonth   int              `json:"period_month"`
	PeriodYear    int              `json:"period_year"`
	BaseSalary    *decimal.Decimal `json:"base_salary,omitempty"`
	OvertimeHours *decimal.Decimal `json:"overtime_hours,omitempty"`
	OvertimeRate  *decimal.Decimal `json:"overtime_rate,omitempty"`
	Bonus         *decimal.Decimal `json:"bonus,omitempty"`
	Deductions    []Deduction      `json:"deductions,omitempty"`
	Status        *string          `json:"status,omitempty"`
	PaymentMethod *string          `json:"payment_method,omitempty"`
	PaymentDate   *string          `json:"payment_date,omitempty"`
	Notes         *string          `json:"notes,omitempty"`

	// Accepted for compatibility with clients that compute it; the stored value is always recomputed.
	NetSalary *decimal.Decimal `json:"net_salary,omitempty"`
}

func (r *CreatePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	validatePeriod(&errs, r.PeriodMonth, r.PeriodYear)
	validateFigures(&errs, r.BaseSalary, r.OvertimeHours, r.OvertimeRate, r.Bonus)
	validateDeductions(&errs, r.Deductions)
	validateStatusAndPayment(&errs, r.Status, r.PaymentMethod, r.PaymentDate)
	if r.Notes != nil && len(*r.Notes) > 1000 {
		errs.Add("notes", "notes must not exceed 1000 characters")
	}

	return errs.Err()
}

type UpdatePayrollRequest struct {
	ID            string           `json:"-"`
	BaseSalary    *decimal.Decimal `json:"base_salary,omitempty"`
	OvertimeHours *decimal.Decimal `json:"overtime_hours,omitempty"`
	OvertimeRate  *decimal.Decimal `json:"overtime_rate,omitempty"`
	Bonus         *decimal.Decimal `json:"bonus,omitempty"`
	Deductions    *[]Deduction     `json:"deductions,omitempty"`
	Status        *string          `json:"status,omitempty"`
	PaymentMethod *string          `json:"payment_method,omitempty"`
	PaymentDate   *string          `json:"payment_date,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
	NetSalary     *decimal.Decimal `json:"net_salary,omitempty"`
}

func (r *UpdatePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	validateFigures(&errs, r.BaseSalary, r.OvertimeHours, r.OvertimeRate, r.Bonus)
	if r.Deductions != nil {
		validateDeductions(&errs, *r.Deductions)
	}
	validateStatusAndPayment(&errs, r.Status, r.PaymentMethod, r.PaymentDate)
	if r.Notes != nil && len(*r.Notes) > 1000 {
		errs.Add("notes", "notes must not exceed 1000 characters")
	}

	return errs.Err()
}

type ProcessPayrollRequest struct {
	PeriodMonth int `json:"period_month"`
	PeriodYear  int `json:"period_year"`
}

func (r *ProcessPayrollRequest) Validate() error {
	var errs validator.ValidationErrors
	validatePeriod(&errs, r.PeriodMonth, r.PeriodYear)
	return errs.Err()
}

type MarkPaidRequest struct {
	ID            string  `json:"-"`
	PaymentMethod *string `json:"payment_method,omitempty"`
	PaymentDate   *string `json:"payment_date,omitempty"`
}

func (r *MarkPaidRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	validateStatusAndPayment(&errs, nil, r.PaymentMethod, r.PaymentDate)
	return errs.Err()
}

type PayrollFilter struct {
	PeriodMonth *int
	PeriodYear  *int
	Status      *string
	EmployeeID  *string
	Department  *string
	Page        int
	Limit       int
	SortBy      string
	SortOrder   string
}

func (f *PayrollFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.PeriodMonth != nil && !validator.IsValidMonth(*f.PeriodMonth) {
		errs.Add("period_month", "period_month must be between 1 and 12")
	}
	if f.PeriodYear != nil && !validator.IsValidYear(*f.PeriodYear) {
		errs.Add("period_year", "period_year must be between 2000 and 2100")
	}
	if f.Status != nil && !PayrollStatus(*f.Status).Valid() {
		errs.Add("status", "status must be one of pending, processed, paid")
	}
	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
	return errs.Err()
}

type PayrollRecordResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    string          `json:"employee_name"`
	EmployeeCode    string          `json:"employee_code"`
	Department      *string         `json:"department,omitempty"`
	Position        *string         `json:"position,omitempty"`
	PeriodMonth     int             `json:"period_month"`
	PeriodYear      int             `json:"period_year"`
	BaseSalary      decimal.Decimal `json:"base_salary"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	OvertimeRate    decimal.Decimal `json:"overtime_rate"`
	OvertimePay     decimal.Decimal `json:"overtime_pay"`
	Bonus           decimal.Decimal `json:"bonus"`
	Deductions      []Deduction     `json:"deductions"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	Status          string          `json:"status"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentDate     *string         `json:"payment_date,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

type ListPayrollRecordResponse struct {
	Data       []PayrollRecordResponse `json:"data"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"total_pages"`
}

type PayrollSummaryResponse struct {
	PeriodMonth int `json:"period_month"`
	PeriodYear  int `json:"period_year"`
	PayrollStats
}

// ========== VALIDATION HELPERS ==========

func validatePeriod(errs *validator.ValidationErrors, month, year int) {
	if !validator.IsValidMonth(month) {
		errs.Add("period_month", "period_month must be between 1 and 12")
	}
	if !validator.IsValidYear(year) {
		errs.Add("period_year", "period_year must be between 2000 and 2100")
	}
}

func validateFigures(errs *validator.ValidationErrors, base, hours, rate, bonus *decimal.Decimal) {
	if base != nil {
		validateAmount(errs, "base_salary", *base)
	}
	if hours != nil {
		if hours.IsNegative() {
			errs.Add("overtime_hours", "overtime_hours must be non-negative")
		} else if hours.GreaterThanOrEqual(MaxOvertimeHours) {
			errs.Add("overtime_hours", "overtime_hours must be less than "+MaxOvertimeHours.String())
		}
	}
	// zero means the default rate
	if rate != nil && !rate.IsZero() {
		if rate.LessThan(decimal.NewFromInt(1)) {
			errs.Add("overtime_rate", "overtime_rate must be at least 1")
		} else if rate.GreaterThanOrEqual(MaxOvertimeRate) {
			errs.Add("overtime_rate", "overtime_rate must be less than "+MaxOvertimeRate.String())
		}
	}
	if bonus != nil {
		validateAmount(errs, "bonus", *bonus)
	}
}

func validateAmount(errs *validator.ValidationErrors, field string, amount decimal.Decimal) {
	if amount.IsNegative() {
		errs.Add(field, field+" must be non-negative")
	} else if amount.GreaterThanOrEqual(MaxAmount) {
		errs.Add(field, field+" must be less than "+MaxAmount.String())
	}
}

func validateDeductions(errs *validator.ValidationErrors, deductions []Deduction) {
	for i, ded := range deductions {
		field := "deductions[" + validator.Itoa(i) + "]"
		if ded.Type != "" && !ded.Type.Valid() {
			errs.Add(field+".type", "type must be one of tax, insurance, loan, other")
		}
		if len(ded.Description) > 255 {
			errs.Add(field+".description", "description must not exceed 255 characters")
		}
		if ded.Amount.IsNegative() {
			errs.Add(field+".amount", "amount must be non-negative")
		} else if ded.Amount.GreaterThanOrEqual(MaxAmount) {
			errs.Add(field+".amount", "amount must be less than "+MaxAmount.String())
		}
	}
}

func validateStatusAndPayment(errs *validator.ValidationErrors, status, method, date *string) {
	if status != nil && !PayrollStatus(*status).Valid() {
		errs.Add("status", "status must be one of pending, processed, paid")
	}
	if method != nil && !PaymentMethod(*method).Valid() {
		errs.Add("payment_method", "payment_method must be one of bank_transfer, cash, check")
	}
	if date != nil {
		if _, ok := validator.IsValidDate(*date); !ok {
			errs.Add("payment_date", "payment_date must be in YYYY-MM-DD format")
		}
	}
}
