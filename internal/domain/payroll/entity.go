package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusPending   PayrollStatus = "pending"
	PayrollStatusProcessed PayrollStatus = "processed"
	PayrollStatusPaid      PayrollStatus = "paid"
)

func (s PayrollStatus) Valid() bool {
	switch s {
	case PayrollStatusPending, PayrollStatusProcessed, PayrollStatusPaid:
		return true
	}
	return false
}

// PaymentMethod enum
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheck        PaymentMethod = "check"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCash, PaymentMethodCheck:
		return true
	}
	return false
}

// DeductionType enum
type DeductionType string

const (
	DeductionTypeTax       DeductionType = "tax"
	DeductionTypeInsurance DeductionType = "insurance"
	DeductionTypeLoan      DeductionType = "loan"
	DeductionTypeOther     DeductionType = "other"
)

func (t DeductionType) Valid() bool {
	switch t {
	case DeductionTypeTax, DeductionTypeInsurance, DeductionTypeLoan, DeductionTypeOther:
		return true
	}
	return false
}

// Deduction is a single line subtracted from gross pay. Stored as JSONB.
type Deduction struct {
	Type        DeductionType   `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// PayrollRecord - one employee's pay for one month
type PayrollRecord struct {
	ID              string
	EmployeeID      string
	PeriodMonth     int
	PeriodYear      int
	BaseSalary      decimal.Decimal
	OvertimeHours   decimal.Decimal
	OvertimeRate    decimal.Decimal
	Bonus           decimal.Decimal
	Deductions      []Deduction
	OvertimePay     decimal.Decimal
	GrossSalary     decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal
	Status          PayrollStatus
	PaymentMethod   PaymentMethod
	PaymentDate     *time.Time
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined fields
	EmployeeName  *string
	EmployeeCode  *string
	EmployeeEmail *string
	Department    *string
	Position      *string
}

// Input returns the calculator input for the record's stored figures.
func (r PayrollRecord) Input() CalculationInput {
	return CalculationInput{
		BaseSalary:    r.BaseSalary,
		OvertimeHours: r.OvertimeHours,
		OvertimeRate:  r.OvertimeRate,
		Bonus:         r.Bonus,
		Deductions:    r.Deductions,
	}
}

// Apply copies a calculation onto the record.
func (r *PayrollRecord) Apply(c Calculation) {
	r.OvertimeRate = c.OvertimeRate
	r.OvertimePay = c.OvertimePay
	r.GrossSalary = c.GrossSalary
	r.TotalDeductions = c.TotalDeductions
	r.NetSalary = c.NetSalary
}

// Recalculate rounds the record's inputs to cents and recomputes every derived
// figure from them, so the stored net salary always follows from the stored inputs.
func (r *PayrollRecord) Recalculate() error {
	in := r.Input().Rounded(MoneyPlaces)
	r.BaseSalary = in.BaseSalary
	r.OvertimeHours = in.OvertimeHours
	r.Bonus = in.Bonus
	r.Deductions = in.Deductions

	calc := Calculate(in).Round(MoneyPlaces)
	if !calc.WithinRange() {
		return ErrPayrollFiguresOutOfRange
	}
	r.Apply(calc)
	return nil
}

func (r PayrollRecord) IsPaid() bool {
	return r.Status == PayrollStatusPaid
}

// CleanDeductions drops lines without a description or with a non-positive amount.
func CleanDeductions(in []Deduction) []Deduction {
	out := make([]Deduction, 0, len(in))
	for _, d := range in {
		if d.Description == "" || !d.Amount.IsPositive() {
			continue
		}
		if d.Type == "" {
			d.Type = DeductionTypeOther
		}
		out = append(out, d)
	}
	return out
}

func (r PayrollRecord) ToResponse() PayrollRecordResponse {
	resp := PayrollRecordResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		Department:      r.Department,
		Position:        r.Position,
		PeriodMonth:     r.PeriodMonth,
		PeriodYear:      r.PeriodYear,
		BaseSalary:      r.BaseSalary,
		OvertimeHours:   r.OvertimeHours,
		OvertimeRate:    r.OvertimeRate,
		OvertimePay:     r.OvertimePay,
		Bonus:           r.Bonus,
		Deductions:      r.Deductions,
		TotalDeductions: r.TotalDeductions,
		GrossSalary:     r.GrossSalary,
		NetSalary:       r.NetSalary,
		Status:          string(r.Status),
		PaymentMethod:   string(r.PaymentMethod),
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.Format(time.RFC3339),
	}
	if r.EmployeeName != nil {
		resp.EmployeeName = *r.EmployeeName
	}
	if r.EmployeeCode != nil {
		resp.EmployeeCode = *r.EmployeeCode
	}
	if r.PaymentDate != nil {
		paid := r.PaymentDate.Format(time.DateOnly)
		resp.PaymentDate = &paid
	}
	if resp.Deductions == nil {
		resp.Deductions = []Deduction{}
	}
	return resp
}
