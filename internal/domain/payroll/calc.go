package payroll

import "github.com/shopspring/decimal"

const (
	// StandardMonthlyHours converts a monthly base salary into an hourly rate.
	StandardMonthlyHours = 160
)

var (
	// DefaultOvertimeRate applies when no overtime multiplier is given.
	DefaultOvertimeRate = decimal.NewFromFloat(1.5)

	// Upper bounds (exclusive) of the stored columns.
	MaxAmount        = decimal.New(1, 13)
	MaxOvertimeHours = decimal.NewFromInt(100000)
	MaxOvertimeRate  = decimal.NewFromInt(1000)
)

// MoneyPlaces is the scale every stored figure is kept at.
const MoneyPlaces = 2

// CalculationInput holds the figures a net salary is derived from.
// Zero values stand in for anything missing.
type CalculationInput struct {
	BaseSalary    decimal.Decimal
	OvertimeHours decimal.Decimal
	OvertimeRate  decimal.Decimal
	Bonus         decimal.Decimal
	Deductions    []Deduction
}

// Rounded returns the input with every figure rounded to the given places,
// which is how the figures are stored.
func (in CalculationInput) Rounded(places int32) CalculationInput {
	out := CalculationInput{
		BaseSalary:    in.BaseSalary.Round(places),
		OvertimeHours: in.OvertimeHours.Round(places),
		OvertimeRate:  in.OvertimeRate.Round(places),
		Bonus:         in.Bonus.Round(places),
	}
	if in.Deductions != nil {
		out.Deductions = make([]Deduction, len(in.Deductions))
		for i, d := range in.Deductions {
			d.Amount = d.Amount.Round(places)
			out.Deductions[i] = d
		}
	}
	return out
}

// Calculation is the full breakdown behind a net salary.
type Calculation struct {
	HourlyRate      decimal.Decimal
	OvertimeRate    decimal.Decimal
	OvertimePay     decimal.Decimal
	GrossSalary     decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal
}

// Calculate derives the net salary:
//
//	hourlyRate  = baseSalary / 160
//	overtimePay = overtimeHours * hourlyRate * overtimeRate
//	netSalary   = baseSalary + overtimePay + bonus - sum(deductions)
//
// A zero overtime rate means the default of 1.5. The result is not clamped and
// may be negative when deductions exceed earnings.
func Calculate(in CalculationInput) Calculation {
	rate := in.OvertimeRate
	if rate.IsZero() {
		rate = DefaultOvertimeRate
	}

	hourly := in.BaseSalary.Div(decimal.NewFromInt(StandardMonthlyHours))
	overtimePay := in.OvertimeHours.Mul(hourly).Mul(rate)
	gross := in.BaseSalary.Add(overtimePay).Add(in.Bonus)
	deductions := TotalDeductions(in.Deductions)

	return Calculation{
		HourlyRate:      hourly,
		OvertimeRate:    rate,
		OvertimePay:     overtimePay,
		GrossSalary:     gross,
		TotalDeductions: deductions,
		NetSalary:       gross.Sub(deductions),
	}
}

// NetSalary is Calculate(in).NetSalary.
func NetSalary(in CalculationInput) decimal.Decimal {
	return Calculate(in).NetSalary
}

// TotalDeductions sums the deduction amounts.
func TotalDeductions(deductions []Deduction) decimal.Decimal {
	total := decimal.Zero
	for _, d := range deductions {
		total = total.Add(d.Amount)
	}
	return total
}

// Round rounds every money figure to the given number of decimal places.
// The hourly rate is left untouched.
func (c Calculation) Round(places int32) Calculation {
	c.OvertimePay = c.OvertimePay.Round(places)
	c.GrossSalary = c.GrossSalary.Round(places)
	c.TotalDeductions = c.TotalDeductions.Round(places)
	c.NetSalary = c.NetSalary.Round(places)
	return c
}

// WithinRange reports whether every money figure fits the stored columns.
func (c Calculation) WithinRange() bool {
	for _, v := range []decimal.Decimal{c.OvertimePay, c.GrossSalary, c.TotalDeductions, c.NetSalary} {
		if v.Abs().GreaterThanOrEqual(MaxAmount) {
			return false
		}
	}
	return true
}
