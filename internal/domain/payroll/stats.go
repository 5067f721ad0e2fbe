package payroll

import "github.com/shopspring/decimal"

// PayrollStats aggregates a set of payroll records.
type PayrollStats struct {
	Count           int                        `json:"count"`
	TotalPayroll    decimal.Decimal            `json:"total_payroll"`
	AverageSalary   decimal.Decimal            `json:"average_salary"`
	TotalBaseSalary decimal.Decimal            `json:"total_base_salary"`
	TotalOvertime   decimal.Decimal            `json:"total_overtime"`
	TotalBonuses    decimal.Decimal            `json:"total_bonuses"`
	TotalDeductions decimal.Decimal            `json:"total_deductions"`
	ByDepartment    map[string]decimal.Decimal `json:"by_department"`
	ByStatus        map[PayrollStatus]int      `json:"by_status"`
}

// UnknownDepartment groups records whose employee has no department.
const UnknownDepartment = "Unknown"

// Summarize totals net pay, bonuses and deductions across records.
// The average is zero for an empty set.
func Summarize(records []PayrollRecord) PayrollStats {
	stats := PayrollStats{
		TotalPayroll:    decimal.Zero,
		AverageSalary:   decimal.Zero,
		TotalBaseSalary: decimal.Zero,
		TotalOvertime:   decimal.Zero,
		TotalBonuses:    decimal.Zero,
		TotalDeductions: decimal.Zero,
		ByDepartment:    make(map[string]decimal.Decimal),
		ByStatus:        make(map[PayrollStatus]int),
	}

	for _, r := range records {
		stats.Count++
		stats.TotalPayroll = stats.TotalPayroll.Add(r.NetSalary)
		stats.TotalBaseSalary = stats.TotalBaseSalary.Add(r.BaseSalary)
		stats.TotalOvertime = stats.TotalOvertime.Add(r.OvertimePay)
		stats.TotalBonuses = stats.TotalBonuses.Add(r.Bonus)
		stats.TotalDeductions = stats.TotalDeductions.Add(r.TotalDeductions)

		dept := UnknownDepartment
		if r.Department != nil && *r.Department != "" {
			dept = *r.Department
		}
		stats.ByDepartment[dept] = stats.ByDepartment[dept].Add(r.NetSalary)
		stats.ByStatus[r.Status]++
	}

	if stats.Count > 0 {
		stats.AverageSalary = stats.TotalPayroll.Div(decimal.NewFromInt(int64(stats.Count))).Round(2)
	}
	return stats
}
