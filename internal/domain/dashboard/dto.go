package dashboard

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// ========== ADMIN DASHBOARD ==========

// AdminDashboardResponse is the combined response for the admin dashboard endpoint
type AdminDashboardResponse struct {
	EmployeeSummary EmployeeSummaryResponse        `json:"employee_summary"`
	Departments     []DepartmentHeadcount          `json:"departments"`
	CurrentPayroll  payroll.PayrollSummaryResponse `json:"current_payroll"`
	RecentEmployees []employee.EmployeeResponse    `json:"recent_employees"`
}

// EmployeeSummaryResponse contains headcount and salary totals
type EmployeeSummaryResponse struct {
	TotalEmployees     int64           `json:"total_employees"`
	ActiveEmployees    int64           `json:"active_employees"`
	InactiveEmployees  int64           `json:"inactive_employees"`
	RecentHires        int64           `json:"recent_hires"` // joined within 30 days
	DepartmentCount    int             `json:"department_count"`
	TotalMonthlySalary decimal.Decimal `json:"total_monthly_salary"` // active employees only
	UpdatedAt          string          `json:"updated_at"`
}

type DepartmentHeadcount struct {
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

// ========== EMPLOYEE DASHBOARD ==========

type EmployeeDashboardResponse struct {
	Profile        employee.EmployeeResponse       `json:"profile"`
	RecentPayrolls []payroll.PayrollRecordResponse `json:"recent_payrolls"`
	Team           []employee.TeamMemberResponse   `json:"team"`
}
