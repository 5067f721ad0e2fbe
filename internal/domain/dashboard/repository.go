package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EmployeeSummaryStats combines all employee summary counts in single query
type EmployeeSummaryStats struct {
	Total              int64
	Active             int64
	Inactive           int64
	RecentHires        int64
	TotalMonthlySalary decimal.Decimal
}

// DashboardRepository defines the interface for dashboard data access
type DashboardRepository interface {
	// GetEmployeeSummary returns total, active, inactive, hired-since counts and the active salary sum
	GetEmployeeSummary(ctx context.Context, since time.Time) (*EmployeeSummaryStats, error)

	// GetDepartmentHeadcount returns employees per department, largest first
	GetDepartmentHeadcount(ctx context.Context) ([]DepartmentHeadcount, error)
}
