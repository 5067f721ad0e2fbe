package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

// GetEmployeeSummary returns total, active, inactive, recent hires and salary sum in single query
func (r *dashboardRepositoryImpl) GetEmployeeSummary(ctx context.Context, since time.Time) (*dashboard.EmployeeSummaryStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0) as active_count,
			COALESCE(SUM(CASE WHEN NOT is_active THEN 1 ELSE 0 END), 0) as inactive_count,
			COALESCE(SUM(CASE WHEN date_of_joining >= $1 THEN 1 ELSE 0 END), 0) as recent_count,
			COALESCE(SUM(CASE WHEN is_active THEN salary ELSE 0 END), 0) as total_salary
		FROM employees
	`

	var stats dashboard.EmployeeSummaryStats
	err := q.QueryRow(ctx, query, since).Scan(
		&stats.Total, &stats.Active, &stats.Inactive, &stats.RecentHires, &stats.TotalMonthlySalary,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee summary: %w", err)
	}
	return &stats, nil
}

// GetDepartmentHeadcount returns employees per department
func (r *dashboardRepositoryImpl) GetDepartmentHeadcount(ctx context.Context) ([]dashboard.DepartmentHeadcount, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT department, COUNT(*)
		FROM employees
		GROUP BY department
		ORDER BY COUNT(*) DESC, department
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get department headcount: %w", err)
	}

	departments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (dashboard.DepartmentHeadcount, error) {
		var d dashboard.DepartmentHeadcount
		err := row.Scan(&d.Department, &d.Count)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan department headcount: %w", err)
	}
	if departments == nil {
		departments = []dashboard.DepartmentHeadcount{}
	}
	return departments, nil
}
