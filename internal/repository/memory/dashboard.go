package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/dashboard"
	"github.com/shopspring/decimal"
)

type DashboardRepository struct {
	s *Store
}

func (s *Store) Dashboard() *DashboardRepository {
	return &DashboardRepository{s: s}
}

func (r *DashboardRepository) GetEmployeeSummary(ctx context.Context, since time.Time) (*dashboard.EmployeeSummaryStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := dashboard.EmployeeSummaryStats{TotalMonthlySalary: decimal.Zero}
	for _, e := range r.s.employees {
		stats.Total++
		if e.IsActive {
			stats.Active++
			stats.TotalMonthlySalary = stats.TotalMonthlySalary.Add(e.Salary)
		} else {
			stats.Inactive++
		}
		if !e.DateOfJoining.Before(since) {
			stats.RecentHires++
		}
	}
	return &stats, nil
}

func (r *DashboardRepository) GetDepartmentHeadcount(ctx context.Context) ([]dashboard.DepartmentHeadcount, error) {
	r.s.mu.RLock()
	counts := map[string]int64{}
	for _, e := range r.s.employees {
		counts[e.Department]++
	}
	r.s.mu.RUnlock()

	out := make([]dashboard.DepartmentHeadcount, 0, len(counts))
	for dept, n := range counts {
		out = append(out, dashboard.DepartmentHeadcount{Department: dept, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Department < out[j].Department
	})
	return out, nil
}
