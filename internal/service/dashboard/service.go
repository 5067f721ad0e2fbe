package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"golang.org/x/sync/errgroup"
)

const (
	recentHireWindowDays = 30
	recentEmployeesLimit = 5
	recentPayrollsLimit  = 3
	teamLimit            = 4
)

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	employeeRepo employee.EmployeeRepository
	payrollRepo  payroll.PayrollRepository
}

func NewDashboardService(repo dashboard.DashboardRepository, employeeRepo employee.EmployeeRepository, payrollRepo payroll.PayrollRepository) dashboard.DashboardService {
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		employeeRepo:        employeeRepo,
		payrollRepo:         payrollRepo,
	}
}

// GetAdminDashboard returns combined dashboard data using parallel goroutines
func (s *DashboardServiceImpl) GetAdminDashboard(ctx context.Context) (*dashboard.AdminDashboardResponse, error) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())
	since := now.AddDate(0, 0, -recentHireWindowDays)

	var (
		employeeSummary dashboard.EmployeeSummaryResponse
		departments     []dashboard.DepartmentHeadcount
		currentPayroll  payroll.PayrollSummaryResponse
		recentEmployees []employee.EmployeeResponse
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Employee Summary (1 query: total, active, inactive, recent hires, salary sum)
	g.Go(func() error {
		stats, err := s.GetEmployeeSummary(gCtx, since)
		if err != nil {
			return fmt.Errorf("failed to get employee summary: %w", err)
		}
		employeeSummary = dashboard.EmployeeSummaryResponse{
			TotalEmployees:     stats.Total,
			ActiveEmployees:    stats.Active,
			InactiveEmployees:  stats.Inactive,
			RecentHires:        stats.RecentHires,
			TotalMonthlySalary: stats.TotalMonthlySalary,
			UpdatedAt:          now.Format(time.RFC3339),
		}
		return nil
	})

	// 2. Headcount per department
	g.Go(func() error {
		counts, err := s.GetDepartmentHeadcount(gCtx)
		if err != nil {
			return fmt.Errorf("failed to get department headcount: %w", err)
		}
		departments = counts
		return nil
	})

	// 3. Current month payroll
	g.Go(func() error {
		records, err := s.payrollRepo.ListByPeriod(gCtx, month, year)
		if err != nil {
			return fmt.Errorf("failed to list current payroll: %w", err)
		}
		currentPayroll = payroll.PayrollSummaryResponse{
			PeriodMonth:  month,
			PeriodYear:   year,
			PayrollStats: payroll.Summarize(records),
		}
		return nil
	})

	// 4. Newest employees
	g.Go(func() error {
		employees, _, err := s.employeeRepo.List(gCtx, employee.EmployeeFilter{
			Page:  1,
			Limit: recentEmployeesLimit,
			Sort:  "-created_at",
		})
		if err != nil {
			return fmt.Errorf("failed to list recent employees: %w", err)
		}
		recentEmployees = make([]employee.EmployeeResponse, 0, len(employees))
		for _, emp := range employees {
			recentEmployees = append(recentEmployees, emp.ToResponse())
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	employeeSummary.DepartmentCount = len(departments)

	return &dashboard.AdminDashboardResponse{
		EmployeeSummary: employeeSummary,
		Departments:     departments,
		CurrentPayroll:  currentPayroll,
		RecentEmployees: recentEmployees,
	}, nil
}

// GetEmployeeDashboard returns the caller's profile, latest payrolls and team
func (s *DashboardServiceImpl) GetEmployeeDashboard(ctx context.Context) (*dashboard.EmployeeDashboardResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	if claims.EmployeeID == nil {
		return nil, employee.ErrEmployeeNotLinked
	}

	me, err := s.employeeRepo.GetByID(ctx, *claims.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, employee.ErrEmployeeNotLinked
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	var (
		recentPayrolls []payroll.PayrollRecordResponse
		team           []employee.TeamMemberResponse
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		records, err := s.payrollRepo.ListByEmployee(gCtx, me.ID, recentPayrollsLimit)
		if err != nil {
			return fmt.Errorf("failed to list payroll records: %w", err)
		}
		recentPayrolls = make([]payroll.PayrollRecordResponse, 0, len(records))
		for _, rec := range records {
			recentPayrolls = append(recentPayrolls, rec.ToResponse())
		}
		return nil
	})

	g.Go(func() error {
		members, err := s.employeeRepo.ListTeam(gCtx, me.Department, me.ID, teamLimit)
		if err != nil {
			return fmt.Errorf("failed to list team: %w", err)
		}
		team = make([]employee.TeamMemberResponse, 0, len(members))
		for _, m := range members {
			team = append(team, m.ToTeamMember())
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dashboard.EmployeeDashboardResponse{
		Profile:        me.ToResponse(),
		RecentPayrolls: recentPayrolls,
		Team:           team,
	}, nil
}
