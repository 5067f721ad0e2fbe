package dashboard

import "context"

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	// GetAdminDashboard returns combined dashboard data using goroutines
	GetAdminDashboard(ctx context.Context) (*AdminDashboardResponse, error)

	// GetEmployeeDashboard returns the caller's profile, latest payrolls and team
	GetEmployeeDashboard(ctx context.Context) (*EmployeeDashboardResponse, error)
}
