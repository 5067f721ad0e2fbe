package employee

import (
	"context"
	"io"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	// ListEmployees lists employees with filters and pagination (admin only)
	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)

	// GetEmployee retrieves a single employee by ID
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	// CreateEmployee creates a new employee, generating a code when none is given
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)
	DeleteEmployee(ctx context.Context, id string) error

	// ExportEmployees writes the filtered employee list as CSV
	ExportEmployees(ctx context.Context, filter EmployeeFilter, w io.Writer) error
	ListDepartments(ctx context.Context) ([]string, error)

	// Self-service
	GetMyProfile(ctx context.Context) (EmployeeResponse, error)
	UpdateMyProfile(ctx context.Context, req UpdateProfileRequest) (EmployeeResponse, error)
	GetMyTeam(ctx context.Context) ([]TeamMemberResponse, error)
}
