package employee

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/export"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	teamSize     = 4

	employeeCodePrefix = "EMP-"
	codeAttempts       = 5
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
	}
}

// currentEmployeeID resolves the employee linked to the caller's token.
func currentEmployeeID(ctx context.Context) (string, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}
	if claims.EmployeeID == nil {
		return "", employee.ErrEmployeeNotLinked
	}
	return *claims.EmployeeID, nil
}

func generateEmployeeCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%06d", employeeCodePrefix, n.Int64()), nil
}

func parseDate(value string) time.Time {
	date, _ := time.Parse(time.DateOnly, value)
	return date
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}

	employees, total, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, emp.ToResponse())
	}

	return employee.ListEmployeeResponse{
		Employees:      responses,
		TotalEmployees: total,
		TotalPages:     int(math.Ceil(float64(total) / float64(filter.Limit))),
		CurrentPage:    filter.Page,
	}, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp.ToResponse(), nil
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	newEmployee := employee.Employee{
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Email:            strings.TrimSpace(req.Email),
		Phone:            req.Phone,
		Department:       strings.TrimSpace(req.Department),
		Position:         strings.TrimSpace(req.Position),
		Salary:           req.Salary,
		DateOfJoining:    parseDate(req.DateOfJoining),
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		Skills:           req.Skills,
		IsActive:         true,
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob := parseDate(*req.DateOfBirth)
		newEmployee.DateOfBirth = &dob
	}
	if req.IsActive != nil {
		newEmployee.IsActive = *req.IsActive
	}

	// Explicit codes must be unique, generated ones are retried on collision
	if req.EmployeeCode != nil {
		newEmployee.EmployeeCode = *req.EmployeeCode
		created, err := s.employeeRepo.Create(ctx, newEmployee)
		if err != nil {
			return employee.EmployeeResponse{}, s.createError(err)
		}
		return created.ToResponse(), nil
	}

	for range codeAttempts {
		code, err := generateEmployeeCode()
		if err != nil {
			return employee.EmployeeResponse{}, fmt.Errorf("failed to generate employee code: %w", err)
		}
		newEmployee.EmployeeCode = code

		created, err := s.employeeRepo.Create(ctx, newEmployee)
		if errors.Is(err, employee.ErrEmployeeCodeExists) {
			slog.Debug("generated employee code collided, retrying", "employee_code", code)
			continue
		}
		if err != nil {
			return employee.EmployeeResponse{}, s.createError(err)
		}
		return created.ToResponse(), nil
	}
	return employee.EmployeeResponse{}, employee.ErrEmployeeCodeExists
}

func (s *EmployeeServiceImpl) createError(err error) error {
	if errors.Is(err, employee.ErrEmployeeCodeExists) || errors.Is(err, employee.ErrEmailExists) {
		return err
	}
	return fmt.Errorf("failed to create employee: %w", err)
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	existing, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	if req.EmployeeCode != nil {
		existing.EmployeeCode = *req.EmployeeCode
	}
	if req.FirstName != nil {
		existing.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		existing.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		existing.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		existing.Phone = *req.Phone
	}
	if req.Department != nil {
		existing.Department = strings.TrimSpace(*req.Department)
	}
	if req.Position != nil {
		existing.Position = strings.TrimSpace(*req.Position)
	}
	if req.Salary != nil {
		existing.Salary = *req.Salary
	}
	if req.DateOfJoining != nil {
		existing.DateOfJoining = parseDate(*req.DateOfJoining)
	}
	if req.DateOfBirth != nil {
		if *req.DateOfBirth == "" {
			existing.DateOfBirth = nil
		} else {
			dob := parseDate(*req.DateOfBirth)
			existing.DateOfBirth = &dob
		}
	}
	if existing.DateOfBirth != nil && !existing.DateOfBirth.Before(existing.DateOfJoining) {
		return employee.EmployeeResponse{}, employee.ErrBirthAfterJoining
	}
	if req.Address != nil {
		existing.Address = *req.Address
	}
	if req.EmergencyContact != nil {
		existing.EmergencyContact = *req.EmergencyContact
	}
	if req.Skills != nil {
		existing.Skills = *req.Skills
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	updated, err := s.employeeRepo.Update(ctx, existing)
	if err != nil {
		switch {
		case errors.Is(err, employee.ErrEmployeeNotFound),
			errors.Is(err, employee.ErrEmployeeCodeExists),
			errors.Is(err, employee.ErrEmailExists):
			return employee.EmployeeResponse{}, err
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to update employee: %w", err)
	}
	return updated.ToResponse(), nil
}

// DeleteEmployee implements employee.EmployeeService. Payroll records of the employee go with it.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id string) error {
	if err := s.employeeRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	slog.Info("employee deleted", "employee_id", id)
	return nil
}

// ExportEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ExportEmployees(ctx context.Context, filter employee.EmployeeFilter, w io.Writer) error {
	if err := filter.Validate(); err != nil {
		return err
	}
	// no pagination on export
	filter.Page, filter.Limit = 0, 0

	employees, _, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list employees: %w", err)
	}
	if err := export.Employees(w, employees); err != nil {
		return fmt.Errorf("failed to write employee export: %w", err)
	}
	return nil
}

func (s *EmployeeServiceImpl) ListDepartments(ctx context.Context) ([]string, error) {
	departments, err := s.employeeRepo.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}

// GetMyProfile implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetMyProfile(ctx context.Context) (employee.EmployeeResponse, error) {
	employeeID, err := currentEmployeeID(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return s.GetEmployee(ctx, employeeID)
}

// UpdateMyProfile implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateMyProfile(ctx context.Context, req employee.UpdateProfileRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	employeeID, err := currentEmployeeID(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	return s.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{
		ID:               employeeID,
		Phone:            req.Phone,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		Skills:           req.Skills,
	})
}

// GetMyTeam implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetMyTeam(ctx context.Context) ([]employee.TeamMemberResponse, error) {
	employeeID, err := currentEmployeeID(ctx)
	if err != nil {
		return nil, err
	}

	me, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, employee.ErrEmployeeNotLinked
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	team, err := s.employeeRepo.ListTeam(ctx, me.Department, me.ID, teamSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list team: %w", err)
	}

	members := make([]employee.TeamMemberResponse, 0, len(team))
	for _, emp := range team {
		members = append(members, emp.ToTeamMember())
	}
	return members, nil
}
