package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `
	e.id, e.user_id, e.employee_code, e.first_name, e.last_name, e.email, e.phone,
	e.department, e.position, e.salary, e.date_of_birth, e.date_of_joining,
	e.address, e.emergency_contact, e.skills, e.is_active, e.created_at, e.updated_at`

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	var address, contact []byte

	err := row.Scan(
		&emp.ID, &emp.UserID, &emp.EmployeeCode, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone,
		&emp.Department, &emp.Position, &emp.Salary, &emp.DateOfBirth, &emp.DateOfJoining,
		&address, &contact, &emp.Skills, &emp.IsActive, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, err
	}

	if len(address) > 0 {
		if err := json.Unmarshal(address, &emp.Address); err != nil {
			return employee.Employee{}, fmt.Errorf("failed to unmarshal address: %w", err)
		}
	}
	if len(contact) > 0 {
		if err := json.Unmarshal(contact, &emp.EmergencyContact); err != nil {
			return employee.Employee{}, fmt.Errorf("failed to unmarshal emergency contact: %w", err)
		}
	}
	if emp.Skills == nil {
		emp.Skills = []string{}
	}

	return emp, nil
}

func collectEmployees(rows pgx.Rows) ([]employee.Employee, error) {
	defer rows.Close()

	employees := []employee.Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

func employeeJSON(emp employee.Employee) (address, contact []byte, err error) {
	address, err = json.Marshal(emp.Address)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal address: %w", err)
	}
	contact, err = json.Marshal(emp.EmergencyContact)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal emergency contact: %w", err)
	}
	return address, contact, nil
}

func employeeWriteError(err error) error {
	switch {
	case database.ConstraintViolated(err, "employees_employee_code_key"):
		return employee.ErrEmployeeCodeExists
	case database.ConstraintViolated(err, "employees_email_key"):
		return employee.ErrEmailExists
	case database.ConstraintViolated(err, "employees_user_id_key"):
		return employee.ErrUserAlreadyLinked
	}
	return err
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	address, contact, err := employeeJSON(newEmployee)
	if err != nil {
		return employee.Employee{}, err
	}
	skills := newEmployee.Skills
	if skills == nil {
		skills = []string{}
	}

	query := `
		WITH e AS (
			INSERT INTO employees (
				user_id, employee_code, first_name, last_name, email, phone, department, position,
				salary, date_of_birth, date_of_joining, address, emergency_contact, skills, is_active
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING *
		)
		SELECT ` + employeeColumns + ` FROM e
	`

	created, err := scanEmployee(q.QueryRow(ctx, query,
		newEmployee.UserID, newEmployee.EmployeeCode, newEmployee.FirstName, newEmployee.LastName,
		newEmployee.Email, newEmployee.Phone, newEmployee.Department, newEmployee.Position,
		newEmployee.Salary, newEmployee.DateOfBirth, newEmployee.DateOfJoining,
		address, contact, skills, newEmployee.IsActive,
	))
	if err != nil {
		return employee.Employee{}, employeeWriteError(err)
	}
	return created, nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)
	return scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees e WHERE e.id = $1`, id))
}

// GetByUserID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)
	return scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees e WHERE e.user_id = $1`, userID))
}

// GetByEmployeeCode implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByEmployeeCode(ctx context.Context, employeeCode string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)
	return scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees e WHERE e.employee_code = $1`, employeeCode))
}

// buildEmployeeWhere is shared by List and the dashboard counters.
func buildEmployeeWhere(filter employee.EmployeeFilter) (string, []interface{}, int) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(e.first_name ILIKE $%d OR e.last_name ILIKE $%d OR (e.first_name || ' ' || e.last_name) ILIKE $%d OR e.email ILIKE $%d OR e.employee_code ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx, argIdx))
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		argIdx++
	}
	if filter.Department != nil && *filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("e.department = $%d", argIdx))
		args = append(args, *filter.Department)
		argIdx++
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("e.is_active = $%d", argIdx))
		args = append(args, *filter.IsActive)
		argIdx++
	}

	return strings.Join(conditions, " AND "), args, argIdx
}

// List implements employee.EmployeeRepository. A zero Limit returns every match.
func (e *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, e.db)

	whereClause, args, argIdx := buildEmployeeWhere(filter)

	// Count query
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees e WHERE %s", whereClause)
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	// Validate sort column
	validSortColumns := map[string]string{
		"created_at":      "e.created_at",
		"first_name":      "e.first_name",
		"salary":          "e.salary",
		"date_of_joining": "e.date_of_joining",
	}
	sortOrder := "ASC"
	sortKey := filter.Sort
	if strings.HasPrefix(sortKey, "-") {
		sortOrder = "DESC"
		sortKey = strings.TrimPrefix(sortKey, "-")
	}
	sortColumn, ok := validSortColumns[sortKey]
	if !ok {
		sortColumn, sortOrder = "e.created_at", "DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM employees e
		WHERE %s
		ORDER BY %s %s, e.id
	`, employeeColumns, whereClause, sortColumn, sortOrder)

	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	employees, err := collectEmployees(rows)
	if err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

// ListActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	rows, err := q.Query(ctx, `SELECT `+employeeColumns+` FROM employees e WHERE e.is_active ORDER BY e.employee_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	return collectEmployees(rows)
}

// ListTeam implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListTeam(ctx context.Context, department string, excludeID string, limit int) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		WHERE e.department = $1 AND e.id <> $2 AND e.is_active
		ORDER BY e.first_name, e.last_name
		LIMIT $3
	`
	rows, err := q.Query(ctx, query, department, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list team: %w", err)
	}
	return collectEmployees(rows)
}

// ListDepartments implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListDepartments(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, e.db)

	rows, err := q.Query(ctx, `SELECT DISTINCT department FROM employees WHERE department <> '' ORDER BY department`)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	departments, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if departments == nil {
		departments = []string{}
	}
	return departments, nil
}

// Update implements employee.EmployeeRepository. Every column is written from emp.
func (e *employeeRepositoryImpl) Update(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	address, contact, err := employeeJSON(emp)
	if err != nil {
		return employee.Employee{}, err
	}
	skills := emp.Skills
	if skills == nil {
		skills = []string{}
	}

	query := `
		WITH e AS (
			UPDATE employees SET
				employee_code = $1, first_name = $2, last_name = $3, email = $4, phone = $5,
				department = $6, position = $7, salary = $8, date_of_birth = $9, date_of_joining = $10,
				address = $11, emergency_contact = $12, skills = $13, is_active = $14, updated_at = NOW()
			WHERE id = $15
			RETURNING *
		)
		SELECT ` + employeeColumns + ` FROM e
	`

	updated, err := scanEmployee(q.QueryRow(ctx, query,
		emp.EmployeeCode, emp.FirstName, emp.LastName, emp.Email, emp.Phone,
		emp.Department, emp.Position, emp.Salary, emp.DateOfBirth, emp.DateOfJoining,
		address, contact, skills, emp.IsActive, emp.ID,
	))
	if err != nil {
		return employee.Employee{}, employeeWriteError(err)
	}
	return updated, nil
}

// Delete implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// LinkUser implements employee.EmployeeRepository. Only unlinked employees can be claimed.
func (e *employeeRepositoryImpl) LinkUser(ctx context.Context, employeeID, userID string) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `
		UPDATE employees
		SET user_id = $1, updated_at = NOW()
		WHERE id = $2 AND (user_id IS NULL OR user_id = $1)
	`, userID, employeeID)
	if err != nil {
		return employeeWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrUserAlreadyLinked
	}
	return nil
}
