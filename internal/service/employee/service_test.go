package employee

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/memory"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (employee.EmployeeService, *memory.Store) {
	store := memory.NewStore()
	return NewEmployeeService(store.Employees()), store
}

// contextFor returns a context carrying an access token for the given employee link.
func contextFor(t *testing.T, employeeID *string) context.Context {
	t.Helper()
	svc, err := jwt.NewJWTService("test-secret-key-for-jwt", "1h", "24h", false)
	require.NoError(t, err)
	token, _, err := svc.GenerateAccessToken("user-1", "user@example.com", employeeID, user.RoleEmployee)
	require.NoError(t, err)
	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), decoded, nil)
}

func validCreateRequest(email string) employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		FirstName:     "Jane",
		LastName:      "Doe",
		Email:         email,
		Phone:         "+62 812 3456 7890",
		Department:    "Engineering",
		Position:      "Backend Engineer",
		Salary:        decimal.NewFromInt(5000),
		DateOfJoining: "2023-01-15",
		Skills:        []string{"go", "sql"},
	}
}

func TestEmployeeService_CreateEmployee(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	t.Run("generates employee code", func(t *testing.T) {
		created, err := service.CreateEmployee(ctx, validCreateRequest("jane@example.com"))
		require.NoError(t, err)
		assert.Regexp(t, `^EMP-\d{6}$`, created.EmployeeCode)
		assert.True(t, validator.IsValidEmployeeCode(created.EmployeeCode))
		assert.True(t, created.IsActive)
		assert.Equal(t, "Jane Doe", created.FullName)
		assert.Equal(t, "2023-01-15", created.DateOfJoining)
	})

	t.Run("explicit code kept and must be unique", func(t *testing.T) {
		req := validCreateRequest("code@example.com")
		code := "EMP-000042"
		req.EmployeeCode = &code

		created, err := service.CreateEmployee(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, code, created.EmployeeCode)

		req.Email = "other@example.com"
		_, err = service.CreateEmployee(ctx, req)
		assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := service.CreateEmployee(ctx, validCreateRequest("JANE@example.com"))
		assert.ErrorIs(t, err, employee.ErrEmailExists)
	})

	t.Run("validation error", func(t *testing.T) {
		req := validCreateRequest("invalid@example.com")
		req.FirstName = ""
		req.DateOfJoining = time.Now().AddDate(0, 0, 2).Format(time.DateOnly)

		_, err := service.CreateEmployee(ctx, req)
		var validationErrs validator.ValidationErrors
		require.ErrorAs(t, err, &validationErrs)
		assert.Len(t, validationErrs, 2)
	})
}

func TestEmployeeService_UpdateEmployee(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	created, err := service.CreateEmployee(ctx, validCreateRequest("update@example.com"))
	require.NoError(t, err)

	salary := decimal.NewFromInt(6500)
	position := "Lead Engineer"
	inactive := false
	updated, err := service.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{
		ID:       created.ID,
		Salary:   &salary,
		Position: &position,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.True(t, salary.Equal(updated.Salary))
	assert.Equal(t, position, updated.Position)
	assert.False(t, updated.IsActive)
	assert.Equal(t, created.FirstName, updated.FirstName)
	assert.Equal(t, created.EmployeeCode, updated.EmployeeCode)

	t.Run("birth after joining", func(t *testing.T) {
		dob := "2024-01-01"
		_, err := service.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{ID: created.ID, DateOfBirth: &dob})
		assert.ErrorIs(t, err, employee.ErrBirthAfterJoining)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := service.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{ID: "0190a5a4-7e3c-7cc4-9f6e-1f0d1c2b3a4d", Position: &position})
		assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	})
}

func TestEmployeeService_ListEmployees(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		req := validCreateRequest(email)
		if i == 2 {
			req.Department = "Finance"
		}
		_, err := service.CreateEmployee(ctx, req)
		require.NoError(t, err)
	}

	t.Run("defaults and pagination metadata", func(t *testing.T) {
		list, err := service.ListEmployees(ctx, employee.EmployeeFilter{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), list.TotalEmployees)
		assert.Equal(t, 2, list.TotalPages)
		assert.Equal(t, 1, list.CurrentPage)
		assert.Len(t, list.Employees, 2)
	})

	t.Run("department filter", func(t *testing.T) {
		dept := "Finance"
		list, err := service.ListEmployees(ctx, employee.EmployeeFilter{Department: &dept})
		require.NoError(t, err)
		require.Len(t, list.Employees, 1)
		assert.Equal(t, "c@example.com", list.Employees[0].Email)
	})

	t.Run("limit over maximum", func(t *testing.T) {
		_, err := service.ListEmployees(ctx, employee.EmployeeFilter{Limit: 101})
		var validationErrs validator.ValidationErrors
		assert.ErrorAs(t, err, &validationErrs)
	})

	t.Run("departments", func(t *testing.T) {
		departments, err := service.ListDepartments(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Engineering", "Finance"}, departments)
	})
}

func TestEmployeeService_ExportEmployees(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	for _, email := range []string{"one@example.com", "two@example.com"} {
		_, err := service.CreateEmployee(ctx, validCreateRequest(email))
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, service.ExportEmployees(ctx, employee.EmployeeFilter{}, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Name", "Email", "Department", "Position", "Status"}, rows[0])
	assert.Equal(t, "Active", rows[1][5])
}

func TestEmployeeService_DeleteEmployee(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	created, err := service.CreateEmployee(ctx, validCreateRequest("delete@example.com"))
	require.NoError(t, err)

	require.NoError(t, service.DeleteEmployee(ctx, created.ID))
	_, err = service.GetEmployee(ctx, created.ID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	assert.ErrorIs(t, service.DeleteEmployee(ctx, created.ID), employee.ErrEmployeeNotFound)
}

func TestEmployeeService_SelfService(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	me, err := service.CreateEmployee(ctx, validCreateRequest("me@example.com"))
	require.NoError(t, err)
	for _, email := range []string{"t1@example.com", "t2@example.com", "t3@example.com", "t4@example.com", "t5@example.com"} {
		_, err := service.CreateEmployee(ctx, validCreateRequest(email))
		require.NoError(t, err)
	}
	other := validCreateRequest("finance@example.com")
	other.Department = "Finance"
	_, err = service.CreateEmployee(ctx, other)
	require.NoError(t, err)

	myCtx := contextFor(t, &me.ID)

	t.Run("profile", func(t *testing.T) {
		profile, err := service.GetMyProfile(myCtx)
		require.NoError(t, err)
		assert.Equal(t, me.ID, profile.ID)
	})

	t.Run("update own contact fields", func(t *testing.T) {
		phone := "+62 811 0000 1111"
		skills := []string{"leadership"}
		updated, err := service.UpdateMyProfile(myCtx, employee.UpdateProfileRequest{Phone: &phone, Skills: &skills})
		require.NoError(t, err)
		assert.Equal(t, phone, updated.Phone)
		assert.Equal(t, skills, updated.Skills)
		assert.True(t, me.Salary.Equal(updated.Salary))
	})

	t.Run("team excludes self and is capped", func(t *testing.T) {
		team, err := service.GetMyTeam(myCtx)
		require.NoError(t, err)
		assert.Len(t, team, 4)
		for _, member := range team {
			assert.NotEqual(t, me.ID, member.ID)
			assert.Equal(t, "Engineering", member.Department)
		}
	})

	t.Run("not linked", func(t *testing.T) {
		_, err := service.GetMyProfile(contextFor(t, nil))
		assert.ErrorIs(t, err, employee.ErrEmployeeNotLinked)
		_, err = service.GetMyTeam(contextFor(t, nil))
		assert.ErrorIs(t, err, employee.ErrEmployeeNotLinked)
	})
}
