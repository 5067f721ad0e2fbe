package postgresql_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	testDB     *database.DB
	testDBErr  error
	testDBOnce sync.Once
)

// setupDB connects to TEST_DATABASE_URL, applies the schema and empties every table.
// Tests are skipped when the variable is unset.
func setupDB(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	testDBOnce.Do(func() {
		ctx := context.Background()
		testDB, testDBErr = database.NewPostgreSQLDB(ctx, dsn)
		if testDBErr != nil {
			return
		}
		schema, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "001_init.sql"))
		if err != nil {
			testDBErr = err
			return
		}
		_, testDBErr = testDB.Exec(ctx, string(schema))
	})
	require.NoError(t, testDBErr)

	_, err := testDB.Exec(context.Background(), "TRUNCATE TABLE refresh_tokens, payroll_records, employees, users CASCADE")
	require.NoError(t, err)
	return testDB
}

func newEmployee(code, email, department string, salary int64) employee.Employee {
	return employee.Employee{
		EmployeeCode:  code,
		FirstName:     "Jane",
		LastName:      "Doe",
		Email:         email,
		Phone:         "+62 812 3456 7890",
		Department:    department,
		Position:      "Engineer",
		Salary:        decimal.NewFromInt(salary),
		DateOfJoining: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		Address:       employee.Address{City: "Jakarta", Country: "Indonesia"},
		Skills:        []string{"go"},
		IsActive:      true,
	}
}

func createEmployee(t *testing.T, db *database.DB, code, email, department string, salary int64) employee.Employee {
	t.Helper()
	emp, err := postgresql.NewEmployeeRepository(db).Create(context.Background(), newEmployee(code, email, department, salary))
	require.NoError(t, err)
	return emp
}
