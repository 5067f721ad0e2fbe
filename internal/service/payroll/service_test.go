package payroll

import (
	"bytes"
	"context"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/memory"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payrollFixture struct {
	store   *memory.Store
	service payroll.PayrollService
}

func newPayrollFixture() payrollFixture {
	store := memory.NewStore()
	return payrollFixture{
		store:   store,
		service: NewPayrollService(store.Transactor(), store.Payrolls(), store.Employees()),
	}
}

func (f payrollFixture) createEmployee(t *testing.T, code, department string, salary int64, active bool) employee.Employee {
	t.Helper()
	emp, err := f.store.Employees().Create(context.Background(), employee.Employee{
		EmployeeCode: code,
		FirstName:    "Employee",
		LastName:     code,
		Email:        code + "@example.com",
		Phone:        "+6281234567",
		Department:   department,
		Position:     "Staff",
		Salary:       decimal.NewFromInt(salary),
		IsActive:     active,
	})
	require.NoError(t, err)
	return emp
}

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

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func strPtr(s string) *string { return &s }

func TestPayrollService_Calculate(t *testing.T) {
	f := newPayrollFixture()

	resp, err := f.service.Calculate(context.Background(), payroll.CalculateRequest{
		BaseSalary:    decimal.NewFromInt(4000),
		OvertimeHours: decimal.NewFromInt(10),
		Bonus:         decimal.NewFromInt(500),
		Deductions: []payroll.Deduction{
			{Type: payroll.DeductionTypeTax, Description: "Income tax", Amount: decimal.NewFromInt(400)},
			{Type: payroll.DeductionTypeInsurance, Description: "Health", Amount: decimal.NewFromInt(200)},
			{Type: payroll.DeductionTypeOther, Description: "", Amount: decimal.NewFromInt(999)},
		},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(25).Equal(resp.HourlyRate))
	assert.True(t, decimal.NewFromFloat(1.5).Equal(resp.OvertimeRate))
	assert.True(t, decimal.NewFromInt(375).Equal(resp.OvertimePay))
	assert.True(t, decimal.NewFromInt(1599).Equal(resp.TotalDeductions), "undescribed lines still count")
	assert.True(t, decimal.NewFromInt(3276).Equal(resp.NetSalary), resp.NetSalary.String())

	t.Run("deduction without description", func(t *testing.T) {
		resp, err := f.service.Calculate(context.Background(), payroll.CalculateRequest{
			BaseSalary: decimal.NewFromInt(4000),
			Deductions: []payroll.Deduction{{Type: payroll.DeductionTypeTax, Amount: decimal.NewFromInt(300)}},
		})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(300).Equal(resp.TotalDeductions))
		assert.True(t, decimal.NewFromInt(3700).Equal(resp.NetSalary), resp.NetSalary.String())
	})

	t.Run("rejects invalid figures", func(t *testing.T) {
		tests := []struct {
			name  string
			req   payroll.CalculateRequest
			field string
		}{
			{"negative base", payroll.CalculateRequest{BaseSalary: decimal.NewFromInt(-1)}, "base_salary"},
			{"rate below one", payroll.CalculateRequest{
				BaseSalary:    decimal.NewFromInt(1600),
				OvertimeHours: decimal.NewFromInt(10),
				OvertimeRate:  decimal.RequireFromString("0.5"),
			}, "overtime_rate"},
			{"negative deduction", payroll.CalculateRequest{
				BaseSalary: decimal.NewFromInt(1600),
				Deductions: []payroll.Deduction{{Description: "Refund", Amount: decimal.NewFromInt(-10)}},
			}, "deductions[0].amount"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.service.Calculate(context.Background(), tt.req)
				var validationErrs validator.ValidationErrors
				require.ErrorAs(t, err, &validationErrs)
				assert.Contains(t, validationErrs.ToMap(), tt.field)
			})
		}
	})

	t.Run("figures are taken at cent precision", func(t *testing.T) {
		resp, err := f.service.Calculate(context.Background(), payroll.CalculateRequest{
			BaseSalary:    decimal.NewFromInt(16000),
			OvertimeHours: decimal.NewFromInt(10),
			OvertimeRate:  decimal.RequireFromString("1.555"),
		})
		require.NoError(t, err)
		assert.Equal(t, "1.56", resp.OvertimeRate.String())
		assert.Equal(t, "1560", resp.OvertimePay.String())
	})
}

func TestPayrollService_Create(t *testing.T) {
	f := newPayrollFixture()
	ctx := context.Background()
	emp := f.createEmployee(t, "EMP-000001", "Engineering", 4000, true)

	t.Run("server recomputes net and defaults base salary", func(t *testing.T) {
		created, err := f.service.Create(ctx, payroll.CreatePayrollRequest{
			EmployeeID:    emp.ID,
			PeriodMonth:   3,
			PeriodYear:    2025,
			OvertimeHours: dec("10"),
			Bonus:         dec("500"),
			Deductions: []payroll.Deduction{
				{Type: payroll.DeductionTypeTax, Description: "Income tax", Amount: decimal.NewFromInt(600)},
				{Description: "dropped", Amount: decimal.Zero},
			},
			NetSalary: dec("1"),
		})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(4000).Equal(created.BaseSalary))
		assert.True(t, decimal.NewFromInt(4275).Equal(created.NetSalary))
		assert.Len(t, created.Deductions, 1)
		assert.Equal(t, "pending", created.Status)
		assert.Equal(t, "bank_transfer", created.PaymentMethod)
		assert.Equal(t, "EMP-000001", created.EmployeeCode)
	})

	t.Run("one record per employee and period", func(t *testing.T) {
		_, err := f.service.Create(ctx, payroll.CreatePayrollRequest{EmployeeID: emp.ID, PeriodMonth: 3, PeriodYear: 2025})
		assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyExists)
	})

	t.Run("negative net salary is kept", func(t *testing.T) {
		created, err := f.service.Create(ctx, payroll.CreatePayrollRequest{
			EmployeeID:  emp.ID,
			PeriodMonth: 4,
			PeriodYear:  2025,
			BaseSalary:  dec("100"),
			Deductions:  []payroll.Deduction{{Type: payroll.DeductionTypeLoan, Description: "Loan", Amount: decimal.NewFromInt(250)}},
		})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(-150).Equal(created.NetSalary))
	})

	t.Run("paid status gets a payment date", func(t *testing.T) {
		created, err := f.service.Create(ctx, payroll.CreatePayrollRequest{
			EmployeeID:  emp.ID,
			PeriodMonth: 5,
			PeriodYear:  2025,
			Status:      strPtr("paid"),
		})
		require.NoError(t, err)
		assert.NotNil(t, created.PaymentDate)
	})

	t.Run("stored inputs reproduce the net salary", func(t *testing.T) {
		created, err := f.service.Create(ctx, payroll.CreatePayrollRequest{
			EmployeeID:    emp.ID,
			PeriodMonth:   6,
			PeriodYear:    2025,
			BaseSalary:    dec("16000.004"),
			OvertimeHours: dec("10.005"),
			OvertimeRate:  dec("1.555"),
			Bonus:         dec("99.999"),
			Deductions:    []payroll.Deduction{{Type: payroll.DeductionTypeTax, Description: "Tax", Amount: decimal.RequireFromString("0.125")}},
		})
		require.NoError(t, err)
		assert.Equal(t, "16000", created.BaseSalary.String())
		assert.Equal(t, "10.01", created.OvertimeHours.String())
		assert.Equal(t, "1.56", created.OvertimeRate.String())
		assert.Equal(t, "100", created.Bonus.String())
		assert.Equal(t, "0.13", created.Deductions[0].Amount.String())

		got, err := f.service.Get(ctx, created.ID)
		require.NoError(t, err)
		want := payroll.Calculate(payroll.CalculationInput{
			BaseSalary:    got.BaseSalary,
			OvertimeHours: got.OvertimeHours,
			OvertimeRate:  got.OvertimeRate,
			Bonus:         got.Bonus,
			Deductions:    got.Deductions,
		}).Round(2)
		assert.True(t, want.OvertimePay.Equal(got.OvertimePay), got.OvertimePay.String())
		assert.True(t, want.NetSalary.Equal(got.NetSalary), got.NetSalary.String())
	})

	t.Run("figures beyond the stored range", func(t *testing.T) {
		_, err := f.service.Create(ctx, payroll.CreatePayrollRequest{
			EmployeeID:   emp.ID,
			PeriodMonth:  7,
			PeriodYear:   2025,
			OvertimeRate: dec("1000"),
		})
		var validationErrs validator.ValidationErrors
		require.ErrorAs(t, err, &validationErrs)
		assert.Contains(t, validationErrs.ToMap(), "overtime_rate")

		_, err = f.service.Create(ctx, payroll.CreatePayrollRequest{
			EmployeeID:    emp.ID,
			PeriodMonth:   7,
			PeriodYear:    2025,
			BaseSalary:    dec("9999999999999"),
			OvertimeHours: dec("99999"),
			OvertimeRate:  dec("999"),
		})
		assert.ErrorIs(t, err, payroll.ErrPayrollFiguresOutOfRange)
	})

	t.Run("unknown employee", func(t *testing.T) {
		_, err := f.service.Create(ctx, payroll.CreatePayrollRequest{EmployeeID: "0190a5a4-7e3c-7cc4-9f6e-1f0d1c2b3a4d", PeriodMonth: 3, PeriodYear: 2025})
		assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)
	})
}

func TestPayrollService_UpdateAndDelete(t *testing.T) {
	f := newPayrollFixture()
	ctx := context.Background()
	emp := f.createEmployee(t, "EMP-000001", "Engineering", 3200, true)

	created, err := f.service.Create(ctx, payroll.CreatePayrollRequest{EmployeeID: emp.ID, PeriodMonth: 1, PeriodYear: 2025})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3200).Equal(created.NetSalary))

	updated, err := f.service.Update(ctx, payroll.UpdatePayrollRequest{
		ID:            created.ID,
		OvertimeHours: dec("8"),
		OvertimeRate:  dec("2"),
		Notes:         strPtr("weekend release"),
	})
	require.NoError(t, err)
	// 3200/160 = 20; 8 * 20 * 2 = 320
	assert.True(t, decimal.NewFromInt(320).Equal(updated.OvertimePay))
	assert.True(t, decimal.NewFromInt(3520).Equal(updated.NetSalary))
	assert.Equal(t, "weekend release", *updated.Notes)

	paid, err := f.service.MarkPaid(ctx, payroll.MarkPaidRequest{ID: created.ID, PaymentMethod: strPtr("cash"), PaymentDate: strPtr("2025-02-01")})
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.Status)
	assert.Equal(t, "cash", paid.PaymentMethod)
	assert.Equal(t, "2025-02-01", *paid.PaymentDate)

	_, err = f.service.Update(ctx, payroll.UpdatePayrollRequest{ID: created.ID, Bonus: dec("100")})
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyPaid)

	_, err = f.service.MarkPaid(ctx, payroll.MarkPaidRequest{ID: created.ID})
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyPaid)

	assert.ErrorIs(t, f.service.Delete(ctx, created.ID), payroll.ErrCannotDeletePaidRecord)

	other, err := f.service.Create(ctx, payroll.CreatePayrollRequest{EmployeeID: emp.ID, PeriodMonth: 2, PeriodYear: 2025})
	require.NoError(t, err)
	require.NoError(t, f.service.Delete(ctx, other.ID))
	_, err = f.service.Get(ctx, other.ID)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
}

func TestPayrollService_Process(t *testing.T) {
	f := newPayrollFixture()
	ctx := context.Background()
	already := f.createEmployee(t, "EMP-000001", "Engineering", 4000, true)
	f.createEmployee(t, "EMP-000002", "Engineering", 5000, true)
	f.createEmployee(t, "EMP-000003", "Finance", 6000, true)
	f.createEmployee(t, "EMP-000004", "Finance", 7000, false)

	_, err := f.service.Create(ctx, payroll.CreatePayrollRequest{EmployeeID: already.ID, PeriodMonth: 6, PeriodYear: 2025})
	require.NoError(t, err)

	created, err := f.service.Process(ctx, payroll.ProcessPayrollRequest{PeriodMonth: 6, PeriodYear: 2025})
	require.NoError(t, err)
	require.Len(t, created, 2)
	for _, rec := range created {
		assert.Equal(t, "processed", rec.Status)
		assert.True(t, rec.BaseSalary.Equal(rec.NetSalary))
	}

	again, err := f.service.Process(ctx, payroll.ProcessPayrollRequest{PeriodMonth: 6, PeriodYear: 2025})
	require.NoError(t, err)
	assert.Empty(t, again)

	summary, err := f.service.Summary(ctx, 6, 2025)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Count)
	assert.True(t, decimal.NewFromInt(15000).Equal(summary.TotalPayroll))
	assert.True(t, decimal.NewFromInt(5000).Equal(summary.AverageSalary))
	assert.True(t, decimal.NewFromInt(9000).Equal(summary.ByDepartment["Engineering"]))
	assert.Equal(t, 2, summary.ByStatus[payroll.PayrollStatusProcessed])
	assert.Equal(t, 1, summary.ByStatus[payroll.PayrollStatusPending])

	_, err = f.service.Process(ctx, payroll.ProcessPayrollRequest{PeriodMonth: 13, PeriodYear: 2025})
	var validationErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &validationErrs)
}

func TestPayrollService_List(t *testing.T) {
	f := newPayrollFixture()
	ctx := context.Background()
	eng := f.createEmployee(t, "EMP-000001", "Engineering", 4000, true)
	fin := f.createEmployee(t, "EMP-000002", "Finance", 5000, true)

	for month := 1; month <= 3; month++ {
		_, err := f.service.Create(ctx, payroll.CreatePayrollRequest{EmployeeID: eng.ID, PeriodMonth: month, PeriodYear: 2025})
		require.NoError(t, err)
	}
	_, err := f.service.Create(ctx, payroll.CreatePayrollRequest{EmployeeID: fin.ID, PeriodMonth: 1, PeriodYear: 2025})
	require.NoError(t, err)

	list, err := f.service.List(ctx, payroll.PayrollFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), list.TotalCount)
	assert.Equal(t, 2, list.TotalPages)
	assert.Len(t, list.Data, 2)
	assert.Equal(t, 3, list.Data[0].PeriodMonth)

	month := 1
	list, err = f.service.List(ctx, payroll.PayrollFilter{PeriodMonth: &month, Department: strPtr("Finance")})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, fin.ID, list.Data[0].EmployeeID)
}

func TestPayrollService_SelfService(t *testing.T) {
	f := newPayrollFixture()
	ctx := context.Background()
	me := f.createEmployee(t, "EMP-000001", "Engineering", 4000, true)
	other := f.createEmployee(t, "EMP-000002", "Engineering", 4000, true)

	mine, err := f.service.Create(ctx, payroll.CreatePayrollRequest{EmployeeID: me.ID, PeriodMonth: 1, PeriodYear: 2025})
	require.NoError(t, err)
	theirs, err := f.service.Create(ctx, payroll.CreatePayrollRequest{EmployeeID: other.ID, PeriodMonth: 1, PeriodYear: 2025})
	require.NoError(t, err)

	myCtx := contextFor(t, &me.ID)

	records, err := f.service.ListMine(myCtx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, mine.ID, records[0].ID)

	var buf bytes.Buffer
	filename, err := f.service.WriteMyPayslip(myCtx, mine.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, "payslip-EMP-000001-2025-01.pdf", filename)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	_, err = f.service.WriteMyPayslip(myCtx, theirs.ID, &bytes.Buffer{})
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)

	_, err = f.service.ListMine(contextFor(t, nil))
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotLinked)
}
