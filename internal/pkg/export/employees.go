package export

import (
	"encoding/csv"
	"io"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
)

const EmployeesFilename = "employees.csv"

var employeeHeader = []string{"ID", "Name", "Email", "Department", "Position", "Status"}

// Employees writes one CSV row per employee. The ID column carries the employee code.
func Employees(w io.Writer, employees []employee.Employee) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(employeeHeader); err != nil {
		return err
	}
	for _, emp := range employees {
		row := []string{emp.EmployeeCode, emp.FullName(), emp.Email, emp.Department, emp.Position, emp.StatusLabel()}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
