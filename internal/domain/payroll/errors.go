package payroll

import "errors"

var (
	ErrPayrollRecordNotFound      = errors.New("payroll record not found")
	ErrPayrollRecordAlreadyExists = errors.New("payroll record already exists for this period")
	ErrPayrollRecordAlreadyPaid   = errors.New("payroll record already paid, cannot modify")
	ErrCannotDeletePaidRecord     = errors.New("cannot delete paid payroll record")
	ErrInvalidPeriod              = errors.New("invalid payroll period")
	ErrPayrollFiguresOutOfRange   = errors.New("calculated payroll figures exceed the allowed range")
	ErrEmployeeNotFound           = errors.New("employee not found")
	ErrEmployeeNotLinked          = errors.New("no employee record is linked to this account")
)
