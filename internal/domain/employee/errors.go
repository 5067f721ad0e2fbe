package employee

import "errors"

var (
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrEmployeeCodeExists   = errors.New("employee code already exists")
	ErrEmailExists          = errors.New("email already registered to another employee")
	ErrUserAlreadyLinked    = errors.New("user account is already linked to an employee")
	ErrEmployeeNotLinked    = errors.New("no employee record is linked to this account")
	ErrFutureDateNotAllowed = errors.New("date cannot be in the future")
	ErrBirthAfterJoining    = errors.New("date of birth must be before date of joining")
)
