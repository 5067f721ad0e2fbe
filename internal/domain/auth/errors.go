package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailAlreadyExists  = errors.New("email already registered")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmployeeCodeUnknown = errors.New("no employee with that employee code")
	ErrEmployeeTaken       = errors.New("employee is already linked to another account")
	ErrAlreadyLinked       = errors.New("account is already linked to an employee")
)
