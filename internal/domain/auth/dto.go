package auth

import "github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"

type RegisterRequest struct {
	FullName        string `json:"full_name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	// Full name
	if validator.IsEmpty(r.FullName) {
		errs.Add("full_name", "full_name is required")
	} else if len(r.FullName) > 255 {
		errs.Add("full_name", "full_name must not exceed 255 characters")
	}

	// Username
	if validator.IsEmpty(r.Username) {
		errs.Add("username", "username is required")
	} else if !validator.IsValidUsername(r.Username) {
		errs.Add("username", "username must be 3 to 50 characters of letters, numbers, dots, underscores, and hyphens")
	}

	validateEmail(&errs, r.Email)
	validatePassword(&errs, r.Password)

	if validator.IsEmpty(r.ConfirmPassword) {
		errs.Add("confirm_password", "confirm_password is required")
	} else if r.ConfirmPassword != r.Password {
		errs.Add("confirm_password", "password and confirm_password do not match")
	}

	return errs.Err()
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors
	validateEmail(&errs, r.Email)
	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	} else if len(r.Password) > 255 {
		errs.Add("password", "password must not exceed 255 characters")
	}
	return errs.Err()
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshTokenRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.RefreshToken) {
		errs.Add("refresh_token", "refresh_token is required")
	} else if len(r.RefreshToken) > 1024 {
		errs.Add("refresh_token", "refresh_token must not exceed 1024 characters")
	}
	return errs.Err()
}

// LinkEmployeeRequest attaches the current account to an existing employee record.
type LinkEmployeeRequest struct {
	EmployeeCode string `json:"employee_code"`
}

func (r *LinkEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeCode) {
		errs.Add("employee_code", "employee_code is required")
	} else if !validator.IsValidEmployeeCode(r.EmployeeCode) {
		errs.Add("employee_code", "employee_code must look like EMP-000123")
	}
	return errs.Err()
}

// GoogleProfile is the subset of the Google userinfo used to sign in.
type GoogleProfile struct {
	GoogleID string
	Email    string
	FullName string
}

type SessionTrackingRequest struct {
	UserAgent string
	IPAddress string
}

type TokenResponse struct {
	AccessToken           string `json:"access_token"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
}

type AccessTokenResponse struct {
	AccessToken          string `json:"access_token"`
	AccessTokenExpiresIn int64  `json:"access_token_expires_in"`
}

func validateEmail(errs *validator.ValidationErrors, email string) {
	if validator.IsEmpty(email) {
		errs.Add("email", "email is required")
	} else if len(email) > 254 {
		errs.Add("email", "email must not exceed 254 characters")
	} else if !validator.IsValidEmail(email) {
		errs.Add("email", "email must be a valid email address, e.g. user@example.com")
	}
}

func validatePassword(errs *validator.ValidationErrors, password string) {
	if validator.IsEmpty(password) {
		errs.Add("password", "password is required")
	} else if len(password) < 8 {
		errs.Add("password", "password must be at least 8 characters long")
	} else if len(password) > 72 {
		// bcrypt ignores input beyond 72 bytes
		errs.Add("password", "password must not exceed 72 characters")
	}
}
