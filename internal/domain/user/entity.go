package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // HR / payroll administrator
	RoleEmployee Role = "employee" // Self-service only
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

type User struct {
	ID              string
	Email           string
	Username        string
	FullName        string
	PasswordHash    *string
	Role            Role
	OAuthProvider   *string
	OAuthProviderID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO / Join
	EmployeeID *string
}

// IsAdmin checks if user administers employees and payroll
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasEmployee checks if the account is linked to an employee record
func (u *User) HasEmployee() bool {
	return u.EmployeeID != nil && *u.EmployeeID != ""
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		FullName:      u.FullName,
		Role:          string(u.Role),
		EmployeeID:    u.EmployeeID,
		OAuthProvider: u.OAuthProvider,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     u.UpdatedAt.Format(time.RFC3339),
	}
}
