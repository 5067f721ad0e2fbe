package employee

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID               string
	UserID           *string
	EmployeeCode     string
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Department       string
	Position         string
	Salary           decimal.Decimal
	DateOfBirth      *time.Time
	DateOfJoining    time.Time
	Address          Address
	EmergencyContact EmergencyContact
	Skills           []string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Address is stored as JSONB.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// EmergencyContact is stored as JSONB.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// StatusLabel is the human readable activity state used in exports.
func (e Employee) StatusLabel() string {
	if e.IsActive {
		return "Active"
	}
	return "Inactive"
}

// IsLinked reports whether a user account is attached to the employee.
func (e Employee) IsLinked() bool {
	return e.UserID != nil && *e.UserID != ""
}

func (e Employee) ToResponse() EmployeeResponse {
	resp := EmployeeResponse{
		ID:               e.ID,
		UserID:           e.UserID,
		EmployeeCode:     e.EmployeeCode,
		FirstName:        e.FirstName,
		LastName:         e.LastName,
		FullName:         e.FullName(),
		Email:            e.Email,
		Phone:            e.Phone,
		Department:       e.Department,
		Position:         e.Position,
		Salary:           e.Salary,
		DateOfJoining:    e.DateOfJoining.Format(time.DateOnly),
		Address:          e.Address,
		EmergencyContact: e.EmergencyContact,
		Skills:           e.Skills,
		IsActive:         e.IsActive,
		CreatedAt:        e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        e.UpdatedAt.Format(time.RFC3339),
	}
	if e.DateOfBirth != nil {
		dob := e.DateOfBirth.Format(time.DateOnly)
		resp.DateOfBirth = &dob
	}
	if resp.Skills == nil {
		resp.Skills = []string{}
	}
	return resp
}

func (e Employee) ToTeamMember() TeamMemberResponse {
	return TeamMemberResponse{
		ID:         e.ID,
		FullName:   e.FullName(),
		Email:      e.Email,
		Department: e.Department,
		Position:   e.Position,
	}
}
