package employee

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	EmployeeCode     *string          `json:"employee_code,omitempty"`
	FirstName        string           `json:"first_name"`
	LastName         string           `json:"last_name"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	Department       string           `json:"department"`
	Position         string           `json:"position"`
	Salary           decimal.Decimal  `json:"salary"`
	DateOfBirth      *string          `json:"date_of_birth,omitempty"`
	DateOfJoining    string           `json:"date_of_joining"`
	Address          Address          `json:"address"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`
	Skills           []string         `json:"skills"`
	IsActive         *bool            `json:"is_active,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeCode != nil && !validator.IsValidEmployeeCode(*r.EmployeeCode) {
		errs.Add("employee_code", "employee_code must look like EMP-000123")
	}
	validateName(&errs, "first_name", r.FirstName)
	validateName(&errs, "last_name", r.LastName)
	validateEmail(&errs, r.Email)
	validatePhone(&errs, "phone", r.Phone)
	validateRequired(&errs, "department", r.Department, 100)
	validateRequired(&errs, "position", r.Position, 100)
	if r.Salary.IsNegative() {
		errs.Add("salary", "salary must be non-negative")
	}
	validateDates(&errs, r.DateOfBirth, &r.DateOfJoining)
	validateContact(&errs, r.EmergencyContact)
	validateSkills(&errs, r.Skills)

	return errs.Err()
}

// UpdateEmployeeRequest is a partial update; nil fields are left unchanged.
type UpdateEmployeeRequest struct {
	ID               string            `json:"-"`
	EmployeeCode     *string           `json:"employee_code,omitempty"`
	FirstName        *string           `json:"first_name,omitempty"`
	LastName         *string           `json:"last_name,omitempty"`
	Email            *string           `json:"email,omitempty"`
	Phone            *string           `json:"phone,omitempty"`
	Department       *string           `json:"department,omitempty"`
	Position         *string           `json:"position,omitempty"`
	Salary           *decimal.Decimal  `json:"salary,omitempty"`
	DateOfBirth      *string           `json:"date_of_birth,omitempty"`
	DateOfJoining    *string           `json:"date_of_joining,omitempty"`
	Address          *Address          `json:"address,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`
	Skills           *[]string         `json:"skills,omitempty"`
	IsActive         *bool             `json:"is_active,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if r.EmployeeCode != nil && !validator.IsValidEmployeeCode(*r.EmployeeCode) {
		errs.Add("employee_code", "employee_code must look like EMP-000123")
	}
	if r.FirstName != nil {
		validateName(&errs, "first_name", *r.FirstName)
	}
	if r.LastName != nil {
		validateName(&errs, "last_name", *r.LastName)
	}
	if r.Email != nil {
		validateEmail(&errs, *r.Email)
	}
	if r.Phone != nil {
		validatePhone(&errs, "phone", *r.Phone)
	}
	if r.Department != nil {
		validateRequired(&errs, "department", *r.Department, 100)
	}
	if r.Position != nil {
		validateRequired(&errs, "position", *r.Position, 100)
	}
	if r.Salary != nil && r.Salary.IsNegative() {
		errs.Add("salary", "salary must be non-negative")
	}
	validateDates(&errs, r.DateOfBirth, r.DateOfJoining)
	if r.EmergencyContact != nil {
		validateContact(&errs, *r.EmergencyContact)
	}
	if r.Skills != nil {
		validateSkills(&errs, *r.Skills)
	}

	return errs.Err()
}

// UpdateProfileRequest is what an employee may change about themselves.
type UpdateProfileRequest struct {
	Phone            *string           `json:"phone,omitempty"`
	Address          *Address          `json:"address,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`
	Skills           *[]string         `json:"skills,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Phone != nil {
		validatePhone(&errs, "phone", *r.Phone)
	}
	if r.EmergencyContact != nil {
		validateContact(&errs, *r.EmergencyContact)
	}
	if r.Skills != nil {
		validateSkills(&errs, *r.Skills)
	}
	return errs.Err()
}

type EmployeeFilter struct {
	Search     *string
	Department *string
	IsActive   *bool
	Page       int
	Limit      int
	Sort       string
}

var allowedSorts = []string{"created_at", "-created_at", "first_name", "-first_name", "salary", "-salary", "date_of_joining", "-date_of_joining"}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
	if f.Sort != "" && !validator.IsInSlice(f.Sort, allowedSorts) {
		errs.Add("sort", "sort must be one of created_at, first_name, salary, date_of_joining (prefix - for descending)")
	}
	if f.Search != nil && len(*f.Search) > 100 {
		errs.Add("search", "search must not exceed 100 characters")
	}
	return errs.Err()
}

type EmployeeResponse struct {
	ID               string           `json:"id"`
	UserID           *string          `json:"user_id,omitempty"`
	EmployeeCode     string           `json:"employee_code"`
	FirstName        string           `json:"first_name"`
	LastName         string           `json:"last_name"`
	FullName         string           `json:"full_name"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	Department       string           `json:"department"`
	Position         string           `json:"position"`
	Salary           decimal.Decimal  `json:"salary"`
	DateOfBirth      *string          `json:"date_of_birth,omitempty"`
	DateOfJoining    string           `json:"date_of_joining"`
	Address          Address          `json:"address"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`
	Skills           []string         `json:"skills"`
	IsActive         bool             `json:"is_active"`
	CreatedAt        string           `json:"created_at"`
	UpdatedAt        string           `json:"updated_at"`
}

type ListEmployeeResponse struct {
	Employees      []EmployeeResponse `json:"employees"`
	TotalEmployees int64              `json:"total_employees"`
	TotalPages     int                `json:"total_pages"`
	CurrentPage    int                `json:"current_page"`
}

// TeamMemberResponse is the reduced view of a colleague.
type TeamMemberResponse struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

// ========== VALIDATION HELPERS ==========

func validateName(errs *validator.ValidationErrors, field, value string) {
	validateRequired(errs, field, value, 100)
}

func validateRequired(errs *validator.ValidationErrors, field, value string, max int) {
	if validator.IsEmpty(value) {
		errs.Add(field, field+" is required")
	} else if len(value) > max {
		errs.Add(field, field+" must not exceed "+validator.Itoa(max)+" characters")
	}
}

func validateEmail(errs *validator.ValidationErrors, email string) {
	if validator.IsEmpty(email) {
		errs.Add("email", "email is required")
	} else if len(email) > 254 || !validator.IsValidEmail(email) {
		errs.Add("email", "email must be a valid email address")
	}
}

func validatePhone(errs *validator.ValidationErrors, field, phone string) {
	if validator.IsEmpty(phone) {
		errs.Add(field, field+" is required")
	} else if !validator.IsValidPhoneNumber(phone) {
		errs.Add(field, field+" must contain 7 to 15 digits")
	}
}

func validateContact(errs *validator.ValidationErrors, c EmergencyContact) {
	if c.Phone != "" && !validator.IsValidPhoneNumber(c.Phone) {
		errs.Add("emergency_contact.phone", "emergency_contact.phone must contain 7 to 15 digits")
	}
}

func validateSkills(errs *validator.ValidationErrors, skills []string) {
	if len(skills) > 50 {
		errs.Add("skills", "skills must not exceed 50 entries")
	}
	for _, s := range skills {
		if validator.IsEmpty(s) || len(s) > 50 {
			errs.Add("skills", "each skill must be 1 to 50 characters")
			return
		}
	}
}

// validateDates checks format, that joining is not in the future and that birth precedes joining.
func validateDates(errs *validator.ValidationErrors, birth, joining *string) {
	var joinDate, birthDate time.Time
	var okJoin, okBirth bool

	if joining != nil {
		if validator.IsEmpty(*joining) {
			errs.Add("date_of_joining", "date_of_joining is required")
		} else if joinDate, okJoin = validator.IsValidDate(*joining); !okJoin {
			errs.Add("date_of_joining", "date_of_joining must be in YYYY-MM-DD format")
		} else if joinDate.After(time.Now()) {
			errs.Add("date_of_joining", ErrFutureDateNotAllowed.Error())
		}
	}

	if birth != nil && *birth != "" {
		if birthDate, okBirth = validator.IsValidDate(*birth); !okBirth {
			errs.Add("date_of_birth", "date_of_birth must be in YYYY-MM-DD format")
		} else if birthDate.After(time.Now()) {
			errs.Add("date_of_birth", ErrFutureDateNotAllowed.Error())
		} else if okJoin && !birthDate.Before(joinDate) {
			errs.Add("date_of_birth", "date_of_birth must be before date_of_joining")
		}
	}
}
