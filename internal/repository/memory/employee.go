package memory

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
)

type employeeRow struct {
	employee.Employee
}

type EmployeeRepository struct {
	s *Store
}

func (s *Store) Employees() *EmployeeRepository {
	return &EmployeeRepository{s: s}
}

// uniqueEmployee must be called with the lock held.
func (s *Store) uniqueEmployee(emp employee.Employee) error {
	for id, row := range s.employees {
		if id == emp.ID {
			continue
		}
		if row.EmployeeCode == emp.EmployeeCode {
			return employee.ErrEmployeeCodeExists
		}
		if strings.EqualFold(row.Email, emp.Email) {
			return employee.ErrEmailExists
		}
	}
	return nil
}

func copyEmployee(e employee.Employee) employee.Employee {
	e.Skills = slices.Clone(e.Skills)
	if e.Skills == nil {
		e.Skills = []string{}
	}
	return e
}

func (r *EmployeeRepository) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	newEmployee.ID = newID()
	if err := r.s.uniqueEmployee(newEmployee); err != nil {
		return employee.Employee{}, err
	}
	newEmployee.CreatedAt = r.s.now()
	newEmployee.UpdatedAt = newEmployee.CreatedAt
	r.s.employees[newEmployee.ID] = employeeRow{Employee: copyEmployee(newEmployee)}
	return copyEmployee(newEmployee), nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return copyEmployee(row.Employee), nil
}

func (r *EmployeeRepository) find(match func(employee.Employee) bool) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, row := range r.s.employees {
		if match(row.Employee) {
			return copyEmployee(row.Employee), nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *EmployeeRepository) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	return r.find(func(e employee.Employee) bool { return e.UserID != nil && *e.UserID == userID })
}

func (r *EmployeeRepository) GetByEmployeeCode(ctx context.Context, employeeCode string) (employee.Employee, error) {
	return r.find(func(e employee.Employee) bool { return e.EmployeeCode == employeeCode })
}

func (r *EmployeeRepository) all(match func(employee.Employee) bool) []employee.Employee {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []employee.Employee{}
	for _, row := range r.s.employees {
		if match(row.Employee) {
			out = append(out, copyEmployee(row.Employee))
		}
	}
	return out
}

func (r *EmployeeRepository) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	search := ""
	if filter.Search != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.Search))
	}
	matches := r.all(func(e employee.Employee) bool {
		if search != "" {
			hay := strings.ToLower(e.FullName() + " " + e.Email + " " + e.EmployeeCode)
			if !strings.Contains(hay, search) {
				return false
			}
		}
		if filter.Department != nil && *filter.Department != "" && e.Department != *filter.Department {
			return false
		}
		if filter.IsActive != nil && e.IsActive != *filter.IsActive {
			return false
		}
		return true
	})

	desc := strings.HasPrefix(filter.Sort, "-")
	key := strings.TrimPrefix(filter.Sort, "-")
	less := func(a, b employee.Employee) bool { return a.CreatedAt.Before(b.CreatedAt) || (a.CreatedAt.Equal(b.CreatedAt) && a.ID < b.ID) }
	switch key {
	case "first_name":
		less = func(a, b employee.Employee) bool { return a.FirstName < b.FirstName }
	case "salary":
		less = func(a, b employee.Employee) bool { return a.Salary.LessThan(b.Salary) }
	case "date_of_joining":
		less = func(a, b employee.Employee) bool { return a.DateOfJoining.Before(b.DateOfJoining) }
	case "created_at":
	default:
		desc = true
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if desc {
			return less(matches[j], matches[i])
		}
		return less(matches[i], matches[j])
	})

	total := int64(len(matches))
	if filter.Limit > 0 {
		page := max(filter.Page, 1)
		start := min((page-1)*filter.Limit, len(matches))
		end := min(start+filter.Limit, len(matches))
		matches = matches[start:end]
	}
	return matches, total, nil
}

func (r *EmployeeRepository) ListActive(ctx context.Context) ([]employee.Employee, error) {
	out := r.all(func(e employee.Employee) bool { return e.IsActive })
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeCode < out[j].EmployeeCode })
	return out, nil
}

func (r *EmployeeRepository) ListTeam(ctx context.Context, department string, excludeID string, limit int) ([]employee.Employee, error) {
	out := r.all(func(e employee.Employee) bool {
		return e.Department == department && e.ID != excludeID && e.IsActive
	})
	sort.Slice(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *EmployeeRepository) ListDepartments(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	out := []string{}
	for _, e := range r.all(func(employee.Employee) bool { return true }) {
		if e.Department != "" && !seen[e.Department] {
			seen[e.Department] = true
			out = append(out, e.Department)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.employees[emp.ID]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	if err := r.s.uniqueEmployee(emp); err != nil {
		return employee.Employee{}, err
	}
	emp.UserID = row.UserID
	emp.CreatedAt = row.CreatedAt
	emp.UpdatedAt = r.s.now()
	r.s.employees[emp.ID] = employeeRow{Employee: copyEmployee(emp)}
	return copyEmployee(emp), nil
}

// Delete cascades to payroll records like the foreign key does.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	delete(r.s.employees, id)
	for pid, p := range r.s.payrolls {
		if p.EmployeeID == id {
			delete(r.s.payrolls, pid)
		}
	}
	return nil
}

func (r *EmployeeRepository) LinkUser(ctx context.Context, employeeID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.employees[employeeID]
	if !ok {
		return employee.ErrUserAlreadyLinked
	}
	if row.UserID != nil && *row.UserID != userID {
		return employee.ErrUserAlreadyLinked
	}
	for id, other := range r.s.employees {
		if id != employeeID && other.UserID != nil && *other.UserID == userID {
			return employee.ErrUserAlreadyLinked
		}
	}
	row.UserID = &userID
	row.UpdatedAt = r.s.now()
	r.s.employees[employeeID] = row
	return nil
}
