// Package memory holds in-memory implementations of the domain repositories.
// They back service and handler tests; data lives only as long as the Store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

// Store is shared by every repository created from it, so joins such as
// user.EmployeeID or payroll employee names resolve like they do in PostgreSQL.
type Store struct {
	mu sync.RWMutex

	users     map[string]userRow
	employees map[string]employeeRow
	payrolls  map[string]payrollRow
	tokens    map[string]tokenRow

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:     map[string]userRow{},
		employees: map[string]employeeRow{},
		payrolls:  map[string]payrollRow{},
		tokens:    map[string]tokenRow{},
		now:       time.Now,
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

type transactor struct{}

// Transactor runs fn directly; the store has no rollback.
func (s *Store) Transactor() database.Transactor {
	return transactor{}
}

func (transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
