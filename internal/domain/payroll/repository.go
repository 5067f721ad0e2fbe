package payroll

import (
	"context"
	"time"
)

type PayrollRepository interface {
	Create(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	GetByID(ctx context.Context, id string) (PayrollRecord, error)
	ExistsForPeriod(ctx context.Context, employeeID string, month, year int) (bool, error)
	List(ctx context.Context, filter PayrollFilter) ([]PayrollRecord, int64, error)
	ListByPeriod(ctx context.Context, month, year int) ([]PayrollRecord, error)
	ListByEmployee(ctx context.Context, employeeID string, limit int) ([]PayrollRecord, error)
	// Update persists inputs, derived figures, status, payment and notes of an unpaid record.
	Update(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	MarkPaid(ctx context.Context, id string, method PaymentMethod, paidOn time.Time) error
	Delete(ctx context.Context, id string) error
}
