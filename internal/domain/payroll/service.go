package payroll

import (
	"context"
	"io"
)

type PayrollService interface {
	Calculate(ctx context.Context, req CalculateRequest) (CalculationResponse, error)

	Create(ctx context.Context, req CreatePayrollRequest) (PayrollRecordResponse, error)
	Get(ctx context.Context, id string) (PayrollRecordResponse, error)
	List(ctx context.Context, filter PayrollFilter) (ListPayrollRecordResponse, error)
	Update(ctx context.Context, req UpdatePayrollRequest) (PayrollRecordResponse, error)
	Delete(ctx context.Context, id string) error
	Process(ctx context.Context, req ProcessPayrollRequest) ([]PayrollRecordResponse, error)
	MarkPaid(ctx context.Context, req MarkPaidRequest) (PayrollRecordResponse, error)
	Summary(ctx context.Context, month, year int) (PayrollSummaryResponse, error)
	WritePayslip(ctx context.Context, id string, w io.Writer) (filename string, err error)

	// Self-service, scoped to the caller's linked employee.
	ListMine(ctx context.Context) ([]PayrollRecordResponse, error)
	WriteMyPayslip(ctx context.Context, id string, w io.Writer) (filename string, err error)
}
