package payslip

import (
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Filename is the download name of a record's payslip.
func Filename(rec payroll.PayrollRecord) string {
	code := rec.EmployeeID
	if rec.EmployeeCode != nil && *rec.EmployeeCode != "" {
		code = *rec.EmployeeCode
	}
	return fmt.Sprintf("payslip-%s-%04d-%02d.pdf", code, rec.PeriodYear, rec.PeriodMonth)
}

// Render writes an A4 payslip PDF for rec to w.
func Render(w io.Writer, rec payroll.PayrollRecord) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payslip", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	line(pdf, "Employee", deref(rec.EmployeeName))
	line(pdf, "Employee code", deref(rec.EmployeeCode))
	line(pdf, "Email", deref(rec.EmployeeEmail))
	line(pdf, "Department", deref(rec.Department))
	line(pdf, "Position", deref(rec.Position))
	line(pdf, "Period", fmt.Sprintf("%s %d", time.Month(rec.PeriodMonth), rec.PeriodYear))
	line(pdf, "Status", string(rec.Status))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Earnings")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	amount(pdf, "Base salary", rec.BaseSalary)
	amount(pdf, fmt.Sprintf("Overtime (%s h x %s)", rec.OvertimeHours.String(), rec.OvertimeRate.String()), rec.OvertimePay)
	amount(pdf, "Bonus", rec.Bonus)
	amount(pdf, "Gross", rec.GrossSalary)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Deductions")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	for _, d := range rec.Deductions {
		amount(pdf, fmt.Sprintf("%s (%s)", d.Description, d.Type), d.Amount)
	}
	amount(pdf, "Total deductions", rec.TotalDeductions)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	amount(pdf, "Net salary", rec.NetSalary)

	if rec.PaymentDate != nil {
		pdf.SetFont("Helvetica", "", 10)
		line(pdf, "Paid on", fmt.Sprintf("%s via %s", rec.PaymentDate.Format("2006-01-02"), rec.PaymentMethod))
	}

	return pdf.Output(w)
}

func line(pdf *gofpdf.Fpdf, label, value string) {
	pdf.Cell(50, 7, label+":")
	pdf.Cell(0, 7, value)
	pdf.Ln(7)
}

func amount(pdf *gofpdf.Fpdf, label string, v decimal.Decimal) {
	pdf.Cell(120, 7, label)
	pdf.CellFormat(0, 7, v.StringFixed(2), "", 0, "R", false, 0, "")
	pdf.Ln(7)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
