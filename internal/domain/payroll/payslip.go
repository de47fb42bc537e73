package payroll

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// RenderPayslipPDF renders a single visible payslip. Callers are expected to
// have passed the visibility gate (PayslipForStaff) first.
func RenderPayslipPDF(period Period, entry Entry) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Staff: %s", entry.StaffName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s (%s to %s)", period.Name,
		period.StartDate.Format("2006-01-02"), period.EndDate.Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Paid units: %d of %d", entry.PaidUnits(), entry.MonthUnits))
	pdf.Ln(10)

	lines := []struct {
		label string
		cents int64
	}{
		{"Payable base", entry.PayableBaseCents},
		{"Allowances", entry.AllowancesTotalCents},
		{"Gross", entry.GrossCents},
		{"PAYE", entry.Deductions.PAYECents},
		{"NSSF", entry.Deductions.NSSFEmployeeCents},
		{"SHIF", entry.Deductions.SHIFCents},
		{"Housing levy", entry.Deductions.HousingLevyEmployeeCents},
		{"Total deductions", entry.Deductions.TotalCents},
		{"Net pay", entry.NetPayCents},
	}
	for _, line := range lines {
		pdf.Cell(90, 7, line.label)
		pdf.Cell(0, 7, CentsString(line.cents))
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
