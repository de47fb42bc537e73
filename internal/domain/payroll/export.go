package payroll

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
)

var registerHeader = []string{
	"staff_name",
	"paid_units",
	"month_units",
	"payable_base",
	"allowances_total",
	"gross",
	"paye",
	"nssf",
	"shif",
	"housing_levy",
	"total_deductions",
	"net_pay",
	"paid",
}

// RenderRegisterCSV writes one row per entry, sorted by staff name then id.
// Money is rendered as a plain decimal with two fractional digits and no
// grouping so the output stays machine-parseable and deterministic.
func RenderRegisterCSV(entries []Entry) ([]byte, error) {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StaffName != sorted[j].StaffName {
			return sorted[i].StaffName < sorted[j].StaffName
		}
		return sorted[i].StaffID < sorted[j].StaffID
	})

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(registerHeader); err != nil {
		return nil, err
	}
	for _, entry := range sorted {
		row := []string{
			entry.StaffName,
			strconv.Itoa(entry.PaidUnits()),
			strconv.Itoa(entry.MonthUnits),
			CentsString(entry.PayableBaseCents),
			CentsString(entry.AllowancesTotalCents),
			CentsString(entry.GrossCents),
			CentsString(entry.Deductions.PAYECents),
			CentsString(entry.Deductions.NSSFEmployeeCents),
			CentsString(entry.Deductions.SHIFCents),
			CentsString(entry.Deductions.HousingLevyEmployeeCents),
			CentsString(entry.Deductions.TotalCents),
			CentsString(entry.NetPayCents),
			strconv.FormatBool(entry.IsPaid),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CentsString renders cents as a plain decimal amount, e.g. 4000000 -> "40000.00".
func CentsString(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
