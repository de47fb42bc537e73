package payroll

import (
	"errors"

	"github.com/google/uuid"
)

// entryNamespace keys deterministic entry ids: regenerating a period yields
// the same id for the same (period, staff) pair, so reruns upsert instead of
// duplicating.
var entryNamespace = uuid.MustParse("7b7f3a52-9c1e-4a6f-8d2b-5e4f1c0a9d63")

func EntryID(periodID, staffID string) string {
	return uuid.NewSHA1(entryNamespace, []byte(periodID+"/"+staffID)).String()
}

type EntryInput struct {
	Staff      StaffProfile
	Units      DayUnits
	Allowances []Allowance
	Rates      RatesConfiguration
}

// BuildEntry runs the full per-staff pipeline: base pay, allowances, gross,
// statutory deductions, net. Degenerate inputs flag the entry for review
// instead of failing the whole run.
func BuildEntry(periodID string, in EntryInput) Entry {
	entry := Entry{
		ID:               EntryID(periodID, in.Staff.StaffID),
		PeriodID:         periodID,
		StaffID:          in.Staff.StaffID,
		StaffName:        in.Staff.Name,
		PayMethod:        in.Staff.PayMethod,
		WorkedUnits:      in.Units.Worked,
		PaidLeaveUnits:   in.Units.PaidLeave,
		UnpaidLeaveUnits: in.Units.UnpaidLeave,
		AbsentUnits:      in.Units.Absent,
		MonthUnits:       in.Units.Month,
		Allowances:       append([]Allowance(nil), in.Allowances...),
	}

	base, err := ComputeBasePay(in.Staff.PayMethod, in.Staff.MonthlySalaryCents, entry.PaidUnits(), entry.MonthUnits)
	if err != nil {
		if errors.Is(err, ErrComputation) {
			entry.Warnings = append(entry.Warnings, WarningMonthUnitsZero)
		}
		base = 0
	}
	entry.PayableBaseCents = base

	Recalculate(&entry, in.Rates)
	return entry
}

// Recalculate refreshes every derived financial field from the base amount
// and the allowance list. Unit-derived warnings are preserved; financial
// warnings are recomputed.
func Recalculate(entry *Entry, rates RatesConfiguration) {
	var kept []string
	for _, warning := range entry.Warnings {
		if warning != WarningNegativeNetClamped {
			kept = append(kept, warning)
		}
	}
	entry.Warnings = kept

	var allowancesTotal int64
	for _, allowance := range entry.Allowances {
		allowancesTotal += allowance.AmountCents
	}
	entry.AllowancesTotalCents = allowancesTotal
	entry.GrossCents = entry.PayableBaseCents + allowancesTotal

	entry.Deductions = ComputeDeductions(entry.GrossCents, rates)

	net := entry.GrossCents - entry.Deductions.TotalCents
	if net < 0 {
		net = 0
		entry.Warnings = append(entry.Warnings, WarningNegativeNetClamped)
	}
	entry.NetPayCents = net
}
