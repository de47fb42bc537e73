package payroll

import (
	"reflect"
	"testing"
)

func TestEntryIDDeterministic(t *testing.T) {
	a := EntryID("p1", "s1")
	b := EntryID("p1", "s1")
	if a != b {
		t.Fatalf("same inputs must yield the same id: %s vs %s", a, b)
	}
	if a == EntryID("p1", "s2") || a == EntryID("p2", "s1") {
		t.Fatalf("different inputs must yield different ids")
	}
}

func TestBuildEntryProrated(t *testing.T) {
	entry := BuildEntry("p1", EntryInput{
		Staff: StaffProfile{
			StaffID:            "s1",
			Name:               "Test Staff",
			PayMethod:          PayMethodProrated,
			MonthlySalaryCents: 6_000_000,
		},
		Units:      DayUnits{Worked: 18, PaidLeave: 2, UnpaidLeave: 1, Absent: 9, Month: 30},
		Allowances: []Allowance{{AmountCents: 500_000, Notes: "transport"}},
		Rates:      testRates(),
	})

	if entry.PaidUnits() != 20 {
		t.Fatalf("expected 20 paid units, got %d", entry.PaidUnits())
	}
	if entry.PayableBaseCents != 4_000_000 {
		t.Fatalf("expected base 4000000, got %d", entry.PayableBaseCents)
	}
	if entry.AllowancesTotalCents != 500_000 {
		t.Fatalf("expected allowances 500000, got %d", entry.AllowancesTotalCents)
	}
	if entry.GrossCents != 4_500_000 {
		t.Fatalf("expected gross 4500000, got %d", entry.GrossCents)
	}
	if entry.NetPayCents != entry.GrossCents-entry.Deductions.TotalCents {
		t.Fatalf("net must equal gross minus deductions")
	}
	if entry.NeedsReview() {
		t.Fatalf("clean entry must not carry warnings: %v", entry.Warnings)
	}
}

func TestBuildEntryZeroMonthUnitsDegradesNotFails(t *testing.T) {
	entry := BuildEntry("p1", EntryInput{
		Staff: StaffProfile{
			StaffID:            "s1",
			Name:               "Test Staff",
			PayMethod:          PayMethodProrated,
			MonthlySalaryCents: 6_000_000,
		},
		Units: DayUnits{},
		Rates: testRates(),
	})

	if entry.PayableBaseCents != 0 {
		t.Fatalf("expected base 0, got %d", entry.PayableBaseCents)
	}
	if !containsWarning(entry, WarningMonthUnitsZero) {
		t.Fatalf("expected %s warning, got %v", WarningMonthUnitsZero, entry.Warnings)
	}
	if entry.NetPayCents != 0 {
		t.Fatalf("net must be clamped at zero, got %d", entry.NetPayCents)
	}
}

func TestRecalculateClampsNegativeNet(t *testing.T) {
	// Zero gross still owes the SHIF minimum, which would push net negative.
	entry := Entry{ID: "e1", PayMethod: PayMethodFixed}
	Recalculate(&entry, testRates())

	if entry.NetPayCents != 0 {
		t.Fatalf("expected net clamped to 0, got %d", entry.NetPayCents)
	}
	if !containsWarning(entry, WarningNegativeNetClamped) {
		t.Fatalf("expected %s warning, got %v", WarningNegativeNetClamped, entry.Warnings)
	}

	// Once the entry earns enough, the clamp warning is dropped again.
	entry.PayableBaseCents = 5_000_000
	Recalculate(&entry, testRates())
	if containsWarning(entry, WarningNegativeNetClamped) {
		t.Fatalf("clamp warning must not persist: %v", entry.Warnings)
	}
	if entry.NetPayCents <= 0 {
		t.Fatalf("expected positive net, got %d", entry.NetPayCents)
	}
}

func TestRecalculateNetNeverNegative(t *testing.T) {
	for gross := int64(0); gross <= 10_000_000; gross += 123_457 {
		entry := Entry{ID: "e1", PayMethod: PayMethodFixed, PayableBaseCents: gross}
		Recalculate(&entry, testRates())
		if entry.NetPayCents < 0 {
			t.Fatalf("net negative at gross %d: %d", gross, entry.NetPayCents)
		}
	}
}

func TestRecalculateIsIdempotent(t *testing.T) {
	entry := BuildEntry("p1", EntryInput{
		Staff: StaffProfile{
			StaffID:            "s1",
			Name:               "Test Staff",
			PayMethod:          PayMethodFixed,
			MonthlySalaryCents: 4_200_000,
		},
		Units:      DayUnits{Worked: 22, Month: 30},
		Allowances: []Allowance{{AmountCents: 150_000, Notes: "airtime"}},
		Rates:      testRates(),
	})

	again := entry
	Recalculate(&again, testRates())
	if !reflect.DeepEqual(entry, again) {
		t.Fatalf("recalculating an unchanged entry must be a no-op:\n%+v\n%+v", entry, again)
	}
}

func containsWarning(entry Entry, warning string) bool {
	for _, w := range entry.Warnings {
		if w == warning {
			return true
		}
	}
	return false
}
