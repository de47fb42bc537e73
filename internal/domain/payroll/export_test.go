package payroll

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
)

func exportEntries() []Entry {
	return []Entry{
		BuildEntry("p1", EntryInput{
			Staff: StaffProfile{StaffID: "s2", Name: "Brian Mwangi", PayMethod: PayMethodProrated, MonthlySalaryCents: 6_000_000},
			Units: DayUnits{Worked: 20, Month: 30},
			Rates: testRates(),
		}),
		BuildEntry("p1", EntryInput{
			Staff: StaffProfile{StaffID: "s1", Name: "Achieng Odhiambo", PayMethod: PayMethodFixed, MonthlySalaryCents: 8_500_000},
			Units: DayUnits{Worked: 22, Month: 30},
			Rates: testRates(),
		}),
	}
}

func TestRenderRegisterCSVSortedAndParseable(t *testing.T) {
	data, err := RenderRegisterCSV(exportEntries())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output must parse as csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[0][0] != "staff_name" || records[0][len(records[0])-1] != "paid" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][0] != "Achieng Odhiambo" || records[2][0] != "Brian Mwangi" {
		t.Fatalf("rows must be sorted by staff name: %v %v", records[1][0], records[2][0])
	}
	if strings.Contains(string(data), ",,") {
		t.Fatalf("no empty money columns expected:\n%s", data)
	}
}

func TestRenderRegisterCSVByteIdentical(t *testing.T) {
	entries := exportEntries()
	first, err := RenderRegisterCSV(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := RenderRegisterCSV(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("repeated renders must be byte-identical")
	}
}

func TestRenderRegisterCSVDoesNotReorderInput(t *testing.T) {
	entries := exportEntries()
	if _, err := RenderRegisterCSV(entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries[0].StaffName != "Brian Mwangi" {
		t.Fatalf("caller slice must not be mutated, got %s first", entries[0].StaffName)
	}
}

func TestCentsString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{4_000_000, "40000.00"},
		{123_456_789, "1234567.89"},
		{-250, "-2.50"},
	}
	for _, tc := range cases {
		if got := CentsString(tc.cents); got != tc.want {
			t.Fatalf("CentsString(%d): expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}
