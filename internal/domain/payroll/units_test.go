package payroll

import (
	"errors"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregateUnitsBasicMonth(t *testing.T) {
	var attendance []AttendanceRecord
	for d := 1; d <= 20; d++ {
		attendance = append(attendance, AttendanceRecord{
			StaffID:    "s1",
			Date:       day(d),
			Status:     AttendanceStatusPresent,
			TotalHours: 8,
		})
	}
	leave := []LeaveRecord{
		{StaffID: "s1", StartDate: day(21), EndDate: day(22), Paid: true, Status: LeaveStatusApproved},
		{StaffID: "s1", StartDate: day(23), EndDate: day(23), Paid: false, Status: LeaveStatusApproved},
	}

	units, err := AggregateUnits(UnitsInput{
		Start:                day(1),
		End:                  day(30),
		StandardWorkdayHours: 8,
		Attendance:           attendance,
		Leave:                leave,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if units.Worked != 20 {
		t.Fatalf("expected 20 worked, got %d", units.Worked)
	}
	if units.PaidLeave != 2 {
		t.Fatalf("expected 2 paid leave, got %d", units.PaidLeave)
	}
	if units.UnpaidLeave != 1 {
		t.Fatalf("expected 1 unpaid leave, got %d", units.UnpaidLeave)
	}
	if units.Absent != 7 {
		t.Fatalf("expected 7 absent, got %d", units.Absent)
	}
	if units.Month != 30 {
		t.Fatalf("expected 30 month units, got %d", units.Month)
	}
}

func TestAggregateUnitsLeaveOverridesAttendance(t *testing.T) {
	units, err := AggregateUnits(UnitsInput{
		Start:                day(1),
		End:                  day(1),
		StandardWorkdayHours: 8,
		Attendance: []AttendanceRecord{
			{StaffID: "s1", Date: day(1), Status: AttendanceStatusPresent, TotalHours: 8},
		},
		Leave: []LeaveRecord{
			{StaffID: "s1", StartDate: day(1), EndDate: day(1), Paid: true, Status: LeaveStatusApproved},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if units.Worked != 0 || units.PaidLeave != 1 {
		t.Fatalf("leave must win over attendance, got worked=%d paidLeave=%d", units.Worked, units.PaidLeave)
	}
}

func TestAggregateUnitsCeilsHoursToWholeDays(t *testing.T) {
	units, err := AggregateUnits(UnitsInput{
		Start:                day(1),
		End:                  day(2),
		StandardWorkdayHours: 8,
		Attendance: []AttendanceRecord{
			{StaffID: "s1", Date: day(1), Status: AttendanceStatusWorked, TotalHours: 9},
			{StaffID: "s1", Date: day(2), Status: AttendanceStatusPartial, TotalHours: 0.5},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 9h over an 8h standard ceils to 2 days; 0.5h ceils to 1.
	if units.Worked != 3 {
		t.Fatalf("expected 3 worked units, got %d", units.Worked)
	}
}

func TestAggregateUnitsOpenShiftCreditsOneDay(t *testing.T) {
	clockIn := day(1).Add(8 * time.Hour)
	units, err := AggregateUnits(UnitsInput{
		Start:                day(1),
		End:                  day(1),
		StandardWorkdayHours: 8,
		Attendance: []AttendanceRecord{
			{StaffID: "s1", Date: day(1), ClockIn: &clockIn, Status: AttendanceStatusPresent, TotalHours: 0},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if units.Worked != 1 || units.Absent != 0 {
		t.Fatalf("open shift must credit one day, got worked=%d absent=%d", units.Worked, units.Absent)
	}
}

func TestAggregateUnitsZeroHoursClosedShiftIsAbsent(t *testing.T) {
	clockIn := day(1).Add(8 * time.Hour)
	clockOut := day(1).Add(8*time.Hour + time.Minute)
	units, err := AggregateUnits(UnitsInput{
		Start:                day(1),
		End:                  day(1),
		StandardWorkdayHours: 8,
		Attendance: []AttendanceRecord{
			{StaffID: "s1", Date: day(1), ClockIn: &clockIn, ClockOut: &clockOut, Status: AttendanceStatusPresent, TotalHours: 0},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if units.Absent != 1 || units.Worked != 0 {
		t.Fatalf("closed zero-hour shift must count absent, got worked=%d absent=%d", units.Worked, units.Absent)
	}
}

func TestAggregateUnitsIgnoresUnapprovedLeave(t *testing.T) {
	units, err := AggregateUnits(UnitsInput{
		Start:                day(1),
		End:                  day(1),
		StandardWorkdayHours: 8,
		Leave: []LeaveRecord{
			{StaffID: "s1", StartDate: day(1), EndDate: day(1), Paid: true, Status: "pending"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if units.PaidLeave != 0 || units.Absent != 1 {
		t.Fatalf("pending leave must not count, got paidLeave=%d absent=%d", units.PaidLeave, units.Absent)
	}
}

func TestAggregateUnitsRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name string
		in   UnitsInput
	}{
		{"end before start", UnitsInput{Start: day(5), End: day(1), StandardWorkdayHours: 8}},
		{"zero standard hours", UnitsInput{Start: day(1), End: day(2), StandardWorkdayHours: 0}},
		{"negative hours", UnitsInput{
			Start: day(1), End: day(2), StandardWorkdayHours: 8,
			Attendance: []AttendanceRecord{{StaffID: "s1", Date: day(1), Status: AttendanceStatusPresent, TotalHours: -1}},
		}},
		{"leave end before start", UnitsInput{
			Start: day(1), End: day(2), StandardWorkdayHours: 8,
			Leave: []LeaveRecord{{StaffID: "s1", StartDate: day(2), EndDate: day(1), Status: LeaveStatusApproved}},
		}},
	}
	for _, tc := range cases {
		if _, err := AggregateUnits(tc.in); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}
