package payroll

import (
	"fmt"
	"math"
	"time"
)

type UnitsInput struct {
	Start                time.Time
	End                  time.Time
	StandardWorkdayHours float64
	Attendance           []AttendanceRecord
	Leave                []LeaveRecord
}

// AggregateUnits turns attendance and approved leave into per-day units for
// the inclusive date range. An approved leave record covering a day wins over
// any attendance record for that day. Attendance hours become whole worked
// days via ceil(hours / standard workday); an open shift (clock-in but no
// clock-out, zero recorded hours) credits one worked day.
func AggregateUnits(in UnitsInput) (DayUnits, error) {
	var units DayUnits

	if in.Start.IsZero() || in.End.IsZero() {
		return units, fmt.Errorf("%w: period dates are required", ErrValidation)
	}
	start := dateOnly(in.Start)
	end := dateOnly(in.End)
	if end.Before(start) {
		return units, fmt.Errorf("%w: period end before start", ErrValidation)
	}
	if in.StandardWorkdayHours <= 0 {
		return units, fmt.Errorf("%w: standard workday hours must be positive", ErrValidation)
	}

	attendanceByDay := make(map[string]AttendanceRecord, len(in.Attendance))
	for _, record := range in.Attendance {
		if record.Date.IsZero() {
			return units, fmt.Errorf("%w: attendance record without a date", ErrValidation)
		}
		if math.IsNaN(record.TotalHours) || math.IsInf(record.TotalHours, 0) || record.TotalHours < 0 {
			return units, fmt.Errorf("%w: attendance hours malformed for %s", ErrValidation, record.Date.Format("2006-01-02"))
		}
		attendanceByDay[dayKey(record.Date)] = record
	}

	var approved []LeaveRecord
	for _, leave := range in.Leave {
		if leave.Status != LeaveStatusApproved {
			continue
		}
		if leave.StartDate.IsZero() || leave.EndDate.IsZero() || dateOnly(leave.EndDate).Before(dateOnly(leave.StartDate)) {
			return units, fmt.Errorf("%w: leave record dates malformed", ErrValidation)
		}
		approved = append(approved, leave)
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		units.Month++

		if leave, ok := leaveCovering(approved, day); ok {
			if leave.Paid {
				units.PaidLeave++
			} else {
				units.UnpaidLeave++
			}
			continue
		}

		record, ok := attendanceByDay[dayKey(day)]
		if !ok || !isWorkedStatus(record.Status) {
			units.Absent++
			continue
		}

		credit := int(math.Ceil(record.TotalHours / in.StandardWorkdayHours))
		if credit == 0 && record.ClockOut == nil {
			// Open shift: the clock-in is taken as proof of presence.
			credit = 1
		}
		if credit == 0 {
			units.Absent++
			continue
		}
		units.Worked += credit
	}

	return units, nil
}

func isWorkedStatus(status string) bool {
	switch status {
	case AttendanceStatusPresent, AttendanceStatusWorked, AttendanceStatusPartial:
		return true
	}
	return false
}

func leaveCovering(leave []LeaveRecord, day time.Time) (LeaveRecord, bool) {
	for _, record := range leave {
		if !day.Before(dateOnly(record.StartDate)) && !day.After(dateOnly(record.EndDate)) {
			return record, true
		}
	}
	return LeaveRecord{}, false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
