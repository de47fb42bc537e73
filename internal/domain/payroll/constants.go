package payroll

const (
	PeriodStatusDraft     = "draft"
	PeriodStatusFinalized = "finalized"

	PayMethodFixed    = "fixed"
	PayMethodProrated = "prorated"

	AttendanceStatusPresent = "present"
	AttendanceStatusWorked  = "worked"
	AttendanceStatusPartial = "partial"
	AttendanceStatusAbsent  = "absent"

	LeaveStatusApproved = "approved"

	SystemRoleOwner = "owner"

	WarningMonthUnitsZero     = "month_units_zero"
	WarningNegativeNetClamped = "negative_net_clamped"
)
