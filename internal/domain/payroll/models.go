package payroll

import "time"

type Period struct {
	ID          string     `json:"id"`
	OrgID       string     `json:"orgId"`
	Name        string     `json:"name"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     time.Time  `json:"endDate"`
	Status      string     `json:"status"`
	FinalizedAt *time.Time `json:"finalizedAt,omitempty"`
	FinalizedBy string     `json:"finalizedBy,omitempty"`
	Archived    bool       `json:"archived"`
}

func (p Period) IsFinalized() bool {
	return p.Status == PeriodStatusFinalized
}

type Allowance struct {
	AmountCents int64  `json:"amountCents"`
	Notes       string `json:"notes"`
}

type DeductionDetails struct {
	PAYECents                int64 `json:"payeCents"`
	NSSFEmployeeCents        int64 `json:"nssfEmployeeCents"`
	NSSFEmployerCents        int64 `json:"nssfEmployerCents"`
	SHIFCents                int64 `json:"shifCents"`
	HousingLevyEmployeeCents int64 `json:"housingLevyEmployeeCents"`
	HousingLevyEmployerCents int64 `json:"housingLevyEmployerCents"`
	TotalCents               int64 `json:"totalCents"`
}

type Entry struct {
	ID                   string           `json:"id"`
	PeriodID             string           `json:"periodId"`
	StaffID              string           `json:"staffId"`
	StaffName            string           `json:"staffName"`
	PayMethod            string           `json:"payMethod"`
	WorkedUnits          int              `json:"workedUnits"`
	PaidLeaveUnits       int              `json:"paidLeaveUnits"`
	UnpaidLeaveUnits     int              `json:"unpaidLeaveUnits"`
	AbsentUnits          int              `json:"absentUnits"`
	MonthUnits           int              `json:"monthUnits"`
	PayableBaseCents     int64            `json:"payableBaseCents"`
	Allowances           []Allowance      `json:"allowances"`
	AllowancesTotalCents int64            `json:"allowancesTotalCents"`
	GrossCents           int64            `json:"grossCents"`
	Deductions           DeductionDetails `json:"deductionDetails"`
	NetPayCents          int64            `json:"netPayCents"`
	Warnings             []string         `json:"warnings,omitempty"`
	IsPaid               bool             `json:"isPaid"`
	PaidAt               *time.Time       `json:"paidAt,omitempty"`
	PaidBy               string           `json:"paidBy,omitempty"`
}

// PaidUnits is the only unit count that generates pay.
func (e Entry) PaidUnits() int {
	return e.WorkedUnits + e.PaidLeaveUnits
}

func (e Entry) NeedsReview() bool {
	return len(e.Warnings) > 0
}

type StaffProfile struct {
	StaffID            string `json:"staffId"`
	Name               string `json:"name"`
	SystemRole         string `json:"systemRole"`
	PayMethod          string `json:"payMethod"`
	MonthlySalaryCents int64  `json:"monthlySalaryCents"`
	HourlyRateCents    int64  `json:"hourlyRateCents"`
}

type AttendanceRecord struct {
	StaffID    string
	Date       time.Time
	ClockIn    *time.Time
	ClockOut   *time.Time
	Status     string
	TotalHours float64
}

type LeaveRecord struct {
	StaffID   string
	StartDate time.Time
	EndDate   time.Time
	Paid      bool
	Status    string
}

type DayUnits struct {
	Worked      int
	PaidLeave   int
	UnpaidLeave int
	Absent      int
	Month       int
}

type PeriodSummary struct {
	TotalGrossCents      int64          `json:"totalGrossCents"`
	TotalDeductionsCents int64          `json:"totalDeductionsCents"`
	TotalNetCents        int64          `json:"totalNetCents"`
	EntryCount           int            `json:"entryCount"`
	PaidCount            int            `json:"paidCount"`
	Warnings             map[string]int `json:"warnings"`
}
