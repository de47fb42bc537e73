package locum

import "time"

const (
	StatusScheduled = "scheduled"
	StatusWorked    = "worked"
	StatusNoShow    = "no_show"
)

// PayoutEntry is derived per query from a shift with a locum assignment; it
// is never persisted on its own.
type PayoutEntry struct {
	ShiftID      string    `json:"shiftId"`
	LocumName    string    `json:"locumName"`
	ShiftDate    time.Time `json:"shiftDate"`
	ShiftTime    string    `json:"shiftTime"`
	Role         string    `json:"role"`
	Location     string    `json:"location"`
	RateCents    int64     `json:"rateCents"`
	Status       string    `json:"status"`
	PayableCents int64     `json:"payableCents"`
}
