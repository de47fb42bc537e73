package payroll

import (
	"context"
	"time"
)

// StoreAPI is the persistence boundary for the engine. The pgx-backed Store
// implements it; service tests substitute an in-memory fake. Mutating calls
// carry their own state guards so a guard and its write are atomic.
type StoreAPI interface {
	CreatePeriod(ctx context.Context, orgID, name string, startDate, endDate time.Time) (Period, error)
	GetPeriod(ctx context.Context, orgID, periodID string) (Period, error)
	CountPeriods(ctx context.Context, orgID string) (int, error)
	ListPeriods(ctx context.Context, orgID string, limit, offset int) ([]Period, error)
	SetArchived(ctx context.Context, orgID, periodID string, archived bool) error
	// FinalizePeriod is a compare-and-swap: it succeeds only if the period is
	// still draft at commit time, stamping finalizedAt/finalizedBy atomically.
	FinalizePeriod(ctx context.Context, orgID, periodID, userID string) (Period, error)

	ListStaffProfiles(ctx context.Context, orgID string) ([]StaffProfile, error)
	ListAttendance(ctx context.Context, orgID, staffID string, start, end time.Time) ([]AttendanceRecord, error)
	ListApprovedLeave(ctx context.Context, orgID, staffID string, start, end time.Time) ([]LeaveRecord, error)
	LatestRates(ctx context.Context, orgID string) (RatesConfiguration, error)

	// ReplaceEntries swaps the full entry set for a draft period in one
	// transaction: upserts by entry id and removes rows for staff no longer
	// in the run. Finalized periods are rejected untouched.
	ReplaceEntries(ctx context.Context, orgID, periodID string, entries []Entry) error
	ListEntries(ctx context.Context, orgID, periodID string) ([]Entry, error)
	GetEntry(ctx context.Context, orgID, entryID string) (Entry, error)
	GetEntryForStaff(ctx context.Context, orgID, periodID, staffID string) (Entry, error)
	// UpdateEntryFinancials persists the allowance list and every derived
	// financial field; the draft guard is part of the statement.
	UpdateEntryFinancials(ctx context.Context, orgID string, entry Entry) error
	SetEntryPaid(ctx context.Context, orgID, entryID string, paid bool, userID string) (Entry, error)
	MarkAllPaid(ctx context.Context, orgID, periodID, userID string) (int, error)
}
