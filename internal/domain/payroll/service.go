package payroll

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

type ServiceConfig struct {
	StandardWorkdayHours   float64
	PayslipVisibilityDelay time.Duration
	// RatesOverride, when set, is used instead of the stored configuration.
	RatesOverride *RatesConfiguration
}

type Service struct {
	store StoreAPI
	cfg   ServiceConfig
	now   func() time.Time
}

func NewService(store StoreAPI, cfg ServiceConfig) *Service {
	if cfg.StandardWorkdayHours <= 0 {
		cfg.StandardWorkdayHours = 8
	}
	return &Service{store: store, cfg: cfg, now: time.Now}
}

func (s *Service) CreatePeriod(ctx context.Context, orgID, name string, startDate, endDate time.Time) (Period, error) {
	if strings.TrimSpace(name) == "" {
		return Period{}, fmt.Errorf("%w: period name is required", ErrValidation)
	}
	if startDate.IsZero() || endDate.IsZero() {
		return Period{}, fmt.Errorf("%w: period dates are required", ErrValidation)
	}
	if endDate.Before(startDate) {
		return Period{}, fmt.Errorf("%w: period end before start", ErrValidation)
	}
	return s.store.CreatePeriod(ctx, orgID, name, startDate, endDate)
}

func (s *Service) GetPeriod(ctx context.Context, orgID, periodID string) (Period, error) {
	return s.store.GetPeriod(ctx, orgID, periodID)
}

func (s *Service) ListPeriods(ctx context.Context, orgID string, limit, offset int) ([]Period, int, error) {
	total, err := s.store.CountPeriods(ctx, orgID)
	if err != nil {
		return nil, 0, err
	}
	periods, err := s.store.ListPeriods(ctx, orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return periods, total, nil
}

func (s *Service) ListEntries(ctx context.Context, orgID, periodID string) ([]Entry, error) {
	if _, err := s.store.GetPeriod(ctx, orgID, periodID); err != nil {
		return nil, err
	}
	return s.store.ListEntries(ctx, orgID, periodID)
}

// GenerateEntries recomputes the full entry set for a draft period from
// attendance, approved leave and staff pay profiles. It is idempotent:
// deterministic entry ids plus an upsert-and-prune write mean a rerun with
// unchanged source data produces an identical set. Manually captured
// allowances and paid stamps survive regeneration.
func (s *Service) GenerateEntries(ctx context.Context, orgID, periodID string) ([]Entry, error) {
	period, err := s.store.GetPeriod(ctx, orgID, periodID)
	if err != nil {
		return nil, err
	}
	if period.IsFinalized() {
		return nil, fmt.Errorf("%w: cannot regenerate entries", ErrImmutablePeriod)
	}

	rates, err := s.rates(ctx, orgID)
	if err != nil {
		return nil, err
	}

	profiles, err := s.store.ListStaffProfiles(ctx, orgID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.ListEntries(ctx, orgID, periodID)
	if err != nil {
		return nil, err
	}
	previous := make(map[string]Entry, len(existing))
	for _, entry := range existing {
		previous[entry.StaffID] = entry
	}

	var entries []Entry
	for _, profile := range profiles {
		if !IncludeInRun(profile) {
			continue
		}
		if err := profile.Validate(); err != nil {
			return nil, err
		}

		attendance, err := s.store.ListAttendance(ctx, orgID, profile.StaffID, period.StartDate, period.EndDate)
		if err != nil {
			return nil, err
		}
		leave, err := s.store.ListApprovedLeave(ctx, orgID, profile.StaffID, period.StartDate, period.EndDate)
		if err != nil {
			return nil, err
		}

		units, err := AggregateUnits(UnitsInput{
			Start:                period.StartDate,
			End:                  period.EndDate,
			StandardWorkdayHours: s.cfg.StandardWorkdayHours,
			Attendance:           attendance,
			Leave:                leave,
		})
		if err != nil {
			return nil, err
		}

		entry := BuildEntry(periodID, EntryInput{
			Staff:      profile,
			Units:      units,
			Allowances: previous[profile.StaffID].Allowances,
			Rates:      rates,
		})
		// The store upsert leaves paid columns untouched, so the returned
		// set must carry them too or the response would diverge from the
		// persisted row.
		if prior, ok := previous[profile.StaffID]; ok {
			entry.IsPaid = prior.IsPaid
			entry.PaidAt = prior.PaidAt
			entry.PaidBy = prior.PaidBy
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].StaffName != entries[j].StaffName {
			return entries[i].StaffName < entries[j].StaffName
		}
		return entries[i].StaffID < entries[j].StaffID
	})

	if err := s.store.ReplaceEntries(ctx, orgID, periodID, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Finalize locks the period irreversibly. The store performs the
// compare-and-swap; a lost race surfaces as ErrConcurrencyConflict.
func (s *Service) Finalize(ctx context.Context, orgID, periodID, userID string) (Period, error) {
	entries, err := s.store.ListEntries(ctx, orgID, periodID)
	if err != nil {
		return Period{}, err
	}
	if len(entries) == 0 {
		return Period{}, fmt.Errorf("%w: generate entries before finalizing", ErrNoEntries)
	}
	return s.store.FinalizePeriod(ctx, orgID, periodID, userID)
}

func (s *Service) Archive(ctx context.Context, orgID, periodID string) error {
	return s.store.SetArchived(ctx, orgID, periodID, true)
}

func (s *Service) Unarchive(ctx context.Context, orgID, periodID string) error {
	return s.store.SetArchived(ctx, orgID, periodID, false)
}

func (s *Service) AddAllowance(ctx context.Context, orgID, entryID string, amountCents int64, notes string) (Entry, error) {
	if amountCents <= 0 {
		return Entry{}, fmt.Errorf("%w: allowance amount must be positive", ErrValidation)
	}
	return s.mutateAllowances(ctx, orgID, entryID, func(allowances []Allowance) ([]Allowance, error) {
		return append(allowances, Allowance{AmountCents: amountCents, Notes: notes}), nil
	})
}

func (s *Service) EditAllowance(ctx context.Context, orgID, entryID string, index int, amountCents int64, notes string) (Entry, error) {
	if amountCents <= 0 {
		return Entry{}, fmt.Errorf("%w: allowance amount must be positive", ErrValidation)
	}
	return s.mutateAllowances(ctx, orgID, entryID, func(allowances []Allowance) ([]Allowance, error) {
		if index < 0 || index >= len(allowances) {
			return nil, fmt.Errorf("%w: allowance index %d out of range", ErrValidation, index)
		}
		allowances[index] = Allowance{AmountCents: amountCents, Notes: notes}
		return allowances, nil
	})
}

func (s *Service) DeleteAllowance(ctx context.Context, orgID, entryID string, index int) (Entry, error) {
	return s.mutateAllowances(ctx, orgID, entryID, func(allowances []Allowance) ([]Allowance, error) {
		if index < 0 || index >= len(allowances) {
			return nil, fmt.Errorf("%w: allowance index %d out of range", ErrValidation, index)
		}
		return append(allowances[:index], allowances[index+1:]...), nil
	})
}

func (s *Service) mutateAllowances(ctx context.Context, orgID, entryID string, mutate func([]Allowance) ([]Allowance, error)) (Entry, error) {
	entry, err := s.store.GetEntry(ctx, orgID, entryID)
	if err != nil {
		return Entry{}, err
	}

	allowances, err := mutate(append([]Allowance(nil), entry.Allowances...))
	if err != nil {
		return Entry{}, err
	}
	entry.Allowances = allowances

	rates, err := s.rates(ctx, orgID)
	if err != nil {
		return Entry{}, err
	}
	Recalculate(&entry, rates)

	// The draft guard lives in the store statement, so a finalize racing
	// this write cannot leave a half-mutated entry behind.
	if err := s.store.UpdateEntryFinancials(ctx, orgID, entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (s *Service) MarkPaid(ctx context.Context, orgID, entryID, userID string) (Entry, error) {
	return s.store.SetEntryPaid(ctx, orgID, entryID, true, userID)
}

func (s *Service) UnmarkPaid(ctx context.Context, orgID, entryID, userID string) (Entry, error) {
	return s.store.SetEntryPaid(ctx, orgID, entryID, false, userID)
}

func (s *Service) MarkAllPaid(ctx context.Context, orgID, periodID, userID string) (int, error) {
	return s.store.MarkAllPaid(ctx, orgID, periodID, userID)
}

func (s *Service) Summary(ctx context.Context, orgID, periodID string) (PeriodSummary, error) {
	if _, err := s.store.GetPeriod(ctx, orgID, periodID); err != nil {
		return PeriodSummary{}, err
	}
	entries, err := s.store.ListEntries(ctx, orgID, periodID)
	if err != nil {
		return PeriodSummary{}, err
	}

	summary := PeriodSummary{Warnings: map[string]int{}}
	for _, entry := range entries {
		summary.TotalGrossCents += entry.GrossCents
		summary.TotalDeductionsCents += entry.Deductions.TotalCents
		summary.TotalNetCents += entry.NetPayCents
		summary.EntryCount++
		if entry.IsPaid {
			summary.PaidCount++
		}
		for _, warning := range entry.Warnings {
			summary.Warnings[warning]++
		}
	}
	return summary, nil
}

// PayslipForStaff is the employee-visible read: the entry is returned only
// once the period is finalized and the visibility delay has elapsed.
func (s *Service) PayslipForStaff(ctx context.Context, orgID, periodID, staffID string) (Entry, Period, error) {
	period, err := s.store.GetPeriod(ctx, orgID, periodID)
	if err != nil {
		return Entry{}, Period{}, err
	}
	if !period.IsFinalized() || period.FinalizedAt == nil {
		return Entry{}, Period{}, fmt.Errorf("%w: period not finalized", ErrPayslipNotAvailable)
	}
	if s.now().Sub(*period.FinalizedAt) < s.cfg.PayslipVisibilityDelay {
		return Entry{}, Period{}, fmt.Errorf("%w: visibility delay has not elapsed", ErrPayslipNotAvailable)
	}

	entry, err := s.store.GetEntryForStaff(ctx, orgID, periodID, staffID)
	if err != nil {
		return Entry{}, Period{}, err
	}
	return entry, period, nil
}

// ExportCSV renders the register for a finalized period. The output is a
// pure function of the immutable entry set, so repeated calls are
// byte-identical.
func (s *Service) ExportCSV(ctx context.Context, orgID, periodID string) ([]byte, error) {
	period, err := s.store.GetPeriod(ctx, orgID, periodID)
	if err != nil {
		return nil, err
	}
	if !period.IsFinalized() {
		return nil, fmt.Errorf("%w: period %s", ErrExportNotReady, periodID)
	}
	entries, err := s.store.ListEntries(ctx, orgID, periodID)
	if err != nil {
		return nil, err
	}
	return RenderRegisterCSV(entries)
}

func (s *Service) rates(ctx context.Context, orgID string) (RatesConfiguration, error) {
	if s.cfg.RatesOverride != nil {
		return *s.cfg.RatesOverride, nil
	}
	return s.store.LatestRates(ctx, orgID)
}
