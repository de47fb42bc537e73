package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const periodColumns = "id, org_id, name, start_date, end_date, status, finalized_at, finalized_by, archived"

func (s *Store) CreatePeriod(ctx context.Context, orgID, name string, startDate, endDate time.Time) (Period, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO payroll_periods (org_id, name, start_date, end_date)
    VALUES ($1,$2,$3,$4)
    RETURNING `+periodColumns+`
  `, orgID, name, startDate, endDate)
	return scanPeriod(row)
}

func (s *Store) GetPeriod(ctx context.Context, orgID, periodID string) (Period, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+periodColumns+`
    FROM payroll_periods
    WHERE org_id = $1 AND id = $2
  `, orgID, periodID)
	period, err := scanPeriod(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, fmt.Errorf("%w: period %s", ErrNotFound, periodID)
	}
	return period, err
}

func (s *Store) CountPeriods(ctx context.Context, orgID string) (int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM payroll_periods WHERE org_id = $1", orgID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListPeriods(ctx context.Context, orgID string, limit, offset int) ([]Period, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+periodColumns+`
    FROM payroll_periods
    WHERE org_id = $1
    ORDER BY start_date DESC
    LIMIT $2 OFFSET $3
  `, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []Period
	for rows.Next() {
		period, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}
	return periods, rows.Err()
}

func (s *Store) SetArchived(ctx context.Context, orgID, periodID string, archived bool) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payroll_periods SET archived = $3 WHERE org_id = $1 AND id = $2
  `, orgID, periodID, archived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: period %s", ErrNotFound, periodID)
	}
	return nil
}

func (s *Store) FinalizePeriod(ctx context.Context, orgID, periodID, userID string) (Period, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE payroll_periods
    SET status = $4, finalized_at = now(), finalized_by = $3
    WHERE org_id = $1 AND id = $2 AND status = $5
    RETURNING `+periodColumns+`
  `, orgID, periodID, userID, PeriodStatusFinalized, PeriodStatusDraft)
	period, err := scanPeriod(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// The CAS found no draft row: either the period is unknown or
		// another finalize won the race.
		if _, getErr := s.GetPeriod(ctx, orgID, periodID); getErr != nil {
			return Period{}, getErr
		}
		return Period{}, fmt.Errorf("%w: period %s already finalized", ErrConcurrencyConflict, periodID)
	}
	return period, err
}

func (s *Store) ListStaffProfiles(ctx context.Context, orgID string) ([]StaffProfile, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, system_role, pay_method, monthly_salary_cents, hourly_rate_cents
    FROM staff
    WHERE org_id = $1 AND active = true
    ORDER BY name, id
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []StaffProfile
	for rows.Next() {
		var profile StaffProfile
		if err := rows.Scan(&profile.StaffID, &profile.Name, &profile.SystemRole, &profile.PayMethod, &profile.MonthlySalaryCents, &profile.HourlyRateCents); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func (s *Store) ListAttendance(ctx context.Context, orgID, staffID string, start, end time.Time) ([]AttendanceRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT staff_id, work_date, clock_in, clock_out, status, total_hours
    FROM attendance_records
    WHERE org_id = $1 AND staff_id = $2 AND work_date >= $3 AND work_date <= $4
    ORDER BY work_date
  `, orgID, staffID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AttendanceRecord
	for rows.Next() {
		var record AttendanceRecord
		if err := rows.Scan(&record.StaffID, &record.Date, &record.ClockIn, &record.ClockOut, &record.Status, &record.TotalHours); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *Store) ListApprovedLeave(ctx context.Context, orgID, staffID string, start, end time.Time) ([]LeaveRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT staff_id, start_date, end_date, is_paid, status
    FROM leave_records
    WHERE org_id = $1 AND staff_id = $2 AND status = $3
      AND start_date <= $5 AND end_date >= $4
    ORDER BY start_date
  `, orgID, staffID, LeaveStatusApproved, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []LeaveRecord
	for rows.Next() {
		var record LeaveRecord
		if err := rows.Scan(&record.StaffID, &record.StartDate, &record.EndDate, &record.Paid, &record.Status); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *Store) LatestRates(ctx context.Context, orgID string) (RatesConfiguration, error) {
	var payload []byte
	err := s.DB.QueryRow(ctx, `
    SELECT payload
    FROM rates_configurations
    WHERE org_id = $1
    ORDER BY created_at DESC
    LIMIT 1
  `, orgID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return RatesConfiguration{}, fmt.Errorf("%w: rates configuration for org %s", ErrNotFound, orgID)
	}
	if err != nil {
		return RatesConfiguration{}, err
	}

	var rates RatesConfiguration
	if err := json.Unmarshal(payload, &rates); err != nil {
		return RatesConfiguration{}, fmt.Errorf("%w: stored rates malformed: %v", ErrValidation, err)
	}
	return rates, rates.Validate()
}

func (s *Store) ReplaceEntries(ctx context.Context, orgID, periodID string, entries []Entry) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	err = tx.QueryRow(ctx, `
    SELECT status FROM payroll_periods WHERE org_id = $1 AND id = $2 FOR UPDATE
  `, orgID, periodID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: period %s", ErrNotFound, periodID)
	}
	if err != nil {
		return err
	}
	if status != PeriodStatusDraft {
		return fmt.Errorf("%w: cannot regenerate entries", ErrImmutablePeriod)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ID)
	}
	if _, err := tx.Exec(ctx, `
    DELETE FROM payroll_entries WHERE period_id = $1 AND NOT (id = ANY($2))
  `, periodID, ids); err != nil {
		return err
	}

	for _, entry := range entries {
		allowancesJSON, warningsJSON, err := marshalEntryJSON(entry)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO payroll_entries (
        id, org_id, period_id, staff_id, staff_name, pay_method,
        worked_units, paid_leave_units, unpaid_leave_units, absent_units, month_units,
        payable_base_cents, allowances, allowances_total_cents, gross_cents,
        paye_cents, nssf_employee_cents, nssf_employer_cents, shif_cents,
        housing_levy_employee_cents, housing_levy_employer_cents,
        deductions_total_cents, net_pay_cents, warnings
      ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
      ON CONFLICT (period_id, staff_id) DO UPDATE SET
        staff_name = EXCLUDED.staff_name,
        pay_method = EXCLUDED.pay_method,
        worked_units = EXCLUDED.worked_units,
        paid_leave_units = EXCLUDED.paid_leave_units,
        unpaid_leave_units = EXCLUDED.unpaid_leave_units,
        absent_units = EXCLUDED.absent_units,
        month_units = EXCLUDED.month_units,
        payable_base_cents = EXCLUDED.payable_base_cents,
        allowances = EXCLUDED.allowances,
        allowances_total_cents = EXCLUDED.allowances_total_cents,
        gross_cents = EXCLUDED.gross_cents,
        paye_cents = EXCLUDED.paye_cents,
        nssf_employee_cents = EXCLUDED.nssf_employee_cents,
        nssf_employer_cents = EXCLUDED.nssf_employer_cents,
        shif_cents = EXCLUDED.shif_cents,
        housing_levy_employee_cents = EXCLUDED.housing_levy_employee_cents,
        housing_levy_employer_cents = EXCLUDED.housing_levy_employer_cents,
        deductions_total_cents = EXCLUDED.deductions_total_cents,
        net_pay_cents = EXCLUDED.net_pay_cents,
        warnings = EXCLUDED.warnings
    `,
			entry.ID, orgID, periodID, entry.StaffID, entry.StaffName, entry.PayMethod,
			entry.WorkedUnits, entry.PaidLeaveUnits, entry.UnpaidLeaveUnits, entry.AbsentUnits, entry.MonthUnits,
			entry.PayableBaseCents, allowancesJSON, entry.AllowancesTotalCents, entry.GrossCents,
			entry.Deductions.PAYECents, entry.Deductions.NSSFEmployeeCents, entry.Deductions.NSSFEmployerCents, entry.Deductions.SHIFCents,
			entry.Deductions.HousingLevyEmployeeCents, entry.Deductions.HousingLevyEmployerCents,
			entry.Deductions.TotalCents, entry.NetPayCents, warningsJSON,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

const entryColumns = `
  id, period_id, staff_id, staff_name, pay_method,
  worked_units, paid_leave_units, unpaid_leave_units, absent_units, month_units,
  payable_base_cents, allowances, allowances_total_cents, gross_cents,
  paye_cents, nssf_employee_cents, nssf_employer_cents, shif_cents,
  housing_levy_employee_cents, housing_levy_employer_cents,
  deductions_total_cents, net_pay_cents, warnings, is_paid, paid_at, paid_by`

func (s *Store) ListEntries(ctx context.Context, orgID, periodID string) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+entryColumns+`
    FROM payroll_entries
    WHERE org_id = $1 AND period_id = $2
    ORDER BY staff_name, staff_id
  `, orgID, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) GetEntry(ctx context.Context, orgID, entryID string) (Entry, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+entryColumns+`
    FROM payroll_entries
    WHERE org_id = $1 AND id = $2
  `, orgID, entryID)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: entry %s", ErrNotFound, entryID)
	}
	return entry, err
}

func (s *Store) GetEntryForStaff(ctx context.Context, orgID, periodID, staffID string) (Entry, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+entryColumns+`
    FROM payroll_entries
    WHERE org_id = $1 AND period_id = $2 AND staff_id = $3
  `, orgID, periodID, staffID)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: entry for staff %s", ErrNotFound, staffID)
	}
	return entry, err
}

func (s *Store) UpdateEntryFinancials(ctx context.Context, orgID string, entry Entry) error {
	allowancesJSON, warningsJSON, err := marshalEntryJSON(entry)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE payroll_entries e SET
      allowances = $3,
      allowances_total_cents = $4,
      gross_cents = $5,
      paye_cents = $6,
      nssf_employee_cents = $7,
      nssf_employer_cents = $8,
      shif_cents = $9,
      housing_levy_employee_cents = $10,
      housing_levy_employer_cents = $11,
      deductions_total_cents = $12,
      net_pay_cents = $13,
      warnings = $14
    FROM payroll_periods p
    WHERE e.org_id = $1 AND e.id = $2 AND p.id = e.period_id AND p.status = $15
  `, orgID, entry.ID, allowancesJSON, entry.AllowancesTotalCents, entry.GrossCents,
		entry.Deductions.PAYECents, entry.Deductions.NSSFEmployeeCents, entry.Deductions.NSSFEmployerCents,
		entry.Deductions.SHIFCents, entry.Deductions.HousingLevyEmployeeCents, entry.Deductions.HousingLevyEmployerCents,
		entry.Deductions.TotalCents, entry.NetPayCents, warningsJSON, PeriodStatusDraft)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.entryWriteRejected(ctx, orgID, entry.ID)
	}
	return nil
}

func (s *Store) SetEntryPaid(ctx context.Context, orgID, entryID string, paid bool, userID string) (Entry, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payroll_entries e
    SET is_paid = $3, paid_at = now(), paid_by = $4
    FROM payroll_periods p
    WHERE e.org_id = $1 AND e.id = $2 AND p.id = e.period_id AND p.status = $5
  `, orgID, entryID, paid, userID, PeriodStatusDraft)
	if err != nil {
		return Entry{}, err
	}
	if tag.RowsAffected() == 0 {
		return Entry{}, s.entryWriteRejected(ctx, orgID, entryID)
	}
	return s.GetEntry(ctx, orgID, entryID)
}

func (s *Store) MarkAllPaid(ctx context.Context, orgID, periodID, userID string) (int, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	err = tx.QueryRow(ctx, `
    SELECT status FROM payroll_periods WHERE org_id = $1 AND id = $2 FOR UPDATE
  `, orgID, periodID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: period %s", ErrNotFound, periodID)
	}
	if err != nil {
		return 0, err
	}
	if status != PeriodStatusDraft {
		return 0, fmt.Errorf("%w: cannot mark entries paid", ErrImmutablePeriod)
	}

	tag, err := tx.Exec(ctx, `
    UPDATE payroll_entries
    SET is_paid = true, paid_at = now(), paid_by = $3
    WHERE org_id = $1 AND period_id = $2 AND is_paid = false
  `, orgID, periodID, userID)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// entryWriteRejected decides why a guarded entry write touched no rows.
func (s *Store) entryWriteRejected(ctx context.Context, orgID, entryID string) error {
	var status string
	err := s.DB.QueryRow(ctx, `
    SELECT p.status
    FROM payroll_entries e
    JOIN payroll_periods p ON p.id = e.period_id
    WHERE e.org_id = $1 AND e.id = $2
  `, orgID, entryID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: entry %s", ErrNotFound, entryID)
	}
	if err != nil {
		return err
	}
	if status != PeriodStatusDraft {
		return fmt.Errorf("%w: entry %s", ErrImmutablePeriod, entryID)
	}
	return fmt.Errorf("%w: entry %s", ErrConcurrencyConflict, entryID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPeriod(row rowScanner) (Period, error) {
	var period Period
	err := row.Scan(&period.ID, &period.OrgID, &period.Name, &period.StartDate, &period.EndDate,
		&period.Status, &period.FinalizedAt, &period.FinalizedBy, &period.Archived)
	return period, err
}

func scanEntry(row rowScanner) (Entry, error) {
	var entry Entry
	var allowancesJSON, warningsJSON []byte
	err := row.Scan(
		&entry.ID, &entry.PeriodID, &entry.StaffID, &entry.StaffName, &entry.PayMethod,
		&entry.WorkedUnits, &entry.PaidLeaveUnits, &entry.UnpaidLeaveUnits, &entry.AbsentUnits, &entry.MonthUnits,
		&entry.PayableBaseCents, &allowancesJSON, &entry.AllowancesTotalCents, &entry.GrossCents,
		&entry.Deductions.PAYECents, &entry.Deductions.NSSFEmployeeCents, &entry.Deductions.NSSFEmployerCents, &entry.Deductions.SHIFCents,
		&entry.Deductions.HousingLevyEmployeeCents, &entry.Deductions.HousingLevyEmployerCents,
		&entry.Deductions.TotalCents, &entry.NetPayCents, &warningsJSON, &entry.IsPaid, &entry.PaidAt, &entry.PaidBy,
	)
	if err != nil {
		return entry, err
	}
	if len(allowancesJSON) > 0 {
		if err := json.Unmarshal(allowancesJSON, &entry.Allowances); err != nil {
			return entry, err
		}
	}
	if len(warningsJSON) > 0 {
		if err := json.Unmarshal(warningsJSON, &entry.Warnings); err != nil {
			return entry, err
		}
	}
	return entry, nil
}

func marshalEntryJSON(entry Entry) ([]byte, []byte, error) {
	allowances := entry.Allowances
	if allowances == nil {
		allowances = []Allowance{}
	}
	allowancesJSON, err := json.Marshal(allowances)
	if err != nil {
		return nil, nil, err
	}
	warnings := entry.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return nil, nil, err
	}
	return allowancesJSON, warningsJSON, nil
}
