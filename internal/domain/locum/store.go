package locum

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StoreAPI interface {
	ListLocumShifts(ctx context.Context, orgID string, start, end time.Time) ([]PayoutEntry, error)
	UpsertShiftStatus(ctx context.Context, orgID, shiftID, status, markedBy string) error
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListLocumShifts(ctx context.Context, orgID string, start, end time.Time) ([]PayoutEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT sh.id, sh.locum_name, sh.shift_date,
           TRIM(BOTH '-' FROM sh.start_time || '-' || sh.end_time),
           sh.role, sh.location, sh.rate_cents,
           COALESCE(sa.status, $4)
    FROM shifts sh
    LEFT JOIN shift_attendance sa ON sa.shift_id = sh.id
    WHERE sh.org_id = $1 AND sh.is_locum = true
      AND sh.shift_date >= $2 AND sh.shift_date <= $3
    ORDER BY sh.shift_date, sh.locum_name, sh.id
  `, orgID, start, end, StatusScheduled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []PayoutEntry
	for rows.Next() {
		var entry PayoutEntry
		if err := rows.Scan(&entry.ShiftID, &entry.LocumName, &entry.ShiftDate, &entry.ShiftTime,
			&entry.Role, &entry.Location, &entry.RateCents, &entry.Status); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// UpsertShiftStatus records the status transition by writing the attendance
// record tied to the shift id; only the current stamp is kept.
func (s *Store) UpsertShiftStatus(ctx context.Context, orgID, shiftID, status, markedBy string) error {
	var isLocum bool
	err := s.DB.QueryRow(ctx, `
    SELECT is_locum FROM shifts WHERE org_id = $1 AND id = $2
  `, orgID, shiftID).Scan(&isLocum)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: shift %s", ErrNotFound, shiftID)
	}
	if err != nil {
		return err
	}
	if !isLocum {
		return fmt.Errorf("%w: shift %s has no locum assignment", ErrValidation, shiftID)
	}

	_, err = s.DB.Exec(ctx, `
    INSERT INTO shift_attendance (shift_id, org_id, status, marked_by, marked_at)
    VALUES ($1,$2,$3,$4,now())
    ON CONFLICT (shift_id)
    DO UPDATE SET status = EXCLUDED.status, marked_by = EXCLUDED.marked_by, marked_at = now()
  `, shiftID, orgID, status, markedBy)
	return err
}
