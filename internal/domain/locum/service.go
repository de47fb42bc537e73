package locum

import (
	"context"
	"fmt"
	"time"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// ListPayouts derives payout rows from shifts in range: a shift pays its
// rate only once marked worked; scheduled and no-show shifts pay nothing.
func (s *Service) ListPayouts(ctx context.Context, orgID string, start, end time.Time) ([]PayoutEntry, int64, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, 0, fmt.Errorf("%w: date range malformed", ErrValidation)
	}

	entries, err := s.store.ListLocumShifts(ctx, orgID, start, end)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	for i := range entries {
		if entries[i].Status == StatusWorked {
			entries[i].PayableCents = entries[i].RateCents
			total += entries[i].RateCents
		} else {
			entries[i].PayableCents = 0
		}
	}
	return entries, total, nil
}

// MarkShift records a worked/no-show transition. This track is independent
// of the employee period state machine: a finalized payroll period does not
// block it.
func (s *Service) MarkShift(ctx context.Context, orgID, shiftID, status, markedBy string) error {
	if status != StatusWorked && status != StatusNoShow {
		return fmt.Errorf("%w: status must be %q or %q", ErrValidation, StatusWorked, StatusNoShow)
	}
	return s.store.UpsertShiftStatus(ctx, orgID, shiftID, status, markedBy)
}
