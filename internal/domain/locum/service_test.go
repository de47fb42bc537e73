package locum

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeStore struct {
	shifts   []PayoutEntry
	statuses map[string]string
	isLocum  map[string]bool
}

func (f *fakeStore) ListLocumShifts(_ context.Context, _ string, start, end time.Time) ([]PayoutEntry, error) {
	var entries []PayoutEntry
	for _, shift := range f.shifts {
		if shift.ShiftDate.Before(start) || shift.ShiftDate.After(end) {
			continue
		}
		entry := shift
		if status, ok := f.statuses[shift.ShiftID]; ok {
			entry.Status = status
		} else {
			entry.Status = StatusScheduled
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (f *fakeStore) UpsertShiftStatus(_ context.Context, _, shiftID, status, _ string) error {
	locum, ok := f.isLocum[shiftID]
	if !ok {
		return fmt.Errorf("%w: shift %s", ErrNotFound, shiftID)
	}
	if !locum {
		return fmt.Errorf("%w: shift %s has no locum assignment", ErrValidation, shiftID)
	}
	f.statuses[shiftID] = status
	return nil
}

func shiftDay(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
}

func newTestService() (*Service, *fakeStore) {
	store := &fakeStore{
		shifts: []PayoutEntry{
			{ShiftID: "sh1", LocumName: "Dr. Kiptoo", ShiftDate: shiftDay(5), RateCents: 800_000},
			{ShiftID: "sh2", LocumName: "Dr. Njeri", ShiftDate: shiftDay(10), RateCents: 650_000},
			{ShiftID: "sh3", LocumName: "Dr. Kiptoo", ShiftDate: shiftDay(15), RateCents: 800_000},
		},
		statuses: map[string]string{},
		isLocum:  map[string]bool{"sh1": true, "sh2": true, "sh3": true, "sh4": false},
	}
	return NewService(store), store
}

func TestListPayoutsOnlyWorkedShiftsPay(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	store.statuses["sh1"] = StatusWorked
	store.statuses["sh2"] = StatusNoShow

	payouts, total, err := svc.ListPayouts(ctx, "org-1", shiftDay(1), shiftDay(31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payouts) != 3 {
		t.Fatalf("expected 3 shifts in range, got %d", len(payouts))
	}
	if total != 800_000 {
		t.Fatalf("only worked shifts pay, expected total 800000, got %d", total)
	}
	for _, payout := range payouts {
		switch payout.Status {
		case StatusWorked:
			if payout.PayableCents != payout.RateCents {
				t.Fatalf("worked shift must pay its rate: %+v", payout)
			}
		default:
			if payout.PayableCents != 0 {
				t.Fatalf("%s shift must pay nothing: %+v", payout.Status, payout)
			}
		}
	}
}

func TestListPayoutsRangeFilter(t *testing.T) {
	svc, _ := newTestService()

	payouts, _, err := svc.ListPayouts(context.Background(), "org-1", shiftDay(1), shiftDay(9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payouts) != 1 || payouts[0].ShiftID != "sh1" {
		t.Fatalf("expected only sh1 in range, got %+v", payouts)
	}
}

func TestListPayoutsRejectsMalformedRange(t *testing.T) {
	svc, _ := newTestService()

	if _, _, err := svc.ListPayouts(context.Background(), "org-1", shiftDay(10), shiftDay(1)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, _, err := svc.ListPayouts(context.Background(), "org-1", time.Time{}, shiftDay(1)); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero start: expected ErrValidation, got %v", err)
	}
}

func TestMarkShift(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	if err := svc.MarkShift(ctx, "org-1", "sh1", StatusWorked, "admin-1"); err != nil {
		t.Fatalf("mark worked: %v", err)
	}
	if store.statuses["sh1"] != StatusWorked {
		t.Fatalf("status not recorded")
	}

	// Re-marking overwrites the single stamp.
	if err := svc.MarkShift(ctx, "org-1", "sh1", StatusNoShow, "admin-2"); err != nil {
		t.Fatalf("re-mark: %v", err)
	}
	if store.statuses["sh1"] != StatusNoShow {
		t.Fatalf("expected no_show after re-mark, got %s", store.statuses["sh1"])
	}
}

func TestMarkShiftValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.MarkShift(ctx, "org-1", "sh1", StatusScheduled, "admin-1"); !errors.Is(err, ErrValidation) {
		t.Fatalf("scheduled is not a markable status, got %v", err)
	}
	if err := svc.MarkShift(ctx, "org-1", "sh1", "cancelled", "admin-1"); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown status: expected ErrValidation, got %v", err)
	}
	if err := svc.MarkShift(ctx, "org-1", "missing", StatusWorked, "admin-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing shift: expected ErrNotFound, got %v", err)
	}
	if err := svc.MarkShift(ctx, "org-1", "sh4", StatusWorked, "admin-1"); !errors.Is(err, ErrValidation) {
		t.Fatalf("non-locum shift: expected ErrValidation, got %v", err)
	}
}
