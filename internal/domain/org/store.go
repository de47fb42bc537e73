package org

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("organization not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) GetSubscription(ctx context.Context, orgID string) (Subscription, error) {
	var sub Subscription
	err := s.DB.QueryRow(ctx, `
    SELECT plan, trial_ends_at, verified, payouts_enabled
    FROM orgs
    WHERE id = $1
  `, orgID).Scan(&sub.Plan, &sub.TrialEndsAt, &sub.Verified, &sub.PayoutsEnabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return Subscription{}, fmt.Errorf("%w: %s", ErrNotFound, orgID)
	}
	return sub, err
}
