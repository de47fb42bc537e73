package org

import "time"

type Subscription struct {
	Plan           string
	TrialEndsAt    *time.Time
	Verified       bool
	PayoutsEnabled bool
}

// Capabilities consolidates the scattered trial/verification/payout checks
// into one object computed once from subscription state and passed to the
// engine boundary.
type Capabilities struct {
	CanPreview bool `json:"canPreview"`
	CanPayout  bool `json:"canPayout"`
	CanExport  bool `json:"canExport"`
	CanInvoice bool `json:"canInvoice"`
}

const (
	PlanTrial = "trial"
	PlanPaid  = "paid"
)

func Compute(sub Subscription, now time.Time) Capabilities {
	active := sub.Plan == PlanPaid ||
		(sub.Plan == PlanTrial && sub.TrialEndsAt != nil && now.Before(*sub.TrialEndsAt))

	return Capabilities{
		CanPreview: active,
		CanPayout:  active && sub.Verified && sub.PayoutsEnabled,
		CanExport:  active && sub.Verified,
		CanInvoice: sub.Plan == PlanPaid,
	}
}
