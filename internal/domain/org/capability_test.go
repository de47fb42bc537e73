package org

import (
	"testing"
	"time"
)

func TestComputeCapabilities(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	cases := []struct {
		name string
		sub  Subscription
		want Capabilities
	}{
		{
			"active trial unverified",
			Subscription{Plan: PlanTrial, TrialEndsAt: &future},
			Capabilities{CanPreview: true},
		},
		{
			"active trial verified with payouts",
			Subscription{Plan: PlanTrial, TrialEndsAt: &future, Verified: true, PayoutsEnabled: true},
			Capabilities{CanPreview: true, CanPayout: true, CanExport: true},
		},
		{
			"expired trial",
			Subscription{Plan: PlanTrial, TrialEndsAt: &past, Verified: true, PayoutsEnabled: true},
			Capabilities{},
		},
		{
			"trial without end date",
			Subscription{Plan: PlanTrial, Verified: true},
			Capabilities{},
		},
		{
			"paid verified",
			Subscription{Plan: PlanPaid, Verified: true, PayoutsEnabled: true},
			Capabilities{CanPreview: true, CanPayout: true, CanExport: true, CanInvoice: true},
		},
		{
			"paid unverified",
			Subscription{Plan: PlanPaid},
			Capabilities{CanPreview: true, CanInvoice: true},
		},
	}
	for _, tc := range cases {
		if got := Compute(tc.sub, now); got != tc.want {
			t.Fatalf("%s: expected %+v, got %+v", tc.name, tc.want, got)
		}
	}
}
