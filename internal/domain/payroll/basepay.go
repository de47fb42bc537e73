package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ComputeBasePay returns the payable base amount for a pay method.
// Fixed pay ignores units entirely; prorated pay divides the monthly salary
// by month units, rounded half away from zero to the nearest cent. The same
// rounding is used everywhere money is divided.
func ComputeBasePay(payMethod string, monthlySalaryCents int64, paidUnits, monthUnits int) (int64, error) {
	switch payMethod {
	case PayMethodFixed:
		return monthlySalaryCents, nil
	case PayMethodProrated:
		if monthUnits == 0 {
			return 0, fmt.Errorf("%w: month units is zero", ErrComputation)
		}
		base := decimal.NewFromInt(monthlySalaryCents).
			Mul(decimal.NewFromInt(int64(paidUnits))).
			Div(decimal.NewFromInt(int64(monthUnits))).
			Round(0)
		return base.IntPart(), nil
	default:
		return 0, fmt.Errorf("%w: unknown pay method %q", ErrValidation, payMethod)
	}
}

// IncludeInRun reports whether a staff member participates in the payroll
// run. Owner-role staff are skipped unless they have pay configured.
func IncludeInRun(profile StaffProfile) bool {
	if profile.SystemRole != SystemRoleOwner {
		return true
	}
	return profile.MonthlySalaryCents > 0 || profile.HourlyRateCents > 0
}

func (p StaffProfile) Validate() error {
	if p.StaffID == "" {
		return fmt.Errorf("%w: staff id is required", ErrValidation)
	}
	if p.PayMethod != PayMethodFixed && p.PayMethod != PayMethodProrated {
		return fmt.Errorf("%w: staff %s has unknown pay method %q", ErrValidation, p.StaffID, p.PayMethod)
	}
	if p.MonthlySalaryCents < 0 || p.HourlyRateCents < 0 {
		return fmt.Errorf("%w: staff %s has a negative pay rate", ErrValidation, p.StaffID)
	}
	return nil
}
