package payroll

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// RatesConfiguration is supplied to the deduction engine from outside
// (seeded row or RATES_FILE); the engine never embeds statutory values.
type RatesConfiguration struct {
	Version     string    `json:"version"`
	PAYE        PAYERates `json:"paye"`
	NSSF        NSSFRates `json:"nssf"`
	SHIF        SHIFRates `json:"shif"`
	HousingLevy LevyRates `json:"housingLevy"`
}

type PAYERates struct {
	// Brackets are ascending; UpperCents == 0 marks the open top bracket.
	Brackets            []PAYEBracket `json:"brackets"`
	PersonalReliefCents int64         `json:"personalReliefCents"`
}

type PAYEBracket struct {
	UpperCents int64           `json:"upperCents"`
	Rate       decimal.Decimal `json:"rate"`
}

type NSSFRates struct {
	TierILimitCents  int64           `json:"tierILimitCents"`
	TierIILimitCents int64           `json:"tierIILimitCents"`
	Rate             decimal.Decimal `json:"rate"`
}

type SHIFRates struct {
	Rate         decimal.Decimal `json:"rate"`
	MinimumCents int64           `json:"minimumCents"`
}

type LevyRates struct {
	Rate decimal.Decimal `json:"rate"`
}

func (r RatesConfiguration) Validate() error {
	if len(r.PAYE.Brackets) == 0 {
		return fmt.Errorf("%w: paye brackets are required", ErrValidation)
	}
	var prev int64
	for i, bracket := range r.PAYE.Brackets {
		open := bracket.UpperCents == 0
		if open && i != len(r.PAYE.Brackets)-1 {
			return fmt.Errorf("%w: only the last paye bracket may be open-ended", ErrValidation)
		}
		if !open && bracket.UpperCents <= prev {
			return fmt.Errorf("%w: paye brackets must be ascending", ErrValidation)
		}
		if err := validateRate("paye bracket rate", bracket.Rate); err != nil {
			return err
		}
		prev = bracket.UpperCents
	}
	if r.PAYE.PersonalReliefCents < 0 {
		return fmt.Errorf("%w: personal relief must not be negative", ErrValidation)
	}
	if r.NSSF.TierILimitCents <= 0 || r.NSSF.TierIILimitCents <= r.NSSF.TierILimitCents {
		return fmt.Errorf("%w: nssf tier limits must satisfy 0 < tier I < tier II", ErrValidation)
	}
	if err := validateRate("nssf rate", r.NSSF.Rate); err != nil {
		return err
	}
	if err := validateRate("shif rate", r.SHIF.Rate); err != nil {
		return err
	}
	if r.SHIF.MinimumCents < 0 {
		return fmt.Errorf("%w: shif minimum must not be negative", ErrValidation)
	}
	if err := validateRate("housing levy rate", r.HousingLevy.Rate); err != nil {
		return err
	}
	return nil
}

func validateRate(name string, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: %s must be within [0, 1]", ErrValidation, name)
	}
	return nil
}

func LoadRatesFile(path string) (RatesConfiguration, error) {
	var rates RatesConfiguration
	raw, err := os.ReadFile(path)
	if err != nil {
		return rates, err
	}
	if err := json.Unmarshal(raw, &rates); err != nil {
		return rates, fmt.Errorf("%w: rates file %s: %v", ErrValidation, path, err)
	}
	if err := rates.Validate(); err != nil {
		return rates, err
	}
	return rates, nil
}
