package payroll

import "github.com/shopspring/decimal"

// ComputeDeductions applies the statutory tables to taxable pay. Employer
// contributions are reported for cost visibility but never enter TotalCents,
// which is the employee-side sum subtracted from net pay.
func ComputeDeductions(grossCents int64, rates RatesConfiguration) DeductionDetails {
	if grossCents < 0 {
		grossCents = 0
	}

	details := DeductionDetails{
		PAYECents: computePAYE(grossCents, rates.PAYE),
	}

	nssf := computeNSSF(grossCents, rates.NSSF)
	details.NSSFEmployeeCents = nssf
	details.NSSFEmployerCents = nssf

	details.SHIFCents = computeSHIF(grossCents, rates.SHIF)

	levy := roundCents(decimal.NewFromInt(grossCents).Mul(rates.HousingLevy.Rate))
	details.HousingLevyEmployeeCents = levy
	details.HousingLevyEmployerCents = levy

	details.TotalCents = details.PAYECents +
		details.NSSFEmployeeCents +
		details.SHIFCents +
		details.HousingLevyEmployeeCents
	return details
}

func computePAYE(grossCents int64, rates PAYERates) int64 {
	tax := decimal.Zero
	var lower int64
	for _, bracket := range rates.Brackets {
		upper := bracket.UpperCents
		if upper == 0 || upper > grossCents {
			upper = grossCents
		}
		if upper <= lower {
			break
		}
		slice := decimal.NewFromInt(upper - lower)
		tax = tax.Add(slice.Mul(bracket.Rate))
		lower = bracket.UpperCents
		if lower == 0 || lower >= grossCents {
			break
		}
	}

	paye := roundCents(tax) - rates.PersonalReliefCents
	if paye < 0 {
		return 0
	}
	return paye
}

func computeNSSF(grossCents int64, rates NSSFRates) int64 {
	tierI := min64(grossCents, rates.TierILimitCents)
	tierII := min64(grossCents, rates.TierIILimitCents) - rates.TierILimitCents
	if tierII < 0 {
		tierII = 0
	}
	pensionable := decimal.NewFromInt(tierI + tierII)
	return roundCents(pensionable.Mul(rates.Rate))
}

func computeSHIF(grossCents int64, rates SHIFRates) int64 {
	shif := roundCents(decimal.NewFromInt(grossCents).Mul(rates.Rate))
	if shif < rates.MinimumCents {
		return rates.MinimumCents
	}
	return shif
}

func roundCents(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
