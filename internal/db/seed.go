package db

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"workforce/internal/auth"
	"workforce/internal/domain/payroll"
	"workforce/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	orgID, err := ensureOrg(ctx, pool, cfg.SeedOrgName)
	if err != nil {
		return err
	}

	if err := ensureAdminUser(ctx, pool, orgID, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return err
	}

	if err := ensureStaff(ctx, pool, orgID); err != nil {
		return err
	}

	return ensureRates(ctx, pool, orgID)
}

func ensureOrg(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM orgs WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	trialEnds := time.Now().AddDate(0, 1, 0)
	err = pool.QueryRow(ctx, `
    INSERT INTO orgs (name, plan, trial_ends_at, verified, payouts_enabled)
    VALUES ($1, 'trial', $2, true, true)
    RETURNING id
  `, name, trialEnds).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, orgID, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE org_id = $1 AND email = $2", orgID, email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (org_id, email, password_hash, role)
    VALUES ($1, $2, $3, $4)
  `, orgID, strings.ToLower(email), hash, auth.RoleAdmin)
	return err
}

func ensureStaff(ctx context.Context, pool *pgxpool.Pool, orgID string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM staff WHERE org_id = $1", orgID).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	samples := []struct {
		name       string
		systemRole string
		payMethod  string
		salary     int64
	}{
		{"Achieng Odhiambo", "member", payroll.PayMethodFixed, 8_500_000},
		{"Brian Mwangi", "member", payroll.PayMethodProrated, 6_000_000},
		{"Cynthia Wanjiru", "member", payroll.PayMethodProrated, 7_200_000},
	}
	for _, sample := range samples {
		_, err := pool.Exec(ctx, `
      INSERT INTO staff (org_id, name, system_role, pay_method, monthly_salary_cents)
      VALUES ($1, $2, $3, $4, $5)
    `, orgID, sample.name, sample.systemRole, sample.payMethod, sample.salary)
		if err != nil {
			return err
		}
	}
	return nil
}

// ensureRates seeds the statutory configuration the deduction engine reads.
// Amounts are cents; the bracket thresholds and reliefs mirror the published
// monthly tables.
func ensureRates(ctx context.Context, pool *pgxpool.Pool, orgID string) error {
	rates := payroll.RatesConfiguration{
		Version: "2024-07",
		PAYE: payroll.PAYERates{
			Brackets: []payroll.PAYEBracket{
				{UpperCents: 2_400_000, Rate: decimal.NewFromFloat(0.10)},
				{UpperCents: 3_233_300, Rate: decimal.NewFromFloat(0.25)},
				{UpperCents: 50_000_000, Rate: decimal.NewFromFloat(0.30)},
				{UpperCents: 80_000_000, Rate: decimal.NewFromFloat(0.325)},
				{UpperCents: 0, Rate: decimal.NewFromFloat(0.35)},
			},
			PersonalReliefCents: 240_000,
		},
		NSSF: payroll.NSSFRates{
			TierILimitCents:  800_000,
			TierIILimitCents: 7_200_000,
			Rate:             decimal.NewFromFloat(0.06),
		},
		SHIF: payroll.SHIFRates{
			Rate:         decimal.NewFromFloat(0.0275),
			MinimumCents: 30_000,
		},
		HousingLevy: payroll.LevyRates{
			Rate: decimal.NewFromFloat(0.015),
		},
	}
	if err := rates.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(rates)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO rates_configurations (org_id, version, payload)
    VALUES ($1, $2, $3)
    ON CONFLICT (org_id, version) DO NOTHING
  `, orgID, rates.Version, payload)
	return err
}
