package server

import (
	"os"
	"path/filepath"
	"testing"

	"workforce/internal/platform/config"
)

func writeRatesFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rates.json")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write rates file: %v", err)
	}
	return path
}

func TestPayrollServiceConfigRatesOverride(t *testing.T) {
	valid := `{
		"version": "test",
		"paye": {"brackets": [{"upperCents": 0, "rate": "0.1"}], "personalReliefCents": 0},
		"nssf": {"tierILimitCents": 800000, "tierIILimitCents": 7200000, "rate": "0.06"},
		"shif": {"rate": "0.0275", "minimumCents": 30000},
		"housingLevy": {"rate": "0.015"}
	}`

	svcCfg, err := payrollServiceConfig(config.Config{RatesFile: writeRatesFile(t, valid)})
	if err != nil {
		t.Fatalf("valid rates file: %v", err)
	}
	if svcCfg.RatesOverride == nil || svcCfg.RatesOverride.Version != "test" {
		t.Fatalf("expected rates override, got %+v", svcCfg.RatesOverride)
	}

	svcCfg, err = payrollServiceConfig(config.Config{})
	if err != nil {
		t.Fatalf("no rates file configured: %v", err)
	}
	if svcCfg.RatesOverride != nil {
		t.Fatalf("expected no override without RATES_FILE")
	}
}

func TestPayrollServiceConfigRejectsBadRatesFile(t *testing.T) {
	if _, err := payrollServiceConfig(config.Config{RatesFile: "does-not-exist.json"}); err == nil {
		t.Fatalf("missing rates file must fail startup")
	}

	if _, err := payrollServiceConfig(config.Config{RatesFile: writeRatesFile(t, "{not json")}); err == nil {
		t.Fatalf("malformed rates file must fail startup")
	}

	// Parses but fails validation: descending brackets.
	invalid := `{
		"version": "test",
		"paye": {"brackets": [{"upperCents": 500, "rate": "0.1"}, {"upperCents": 100, "rate": "0.2"}]},
		"nssf": {"tierILimitCents": 800000, "tierIILimitCents": 7200000, "rate": "0.06"},
		"shif": {"rate": "0.0275", "minimumCents": 30000},
		"housingLevy": {"rate": "0.015"}
	}`
	if _, err := payrollServiceConfig(config.Config{RatesFile: writeRatesFile(t, invalid)}); err == nil {
		t.Fatalf("invalid rate table must fail startup")
	}
}
