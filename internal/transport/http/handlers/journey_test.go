package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"workforce/internal/app/server"
	"workforce/internal/platform/config"
)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *apiError       `json:"error"`
	RequestID string          `json:"requestId"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TestPayrollPeriodJourney drives the full lifecycle against a real database:
// login, create period, generate, allowance, finalize, export, and the
// immutability of everything after the lock.
func TestPayrollPeriodJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:            dbURL,
		JWTSecret:              "test-secret",
		Environment:            "test",
		StandardWorkdayHours:   8,
		PayslipVisibilityDelay: time.Hour,
		SeedOrgName:            "Test Organization",
		SeedAdminEmail:         "admin@test.local",
		SeedAdminPassword:      "ChangeMe123!",
		RunMigrations:          true,
		RunSeed:                true,
		MaxBodyBytes:           1048576,
		CORSAllowedOrigins:     []string{"*"},
	}

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	periodName := fmt.Sprintf("Journey %d", time.Now().UnixNano())
	var period struct {
		ID string `json:"id"`
	}
	status, env := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/payroll/periods", token,
		map[string]string{"name": periodName, "startDate": "2025-01-01", "endDate": "2025-01-30"})
	if status != http.StatusCreated {
		t.Fatalf("create period: expected 201, got %d (%+v)", status, env.Error)
	}
	mustUnmarshal(t, env.Data, &period)

	var entries []struct {
		ID               string `json:"id"`
		PayableBaseCents int64  `json:"payableBaseCents"`
		NetPayCents      int64  `json:"netPayCents"`
	}
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/payroll/periods/"+period.ID+"/generate", token, nil)
	if status != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d (%+v)", status, env.Error)
	}
	mustUnmarshal(t, env.Data, &entries)
	if len(entries) == 0 {
		t.Fatalf("expected generated entries for seeded staff")
	}
	for _, entry := range entries {
		if entry.NetPayCents < 0 {
			t.Fatalf("net pay must never be negative: %+v", entry)
		}
	}

	// Regeneration must not change anything.
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/payroll/periods/"+period.ID+"/generate", token, nil)
	if status != http.StatusOK {
		t.Fatalf("regenerate: expected 200, got %d", status)
	}
	var regenerated []struct {
		ID string `json:"id"`
	}
	mustUnmarshal(t, env.Data, &regenerated)
	if len(regenerated) != len(entries) {
		t.Fatalf("regeneration changed the entry count: %d vs %d", len(regenerated), len(entries))
	}

	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/payroll/entries/"+entries[0].ID+"/allowances", token,
		map[string]any{"amountCents": 250000, "notes": "journey allowance"})
	if status != http.StatusOK {
		t.Fatalf("add allowance: expected 200, got %d (%+v)", status, env.Error)
	}

	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/payroll/periods/"+period.ID+"/finalize", token, nil)
	if status != http.StatusOK {
		t.Fatalf("finalize: expected 200, got %d (%+v)", status, env.Error)
	}

	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/payroll/periods/"+period.ID+"/finalize", token, nil)
	if status != http.StatusConflict || env.Error == nil || env.Error.Code != "conflict" {
		t.Fatalf("second finalize: expected 409 conflict, got %d (%+v)", status, env.Error)
	}

	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/payroll/entries/"+entries[0].ID+"/allowances", token,
		map[string]any{"amountCents": 100000, "notes": "too late"})
	if status != http.StatusConflict || env.Error == nil || env.Error.Code != "period_finalized" {
		t.Fatalf("allowance after finalize: expected 409 period_finalized, got %d (%+v)", status, env.Error)
	}

	first := doRaw(t, client, ts.URL+"/api/v1/payroll/periods/"+period.ID+"/export", token)
	second := doRaw(t, client, ts.URL+"/api/v1/payroll/periods/"+period.ID+"/export", token)
	if !bytes.Equal(first, second) {
		t.Fatalf("finalized export must be byte-identical")
	}

	// Archive stays available after the lock.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/payroll/periods/"+period.ID+"/archive", token, nil)
	if status != http.StatusOK {
		t.Fatalf("archive after finalize: expected 200, got %d", status)
	}
}

func mustUnmarshal(t *testing.T, data json.RawMessage, v any) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("unmarshal data: %v\n%s", err, data)
	}
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	status, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "",
		map[string]string{"email": email, "password": password})
	if status != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%+v)", status, env.Error)
	}
	var payload struct {
		Token string `json:"token"`
	}
	mustUnmarshal(t, env.Data, &payload)
	if payload.Token == "" {
		t.Fatalf("login returned no token")
	}
	return payload.Token
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("response is not an envelope: %v\n%s", err, raw)
		}
	}
	return resp.StatusCode, env
}

func doRaw(t *testing.T, client *http.Client, url, token string) []byte {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return raw
}
