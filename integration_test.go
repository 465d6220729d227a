package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financehub/internal/account"
	"financehub/internal/config"
	"financehub/internal/logger"
)

const timeResponse = `{"year":2025,"month":1,"day":16,"date":"01/16/2025","time":"09:30","timeZone":"America/New_York","dayOfWeek":"Thursday"}`

func newPlaidServer(t *testing.T) *httptest.Server {
	t.Helper()

	responses := map[string]string{
		"access-a": `{"accounts":[
			{"account_id":"a1","name":"Plaid Checking","balances":{"available":100,"current":110,"iso_currency_code":"USD"}},
			{"account_id":"a2","name":"Plaid Credit Card","balances":{"current":410.25}}
		],"request_id":"r1"}`,
		"access-c": `{"accounts":[
			{"account_id":"c1","name":"Plaid Saving","balances":{"current":1200}},
			{"account_id":"c2","name":"Plaid Mortgage","balances":{"current":null}}
		],"request_id":"r3"}`,
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/balance/get" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}

		var body struct {
			ClientID    string `json:"client_id"`
			Secret      string `json:"secret"`
			AccessToken string `json:"access_token"`
			Options     struct {
				MinLastUpdated string `json:"min_last_updated_datetime"`
			} `json:"options"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if body.ClientID != "client-id" || body.Secret != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if body.Options.MinLastUpdated != "2025-01-09T00:00:00Z" {
			t.Errorf("min_last_updated_datetime = %q", body.Options.MinLastUpdated)
		}

		resp, ok := responses[body.AccessToken]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error_code":"INVALID_ACCESS_TOKEN"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(resp))
	}))
}

func newTimeServer(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/time/current/zone" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(timeResponse))
	}))
}

func testConfig(plaidURL, timeURL string) *config.Config {
	return &config.Config{
		PlaidClientID:       "client-id",
		PlaidSecret:         "secret",
		PlaidBaseURL:        plaidURL,
		PlaidTimeout:        2 * time.Second,
		PlaidMinLastUpdated: "2025-01-09T00:00:00Z",
		Sources: []config.Source{
			{Institution: "Bank A", AccessToken: "access-a"},
			{Institution: "Bank B", AccessToken: "access-b"},
			{Institution: "Bank C", AccessToken: "access-c"},
		},
		CheckingAccounts: []string{"Plaid Checking", "Plaid Saving"},
		TimeAPIBaseURL:   timeURL,
		TimeZone:         "America/New_York",
		TimeTimeout:      time.Second,
		MaxResponseBytes: 64 * 1024,
		TimeBufferBytes:  1024,
		ChunkSize:        64,
	}
}

// TestIntegration_Report tests the full flow against mock Plaid and time servers
func TestIntegration_Report(t *testing.T) {
	logger.SetOutput(io.Discard)

	plaidServer := newPlaidServer(t)
	defer plaidServer.Close()
	timeServer := newTimeServer(t)
	defer timeServer.Close()

	a := newApp(testConfig(plaidServer.URL, timeServer.URL))

	var out bytes.Buffer
	require.NoError(t, a.runReport(context.Background(), &out))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "Thursday, 01/16/2025\n"))
	assert.Contains(t, text, "Plaid Checking")
	assert.Contains(t, text, "$410.25")
	assert.Regexp(t, `Total checking\s+\$1,310\.00`, text)
	assert.Regexp(t, `Total credit\s+\$410\.25`, text)
	assert.Contains(t, text, `Bank B (fetcher:plaid:bank_b): failed to fetch balances for Bank B: client error (status 400): HTTP 400: {"error_code":"INVALID_ACCESS_TOKEN"}`)
}

func TestIntegration_Aggregate(t *testing.T) {
	logger.SetOutput(io.Discard)

	plaidServer := newPlaidServer(t)
	defer plaidServer.Close()

	summary := newApp(testConfig(plaidServer.URL, "")).aggregate(context.Background())

	assert.Equal(t, []account.Entry{
		{Institution: "Bank A", Account: "Plaid Checking", Balance: 110},
		{Institution: "Bank A", Account: "Plaid Credit Card", Balance: 410.25},
		{Institution: "Bank C", Account: "Plaid Saving", Balance: 1200},
		{Institution: "Bank C", Account: "Plaid Mortgage", Balance: 0},
	}, summary.Entries)
	assert.Equal(t, 1310.0, summary.Totals.Get(account.CategoryChecking))
	assert.Equal(t, 410.25, summary.Totals.Get(account.CategoryCredit))

	require.Len(t, summary.Sources, 3)
	assert.True(t, summary.Sources[0].OK())
	assert.False(t, summary.Sources[1].OK())
	assert.True(t, summary.Sources[2].OK())
}

func TestIntegration_BalancesJSON(t *testing.T) {
	logger.SetOutput(io.Discard)

	plaidServer := newPlaidServer(t)
	defer plaidServer.Close()

	a := newApp(testConfig(plaidServer.URL, ""))

	var out bytes.Buffer
	require.NoError(t, a.runBalances(context.Background(), &out, true))

	var entries []account.Entry
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	assert.Len(t, entries, 4)
	assert.Equal(t, "Bank A", entries[0].Institution)
}

func TestIntegration_ResponseOverBudget(t *testing.T) {
	logger.SetOutput(io.Discard)

	plaidServer := newPlaidServer(t)
	defer plaidServer.Close()

	cfg := testConfig(plaidServer.URL, "")
	cfg.MaxResponseBytes = 128

	summary := newApp(cfg).aggregate(context.Background())

	assert.Empty(t, summary.Entries)
	assert.Len(t, summary.Failed(), 3)
	assert.Equal(t, 0.0, summary.Totals.Get(account.CategoryChecking))
}

func TestIntegration_TimeUnavailable(t *testing.T) {
	logger.SetOutput(io.Discard)

	timeServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer timeServer.Close()

	a := newApp(testConfig("", timeServer.URL))

	var out bytes.Buffer
	require.NoError(t, a.runTime(context.Background(), &out))
	assert.Equal(t, "HTTP Error\n", out.String())
}

func TestIntegration_Timeout(t *testing.T) {
	logger.SetOutput(io.Discard)

	slowServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slowServer.Close()

	cfg := testConfig(slowServer.URL, "")
	cfg.PlaidTimeout = 50 * time.Millisecond
	cfg.Sources = cfg.Sources[:1]

	start := time.Now()
	summary := newApp(cfg).aggregate(context.Background())

	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, summary.Failed(), 1)
	assert.Contains(t, summary.Failed()[0].Error.Error(), "timeout")
}

func TestIntegration_MetricsFile(t *testing.T) {
	logger.SetOutput(io.Discard)

	plaidServer := newPlaidServer(t)
	defer plaidServer.Close()
	timeServer := newTimeServer(t)
	defer timeServer.Close()

	cfg := testConfig(plaidServer.URL, timeServer.URL)
	cfg.MetricsFile = filepath.Join(t.TempDir(), "financehub.prom")

	require.NoError(t, newApp(cfg).runReport(context.Background(), io.Discard))

	data, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `financehub_exchanges_total{api="plaid",code="200"} 2`)
	assert.Contains(t, text, `financehub_exchanges_total{api="plaid",code="400"} 1`)
	assert.Contains(t, text, `financehub_exchanges_total{api="timeapi",code="200"} 1`)
	assert.Contains(t, text, `financehub_source_up{institution="Bank B",source="fetcher:plaid:bank_b"} 0`)
	assert.Contains(t, text, `financehub_category_balance{category="checking"} 1310`)
}
