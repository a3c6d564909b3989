package dataflows

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quantcrew/tradingcrew/internal/config"
)

func forecastTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		InputsDir:      t.TempDir(),
		ForecastAPIKey: "test-key",
	}
}

func TestGetForecastFetchesOncePerDay(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/forecast" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		fmt.Fprint(w, `{"forecasts":[
			{"symbol":"AAPL","date":"2026-08-27","forecast":0.004},
			{"symbol":"SPY","date":"2026-08-27","forecast":-0.001}
		]}`)
	}))
	defer server.Close()

	cfg := forecastTestConfig(t)
	c := NewForecastClient(cfg)
	c.SetBaseURL(server.URL)
	c.retry = fastRetry()

	table, err := c.GetForecast(context.Background(), []string{"AAPL", "SPY"})
	if err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("table = %v", table)
	}
	// Raw returns are quoted in percent.
	if got := table["AAPL"].Return.StringFixed(4); got != "0.4000" {
		t.Fatalf("AAPL return = %s", got)
	}

	// Same day, same universe: served from the on-disk table.
	again, err := c.GetForecast(context.Background(), []string{"AAPL", "SPY"})
	if err != nil {
		t.Fatalf("second GetForecast: %v", err)
	}
	if hits != 1 {
		t.Fatalf("upstream hit %d times, want 1", hits)
	}
	if again["SPY"].Return.StringFixed(4) != "-0.1000" {
		t.Fatalf("SPY return = %s", again["SPY"].Return.StringFixed(4))
	}

	// A fresh client over the same inputs directory reuses the cache too.
	c2 := NewForecastClient(cfg)
	c2.SetBaseURL(server.URL)
	c2.retry = fastRetry()
	if _, err := c2.GetForecast(context.Background(), []string{"AAPL", "SPY"}); err != nil {
		t.Fatalf("cached GetForecast: %v", err)
	}
	if hits != 1 {
		t.Fatalf("upstream hit %d times after new client, want 1", hits)
	}
}

func TestGetForecastEmptyUniverse(t *testing.T) {
	c := NewForecastClient(forecastTestConfig(t))
	_, err := c.GetForecast(context.Background(), nil)
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}

func TestGetForecastRequiresAPIKey(t *testing.T) {
	cfg := forecastTestConfig(t)
	cfg.ForecastAPIKey = ""
	c := NewForecastClient(cfg)

	_, err := c.GetForecast(context.Background(), []string{"AAPL"})
	if err == nil {
		t.Fatal("expected error without API key and cache")
	}
}

func TestGetForecastUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewForecastClient(forecastTestConfig(t))
	c.SetBaseURL(server.URL)
	c.retry = fastRetry()

	_, err := c.GetForecast(context.Background(), []string{"AAPL"})
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Source != "forecast" {
		t.Fatalf("source = %s", provErr.Source)
	}
}

func TestLoadCachedMissing(t *testing.T) {
	c := NewForecastClient(forecastTestConfig(t))
	table := c.LoadCached()
	if table == nil || len(table) != 0 {
		t.Fatalf("want empty table, got %v", table)
	}
}

func TestFormatForecast(t *testing.T) {
	if got := FormatForecast(ForecastTable{}, "AAPL", "Apple Inc"); got != "No forecast available for Apple Inc." {
		t.Fatalf("got %q", got)
	}
}
