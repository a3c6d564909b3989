package dataflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/quantcrew/tradingcrew/internal/config"
)

func fastRetry() *RetryConfig {
	return &RetryConfig{MaxRetries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2.0}
}

func marketTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataCacheDir:     t.TempDir(),
		CacheEnabled:     false,
		TwelveDataAPIKey: "test-key",
	}
}

func yahooChartJSON(t *testing.T, closes []float64) []byte {
	t.Helper()
	now := time.Now()
	timestamps := make([]int64, len(closes))
	closePtrs := make([]*float64, len(closes))
	for i := range closes {
		// Oldest first, one per day, most recent today.
		timestamps[i] = now.AddDate(0, 0, i-len(closes)+1).Unix()
		v := closes[i]
		closePtrs[i] = &v
	}

	payload := map[string]interface{}{
		"chart": map[string]interface{}{
			"result": []map[string]interface{}{{
				"timestamp": timestamps,
				"indicators": map[string]interface{}{
					"quote": []map[string]interface{}{{"close": closePtrs}},
				},
			}},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestGetVolatility(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/") {
			http.NotFound(w, r)
			return
		}
		w.Write(yahooChartJSON(t, []float64{18.0, 20.0, 22.0}))
	}))
	defer server.Close()

	c := NewHistoricalMarketClient(marketTestConfig(t))
	c.SetBaseURLs(server.URL, server.URL)
	c.retry = fastRetry()

	points, err := c.GetVolatility(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetVolatility: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if !points[0].Date.After(points[1].Date) {
		t.Fatal("points must be most recent first")
	}
	if points[0].Value.StringFixed(2) != "22.00" {
		t.Fatalf("latest value = %s", points[0].Value.StringFixed(2))
	}
	// 20 -> 22 is a 10% move.
	if points[0].PctChange.StringFixed(2) != "10.00" {
		t.Fatalf("pct change = %s", points[0].PctChange.StringFixed(2))
	}
}

func TestGetVolatilityUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewHistoricalMarketClient(marketTestConfig(t))
	c.SetBaseURLs(server.URL, server.URL)
	c.retry = fastRetry()

	_, err := c.GetVolatility(context.Background(), 5)
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Source != "yahoo" || provErr.Op != "volatility" {
		t.Fatalf("error = %+v", provErr)
	}
}

func twelveDataJSON(closes map[string]string) []byte {
	values := make([]map[string]string, 0, len(closes))
	for date, close := range closes {
		values = append(values, map[string]string{"datetime": date, "close": close})
	}
	data, _ := json.Marshal(map[string]interface{}{"status": "ok", "values": values})
	return data
}

func TestGetGlobalSnapshotDegradesPerAsset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		if symbol == "GLD" {
			fmt.Fprint(w, `{"status":"error","message":"symbol not found"}`)
			return
		}
		w.Write(twelveDataJSON(map[string]string{
			"2026-08-25": "101.5",
			"2026-08-24": "100.0",
		}))
	}))
	defer server.Close()

	c := NewHistoricalMarketClient(marketTestConfig(t))
	c.SetBaseURLs(server.URL, server.URL)
	c.retry = fastRetry()

	snapshot, err := c.GetGlobalSnapshot(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetGlobalSnapshot: %v", err)
	}
	if !strings.Contains(snapshot, "Gold: Error retrieving data") {
		t.Fatalf("failed asset should degrade inline:\n%s", snapshot)
	}
	if !strings.Contains(snapshot, "S&P 500 values for the last 2 days:") {
		t.Fatalf("healthy asset missing:\n%s", snapshot)
	}
	if !strings.Contains(snapshot, "LATEST VALUE, Daily change from previous day: 1.50%") {
		t.Fatalf("latest marker missing:\n%s", snapshot)
	}
}

func TestGetGlobalSnapshotAllAssetsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error","message":"rate limited"}`)
	}))
	defer server.Close()

	c := NewHistoricalMarketClient(marketTestConfig(t))
	c.SetBaseURLs(server.URL, server.URL)
	c.retry = fastRetry()

	_, err := c.GetGlobalSnapshot(context.Background(), 2)
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}

func TestGetGlobalSnapshotRequiresAPIKey(t *testing.T) {
	cfg := marketTestConfig(t)
	cfg.TwelveDataAPIKey = ""
	c := NewHistoricalMarketClient(cfg)

	_, err := c.GetGlobalSnapshot(context.Background(), 2)
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}

func TestFormatVolatilityEmpty(t *testing.T) {
	if got := FormatVolatility(nil, 5); got != "No volatility data available." {
		t.Fatalf("got %q", got)
	}
}
