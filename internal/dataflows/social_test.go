package dataflows

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/quantcrew/tradingcrew/internal/config"
)

func TestStocktwitsMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/streams/symbol/AAPL.json" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"messages":[
			{"body":"loading up calls","created_at":"2026-08-26T13:00:00Z","user":{"username":"bull1"},"entities":{"sentiment":{"basic":"Bullish"}}},
			{"body":"old take","created_at":"2026-08-20T13:00:00Z","user":{"username":"late"},"entities":{}}
		]}`)
	}))
	defer server.Close()

	s := NewStocktwitsClient(&config.Config{DataCacheDir: t.TempDir()})
	s.SetBaseURL(server.URL)
	s.retry = fastRetry()

	since := time.Date(2026, 8, 25, 18, 0, 0, 0, time.UTC)
	text, err := s.Messages(context.Background(), "AAPL", 10, since)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if !strings.Contains(text, "Stocktwits messages for AAPL (1 messages):") {
		t.Fatalf("header wrong:\n%s", text)
	}
	if !strings.Contains(text, "@bull1 (sentiment: Bullish): loading up calls") {
		t.Fatalf("message missing:\n%s", text)
	}
	if strings.Contains(text, "old take") {
		t.Fatalf("stale message should be filtered:\n%s", text)
	}
}

func TestStocktwitsEmptyStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"messages":[]}`)
	}))
	defer server.Close()

	s := NewStocktwitsClient(&config.Config{DataCacheDir: t.TempDir()})
	s.SetBaseURL(server.URL)
	s.retry = fastRetry()

	text, err := s.Messages(context.Background(), "AAPL", 10, time.Time{})
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if !strings.Contains(text, "No Stocktwits messages for AAPL") {
		t.Fatalf("got %q", text)
	}
}

func TestStocktwitsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	}))
	defer server.Close()

	s := NewStocktwitsClient(&config.Config{DataCacheDir: t.TempDir()})
	s.SetBaseURL(server.URL)
	s.retry = fastRetry()

	_, err := s.Messages(context.Background(), "AAPL", 10, time.Time{})
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Source != "stocktwits" {
		t.Fatalf("source = %s", provErr.Source)
	}
}
