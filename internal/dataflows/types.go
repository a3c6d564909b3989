package dataflows

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// VolatilityPoint is one day of a volatility index series, most recent first.
type VolatilityPoint struct {
	Date      time.Time       `json:"date"`
	Value     decimal.Decimal `json:"value"`
	PctChange decimal.Decimal `json:"pct_change"`
}

// Bar is one daily OHLCV bar.
type Bar struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// ForecastRow is the next-day return forecast for one symbol, in percent.
type ForecastRow struct {
	Symbol string          `json:"symbol"`
	Date   time.Time       `json:"date"`
	Return decimal.Decimal `json:"return"`
}

// ForecastTable holds one run's forecasts keyed by symbol. It is fetched
// once per run and shared read-only across symbol tasks.
type ForecastTable map[string]ForecastRow

// Headline is a single news item for a symbol.
type Headline struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// ProviderError wraps a network, auth or parse failure from an external
// data or model service.
type ProviderError struct {
	Source string
	Op     string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func providerErr(source, op string, err error) *ProviderError {
	return &ProviderError{Source: source, Op: op, Err: err}
}
