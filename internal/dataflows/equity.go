package dataflows

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"

	"github.com/quantcrew/tradingcrew/internal/config"
)

// EquityClient provides per-symbol quote and price-history context through
// the Yahoo Finance quote and chart APIs.
type EquityClient struct {
	cache *CacheManager
}

func NewEquityClient(cfg *config.Config) *EquityClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "equity")
	return &EquityClient{
		cache: NewCacheManager(cacheDir, 24*time.Hour, cfg.CacheEnabled),
	}
}

// CompanyName resolves a display name for the symbol, falling back to the
// symbol itself when the lookup fails.
func (e *EquityClient) CompanyName(symbol string) string {
	var cached string
	if e.cache.Get("equity", "company_name", symbol, &cached) {
		return cached
	}

	q, err := quote.Get(symbol)
	if err != nil || q == nil || q.ShortName == "" {
		return symbol
	}

	e.cache.Set("equity", "company_name", symbol, q.ShortName)
	return q.ShortName
}

// FundamentalsReport renders the current quote snapshot as prompt context.
func (e *EquityClient) FundamentalsReport(symbol string) (string, error) {
	q, err := quote.Get(symbol)
	if err != nil {
		return "", providerErr("yahoo", "fundamentals", fmt.Errorf("quote for %s: %w", symbol, err))
	}
	if q == nil {
		return "", providerErr("yahoo", "fundamentals", fmt.Errorf("no quote returned for %s", symbol))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Snapshot for %s (%s):\n", q.ShortName, symbol)
	fmt.Fprintf(&b, "* Exchange: %s\n", q.FullExchangeName)
	fmt.Fprintf(&b, "* Currency: %s\n", q.CurrencyID)
	fmt.Fprintf(&b, "* Market state: %s\n", q.MarketState)
	fmt.Fprintf(&b, "* Last price: %.2f\n", q.RegularMarketPrice)
	fmt.Fprintf(&b, "* Day range: %.2f - %.2f (open %.2f)\n",
		q.RegularMarketDayLow, q.RegularMarketDayHigh, q.RegularMarketOpen)
	fmt.Fprintf(&b, "* Volume: %d\n", q.RegularMarketVolume)
	fmt.Fprintf(&b, "* Quote type: %s, tradeable: %t\n", q.QuoteType, q.IsTradeable)
	return b.String(), nil
}

// HistoricalBars returns daily bars for the trailing window, oldest first.
func (e *EquityClient) HistoricalBars(symbol string, days int) ([]Bar, error) {
	params := map[string]interface{}{"symbol": symbol, "days": days}
	var cached []Bar
	if e.cache.Get("equity", "bars", params, &cached) {
		return cached, nil
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	bars := make([]Bar, 0, days)
	for iter.Next() {
		b := iter.Bar()
		bars = append(bars, Bar{
			Date:   time.Unix(int64(b.Timestamp), 0),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: int64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, providerErr("yahoo", "historical_bars", fmt.Errorf("chart for %s: %w", symbol, err))
	}
	if len(bars) == 0 {
		return nil, providerErr("yahoo", "historical_bars", fmt.Errorf("no bars returned for %s", symbol))
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	e.cache.Set("equity", "bars", params, bars)
	return bars, nil
}

// TechnicalReport computes the indicator set over a trailing window long
// enough to seed the longest lookback, and renders it for prompt injection.
func (e *EquityClient) TechnicalReport(symbol string, days int) (string, error) {
	// 3x the window so the 50-day SMA has data to warm up on.
	bars, err := e.HistoricalBars(symbol, days*3+60)
	if err != nil {
		return "", err
	}
	return IndicatorReport(symbol, bars, days), nil
}
