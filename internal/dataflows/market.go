package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/quantcrew/tradingcrew/internal/config"
)

const (
	defaultYahooBaseURL      = "https://query1.finance.yahoo.com"
	defaultTwelveDataBaseURL = "https://api.twelvedata.com"

	volatilityChartSymbol = "^VIX"
)

// globalAsset names one entry of the cross-market basket included in the
// global snapshot. ETF proxies stand in for indices TwelveData does not
// serve directly.
type globalAsset struct {
	Name   string
	Ticker string
}

var globalAssets = []globalAsset{
	{"EUR/USD", "EUR/USD"},
	{"Bitcoin", "BTC/USD"},
	{"Gold", "GLD"},
	{"China", "MCHI"},
	{"India", "INDA"},
	{"US 2-Year Yield", "US2Y"},
	{"US 10-Year Yield", "IEF"},
	{"S&P 500", "SPY"},
}

// HistoricalMarketClient supplies the market-wide signals fetched once per
// run: the volatility index history and the global market snapshot.
type HistoricalMarketClient struct {
	yahoo      *resty.Client
	twelveData *resty.Client
	cache      *CacheManager
	apiKey     string
	retry      *RetryConfig
}

func NewHistoricalMarketClient(cfg *config.Config) *HistoricalMarketClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "market_overview")
	cache := NewCacheManager(cacheDir, 6*time.Hour, cfg.CacheEnabled)

	yahoo := resty.New()
	yahoo.SetBaseURL(defaultYahooBaseURL)
	yahoo.SetTimeout(30 * time.Second)
	yahoo.SetHeader("User-Agent", "Mozilla/5.0 (compatible; tradingcrew/1.0)")

	twelveData := resty.New()
	twelveData.SetBaseURL(defaultTwelveDataBaseURL)
	twelveData.SetTimeout(30 * time.Second)

	return &HistoricalMarketClient{
		yahoo:      yahoo,
		twelveData: twelveData,
		cache:      cache,
		apiKey:     cfg.TwelveDataAPIKey,
		retry:      DefaultRetryConfig(),
	}
}

// SetBaseURLs points the client at alternate endpoints, for tests.
func (c *HistoricalMarketClient) SetBaseURLs(yahooURL, twelveDataURL string) {
	c.yahoo.SetBaseURL(yahooURL)
	c.twelveData.SetBaseURL(twelveDataURL)
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetVolatility returns the volatility index series for the trailing window,
// most recent day first.
func (c *HistoricalMarketClient) GetVolatility(ctx context.Context, days int) ([]VolatilityPoint, error) {
	var cached []VolatilityPoint
	if c.cache.Get("yahoo", "volatility", days, &cached) {
		return cached, nil
	}

	end := time.Now()
	// Double the window so weekends and holidays still leave enough rows.
	start := end.AddDate(0, 0, -days*2)

	var result []VolatilityPoint
	err := WithRetry(ctx, c.retry, func() error {
		resp, err := c.yahoo.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"period1":  strconv.FormatInt(start.Unix(), 10),
				"period2":  strconv.FormatInt(end.Unix(), 10),
				"interval": "1d",
				"events":   "history",
			}).
			Get("/v8/finance/chart/" + volatilityChartSymbol)
		if err != nil {
			return fmt.Errorf("fetch volatility chart: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
		}

		var chart yahooChartResponse
		if err := json.Unmarshal(resp.Body(), &chart); err != nil {
			return fmt.Errorf("parse volatility chart: %w", err)
		}
		if chart.Chart.Error != nil {
			return fmt.Errorf("API error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
		}
		if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
			return fmt.Errorf("no volatility data returned")
		}

		r := chart.Chart.Result[0]
		closes := r.Indicators.Quote[0].Close

		points := make([]VolatilityPoint, 0, len(r.Timestamp))
		for i, ts := range r.Timestamp {
			if i >= len(closes) || closes[i] == nil {
				continue
			}
			points = append(points, VolatilityPoint{
				Date:  time.Unix(ts, 0),
				Value: decimal.NewFromFloat(*closes[i]),
			})
		}
		if len(points) == 0 {
			return fmt.Errorf("volatility series is empty")
		}

		sort.Slice(points, func(i, j int) bool { return points[i].Date.After(points[j].Date) })
		if len(points) > days {
			points = points[:days]
		}
		fillPctChange(points)
		result = points
		return nil
	})
	if err != nil {
		return nil, providerErr("yahoo", "volatility", err)
	}

	c.cache.Set("yahoo", "volatility", days, result)
	return result, nil
}

// GetGlobalSnapshot fetches the trailing series for every asset in the
// global basket and renders them as one LLM-readable payload. A single
// failing asset degrades to an inline error line instead of failing the
// snapshot.
func (c *HistoricalMarketClient) GetGlobalSnapshot(ctx context.Context, days int) (string, error) {
	if c.apiKey == "" {
		return "", providerErr("twelvedata", "global_snapshot", fmt.Errorf("TwelveData API key not configured"))
	}

	var cached string
	if c.cache.Get("twelvedata", "global_snapshot", days, &cached) {
		return cached, nil
	}

	sections := make([]string, 0, len(globalAssets))
	failures := 0
	for _, asset := range globalAssets {
		points, err := c.fetchAssetSeries(ctx, asset.Ticker, days)
		if err != nil {
			failures++
			sections = append(sections, fmt.Sprintf("%s: Error retrieving data - %v", asset.Name, err))
			continue
		}
		sections = append(sections, formatAssetSeries(asset.Name, points, days))
	}
	if failures == len(globalAssets) {
		return "", providerErr("twelvedata", "global_snapshot", fmt.Errorf("all %d assets failed", failures))
	}

	snapshot := strings.Join(sections, "\n\n")
	c.cache.Set("twelvedata", "global_snapshot", days, snapshot)
	return snapshot, nil
}

type twelveDataSeriesResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Values  []struct {
		Datetime string `json:"datetime"`
		Close    string `json:"close"`
	} `json:"values"`
}

func (c *HistoricalMarketClient) fetchAssetSeries(ctx context.Context, ticker string, days int) ([]VolatilityPoint, error) {
	var points []VolatilityPoint
	err := WithRetry(ctx, c.retry, func() error {
		resp, err := c.twelveData.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"symbol":     ticker,
				"interval":   "1day",
				"outputsize": strconv.Itoa(days + 1),
				"apikey":     c.apiKey,
			}).
			Get("/time_series")
		if err != nil {
			return fmt.Errorf("fetch %s: %w", ticker, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
		}

		var series twelveDataSeriesResponse
		if err := json.Unmarshal(resp.Body(), &series); err != nil {
			return fmt.Errorf("parse %s series: %w", ticker, err)
		}
		if series.Status == "error" {
			return fmt.Errorf("API error for %s: %s", ticker, series.Message)
		}
		if len(series.Values) == 0 {
			return fmt.Errorf("no data returned for %s", ticker)
		}

		points = points[:0]
		for _, v := range series.Values {
			date, err := time.Parse("2006-01-02", v.Datetime)
			if err != nil {
				continue
			}
			value, err := decimal.NewFromString(v.Close)
			if err != nil {
				continue
			}
			points = append(points, VolatilityPoint{Date: date, Value: value})
		}
		if len(points) == 0 {
			return fmt.Errorf("series for %s had no parseable rows", ticker)
		}

		sort.Slice(points, func(i, j int) bool { return points[i].Date.After(points[j].Date) })
		if len(points) > days {
			points = points[:days]
		}
		fillPctChange(points)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

// fillPctChange computes the day-over-day change for a series sorted most
// recent first.
func fillPctChange(points []VolatilityPoint) {
	hundred := decimal.NewFromInt(100)
	for i := 0; i < len(points)-1; i++ {
		prev := points[i+1].Value
		if prev.IsZero() {
			continue
		}
		points[i].PctChange = points[i].Value.Sub(prev).Div(prev).Mul(hundred)
	}
}

// FormatVolatility renders a volatility series (most recent first) in the
// oldest-to-newest order analysts read, flagging the latest value.
func FormatVolatility(points []VolatilityPoint, days int) string {
	if len(points) == 0 {
		return "No volatility data available."
	}

	var b strings.Builder
	if len(points) < days {
		fmt.Fprintf(&b, "WARNING: Only %d days of volatility data available instead of requested %d days.\n\n", len(points), days)
	}
	fmt.Fprintf(&b, "VIX (CBOE Volatility Index) values for the last %d days:\n", len(points))

	latest := points[0].Date.Format("2006-01-02")
	for i := len(points) - 1; i >= 0; i-- {
		p := points[i]
		dateStr := p.Date.Format("2006-01-02")
		if dateStr == latest {
			fmt.Fprintf(&b, "* %s: %s (LATEST VIX VALUE, Daily change from previous day: %s%%)\n",
				dateStr, p.Value.StringFixed(2), p.PctChange.StringFixed(2))
		} else {
			fmt.Fprintf(&b, "* %s: %s\n", dateStr, p.Value.StringFixed(2))
		}
	}
	return b.String()
}

func formatAssetSeries(name string, points []VolatilityPoint, days int) string {
	var b strings.Builder
	if len(points) < days {
		fmt.Fprintf(&b, "WARNING: Only %d days of %s data available instead of requested %d days.\n\n", len(points), name, days)
	}
	fmt.Fprintf(&b, "%s values for the last %d days:\n", name, len(points))

	latest := points[0].Date.Format("2006-01-02")
	for i := len(points) - 1; i >= 0; i-- {
		p := points[i]
		dateStr := p.Date.Format("2006-01-02")
		if dateStr == latest {
			fmt.Fprintf(&b, "* %s: %s (LATEST VALUE, Daily change from previous day: %s%%)\n",
				dateStr, p.Value.StringFixed(4), p.PctChange.StringFixed(2))
		} else {
			fmt.Fprintf(&b, "* %s: %s\n", dateStr, p.Value.StringFixed(4))
		}
	}
	return b.String()
}
