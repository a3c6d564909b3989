package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/quantcrew/tradingcrew/internal/config"
	"github.com/quantcrew/tradingcrew/internal/timeutil"
)

const forecastCacheFile = "timeseries_forecasts.json"

// ForecastClient fetches next-day return forecasts from a time-series
// forecasting API. The upstream is billed per call, so results are cached
// on disk and reused for the rest of the run date.
type ForecastClient struct {
	client    *resty.Client
	apiKey    string
	inputsDir string
	horizon   int
	retry     *RetryConfig
}

func NewForecastClient(cfg *config.Config) *ForecastClient {
	client := resty.New()
	client.SetBaseURL(cfg.ForecastBaseURL)
	client.SetTimeout(60 * time.Second)

	return &ForecastClient{
		client:    client,
		apiKey:    cfg.ForecastAPIKey,
		inputsDir: cfg.InputsDir,
		horizon:   1,
		retry:     DefaultRetryConfig(),
	}
}

// SetBaseURL points the client at an alternate endpoint, for tests.
func (c *ForecastClient) SetBaseURL(url string) {
	c.client.SetBaseURL(url)
}

type forecastRequest struct {
	Symbols []string `json:"symbols"`
	Horizon int      `json:"horizon"`
	Freq    string   `json:"freq"`
}

type forecastResponse struct {
	Forecasts []struct {
		Symbol   string  `json:"symbol"`
		Date     string  `json:"date"`
		Forecast float64 `json:"forecast"`
	} `json:"forecasts"`
}

// GetForecast returns the forecast table for the given universe, loading
// today's cached table when one exists.
func (c *ForecastClient) GetForecast(ctx context.Context, symbols []string) (ForecastTable, error) {
	if len(symbols) == 0 {
		return nil, providerErr("forecast", "get_forecast", fmt.Errorf("symbol universe is empty"))
	}

	cachePath := filepath.Join(c.inputsDir, timeutil.RunDate(), forecastCacheFile)
	if table, ok := c.loadCached(cachePath); ok {
		return table, nil
	}

	if c.apiKey == "" {
		return nil, providerErr("forecast", "get_forecast", fmt.Errorf("forecast API key not configured"))
	}

	var table ForecastTable
	err := WithRetry(ctx, c.retry, func() error {
		resp, err := c.client.R().
			SetContext(ctx).
			SetHeader("Authorization", "Bearer "+c.apiKey).
			SetBody(forecastRequest{Symbols: symbols, Horizon: c.horizon, Freq: "B"}).
			Post("/forecast")
		if err != nil {
			return fmt.Errorf("fetch forecasts: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
		}

		var parsed forecastResponse
		if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
			return fmt.Errorf("parse forecast response: %w", err)
		}
		if len(parsed.Forecasts) == 0 {
			return fmt.Errorf("empty forecast response")
		}

		table = make(ForecastTable, len(parsed.Forecasts))
		hundred := decimal.NewFromInt(100)
		for _, f := range parsed.Forecasts {
			date, err := time.Parse("2006-01-02", f.Date)
			if err != nil {
				return fmt.Errorf("bad forecast date %q: %w", f.Date, err)
			}
			// The API reports raw daily returns; the reports quote percent.
			table[f.Symbol] = ForecastRow{
				Symbol: f.Symbol,
				Date:   date,
				Return: decimal.NewFromFloat(f.Forecast).Mul(hundred),
			}
		}
		return nil
	})
	if err != nil {
		return nil, providerErr("forecast", "get_forecast", err)
	}

	c.saveCache(cachePath, table)
	return table, nil
}

// LoadCached returns today's cached forecast table, or an empty table when
// none exists. Used by single-symbol runs that must not trigger an API call.
func (c *ForecastClient) LoadCached() ForecastTable {
	cachePath := filepath.Join(c.inputsDir, timeutil.RunDate(), forecastCacheFile)
	if table, ok := c.loadCached(cachePath); ok {
		return table
	}
	return ForecastTable{}
}

func (c *ForecastClient) loadCached(path string) (ForecastTable, bool) {
	info, err := os.Stat(path)
	if err != nil || !timeutil.SameRunDate(info.ModTime()) {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var table ForecastTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, false
	}
	return table, true
}

func (c *ForecastClient) saveCache(path string, table ForecastTable) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return
	}
	os.WriteFile(path, data, 0o644)
}

// FormatForecast renders one symbol's forecast for prompt injection.
func FormatForecast(table ForecastTable, symbol, companyName string) string {
	row, ok := table[symbol]
	if !ok {
		return fmt.Sprintf("No forecast available for %s.", companyName)
	}
	return fmt.Sprintf("Forecast date for %s: %s\nForecast daily return: %s %%",
		companyName, row.Date.Format("2006-01-02"), row.Return.StringFixed(4))
}
