package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/quantcrew/tradingcrew/internal/config"
)

const defaultStocktwitsBaseURL = "https://api.stocktwits.com/api/2"

// StocktwitsClient fetches recent symbol messages for sentiment context.
type StocktwitsClient struct {
	client *resty.Client
	cache  *CacheManager
	retry  *RetryConfig
}

func NewStocktwitsClient(cfg *config.Config) *StocktwitsClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "stocktwits")
	cache := NewCacheManager(cacheDir, 2*time.Hour, cfg.CacheEnabled)

	client := resty.New()
	client.SetBaseURL(defaultStocktwitsBaseURL)
	client.SetTimeout(30 * time.Second)

	return &StocktwitsClient{client: client, cache: cache, retry: DefaultRetryConfig()}
}

// SetBaseURL points the client at an alternate endpoint, for tests.
func (s *StocktwitsClient) SetBaseURL(url string) {
	s.client.SetBaseURL(url)
}

type stocktwitsResponse struct {
	Messages []struct {
		Body      string `json:"body"`
		CreatedAt string `json:"created_at"`
		User      struct {
			Username string `json:"username"`
		} `json:"user"`
		Entities struct {
			Sentiment *struct {
				Basic string `json:"basic"`
			} `json:"sentiment"`
		} `json:"entities"`
	} `json:"messages"`
}

// Messages returns up to limit messages posted since the cutoff, rendered
// for prompt injection.
func (s *StocktwitsClient) Messages(ctx context.Context, symbol string, limit int, since time.Time) (string, error) {
	cacheKey := map[string]interface{}{"symbol": symbol, "limit": limit, "since": since.Format("2006-01-02 15:04")}
	var cached string
	if s.cache.Get("stocktwits", "messages", cacheKey, &cached) {
		return cached, nil
	}

	var result string
	err := WithRetry(ctx, s.retry, func() error {
		resp, err := s.client.R().
			SetContext(ctx).
			Get(fmt.Sprintf("/streams/symbol/%s.json", symbol))
		if err != nil {
			return fmt.Errorf("fetch stocktwits stream for %s: %w", symbol, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
		}

		var parsed stocktwitsResponse
		if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
			return fmt.Errorf("parse stocktwits response: %w", err)
		}

		var b strings.Builder
		count := 0
		for _, m := range parsed.Messages {
			if count >= limit {
				break
			}
			createdAt, err := time.Parse("2006-01-02T15:04:05Z", m.CreatedAt)
			if err != nil || createdAt.Before(since) {
				continue
			}
			sentiment := "none"
			if m.Entities.Sentiment != nil {
				sentiment = m.Entities.Sentiment.Basic
			}
			fmt.Fprintf(&b, "* [%s] @%s (sentiment: %s): %s\n",
				createdAt.Format("2006-01-02 15:04"), m.User.Username, sentiment,
				strings.ReplaceAll(m.Body, "\n", " "))
			count++
		}
		if count == 0 {
			result = fmt.Sprintf("No Stocktwits messages for %s since %s.", symbol, since.Format("2006-01-02 15:04"))
			return nil
		}
		result = fmt.Sprintf("Stocktwits messages for %s (%d messages):\n%s", symbol, count, b.String())
		return nil
	})
	if err != nil {
		return "", providerErr("stocktwits", "messages", err)
	}

	s.cache.Set("stocktwits", "messages", cacheKey, result)
	return result, nil
}
