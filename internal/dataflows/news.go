package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/quantcrew/tradingcrew/internal/config"
)

const defaultHeadlinesBaseURL = "https://real-time-finance-data.p.rapidapi.com"

// NewsClient fetches symbol headlines and extracts article text from the
// pages they link to.
type NewsClient struct {
	headlines    *resty.Client
	articles     *resty.Client
	cache        *CacheManager
	apiKey       string
	articleLimit int
	retry        *RetryConfig
}

func NewNewsClient(cfg *config.Config) *NewsClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "news")
	cache := NewCacheManager(cacheDir, 2*time.Hour, cfg.CacheEnabled)

	headlines := resty.New()
	headlines.SetBaseURL(defaultHeadlinesBaseURL)
	headlines.SetTimeout(30 * time.Second)

	articles := resty.New()
	articles.SetTimeout(30 * time.Second)
	articles.SetHeader("User-Agent", "Mozilla/5.0 (compatible; tradingcrew/1.0)")

	limit := cfg.ArticleLimit
	if limit <= 0 {
		limit = 3
	}

	return &NewsClient{
		headlines:    headlines,
		articles:     articles,
		cache:        cache,
		apiKey:       cfg.HeadlinesAPIKey,
		articleLimit: limit,
		retry:        DefaultRetryConfig(),
	}
}

// SetBaseURL points the headlines client at an alternate endpoint, for tests.
func (n *NewsClient) SetBaseURL(url string) {
	n.headlines.SetBaseURL(url)
}

type headlinesResponse struct {
	Data []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Source      string `json:"source"`
		PublishedAt string `json:"published_at"`
	} `json:"data"`
}

// GetHeadlines returns headlines published since the cutoff, newest first.
func (n *NewsClient) GetHeadlines(ctx context.Context, symbol string, since time.Time) ([]Headline, error) {
	if n.apiKey == "" {
		return nil, providerErr("headlines", "get_headlines", fmt.Errorf("headlines API key not configured"))
	}

	cacheKey := map[string]interface{}{"symbol": symbol, "since": since.Format("2006-01-02 15:04")}
	var cached []Headline
	if n.cache.Get("headlines", "symbol_news", cacheKey, &cached) {
		return cached, nil
	}

	var result []Headline
	err := WithRetry(ctx, n.retry, func() error {
		resp, err := n.headlines.R().
			SetContext(ctx).
			SetHeader("X-RapidAPI-Key", n.apiKey).
			SetQueryParams(map[string]string{
				"symbol":   symbol,
				"language": "en",
			}).
			Get("/stock-news")
		if err != nil {
			return fmt.Errorf("fetch headlines for %s: %w", symbol, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
		}

		var parsed headlinesResponse
		if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
			return fmt.Errorf("parse headlines response: %w", err)
		}

		result = result[:0]
		for _, item := range parsed.Data {
			published, err := time.Parse(time.RFC3339, item.PublishedAt)
			if err != nil {
				continue
			}
			if published.Before(since) {
				continue
			}
			result = append(result, Headline{
				Title:       item.Title,
				URL:         item.URL,
				Source:      item.Source,
				PublishedAt: published,
			})
		}
		return nil
	})
	if err != nil {
		return nil, providerErr("headlines", "get_headlines", err)
	}

	n.cache.Set("headlines", "symbol_news", cacheKey, result)
	return result, nil
}

// HeadlinesText renders headlines for prompt injection.
func HeadlinesText(symbol string, headlines []Headline) string {
	if len(headlines) == 0 {
		return fmt.Sprintf("No recent headlines found for %s.", symbol)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Recent headlines for %s:\n", symbol)
	for _, h := range headlines {
		fmt.Fprintf(&b, "* [%s] %s (%s)\n", h.PublishedAt.Format("2006-01-02 15:04"), h.Title, h.Source)
	}
	return b.String()
}

// ArticlesText downloads the first few headline articles and extracts their
// body text. A page that fails to fetch or parse is skipped, not fatal.
func (n *NewsClient) ArticlesText(ctx context.Context, symbol string, headlines []Headline) string {
	var b strings.Builder
	count := 0
	for _, h := range headlines {
		if count >= n.articleLimit {
			break
		}
		if h.URL == "" {
			continue
		}
		text, err := n.extractArticle(ctx, h.URL)
		if err != nil || text == "" {
			continue
		}
		fmt.Fprintf(&b, "## %s\n%s\n\n", h.Title, text)
		count++
	}
	if count == 0 {
		return fmt.Sprintf("No article text could be retrieved for %s.", symbol)
	}
	return b.String()
}

func (n *NewsClient) extractArticle(ctx context.Context, url string) (string, error) {
	var cached string
	if n.cache.Get("articles", "extract", url, &cached) {
		return cached, nil
	}

	resp, err := n.articles.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch article: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("HTTP error %d when fetching article", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return "", fmt.Errorf("parse article HTML: %w", err)
	}

	var paragraphs []string
	doc.Find("article p, main p, p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if len(text) > 80 {
			paragraphs = append(paragraphs, text)
		}
		return len(paragraphs) < 12
	})

	text := strings.Join(paragraphs, "\n")
	n.cache.Set("articles", "extract", url, text)
	return text, nil
}
