package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	OutputDir    string `json:"output_dir"`
	InputsDir    string `json:"inputs_dir"`
	DataCacheDir string `json:"data_cache_dir"`

	OverviewSymbol   string   `json:"overview_symbol"`
	Symbols          []string `json:"symbols"`
	HistoricalDays   int      `json:"historical_days"`
	SocialFetchLimit int      `json:"social_fetch_limit"`
	ArticleLimit     int      `json:"article_limit"`

	// LLM endpoint, OpenAI-compatible (OpenRouter or similar).
	LLMBaseURL string `json:"llm_base_url"`
	LLMAPIKey  string `json:"llm_api_key"`
	LLMModel   string `json:"llm_model"`

	// Market/forecast data API keys
	TwelveDataAPIKey string `json:"twelve_data_api_key"`
	ForecastAPIKey   string `json:"forecast_api_key"`
	ForecastBaseURL  string `json:"forecast_base_url"`
	HeadlinesAPIKey  string `json:"headlines_api_key"`

	CacheEnabled bool   `json:"cache_enabled"`
	Debug        bool   `json:"debug"`
	LogLevel     string `json:"log_level"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		ProjectDir:   currentDir,
		OutputDir:    filepath.Join(currentDir, "output", "agents_outputs"),
		InputsDir:    filepath.Join(currentDir, "output", "agents_inputs"),
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),

		OverviewSymbol:   "SPY",
		Symbols:          []string{"AAPL", "MSFT", "NVDA"},
		HistoricalDays:   30,
		SocialFetchLimit: 30,
		ArticleLimit:     3,

		LLMBaseURL: "https://openrouter.ai/api/v1",
		LLMModel:   "meta-llama/llama-4-maverick",

		ForecastBaseURL: "https://api.nixtla.io",

		CacheEnabled: true,
		Debug:        false,
		LogLevel:     "info",
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("OUTPUT_DIR"); val != "" {
		c.OutputDir = val
	}
	if val := os.Getenv("INPUTS_DIR"); val != "" {
		c.InputsDir = val
	}
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}

	if val := os.Getenv("OVERVIEW_SYMBOL"); val != "" {
		c.OverviewSymbol = val
	}
	if val := os.Getenv("SYMBOLS"); val != "" {
		parts := strings.Split(val, ",")
		symbols := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.ToUpper(strings.TrimSpace(p)); s != "" {
				symbols = append(symbols, s)
			}
		}
		c.Symbols = symbols
	}
	if val := os.Getenv("HISTORICAL_DAYS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.HistoricalDays = v
		}
	}
	if val := os.Getenv("SOCIAL_FETCH_LIMIT"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.SocialFetchLimit = v
		}
	}
	if val := os.Getenv("ARTICLE_LIMIT"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.ArticleLimit = v
		}
	}

	if val := os.Getenv("OPENROUTER_BASE_URL"); val != "" {
		c.LLMBaseURL = val
	}
	if val := os.Getenv("OPENROUTER_API_KEY"); val != "" {
		c.LLMAPIKey = val
	}
	if val := os.Getenv("OPENROUTER_MODEL"); val != "" {
		c.LLMModel = val
	}

	if val := os.Getenv("TWELVE_API_KEY"); val != "" {
		c.TwelveDataAPIKey = val
	}
	if val := os.Getenv("TIMEGPT_API_KEY"); val != "" {
		c.ForecastAPIKey = val
	}
	if val := os.Getenv("FORECAST_BASE_URL"); val != "" {
		c.ForecastBaseURL = val
	}
	if val := os.Getenv("RAPID_API_KEY"); val != "" {
		c.HeadlinesAPIKey = val
	}

	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := os.Getenv("TRADINGCREW_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.OutputDir, c.InputsDir, c.DataCacheDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}

// Validate checks the settings a run cannot start without. Data-source keys
// are reported as warnings by `config validate` instead, since individual
// providers degrade on their own.
func (c *Config) Validate() error {
	if c.OverviewSymbol == "" {
		return fmt.Errorf("overview symbol is required")
	}
	if c.LLMAPIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	if c.HistoricalDays < 1 {
		return fmt.Errorf("historical days must be at least 1, got %d", c.HistoricalDays)
	}
	return nil
}
