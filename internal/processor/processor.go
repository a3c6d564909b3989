package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantcrew/tradingcrew/internal/agents"
	"github.com/quantcrew/tradingcrew/internal/config"
	"github.com/quantcrew/tradingcrew/internal/dataflows"
	"github.com/quantcrew/tradingcrew/internal/pipeline"
	"github.com/quantcrew/tradingcrew/internal/timeutil"
)

// ProcessingError wraps a failure on one symbol and names the stage that
// produced it.
type ProcessingError struct {
	Symbol string
	Stage  string
	Err    error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("process %s: %s: %v", e.Symbol, e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// NewsSource provides headlines and extracted article text for a symbol.
// *dataflows.NewsClient satisfies it.
type NewsSource interface {
	GetHeadlines(ctx context.Context, symbol string, since time.Time) ([]dataflows.Headline, error)
	ArticlesText(ctx context.Context, symbol string, headlines []dataflows.Headline) string
}

// SocialSource provides formatted social chatter for a symbol.
// *dataflows.StocktwitsClient satisfies it.
type SocialSource interface {
	Messages(ctx context.Context, symbol string, limit int, since time.Time) (string, error)
}

// EquitySource provides quote fundamentals and technical reports.
// *dataflows.EquityClient satisfies it.
type EquitySource interface {
	CompanyName(symbol string) string
	FundamentalsReport(symbol string) (string, error)
	TechnicalReport(symbol string, days int) (string, error)
}

// Processor runs the full analyst workflow for one symbol: gather raw
// inputs, persist them as input snapshots, run each summarizing analyst,
// then the day-trader advisor.
type Processor struct {
	cfg    *config.Config
	news   NewsSource
	social SocialSource
	equity EquitySource
	model  agents.ChatModel
	log    zerolog.Logger
}

func New(cfg *config.Config, news NewsSource, social SocialSource, equity EquitySource, model agents.ChatModel, log zerolog.Logger) *Processor {
	return &Processor{
		cfg:    cfg,
		news:   news,
		social: social,
		equity: equity,
		model:  model,
		log:    log,
	}
}

// Process analyzes one symbol. Raw data lands under the run's inputs
// directory, analyst reports under the task's output directory.
func (p *Processor) Process(ctx context.Context, task *pipeline.SymbolTask) error {
	symbol := task.Symbol
	inputsDir := filepath.Join(p.cfg.InputsDir, task.RunDate)
	since := timeutil.Yesterday18Eastern()

	p.log.Debug().Str("symbol", symbol).Bool("overview", task.IsOverview).Msg("gathering inputs")

	headlines, err := p.news.GetHeadlines(ctx, symbol, since)
	if err != nil {
		return &ProcessingError{Symbol: symbol, Stage: "news", Err: err}
	}
	headlinesText := dataflows.HeadlinesText(symbol, headlines)
	articlesText := p.news.ArticlesText(ctx, symbol, headlines)

	socialText, err := p.social.Messages(ctx, symbol, p.cfg.SocialFetchLimit, since)
	if err != nil {
		return &ProcessingError{Symbol: symbol, Stage: "social", Err: err}
	}

	technicalText, err := p.equity.TechnicalReport(symbol, p.cfg.HistoricalDays)
	if err != nil {
		return &ProcessingError{Symbol: symbol, Stage: "technical", Err: err}
	}

	fundamentalsText, err := p.equity.FundamentalsReport(symbol)
	if err != nil {
		return &ProcessingError{Symbol: symbol, Stage: "fundamentals", Err: err}
	}

	forecastText := dataflows.FormatForecast(task.Forecast, symbol, p.equity.CompanyName(symbol))

	snapshots := map[string]string{
		symbol + "_headlines.txt":    headlinesText,
		symbol + "_articles.txt":     articlesText,
		symbol + "_social.txt":       socialText,
		symbol + "_technical.txt":    technicalText,
		symbol + "_fundamentals.txt": fundamentalsText,
		symbol + "_forecast.txt":     forecastText,
	}
	if err := writeSnapshots(inputsDir, snapshots); err != nil {
		return &ProcessingError{Symbol: symbol, Stage: "inputs", Err: err}
	}

	inputs := map[string]string{
		"today_str":           task.RunDate,
		"historical_days":     strconv.Itoa(p.cfg.HistoricalDays),
		"headlines":           headlinesText,
		"articles":            articlesText,
		"social_messages":     socialText,
		"technical_report":    technicalText,
		"fundamentals_report": fundamentalsText,
		"forecast_report":     forecastText,
	}
	if task.Context != nil {
		inputs["vix_data"] = task.Context.VolatilityText
		inputs["global_market_data"] = task.Context.GlobalText
	}

	// Run-wide tasks first so the overview report exists before any
	// advisor reads it.
	for _, extra := range task.ExtraTasks {
		if _, err := extra.Execute(ctx, task.OutputDir, inputs); err != nil {
			return &ProcessingError{Symbol: symbol, Stage: extra.Name, Err: err}
		}
	}

	units := []struct {
		key  string
		task *agents.Task
	}{
		{"news_summary", unitTask(agents.NewsUnit, p.model, symbol)},
		{"sentiment_summary", unitTask(agents.SentimentUnit, p.model, symbol)},
		{"technical_summary", unitTask(agents.TechnicalUnit, p.model, symbol)},
		{"fundamental_summary", unitTask(agents.FundamentalUnit, p.model, symbol)},
		{"forecast_summary", unitTask(agents.ForecastUnit, p.model, symbol)},
	}
	for _, u := range units {
		report, err := u.task.Execute(ctx, task.OutputDir, inputs)
		if err != nil {
			return &ProcessingError{Symbol: symbol, Stage: u.task.Name, Err: err}
		}
		inputs[u.key] = report
	}

	inputs["overview_summary"] = p.readOverviewReport(task.RunDate)

	_, advisorTask := agents.AdvisorUnit(p.model, symbol)
	if _, err := advisorTask.Execute(ctx, task.OutputDir, inputs); err != nil {
		return &ProcessingError{Symbol: symbol, Stage: advisorTask.Name, Err: err}
	}

	p.log.Info().Str("symbol", symbol).Str("dir", task.OutputDir).Msg("symbol reports written")
	return nil
}

// readOverviewReport loads the market overview written earlier in the run.
// The overview symbol runs first, so the file exists by the time any advisor
// needs it; a missing file degrades to a placeholder rather than failing the
// symbol.
func (p *Processor) readOverviewReport(runDate string) string {
	path := filepath.Join(p.cfg.OutputDir, runDate, p.cfg.OverviewSymbol, agents.OverviewReportFile)
	data, err := os.ReadFile(path)
	if err != nil {
		p.log.Warn().Str("path", path).Msg("market overview report unavailable")
		return "(market overview unavailable)"
	}
	return strings.TrimSpace(string(data))
}

func unitTask(unit func(agents.ChatModel, string) (*agents.Agent, *agents.Task), m agents.ChatModel, symbol string) *agents.Task {
	_, task := unit(m, symbol)
	return task
}

func writeSnapshots(dir string, files map[string]string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
