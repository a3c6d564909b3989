package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/quantcrew/tradingcrew/internal/agents"
	"github.com/quantcrew/tradingcrew/internal/config"
	"github.com/quantcrew/tradingcrew/internal/timeutil"
)

// Coordinator drives one full daily run: fetch the shared market context,
// build the overview analyst, fetch forecasts, process the overview symbol,
// then process each configured symbol. Setup failures and an overview
// failure abort the run; a failure on an ordinary symbol is recorded and the
// run moves on.
type Coordinator struct {
	cfg       *config.Config
	market    MarketContextProvider
	forecast  ForecastProvider
	factory   AnalystFactory
	processor SymbolProcessor
	log       zerolog.Logger
}

func NewCoordinator(cfg *config.Config, market MarketContextProvider, forecast ForecastProvider, factory AnalystFactory, processor SymbolProcessor, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		cfg:       cfg,
		market:    market,
		forecast:  forecast,
		factory:   factory,
		processor: processor,
		log:       log,
	}
}

// Execute runs the pipeline for today's run date. Setup and overview
// failures return a nil summary and the error; once the per-symbol loop
// starts, the summary is always returned and carries any symbol failures.
func (c *Coordinator) Execute(ctx context.Context) (*RunSummary, error) {
	runDate := timeutil.RunDate()
	outputRoot := filepath.Join(c.cfg.OutputDir, runDate)

	c.log.Info().Str("run_date", runDate).Str("overview", c.cfg.OverviewSymbol).
		Int("symbols", len(c.cfg.Symbols)).Msg("starting pipeline run")

	mc, err := c.market.MarketContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch market context: %w", err)
	}
	mc.RunDate = runDate

	_, overviewTask, err := c.factory.BuildOverviewUnit()
	if err != nil {
		return nil, fmt.Errorf("build analysts: %w", err)
	}

	universe := make([]string, 0, len(c.cfg.Symbols)+1)
	universe = append(universe, c.cfg.Symbols...)
	universe = append(universe, c.cfg.OverviewSymbol)
	table, err := c.forecast.Forecast(ctx, universe)
	if err != nil {
		return nil, fmt.Errorf("fetch forecasts: %w", err)
	}

	summary := &RunSummary{RunDate: runDate, OutputRoot: outputRoot}

	overview := &SymbolTask{
		Symbol:     c.cfg.OverviewSymbol,
		RunDate:    runDate,
		OutputDir:  filepath.Join(outputRoot, c.cfg.OverviewSymbol),
		IsOverview: true,
		Context:    mc,
		Forecast:   table,
		ExtraTasks: []*agents.Task{overviewTask},
	}
	if err := c.processor.Process(ctx, overview); err != nil {
		c.log.Error().Err(err).Str("symbol", overview.Symbol).Msg("overview symbol processing failed")
		return nil, fmt.Errorf("process overview symbol %s: %w", overview.Symbol, err)
	}
	summary.Outcomes = append(summary.Outcomes, ProcessingOutcome{Symbol: overview.Symbol, Status: StatusSuccess})
	c.log.Info().Str("symbol", overview.Symbol).Msg("overview symbol processed")

	for _, symbol := range c.cfg.Symbols {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		// Plain tasks get the forecast table only; the market context
		// belongs to the overview task alone.
		task := &SymbolTask{
			Symbol:    symbol,
			RunDate:   runDate,
			OutputDir: filepath.Join(outputRoot, symbol),
			Forecast:  table,
		}
		if err := c.processor.Process(ctx, task); err != nil {
			c.log.Error().Err(err).Str("symbol", symbol).Msg("symbol processing failed")
			summary.Outcomes = append(summary.Outcomes, ProcessingOutcome{
				Symbol: symbol,
				Status: StatusFailed,
				Err:    err,
			})
			continue
		}
		c.log.Info().Str("symbol", symbol).Msg("symbol processed")
		summary.Outcomes = append(summary.Outcomes, ProcessingOutcome{Symbol: symbol, Status: StatusSuccess})
	}

	c.log.Info().Str("run_date", runDate).Bool("failed", summary.Failed()).Msg("pipeline run finished")
	return summary, nil
}
