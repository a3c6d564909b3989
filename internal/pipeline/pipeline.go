package pipeline

import (
	"context"

	"github.com/quantcrew/tradingcrew/internal/agents"
	"github.com/quantcrew/tradingcrew/internal/dataflows"
)

// MarketContext is the run-wide market backdrop, fetched exactly once per
// run and consumed only by the overview symbol's task.
type MarketContext struct {
	RunDate        string
	VolatilityText string
	GlobalText     string
}

// SymbolTask is everything a processor needs to analyze one symbol. The
// coordinator builds one per symbol; tasks never share mutable state.
type SymbolTask struct {
	Symbol     string
	RunDate    string
	OutputDir  string
	IsOverview bool

	// Context and ExtraTasks are set only on the overview symbol's task;
	// plain tasks carry the shared forecast table and nothing else.
	Context  *MarketContext
	Forecast dataflows.ForecastTable

	ExtraTasks []*agents.Task
}

// Status is the terminal state of one symbol's processing.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// ProcessingOutcome records how one symbol's processing ended.
type ProcessingOutcome struct {
	Symbol string
	Status Status
	Err    error
}

// RunSummary is the result of one full pipeline run. Outcomes appear in
// processing order: the overview symbol first, then the configured symbols.
type RunSummary struct {
	RunDate    string
	OutputRoot string
	Outcomes   []ProcessingOutcome
}

// Failed reports whether any symbol in the run failed.
func (s *RunSummary) Failed() bool {
	for _, o := range s.Outcomes {
		if o.Status == StatusFailed {
			return true
		}
	}
	return false
}

// MarketContextProvider fetches the run-wide market backdrop.
type MarketContextProvider interface {
	MarketContext(ctx context.Context) (*MarketContext, error)
}

// ForecastProvider fetches the return forecast table for a symbol universe.
type ForecastProvider interface {
	Forecast(ctx context.Context, symbols []string) (dataflows.ForecastTable, error)
}

// AnalystFactory builds the run-wide analyst unit attached to the overview
// symbol's task.
type AnalystFactory interface {
	BuildOverviewUnit() (*agents.Agent, *agents.Task, error)
}

// SymbolProcessor runs the full analysis for one symbol task.
type SymbolProcessor interface {
	Process(ctx context.Context, task *SymbolTask) error
}
