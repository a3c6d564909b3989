package agents

import "fmt"

// OverviewReportFile is the artifact the market-overview task writes into
// the overview symbol's output directory.
const OverviewReportFile = "market_overview_summary_report.md"

// BuildError wraps a failure constructing an analyst unit.
type BuildError struct {
	Unit string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s: %v", e.Unit, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// OverviewAnalystFactory builds the analyst unit that turns the run-wide
// market context into the overview report. Exactly one unit is built per
// run and it is attached only to the overview symbol's task.
type OverviewAnalystFactory struct {
	model  ChatModel
	symbol string
}

func NewOverviewAnalystFactory(m ChatModel, overviewSymbol string) *OverviewAnalystFactory {
	return &OverviewAnalystFactory{model: m, symbol: overviewSymbol}
}

// BuildOverviewUnit returns the market-overview agent and its task.
func (f *OverviewAnalystFactory) BuildOverviewUnit() (*Agent, *Task, error) {
	if f.model == nil {
		return nil, nil, &BuildError{Unit: "overview analyst", Err: fmt.Errorf("chat model is not configured")}
	}
	if f.symbol == "" {
		return nil, nil, &BuildError{Unit: "overview analyst", Err: fmt.Errorf("overview symbol is empty")}
	}

	agent := NewAgent(
		"market_overview_analyst",
		"a senior macro market analyst",
		"Assess overall market conditions and risk appetite for the coming trading day.",
		"You synthesize volatility regimes and cross-asset moves into a concise view that equity analysts lean on before the open.",
		f.model,
	)

	task := &Task{
		Name: "market_overview",
		Description: "Today is {today_str}. Using the volatility index history:\n{vix_data}\n\n" +
			"and the global market data:\n{global_market_data}\n\n" +
			"write a market overview for " + f.symbol + " covering the volatility regime, " +
			"notable cross-asset moves over the last {historical_days} days, and what they imply " +
			"for US equities in the next session.",
		ExpectedOutput: "A markdown report with sections for Volatility, Global Markets, and Implications.",
		OutputFile:     OverviewReportFile,
		Agent:          agent,
	}

	return agent, task, nil
}
