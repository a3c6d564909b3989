package agents

// Report filenames written into each symbol's dated output directory.
const (
	NewsReportFile        = "news_summary_report.md"
	SentimentReportFile   = "sentiment_summary_report.md"
	TechnicalReportFile   = "technical_indicator_summary_report.md"
	FundamentalReportFile = "fundamental_analysis_summary_report.md"
	ForecastReportFile    = "forecast_summary_report.md"
	AdvisorReportFile     = "day_trader_advisor_report.md"
)

// NewsUnit builds the analyst that condenses headlines and article bodies.
func NewsUnit(m ChatModel, symbol string) (*Agent, *Task) {
	agent := NewAgent(
		"news_analyst",
		"an equity news analyst",
		"Distill the news flow for a single ticker into what actually matters for the next session.",
		"You read everything published about "+symbol+" and separate signal from recycled noise.",
		m,
	)
	task := &Task{
		Name: "news_summary",
		Description: "Today is {today_str}. Here are the recent headlines for " + symbol + ":\n{headlines}\n\n" +
			"And extracted article text:\n{articles}\n\n" +
			"Summarize the news flow, flagging anything likely to move the stock tomorrow.",
		ExpectedOutput: "A markdown news summary with a short list of catalysts.",
		OutputFile:     NewsReportFile,
		Agent:          agent,
	}
	return agent, task
}

// SentimentUnit builds the analyst that reads social chatter.
func SentimentUnit(m ChatModel, symbol string) (*Agent, *Task) {
	agent := NewAgent(
		"sentiment_analyst",
		"a retail sentiment analyst",
		"Gauge the mood of retail traders around a ticker.",
		"You track message boards for "+symbol+" and know the difference between conviction and noise.",
		m,
	)
	task := &Task{
		Name: "sentiment_summary",
		Description: "Today is {today_str}. Here are recent Stocktwits messages for " + symbol + ":\n{social_messages}\n\n" +
			"Summarize the overall sentiment, the bull and bear cases traders are making, and any notable shift in tone.",
		ExpectedOutput: "A markdown sentiment summary with an overall bullish/bearish/neutral call.",
		OutputFile:     SentimentReportFile,
		Agent:          agent,
	}
	return agent, task
}

// TechnicalUnit builds the analyst that interprets price action and indicators.
func TechnicalUnit(m ChatModel, symbol string) (*Agent, *Task) {
	agent := NewAgent(
		"technical_analyst",
		"a technical analyst",
		"Read price action and momentum indicators for short-horizon trades.",
		"You interpret moving averages and RSI for "+symbol+" without overfitting to every wiggle.",
		m,
	)
	task := &Task{
		Name: "technical_summary",
		Description: "Today is {today_str}. Here is the technical indicator report for " + symbol +
			" over the last {historical_days} days:\n{technical_report}\n\n" +
			"Summarize trend, momentum, and key levels relevant to the next few sessions.",
		ExpectedOutput: "A markdown technical summary with support/resistance levels.",
		OutputFile:     TechnicalReportFile,
		Agent:          agent,
	}
	return agent, task
}

// FundamentalUnit builds the analyst that reads quote fundamentals.
func FundamentalUnit(m ChatModel, symbol string) (*Agent, *Task) {
	agent := NewAgent(
		"fundamental_analyst",
		"a fundamental analyst",
		"Put current quote data in the context of the company's standing.",
		"You frame where "+symbol+" trades relative to its recent range and what the tape says about positioning.",
		m,
	)
	task := &Task{
		Name: "fundamental_summary",
		Description: "Today is {today_str}. Here is the current quote and fundamentals report for " + symbol +
			":\n{fundamentals_report}\n\n" +
			"Summarize the company's current market standing and anything unusual in the quote data.",
		ExpectedOutput: "A markdown fundamental summary.",
		OutputFile:     FundamentalReportFile,
		Agent:          agent,
	}
	return agent, task
}

// ForecastUnit builds the analyst that reads the model forecast for the symbol.
func ForecastUnit(m ChatModel, symbol string) (*Agent, *Task) {
	agent := NewAgent(
		"forecast_analyst",
		"a quantitative forecast analyst",
		"Interpret statistical return forecasts in plain trading language.",
		"You translate model output for "+symbol+" into expectations a trader can act on, including its limits.",
		m,
	)
	task := &Task{
		Name: "forecast_summary",
		Description: "Today is {today_str}. Here is the time-series return forecast for " + symbol +
			":\n{forecast_report}\n\n" +
			"Explain what the forecast implies for the next trading day and how much weight to give it.",
		ExpectedOutput: "A markdown forecast summary.",
		OutputFile:     ForecastReportFile,
		Agent:          agent,
	}
	return agent, task
}

// AdvisorUnit builds the day-trader advisor that reads all prior summaries
// plus the market overview and produces the final recommendation.
func AdvisorUnit(m ChatModel, symbol string) (*Agent, *Task) {
	agent := NewAgent(
		"day_trader_advisor",
		"a day trading advisor",
		"Combine every analyst view into a single actionable plan for the next session.",
		"You weigh news, sentiment, technicals, fundamentals, forecasts, and the macro backdrop for "+symbol+" and commit to a call.",
		m,
	)
	task := &Task{
		Name: "day_trader_advisor",
		Description: "Today is {today_str}. You advise on " + symbol + ". Here are your analysts' reports.\n\n" +
			"Market overview:\n{overview_summary}\n\n" +
			"News:\n{news_summary}\n\n" +
			"Sentiment:\n{sentiment_summary}\n\n" +
			"Technicals:\n{technical_summary}\n\n" +
			"Fundamentals:\n{fundamental_summary}\n\n" +
			"Forecast:\n{forecast_summary}\n\n" +
			"Produce a trading plan for the next session: direction, entry, stop, target, and the single biggest risk to the call.",
		ExpectedOutput: "A markdown trading plan with an explicit long/short/stand-aside call.",
		OutputFile:     AdvisorReportFile,
		Agent:          agent,
	}
	return agent, task
}
