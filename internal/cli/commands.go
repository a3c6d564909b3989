package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantcrew/tradingcrew/internal/agents"
	"github.com/quantcrew/tradingcrew/internal/config"
	"github.com/quantcrew/tradingcrew/internal/dataflows"
	"github.com/quantcrew/tradingcrew/internal/pipeline"
	"github.com/quantcrew/tradingcrew/internal/processor"
	"github.com/quantcrew/tradingcrew/internal/timeutil"
	"github.com/quantcrew/tradingcrew/pkg/logger"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "tradingcrew",
		Short: "TradingCrew - multi-agent daily market analysis",
		Long: `TradingCrew runs a crew of LLM analysts over your symbol list every trading
day: market overview, news, sentiment, technicals, fundamentals and forecasts,
ending in a day-trader advisor report per symbol.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newRunCmd(cfg))
	rootCmd.AddCommand(newSingleCmd(cfg))
	rootCmd.AddCommand(newResultsCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	return rootCmd
}

func newLogger(cmd *cobra.Command, cfg *config.Config) zerolog.Logger {
	level := cfg.LogLevel
	if debug, _ := cmd.Flags().GetBool("debug"); debug || cfg.Debug {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Format: "console", Output: os.Stderr})
}

// newRunCmd creates the full daily pipeline command.
func newRunCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full daily analysis for all configured symbols",
		Long: `Run the daily pipeline: fetch the market context and forecasts, process the
overview symbol, then every configured symbol. A failing symbol is recorded
and the run continues with the rest.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if symbols, _ := cmd.Flags().GetStringSlice("symbols"); len(symbols) > 0 {
				for i, s := range symbols {
					symbols[i] = strings.ToUpper(strings.TrimSpace(s))
				}
				cfg.Symbols = symbols
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := newLogger(cmd, cfg)
			coordinator, err := buildCoordinator(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			summary, err := coordinator.Execute(cmd.Context())
			if summary != nil {
				fmt.Println(renderRunSummary(summary))
			}
			if err != nil {
				return err
			}
			// A completed run with recorded symbol failures still exits
			// clean: the summary table carries the detail.
			if summary.Failed() {
				fmt.Println(failStyle.Render("some symbols failed; see the table above"))
			}
			return nil
		},
	}

	cmd.Flags().StringSlice("symbols", nil, "Override the configured symbol list (comma separated)")

	return cmd
}

// newSingleCmd analyzes one symbol outside the daily run, reusing today's
// cached forecast if one exists.
func newSingleCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "single SYMBOL",
		Short: "Analyze a single symbol using today's cached forecast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := strings.ToUpper(strings.TrimSpace(args[0]))
			if symbol == "" {
				return fmt.Errorf("symbol is required")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := newLogger(cmd, cfg)
			ctx := cmd.Context()

			model, err := agents.NewChatModel(ctx, cfg)
			if err != nil {
				return err
			}
			proc := newProcessor(cfg, model, log)

			runDate := timeutil.RunDate()
			task := &pipeline.SymbolTask{
				Symbol:    symbol,
				RunDate:   runDate,
				OutputDir: filepath.Join(cfg.OutputDir, runDate, symbol),
				Forecast:  dataflows.NewForecastClient(cfg).LoadCached(),
			}

			fmt.Printf("Analyzing %s for %s\n", symbol, runDate)
			if err := proc.Process(ctx, task); err != nil {
				return err
			}
			fmt.Println(successStyle.Render("done: ") + task.OutputDir)
			return nil
		},
	}
}

// newResultsCmd lists the reports written for a run date.
func newResultsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "results [DATE]",
		Short: "List report files for a run date (today if omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runDate := timeutil.RunDate()
			if len(args) == 1 {
				if _, err := time.Parse("2006-01-02", args[0]); err != nil {
					return fmt.Errorf("invalid date, use YYYY-MM-DD: %w", err)
				}
				runDate = args[0]
			}

			locator := pipeline.NewOutputLocator(cfg.OutputDir)
			symbols, err := locator.ListSymbols(runDate)
			if err != nil {
				return err
			}
			if len(symbols) == 0 {
				fmt.Printf("No results for %s\n", runDate)
				return nil
			}

			fmt.Println(titleStyle.Render("Results " + runDate))
			for _, symbol := range symbols {
				files, err := locator.ListArtifacts(runDate, symbol)
				if err != nil {
					return err
				}
				fmt.Print(renderArtifacts(symbol, files))
			}
			return nil
		},
	}
}

// newConfigCmd creates the config command.
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cfg)
		},
	})

	return configCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("TradingCrew v1.0.0")
		},
	}
}

func showConfig(cfg *config.Config) {
	fmt.Println("Current TradingCrew Configuration:")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("Project Directory:    %s\n", cfg.ProjectDir)
	fmt.Printf("Outputs Directory:    %s\n", cfg.OutputDir)
	fmt.Printf("Inputs Directory:     %s\n", cfg.InputsDir)
	fmt.Printf("Cache Directory:      %s\n", cfg.DataCacheDir)
	fmt.Println()
	fmt.Printf("Overview Symbol:      %s\n", cfg.OverviewSymbol)
	fmt.Printf("Symbols:              %s\n", strings.Join(cfg.Symbols, ", "))
	fmt.Printf("Historical Days:      %d\n", cfg.HistoricalDays)
	fmt.Println()
	fmt.Printf("LLM Model:            %s\n", cfg.LLMModel)
	fmt.Printf("LLM Base URL:         %s\n", cfg.LLMBaseURL)
	fmt.Printf("Forecast Base URL:    %s\n", cfg.ForecastBaseURL)
	fmt.Println()
	fmt.Printf("Cache Enabled:        %t\n", cfg.CacheEnabled)
	fmt.Printf("Debug Mode:           %t\n", cfg.Debug)
	fmt.Println()

	fmt.Println("API Configuration:")
	fmt.Println("─────────────────────")
	printKeyStatus("LLM API", cfg.LLMAPIKey)
	printKeyStatus("TwelveData API", cfg.TwelveDataAPIKey)
	printKeyStatus("Forecast API", cfg.ForecastAPIKey)
	printKeyStatus("Headlines API", cfg.HeadlinesAPIKey)
}

func printKeyStatus(name, key string) {
	if key != "" {
		fmt.Printf("%-20s ✅ Configured\n", name+":")
	} else {
		fmt.Printf("%-20s ❌ Not configured\n", name+":")
	}
}

func validateConfig(cfg *config.Config) error {
	fmt.Println("Validating TradingCrew configuration...")

	fmt.Print("Checking directories... ")
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Println("❌")
		return fmt.Errorf("directory validation failed: %w", err)
	}
	fmt.Println("✅")

	fmt.Print("Checking settings... ")
	if err := cfg.Validate(); err != nil {
		fmt.Println("❌")
		return err
	}
	fmt.Println("✅")

	var warnings []string
	if cfg.TwelveDataAPIKey == "" {
		warnings = append(warnings, "TWELVE_API_KEY not set: global market snapshot will fail")
	}
	if cfg.ForecastAPIKey == "" {
		warnings = append(warnings, "TIMEGPT_API_KEY not set: forecasts will fail")
	}
	if cfg.HeadlinesAPIKey == "" {
		warnings = append(warnings, "RAPID_API_KEY not set: news headlines will fail")
	}
	for _, w := range warnings {
		fmt.Println("  ⚠️  " + w)
	}

	if len(warnings) == 0 {
		fmt.Println("Configuration is valid.")
	} else {
		fmt.Printf("Configuration is valid with %d warnings.\n", len(warnings))
	}
	return nil
}

// buildCoordinator wires the data clients, analyst factory and processor
// into a pipeline coordinator.
func buildCoordinator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pipeline.Coordinator, error) {
	model, err := agents.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	market := pipeline.NewMarketDataProvider(dataflows.NewHistoricalMarketClient(cfg), cfg.HistoricalDays)
	forecast := pipeline.NewForecastDataProvider(dataflows.NewForecastClient(cfg))
	factory := agents.NewOverviewAnalystFactory(model, cfg.OverviewSymbol)
	proc := newProcessor(cfg, model, log)

	return pipeline.NewCoordinator(cfg, market, forecast, factory, proc, log), nil
}

func newProcessor(cfg *config.Config, model agents.ChatModel, log zerolog.Logger) *processor.Processor {
	return processor.New(
		cfg,
		dataflows.NewNewsClient(cfg),
		dataflows.NewStocktwitsClient(cfg),
		dataflows.NewEquityClient(cfg),
		model,
		log,
	)
}
