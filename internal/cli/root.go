package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/burnratehq/burnrate/internal/config"
	"github.com/burnratehq/burnrate/internal/display"
	"github.com/burnratehq/burnrate/internal/fetch"
	"github.com/burnratehq/burnrate/internal/logging"
	"github.com/burnratehq/burnrate/internal/models"
	"github.com/burnratehq/burnrate/internal/provider"
	"github.com/burnratehq/burnrate/internal/store"

	// Register all providers
	_ "github.com/burnratehq/burnrate/internal/provider/claude"
	_ "github.com/burnratehq/burnrate/internal/provider/codex"
	_ "github.com/burnratehq/burnrate/internal/provider/openrouter"
)

// version is injected at build time via -ldflags.
var version = "dev"

var (
	jsonOutput bool
	noColor    bool
	verbose    bool
	quiet      bool
	refresh    bool
)

var rootCmd = &cobra.Command{
	Use:           "burnrate",
	Short:         "Track usage across AI providers",
	Long:          "A unified CLI that aggregates usage statistics from Claude, Codex, and OpenRouter.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose && quiet {
			verbose = false
		}

		// Load config from disk so malformed files surface a warning.
		cfg, err := config.Init()
		if cfg.Display.NoColor {
			noColor = true
		}
		if cfg.Display.JSON {
			jsonOutput = true
		}

		l := newConfiguredLogger()
		if err != nil {
			l.Warn("config file is malformed, using defaults", "err", err)
		}
		cmd.SetContext(logging.WithLogger(cmd.Context(), l))
	},
	RunE: runDefaultUsage,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Minimal output")
	rootCmd.PersistentFlags().BoolVarP(&refresh, "refresh", "r", false, "Bypass the cache and fetch fresh data")
	rootCmd.Flags().Bool("version", false, "Show version and exit")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cacheCmd)

	for _, id := range provider.ListIDs() {
		rootCmd.AddCommand(makeProviderCmd(id))
	}
}

// ExecuteContext runs the root command with the given context.
// Commands access it via cmd.Context().
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func runDefaultUsage(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetBool("version"); v {
		out("burnrate %s\n", version)
		return nil
	}

	cfg := config.Get()
	if provider.CountConfigured() == 0 && !jsonOutput && !quiet {
		showFirstRunMessage()
		return nil
	}

	return fetchAndDisplayAll(cmd.Context(), cfg)
}

// newStore is swapped in tests to keep cache state in a temp dir.
var newStore = store.Default

// snapshotCache adapts the store to the pipeline's cache interface.
type snapshotCache struct{ s *store.Store }

func (c snapshotCache) Save(snap models.UsageSnapshot) error { return c.s.SaveSnapshot(snap) }
func (c snapshotCache) Load(providerID string) *models.UsageSnapshot {
	return c.s.LoadSnapshot(providerID)
}

func pipelineConfigFromConfig(cfg config.Config) fetch.PipelineConfig {
	st := newStore()
	return fetch.PipelineConfig{
		Timeout:               time.Duration(cfg.Fetch.Timeout * float64(time.Second)),
		StaleThresholdMinutes: cfg.Fetch.StaleThresholdMinutes,
		Cache:                 snapshotCache{st},
		Gates:                 st,
	}
}

func orchestratorConfigFromConfig(cfg config.Config) fetch.OrchestratorConfig {
	return fetch.OrchestratorConfig{
		MaxConcurrent: cfg.Fetch.MaxConcurrent,
		Pipeline:      pipelineConfigFromConfig(cfg),
	}
}

func fetchAndDisplayAll(ctx context.Context, cfg config.Config) error {
	start := time.Now()

	providerMap := provider.StrategyMap(cfg)
	orchCfg := orchestratorConfigFromConfig(cfg)

	outcomes := fetch.FetchEnabledProviders(ctx, providerMap, !refresh, orchCfg, cfg.IsProviderEnabled, nil)

	logging.FromContext(ctx).Debug("fetch complete",
		"providers", len(outcomes),
		"total_duration_ms", time.Since(start).Milliseconds())

	if jsonOutput {
		if err := display.OutputMultiProviderJSON(outWriter, outcomes); err != nil {
			return err
		}
		return exitError(outcomes)
	}

	displayOutcomes(ctx, outcomes)
	return exitError(outcomes)
}

func displayOutcomes(ctx context.Context, outcomes map[string]fetch.FetchOutcome) {
	logger := logging.FromContext(ctx)
	agg := fetch.Fold(outcomes)

	var failed []string
	for _, pid := range agg.FailedProviders() {
		// Skip unconfigured providers, only show real fetch errors.
		if msg := agg.Errors[pid].Message; msg != "No strategies available" {
			failed = append(failed, pid)
			logger.Debug("provider error", "provider", pid, "error", msg)
		}
	}

	if !agg.HasAnyData() {
		if !quiet {
			outln("No usage data available")
			if len(failed) > 0 {
				outln()
				for _, pid := range failed {
					outln(renderFailure(pid, outcomes[pid]))
				}
			} else {
				outln("\nSign in with a provider CLI (claude, codex) or set an API key to get started.")
			}
		}
		return
	}

	for _, pid := range agg.SuccessfulProviders() {
		o := outcomes[pid]
		if quiet {
			for _, p := range o.Snapshot.Periods {
				out("%s %s: %d%%\n", pid, p.Name, p.Utilization)
			}
			continue
		}
		outln(display.RenderProviderPanel(o))
	}

	if !quiet {
		for _, pid := range failed {
			outln(renderFailure(pid, outcomes[pid]))
		}
	}
}

// renderFailure picks the gated line for gate-skipped providers and
// the error line for everything else.
func renderFailure(pid string, o fetch.FetchOutcome) string {
	if o.Gated && !o.Cached && o.GateRemaining != "" {
		return display.RenderGated(pid, o.GateRemaining)
	}
	return display.RenderProviderError(pid, o.Err)
}

func makeProviderCmd(providerID string) *cobra.Command {
	titleName := provider.DisplayName(providerID)
	return &cobra.Command{
		Use:   providerID,
		Short: "Show usage for " + titleName,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetchAndDisplayProvider(cmd.Context(), providerID)
		},
	}
}

func fetchAndDisplayProvider(ctx context.Context, providerID string) error {
	p, ok := provider.Get(providerID)
	if !ok {
		return fmt.Errorf("unknown provider: %s. Available: %s", providerID, strings.Join(provider.ListIDs(), ", "))
	}

	pipeCfg := pipelineConfigFromConfig(config.Get())
	outcome := fetch.ExecutePipeline(ctx, providerID, p.FetchStrategies(), !refresh, pipeCfg)

	if jsonOutput {
		if err := display.OutputJSON(outWriter, display.SnapshotToJSON(outcome)); err != nil {
			return err
		}
		return exitError(map[string]fetch.FetchOutcome{providerID: outcome})
	}

	if !outcome.Success || outcome.Snapshot == nil {
		if !quiet {
			outln(renderFailure(providerID, outcome))
		}
		return &ExitError{Code: codeForOutcome(outcome), message: "fetch failed"}
	}

	if quiet {
		for _, p := range outcome.Snapshot.Periods {
			out("%s %s: %d%%\n", providerID, p.Name, p.Utilization)
		}
		return nil
	}

	outln(display.RenderProviderPanel(outcome))
	return nil
}

func showFirstRunMessage() {
	outln()
	outln("Welcome to burnrate!")
	outln("Track your usage across AI providers in one place.")
	outln()
	outln("burnrate reuses credentials from provider CLIs:")
	outln("  claude      sign in with `claude auth login`")
	outln("  codex       sign in with `codex login`")
	outln("  openrouter  set OPENROUTER_API_KEY")
	outln()
}
