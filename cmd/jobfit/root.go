package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jonathan/jobfit-analyzer/internal/config"
	"github.com/jonathan/jobfit-analyzer/internal/extraction"
	"github.com/jonathan/jobfit-analyzer/internal/llm"
	"github.com/jonathan/jobfit-analyzer/internal/logger"
	"github.com/jonathan/jobfit-analyzer/internal/observability"
	"github.com/jonathan/jobfit-analyzer/internal/pipeline"
	"github.com/jonathan/jobfit-analyzer/internal/scoring"
	"github.com/jonathan/jobfit-analyzer/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// redisKeyPrefix namespaces the profile record in a shared Redis.
const redisKeyPrefix = "jobfit:"

// app is the state shared by every subcommand once the root command has
// loaded configuration.
type app struct {
	out        io.Writer
	configPath string
	debug      bool
	jsonOutput bool

	viper  *viper.Viper
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	rootCmd := &cobra.Command{
		Use:   "jobfit",
		Short: "Score a profile page against a target job category",
		Long: "jobfit extracts a structured profile from a profile page, scores it against " +
			"a target category (AI_ML, Cybersecurity, AI_Ethics) and keeps a history of saved scans.",
		SilenceUsage:      true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return a.init() },
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Write JSON logs and JSON results")

	rootCmd.AddCommand(
		newExtractCmd(a),
		newWatchCmd(a),
		newScoreCmd(a),
		newHistoryCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

func (a *app) init() error {
	a.viper = config.NewViper()
	cfg, err := config.Load(a.viper, a.configPath)
	if err != nil {
		return err
	}
	merged := cfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return err
	}
	a.cfg = &merged

	log, err := logger.New(a.jsonOutput, a.debug || merged.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = log
	return nil
}

// openStore opens the profile record backend named by the configuration.
func (a *app) openStore(ctx context.Context) (store.ProfileStore, func() error, error) {
	s, closeFn, err := store.Open(ctx, a.cfg.RedisURL, a.cfg.StorePath, store.RedisOptions{KeyPrefix: redisKeyPrefix})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open profile store: %w", err)
	}
	return s, closeFn, nil
}

// newScorer returns the offline scorer when mock is set and a Gemini scorer
// otherwise.
func (a *app) newScorer(ctx context.Context, mock bool, policy scoring.ScorePolicy) (scoring.Scorer, func() error, error) {
	if mock {
		return scoring.StaticScorer{}, func() error { return nil }, nil
	}
	if a.cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("API key is required (set GEMINI_API_KEY or JOBFIT_API_KEY, or use --mock)")
	}
	client, err := llm.NewClient(ctx, llm.DefaultConfig().WithModel(llm.TierAdvanced, a.cfg.Model), a.cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	scorer := scoring.NewGeminiScorer(client, scoring.WithPolicy(policy), scoring.WithLogger(a.logger))
	return scorer, client.Close, nil
}

// newAnalyzer wires the extractor and store into a pipeline. The scorer and
// sink are set by the commands that need them.
func (a *app) newAnalyzer(s store.ProfileStore) *pipeline.Analyzer {
	return &pipeline.Analyzer{
		Extractor: extraction.New(extraction.DefaultSelectors(), a.logger),
		Store:     s,
		Logger:    a.logger,
		OnProgress: func(e pipeline.ProgressEvent) {
			a.logger.Debug(e.Message, zap.String("step", e.Step))
		},
	}
}

func (a *app) printer() *observability.Printer {
	return observability.NewPrinter(a.out)
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
