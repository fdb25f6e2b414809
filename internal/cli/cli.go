package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pfrederiksen/cricket-results/internal/config"
	"github.com/pfrederiksen/cricket-results/internal/logger"
	"github.com/pfrederiksen/cricket-results/internal/pipeline"
	"github.com/pfrederiksen/cricket-results/internal/report"
	"github.com/pfrederiksen/cricket-results/internal/scraper"
	"github.com/pfrederiksen/cricket-results/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig      string
	flagSource      string
	flagExcel       string
	flagDataDir     string
	flagTemplate    string
	flagSnapshotDir string
	flagTimeout     time.Duration
	flagWorkers     int
	flagSimilarity  float64
	flagDryRun      bool
	flagFormat      string
	flagVerbose     bool
	flagLogLevel    string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	defaults := config.Defaults()

	cmd := &cobra.Command{
		Use:   "cricket-results",
		Short: "Scrape tournament results into a workbook and per-team scorecards",
		Long: `A CLI tool that scrapes a cricket tournament's results page, groups every
match by team, and writes a spreadsheet with one sheet per team plus one PDF
scorecard per team fixture.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runScrape,
	}

	// Define flags
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to a json5 config file (a .local sibling is merged over it)")
	cmd.Flags().StringVar(&flagSource, "source", defaults.SourceURL, "Results page URL")
	cmd.Flags().StringVar(&flagExcel, "excel", defaults.ExcelPath, "Workbook output path")
	cmd.Flags().StringVar(&flagDataDir, "data-dir", defaults.DataDir, "Scorecard output directory (emptied on every run)")
	cmd.Flags().StringVar(&flagTemplate, "template", defaults.TemplatePath, "Scorecard template PDF")
	cmd.Flags().StringVar(&flagSnapshotDir, "snapshot-dir", defaults.SnapshotDir, "Directory for matches.json and teams.json")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", defaults.Timeout, "HTTP timeout for the results page")
	cmd.Flags().IntVar(&flagWorkers, "workers", defaults.Workers, fmt.Sprintf("Teams rendered at once (1-%d)", config.MaxWorkers))
	cmd.Flags().Float64Var(&flagSimilarity, "similarity", defaults.SimilarityThreshold, "Jaro-Winkler score that flags two team names as alike")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print the planned outputs instead of writing them")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging and output (same as --log-level debug)")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn or error")

	return cmd
}

// loadConfig layers the config file and then any flag set on the command line
// over the defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.SourceURL = flagSource
	}
	if flags.Changed("excel") {
		cfg.ExcelPath = flagExcel
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = flagDataDir
	}
	if flags.Changed("template") {
		cfg.TemplatePath = flagTemplate
	}
	if flags.Changed("snapshot-dir") {
		cfg.SnapshotDir = flagSnapshotDir
	}
	if flags.Changed("timeout") {
		cfg.Timeout = flagTimeout
	}
	if flags.Changed("workers") {
		cfg.Workers = flagWorkers
	}
	if flags.Changed("similarity") {
		cfg.SimilarityThreshold = flagSimilarity
	}
	cfg.DryRun = flagDryRun

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, args []string) error {
	// Validate format
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return errors.Newf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	level := logger.ParseLevel(flagLogLevel)
	if flagVerbose {
		level = logger.LevelDebug
	}
	log := logger.New(level, cmd.ErrOrStderr())
	logger.SetDefault(log)
	defer log.Sync()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log.Debug("Loaded configuration", logger.Fields{
		"source":    cfg.SourceURL,
		"excel":     cfg.ExcelPath,
		"data_dir":  cfg.DataDir,
		"template":  cfg.TemplatePath,
		"snapshots": cfg.SnapshotDir,
		"timeout":   cfg.Timeout.String(),
		"workers":   cfg.Workers,
		"dry_run":   cfg.DryRun,
		"block":     cfg.Selectors.Block,
	})

	// Initialize storage
	store, err := storage.New(cfg.SnapshotDir)
	if err != nil {
		return errors.Wrap(err, "initializing storage")
	}

	planOut := cmd.OutOrStdout()
	if format == FormatJSON {
		planOut = cmd.ErrOrStderr()
	}
	emitters, err := buildEmitters(cfg, planOut)
	if err != nil {
		return err
	}

	sc := scraper.New(cfg.SourceURL,
		scraper.WithTimeout(cfg.Timeout),
		scraper.WithUserAgent(cfg.UserAgent),
		scraper.WithSelectors(cfg.Selectors),
	)
	metrics := logger.NewMetrics()

	p := &pipeline.Pipeline{
		Fetcher:             sc,
		Extract:             sc.Extract,
		Store:               store,
		Emitters:            emitters,
		SimilarityThreshold: cfg.SimilarityThreshold,
		Logger:              log,
		Metrics:             metrics,
	}

	log.Info("Scraping results", logger.Fields{"url": sc.URL()})
	res, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := NewOutputResult(sc.URL(), res, cfg.DryRun)
	snap := metrics.GetSnapshot()
	out.Metrics = &snap

	if err := WriteOutput(cmd.OutOrStdout(), out, format, flagVerbose); err != nil {
		return errors.Wrap(err, "writing output")
	}
	return nil
}

func buildEmitters(cfg config.Config, planOut io.Writer) ([]report.Emitter, error) {
	if cfg.DryRun {
		return []report.Emitter{report.NewDryRun(planOut, cfg.ExcelPath, cfg.DataDir)}, nil
	}

	tree, err := storage.NewOutputTree(cfg.DataDir)
	if err != nil {
		return nil, errors.Wrap(err, "initializing output tree")
	}
	scorecards := report.NewScorecardRenderer(tree, cfg.TemplatePath, report.WithWorkers(cfg.Workers))
	if err := scorecards.CheckTemplate(); err != nil {
		return nil, err
	}
	return []report.Emitter{report.NewSheetWriter(cfg.ExcelPath), scorecards}, nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
