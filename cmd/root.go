// Package cmd defines the md-check-link command line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/md-check-link/internal/checker"
	"github.com/JakeFAU/md-check-link/internal/clock/system"
	"github.com/JakeFAU/md-check-link/internal/config"
	"github.com/JakeFAU/md-check-link/internal/discover"
	"github.com/JakeFAU/md-check-link/internal/document"
	"github.com/JakeFAU/md-check-link/internal/id/uuid"
	"github.com/JakeFAU/md-check-link/internal/link"
	"github.com/JakeFAU/md-check-link/internal/logging"
	"github.com/JakeFAU/md-check-link/internal/markdown"
	"github.com/JakeFAU/md-check-link/internal/policy/ratelimit"
	"github.com/JakeFAU/md-check-link/internal/progress"
	"github.com/JakeFAU/md-check-link/internal/progress/sinks"
	"github.com/JakeFAU/md-check-link/internal/report"
	"github.com/JakeFAU/md-check-link/internal/resolver"
)

// ErrDeadLinks is returned when a run completes with at least one dead link.
var ErrDeadLinks = errors.New("dead links found")

const (
	statCacheSize     = 4096
	hubCloseTimeout   = 5 * time.Second
	spinnerRefresh    = 100 * time.Millisecond
	spinnerCharSetIdx = 9
)

type options struct {
	parallel     int
	config       string
	quiet        bool
	basePath     string
	metricsFile  string
	markdownFile string
	verbose      bool
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "md-check-link [flags] <files-or-folders...>",
		Short: "Check links and anchors in Markdown files",
		Long: `md-check-link extracts every link from the given Markdown files, or from all
*.md files below the given folders, and reports links that are dead.

Remote links are checked with HEAD, falling back to GET. Local files and
anchors, including anchors in other documents, are checked on disk.
Relative inputs are resolved against --base-path.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("no files or folders specified")
			}
			return run(cmd, opts, args)
		},
	}

	cmd.Flags().IntVarP(&opts.parallel, "parallel", "n", 0, "number of parallel requests (default from config, 2)")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "config file (JSON) path or http(s) URL")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "display errors only")
	cmd.Flags().StringVarP(&opts.basePath, "base-path", "b", "", "base path for relative inputs and absolute local links (default is the working directory)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus text metrics to this file when done")
	cmd.Flags().StringVar(&opts.markdownFile, "markdown-file", "", "write a Markdown summary to this file when done")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

// Execute runs the root command and exits non-zero on failure or dead links.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, ErrDeadLinks) {
			fmt.Fprintln(os.Stderr, "ERROR:", err)
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	ctx := cmd.Context()
	_ = godotenv.Load()

	logger, err := logging.New(opts.verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	cfg, err := config.Load(ctx, opts.config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("parallel") {
		if opts.parallel <= 0 {
			return fmt.Errorf("--parallel must be > 0, got %d", opts.parallel)
		}
		cfg.Parallel = opts.parallel
	}

	basePath, err := resolveBasePath(opts.basePath)
	if err != nil {
		return err
	}
	files, err := discover.Files(resolveInputs(basePath, args))
	if err != nil {
		return fmt.Errorf("discover inputs: %w", err)
	}

	registry, err := buildRegistry(cfg, basePath, logger)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := registry.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	logger.Debug("documents loaded", zap.Int("files", len(files)))

	res, err := buildResolver(cfg, logger)
	if err != nil {
		return err
	}

	metrics := prometheus.NewRegistry()
	promSink, err := sinks.NewPrometheusSink(metrics)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	hub := progress.NewHub(progress.Config{Logger: logger}, sinks.NewLogSink(logger), promSink)

	clock := system.New()
	chk := checker.New(registry, res, hub, uuid.New(), clock, checker.Config{Parallel: cfg.Parallel}, logger)

	stopSpinner := startSpinner(cmd, opts.quiet)
	sum, runErr := chk.Run(ctx)
	stopSpinner()

	closeCtx, cancel := context.WithTimeout(context.Background(), hubCloseTimeout)
	defer cancel()
	if err := hub.Close(closeCtx); err != nil {
		logger.Warn("progress hub close failed", zap.Error(err))
	}
	if n := hub.Dropped(); n > 0 {
		logger.Warn("progress events dropped", zap.Int64("events", n))
	}

	if err := report.New(cmd.OutOrStdout(), report.Options{Quiet: opts.quiet, BasePath: basePath}).Print(sum); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if opts.markdownFile != "" {
		if err := writeMarkdown(opts.markdownFile, sum, basePath); err != nil {
			return err
		}
	}
	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, metrics); err != nil {
			return fmt.Errorf("write metrics file: %w", err)
		}
	}
	if runErr != nil {
		return runErr
	}
	if sum.Failed() {
		return ErrDeadLinks
	}
	return nil
}

func writeMarkdown(path string, sum checker.Summary, basePath string) (err error) {
	f, err := os.Create(path) //nolint:gosec // path supplied by the user
	if err != nil {
		return fmt.Errorf("create markdown file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close markdown file: %w", cerr)
		}
	}()
	if err := report.WriteMarkdown(f, sum, basePath); err != nil {
		return fmt.Errorf("write markdown file: %w", err)
	}
	return nil
}

func resolveBasePath(flag string) (string, error) {
	if flag == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(flag)
	if err != nil {
		return "", fmt.Errorf("resolve base path %s: %w", flag, err)
	}
	return abs, nil
}

// resolveInputs joins relative input paths onto the base path.
func resolveInputs(basePath string, args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if !filepath.IsAbs(a) {
			a = filepath.Join(basePath, a)
		}
		out = append(out, a)
	}
	return out
}

func buildRegistry(cfg config.Config, basePath string, logger *zap.Logger) (*document.Registry, error) {
	rules, err := cfg.Rules()
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}
	cache, err := link.NewStatCache(statCacheSize)
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped
	}
	classifier := link.NewClassifier(rules, basePath, cache)
	return document.NewRegistry(classifier, markdown.NewExtractor(), document.Options{
		IgnoreDisable: cfg.IgnoreDisable,
		Logger:        logger,
	}), nil
}

func buildResolver(cfg config.Config, logger *zap.Logger) (*resolver.Resolver, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("timeout: %w", err)
	}
	retry, err := cfg.RetryPolicy()
	if err != nil {
		return nil, fmt.Errorf("retry policy: %w", err)
	}
	prober := resolver.NewCollyProber(resolver.CollyConfig{Timeout: timeout})
	return resolver.New(prober, system.New(), resolver.Config{
		Timeout: timeout,
		Retry:   retry,
		Headers: cfg.Headers(),
		Limiter: ratelimit.New(cfg.RateLimit()),
	}, logger), nil
}

func startSpinner(cmd *cobra.Command, quiet bool) func() {
	if quiet {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[spinnerCharSetIdx], spinnerRefresh, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " checking links"
	s.Start()
	return s.Stop
}
