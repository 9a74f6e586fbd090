package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/linkscout/internal/config"
	"github.com/nao1215/linkscout/internal/crawler"
	securelog "github.com/nao1215/linkscout/internal/log"
	"github.com/nao1215/linkscout/internal/model"
	"github.com/nao1215/linkscout/internal/pipeline"
	"github.com/nao1215/linkscout/internal/report"
	"github.com/nao1215/linkscout/internal/transport"
	"github.com/spf13/cobra"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [url...]",
		Short: "Fetch pages and report their titles and links",
		Long: `Scrape fetches every target once, extracts the page title and the href of
every link, and reports the results.

Targets are the URLs given as arguments. Without arguments, targets are read
from a newline-delimited file (targets.txt by default). Blank lines are
skipped; every other line is used as is.

Each page produces two log lines at info level, "page title" and
"page links". Failed targets produce one "scrape failed" line at error
level and do not stop the run. A summary report is written to stdout or
to the file given with --output.

Examples:
  # Scrape the URLs listed in targets.txt
  linkscout scrape

  # Scrape a custom list, four requests in flight, one launch every 200ms
  linkscout scrape -t urls.txt --concurrency 4 --throttle 200ms

  # Scrape two URLs and write a Markdown report
  linkscout scrape -m -o report.md https://example.com https://example.org

  # Go through a SOCKS5 proxy such as Tor
  linkscout scrape --proxy 127.0.0.1:9050 http://example.onion

Configuration file (.linkscout) example:
  defaults:
    timeout: 15s
    throttle: 500ms
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"`,
		Args: cobra.ArbitraryArgs,
		RunE: runScrapeCmd,
	}

	// Target flags
	cmd.Flags().StringP("targets", "t", config.DefaultTargetFile,
		"Newline-delimited file of URLs (ignored when URLs are given as arguments)")

	// Request flags
	cmd.Flags().Duration("timeout", config.DefaultTimeout,
		"Timeout for each request, body included")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response body size in bytes")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().StringP("proxy", "x", "",
		"Route requests through a SOCKS5 proxy (e.g., 127.0.0.1:9050)")
	cmd.Flags().Bool("insecure", false,
		"Skip TLS certificate verification")

	// Scheduling flags
	cmd.Flags().Duration("throttle", config.DefaultThrottle,
		"Interval between two request launches (0 disables throttling)")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Maximum number of requests in flight")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linkscout in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScrape(ctx, cfg, logger, cmd.OutOrStdout())
}

// getBoolFlag retrieves a bool flag from the command or the root's
// persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// buildConfig creates a Config from cobra command flags and the
// configuration file. Flags given explicitly override file defaults.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error

	if cfg.TargetFile, err = flags.GetString("targets"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.Throttle, err = flags.GetDuration("throttle"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.InsecureTLS, err = flags.GetBool("insecure"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.Quiet = getBoolFlag(cmd, "quiet")
	cfg.LogJSON = getBoolFlag(cmd, "log-json")

	// An explicitly given config file must exist; the default search
	// locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyDefaults(cfg.SiteConfigs.Defaults, flags.Changed)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.Targets = args

	return cfg, nil
}

// setupLogger creates the secure structured logger for the run.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := securelog.Level(cfg.Verbose, cfg.Quiet)
	if cfg.LogJSON {
		return securelog.NewSecureJSONLogger(w, level)
	}
	return securelog.NewSecureLogger(w, level)
}

// runScrape builds the HTTP stack, runs every target and writes the
// reports. A cancelled run still reports its partial results before the
// cancellation is returned.
func runScrape(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	client, err := transport.New(
		transport.WithTimeout(cfg.Timeout),
		transport.WithProxy(cfg.ProxyAddress),
		transport.WithSites(cfg.SiteConfigs),
		transport.WithInsecureTLS(cfg.InsecureTLS),
		transport.WithMaxIdleConnsPerHost(cfg.Concurrency),
	)
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	if cfg.ProxyAddress != "" {
		if err := transport.CheckProxy(ctx, cfg.ProxyAddress, cfg.Timeout); err != nil {
			return fmt.Errorf("proxy check failed (make sure a SOCKS5 proxy is running at %s): %w",
				cfg.ProxyAddress, err)
		}
		logger.Debug("SOCKS5 proxy verified", "address", cfg.ProxyAddress)
	}

	fetcher := crawler.NewFetcher(client,
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.EffectiveMaxBodySize()),
		crawler.WithFetcherLogger(logger),
	)

	orchestrator := pipeline.NewOrchestrator(fetcher,
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithThrottle(cfg.Throttle),
		pipeline.WithOrchestratorLogger(logger),
	)

	var runReport *model.RunReport
	var runErr error
	if len(cfg.Targets) > 0 {
		runReport, runErr = orchestrator.Run(ctx, cfg.Targets)
	} else {
		runReport, runErr = orchestrator.RunFile(ctx, cfg.TargetFile)
	}
	if runReport == nil {
		return runErr
	}

	if err := outputReport(cfg, runReport, logger, stdout); err != nil {
		return errors.Join(runErr, fmt.Errorf("report failed: %w", err))
	}

	if runErr != nil {
		return fmt.Errorf("scrape interrupted: %w", runErr)
	}
	return nil
}

// outputReport logs every page and writes the summary report in the
// requested format.
func outputReport(cfg *config.Config, runReport *model.RunReport, logger *slog.Logger, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		f, err := createReportFile(cfg.ReportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		output = f
	}

	w := report.NewMultiWriter(
		report.NewLogWriter(logger),
		newReportWriter(cfg, output),
	)
	if _, err := w.Write(runReport); err != nil {
		return err
	}

	if cfg.ReportFile != "" {
		logger.Info("report written", "path", cfg.ReportFile)
	}
	return nil
}

// newReportWriter returns the writer for the configured report format.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output,
			report.WithVerbose(cfg.Verbose),
			report.WithShowEmpty(cfg.Verbose),
		)
	}
}

// createReportFile creates path and its parent directories.
// Reports may contain session-bound URLs, so the file is owner-only.
func createReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
