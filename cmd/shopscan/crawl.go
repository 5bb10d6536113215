package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"github.com/shopscan/shopscan/internal/config"
	"github.com/shopscan/shopscan/internal/crawler"
	"github.com/shopscan/shopscan/internal/database"
	"github.com/shopscan/shopscan/internal/log"
	"github.com/shopscan/shopscan/internal/model"
	"github.com/shopscan/shopscan/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <domain> [<domain>...]",
		Short: "Discover product URLs on e-commerce sites",
		Long: `Crawl fetches each domain starting from its root page, follows links
within the domain, and collects the URLs of product detail pages.

A URL counts as a product URL when its path matches one of the product
patterns and its page answers a successful fetch. Product pages are
recorded but never expanded; crawling continues through the remaining
pages until the frontier is exhausted or a crawl bound is hit.

Examples:
  # Crawl a single site
  shopscan crawl books.toscrape.com

  # Crawl several sites concurrently
  shopscan crawl example1.com example2.com books.toscrape.com

  # Tighter bounds and JSON output
  shopscan crawl --max-pages 50 --depth 3 --json books.toscrape.com

  # Only the domain -> product URLs mapping, as JSON
  shopscan crawl --products-only books.toscrape.com

  # Custom product patterns (plain substring or re: regular expression)
  shopscan crawl --pattern /artikel/ --pattern "re:^/dp/[A-Z0-9]+$" shop.example.com

Configuration file (.shopscan) example:
  defaults:
    patterns:
      - "/product/"
  sites:
    books.toscrape.com:
      patterns:
        - "/catalogue/"
      maxPages: 1000`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each request attempt")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link depth from the seed page (0 = root only)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to fetch per domain")
	cmd.Flags().Int("concurrency", config.DefaultDomainConcurrency,
		"Concurrent fetches within one domain")
	cmd.Flags().IntP("global-concurrency", "g", config.DefaultGlobalConcurrency,
		"Concurrent fetches across all domains")
	cmd.Flags().Int("retries", config.DefaultRetryBudget,
		"Total attempts per URL for transport failures (1 = no retry)")
	cmd.Flags().Duration("backoff", config.DefaultBackoff,
		"Delay before the first retry; doubles per retry")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Politeness pause between fetches within a domain")
	cmd.Flags().StringArray("pattern", nil,
		"Product URL pattern (repeatable; plain substring or re: regexp)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .shopscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().Bool("products-only", false,
		"Output only the domain -> product URLs mapping as JSON")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Persistence
	cmd.Flags().Bool("no-save", false,
		"Do not record this run in the crawl history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up sanitized structured logging
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, draining...")
		cancel()
	}()

	productsOnly, err := cmd.Flags().GetBool("products-only")
	if err != nil {
		return err
	}

	return runCrawl(ctx, cfg, productsOnly, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.DomainConcurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.GlobalConcurrency, err = cmd.Flags().GetInt("global-concurrency")
	if err != nil {
		return nil, err
	}

	cfg.RetryBudget, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.Backoff, err = cmd.Flags().GetDuration("backoff")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	patterns, err := cmd.Flags().GetStringArray("pattern")
	if err != nil {
		return nil, err
	}
	if len(patterns) > 0 {
		cfg.Patterns = patterns
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-site configurations from the config file.
	// If the user explicitly specified a path, error when it is missing.
	// Otherwise silently use an empty config.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	// Positional arguments are the domains to crawl
	cfg.Domains = args

	return cfg, nil
}

// runCrawl executes the crawl and writes the report.
func runCrawl(ctx context.Context, cfg *config.Config, productsOnly bool, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"domains", len(cfg.Domains),
		"maxPages", cfg.MaxPages,
		"maxDepth", cfg.MaxDepth,
		"globalConcurrency", cfg.GlobalConcurrency,
		"saveToDB", cfg.SaveToDB,
	)

	// Open the history database if saving is enabled
	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close() //nolint:errcheck
		logger.Debug("database opened", "dir", cfg.DBDir)
	}

	// One HTTP client shared by every domain so connections pool across
	// the run. The client timeout is the per-attempt timeout.
	client := &http.Client{Timeout: cfg.Timeout}

	orchestrator := crawler.NewOrchestrator(
		domainCrawlerFactory(cfg, client, logger),
		crawler.WithGlobalLimit(cfg.GlobalConcurrency),
		crawler.WithLogger(logger),
	)

	result, runErr := orchestrator.Run(ctx, cfg.Domains)

	if err := outputReport(cfg, productsOnly, result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if err := saveCrawlReport(db, result, logger); err != nil {
		logger.Error("failed to save crawl run", "error", err)
	}

	if runErr != nil {
		return fmt.Errorf("crawl cut short: %w", runErr)
	}
	return nil
}

// domainCrawlerFactory builds the per-domain crawler constructor, applying
// site-specific overrides from the config file on top of the global flags.
func domainCrawlerFactory(cfg *config.Config, client *http.Client, logger *slog.Logger) crawler.DomainCrawlerFactory {
	return func(domain string, gate *semaphore.Weighted) (*crawler.DomainCrawler, error) {
		site := siteConfigFor(cfg, domain)

		patterns := cfg.Patterns
		if len(site.Patterns) > 0 {
			patterns = site.Patterns
		}
		matcher, err := crawler.NewMatcher(patterns)
		if err != nil {
			return nil, fmt.Errorf("invalid product patterns for %s: %w", domain, err)
		}

		fetcherOpts := []crawler.FetcherOption{
			crawler.WithRetryBudget(cfg.RetryBudget),
			crawler.WithBackoff(cfg.Backoff),
			crawler.WithMaxBodySize(cfg.MaxBodySize),
		}

		userAgent := cfg.UserAgent
		if site.UserAgent != "" {
			userAgent = site.UserAgent
		}
		fetcherOpts = append(fetcherOpts, crawler.WithUserAgent(userAgent))

		headers := make(map[string]string, len(site.Headers)+1)
		for k, v := range site.Headers {
			headers[k] = v
		}
		if site.Cookie != "" {
			headers["Cookie"] = site.Cookie
		}
		if len(headers) > 0 {
			fetcherOpts = append(fetcherOpts, crawler.WithHeaders(headers))
		}

		bounds := crawler.Bounds{
			MaxPages:    cfg.MaxPages,
			MaxDepth:    cfg.MaxDepth,
			Concurrency: cfg.DomainConcurrency,
			Delay:       cfg.CrawlDelay,
		}
		if site.MaxPages > 0 {
			bounds.MaxPages = site.MaxPages
		}
		if site.Depth > 0 {
			bounds.MaxDepth = site.Depth
		}
		if site.Concurrency > 0 {
			bounds.Concurrency = site.Concurrency
		}
		if d := time.Duration(site.Delay); d > 0 {
			bounds.Delay = d
		}

		return crawler.NewDomainCrawler(domain,
			crawler.NewFetcher(client, fetcherOpts...),
			matcher,
			crawler.WithBounds(bounds),
			crawler.WithGate(gate),
			crawler.WithDomainLogger(logger),
		)
	}
}

// siteConfigFor resolves the per-site configuration for a crawl target.
// Targets may be bare hostnames or full URLs; config file keys are
// hostnames.
func siteConfigFor(cfg *config.Config, target string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}
	if _, host, err := crawler.NormalizeSeed(target); err == nil {
		return cfg.SiteConfigs.GetSiteConfig(host)
	}
	return cfg.SiteConfigs.Defaults
}

// outputReport writes the crawl report in the requested format.
func outputReport(cfg *config.Config, productsOnly bool, result *model.CrawlReport) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case productsOnly:
		writer = report.NewJSONWriter(output, report.WithProductsOnly(), report.WithPrettyPrint())
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithVersion(getVersion()), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(result)
	return err
}

// saveCrawlReport records the run in the history database.
// If db is nil, this function is a no-op.
func saveCrawlReport(db *database.HistoryDB, result *model.CrawlReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	// Use a fresh context: the run context may already be cancelled, and
	// a cancelled crawl's partial results are still worth keeping.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	runID, err := db.SaveReport(ctx, result)
	if err != nil {
		return err
	}

	logger.Info("crawl run saved", "runID", runID, "products", result.TotalProducts())
	return nil
}
