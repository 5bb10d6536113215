package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen for typical storefront characteristics: pages
// are fast to serve but product catalogues can be very large, so the crawl
// bounds are the primary safety valve.
const (
	// DefaultTimeout is the per-request HTTP timeout. Storefronts answer
	// quickly when healthy; 10 seconds is generous enough to ride out a
	// slow origin without stalling the whole crawl on one dead URL.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxPages caps the number of pages fetched per domain.
	// This prevents runaway crawling on large or infinitely-generating
	// catalogues. Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 100

	// DefaultMaxDepth caps link expansion from the seed page. Product
	// pages on most storefronts sit within a few clicks of the root, so
	// depth 5 finds the catalogue without wandering into pagination tails.
	DefaultMaxDepth = 5

	// DefaultDomainConcurrency is the number of in-flight fetches within
	// one domain. Four concurrent requests keep a single origin busy
	// without looking like a flood.
	DefaultDomainConcurrency = 4

	// DefaultGlobalConcurrency caps in-flight fetches across all domains
	// in a run. This is the run-wide resource bound; per-domain limits
	// still apply underneath it.
	DefaultGlobalConcurrency = 16

	// DefaultRetryBudget is the total number of attempts for a URL whose
	// fetch fails at the transport level. Content failures (HTTP errors,
	// non-HTML responses) never retry.
	DefaultRetryBudget = 3

	// DefaultBackoff is the delay before the first retry. It doubles on
	// each subsequent retry.
	DefaultBackoff = 500 * time.Millisecond

	// DefaultCrawlDelay is the politeness pause between fetch dispatches
	// within a domain. Zero by default: the concurrency bounds already
	// limit pressure on the origin, and most storefronts tolerate it.
	// Raise via --delay or per-site config for rate-limited sites.
	DefaultCrawlDelay = 0 * time.Second

	// DefaultUserAgent identifies shopscan in HTTP requests.
	// A descriptive User-Agent lets site operators identify crawler
	// traffic in their logs.
	DefaultUserAgent = "shopscan/1.0 (+https://github.com/shopscan/shopscan)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "shopscan"
)

// DefaultPatterns are the product URL rules used when neither the config
// file nor the --pattern flag provides any. Plain entries match as path
// substrings; entries prefixed with "re:" are compiled as regular
// expressions against the path.
//
// These four cover the catalogue layouts of most storefront platforms.
func DefaultPatterns() []string {
	return []string{"/product/", "/item/", "/p/", "/catalogue/"}
}

// Config holds all configuration options for shopscan.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Timeout is the HTTP timeout for each request attempt.
	Timeout time.Duration

	// MaxPages is the maximum number of pages fetched per domain.
	// A value of 0 means use the default (DefaultMaxPages).
	MaxPages int

	// MaxDepth is the maximum link expansion depth from the seed page.
	// Depth 0 means only fetch the seed page.
	MaxDepth int

	// DomainConcurrency is the number of in-flight fetches within one domain.
	DomainConcurrency int

	// GlobalConcurrency caps in-flight fetches across all domains.
	GlobalConcurrency int

	// RetryBudget is the total number of attempts per URL for transport
	// failures. 1 means no retries.
	RetryBudget int

	// Backoff is the delay before the first retry; it doubles per retry.
	Backoff time.Duration

	// CrawlDelay is the politeness pause between fetch dispatches within
	// a domain. Zero means no delay.
	CrawlDelay time.Duration

	// Patterns are the product URL rules, checked in order with
	// first-match-wins. Empty means use DefaultPatterns.
	Patterns []string

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated. 0 means use the default.
	MaxBodySize int64

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only info and above are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .shopscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site configurations loaded from the config
	// file. Populated by LoadConfigFile and consulted per domain.
	SiteConfigs *File

	// JSONReport enables JSON report output instead of human-readable
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// Domains is the list of domains or seed URLs to crawl.
	// Bare hostnames are seeded over https.
	Domains []string

	// DBDir is the directory path for storing the SQLite database.
	// When set, crawl results are saved for later inspection via the
	// history command. When empty, results are not persisted.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to save crawl results to the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, bounds).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		MaxPages:          DefaultMaxPages,
		MaxDepth:          DefaultMaxDepth,
		DomainConcurrency: DefaultDomainConcurrency,
		GlobalConcurrency: DefaultGlobalConcurrency,
		RetryBudget:       DefaultRetryBudget,
		Backoff:           DefaultBackoff,
		CrawlDelay:        DefaultCrawlDelay,
		Patterns:          DefaultPatterns(),
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for shopscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/shopscan
// On macOS: ~/Library/Application Support/shopscan
// On Windows: %LOCALAPPDATA%\shopscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for shopscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one domain to crawl
	if len(c.Domains) == 0 {
		return ErrNoDomains
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// Page budget must be positive; zero would mean no crawling
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	// Depth 0 is valid (fetch only the seed), negative is not
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	// Both concurrency bounds must be positive
	if c.DomainConcurrency <= 0 || c.GlobalConcurrency <= 0 {
		return ErrInvalidConcurrency
	}

	// A budget of 1 means a single attempt with no retries
	if c.RetryBudget <= 0 {
		return ErrInvalidRetryBudget
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// CrawlDelay must be non-negative
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	// MaxBodySize must be non-negative; 0 means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
