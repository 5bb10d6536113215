package crawler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/shopscan/shopscan/internal/model"
)

// State is the lifecycle phase of a DomainCrawler.
type State int

const (
	// StateIdle: the frontier holds only the seed URL, nothing fetched yet.
	StateIdle State = iota

	// StateRunning: URLs are being popped, fetched, and expanded.
	StateRunning

	// StateDraining: no new fetches are dispatched; in-flight fetches are
	// completing and any remaining frontier entries will be discarded.
	StateDraining

	// StateDone: terminal; the report has been produced and the frontier
	// and visited set released.
	StateDone
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	default:
		return "done"
	}
}

// Bounds are the per-domain crawl limits, fixed before the run starts.
type Bounds struct {
	// MaxPages caps the total number of fetches issued for the domain.
	MaxPages int

	// MaxDepth caps link expansion from the seed. 0 fetches only the seed
	// page, 1 also fetches the pages the seed links to, and so on.
	MaxDepth int

	// Concurrency caps in-flight fetches within the domain.
	Concurrency int

	// Delay is an optional politeness pause between fetch dispatches.
	// Zero (the default) means no delay.
	Delay time.Duration
}

// DefaultBounds returns the bounds used when none are configured.
func DefaultBounds() Bounds {
	return Bounds{
		MaxPages:    100,
		MaxDepth:    5,
		Concurrency: 4,
	}
}

// frontierItem is one pending URL with its discovery depth.
type frontierItem struct {
	url   string
	depth int
}

// fetchOutcome is what a fetch goroutine reports back to the owner loop.
type fetchOutcome struct {
	item frontierItem
	page *model.Page
	err  error
}

// DomainCrawler crawls exactly one domain. It owns the frontier and the
// visited set outright: both are touched only by the Run loop's goroutine,
// so they need no locking. Nothing is shared with other domains except the
// global admission gate.
type DomainCrawler struct {
	// domain is the lowercased hostname that bounds the crawl. Links
	// resolving to any other host are discarded, never enqueued.
	domain string

	// seedURL is the normalized root URL the crawl starts from.
	seedURL string

	bounds  Bounds
	fetcher *Fetcher
	matcher *Matcher

	// gate is the run-wide fetch admission semaphore, shared across all
	// domain crawlers; nil means no global bound.
	gate *semaphore.Weighted

	logger *slog.Logger

	// Crawl state, owned exclusively by Run.
	state       State
	frontier    []frontierItem
	visited     map[string]bool
	products    []string
	productSeen map[string]bool
	issued      int
	failed      int
	skipped     int
}

// DomainOption configures a DomainCrawler.
type DomainOption func(*DomainCrawler)

// WithBounds sets the crawl bounds. MaxPages, Concurrency, and Delay left
// zero keep their defaults; MaxDepth is taken as given, since zero is a
// meaningful depth (fetch only the seed page).
func WithBounds(b Bounds) DomainOption {
	return func(c *DomainCrawler) {
		if b.MaxPages > 0 {
			c.bounds.MaxPages = b.MaxPages
		}
		if b.MaxDepth >= 0 {
			c.bounds.MaxDepth = b.MaxDepth
		}
		if b.Concurrency > 0 {
			c.bounds.Concurrency = b.Concurrency
		}
		if b.Delay > 0 {
			c.bounds.Delay = b.Delay
		}
	}
}

// WithGate sets the global fetch admission gate shared across domains.
// The crawler acquires one permit around every fetch.
func WithGate(gate *semaphore.Weighted) DomainOption {
	return func(c *DomainCrawler) {
		c.gate = gate
	}
}

// WithDomainLogger sets the logger. Defaults to slog.Default.
func WithDomainLogger(logger *slog.Logger) DomainOption {
	return func(c *DomainCrawler) {
		c.logger = logger
	}
}

// NewDomainCrawler creates a crawler for one domain. The target may be a
// bare hostname ("example.com") or a full URL; bare hostnames are seeded
// over https.
func NewDomainCrawler(target string, fetcher *Fetcher, matcher *Matcher, opts ...DomainOption) (*DomainCrawler, error) {
	seedURL, host, err := NormalizeSeed(target)
	if err != nil {
		return nil, err
	}

	c := &DomainCrawler{
		domain:      host,
		seedURL:     seedURL,
		bounds:      DefaultBounds(),
		fetcher:     fetcher,
		matcher:     matcher,
		state:       StateIdle,
		visited:     make(map[string]bool),
		productSeen: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Domain returns the hostname this crawler is bound to.
func (c *DomainCrawler) Domain() string {
	return c.domain
}

// State returns the crawler's current lifecycle phase.
func (c *DomainCrawler) State() State {
	return c.state
}

// VisitedCount returns the size of the visited set: URLs fetched or enqueued.
// The set grows monotonically over the crawler's lifetime.
func (c *DomainCrawler) VisitedCount() int {
	return len(c.visited)
}

// Run drains the domain until the frontier is exhausted, a crawl bound is
// hit, or the context is cancelled. It always returns a report; a crawl cut
// short keeps whatever products it had already confirmed.
//
// The loop is the single owner of all crawl state. Fetches run in their own
// goroutines, bounded by Bounds.Concurrency and the global gate, and report
// back over a channel; classification and enqueueing happen only here.
func (c *DomainCrawler) Run(ctx context.Context) *model.DomainReport {
	start := time.Now()
	c.state = StateRunning
	c.visited[c.seedURL] = true
	c.frontier = append(c.frontier, frontierItem{url: c.seedURL, depth: 0})

	c.logger.Debug("domain crawl started",
		"domain", c.domain,
		"seed", c.seedURL,
		"maxPages", c.bounds.MaxPages,
		"maxDepth", c.bounds.MaxDepth,
	)

	outcomes := make(chan fetchOutcome)
	done := ctx.Done()
	inflight := 0
	cancelled := false

	for {
		// Dispatch while there is capacity, work, and page budget left.
		for !cancelled && inflight < c.bounds.Concurrency && len(c.frontier) > 0 && c.issued < c.bounds.MaxPages {
			item := c.frontier[0]
			c.frontier = c.frontier[1:]
			c.issued++
			inflight++
			go c.fetch(ctx, item, outcomes)

			if c.bounds.Delay > 0 {
				select {
				case <-done:
					cancelled = true
					done = nil
				case <-time.After(c.bounds.Delay):
				}
			}
		}

		if inflight == 0 {
			break
		}
		if cancelled || len(c.frontier) == 0 || c.issued >= c.bounds.MaxPages {
			c.state = StateDraining
		}

		select {
		case <-done:
			// Stop dispatching; in-flight fetches share ctx and finish
			// (or abort) on their own. Collected products stay valid.
			cancelled = true
			done = nil
			c.state = StateDraining
		case out := <-outcomes:
			inflight--
			c.handle(out)
		}
	}

	// Remaining frontier entries are discarded on purpose: a bound was hit
	// or the run was cancelled. Products already confirmed are kept.
	if ctx.Err() != nil {
		cancelled = true
	}
	c.state = StateDraining
	dropped := len(c.frontier)
	c.frontier = nil
	c.state = StateDone

	report := &model.DomainReport{
		Domain:        c.domain,
		SeedURL:       c.seedURL,
		ProductURLs:   append([]string(nil), c.products...),
		PagesFetched:  c.issued,
		FailedFetches: c.failed,
		SkippedLinks:  c.skipped,
		Cancelled:     cancelled,
		Duration:      time.Since(start),
	}

	// Release crawl state; the crawler is single-use.
	c.visited = nil
	c.productSeen = nil

	c.logger.Info("domain crawl finished",
		"domain", c.domain,
		"products", len(report.ProductURLs),
		"pagesFetched", report.PagesFetched,
		"failedFetches", report.FailedFetches,
		"droppedFrontier", dropped,
		"cancelled", cancelled,
		"duration", report.Duration,
	)

	return report
}

// fetch performs one fetch under the global admission gate and reports the
// outcome to the owner loop. It never touches crawl state.
func (c *DomainCrawler) fetch(ctx context.Context, item frontierItem, outcomes chan<- fetchOutcome) {
	if c.gate != nil {
		if err := c.gate.Acquire(ctx, 1); err != nil {
			outcomes <- fetchOutcome{item: item, err: err}
			return
		}
		defer c.gate.Release(1)
	}

	page, err := c.fetcher.Fetch(ctx, item.url)
	outcomes <- fetchOutcome{item: item, page: page, err: err}
}

// handle processes one completed fetch: a product URL is recorded, a plain
// page is expanded, a failure is counted and skipped.
func (c *DomainCrawler) handle(out fetchOutcome) {
	if out.err != nil {
		if errors.Is(out.err, context.Canceled) || errors.Is(out.err, context.DeadlineExceeded) {
			return
		}
		c.failed++
		c.logger.Debug("fetch skipped",
			"domain", c.domain,
			"url", out.item.url,
			"error", out.err,
		)
		return
	}

	// Product pages are terminal: record them, never expand them.
	if c.matcher.Classify(out.page.URL) == ClassProduct {
		c.recordProduct(out.page.URL)
		return
	}

	if out.item.depth >= c.bounds.MaxDepth {
		return
	}
	c.expand(out.page, out.item.depth+1)
}

// recordProduct appends a confirmed product URL, suppressing duplicates and
// preserving completion-insertion order.
func (c *DomainCrawler) recordProduct(productURL string) {
	if c.productSeen[productURL] {
		return
	}
	c.productSeen[productURL] = true
	c.products = append(c.products, productURL)
	c.logger.Debug("product discovered", "domain", c.domain, "url", productURL)
}

// expand extracts the page's links and enqueues the in-domain ones that
// have not been seen before. Off-domain and malformed candidates are
// counted as skipped; a candidate enters the frontier at most once.
func (c *DomainCrawler) expand(page *model.Page, depth int) {
	base, err := url.Parse(page.URL)
	if err != nil {
		return
	}

	for href := range ExtractLinks(bytes.NewReader(page.Body)) {
		u, err := normalizeReference(href, base)
		if err != nil {
			c.skipped++
			continue
		}
		if u.Hostname() != c.domain {
			// Cross-domain links are discarded, never enqueued.
			c.skipped++
			continue
		}

		normalized := u.String()
		if c.visited[normalized] {
			continue
		}
		c.visited[normalized] = true
		c.frontier = append(c.frontier, frontierItem{url: normalized, depth: depth})
	}
}
