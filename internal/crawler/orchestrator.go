package crawler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/shopscan/shopscan/internal/model"
)

// DomainCrawlerFactory builds the crawler for one domain. The gate is the
// run-wide fetch admission semaphore; implementations should pass it through
// via WithGate so the global concurrency bound holds across domains.
//
// Design decision: We take a factory rather than a finished crawler list
// because each domain may need its own bounds, patterns, and headers, and
// because crawlers are single-use: the orchestrator must control when each
// one comes to life.
type DomainCrawlerFactory func(domain string, gate *semaphore.Weighted) (*DomainCrawler, error)

// Orchestrator runs one DomainCrawler per configured domain, all
// concurrently, and merges their terminal reports into the result mapping.
//
// Failure isolation is absolute: a domain whose every fetch fails, or whose
// crawler cannot even be constructed, contributes an empty product list and
// nothing else. No domain can abort another.
type Orchestrator struct {
	factory DomainCrawlerFactory

	// globalLimit caps in-flight fetches across all domains.
	globalLimit int64

	logger *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithGlobalLimit sets the maximum number of in-flight fetches across all
// domains. Default is 16.
func WithGlobalLimit(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.globalLimit = int64(n)
		}
	}
}

// WithLogger sets the orchestrator's logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an Orchestrator that builds per-domain crawlers
// with the given factory.
func NewOrchestrator(factory DomainCrawlerFactory, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		factory:     factory,
		globalLimit: 16,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Run crawls all domains concurrently and returns the merged result.
//
// The returned report is always complete: one DomainReport per domain, in
// input order, even when the context is cancelled mid-run (partial results
// are valid) or when a domain produced nothing. The error is the context's
// error when the run was cut short, nil otherwise.
func (o *Orchestrator) Run(ctx context.Context, domains []string) (*model.CrawlReport, error) {
	start := time.Now()

	o.logger.Info("crawl started",
		"domains", len(domains),
		"globalLimit", o.globalLimit,
	)

	gate := semaphore.NewWeighted(o.globalLimit)
	reports := make([]*model.DomainReport, len(domains))
	var mu sync.Mutex

	// A plain errgroup, not WithContext: one domain's failure must never
	// cancel the others, and domain goroutines report problems through
	// their DomainReport instead of returning errors.
	g := new(errgroup.Group)

	for i, domain := range domains {
		g.Go(func() error {
			dc, err := o.factory(domain, gate)
			if err != nil {
				o.logger.Warn("skipping domain",
					"domain", domain,
					"error", err,
				)
				mu.Lock()
				reports[i] = &model.DomainReport{
					Domain:      domain,
					ProductURLs: []string{},
				}
				mu.Unlock()
				return nil
			}

			report := dc.Run(ctx)

			mu.Lock()
			reports[i] = report
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	result := &model.CrawlReport{
		StartedAt: start,
		Duration:  time.Since(start),
		Domains:   reports,
	}

	o.logger.Info("crawl finished",
		"domains", len(domains),
		"products", result.TotalProducts(),
		"failedFetches", result.TotalFailures(),
		"duration", result.Duration,
	)

	return result, ctx.Err()
}
