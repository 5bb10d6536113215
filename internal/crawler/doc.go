// Package crawler implements the product-URL discovery engine.
//
// # Architecture
//
// The package is built from small, independently testable pieces:
//
//   - Normalize: canonicalizes candidate URLs against their source page
//   - Matcher: classifies a URL as product or plain page via ordered rules
//   - Fetcher: performs one HTTP GET with timeout, retry, and backoff
//   - ExtractLinks: streams raw hrefs out of (possibly malformed) HTML
//   - DomainCrawler: owns one domain's frontier and visited set
//   - Orchestrator: runs all domain crawlers and merges their results
//
// Design decision: We implement our own crawl loop rather than using a
// third-party crawling framework because:
//  1. The frontier and visited set must be exclusively owned per domain,
//     which frameworks with shared schedulers make hard to guarantee
//  2. Crawl bounds (max pages, max depth, in-flight fetches) need to be
//     enforced at dispatch time, not as after-the-fact filters
//  3. The loop is small; a framework would dwarf the problem
//
// # Concurrency
//
// Each DomainCrawler runs a single owner goroutine that holds the frontier
// and visited set, so neither needs locking. Fetches are dispatched to
// short-lived goroutines, bounded per domain by Bounds.Concurrency and
// globally by a semaphore shared through the Orchestrator. Failure of any
// single fetch, or of a whole domain, never propagates past its owner.
//
// # Usage
//
//	matcher, _ := crawler.NewMatcher(patterns)
//	fetcher := crawler.NewFetcher(httpClient, crawler.WithRetryBudget(3))
//	orch := crawler.NewOrchestrator(func(domain string, gate *semaphore.Weighted) (*crawler.DomainCrawler, error) {
//		return crawler.NewDomainCrawler(domain, fetcher, matcher, crawler.WithGate(gate))
//	})
//	report, err := orch.Run(ctx, domains)
package crawler
