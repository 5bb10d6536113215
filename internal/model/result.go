package model

import "time"

// DomainReport is the terminal state of one domain's crawl.
// It is produced exactly once per domain, after the domain crawler drains,
// and is never mutated afterwards.
//
// Design decision: ProductURLs is an ordered slice rather than a set
// because discovery order is part of the contract. Deduplication is the
// crawler's job; a DomainReport never contains duplicates.
type DomainReport struct {
	// Domain is the hostname this report covers.
	Domain string `json:"domain"`

	// SeedURL is the normalized root URL the crawl started from.
	SeedURL string `json:"seed_url"`

	// ProductURLs are the discovered product-detail URLs, deduplicated,
	// in the order their fetches completed.
	ProductURLs []string `json:"product_urls"`

	// PagesFetched is the number of fetches issued for this domain,
	// successful or not. Never exceeds the configured max-pages bound.
	PagesFetched int `json:"pages_fetched"`

	// FailedFetches counts fetches that ended in a terminal failure
	// (HTTP error status, exhausted retries, or non-HTML content).
	FailedFetches int `json:"failed_fetches"`

	// SkippedLinks counts discovered hrefs that were dropped before
	// enqueueing: malformed, unsupported scheme, or pointing off-domain.
	SkippedLinks int `json:"skipped_links"`

	// Cancelled is true when the crawl was cut short by context
	// cancellation rather than frontier exhaustion or a crawl bound.
	Cancelled bool `json:"cancelled,omitempty"`

	// Duration is the wall-clock time the domain crawl took.
	Duration time.Duration `json:"duration"`
}

// CrawlReport is the result mapping for a whole run: one DomainReport per
// configured domain, in configuration order.
type CrawlReport struct {
	// StartedAt is when the orchestrator began the run.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall-clock time of the whole run.
	Duration time.Duration `json:"duration"`

	// Domains holds one report per configured domain, in the order the
	// domains were supplied.
	Domains []*DomainReport `json:"domains"`
}

// ProductMap returns the domain -> product URLs mapping.
// Domains that yielded nothing map to an empty (non-nil) slice, so a fully
// failed domain still appears in serialized output.
func (r *CrawlReport) ProductMap() map[string][]string {
	m := make(map[string][]string, len(r.Domains))
	for _, d := range r.Domains {
		urls := d.ProductURLs
		if urls == nil {
			urls = []string{}
		}
		m[d.Domain] = urls
	}
	return m
}

// TotalProducts returns the number of product URLs across all domains.
func (r *CrawlReport) TotalProducts() int {
	total := 0
	for _, d := range r.Domains {
		total += len(d.ProductURLs)
	}
	return total
}

// TotalFailures returns the number of failed fetches across all domains.
func (r *CrawlReport) TotalFailures() int {
	total := 0
	for _, d := range r.Domains {
		total += d.FailedFetches
	}
	return total
}
