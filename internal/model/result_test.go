package model

import (
	"reflect"
	"testing"
)

// TestCrawlReportProductMap tests the domain to product URLs mapping.
func TestCrawlReportProductMap(t *testing.T) {
	t.Parallel()

	t.Run("maps all domains including empty ones", func(t *testing.T) {
		t.Parallel()

		report := &CrawlReport{
			Domains: []*DomainReport{
				{
					Domain:      "example1.com",
					ProductURLs: []string{"https://example1.com/product/1", "https://example1.com/item/2"},
				},
				{
					Domain:      "example2.com",
					ProductURLs: nil, // every fetch failed
				},
			},
		}

		got := report.ProductMap()
		want := map[string][]string{
			"example1.com": {"https://example1.com/product/1", "https://example1.com/item/2"},
			"example2.com": {},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ProductMap() = %v, want %v", got, want)
		}

		// A failed domain must map to an empty slice, not nil,
		// so it serializes as [] rather than null.
		if got["example2.com"] == nil {
			t.Error("failed domain mapped to nil slice")
		}
	})
}

// TestCrawlReportTotals tests the aggregate counters.
func TestCrawlReportTotals(t *testing.T) {
	t.Parallel()

	report := &CrawlReport{
		Domains: []*DomainReport{
			{Domain: "a.com", ProductURLs: []string{"u1", "u2"}, FailedFetches: 1},
			{Domain: "b.com", ProductURLs: []string{"u3"}, FailedFetches: 4},
			{Domain: "c.com"},
		},
	}

	if got := report.TotalProducts(); got != 3 {
		t.Errorf("TotalProducts() = %d, want 3", got)
	}
	if got := report.TotalFailures(); got != 5 {
		t.Errorf("TotalFailures() = %d, want 5", got)
	}
}
