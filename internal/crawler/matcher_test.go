package crawler

import "testing"

// defaultTestPatterns mirrors the stock product rules used in configuration.
var defaultTestPatterns = []string{"/product/", "/item/", "/p/", "/catalogue/"}

// TestMatcherClassify tests rule-based URL classification.
func TestMatcherClassify(t *testing.T) {
	t.Parallel()

	matcher, err := NewMatcher(defaultTestPatterns)
	if err != nil {
		t.Fatalf("failed to create matcher: %v", err)
	}

	tests := []struct {
		name string
		url  string
		want Classification
	}{
		{name: "product segment", url: "https://example1.com/product/123", want: ClassProduct},
		{name: "item segment", url: "https://example1.com/item/456", want: ClassProduct},
		{name: "short p segment", url: "https://example1.com/p/999", want: ClassProduct},
		{name: "catalogue segment", url: "https://books.toscrape.com/catalogue/some-book_1", want: ClassProduct},
		{name: "about page", url: "https://example1.com/about", want: ClassPage},
		{name: "root page", url: "https://example1.com/", want: ClassPage},
		{name: "product in query only", url: "https://example1.com/search?q=/product/", want: ClassPage},
		{name: "prefix but not segment", url: "https://example1.com/products-overview", want: ClassPage},
		{name: "unparseable url", url: "https://example1.com/%zz", want: ClassPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := matcher.Classify(tt.url); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

// TestMatcherRegexpRules tests "re:" prefixed patterns.
func TestMatcherRegexpRules(t *testing.T) {
	t.Parallel()

	t.Run("anchored regexp matches path", func(t *testing.T) {
		t.Parallel()

		matcher, err := NewMatcher([]string{`re:^/dp/[A-Z0-9]{10}$`})
		if err != nil {
			t.Fatalf("failed to create matcher: %v", err)
		}

		if got := matcher.Classify("https://shop.example.com/dp/B00X4WHP5E"); got != ClassProduct {
			t.Errorf("expected product, got %v", got)
		}
		if got := matcher.Classify("https://shop.example.com/dp/short"); got != ClassPage {
			t.Errorf("expected page, got %v", got)
		}
	})

	t.Run("invalid regexp rejected at construction", func(t *testing.T) {
		t.Parallel()

		if _, err := NewMatcher([]string{"re:["}); err == nil {
			t.Error("expected error for invalid regexp pattern")
		}
	})
}

// TestMatcherZeroRules verifies that with no rules nothing is ever
// classified as a product: absence of evidence is non-product.
func TestMatcherZeroRules(t *testing.T) {
	t.Parallel()

	matcher, err := NewMatcher(nil)
	if err != nil {
		t.Fatalf("failed to create matcher: %v", err)
	}

	urls := []string{
		"https://example1.com/product/123",
		"https://example1.com/item/456",
		"https://example1.com/",
	}
	for _, u := range urls {
		if got := matcher.Classify(u); got != ClassPage {
			t.Errorf("Classify(%q) with zero rules = %v, want page", u, got)
		}
	}
}

// TestMatcherPurity verifies that classification has no hidden state:
// the same URL always yields the same result.
func TestMatcherPurity(t *testing.T) {
	t.Parallel()

	matcher, err := NewMatcher(defaultTestPatterns)
	if err != nil {
		t.Fatalf("failed to create matcher: %v", err)
	}

	const target = "https://example1.com/product/123"
	first := matcher.Classify(target)
	for range 100 {
		if got := matcher.Classify(target); got != first {
			t.Fatalf("classification changed between calls: %v then %v", first, got)
		}
	}
}

// TestMatcherRules tests that raw patterns are reported in match order.
func TestMatcherRules(t *testing.T) {
	t.Parallel()

	patterns := []string{"/product/", "re:^/dp/", "/item/"}
	matcher, err := NewMatcher(patterns)
	if err != nil {
		t.Fatalf("failed to create matcher: %v", err)
	}

	got := matcher.Rules()
	if len(got) != len(patterns) {
		t.Fatalf("expected %d rules, got %d", len(patterns), len(got))
	}
	for i, p := range patterns {
		if got[i] != p {
			t.Errorf("rule %d = %q, want %q", i, got[i], p)
		}
	}
}
