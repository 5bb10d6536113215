package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Classification is the result of matching a URL against the product rules.
type Classification int

const (
	// ClassPage marks a URL as an ordinary page: it is fetched and its
	// links are expanded.
	ClassPage Classification = iota

	// ClassProduct marks a URL as a product-detail page: it is recorded
	// in the result list and never expanded.
	ClassProduct
)

// String returns the classification name for logging.
func (c Classification) String() string {
	if c == ClassProduct {
		return "product"
	}
	return "page"
}

// RegexpPrefix marks a pattern as a regular expression rather than a plain
// path substring, e.g. "re:^/dp/[A-Z0-9]{10}$".
const RegexpPrefix = "re:"

// rule is one compiled match rule. Exactly one of substr/re is set.
type rule struct {
	raw    string
	substr string
	re     *regexp.Regexp
}

// Matcher classifies URLs as product or page using an ordered rule list.
// The rule set is fixed at construction, so Classify is pure: the same URL
// always yields the same classification.
//
// Design decision: Rules are data, not code. Ad-hoc string checks scattered
// through the crawl loop would be untestable per rule and unsafe to extend;
// an ordered list keeps first-match-wins semantics explicit and lets each
// rule be exercised on its own.
type Matcher struct {
	rules []rule
}

// NewMatcher compiles the given patterns into a Matcher. A plain pattern
// matches as a substring of the URL path; a pattern prefixed with "re:" is
// compiled as a regular expression and matched against the path.
//
// An empty pattern list is valid and classifies everything as a page:
// absence of evidence is non-product.
func NewMatcher(patterns []string) (*Matcher, error) {
	rules := make([]rule, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if expr, ok := strings.CutPrefix(p, RegexpPrefix); ok {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("invalid product pattern %q: %w", p, err)
			}
			rules = append(rules, rule{raw: p, re: re})
			continue
		}
		rules = append(rules, rule{raw: p, substr: p})
	}
	return &Matcher{rules: rules}, nil
}

// Classify returns the classification for a normalized URL.
// Rules are tried in order and the first match wins, so the cost is
// O(rules) per call. URLs that cannot be parsed classify as pages.
func (m *Matcher) Classify(rawURL string) Classification {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ClassPage
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, r := range m.rules {
		if r.re != nil {
			if r.re.MatchString(path) {
				return ClassProduct
			}
			continue
		}
		if strings.Contains(path, r.substr) {
			return ClassProduct
		}
	}
	return ClassPage
}

// Rules returns the raw patterns in match order, for diagnostics.
func (m *Matcher) Rules() []string {
	raw := make([]string, len(m.rules))
	for i, r := range m.rules {
		raw[i] = r.raw
	}
	return raw
}
