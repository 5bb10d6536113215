package crawler

import (
	"io"
	"iter"

	"golang.org/x/net/html"
)

// ExtractLinks returns a lazy sequence of raw href values found in
// anchor-like elements (<a> and <area>) of an HTML document.
//
// The extractor is deliberately dumb: it does not normalize (the
// normalizer's job) and does not filter by domain (the domain crawler's
// job). That keeps it a pure, side-effect-free parser.
//
// Design decision: We use the streaming tokenizer rather than building a
// full DOM because:
//  1. Only href attributes matter here; a tree buys nothing
//  2. The tokenizer is tolerant of malformed markup, yielding a
//     best-effort partial sequence instead of failing the whole page
//  3. Lazy iteration lets the caller stop early without parsing the rest
func ExtractLinks(r io.Reader) iter.Seq[string] {
	return func(yield func(string) bool) {
		z := html.NewTokenizer(r)
		for {
			switch z.Next() {
			case html.ErrorToken:
				// io.EOF or a tokenizer error: either way the sequence
				// ends with whatever was extracted so far.
				return
			case html.StartTagToken, html.SelfClosingTagToken:
				name, hasAttr := z.TagName()
				if !hasAttr || !isAnchorTag(name) {
					continue
				}
				for {
					key, val, more := z.TagAttr()
					if string(key) == "href" && len(val) > 0 {
						if !yield(string(val)) {
							return
						}
					}
					if !more {
						break
					}
				}
			}
		}
	}
}

// isAnchorTag reports whether the tag carries navigable hrefs.
func isAnchorTag(name []byte) bool {
	switch string(name) {
	case "a", "area":
		return true
	default:
		return false
	}
}
