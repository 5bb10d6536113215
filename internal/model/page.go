package model

import "strings"

// MaxBodySize is the maximum number of response body bytes kept per page.
// Larger bodies are truncated; product listing pages rarely exceed this,
// and unbounded reads would let a single hostile page exhaust memory.
const MaxBodySize = 5 * 1024 * 1024 // 5 MB

// Page represents a single fetched web page.
// It carries only what the crawl engine needs: enough to classify the URL
// and to extract outgoing links, nothing more.
type Page struct {
	// URL is the normalized absolute URL that was fetched.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the media type from the Content-Type header,
	// without parameters (e.g. "text/html", not "text/html; charset=utf-8").
	ContentType string `json:"content_type"`

	// Body is the response body, decoded to UTF-8 and truncated to
	// MaxBodySize. Empty for failed fetches.
	Body []byte `json:"-"`
}

// IsHTML reports whether the page's content type indicates an HTML document.
func (p *Page) IsHTML() bool {
	return p.ContentType == "text/html" || p.ContentType == "application/xhtml+xml"
}

// TruncateBody enforces the MaxBodySize limit on the body.
// Call this after setting Body.
func (p *Page) TruncateBody() {
	if len(p.Body) > MaxBodySize {
		p.Body = p.Body[:MaxBodySize]
	}
}

// MediaType extracts the bare media type from a Content-Type header value.
// Parameters such as charset are dropped and the result is lowercased.
// An empty header yields an empty string.
func MediaType(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}
