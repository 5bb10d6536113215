package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/shopscan/shopscan/internal/model"
)

// FailReason categorizes why a fetch ended without a usable page.
type FailReason string

const (
	// ReasonHTTPStatus means the server answered with status >= 400.
	// Content errors are not transient, so these are never retried.
	ReasonHTTPStatus FailReason = "http_status"

	// ReasonTransient means every attempt failed at the transport level
	// (connection refused, DNS failure, timeout) and the retry budget
	// is exhausted.
	ReasonTransient FailReason = "transient"

	// ReasonNonHTML means the response succeeded but its content type is
	// not HTML, so there is nothing to classify or parse.
	ReasonNonHTML FailReason = "non_html"
)

// FetchError is the terminal failure of one URL's fetch. It is a first-class
// return value, never a panic: a failed URL is counted and skipped while the
// crawl goes on.
type FetchError struct {
	// URL is the URL whose fetch failed.
	URL string

	// Reason categorizes the failure.
	Reason FailReason

	// StatusCode is set when Reason is ReasonHTTPStatus.
	StatusCode int

	// Err is the underlying transport error, when there is one.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	switch e.Reason {
	case ReasonHTTPStatus:
		return fmt.Sprintf("fetch %s: http status %d", e.URL, e.StatusCode)
	case ReasonNonHTML:
		return fmt.Sprintf("fetch %s: non-html content", e.URL)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

// Unwrap returns the underlying transport error, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher performs single HTTP GET requests with a retry budget and
// exponential backoff. It holds no mutable state between calls, so one
// Fetcher is safely shared by every domain crawler in a run.
//
// Design decision: We require an external http.Client rather than creating
// one internally because:
//  1. The per-request timeout belongs to the client configuration
//  2. Connection pooling should be shared across domains
//  3. Tests can inject httptest server clients
type Fetcher struct {
	// client is the HTTP client used for all requests.
	client *http.Client

	// userAgent is sent as the User-Agent header.
	userAgent string

	// headers are extra headers added to every request.
	headers map[string]string

	// retries is the number of additional attempts after the first
	// failed one. Only transport errors consume the budget.
	retries int

	// backoff is the delay before the first retry; it doubles per attempt.
	backoff time.Duration

	// maxBodySize caps how many body bytes are read.
	maxBodySize int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets the User-Agent header for all requests.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHeaders sets extra headers added to every request, such as a
// site-specific cookie or authorization header.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithRetryBudget sets how many times a transport failure is retried.
// A budget of 3 means up to three attempts in total.
func WithRetryBudget(attempts int) FetcherOption {
	return func(f *Fetcher) {
		if attempts > 0 {
			f.retries = attempts - 1
		}
	}
}

// WithBackoff sets the delay before the first retry. Subsequent retries
// double the delay.
func WithBackoff(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.backoff = d
		}
	}
}

// WithMaxBodySize sets the maximum number of response body bytes to read.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// NewFetcher creates a Fetcher using the given HTTP client.
// The client's Timeout field is the per-attempt timeout.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		userAgent:   "shopscan/1.0 (+https://github.com/shopscan/shopscan)",
		retries:     2,
		backoff:     500 * time.Millisecond,
		maxBodySize: model.MaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs an HTTP GET of rawURL and returns the page.
//
// Failure handling follows the crawl error taxonomy:
//   - transport errors are retried with exponential backoff until the
//     budget runs out, then returned as a *FetchError (ReasonTransient)
//   - HTTP status >= 400 fails immediately without retry
//   - non-HTML responses fail with ReasonNonHTML so no parse work is wasted
//
// Context cancellation is returned as the context's error so callers can
// tell a stopped crawl apart from a broken URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.Page, error) {
	var lastErr error
	delay := f.backoff

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return page, nil
		}

		// Terminal failures (status >= 400, non-HTML) are never retried.
		var fe *FetchError
		if errors.As(err, &fe) && fe.Reason != ReasonTransient {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		if attempt >= f.retries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return nil, &FetchError{URL: rawURL, Reason: ReasonTransient, Err: lastErr}
}

// fetchOnce performs a single GET attempt.
func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Reason: ReasonTransient, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.1")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Reason: ReasonTransient, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &FetchError{URL: rawURL, Reason: ReasonHTTPStatus, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	page := &model.Page{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: model.MediaType(contentType),
	}
	if !page.IsHTML() {
		return nil, &FetchError{URL: rawURL, Reason: ReasonNonHTML}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Reason: ReasonTransient, Err: err}
	}

	// Decode the body to UTF-8 based on the declared charset; pages on
	// older storefronts still ship ISO-8859-1 and friends. An unknown
	// charset falls back to the raw bytes.
	body := raw
	if decoded, err := charset.NewReader(bytes.NewReader(raw), contentType); err == nil {
		if converted, err := io.ReadAll(decoded); err == nil {
			body = converted
		}
	}
	page.Body = body
	page.TruncateBody()

	return page, nil
}
