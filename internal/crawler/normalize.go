package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Normalization rejection errors.
// A rejected candidate is never enqueued; callers count it and move on.
var (
	// ErrMalformedURL is returned when a candidate cannot be parsed at all.
	ErrMalformedURL = errors.New("malformed url")

	// ErrUnsupportedScheme is returned for non-http(s) references such as
	// javascript:, mailto:, tel:, and data: URLs.
	ErrUnsupportedScheme = errors.New("unsupported url scheme")

	// ErrNoHost is returned when a candidate resolves to a URL without a host.
	ErrNoHost = errors.New("url has no host")
)

// Normalize resolves href against the page it was found on and returns the
// canonical absolute form. It is a pure function: the same inputs always
// produce the same output, which is what makes visited-set deduplication
// correct.
//
// Canonicalization rules:
//   - relative references resolve against base
//   - scheme and host are lowercased
//   - default ports are stripped (:80 for http, :443 for https)
//   - the fragment is dropped
//   - an empty path becomes "/" and non-root trailing slashes are trimmed,
//     so /shop and /shop/ deduplicate to the same URL
func Normalize(href string, base *url.URL) (string, error) {
	u, err := normalizeReference(href, base)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// NormalizeSeed canonicalizes an operator-supplied domain or URL into the
// root URL a domain crawl starts from. Bare hostnames get an https scheme.
// It returns the seed URL and the lowercased hostname that defines the
// crawl's domain boundary.
func NormalizeSeed(target string) (seedURL, host string, err error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", "", fmt.Errorf("%w: empty target", ErrMalformedURL)
	}

	// A bare hostname like "example.com" parses as a path, not a host.
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}

	u, err := normalizeReference(target, nil)
	if err != nil {
		return "", "", err
	}
	return u.String(), u.Hostname(), nil
}

// normalizeReference is the shared canonicalization core. A nil base means
// href must already be absolute.
func normalizeReference(href string, base *url.URL) (*url.URL, error) {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return nil, fmt.Errorf("%w: empty reference", ErrMalformedURL)
	}

	u, err := url.Parse(href)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}

	// Reject pseudo-schemes before resolution; resolving them against an
	// http base would silently mangle them into relative paths.
	if scheme := strings.ToLower(u.Scheme); scheme != "" && scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}

	if base != nil {
		u = base.ResolveReference(u)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}

	u.Host = strings.ToLower(u.Host)
	if u.Host == "" {
		return nil, ErrNoHost
	}

	// Strip default ports so example.com and example.com:443 deduplicate.
	if port := u.Port(); port != "" {
		if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
			u.Host = u.Hostname()
		}
	}

	u.Fragment = ""
	u.RawFragment = ""

	switch {
	case u.Path == "":
		u.Path = "/"
	case u.Path != "/" && strings.HasSuffix(u.Path, "/"):
		u.Path = strings.TrimRight(u.Path, "/")
		u.RawPath = ""
		if u.Path == "" {
			u.Path = "/"
		}
	}

	return u, nil
}
