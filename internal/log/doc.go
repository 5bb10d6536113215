// Package log provides sanitized logging built on top of the standard
// slog package.
//
// Crawled pages are untrusted input, and fragments of them (URLs, hrefs,
// error messages wrapping server output) end up in log attributes. The
// SafeHandler sanitizes those attributes before they reach the output:
//   - Control characters are stripped so a hostile page cannot forge
//     log lines or corrupt the terminal
//   - Oversized values are truncated to keep one bad URL from flooding
//     the log
//   - Credential-bearing keys from site configuration (cookies,
//     authorization headers, tokens) are masked
//
// Even in verbose mode, credential values are masked to prevent accidental
// exposure of secrets in logs that may be shared or stored.
//
// # Usage
//
//	// Create a sanitized logger
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("request sent",
//	    "cookie", "session=abc123",  // Will be masked
//	    "url", "https://shop.example.com/product/1",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
