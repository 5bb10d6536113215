package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode"
)

// sensitiveKeys contains attribute keys that are always masked.
// Site configurations can carry credentials (cookies, auth headers) that
// must not leak into log output.
var sensitiveKeys = map[string]bool{
	// HTTP headers
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,

	// Authentication
	"password":      true,
	"passwd":        true,
	"secret":        true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"api-key":       true,
	"access_token":  true,
	"refresh_token": true,

	// Session
	"session":    true,
	"session_id": true,
	"sessionid":  true,
	"sid":        true,
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// MaxAttrLen is the maximum length of a string attribute value.
// Longer values, typically URLs scraped from hostile or broken markup,
// are truncated with a trailing ellipsis.
const MaxAttrLen = 2048

// SafeHandler wraps an slog.Handler to sanitize attributes derived from
// crawled content. String values have control characters stripped and are
// truncated to MaxAttrLen; attributes under credential-bearing keys are
// masked entirely.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites stay ordinary slog calls with no sanitize helpers
type SafeHandler struct {
	// handler is the underlying slog handler that receives sanitized records.
	handler slog.Handler
}

// NewSafeHandler creates a new SafeHandler wrapping the given handler.
// All log attributes are sanitized before being passed to the underlying
// handler. If handler is nil, the returned SafeHandler uses
// slog.Default().Handler().
func NewSafeHandler(handler slog.Handler) *SafeHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SafeHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *SafeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it to the underlying handler.
func (h *SafeHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, sanitizeString(r.Message), r.PC)

	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are sanitized before being added.
func (h *SafeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &SafeHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *SafeHandler) WithGroup(name string) slog.Handler {
	return &SafeHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr sanitizes a single attribute, recursively handling groups.
func (h *SafeHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	// Handle groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	// Mask credential-bearing keys outright
	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	// Strings from crawled content get cleaned and bounded
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, sanitizeString(a.Value.String()))
	}

	return a
}

// containsSensitiveKeyword checks if the key contains sensitive keywords.
// Note: We intentionally exclude the bare "key" keyword as it causes false
// positives (e.g., "primary_key", "keyboard", "monkey"). Specific
// key-related patterns like "api_key" are covered by the sensitiveKeys map.
func containsSensitiveKeyword(key string) bool {
	sensitiveKeywords := []string{
		"password", "passwd", "secret", "token", "auth", "credential",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// sanitizeString strips control characters (including newlines, which would
// let crawled content forge log lines) and truncates oversized values.
func sanitizeString(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	if len(cleaned) > MaxAttrLen {
		return cleaned[:MaxAttrLen] + "..."
	}
	return cleaned
}

// NewLogger creates a new slog.Logger with sanitized text output.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Info
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or passed
// to components that accept *slog.Logger.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)

	return slog.New(NewSafeHandler(textHandler))
}

// NewJSONLogger creates a new slog.Logger with sanitized JSON output.
// Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(w, opts)

	return slog.New(NewSafeHandler(jsonHandler))
}
