package logging

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeyPattern matches attribute keys that carry a credential value,
// regardless of nesting group prefix (e.g. "textgen.api_key").
var sensitiveKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|token|secret|password|passwd|auth[_-]?header|credential)`)

// pemBlockPattern matches PEM-encoded key material embedded in a string
// value, independent of which attribute key it was logged under.
var pemBlockPattern = regexp.MustCompile(`-----BEGIN [A-Z ]+-----[\s\S]*?-----END [A-Z ]+-----`)

const redactedPlaceholder = "***"

// redactingHandler wraps an inner slog.Handler and scrubs attribute values
// that look like secrets before the record reaches it. Every logger built
// by this package is wrapped, so no call site needs to remember to redact.
type redactingHandler struct {
	inner slog.Handler
}

func newRedactingHandler(inner slog.Handler) slog.Handler {
	return &redactingHandler{inner: inner}
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *redactingHandler) Handle(ctx context.Context, record slog.Record) error {
	scrubbed := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		scrubbed.AddAttrs(redactAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, scrubbed)
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		redacted[i] = redactAttr(attr)
	}
	return &redactingHandler{inner: h.inner.WithAttrs(redacted)}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	return &redactingHandler{inner: h.inner.WithGroup(name)}
}

func redactAttr(attr slog.Attr) slog.Attr {
	attr.Value = attr.Value.Resolve()
	if sensitiveKeyPattern.MatchString(attr.Key) {
		return slog.String(attr.Key, redactedPlaceholder)
	}
	if attr.Value.Kind() == slog.KindGroup {
		values := attr.Value.Group()
		redacted := make([]slog.Attr, len(values))
		for i, nested := range values {
			redacted[i] = redactAttr(nested)
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(redacted...)}
	}
	if attr.Value.Kind() == slog.KindString {
		if s := attr.Value.String(); pemBlockPattern.MatchString(s) {
			return slog.String(attr.Key, redactedPlaceholder)
		}
	}
	return attr
}

// RedactString applies the same PEM-block scrubbing rule used for log
// attribute values to an arbitrary string, for callers that build a single
// log message instead of structured fields.
func RedactString(value string) string {
	if pemBlockPattern.MatchString(value) {
		return pemBlockPattern.ReplaceAllString(value, redactedPlaceholder)
	}
	return value
}

// looksSensitiveKey reports whether a bare key name (no group prefix) is
// one of the standard secret-shaped identifiers. Exposed for stages that
// build ad hoc key/value pairs before handing them to a logger.
func looksSensitiveKey(key string) bool {
	return sensitiveKeyPattern.MatchString(strings.TrimSpace(key))
}
