package validation

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"shortfactory/internal/services"
)

// maxInputLength bounds any single string value accepted at a boundary;
// inputs longer than this are rejected outright rather than truncated.
const maxInputLength = 10000

// dangerousPatterns mirrors the fixed rejection list every boundary
// input is checked against: XSS injection, protocol smuggling, directory
// traversal, generic-evaluation invocation, and control characters (tab,
// newline and carriage return are allowed).
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`),
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)data:.*base64`),
	regexp.MustCompile(`(?i)file://`),
	regexp.MustCompile(`\.\./`),
	regexp.MustCompile(`\.\.\\`),
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)exec\s*\(`),
	regexp.MustCompile(`__import__`),
}

// dangerousInputMessage is the message of the services.ErrValidation
// returned when a value matches one of the dangerous patterns.
const dangerousInputMessage = "input contains a rejected pattern (script tag, javascript:, directory traversal, or eval/exec invocation)"

// CheckSafe rejects a string containing any dangerous pattern or exceeding
// maxInputLength. Every stage Prepare method should run free-text fields
// (concept text, titles, descriptions) through this before use.
func CheckSafe(field, value string) error {
	if len(value) > maxInputLength {
		return services.Wrap(services.ErrValidation, "validation", field,
			"input exceeds maximum length", nil)
	}
	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(value) {
			return services.Wrap(services.ErrValidation, "validation", field, dangerousInputMessage, nil)
		}
	}
	return nil
}

// SafeInt parses value as an integer within [min, max], returning
// fallback and false when parsing fails or the result is out of bounds.
func SafeInt(value string, min, max int, fallback int) (int, bool) {
	trimmed := strings.TrimSpace(value)
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return fallback, false
	}
	if parsed < min || parsed > max {
		return fallback, false
	}
	return parsed, true
}

// SafeFloat parses value as a float64 within [min, max], returning
// fallback and false when parsing fails or the result is out of bounds.
func SafeFloat(value string, min, max float64, fallback float64) (float64, bool) {
	trimmed := strings.TrimSpace(value)
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback, false
	}
	if parsed < min || parsed > max {
		return fallback, false
	}
	return parsed, true
}

// SafeBool parses common truthy/falsy string spellings, returning
// fallback when value matches none of them.
func SafeBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on", "enabled":
		return true
	case "false", "0", "no", "off", "disabled":
		return false
	default:
		return fallback
	}
}

// SafeEnum returns value if it appears in allowed (case-sensitive),
// otherwise fallback.
func SafeEnum(value string, allowed []string, fallback string) string {
	for _, candidate := range allowed {
		if value == candidate {
			return value
		}
	}
	return fallback
}

// SafePathUnder resolves candidate relative to root and verifies the
// resolved path is still contained within root after symlink resolution,
// rejecting any directory-traversal escape including one hidden behind a
// symlink. Returns the cleaned absolute path.
func SafePathUnder(root, candidate string) (string, error) {
	if strings.TrimSpace(candidate) == "" {
		return "", services.Wrap(services.ErrValidation, "validation", "path", "path must not be empty", nil)
	}
	if err := CheckSafe("path", candidate); err != nil {
		return "", err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "validation", "path", "could not resolve root directory", err)
	}
	joined := filepath.Join(absRoot, candidate)
	resolved, err := filepath.Abs(joined)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "validation", "path", "could not resolve candidate path", err)
	}

	evalRoot, err := resolveSymlinks(absRoot)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "validation", "path", "could not resolve root symlinks", err)
	}
	evalResolved, err := resolveSymlinks(resolved)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "validation", "path", "could not resolve candidate symlinks", err)
	}

	rel, err := filepath.Rel(evalRoot, evalResolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", services.Wrap(services.ErrValidation, "validation", "path",
			"resolved path escapes the allowed root directory", nil)
	}
	return resolved, nil
}

// resolveSymlinks resolves symlinks along path, walking up to the nearest
// existing ancestor and rejoining the remainder when path (or a component
// of it) has not been created yet — the common case for an artifact path
// computed before the file is written.
func resolveSymlinks(path string) (string, error) {
	if _, err := os.Lstat(path); err == nil {
		return filepath.EvalSymlinks(path)
	}
	parent := filepath.Dir(path)
	if parent == path {
		return path, nil
	}
	resolvedParent, err := resolveSymlinks(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(path)), nil
}
