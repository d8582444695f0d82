// Package redact strips secrets from content before it reaches session
// memory. Redaction is a write-path gate: every message, fact, and summary
// passes through here before persistence.
package redact

import "regexp"

// Placeholder replaces the value portion of every match.
const Placeholder = "[REDACTED]"

// Built-in patterns, always applied. Each keeps its labeled prefix (the
// first capture group) and replaces only the secret value, so redacted
// content stays readable as a redaction notice. Applying the filter to its
// own output is a no-op.
var builtinPatterns = []*regexp.Regexp{
	// Authorization headers
	regexp.MustCompile(`(?i)(Authorization:\s*Bearer\s+)\S+`),
	regexp.MustCompile(`(?i)(Authorization:\s*Basic\s+)\S+`),
	// Bearer tokens standalone
	regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9\-._~+/]+=*`),
	// API keys in common assignment forms
	regexp.MustCompile(`(?i)((?:api[_-]?key|apikey|api_secret|secret_key)\s*[:=]\s*)['"]?[A-Za-z0-9\-._~+/]{16,}['"]?`),
	// sk-... style keys (OpenAI, Stripe, ...)
	regexp.MustCompile(`\b()sk-[A-Za-z0-9\-]{20,}\b`),
	// OAuth authorization codes
	regexp.MustCompile(`(?i)(code=)[A-Za-z0-9\-._~+/]{16,}`),
	// Long token-like values after common secret labels
	regexp.MustCompile(`(?i)((?:token|secret|password|credentials?)\s*[:=]\s*)['"]?[A-Za-z0-9\-._~+/]{20,}['"]?`),
}

// Filter applies the built-in redaction patterns plus an optional
// caller-supplied denylist.
type Filter struct {
	extra []*regexp.Regexp
}

// NewFilter compiles the denylist patterns (case-insensitive) into a filter.
// An invalid pattern is skipped, not fatal.
func NewFilter(denylist []string) *Filter {
	f := &Filter{}
	for _, pattern := range denylist {
		compiled, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			continue
		}
		f.extra = append(f.extra, compiled)
	}
	return f
}

// Redact replaces sensitive values in text with the placeholder. Built-in
// patterns run first, then the denylist; denylist matches are replaced
// whole.
func (f *Filter) Redact(text string) string {
	if text == "" {
		return text
	}

	result := text
	for _, pattern := range builtinPatterns {
		result = pattern.ReplaceAllString(result, "${1}"+Placeholder)
	}
	for _, pattern := range f.extra {
		result = pattern.ReplaceAllString(result, Placeholder)
	}

	return result
}

// Redact applies only the built-in patterns.
func Redact(text string) string {
	return (&Filter{}).Redact(text)
}
