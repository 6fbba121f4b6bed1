package logging

import (
	"net/http"
	"regexp"
	"strings"
)

// Header and config keys whose values never reach the logs.
var sensitiveFields = []string{
	"authorization",
	"auth_key",
	"authkey",
	"secret",
	"token",
	"password",
	"credential",
	"cookie",
}

var secretPatterns = []*regexp.Regexp{
	// The channel service's static credential: "authkey <value>".
	regexp.MustCompile(`(?i)authkey\s+\S+`),
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{8,}`),
	regexp.MustCompile(`(?i)(key|token|secret|password|auth)[=:]["']?[a-zA-Z0-9+/=_-]{8,}["']?`),
}

// RedactedValue is the replacement for sensitive values.
const RedactedValue = "[REDACTED]"

// Redact replaces credential-looking substrings in s.
func Redact(s string) string {
	result := s
	for _, pattern := range secretPatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// IsSensitiveField checks if a header or field name is considered sensitive.
func IsSensitiveField(name string) bool {
	lowerName := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lowerName, field) {
			return true
		}
	}
	return false
}

// RedactHeaders returns a loggable copy of h with sensitive values masked.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if IsSensitiveField(name) {
			out[name] = RedactedValue
			continue
		}
		out[name] = Redact(strings.Join(values, ","))
	}
	return out
}
