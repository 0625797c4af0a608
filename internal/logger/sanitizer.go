package logger

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Sanitizer masks sensitive data in named query parameters to prevent
// accidental logging of secrets. A parameter is considered sensitive when its
// key name matches a sensitive field pattern, or when the SQL text binds it
// directly to a sensitive column ("password = {:p3}").
type Sanitizer struct {
	sensitiveFields []string
	maskValue       string
	// keyPatterns match parameter key names.
	keyPatterns []*regexp.Regexp
	// bindPatterns capture the key bound next to a sensitive column in SQL.
	bindPatterns []*regexp.Regexp
}

// NewSanitizer creates a new sanitizer with the specified sensitive field names.
// If no fields are provided, a default set of common sensitive field names is used.
func NewSanitizer(sensitiveFields []string) *Sanitizer {
	if len(sensitiveFields) == 0 {
		// Default sensitive field names (common patterns)
		sensitiveFields = []string{
			"password", "passwd", "pwd",
			"token", "api_key", "apikey", "api_token",
			"secret", "auth", "authorization",
			"credit_card", "card_number", "cvv", "cvc",
			"ssn", "social_security",
			"private_key", "priv_key",
		}
	}

	keyPatterns := make([]*regexp.Regexp, 0, len(sensitiveFields))
	bindPatterns := make([]*regexp.Regexp, 0, len(sensitiveFields))
	for _, field := range sensitiveFields {
		quoted := regexp.QuoteMeta(field)
		keyPatterns = append(keyPatterns,
			regexp.MustCompile(`(?i)\b`+quoted+`\b`))
		// Column compared or assigned straight to a named placeholder.
		bindPatterns = append(bindPatterns,
			regexp.MustCompile(`(?i)\b`+quoted+`\b\s*(?:=|!=|<>|<=|>=|<|>|LIKE|NOT\s+LIKE)\s*\{:(\w+)\}`))
	}

	return &Sanitizer{
		sensitiveFields: sensitiveFields,
		maskValue:       "***REDACTED***",
		keyPatterns:     keyPatterns,
		bindPatterns:    bindPatterns,
	}
}

// MaskParams masks sensitive named parameters based on key names and on
// sensitive columns detected in the SQL text. It returns a new map with
// sensitive values replaced by the mask value; the original map is not
// modified. If nothing is sensitive the original map is returned as-is.
func (s *Sanitizer) MaskParams(sql string, params map[string]interface{}) map[string]interface{} {
	if len(params) == 0 {
		return params
	}

	sensitive := make(map[string]bool)

	for key := range params {
		for _, pattern := range s.keyPatterns {
			if pattern.MatchString(key) {
				sensitive[key] = true
				break
			}
		}
	}

	for _, pattern := range s.bindPatterns {
		for _, match := range pattern.FindAllStringSubmatch(sql, -1) {
			if _, ok := params[match[1]]; ok {
				sensitive[match[1]] = true
			}
		}
	}

	if len(sensitive) == 0 {
		return params
	}

	masked := make(map[string]interface{}, len(params))
	for key, value := range params {
		if sensitive[key] {
			masked[key] = s.maskValue
		} else {
			masked[key] = value
		}
	}

	return masked
}

// FormatParams converts named parameters to a safe string representation for
// logging, with keys in sorted order for deterministic output. Sensitive
// values should be masked using MaskParams before calling this.
func (s *Sanitizer) FormatParams(params map[string]interface{}) string {
	if len(params) == 0 {
		return "{}"
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = key + "=" + s.formatValue(params[key])
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// formatValue formats a single parameter value for logging.
// Truncates very long strings to prevent log pollution.
func (s *Sanitizer) formatValue(v interface{}) string {
	if v == nil {
		return "NULL"
	}

	str := fmt.Sprintf("%v", v)

	// Truncate very long values
	const maxLen = 100
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}

	return str
}
