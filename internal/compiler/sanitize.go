package compiler

import (
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxURLLen truncates emitted hrefs to this length with "..." elision
// (§6 "URL sanitation policy": "truncated to ≤ ~200 characters").
const maxURLLen = 200

// redactedValue replaces the value of every sensitive input whose value is
// non-empty, whatever the configuration; an empty value stays empty
// (§4.2 step 7a).
const redactedValue = "********"

// DefaultSensitiveQueryParams is the configured set of query parameter
// names stripped from any emitted URL (§4.2 step 7b, §6).
var DefaultSensitiveQueryParams = map[string]bool{
	"token":        true,
	"api_key":      true,
	"apikey":       true,
	"access_token": true,
	"auth":         true,
	"key":          true,
	"password":     true,
	"secret":       true,
	"session":      true,
	"sid":          true,
	"csrf":         true,
	"csrf_token":   true,
}

// sensitiveInputTypes never emit their raw value (§4.2 step 7a).
var sensitiveInputTypes = map[string]bool{
	"password": true,
}

// stripTagsPolicy strips all markup from any attribute value sourced from
// page text (labels, placeholders) before it reaches the XML renderer, so
// a hostile page can never smuggle markup through an "attribute" that the
// renderer would otherwise treat as plain text (§3 DOMAIN STACK: bluemonday
// wiring). StrictPolicy strips every tag, keeping only text content.
var stripTagsPolicy = bluemonday.StrictPolicy()

// cleanText strips embedded markup from page-sourced text.
func cleanText(s string) string {
	return stripTagsPolicy.Sanitize(s)
}

// Sanitizer applies the URL/value sanitation policy during attribute
// extraction (§4.2 step 7, §6).
type Sanitizer struct {
	SensitiveQueryParams map[string]bool
}

// NewSanitizer creates a Sanitizer with the default sensitive parameter set.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{SensitiveQueryParams: DefaultSensitiveQueryParams}
}

// SanitizeURL strips configured sensitive query parameters (case
// insensitive) and truncates the result, never emitting them verbatim
// (invariant I5).
func (s *Sanitizer) SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return truncateURL(raw)
	}

	q := u.Query()
	changed := false
	for key := range q {
		if s.SensitiveQueryParams[strings.ToLower(key)] {
			q.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return truncateURL(u.String())
}

func truncateURL(s string) string {
	if len(s) <= maxURLLen {
		return s
	}
	return s[:maxURLLen-3] + "..."
}

// RedactIfSensitive returns redactedValue when inputType is a sensitive
// input type and value is non-empty, otherwise returns value unchanged.
// An empty value is left untouched so downstream "is this field filled"
// checks can still distinguish an empty sensitive field from a filled one.
func RedactIfSensitive(inputType, value string) string {
	if value != "" && sensitiveInputTypes[strings.ToLower(inputType)] {
		return redactedValue
	}
	return value
}
