// internal/security/sanitize.go
//
// Input sanitization for untrusted request data.
//
// Context
// -------
// Every resource handler funnels body fields through these helpers before
// the values reach the store.  Plain-text fields go through SanitizeString,
// rich content (blog bodies, event descriptions) through
// SanitizeRichTextHTML, and free-form JSON objects through SanitizeObject.
//
// SanitizeString is not an HTML sanitizer.  It removes the characters and
// patterns that let a plain-text value turn into markup or script when a
// client renders it carelessly.
//
// Notes
// -----
//   - All helpers are pure.  Malformed input degrades to an empty or safe
//     value; nothing here returns an error or panics.
//   - Lengths are counted in runes so truncation never splits a UTF-8
//     sequence.
package security

import (
	"regexp"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	// DefaultMaxLength applies when callers pass maxLength <= 0.
	DefaultMaxLength = 1000

	// DefaultRichTextMaxLength bounds rich-text bodies.
	DefaultRichTextMaxLength = 50000

	// DefaultMaxDepth bounds SanitizeObject recursion.
	DefaultMaxDepth = 10

	maxKeyLength = 100
)

var (
	jsScheme     = regexp.MustCompile(`(?i)javascript\s*:`)
	eventHandler = regexp.MustCompile(`(?i)\bon\w+\s*=`)
	angle        = strings.NewReplacer("<", "", ">", "")
)

// richText keeps the UGC element set plus class and target attributes so
// editor output survives.  Script and style bodies are dropped entirely,
// on* attributes are never allowed, and href/src only accept http, https,
// and mailto.
var richText = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_(blank|self)$`)).OnElements("a")
	return p
}()

// SanitizeString cleans a plain-text value.  Non-string input yields "".
func SanitizeString(input any, maxLength int) string {
	s, ok := input.(string)
	if !ok {
		return ""
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	s = angle.Replace(strings.TrimSpace(s))
	s = stripAll(jsScheme, s)
	s = stripAll(eventHandler, s)

	return truncate(s, maxLength)
}

// SanitizeRichTextHTML keeps markup but removes script blocks, inline event
// handlers, and javascript: URLs.  The input is truncated before the policy
// runs; a tag cut in half by truncation is dropped by the parser.
func SanitizeRichTextHTML(input any, maxLength int) string {
	s, ok := input.(string)
	if !ok {
		return ""
	}
	if maxLength <= 0 {
		maxLength = DefaultRichTextMaxLength
	}
	return richText.Sanitize(truncate(s, maxLength))
}

// SanitizeObject walks decoded JSON and sanitizes every string leaf and
// every map key.  Once maxDepth levels have been consumed the remaining
// subtree is replaced by an empty object.  Numbers, booleans, and nulls
// pass through unchanged.
//
// Keys that sanitize to "" are dropped.  When several keys sanitize to the
// same string ("<a>" and "a"), the one that sorts first in its raw form
// wins and the rest are dropped.
func SanitizeObject(obj any, maxDepth int) any {
	return sanitizeValue(obj, maxDepth)
}

func sanitizeValue(v any, depth int) any {
	switch t := v.(type) {
	case string:
		return SanitizeString(t, DefaultMaxLength)
	case map[string]any:
		if depth <= 0 {
			return map[string]any{}
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make(map[string]any, len(t))
		for _, k := range keys {
			key := SanitizeString(k, maxKeyLength)
			if key == "" {
				continue
			}
			if _, dup := out[key]; dup {
				continue
			}
			out[key] = sanitizeValue(t[k], depth-1)
		}
		return out
	case []any:
		if depth <= 0 {
			return map[string]any{}
		}
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = sanitizeValue(val, depth-1)
		}
		return out
	case []string:
		out := make([]string, len(t))
		for i, val := range t {
			out[i] = SanitizeString(val, DefaultMaxLength)
		}
		return out
	default:
		return v
	}
}

// stripAll removes matches until none remain, so nested payloads such as
// "javajavascript:script:" cannot reassemble themselves.
func stripAll(re *regexp.Regexp, s string) string {
	for re.MatchString(s) {
		s = re.ReplaceAllString(s, "")
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
