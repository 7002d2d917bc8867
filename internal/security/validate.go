// internal/security/validate.go
//
// Format validators and the required-field check used by every handler.
package security

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxEmailLength = 255

var v = validator.New()

// Validation reports the outcome of ValidateRequired.
type Validation struct {
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing"`
}

// IsValidEmail reports whether s is a plausible mailbox address of at most
// 255 characters.
func IsValidEmail(s string) bool {
	if s == "" || len(s) > maxEmailLength {
		return false
	}
	return v.Var(s, "email") == nil
}

// IsValidURL accepts absolute http and https URLs with a host.
func IsValidURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}
	return v.Var(s, "url") == nil
}

// ValidateRequired lists the fields that are absent, null, or blank in
// data, preserving the order of fields.
func ValidateRequired(data map[string]any, fields []string) Validation {
	missing := make([]string, 0, len(fields))
	for _, f := range fields {
		val, ok := data[f]
		if !ok || val == nil {
			missing = append(missing, f)
			continue
		}
		if s, isStr := val.(string); isStr && strings.TrimSpace(s) == "" {
			missing = append(missing, f)
		}
	}
	return Validation{Valid: len(missing) == 0, Missing: missing}
}
