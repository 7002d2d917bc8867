// internal/slug/slug.go
//
// URL slug helper.
//
// Rules
// -----
//  1. Decompose accented letters and drop the combining marks, so
//     "Café Olé" reads as "cafe ole".
//  2. Lower-case everything.
//  3. Any run of characters outside [a-z0-9] becomes one "-".
//  4. Trim leading and trailing "-".
//  5. Cap at MaxLength bytes, then trim a trailing "-" left by the cut.
//  6. An empty result becomes "item".
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxLength is the longest slug Make returns.
const MaxLength = 100

// Make converts a title to a lower-kebab ASCII slug.
func Make(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	dash := false
	for _, r := range norm.NFD.String(strings.ToLower(title)) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash:
			b.WriteByte('-')
			dash = true
		}
	}

	s := strings.Trim(b.String(), "-")
	if len(s) > MaxLength {
		s = strings.TrimRight(s[:MaxLength], "-")
	}
	if s == "" {
		return "item"
	}
	return s
}

// Valid reports whether s already has slug shape.
func Valid(s string) bool {
	return s != "" && len(s) <= MaxLength && Make(s) == s
}
