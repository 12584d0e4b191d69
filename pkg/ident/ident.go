// Package ident validates and normalizes the identifiers used for attribute
// and rule names.
//
// A valid identifier matches `^[a-z_]+$`.
package ident

import (
	"regexp"
	"strings"
	"unicode"
)

var pattern = regexp.MustCompile(`^[a-z_]+$`)

// Valid reports whether s is a valid identifier.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// Normalize converts s into identifier form: camel-case boundaries and
// hyphens become underscores, spaces become underscores, and the result is
// lower-cased. For example "minLength", "MinLength" and "min length" all
// become "min_length".
//
// Normalize does not guarantee a valid result; digits and other characters
// are kept, so callers should still check [Valid].
func Normalize(s string) string {
	var b strings.Builder

	b.Grow(len(s) + 4)

	runes := []rune(strings.TrimSpace(s))
	for i, r := range runes {
		switch {
		case r == ' ' || r == '-':
			b.WriteRune('_')

		case unicode.IsUpper(r):
			if i > 0 && needsBreak(runes, i) {
				b.WriteRune('_')
			}

			b.WriteRune(unicode.ToLower(r))

		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// needsBreak reports whether an underscore belongs before the upper-case
// rune at i. Acronyms stay together ("HTTPServer" -> "http_server").
func needsBreak(runes []rune, i int) bool {
	prev := runes[i-1]
	if prev == '_' || prev == ' ' || prev == '-' {
		return false
	}

	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
