// Package slug canonicalizes free-text identifiers into the constrained form
// used for every topic map identifier: lowercase ASCII words joined by hyphens.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/teranos/topicdb/errors"
)

// UniversalScope is the reserved sentinel that passes through unchanged.
const UniversalScope = "*"

var (
	// nonAlphanumeric matches any run of characters outside [a-z0-9].
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
)

// Normalize converts s into a slug.
//
// 1. Returns the universal scope sentinel untouched.
// 2. Decomposes to NFD and drops combining marks (é -> e).
// 3. Lowercases.
// 4. Replaces every run of non [a-z0-9] characters with a single hyphen.
// 5. Trims leading and trailing hyphens.
//
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(s string) string {
	if s == UniversalScope {
		return s
	}

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}

	result = strings.ToLower(result)
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Required normalizes s and fails with an empty field error naming field
// when nothing is left.
func Required(field, s string) (string, error) {
	normalized := Normalize(s)
	if normalized == "" {
		return "", errors.NewEmptyFieldError(field)
	}
	return normalized, nil
}

// Optional normalizes s, substituting fallback when s normalizes to nothing.
func Optional(s, fallback string) string {
	if normalized := Normalize(s); normalized != "" {
		return normalized
	}
	return fallback
}

// Title derives a display name from a slug: "urgent-task" -> "Urgent Task".
func Title(identifier string) string {
	words := strings.Split(identifier, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.TrimSpace(strings.Join(words, " "))
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
