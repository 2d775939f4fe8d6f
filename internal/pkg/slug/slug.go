package slug

import (
	"regexp"
	"strings"
	"unicode"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/text/unicode/norm"
)

const (
	MaxLength    = 250
	suffixLength = 6
	suffixChars  = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleHyphens = regexp.MustCompile(`-+`)
	validSlug       = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Make converts a title to a URL-safe slug.
// "Le Petit Prince" -> "le-petit-prince".
func Make(s string) string {
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > MaxLength-suffixLength-1 {
		s = strings.TrimRight(s[:MaxLength-suffixLength-1], "-")
	}
	return s
}

// WithSuffix appends a short random suffix, used when the plain slug is taken
// or the title has no ASCII letters at all.
func WithSuffix(base string) (string, error) {
	suffix, err := gonanoid.Generate(suffixChars, suffixLength)
	if err != nil {
		return "", err
	}
	if base == "" {
		return "book-" + suffix, nil
	}
	return base + "-" + suffix, nil
}

// Valid reports whether s only contains letters, digits, hyphens and underscores.
func Valid(s string) bool {
	return len(s) <= MaxLength && validSlug.MatchString(s)
}
