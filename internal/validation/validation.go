package validation

import (
	"errors"
	"strings"
	"unicode"
)

// MaxQueryLength is the maximum accepted query length in runes after trimming.
const MaxQueryLength = 100

// ErrQueryEmpty is returned when the query is empty or whitespace-only after trim.
var ErrQueryEmpty = errors.New("query is required")

// ErrQueryTooLong is returned when the trimmed query exceeds MaxQueryLength.
var ErrQueryTooLong = errors.New("query too long")

// ErrQueryInvalidChars is returned when the query contains disallowed characters.
var ErrQueryInvalidChars = errors.New("query contains invalid characters")

// ValidateQuery trims the input and checks it against the city-name allow-list:
// ASCII letters, whitespace, hyphen, comma, period, apostrophe. Returns the
// trimmed string or an error suitable for inline display next to the input.
func ValidateQuery(input string) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	if len(r) == 0 {
		return "", ErrQueryEmpty
	}
	if len(r) > MaxQueryLength {
		return "", ErrQueryTooLong
	}
	for _, c := range r {
		if !isAllowedQueryRune(c) {
			return "", ErrQueryInvalidChars
		}
	}
	return s, nil
}

// IsValidQuery reports whether the input would be accepted by ValidateQuery.
// Used for enabling/disabling the submit control on each keystroke.
func IsValidQuery(input string) bool {
	_, err := ValidateQuery(input)
	return err == nil
}

// isAllowedQueryRune returns true for ASCII letters, whitespace, and the
// punctuation a city name may carry (hyphen, comma, period, apostrophe).
func isAllowedQueryRune(r rune) bool {
	if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
		return true
	}
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '-', ',', '.', '\'':
		return true
	}
	return false
}
