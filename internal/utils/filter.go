package utils

import (
	"unicode"
)

// IsRomanized reports whether s is a plausible pinyin buffer: ASCII letters
// with optional apostrophe syllable separators.
func IsRomanized(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case c == '\'':
		default:
			return false
		}
	}
	return true
}

// ContainsNumbers checks if a string contains any numeric digits
func ContainsNumbers(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// IsRepetitive reports a string of four or more characters that is one
// letter repeated throughout ("aaaa"). "aaaab" is not repetitive.
func IsRepetitive(s string) bool {
	if len(s) <= 3 {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// IsValidInput decides whether a query is worth a lookup when filtering is
// on: romanized and not a key-mash.
func IsValidInput(s string) bool {
	return IsRomanized(s) && !IsRepetitive(s)
}
