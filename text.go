package edgarseg

import (
	"strings"
	"unicode"
)

// NormalizeSpace collapses every run of whitespace, including non-breaking
// spaces, into a single space and trims the ends. Zero-width characters
// common in EDGAR markup are dropped entirely.
func NormalizeSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		switch {
		case r == '​' || r == '﻿' || r == '­':
			// zero-width space, BOM, soft hyphen
		case unicode.IsSpace(r):
			pending = true
		default:
			if pending && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pending = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TruncateRunes cuts s to at most n runes. Heading strings carried in
// breadcrumbs are capped with it so a malformed document cannot inflate
// every segment's metadata.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// CountWords returns the number of whitespace-separated words in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
