// Package textutil normalizes scraped Korean portal text for stable comparison.
package textutil

import "strings"

// Normalize collapses whitespace variants (NBSP, ideographic space, stray
// "&nbsp;" entities) to single ASCII spaces and trims. Normalizing an
// already-normalized string is a no-op, so normalized names are safe to use
// directly as merge keys.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u00a0', '\u2007', '\u202f', '\u3000':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
