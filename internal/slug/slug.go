// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns business names into URL- and key-safe identifiers.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLen keeps a slug usable as a single DNS label.
const MaxLen = 63

// Generate lowercases s, strips diacritics and joins the remaining ASCII
// letters and digits with single hyphens. Whitespace, hyphens, underscores,
// '&' and '/' separate words; other characters are dropped.
// Example: "Barbería José & Sons" → "barberia-jose-sons"
func Generate(s string) string {
	// Chained transformers keep state, so each call builds its own.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if sep && b.Len() > 0 {
				b.WriteByte('-')
			}
			sep = false
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-', r == '_', r == '&', r == '/':
			sep = true
		}
	}

	out := b.String()
	if len(out) > MaxLen {
		out = strings.TrimRight(out[:MaxLen], "-")
	}
	return out
}
