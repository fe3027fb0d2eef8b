// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// apostrophes are dropped so "Alumni's Corner" stays one token.
	apostrophes = strings.NewReplacer("'", "", "’", "")
	// separators matches every run of characters that isn't a letter or digit.
	separators = regexp.MustCompile(`[^a-z0-9]+`)
)

// Generate creates a URL-friendly slug from the given string. Accents are
// folded to their base letters and every run of whitespace or punctuation
// becomes a single hyphen.
// Example: "Café Réunion: 2026!" → "cafe-reunion-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(fold(s)))
	result = apostrophes.Replace(result)
	result = separators.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// fold strips combining marks after canonical decomposition. If the
// transform fails the input is returned unchanged and non-ASCII letters
// simply become separators.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
