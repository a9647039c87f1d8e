// Package services – slug derivation
//
// Slugs are derived from German post titles, so the four umlaut/sharp-s
// characters get their canonical ASCII expansions before the generic
// non-alphanumeric collapse. The derivation is idempotent: feeding an
// already-derived slug through DeriveSlug yields the same value.
package services

import (
	"regexp"
	"strings"
)

var (
	umlautReplacer = strings.NewReplacer(
		"ä", "ae",
		"ö", "oe",
		"ü", "ue",
		"ß", "ss",
	)

	// nonSlugRE matches every run of characters outside [a-z0-9].
	nonSlugRE = regexp.MustCompile(`[^a-z0-9]+`)
)

// DeriveSlug turns a post title into a unique-candidate, URL-safe slug:
// lower-case, umlauts expanded (ä→ae, ö→oe, ü→ue, ß→ss), every remaining
// run of non-alphanumerics collapsed to a single hyphen, and leading/trailing
// hyphens stripped.
func DeriveSlug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = umlautReplacer.Replace(s)
	s = nonSlugRE.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
