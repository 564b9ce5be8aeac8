// Package doi normalizes and validates DOI identifier strings.
//
// Catalogs disagree on identifier form: one returns bare DOIs, the other
// URL-form DOIs and expects URL-form lookups. The engine stores the bare
// form everywhere and wraps at the call sites that need the URL form.
package doi

import (
	"regexp"
	"strings"
)

// URLPrefix is the resolver prefix carried by URL-form DOIs.
const URLPrefix = "https://doi.org/"

// doiPattern matches the registrant/suffix shape of a bare DOI.
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/[^\s]+$`)

// Normalize returns the bare form of a DOI: surrounding whitespace removed
// and at most one resolver prefix stripped. Normalizing a bare DOI returns
// it unchanged.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimPrefix(s, URLPrefix)
}

// URLForm returns the resolver URL for a DOI in either form.
func URLForm(s string) string {
	return URLPrefix + Normalize(s)
}

// Valid reports whether s is a plausible bare DOI.
func Valid(s string) bool {
	return doiPattern.MatchString(s)
}
