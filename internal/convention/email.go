package convention

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail returns the canonical form used for storage and
// comparison: trimmed, accents stripped, lower-cased.
func NormalizeEmail(email string) string {
	// transform.Chain keeps state, so each call builds its own.
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripAccents, strings.TrimSpace(email))
	if err != nil {
		folded = strings.TrimSpace(email)
	}
	return strings.ToLower(folded)
}

// SameEmail compares two addresses in canonical form. Empty addresses never match.
func SameEmail(a, b string) bool {
	na, nb := NormalizeEmail(a), NormalizeEmail(b)
	return na != "" && na == nb
}

// looksLikeEmail is the shape check applied to signatory addresses.
func looksLikeEmail(email string) bool {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.ContainsAny(email, " \t\n") {
		return false
	}
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1 && !strings.Contains(domain, "@")
}
