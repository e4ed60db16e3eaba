// internal/text/normalize.go
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and removes combining marks, so that
// "öökapp" and "ookapp" compare equal.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

func foldDiacritics(value string) string {
	out, _, err := transform.String(stripMarks, value)
	if err != nil {
		return value
	}
	return out
}

// Normalize lowercases, strips diacritical marks and collapses every run of
// non-alphanumeric characters into a single space. It is the canonical form
// used whenever two free-text strings are compared for keyword overlap.
func Normalize(value string) string {
	folded := foldDiacritics(strings.ToLower(value))

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := true
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// NormalizeKeepLetters is the FAQ-matcher variant: it keeps all unicode
// letters and digits instead of reducing to ASCII.
func NormalizeKeepLetters(value string) string {
	folded := foldDiacritics(strings.ToLower(value))

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := true
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// productStopWords are filler tokens that carry no product signal in a
// normalized Estonian query.
var productStopWords = map[string]struct{}{
	"tahan": {}, "soovita": {}, "soovin": {}, "otsin": {}, "vajan": {},
	"mul": {}, "mulle": {}, "teil": {}, "on": {}, "oleks": {}, "umbes": {},
	"vahel": {}, "seina": {}, "sein": {}, "teise": {}, "ruumi": {}, "vaba": {},
	"kui": {}, "kus": {}, "mis": {}, "milline": {}, "milliseid": {},
	"valikuid": {}, "palju": {}, "saaks": {}, "jaoks": {}, "sisse": {},
	"laius": {}, "lai": {}, "kirjutada": {}, "laia": {}, "palun": {},
	"mingit": {}, "mingi": {}, "kas": {}, "et": {}, "ja": {}, "voi": {},
	"alla": {}, "ule": {}, "uleks": {}, "vahemalt": {}, "alates": {},
	"max": {}, "min": {}, "kuni": {}, "eur": {}, "euro": {}, "eurot": {},
	"hind": {}, "hinnaga": {}, "tahtsin": {}, "peaks": {},
	"meetri": {}, "meetrit": {}, "meeter": {}, "meetrine": {}, "m": {},
}

// CanonicalToken collapses inflected furniture vocabulary onto a canonical
// stem so that "laua", "lauda" and "laud" all match the same product type.
func CanonicalToken(token string) string {
	switch {
	case strings.HasPrefix(token, "kirjutuslaud"), strings.HasPrefix(token, "kirjutus"):
		return "laud"
	case strings.HasPrefix(token, "laud"), strings.HasPrefix(token, "laua"):
		return "laud"
	case strings.HasPrefix(token, "ookapp"), strings.HasPrefix(token, "ookapi"),
		strings.HasPrefix(token, "ookappi"), strings.HasPrefix(token, "ookap"),
		token == "oo":
		return "ookapp"
	case strings.HasPrefix(token, "tvkapp"), token == "tv":
		return "tvkapp"
	case strings.HasPrefix(token, "vitriinkapp"), strings.HasPrefix(token, "vitriin"):
		return "vitriinkapp"
	case strings.HasPrefix(token, "riiul"), strings.HasPrefix(token, "raamaturiiul"),
		strings.HasPrefix(token, "seinariiul"):
		return "riiul"
	case strings.HasPrefix(token, "kummut"):
		return "kummut"
	case strings.HasPrefix(token, "diivan"):
		return "diivan"
	// Chair compounds like "kontoritool" canonicalize to the chair, so the
	// chair check has to run before the office prefix.
	case strings.Contains(token, "tool"):
		return "tool"
	case strings.HasPrefix(token, "kontor"), strings.HasPrefix(token, "office"):
		return "kontor"
	case strings.HasPrefix(token, "valgust"), strings.HasPrefix(token, "lamp"):
		return "valgusti"
	case strings.HasPrefix(token, "vaip"):
		return "vaip"
	case strings.HasPrefix(token, "peegel"):
		return "peegel"
	case token == "meetri" || token == "meetrit" || token == "meeter" || token == "meetrine":
		return "meeter"
	}
	return token
}

// QueryTokens splits a query into canonical, deduplicated signal tokens.
func QueryTokens(query string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, raw := range strings.Fields(Normalize(query)) {
		token := CanonicalToken(raw)
		if len(token) < 3 {
			continue
		}
		if _, stop := productStopWords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

// ContainsAny reports whether any needle occurs as a substring of haystack.
// Both sides are expected to be pre-normalized.
func ContainsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
