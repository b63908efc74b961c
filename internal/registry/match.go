package registry

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var legalSuffixes = map[string]struct{}{
	"ltd":     {},
	"limited": {},
	"plc":     {},
	"llp":     {},
	"co":      {},
	"company": {},
	"uk":      {},
}

// NormalizeName folds a company name to a comparable form: diacritics and
// punctuation removed, lower case, "&" read as "and", legal suffixes dropped.
func NormalizeName(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}
	folded = strings.ReplaceAll(strings.ToLower(folded), "&", " and ")

	var b strings.Builder
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	words := strings.Fields(b.String())
	for len(words) > 1 {
		if _, ok := legalSuffixes[words[len(words)-1]]; !ok {
			break
		}
		words = words[:len(words)-1]
	}
	if len(words) > 0 && words[0] == "the" && len(words) > 1 {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// bestMatch picks an exact normalized title match first, then the first item
// whose normalized title contains the query as a run of whole words, or is
// contained by it the same way.
func bestMatch(query string, items []Company) *Company {
	want := NormalizeName(query)
	if want == "" {
		return nil
	}
	for i := range items {
		if NormalizeName(items[i].Title) == want {
			return &items[i]
		}
	}
	for i := range items {
		got := NormalizeName(items[i].Title)
		if got == "" {
			continue
		}
		if containsWords(got, want) || containsWords(want, got) {
			return &items[i]
		}
	}
	return nil
}

// containsWords reports whether the normalized name sub occurs in name as a
// contiguous run of whole words. Both inputs are single-space separated.
func containsWords(name, sub string) bool {
	return strings.Contains(" "+name+" ", " "+sub+" ")
}
