// Package normalizers provides brand name normalization for match indexing
package normalizers

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// registry holds all registered normalizers
var registry = make(map[string]Normalizer)

func init() {
	// Register built-in normalizers
	Register("lowercase", Lowercase)
	Register("trim", Trim)
	Register("brand", Normalize)
	Register("compact", Compact)
	Register("canonical", CanonicalCompact)
	Register("remove_whitespace", RemoveWhitespace)
	Register("alphanumeric", Alphanumeric)
	Register("client_id", ClientID)
}

// Register adds a normalizer to the registry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

// Get retrieves a normalizer by name
func Get(name string) (Normalizer, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Apply applies a named normalizer to a value
func Apply(value, normalizer string) string {
	fn, ok := registry[normalizer]
	if !ok {
		return value
	}
	return fn(value)
}

// stopWords are corporate/noise tokens dropped by CanonicalCompact
var stopWords = map[string]struct{}{
	"inc": {}, "llc": {}, "ltd": {}, "corp": {}, "co": {}, "company": {},
	"group": {}, "holdings": {}, "the": {}, "and": {}, "international": {},
	"intl": {}, "official": {}, "shop": {}, "plc": {}, "pty": {},
	"us": {}, "usa": {}, "uk": {}, "ca": {}, "mx": {},
}

// stripDiacritics decomposes to NFD and drops combining marks
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize produces the exact-match form of a brand name: diacritics
// stripped, lowercased, internal whitespace collapsed, trimmed.
func Normalize(s string) string {
	folded, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var result strings.Builder
	prevSpace := true
	for _, r := range folded {
		if unicode.IsSpace(r) {
			if !prevSpace {
				result.WriteRune(' ')
				prevSpace = true
			}
			continue
		}
		result.WriteRune(r)
		prevSpace = false
	}
	return strings.TrimSpace(result.String())
}

// Compact is Normalize with all non-alphanumeric characters removed
func Compact(s string) string {
	return Alphanumeric(Normalize(s))
}

// CanonicalCompact tokenizes into lowercase folded alphanumeric words,
// drops corporate stop words, and rejoins with no separator. An empty
// result falls back to Compact so a name made entirely of stop words
// still indexes.
func CanonicalCompact(s string) string {
	normalized := Normalize(s)

	var tokens []string
	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		token := current.String()
		current.Reset()
		if _, stop := stopWords[token]; !stop {
			tokens = append(tokens, token)
		}
	}
	for _, r := range normalized {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	if len(tokens) == 0 {
		return Compact(s)
	}
	return strings.Join(tokens, "")
}

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// RemoveWhitespace removes all whitespace characters
func RemoveWhitespace(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Alphanumeric keeps only alphanumeric characters
func Alphanumeric(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ClientID normalizes an external client identifier for lookups and
// batch-local de-duplication
func ClientID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
