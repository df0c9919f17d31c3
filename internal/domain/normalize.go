package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a raw caption or transcript token for lookup and
// scoring. It is total and idempotent:
//   - diacritics are folded (Ë -> e) and text is lowercased
//   - square brackets, escaped or bare, are removed
//   - punctuation and symbols become spaces, whitespace runs collapse
//   - an apostrophe survives only between two letters or digits (t'au, ka'tah)
//
// Anything that cannot be interpreted degrades to the empty string.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	folded, _, err := transform.String(foldDiacritics, raw)
	if err != nil {
		folded = raw
	}
	folded = strings.ToLower(folded)

	src := []rune(folded)
	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false

	for i, r := range src {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case isApostrophe(r):
			if i > 0 && i+1 < len(src) && isWordRune(src[i-1]) && isWordRune(src[i+1]) && !pendingSpace {
				b.WriteByte('\'')
			}
		default:
			// Brackets, backslashes, punctuation, symbols and whitespace all
			// act as separators.
			pendingSpace = true
		}
	}

	return b.String()
}

// StripApostrophes removes apostrophes from an already-normalized string so
// that "tau" and "t'au" compare equal.
func StripApostrophes(normalized string) string {
	if !strings.ContainsRune(normalized, '\'') {
		return normalized
	}
	return strings.ReplaceAll(normalized, "'", "")
}

// FactionKey is the canonical form of a faction name or id. Two factions are
// the same scope exactly when their keys are equal, so "Space Marines",
// "space-marines" and "SPACE MARINES" share one key.
func FactionKey(raw string) string {
	return StripApostrophes(Normalize(raw))
}

// NormalizeAll normalizes a slice of strings, dropping entries that
// normalize to the empty string.
func NormalizeAll(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if n := Normalize(r); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func isApostrophe(r rune) bool {
	switch r {
	case '\'', '’', '‘', 'ʼ', '`', '´':
		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
