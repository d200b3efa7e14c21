package player

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName lowercases and collapses whitespace so provider spellings
// that differ only in casing or spacing compare equal.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// FoldName strips diacritics from an already-normalized name. Decomposes to
// NFD and drops combining marks, so "Dončić" and "Doncic" fold to the same
// key. Folding an already-folded name is a no-op.
func FoldName(name string) string {
	decomposed := norm.NFD.String(NormalizeName(name))

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	return norm.NFC.String(b.String())
}
