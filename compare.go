package dsstore

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// foldCaser applies Unicode case folding the way the Finder's POSIX-locale
// comparison does: a single shared cases.Caser is safe for concurrent use,
// per the golang.org/x/text/cases doc comment.
var foldCaser = cases.Fold()

// foldKey reduces a filename to the comparison key used by the total order
// in §3: NFD-decompose (splitting base characters from combining diacritic
// marks), drop the combining marks, then apply Unicode case folding. This
// mirrors "POSIX locale with case-folding and diacritic folding" without
// depending on a full ICU collation table, which golang.org/x/text does not
// provide standalone.
func foldKey(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if isCombiningMark(r) {
			continue
		}
		b.WriteRune(r)
	}
	return foldCaser.String(b.String())
}

// isCombiningMark reports whether r is a Unicode combining mark (the
// diacritics NFD decomposition splits off of their base character).
func isCombiningMark(r rune) bool {
	switch {
	case r >= 0x0300 && r <= 0x036f: // Combining Diacritical Marks
		return true
	case r >= 0x1ab0 && r <= 0x1aff: // Combining Diacritical Marks Extended
		return true
	case r >= 0x1dc0 && r <= 0x1dff: // Combining Diacritical Marks Supplement
		return true
	case r >= 0x20d0 && r <= 0x20ff: // Combining Diacritical Marks for Symbols
		return true
	case r >= 0xfe20 && r <= 0xfe2f: // Combining Half Marks
		return true
	default:
		return false
	}
}

// compareFilenames implements the case-insensitive, diacritic-insensitive,
// locale-stable total order required by §3: negative if a < b, zero if
// equal, positive if a > b.
func compareFilenames(a, b string) int {
	return strings.Compare(foldKey(a), foldKey(b))
}
