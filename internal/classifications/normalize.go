package classifications

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize uppercases s with full Unicode case mapping ("ß" becomes "SS"),
// replaces every rune that is neither an ASCII word character nor whitespace
// with a space, collapses whitespace runs to a single space, and trims the
// result. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	upper := cases.Upper(language.Und).String(s)

	cleaned := strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, upper)

	return strings.Join(strings.Fields(cleaned), " ")
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9')
}
