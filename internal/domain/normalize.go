package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// typographic folds curly apostrophes and quotes typed by phones and
// e-readers into their ASCII forms.
var typographic = strings.NewReplacer(
	"‘", "'", "’", "'", "ʼ", "'",
	"“", `"`, "”", `"`,
)

// NormalizeText is the comparison form of authors, category keys and
// keywords. It composes Unicode (NFC), lowercases, folds typographic quotes
// and collapses whitespace runs into single spaces. Diacritics and hyphens
// are kept.
func NormalizeText(text string) string {
	fields := strings.FieldsFunc(text, unicode.IsSpace)
	if len(fields) == 0 {
		return ""
	}
	s := strings.Join(fields, " ")
	return typographic.Replace(strings.ToLower(norm.NFC.String(s)))
}
