// Package textnorm cleans free-text spreadsheet cells before they reach an invoice.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// invisible covers zero-width, bidi-control and general-formatting marks
// plus the black-square glyphs spreadsheet exports sometimes leave behind.
var invisible = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200B, Hi: 0x200F, Stride: 1},
		{Lo: 0x202A, Hi: 0x202E, Stride: 1},
		{Lo: 0x2060, Hi: 0x206F, Stride: 1},
		{Lo: 0x25A0, Hi: 0x25A0, Stride: 1},
		{Lo: 0x25AA, Hi: 0x25AA, Stride: 1},
	},
}

var nbspToSpace = runes.Map(func(r rune) rune {
	if r == '\u00A0' {
		return ' '
	}
	return r
})

var removeInvisible = runes.Remove(runes.In(invisible))

// Normalize replaces NBSP with a space, strips invisible formatting
// characters, collapses whitespace runs to one space and trims the ends.
// It never fails and Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	if out, _, err := transform.String(nbspToSpace, s); err == nil {
		s = out
	}
	if out, _, err := transform.String(removeInvisible, s); err == nil {
		s = out
	}
	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}

// NormalizeAll normalizes every cell in place and returns the slice.
func NormalizeAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = Normalize(c)
	}
	return out
}

// isSpace also treats the ASCII file/group/record/unit separators as
// whitespace, which is how spreadsheet exports tend to leak them.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1C && r <= 0x1F)
}
