package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

var asciiOnly = runes.Remove(runes.Predicate(func(r rune) bool { return r > 0x7f }))

// SafeFilename reduces s to ASCII letters, digits, '_', '.' and '-'.
// Compatibility characters are decomposed first so accented letters keep
// their base letter, whitespace runs become a single '_', and leading or
// trailing '.' and '_' are trimmed.
func SafeFilename(s string) string {
	decomposed := norm.NFKD.String(s)
	ascii, _, err := transform.String(asciiOnly, decomposed)
	if err != nil {
		ascii = decomposed
	}
	ascii = strings.NewReplacer("/", " ", "\\", " ").Replace(ascii)

	out := unsafeFilenameChars.ReplaceAllString(strings.Join(strings.Fields(ascii), "_"), "")
	out = strings.Trim(out, "._")
	return strings.Trim(out, "_")
}
