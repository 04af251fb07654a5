package format

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/varun160398/auto-invoice-portal/internal/models"
)

// AmountInWords returns the "Rupees: ... only." text for a record. A filled
// in_words cell wins; otherwise the commission is rounded half-to-even and
// spelled out with lakh/crore grouping. Amounts too large to spell give "".
func AmountInWords(rec models.ExpertRecord) string {
	override := strings.TrimSpace(rec.InWords)
	if override != "" && !isBlankWords(override) {
		return override
	}

	amt, ok := ParseMoney(rec.Commission)
	if !ok {
		return ""
	}

	whole := amt.RoundBank(0)
	if !inInt64(whole) {
		return ""
	}
	words := IndianWords(whole.IntPart())
	return capitalizeFirst(strings.ReplaceAll(words, "-", " "))
}

func isBlankWords(s string) bool {
	switch strings.ToLower(s) {
	case "nan", "none", "0", "0.0":
		return true
	}
	return false
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

type numWord struct {
	text  string
	value uint64
}

// cards are the named quantities, largest first.
var cards = []numWord{
	{"crore", 10000000},
	{"lakh", 100000},
	{"thousand", 1000},
	{"hundred", 100},
	{"ninety", 90},
	{"eighty", 80},
	{"seventy", 70},
	{"sixty", 60},
	{"fifty", 50},
	{"forty", 40},
	{"thirty", 30},
	{"twenty", 20},
	{"nineteen", 19},
	{"eighteen", 18},
	{"seventeen", 17},
	{"sixteen", 16},
	{"fifteen", 15},
	{"fourteen", 14},
	{"thirteen", 13},
	{"twelve", 12},
	{"eleven", 11},
	{"ten", 10},
	{"nine", 9},
	{"eight", 8},
	{"seven", 7},
	{"six", 6},
	{"five", 5},
	{"four", 4},
	{"three", 3},
	{"two", 2},
	{"one", 1},
}

// IndianWords spells n in English using the Indian numbering system,
// e.g. 150000 -> "one lakh, fifty thousand" and 456 -> "four hundred and
// fifty-six". Groups above a crore recurse: 10^12 is "one lakh crore".
func IndianWords(n int64) string {
	if n < 0 {
		// -n overflows for MinInt64; go through uint64 for the magnitude.
		return "minus " + spell(uint64(-(n+1))+1).text
	}
	return spell(uint64(n)).text
}

func spell(v uint64) numWord {
	if v == 0 {
		return numWord{"zero", 0}
	}

	for _, c := range cards {
		elem := c.value
		if elem > v {
			continue
		}

		div, mod := v/elem, v%elem
		left := numWord{"one", 1}
		if div != 1 {
			left = spell(div)
		}

		acc := merge(left, c)
		if mod != 0 {
			acc = merge(acc, spell(mod))
		}
		return acc
	}
	return numWord{}
}

// merge joins two spelled parts: "forty-five", "four hundred and six",
// "one lakh, fifty thousand", or a multiplier such as "two hundred".
func merge(l, r numWord) numWord {
	switch {
	case l.value == 1 && r.value < 100:
		return r
	case l.value < 100 && l.value > r.value:
		return numWord{l.text + "-" + r.text, l.value + r.value}
	case l.value >= 100 && r.value < 100:
		return numWord{l.text + " and " + r.text, l.value + r.value}
	case r.value > l.value:
		return numWord{l.text + " " + r.text, l.value * r.value}
	}
	return numWord{l.text + ", " + r.text, l.value + r.value}
}
