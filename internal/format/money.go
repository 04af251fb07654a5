// Package format turns raw roster cells into the values printed on an invoice.
// Nothing here returns an error: messy spreadsheet input degrades to empty
// or pass-through text instead.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// integralTolerance decides when an amount prints without decimals.
var integralTolerance = decimal.New(1, -9)

// maxWhole is the largest magnitude that still fits an int64.
var maxWhole = decimal.NewFromInt(math.MaxInt64)

// inInt64 reports whether the whole part of d fits an int64.
func inInt64(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(maxWhole)
}

// ParseMoney reads an amount such as "1,23,456.50". Blank cells, "nan" and
// anything unparsable report ok=false.
func ParseMoney(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatMoney renders an amount with Western digit grouping: whole amounts
// as "1,234,567", everything else as "1,234.50". Unparsable input is
// returned unchanged.
func FormatMoney(raw string) string {
	d, ok := ParseMoney(raw)
	if !ok {
		return raw
	}

	p := message.NewPrinter(language.English)
	rounded := d.Round(0)
	if d.Sub(rounded).Abs().LessThan(integralTolerance) {
		if !inInt64(rounded) {
			return groupThousands(rounded.BigInt().String())
		}
		return p.Sprintf("%d", rounded.IntPart())
	}
	return p.Sprintf("%.2f", d.InexactFloat64())
}

// groupThousands inserts commas every three digits of a decimal integer
// string, keeping a leading minus sign.
func groupThousands(digits string) string {
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}

	var b strings.Builder
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}

// FormatAccountNumber strips the ".0" tail a numeric spreadsheet cell picks
// up and blanks out "nan"/"none".
func FormatAccountNumber(raw string) string {
	s := strings.TrimSpace(raw)
	if isMissing(s) {
		return ""
	}
	return strings.TrimSuffix(s, ".0")
}

// isMissing reports the placeholders pandas-style exports write for empty cells.
func isMissing(s string) bool {
	return strings.EqualFold(s, "nan") || strings.EqualFold(s, "none")
}
