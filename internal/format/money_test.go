package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{raw: "1234", want: "1234", wantOK: true},
		{raw: " 1,23,456.50 ", want: "123456.5", wantOK: true},
		{raw: "-42.25", want: "-42.25", wantOK: true},
		{raw: "1e3", want: "1000", wantOK: true},
		{raw: "", wantOK: false},
		{raw: "   ", wantOK: false},
		{raw: "nan", wantOK: false},
		{raw: "NaN", wantOK: false},
		{raw: "abc", wantOK: false},
		{raw: "12 34", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseMoney(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "1234567", want: "1,234,567"},
		{raw: "1234.5", want: "1,234.50"},
		{raw: "1234.0", want: "1,234"},
		{raw: "1,234", want: "1,234"},
		{raw: "999", want: "999"},
		{raw: "0.5", want: "0.50"},
		{raw: "-1500", want: "-1,500"},
		{raw: "2500.75", want: "2,500.75"},
		{raw: "9223372036854775807", want: "9,223,372,036,854,775,807"},
		{raw: "12345678901234567890", want: "12,345,678,901,234,567,890"},
		{raw: "-12345678901234567890", want: "-12,345,678,901,234,567,890"},
		{raw: "100000000000000000000", want: "100,000,000,000,000,000,000"},
		{raw: "abc", want: "abc"},
		{raw: "nan", want: "nan"},
		{raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(tt.raw))
		})
	}
}

func TestFormatAccountNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "12345.0", want: "12345"},
		{raw: " 12345 ", want: "12345"},
		{raw: "12345.00", want: "12345.00"},
		{raw: "12345.0.0", want: "12345.0"},
		{raw: "nan", want: ""},
		{raw: "None", want: ""},
		{raw: "", want: ""},
		{raw: "SB-0012", want: "SB-0012"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAccountNumber(tt.raw))
		})
	}
}
