package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodRange_ParsePeriod(t *testing.T) {
	r := DefaultPeriodRange

	tests := []struct {
		name    string
		month   string
		year    string
		want    Period
		wantErr error
	}{
		{name: "valid", month: "March", year: "2025", want: Period{Month: "March", Year: 2025}},
		{name: "trims input", month: " March ", year: " 2030 ", want: Period{Month: "March", Year: 2030}},
		{name: "leading zeros", month: "May", year: "02027", want: Period{Month: "May", Year: 2027}},
		{name: "lowercase month", month: "march", year: "2025", wantErr: ErrInvalidMonth},
		{name: "unknown month", month: "Smarch", year: "2025", wantErr: ErrInvalidMonth},
		{name: "year below range", month: "May", year: "2023", wantErr: ErrInvalidYear},
		{name: "year above range", month: "May", year: "2031", wantErr: ErrInvalidYear},
		{name: "non-numeric year", month: "May", year: "20x5", wantErr: ErrInvalidYear},
		{name: "signed year", month: "May", year: "+2025", wantErr: ErrInvalidYear},
		{name: "empty year", month: "May", year: "", wantErr: ErrInvalidYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ParsePeriod(tt.month, tt.year)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriodRange_Years(t *testing.T) {
	assert.Equal(t, []int{2024, 2025, 2026, 2027, 2028, 2029, 2030}, DefaultPeriodRange.Years())
	assert.Nil(t, PeriodRange{FirstYear: 2030, LastYear: 2024}.Years())
}

func TestPeriod_String(t *testing.T) {
	assert.Equal(t, "February 2026", DefaultPeriod.String())
}

func TestExpertRecord_SetGet(t *testing.T) {
	var rec ExpertRecord
	for i, f := range CanonicalFields {
		rec.Set(f, string(rune('a'+i)))
	}
	for i, f := range CanonicalFields {
		assert.Equal(t, string(rune('a'+i)), rec.Get(f), "field %s", f)
	}
	assert.Equal(t, "", rec.Get(Field("unknown")))
	assert.Equal(t, "b", rec.ExpertName)
}
