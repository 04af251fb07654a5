package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidMonth = errors.New("invalid month")
	ErrInvalidYear  = errors.New("invalid year")
)

// Months is the fixed month-name enumeration a Period may use.
var Months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Period is the (month, year) pair printed on invoices.
type Period struct {
	Month string `json:"month" msgpack:"month"`
	Year  int    `json:"year" msgpack:"year"`
}

// DefaultPeriod is used when a session starts.
var DefaultPeriod = Period{Month: "February", Year: 2026}

// String renders "February 2026".
func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}

// PeriodRange is the contiguous, inclusive range of selectable years.
type PeriodRange struct {
	FirstYear int `json:"firstYear" yaml:"firstYear"`
	LastYear  int `json:"lastYear" yaml:"lastYear"`
}

// DefaultPeriodRange matches the years offered by the period selector.
var DefaultPeriodRange = PeriodRange{FirstYear: 2024, LastYear: 2030}

// Years lists every selectable year.
func (r PeriodRange) Years() []int {
	if r.LastYear < r.FirstYear {
		return nil
	}
	years := make([]int, 0, r.LastYear-r.FirstYear+1)
	for y := r.FirstYear; y <= r.LastYear; y++ {
		years = append(years, y)
	}
	return years
}

// Validate checks p against the month enumeration and the year range.
func (r PeriodRange) Validate(p Period) error {
	if !isMonth(p.Month) {
		return fmt.Errorf("%w: %q", ErrInvalidMonth, p.Month)
	}
	if p.Year < r.FirstYear || p.Year > r.LastYear {
		return fmt.Errorf("%w: %d (allowed %d-%d)", ErrInvalidYear, p.Year, r.FirstYear, r.LastYear)
	}
	return nil
}

// ParsePeriod builds a Period from raw form values and validates it.
// The year must be plain digits.
func (r PeriodRange) ParsePeriod(month, year string) (Period, error) {
	month = strings.TrimSpace(month)
	year = strings.TrimSpace(year)

	if !isMonth(month) {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	if year == "" || strings.TrimLeft(year, "0123456789") != "" {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidYear, year)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidYear, year)
	}

	p := Period{Month: month, Year: y}
	if err := r.Validate(p); err != nil {
		return Period{}, err
	}
	return p, nil
}

func isMonth(m string) bool {
	for _, name := range Months {
		if name == m {
			return true
		}
	}
	return false
}
