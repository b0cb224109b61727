package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-age/internal/config"
)

const secondsPerDay = 24 * 60 * 60

// CalendarDate is a date-only value in the proleptic Gregorian calendar.
// It carries no time of day and no time zone.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewCalendarDate builds a validated CalendarDate.
// Impossible dates (Feb 30, month 13, year 0) fail with ErrInvalidRange.
func NewCalendarDate(year int, month time.Month, day int) (CalendarDate, error) {
	d := CalendarDate{Year: year, Month: month, Day: day}
	if err := d.Validate(); err != nil {
		return CalendarDate{}, err
	}
	return d, nil
}

// MustDate is NewCalendarDate for literals known to be valid. It panics otherwise.
func MustDate(year int, month time.Month, day int) CalendarDate {
	d, err := NewCalendarDate(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the calendar date of t in t's own location.
// The caller decides which time zone "today" belongs to.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// ParseDate parses a strict ISO-8601 calendar date (YYYY-MM-DD).
// A string of the wrong shape fails with ErrMalformedInput; a well-formed
// string naming a date that does not exist fails with ErrInvalidRange.
func ParseDate(s string) (CalendarDate, error) {
	d, err := parseISO(s, false)
	if err != nil {
		return CalendarDate{}, err
	}
	if err := d.Validate(); err != nil {
		return CalendarDate{}, err
	}
	return d, nil
}

// parseISO splits s into its fields without range checks. With wide set it
// also accepts a five-digit year, the form String produces past year 9999.
func parseISO(s string, wide bool) (CalendarDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CalendarDate{}, fmt.Errorf("%w: %s", ErrMalformedInput, config.ErrDateEmpty)
	}

	yearLen := len(s) - len(config.DateFormatISO[4:])
	if (yearLen != 4 && (!wide || yearLen != 5)) || s[yearLen] != '-' || s[yearLen+3] != '-' {
		return CalendarDate{}, fmt.Errorf("%w: %s: %q", ErrMalformedInput, config.ErrDateShape, s)
	}

	year, okY := parseDigits(s[:yearLen])
	month, okM := parseDigits(s[yearLen+1 : yearLen+3])
	day, okD := parseDigits(s[yearLen+4:])
	if !okY || !okM || !okD {
		return CalendarDate{}, fmt.Errorf("%w: %s: %q", ErrMalformedInput, config.ErrDateShape, s)
	}
	return CalendarDate{Year: year, Month: time.Month(month), Day: day}, nil
}

// parseDigits accepts ASCII digits only; strconv alone would allow a sign.
func parseDigits(s string) (int, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// Validate reports whether d names an existing Gregorian date in years 1 to 9999.
func (d CalendarDate) Validate() error {
	return d.validateUpTo(config.MaxYear)
}

// validateUpTo is Validate with a caller-chosen last year.
func (d CalendarDate) validateUpTo(maxYear int) error {
	if d.Year < config.MinYear || d.Year > maxYear {
		return fmt.Errorf("%w: %s: %d", ErrInvalidRange, config.ErrYearRange, d.Year)
	}
	if d.Month < time.January || d.Month > time.December || d.Day < 1 || d.Day > DaysIn(d.Year, d.Month) {
		return fmt.Errorf("%w: %s: %04d-%02d-%02d", ErrInvalidRange, config.ErrDateImpossible, d.Year, int(d.Month), d.Day)
	}
	return nil
}

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in the given month of the given year.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the following month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsLeapYear reports whether d falls in a leap year.
func (d CalendarDate) IsLeapYear() bool { return IsLeap(d.Year) }

// Time returns midnight UTC of d.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// EpochDay counts days since 1970-01-01 (negative before it).
// Midnight UTC is an exact multiple of a day, so the division never rounds.
func (d CalendarDate) EpochDay() int64 {
	return d.Time().Unix() / secondsPerDay
}

// AddDays returns the date n days after d (n may be negative).
func (d CalendarDate) AddDays(n int) CalendarDate {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// Weekday returns the day of the week of d.
func (d CalendarDate) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other.
func (d CalendarDate) Compare(other CalendarDate) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func (d CalendarDate) Before(other CalendarDate) bool { return d.Compare(other) < 0 }
func (d CalendarDate) After(other CalendarDate) bool  { return d.Compare(other) > 0 }
func (d CalendarDate) Equal(other CalendarDate) bool  { return d.Compare(other) == 0 }

// IsZero reports whether d is the zero value.
func (d CalendarDate) IsZero() bool { return d == CalendarDate{} }

// String returns the ISO-8601 form YYYY-MM-DD.
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText encodes d as YYYY-MM-DD.
func (d CalendarDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a YYYY-MM-DD string. It also accepts the dates a
// Report derives from a reference in year 9999, such as a next birthday in
// year 10000, so every marshalled Report decodes again.
func (d *CalendarDate) UnmarshalText(text []byte) error {
	parsed, err := parseISO(string(text), true)
	if err != nil {
		return err
	}
	if err := parsed.validateUpTo(config.MaxDerivedYear); err != nil {
		return err
	}
	*d = parsed
	return nil
}
