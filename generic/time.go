package generic

import (
	"encoding/json"
	"strings"
	"time"
)

// =============================================================================
// DATE - Civil calendar date (no time of day, no time zone)
// =============================================================================

// DateLayout is the wire format for dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Date is a calendar date. The underlying time is always midnight UTC so two
// dates compare equal exactly when year, month and day match.
type Date struct {
	Time time.Time
}

// NewDate builds a date from valid components. Out-of-range days are NOT
// rolled over here; use RollDate when calendar carry is intended.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a wall-clock time to its calendar date in the time's own
// location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date { return DateOf(time.Now()) }

// ParseDate parses a YYYY-MM-DD string. Anything else, including dates that
// do not exist on the calendar ("2024-02-30"), is an *InvalidDateError.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, &InvalidDateError{Input: s, Err: err}
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// MustParseDate is for tests and fixtures.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// CALENDAR ROLLOVER
// =============================================================================

// DaysIn returns the number of days in the given month, normalising the
// month into its year first (month 13 is January of the next year).
func DaysIn(year int, month time.Month) int {
	year, month = normalizeMonth(year, int(month))
	switch month {
	case time.April, time.June, time.September, time.November:
		return 30
	case time.February:
		if isLeap(year) {
			return 29
		}
		return 28
	default:
		return 31
	}
}

// RollDate builds a date carrying out-of-range components forward or
// backward across month boundaries:
//
//	RollDate(2024, April, 31)   -> 2024-05-01  (carry forward)
//	RollDate(2024, February, 32) -> 2024-03-03
//	RollDate(2024, March, 0)    -> 2024-02-29  (day 0 = last day of prior month)
//	RollDate(2024, 14, 1)       -> 2025-02-01
//
// Billing periods and closing dates depend on this carry-forward; an invalid
// day never clamps to the month's last day.
func RollDate(year int, month time.Month, day int) Date {
	y, m := normalizeMonth(year, int(month))
	for day < 1 {
		y, m = normalizeMonth(y, int(m)-1)
		day += DaysIn(y, m)
	}
	for day > DaysIn(y, m) {
		day -= DaysIn(y, m)
		y, m = normalizeMonth(y, int(m)+1)
	}
	return NewDate(y, m, day)
}

func normalizeMonth(year, month int) (int, time.Month) {
	m := month - 1
	year += m / 12
	m %= 12
	if m < 0 {
		m += 12
		year--
	}
	return year, time.Month(m + 1)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return RollDate(d.Year(), d.Month(), d.Day()+n) }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

// Key is the map key used by the schedule index.
func (d Date) Key() string    { return d.Time.Format(DateLayout) }
func (d Date) String() string { return d.Key() }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Key())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &InvalidDateError{Input: string(b), Err: err}
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween returns the whole number of days from -> to (negative when to
// is earlier). Both are midnight UTC so the division is exact.
func DaysBetween(from, to Date) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}

func StartOfMonth(year int, month time.Month) Date { return RollDate(year, month, 1) }
func EndOfMonth(year int, month time.Month) Date   { return RollDate(year, month+1, 0) }

// StartOfWeek returns the Sunday on or before d.
func StartOfWeek(d Date) Date { return d.AddDays(-int(d.Weekday())) }

// EndOfWeek returns the Saturday on or after d.
func EndOfWeek(d Date) Date { return d.AddDays(int(time.Saturday - d.Weekday())) }
