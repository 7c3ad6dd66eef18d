package etfcap

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 format used to read and write dates.
const DateFormat = "2006-01-02"

// Date represents a calendar day, with no time of day nor location.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date, NewDate(2025, 3, 0) is the last day of February.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// time returns midnight UTC of that day.
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Today returns the current date in the local timezone.
func Today() Date { return NewDate(time.Now().Date()) }

// Add returns the date i days later (or earlier if i is negative).
func (d Date) Add(i int) Date { return NewDate(d.y, d.m, d.d+i) }

// Before reports whether d is strictly before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string { return d.time().Format(DateFormat) }

// Format formats the date using a time.Time layout.
func (d Date) Format(layout string) string { return d.time().Format(layout) }

// ParseDate parses a date in the "2006-01-02" format. Single digit months and
// days are accepted.
func ParseDate(s string) (Date, error) {
	on, err := time.Parse("2006-1-2", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", s, DateFormat, err)
	}
	return NewDate(on.Date()), nil
}

// UnmarshalJSON reads a date from a json string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	on, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = on
	return nil
}

// MarshalJSON writes a date as a json string.
func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }
