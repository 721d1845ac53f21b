package model

import (
	"fmt"
	"time"
)

// Date is a calendar date without a time-of-day component.
type Date struct {
	Year int
	Mon  time.Month
	Day  int
}

// ParseDate parses an ISO "YYYY-MM-DD" date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Mon: t.Month(), Day: t.Day()}, nil
}

// DateOf returns the calendar date of t.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Mon: t.Month(), Day: t.Day()}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Mon), d.Day)
}

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Mon == 0 && d.Day == 0
}

// Month returns the month containing d.
func (d Date) Month() Month {
	return Month{Year: d.Year, Mon: d.Mon}
}

// Compare orders dates chronologically: -1 if d < o, 0 if equal, 1 if d > o.
func (d Date) Compare(o Date) int {
	if c := d.Month().Compare(o.Month()); c != 0 {
		return c
	}
	switch {
	case d.Day < o.Day:
		return -1
	case d.Day > o.Day:
		return 1
	default:
		return 0
	}
}

// MarshalJSON encodes the date as its "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid date JSON: %s", data)
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
