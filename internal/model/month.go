package model

import (
	"fmt"
	"time"
)

// Month identifies one calendar month on the budget timeline ("2025-01").
// The zero value is not a valid month.
type Month struct {
	Year int
	Mon  time.Month
}

// ParseMonth parses a "YYYY-MM" string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Mon: t.Month()}, nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Mon: t.Month()}
}

// CurrentMonth returns the current real-world month.
func CurrentMonth() Month {
	return MonthOf(time.Now())
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Mon))
}

// IsZero reports whether m is the zero value.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Mon == 0
}

// Next returns the following month.
func (m Month) Next() Month {
	if m.Mon == time.December {
		return Month{Year: m.Year + 1, Mon: time.January}
	}
	return Month{Year: m.Year, Mon: m.Mon + 1}
}

// Prev returns the preceding month.
func (m Month) Prev() Month {
	if m.Mon == time.January {
		return Month{Year: m.Year - 1, Mon: time.December}
	}
	return Month{Year: m.Year, Mon: m.Mon - 1}
}

// Compare orders months chronologically: -1 if m < o, 0 if equal, 1 if m > o.
func (m Month) Compare(o Month) int {
	switch {
	case m.Year != o.Year:
		if m.Year < o.Year {
			return -1
		}
		return 1
	case m.Mon != o.Mon:
		if m.Mon < o.Mon {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool { return m.Compare(o) < 0 }

// After reports whether m is strictly later than o.
func (m Month) After(o Month) bool { return m.Compare(o) > 0 }

// Contains reports whether d falls inside m.
func (m Month) Contains(d Date) bool {
	return d.Month() == m
}

// MinMonth returns the earlier of a and b.
func MinMonth(a, b Month) Month {
	if a.Before(b) {
		return a
	}
	return b
}

// MarshalJSON encodes the month as its "YYYY-MM" string.
func (m Month) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON decodes a "YYYY-MM" string.
func (m *Month) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid month JSON: %s", data)
	}
	parsed, err := ParseMonth(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
