package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time of day or zone, e.g. "2024-01-03".
// Tasks are bucketed by Date, not by their creation timestamp.
type Date string

// DateOf returns the calendar date of t in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return Date(t.In(loc).Format(DateLayout))
}

// ParseDate validates s and returns it as a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(t.Format(DateLayout)), nil
}

// Time returns midnight UTC of d. Invalid dates yield the zero time.
func (d Date) Time() time.Time {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date(d.Time().AddDate(0, 0, n).Format(DateLayout))
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) String() string {
	return string(d)
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	return string(d), nil
}

// Scan implements sql.Scanner for DATE columns, which lib/pq hands back as
// time.Time.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = Date(v.Format(DateLayout))
	case string:
		parsed, err := ParseDate(v[:min(len(v), len(DateLayout))])
		if err != nil {
			return err
		}
		*d = parsed
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}
