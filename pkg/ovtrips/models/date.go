package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the day-first layout used by the transport-card export
const DateLayout = "02-01-2006"

// isoDate is how dates travel over JSON
const isoDate = "2006-01-02"

// Date is a calendar date at UTC midnight.
type Date struct {
	time.Time
}

// ParseDate parses a DD-MM-YYYY date from the CSV export.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("unable to parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// ParseISODate accepts YYYY-MM-DD, falling back to the export layout.
func ParseISODate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(isoDate, s); err == nil {
		return Date{Time: t}, nil
	}
	return ParseDate(s)
}

func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool  { return d.Time.After(other.Time) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(isoDate)
}

// UnmarshalJSON accepts both YYYY-MM-DD and DD-MM-YYYY
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseISODate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON converts the date back to JSON
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("\"%s\"", d.Format(isoDate))), nil
}
