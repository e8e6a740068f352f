package types

import (
	"fmt"
	"time"
)

// Date represents an Edm.Date value.
type Date struct {
	time.Time
}

// NewDate coerces src into a Date.
func NewDate(src time.Time) *Date {
	return &Date{time.Date(src.Year(), src.Month(), src.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date literal such as "2024-02-29". Years may be
// negative and may have more than four digits.
func ParseDate(src string) (*Date, error) {
	s := &scanner{src: src}
	t, ok := s.date()
	if !ok || !s.done() {
		return nil, fmt.Errorf(`%w: invalid Date "%v"`, ErrType, src)
	}
	return &Date{t}, nil
}

// GoTime returns the underlying time.Time object.
func (d *Date) GoTime() time.Time { return d.Time }

// String returns the literal form of d.
func (d *Date) String() string {
	return string(appendDate(make([]byte, 0, len("2006-01-02")), d.Time))
}

// Compare compares d with u. If d is before u, it returns -1; if d is after
// u, it returns +1; if they're the same, it returns 0.
func (d *Date) Compare(u *Date) int {
	return d.Time.Compare(u.Time)
}

// MarshalText implements encoding.TextMarshaler.
func (d *Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(data []byte) error {
	date, err := ParseDate(string(data))
	if err != nil {
		return err
	}
	*d = *date
	return nil
}
