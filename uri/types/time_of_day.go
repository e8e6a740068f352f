package types

import (
	"fmt"
	"time"
)

// TimeOfDay represents an Edm.TimeOfDay value, a clock time without date or
// offset.
type TimeOfDay struct {
	// Time is the clock time on January 1 of year 0, UTC.
	time.Time
}

// NewTimeOfDay returns the clock time of src.
func NewTimeOfDay(src time.Time) *TimeOfDay {
	return &TimeOfDay{time.Date(
		0, 1, 1,
		src.Hour(), src.Minute(), src.Second(), src.Nanosecond(),
		time.UTC,
	)}
}

// ParseTimeOfDay parses a literal such as "13:20" or "13:20:00.125".
func ParseTimeOfDay(src string) (*TimeOfDay, error) {
	s := &scanner{src: src}
	d, ok := s.clock()
	if !ok || !s.done() {
		return nil, fmt.Errorf(`%w: invalid TimeOfDay "%v"`, ErrType, src)
	}
	return &TimeOfDay{time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d)}, nil
}

// timeOfDayFormat represents the canonical string format for TimeOfDay
// values.
const timeOfDayFormat = "15:04:05.999999999"

// String returns the literal form of t.
func (t *TimeOfDay) String() string {
	return t.Time.Format(timeOfDayFormat)
}

// Compare compares t with u. If t is before u, it returns -1; if t is after
// u, it returns +1; if they're the same, it returns 0.
func (t *TimeOfDay) Compare(u *TimeOfDay) int {
	return t.Time.Compare(u.Time)
}

// MarshalText implements encoding.TextMarshaler.
func (t *TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeOfDay) UnmarshalText(data []byte) error {
	tod, err := ParseTimeOfDay(string(data))
	if err != nil {
		return err
	}
	*t = *tod
	return nil
}
