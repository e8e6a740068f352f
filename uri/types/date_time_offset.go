package types

import (
	"fmt"
	"time"
)

// DateTimeOffset represents an Edm.DateTimeOffset value.
type DateTimeOffset struct {
	// Time is the underlying time.Time value, in a fixed-offset zone.
	time.Time
}

// NewDateTimeOffset converts src to a DateTimeOffset, replacing a named zone
// with its offset.
func NewDateTimeOffset(src time.Time) *DateTimeOffset {
	if name, off := src.Zone(); name != "" && src.Location() != time.UTC {
		src = src.In(time.FixedZone("", off))
	}
	return &DateTimeOffset{src}
}

// ParseDateTimeOffset parses a literal such as "2024-01-02T10:00:00Z" or
// "2024-01-02T10:00-05:00". Seconds are optional; the zone is required.
func ParseDateTimeOffset(src string) (*DateTimeOffset, error) {
	s := &scanner{src: src}
	date, ok := s.date()
	if ok && s.expect('T') {
		if clock, ok := s.clock(); ok {
			if loc, ok := s.zone(); ok && s.done() {
				t := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc).Add(clock)
				return &DateTimeOffset{t}, nil
			}
		}
	}
	return nil, fmt.Errorf(`%w: invalid DateTimeOffset "%v"`, ErrType, src)
}

// zone reads "Z" or a signed hh:mm offset.
func (s *scanner) zone() (*time.Location, bool) {
	switch s.peek() {
	case 'Z', 'z':
		s.pos++
		return time.UTC, true
	case '+', '-':
		sign := 1
		if s.src[s.pos] == '-' {
			sign = -1
		}
		s.pos++
		hour, ok := s.digits(2, 2)
		if !ok || hour > 23 || !s.expect(':') {
			return nil, false
		}
		minute, ok := s.digits(2, 2)
		if !ok || minute > 59 {
			return nil, false
		}
		return time.FixedZone("", sign*(hour*secondsPerHour+minute*secondsPerMinute)), true
	default:
		return nil, false
	}
}

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
)

// dateTimeOffsetFormat is the canonical format of the clock and zone parts.
const dateTimeOffsetFormat = "T15:04:05.999999999Z07:00"

// String returns the literal form of t.
func (t *DateTimeOffset) String() string {
	b := make([]byte, 0, len("2006-01-02")+len(dateTimeOffsetFormat))
	b = appendDate(b, t.Time)
	return string(t.Time.AppendFormat(b, dateTimeOffsetFormat))
}

// GoTime returns the underlying time.Time object.
func (t *DateTimeOffset) GoTime() time.Time { return t.Time }

// Compare compares the time instant t with u. If t is before u, it returns
// -1; if t is after u, it returns +1; if they're the same, it returns 0.
func (t *DateTimeOffset) Compare(u *DateTimeOffset) int {
	return t.Time.Compare(u.Time)
}

// MarshalText implements encoding.TextMarshaler.
func (t *DateTimeOffset) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *DateTimeOffset) UnmarshalText(data []byte) error {
	dto, err := ParseDateTimeOffset(string(data))
	if err != nil {
		return err
	}
	*t = *dto
	return nil
}
