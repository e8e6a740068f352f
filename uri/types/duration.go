package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Duration represents an Edm.Duration value.
type Duration struct {
	time.Duration
}

// ParseDuration parses an ISO 8601 day-time duration such as "P1DT2H30M" or
// "-PT0.5S". Year and month designators are not allowed.
func ParseDuration(src string) (*Duration, error) {
	d, ok := parseDuration(src)
	if !ok {
		return nil, fmt.Errorf(`%w: invalid Duration "%v"`, ErrType, src)
	}
	return &Duration{d}, nil
}

const hoursPerDay = 24

func parseDuration(src string) (time.Duration, bool) {
	s := &scanner{src: src}
	neg := s.expect('-')
	if !neg {
		s.expect('+')
	}
	if !s.expect('P') {
		return 0, false
	}

	var total time.Duration
	add := func(n int, unit time.Duration) bool {
		if n > 0 && unit > math.MaxInt64/time.Duration(n) {
			return false
		}
		v := time.Duration(n) * unit
		if total > math.MaxInt64-v {
			return false
		}
		total += v
		return true
	}

	const maxDigits = 18
	if isDigit(s.peek()) {
		n, ok := s.digits(1, maxDigits)
		if !ok || !s.expect('D') || !add(n, hoursPerDay*time.Hour) {
			return 0, false
		}
	}

	if s.expect('T') {
		for _, unit := range []struct {
			designator byte
			size       time.Duration
		}{
			{'H', time.Hour},
			{'M', time.Minute},
		} {
			save := s.pos
			if n, ok := s.digits(1, maxDigits); ok {
				if s.expect(unit.designator) {
					if !add(n, unit.size) {
						return 0, false
					}
					continue
				}
				s.pos = save
			}
		}
		if isDigit(s.peek()) {
			n, ok := s.digits(1, maxDigits)
			if !ok || !add(n, time.Second) {
				return 0, false
			}
			if s.expect('.') {
				frac, ok := s.fraction(maxDigits)
				if !ok || !add(1, frac) {
					return 0, false
				}
			}
			if !s.expect('S') {
				return 0, false
			}
		}
	}

	if !s.done() {
		return 0, false
	}
	if neg {
		total = -total
	}
	return total, true
}

// String returns the canonical literal form of d, e.g. "P1DT2H3M4.5S".
func (d *Duration) String() string {
	var b strings.Builder
	v := d.Duration
	if v < 0 {
		b.WriteByte('-')
		// Negate through uint64 so math.MinInt64 survives.
		v = time.Duration(-uint64(v)) //nolint:gosec
	}
	b.WriteByte('P')

	u := uint64(v) //nolint:gosec
	day := uint64(hoursPerDay * time.Hour)
	if days := u / day; days > 0 {
		b.WriteString(strconv.FormatUint(days, 10))
		b.WriteByte('D')
		u %= day
	}
	if u == 0 && b.Len() > 2 {
		return b.String()
	}

	b.WriteByte('T')
	if h := u / uint64(time.Hour); h > 0 {
		b.WriteString(strconv.FormatUint(h, 10))
		b.WriteByte('H')
		u %= uint64(time.Hour)
	}
	if m := u / uint64(time.Minute); m > 0 {
		b.WriteString(strconv.FormatUint(m, 10))
		b.WriteByte('M')
		u %= uint64(time.Minute)
	}
	if u > 0 || b.String()[b.Len()-1] == 'T' {
		sec := u / uint64(time.Second)
		b.WriteString(strconv.FormatUint(sec, 10))
		if ns := u % uint64(time.Second); ns > 0 {
			frac := strconv.FormatUint(ns+uint64(time.Second), 10)[1:]
			b.WriteByte('.')
			b.WriteString(strings.TrimRight(frac, "0"))
		}
		b.WriteByte('S')
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (d *Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(data []byte) error {
	dur, err := ParseDuration(string(data))
	if err != nil {
		return err
	}
	*d = *dur
	return nil
}
