// Package types provides the values of OData primitive literals that have no
// direct Go equivalent.
//
// Integral, floating point, boolean and string literals map to Go's built-in
// types. Edm.Decimal literals use [decimal.Decimal] and Edm.Guid literals use
// [uuid.UUID]; this package adds Date, TimeOfDay, DateTimeOffset, Duration,
// Binary and the Geography and Geometry shapes, each parsed from and
// rendered to its canonical URL literal form.
package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrType wraps errors returned by the types package.
var ErrType = errors.New("type")

// guidLength is the length of the canonical 8-4-4-4-12 GUID form.
const guidLength = 36

// ParseGuid parses src in the 8-4-4-4-12 hexadecimal form required in URLs.
// Unlike [uuid.Parse], it rejects the braced, URN and undashed forms.
func ParseGuid(src string) (uuid.UUID, error) {
	if len(src) != guidLength || src[8] != '-' || src[13] != '-' || src[18] != '-' || src[23] != '-' {
		return uuid.Nil, fmt.Errorf(`%w: invalid Guid "%v"`, ErrType, src)
	}
	id, err := uuid.Parse(src)
	if err != nil {
		return uuid.Nil, fmt.Errorf(`%w: invalid Guid "%v"`, ErrType, src)
	}
	return id, nil
}

// scanner reads fixed-width numeric fields out of a date or time literal.
type scanner struct {
	src string
	pos int
}

// digits reads between minWidth and maxWidth ASCII digits and returns their
// value.
func (s *scanner) digits(minWidth, maxWidth int) (int, bool) {
	start := s.pos
	for s.pos < len(s.src) && s.pos-start < maxWidth && isDigit(s.src[s.pos]) {
		s.pos++
	}
	if s.pos-start < minWidth {
		s.pos = start
		return 0, false
	}
	val, err := strconv.Atoi(s.src[start:s.pos])
	if err != nil {
		s.pos = start
		return 0, false
	}
	return val, true
}

// expect consumes ch if it is next.
func (s *scanner) expect(ch byte) bool {
	if s.pos < len(s.src) && s.src[s.pos] == ch {
		s.pos++
		return true
	}
	return false
}

// peek returns the next byte or 0 at the end of input.
func (s *scanner) peek() byte {
	if s.pos < len(s.src) {
		return s.src[s.pos]
	}
	return 0
}

func (s *scanner) done() bool { return s.pos == len(s.src) }

// date reads year "-" month "-" day, where year has four or more digits, an
// optional minus sign, and no leading zero beyond four digits.
func (s *scanner) date() (time.Time, bool) {
	neg := s.expect('-')
	start := s.pos
	year, ok := s.digits(4, 9)
	if !ok || (s.pos-start > 4 && s.src[start] == '0') {
		return time.Time{}, false
	}
	if neg {
		year = -year
	}
	if !s.expect('-') {
		return time.Time{}, false
	}
	month, ok := s.digits(2, 2)
	if !ok || month < 1 || month > 12 || !s.expect('-') {
		return time.Time{}, false
	}
	day, ok := s.digits(2, 2)
	if !ok || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		// Day overflowed the month.
		return time.Time{}, false
	}
	return t, true
}

// maxFraction is the number of fractional second digits allowed in a
// literal. Digits beyond nanoseconds are truncated.
const maxFraction = 12

// clock reads hour ":" minute [ ":" second [ "." fraction ] ] and returns the
// offset from midnight.
func (s *scanner) clock() (time.Duration, bool) {
	hour, ok := s.digits(2, 2)
	if !ok || hour > 23 || !s.expect(':') {
		return 0, false
	}
	minute, ok := s.digits(2, 2)
	if !ok || minute > 59 {
		return 0, false
	}
	d := time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute
	if !s.expect(':') {
		return d, true
	}
	second, ok := s.digits(2, 2)
	if !ok || second > 59 {
		return 0, false
	}
	d += time.Duration(second) * time.Second
	if !s.expect('.') {
		return d, true
	}
	frac, ok := s.fraction(maxFraction)
	if !ok {
		return 0, false
	}
	return d + frac, true
}

// fraction reads 1 to maxWidth digits after a decimal point as a fraction of
// a second.
func (s *scanner) fraction(maxWidth int) (time.Duration, bool) {
	start := s.pos
	for s.pos < len(s.src) && s.pos-start < maxWidth && isDigit(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return 0, false
	}
	digits := s.src[start:s.pos]
	const nanoDigits = 9
	if len(digits) > nanoDigits {
		digits = digits[:nanoDigits]
	}
	digits += strings.Repeat("0", nanoDigits-len(digits))
	ns, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return time.Duration(ns), true
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

// appendDate appends t's date in literal form, padding the year to four
// digits and keeping its sign.
func appendDate(b []byte, t time.Time) []byte {
	year := t.Year()
	if year < 0 {
		b = append(b, '-')
		year = -year
	}
	y := strconv.Itoa(year)
	for i := len(y); i < 4; i++ {
		b = append(b, '0')
	}
	b = append(b, y...)
	return t.AppendFormat(b, "-01-02")
}
