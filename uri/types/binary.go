package types

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Binary represents an Edm.Binary value.
type Binary []byte

// ParseBinary parses the base64url payload of a binary'…' literal. Padding
// is optional, but when present it must complete the final quantum, and the
// unused bits of the last character must be zero.
func ParseBinary(src string) (Binary, error) {
	data := strings.TrimRight(src, "=")
	if pad := len(src) - len(data); pad > 0 && (pad > 2 || len(src)%4 != 0) {
		return nil, fmt.Errorf(`%w: invalid Binary "%v"`, ErrType, src)
	}
	buf, err := base64.RawURLEncoding.Strict().DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf(`%w: invalid Binary "%v"`, ErrType, src)
	}
	return Binary(buf), nil
}

// String returns the padded base64url form of b.
func (b Binary) String() string {
	return base64.URLEncoding.EncodeToString(b)
}
