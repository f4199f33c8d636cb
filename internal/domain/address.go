package domain

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
)

// AddressLength is the byte length of a token or account identifier.
const AddressLength = 20

// Address identifies a fungible token or an account holding it.
// The zero value is the invalid/null sentinel.
type Address [AddressLength]byte

var ErrInvalidAddress = errors.New("invalid address")

// ParseAddress decodes a 0x-prefixed or bare hex string into an Address.
func ParseAddress(s string) (Address, error) {
	var a Address
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != AddressLength*2 {
		return a, ErrInvalidAddress
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return a, ErrInvalidAddress
	}
	copy(a[:], raw)
	return a, nil
}

// MustParseAddress is ParseAddress that panics on malformed input. Test helper.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic("domain: " + err.Error() + ": " + s)
	}
	return a
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero reports whether a is the null sentinel.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Less orders addresses bytewise. Used only for pair canonicalization.
func (a Address) Less(b Address) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
