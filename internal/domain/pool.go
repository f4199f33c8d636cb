package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/holiman/uint256"
)

var (
	ErrIdenticalTokens = errors.New("identical tokens")
	ErrInvalidPoolKey  = errors.New("invalid pool key")
)

// PoolKey is the stable identifier of an unordered token pair.
type PoolKey [32]byte

func (k PoolKey) String() string {
	return "0x" + hex.EncodeToString(k[:])
}

// ParsePoolKey decodes a 0x-prefixed or bare hex pool key.
func ParsePoolKey(s string) (PoolKey, error) {
	var k PoolKey
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	if len(s) != len(k)*2 {
		return k, ErrInvalidPoolKey
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return k, ErrInvalidPoolKey
	}
	copy(k[:], raw)
	return k, nil
}

// Ordered is an unordered token pair resolved into canonical order.
// Swapped is true when the caller supplied the pair as (token1, token0),
// so reserve-returning accessors can re-orient results.
type Ordered struct {
	Token0  Address
	Token1  Address
	Swapped bool
}

// Canonicalize sorts an unordered pair so Token0 < Token1.
func Canonicalize(a, b Address) (Ordered, error) {
	if a == b {
		return Ordered{}, ErrIdenticalTokens
	}
	if b.Less(a) {
		return Ordered{Token0: b, Token1: a, Swapped: true}, nil
	}
	return Ordered{Token0: a, Token1: b}, nil
}

// NewPoolKey derives the pair identifier: a hash over the canonical ordered
// pair, so NewPoolKey(a, b) == NewPoolKey(b, a).
func NewPoolKey(a, b Address) (PoolKey, error) {
	ord, err := Canonicalize(a, b)
	if err != nil {
		return PoolKey{}, err
	}
	h := sha256.New()
	h.Write(ord.Token0[:])
	h.Write(ord.Token1[:])
	var k PoolKey
	copy(k[:], h.Sum(nil))
	return k, nil
}

// Pool is a point-in-time snapshot of one pool's state, oriented in
// canonical token order. Amounts are copies; mutating them does not touch
// engine state.
type Pool struct {
	Key         PoolKey
	Token0      Address
	Token1      Address
	Reserve0    *uint256.Int
	Reserve1    *uint256.Int
	TotalShares *uint256.Int
	Shares      map[Address]*uint256.Int
}
