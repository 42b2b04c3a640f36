package split

import (
	"errors"
	"math/bits"
)

var (
	ErrBitAlreadySet = errors.New("bit already set")
	ErrBitOutOfRange = errors.New("bit index out of range")
)

// Bitmask holds one flag per recipient index. Bits are set at most once
// and never cleared.
type Bitmask uint8

// IsSet reports whether bit i is set.
func (m Bitmask) IsSet(i int) bool {
	if i < 0 || i >= MaxRecipients {
		return false
	}
	return m&(1<<uint(i)) != 0
}

// Set sets bit i, failing if it is already set.
func (m *Bitmask) Set(i int) error {
	if i < 0 || i >= MaxRecipients {
		return ErrBitOutOfRange
	}
	if m.IsSet(i) {
		return ErrBitAlreadySet
	}
	*m |= 1 << uint(i)
	return nil
}

// Count returns the number of set bits.
func (m Bitmask) Count() int {
	return bits.OnesCount8(uint8(m))
}

// Full reports whether bits 0..n-1 are all set.
func (m Bitmask) Full(n int) bool {
	if n <= 0 {
		return false
	}
	if n > MaxRecipients {
		n = MaxRecipients
	}
	want := Bitmask(uint16(1)<<uint(n) - 1)
	return m&want == want
}
