// Package split implements the basis-point share arithmetic and the
// per-recipient bitmasks used by bounty escrows.
//
// Shares are floor(reference * bps / 10000). Across n recipients the floor
// shares can sum to less than the reference by at most n-1 base units. That
// remainder ("dust") is never transferred: once every recipient has claimed,
// the tracked escrow total is set to zero and the dust stays in the vault.
//
// A recipient whose floor share is zero (a 1 bps split of a 1000-unit
// escrow, say) is refused at claim time and so can never set its claimed
// bit. Such an escrow never becomes fully claimed, so its tracked total is
// never reset and keeps whatever the other claims leave behind.
package split

import (
	"errors"
	"math/bits"
)

const (
	// BasisPointsDenominator is 100% expressed in basis points.
	BasisPointsDenominator = 10000
	// MaxRecipients bounds the recipient set so both bitmasks fit a byte.
	MaxRecipients = 8
)

var (
	ErrInvalidSplits         = errors.New("invalid splits, must sum to 10000 basis points")
	ErrZeroSplit             = errors.New("split cannot be zero")
	ErrInvalidRecipientCount = errors.New("invalid recipient count")
)

// ValidateRecipientCount checks that n is in [1, MaxRecipients].
func ValidateRecipientCount(n int) error {
	if n < 1 || n > MaxRecipients {
		return ErrInvalidRecipientCount
	}
	return nil
}

// ValidateSplits checks the split vector of an n-recipient escrow: one
// entry per recipient, none zero, summing to exactly 10000.
func ValidateSplits(splits []uint16, n int) error {
	if len(splits) != n {
		return ErrInvalidSplits
	}
	var sum uint32
	for _, s := range splits {
		if s == 0 {
			return ErrZeroSplit
		}
		sum += uint32(s)
	}
	if sum != BasisPointsDenominator {
		return ErrInvalidSplits
	}
	return nil
}

// Share returns floor(reference * bps / 10000). The product is computed
// in 128 bits, so any uint64 reference is accepted.
func Share(reference uint64, bps uint16) uint64 {
	if bps > BasisPointsDenominator {
		bps = BasisPointsDenominator
	}
	hi, lo := bits.Mul64(reference, uint64(bps))
	q, _ := bits.Div64(hi, lo, BasisPointsDenominator)
	return q
}

// Distribute returns every recipient's share of reference and the dust
// left over by floor rounding.
func Distribute(reference uint64, splits []uint16) (shares []uint64, dust uint64) {
	shares = make([]uint64, len(splits))
	var total uint64
	for i, s := range splits {
		shares[i] = Share(reference, s)
		total += shares[i]
	}
	return shares, reference - total
}
