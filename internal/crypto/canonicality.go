package crypto

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Canonicality represents the canonicality status of an ECDSA signature.
type Canonicality int

const (
	// CanonicityNone indicates the signature is not canonical (invalid format or out of range).
	CanonicityNone Canonicality = iota
	// CanonicityCanonical indicates a strict DER signature whose S is above
	// N/2. Both (R, S) and (R, N-S) verify for the same digest.
	CanonicityCanonical
	// CanonicityFullyCanonical indicates S <= N/2. Only these are accepted
	// by Verify.
	CanonicityFullyCanonical
)

// ECDSACanonicality checks a DER-encoded ECDSA signature.
//
// A signature is canonical if the DER encoding is strict and minimal and
// 1 <= R, S < N. It is fully canonical if additionally S <= N/2.
func ECDSACanonicality(sig []byte) Canonicality {
	r, s, ok := parseDERSignature(sig)
	if !ok {
		return CanonicityNone
	}
	if r.IsZero() || s.IsZero() {
		return CanonicityNone
	}
	if s.IsOverHalfOrder() {
		return CanonicityCanonical
	}
	return CanonicityFullyCanonical
}

// MakeSignatureCanonical returns the fully canonical form of sig,
// replacing S with N-S when S is over the half order. It returns nil
// for signatures that are not canonical at all.
func MakeSignatureCanonical(sig []byte) []byte {
	r, s, ok := parseDERSignature(sig)
	if !ok || r.IsZero() || s.IsZero() {
		return nil
	}
	if s.IsOverHalfOrder() {
		s.Negate()
	}
	return encodeDERSignature(&r, &s)
}

// parseDERSignature splits 0x30 <len> 0x02 <r-len> <r> 0x02 <s-len> <s>
// into scalars. Values >= N are rejected.
func parseDERSignature(sig []byte) (r, s secp256k1.ModNScalar, ok bool) {
	// 8 bytes minimum (one-byte R and S), 72 maximum (33-byte R and S)
	if len(sig) < 8 || len(sig) > 72 {
		return r, s, false
	}
	if sig[0] != 0x30 || int(sig[1]) != len(sig)-2 {
		return r, s, false
	}

	rBytes, rest, ok := parseDERInteger(sig[2:])
	if !ok {
		return r, s, false
	}
	sBytes, rest, ok := parseDERInteger(rest)
	if !ok || len(rest) != 0 {
		return r, s, false
	}

	if overflow := r.SetByteSlice(trimZero(rBytes)); overflow {
		return r, s, false
	}
	if overflow := s.SetByteSlice(trimZero(sBytes)); overflow {
		return r, s, false
	}
	return r, s, true
}

// parseDERInteger parses 0x02 <length> <integer-bytes> and returns the
// integer bytes and the remaining data.
func parseDERInteger(data []byte) ([]byte, []byte, bool) {
	if len(data) < 2 || data[0] != 0x02 {
		return nil, nil, false
	}

	length := int(data[1])
	if length < 1 || length > 33 || len(data) < 2+length {
		return nil, nil, false
	}
	intBytes := data[2 : 2+length]

	// Negative
	if intBytes[0]&0x80 != 0 {
		return nil, nil, false
	}
	// A leading zero is only allowed in front of a high bit
	if intBytes[0] == 0 && (length == 1 || intBytes[1]&0x80 == 0) {
		return nil, nil, false
	}
	// 33 bytes only with that leading zero
	if length == 33 && intBytes[0] != 0 {
		return nil, nil, false
	}
	return intBytes, data[2+length:], true
}

func trimZero(b []byte) []byte {
	if len(b) == 33 {
		return b[1:]
	}
	return b
}

// encodeDERSignature writes R and S as a minimal DER sequence.
func encodeDERSignature(r, s *secp256k1.ModNScalar) []byte {
	rBytes := derInteger(r)
	sBytes := derInteger(s)

	out := make([]byte, 0, 6+len(rBytes)+len(sBytes))
	out = append(out, 0x30, byte(4+len(rBytes)+len(sBytes)))
	out = append(out, 0x02, byte(len(rBytes)))
	out = append(out, rBytes...)
	out = append(out, 0x02, byte(len(sBytes)))
	out = append(out, sBytes...)
	return out
}

func derInteger(v *secp256k1.ModNScalar) []byte {
	full := v.Bytes()
	b := full[:]
	for len(b) > 1 && b[0] == 0 {
		b = b[1:]
	}
	if b[0]&0x80 != 0 {
		b = append([]byte{0x00}, b...)
	}
	return b
}
