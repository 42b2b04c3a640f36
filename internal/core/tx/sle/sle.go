// Package sle defines the serialized ledger entries stored by the engine
// and their encoding.
//
// Every entry is stored as a two-byte big-endian entry type followed by
// the msgpack body of the entry struct.
package sle

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ugorji/go/codec"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/entry"
)

var (
	ErrShortEntry       = errors.New("sle: entry too short")
	ErrUnexpectedType   = errors.New("sle: unexpected entry type")
	ErrUnknownEntryType = errors.New("sle: unknown entry type")
)

var msgpackHandle = func() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true
	h.Canonical = true
	return h
}()

// Entry is implemented by every ledger entry body.
type Entry interface {
	EntryType() entry.Type
}

// Encode serializes an entry with its type header.
func Encode(e Entry) ([]byte, error) {
	out := make([]byte, 2, 128)
	binary.BigEndian.PutUint16(out, uint16(e.EntryType()))

	var body []byte
	if err := codec.NewEncoderBytes(&body, msgpackHandle).Encode(e); err != nil {
		return nil, fmt.Errorf("sle: encode %s: %w", e.EntryType(), err)
	}
	return append(out, body...), nil
}

// TypeOf returns the entry type of serialized data.
func TypeOf(data []byte) (entry.Type, error) {
	if len(data) < 2 {
		return entry.TypeInvalid, ErrShortEntry
	}
	return entry.Type(binary.BigEndian.Uint16(data)), nil
}

// decodeInto checks the type header and decodes the body into e.
func decodeInto(data []byte, e Entry) error {
	t, err := TypeOf(data)
	if err != nil {
		return err
	}
	if t != e.EntryType() {
		return fmt.Errorf("%w: have %s, want %s", ErrUnexpectedType, t, e.EntryType())
	}
	if err := codec.NewDecoderBytes(data[2:], msgpackHandle).Decode(e); err != nil {
		return fmt.Errorf("sle: decode %s: %w", t, err)
	}
	return nil
}

// Decode parses serialized data into the matching entry type.
func Decode(data []byte) (Entry, error) {
	t, err := TypeOf(data)
	if err != nil {
		return nil, err
	}

	var e Entry
	switch t {
	case entry.TypeBountyEscrow:
		e = &BountyEscrow{}
	case entry.TypeHolding:
		e = &Holding{}
	case entry.TypeTransaction:
		e = &TxRecord{}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntryType, t)
	}
	if err := decodeInto(data, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Fields returns the JSON field map of a serialized entry. Used for
// transaction metadata.
func Fields(data []byte) (string, map[string]any, error) {
	e, err := Decode(data)
	if err != nil {
		return "", nil, err
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return "", nil, err
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", nil, err
	}
	return e.EntryType().String(), fields, nil
}
