package compression

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4"
)

// ErrCorrupt is returned when compressed data cannot be decoded.
var ErrCorrupt = errors.New("corrupt compressed data")

// NoCompressor stores values unchanged.
type NoCompressor struct{}

func (c *NoCompressor) Name() string {
	return "none"
}

// Compress returns a copy of data.
func (c *NoCompressor) Compress(data []byte, level int) ([]byte, error) {
	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

// Decompress returns a copy of data.
func (c *NoCompressor) Decompress(data []byte) ([]byte, error) {
	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

func (c *NoCompressor) MaxCompressedSize(n int) int {
	return n
}

// LZ4Compressor stores an LZ4 block prefixed with the uncompressed length
// as a uvarint. Incompressible input is stored raw with a zero block
// length marker after the prefix.
type LZ4Compressor struct{}

func (c *LZ4Compressor) Name() string {
	return "lz4"
}

func (c *LZ4Compressor) Compress(data []byte, level int) ([]byte, error) {
	header := make([]byte, binary.MaxVarintLen64+1)
	n := binary.PutUvarint(header, uint64(len(data)))
	if len(data) == 0 {
		// an empty block cannot be decoded, so empty values are stored raw
		return append(header[:n], 0), nil
	}

	out := make([]byte, n+1+lz4.CompressBlockBound(len(data)))
	copy(out, header[:n])

	size, err := lz4.CompressBlock(data, out[n+1:], nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if size == 0 {
		// incompressible
		out[n] = 0
		out = append(out[:n+1], data...)
		return out, nil
	}
	out[n] = 1
	return out[:n+1+size], nil
}

func (c *LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	length, n := binary.Uvarint(data)
	if n <= 0 || len(data) < n+1 {
		return nil, ErrCorrupt
	}
	body := data[n+1:]
	if data[n] == 0 {
		if uint64(len(body)) != length {
			return nil, ErrCorrupt
		}
		out := make([]byte, len(body))
		copy(out, body)
		return out, nil
	}

	if length == 0 {
		return []byte{}, nil
	}
	out := make([]byte, length)
	size, err := lz4.UncompressBlock(body, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	if uint64(size) != length {
		return nil, ErrCorrupt
	}
	return out, nil
}

func (c *LZ4Compressor) MaxCompressedSize(n int) int {
	return binary.MaxVarintLen64 + 1 + lz4.CompressBlockBound(n)
}
