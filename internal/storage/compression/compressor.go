// Package compression holds the value codecs a keyValueDb can be wrapped
// with. The set is fixed at build time; the [database] compression
// setting picks one by name.
package compression

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownCompressor is returned by Get for names with no codec.
var ErrUnknownCompressor = errors.New("unknown compressor")

// Compressor encodes ledger entry values on their way into a backend.
type Compressor interface {
	Name() string

	// Compress encodes data. Codecs without levels ignore level.
	Compress(data []byte, level int) ([]byte, error)

	Decompress(data []byte) ([]byte, error)

	// MaxCompressedSize bounds len(Compress(data)) for len(data) == n.
	MaxCompressedSize(n int) int
}

var codecs = map[string]func() Compressor{
	"none": func() Compressor { return &NoCompressor{} },
	"lz4":  func() Compressor { return &LZ4Compressor{} },
}

// Get returns the codec configured under name.
func Get(name string) (Compressor, error) {
	newCodec, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompressor, name)
	}
	return newCodec(), nil
}

// Available lists the codec names in order.
func Available() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
