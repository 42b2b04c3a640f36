package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	assert.Equal(t, []string{"lz4", "none"}, Available())

	c, err := Get("lz4")
	require.NoError(t, err)
	assert.Equal(t, "lz4", c.Name())

	_, err = Get("zstd")
	assert.ErrorIs(t, err, ErrUnknownCompressor)
}

func TestRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"empty":          {},
		"short":          []byte("escrow"),
		"repetitive":     bytes.Repeat([]byte("bounty"), 500),
		"incompressible": {0x9c, 0x01, 0xf3, 0x7a, 0x44, 0x10, 0xee, 0x02},
	}

	for _, name := range Available() {
		c, err := Get(name)
		require.NoError(t, err)

		for label, in := range inputs {
			t.Run(name+"/"+label, func(t *testing.T) {
				packed, err := c.Compress(in, 0)
				require.NoError(t, err)
				assert.LessOrEqual(t, len(packed), c.MaxCompressedSize(len(in)))

				out, err := c.Decompress(packed)
				require.NoError(t, err)
				assert.Equal(t, len(in), len(out))
				assert.True(t, bytes.Equal(in, out))
			})
		}
	}
}

func TestLZ4ShrinksRepetitiveInput(t *testing.T) {
	in := bytes.Repeat([]byte{0x42}, 4096)
	packed, err := (&LZ4Compressor{}).Compress(in, 0)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(in)/4)
}

func TestLZ4RejectsCorruptInput(t *testing.T) {
	c := &LZ4Compressor{}

	_, err := c.Decompress(nil)
	assert.ErrorIs(t, err, ErrCorrupt)

	packed, err := c.Compress([]byte("abc"), 0)
	require.NoError(t, err)
	packed[0] = 9 // claims a longer raw body
	_, err = c.Decompress(packed)
	assert.Error(t, err)
}

func TestLZ4EmptyValue(t *testing.T) {
	c := &LZ4Compressor{}
	packed, err := c.Compress(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0}, packed)

	out, err := c.Decompress(packed)
	require.NoError(t, err)
	assert.Empty(t, out)

	// A zero length with the compressed marker decodes to nothing too
	out, err = c.Decompress([]byte{0, 1, 0})
	require.NoError(t, err)
	assert.Empty(t, out)
}
