package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want ByteSize
	}{
		{"0", 0},
		{"1024", 1024},
		{"1024B", 1024},
		{"1Ki", KiB},
		{"1KiB", KiB},
		{"64k", 64 * KB},
		{"1.25Mi", MiB + 256*KiB},
		{"1 Mi", MiB},
		{"  2GB ", 2 * GB},
		{"1ti", TiB},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "   ", "Mi", "-1", "1Xi", "1.2.3Ki", "99999999999Ti"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.Error(t, err)
		})
	}
}

func TestByteSize_TextRoundTrip(t *testing.T) {
	for _, b := range []ByteSize{0, 100, KiB, 3 * MiB, MiB + 256*KiB, 2 * GiB, 1000} {
		text, err := b.MarshalText()
		require.NoError(t, err)

		var got ByteSize
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, b, got, string(text))
	}

	text, _ := (MiB + 256*KiB).MarshalText()
	assert.Equal(t, "1280Ki", string(text))
}

func TestByteSize_String(t *testing.T) {
	assert.Equal(t, "512B", ByteSize(512).String())
	assert.Equal(t, "1.50KiB", ByteSize(1536).String())
	assert.Equal(t, "1.25MiB", (MiB + 256*KiB).String())
	assert.Equal(t, "1.00GiB", GiB.String())
}

func TestByteSize_Uint32(t *testing.T) {
	v, err := MiB.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(1<<20), v)

	_, err = (4 * GiB).Uint32()
	assert.Error(t, err)
}

func TestMustParse(t *testing.T) {
	assert.Equal(t, 4*KiB, MustParse("4Ki"))
	assert.Panics(t, func() { MustParse("lots") })
}
