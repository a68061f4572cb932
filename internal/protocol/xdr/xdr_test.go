package xdr

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Length Helpers Tests
// ============================================================================

func TestStringLen(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"Empty", "", 4},
		{"OneByte", "a", 8},
		{"ThreeBytes", "abc", 8},
		{"FourBytes", "test", 8},
		{"FiveBytes", "tests", 12},
		{"TwoHundredFiftySeven", strings.Repeat("x", 257), 4 + 260},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StringLen(tc.in))
			assert.Equal(t, tc.want, BytesLen([]byte(tc.in)))
		})
	}
}

func TestPad(t *testing.T) {
	assert.Equal(t, 0, Pad(0))
	assert.Equal(t, 3, Pad(1))
	assert.Equal(t, 2, Pad(2))
	assert.Equal(t, 1, Pad(3))
	assert.Equal(t, 0, Pad(4))
	assert.Equal(t, 3, Pad(257))
}

// ============================================================================
// Writer Tests
// ============================================================================

func TestWriter(t *testing.T) {
	t.Run("WritesStringWithPadding", func(t *testing.T) {
		w := NewWriterSize(StringLen("abc"))
		require.NoError(t, w.WriteString("abc"))
		assert.True(t, w.Full())
		assert.Equal(t, []byte{0, 0, 0, 3, 'a', 'b', 'c', 0}, w.Bytes())
	})

	t.Run("WritesOpaqueWithoutPaddingWhenAligned", func(t *testing.T) {
		w := NewWriterSize(OpaqueLen(4))
		require.NoError(t, w.WriteOpaque([]byte{1, 2, 3, 4}))
		assert.Equal(t, []byte{0, 0, 0, 4, 1, 2, 3, 4}, w.Bytes())
	})

	t.Run("ZeroesPaddingInReusedBuffer", func(t *testing.T) {
		buf := bytes.Repeat([]byte{0xFF}, 8)
		w := NewWriter(buf)
		require.NoError(t, w.WriteString("a"))
		assert.Equal(t, []byte{0, 0, 0, 1, 'a', 0, 0, 0}, w.Bytes())
	})

	t.Run("RejectsOverflowWithoutWriting", func(t *testing.T) {
		w := NewWriterSize(6)
		err := w.WriteString("abc")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrBufferOverflow))
		assert.Equal(t, 0, w.Offset())
	})

	t.Run("WritesPastPrefix", func(t *testing.T) {
		buf := []byte{9, 9, 9, 9, 0, 0, 0, 0}
		w := NewWriterAt(buf, 4)
		require.NoError(t, w.WriteUint32(7))
		assert.Equal(t, []byte{9, 9, 9, 9, 0, 0, 0, 7}, w.Bytes())
	})

	t.Run("WritesIntegers", func(t *testing.T) {
		w := NewWriterSize(Uint32Len*3 + Uint64Len)
		require.NoError(t, w.WriteUint32(0x01020304))
		require.NoError(t, w.WriteInt32(-1))
		require.NoError(t, w.WriteBool(true))
		require.NoError(t, w.WriteUint64(0x0102030405060708))
		assert.Equal(t, []byte{
			1, 2, 3, 4,
			0xFF, 0xFF, 0xFF, 0xFF,
			0, 0, 0, 1,
			1, 2, 3, 4, 5, 6, 7, 8,
		}, w.Bytes())
	})
}

// ============================================================================
// Reader Tests
// ============================================================================

func TestReader(t *testing.T) {
	t.Run("ReadsStringAndSkipsPadding", func(t *testing.T) {
		r := NewReader([]byte{0, 0, 0, 3, 'a', 'b', 'c', 0, 0, 0, 0, 1})
		s, err := r.ReadString()
		require.NoError(t, err)
		assert.Equal(t, "abc", s)
		assert.Equal(t, 8, r.Offset())

		v, err := r.ReadUint32()
		require.NoError(t, err)
		assert.Equal(t, uint32(1), v)
		assert.Equal(t, 0, r.Remaining())
	})

	t.Run("FailsOnTruncatedLengthPrefix", func(t *testing.T) {
		r := NewReader([]byte{0, 0})
		_, err := r.ReadString()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrShortBuffer))
		assert.Equal(t, 0, r.Offset())
	})

	t.Run("FailsOnTruncatedData", func(t *testing.T) {
		r := NewReader([]byte{0, 0, 0, 5, 'a', 'b'})
		_, err := r.ReadOpaque()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrShortBuffer))
		assert.Equal(t, 0, r.Offset(), "cursor must not move on failure")
	})

	t.Run("FailsOnMissingPadding", func(t *testing.T) {
		r := NewReader([]byte{0, 0, 0, 1, 'a'})
		_, err := r.ReadOpaque()
		assert.True(t, errors.Is(err, ErrShortBuffer))
	})

	t.Run("RejectsExcessiveLength", func(t *testing.T) {
		r := NewReader([]byte{0x7F, 0xFF, 0xFF, 0xFF})
		_, err := r.ReadOpaque()
		assert.True(t, errors.Is(err, ErrLengthExceeded))
	})

	t.Run("ReturnsCopies", func(t *testing.T) {
		buf := []byte{0, 0, 0, 4, 1, 2, 3, 4}
		data, err := NewReader(buf).ReadOpaque()
		require.NoError(t, err)
		buf[4] = 0xAA
		assert.Equal(t, []byte{1, 2, 3, 4}, data)
	})

	t.Run("ReadsFixedOpaque", func(t *testing.T) {
		r := NewReader([]byte{1, 2, 3, 0, 9})
		data, err := r.ReadFixedOpaque(3)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, data)
		assert.Equal(t, []byte{9}, r.Rest())
	})
}

// ============================================================================
// Round Trip Tests
// ============================================================================

func TestStringRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 3, 4, 257} {
		s := strings.Repeat("n", n)

		w := NewWriterSize(StringLen(s))
		require.NoError(t, w.WriteString(s))
		require.True(t, w.Full())

		r := NewReader(w.Bytes())
		got, err := r.ReadString()
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.Equal(t, StringLen(s), r.Offset())
	}
}

// ============================================================================
// Buffer Writer Tests
// ============================================================================

func TestWriteXDROpaque(t *testing.T) {
	t.Run("MatchesCursorWriter", func(t *testing.T) {
		data := []byte{1, 2, 3, 4, 5}

		var buf bytes.Buffer
		require.NoError(t, WriteXDROpaque(&buf, data))

		w := NewWriterSize(BytesLen(data))
		require.NoError(t, w.WriteOpaque(data))

		assert.Equal(t, w.Bytes(), buf.Bytes())
	})

	t.Run("WritesString", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteXDRString(&buf, "test"))
		assert.Equal(t, []byte{0, 0, 0, 4, 't', 'e', 's', 't'}, buf.Bytes())
	})
}

// ============================================================================
// Marshal / Unmarshal Tests
// ============================================================================

type pair struct {
	A uint32
	B string
}

func (p *pair) EncodedLen() int { return Uint32Len + StringLen(p.B) }

func (p *pair) Encode(w *Writer) error {
	if err := w.WriteUint32(p.A); err != nil {
		return err
	}
	return w.WriteString(p.B)
}

func (p *pair) Decode(r *Reader) error {
	var err error
	if p.A, err = r.ReadUint32(); err != nil {
		return err
	}
	p.B, err = r.ReadString()
	return err
}

type shortEncoder struct{}

func (shortEncoder) EncodedLen() int        { return 8 }
func (shortEncoder) Encode(w *Writer) error { return w.WriteUint32(1) }

func TestMarshal(t *testing.T) {
	t.Run("RoundTrips", func(t *testing.T) {
		data, err := Marshal(&pair{A: 7, B: "hello"})
		require.NoError(t, err)
		assert.Len(t, data, 4+12)

		var out pair
		n, err := Unmarshal(data, &out)
		require.NoError(t, err)
		assert.Equal(t, len(data), n)
		assert.Equal(t, pair{A: 7, B: "hello"}, out)
	})

	t.Run("RejectsUnderfilledBuffer", func(t *testing.T) {
		_, err := Marshal(shortEncoder{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "wrote 4 of 8 bytes")
	})

	t.Run("UnmarshalPropagatesShortBuffer", func(t *testing.T) {
		var out pair
		_, err := Unmarshal([]byte{0, 0, 0, 1, 0, 0}, &out)
		assert.True(t, errors.Is(err, ErrShortBuffer))
	})
}
