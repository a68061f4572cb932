package call

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/marmos91/nfscall/internal/protocol/xdr"
	goxdr "github.com/rasky/go-xdr/xdr2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirOpArgsEncodedLen(t *testing.T) {
	tests := []struct {
		size    int
		wantLen int // per field: 4-byte prefix + data rounded up to 4
	}{
		{0, 4},
		{1, 8},
		{3, 8},
		{4, 8},
		{257, 264},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("Len%d", tt.size), func(t *testing.T) {
			args := &DirOpArgs{
				Dir:  FileHandle(bytes.Repeat([]byte{0xfe}, tt.size)),
				Name: strings.Repeat("n", tt.size),
			}
			assert.Equal(t, 2*tt.wantLen, args.EncodedLen())
			assert.Equal(t, xdr.BytesLen(args.Dir)+xdr.StringLen(args.Name), args.EncodedLen())

			w := xdr.NewWriterSize(args.EncodedLen())
			require.NoError(t, args.Encode(w))
			assert.True(t, w.Full(), "encode must fill exactly EncodedLen bytes")

			var got DirOpArgs
			r := xdr.NewReader(w.Bytes())
			require.NoError(t, got.Decode(r))
			assert.Equal(t, args.EncodedLen(), r.Offset(), "decode must consume exactly EncodedLen bytes")
			assert.Equal(t, []byte(args.Dir), []byte(got.Dir))
			assert.Equal(t, args.Name, got.Name)
		})
	}
}

func TestDirOpArgsWireFormat(t *testing.T) {
	args := &DirOpArgs{Dir: FileHandle{0x01, 0x02, 0x03}, Name: "ab"}

	w := xdr.NewWriterSize(args.EncodedLen())
	require.NoError(t, args.Encode(w))

	expected := []byte{
		0x00, 0x00, 0x00, 0x03, 0x01, 0x02, 0x03, 0x00, // dir + 1 pad byte
		0x00, 0x00, 0x00, 0x02, 'a', 'b', 0x00, 0x00, // name + 2 pad bytes
	}
	assert.Equal(t, expected, w.Bytes())
}

// The argument section must match what an independent XDR implementation
// produces for the same diropargs3 structure.
func TestDirOpArgsMatchesReflectiveXDR(t *testing.T) {
	inputs := []DirOpArgs{
		{Dir: FileHandle{}, Name: ""},
		{Dir: FileHandle("AAAAAAAAAAAAAAAA"), Name: "report.txt"},
		{Dir: FileHandle{0xde, 0xad, 0xbe, 0xef, 0x01}, Name: "a b c"},
	}

	for _, args := range inputs {
		var ref bytes.Buffer
		_, err := goxdr.Marshal(&ref, &struct {
			Dir  []byte
			Name string
		}{args.Dir, args.Name})
		require.NoError(t, err)

		w := xdr.NewWriterSize(args.EncodedLen())
		require.NoError(t, args.Encode(w))
		assert.Equal(t, ref.Bytes(), w.Bytes(), "args %s", args)

		var decoded struct {
			Dir  []byte
			Name string
		}
		_, err = goxdr.Unmarshal(bytes.NewReader(w.Bytes()), &decoded)
		require.NoError(t, err)
		assert.Equal(t, args.Name, decoded.Name)
	}
}

func TestDirOpArgsDecodeFailure(t *testing.T) {
	t.Run("TruncatedLengthPrefix", func(t *testing.T) {
		args := DirOpArgs{Dir: FileHandle{9}, Name: "keep"}
		err := args.Decode(xdr.NewReader([]byte{0x00, 0x00}))
		require.Error(t, err)
		assert.True(t, errors.Is(err, xdr.ErrShortBuffer))
		assert.Equal(t, "keep", args.Name, "args must be untouched on failure")
		assert.Equal(t, FileHandle{9}, args.Dir)
	})

	t.Run("MissingName", func(t *testing.T) {
		w := xdr.NewWriterSize(8)
		require.NoError(t, w.WriteOpaque([]byte{1, 2, 3, 4}))

		var args DirOpArgs
		err := args.Decode(xdr.NewReader(w.Bytes()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read name")
		assert.Nil(t, args.Dir)
	})
}

func TestFileHandleString(t *testing.T) {
	assert.Equal(t, "00ff10", FileHandle{0x00, 0xff, 0x10}.String())
	assert.Equal(t, `{dir=0102 name="x"}`, DirOpArgs{Dir: FileHandle{1, 2}, Name: "x"}.String())
}
