package rpc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/marmos91/nfscall/internal/protocol/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeHeader(t *testing.T, h *CallHeader, args []byte) []byte {
	t.Helper()
	w := xdr.NewWriterSize(h.EncodedLen() + len(args))
	require.NoError(t, h.Encode(w))
	require.NoError(t, w.WriteFixedOpaque(args))
	return w.Bytes()
}

// ============================================================================
// CallHeader Tests
// ============================================================================

func TestCallHeader(t *testing.T) {
	t.Run("NullAuthHeaderIs40Bytes", func(t *testing.T) {
		h := &CallHeader{XID: 1, Program: ProgramNFS, Version: NFSVersion3, Procedure: 12, Cred: NullAuth(), Verf: NullAuth()}
		assert.Equal(t, 40, h.EncodedLen())
	})

	t.Run("RoundTripsWithUnixCredentials", func(t *testing.T) {
		cred, err := validAuthUnixCredentials().OpaqueAuth()
		require.NoError(t, err)

		h := &CallHeader{XID: 0xDEADBEEF, Program: ProgramNFS, Version: NFSVersion3, Procedure: 12, Cred: cred, Verf: NullAuth()}
		args := []byte{0, 0, 0, 0}
		msg := encodeHeader(t, h, args)

		r := xdr.NewReader(msg)
		parsed, err := ParseCall(r)
		require.NoError(t, err)
		assert.Equal(t, h.XID, parsed.XID)
		assert.Equal(t, h.Procedure, parsed.Procedure)
		assert.Equal(t, cred, parsed.Cred)
		assert.Equal(t, h.EncodedLen(), r.Offset(), "reader must stop at the arguments")
		assert.Equal(t, args, r.Rest())

		auth, err := parsed.UnixAuth()
		require.NoError(t, err)
		assert.Equal(t, "testhost", auth.MachineName)
	})

	t.Run("UnixAuthIsNilForNullFlavor", func(t *testing.T) {
		h := &CallHeader{Cred: NullAuth()}
		auth, err := h.UnixAuth()
		require.NoError(t, err)
		assert.Nil(t, auth)
	})

	t.Run("RejectsReplyMessage", func(t *testing.T) {
		reply, err := MakeErrorReply(5, RPCProcUnavail)
		require.NoError(t, err)

		_, err = ParseCall(xdr.NewReader(reply[4:]))
		assert.True(t, errors.Is(err, ErrNotCall))
	})

	t.Run("RejectsWrongRPCVersion", func(t *testing.T) {
		h := &CallHeader{XID: 1, Cred: NullAuth(), Verf: NullAuth()}
		msg := encodeHeader(t, h, nil)
		msg[11] = 3 // rpc version

		_, err := ParseCall(xdr.NewReader(msg))
		assert.True(t, errors.Is(err, ErrRPCVersion))
	})

	t.Run("FailsOnTruncatedHeader", func(t *testing.T) {
		h := &CallHeader{XID: 1, Cred: NullAuth(), Verf: NullAuth()}
		msg := encodeHeader(t, h, nil)

		_, err := ParseCall(xdr.NewReader(msg[:30]))
		assert.True(t, errors.Is(err, xdr.ErrShortBuffer))
	})
}

// ============================================================================
// Record Marking Tests
// ============================================================================

func TestRecordMarking(t *testing.T) {
	t.Run("ReassemblesFragments", func(t *testing.T) {
		var stream bytes.Buffer
		stream.Write(AddRecordMark([]byte("hello "), false))
		stream.Write(AddRecordMark([]byte("world"), true))

		record, err := ReadRecord(&stream, 0)
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(record))
	})

	t.Run("ReturnsEOFOnCleanClose", func(t *testing.T) {
		_, err := ReadRecord(bytes.NewReader(nil), 0)
		assert.Equal(t, io.EOF, err)
	})

	t.Run("FailsOnTruncatedFragment", func(t *testing.T) {
		framed := AddRecordMark([]byte("abcdef"), true)
		_, err := ReadRecord(bytes.NewReader(framed[:7]), 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	})

	t.Run("RejectsOversizedRecord", func(t *testing.T) {
		framed := AddRecordMark(make([]byte, 64), true)
		_, err := ReadRecord(bytes.NewReader(framed), 32)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "record too large")
	})

	t.Run("RecordWriterFramesEachWrite", func(t *testing.T) {
		var stream bytes.Buffer
		rw := NewRecordWriter(&stream)

		n, err := rw.Write([]byte("one"))
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		_, err = rw.Write([]byte("two"))
		require.NoError(t, err)

		first, err := ReadRecord(&stream, 0)
		require.NoError(t, err)
		second, err := ReadRecord(&stream, 0)
		require.NoError(t, err)
		assert.Equal(t, "one", string(first))
		assert.Equal(t, "two", string(second))
	})
}

// ============================================================================
// Reply Tests
// ============================================================================

func TestParseReplyHeader(t *testing.T) {
	t.Run("ParsesSuccessWithBody", func(t *testing.T) {
		reply, err := MakeSuccessReply(0x42, []byte{0, 0, 0, 0})
		require.NoError(t, err)

		r := xdr.NewReader(reply[4:])
		h, err := ParseReplyHeader(r)
		require.NoError(t, err)
		assert.Equal(t, uint32(0x42), h.XID)
		assert.True(t, h.Accepted)
		assert.Equal(t, uint32(RPCSuccess), h.AcceptStat)
		assert.Equal(t, []byte{0, 0, 0, 0}, r.Rest())
	})

	t.Run("ParsesProgMismatchRange", func(t *testing.T) {
		reply, err := MakeProgMismatchReply(9, 3, 4)
		require.NoError(t, err)

		h, err := ParseReplyHeader(xdr.NewReader(reply[4:]))
		require.NoError(t, err)
		assert.Equal(t, uint32(RPCProgMismatch), h.AcceptStat)
		assert.Equal(t, uint32(3), h.Low)
		assert.Equal(t, uint32(4), h.High)
	})

	t.Run("ParsesGarbageArgs", func(t *testing.T) {
		reply, err := MakeErrorReply(9, RPCGarbageArgs)
		require.NoError(t, err)

		h, err := ParseReplyHeader(xdr.NewReader(reply[4:]))
		require.NoError(t, err)
		assert.Equal(t, "GARBAGE_ARGS", AcceptStatName(h.AcceptStat))
	})

	t.Run("MakeErrorReplyRejectsSuccess", func(t *testing.T) {
		_, err := MakeErrorReply(1, RPCSuccess)
		assert.Error(t, err)
	})
}

// ============================================================================
// Client Tests
// ============================================================================

func TestClientCall(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		record, err := ReadRecord(conn, 0)
		if err != nil {
			return
		}
		h, err := ParseCall(xdr.NewReader(record))
		if err != nil {
			return
		}
		reply, _ := MakeErrorReply(h.XID, RPCProcUnavail)
		_, _ = conn.Write(reply)
	}()

	h := &CallHeader{XID: 77, Program: ProgramNFS, Version: NFSVersion3, Procedure: 12, Cred: NullAuth(), Verf: NullAuth()}
	msg := encodeHeader(t, h, nil)

	c := &Client{Timeout: 2 * time.Second}
	reply, err := c.Call(context.Background(), ln.Addr().String(), msg)
	require.NoError(t, err)
	assert.Equal(t, uint32(77), reply.Header.XID)
	assert.Equal(t, uint32(RPCProcUnavail), reply.Header.AcceptStat)
	assert.Empty(t, reply.Body)
}

func TestClientCallDetectsXIDMismatch(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		if _, err := ReadRecord(conn, 0); err != nil {
			return
		}
		reply, _ := MakeErrorReply(1234, RPCProcUnavail)
		_, _ = conn.Write(reply)
	}()

	h := &CallHeader{XID: 77, Cred: NullAuth(), Verf: NullAuth()}
	c := &Client{Timeout: 2 * time.Second}
	_, err = c.Call(context.Background(), ln.Addr().String(), encodeHeader(t, h, nil))
	assert.True(t, errors.Is(err, ErrXIDMismatch))
}
