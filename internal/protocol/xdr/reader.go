package xdr

import (
	"encoding/binary"
	"fmt"
)

// ============================================================================
// Reader - Wire Format → Go Types
// ============================================================================

// Reader is a read cursor over an XDR-encoded byte slice.
//
// Every read either consumes exactly the bytes of one complete item or fails
// without moving the cursor. A read that runs past the end of the slice
// returns an error wrapping ErrShortBuffer; there is no partial value.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader positioned at the start of buf.
// The Reader does not copy buf; opaque values it returns are copies.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Rest returns the unread bytes without consuming them.
func (r *Reader) Rest() []byte {
	return r.buf[r.off:]
}

func (r *Reader) need(n int, what string) error {
	if n < 0 || r.Remaining() < n {
		return fmt.Errorf("read %s: need %d bytes, have %d: %w", what, n, r.Remaining(), ErrShortBuffer)
	}
	return nil
}

// ReadUint32 decodes an unsigned 32-bit integer (RFC 4506 Section 4.2).
func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.need(Uint32Len, "uint32"); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += Uint32Len
	return v, nil
}

// ReadInt32 decodes a signed 32-bit integer (RFC 4506 Section 4.1).
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 decodes an unsigned hyper integer (RFC 4506 Section 4.5).
func (r *Reader) ReadUint64() (uint64, error) {
	if err := r.need(Uint64Len, "uint64"); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.buf[r.off:])
	r.off += Uint64Len
	return v, nil
}

// ReadBool decodes a boolean. Any non-zero value is true.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadOpaque decodes variable-length opaque data (RFC 4506 Section 4.10).
//
// Format: [length:uint32][data:length bytes][padding:0-3 bytes]
//
// The length prefix, the data and the padding must all be present; otherwise
// the cursor is left where it was and ErrShortBuffer is returned.
func (r *Reader) ReadOpaque() ([]byte, error) {
	if err := r.need(Uint32Len, "opaque length"); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(r.buf[r.off:])
	if length > MaxOpaqueLength {
		return nil, fmt.Errorf("opaque length %d exceeds maximum %d: %w", length, MaxOpaqueLength, ErrLengthExceeded)
	}

	n := int(length)
	if err := r.need(OpaqueLen(n), "opaque data"); err != nil {
		return nil, err
	}

	start := r.off + Uint32Len
	data := make([]byte, n)
	copy(data, r.buf[start:start+n])
	r.off += OpaqueLen(n)
	return data, nil
}

// ReadString decodes an XDR string (RFC 4506 Section 4.11).
// Strings share the opaque encoding; the NUL terminator is never transmitted.
func (r *Reader) ReadString() (string, error) {
	data, err := r.ReadOpaque()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadFixedOpaque decodes n bytes of fixed-length opaque data plus padding
// (RFC 4506 Section 4.9).
func (r *Reader) ReadFixedOpaque(n int) ([]byte, error) {
	if err := r.need(n+Pad(n), "fixed opaque"); err != nil {
		return nil, err
	}
	data := make([]byte, n)
	copy(data, r.buf[r.off:r.off+n])
	r.off += n + Pad(n)
	return data, nil
}
