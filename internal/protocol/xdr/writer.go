package xdr

import (
	"encoding/binary"
	"fmt"
)

// ============================================================================
// Writer - Go Types → Wire Format
// ============================================================================

// Writer is a write cursor over a pre-sized byte slice.
//
// Callers size the slice with the length helpers (StringLen, OpaqueLen, ...)
// before writing, so a well-formed encoder fills the buffer exactly. A write
// that does not fit fails with ErrBufferOverflow and writes nothing.
type Writer struct {
	buf []byte
	off int
}

// NewWriter returns a Writer that fills buf from the start.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// NewWriterSize allocates an n-byte buffer and returns a Writer over it.
func NewWriterSize(n int) *Writer {
	return &Writer{buf: make([]byte, n)}
}

// NewWriterAt returns a Writer over buf positioned at off. Bytes before off
// are left untouched; they typically hold a header written by someone else.
func NewWriterAt(buf []byte, off int) *Writer {
	return &Writer{buf: buf, off: off}
}

// Offset returns the number of bytes written so far, including any prefix
// the Writer was positioned past.
func (w *Writer) Offset() int {
	return w.off
}

// Available returns the number of bytes that can still be written.
func (w *Writer) Available() int {
	return len(w.buf) - w.off
}

// Full reports whether every byte of the buffer has been written.
func (w *Writer) Full() bool {
	return w.off == len(w.buf)
}

// Bytes returns the written prefix of the buffer.
func (w *Writer) Bytes() []byte {
	return w.buf[:w.off]
}

func (w *Writer) reserve(n int, what string) error {
	if w.Available() < n {
		return fmt.Errorf("write %s: need %d bytes, have %d: %w", what, n, w.Available(), ErrBufferOverflow)
	}
	return nil
}

// WriteUint32 encodes an unsigned 32-bit integer in big-endian order.
func (w *Writer) WriteUint32(v uint32) error {
	if err := w.reserve(Uint32Len, "uint32"); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(w.buf[w.off:], v)
	w.off += Uint32Len
	return nil
}

// WriteInt32 encodes a signed 32-bit integer in two's complement.
func (w *Writer) WriteInt32(v int32) error {
	return w.WriteUint32(uint32(v))
}

// WriteUint64 encodes an unsigned hyper integer in big-endian order.
func (w *Writer) WriteUint64(v uint64) error {
	if err := w.reserve(Uint64Len, "uint64"); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(w.buf[w.off:], v)
	w.off += Uint64Len
	return nil
}

// WriteBool encodes a boolean as 0 or 1.
func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.WriteUint32(1)
	}
	return w.WriteUint32(0)
}

// WriteOpaque encodes variable-length opaque data: length + data + padding.
//
//	[]byte{0x01, 0x02, 0x03} → [00 00 00 03][01 02 03][00]
func (w *Writer) WriteOpaque(data []byte) error {
	if err := w.reserve(OpaqueLen(len(data)), "opaque"); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(w.buf[w.off:], uint32(len(data)))
	w.off += Uint32Len
	w.off += copy(w.buf[w.off:], data)
	w.zeroPad(len(data))
	return nil
}

// WriteString encodes s as an XDR string: length + bytes + padding.
func (w *Writer) WriteString(s string) error {
	if err := w.reserve(StringLen(s), "string"); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(w.buf[w.off:], uint32(len(s)))
	w.off += Uint32Len
	w.off += copy(w.buf[w.off:], s)
	w.zeroPad(len(s))
	return nil
}

// WriteFixedOpaque encodes data as fixed-length opaque: data + padding,
// with no length prefix.
func (w *Writer) WriteFixedOpaque(data []byte) error {
	if err := w.reserve(len(data)+Pad(len(data)), "fixed opaque"); err != nil {
		return err
	}
	w.off += copy(w.buf[w.off:], data)
	w.zeroPad(len(data))
	return nil
}

// zeroPad writes padding explicitly so reused buffers never leak old bytes.
func (w *Writer) zeroPad(n int) {
	for i := 0; i < Pad(n); i++ {
		w.buf[w.off] = 0
		w.off++
	}
}
