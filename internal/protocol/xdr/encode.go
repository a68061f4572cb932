package xdr

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ============================================================================
// Buffer Writers - append to a bytes.Buffer
// ============================================================================
//
// These are used where the final message size is not computed up front,
// such as RPC reply construction.

// WriteUint32 appends a big-endian unsigned 32-bit integer to buf.
func WriteUint32(buf *bytes.Buffer, v uint32) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write uint32: %w", err)
	}
	return nil
}

// WriteXDROpaque appends variable-length opaque data: length + data + padding.
//
// Example:
//
//	[]byte{0x01, 0x02, 0x03} → [00 00 00 03][01 02 03][00] (8 bytes total)
func WriteXDROpaque(buf *bytes.Buffer, data []byte) error {
	length := uint32(len(data))
	if err := WriteUint32(buf, length); err != nil {
		return fmt.Errorf("write opaque length: %w", err)
	}
	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write opaque data: %w", err)
	}
	return WriteXDRPadding(buf, length)
}

// WriteXDRString appends s as an XDR string.
func WriteXDRString(buf *bytes.Buffer, s string) error {
	return WriteXDROpaque(buf, []byte(s))
}

// WriteXDRPadding appends the zero bytes that align dataLen bytes of data
// to a 4-byte boundary.
//
//	dataLen=3 → 1 byte, dataLen=4 → 0 bytes, dataLen=5 → 3 bytes
func WriteXDRPadding(buf *bytes.Buffer, dataLen uint32) error {
	var zero [3]byte
	if _, err := buf.Write(zero[:Pad(int(dataLen))]); err != nil {
		return fmt.Errorf("write padding: %w", err)
	}
	return nil
}
