// Package xdr implements the XDR (External Data Representation) primitives
// used by ONC RPC and NFS, per RFC 4506.
//
// Two styles are provided:
//   - Cursor codecs (Reader, Writer) that work over a pre-sized byte slice.
//     These are used by the procedure argument marshalers, where the exact
//     encoded length is known before any byte is written.
//   - Buffer writers (WriteUint32, WriteXDROpaque, ...) that append to a
//     bytes.Buffer, used where the final size is not known up front.
//
// Key characteristics of XDR:
//   - Big-endian byte order for all multi-byte integers
//   - 4-byte alignment for all data types
//   - Variable-length data is preceded by a 4-byte length
//   - Strings and opaque data are zero-padded to 4-byte boundaries
//
// This package has no dependencies on other nfscall packages.
//
// Reference: RFC 4506 - XDR: External Data Representation Standard
// https://tools.ietf.org/html/rfc4506
package xdr

import "errors"

// MaxOpaqueLength bounds variable-length opaque and string reads.
// NFS never carries more than 1 MB in a single opaque field.
const MaxOpaqueLength = 1024 * 1024

var (
	// ErrShortBuffer is returned when a read needs more bytes than remain.
	ErrShortBuffer = errors.New("xdr: short buffer")

	// ErrBufferOverflow is returned when a write does not fit the buffer.
	ErrBufferOverflow = errors.New("xdr: buffer overflow")

	// ErrLengthExceeded is returned when a decoded length prefix is larger
	// than MaxOpaqueLength.
	ErrLengthExceeded = errors.New("xdr: length exceeds maximum")
)
