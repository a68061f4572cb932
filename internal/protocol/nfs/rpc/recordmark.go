package rpc

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Record marking (RFC 5531 Section 11).
//
// On stream transports every RPC message is sent as a record made of one or
// more fragments. Each fragment starts with a 4-byte header:
//   - Bit 31: Last fragment flag (1 = last, 0 = more fragments)
//   - Bits 0-30: Fragment length in bytes

const (
	lastFragmentBit = 0x80000000
	fragmentLenMask = 0x7FFFFFFF
)

// MaxFragmentSize is the default bound on a single fragment, and on a
// reassembled record, when the caller does not supply one.
const MaxFragmentSize = (1 << 20) + (1 << 18) // 1MB + 256KB headroom

// FragmentHeader is a parsed record-marking fragment header.
type FragmentHeader struct {
	IsLast bool
	Length uint32
}

// ReadFragmentHeader reads and parses one 4-byte fragment header.
//
// EOF is returned unwrapped so callers can tell a clean disconnect from a
// protocol error.
func ReadFragmentHeader(r io.Reader) (*FragmentHeader, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}

	header := binary.BigEndian.Uint32(buf[:])
	return &FragmentHeader{
		IsLast: header&lastFragmentBit != 0,
		Length: header & fragmentLenMask,
	}, nil
}

// ReadRecord reads fragments until the last one and returns the reassembled
// message. maxSize bounds the total record size; zero means MaxFragmentSize.
//
// io.EOF is returned unwrapped only when the stream ends cleanly before the
// first fragment header.
func ReadRecord(r io.Reader, maxSize uint32) ([]byte, error) {
	if maxSize == 0 {
		maxSize = MaxFragmentSize
	}

	var record []byte
	for first := true; ; first = false {
		hdr, err := ReadFragmentHeader(r)
		if err != nil {
			if first && err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read fragment header: %w", err)
		}

		if uint64(len(record))+uint64(hdr.Length) > uint64(maxSize) {
			return nil, fmt.Errorf("record too large: %d bytes (max %d)", uint64(len(record))+uint64(hdr.Length), maxSize)
		}

		start := len(record)
		record = append(record, make([]byte, hdr.Length)...)
		if _, err := io.ReadFull(r, record[start:]); err != nil {
			return nil, fmt.Errorf("read fragment body: %w", err)
		}

		if hdr.IsLast {
			return record, nil
		}
	}
}

// AddRecordMark prefixes msg with a single fragment header.
func AddRecordMark(msg []byte, lastFragment bool) []byte {
	header := uint32(len(msg))
	if lastFragment {
		header |= lastFragmentBit
	}

	result := make([]byte, 4+len(msg))
	binary.BigEndian.PutUint32(result[0:4], header)
	copy(result[4:], msg)
	return result
}

// RecordWriter frames every Write as one complete record. It is the
// downstream sink for call encoders writing to a stream transport.
type RecordWriter struct {
	w io.Writer
}

// NewRecordWriter wraps w.
func NewRecordWriter(w io.Writer) *RecordWriter {
	return &RecordWriter{w: w}
}

// Write sends p as a single last-fragment record and reports len(p) on
// success.
func (rw *RecordWriter) Write(p []byte) (int, error) {
	if len(p) > fragmentLenMask {
		return 0, fmt.Errorf("record too large: %d bytes", len(p))
	}
	if _, err := rw.w.Write(AddRecordMark(p, true)); err != nil {
		return 0, err
	}
	return len(p), nil
}
