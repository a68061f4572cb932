package xdr

import "fmt"

// ============================================================================
// XDR Codec Interfaces
// ============================================================================

// Encoder is implemented by types that know their exact encoded size and can
// write themselves through a Writer.
type Encoder interface {
	EncodedLen() int
	Encode(w *Writer) error
}

// Decoder is implemented by types that can read themselves from a Reader.
type Decoder interface {
	Decode(r *Reader) error
}

// Marshal encodes v into a buffer of exactly v.EncodedLen() bytes.
//
// It is an error for v to write fewer bytes than it reported; that mismatch
// would corrupt whatever follows it on the wire.
func Marshal(v Encoder) ([]byte, error) {
	w := NewWriterSize(v.EncodedLen())
	if err := v.Encode(w); err != nil {
		return nil, fmt.Errorf("xdr marshal: %w", err)
	}
	if !w.Full() {
		return nil, fmt.Errorf("xdr marshal: wrote %d of %d bytes", w.Offset(), v.EncodedLen())
	}
	return w.Bytes(), nil
}

// Unmarshal decodes v from data and returns the number of bytes consumed.
// Trailing bytes are not an error.
func Unmarshal(data []byte, v Decoder) (int, error) {
	r := NewReader(data)
	if err := v.Decode(r); err != nil {
		return r.Offset(), fmt.Errorf("xdr unmarshal: %w", err)
	}
	return r.Offset(), nil
}
