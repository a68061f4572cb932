package call

import (
	"encoding/hex"
	"fmt"

	"github.com/marmos91/nfscall/internal/protocol/xdr"
)

// FileHandle is an opaque NFSv3 file handle as carried on the wire.
type FileHandle []byte

func (h FileHandle) String() string {
	return hex.EncodeToString(h)
}

// DirOpArgs is diropargs3: a directory handle and an entry name within it.
//
// Wire format:
//
//	dir:  opaque<>  (length-prefixed handle bytes, padded to 4)
//	name: string<>  (length-prefixed, padded to 4, no NUL)
//
// No bound beyond XDR framing is enforced. Name length policy belongs to the
// server.
type DirOpArgs struct {
	Dir  FileHandle
	Name string
}

// EncodedLen returns 4 + pad4(len(dir)) + 4 + pad4(len(name)).
func (a *DirOpArgs) EncodedLen() int {
	return xdr.BytesLen(a.Dir) + xdr.StringLen(a.Name)
}

// Encode writes dir then name.
func (a *DirOpArgs) Encode(w *xdr.Writer) error {
	if err := w.WriteOpaque(a.Dir); err != nil {
		return fmt.Errorf("write dir handle: %w", err)
	}
	if err := w.WriteString(a.Name); err != nil {
		return fmt.Errorf("write name: %w", err)
	}
	return nil
}

// Decode reads dir then name. a is only modified when both fields decode.
func (a *DirOpArgs) Decode(r *xdr.Reader) error {
	dir, err := r.ReadOpaque()
	if err != nil {
		return fmt.Errorf("read dir handle: %w", err)
	}
	name, err := r.ReadString()
	if err != nil {
		return fmt.Errorf("read name: %w", err)
	}

	a.Dir = FileHandle(dir)
	a.Name = name
	return nil
}

func (a DirOpArgs) String() string {
	return fmt.Sprintf("{dir=%s name=%q}", a.Dir, a.Name)
}
