package call

import (
	"fmt"

	"github.com/marmos91/nfscall/internal/protocol/xdr"
)

// RmdirCall is the RMDIR procedure (RFC 1813 section 3.3.13). It shares
// REMOVE's diropargs3 arguments.
type RmdirCall struct {
	Envelope
	Args DirOpArgs
}

// NewRmdirCall builds an RMDIR call; nil args leaves both fields empty.
func NewRmdirCall(env Envelope, args *DirOpArgs) *RmdirCall {
	return &RmdirCall{Envelope: env, Args: defaultDirOpArgs(args)}
}

func (c *RmdirCall) Proc() Proc { return ProcRmdir }
func (c *RmdirCall) ArgsLen() int { return c.Args.EncodedLen() }
func (c *RmdirCall) DecodeArgs(r *xdr.Reader) error { return c.Args.Decode(r) }
func (c *RmdirCall) EncodeArgs(w *xdr.Writer) error { return c.Args.Encode(w) }
func (c *RmdirCall) Target() FileHandle { return c.Args.Dir }
func (c *RmdirCall) Entry() *DirOpArgs { return &c.Args }

func (c *RmdirCall) String() string {
	return fmt.Sprintf("RMDIR xid=0x%08x %s", c.XID, c.Args)
}

// LookupCall is the LOOKUP procedure (RFC 1813 section 3.3.3).
type LookupCall struct {
	Envelope
	Args DirOpArgs
}

// NewLookupCall builds a LOOKUP call; nil args leaves both fields empty.
func NewLookupCall(env Envelope, args *DirOpArgs) *LookupCall {
	return &LookupCall{Envelope: env, Args: defaultDirOpArgs(args)}
}

func (c *LookupCall) Proc() Proc { return ProcLookup }
func (c *LookupCall) ArgsLen() int { return c.Args.EncodedLen() }
func (c *LookupCall) DecodeArgs(r *xdr.Reader) error { return c.Args.Decode(r) }
func (c *LookupCall) EncodeArgs(w *xdr.Writer) error { return c.Args.Encode(w) }
func (c *LookupCall) Target() FileHandle { return c.Args.Dir }
func (c *LookupCall) Entry() *DirOpArgs { return &c.Args }

func (c *LookupCall) String() string {
	return fmt.Sprintf("LOOKUP xid=0x%08x %s", c.XID, c.Args)
}

// NullCall is the NULL procedure. It has no arguments and touches nothing.
type NullCall struct {
	Envelope
}

// NewNullCall builds a NULL call.
func NewNullCall(env Envelope) *NullCall {
	return &NullCall{Envelope: env}
}

func (c *NullCall) Proc() Proc { return ProcNull }
func (c *NullCall) ArgsLen() int { return 0 }
func (c *NullCall) DecodeArgs(*xdr.Reader) error { return nil }
func (c *NullCall) EncodeArgs(*xdr.Writer) error { return nil }
func (c *NullCall) Target() FileHandle { return nil }

func (c *NullCall) String() string {
	return fmt.Sprintf("NULL xid=0x%08x", c.XID)
}

func defaultDirOpArgs(args *DirOpArgs) DirOpArgs {
	if args == nil {
		return DirOpArgs{Dir: FileHandle{}}
	}
	a := *args
	if a.Dir == nil {
		a.Dir = FileHandle{}
	}
	return a
}
