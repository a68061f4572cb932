package call

import (
	"fmt"

	"github.com/marmos91/nfscall/internal/protocol/xdr"
)

// RemoveCall is the REMOVE procedure (RFC 1813 section 3.3.12): delete the
// entry Args.Name from the directory Args.Dir.
//
// Only the argument side lives here. REMOVE3res is produced by the server
// handler and is not part of this type.
type RemoveCall struct {
	Envelope
	Args DirOpArgs
}

var _ ProcedureCall = (*RemoveCall)(nil)

// NewRemoveCall builds a REMOVE call. A nil args leaves both the directory
// handle and the name empty.
func NewRemoveCall(env Envelope, args *DirOpArgs) *RemoveCall {
	return &RemoveCall{Envelope: env, Args: defaultDirOpArgs(args)}
}

// NewRemoveCallFromConfig builds a REMOVE call from a configuration map:
//
//	xid: 42
//	direction: outgoing
//	auth: {machine: host, uid: 1000, gid: 1000, gids: [1000]}
//	object: {dir: <handle>, name: report.txt}
//
// Every key is optional. raw must be a map, and object, when present, must be
// a map too; anything else fails with ErrInvalidConfig and no call is built.
func NewRemoveCallFromConfig(raw any) (*RemoveCall, error) {
	env, args, err := decodeCallConfig(raw)
	if err != nil {
		return nil, fmt.Errorf("REMOVE: %w", err)
	}
	return NewRemoveCall(env, args), nil
}

func (c *RemoveCall) Proc() Proc { return ProcRemove }

func (c *RemoveCall) ArgsLen() int { return c.Args.EncodedLen() }

func (c *RemoveCall) DecodeArgs(r *xdr.Reader) error { return c.Args.Decode(r) }

func (c *RemoveCall) EncodeArgs(w *xdr.Writer) error { return c.Args.Encode(w) }

// Target returns the directory the entry is removed from.
func (c *RemoveCall) Target() FileHandle { return c.Args.Dir }

func (c *RemoveCall) String() string {
	return fmt.Sprintf("REMOVE xid=0x%08x %s", c.XID, c.Args)
}

// Entry returns the call's diropargs3.
func (c *RemoveCall) Entry() *DirOpArgs { return &c.Args }
