package call

import (
	"errors"

	"github.com/marmos91/nfscall/internal/protocol/xdr"
)

var (
	// ErrInvalidConfig is returned when a call is built from a configuration
	// value of the wrong shape.
	ErrInvalidConfig = errors.New("invalid call config")

	// ErrUnknownProcedure is returned for procedure numbers or names that no
	// registry entry covers.
	ErrUnknownProcedure = errors.New("unknown procedure")

	// ErrPassComplete is returned when a stage is asked to run a second
	// decode or encode pass.
	ErrPassComplete = errors.New("call pass already complete")

	// ErrStageClosed is returned by writes after Close.
	ErrStageClosed = errors.New("call stage closed")

	// ErrWrongDirection is returned when data is pushed into an outgoing
	// stage.
	ErrWrongDirection = errors.New("operation not valid for call direction")

	// ErrNotNFSv3 is returned by Unmarshal for calls to another program or
	// version.
	ErrNotNFSv3 = errors.New("not an NFSv3 call")
)

// ProcedureCall is the contract every NFSv3 procedure implements.
//
// ArgsLen, EncodeArgs and DecodeArgs cover the argument section only; the
// RPC call header is produced by the embedded Envelope.
type ProcedureCall interface {
	// Proc returns the procedure number.
	Proc() Proc

	// Env returns the shared call metadata.
	Env() *Envelope

	// ArgsLen returns the exact encoded size of the argument section.
	ArgsLen() int

	// DecodeArgs reads the argument section. The call's arguments are left
	// untouched when it fails.
	DecodeArgs(r *xdr.Reader) error

	// EncodeArgs writes the argument section.
	EncodeArgs(w *xdr.Writer) error

	// Target returns the file handle of the resource the call touches, or
	// nil for procedures without one.
	Target() FileHandle

	// String returns a trace representation. It is not a wire format.
	String() string
}

// DirOp is implemented by calls whose arguments are a diropargs3.
type DirOp interface {
	Entry() *DirOpArgs
}
