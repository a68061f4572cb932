package call

import (
	"fmt"

	"github.com/marmos91/nfscall/internal/protocol/nfs/rpc"
	"github.com/marmos91/nfscall/internal/protocol/xdr"
)

// Envelope carries the metadata every NFS call shares: transaction id,
// direction and credentials. Procedures embed it and never write header
// bytes themselves.
//
// An Envelope belongs to exactly one call. It is not safe for concurrent use.
type Envelope struct {
	XID       uint32
	Direction Direction
	Cred      rpc.OpaqueAuth
	Verf      rpc.OpaqueAuth
}

// Env returns e itself, so any struct embedding Envelope exposes it
// through the ProcedureCall interface.
func (e *Envelope) Env() *Envelope {
	return e
}

// Header builds the RPC call header for proc.
func (e *Envelope) Header(proc Proc) *rpc.CallHeader {
	return &rpc.CallHeader{
		XID:       e.XID,
		Program:   rpc.ProgramNFS,
		Version:   rpc.NFSVersion3,
		Procedure: uint32(proc),
		Cred:      e.Cred,
		Verf:      e.Verf,
	}
}

// Serialize allocates a buffer of exactly header plus payloadLen bytes,
// writes the RPC call header for proc into it and returns a writer
// positioned at the first argument byte.
func (e *Envelope) Serialize(proc Proc, payloadLen int) (*xdr.Writer, error) {
	if payloadLen < 0 {
		return nil, fmt.Errorf("serialize %s: negative payload length %d", proc, payloadLen)
	}

	h := e.Header(proc)
	w := xdr.NewWriterSize(h.EncodedLen() + payloadLen)
	if err := h.Encode(w); err != nil {
		return nil, fmt.Errorf("serialize %s header: %w", proc, err)
	}
	return w, nil
}

// UnixAuth returns the AUTH_UNIX credential of the call, or nil when the
// call carries another flavor.
func (e *Envelope) UnixAuth() (*rpc.UnixAuth, error) {
	if e.Cred.Flavor != rpc.AuthUnix {
		return nil, nil
	}
	return rpc.ParseUnixAuth(e.Cred.Body)
}

// EnvelopeFromHeader returns the envelope of a parsed incoming call.
func EnvelopeFromHeader(h *rpc.CallHeader) Envelope {
	return Envelope{
		XID:       h.XID,
		Direction: Incoming,
		Cred:      h.Cred,
		Verf:      h.Verf,
	}
}
