package rpc

import (
	"fmt"

	"github.com/marmos91/nfscall/internal/protocol/xdr"
)

// callHeaderFixedLen covers xid, msg type, rpc version, program, version
// and procedure.
const callHeaderFixedLen = 6 * xdr.Uint32Len

// CallHeader is the RPC CALL message header that precedes every procedure's
// arguments.
//
// Wire format per RFC 5531:
//
//	XID:        [uint32]
//	MsgType:    [uint32] = 0 (CALL)
//	RPCVersion: [uint32] = 2
//	Program:    [uint32]
//	Version:    [uint32]
//	Procedure:  [uint32]
//	Cred:       [opaque_auth]
//	Verf:       [opaque_auth]
//	Args:       [procedure args]
type CallHeader struct {
	XID       uint32
	Program   uint32
	Version   uint32
	Procedure uint32
	Cred      OpaqueAuth
	Verf      OpaqueAuth
}

// EncodedLen returns the exact header size, credentials included.
func (h *CallHeader) EncodedLen() int {
	return callHeaderFixedLen + h.Cred.EncodedLen() + h.Verf.EncodedLen()
}

// Encode writes the header. The writer is left positioned at the first
// argument byte.
func (h *CallHeader) Encode(w *xdr.Writer) error {
	fields := [...]struct {
		name string
		v    uint32
	}{
		{"xid", h.XID},
		{"msg type", RPCCall},
		{"rpc version", RPCVersion},
		{"program", h.Program},
		{"version", h.Version},
		{"procedure", h.Procedure},
	}
	for _, f := range fields {
		if err := w.WriteUint32(f.v); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	if err := h.Cred.Encode(w); err != nil {
		return fmt.Errorf("write cred: %w", err)
	}
	if err := h.Verf.Encode(w); err != nil {
		return fmt.Errorf("write verf: %w", err)
	}
	return nil
}

// ParseCall decodes an RPC CALL header from r and leaves r positioned at the
// start of the procedure arguments.
func ParseCall(r *xdr.Reader) (*CallHeader, error) {
	h := &CallHeader{}

	var err error
	if h.XID, err = r.ReadUint32(); err != nil {
		return nil, fmt.Errorf("read xid: %w", err)
	}

	msgType, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("read msg type: %w", err)
	}
	if msgType != RPCCall {
		return nil, fmt.Errorf("msg type %d (xid 0x%x): %w", msgType, h.XID, ErrNotCall)
	}

	rpcVers, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("read rpc version: %w", err)
	}
	if rpcVers != RPCVersion {
		return nil, fmt.Errorf("rpc version %d: %w", rpcVers, ErrRPCVersion)
	}

	if h.Program, err = r.ReadUint32(); err != nil {
		return nil, fmt.Errorf("read program: %w", err)
	}
	if h.Version, err = r.ReadUint32(); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if h.Procedure, err = r.ReadUint32(); err != nil {
		return nil, fmt.Errorf("read procedure: %w", err)
	}
	if h.Cred, err = decodeOpaqueAuth(r); err != nil {
		return nil, fmt.Errorf("read cred: %w", err)
	}
	if h.Verf, err = decodeOpaqueAuth(r); err != nil {
		return nil, fmt.Errorf("read verf: %w", err)
	}

	return h, nil
}

// UnixAuth returns the parsed AUTH_UNIX credential, or nil if the call uses
// a different flavor.
func (h *CallHeader) UnixAuth() (*UnixAuth, error) {
	if h.Cred.Flavor != AuthUnix {
		return nil, nil
	}
	return ParseUnixAuth(h.Cred.Body)
}
