package call

import (
	"bytes"
	"fmt"

	"github.com/marmos91/nfscall/internal/protocol/nfs/rpc"
	"github.com/marmos91/nfscall/internal/protocol/xdr"
)

// Marshal encodes c as a complete RPC call message, header included and
// without record marking.
func Marshal(c ProcedureCall, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewOutbound(c, &buf, opts...).Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses a complete RPC call message, looks its procedure up in
// reg and decodes the arguments through an Inbound stage. A nil reg means
// DefaultRegistry.
func Unmarshal(reg *Registry, data []byte, opts ...Option) (ProcedureCall, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}

	r := xdr.NewReader(data)
	h, err := rpc.ParseCall(r)
	if err != nil {
		return nil, fmt.Errorf("parse call header: %w", err)
	}
	if h.Program != rpc.ProgramNFS || h.Version != rpc.NFSVersion3 {
		return nil, fmt.Errorf("%w: program %d version %d", ErrNotNFSv3, h.Program, h.Version)
	}

	c, err := reg.New(Proc(h.Procedure), EnvelopeFromHeader(h))
	if err != nil {
		return nil, err
	}

	in := NewInbound(c, opts...)
	if _, err := in.Write(r.Rest()); err != nil {
		return nil, err
	}
	if err := in.Close(); err != nil {
		return nil, err
	}
	return in.Call()
}
