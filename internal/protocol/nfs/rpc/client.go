package rpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/marmos91/nfscall/internal/logger"
	"github.com/marmos91/nfscall/internal/protocol/xdr"
)

// DefaultCallTimeout is the total deadline for one call: dial, write and
// reply read combined.
const DefaultCallTimeout = 5 * time.Second

// Client sends single RPC calls over fresh TCP connections.
//
// There is no connection caching and no retry; a failed call is reported to
// the caller, which decides what to do next.
type Client struct {
	// Timeout is the total deadline per call. Zero means DefaultCallTimeout.
	Timeout time.Duration

	// MaxReplySize bounds the reply record. Zero means MaxFragmentSize.
	MaxReplySize uint32
}

// Reply is a parsed reply: its header and the undecoded procedure result.
type Reply struct {
	Header *ReplyHeader
	Body   []byte
}

// Call sends msg, a complete RPC CALL message without record marking, to
// addr and waits for the matching reply.
func (c *Client) Call(ctx context.Context, addr string, msg []byte) (*Reply, error) {
	if len(msg) < xdr.Uint32Len {
		return nil, fmt.Errorf("call message too short: %d bytes", len(msg))
	}
	xid, _ := xdr.NewReader(msg).ReadUint32()

	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultCallTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(callCtx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	// The remaining time after dial is used for I/O
	if deadline, ok := callCtx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("set deadline: %w", err)
		}
	}

	if _, err := NewRecordWriter(conn).Write(msg); err != nil {
		return nil, fmt.Errorf("write call: %w", err)
	}

	record, err := ReadRecord(conn, c.MaxReplySize)
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}

	r := xdr.NewReader(record)
	header, err := ParseReplyHeader(r)
	if err != nil {
		return nil, fmt.Errorf("parse reply: %w", err)
	}
	if header.XID != xid {
		return nil, fmt.Errorf("sent 0x%x, got 0x%x: %w", xid, header.XID, ErrXIDMismatch)
	}

	logger.Debug("RPC reply received",
		logger.KeyXID, fmt.Sprintf("0x%x", xid),
		"address", addr,
		"accepted", header.Accepted,
		"accept_stat", AcceptStatName(header.AcceptStat))

	return &Reply{Header: header, Body: r.Rest()}, nil
}
