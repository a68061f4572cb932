package rpc

import (
	"bytes"
	"fmt"

	"github.com/marmos91/nfscall/internal/protocol/xdr"
)

// Reject states for MSG_DENIED replies
const (
	RPCMismatch = 0
	RPCAuthErr  = 1
)

// ============================================================================
// Reply Construction
// ============================================================================
//
// Replies are built with record marking already applied, ready to be
// written to a stream connection.
//
// Accepted reply layout:
//
//	XID:        [uint32]
//	MsgType:    [uint32] = 1 (REPLY)
//	ReplyState: [uint32] = 0 (MSG_ACCEPTED)
//	Verf:       AUTH_NULL (flavor=0, length=0)
//	AcceptStat: [uint32]
//	...         [stat-specific data]

func acceptedReplyPrefix(xid, acceptStat uint32) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	for _, v := range [...]uint32{xid, RPCReply, RPCMsgAccepted, AuthNull, 0, acceptStat} {
		if err := xdr.WriteUint32(&buf, v); err != nil {
			return nil, err
		}
	}
	return &buf, nil
}

// MakeSuccessReply builds a SUCCESS reply carrying body as the procedure
// result.
func MakeSuccessReply(xid uint32, body []byte) ([]byte, error) {
	buf, err := acceptedReplyPrefix(xid, RPCSuccess)
	if err != nil {
		return nil, fmt.Errorf("write reply header: %w", err)
	}
	if _, err := buf.Write(body); err != nil {
		return nil, fmt.Errorf("write reply body: %w", err)
	}
	return AddRecordMark(buf.Bytes(), true), nil
}

// MakeErrorReply builds an accepted reply with a non-success status and no
// body, such as PROG_UNAVAIL, PROC_UNAVAIL, GARBAGE_ARGS or SYSTEM_ERR.
func MakeErrorReply(xid uint32, acceptStat uint32) ([]byte, error) {
	if acceptStat == RPCSuccess || acceptStat == RPCProgMismatch {
		return nil, fmt.Errorf("accept status %s needs reply data", AcceptStatName(acceptStat))
	}
	buf, err := acceptedReplyPrefix(xid, acceptStat)
	if err != nil {
		return nil, fmt.Errorf("write reply header: %w", err)
	}
	return AddRecordMark(buf.Bytes(), true), nil
}

// MakeProgMismatchReply builds a PROG_MISMATCH reply advertising the
// supported version range [low, high].
func MakeProgMismatchReply(xid uint32, low, high uint32) ([]byte, error) {
	if low > high {
		return nil, fmt.Errorf("invalid version range: low (%d) > high (%d)", low, high)
	}
	buf, err := acceptedReplyPrefix(xid, RPCProgMismatch)
	if err != nil {
		return nil, fmt.Errorf("write reply header: %w", err)
	}
	if err := xdr.WriteUint32(buf, low); err != nil {
		return nil, fmt.Errorf("write low version: %w", err)
	}
	if err := xdr.WriteUint32(buf, high); err != nil {
		return nil, fmt.Errorf("write high version: %w", err)
	}
	return AddRecordMark(buf.Bytes(), true), nil
}

// ============================================================================
// Reply Parsing
// ============================================================================

// ReplyHeader is the transport-level part of a REPLY message.
type ReplyHeader struct {
	XID        uint32
	Accepted   bool
	AcceptStat uint32
	RejectStat uint32
	// Low and High carry the version range of PROG_MISMATCH and RPC_MISMATCH.
	Low  uint32
	High uint32
	Verf OpaqueAuth
}

// ParseReplyHeader decodes a REPLY header and leaves r positioned at the
// procedure result, if any.
func ParseReplyHeader(r *xdr.Reader) (*ReplyHeader, error) {
	h := &ReplyHeader{}

	var err error
	if h.XID, err = r.ReadUint32(); err != nil {
		return nil, fmt.Errorf("read xid: %w", err)
	}
	msgType, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("read msg type: %w", err)
	}
	if msgType != RPCReply {
		return nil, fmt.Errorf("msg type %d: %w", msgType, ErrNotReply)
	}

	replyStat, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("read reply state: %w", err)
	}

	switch replyStat {
	case RPCMsgAccepted:
		h.Accepted = true
		if h.Verf, err = decodeOpaqueAuth(r); err != nil {
			return nil, fmt.Errorf("read verf: %w", err)
		}
		if h.AcceptStat, err = r.ReadUint32(); err != nil {
			return nil, fmt.Errorf("read accept status: %w", err)
		}
		if h.AcceptStat == RPCProgMismatch {
			if err := h.readRange(r); err != nil {
				return nil, err
			}
		}

	case RPCMsgDenied:
		if h.RejectStat, err = r.ReadUint32(); err != nil {
			return nil, fmt.Errorf("read reject status: %w", err)
		}
		if h.RejectStat == RPCMismatch {
			if err := h.readRange(r); err != nil {
				return nil, err
			}
		}

	default:
		return nil, fmt.Errorf("unknown reply state %d", replyStat)
	}

	return h, nil
}

func (h *ReplyHeader) readRange(r *xdr.Reader) error {
	var err error
	if h.Low, err = r.ReadUint32(); err != nil {
		return fmt.Errorf("read low version: %w", err)
	}
	if h.High, err = r.ReadUint32(); err != nil {
		return fmt.Errorf("read high version: %w", err)
	}
	return nil
}
