// Package rpc implements the ONC RPC version 2 message layer (RFC 5531) that
// NFS runs on: call headers, credentials, record marking, and the
// transport-level replies (accepted/denied status, no procedure results).
package rpc

import "errors"

// Message types
const (
	RPCCall  = 0
	RPCReply = 1
)

// RPCVersion is the only ONC RPC protocol version in use.
const RPCVersion = 2

// Reply states
const (
	RPCMsgAccepted = 0
	RPCMsgDenied   = 1
)

// Accept states (RFC 5531 Section 9)
const (
	RPCSuccess      = 0 // RPC executed successfully
	RPCProgUnavail  = 1 // remote hasn't exported program
	RPCProgMismatch = 2 // remote can't support version #
	RPCProcUnavail  = 3 // program can't support procedure
	RPCGarbageArgs  = 4 // procedure can't decode params
	RPCSystemErr    = 5 // e.g. memory allocation failure
)

// Authentication flavors
const (
	AuthNull  uint32 = 0
	AuthUnix  uint32 = 1
	AuthShort uint32 = 2
	AuthDES   uint32 = 3
)

// Program numbers
const (
	ProgramNFS = 100003
)

// Program versions
const (
	NFSVersion3 = 3
)

// maxAuthBody is the RFC 5531 limit on opaque_auth bodies.
const maxAuthBody = 400

var (
	// ErrNotCall is returned when a message that should be a CALL is not.
	ErrNotCall = errors.New("rpc: not a call message")

	// ErrNotReply is returned when a message that should be a REPLY is not.
	ErrNotReply = errors.New("rpc: not a reply message")

	// ErrRPCVersion is returned for any RPC version other than 2.
	ErrRPCVersion = errors.New("rpc: unsupported rpc version")

	// ErrXIDMismatch is returned by the client when a reply answers a
	// different call.
	ErrXIDMismatch = errors.New("rpc: reply xid mismatch")
)

// AcceptStatName returns a human-readable name for an accept status.
func AcceptStatName(stat uint32) string {
	switch stat {
	case RPCSuccess:
		return "SUCCESS"
	case RPCProgUnavail:
		return "PROG_UNAVAIL"
	case RPCProgMismatch:
		return "PROG_MISMATCH"
	case RPCProcUnavail:
		return "PROC_UNAVAIL"
	case RPCGarbageArgs:
		return "GARBAGE_ARGS"
	case RPCSystemErr:
		return "SYSTEM_ERR"
	default:
		return "UNKNOWN"
	}
}
