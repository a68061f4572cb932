package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently so call traces can be aggregated and queried.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// RPC Envelope
	// ========================================================================
	KeyXID       = "xid"       // RPC transaction id, formatted as hex
	KeyProgram   = "program"   // RPC program number
	KeyVersion   = "version"   // RPC program version
	KeyProcedure = "procedure" // Procedure name: REMOVE, LOOKUP, ...
	KeyDirection = "direction" // incoming or outgoing
	KeyAuth      = "auth"      // Credential flavor
	KeyStatus    = "status"    // RPC accept status

	// ========================================================================
	// Procedure Arguments
	// ========================================================================
	KeyHandle   = "handle"   // File handle, formatted as hex
	KeyFilename = "filename" // Directory entry name
	KeyBytes    = "bytes"    // Encoded or decoded byte count

	// ========================================================================
	// Client & Connection
	// ========================================================================
	KeyClientIP     = "client_ip"     // Client IP address
	KeyClientAddr   = "client_addr"   // Client address with port
	KeyConnectionID = "connection_id" // Connection identifier
	KeyUID          = "uid"           // AUTH_UNIX user id
	KeyGID          = "gid"           // AUTH_UNIX group id

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyPath       = "path"        // Filesystem path (config file, capture dir)
)

// ============================================================================
// Field constructors
// ============================================================================

// XID returns a slog.Attr for an RPC transaction id in hex.
func XID(xid uint32) slog.Attr {
	return slog.String(KeyXID, fmt.Sprintf("0x%08x", xid))
}

// Procedure returns a slog.Attr for a procedure name.
func Procedure(name string) slog.Attr {
	return slog.String(KeyProcedure, name)
}

// Handle returns a slog.Attr for a file handle (formatted as hex).
func Handle(h []byte) slog.Attr {
	return slog.String(KeyHandle, fmt.Sprintf("%x", h))
}

// Filename returns a slog.Attr for a directory entry name.
func Filename(name string) slog.Attr {
	return slog.String(KeyFilename, name)
}

// Bytes returns a slog.Attr for a byte count.
func Bytes(n int) slog.Attr {
	return slog.Int(KeyBytes, n)
}

// ClientAddr returns a slog.Attr for a client address.
func ClientAddr(addr string) slog.Attr {
	return slog.String(KeyClientAddr, addr)
}

// ConnectionID returns a slog.Attr for a connection identifier.
func ConnectionID(id string) slog.Attr {
	return slog.String(KeyConnectionID, id)
}

// Err returns a slog.Attr for an error. A nil error yields an empty value.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
