package telemetry

import (
	"context"
	"encoding/hex"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for call tracing. RPC envelope fields use the "rpc."
// prefix, procedure arguments use "nfs.".
const (
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"

	AttrConnectionID = "net.connection_id"

	AttrRPCXID      = "rpc.xid"
	AttrRPCProgram  = "rpc.program"
	AttrRPCVersion  = "rpc.version"
	AttrRPCAuthType = "rpc.auth_type"
	AttrRPCStatus   = "rpc.accept_stat"

	AttrNFSProcedure = "nfs.procedure"
	AttrNFSDirection = "nfs.direction"
	AttrNFSHandle    = "nfs.handle"
	AttrNFSFilename  = "nfs.filename"
	AttrNFSBytes     = "nfs.bytes"

	AttrUID = "user.uid"
	AttrGID = "user.gid"
)

// Span names
const (
	SpanCallDecode = "nfs.call.decode"
	SpanCallEncode = "nfs.call.encode"
	SpanServerCall = "nfs.server.call"
	SpanClientCall = "rpc.client.call"
)

// ClientIP returns an attribute for client IP address
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr returns an attribute for client address (IP:port)
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// ConnectionID returns an attribute for a server connection id
func ConnectionID(id string) attribute.KeyValue {
	return attribute.String(AttrConnectionID, id)
}

// RPCXID returns an attribute for RPC transaction ID
func RPCXID(xid uint32) attribute.KeyValue {
	return attribute.Int64(AttrRPCXID, int64(xid))
}

// RPCProgram returns an attribute for the RPC program number
func RPCProgram(prog uint32) attribute.KeyValue {
	return attribute.Int64(AttrRPCProgram, int64(prog))
}

// RPCVersion returns an attribute for the RPC program version
func RPCVersion(vers uint32) attribute.KeyValue {
	return attribute.Int64(AttrRPCVersion, int64(vers))
}

// RPCAuthType returns an attribute for the credential flavor name
func RPCAuthType(flavor string) attribute.KeyValue {
	return attribute.String(AttrRPCAuthType, flavor)
}

// RPCStatus returns an attribute for the reply accept status
func RPCStatus(stat string) attribute.KeyValue {
	return attribute.String(AttrRPCStatus, stat)
}

// NFSProcedure returns an attribute for NFS procedure name
func NFSProcedure(name string) attribute.KeyValue {
	return attribute.String(AttrNFSProcedure, name)
}

// NFSDirection returns an attribute for the call direction
func NFSDirection(dir string) attribute.KeyValue {
	return attribute.String(AttrNFSDirection, dir)
}

// NFSHandle returns an attribute for a file handle, hex encoded
func NFSHandle(handle []byte) attribute.KeyValue {
	return attribute.String(AttrNFSHandle, hex.EncodeToString(handle))
}

// NFSFilename returns an attribute for a directory entry name
func NFSFilename(name string) attribute.KeyValue {
	return attribute.String(AttrNFSFilename, name)
}

// NFSBytes returns an attribute for an encoded or decoded byte count
func NFSBytes(n int) attribute.KeyValue {
	return attribute.Int(AttrNFSBytes, n)
}

// UID returns an attribute for user ID
func UID(uid uint32) attribute.KeyValue {
	return attribute.Int64(AttrUID, int64(uid))
}

// GID returns an attribute for group ID
func GID(gid uint32) attribute.KeyValue {
	return attribute.Int64(AttrGID, int64(gid))
}

// StartCallSpan starts a span for one pass over an NFS call, tagged with
// its transaction id and procedure name.
func StartCallSpan(ctx context.Context, name string, xid uint32, procedure string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := make([]attribute.KeyValue, 0, 2+len(attrs))
	all = append(all, RPCXID(xid), NFSProcedure(procedure))
	all = append(all, attrs...)
	return StartSpan(ctx, name, trace.WithAttributes(all...))
}
