package nfs

import (
	"context"
	"errors"
	"time"

	"github.com/marmos91/nfscall/internal/logger"
	"github.com/marmos91/nfscall/internal/protocol/nfs/call"
	"github.com/marmos91/nfscall/internal/protocol/nfs/rpc"
	"github.com/marmos91/nfscall/internal/protocol/xdr"
	"github.com/marmos91/nfscall/internal/telemetry"
)

// dispatch handles one record and returns the record-marked reply, or nil
// when the record cannot be answered (no readable xid).
func (s *Server) dispatch(ctx context.Context, c *conn, record []byte) []byte {
	start := time.Now()

	r := xdr.NewReader(record)
	h, err := rpc.ParseCall(r)
	if err != nil {
		logger.DebugCtx(ctx, "Dropping malformed call", logger.Bytes(len(record)), logger.Err(err))
		s.config.Metrics.recordCall("UNKNOWN", "DROPPED", time.Since(start))
		return nil
	}

	procName := call.Proc(h.Procedure).String()
	lc := c.lc.WithCall(h.XID, procName)
	if ua, err := h.UnixAuth(); err == nil && ua != nil {
		lc = lc.WithAuth(ua.UID, ua.GID)
	}

	ctx, span := telemetry.StartCallSpan(ctx, telemetry.SpanServerCall, h.XID, procName,
		telemetry.ConnectionID(c.id),
		telemetry.ClientAddr(c.clientAddr),
		telemetry.RPCProgram(h.Program),
		telemetry.RPCVersion(h.Version),
		telemetry.RPCAuthType(rpc.AuthFlavorName(h.Cred.Flavor)))
	defer span.End()
	lc = lc.WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
	ctx = logger.WithContext(ctx, lc)

	stat, body := s.handleCall(ctx, h, r)

	statName := rpc.AcceptStatName(stat)
	span.SetAttributes(telemetry.RPCStatus(statName))
	s.config.Metrics.recordCall(procName, statName, time.Since(start))
	logger.DebugCtx(ctx, "Call answered", logger.KeyStatus, statName, logger.KeyDurationMs, lc.DurationMs())

	var reply []byte
	switch stat {
	case rpc.RPCSuccess:
		reply, err = rpc.MakeSuccessReply(h.XID, body)
	case rpc.RPCProgMismatch:
		reply, err = rpc.MakeProgMismatchReply(h.XID, rpc.NFSVersion3, rpc.NFSVersion3)
	default:
		reply, err = rpc.MakeErrorReply(h.XID, stat)
	}
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "Build reply failed", logger.Err(err))
		return nil
	}
	return reply
}

// handleCall validates the header, decodes the arguments and runs the
// handler. r is positioned at the argument section.
func (s *Server) handleCall(ctx context.Context, h *rpc.CallHeader, r *xdr.Reader) (uint32, []byte) {
	if h.Program != rpc.ProgramNFS {
		logger.DebugCtx(ctx, "Program unavailable", logger.KeyProgram, h.Program)
		return rpc.RPCProgUnavail, nil
	}
	if h.Version != rpc.NFSVersion3 {
		logger.DebugCtx(ctx, "Program version mismatch", logger.KeyVersion, h.Version)
		return rpc.RPCProgMismatch, nil
	}

	pc, err := s.config.Registry.New(call.Proc(h.Procedure), call.EnvelopeFromHeader(h))
	if err != nil {
		logger.DebugCtx(ctx, "Procedure unavailable", logger.Err(err))
		return rpc.RPCProcUnavail, nil
	}

	in := call.NewInbound(pc, call.WithContext(ctx), call.WithMetrics(s.config.CallMetrics))
	_, _ = in.Write(r.Rest())
	_ = in.Close()
	decoded, err := in.Call()
	if err != nil {
		logger.InfoCtx(ctx, "Garbage call arguments", logger.Err(err))
		return rpc.RPCGarbageArgs, nil
	}

	if s.config.Handler == nil {
		return rpc.RPCProcUnavail, nil
	}
	body, err := s.config.Handler.HandleCall(ctx, decoded)
	switch {
	case errors.Is(err, ErrNotImplemented):
		return rpc.RPCProcUnavail, nil
	case err != nil:
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "Handler failed", logger.Err(err))
		return rpc.RPCSystemErr, nil
	}
	return rpc.RPCSuccess, body
}
