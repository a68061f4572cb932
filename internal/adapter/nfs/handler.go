package nfs

import (
	"context"
	"errors"

	"github.com/marmos91/nfscall/internal/capture"
	"github.com/marmos91/nfscall/internal/logger"
	"github.com/marmos91/nfscall/internal/protocol/nfs/call"
)

// ErrNotImplemented makes the server answer PROC_UNAVAIL.
var ErrNotImplemented = errors.New("procedure not implemented")

// Handler processes decoded calls. The returned bytes become the body of a
// SUCCESS reply; ErrNotImplemented yields PROC_UNAVAIL and any other error
// SYSTEM_ERR.
type Handler interface {
	HandleCall(ctx context.Context, c call.ProcedureCall) ([]byte, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, c call.ProcedureCall) ([]byte, error)

func (f HandlerFunc) HandleCall(ctx context.Context, c call.ProcedureCall) ([]byte, error) {
	return f(ctx, c)
}

// ConnInfo identifies the connection a call arrived on.
type ConnInfo struct {
	ID         string
	ClientAddr string
}

type connInfoKey struct{}

func withConnInfo(ctx context.Context, info ConnInfo) context.Context {
	return context.WithValue(ctx, connInfoKey{}, info)
}

// ConnInfoFromContext returns the connection of the call being handled.
func ConnInfoFromContext(ctx context.Context) (ConnInfo, bool) {
	info, ok := ctx.Value(connInfoKey{}).(ConnInfo)
	return info, ok
}

// TraceHandler logs every call and optionally records it. NULL is answered
// with an empty SUCCESS; everything else with PROC_UNAVAIL, since the trace
// server has no file system behind it.
type TraceHandler struct {
	Store capture.Store
}

// NewTraceHandler returns a handler recording into store, which may be nil.
func NewTraceHandler(store capture.Store) *TraceHandler {
	return &TraceHandler{Store: store}
}

func (h *TraceHandler) HandleCall(ctx context.Context, c call.ProcedureCall) ([]byte, error) {
	args := []any{logger.Handle(c.Target())}
	if d, ok := c.(call.DirOp); ok {
		args = append(args, logger.Filename(d.Entry().Name))
	}
	logger.InfoCtx(ctx, "Call received", args...)

	if h.Store != nil {
		info, _ := ConnInfoFromContext(ctx)
		if err := h.Store.Put(ctx, capture.NewRecord(c, info.ID, info.ClientAddr)); err != nil {
			logger.WarnCtx(ctx, "Capture failed", logger.Err(err))
		}
	}

	if c.Proc() == call.ProcNull {
		return nil, nil
	}
	return nil, ErrNotImplemented
}
