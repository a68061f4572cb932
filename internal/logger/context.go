package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds call-scoped logging context
type LogContext struct {
	TraceID      string    // OpenTelemetry trace ID
	SpanID       string    // OpenTelemetry span ID
	Procedure    string    // Procedure name (REMOVE, LOOKUP, etc.)
	XID          uint32    // RPC transaction id
	ClientIP     string    // Client IP address (without port)
	ConnectionID string    // Server-side connection identifier
	UID          uint32    // AUTH_UNIX user ID
	GID          uint32    // AUTH_UNIX group ID
	StartTime    time.Time // For duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for a client connection
func NewLogContext(clientIP, connectionID string) *LogContext {
	return &LogContext{
		ClientIP:     clientIP,
		ConnectionID: connectionID,
		StartTime:    time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithCall returns a copy bound to one RPC call
func (lc *LogContext) WithCall(xid uint32, procedure string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.XID = xid
		clone.Procedure = procedure
		clone.StartTime = time.Now()
	}
	return clone
}

// WithAuth returns a copy with AUTH_UNIX ids set
func (lc *LogContext) WithAuth(uid, gid uint32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.UID = uid
		clone.GID = gid
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
