package call

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/marmos91/nfscall/internal/logger"
	"github.com/marmos91/nfscall/internal/protocol/xdr"
	"github.com/marmos91/nfscall/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ErrStageOpen is returned by Inbound.Call before the stage is closed.
var ErrStageOpen = errors.New("call stage not closed")

// Stage is one decode or encode pass over a single call.
//
// Incoming stages consume the argument section through Write and finish on
// Close. Outgoing stages take no input and emit the framed call on Close.
type Stage interface {
	io.WriteCloser
	Direction() Direction
}

// Option configures a stage.
type Option func(*stageOptions)

type stageOptions struct {
	ctx     context.Context
	metrics *Metrics
}

// WithContext sets the context used for spans and call-scoped log fields.
func WithContext(ctx context.Context) Option {
	return func(o *stageOptions) { o.ctx = ctx }
}

// WithMetrics records the pass into m.
func WithMetrics(m *Metrics) Option {
	return func(o *stageOptions) { o.metrics = m }
}

func newStageOptions(opts []Option) stageOptions {
	o := stageOptions{ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ctx == nil {
		o.ctx = context.Background()
	}
	return o
}

// NewStage picks the stage for c from its envelope direction. dst is only
// used by outgoing calls.
func NewStage(c ProcedureCall, dst io.Writer, opts ...Option) Stage {
	if c.Env().Direction == Outgoing {
		return NewOutbound(c, dst, opts...)
	}
	return NewInbound(c, opts...)
}

// callAttrs returns the span attributes describing c's arguments.
func callAttrs(c ProcedureCall) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if t := c.Target(); t != nil {
		attrs = append(attrs, telemetry.NFSHandle(t))
	}
	if d, ok := c.(DirOp); ok {
		attrs = append(attrs, telemetry.NFSFilename(d.Entry().Name))
	}
	return attrs
}

// ============================================================================
// Inbound
// ============================================================================

// Inbound decodes the argument section of an incoming call.
//
// The first Write is the decode pass: the chunk must start at the argument
// section (the RPC header has already been consumed). Any decode error is
// sticky and fails every later Write and Close. Bytes after the argument
// section are ignored. Nothing is emitted downstream.
type Inbound struct {
	call     ProcedureCall
	opts     stageOptions
	err      error
	decoded  bool
	closed   bool
	consumed int
}

// NewInbound returns the incoming stage for c.
func NewInbound(c ProcedureCall, opts ...Option) *Inbound {
	return &Inbound{call: c, opts: newStageOptions(opts)}
}

// Direction returns Incoming.
func (s *Inbound) Direction() Direction { return Incoming }

// Write decodes p as the argument section.
func (s *Inbound) Write(p []byte) (int, error) {
	switch {
	case s.closed:
		return 0, ErrStageClosed
	case s.err != nil:
		return 0, s.err
	case s.decoded:
		return 0, ErrPassComplete
	}

	if err := s.decode(p); err != nil {
		s.err = err
		return 0, err
	}
	return len(p), nil
}

func (s *Inbound) decode(p []byte) error {
	c := s.call
	env := c.Env()

	ctx, span := telemetry.StartCallSpan(s.opts.ctx, telemetry.SpanCallDecode, env.XID, c.Proc().String(),
		telemetry.NFSDirection(Incoming.String()))
	defer span.End()

	r := xdr.NewReader(p)
	if err := c.DecodeArgs(r); err != nil {
		err = fmt.Errorf("decode %s args (xid 0x%08x): %w", c.Proc(), env.XID, err)
		telemetry.RecordError(ctx, err)
		s.opts.metrics.recordDecodeError(c.Proc())
		logger.DebugCtx(ctx, "Call decode failed", logger.XID(env.XID), logger.Procedure(c.Proc().String()), logger.Err(err))
		return err
	}

	s.decoded = true
	s.consumed = r.Offset()

	span.SetAttributes(callAttrs(c)...)
	span.SetAttributes(telemetry.NFSBytes(s.consumed))
	s.opts.metrics.recordDecoded(c.Proc())

	if extra := r.Remaining(); extra > 0 {
		logger.DebugCtx(ctx, "Ignoring bytes after call arguments", logger.XID(env.XID), "trailing", extra)
	}
	logger.DebugCtx(ctx, "Decoded call", logger.XID(env.XID), logger.Procedure(c.Proc().String()),
		logger.Handle(c.Target()), logger.Bytes(s.consumed))
	return nil
}

// Close ends the stream. Closing without a prior Write decodes an empty
// argument section, which only succeeds for argument-less procedures.
func (s *Inbound) Close() error {
	if s.closed {
		return s.err
	}
	s.closed = true
	if s.err == nil && !s.decoded {
		s.err = s.decode(nil)
	}
	return s.err
}

// Call returns the decoded call once the stage closed cleanly.
func (s *Inbound) Call() (ProcedureCall, error) {
	if s.err != nil {
		return nil, s.err
	}
	if !s.closed {
		return nil, ErrStageOpen
	}
	return s.call, nil
}

// Consumed returns the size of the decoded argument section.
func (s *Inbound) Consumed() int { return s.consumed }

// ============================================================================
// Outbound
// ============================================================================

// Outbound encodes an outgoing call and emits it downstream as exactly one
// Write.
type Outbound struct {
	call    ProcedureCall
	dst     io.Writer
	opts    stageOptions
	err     error
	flushed bool
	written int
}

// NewOutbound returns the outgoing stage for c writing to dst.
func NewOutbound(c ProcedureCall, dst io.Writer, opts ...Option) *Outbound {
	return &Outbound{call: c, dst: dst, opts: newStageOptions(opts)}
}

// Direction returns Outgoing.
func (s *Outbound) Direction() Direction { return Outgoing }

// Write always fails: an outgoing call has no upstream input.
func (s *Outbound) Write([]byte) (int, error) {
	return 0, fmt.Errorf("%w: outgoing %s call accepts no input", ErrWrongDirection, s.call.Proc())
}

// Flush encodes the call behind its RPC header and writes it to dst.
// A stage flushes once; later calls return ErrPassComplete.
func (s *Outbound) Flush() error {
	if s.err != nil {
		return s.err
	}
	if s.flushed {
		return ErrPassComplete
	}
	s.flushed = true

	if s.dst == nil {
		s.err = errors.New("outgoing call has no destination")
		return s.err
	}

	buf, err := s.encode()
	if err != nil {
		s.err = err
		return err
	}

	n, err := s.dst.Write(buf)
	if err == nil && n != len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		s.err = fmt.Errorf("write %s call: %w", s.call.Proc(), err)
		return s.err
	}
	s.written = n
	return nil
}

func (s *Outbound) encode() ([]byte, error) {
	c := s.call
	env := c.Env()

	ctx, span := telemetry.StartCallSpan(s.opts.ctx, telemetry.SpanCallEncode, env.XID, c.Proc().String(),
		telemetry.NFSDirection(Outgoing.String()))
	defer span.End()
	span.SetAttributes(callAttrs(c)...)

	argsLen := c.ArgsLen()
	w, err := env.Serialize(c.Proc(), argsLen)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	if err := c.EncodeArgs(w); err != nil {
		err = fmt.Errorf("encode %s args (xid 0x%08x): %w", c.Proc(), env.XID, err)
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	if !w.Full() {
		err := fmt.Errorf("encode %s args: wrote %d of %d bytes", c.Proc(), w.Offset(), w.Offset()+w.Available())
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	buf := w.Bytes()
	span.SetAttributes(telemetry.NFSBytes(len(buf)))
	s.opts.metrics.recordEncoded(c.Proc(), len(buf))
	logger.DebugCtx(ctx, "Encoded call", logger.XID(env.XID), logger.Procedure(c.Proc().String()),
		logger.Handle(c.Target()), logger.Bytes(len(buf)))
	return buf, nil
}

// Close flushes the call if Flush was not called yet.
func (s *Outbound) Close() error {
	if !s.flushed {
		return s.Flush()
	}
	return s.err
}

// Written returns the number of bytes emitted downstream.
func (s *Outbound) Written() int { return s.written }
