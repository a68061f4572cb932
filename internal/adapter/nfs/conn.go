package nfs

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/marmos91/nfscall/internal/logger"
	"github.com/marmos91/nfscall/internal/protocol/nfs/rpc"
)

// conn serves one client connection. Calls are handled one at a time, in
// arrival order.
type conn struct {
	srv        *Server
	nc         net.Conn
	id         string
	clientAddr string
	lc         *logger.LogContext
}

func (c *conn) serve(ctx context.Context) {
	defer func() { _ = c.nc.Close() }()

	ctx = logger.WithContext(ctx, c.lc)
	ctx = withConnInfo(ctx, ConnInfo{ID: c.id, ClientAddr: c.clientAddr})
	logger.DebugCtx(ctx, "Connection accepted", logger.ClientAddr(c.clientAddr))

	calls := 0
	defer func() {
		logger.DebugCtx(ctx, "Connection closed", "calls", calls, logger.KeyDurationMs, c.lc.DurationMs())
	}()

	for {
		if err := c.nc.SetReadDeadline(time.Now().Add(c.srv.config.IdleTimeout)); err != nil {
			return
		}
		// Checked after arming the deadline so Stop's wake-up is never overwritten.
		select {
		case <-c.srv.shutdown:
			return
		case <-ctx.Done():
			return
		default:
		}

		record, err := rpc.ReadRecord(c.nc, c.srv.config.MaxRecordSize)
		if err != nil {
			c.logReadError(ctx, err)
			return
		}
		calls++

		reply := c.srv.dispatch(ctx, c, record)
		if reply == nil {
			continue
		}
		if _, err := c.nc.Write(reply); err != nil {
			logger.DebugCtx(ctx, "Write reply failed", logger.Err(err))
			return
		}
	}
}

func (c *conn) logReadError(ctx context.Context, err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		// Idle timeout or shutdown wake-up
		return
	}
	logger.WarnCtx(ctx, "Read call failed, closing connection", logger.Err(err))
}
