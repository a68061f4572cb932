// Package nfs runs a trace server: a TCP listener that accepts NFSv3 calls,
// decodes their arguments through the call package and answers at the RPC
// level. It does not implement any file system semantics.
package nfs

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/nfscall/internal/bytesize"
	"github.com/marmos91/nfscall/internal/logger"
	"github.com/marmos91/nfscall/internal/protocol/nfs/call"
	"github.com/marmos91/nfscall/internal/protocol/nfs/rpc"
)

const (
	DefaultMaxConnections  = 128
	DefaultIdleTimeout     = 5 * time.Minute
	DefaultShutdownTimeout = 10 * time.Second
)

// Config configures the trace server.
type Config struct {
	// Addr is the TCP listen address. ":0" picks a free port.
	Addr string

	// MaxRecordSize bounds one record-marked call. Zero means
	// rpc.MaxFragmentSize.
	MaxRecordSize uint32

	// MaxConnections caps concurrent connections; extra ones are closed
	// right after accept.
	MaxConnections int

	// IdleTimeout closes a connection that sends nothing for this long.
	IdleTimeout time.Duration

	// ShutdownTimeout is how long Stop waits for in-flight calls before
	// closing connections.
	ShutdownTimeout time.Duration

	// Registry resolves procedure numbers. Nil means call.DefaultRegistry.
	Registry *call.Registry

	// Handler receives decoded calls. Nil answers every call PROC_UNAVAIL.
	Handler Handler

	// CallMetrics and Metrics are optional.
	CallMetrics *call.Metrics
	Metrics     *Metrics
}

func (c *Config) applyDefaults() {
	if c.MaxRecordSize == 0 {
		c.MaxRecordSize = rpc.MaxFragmentSize
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = DefaultMaxConnections
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Registry == nil {
		c.Registry = call.DefaultRegistry()
	}
}

// Server accepts NFSv3 calls over TCP.
//
// Lifecycle:
//  1. NewServer
//  2. Serve blocks until Stop is called or ctx is cancelled
//  3. Stop stops accepting, lets in-flight calls finish, then force-closes
type Server struct {
	config Config

	mu       sync.Mutex
	listener net.Listener
	conns    map[*conn]struct{}

	shutdown      chan struct{}
	shutdownOnce  sync.Once
	listenerReady chan struct{}
	readyOnce     sync.Once
	connSemaphore chan struct{}
	wg            sync.WaitGroup
}

// NewServer returns a server for cfg. Nothing is bound until Serve.
func NewServer(cfg Config) *Server {
	cfg.applyDefaults()
	return &Server{
		config:        cfg,
		conns:         make(map[*conn]struct{}),
		shutdown:      make(chan struct{}),
		listenerReady: make(chan struct{}),
		connSemaphore: make(chan struct{}, cfg.MaxConnections),
	}
}

// Serve binds the listener and handles connections until Stop is called or
// ctx is cancelled. It returns once every connection has ended.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		s.markReady()
		return fmt.Errorf("listen %s: %w", s.config.Addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	select {
	case <-s.shutdown:
		// Stop raced ahead of the bind
		_ = ln.Close()
		s.mu.Lock()
		s.listener = nil
		s.mu.Unlock()
		s.markReady()
		return nil
	default:
	}

	s.markReady()

	logger.Info("Trace server started",
		"address", ln.Addr().String(),
		"max_record", bytesize.ByteSize(s.config.MaxRecordSize),
		"max_connections", s.config.MaxConnections)

	s.wg.Add(1)
	go s.serveTCP(ctx, ln)

	go func() {
		select {
		case <-ctx.Done():
			stopCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
			defer cancel()
			_ = s.Stop(stopCtx)
		case <-s.shutdown:
		}
	}()

	s.wg.Wait()
	logger.Info("Trace server stopped")
	return nil
}

// WaitReady returns a channel closed once Serve has either bound the
// listener or returned without binding. Addr is "" in the latter case.
func (s *Server) WaitReady() <-chan struct{} {
	return s.listenerReady
}

func (s *Server) markReady() {
	s.readyOnce.Do(func() { close(s.listenerReady) })
}

// Addr returns the bound listen address, or "" before Serve binds.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) serveTCP(ctx context.Context, ln net.Listener) {
	defer s.wg.Done()

	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				logger.Warn("Trace server accept error", logger.Err(err))
				return
			}
		}

		select {
		case s.connSemaphore <- struct{}{}:
		default:
			logger.Warn("Connection limit reached, rejecting",
				logger.ClientAddr(nc.RemoteAddr().String()), "limit", s.config.MaxConnections)
			_ = nc.Close()
			continue
		}

		c := s.newConn(nc)
		if !s.track(c) {
			<-s.connSemaphore
			_ = nc.Close()
			return
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() { <-s.connSemaphore }()
			defer s.untrack(c)
			c.serve(ctx)
		}()
	}
}

func (s *Server) newConn(nc net.Conn) *conn {
	addr := nc.RemoteAddr().String()
	ip := addr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		ip = host
	}
	id := uuid.NewString()
	return &conn{
		srv:        s,
		nc:         nc,
		id:         id,
		clientAddr: addr,
		lc:         logger.NewLogContext(ip, id),
	}
}

// track registers c unless shutdown has begun.
func (s *Server) track(c *conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.shutdown:
		return false
	default:
	}
	s.conns[c] = struct{}{}
	s.config.Metrics.connOpened()
	return true
}

func (s *Server) untrack(c *conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	s.config.Metrics.connClosed()
}

// Stop stops accepting and waits for connections to finish their current
// call. Idle connections are woken immediately. If ctx or the configured
// shutdown timeout expires first, remaining connections are closed and the
// context error is returned. Stop is safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)

		s.mu.Lock()
		if s.listener != nil {
			_ = s.listener.Close()
		}
		// Interrupt blocked reads; a call already read still gets its reply.
		for c := range s.conns {
			_ = c.nc.SetReadDeadline(time.Now())
		}
		s.mu.Unlock()
	})

	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
	}

	s.mu.Lock()
	n := len(s.conns)
	for c := range s.conns {
		_ = c.nc.Close()
	}
	s.mu.Unlock()
	logger.Warn("Shutdown timeout, closed connections", "count", n)

	<-done
	return ctx.Err()
}
