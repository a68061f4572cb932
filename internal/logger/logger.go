package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log levels
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Config holds logger configuration
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

var (
	// level is shared by every handler so SetLevel never rebuilds them
	level = new(slog.LevelVar)

	mu       sync.RWMutex
	format   = "text"
	slogger  *slog.Logger
	output   io.Writer = os.Stderr
	useColor bool
	logFile  *os.File
)

func init() {
	level.Set(slog.LevelInfo)
	useColor = isTerminal(os.Stderr.Fd())
	rebuild()
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name into a Level. Names are case-insensitive;
// WARNING is accepted as an alias for WARN.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// rebuild swaps the handler after an output or format change.
// Callers must not hold mu.
func rebuild() {
	mu.Lock()
	defer mu.Unlock()

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(output, opts)
	} else {
		h = NewColorTextHandler(output, opts, useColor)
	}
	slogger = slog.New(h)
}

// Init initializes the logger with the given configuration.
// Output can be "stdout", "stderr", or a file path.
func Init(cfg Config) error {
	if cfg.Output != "" {
		w, color, f, err := openOutput(cfg.Output)
		if err != nil {
			return err
		}
		mu.Lock()
		if logFile != nil {
			_ = logFile.Close()
		}
		output, useColor, logFile = w, color, f
		mu.Unlock()
	}

	if cfg.Level != "" {
		l, err := ParseLevel(cfg.Level)
		if err != nil {
			return err
		}
		level.Set(l.slogLevel())
	}

	if cfg.Format != "" {
		f := strings.ToLower(cfg.Format)
		if f != "text" && f != "json" {
			return fmt.Errorf("unknown log format %q", cfg.Format)
		}
		mu.Lock()
		format = f
		mu.Unlock()
	}

	rebuild()
	return nil
}

func openOutput(dest string) (io.Writer, bool, *os.File, error) {
	switch strings.ToLower(dest) {
	case "stdout":
		return os.Stdout, isTerminal(os.Stdout.Fd()), nil, nil
	case "stderr":
		return os.Stderr, isTerminal(os.Stderr.Fd()), nil, nil
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, false, nil, fmt.Errorf("failed to open log file %q: %w", dest, err)
	}
	return f, false, f, nil
}

// InitWithWriter initializes the logger with a custom io.Writer.
// This is primarily useful for testing.
func InitWithWriter(w io.Writer, lvl, fmtName string, enableColor bool) {
	mu.Lock()
	output = w
	useColor = enableColor
	if f := strings.ToLower(fmtName); f == "text" || f == "json" {
		format = f
	}
	mu.Unlock()

	if l, err := ParseLevel(lvl); err == nil && lvl != "" {
		level.Set(l.slogLevel())
	}
	rebuild()
}

// SetLevel sets the minimum log level. Unknown names are ignored.
func SetLevel(name string) {
	if l, err := ParseLevel(name); err == nil {
		level.Set(l.slogLevel())
	}
}

// SetFormat sets the output format (text or json). Unknown names are ignored.
func SetFormat(name string) {
	name = strings.ToLower(name)
	if name != "text" && name != "json" {
		return
	}
	mu.Lock()
	format = name
	mu.Unlock()
	rebuild()
}

// Enabled reports whether messages at l would be emitted
func Enabled(l Level) bool {
	return l.slogLevel() >= level.Level()
}

func getLogger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// ============================================================================
// Structured Logging API
// ============================================================================

// Debug logs at debug level with structured fields
// Usage: Debug("message", "key1", value1, "key2", value2)
func Debug(msg string, args ...any) {
	getLogger().Debug(msg, args...)
}

// Info logs at info level with structured fields
func Info(msg string, args ...any) {
	getLogger().Info(msg, args...)
}

// Warn logs at warn level with structured fields
func Warn(msg string, args ...any) {
	getLogger().Warn(msg, args...)
}

// Error logs at error level with structured fields
func Error(msg string, args ...any) {
	getLogger().Error(msg, args...)
}

// DebugCtx logs at debug level, prefixing the fields carried by ctx
func DebugCtx(ctx context.Context, msg string, args ...any) {
	if !Enabled(LevelDebug) {
		return
	}
	getLogger().DebugContext(ctx, msg, appendContextFields(ctx, args)...)
}

// InfoCtx logs at info level, prefixing the fields carried by ctx
func InfoCtx(ctx context.Context, msg string, args ...any) {
	getLogger().InfoContext(ctx, msg, appendContextFields(ctx, args)...)
}

// WarnCtx logs at warn level, prefixing the fields carried by ctx
func WarnCtx(ctx context.Context, msg string, args ...any) {
	getLogger().WarnContext(ctx, msg, appendContextFields(ctx, args)...)
}

// ErrorCtx logs at error level, prefixing the fields carried by ctx
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	getLogger().ErrorContext(ctx, msg, appendContextFields(ctx, args)...)
}

// appendContextFields adds LogContext fields to args
func appendContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	ctxArgs := make([]any, 0, 16+len(args))

	if lc.TraceID != "" {
		ctxArgs = append(ctxArgs, KeyTraceID, lc.TraceID)
	}
	if lc.SpanID != "" {
		ctxArgs = append(ctxArgs, KeySpanID, lc.SpanID)
	}
	if lc.Procedure != "" {
		ctxArgs = append(ctxArgs, KeyProcedure, lc.Procedure)
	}
	if lc.XID != 0 {
		ctxArgs = append(ctxArgs, KeyXID, fmt.Sprintf("0x%08x", lc.XID))
	}
	if lc.ConnectionID != "" {
		ctxArgs = append(ctxArgs, KeyConnectionID, lc.ConnectionID)
	}
	if lc.ClientIP != "" {
		ctxArgs = append(ctxArgs, KeyClientIP, lc.ClientIP)
	}
	if lc.UID != 0 {
		ctxArgs = append(ctxArgs, KeyUID, lc.UID)
	}
	if lc.GID != 0 {
		ctxArgs = append(ctxArgs, KeyGID, lc.GID)
	}

	return append(ctxArgs, args...)
}

// With returns a new slog.Logger with additional attributes
func With(args ...any) *slog.Logger {
	return getLogger().With(args...)
}

// Duration returns duration since start time in milliseconds
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
