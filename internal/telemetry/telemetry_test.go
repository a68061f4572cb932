package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// withRecorder installs an SDK tracer backed by an in-memory recorder.
func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	prevTracer, prevEnabled := Tracer(), IsEnabled()
	setTracer(tp.Tracer("test"), true)
	t.Cleanup(func() {
		setTracer(prevTracer, prevEnabled)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func attrMap(kvs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "nfscall", cfg.ServiceName)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Init(ctx, DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(ctx))
	assert.False(t, IsEnabled())

	// No-op spans carry no ids
	spanCtx, span := StartSpan(ctx, "noop")
	defer span.End()
	assert.Empty(t, TraceID(spanCtx))
	assert.Empty(t, SpanID(spanCtx))
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestStartCallSpan(t *testing.T) {
	rec := withRecorder(t)

	ctx, span := StartCallSpan(context.Background(), SpanCallEncode, 42, "REMOVE",
		NFSHandle([]byte{0xab, 0xcd}), NFSFilename("report.txt"))
	assert.NotEmpty(t, TraceID(ctx))
	assert.NotEmpty(t, SpanID(ctx))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, SpanCallEncode, ended[0].Name())

	attrs := attrMap(ended[0].Attributes())
	assert.Equal(t, int64(42), attrs[AttrRPCXID].AsInt64())
	assert.Equal(t, "REMOVE", attrs[AttrNFSProcedure].AsString())
	assert.Equal(t, "abcd", attrs[AttrNFSHandle].AsString())
	assert.Equal(t, "report.txt", attrs[AttrNFSFilename].AsString())
}

func TestRecordError(t *testing.T) {
	rec := withRecorder(t)

	ctx, span := StartSpan(context.Background(), SpanCallDecode)
	RecordError(ctx, nil)
	RecordError(ctx, errors.New("short buffer"))
	AddEvent(ctx, "decoded")
	SetAttributes(ctx, NFSBytes(36))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "short buffer", ended[0].Status().Description)
	assert.Len(t, ended[0].Events(), 2) // the recorded error and "decoded"
	assert.Equal(t, int64(36), attrMap(ended[0].Attributes())[AttrNFSBytes].AsInt64())
}

func TestAttributeHelpers(t *testing.T) {
	tests := []struct {
		attr attribute.KeyValue
		key  string
	}{
		{ClientIP("10.0.0.1"), AttrClientIP},
		{ClientAddr("10.0.0.1:700"), AttrClientAddr},
		{ConnectionID("c1"), AttrConnectionID},
		{RPCProgram(100003), AttrRPCProgram},
		{RPCVersion(3), AttrRPCVersion},
		{RPCAuthType("AUTH_UNIX"), AttrRPCAuthType},
		{RPCStatus("SUCCESS"), AttrRPCStatus},
		{NFSDirection("outgoing"), AttrNFSDirection},
		{UID(1000), AttrUID},
		{GID(1000), AttrGID},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.key, string(tt.attr.Key))
		})
	}
}

func TestProfiling(t *testing.T) {
	t.Run("DisabledIsNoop", func(t *testing.T) {
		shutdown, err := InitProfiling(ProfilingConfig{})
		require.NoError(t, err)
		assert.NoError(t, shutdown())
	})

	t.Run("RejectsUnknownProfileType", func(t *testing.T) {
		_, err := InitProfiling(ProfilingConfig{Enabled: true, ProfileTypes: []string{"heap"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid profile type")
	})

	t.Run("ProfileTypeNamesSorted", func(t *testing.T) {
		names := ProfileTypeNames()
		assert.Equal(t, "alloc_objects", names[0])
		assert.Contains(t, names, "cpu")
	})
}
