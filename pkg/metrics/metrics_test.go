package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	reset()
	t.Cleanup(reset)

	assert.False(t, IsEnabled())
	assert.Nil(t, GetRegistry())

	reg := InitRegistry()
	require.NotNil(t, reg)
	assert.True(t, IsEnabled())
	assert.Same(t, reg, InitRegistry(), "second init reuses the registry")
	assert.Same(t, reg, GetRegistry())
}

func TestServer(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "nfscall_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Add(3)

	srv, err := NewServer("127.0.0.1:0", reg)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "nfscall_test_total 3")

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, <-done)
}

func TestServer_NilRegistry(t *testing.T) {
	_, err := NewServer("127.0.0.1:0", nil)
	assert.Error(t, err)
}
