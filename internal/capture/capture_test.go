package capture

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfscall/internal/protocol/nfs/call"
)

func newStores(t *testing.T) map[string]Store {
	t.Helper()
	bs, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bs.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"badger": bs,
	}
}

func TestStore_PutList(t *testing.T) {
	ctx := context.Background()
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			for i := range 5 {
				r := &Record{XID: uint32(i + 1), Proc: "REMOVE", Name: fmt.Sprintf("f%d", i)}
				require.NoError(t, s.Put(ctx, r))
				assert.NotEmpty(t, r.ID)
			}

			all, err := s.List(ctx, 0)
			require.NoError(t, err)
			require.Len(t, all, 5)
			for i, r := range all {
				assert.Equal(t, uint32(5-i), r.XID, "newest first")
			}

			two, err := s.List(ctx, 2)
			require.NoError(t, err)
			require.Len(t, two, 2)
			assert.Equal(t, "f4", two[0].Name)
			assert.Equal(t, "f3", two[1].Name)
		})
	}
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Close())
			require.NoError(t, s.Close())
			assert.ErrorIs(t, s.Put(ctx, &Record{}), ErrClosed)
			_, err := s.List(ctx, 0)
			assert.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.Put(ctx, &Record{}), context.Canceled)
		})
	}
}

func TestBadgerStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := OpenBadger(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, &Record{XID: 7, Proc: "RMDIR", Target: "abcd"}))
	require.NoError(t, s.Close())

	s, err = OpenBadger(dir)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint32(7), got[0].XID)
	assert.Equal(t, "RMDIR", got[0].Proc)
	assert.Equal(t, "abcd", got[0].Target)
}

func TestNewRecord(t *testing.T) {
	c := call.NewRemoveCall(call.Envelope{XID: 42}, &call.DirOpArgs{
		Dir:  call.FileHandle{0xab, 0xcd},
		Name: "report.txt",
	})

	r := NewRecord(c, "conn-1", "127.0.0.1:900")
	assert.Equal(t, uint32(42), r.XID)
	assert.Equal(t, "REMOVE", r.Proc)
	assert.Equal(t, "abcd", r.Target)
	assert.Equal(t, "report.txt", r.Name)
	assert.Equal(t, "conn-1", r.ConnectionID)
	assert.Equal(t, "127.0.0.1:900", r.ClientAddr)
	assert.False(t, r.Time.IsZero())

	n := NewRecord(call.NewNullCall(call.Envelope{XID: 1}), "", "")
	assert.Equal(t, "NULL", n.Proc)
	assert.Empty(t, n.Target)
	assert.Empty(t, n.Name)
}
