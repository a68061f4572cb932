package call

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	assert.Same(t, reg, DefaultRegistry())
	assert.Equal(t, []Proc{ProcNull, ProcLookup, ProcRemove, ProcRmdir}, reg.Procs())

	t.Run("LookupByNumber", func(t *testing.T) {
		d, ok := reg.Lookup(Proc(12))
		require.True(t, ok)
		assert.Equal(t, ProcRemove, d.Proc)
		assert.Equal(t, "REMOVE", d.Name)

		_, ok = reg.Lookup(ProcWrite)
		assert.False(t, ok)
	})

	t.Run("NewBindsEnvelope", func(t *testing.T) {
		c, err := reg.New(ProcRemove, Envelope{XID: 77, Direction: Incoming})
		require.NoError(t, err)
		require.IsType(t, &RemoveCall{}, c)
		assert.Equal(t, uint32(77), c.Env().XID)
		assert.Empty(t, c.(*RemoveCall).Args.Name)
	})

	t.Run("NewUnknownProcedure", func(t *testing.T) {
		_, err := reg.New(ProcCommit, Envelope{})
		assert.True(t, errors.Is(err, ErrUnknownProcedure))
		assert.Contains(t, err.Error(), "COMMIT")
	})

	t.Run("KindOf", func(t *testing.T) {
		d, ok := reg.KindOf(NewRemoveCall(Envelope{}, nil))
		require.True(t, ok)
		assert.Equal(t, ProcRemove, d.Proc)

		d, ok = reg.KindOf(NewRmdirCall(Envelope{}, nil))
		require.True(t, ok)
		assert.Equal(t, ProcRmdir, d.Proc)

		// Same procedure number, unregistered type
		_, ok = reg.KindOf(lyingCall{NewRemoveCall(Envelope{}, nil)})
		assert.False(t, ok)

		_, ok = reg.KindOf(nil)
		assert.False(t, ok)
	})
}

func TestRegistryRegister(t *testing.T) {
	newRemove := func(env Envelope) ProcedureCall { return NewRemoveCall(env, nil) }

	t.Run("RejectsDuplicates", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Register(Descriptor{Proc: ProcRemove, New: newRemove}))
		err := reg.Register(Descriptor{Proc: ProcRemove, New: newRemove})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("RejectsMismatchedFactory", func(t *testing.T) {
		err := NewRegistry().Register(Descriptor{Proc: ProcRmdir, New: newRemove})
		assert.Error(t, err)
	})

	t.Run("RejectsNilFactory", func(t *testing.T) {
		assert.Error(t, NewRegistry().Register(Descriptor{Proc: ProcNull}))
	})

	t.Run("MustRegisterPanics", func(t *testing.T) {
		reg := NewRegistry()
		reg.MustRegister(Descriptor{Proc: ProcRemove, Name: "remove", New: newRemove})
		d, _ := reg.Lookup(ProcRemove)
		assert.Equal(t, "remove", d.Name)

		assert.Panics(t, func() {
			reg.MustRegister(Descriptor{Proc: ProcRemove, New: newRemove})
		})
	})
}
