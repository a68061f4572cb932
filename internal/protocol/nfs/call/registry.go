package call

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Factory builds an empty call bound to env, ready for DecodeArgs.
type Factory func(env Envelope) ProcedureCall

// Descriptor is a registry entry: the procedure, its wire name and how to
// build an instance.
type Descriptor struct {
	Proc Proc
	Name string
	New  Factory
}

// Registry maps procedure numbers to call types. It is the single source
// of truth for "which procedure is this call", replacing any per-instance
// marker fields.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	procs map[Proc]Descriptor
	types map[reflect.Type]Proc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		procs: make(map[Proc]Descriptor),
		types: make(map[reflect.Type]Proc),
	}
}

// Register adds d. Registering the same procedure twice is an error.
func (r *Registry) Register(d Descriptor) error {
	if d.New == nil {
		return fmt.Errorf("register %s: nil factory", d.Proc)
	}
	if d.Name == "" {
		d.Name = d.Proc.String()
	}

	sample := d.New(Envelope{})
	if sample.Proc() != d.Proc {
		return fmt.Errorf("register %s: factory builds %s", d.Proc, sample.Proc())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.procs[d.Proc]; exists {
		return fmt.Errorf("register %s: already registered", d.Proc)
	}
	r.procs[d.Proc] = d
	r.types[reflect.TypeOf(sample)] = d.Proc
	return nil
}

// MustRegister is Register that panics on error, for package-level setup.
func (r *Registry) MustRegister(ds ...Descriptor) {
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the descriptor registered for proc.
func (r *Registry) Lookup(proc Proc) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.procs[proc]
	return d, ok
}

// New builds an empty call for proc, bound to env.
func (r *Registry) New(proc Proc, env Envelope) (ProcedureCall, error) {
	d, ok := r.Lookup(proc)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProcedure, proc)
	}
	return d.New(env), nil
}

// Procs lists the registered procedures in ascending order.
func (r *Registry) Procs() []Proc {
	r.mu.RLock()
	defer r.mu.RUnlock()

	procs := make([]Proc, 0, len(r.procs))
	for p := range r.procs {
		procs = append(procs, p)
	}
	sort.Slice(procs, func(i, j int) bool { return procs[i] < procs[j] })
	return procs
}

// KindOf returns the descriptor of c's concrete type. It reports false for
// types the registry does not know, even if c.Proc() collides with a
// registered number.
func (r *Registry) KindOf(c ProcedureCall) (Descriptor, bool) {
	if c == nil {
		return Descriptor{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	proc, ok := r.types[reflect.TypeOf(c)]
	if !ok {
		return Descriptor{}, false
	}
	return r.procs[proc], true
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared registry holding NULL, LOOKUP, REMOVE
// and RMDIR.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.MustRegister(
			Descriptor{Proc: ProcNull, New: func(env Envelope) ProcedureCall { return NewNullCall(env) }},
			Descriptor{Proc: ProcLookup, New: func(env Envelope) ProcedureCall { return NewLookupCall(env, nil) }},
			Descriptor{Proc: ProcRemove, New: func(env Envelope) ProcedureCall { return NewRemoveCall(env, nil) }},
			Descriptor{Proc: ProcRmdir, New: func(env Envelope) ProcedureCall { return NewRmdirCall(env, nil) }},
		)
	})
	return defaultRegistry
}
