package internal

import (
	"runtime"
	"sync"
	"weak"
)

// ID is a stable identity for one raw pointer, independent of its struct
// type. The registry and the dependency graph key everything on ID rather
// than on the raw pointer itself, which is what lets both be weak-keyed:
// an ID is one integer, holding one costs nothing, so the registry and
// graph can hold IDs strongly while the raw<->ID mapping that produces
// them is weak. This is the Go stand-in for spec.md §9's "key by a stable
// object identity... and register a finalizer/drop hook to clear entries"
// — Go's stdlib `weak` package (1.24+) plus runtime.AddCleanup supplies
// exactly that finalizer hook, so no third-party weak-map library is
// needed (see DESIGN.md).
type ID struct{ n uint64 }

var (
	idSeq   uint64
	idSeqMu sync.Mutex
	rawIDs  sync.Map // any(weak.Pointer[T]) -> ID, one shared table across all T
)

func mintID() ID {
	idSeqMu.Lock()
	defer idSeqMu.Unlock()
	idSeq++
	return ID{n: idSeq}
}

// NewRawID mints a fresh ID for callers that cannot use IdentifyPointer's
// generic, compile-time-typed path — namely the root package's
// reflection-based Object wrapper, which only ever has a raw struct
// pointer as a dynamically typed reflect.Value. Such callers are
// responsible for their own eviction (via runtime.SetFinalizer, which —
// unlike AddCleanup — accepts a dynamically typed obj).
func NewRawID() ID { return mintID() }

// IdentifyPointer returns the stable ID for raw, minting one on first
// sight. The lookup key is a weak.Pointer[T], which is comparable and
// costs nothing to hold strongly in rawIDs — it never keeps raw alive.
// A cleanup registered directly on raw evicts the entry once raw is
// actually collected, so rawIDs never grows unboundedly relative to live
// raw values.
func IdentifyPointer[T any](raw *T) ID {
	key := any(weak.Make(raw))

	if v, ok := rawIDs.Load(key); ok {
		return v.(ID)
	}

	id := mintID()
	actual, loaded := rawIDs.LoadOrStore(key, id)
	if loaded {
		return actual.(ID)
	}

	runtime.AddCleanup(raw, func(k any) {
		rawIDs.Delete(k)
		GetRegistry().Forget(k.(ID))
		GetGraph().Forget(k.(ID))
	}, any(id))

	return id
}

// viewEntry caches one (mode) view for an ID. resolve is a closure built
// by the caller over a concretely typed weak.Pointer[ConcreteViewType] —
// Registry itself only ever sees views as `any`, and weak.Pointer.Value
// needs its element type at compile time, so the weak handle has to be
// created (and resolved) where the concrete type is still known. The
// view is held only weakly: the cache's existence must never be the
// reason a view (and transitively, the raw it wraps) stays alive. If
// resolve reports the view gone, the slot is treated as empty and a
// fresh view is built — this is the Go reading of a WeakMap's ephemeron
// semantics, which Go's plain weak.Pointer does not give for free (see
// DESIGN.md).
type viewEntry struct {
	resolve func() any
}

// Registry is the process-wide identity bookkeeping: ID->view caches
// (one for mutable views, one for read-only views), plus the advisory
// marked-readonly / marked-non-reactive sets. The view->raw direction is
// not stored here; every view returns its own raw value.
type Registry struct {
	mu sync.Mutex

	mutable  map[ID]*viewEntry
	readonly map[ID]*viewEntry

	markedReadOnly    map[ID]struct{}
	markedNonReactive map[ID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		mutable:           make(map[ID]*viewEntry),
		readonly:          make(map[ID]*viewEntry),
		markedReadOnly:    make(map[ID]struct{}),
		markedNonReactive: make(map[ID]struct{}),
	}
}

// Lookup returns the cached view for id in the given mode, or nil if
// there is no live cached view.
func (r *Registry) Lookup(id ID, readOnly bool) any {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.mutable
	if readOnly {
		m = r.readonly
	}

	e, ok := m[id]
	if !ok {
		return nil
	}
	if v := e.resolve(); v != nil {
		return v
	}
	delete(m, id)
	return nil
}

// Store caches a view for id in the given mode. resolve must return the
// live view (built from a weak.Pointer over its concrete type) or nil
// once that view is no longer reachable elsewhere — see viewEntry.
func (r *Registry) Store(id ID, resolve func() any, readOnly bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := &viewEntry{resolve: resolve}

	if readOnly {
		r.readonly[id] = e
	} else {
		r.mutable[id] = e
	}
}

// MarkReadOnly records id as forbidden from ever becoming a mutable view.
func (r *Registry) MarkReadOnly(id ID) {
	r.mu.Lock()
	r.markedReadOnly[id] = struct{}{}
	r.mu.Unlock()
}

// IsMarkedReadOnly reports whether id was previously passed to MarkReadOnly.
func (r *Registry) IsMarkedReadOnly(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.markedReadOnly[id]
	return ok
}

// MarkNonReactive opts id permanently out of wrapping.
func (r *Registry) MarkNonReactive(id ID) {
	r.mu.Lock()
	r.markedNonReactive[id] = struct{}{}
	r.mu.Unlock()
}

// IsMarkedNonReactive reports whether id was previously passed to
// MarkNonReactive.
func (r *Registry) IsMarkedNonReactive(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.markedNonReactive[id]
	return ok
}

func (r *Registry) Forget(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.mutable, id)
	delete(r.readonly, id)
	delete(r.markedReadOnly, id)
	delete(r.markedNonReactive, id)
}
