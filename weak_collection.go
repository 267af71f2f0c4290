package reactivity

import (
	"runtime"
	"sync"
	"weak"

	"github.com/AnatoleLucet/reactivity/internal"
)

// WeakMap is a keyed container whose keys must be pointers to E: entries
// are evicted automatically once nothing else references the key
// (spec.md §3/§9 "weak identity maps"), the same way internal.identity.go
// keys its pointer→ID table — by weak.Pointer plus a runtime.AddCleanup
// hook, rather than any unsafe finalizer trickery.
type WeakMap[E any, V any] struct {
	id       internal.ID
	mu       sync.Mutex
	m        map[weak.Pointer[E]]V
	readOnly bool
}

// NewWeakMap constructs an empty weak-keyed container. Keys are *E
// pointers; once a key becomes unreachable elsewhere, its entry is
// dropped without the map itself keeping it alive.
func NewWeakMap[E any, V any]() *WeakMap[E, V] {
	return &WeakMap[E, V]{id: internal.NewRawID(), m: make(map[weak.Pointer[E]]V)}
}

func (w *WeakMap[E, V]) raw() any           { return &w.m }
func (w *WeakMap[E, V]) ident() internal.ID { return w.id }
func (w *WeakMap[E, V]) IsReadOnly() bool   { return w.readOnly }

func (w *WeakMap[E, V]) ReadOnly() *WeakMap[E, V] {
	return &WeakMap[E, V]{id: w.id, m: w.m, readOnly: true}
}

func (w *WeakMap[E, V]) track(op internal.Op, key any) {
	internal.Track(internal.GetRuntime(), w.id, op, key)
}

func (w *WeakMap[E, V]) triggerAt(op internal.Op, key any, newV, oldV any) {
	internal.Trigger(internal.GetRuntime(), w.id, op, key, internal.TriggerEvent{
		Target: w.id, Op: op, Key: key, NewValue: newV, OldValue: oldV,
	})
}

// Get reads the value stored for key, tracking (target, GET, key).
func (w *WeakMap[E, V]) Get(key *E) (V, bool) {
	wp := weak.Make(key)
	w.track(internal.OpGet, wp)

	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.m[wp]
	return v, ok
}

// Has reports whether key is present, tracking (target, HAS, key).
func (w *WeakMap[E, V]) Has(key *E) bool {
	wp := weak.Make(key)
	w.track(internal.OpHas, wp)

	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.m[wp]
	return ok
}

// Set stores value for key, triggering ADD if key was absent or SET if
// the stored value changed. An AddCleanup hook drops the entry once key
// becomes unreachable, so the map never keeps it alive.
func (w *WeakMap[E, V]) Set(key *E, value V) bool {
	if w.readOnly {
		if Locked() {
			internal.Warnf("Set failed: target is readonly")
			return false
		}
		return true
	}

	wp := weak.Make(key)

	w.mu.Lock()
	old, existed := w.m[wp]
	w.m[wp] = value
	w.mu.Unlock()

	if !existed {
		runtime.AddCleanup(key, func(p weak.Pointer[E]) {
			w.mu.Lock()
			delete(w.m, p)
			w.mu.Unlock()
		}, wp)
		w.triggerAt(internal.OpAdd, wp, value, nil)
	} else if !valuesEqual(any(old), any(value)) {
		w.triggerAt(internal.OpSet, wp, value, old)
	}
	return true
}

// Delete removes key, triggering DELETE if it was present.
func (w *WeakMap[E, V]) Delete(key *E) bool {
	if w.readOnly {
		if Locked() {
			internal.Warnf("Delete failed: target is readonly")
			return false
		}
		return false
	}

	wp := weak.Make(key)

	w.mu.Lock()
	old, existed := w.m[wp]
	delete(w.m, wp)
	w.mu.Unlock()

	if existed {
		w.triggerAt(internal.OpDelete, wp, nil, old)
	}
	return existed
}

// WeakSet is the membership-only sibling of WeakMap: it tracks whether a
// *E pointer has been added, without surviving past the pointee's
// reachability (spec.md §3/§9 "weak identity maps").
type WeakSet[E any] struct {
	id       internal.ID
	mu       sync.Mutex
	m        map[weak.Pointer[E]]struct{}
	readOnly bool
}

func NewWeakSet[E any]() *WeakSet[E] {
	return &WeakSet[E]{id: internal.NewRawID(), m: make(map[weak.Pointer[E]]struct{})}
}

func (w *WeakSet[E]) raw() any           { return &w.m }
func (w *WeakSet[E]) ident() internal.ID { return w.id }
func (w *WeakSet[E]) IsReadOnly() bool   { return w.readOnly }

func (w *WeakSet[E]) ReadOnly() *WeakSet[E] {
	return &WeakSet[E]{id: w.id, m: w.m, readOnly: true}
}

func (w *WeakSet[E]) track(op internal.Op, key any) {
	internal.Track(internal.GetRuntime(), w.id, op, key)
}

func (w *WeakSet[E]) triggerAt(op internal.Op, key any) {
	internal.Trigger(internal.GetRuntime(), w.id, op, key, internal.TriggerEvent{Target: w.id, Op: op, Key: key})
}

// Has reports whether v is a member, tracking (target, HAS, v).
func (w *WeakSet[E]) Has(v *E) bool {
	wp := weak.Make(v)
	w.track(internal.OpHas, wp)

	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.m[wp]
	return ok
}

// Add inserts v, triggering ADD if it was absent. An AddCleanup hook
// drops the membership once v becomes unreachable elsewhere.
func (w *WeakSet[E]) Add(v *E) bool {
	if w.readOnly {
		if Locked() {
			internal.Warnf("Add failed: target is readonly")
			return false
		}
		return true
	}

	wp := weak.Make(v)

	w.mu.Lock()
	_, existed := w.m[wp]
	w.m[wp] = struct{}{}
	w.mu.Unlock()

	if !existed {
		runtime.AddCleanup(v, func(p weak.Pointer[E]) {
			w.mu.Lock()
			delete(w.m, p)
			w.mu.Unlock()
		}, wp)
		w.triggerAt(internal.OpAdd, wp)
	}
	return true
}

// Delete removes v, triggering DELETE if it was present.
func (w *WeakSet[E]) Delete(v *E) bool {
	if w.readOnly {
		if Locked() {
			internal.Warnf("Delete failed: target is readonly")
			return false
		}
		return false
	}

	wp := weak.Make(v)

	w.mu.Lock()
	_, existed := w.m[wp]
	delete(w.m, wp)
	w.mu.Unlock()

	if existed {
		w.triggerAt(internal.OpDelete, wp)
	}
	return existed
}
