package reactivity

import (
	"iter"
	"sync"

	"github.com/AnatoleLucet/reactivity/internal"
)

// Map is a transparent observable view over a keyed container with
// arbitrary comparable keys (spec.md's "mapping containers with
// arbitrary keys"). Containers can't be intercepted at the property
// level the way plain objects can — there is no single "read" to hook —
// so every operation is instrumented at the method level instead
// (spec.md §4.3).
type Map[K comparable, V any] struct {
	id       internal.ID
	mu       sync.Mutex
	m        map[K]V
	readOnly bool
	shallow  bool
}

// NewMap constructs an empty observable keyed container.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{id: internal.NewRawID(), m: make(map[K]V)}
}

func (m *Map[K, V]) raw() any           { return &m.m }
func (m *Map[K, V]) ident() internal.ID { return m.id }
func (m *Map[K, V]) IsReadOnly() bool   { return m.readOnly }

// ReadOnly returns a read-only view sharing this map's identity and
// backing store.
func (m *Map[K, V]) ReadOnly() *Map[K, V] {
	return &Map[K, V]{id: m.id, m: m.m, readOnly: true, shallow: m.shallow}
}

func (m *Map[K, V]) track(op internal.Op, key any) {
	internal.Track(internal.GetRuntime(), m.id, op, key)
}

func (m *Map[K, V]) triggerAt(op internal.Op, key any, newV, oldV any) {
	internal.Trigger(internal.GetRuntime(), m.id, op, key, internal.TriggerEvent{
		Target: m.id, Op: op, Key: key, NewValue: newV, OldValue: oldV,
	})
}

// Get reads the value for key, tracking (target, GET, key) — spec.md
// §4.3 "get(k)".
func (m *Map[K, V]) Get(key K) V {
	m.track(internal.OpGet, key)

	m.mu.Lock()
	v := m.m[key]
	m.mu.Unlock()

	if m.shallow {
		return v
	}
	if wrapped, ok := maybeWrapElement(any(v), m.readOnly); ok {
		return wrapped.(V)
	}
	return v
}

// Has reports whether key is present, tracking (target, HAS, key).
func (m *Map[K, V]) Has(key K) bool {
	m.track(internal.OpHas, key)

	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.m[key]
	return ok
}

// Size returns the entry count, tracking the iteration key — spec.md
// §4.3 "size".
func (m *Map[K, V]) Size() int {
	m.track(internal.OpIterate, internal.IterateKey)

	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.m)
}

// Set stores value for key, triggering ADD if the key was absent or SET
// if the stored value changed (spec.md §4.3 "set(k,v)").
func (m *Map[K, V]) Set(key K, value V) bool {
	if m.readOnly {
		if Locked() {
			internal.Warnf("Set failed: target is readonly, key %v", key)
			return false
		}
		return true
	}

	value = Raw(value).(V)

	m.mu.Lock()
	old, existed := m.m[key]
	m.m[key] = value
	m.mu.Unlock()

	if !existed {
		m.triggerAt(internal.OpAdd, key, value, nil)
	} else if !valuesEqual(any(old), any(value)) {
		m.triggerAt(internal.OpSet, key, value, old)
	}
	return true
}

// Delete removes key, triggering DELETE if it was present (spec.md §4.3
// "delete(k)").
func (m *Map[K, V]) Delete(key K) bool {
	if m.readOnly {
		if Locked() {
			internal.Warnf("Delete failed: target is readonly, key %v", key)
			return false
		}
		return false
	}

	m.mu.Lock()
	old, existed := m.m[key]
	if existed {
		delete(m.m, key)
	}
	m.mu.Unlock()

	if existed {
		m.triggerAt(internal.OpDelete, key, nil, old)
	}
	return existed
}

// Clear empties the container, triggering CLEAR — spec.md §4.3 "clear".
func (m *Map[K, V]) Clear() bool {
	if m.readOnly {
		if Locked() {
			internal.Warnf("Clear failed: target is readonly")
			return false
		}
		return true
	}

	m.mu.Lock()
	empty := len(m.m) == 0
	clear(m.m)
	m.mu.Unlock()

	if !empty {
		m.triggerAt(internal.OpClear, nil, nil, nil)
	}
	return true
}

// Range is this module's forEach: it tracks the iteration key once, then
// calls fn with each wrapped value, its key and the view itself (spec.md
// §4.3 "forEach"), stopping early if fn returns false. Keys are passed
// as stored; only values are wrapped.
func (m *Map[K, V]) Range(fn func(value V, key K, container *Map[K, V]) bool) {
	m.track(internal.OpIterate, internal.IterateKey)

	m.mu.Lock()
	snapshot := make(map[K]V, len(m.m))
	for k, v := range m.m {
		snapshot[k] = v
	}
	m.mu.Unlock()

	for k, v := range snapshot {
		wv := v
		if !m.shallow {
			if w, ok := maybeWrapElement(any(v), m.readOnly); ok {
				wv = w.(V)
			}
		}
		if !fn(wv, k, m) {
			return
		}
	}
}

// Keys returns an iterator over the container's keys, tracking the
// iteration key once per call (spec.md §4.3 "keys").
func (m *Map[K, V]) Keys() iter.Seq[K] {
	m.track(internal.OpIterate, internal.IterateKey)
	m.mu.Lock()
	snapshot := make([]K, 0, len(m.m))
	for k := range m.m {
		snapshot = append(snapshot, k)
	}
	m.mu.Unlock()

	return func(yield func(K) bool) {
		for _, k := range snapshot {
			if !yield(k) {
				return
			}
		}
	}
}

// Values returns an iterator over the container's values, each wrapped
// per the view's mode (spec.md §4.3 "values").
func (m *Map[K, V]) Values() iter.Seq[V] {
	m.track(internal.OpIterate, internal.IterateKey)
	m.mu.Lock()
	snapshot := make([]V, 0, len(m.m))
	for _, v := range m.m {
		snapshot = append(snapshot, v)
	}
	m.mu.Unlock()

	return func(yield func(V) bool) {
		for _, v := range snapshot {
			wv := v
			if !m.shallow {
				if w, ok := maybeWrapElement(any(v), m.readOnly); ok {
					wv = w.(V)
				}
			}
			if !yield(wv) {
				return
			}
		}
	}
}

// Entries is the default iterator of a map-kind container: the value of
// each yielded pair is wrapped per the view's mode; the key is yielded as
// stored, without wrapping (spec.md §4.3 "keys/values/entries/iterator").
func (m *Map[K, V]) Entries() iter.Seq2[K, V] {
	m.track(internal.OpIterate, internal.IterateKey)
	m.mu.Lock()
	type pair struct {
		k K
		v V
	}
	snapshot := make([]pair, 0, len(m.m))
	for k, v := range m.m {
		snapshot = append(snapshot, pair{k, v})
	}
	m.mu.Unlock()

	return func(yield func(K, V) bool) {
		for _, p := range snapshot {
			wv := p.v
			if !m.shallow {
				if w, ok := maybeWrapElement(any(p.v), m.readOnly); ok {
					wv = w.(V)
				}
			}
			if !yield(p.k, wv) {
				return
			}
		}
	}
}

// Set is a transparent observable view over an unkeyed collection of
// distinct values (spec.md's "set containers").
type Set[T comparable] struct {
	id       internal.ID
	mu       sync.Mutex
	m        map[T]struct{}
	readOnly bool
}

func NewSet[T comparable]() *Set[T] {
	return &Set[T]{id: internal.NewRawID(), m: make(map[T]struct{})}
}

func (s *Set[T]) raw() any           { return &s.m }
func (s *Set[T]) ident() internal.ID { return s.id }
func (s *Set[T]) IsReadOnly() bool   { return s.readOnly }

func (s *Set[T]) ReadOnly() *Set[T] {
	return &Set[T]{id: s.id, m: s.m, readOnly: true}
}

func (s *Set[T]) track(op internal.Op, key any) {
	internal.Track(internal.GetRuntime(), s.id, op, key)
}

func (s *Set[T]) triggerAt(op internal.Op, key any) {
	internal.Trigger(internal.GetRuntime(), s.id, op, key, internal.TriggerEvent{Target: s.id, Op: op, Key: key})
}

// Has reports whether v is a member, tracking (target, HAS, v).
func (s *Set[T]) Has(v T) bool {
	s.track(internal.OpHas, v)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[v]
	return ok
}

// Size returns the member count, tracking the iteration key.
func (s *Set[T]) Size() int {
	s.track(internal.OpIterate, internal.IterateKey)
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Add inserts v, triggering ADD if it was absent (spec.md §4.3 "add(v)").
func (s *Set[T]) Add(v T) bool {
	if s.readOnly {
		if Locked() {
			internal.Warnf("Add failed: target is readonly")
			return false
		}
		return true
	}

	s.mu.Lock()
	_, existed := s.m[v]
	s.m[v] = struct{}{}
	s.mu.Unlock()

	if !existed {
		s.triggerAt(internal.OpAdd, v)
	}
	return true
}

// Delete removes v, triggering DELETE if it was present.
func (s *Set[T]) Delete(v T) bool {
	if s.readOnly {
		if Locked() {
			internal.Warnf("Delete failed: target is readonly")
			return false
		}
		return false
	}

	s.mu.Lock()
	_, existed := s.m[v]
	delete(s.m, v)
	s.mu.Unlock()

	if existed {
		s.triggerAt(internal.OpDelete, v)
	}
	return existed
}

// Clear empties the set, triggering CLEAR.
func (s *Set[T]) Clear() bool {
	if s.readOnly {
		if Locked() {
			internal.Warnf("Clear failed: target is readonly")
			return false
		}
		return true
	}

	s.mu.Lock()
	empty := len(s.m) == 0
	clear(s.m)
	s.mu.Unlock()

	if !empty {
		s.triggerAt(internal.OpClear, nil)
	}
	return true
}

// Range is this module's forEach: fn is called once per member with the
// member and the view itself, stopping early on false. A set has no
// separate key, so no key argument is passed.
func (s *Set[T]) Range(fn func(value T, container *Set[T]) bool) {
	s.track(internal.OpIterate, internal.IterateKey)
	s.mu.Lock()
	snapshot := make([]T, 0, len(s.m))
	for v := range s.m {
		snapshot = append(snapshot, v)
	}
	s.mu.Unlock()

	for _, v := range snapshot {
		if !fn(v, s) {
			return
		}
	}
}

// Values returns an iterator over the set's members.
func (s *Set[T]) Values() iter.Seq[T] {
	s.track(internal.OpIterate, internal.IterateKey)
	s.mu.Lock()
	snapshot := make([]T, 0, len(s.m))
	for v := range s.m {
		snapshot = append(snapshot, v)
	}
	s.mu.Unlock()

	return func(yield func(T) bool) {
		for _, v := range snapshot {
			if !yield(v) {
				return
			}
		}
	}
}
