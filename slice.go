package reactivity

import (
	"reflect"

	"github.com/AnatoleLucet/reactivity/internal"
)

// lengthKey is the array-specific iteration key: spec.md §4.4 says "the
// iteration key ... for array targets is the length property", distinct
// from the generic ITERATE_KEY sentinel used by every other observable
// kind.
const lengthKey = "length"

// Slice is a transparent observable view over an ordered sequence
// backed by *[]T. It is the spec.md "ordered sequence (array)"
// observable kind; length reads/writes stand in for JS array semantics
// where `length` is itself an observable property (spec.md §4.4, P6).
type Slice[T any] struct {
	id       internal.ID
	backing  *[]T
	readOnly bool
	shallow  bool
}

// NewSlice wraps backing as an observable sequence. backing is the
// address of a Go slice variable the caller owns; appends/removals grow
// or shrink *backing in place, exactly like any other slice-by-pointer
// idiom in Go.
func NewSlice[T any](backing *[]T) *Slice[T] {
	return &Slice[T]{id: internal.NewRawID(), backing: backing}
}

func (s *Slice[T]) raw() any           { return s.backing }
func (s *Slice[T]) ident() internal.ID { return s.id }
func (s *Slice[T]) IsReadOnly() bool   { return s.readOnly }

// ReadOnly returns a read-only view sharing this slice's identity and
// backing store.
func (s *Slice[T]) ReadOnly() *Slice[T] {
	return &Slice[T]{id: s.id, backing: s.backing, readOnly: true, shallow: s.shallow}
}

func (s *Slice[T]) track(op internal.Op, key any) {
	internal.Track(internal.GetRuntime(), s.id, op, key)
}

func (s *Slice[T]) triggerAt(op internal.Op, key any, newV, oldV any) {
	internal.Trigger(internal.GetRuntime(), s.id, op, key, internal.TriggerEvent{
		Target: s.id, Op: op, Key: key, NewValue: newV, OldValue: oldV,
	})
}

// Len returns the current length, tracking the "length" iteration key.
func (s *Slice[T]) Len() int {
	s.track(internal.OpGet, lengthKey)
	return len(*s.backing)
}

// Get returns element i, tracking (target, i). A nested observable-kind
// element is wrapped before being returned unless s is shallow.
func (s *Slice[T]) Get(i int) T {
	s.track(internal.OpGet, i)

	v := (*s.backing)[i]
	if s.shallow {
		return v
	}

	if wrapped, ok := maybeWrapElement(any(v), s.readOnly); ok {
		return wrapped.(T)
	}
	return v
}

// Set writes v at index i, triggering SET when the new value differs
// from the old one. Writing past the current end grows the backing
// slice up to i (zero-filling the gap), triggering ADD at i and at the
// length key with the new length — spec.md §8 scenario 3's sparse-
// array-extension case.
func (s *Slice[T]) Set(i int, v T) bool {
	if s.readOnly {
		if Locked() {
			internal.Warnf("Set failed: target is readonly, index %d", i)
			return false
		}
		return true
	}

	raw := Raw(v)
	tv, _ := raw.(T)

	if i >= len(*s.backing) {
		oldLen := len(*s.backing)
		grown := make([]T, i+1)
		copy(grown, *s.backing)
		grown[i] = tv
		*s.backing = grown

		s.triggerAt(internal.OpAdd, i, tv, nil)
		s.triggerAt(internal.OpAdd, lengthKey, len(*s.backing), oldLen)
		return true
	}

	old := (*s.backing)[i]
	(*s.backing)[i] = tv

	if !valuesEqual(any(old), any(tv)) {
		s.triggerAt(internal.OpSet, i, tv, old)
	}
	return true
}

// Push appends v, triggering ADD at the new index plus the length key.
func (s *Slice[T]) Push(v T) bool {
	if s.readOnly {
		if Locked() {
			internal.Warnf("Push failed: target is readonly")
			return false
		}
		return true
	}

	raw := Raw(v)
	tv, _ := raw.(T)

	i := len(*s.backing)
	*s.backing = append(*s.backing, tv)

	s.triggerAt(internal.OpAdd, i, tv, nil)
	s.triggerAt(internal.OpAdd, lengthKey, len(*s.backing), i)
	return true
}

// RemoveAt deletes the element at i, triggering DELETE at i plus the
// length key.
func (s *Slice[T]) RemoveAt(i int) bool {
	if s.readOnly {
		if Locked() {
			internal.Warnf("RemoveAt failed: target is readonly")
			return false
		}
		return true
	}

	old := (*s.backing)[i]
	*s.backing = append((*s.backing)[:i], (*s.backing)[i+1:]...)

	s.triggerAt(internal.OpDelete, i, nil, old)
	s.triggerAt(internal.OpDelete, lengthKey, len(*s.backing), nil)
	return true
}

// Clear empties the sequence, triggering CLEAR (every dep under the
// target).
func (s *Slice[T]) Clear() bool {
	if s.readOnly {
		if Locked() {
			internal.Warnf("Clear failed: target is readonly")
			return false
		}
		return true
	}

	if len(*s.backing) == 0 {
		return true
	}

	*s.backing = (*s.backing)[:0]
	s.triggerAt(internal.OpClear, nil, nil, nil)
	return true
}

// Includes is the identity-sensitive membership test spec.md §4.2/P7
// requires: it compares against the raw backing elements using x as
// given, never unwrapping or rewrapping it, so identity checks against
// values held elsewhere by user code still match (spec.md's rationale:
// "otherwise identity checks performed by these methods would fail to
// match unwrapped values held by user code").
func (s *Slice[T]) Includes(x T) bool {
	s.track(internal.OpIterate, lengthKey)
	for _, v := range *s.backing {
		if valuesEqual(any(v), any(x)) {
			return true
		}
	}
	return false
}

// IndexOf is Includes' index-returning sibling, same identity semantics.
func (s *Slice[T]) IndexOf(x T) int {
	s.track(internal.OpIterate, lengthKey)
	for i, v := range *s.backing {
		if valuesEqual(any(v), any(x)) {
			return i
		}
	}
	return -1
}

// LastIndexOf scans from the end.
func (s *Slice[T]) LastIndexOf(x T) int {
	s.track(internal.OpIterate, lengthKey)
	for i := len(*s.backing) - 1; i >= 0; i-- {
		if valuesEqual(any((*s.backing)[i]), any(x)) {
			return i
		}
	}
	return -1
}

// maybeWrapElement wraps v if it is itself an observable kind (a
// pointer to a struct); used by Get on every container's element reads.
func maybeWrapElement(v any, readOnly bool) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
		return observeDispatch(v, readOnly, false), true
	}
	return nil, false
}
