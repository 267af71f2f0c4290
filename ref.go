package reactivity

import "github.com/AnatoleLucet/reactivity/internal"

// refValueKey is the single property a Ref tracks/triggers on — spec.md
// §4.6 models a reference cell as a one-field object whose field is
// conventionally named "value".
const refValueKey = "value"

// Ref is a single mutable cell for values that don't otherwise have an
// identity an observable view can hook onto — primitives, strings,
// anything not a pointer-to-struct (spec.md §4.6). Reading Get tracks
// the cell; writing Set triggers it when the stored value changes,
// using the same NaN-aware comparison as every other write path.
type Ref[T any] struct {
	id    internal.ID
	value T
}

// NewRef wraps initial in a reference cell.
func NewRef[T any](initial T) *Ref[T] {
	return &Ref[T]{id: internal.NewRawID(), value: initial}
}

func (r *Ref[T]) raw() any           { return r.value }
func (r *Ref[T]) ident() internal.ID { return r.id }

// Get reads the cell's value, tracking (target, GET, "value").
func (r *Ref[T]) Get() T {
	internal.Track(internal.GetRuntime(), r.id, internal.OpGet, refValueKey)
	return r.value
}

// Set stores v, triggering SET when it differs from the old value.
func (r *Ref[T]) Set(v T) {
	old := r.value
	r.value = v
	if !valuesEqual(any(old), any(v)) {
		internal.Trigger(internal.GetRuntime(), r.id, internal.OpSet, refValueKey, internal.TriggerEvent{
			Target: r.id, Op: internal.OpSet, Key: refValueKey, NewValue: v, OldValue: old,
		})
	}
}

// refProbe is implemented by every *Ref[T] instantiation without any of
// them needing to know about each other — IsRef uses it instead of a
// type switch over every possible T.
type refProbe interface{ isRef() }

func (r *Ref[T]) isRef() {}

// IsRef reports whether x is a reference cell.
func IsRef(x any) bool {
	_, ok := x.(refProbe)
	return ok
}

// ToRefs exposes each field of an Object as an independent Ref-like
// handle, so a caller can destructure a struct into separately trackable
// cells without losing reactivity (spec.md §4.6 "ToRefs").
func ToRefs(o *Object) map[string]*ObjectFieldRef {
	out := make(map[string]*ObjectFieldRef, len(o.shape.fieldNames))
	for _, name := range o.shape.fieldNames {
		out[name] = &ObjectFieldRef{obj: o, field: name}
	}
	return out
}

// ObjectFieldRef is a Ref-shaped view onto a single Object field,
// produced by ToRefs. Unlike Ref[T] it has no value of its own: every
// Get/Set delegates straight to the backing Object, so it stays in sync
// with direct field access on o.
type ObjectFieldRef struct {
	obj   *Object
	field string
}

func (f *ObjectFieldRef) isRef() {}

// Get reads the backing field, tracking through the Object as usual.
func (f *ObjectFieldRef) Get() any { return f.obj.Get(f.field) }

// Set writes the backing field, triggering through the Object as usual.
func (f *ObjectFieldRef) Set(v any) bool { return f.obj.Set(f.field, v) }
