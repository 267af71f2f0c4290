package reactivity

import (
	"reflect"

	"github.com/AnatoleLucet/reactivity/internal"
)

func (o *Object) ident() internal.ID { return o.id }

// IsReadOnly reports whether o rejects writes.
func (o *Object) IsReadOnly() bool { return o.readOnly }

// Get reads field name, tracking (target, name) — spec.md §4.2 "Read".
// Nested struct pointers are wrapped before being returned, unless o is
// shallow, in which case the raw nested value is returned untouched.
func (o *Object) Get(name string) any {
	idx, ok := o.shape.fieldIndex[name]
	if !ok {
		internal.Warnf("Object has no field %q", name)
		return nil
	}

	internal.Track(internal.GetRuntime(), o.id, internal.OpGet, name)

	fv := o.val.Field(idx)
	native := fv.Interface()

	if o.shallow {
		return native
	}

	if fv.Kind() == reflect.Ptr && !fv.IsNil() && fv.Elem().Kind() == reflect.Struct {
		return observeDispatch(native, o.readOnly, false)
	}

	return native
}

// Set writes v to field name. A no-op under unlocked read-only mode; a
// warning-and-failure under locked read-only mode (spec.md §4.2 "Write",
// "Read-only variant"). Triggers SET when the stored value differs from
// the old value (NaN-aware strict inequality, spec.md §4.2).
func (o *Object) Set(name string, v any) bool {
	idx, ok := o.shape.fieldIndex[name]
	if !ok {
		internal.Warnf("Object has no field %q", name)
		return false
	}

	if o.readOnly {
		if Locked() {
			internal.Warnf("Set failed: target is readonly, key %q", name)
			return false
		}
		return true // silently ignored outside locked mode
	}

	fv := o.val.Field(idx)
	old := fv.Interface()
	v = Raw(v)

	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		rv = reflect.Zero(fv.Type())
	}
	fv.Set(rv)

	if !valuesEqual(old, v) {
		internal.Trigger(internal.GetRuntime(), o.id, internal.OpSet, name, internal.TriggerEvent{
			Target: o.id, Op: internal.OpSet, Key: name, NewValue: v, OldValue: old,
		})
	}
	return true
}

// Has reports whether name is a field of the wrapped struct, tracking
// (target, HAS, name) — spec.md §4.2 "Has-test". Every declared field
// always exists on a Go struct, so this is mostly useful for templated
// access patterns that probe a key before reading it.
func (o *Object) Has(name string) bool {
	internal.Track(internal.GetRuntime(), o.id, internal.OpHas, name)
	_, ok := o.shape.fieldIndex[name]
	return ok
}

// Keys returns the struct's exported field names, tracking the
// iteration key — spec.md §4.2 "Own-keys enumeration".
func (o *Object) Keys() []string {
	internal.Track(internal.GetRuntime(), o.id, internal.OpIterate, internal.IterateKey)
	out := make([]string, len(o.shape.fieldNames))
	copy(out, o.shape.fieldNames)
	return out
}
