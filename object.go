package reactivity

import (
	"fmt"
	"reflect"
	"runtime"
	"sync"
	"weak"

	"github.com/AnatoleLucet/reactivity/internal"
)

// Object is a transparent observable view over a pointer to a plain Go
// struct. Go has no proxy primitive, so field interception is
// synthesized at wrap time by reflecting over the struct's shape once
// per reflect.Type and caching the field-index table — the "reflect
// over the raw's shape at wrap time" escape hatch spec.md §9 grants
// implementers without host proxy support.
type Object struct {
	id       internal.ID
	val      reflect.Value // addressable struct value (raw.Elem())
	shape    *shape
	readOnly bool
	shallow  bool
}

type shape struct {
	fieldIndex map[string]int
	fieldNames []string
}

var (
	shapesMu sync.Mutex
	shapes   = map[reflect.Type]*shape{}
)

func shapeOf(t reflect.Type) *shape {
	shapesMu.Lock()
	defer shapesMu.Unlock()

	if s, ok := shapes[t]; ok {
		return s
	}

	s := &shape{fieldIndex: make(map[string]int)}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		s.fieldIndex[f.Name] = i
		s.fieldNames = append(s.fieldNames, f.Name)
	}
	shapes[t] = s
	return s
}

// Observe returns the cached mutable observable view over raw, building
// one on first sight. raw must be a non-nil pointer to a struct; any
// other kind is returned unchanged with a development warning (spec.md
// §4.1 step 1 / §7 class 2). Observing an already-observable value is
// idempotent (spec.md I2).
func Observe(raw any) any { return observeDispatch(raw, false, false) }

// ReadOnly returns the cached read-only view over raw (or over the raw
// backing a mutable view, if raw is already one — spec.md §4.1 step 3).
func ReadOnly(raw any) any { return observeDispatch(raw, true, false) }

// ShallowReadOnly is read-only at the top level only: nested struct
// fields are returned as their raw, unwrapped values (spec.md §4.2,
// "Read-only variant", and the shallow-read-only open question in §9 —
// resolved here by preserving the shallow guarantee exactly).
func ShallowReadOnly(raw any) any { return observeDispatch(raw, true, true) }

func observeDispatch(raw any, readOnly, shallow bool) any {
	if raw == nil {
		return nil
	}

	if o, ok := raw.(*Object); ok {
		return unwrapForRewrap(o, readOnly)
	}

	v := reflect.ValueOf(raw)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		internal.Warnf("observe() called on a non-object value of type %T; returning it unchanged", raw)
		return raw
	}

	id := identifyReflectPtr(raw, v)

	if internal.GetRegistry().IsMarkedNonReactive(id) {
		return raw
	}
	if !readOnly && internal.GetRegistry().IsMarkedReadOnly(id) {
		// a value explicitly marked read-only never becomes mutable
		readOnly = true
	}

	if cached := internal.GetRegistry().Lookup(id, readOnly); cached != nil {
		return cached
	}

	o := &Object{
		id:       id,
		val:      v.Elem(),
		shape:    shapeOf(v.Elem().Type()),
		readOnly: readOnly,
		shallow:  shallow,
	}
	internal.GetRegistry().Store(id, resolverFor(o), readOnly)
	return o
}

// resolverFor builds a Registry resolve closure over a weak.Pointer[Object]
// — weak.Pointer's element type must be known at the call site, which is
// why this lives in object.go rather than in the generic Registry itself.
func resolverFor(o *Object) func() any {
	wp := weak.Make(o)
	return func() any {
		if v := wp.Value(); v != nil {
			return v
		}
		return nil
	}
}

// unwrapForRewrap implements spec.md §4.1 steps 2-3: re-observing a
// read-only view yields itself; converting a mutable view to read-only
// unwraps to raw first and looks up/builds the read-only cache entry.
func unwrapForRewrap(o *Object, wantReadOnly bool) any {
	if o.readOnly {
		return o // wrapping a read-only view yields itself, regardless of requested mode
	}
	if !wantReadOnly {
		return o
	}

	if cached := internal.GetRegistry().Lookup(o.id, true); cached != nil {
		return cached
	}

	ro := &Object{id: o.id, val: o.val, shape: o.shape, readOnly: true, shallow: o.shallow}
	internal.GetRegistry().Store(o.id, resolverFor(ro), true)
	return ro
}

// identifyReflectPtr mints (or returns the cached) stable ID for a
// dynamically typed struct pointer. Unlike internal.IdentifyPointer —
// which needs T known at compile time to use weak.Pointer[T] as a map
// key — reflect.Value only gives us raw's address as a uintptr, so the
// cache here is keyed on that address directly and evicted via
// runtime.SetFinalizer, the one stdlib API that accepts a dynamically
// typed object instead of a generic *T.
var (
	reflectIDsMu sync.Mutex
	reflectIDs   = map[uintptr]internal.ID{}
)

func identifyReflectPtr(raw any, v reflect.Value) internal.ID {
	addr := v.Pointer()

	reflectIDsMu.Lock()
	if id, ok := reflectIDs[addr]; ok {
		reflectIDsMu.Unlock()
		return id
	}
	reflectIDsMu.Unlock()

	id := internal.NewRawID()

	reflectIDsMu.Lock()
	reflectIDs[addr] = id
	reflectIDsMu.Unlock()

	runtime.SetFinalizer(raw, func(any) {
		reflectIDsMu.Lock()
		delete(reflectIDs, addr)
		reflectIDsMu.Unlock()
		internal.GetRegistry().Forget(id)
		internal.GetGraph().Forget(id)
	})

	return id
}

// raw returns the underlying struct pointer.
func (o *Object) raw() any { return o.val.Addr().Interface() }

func (o *Object) String() string {
	return fmt.Sprintf("Object(%v)", o.val.Interface())
}
