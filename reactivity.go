// Package reactivity is a fine-grained reactivity engine: it makes Go
// values observable so that effects — user functions — automatically
// re-run whenever data they previously read is mutated.
//
// Four pieces compose it: observable wrapping (Observe/ReadOnly and the
// collection/slice/ref constructors), access interception (the Get/Set/
// Has/Delete methods on every view), a dependency graph (internal), and
// an effect runtime (Effect/Computed/the scheduler). See SPEC_FULL.md
// for the full design.
package reactivity

import (
	"github.com/AnatoleLucet/reactivity/internal"
)

// unwrapper is implemented by every observable view; Raw uses it instead
// of a type switch over every concrete wrapper type.
type unwrapper interface {
	raw() any
}

// identifiable is implemented by every observable view so IsObservable,
// MarkReadOnly and MarkNonReactive can find the underlying ID without
// caring which concrete kind of view they were handed.
type identifiable interface {
	ident() internal.ID
}

// Raw returns the underlying raw value for an observable view, or x
// itself if x is not a view (spec.md I1, §4.1).
func Raw(x any) any {
	if u, ok := x.(unwrapper); ok {
		return u.raw()
	}
	return x
}

// IsObservable reports whether x is an observable view (of either mode).
func IsObservable(x any) bool {
	_, ok := x.(unwrapper)
	return ok
}

// IsReadOnly reports whether x is a read-only observable view.
func IsReadOnly(x any) bool {
	if v, ok := x.(*Object); ok {
		return v.readOnly
	}
	if ro, ok := x.(interface{ IsReadOnly() bool }); ok {
		return ro.IsReadOnly()
	}
	return false
}

// MarkReadOnly advisory-tags raw so any future Observe(raw) always
// produces a read-only view, even without going through ReadOnly
// explicitly.
func MarkReadOnly(raw any) any {
	v := Observe(raw)
	if id, ok := identityOf(v); ok {
		internal.GetRegistry().MarkReadOnly(id)
	}
	return ReadOnly(raw)
}

// MarkNonReactive opts raw permanently out of observation: subsequent
// Observe/ReadOnly calls return it unchanged.
func MarkNonReactive(raw any) any {
	id, ok := identityOfRaw(raw)
	if ok {
		internal.GetRegistry().MarkNonReactive(id)
	}
	return raw
}

func identityOf(v any) (internal.ID, bool) {
	if id, ok := v.(identifiable); ok {
		return id.ident(), true
	}
	return internal.ID{}, false
}

func identityOfRaw(raw any) (internal.ID, bool) {
	v := Observe(raw)
	return identityOf(v)
}

// PauseTracking suppresses dependency tracking on the calling goroutine
// until the matching ResumeTracking (spec.md §4.5, nests).
func PauseTracking() { internal.GetRuntime().PauseTracking() }

// ResumeTracking undoes one PauseTracking.
func ResumeTracking() { internal.GetRuntime().ResumeTracking() }

// Untrack runs fn with tracking paused for its duration and returns its
// result, a convenience wrapper around PauseTracking/ResumeTracking.
func Untrack[T any](fn func() T) T {
	PauseTracking()
	defer ResumeTracking()
	return fn()
}

// SetDevMode toggles whether misuse warnings are logged (spec.md §7
// class 2): on by default, embedders doing a production build should
// call SetDevMode(false) once at startup.
func SetDevMode(on bool) { internal.SetDevMode(on) }

var locked bool

// SetLocked toggles process-wide read-only enforcement: while locked,
// writes/deletes on a read-only view warn and fail instead of silently
// no-opping (spec.md §4.2 "Read-only variant", §9 "Locked mode").
// Callers are expected to toggle it around library-owned windows (e.g.
// a render/update phase), not leave it set permanently.
func SetLocked(on bool) { locked = on }

// Locked reports the current locked-mode state.
func Locked() bool { return locked }
