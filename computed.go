package reactivity

import (
	"sync"

	"github.com/AnatoleLucet/reactivity/internal"
)

// Computed is a memoized derived value: its getter only reruns when one
// of the reactive values it read has actually changed, and it is itself
// observable — reading Get() inside another effect subscribes that
// effect to the computed's own dep-set rather than to the computed's
// upstream sources directly (spec.md §4.7).
//
// The underlying effect is marked Computed so the dependency graph runs
// it ahead of plain effects on the same trigger (spec.md P5,
// "computed-before-plain ordering") — this is what guarantees a plain
// effect reading a stale cached value never happens.
type Computed[T any] struct {
	id     internal.ID
	getter func() T
	setter func(T)

	eff *internal.Effect

	mu    sync.Mutex
	value T
	dirty bool
}

// NewComputed derives a memoized value from getter. setter is optional:
// if provided, the computed becomes writable — Set runs setter and is
// the supplemented write-through behavior this module adds on top of
// the reference engine's read-only computed (see DESIGN.md).
func NewComputed[T any](getter func() T, setter ...func(T)) *Computed[T] {
	c := &Computed[T]{id: internal.NewRawID(), getter: getter, dirty: true}
	if len(setter) > 0 {
		c.setter = setter[0]
	}

	c.eff = internal.NewEffect(internal.GetRuntime(), func() {
		v := c.getter()
		c.mu.Lock()
		c.value = v
		c.mu.Unlock()
	}, internal.Options{
		Lazy:     true,
		Computed: true,
		Scheduler: func() {
			c.mu.Lock()
			wasDirty := c.dirty
			c.dirty = true
			c.mu.Unlock()

			if !wasDirty {
				internal.Trigger(internal.GetRuntime(), c.id, internal.OpSet, refValueKey, internal.TriggerEvent{
					Target: c.id, Op: internal.OpSet, Key: refValueKey,
				})
			}
		},
	})

	return c
}

func (c *Computed[T]) ident() internal.ID { return c.id }
func (c *Computed[T]) isRef()             {}

// Get returns the memoized value, recomputing first if a dependency has
// changed since the last read. The read itself is tracked on the
// computed's own identity, so any effect reading Get() is subscribed to
// the computed cell — not to whatever the getter happened to read.
func (c *Computed[T]) Get() T {
	internal.Track(internal.GetRuntime(), c.id, internal.OpGet, refValueKey)

	c.mu.Lock()
	dirty := c.dirty
	c.mu.Unlock()

	if dirty {
		c.eff.Run()
		c.mu.Lock()
		c.dirty = false
		c.mu.Unlock()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set writes through to the setter given at construction. Calling Set on
// a read-only computed (no setter given) warns and is a no-op, mirroring
// the reference engine's "computed value is readonly" diagnostic.
func (c *Computed[T]) Set(v T) {
	if c.setter == nil {
		internal.Warnf("Computed.Set failed: no setter was provided")
		return
	}
	c.setter(v)
}

// Stop deactivates the computed's inner effect, so it no longer reruns
// or marks itself dirty when its sources change. After Stop, Get returns
// the last cached value; a computed stopped before its first Get
// computes once on that Get and caches the result.
func (c *Computed[T]) Stop() { c.eff.Stop() }
