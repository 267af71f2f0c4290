package reactivity

import "github.com/AnatoleLucet/reactivity/internal"

// TrackEvent is passed to an Effect's OnTrack diagnostic hook every time
// the effect body reads a tracked (target, key) pair (spec.md §7 class 3
// diagnostics).
type TrackEvent struct {
	Op  Op
	Key any
}

// TriggerEvent is passed to an Effect's OnTrigger diagnostic hook once
// per affected effect, before it reruns.
type TriggerEvent struct {
	Op       Op
	Key      any
	NewValue any
	OldValue any
}

// Op identifies the kind of access/mutation a Track/Trigger call
// represents (spec.md §4.2-4.4).
type Op = internal.Op

const (
	OpGet     = internal.OpGet
	OpHas     = internal.OpHas
	OpIterate = internal.OpIterate
	OpAdd     = internal.OpAdd
	OpSet     = internal.OpSet
	OpDelete  = internal.OpDelete
	OpClear   = internal.OpClear
)

// EffectOptions mirrors the effect options table of spec.md §3: Lazy
// (don't run on creation), Scheduler (run instead of the body on every
// trigger — used to implement watchers and Computed), and the three
// diagnostic hooks.
type EffectOptions struct {
	Lazy      bool
	Scheduler func()
	OnTrack   func(TrackEvent)
	OnTrigger func(TriggerEvent)
	OnStop    func()
}

// Effect is a user function re-run automatically whenever a tracked
// dependency it read during its previous run is mutated (spec.md §3/§4.5).
type Effect struct {
	inner *internal.Effect
}

// NewEffect constructs an effect running fn, and unless opts.Lazy is set,
// runs it once immediately to establish its initial dependency set.
func NewEffect(fn func(), opts EffectOptions) *Effect {
	e := &Effect{}
	e.inner = internal.NewEffect(internal.GetRuntime(), fn, internal.Options{
		Lazy:      opts.Lazy,
		Scheduler: opts.Scheduler,
		OnTrack: func(ev internal.TrackEvent) {
			if opts.OnTrack != nil {
				opts.OnTrack(TrackEvent{Op: ev.Op, Key: ev.Key})
			}
		},
		OnTrigger: func(ev internal.TriggerEvent) {
			if opts.OnTrigger != nil {
				opts.OnTrigger(TriggerEvent{Op: ev.Op, Key: ev.Key, NewValue: ev.NewValue, OldValue: ev.OldValue})
			}
		},
		OnStop: opts.OnStop,
	})
	return e
}

// Run re-executes the effect body directly, bypassing its scheduler.
func (e *Effect) Run() { e.inner.Run() }

// Stop deactivates the effect: it is removed from every dependency it
// belongs to and never reruns again (spec.md §4.5, P8).
func (e *Effect) Stop() { e.inner.Stop() }

// IsActive reports whether the effect is still active, i.e. Stop has not
// been called yet.
func (e *Effect) IsActive() bool { return e.inner.IsActive() }
