package internal

import "sync"

// Options mirrors the effect options table in spec.md §3: lazy (don't
// run on creation), computed (scheduled ahead of plain effects on
// trigger), scheduler (invoked instead of the effect body on trigger),
// and the three diagnostic hooks.
type Options struct {
	Lazy      bool
	Computed  bool
	Scheduler func()
	OnTrack   func(TrackEvent)
	OnTrigger func(TriggerEvent)
	OnStop    func()
}

// Effect is a user function plus the metadata spec.md §3 names: an
// active flag, the raw function, the dep-sets it currently belongs to
// (its "owned dependency list"), and its Options.
type Effect struct {
	mu sync.Mutex

	rt     *Runtime
	raw    func()
	active bool

	owned []*DepSet // dep-sets this effect currently belongs to

	scheduler func()
	computed  bool
	onTrack   func(TrackEvent)
	onTrigger func(TriggerEvent)
	onStop    func()
}

// NewEffect constructs and, unless Options.Lazy, immediately runs fn once.
func NewEffect(rt *Runtime, fn func(), opts Options) *Effect {
	e := &Effect{
		rt:        rt,
		raw:       fn,
		active:    true,
		scheduler: opts.Scheduler,
		computed:  opts.Computed,
		onTrack:   opts.OnTrack,
		onTrigger: opts.OnTrigger,
		onStop:    opts.OnStop,
	}

	if !opts.Lazy {
		e.Run()
	}

	return e
}

func (e *Effect) IsActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

func (e *Effect) IsComputed() bool { return e.computed }

func (e *Effect) addOwnedDep(d *DepSet) {
	e.mu.Lock()
	e.owned = append(e.owned, d)
	e.mu.Unlock()
}

// cleanup removes e from every dep-set it currently belongs to and
// empties its owned list — spec.md I4, "before E re-runs, E is removed
// from every dep-set it previously belonged to."
func (e *Effect) cleanup() {
	e.mu.Lock()
	owned := e.owned
	e.owned = nil
	e.mu.Unlock()

	for _, d := range owned {
		d.Remove(e)
	}
}

// Run executes the effect body, pushing it onto the active-effect stack
// so Track calls made during the body attribute reads to this effect.
// Re-entering an already-stacked effect (the effect transitively
// triggers itself) is a no-op body-wise in the sense that it still runs,
// but does NOT clean/re-push — this is what makes a direct self-loop
// terminate rather than recurse (spec.md §4.5, P10).
func (e *Effect) Run() {
	if !e.IsActive() {
		e.raw()
		return
	}

	if e.rt.onStack(e) {
		e.raw()
		return
	}

	e.cleanup()

	e.rt.push(e)
	defer e.rt.pop()

	defer func() {
		if r := recover(); r != nil {
			e.rt.reportError(r)
		}
	}()

	e.raw()
}

// Rerun is what Trigger calls: run the scheduler if one is set, else run
// the effect directly.
func (e *Effect) Rerun() {
	if e.scheduler != nil {
		e.scheduler()
		return
	}
	e.Run()
}

// Stop deactivates the effect: cleanup runs once more, OnStop fires, and
// every subsequent call to Run bypasses tracking entirely (spec.md §4.5,
// P8 — "no subsequent trigger ever invokes E" is satisfied because a
// stopped effect is no longer a member of any dep-set after cleanup).
func (e *Effect) Stop() {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return
	}
	e.active = false
	e.mu.Unlock()

	e.cleanup()

	if e.onStop != nil {
		e.onStop()
	}
}
