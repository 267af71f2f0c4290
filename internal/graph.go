package internal

import "sync"

// Op identifies the kind of mutation a Trigger call represents. Spec.md
// §4.2-4.4 use it to decide whether the iteration key's dep-set also
// needs to fire (ADD/DELETE) and, for the base interceptor, whether a
// write actually changed anything.
type Op int

const (
	OpGet Op = iota
	OpHas
	OpIterate
	OpAdd
	OpSet
	OpDelete
	OpClear
)

// IterateKey is the sentinel used for subscriptions to whole-container
// enumeration on every target except sequences, which use their
// "length" key instead.
// It is an unexported pointer type so no user-supplied key, however
// constructed, can ever compare equal to it.
type iterateKeySentinel struct{}

var IterateKey = &iterateKeySentinel{}

// DepSet is the set of effects subscribed to a single (target, key) pair.
// Membership is symmetric: adding e to a DepSet also appends that DepSet
// to e's owned dependency list (internal/effect.go), which is what makes
// Effect cleanup O(|deps(e)|) instead of a full graph scan (spec.md §9).
type DepSet struct {
	mu    sync.Mutex
	order []*Effect // insertion order, spec.md §5 "within each class insertion order"
	index map[*Effect]int
}

func newDepSet() *DepSet {
	return &DepSet{index: make(map[*Effect]int)}
}

func (d *DepSet) has(e *Effect) bool {
	_, ok := d.index[e]
	return ok
}

func (d *DepSet) add(e *Effect) {
	if d.has(e) {
		return
	}
	d.index[e] = len(d.order)
	d.order = append(d.order, e)
}

// remove deletes e from the set. Removal during iteration of a snapshot
// is always safe: Trigger copies d.order into a work list before running
// anything (spec.md I6).
func (d *DepSet) remove(e *Effect) {
	i, ok := d.index[e]
	if !ok {
		return
	}
	delete(d.index, e)
	d.order = append(d.order[:i], d.order[i+1:]...)
	for j := i; j < len(d.order); j++ {
		d.index[d.order[j]] = j
	}
}

// Remove deletes e from the dep-set; safe to call concurrently with
// Track/Trigger on other dep-sets.
func (d *DepSet) Remove(e *Effect) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.remove(e)
}

func (d *DepSet) snapshot() []*Effect {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Effect, len(d.order))
	copy(out, d.order)
	return out
}

// keyMap is target → key → dep-set for one target.
type keyMap struct {
	mu   sync.Mutex
	deps map[any]*DepSet
}

// Graph is the three-level index target → key → dep-set (spec.md §2/§4.4).
type Graph struct {
	mu      sync.Mutex
	targets map[ID]*keyMap
}

func NewGraph() *Graph {
	return &Graph{targets: make(map[ID]*keyMap)}
}

func (g *Graph) keyMapFor(target ID, create bool) *keyMap {
	g.mu.Lock()
	defer g.mu.Unlock()

	km, ok := g.targets[target]
	if !ok {
		if !create {
			return nil
		}
		km = &keyMap{deps: make(map[any]*DepSet)}
		g.targets[target] = km
	}
	return km
}

func (km *keyMap) depSetFor(key any, create bool) *DepSet {
	km.mu.Lock()
	defer km.mu.Unlock()

	d, ok := km.deps[key]
	if !ok {
		if !create {
			return nil
		}
		d = newDepSet()
		km.deps[key] = d
	}
	return d
}

// hasIterateKey reports whether target has ever had a dep-set created
// for IterateKey. Used to let Trigger on ADD/DELETE short-circuit the
// extra iteration-key lookup when nothing has ever subscribed to it —
// spec.md §9 explicitly permits this optimization.
func (km *keyMap) hasIterateKey() bool {
	km.mu.Lock()
	defer km.mu.Unlock()
	_, ok := km.deps[IterateKey]
	return ok
}

// Track records that the currently active effect (if any) on rt read
// (target, key). No-op if tracking is paused or there is no active
// effect — spec.md §4.4.
func Track(rt *Runtime, target ID, op Op, key any) {
	if rt.isPaused() {
		return
	}

	active := rt.Active()
	if active == nil {
		return
	}

	km := depGraph.keyMapFor(target, true)
	d := km.depSetFor(key, true)

	d.mu.Lock()
	already := d.has(active)
	if !already {
		d.add(active)
	}
	d.mu.Unlock()

	if !already {
		active.addOwnedDep(d)
	}

	if active.onTrack != nil {
		active.onTrack(TrackEvent{Target: target, Op: op, Key: key})
	}
}

// TrackEvent is passed to an Effect's onTrack diagnostic hook.
type TrackEvent struct {
	Target ID
	Op     Op
	Key    any
}

// TriggerEvent is passed to an Effect's onTrigger diagnostic hook,
// fired once per affected effect before it runs (spec.md §4.4).
type TriggerEvent struct {
	Target   ID
	Op       Op
	Key      any
	NewValue any
	OldValue any
}

// Trigger notifies every effect subscribed to (target, key), plus the
// iteration key's subscribers when op is OpAdd/OpDelete/OpClear, and
// runs computed effects before plain ones (spec.md §4.4/P5).
func Trigger(rt *Runtime, target ID, op Op, key any, ev TriggerEvent) {
	km := depGraph.keyMapFor(target, false)
	if km == nil {
		return
	}

	var computedRunners, plain []*Effect
	seen := make(map[*Effect]struct{})

	collect := func(d *DepSet) {
		if d == nil {
			return
		}
		for _, e := range d.snapshot() {
			if !e.IsActive() {
				continue
			}
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}

			if e.IsComputed() {
				computedRunners = append(computedRunners, e)
			} else {
				plain = append(plain, e)
			}
		}
	}

	if op == OpClear {
		km.mu.Lock()
		all := make([]*DepSet, 0, len(km.deps))
		for _, d := range km.deps {
			all = append(all, d)
		}
		km.mu.Unlock()

		for _, d := range all {
			collect(d)
		}
	} else {
		collect(km.depSetFor(key, false))

		if op == OpAdd || op == OpDelete {
			if km.hasIterateKey() {
				collect(km.depSetFor(IterateKey, false))
			}
		}
	}

	run := func(e *Effect) {
		if e.onTrigger != nil {
			e.onTrigger(ev)
		}
		e.Rerun()
	}

	for _, e := range computedRunners {
		run(e)
	}
	for _, e := range plain {
		run(e)
	}
}

func (g *Graph) Forget(id ID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.targets, id)
}

// Sweep drops every target/key entry whose dep-set is empty. Spec.md §9
// leaves eager pruning as an open question and says the reference does
// not do it; this module matches that and exposes Sweep only as an
// opt-in maintenance call, never invoked automatically.
func (g *Graph) Sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for id, km := range g.targets {
		km.mu.Lock()
		for key, d := range km.deps {
			d.mu.Lock()
			empty := len(d.order) == 0
			d.mu.Unlock()
			if empty {
				delete(km.deps, key)
			}
		}
		empty := len(km.deps) == 0
		km.mu.Unlock()

		if empty {
			delete(g.targets, id)
		}
	}
}
