// Package internal holds the weak-keyed bookkeeping core of the reactivity
// engine: the identity registry, the dependency graph, the active-effect
// tracker and the scheduler. None of it is meant to be imported directly;
// the public surface lives in the root reactivity package.
package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

// Runtime is the execution context for exactly one goroutine: its active
// effect stack, its tracking-paused flag, and its own scheduler queues.
// The identity registry and dependency graph are NOT part of Runtime — they
// are shared, mutex-guarded state, because an observable created on one
// goroutine is a perfectly normal Go value that another goroutine may read.
// Keying the execution context itself by goroutine id is the direct
// translation of spec.md §5's "exactly one logical execution context":
// each goroutine gets one, so independent effect runs on independent
// goroutines never interleave on the same stack.
type Runtime struct {
	mu sync.Mutex

	stack   []*Effect
	paused  int // pauseTracking/resumeTracking nesting depth
	sched   *Scheduler
	onError func(any)
}

var (
	runtimes sync.Map // int64 (goid) -> *Runtime
	reg      = NewRegistry()
	depGraph = NewGraph()
)

// GetRuntime returns (creating if needed) the Runtime for the calling
// goroutine.
func GetRuntime() *Runtime {
	gid := goid.Get()

	if r, ok := runtimes.Load(gid); ok {
		return r.(*Runtime)
	}

	r := &Runtime{sched: NewScheduler()}
	runtimes.Store(gid, r)
	return r
}

// GetRegistry returns the process-wide identity registry.
func GetRegistry() *Registry { return reg }

// GetGraph returns the process-wide dependency graph.
func GetGraph() *Graph { return depGraph }

// Active returns the effect currently executing on this goroutine, or nil.
func (r *Runtime) Active() *Effect {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

func (r *Runtime) push(e *Effect) {
	r.mu.Lock()
	r.stack = append(r.stack, e)
	r.mu.Unlock()
}

func (r *Runtime) pop() {
	r.mu.Lock()
	if n := len(r.stack); n > 0 {
		r.stack = r.stack[:n-1]
	}
	r.mu.Unlock()
}

// onStack reports whether e is already somewhere in this goroutine's
// effect stack (used to make re-entrant runs of the same effect a no-op).
func (r *Runtime) onStack(e *Effect) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.stack {
		if s == e {
			return true
		}
	}
	return false
}

// PauseTracking suppresses all Track calls on this goroutine until the
// matching ResumeTracking. Nests.
func (r *Runtime) PauseTracking() {
	r.mu.Lock()
	r.paused++
	r.mu.Unlock()
}

// ResumeTracking undoes one PauseTracking.
func (r *Runtime) ResumeTracking() {
	r.mu.Lock()
	if r.paused > 0 {
		r.paused--
	}
	r.mu.Unlock()
}

func (r *Runtime) isPaused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused > 0
}

// Scheduler returns this goroutine's job/post-flush queues.
func (r *Runtime) Scheduler() *Scheduler { return r.sched }

// SetErrorHandler installs the callback used to surface panics raised
// inside effect bodies running on this goroutine.
func (r *Runtime) SetErrorHandler(fn func(any)) {
	r.mu.Lock()
	r.onError = fn
	r.mu.Unlock()
}

func (r *Runtime) reportError(v any) {
	r.mu.Lock()
	h := r.onError
	r.mu.Unlock()

	if h != nil {
		h(v)
		return
	}
	panic(v)
}
