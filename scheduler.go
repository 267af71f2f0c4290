package reactivity

import "github.com/AnatoleLucet/reactivity/internal"

// Job is a schedulable unit of work with stable identity across
// re-enqueues (Go func values aren't comparable, so QueueJob dedupes by
// the *Job pointer instead — spec.md §4.8/P9).
type Job struct {
	handle *internal.JobHandle
}

// NewJob wraps fn as a schedulable job.
func NewJob(fn func()) *Job {
	return &Job{handle: internal.NewJobHandle(fn)}
}

// QueueJob enqueues j on the calling goroutine's scheduler, deduping
// against an already-pending enqueue of the same job, and flushes
// synchronously — Go has no microtask queue to defer onto, so a flush
// happens inline instead of on "the next tick" (spec.md §4.8).
func QueueJob(j *Job) {
	internal.GetRuntime().Scheduler().QueueJob(j.handle)
}

// QueuePostFlushCb appends cbs to run after the current job queue drains.
func QueuePostFlushCb(cbs ...func()) {
	internal.GetRuntime().Scheduler().QueuePostFlushCb(cbs...)
}

// FlushPostFlushCbs runs any pending post-flush callbacks immediately.
func FlushPostFlushCbs() {
	internal.GetRuntime().Scheduler().FlushPostFlushCbs()
}

// NextTick spawns a goroutine that runs the calling goroutine's pending
// post-flush callbacks and then fn (if given), standing in for "the next
// microtask" the way the reference engine uses one (spec.md §4.8). It
// does not wait for a job flush that is running at the time of the call.
// It returns a channel that closes once fn has run, so callers that want
// to block until the tick completes can simply receive from it.
func NextTick(fn func()) <-chan struct{} {
	done := make(chan struct{})
	rt := internal.GetRuntime()
	go func() {
		rt.Scheduler().FlushPostFlushCbs()
		if fn != nil {
			fn()
		}
		close(done)
	}()
	return done
}

// ErrMaxRecursiveUpdates is returned by a flush pass that detects a job
// re-enqueuing itself more than the recursion guard allows — spec.md §7,
// "mutation of state during render/update/watch is the likely cause."
var ErrMaxRecursiveUpdates = internal.ErrMaxRecursiveUpdates
