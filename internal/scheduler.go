package internal

import (
	"errors"
	"sync"
)

// ErrMaxRecursiveUpdates is returned by FlushJobs when a single job was
// re-enqueued more than maxRecursiveUpdates times within one flush pass
// — spec.md §4.8/§7, "mutation of state during render/update/watch is
// the likely cause."
var ErrMaxRecursiveUpdates = errors.New("reactivity: maximum recursive updates exceeded, you may have a cyclical effect")

const maxRecursiveUpdates = 100

// JobHandle lets QueueJob dedupe by identity: Go func values are not
// comparable, so callers mint one handle per logical job and reuse it on
// every re-enqueue — see Job in the root package's scheduler.go.
type JobHandle struct {
	fn    func()
	count int // not updated; FlushJobs keeps per-pass counts in a local map
}

func NewJobHandle(fn func()) *JobHandle { return &JobHandle{fn: fn} }

// Scheduler is one goroutine's job queue and post-flush callback queue.
// A flush is requested by setting a pending flag and running FlushJobs
// inline on the calling goroutine; Go has no microtask queue, so a flush
// is not deferred to a later tick. A QueueJob or QueuePostFlushCb call
// made while a flush is already running only appends, and that running
// flush picks the entry up.
type Scheduler struct {
	mu sync.Mutex

	jobs    []*JobHandle
	queued  map[*JobHandle]struct{} // dedup within one pending batch, spec.md P9
	post    []func()
	pending bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{queued: make(map[*JobHandle]struct{})}
}

// QueueJob appends h if not already pending and requests a flush.
func (s *Scheduler) QueueJob(h *JobHandle) {
	s.mu.Lock()
	if _, ok := s.queued[h]; !ok {
		s.queued[h] = struct{}{}
		s.jobs = append(s.jobs, h)
	}
	needFlush := !s.pending
	s.pending = true
	s.mu.Unlock()

	if needFlush {
		s.FlushJobs()
	}
}

// QueuePostFlushCb appends cbs to the post-flush queue and requests a
// flush.
func (s *Scheduler) QueuePostFlushCb(cbs ...func()) {
	s.mu.Lock()
	s.post = append(s.post, cbs...)
	needFlush := !s.pending
	s.pending = true
	s.mu.Unlock()

	if needFlush {
		s.FlushJobs()
	}
}

// FlushJobs drains the job queue FIFO, then the post-flush callback
// queue; post-flush callbacks may enqueue more of either, so the whole
// thing recurses until both are empty (spec.md §4.8).
func (s *Scheduler) FlushJobs() error {
	counts := make(map[*JobHandle]int)

	for {
		s.mu.Lock()
		jobs := s.jobs
		s.jobs = nil
		s.queued = make(map[*JobHandle]struct{})
		s.mu.Unlock()

		if len(jobs) == 0 {
			s.mu.Lock()
			post := s.post
			s.post = nil
			s.mu.Unlock()

			if len(post) == 0 {
				s.mu.Lock()
				s.pending = false
				s.mu.Unlock()
				return nil
			}

			for _, cb := range post {
				cb()
			}
			continue
		}

		for _, h := range jobs {
			counts[h]++
			if counts[h] > maxRecursiveUpdates {
				s.mu.Lock()
				s.pending = false
				s.jobs = nil
				s.post = nil
				s.mu.Unlock()
				return ErrMaxRecursiveUpdates
			}
			h.fn()
		}
	}
}

// FlushPostFlushCbs runs any pending post-flush callbacks immediately,
// without waiting on the job queue.
func (s *Scheduler) FlushPostFlushCbs() {
	s.mu.Lock()
	cbs := s.post
	s.post = nil
	s.mu.Unlock()

	for _, cb := range cbs {
		cb()
	}
}
