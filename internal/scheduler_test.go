package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerFlush(t *testing.T) {
	t.Run("runs a job placed twice in the queue twice; QueueJob is what dedupes", func(t *testing.T) {
		s := NewScheduler()
		runs := 0
		h := NewJobHandle(func() { runs++ })

		s.mu.Lock()
		s.jobs = append(s.jobs, h, h)
		s.queued[h] = struct{}{}
		s.pending = true
		s.mu.Unlock()

		err := s.FlushJobs()
		assert.NoError(t, err)
		assert.Equal(t, 2, runs) // both slots run; QueueJob itself is what dedupes re-enqueues
	})

	t.Run("a job that keeps re-enqueueing itself hits the recursion guard", func(t *testing.T) {
		s := NewScheduler()
		var h *JobHandle
		h = NewJobHandle(func() {
			s.mu.Lock()
			if _, ok := s.queued[h]; !ok {
				s.queued[h] = struct{}{}
				s.jobs = append(s.jobs, h)
			}
			s.mu.Unlock()
		})

		s.mu.Lock()
		s.jobs = append(s.jobs, h)
		s.queued[h] = struct{}{}
		s.mu.Unlock()

		err := s.FlushJobs()
		assert.ErrorIs(t, err, ErrMaxRecursiveUpdates)
	})
}

func TestGraphComputedBeforePlain(t *testing.T) {
	t.Run("computed effects run before plain ones on the same trigger", func(t *testing.T) {
		rt := &Runtime{sched: NewScheduler()}
		target := mintID()

		order := []string{}

		var computedEff, plainEff *Effect
		computedEff = NewEffect(rt, func() {
			Track(rt, target, OpGet, "k")
		}, Options{Lazy: true, Computed: true, Scheduler: func() {
			order = append(order, "computed")
		}})
		plainEff = NewEffect(rt, func() {
			Track(rt, target, OpGet, "k")
		}, Options{Lazy: true, Scheduler: func() {
			order = append(order, "plain")
		}})

		computedEff.Run()
		plainEff.Run()

		Trigger(rt, target, OpSet, "k", TriggerEvent{Target: target, Op: OpSet, Key: "k"})

		assert.Equal(t, []string{"computed", "plain"}, order)
	})
}
