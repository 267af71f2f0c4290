package reactivity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffect(t *testing.T) {
	t.Run("writes to its own read dependency without recursing forever", func(t *testing.T) {
		r := NewRef(0)
		runs := 0

		NewEffect(func() {
			runs++
			v := r.Get()
			if v < 1 {
				r.Set(v + 1) // re-entrant trigger on the same effect: must not recurse
			}
		}, EffectOptions{})

		assert.Equal(t, 1, r.Get())
		assert.True(t, runs <= 2, "expected the effect to settle quickly, ran %d times", runs)
	})

	t.Run("stop prevents further reruns", func(t *testing.T) {
		r := NewRef(0)
		runs := 0

		e := NewEffect(func() {
			r.Get()
			runs++
		}, EffectOptions{})

		e.Stop()
		r.Set(1)
		r.Set(2)

		assert.Equal(t, 1, runs)
		assert.False(t, e.IsActive())
	})

	t.Run("OnStop fires exactly once", func(t *testing.T) {
		stops := 0
		e := NewEffect(func() {}, EffectOptions{OnStop: func() { stops++ }})

		e.Stop()
		e.Stop()

		assert.Equal(t, 1, stops)
	})

	t.Run("Untrack suppresses tracking for its duration", func(t *testing.T) {
		r := NewRef(0)
		runs := 0

		NewEffect(func() {
			Untrack(func() int { return r.Get() })
			runs++
		}, EffectOptions{})

		r.Set(1)
		assert.Equal(t, 1, runs) // the effect never subscribed to r
	})

	t.Run("lazy effect does not run on creation", func(t *testing.T) {
		ran := false
		e := NewEffect(func() { ran = true }, EffectOptions{Lazy: true})
		assert.False(t, ran)

		e.Run()
		assert.True(t, ran)
	})

	t.Run("OnTrack and OnTrigger diagnostic hooks fire", func(t *testing.T) {
		r := NewRef(0)
		var tracked, triggered []string

		NewEffect(func() {
			r.Get()
		}, EffectOptions{
			OnTrack:   func(ev TrackEvent) { tracked = append(tracked, fmt.Sprintf("%v", ev.Key)) },
			OnTrigger: func(ev TriggerEvent) { triggered = append(triggered, fmt.Sprintf("%v", ev.Key)) },
		})

		r.Set(5)

		// one OnTrack per run (initial + the rerun triggered above), one
		// OnTrigger per affected effect per trigger.
		assert.Equal(t, []string{"value", "value"}, tracked)
		assert.Equal(t, []string{"value"}, triggered)
	})
}

func TestScheduler(t *testing.T) {
	t.Run("QueueJob dedupes re-enqueues within one flush", func(t *testing.T) {
		runs := 0
		job := NewJob(func() { runs++ })

		QueueJob(job)
		QueueJob(job)

		assert.Equal(t, 1, runs)
	})

	t.Run("post-flush callbacks run after the job queue drains", func(t *testing.T) {
		order := []string{}

		QueueJob(NewJob(func() {
			order = append(order, "job")
			QueuePostFlushCb(func() { order = append(order, "post") })
		}))

		assert.Equal(t, []string{"job", "post"}, order)
	})
}
