package reactivity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputed(t *testing.T) {
	t.Run("recomputes only when its source changed", func(t *testing.T) {
		r := NewRef(1)
		computations := 0

		c := NewComputed(func() int {
			computations++
			return r.Get() * 2
		})

		assert.Equal(t, 2, c.Get())
		assert.Equal(t, 2, c.Get()) // cached, no recompute
		assert.Equal(t, 1, computations)

		r.Set(2)
		assert.Equal(t, 4, c.Get())
		assert.Equal(t, 2, computations)
	})

	t.Run("a plain effect reading only the computed sees the refreshed value", func(t *testing.T) {
		r := NewRef(1)
		log := []string{}

		c := NewComputed(func() int { return r.Get() * 10 })

		NewEffect(func() {
			log = append(log, fmt.Sprintf("computed=%d", c.Get()))
		}, EffectOptions{})

		r.Set(2)

		// the plain effect depends only on c, not on r directly, so it must
		// rerun exactly once per source change and see the refreshed value —
		// never a stale one from before r.Set(2).
		assert.Equal(t, []string{"computed=10", "computed=20"}, log)
	})

	t.Run("writable computed delegates to its setter", func(t *testing.T) {
		r := NewRef(1)
		c := NewComputed(func() int { return r.Get() * 2 }, func(v int) {
			r.Set(v / 2)
		})

		c.Set(10)
		assert.Equal(t, 5, r.Get())
		assert.Equal(t, 10, c.Get())
	})
}
