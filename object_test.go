package reactivity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type point struct {
	X, Y int
}

func TestObject(t *testing.T) {
	t.Run("read triggers effect on write", func(t *testing.T) {
		log := []string{}

		p := Observe(&point{X: 1, Y: 2}).(*Object)

		NewEffect(func() {
			log = append(log, fmt.Sprintf("x=%v", p.Get("X")))
		}, EffectOptions{})

		p.Set("X", 10)
		p.Set("Y", 99) // unrelated field, shouldn't rerun the effect above

		assert.Equal(t, []string{"x=1", "x=10"}, log)
	})

	t.Run("observe is idempotent", func(t *testing.T) {
		raw := &point{X: 1}
		a := Observe(raw)
		b := Observe(raw)
		assert.Same(t, a, b)
	})

	t.Run("observing an already read-only view yields itself", func(t *testing.T) {
		ro := ReadOnly(&point{X: 1})
		assert.Same(t, ro, Observe(ro))
	})

	t.Run("write on read-only view is a silent no-op when unlocked", func(t *testing.T) {
		raw := &point{X: 1}
		ro := ReadOnly(raw).(*Object)

		SetLocked(false)
		ok := ro.Set("X", 42)
		assert.True(t, ok)
		assert.Equal(t, 1, raw.X)
	})

	t.Run("write on read-only view fails when locked", func(t *testing.T) {
		raw := &point{X: 1}
		ro := ReadOnly(raw).(*Object)

		SetLocked(true)
		defer SetLocked(false)

		ok := ro.Set("X", 42)
		assert.False(t, ok)
		assert.Equal(t, 1, raw.X)
	})

	t.Run("write of identical value does not trigger", func(t *testing.T) {
		runs := 0
		p := Observe(&point{X: 1}).(*Object)

		NewEffect(func() {
			p.Get("X")
			runs++
		}, EffectOptions{})

		p.Set("X", 1)
		assert.Equal(t, 1, runs)
	})

	t.Run("Raw unwraps back to the original pointer", func(t *testing.T) {
		raw := &point{X: 1}
		p := Observe(raw)
		assert.Same(t, raw, Raw(p))
	})
}
