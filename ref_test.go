package reactivity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRef(t *testing.T) {
	t.Run("get tracks, set triggers on change", func(t *testing.T) {
		r := NewRef(0)

		runs := 0
		NewEffect(func() {
			r.Get()
			runs++
		}, EffectOptions{})

		r.Set(1)
		assert.Equal(t, 2, runs)

		r.Set(1) // unchanged
		assert.Equal(t, 2, runs)
	})

	t.Run("NaN is treated as equal to NaN", func(t *testing.T) {
		r := NewRef(math.NaN())

		runs := 0
		NewEffect(func() {
			r.Get()
			runs++
		}, EffectOptions{})

		r.Set(math.NaN())
		assert.Equal(t, 1, runs) // no trigger: NaN "equals" NaN for write comparison
	})

	t.Run("IsRef", func(t *testing.T) {
		r := NewRef("x")
		assert.True(t, IsRef(r))
		assert.False(t, IsRef("x"))
	})

	t.Run("ToRefs exposes independently trackable fields", func(t *testing.T) {
		o := Observe(&point{X: 1, Y: 2}).(*Object)
		refs := ToRefs(o)

		assert.Equal(t, 1, refs["X"].Get())
		refs["X"].Set(10)
		assert.Equal(t, 10, o.Get("X"))
	})
}
