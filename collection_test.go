package reactivity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	t.Run("set triggers ADD then SET", func(t *testing.T) {
		m := NewMap[string, int]()

		runs := 0
		NewEffect(func() {
			m.Get("a")
			runs++
		}, EffectOptions{})

		m.Set("a", 1) // ADD: "a" was absent
		assert.Equal(t, 2, runs)

		m.Set("a", 1) // unchanged value, no trigger
		assert.Equal(t, 2, runs)

		m.Set("a", 2) // SET: value changed
		assert.Equal(t, 3, runs)
	})

	t.Run("delete triggers only when present", func(t *testing.T) {
		m := NewMap[string, int]()
		m.Set("a", 1)

		assert.True(t, m.Delete("a"))
		assert.False(t, m.Delete("a"))
	})

	t.Run("size tracks the iteration key", func(t *testing.T) {
		m := NewMap[string, int]()
		runs := 0
		NewEffect(func() {
			m.Size()
			runs++
		}, EffectOptions{})

		m.Set("a", 1)
		assert.Equal(t, 2, runs)

		m.Set("a", 2) // SET doesn't touch the iteration key
		assert.Equal(t, 2, runs)
	})

	t.Run("Range visits every entry", func(t *testing.T) {
		m := NewMap[string, int]()
		m.Set("a", 1)
		m.Set("b", 2)

		total := 0
		m.Range(func(v int, k string, c *Map[string, int]) bool {
			total += v
			return true
		})
		assert.Equal(t, 3, total)
	})

	t.Run("clear triggers CLEAR", func(t *testing.T) {
		m := NewMap[string, int]()
		m.Set("a", 1)

		runs := 0
		NewEffect(func() {
			m.Get("a")
			runs++
		}, EffectOptions{})

		m.Clear()
		assert.Equal(t, 2, runs)
		assert.Equal(t, 0, m.Size())
	})
}

func TestSet(t *testing.T) {
	t.Run("add triggers only for new members", func(t *testing.T) {
		s := NewSet[int]()

		runs := 0
		NewEffect(func() {
			s.Has(1)
			runs++
		}, EffectOptions{})

		assert.True(t, s.Add(1))
		assert.Equal(t, 2, runs)

		assert.True(t, s.Add(1)) // already present
		assert.Equal(t, 2, runs)
	})

	t.Run("delete and size", func(t *testing.T) {
		s := NewSet[int]()
		s.Add(1)
		s.Add(2)
		assert.Equal(t, 2, s.Size())

		assert.True(t, s.Delete(1))
		assert.Equal(t, 1, s.Size())
		assert.False(t, s.Delete(1))
	})
}
