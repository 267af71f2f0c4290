package reactivity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeakMap(t *testing.T) {
	t.Run("set/get/has/delete by pointer identity", func(t *testing.T) {
		wm := NewWeakMap[point, string]()
		key := &point{X: 1}

		_, ok := wm.Get(key)
		assert.False(t, ok)

		wm.Set(key, "hello")
		v, ok := wm.Get(key)
		assert.True(t, ok)
		assert.Equal(t, "hello", v)
		assert.True(t, wm.Has(key))

		assert.True(t, wm.Delete(key))
		assert.False(t, wm.Has(key))
	})

	t.Run("distinct pointers are distinct keys even with equal contents", func(t *testing.T) {
		wm := NewWeakMap[point, string]()
		a := &point{X: 1}
		b := &point{X: 1}

		wm.Set(a, "a")
		_, ok := wm.Get(b)
		assert.False(t, ok)
	})
}

func TestWeakSet(t *testing.T) {
	t.Run("add/has/delete by pointer identity", func(t *testing.T) {
		ws := NewWeakSet[point]()
		key := &point{X: 1}

		assert.False(t, ws.Has(key))
		ws.Add(key)
		assert.True(t, ws.Has(key))
		assert.True(t, ws.Delete(key))
		assert.False(t, ws.Has(key))
	})
}
