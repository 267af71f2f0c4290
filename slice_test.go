package reactivity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlice(t *testing.T) {
	t.Run("push triggers length and index subscribers", func(t *testing.T) {
		backing := []int{1, 2, 3}
		s := NewSlice(&backing)

		log := []string{}
		NewEffect(func() {
			log = append(log, fmt.Sprintf("len=%d", s.Len()))
		}, EffectOptions{})

		s.Push(4)
		assert.Equal(t, []string{"len=3", "len=4"}, log)
		assert.Equal(t, []int{1, 2, 3, 4}, backing)
	})

	t.Run("indexed write triggers only that index's subscriber", func(t *testing.T) {
		backing := []int{1, 2, 3}
		s := NewSlice(&backing)

		runs := 0
		NewEffect(func() {
			s.Get(0)
			runs++
		}, EffectOptions{})

		s.Set(1, 99) // index 1, not tracked by the effect above
		assert.Equal(t, 1, runs)

		s.Set(0, 100)
		assert.Equal(t, 2, runs)
	})

	t.Run("RemoveAt shifts elements and triggers length", func(t *testing.T) {
		backing := []int{1, 2, 3}
		s := NewSlice(&backing)

		s.RemoveAt(1)
		assert.Equal(t, []int{1, 3}, backing)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("Includes/IndexOf use identity, not rewrapped values", func(t *testing.T) {
		backing := []int{10, 20, 30}
		s := NewSlice(&backing)

		assert.True(t, s.Includes(20))
		assert.Equal(t, 1, s.IndexOf(20))
		assert.Equal(t, -1, s.IndexOf(99))
		assert.Equal(t, 2, s.LastIndexOf(30))
	})

	t.Run("Clear empties and triggers once", func(t *testing.T) {
		backing := []int{1, 2, 3}
		s := NewSlice(&backing)

		runs := 0
		NewEffect(func() {
			s.Len()
			runs++
		}, EffectOptions{})

		s.Clear()
		assert.Equal(t, 0, s.Len())
		assert.Equal(t, 2, runs)
	})

	t.Run("read-only slice rejects writes when locked", func(t *testing.T) {
		backing := []int{1, 2, 3}
		s := NewSlice(&backing).ReadOnly()

		SetLocked(true)
		defer SetLocked(false)

		ok := s.Set(0, 42)
		assert.False(t, ok)
		assert.Equal(t, 1, backing[0])
	})
}
