package reactivity

import "math"

// valuesEqual implements spec.md §4.2's write comparison: strict
// inequality, but with NaN treated as equal to NaN (so writing NaN over
// NaN is a no-op, matching the reference engine's Object.is-style check
// rather than plain ==).
func valuesEqual(a, b any) (eq bool) {
	if af, ok := a.(float64); ok {
		if bf, ok := b.(float64); ok {
			if math.IsNaN(af) && math.IsNaN(bf) {
				return true
			}
		}
	}

	// Slices, maps and funcs aren't comparable with ==; a field or
	// element holding one is treated as always-changed rather than
	// panicking, which just means a write always triggers for it.
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
