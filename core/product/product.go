// Package product enumerates cartesian products lazily.
package product

import (
	"iter"
	"math"
	"slices"
)

// Count returns the number of tuples Of(sets) yields. An empty sets slice has
// one (empty) tuple; any empty set makes the product empty. ok is false when
// the count does not fit in an int.
func Count[T any](sets [][]T) (n int, ok bool) {
	n = 1
	for _, s := range sets {
		if len(s) == 0 {
			return 0, true
		}
	}
	for _, s := range sets {
		if n, ok = Mul(n, len(s)); !ok {
			return 0, false
		}
	}
	return n, true
}

// Mul multiplies two non-negative ints, reporting false on overflow.
func Mul(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// Of yields every tuple of the cartesian product of sets in lexicographic
// order: the last set varies fastest. The yielded slice is reused between
// iterations; callers that keep it must copy it.
func Of[T any](sets [][]T) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		for _, s := range sets {
			if len(s) == 0 {
				return
			}
		}

		idx := make([]int, len(sets))
		tuple := make([]T, len(sets))
		for i, s := range sets {
			tuple[i] = s[0]
		}

		for {
			if !yield(tuple) {
				return
			}
			// Odometer increment from the rightmost position.
			i := len(sets) - 1
			for ; i >= 0; i-- {
				idx[i]++
				if idx[i] < len(sets[i]) {
					tuple[i] = sets[i][idx[i]]
					break
				}
				idx[i] = 0
				tuple[i] = sets[i][0]
			}
			if i < 0 {
				return
			}
		}
	}
}

// Collect materializes Of(sets), copying each tuple. Callers bound the
// product with Count first.
func Collect[T any](sets [][]T) [][]T {
	n, ok := Count(sets)
	if !ok {
		n = 0
	}
	out := make([][]T, 0, n)
	for tuple := range Of(sets) {
		out = append(out, slices.Clone(tuple))
	}
	return out
}
