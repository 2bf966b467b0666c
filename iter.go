// SPDX-License-Identifier: Apache-2.0

package vec

import "iter"

// All returns an iterator over the indexes and elements in order.
func (v *Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < v.size; i++ {
			if !yield(i, v.block.elems[i]) {
				return
			}
		}
	}
}

// Backward returns an iterator over the indexes and elements from the last to
// the first.
func (v *Vector[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := v.size - 1; i >= 0; i-- {
			if !yield(i, v.block.elems[i]) {
				return
			}
		}
	}
}

// Values returns an iterator over the elements in order.
func (v *Vector[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < v.size; i++ {
			if !yield(v.block.elems[i]) {
				return
			}
		}
	}
}
