// SPDX-License-Identifier: Apache-2.0

package vec

import "golang.org/x/exp/slices"

// Equal reports whether a and b have the same length and equal elements in the
// same order. A nil vector is equal to an empty one.
func Equal[T comparable](a, b *Vector[T]) bool {
	if a == b {
		return true
	}
	return slices.Equal(data(a), data(b))
}

// EqualFunc is like Equal but compares elements with eq.
func EqualFunc[T any](a, b *Vector[T], eq func(T, T) bool) bool {
	if a == b {
		return true
	}
	return slices.EqualFunc(data(a), data(b), eq)
}

func data[T any](v *Vector[T]) []T {
	if v == nil {
		return nil
	}
	return v.Data()
}
