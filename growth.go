// SPDX-License-Identifier: Apache-2.0

package vec

// GrowthFactor is the multiplier applied to the capacity of a full vector.
// The next capacity is floor(capacity*GrowthFactor)+1, so a vector grows even
// from a capacity of zero or one.
const GrowthFactor = 1.5

// DefaultCapacity is the capacity used by callers that want a small eager block,
// see NewWithCapacity.
const DefaultCapacity = 2

// nextCapacity returns floor(c*GrowthFactor)+1 in integer arithmetic.
// ok is false when the result does not fit in an int.
func nextCapacity(c int) (n int, ok bool) {
	const maxInt = int(^uint(0) >> 1)
	if c > (maxInt-1)/3*2 {
		return 0, false
	}
	return c + c/2 + 1, true
}

// growCapacity returns the capacity a vector of capacity c needs to hold
// required elements: the growth step, or required itself when that is larger.
func growCapacity(c, required int) (int, bool) {
	n, ok := nextCapacity(c)
	if !ok {
		return 0, false
	}
	if n < required {
		n = required
	}
	return n, true
}
