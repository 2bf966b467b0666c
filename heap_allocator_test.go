// SPDX-License-Identifier: Apache-2.0

package vec

import (
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestHeapAllocatorAccounting(t *testing.T) {
	h := NewHeapAllocator()
	require.Equal(t, math.MaxInt, h.Cap())

	p1 := mustAlloc(t, h, 100, 8)
	p2 := mustAlloc(t, h, 50, 8)
	require.Equal(t, 150, h.Len())
	require.Equal(t, 150, h.Peak())

	h.Free(p1, 100)
	require.Equal(t, 50, h.Len())
	h.Free(p2, 50)
	require.Equal(t, 0, h.Len())
	require.Equal(t, 150, h.Peak())
}

func TestHeapAllocatorAlignment(t *testing.T) {
	h := NewHeapAllocator()
	for _, align := range []uintptr{1, 8, 16, 64, 256} {
		ptr := mustAlloc(t, h, 3, align)
		require.Zero(t, uintptr(ptr)%align)
		require.Equal(t, []byte{0, 0, 0}, unsafe.Slice((*byte)(ptr), 3))
	}
}

func TestHeapAllocatorLimit(t *testing.T) {
	h := NewHeapAllocator(WithLimit(100))
	require.Equal(t, 100, h.Cap())

	p := mustAlloc(t, h, 60, 1)
	_, err := h.Alloc(41, 1)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.Equal(t, 60, h.Len())

	require.ErrorIs(t, h.Charge(41), ErrOutOfMemory)
	require.NoError(t, h.Charge(40))
	require.Equal(t, 100, h.Len())

	h.Refund(40)
	h.Free(p, 60)
	require.Equal(t, 0, h.Len())

	_, err = h.Alloc(101, 1)
	require.ErrorIs(t, err, ErrOutOfMemory)
}
