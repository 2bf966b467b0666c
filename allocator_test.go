// SPDX-License-Identifier: Apache-2.0

package vec

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// mockAllocator hands out Go heap memory and fails once its allowance of
// successful allocations is used up. A negative allowance never fails.
type mockAllocator struct {
	allowance int
	allocs    int
	frees     int
	live      int
}

func (m *mockAllocator) Alloc(size, _ uintptr) (unsafe.Pointer, error) {
	if m.allowance == 0 {
		return nil, ErrOutOfMemory
	}
	if m.allowance > 0 {
		m.allowance--
	}
	m.allocs++
	m.live += int(size)
	return unsafe.Pointer(&make([]byte, size)[0]), nil
}

func (m *mockAllocator) Free(_ unsafe.Pointer, size uintptr) {
	m.frees++
	m.live -= int(size)
}

func (m *mockAllocator) Len() int {
	return m.live
}

func (m *mockAllocator) Cap() int {
	// For testing purposes, return a large value as we don't have a real limit
	return int(^uintptr(0) >> 1) // Maximum int value
}

func (m *mockAllocator) Peak() int {
	// For testing purposes, return 0 as we don't track peak allocations
	return 0
}

func TestHasPointers(t *testing.T) {
	type flat struct {
		a int64
		b [4]float32
		c bool
	}
	type nested struct {
		f flat
		s string
	}

	require.False(t, hasPointers(reflect.TypeFor[int]()))
	require.False(t, hasPointers(reflect.TypeFor[flat]()))
	require.False(t, hasPointers(reflect.TypeFor[[0]*int]()))
	require.True(t, hasPointers(reflect.TypeFor[string]()))
	require.True(t, hasPointers(reflect.TypeFor[*int]()))
	require.True(t, hasPointers(reflect.TypeFor[[]int]()))
	require.True(t, hasPointers(reflect.TypeFor[nested]()))
	require.True(t, hasPointers(reflect.TypeFor[any]()))
	require.True(t, hasPointers(reflect.TypeFor[map[int]int]()))
}

func TestAllocBlockUsesAllocatorMemory(t *testing.T) {
	a := &mockAllocator{allowance: -1}

	b, err := allocBlock[int64](a, layoutOf[int64](), 4)
	require.NoError(t, err)
	require.Equal(t, 4, b.capacity())
	require.NotNil(t, b.ptr)
	require.Equal(t, 32, a.Len())
	require.Equal(t, []int64{0, 0, 0, 0}, b.elems)

	freeBlock(a, b)
	require.Equal(t, 0, a.Len())
	require.Equal(t, 1, a.frees)
}

func TestAllocBlockKeepsPointersOnGCHeap(t *testing.T) {
	h := NewHeapAllocator()

	b, err := allocBlock[string](h, layoutOf[string](), 3)
	require.NoError(t, err)
	require.Nil(t, b.ptr)
	require.Equal(t, 3, b.capacity())
	require.Equal(t, int(3*unsafe.Sizeof("")), h.Len())

	freeBlock(h, b)
	require.Equal(t, 0, h.Len())
}

func TestAllocBlockWithoutAllocator(t *testing.T) {
	b, err := allocBlock[int](nil, layoutOf[int](), 5)
	require.NoError(t, err)
	require.Equal(t, 5, b.capacity())
	require.Nil(t, b.ptr)

	// Freeing a heap block without an allocator is a no-op.
	freeBlock(nil, b)
}

func TestAllocBlockZero(t *testing.T) {
	a := &mockAllocator{allowance: -1}
	b, err := allocBlock[int](a, layoutOf[int](), 0)
	require.NoError(t, err)
	require.Equal(t, 0, b.capacity())
	require.Equal(t, 0, a.allocs)

	// Zero sized elements never touch the allocator.
	e, err := allocBlock[struct{}](a, layoutOf[struct{}](), 10)
	require.NoError(t, err)
	require.Equal(t, 10, e.capacity())
	require.Equal(t, 0, a.allocs)
}

func TestAllocBlockOverflow(t *testing.T) {
	_, err := allocBlock[[1 << 20]byte](nil, layoutOf[[1 << 20]byte](), int(^uint(0)>>1))
	require.ErrorIs(t, err, ErrOutOfMemory)
}

func TestAllocBlockFailure(t *testing.T) {
	a := &mockAllocator{allowance: 0}
	_, err := allocBlock[int](a, layoutOf[int](), 2)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.Equal(t, 0, a.Len())
}
