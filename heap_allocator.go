// SPDX-License-Identifier: Apache-2.0

package vec

import (
	"fmt"
	"math"
	"unsafe"
)

// HeapAllocator is an Allocator that makes every block on the Go heap and keeps
// count of the bytes in use. With a limit set it reports ErrOutOfMemory instead
// of growing past it, which makes allocation failure observable.
type HeapAllocator struct {
	live  uintptr
	peak  uintptr
	limit uintptr // 0 means unlimited
}

// HeapAllocatorOption represents a configuration option for a heap allocator.
type HeapAllocatorOption func(*HeapAllocator)

// WithLimit caps the bytes the allocator hands out and accepts as charges.
func WithLimit(n int) HeapAllocatorOption {
	return func(h *HeapAllocator) {
		h.limit = uintptr(n)
	}
}

// NewHeapAllocator creates a heap allocator.
func NewHeapAllocator(opts ...HeapAllocatorOption) *HeapAllocator {
	h := &HeapAllocator{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HeapAllocator) reserve(size uintptr) error {
	if h.limit > 0 && (size > h.limit || h.live > h.limit-size) {
		return fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrOutOfMemory, size, h.live, h.limit)
	}
	h.live += size
	if h.live > h.peak {
		h.peak = h.live
	}
	return nil
}

func (h *HeapAllocator) unreserve(size uintptr) {
	if size > h.live {
		size = h.live
	}
	h.live -= size
}

// Alloc satisfies the Allocator interface.
func (h *HeapAllocator) Alloc(size, alignment uintptr) (unsafe.Pointer, error) {
	if err := h.reserve(size); err != nil {
		return nil, err
	}
	if alignment == 0 {
		alignment = 1
	}
	buf := make([]byte, size+alignment)
	p := unsafe.Pointer(unsafe.SliceData(buf))
	if rem := uintptr(p) % alignment; rem != 0 {
		p = unsafe.Add(p, alignment-rem)
	}
	return p, nil
}

// Free satisfies the Allocator interface. The memory itself is reclaimed by the
// garbage collector once nothing refers to it.
func (h *HeapAllocator) Free(_ unsafe.Pointer, size uintptr) {
	h.unreserve(size)
}

// Charge satisfies the Budget interface.
func (h *HeapAllocator) Charge(size uintptr) error {
	return h.reserve(size)
}

// Refund satisfies the Budget interface.
func (h *HeapAllocator) Refund(size uintptr) {
	h.unreserve(size)
}

// Len returns the number of bytes in use.
func (h *HeapAllocator) Len() int {
	return int(h.live)
}

// Cap returns the limit, or the largest int when there is none.
func (h *HeapAllocator) Cap() int {
	if h.limit == 0 {
		return math.MaxInt
	}
	return int(h.limit)
}

// Peak returns the high-water mark of bytes in use.
func (h *HeapAllocator) Peak() int {
	return int(h.peak)
}
