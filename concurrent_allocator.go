// SPDX-License-Identifier: Apache-2.0

package vec

import (
	"sync"
	"unsafe"
)

type concurrentAllocator struct {
	mtx sync.Mutex
	a   Allocator
}

// NewConcurrentAllocator returns an allocator that is safe to be accessed
// concurrently from multiple goroutines, so that vectors owned by different
// goroutines can share one allocator. Charges are forwarded when a is a Budget.
func NewConcurrentAllocator(a Allocator) Allocator {
	return &concurrentAllocator{a: a}
}

// Alloc satisfies the Allocator interface.
func (a *concurrentAllocator) Alloc(size, alignment uintptr) (unsafe.Pointer, error) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.a == nil {
		return nil, ErrOutOfMemory
	}
	return a.a.Alloc(size, alignment)
}

// Free satisfies the Allocator interface.
func (a *concurrentAllocator) Free(ptr unsafe.Pointer, size uintptr) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.a == nil {
		return
	}
	a.a.Free(ptr, size)
}

// Charge satisfies the Budget interface.
func (a *concurrentAllocator) Charge(size uintptr) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.a == nil {
		return ErrOutOfMemory
	}
	b, ok := a.a.(Budget)
	if !ok {
		return nil
	}
	return b.Charge(size)
}

// Refund satisfies the Budget interface.
func (a *concurrentAllocator) Refund(size uintptr) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if b, ok := a.a.(Budget); ok {
		b.Refund(size)
	}
}

// Len returns the total number of bytes currently allocated.
func (a *concurrentAllocator) Len() int {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.a == nil {
		return 0
	}
	return a.a.Len()
}

// Cap returns the total capacity (maximum bytes) that can be allocated.
func (a *concurrentAllocator) Cap() int {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.a == nil {
		return 0
	}
	return a.a.Cap()
}

// Peak returns the peak number of bytes that have been allocated.
func (a *concurrentAllocator) Peak() int {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.a == nil {
		return 0
	}
	return a.a.Peak()
}
