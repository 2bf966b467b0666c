// SPDX-License-Identifier: Apache-2.0

package vec

import (
	"fmt"
	"unsafe"
)

// MonotonicArena is an Allocator that bumps a pointer through a list of buffers.
// Freed blocks are only reclaimed when they are the most recent allocation of
// their buffer; everything else is reclaimed by Reset.
type MonotonicArena struct {
	buffers            []*monotonicBuffer
	peak               uintptr // tracks peak allocated space
	charged            uintptr // bytes charged through Budget
	minBufferSize      uintptr // minimum size for new buffers
	maxBytes           uintptr // 0 means unlimited
	initialBufferCount int     // number of initial buffers to create
}

type monotonicBuffer struct {
	ptr    unsafe.Pointer
	offset uintptr
	size   uintptr
}

func newMonotonicBuffer(size int) *monotonicBuffer {
	return &monotonicBuffer{size: uintptr(size)}
}

func (s *monotonicBuffer) alloc(size, alignment uintptr) (unsafe.Pointer, bool) {
	if s.ptr == nil {
		buf := make([]byte, s.size) // allocate monotonic buffer lazily
		s.ptr = unsafe.Pointer(unsafe.SliceData(buf))
	}
	alignOffset := uintptr(0)
	for alignedPtr := uintptr(s.ptr) + s.offset; alignedPtr%alignment != 0; alignedPtr++ {
		alignOffset++
	}
	allocSize := size + alignOffset

	if s.availableBytes() < allocSize {
		return nil, false
	}
	ptr := unsafe.Add(s.ptr, s.offset+alignOffset)
	s.offset += allocSize

	// Compiled to runtime.memclrNoHeapPointers.
	clear(unsafe.Slice((*byte)(ptr), size))

	return ptr, true
}

// free rewinds the buffer if ptr is its most recent allocation.
func (s *monotonicBuffer) free(ptr unsafe.Pointer, size uintptr) bool {
	if s.ptr == nil {
		return false
	}
	start, end := uintptr(s.ptr), uintptr(s.ptr)+s.offset
	p := uintptr(ptr)
	if p < start || p+size > end {
		return false
	}
	if p+size == end {
		s.offset = p - start
	}
	return true
}

func (s *monotonicBuffer) reset() {
	if s.offset == 0 {
		return
	}
	s.offset = 0
}

func (s *monotonicBuffer) release() {
	s.offset = 0
	s.ptr = nil
}

func (s *monotonicBuffer) availableBytes() uintptr {
	return s.size - s.offset
}

// NewMonotonicArena creates a new monotonic arena with optional configuration.
// If no options are provided, it uses minBufferSize (32KB) as the default buffer size,
// creates 1 initial buffer and does not limit the bytes it hands out.
func NewMonotonicArena(opts ...MonotonicArenaOption) *MonotonicArena {
	a := &MonotonicArena{
		minBufferSize:      minBufferSize, // Default to minBufferSize
		initialBufferCount: 1,             // Default to 1 initial buffer
	}

	// Apply options
	for _, opt := range opts {
		opt(a)
	}

	// Create initial buffers using the configured buffer size and count
	for i := 0; i < a.initialBufferCount; i++ {
		a.buffers = append(a.buffers, newMonotonicBuffer(int(a.minBufferSize)))
	}
	return a
}

const (
	minBufferSize = 1024 * 32 // 32KB
)

// MonotonicArenaOption represents a configuration option for a monotonic arena.
type MonotonicArenaOption func(*MonotonicArena)

// WithMinBufferSize sets the minimum buffer size for new buffers created by the arena.
func WithMinBufferSize(size int) MonotonicArenaOption {
	return func(a *MonotonicArena) {
		a.minBufferSize = uintptr(size)
	}
}

// WithInitialBufferCount sets the number of initial buffers to create.
func WithInitialBufferCount(count int) MonotonicArenaOption {
	return func(a *MonotonicArena) {
		a.initialBufferCount = count
	}
}

// WithMaxBytes limits the bytes the arena hands out and accepts as charges.
// Requests past the limit fail with ErrOutOfMemory.
func WithMaxBytes(n int) MonotonicArenaOption {
	return func(a *MonotonicArena) {
		a.maxBytes = uintptr(n)
	}
}

func (a *MonotonicArena) overLimit(size uintptr) bool {
	return a.maxBytes > 0 && a.len()+size > a.maxBytes
}

// Alloc satisfies the Allocator interface.
func (a *MonotonicArena) Alloc(size, alignment uintptr) (unsafe.Pointer, error) {
	if a.overLimit(size) {
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrOutOfMemory, size, a.len(), a.maxBytes)
	}
	if alignment == 0 {
		alignment = 1
	}

	for i := 0; i < len(a.buffers); i++ {
		ptr, ok := a.buffers[i].alloc(size, alignment)
		if ok {
			a.updatePeak()
			return ptr, nil
		}
	}

	// No existing buffer has enough space, create a new one.
	// Reserve room for the worst case alignment padding.
	requiredSize := size + alignment - 1

	// New buffer should be at least minBuffer, but large enough for the allocation
	newBufferSize := requiredSize
	if newBufferSize < a.minBufferSize {
		newBufferSize = a.minBufferSize
	}

	newBuffer := newMonotonicBuffer(int(newBufferSize))
	a.buffers = append(a.buffers, newBuffer)

	ptr, ok := newBuffer.alloc(size, alignment)
	if !ok {
		// This should never happen since we just created a buffer large enough
		panic("vec: failed to allocate on newly created buffer")
	}
	a.updatePeak()
	return ptr, nil
}

// Free satisfies the Allocator interface. Only the most recent allocation of a
// buffer is reclaimed before Reset.
func (a *MonotonicArena) Free(ptr unsafe.Pointer, size uintptr) {
	for _, s := range a.buffers {
		if s.free(ptr, size) {
			return
		}
	}
}

// Charge satisfies the Budget interface.
func (a *MonotonicArena) Charge(size uintptr) error {
	if a.overLimit(size) {
		return fmt.Errorf("%w: %d bytes charged, %d of %d in use", ErrOutOfMemory, size, a.len(), a.maxBytes)
	}
	a.charged += size
	a.updatePeak()
	return nil
}

// Refund satisfies the Budget interface.
func (a *MonotonicArena) Refund(size uintptr) {
	if size > a.charged {
		size = a.charged
	}
	a.charged -= size
}

func (a *MonotonicArena) updatePeak() {
	if currentLen := a.len(); currentLen > a.peak {
		a.peak = currentLen
	}
}

// Reset makes all buffer space available again without releasing it.
// Every block handed out by Alloc becomes invalid. Charges are kept, they
// belong to blocks the arena does not own.
func (a *MonotonicArena) Reset() {
	for _, s := range a.buffers {
		s.reset()
	}
}

// Release drops the buffers' memory. The arena allocates fresh buffers lazily
// if it is used again.
func (a *MonotonicArena) Release() {
	for _, s := range a.buffers {
		s.release()
	}
}

// len returns the total number of bytes currently allocated in the arena (internal helper).
func (a *MonotonicArena) len() uintptr {
	total := a.charged
	for _, s := range a.buffers {
		total += s.offset
	}
	return total
}

// Len returns the total number of bytes currently allocated or charged.
func (a *MonotonicArena) Len() int {
	return int(a.len())
}

// Cap returns the total capacity (maximum bytes) that can be allocated in the arena
// without creating a new buffer.
func (a *MonotonicArena) Cap() int {
	var total uintptr
	for _, s := range a.buffers {
		total += s.size
	}
	return int(total)
}

// Peak returns the peak number of bytes that have been allocated in the arena.
// This value is not reset when Reset is called, allowing tracking of maximum usage.
func (a *MonotonicArena) Peak() int {
	return int(a.peak)
}
