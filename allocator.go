// SPDX-License-Identifier: Apache-2.0

package vec

import (
	"reflect"
	"unsafe"
)

// Allocator is an interface that describes a source of raw memory blocks.
type Allocator interface {
	// Alloc allocates a zeroed block of the given size and returns a pointer to it.
	// The alignment parameter specifies the alignment of the allocated memory.
	// When the block cannot be provided the returned error wraps ErrOutOfMemory.
	Alloc(size, alignment uintptr) (unsafe.Pointer, error)

	// Free hands a block obtained from Alloc back to the allocator.
	// Freeing the same block twice is a caller bug and is not detected.
	Free(ptr unsafe.Pointer, size uintptr)

	// Len returns the total number of bytes currently allocated.
	Len() int

	// Cap returns the total capacity (maximum bytes) that can be allocated.
	Cap() int

	// Peak returns the peak number of bytes that have been allocated.
	Peak() int
}

// Budget is implemented by allocators that can account for memory they do not
// hand out themselves. Blocks of elements that carry Go pointers are made on the
// garbage collected heap and only charged against the allocator.
type Budget interface {
	// Charge records size bytes as in use, or fails with ErrOutOfMemory.
	Charge(size uintptr) error

	// Refund releases bytes previously charged.
	Refund(size uintptr)
}

// maxAlloc bounds the byte size of a single block.
const maxAlloc = uintptr(1<<(unsafe.Sizeof(uintptr(0))*8-1) - 1)

// elemLayout describes how blocks of one element type are obtained.
type elemLayout struct {
	size   uintptr
	align  uintptr
	gcHeap bool // blocks must live on memory the collector scans
}

func layoutOf[T any]() elemLayout {
	var x T
	l := elemLayout{
		size:  unsafe.Sizeof(x),
		align: unsafe.Alignof(x),
	}
	l.gcHeap = l.size == 0 || hasPointers(reflect.TypeFor[T]())
	return l
}

// hasPointers reports whether values of t may hold Go pointers.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// allocBlock returns a zeroed block of n elements of type T.
// Pointer-free element types are placed in the allocator's memory. Other types
// are made on the Go heap and charged against the allocator when it is a Budget.
// If the allocator is nil, the block is made on the Go heap without accounting.
func allocBlock[T any](a Allocator, l elemLayout, n int) (rawBlock[T], error) {
	if n <= 0 {
		return rawBlock[T]{}, nil
	}
	if l.size > 0 && uintptr(n) > maxAlloc/l.size {
		return rawBlock[T]{}, ErrOutOfMemory
	}
	bytes := l.size * uintptr(n)

	if a == nil {
		return rawBlock[T]{elems: make([]T, n)}, nil
	}
	if l.gcHeap {
		if b, ok := a.(Budget); ok && bytes > 0 {
			if err := b.Charge(bytes); err != nil {
				return rawBlock[T]{}, err
			}
		}
		return rawBlock[T]{elems: make([]T, n), bytes: bytes}, nil
	}

	ptr, err := a.Alloc(bytes, l.align)
	if err != nil {
		return rawBlock[T]{}, err
	}
	return rawBlock[T]{
		elems: unsafe.Slice((*T)(ptr), n),
		ptr:   ptr,
		bytes: bytes,
	}, nil
}

// freeBlock returns b to the allocator it came from. Live elements must already
// have been destroyed.
func freeBlock[T any](a Allocator, b rawBlock[T]) {
	if a == nil || b.elems == nil {
		return
	}
	if b.ptr != nil {
		a.Free(b.ptr, b.bytes)
		return
	}
	if bud, ok := a.(Budget); ok && b.bytes > 0 {
		bud.Refund(b.bytes)
	}
}
