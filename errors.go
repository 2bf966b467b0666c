// SPDX-License-Identifier: Apache-2.0

package vec

import "errors"

var (
	// ErrOutOfMemory is returned when an allocator cannot provide a block, or when
	// the requested capacity does not fit in the address space. The vector that
	// asked for the block is left unchanged.
	ErrOutOfMemory = errors.New("vec: out of memory")

	// ErrIndexOutOfRange is returned by bounds-checked access past the live elements.
	ErrIndexOutOfRange = errors.New("vec: index out of range")

	// ErrEmpty is returned by PopBack, Front and Back on a vector without elements.
	ErrEmpty = errors.New("vec: empty container")
)
