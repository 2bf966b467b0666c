// SPDX-License-Identifier: Apache-2.0

package vec

import "unsafe"

// rawBlock is a storage block sized to a capacity. It knows nothing about which
// of its slots are live; the owning Vector tracks that.
type rawBlock[T any] struct {
	elems []T            // len(elems) is the capacity
	ptr   unsafe.Pointer // allocator memory, nil for Go heap blocks
	bytes uintptr
}

func (b *rawBlock[T]) capacity() int {
	return len(b.elems)
}

// constructAt runs ctor on the raw slot i. A failed constructor leaves the slot raw.
func (b *rawBlock[T]) constructAt(i int, ctor func(*T) error) error {
	p := &b.elems[i]
	if err := ctor(p); err != nil {
		var zero T
		*p = zero
		return err
	}
	return nil
}

// destroyAt ends the lifetime of the element in slot i and leaves the slot raw.
func (b *rawBlock[T]) destroyAt(i int, tr *elemTraits) {
	p := &b.elems[i]
	if tr.destroyer {
		any(p).(Destroyer).Destroy()
	}
	var zero T
	*p = zero
}

// destroyRange destroys slots [from, to) back to front.
func (b *rawBlock[T]) destroyRange(from, to int, tr *elemTraits) {
	if !tr.destroyer {
		clear(b.elems[from:to])
		return
	}
	for i := to - 1; i >= from; i-- {
		b.destroyAt(i, tr)
	}
}

// overlaps reports whether s shares memory with the first n slots.
func (b *rawBlock[T]) overlaps(s []T, n int, size uintptr) bool {
	if n == 0 || len(s) == 0 || size == 0 {
		return false
	}
	lo := uintptr(unsafe.Pointer(unsafe.SliceData(b.elems)))
	hi := lo + uintptr(n)*size
	p := uintptr(unsafe.Pointer(unsafe.SliceData(s)))
	q := p + uintptr(len(s))*size
	return p < hi && lo < q
}
