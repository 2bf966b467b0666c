// SPDX-License-Identifier: Apache-2.0

package vec

import (
	"fmt"

	"go.uber.org/zap"
)

var nopLogger = zap.NewNop()

// noCopy makes go vet's copylocks check report vectors copied by value.
// Two copies of a Vector would share one block.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Vector is a growable array that owns a single storage block.
// Elements live in the prefix [0, Len()) of the block; the remaining slots up to
// Cap() are zeroed and hold no value.
//
// The zero value is an empty vector that allocates on the Go heap.
// A Vector is not safe for concurrent use and must not be copied by value;
// use Clone or Move instead.
type Vector[T any] struct {
	noCopy noCopy

	block  rawBlock[T]
	size   int
	alloc  Allocator
	logger *zap.Logger
	traits *elemTraits
}

// New returns an empty vector. No storage is allocated until the first element
// is added or Reserve is called.
func New[T any](opts ...Option) *Vector[T] {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	return &Vector[T]{
		alloc:  c.allocator,
		logger: c.logger,
	}
}

// NewWithCapacity returns an empty vector with room for exactly n elements.
func NewWithCapacity[T any](n int, opts ...Option) (*Vector[T], error) {
	v := New[T](opts...)
	if err := v.Reserve(n); err != nil {
		return nil, err
	}
	return v, nil
}

// NewFilled returns a vector holding n copies of value.
func NewFilled[T any](n int, value T, opts ...Option) (*Vector[T], error) {
	v, err := NewWithCapacity[T](n, opts...)
	if err != nil {
		return nil, err
	}
	tr := v.elemTraits()
	for i := 0; i < n; i++ {
		err := v.block.constructAt(i, func(p *T) error {
			return copyConstruct(tr, p, &value)
		})
		if err != nil {
			v.Release()
			return nil, fmt.Errorf("vec: copy element %d: %w", i, err)
		}
		v.size++
	}
	return v, nil
}

// NewSized returns a vector holding n zero values.
func NewSized[T any](n int, opts ...Option) (*Vector[T], error) {
	v, err := NewWithCapacity[T](n, opts...)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		v.size = n
	}
	return v, nil
}

func (v *Vector[T]) elemTraits() *elemTraits {
	if v.traits == nil {
		tr := traitsOf[T]()
		v.traits = &tr
	}
	return v.traits
}

func (v *Vector[T]) log() *zap.Logger {
	if v.logger == nil {
		return nopLogger
	}
	return v.logger
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int {
	return v.size
}

// Cap returns the number of slots in the current block.
func (v *Vector[T]) Cap() int {
	return v.block.capacity()
}

// Empty reports whether the vector has no elements.
func (v *Vector[T]) Empty() bool {
	return v.size == 0
}

// Reserve grows the block to exactly n slots if it is smaller. It never shrinks.
func (v *Vector[T]) Reserve(n int) error {
	if n <= v.block.capacity() {
		return nil
	}
	return v.reallocate(n, nil, false)
}

// PushBack moves x into a new slot at the end, growing the block when it is full.
func (v *Vector[T]) PushBack(x T) error {
	if v.size == v.block.capacity() {
		if err := v.grow(v.size+1, nil, false); err != nil {
			return err
		}
	}
	v.block.elems[v.size] = x
	v.size++
	return nil
}

// PushBackCopy appends a copy of *src. src may point into the vector itself.
func (v *Vector[T]) PushBackCopy(src *T) error {
	tr := v.elemTraits()
	_, err := v.EmplaceBack(func(p *T) error {
		return copyConstruct(tr, p, src)
	})
	return err
}

// EmplaceBack constructs a new element at the end by calling ctor on a zeroed
// slot and returns a pointer to it. The pointer is valid until the next
// reallocation. If ctor fails the vector is left exactly as it was.
func (v *Vector[T]) EmplaceBack(ctor func(*T) error) (*T, error) {
	i := v.size
	construct := func(b *rawBlock[T]) (int, error) {
		if err := b.constructAt(i, ctor); err != nil {
			return 0, fmt.Errorf("vec: construct element %d: %w", i, err)
		}
		return 1, nil
	}

	if v.size < v.block.capacity() {
		if _, err := construct(&v.block); err != nil {
			return nil, err
		}
	} else if err := v.grow(v.size+1, construct, true); err != nil {
		return nil, err
	}
	v.size++
	return &v.block.elems[i], nil
}

// Append moves values to the end, reserving room for all of them at once.
// When values alias the vector's own elements they are copy-constructed
// instead, and a failed copy leaves the vector as it was.
func (v *Vector[T]) Append(values ...T) error {
	if len(values) == 0 {
		return nil
	}
	need := v.size + len(values)
	if need < v.size {
		return fmt.Errorf("vec: append %d elements: %w", len(values), ErrOutOfMemory)
	}

	tr := v.elemTraits()
	owned := v.block.overlaps(values, v.size, tr.layout.size)
	place := func(dst []T) error {
		if owned {
			return copyElems(tr, &rawBlock[T]{elems: dst}, values)
		}
		copy(dst, values)
		return nil
	}

	if need > v.block.capacity() {
		err := v.grow(need, func(b *rawBlock[T]) (int, error) {
			if err := place(b.elems[v.size:need]); err != nil {
				return 0, err
			}
			return len(values), nil
		}, owned)
		if err != nil {
			return err
		}
	} else if err := place(v.block.elems[v.size:need]); err != nil {
		return err
	}
	v.size = need
	return nil
}

// PopBack destroys the last element.
func (v *Vector[T]) PopBack() error {
	if v.size == 0 {
		return fmt.Errorf("%w: pop from empty vector", ErrEmpty)
	}
	v.size--
	v.block.destroyAt(v.size, v.elemTraits())
	return nil
}

// Clear destroys all elements. The block and its capacity are kept.
func (v *Vector[T]) Clear() {
	v.block.destroyRange(0, v.size, v.elemTraits())
	v.size = 0
}

// Release destroys all elements and hands the block back to its allocator.
// The vector is empty with zero capacity afterwards and may be reused.
func (v *Vector[T]) Release() {
	v.Clear()
	freeBlock(v.alloc, v.block)
	v.block = rawBlock[T]{}
}

// Index returns a pointer to slot i without checking it against Len.
// Slots at or past Len hold no element.
func (v *Vector[T]) Index(i int) *T {
	return &v.block.elems[i]
}

// At returns a pointer to element i, or ErrIndexOutOfRange.
func (v *Vector[T]) At(i int) (*T, error) {
	if i < 0 || i >= v.size {
		return nil, fmt.Errorf("%w: index %d with length %d", ErrIndexOutOfRange, i, v.size)
	}
	return &v.block.elems[i], nil
}

// Front returns a pointer to the first element, or ErrEmpty.
func (v *Vector[T]) Front() (*T, error) {
	if v.size == 0 {
		return nil, fmt.Errorf("%w: front of empty vector", ErrEmpty)
	}
	return &v.block.elems[0], nil
}

// Back returns a pointer to the last element, or ErrEmpty.
func (v *Vector[T]) Back() (*T, error) {
	if v.size == 0 {
		return nil, fmt.Errorf("%w: back of empty vector", ErrEmpty)
	}
	return &v.block.elems[v.size-1], nil
}

// Data returns the live elements. The slice shares the vector's block and is
// only valid until the next mutation.
func (v *Vector[T]) Data() []T {
	return v.block.elems[:v.size:v.size]
}

// Clone returns a copy with a fresh block of exactly Len slots.
// The copy uses the same allocator and logger.
func (v *Vector[T]) Clone() (*Vector[T], error) {
	tr := v.elemTraits()
	c := &Vector[T]{
		alloc:  v.alloc,
		logger: v.logger,
		traits: tr,
	}
	if v.size == 0 {
		return c, nil
	}

	nb, err := allocBlock[T](v.alloc, tr.layout, v.size)
	if err != nil {
		return nil, fmt.Errorf("vec: clone %d elements: %w", v.size, err)
	}
	if err := copyElems(tr, &nb, v.block.elems[:v.size]); err != nil {
		freeBlock(v.alloc, nb)
		return nil, err
	}
	c.block = nb
	c.size = v.size
	return c, nil
}

// CopyAssign replaces the elements of v with copies of the elements of src.
// The current block is reused when it is large enough and copying cannot fail.
// Otherwise the copies are built in a fresh block first, so on error v is
// unchanged.
func (v *Vector[T]) CopyAssign(src *Vector[T]) error {
	if src == v {
		return nil
	}
	if src.size == 0 {
		v.Clear()
		return nil
	}

	tr := v.elemTraits()
	if !tr.copier && src.size <= v.block.capacity() {
		v.block.destroyRange(0, v.size, tr)
		copy(v.block.elems, src.block.elems[:src.size])
		v.size = src.size
		return nil
	}

	nb, err := allocBlock[T](v.alloc, tr.layout, src.size)
	if err != nil {
		return fmt.Errorf("vec: copy %d elements: %w", src.size, err)
	}
	if err := copyElems(tr, &nb, src.block.elems[:src.size]); err != nil {
		freeBlock(v.alloc, nb)
		return err
	}
	v.Release()
	v.block = nb
	v.size = src.size
	return nil
}

// Move returns a vector that owns v's block and elements. v is left empty with
// zero capacity.
func (v *Vector[T]) Move() *Vector[T] {
	m := &Vector[T]{
		block:  v.block,
		size:   v.size,
		alloc:  v.alloc,
		logger: v.logger,
		traits: v.traits,
	}
	v.block = rawBlock[T]{}
	v.size = 0
	return m
}

// MoveAssign releases v's own elements and block, then takes over src's block,
// elements and allocator. src is left empty with zero capacity.
func (v *Vector[T]) MoveAssign(src *Vector[T]) {
	if src == v {
		return
	}
	v.Release()
	v.block, v.size, v.alloc = src.block, src.size, src.alloc
	src.block = rawBlock[T]{}
	src.size = 0
}

// Swap exchanges the contents of v and other.
func (v *Vector[T]) Swap(other *Vector[T]) {
	v.block, other.block = other.block, v.block
	v.size, other.size = other.size, v.size
	v.alloc, other.alloc = other.alloc, v.alloc
}

// grow reallocates to hold at least required elements.
func (v *Vector[T]) grow(required int, fill func(*rawBlock[T]) (int, error), owned bool) error {
	n, ok := growCapacity(v.block.capacity(), required)
	if !ok {
		return fmt.Errorf("vec: grow past %d elements: %w", v.block.capacity(), ErrOutOfMemory)
	}
	return v.reallocate(n, fill, owned)
}

// reallocate moves the elements to a new block of n slots.
//
// fill, when set, constructs new elements at [Len, Len+k) of the new block before
// the old elements are transferred, so it may read from the old block. Any
// failure leaves the vector untouched: the new block is freed before the error is
// returned, and the filled elements are destroyed first when they are owned.
// Elements moved in from the caller are only dropped.
func (v *Vector[T]) reallocate(n int, fill func(*rawBlock[T]) (int, error), owned bool) error {
	tr := v.elemTraits()
	oldCap := v.block.capacity()

	nb, err := allocBlock[T](v.alloc, tr.layout, n)
	if err != nil {
		if ce := v.log().Check(zap.DebugLevel, "vector reallocation failed"); ce != nil {
			ce.Write(
				zap.Int("capacity", oldCap),
				zap.Int("requested", n),
				zap.Error(err),
			)
		}
		return fmt.Errorf("vec: grow to %d elements: %w", n, err)
	}

	filled := 0
	if fill != nil {
		if filled, err = fill(&nb); err != nil {
			freeBlock(v.alloc, nb)
			return err
		}
	}
	if err := transfer(tr, &nb, &v.block, v.size); err != nil {
		if owned {
			nb.destroyRange(v.size, v.size+filled, tr)
		} else {
			clear(nb.elems[v.size : v.size+filled])
		}
		freeBlock(v.alloc, nb)
		if ce := v.log().Check(zap.DebugLevel, "vector transfer failed"); ce != nil {
			ce.Write(
				zap.Int("capacity", oldCap),
				zap.Int("requested", n),
				zap.Stringer("strategy", tr.strategy),
				zap.Error(err),
			)
		}
		return err
	}

	old := v.block
	v.block = nb
	freeBlock(v.alloc, old)

	if ce := v.log().Check(zap.DebugLevel, "vector reallocated"); ce != nil {
		ce.Write(
			zap.Int("old_capacity", oldCap),
			zap.Int("capacity", n),
			zap.Int("size", v.size),
			zap.Stringer("strategy", tr.strategy),
		)
	}
	return nil
}
