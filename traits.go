// SPDX-License-Identifier: Apache-2.0

package vec

import (
	"fmt"

	"go.uber.org/multierr"
)

// Copier is implemented by *T when copying a T is more than a Go assignment and
// may fail. CopyFrom is called on a zeroed destination.
type Copier[T any] interface {
	CopyFrom(src *T) error
}

// Mover is implemented by *T when moving a T may fail. Types without it are moved
// by plain relocation, which never fails. MoveFrom is called on a zeroed
// destination and leaves src in a state that Destroy accepts.
type Mover[T any] interface {
	MoveFrom(src *T) error
}

// Destroyer is implemented by *T when a value holds resources that must be
// released before its slot is reused or freed.
type Destroyer interface {
	Destroy()
}

type transferStrategy uint8

const (
	// relocateTransfer copies the bits and forgets the old slots.
	relocateTransfer transferStrategy = iota
	// copyTransfer copy-constructs into the new block and destroys the old
	// elements only after every copy succeeded.
	copyTransfer
	// moveTransfer uses a fallible move because the type cannot be copied.
	moveTransfer
)

func (s transferStrategy) String() string {
	switch s {
	case relocateTransfer:
		return "relocate"
	case copyTransfer:
		return "copy"
	case moveTransfer:
		return "move"
	}
	return fmt.Sprintf("transferStrategy(%d)", uint8(s))
}

// elemTraits caches what a vector knows about its element type.
type elemTraits struct {
	layout    elemLayout
	strategy  transferStrategy
	copier    bool
	mover     bool
	destroyer bool
}

func traitsOf[T any]() elemTraits {
	var p any = (*T)(nil)
	_, copier := p.(Copier[T])
	_, mover := p.(Mover[T])
	_, destroyer := p.(Destroyer)

	tr := elemTraits{
		layout:    layoutOf[T](),
		copier:    copier,
		mover:     mover,
		destroyer: destroyer,
	}
	switch {
	case !mover:
		tr.strategy = relocateTransfer
	case copier:
		tr.strategy = copyTransfer
	default:
		tr.strategy = moveTransfer
	}
	return tr
}

// copyConstruct initialises the zeroed *dst as a copy of *src.
func copyConstruct[T any](tr *elemTraits, dst, src *T) error {
	if tr.copier {
		return any(dst).(Copier[T]).CopyFrom(src)
	}
	*dst = *src
	return nil
}

// copyElems copy-constructs src into the raw prefix of dst. On failure the
// copies made so far are destroyed and dst is raw again.
func copyElems[T any](tr *elemTraits, dst *rawBlock[T], src []T) error {
	for i := range src {
		if err := copyConstruct(tr, &dst.elems[i], &src[i]); err != nil {
			var zero T
			dst.elems[i] = zero
			dst.destroyRange(0, i, tr)
			return fmt.Errorf("vec: copy element %d: %w", i, err)
		}
	}
	return nil
}

// transfer fills the raw prefix of dst with the first n elements of src using
// the element's strategy. On success the old slots are raw; on failure src holds
// the original elements again and dst is raw.
func transfer[T any](tr *elemTraits, dst, src *rawBlock[T], n int) error {
	switch tr.strategy {
	case relocateTransfer:
		copy(dst.elems, src.elems[:n])
		clear(src.elems[:n])
		return nil

	case copyTransfer:
		if err := copyElems(tr, dst, src.elems[:n]); err != nil {
			return err
		}
		src.destroyRange(0, n, tr)
		return nil

	default:
		for i := 0; i < n; i++ {
			if err := any(&dst.elems[i]).(Mover[T]).MoveFrom(&src.elems[i]); err != nil {
				var zero T
				dst.elems[i] = zero
				err = fmt.Errorf("vec: move element %d: %w", i, err)
				return multierr.Append(err, moveBack(tr, src, dst, i))
			}
		}
		src.destroyRange(0, n, tr)
		return nil
	}
}

// moveBack returns the first n elements of dst to src after a failed move and
// leaves dst raw. Elements that cannot be moved back are reported.
func moveBack[T any](tr *elemTraits, src, dst *rawBlock[T], n int) error {
	var errs error
	for i := 0; i < n; i++ {
		if tr.destroyer {
			any(&src.elems[i]).(Destroyer).Destroy()
		}
		var zero T
		src.elems[i] = zero
		if err := any(&src.elems[i]).(Mover[T]).MoveFrom(&dst.elems[i]); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("vec: restore element %d: %w", i, err))
		}
	}
	dst.destroyRange(0, n, tr)
	return errs
}
