package pool

import "github.com/joshuapare/objpool/internal/format"

// Loc is a packed (page, slot) placement.
type Loc = format.Loc

// Handle is returned by Alloc and given back to Free.
type Handle struct {
	// Object is the pooled instance.
	Object any

	// Hash is the content hash Free uses to locate the instance.
	Hash uint64

	loc    Loc
	reused bool
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.Object == nil }

// Loc returns where the instance was placed by Alloc.
func (h Handle) Loc() Loc { return h.loc }

// Reused reports whether Alloc recycled an existing instance.
func (h Handle) Reused() bool { return h.reused }
