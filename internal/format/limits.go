// Package format holds the fixed layout constants of the object pool and the
// packed location encoding shared by the global location cache and the
// diagnostic output.
package format

const (
	// DefaultPageSize is the number of object slots in a page.
	DefaultPageSize = 0x200

	// DefaultPageCount is the maximum number of pages in a pool.
	DefaultPageCount = 0x100

	// DefaultDiversity is the number of distinct types a single page can hold.
	DefaultDiversity = 0x1f

	// DefaultL1Size is the capacity of the global location cache.
	DefaultL1Size = 0x10

	// DefaultL2Size is the capacity of each page's slot cache.
	DefaultL2Size = 0x20

	// MaxPageSize and MaxPageCount follow from the 16-bit halves of Loc.
	MaxPageSize  = MaxLocIndex + 1
	MaxPageCount = MaxLocIndex + 1

	// MaxDiversity bounds the per-slot type tag, which is stored in a byte.
	MaxDiversity = 0xff
)
