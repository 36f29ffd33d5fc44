package format

import "fmt"

const (
	// LocSlotBits is the number of low bits of a Loc holding the slot index.
	LocSlotBits = 16

	// LocSlotMask selects the slot index from a packed Loc.
	LocSlotMask = 1<<LocSlotBits - 1

	// MaxLocIndex is the largest page or slot index a Loc can carry.
	MaxLocIndex = LocSlotMask
)

// Loc is a packed (page, slot) pair. The slot index occupies the low 16 bits
// and the page index the bits above:
//
//	31            16 15             0
//	+---------------+---------------+
//	|     page      |     slot      |
//	+---------------+---------------+
type Loc uint32

// PackLoc packs page and slot into a Loc. It returns false if either index
// does not fit in 16 bits.
func PackLoc(page, slot int) (Loc, bool) {
	if page < 0 || page > MaxLocIndex || slot < 0 || slot > MaxLocIndex {
		return 0, false
	}
	return Loc(uint32(page)<<LocSlotBits | uint32(slot)), true
}

// MustPackLoc is PackLoc for indices already validated against the pool
// configuration. It panics on out-of-range input.
func MustPackLoc(page, slot int) Loc {
	l, ok := PackLoc(page, slot)
	if !ok {
		panic(fmt.Sprintf("format: location (%d, %d) exceeds 16-bit range", page, slot))
	}
	return l
}

// Page returns the page index.
func (l Loc) Page() int { return int(uint32(l) >> LocSlotBits) }

// Slot returns the slot index.
func (l Loc) Slot() int { return int(uint32(l) & LocSlotMask) }

func (l Loc) String() string {
	return fmt.Sprintf("%d:%d", l.Page(), l.Slot())
}
