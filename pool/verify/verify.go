// Package verify checks the structural invariants of a pool snapshot.
// These helpers are used in tests and by poolctl to ensure alloc and free
// sequences keep the pool consistent.
package verify

import (
	"fmt"

	"github.com/joshuapare/objpool/pkg/types"
)

// ValidationError describes one violated invariant.
type ValidationError struct {
	Type    string
	Message string
	Page    int // -1 when not page specific
}

func (e *ValidationError) Error() string {
	if e.Page >= 0 {
		return fmt.Sprintf("%s on page %d: %s", e.Type, e.Page, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates every invariant in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(s types.PoolSnapshot) error {
	if err := Registry(s); err != nil {
		return err
	}
	for _, ps := range s.Pages {
		if err := Page(ps); err != nil {
			return err
		}
	}
	if err := L1(s); err != nil {
		return err
	}
	return nil
}

// Registry checks that initialized pages form the prefix [0, PageCount)
// and never exceed the configured maximum.
func Registry(s types.PoolSnapshot) error {
	if s.PageCount != len(s.Pages) {
		return &ValidationError{
			Type:    "Registry",
			Message: fmt.Sprintf("page count %d but %d pages present", s.PageCount, len(s.Pages)),
			Page:    -1,
		}
	}
	if s.Limits.PageCount > 0 && s.PageCount > s.Limits.PageCount {
		return &ValidationError{
			Type:    "Registry",
			Message: fmt.Sprintf("page count %d exceeds limit %d", s.PageCount, s.Limits.PageCount),
			Page:    -1,
		}
	}
	for i, ps := range s.Pages {
		if ps.Index != i {
			return &ValidationError{
				Type:    "Registry",
				Message: fmt.Sprintf("page at position %d reports index %d", i, ps.Index),
				Page:    i,
			}
		}
	}
	return nil
}

// Page checks the slot counters, tags and L2 entries of one page.
func Page(ps types.PageSnapshot) error {
	fail := func(msg string, args ...any) error {
		return &ValidationError{Type: "Page", Message: fmt.Sprintf(msg, args...), Page: ps.Index}
	}

	if ps.InUse < 0 || ps.InUse > ps.Capacity {
		return fail("in-use count %d outside [0, %d]", ps.InUse, ps.Capacity)
	}
	if ps.Diversity > ps.DiversityCap || ps.Diversity != len(ps.Types) {
		return fail("diversity %d with %d types, cap %d", ps.Diversity, len(ps.Types), ps.DiversityCap)
	}
	seen := make(map[string]bool, len(ps.Types))
	for _, name := range ps.Types {
		if seen[name] {
			return fail("type %s registered twice", name)
		}
		seen[name] = true
	}

	used := 0
	live := make(map[int]uint64, len(ps.Slots))
	for _, s := range ps.Slots {
		if s.Index < 0 || s.Index >= ps.Capacity {
			return fail("slot index %d out of range", s.Index)
		}
		if s.Tag < 0 || s.Tag >= ps.Diversity {
			return fail("slot %d tag %d has no type", s.Index, s.Tag)
		}
		if s.Type != ps.Types[s.Tag] {
			return fail("slot %d holds %s but tag %d is %s", s.Index, s.Type, s.Tag, ps.Types[s.Tag])
		}
		if s.Used {
			used++
			live[s.Index] = s.Hash
		}
	}
	if used != ps.InUse {
		return fail("in-use count %d but %d slots used", ps.InUse, used)
	}

	hashes := make(map[uint64]bool, len(ps.L2))
	for _, e := range ps.L2 {
		if !e.Used {
			continue
		}
		if hashes[e.Hash] {
			return fail("l2 holds hash %#x twice", e.Hash)
		}
		hashes[e.Hash] = true
		if e.Slot < 0 || e.Slot >= ps.Capacity {
			return fail("l2 entry %d points at slot %d", e.Position, e.Slot)
		}
		if h, ok := live[e.Slot]; !ok || h != e.Hash {
			return fail("l2 entry %d for %#x points at slot %d which does not hold it", e.Position, e.Hash, e.Slot)
		}
	}
	return nil
}

// L1 checks that global cache entries are unique and point at a used slot
// holding the cached hash.
func L1(s types.PoolSnapshot) error {
	type key struct{ page, slot int }
	live := make(map[key]uint64)
	for _, ps := range s.Pages {
		for _, sl := range ps.Slots {
			if sl.Used {
				live[key{ps.Index, sl.Index}] = sl.Hash
			}
		}
	}

	hashes := make(map[uint64]bool, len(s.L1))
	for _, e := range s.L1 {
		if !e.Used {
			continue
		}
		if hashes[e.Hash] {
			return &ValidationError{Type: "L1", Message: fmt.Sprintf("hash %#x cached twice", e.Hash), Page: -1}
		}
		hashes[e.Hash] = true
		if e.Page < 0 || e.Page >= s.PageCount {
			return &ValidationError{
				Type:    "L1",
				Message: fmt.Sprintf("entry %d points at uninitialized page", e.Position),
				Page:    e.Page,
			}
		}
		if s.Limits.PageSize > 0 && (e.Slot < 0 || e.Slot >= s.Limits.PageSize) {
			return &ValidationError{
				Type:    "L1",
				Message: fmt.Sprintf("entry %d points at slot %d", e.Position, e.Slot),
				Page:    e.Page,
			}
		}
		if h, ok := live[key{e.Page, e.Slot}]; !ok || h != e.Hash {
			return &ValidationError{
				Type:    "L1",
				Message: fmt.Sprintf("entry %d for %#x points at slot %d which does not hold it", e.Position, e.Hash, e.Slot),
				Page:    e.Page,
			}
		}
	}
	return nil
}

// UniqueHashes checks that no two used slots share a content hash. It holds
// for the default identity hash; pools with colliding ident.Keyed values
// legitimately violate it, so AllInvariants does not include it.
func UniqueHashes(s types.PoolSnapshot) error {
	type owner struct{ page, slot int }
	seen := make(map[uint64]owner)
	for _, ps := range s.Pages {
		for _, sl := range ps.Slots {
			if !sl.Used {
				continue
			}
			if o, dup := seen[sl.Hash]; dup {
				return &ValidationError{
					Type: "Hash",
					Message: fmt.Sprintf("hash %#x held by used slots %d:%d and %d:%d",
						sl.Hash, o.page, o.slot, ps.Index, sl.Index),
					Page: ps.Index,
				}
			}
			seen[sl.Hash] = owner{ps.Index, sl.Index}
		}
	}
	return nil
}
