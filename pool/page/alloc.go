package page

import (
	"fmt"
	"reflect"

	"github.com/joshuapare/objpool/pkg/types"
)

// Alloc hands out an instance of t from this page.
//
// The slot search starts at InUse/2 and wraps, taking the first slot that is
// free and either never populated or populated with an instance of t. A
// populated slot is reused in place; an empty one is filled from the factory.
//
// Errors: ErrTypeTableFull when t is new and the type table is exhausted,
// ErrPageFull when no eligible slot exists, ErrConstruction when the factory
// or the hash function fails. No state changes on error.
func (p *Page) Alloc(t reflect.Type) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	div, fresh, err := p.resolve(t)
	if err != nil {
		return Result{}, err
	}
	if p.inUse >= len(p.slots) {
		return Result{}, types.ErrPageFull
	}

	i := p.findSlot(uint8(div))
	if i < 0 {
		p.trace("alloc failed: no eligible slot", "type", t, "in_use", p.inUse)
		return Result{}, types.ErrPageFull
	}

	s := &p.slots[i]
	res := Result{Slot: i}
	if s.obj != nil {
		if r, ok := s.obj.(Resetter); ok && p.cfg.ResetOnReuse {
			r.Reset()
		}
		res.Obj, res.Hash, res.Reused = s.obj, s.hash, true
	} else {
		obj, err := p.factory.New(t)
		if err != nil {
			p.trace("alloc failed: construct", "type", t, "err", err)
			return Result{}, types.Errorf(types.ErrKindConstruction, err,
				fmt.Sprintf("page %d: construct %s", p.index, t))
		}
		h, err := p.hash(obj)
		if err != nil {
			return Result{}, types.Errorf(types.ErrKindConstruction, err,
				fmt.Sprintf("page %d: hash %s", p.index, t))
		}
		res.Obj, res.Hash = obj, h
	}

	// Commit.
	if fresh {
		p.types[div] = t
		p.diversity++
		p.trace("created diversity", "index", div, "type", t)
	}
	s.obj, s.hash, s.tag, s.used = res.Obj, res.Hash, uint8(div), true
	p.inUse++
	if victim, evicted := p.l2.Insert(res.Hash, uint16(i)); evicted {
		p.trace("l2 replaced oldest", "hash", victim.Key, "age", victim.Age)
	}
	p.trace("alloced", "slot", i, "reused", res.Reused)
	return res, nil
}

// resolve maps t to its diversity index. fresh reports that the index is not
// yet committed to the type table.
func (p *Page) resolve(t reflect.Type) (div int, fresh bool, err error) {
	for i := 0; i < p.diversity; i++ {
		if p.types[i] == t {
			return i, false, nil
		}
	}
	if p.diversity >= len(p.types) {
		return 0, false, types.ErrTypeTableFull
	}
	return p.diversity, true, nil
}

// findSlot returns the first eligible slot scanning from InUse/2 with
// wraparound, or -1.
func (p *Page) findSlot(div uint8) int {
	n := len(p.slots)
	start := p.inUse / 2
	for k := 0; k < n; k++ {
		i := start + k
		if i >= n {
			i -= n
		}
		s := &p.slots[i]
		if s.used {
			continue
		}
		if s.obj != nil && s.tag != div {
			continue
		}
		return i
	}
	return -1
}
