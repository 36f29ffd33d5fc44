package page

import (
	"reflect"

	"github.com/joshuapare/objpool/pkg/types"
)

// Free releases the used slot holding hash. The L2 cache is consulted first;
// a hit is confirmed against the slot before it is trusted. On a miss or an
// unconfirmed hit the page is scanned linearly.
//
// A non-nil obj must also be the instance held by the slot, so two live
// instances with colliding hashes are never confused. A nil obj matches any
// used slot with the hash.
//
// It returns the freed slot and the tier that found it, or ErrNotFound.
func (p *Page) Free(hash uint64, obj any) (int, types.FreeTier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i, ok := p.l2.Evict(hash); ok {
		if p.holds(int(i), hash, obj) {
			p.release(int(i))
			p.trace("freed", "slot", i, "tier", types.TierL2)
			return int(i), types.TierL2, nil
		}
		p.trace("l2 entry stale", "slot", i)
	}

	p.trace("cachefault", "hash", hash)
	for i := range p.slots {
		if p.holds(i, hash, obj) {
			p.release(i)
			p.trace("freed", "slot", i, "tier", types.TierScan)
			return i, types.TierScan, nil
		}
	}
	return -1, types.TierNone, types.ErrNotFound
}

// ForceFree releases slot i directly, as located by the pool's L1 cache.
// ErrAlreadyFree reports the slot was already free; ErrStale reports it is
// in use by a different instance. Either way nothing changes. obj follows
// the rules of Free.
func (p *Page) ForceFree(i int, hash uint64, obj any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i < 0 || i >= len(p.slots) {
		return types.ErrStale
	}
	if !p.slots[i].used {
		return types.ErrAlreadyFree
	}
	if !p.holds(i, hash, obj) {
		return types.ErrStale
	}
	p.release(i)
	p.l2.Evict(hash)
	p.trace("force freed", "slot", i)
	return nil
}

func (p *Page) holds(i int, hash uint64, obj any) bool {
	s := &p.slots[i]
	return s.used && s.hash == hash && (obj == nil || sameInstance(s.obj, obj))
}

func (p *Page) release(i int) {
	p.slots[i].used = false
	p.inUse--
}

// sameInstance reports whether a and b are the same object: the same
// address for reference kinds, equal values for comparable ones. Values
// that cannot be compared are matched by hash alone.
func sameInstance(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer, reflect.Slice, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	if va.Comparable() {
		return va.Equal(vb)
	}
	return true
}
