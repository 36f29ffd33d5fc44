package page

import (
	"github.com/joshuapare/objpool/pkg/types"
	"github.com/joshuapare/objpool/pool/cache"
)

// Snapshot copies the page's observable state.
func (p *Page) Snapshot() types.PageSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	ps := types.PageSnapshot{
		Index:        p.index,
		Capacity:     len(p.slots),
		InUse:        p.inUse,
		Diversity:    p.diversity,
		DiversityCap: len(p.types),
		Types:        make([]string, p.diversity),
		L2Policy:     string(p.policy()),
		L2Cap:        p.l2.Cap(),
	}
	for i := 0; i < p.diversity; i++ {
		ps.Types[i] = p.types[i].String()
	}
	for i := range p.slots {
		s := &p.slots[i]
		if s.obj == nil {
			continue
		}
		ps.Slots = append(ps.Slots, types.SlotInfo{
			Index: i,
			Used:  s.used,
			Tag:   int(s.tag),
			Hash:  s.hash,
			Type:  p.types[s.tag].String(),
		})
	}
	for pos, e := range p.l2.Entries() {
		ps.L2 = append(ps.L2, types.CacheEntry{
			Position: pos,
			Hash:     e.Key,
			Page:     p.index,
			Slot:     int(e.Value),
			Age:      e.Age,
			Used:     e.Used,
		})
	}
	return ps
}

func (p *Page) policy() cache.Policy {
	if p.cfg.L2Policy == "" {
		return cache.PolicyAging
	}
	return p.cfg.L2Policy
}
