package pool

import (
	"sync/atomic"

	"github.com/joshuapare/objpool/pkg/types"
)

type counters struct {
	allocs, allocFails, constructs, reuses atomic.Uint64
	frees, notFound                        atomic.Uint64
	l1Hits, l1Stale, l1Misses              atomic.Uint64
	l2Hits, scans                          atomic.Uint64
}

// Stats returns cumulative counters plus current page and in-use totals.
func (p *Pool) Stats() types.Stats {
	s := types.Stats{
		Allocs:     p.stats.allocs.Load(),
		AllocFails: p.stats.allocFails.Load(),
		Constructs: p.stats.constructs.Load(),
		Reuses:     p.stats.reuses.Load(),
		Frees:      p.stats.frees.Load(),
		NotFound:   p.stats.notFound.Load(),
		L1Hits:     p.stats.l1Hits.Load(),
		L1Stale:    p.stats.l1Stale.Load(),
		L1Misses:   p.stats.l1Misses.Load(),
		L2Hits:     p.stats.l2Hits.Load(),
		Scans:      p.stats.scans.Load(),
	}
	s.Pages = p.PageCount()
	s.InUse = p.InUse()
	return s
}

// Snapshot copies the pool's pages, caches and counters for diagnostics.
func (p *Pool) Snapshot() types.PoolSnapshot {
	p.mu.Lock()
	snap := types.PoolSnapshot{
		Limits:    p.cfg.Limits,
		PageCount: p.count,
		L1Policy:  p.l1Policy(),
	}
	pages := p.pages[:p.count]
	for pos, e := range p.l1.Entries() {
		snap.L1 = append(snap.L1, types.CacheEntry{
			Position: pos,
			Hash:     e.Key,
			Page:     e.Value.Page(),
			Slot:     e.Value.Slot(),
			Age:      e.Age,
			Used:     e.Used,
		})
	}
	p.mu.Unlock()

	snap.Pages = make([]types.PageSnapshot, 0, len(pages))
	for _, pg := range pages {
		snap.Pages = append(snap.Pages, pg.Snapshot())
	}
	snap.Stats = p.Stats()
	return snap
}

func (p *Pool) l1Policy() string {
	if p.cfg.L1Policy == "" {
		return "aging"
	}
	return string(p.cfg.L1Policy)
}
