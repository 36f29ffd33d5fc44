package types

// Stats holds cumulative pool counters.
type Stats struct {
	Allocs     uint64 // successful allocations
	AllocFails uint64 // allocations that returned an error
	Constructs uint64 // instances built by the factory
	Reuses     uint64 // instances reused in place

	Frees    uint64 // successful frees
	NotFound uint64 // frees that matched nothing
	L1Hits   uint64 // frees served by the global cache
	L1Stale  uint64 // global cache entries that pointed at a freed or reused slot
	L1Misses uint64 // frees with no global cache entry
	L2Hits   uint64 // frees served by a page slot cache
	Scans    uint64 // frees served by a linear page scan

	Pages int // initialized pages
	InUse int // slots currently allocated
}

// L1HitRate returns L1Hits / Frees, or 0 before the first free.
func (s Stats) L1HitRate() float64 {
	if s.Frees == 0 {
		return 0
	}
	return float64(s.L1Hits) / float64(s.Frees)
}
