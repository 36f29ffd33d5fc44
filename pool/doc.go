// Package pool provides a manual object-pooling allocator: C-style Alloc and
// Free over a paged store of reusable instances.
//
// # Overview
//
// A Pool owns up to PageCount pages of PageSize slots. Alloc walks the pages
// in order, lazily creating them, and takes an instance of the requested
// type from the first page with an eligible slot. Instances are built once
// through a factory.Factory and recycled in place afterwards, so steady-state
// allocation does not produce garbage.
//
// Free locates the instance through a two-level cache:
//
//   - L1: a small global table mapping content hash to a packed (page, slot)
//     location. A hit is confirmed by the page before the slot is released.
//   - L2: a per-page table mapping content hash to slot index, probed on each
//     page in zigzag order (0, n-1, 1, n-2, ...) when L1 misses or is stale,
//     with a linear page scan behind each L2 miss.
//
// # Usage Example
//
//	p, err := pool.New(factory.Reflect{})
//	if err != nil {
//	    return err
//	}
//
//	v, h, err := pool.AllocT[*Vect](p)
//	if err != nil {
//	    return err
//	}
//	v.X = 10
//
//	// Later, return it
//	err = p.Free(h)
//
// # Content Hash
//
// Instances are identified by a content hash computed once when a slot is
// first populated (see package ident). The default hash is the instance
// address for pointer-shaped values and an xxhash of PoolKey() for
// ident.Keyed values. Two live instances with the same hash are
// indistinguishable to Free.
//
// # Cache Policy
//
// Both cache levels default to cache.PolicyAging: every insertion ages all
// live entries and a full table overwrites its oldest entry, an approximation
// of LRU that ignores lookups. cache.PolicyLRU can be selected per level.
//
// # Thread Safety
//
// A Pool is single-goroutine by default. With Config.Synchronized the pool
// lock guards the page registry and L1, and each page lock guards its slots
// and L2. Locks are always taken pool first, then page.
package pool
