package pool

import (
	"bytes"
	"errors"
	"log/slog"
	"math/rand/v2"
	"reflect"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/objpool/pkg/types"
	"github.com/joshuapare/objpool/pool/cache"
	"github.com/joshuapare/objpool/pool/factory"
	"github.com/joshuapare/objpool/pool/ident"
	"github.com/joshuapare/objpool/pool/printer"
	"github.com/joshuapare/objpool/pool/verify"
)

type Vect struct{ X, Y int }

type Object struct{ id int }

type Str struct{ s string }

var (
	vectT   = reflect.TypeFor[Vect]()
	objectT = reflect.TypeFor[Object]()
	strT    = reflect.TypeFor[Str]()
)

func smallConfig(pageSize, pageCount int) Config {
	cfg := DefaultConfig()
	cfg.PageSize = pageSize
	cfg.PageCount = pageCount
	return cfg
}

func newTestPool(t *testing.T, opts ...Option) *Pool {
	t.Helper()
	p, err := New(factory.Reflect{}, opts...)
	require.NoError(t, err)
	return p
}

func requireInvariants(t *testing.T, p *Pool) {
	t.Helper()
	snap := p.Snapshot()
	require.NoError(t, verify.AllInvariants(snap))
	require.NoError(t, verify.UniqueHashes(snap))
}

func TestNew_Defaults(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), p.Config())
	require.Zero(t, p.PageCount())
	require.Zero(t, p.InUse())
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(nil, WithConfig(smallConfig(0, 1)))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAllocFree_RoundTrip(t *testing.T) {
	p := newTestPool(t, WithConfig(smallConfig(64, 4)))

	const n = 150
	handles := make([]Handle, n)
	seen := make(map[*Vect]bool, n)
	for i := range handles {
		h, err := p.Alloc(vectT)
		require.NoError(t, err)
		v := h.Object.(*Vect)
		require.False(t, seen[v], "instance handed out twice")
		seen[v] = true
		handles[i] = h
	}
	require.Equal(t, n, p.InUse())
	require.Equal(t, 3, p.PageCount())

	rng := rand.New(rand.NewPCG(1, 2))
	rng.Shuffle(len(handles), func(i, j int) { handles[i], handles[j] = handles[j], handles[i] })
	for _, h := range handles {
		require.NoError(t, p.Free(h))
	}
	require.Zero(t, p.InUse())
	requireInvariants(t, p)

	h, err := p.Alloc(vectT)
	require.NoError(t, err)
	require.True(t, h.Reused())
	require.True(t, seen[h.Object.(*Vect)], "alloc after free must reuse a freed instance")

	s := p.Stats()
	require.Equal(t, uint64(n+1), s.Allocs)
	require.Equal(t, uint64(n), s.Constructs)
	require.Equal(t, uint64(1), s.Reuses)
	require.Equal(t, uint64(n), s.Frees)
}

func TestFree_DoubleFree(t *testing.T) {
	p := newTestPool(t)
	h, err := p.Alloc(vectT)
	require.NoError(t, err)

	require.NoError(t, p.Free(h))
	err = p.Free(h)
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, uint64(1), p.Stats().NotFound)
	requireInvariants(t, p)
}

func TestFree_UnknownObject(t *testing.T) {
	p := newTestPool(t)
	_, err := p.Alloc(vectT)
	require.NoError(t, err)

	require.ErrorIs(t, p.FreeObject(&Vect{}), ErrNotFound)
	require.ErrorIs(t, p.FreeObject(7), ErrNotFound)
	require.Equal(t, 1, p.InUse())
}

func TestFree_JustAllocatedHitsL1(t *testing.T) {
	p := newTestPool(t)
	for i := 0; i < 50; i++ {
		h, err := p.Alloc(vectT)
		require.NoError(t, err)
		tier, err := p.FreeTier(h)
		require.NoError(t, err)
		require.Equal(t, types.TierL1, tier)
	}
	require.Equal(t, uint64(50), p.Stats().L1Hits)
}

func TestFree_L1EvictionFallsBackToL2(t *testing.T) {
	p := newTestPool(t)

	var hs []Handle
	for i := 0; i < 17; i++ { // one more than L1 holds
		h, err := p.Alloc(vectT)
		require.NoError(t, err)
		hs = append(hs, h)
	}

	// The oldest L1 entry was replaced by the 17th insert.
	tier, err := p.FreeTier(hs[0])
	require.NoError(t, err)
	require.Equal(t, types.TierL2, tier)

	tier, err = p.FreeTier(hs[16])
	require.NoError(t, err)
	require.Equal(t, types.TierL1, tier)

	s := p.Stats()
	require.Equal(t, uint64(1), s.L1Misses)
	require.Equal(t, uint64(1), s.L2Hits)
}

func TestFree_ScanWhenBothCachesMiss(t *testing.T) {
	cfg := smallConfig(64, 2)
	cfg.L1Size = 1
	cfg.L2Size = 1
	p := newTestPool(t, WithConfig(cfg))

	a, err := p.Alloc(vectT)
	require.NoError(t, err)
	_, err = p.Alloc(vectT)
	require.NoError(t, err)

	tier, err := p.FreeTier(a)
	require.NoError(t, err)
	require.Equal(t, types.TierScan, tier)
	require.Equal(t, uint64(1), p.Stats().Scans)
}

func TestFree_StaleL1EntryRecovers(t *testing.T) {
	p := newTestPool(t)
	a, err := p.Alloc(vectT)
	require.NoError(t, err)

	// Release the slot behind L1's back.
	_, _, err = p.pages[0].Free(a.Hash, a.Object)
	require.NoError(t, err)
	require.ErrorContains(t, verify.L1(p.Snapshot()), "does not hold it")

	err = p.Free(a)
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, uint64(1), p.Stats().L1Stale)

	// Stale entry is gone; the allocator keeps working.
	b, err := p.Alloc(vectT)
	require.NoError(t, err)
	tier, err := p.FreeTier(b)
	require.NoError(t, err)
	require.Equal(t, types.TierL1, tier)
	requireInvariants(t, p)
}

func TestFree_ZigzagFindsLastPage(t *testing.T) {
	cfg := smallConfig(4, 8)
	cfg.L1Size = 1
	p := newTestPool(t, WithConfig(cfg))

	var hs []Handle
	for i := 0; i < 20; i++ {
		h, err := p.Alloc(vectT)
		require.NoError(t, err)
		hs = append(hs, h)
	}
	require.Equal(t, 5, p.PageCount())

	// hs[16] sits on page 4, the second page zigzag visits.
	require.Equal(t, 4, hs[16].Loc().Page())
	tier, err := p.FreeTier(hs[16])
	require.NoError(t, err)
	require.Equal(t, types.TierL2, tier)
	requireInvariants(t, p)
}

func TestZigzag(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{0, nil},
		{1, []int{0}},
		{2, []int{0, 1}},
		{4, []int{0, 3, 1, 2}},
		{5, []int{0, 4, 1, 3, 2}},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, slices.Collect(zigzag(tt.n)), "n=%d", tt.n)
	}

	// Early termination.
	var got []int
	for i := range zigzag(10) {
		got = append(got, i)
		if len(got) == 3 {
			break
		}
	}
	require.Equal(t, []int{0, 9, 1}, got)
}

func TestAlloc_DiversityOverflowSpillsToNextPage(t *testing.T) {
	cfg := smallConfig(8, 4)
	cfg.Diversity = 2
	p := newTestPool(t, WithConfig(cfg))

	a, err := p.Alloc(vectT)
	require.NoError(t, err)
	b, err := p.Alloc(objectT)
	require.NoError(t, err)
	c, err := p.Alloc(strT)
	require.NoError(t, err)

	require.Equal(t, 0, a.Loc().Page())
	require.Equal(t, 0, b.Loc().Page())
	require.Equal(t, 1, c.Loc().Page(), "third type must spill, not alias")
	require.IsType(t, &Str{}, c.Object)

	snap := p.Snapshot()
	require.Equal(t, []string{"pool.Vect", "pool.Object"}, snap.Pages[0].Types)
	require.Equal(t, []string{"pool.Str"}, snap.Pages[1].Types)
	requireInvariants(t, p)
}

func TestAlloc_TypeTableFullEverywhere(t *testing.T) {
	cfg := smallConfig(8, 1)
	cfg.Diversity = 1
	p := newTestPool(t, WithConfig(cfg))

	_, err := p.Alloc(vectT)
	require.NoError(t, err)

	_, err = p.Alloc(objectT)
	require.ErrorIs(t, err, ErrOutOfPages)
	require.ErrorIs(t, err, ErrTypeTableFull)
	require.Equal(t, 1, p.InUse())
	requireInvariants(t, p)
}

func TestAlloc_CapacityBound(t *testing.T) {
	p := newTestPool(t, WithConfig(smallConfig(16, 4)))
	capacity := p.Config().Capacity()

	for i := 0; i < capacity; i++ {
		_, err := p.Alloc(vectT)
		require.NoError(t, err, "alloc %d", i)
	}
	_, err := p.Alloc(vectT)
	require.ErrorIs(t, err, ErrOutOfPages)
	require.NotErrorIs(t, err, ErrTypeTableFull)

	require.Equal(t, capacity, p.InUse())
	for _, ps := range p.Snapshot().Pages {
		require.LessOrEqual(t, ps.InUse, ps.Capacity)
	}
	require.Equal(t, uint64(1), p.Stats().AllocFails)
	requireInvariants(t, p)
}

func TestAlloc_ConstructionError(t *testing.T) {
	p, err := New(factory.NewRegistry(nil))
	require.NoError(t, err)

	_, err = p.Alloc(vectT)
	require.ErrorIs(t, err, ErrConstruction)
	require.ErrorIs(t, err, factory.ErrNoDefaultConstructor)
	require.Zero(t, p.InUse())
	requireInvariants(t, p)

	_, err = p.Alloc(nil)
	require.ErrorIs(t, err, ErrConstruction)
}

func TestAllocT(t *testing.T) {
	p := newTestPool(t)

	v, h, err := AllocT[*Vect](p)
	require.NoError(t, err)
	require.Same(t, v, h.Object.(*Vect))
	v.X = 10
	require.NoError(t, p.Free(h))

	v2, _, err := AllocT[*Vect](p)
	require.NoError(t, err)
	require.Same(t, v, v2)
	require.Equal(t, 10, v2.X, "instances are not cleared unless ResetOnReuse is set")
}

func TestAllocT_WrongType(t *testing.T) {
	f := factory.Func(func(reflect.Type) (any, error) { return &Object{}, nil })
	p, err := New(f)
	require.NoError(t, err)

	_, _, err = AllocT[*Vect](p)
	require.ErrorIs(t, err, ErrConstruction)
	require.Zero(t, p.InUse())
	requireInvariants(t, p)
}

func TestRollback_JoinsFreeError(t *testing.T) {
	p := newTestPool(t)
	cause := types.Errorf(types.ErrKindConstruction, nil, "wrong type")

	err := p.rollback(Handle{Hash: 42}, cause)
	require.ErrorIs(t, err, ErrConstruction)
	require.ErrorIs(t, err, ErrNotFound)

	h, err := p.Alloc(vectT)
	require.NoError(t, err)
	require.Same(t, cause, p.rollback(h, cause))
	require.Zero(t, p.InUse())
}

func TestFreeAll(t *testing.T) {
	p := newTestPool(t)
	a, err := p.Alloc(vectT)
	require.NoError(t, err)
	b, err := p.Alloc(objectT)
	require.NoError(t, err)

	require.NoError(t, p.FreeAll(a, b))
	require.Zero(t, p.InUse())

	err = p.FreeAll(a, b)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), "2 errors occurred")
}

func TestFreeObject(t *testing.T) {
	p := newTestPool(t)
	h, err := p.Alloc(vectT)
	require.NoError(t, err)
	require.NoError(t, p.FreeObject(h.Object))
	require.Zero(t, p.InUse())
}

type keyed struct{ key string }

func (k *keyed) PoolKey() []byte { return []byte(k.key) }

func TestCustomHasher(t *testing.T) {
	var next int
	names := []string{"alpha", "beta"}
	f := factory.Func(func(reflect.Type) (any, error) {
		k := &keyed{key: names[next%len(names)]}
		next++
		return k, nil
	})
	calls := 0
	hasher := func(obj any) (uint64, error) {
		calls++
		return ident.Hash(obj)
	}
	p, err := New(f, WithHasher(hasher))
	require.NoError(t, err)

	a, err := p.Alloc(reflect.TypeFor[keyed]())
	require.NoError(t, err)
	require.Equal(t, ident.String("alpha"), a.Hash)
	require.Equal(t, 1, calls)

	require.NoError(t, p.FreeObject(&keyed{key: "alpha"}), "keyed values free by key")
	require.Zero(t, p.InUse())
}

type tagged struct{ ID int }

func (t *tagged) PoolKey() []byte { return []byte{byte(t.ID)} }

func TestFree_CollidingKeysNeverAlias(t *testing.T) {
	p := newTestPool(t)
	tt := reflect.TypeFor[tagged]()

	a, err := p.Alloc(tt)
	require.NoError(t, err)
	b, err := p.Alloc(tt)
	require.NoError(t, err)
	require.Equal(t, a.Hash, b.Hash)
	require.NotSame(t, a.Object.(*tagged), b.Object.(*tagged))

	// L1 and L2 both point at b; freeing a must still release a.
	tier, err := p.FreeTier(a)
	require.NoError(t, err)
	require.Equal(t, types.TierScan, tier)
	require.Equal(t, uint64(1), p.Stats().L1Stale)

	c, err := p.Alloc(tt)
	require.NoError(t, err)
	require.True(t, c.Reused())
	require.Same(t, a.Object.(*tagged), c.Object.(*tagged))
	require.NotSame(t, b.Object.(*tagged), c.Object.(*tagged))

	snap := p.Snapshot()
	require.NoError(t, verify.AllInvariants(snap))
	require.Error(t, verify.UniqueHashes(snap))

	require.NoError(t, p.Free(b))
	require.ErrorIs(t, p.Free(b), ErrNotFound)
	require.NoError(t, p.Free(c))
	require.Zero(t, p.InUse())
	require.NoError(t, verify.AllInvariants(p.Snapshot()))
}

func TestLRUPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.L1Policy = cache.PolicyLRU
	cfg.L2Policy = cache.PolicyLRU
	p := newTestPool(t, WithConfig(cfg))

	var hs []Handle
	for i := 0; i < 40; i++ {
		h, err := p.Alloc(vectT)
		require.NoError(t, err)
		hs = append(hs, h)
	}
	for _, h := range hs {
		require.NoError(t, p.Free(h))
	}
	require.Zero(t, p.InUse())
	snap := p.Snapshot()
	require.Equal(t, "lru", snap.L1Policy)
	require.Equal(t, "lru", snap.Pages[0].L2Policy)
	requireInvariants(t, p)
}

func TestScenario_VectsThenObject(t *testing.T) {
	p := newTestPool(t)

	for i := 0; i < 8000; i++ {
		v, _, err := AllocT[*Vect](p)
		require.NoError(t, err)
		v.Y = 10
	}

	obj, err := p.Alloc(objectT)
	require.NoError(t, err)
	require.Equal(t, 8001, p.InUse())
	require.GreaterOrEqual(t, p.PageCount(), 16)

	snap := p.Snapshot()
	for _, ps := range snap.Pages {
		require.LessOrEqual(t, ps.InUse, 512)
	}
	require.NoError(t, verify.AllInvariants(snap))

	tier, err := p.FreeTier(obj)
	require.NoError(t, err)
	assert.Equal(t, types.TierL1, tier)
	require.Equal(t, 8000, p.InUse())
}

func TestSynchronized_ConcurrentAllocFree(t *testing.T) {
	cfg := smallConfig(64, 16)
	cfg.Synchronized = true
	p := newTestPool(t, WithConfig(cfg))

	const workers, rounds = 8, 200
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			typ := vectT
			if w%2 == 1 {
				typ = objectT
			}
			held := make([]Handle, 0, 8)
			for i := 0; i < rounds; i++ {
				h, err := p.Alloc(typ)
				if err != nil {
					errs <- err
					return
				}
				held = append(held, h)
				if len(held) == cap(held) {
					if err := p.FreeAll(held...); err != nil {
						errs <- err
						return
					}
					held = held[:0]
				}
			}
			if err := p.FreeAll(held...); err != nil {
				errs <- err
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Zero(t, p.InUse())
	require.Equal(t, uint64(workers*rounds), p.Stats().Frees)
	requireInvariants(t, p)
}

func TestLogAlloc(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := smallConfig(4, 2)
	cfg.LogAlloc = true
	p := newTestPool(t, WithConfig(cfg), WithLogger(log))

	h, err := p.Alloc(vectT)
	require.NoError(t, err)
	require.NoError(t, p.Free(h))
	require.Error(t, p.Free(h))

	out := buf.String()
	require.Contains(t, out, "created page")
	require.Contains(t, out, "created diversity")
	require.Contains(t, out, "force freed")
	require.Contains(t, out, "cachefault")
	require.Contains(t, out, "free failed")
}

func TestLogAlloc_OffByDefault(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := newTestPool(t, WithLogger(log))
	_, err := p.Alloc(vectT)
	require.NoError(t, err)
	require.Zero(t, buf.Len())
}

func TestDump(t *testing.T) {
	p := newTestPool(t)
	h, err := p.Alloc(vectT)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, p.Dump(&buf, printer.DefaultOptions()))
	require.Contains(t, buf.String(), "===== PAGE 0 =====")
	require.Contains(t, buf.String(), "pool.Vect")

	buf.Reset()
	require.NoError(t, p.DumpL1(&buf, printer.DefaultOptions()))
	require.Contains(t, buf.String(), "L1 cache (aging): 1/16 entries")

	buf.Reset()
	require.NoError(t, p.DumpL2(&buf, 0, printer.DefaultOptions()))
	require.Contains(t, buf.String(), "L2 cache (aging): 1/32 entries")

	buf.Reset()
	require.NoError(t, p.DumpPage(&buf, 0, printer.DefaultOptions()))
	require.Contains(t, buf.String(), "Page 0: 1/512 in use")

	require.Error(t, p.DumpPage(&buf, 1, printer.DefaultOptions()))
	require.NoError(t, p.Free(h))
}

func TestHandle(t *testing.T) {
	require.True(t, Handle{}.IsZero())

	p := newTestPool(t)
	h, err := p.Alloc(vectT)
	require.NoError(t, err)
	require.False(t, h.IsZero())
	require.False(t, h.Reused())
	var loc Loc = h.Loc()
	require.Equal(t, 0, loc.Page())
	require.Equal(t, 0, loc.Slot())
}

func TestErrorsAreTyped(t *testing.T) {
	p := newTestPool(t)
	err := p.Free(Handle{Hash: 42})

	var te *types.Error
	require.True(t, errors.As(err, &te))
	require.Equal(t, types.ErrKindNotFound, te.Kind)
}
