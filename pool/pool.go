package pool

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"reflect"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/joshuapare/objpool/internal/format"
	"github.com/joshuapare/objpool/internal/logger"
	"github.com/joshuapare/objpool/pkg/types"
	"github.com/joshuapare/objpool/pool/cache"
	"github.com/joshuapare/objpool/pool/factory"
	"github.com/joshuapare/objpool/pool/ident"
	"github.com/joshuapare/objpool/pool/page"
)

// Pool is a registry of pages plus the global L1 location cache.
type Pool struct {
	mu sync.Locker

	cfg     Config
	factory factory.Factory
	hash    ident.Func
	log     *slog.Logger

	pages []*page.Page // fixed length PageCount; [0, count) initialized
	count int
	l1    cache.LocationCache

	stats counters
}

// Option configures a Pool.
type Option func(*Pool)

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(p *Pool) { p.cfg = cfg }
}

// WithHasher replaces ident.Hash as the content hash function.
func WithHasher(h ident.Func) Option {
	return func(p *Pool) { p.hash = h }
}

// WithLogger sets the logger used when Config.LogAlloc is on.
// Default: the process logger from internal/logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) { p.log = l }
}

// New creates an empty pool. A nil factory means factory.Reflect.
func New(f factory.Factory, opts ...Option) (*Pool, error) {
	if f == nil {
		f = factory.Reflect{}
	}
	p := &Pool{
		cfg:     DefaultConfig(),
		factory: f,
		hash:    ident.Hash,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}

	l1, err := cache.NewLocationCache(p.cfg.L1Policy, p.cfg.L1Size)
	if err != nil {
		return nil, types.Errorf(types.ErrKindConfig, err, "pool: l1 cache")
	}
	p.l1 = l1
	p.pages = make([]*page.Page, p.cfg.PageCount)

	p.mu = noLock{}
	if p.cfg.Synchronized {
		p.mu = &sync.Mutex{}
	}
	if !p.cfg.LogAlloc {
		p.log = nil
	} else if p.log == nil {
		p.log = logger.L
	}
	return p, nil
}

// Config returns the pool's configuration.
func (p *Pool) Config() Config { return p.cfg }

// Alloc returns an instance of t, reusing a freed one when possible.
//
// Errors: ErrOutOfPages (also matching ErrTypeTableFull when type tables
// were the reason pages were skipped) and ErrConstruction. A failed Alloc
// leaves every slot and cache untouched.
func (p *Pool) Alloc(t reflect.Type) (Handle, error) {
	if t == nil {
		p.stats.allocFails.Add(1)
		return Handle{}, types.Errorf(types.ErrKindConstruction, nil, "pool: nil type")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	typeFull := false
	for i := range p.pages {
		pg := p.pages[i]
		if pg == nil {
			var err error
			if pg, err = p.grow(i); err != nil {
				p.stats.allocFails.Add(1)
				return Handle{}, err
			}
		}
		if pg.Full() {
			continue
		}

		res, err := pg.Alloc(t)
		switch {
		case err == nil:
			return p.commit(i, res), nil
		case errors.Is(err, types.ErrPageFull):
			continue
		case errors.Is(err, types.ErrTypeTableFull):
			typeFull = true
			continue
		default:
			p.stats.allocFails.Add(1)
			return Handle{}, err
		}
	}

	p.stats.allocFails.Add(1)
	p.trace("out of pages", "type", t, "pages", p.count)
	if typeFull {
		return Handle{}, types.Errorf(types.ErrKindOutOfPages, types.ErrTypeTableFull,
			fmt.Sprintf("pool: out of pages for %s", t))
	}
	return Handle{}, types.Errorf(types.ErrKindOutOfPages, nil,
		fmt.Sprintf("pool: out of pages for %s", t))
}

// AllocT allocates an instance whose type descriptor is T itself. With the
// reflection factory T is usually a pointer type such as *Vect.
func AllocT[T any](p *Pool) (T, Handle, error) {
	var zero T
	h, err := p.Alloc(reflect.TypeFor[T]())
	if err != nil {
		return zero, Handle{}, err
	}
	obj, ok := h.Object.(T)
	if !ok {
		// Factory built the wrong type; give the slot back.
		return zero, Handle{}, p.rollback(h, types.Errorf(types.ErrKindConstruction, nil,
			fmt.Sprintf("pool: factory returned %T for %s", h.Object, reflect.TypeFor[T]())))
	}
	return obj, h, nil
}

// rollback frees h after a failed typed allocation and returns cause joined
// with any free error.
func (p *Pool) rollback(h Handle, cause error) error {
	if err := p.Free(h); err != nil {
		p.trace("rollback failed", "hash", h.Hash, "err", err)
		return errors.Join(cause, err)
	}
	return cause
}

// grow initializes page i. Pages are only ever created at index count.
func (p *Pool) grow(i int) (*page.Page, error) {
	pg, err := page.New(i, page.Config{
		Size:         p.cfg.PageSize,
		Diversity:    p.cfg.Diversity,
		L2Size:       p.cfg.L2Size,
		L2Policy:     p.cfg.L2Policy,
		ResetOnReuse: p.cfg.ResetOnReuse,
		Synchronized: p.cfg.Synchronized,
		Log:          p.log,
	}, p.factory, p.hash)
	if err != nil {
		return nil, err
	}
	p.pages[i] = pg
	p.count++
	p.trace("created page", "page", i)
	return pg, nil
}

func (p *Pool) commit(i int, res page.Result) Handle {
	loc := format.MustPackLoc(i, res.Slot)
	if victim, evicted := p.l1.Insert(res.Hash, loc); evicted {
		p.trace("l1 replaced oldest", "hash", victim.Key, "age", victim.Age)
	}

	p.stats.allocs.Add(1)
	if res.Reused {
		p.stats.reuses.Add(1)
	} else {
		p.stats.constructs.Add(1)
	}
	return Handle{Object: res.Obj, Hash: res.Hash, loc: loc, reused: res.Reused}
}

// Free returns h's instance to the pool. Every lookup tier confirms the slot
// holds h.Object itself, so instances whose hashes collide are never
// released in each other's place. A second Free of the same handle yields
// ErrNotFound.
func (p *Pool) Free(h Handle) error {
	_, err := p.free(h.Hash, h.Object)
	return err
}

// FreeTier is Free that also reports which lookup found the instance.
func (p *Pool) FreeTier(h Handle) (types.FreeTier, error) {
	return p.free(h.Hash, h.Object)
}

// FreeObject frees the allocated instance whose content hash equals obj's.
// For ident.Keyed values this is a free by key: any live instance carrying
// the key may be released. Use Free when keys can collide.
func (p *Pool) FreeObject(obj any) error {
	h, err := p.hash(obj)
	if err != nil {
		p.stats.notFound.Add(1)
		return types.Errorf(types.ErrKindNotFound, err, "pool: free")
	}
	_, err = p.free(h, nil)
	return err
}

// FreeAll frees every handle and reports all failures together.
func (p *Pool) FreeAll(hs ...Handle) error {
	var result *multierror.Error
	for _, h := range hs {
		if _, err := p.free(h.Hash, h.Object); err != nil {
			result = multierror.Append(result, fmt.Errorf("free %#x: %w", h.Hash, err))
		}
	}
	return result.ErrorOrNil()
}

// free locates the used slot holding hash and, when obj is non-nil, obj
// itself.
func (p *Pool) free(hash uint64, obj any) (types.FreeTier, error) {
	p.mu.Lock()
	loc, hit := p.l1.Evict(hash)
	pages := p.pages[:p.count]
	p.mu.Unlock()

	if hit {
		if loc.Page() < len(pages) {
			err := pages[loc.Page()].ForceFree(loc.Slot(), hash, obj)
			if err == nil {
				p.stats.l1Hits.Add(1)
				p.stats.frees.Add(1)
				return types.TierL1, nil
			}
			p.trace("l1 entry stale", "loc", loc, "err", err)
		}
		p.stats.l1Stale.Add(1)
	} else {
		p.stats.l1Misses.Add(1)
	}

	for i := range zigzag(len(pages)) {
		_, tier, err := pages[i].Free(hash, obj)
		if err != nil {
			continue
		}
		if tier == types.TierL2 {
			p.stats.l2Hits.Add(1)
		} else {
			p.stats.scans.Add(1)
		}
		p.stats.frees.Add(1)
		return tier, nil
	}

	p.stats.notFound.Add(1)
	p.trace("free failed", "hash", hash)
	return types.TierNone, types.Errorf(types.ErrKindNotFound, nil,
		fmt.Sprintf("pool: object %#x not found", hash))
}

// zigzag yields 0, n-1, 1, n-2, ... covering [0, n) once.
func zigzag(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		lo, hi := 0, n-1
		for lo <= hi {
			if !yield(lo) {
				return
			}
			lo++
			if lo > hi {
				return
			}
			if !yield(hi) {
				return
			}
			hi--
		}
	}
}

// PageCount returns the number of initialized pages.
func (p *Pool) PageCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// InUse returns the number of allocated instances across all pages.
func (p *Pool) InUse() int {
	p.mu.Lock()
	pages := p.pages[:p.count]
	p.mu.Unlock()

	n := 0
	for _, pg := range pages {
		n += pg.InUse()
	}
	return n
}

func (p *Pool) trace(msg string, args ...any) {
	if p.log != nil {
		p.log.Debug(msg, args...)
	}
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}
