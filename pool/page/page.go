// Package page implements one fixed-capacity page of pooled objects.
//
// A page owns PageSize slots. Each slot holds at most one instance, a
// diversity tag naming which of the page's types the instance belongs to, and
// an in-use bit. Instances are built once through the factory and then cycle
// between used and free forever; freeing never drops the instance.
//
// Each page owns an L2 slot cache mapping content hash to slot index so that
// frees of recently allocated objects avoid a linear scan.
package page

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"golang.org/x/sys/cpu"

	"github.com/joshuapare/objpool/pkg/types"
	"github.com/joshuapare/objpool/pool/cache"
	"github.com/joshuapare/objpool/pool/factory"
	"github.com/joshuapare/objpool/pool/ident"
)

// Resetter is implemented by instances that clear themselves before reuse.
type Resetter interface {
	Reset()
}

// Config carries the page-level part of a pool configuration.
type Config struct {
	Size         int
	Diversity    int
	L2Size       int
	L2Policy     cache.Policy
	ResetOnReuse bool
	Synchronized bool

	// Log receives allocation traces when non-nil.
	Log *slog.Logger
}

type slot struct {
	obj  any
	hash uint64
	tag  uint8
	used bool
}

// Page is a fixed array of slots with a per-page type table and L2 cache.
//
// Unless created with Config.Synchronized, a Page is not safe for concurrent
// use.
type Page struct {
	mu sync.Locker
	_  cpu.CacheLinePad

	index int
	cfg   Config

	types     []reflect.Type // diversity map, filled as a prefix
	diversity int
	slots     []slot
	inUse     int

	l2      cache.SlotCache
	factory factory.Factory
	hash    ident.Func
}

// Result describes a successful allocation.
type Result struct {
	Obj    any
	Hash   uint64
	Slot   int
	Reused bool // instance was recycled rather than constructed
}

// New creates page number index.
func New(index int, cfg Config, f factory.Factory, h ident.Func) (*Page, error) {
	if cfg.Size < 1 || cfg.Diversity < 1 || cfg.Diversity > 0xff {
		return nil, types.Errorf(types.ErrKindConfig, nil,
			fmt.Sprintf("page: size %d diversity %d", cfg.Size, cfg.Diversity))
	}
	l2, err := cache.NewSlotCache(cfg.L2Policy, cfg.L2Size)
	if err != nil {
		return nil, types.Errorf(types.ErrKindConfig, err, "page: l2 cache")
	}
	if h == nil {
		h = ident.Hash
	}

	var mu sync.Locker = noLock{}
	if cfg.Synchronized {
		mu = &sync.Mutex{}
	}

	return &Page{
		mu:      mu,
		index:   index,
		cfg:     cfg,
		types:   make([]reflect.Type, cfg.Diversity),
		slots:   make([]slot, cfg.Size),
		l2:      l2,
		factory: f,
		hash:    h,
	}, nil
}

// Index returns the page's position in its pool.
func (p *Page) Index() int { return p.index }

// Capacity returns the number of slots.
func (p *Page) Capacity() int { return len(p.slots) }

// InUse returns the number of used slots.
func (p *Page) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}

// Full reports whether every slot is in use.
func (p *Page) Full() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse >= len(p.slots)
}

// Diversity returns the number of types registered on the page.
func (p *Page) Diversity() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.diversity
}

func (p *Page) trace(msg string, args ...any) {
	if p.cfg.Log != nil {
		p.cfg.Log.Debug(msg, append([]any{"page", p.index}, args...)...)
	}
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}
