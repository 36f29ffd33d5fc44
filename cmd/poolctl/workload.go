package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"

	"github.com/joshuapare/objpool/pool"
)

// churn keeps up to live objects allocated, freeing a random one whenever
// the set is full or the pool runs out of pages.
type churn struct {
	p       *pool.Pool
	rng     *rand.Rand
	live    []pool.Handle
	maxLive int
	mix     []reflect.Type
}

func newChurn(p *pool.Pool, maxLive int, seed uint64) *churn {
	return &churn{
		p:       p,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		live:    make([]pool.Handle, 0, maxLive),
		maxLive: maxLive,
		mix:     []reflect.Type{vectT, vectT, vectT, vectT, objectT, strT},
	}
}

// step performs one allocation, preceded by a free when needed.
func (c *churn) step() error {
	if len(c.live) >= c.maxLive {
		if err := c.freeOne(); err != nil {
			return err
		}
	}
	t := c.mix[c.rng.IntN(len(c.mix))]
	h, err := c.p.Alloc(t)
	if errors.Is(err, pool.ErrOutOfPages) && len(c.live) > 0 {
		if err := c.freeOne(); err != nil {
			return err
		}
		h, err = c.p.Alloc(t)
	}
	if err != nil {
		return fmt.Errorf("alloc %s: %w", t, err)
	}
	c.live = append(c.live, h)
	return nil
}

func (c *churn) freeOne() error {
	i := c.rng.IntN(len(c.live))
	h := c.live[i]
	last := len(c.live) - 1
	c.live[i] = c.live[last]
	c.live = c.live[:last]
	if err := c.p.Free(h); err != nil {
		return fmt.Errorf("free %#x: %w", h.Hash, err)
	}
	return nil
}

// drain frees everything still live.
func (c *churn) drain() error {
	err := c.p.FreeAll(c.live...)
	c.live = c.live[:0]
	return err
}
