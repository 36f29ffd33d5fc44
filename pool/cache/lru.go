package cache

import (
	"fmt"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// lruTable delegates ordering to simplelru. Re-inserting a key refreshes it.
type lruTable[V any] struct {
	lru      *simplelru.LRU[uint64, V]
	capacity int
}

func newLRU[V any](capacity int) (*lruTable[V], error) {
	l, err := simplelru.NewLRU[uint64, V](capacity, nil)
	if err != nil {
		return nil, fmt.Errorf("cache: lru: %w", err)
	}
	return &lruTable[V]{lru: l, capacity: capacity}, nil
}

func (t *lruTable[V]) Insert(key uint64, v V) (Entry[V], bool) {
	var victim Entry[V]
	full := t.lru.Len() >= t.capacity && !t.lru.Contains(key)
	if full {
		if k, old, ok := t.lru.GetOldest(); ok {
			victim = Entry[V]{Key: k, Value: old, Age: uint64(t.lru.Len() - 1), Used: true}
		}
	}
	t.lru.Add(key, v)
	return victim, full
}

func (t *lruTable[V]) Evict(key uint64) (V, bool) {
	v, ok := t.lru.Peek(key)
	if ok {
		t.lru.Remove(key)
	}
	return v, ok
}

func (t *lruTable[V]) Len() int { return t.lru.Len() }

func (t *lruTable[V]) Cap() int { return t.capacity }

func (t *lruTable[V]) Entries() []Entry[V] {
	keys := t.lru.Keys() // oldest to newest
	out := make([]Entry[V], 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		v, _ := t.lru.Peek(keys[i])
		out = append(out, Entry[V]{
			Key:   keys[i],
			Value: v,
			Age:   uint64(len(keys) - 1 - i),
			Used:  true,
		})
	}
	return out
}

func (t *lruTable[V]) Reset() { t.lru.Purge() }
