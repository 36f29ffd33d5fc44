// Package cache implements the fixed-capacity hash-to-location tables that
// accelerate pool frees: the per-page slot cache (L2) and the global location
// cache (L1).
//
// Both levels share the Table interface so the eviction policy can be swapped
// without touching page or pool logic. Two policies are provided:
//
//   - PolicyAging: approximate LRU. Every insert ages all live entries by one
//     and a full table overwrites the oldest entry. Lookups never refresh an
//     entry, so eviction order approximates insertion order.
//   - PolicyLRU: true least-recently-used ordering backed by
//     github.com/hashicorp/golang-lru/v2.
//
// Tables are not safe for concurrent use; the owning page or pool guards them.
package cache

import (
	"errors"
	"fmt"

	"github.com/joshuapare/objpool/internal/format"
)

// Policy selects the eviction policy of a table.
type Policy string

const (
	// PolicyAging ages entries on insertion only (approximate LRU).
	PolicyAging Policy = "aging"

	// PolicyLRU evicts the least recently inserted or refreshed entry.
	PolicyLRU Policy = "lru"
)

// ErrBadCapacity indicates a table capacity below one.
var ErrBadCapacity = errors.New("cache: capacity must be at least 1")

// ErrUnknownPolicy indicates an unrecognized Policy value.
var ErrUnknownPolicy = errors.New("cache: unknown policy")

// Entry is a point-in-time view of one table entry.
type Entry[V any] struct {
	Key   uint64 // content hash
	Value V
	Age   uint64 // synthetic age; 0 is the newest entry
	Used  bool   // false for an empty position
}

// Table maps content hashes to locations with bounded capacity.
type Table[V any] interface {
	// Insert records key -> v. An existing entry for key is updated in place.
	// When the table is full the policy's victim is overwritten and returned.
	Insert(key uint64, v V) (victim Entry[V], evicted bool)

	// Evict removes key and returns its value.
	Evict(key uint64) (V, bool)

	// Len returns the number of live entries.
	Len() int

	// Cap returns the fixed capacity.
	Cap() int

	// Entries returns a snapshot of the table. Aging tables report every
	// position (including empty ones) in storage order; LRU tables report
	// live entries from newest to oldest.
	Entries() []Entry[V]

	// Reset drops every entry.
	Reset()
}

// SlotCache is the per-page L2 table: content hash -> slot index.
type SlotCache = Table[uint16]

// LocationCache is the global L1 table: content hash -> packed (page, slot).
type LocationCache = Table[format.Loc]

// New creates a table with the given policy and capacity.
func New[V any](p Policy, capacity int) (Table[V], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadCapacity, capacity)
	}
	switch p {
	case PolicyAging, "":
		return newAging[V](capacity), nil
	case PolicyLRU:
		return newLRU[V](capacity)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, string(p))
	}
}

// NewSlotCache creates an L2 slot cache.
func NewSlotCache(p Policy, capacity int) (SlotCache, error) {
	return New[uint16](p, capacity)
}

// NewLocationCache creates an L1 location cache.
func NewLocationCache(p Policy, capacity int) (LocationCache, error) {
	return New[format.Loc](p, capacity)
}

// ParsePolicy converts a configuration string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyAging, PolicyLRU:
		return Policy(s), nil
	case "":
		return PolicyAging, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}
