package cache

// agingTable is the approximate-LRU table. Positions are scanned linearly;
// capacities are small enough that this beats any indexed structure.
type agingTable[V any] struct {
	entries []Entry[V]
	live    int
}

func newAging[V any](capacity int) *agingTable[V] {
	return &agingTable[V]{entries: make([]Entry[V], capacity)}
}

func (t *agingTable[V]) Insert(key uint64, v V) (Entry[V], bool) {
	existing := -1
	for i := range t.entries {
		e := &t.entries[i]
		if !e.Used {
			continue
		}
		e.Age++
		if e.Key == key {
			existing = i
		}
	}

	if existing >= 0 {
		e := &t.entries[existing]
		e.Value = v
		e.Age = 0
		return Entry[V]{}, false
	}

	// First empty position wins; otherwise the first entry holding the
	// maximum age is the victim.
	victim := 0
	var oldest uint64
	for i := range t.entries {
		e := &t.entries[i]
		if !e.Used {
			*e = Entry[V]{Key: key, Value: v, Used: true}
			t.live++
			return Entry[V]{}, false
		}
		if e.Age > oldest {
			oldest = e.Age
			victim = i
		}
	}

	old := t.entries[victim]
	t.entries[victim] = Entry[V]{Key: key, Value: v, Used: true}
	return old, true
}

func (t *agingTable[V]) Evict(key uint64) (V, bool) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.Used && e.Key == key {
			v := e.Value
			*e = Entry[V]{}
			t.live--
			return v, true
		}
	}
	var zero V
	return zero, false
}

func (t *agingTable[V]) Len() int { return t.live }

func (t *agingTable[V]) Cap() int { return len(t.entries) }

func (t *agingTable[V]) Entries() []Entry[V] {
	out := make([]Entry[V], len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *agingTable[V]) Reset() {
	clear(t.entries)
	t.live = 0
}
