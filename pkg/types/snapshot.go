package types

// CacheEntry is one position of an L1 or L2 table. For L2 entries Page is the
// owning page.
type CacheEntry struct {
	Position int    `json:"position"`
	Hash     uint64 `json:"hash"`
	Page     int    `json:"page"`
	Slot     int    `json:"slot"`
	Age      uint64 `json:"age"`
	Used     bool   `json:"used"`
}

// SlotInfo describes a populated slot. Slots that never held an instance are
// omitted from snapshots.
type SlotInfo struct {
	Index int    `json:"index"`
	Used  bool   `json:"used"`
	Tag   int    `json:"tag"`
	Hash  uint64 `json:"hash"`
	Type  string `json:"type"`
}

// PageSnapshot is a read-only copy of one page.
type PageSnapshot struct {
	Index        int          `json:"index"`
	Capacity     int          `json:"capacity"`
	InUse        int          `json:"in_use"`
	Diversity    int          `json:"diversity"`
	DiversityCap int          `json:"diversity_cap"`
	Types        []string     `json:"types"`
	Slots        []SlotInfo   `json:"slots"`
	L2Policy     string       `json:"l2_policy"`
	L2Cap        int          `json:"l2_cap"`
	L2           []CacheEntry `json:"l2"`
}

// PoolSnapshot is a read-only copy of a pool.
type PoolSnapshot struct {
	Limits    Limits         `json:"limits"`
	PageCount int            `json:"page_count"`
	Pages     []PageSnapshot `json:"pages"`
	L1Policy  string         `json:"l1_policy"`
	L1        []CacheEntry   `json:"l1"`
	Stats     Stats          `json:"stats"`
}
