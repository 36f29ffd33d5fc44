package types

// Limits fixes the capacities of a pool. Every buffer is allocated once at
// these sizes and never resized.
type Limits struct {
	// PageSize is the number of object slots per page.
	PageSize int `envconfig:"PAGE_SIZE"`

	// PageCount is the maximum number of pages.
	PageCount int `envconfig:"PAGE_COUNT"`

	// Diversity is the number of distinct types one page can hold.
	Diversity int `envconfig:"DIVERSITY"`

	// L1Size is the capacity of the global location cache.
	L1Size int `envconfig:"L1_SIZE"`

	// L2Size is the capacity of each page's slot cache.
	L2Size int `envconfig:"L2_SIZE"`
}

// Capacity returns the total number of slots across all pages.
func (l Limits) Capacity() int { return l.PageSize * l.PageCount }
