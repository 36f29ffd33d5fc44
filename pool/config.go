package pool

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/joshuapare/objpool/internal/format"
	"github.com/joshuapare/objpool/pkg/types"
	"github.com/joshuapare/objpool/pool/cache"
)

// EnvPrefix prefixes every environment variable read by ConfigFromEnv,
// e.g. OBJPOOL_PAGE_SIZE or OBJPOOL_L1_POLICY.
const EnvPrefix = "OBJPOOL"

// Config controls pool capacities and behavior.
type Config struct {
	types.Limits

	// L1Policy and L2Policy select the eviction policy of each cache level.
	L1Policy cache.Policy `envconfig:"L1_POLICY"`
	L2Policy cache.Policy `envconfig:"L2_POLICY"`

	// Synchronized makes the pool safe for concurrent use.
	Synchronized bool `envconfig:"SYNCHRONIZED"`

	// LogAlloc traces every page and cache decision at debug level.
	LogAlloc bool `envconfig:"LOG_ALLOC"`

	// ResetOnReuse calls Reset() on page.Resetter instances handed out again.
	ResetOnReuse bool `envconfig:"RESET_ON_REUSE"`
}

// DefaultConfig returns the standard capacities: 256 pages of 512 slots,
// 31 types per page, a 16-entry L1 and 32-entry L2 caches with aging.
func DefaultConfig() Config {
	return Config{
		Limits: types.Limits{
			PageSize:  format.DefaultPageSize,
			PageCount: format.DefaultPageCount,
			Diversity: format.DefaultDiversity,
			L1Size:    format.DefaultL1Size,
			L2Size:    format.DefaultL2Size,
		},
		L1Policy: cache.PolicyAging,
		L2Policy: cache.PolicyAging,
	}
}

// ConfigFromEnv starts from DefaultConfig and applies OBJPOOL_* variables.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, types.Errorf(types.ErrKindConfig, err, "pool: environment")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks capacities against the packed location bounds.
func (c Config) Validate() error {
	bad := func(msg string, args ...any) error {
		return types.Errorf(types.ErrKindConfig, nil, "pool: "+fmt.Sprintf(msg, args...))
	}

	switch {
	case c.PageSize < 1 || c.PageSize > format.MaxPageSize:
		return bad("page size %d out of range [1, %d]", c.PageSize, format.MaxPageSize)
	case c.PageCount < 1 || c.PageCount > format.MaxPageCount:
		return bad("page count %d out of range [1, %d]", c.PageCount, format.MaxPageCount)
	case c.Diversity < 1 || c.Diversity > format.MaxDiversity:
		return bad("diversity %d out of range [1, %d]", c.Diversity, format.MaxDiversity)
	case c.L1Size < 1:
		return bad("l1 size %d must be positive", c.L1Size)
	case c.L2Size < 1:
		return bad("l2 size %d must be positive", c.L2Size)
	}
	for _, p := range []cache.Policy{c.L1Policy, c.L2Policy} {
		if _, err := cache.ParsePolicy(string(p)); err != nil {
			return types.Errorf(types.ErrKindConfig, err, "pool: policy")
		}
	}
	return nil
}
