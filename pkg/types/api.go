package types

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindOutOfPages    ErrKind = iota // every page is full
	ErrKindPageFull                     // one page has no eligible slot
	ErrKindConstruction                 // factory could not produce an instance
	ErrKindTypeTableFull                // diversity map exhausted
	ErrKindNotFound                     // handle is not currently allocated
	ErrKindAlreadyFree                  // slot is already free
	ErrKindStale                        // cached location no longer holds the hash
	ErrKindConfig                       // invalid configuration
)

var kindNames = [...]string{
	ErrKindOutOfPages:    "out of pages",
	ErrKindPageFull:      "page full",
	ErrKindConstruction:  "construction error",
	ErrKindTypeTableFull: "type table full",
	ErrKindNotFound:      "not found",
	ErrKindAlreadyFree:   "already free",
	ErrKindStale:         "stale location",
	ErrKindConfig:        "invalid config",
}

func (k ErrKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// holds for every not-found error regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t != nil && t.Kind == e.Kind
}

// Errorf builds an *Error of the given kind wrapping cause (which may be nil).
func Errorf(kind ErrKind, cause error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Sentinels for errors.Is checks.
var (
	ErrOutOfPages    = &Error{Kind: ErrKindOutOfPages, Msg: "pool: out of pages"}
	ErrPageFull      = &Error{Kind: ErrKindPageFull, Msg: "page: full"}
	ErrConstruction  = &Error{Kind: ErrKindConstruction, Msg: "page: construction failed"}
	ErrTypeTableFull = &Error{Kind: ErrKindTypeTableFull, Msg: "page: type table full"}
	ErrNotFound      = &Error{Kind: ErrKindNotFound, Msg: "pool: object not found"}
	ErrAlreadyFree   = &Error{Kind: ErrKindAlreadyFree, Msg: "page: slot already free"}
	ErrStale         = &Error{Kind: ErrKindStale, Msg: "page: stale location"}
	ErrConfig        = &Error{Kind: ErrKindConfig, Msg: "pool: invalid config"}
)

// -----------------------------------------------------------------------------
// Free tiers
// -----------------------------------------------------------------------------

// FreeTier records which lookup resolved a free.
type FreeTier uint8

const (
	TierNone FreeTier = iota // not resolved
	TierL1                   // global location cache hit, confirmed by the page
	TierL2                   // per-page slot cache hit
	TierScan                 // linear scan of a page
)

func (t FreeTier) String() string {
	switch t {
	case TierL1:
		return "L1"
	case TierL2:
		return "L2"
	case TierScan:
		return "scan"
	}
	return "none"
}
