// Package types defines the shared vocabulary of the object pool: typed
// errors with stable kinds, capacity limits, statistics and the read-only
// snapshot structures consumed by diagnostics, verification and metrics.
//
// This package has no dependencies beyond the standard library.
package types
