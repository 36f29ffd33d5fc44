// Package ident derives the content hash that pools use to locate an
// allocated instance on free.
package ident

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// ErrUnhashable indicates a value with neither a pool key nor an identity.
var ErrUnhashable = errors.New("ident: value has no identity")

// Func computes the content hash of obj.
type Func func(obj any) (uint64, error)

// Keyed is implemented by values that carry their own identity key. The key
// must be stable for as long as the value is allocated and should be unique
// among live instances. Colliding keys stay correct for Pool.Free, which
// confirms the instance itself, but they defeat the caches and make
// Pool.FreeObject release whichever instance with the key it finds first.
type Keyed interface {
	PoolKey() []byte
}

// Hash is the default Func.
//
// Keyed values hash their key with xxhash. Pointer-shaped values (pointers,
// maps, channels, unsafe pointers) hash to their address, which is
// stable because the Go heap does not move objects. Pointers to zero-size
// values and non-pointer values have no identity and yield ErrUnhashable.
func Hash(obj any) (uint64, error) {
	if k, ok := obj.(Keyed); ok {
		return xxhash.Sum64(k.PoolKey()), nil
	}
	if obj == nil {
		return 0, fmt.Errorf("%w: nil", ErrUnhashable)
	}

	v := reflect.ValueOf(obj)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		if v.IsNil() {
			return 0, fmt.Errorf("%w: nil %s", ErrUnhashable, v.Type())
		}
		// All zero-size allocations may share one address.
		if v.Kind() == reflect.Pointer && v.Type().Elem().Size() == 0 {
			return 0, fmt.Errorf("%w: %s points at a zero-size value", ErrUnhashable, v.Type())
		}
		return uint64(v.Pointer()), nil
	}
	return 0, fmt.Errorf("%w: %s is not pointer-shaped", ErrUnhashable, v.Type())
}

// Bytes hashes an arbitrary key with the same function Keyed values use.
func Bytes(b []byte) uint64 { return xxhash.Sum64(b) }

// String hashes a string key without copying it.
func String(s string) uint64 { return xxhash.Sum64String(s) }
