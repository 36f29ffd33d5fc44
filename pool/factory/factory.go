// Package factory provides the object construction capability consumed by
// pool pages when a slot is populated for the first time.
//
// A Factory turns a type descriptor (reflect.Type) into a fresh default
// instance. Three implementations are provided:
//
//   - Func adapts a plain function.
//   - Registry holds one constructor per type and optionally falls back to
//     another Factory for unregistered types.
//   - Reflect builds zero values through reflection, the closest analogue of
//     invoking a no-argument constructor.
package factory

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	// ErrNoDefaultConstructor indicates the factory has no way to build the type.
	ErrNoDefaultConstructor = errors.New("factory: no default constructor")

	// ErrConstructorFailed indicates the constructor ran and reported failure.
	ErrConstructorFailed = errors.New("factory: constructor failed")
)

// Factory produces a new default instance of t.
type Factory interface {
	New(t reflect.Type) (any, error)
}

// Func adapts an ordinary function to the Factory interface.
type Func func(t reflect.Type) (any, error)

// New calls f(t).
func (f Func) New(t reflect.Type) (any, error) { return f(t) }

// Initializer is implemented by types that need work beyond their zero value.
// Reflect calls Init on every instance it constructs.
type Initializer interface {
	Init() error
}

// Reflect constructs instances through reflection:
//
//   - struct, array and scalar types T yield a *T pointing at a zero value;
//   - pointer types *T yield a new *T;
//   - map and chan types yield an initialized (non-nil) value.
//
// Interface, func and unsafe pointer types have no default constructor.
type Reflect struct{}

// New implements Factory.
func (Reflect) New(t reflect.Type) (obj any, err error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrNoDefaultConstructor)
	}

	var v reflect.Value
	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.UnsafePointer, reflect.Invalid:
		return nil, fmt.Errorf("%w: %s", ErrNoDefaultConstructor, t)
	case reflect.Pointer:
		v = reflect.New(t.Elem())
	case reflect.Map:
		v = reflect.MakeMap(t)
	case reflect.Chan:
		v = reflect.MakeChan(t, 0)
	default:
		v = reflect.New(t)
	}
	obj = v.Interface()

	if in, ok := obj.(Initializer); ok {
		if err := callInit(in); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrConstructorFailed, t, err)
		}
	}
	return obj, nil
}

func callInit(in Initializer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return in.Init()
}

// Registry maps types to constructor functions. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	ctors    map[reflect.Type]func() (any, error)
	fallback Factory
}

// NewRegistry creates an empty registry. If fallback is non-nil it serves
// types that were never registered.
func NewRegistry(fallback Factory) *Registry {
	return &Registry{
		ctors:    make(map[reflect.Type]func() (any, error)),
		fallback: fallback,
	}
}

// Register installs the constructor for t, replacing any previous one.
func (r *Registry) Register(t reflect.Type, ctor func() (any, error)) {
	r.mu.Lock()
	r.ctors[t] = ctor
	r.mu.Unlock()
}

// Register installs an infallible constructor for T.
func Register[T any](r *Registry, ctor func() T) {
	r.Register(reflect.TypeFor[T](), func() (any, error) { return ctor(), nil })
}

// Registered reports whether t has its own constructor.
func (r *Registry) Registered(t reflect.Type) bool {
	r.mu.RLock()
	_, ok := r.ctors[t]
	r.mu.RUnlock()
	return ok
}

// New implements Factory.
func (r *Registry) New(t reflect.Type) (obj any, err error) {
	r.mu.RLock()
	ctor, ok := r.ctors[t]
	r.mu.RUnlock()

	if !ok {
		if r.fallback != nil {
			return r.fallback.New(t)
		}
		return nil, fmt.Errorf("%w: %s not registered", ErrNoDefaultConstructor, t)
	}

	defer func() {
		if rec := recover(); rec != nil {
			obj, err = nil, fmt.Errorf("%w: %s: panic: %v", ErrConstructorFailed, t, rec)
		}
	}()
	obj, err = ctor()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConstructorFailed, t, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: %s: constructor returned nil", ErrConstructorFailed, t)
	}
	return obj, nil
}
