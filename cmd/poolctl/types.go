package main

import (
	"reflect"

	"github.com/joshuapare/objpool/pool/factory"
)

// Vect is the workhorse type of the built-in workloads.
type Vect struct {
	X, Y int
}

// Object stands in for an unrelated type allocated among many Vects.
type Object struct {
	id int
}

// Str is a small string holder.
type Str struct {
	S string
}

var (
	vectT   = reflect.TypeFor[Vect]()
	objectT = reflect.TypeFor[Object]()
	strT    = reflect.TypeFor[Str]()
)

// newFactory registers constructors for the workload types and falls back
// to reflection for anything else.
func newFactory() factory.Factory {
	r := factory.NewRegistry(factory.Reflect{})
	nextID := 0
	r.Register(objectT, func() (any, error) {
		nextID++
		return &Object{id: nextID}, nil
	})
	return r
}
