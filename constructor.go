package voiper

import (
	"context"
	"reflect"
	"strings"
)

// Unit is the configuration type of a role that needs nothing at construction time.
// Roles configured with Unit may be omitted when assembling a module.
type Unit = struct{}

// Constructor builds a role from its configuration. It must not link the role to any other
// role; linking happens only inside the module factory. A constructor that cannot work with
// the given configuration should panic.
type Constructor[C, T any] func(configuration C) T

// AsyncConstructor is the suspending form of Constructor. Returned errors and context
// cancellation propagate out of CreateContext unchanged.
type AsyncConstructor[C, T any] func(ctx context.Context, configuration C) (T, error)

// Lift adapts a blocking constructor to the suspending form. A nil constructor lifts to nil.
func Lift[C, T any](fn Constructor[C, T]) AsyncConstructor[C, T] {
	if fn == nil {
		return nil
	}
	return func(_ context.Context, configuration C) (T, error) {
		return fn(configuration), nil
	}
}

// NoConfig adapts a zero-argument constructor to a Unit-configured Constructor.
func NoConfig[T any](fn func() T) Constructor[Unit, T] {
	return func(Unit) T {
		return fn()
	}
}

// NoConfigAsync adapts a zero-argument suspending constructor to a Unit-configured one.
func NoConfigAsync[T any](fn func(ctx context.Context) (T, error)) AsyncConstructor[Unit, T] {
	return func(ctx context.Context, _ Unit) (T, error) {
		return fn(ctx)
	}
}

// isUnit reports whether C is the Unit configuration type.
func isUnit[C any]() bool {
	return reflect.TypeFor[C]() == reflect.TypeFor[Unit]()
}

// typeName returns a readable name for T, with pointer indirections kept.
func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

// baseTypeName returns T's own declared name with pointer indirections and any generic
// instantiation suffix stripped. It is the default bundle name and identifier for surfaces.
func baseTypeName[T any]() string {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}
