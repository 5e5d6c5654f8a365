package voiper

import (
	"fmt"
	"reflect"
)

// Default returns an Instantiator producing new(T). Use it for surfaces that need no
// resource lookup:
//
//	voiper.Default[LoginView]() // Instantiator[*LoginView]
func Default[T any, V interface {
	*T
	Surface
}]() Instantiator[V] {
	return func() V {
		return V(new(T))
	}
}

// ResourceBundled may be implemented by a surface type to name the bundle it lives in.
// The method is called on a freshly allocated zero value and must not depend on its state.
type ResourceBundled interface {
	ResourceBundle() string
}

// ResourceIdentified may be implemented by a surface type to name its identifier within the
// bundle. The method is called on a freshly allocated zero value.
type ResourceIdentified interface {
	ResourceIdentifier() string
}

// NamedOption overrides the lookup keys of a named-resource Instantiator.
type NamedOption func(*namedOptions)

type namedOptions struct {
	bundle     string
	identifier string
}

// InBundle sets the bundle name to look the surface up in.
func InBundle(name string) NamedOption {
	return func(o *namedOptions) { o.bundle = name }
}

// WithIdentifier sets the identifier of the surface within its bundle.
func WithIdentifier(identifier string) NamedOption {
	return func(o *namedOptions) { o.identifier = identifier }
}

// Named returns an Instantiator that resolves the surface from registry. The bundle name and
// the identifier default to the surface type's own name, unless the type implements
// ResourceBundled or ResourceIdentified, and options override both.
//
// A bundle or identifier that does not resolve, or an entry producing a surface that is not a
// V, panics with a *WiringError when the instantiator runs, before any linking happens. A nil
// registry panics with ErrNilRegistry right away.
func Named[V Surface](registry *BundleRegistry, opts ...NamedOption) Instantiator[V] {
	if registry == nil {
		fault("", "surface", ErrNilRegistry, typeName[*BundleRegistry](), "nil")
	}
	bundle, identifier := ResourceNames[V](opts...)
	return func() V {
		factory, err := registry.Resolve(bundle, identifier)
		if err != nil {
			registry.logger.Error("Surface lookup failed", "bundle", bundle, "identifier", identifier, "error", err)
			fault("", "surface", err, typeName[V](), "nothing")
		}

		surface := factory()
		v, ok := surface.(V)
		if !ok {
			err := fmt.Errorf("%w: %s/%s", ErrSurfaceTypeMismatch, bundle, identifier)
			registry.logger.Error("Surface lookup failed", "bundle", bundle, "identifier", identifier, "error", err)
			fault("", "surface", err, typeName[V](), fmt.Sprintf("%T", surface))
		}
		registry.logger.Debug("Surface resolved", "bundle", bundle, "identifier", identifier)
		return v
	}
}

// ResourceNames returns the bundle name and identifier a named-resource Instantiator for V
// would use.
func ResourceNames[V Surface](opts ...NamedOption) (bundle, identifier string) {
	o := namedOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	probe := zeroProbe[V]()
	bundle, identifier = baseTypeName[V](), baseTypeName[V]()
	if named, ok := probe.(ResourceBundled); ok {
		if name := named.ResourceBundle(); name != "" {
			bundle = name
		}
	}
	if named, ok := probe.(ResourceIdentified); ok {
		if id := named.ResourceIdentifier(); id != "" {
			identifier = id
		}
	}

	if o.bundle != "" {
		bundle = o.bundle
	}
	if o.identifier != "" {
		identifier = o.identifier
	}
	return bundle, identifier
}

// zeroProbe returns an allocated zero value of V so that declared name methods can be called
// on pointer types without dereferencing nil.
func zeroProbe[V any]() any {
	t := reflect.TypeFor[V]()
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem()).Interface()
	}
	var zero V
	return zero
}
