package voiper

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// SurfaceFactory produces an unwired surface for a bundle entry.
type SurfaceFactory func() Surface

type bundleEntry struct {
	typeName string
	factory  SurfaceFactory
}

// BundleRegistry resolves surfaces by bundle name and identifier for named-resource
// instantiation. Entries are either registered directly with a factory or bound to a surface
// type registered by name, which is how manifests refer to them.
// It is safe for concurrent use.
type BundleRegistry struct {
	mu      sync.RWMutex
	types   map[string]SurfaceFactory
	bundles map[string]map[string]bundleEntry
	logger  Logger
	subject Subject
}

// RegistryOption configures a BundleRegistry.
type RegistryOption func(*BundleRegistry)

// WithRegistryLogger sets the registry logger.
func WithRegistryLogger(logger Logger) RegistryOption {
	return func(r *BundleRegistry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRegistrySubject makes the registry emit bundle reload events to subject.
func WithRegistrySubject(subject Subject) RegistryOption {
	return func(r *BundleRegistry) { r.subject = subject }
}

// NewBundleRegistry creates an empty registry.
func NewBundleRegistry(opts ...RegistryOption) *BundleRegistry {
	r := &BundleRegistry{
		types:   make(map[string]SurfaceFactory),
		bundles: make(map[string]map[string]bundleEntry),
		logger:  nopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterType makes a surface type available to Bind and to manifests under typeName.
func (r *BundleRegistry) RegisterType(typeName string, factory SurfaceFactory) error {
	if typeName == "" {
		return fmt.Errorf("%w: type name", ErrEmptyIdentifier)
	}
	if factory == nil {
		return fmt.Errorf("%w: %s", ErrNilSurfaceFactory, typeName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[typeName]; exists {
		return fmt.Errorf("%w: %s", ErrSurfaceTypeAlreadyExists, typeName)
	}
	r.types[typeName] = factory
	r.logger.Debug("Surface type registered", "type", typeName)
	return nil
}

// RegisterSurfaceType registers new(T) under T's own name.
func RegisterSurfaceType[T any, V interface {
	*T
	Surface
}](r *BundleRegistry) error {
	return r.RegisterType(baseTypeName[T](), func() Surface { return V(new(T)) })
}

// Register adds an entry producing surfaces with factory.
func (r *BundleRegistry) Register(bundle, identifier string, factory SurfaceFactory) error {
	if err := validateKeys(bundle, identifier); err != nil {
		return err
	}
	if factory == nil {
		return fmt.Errorf("%w: %s/%s", ErrNilSurfaceFactory, bundle, identifier)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(bundle, identifier, bundleEntry{factory: factory})
}

// Bind adds an entry producing surfaces of the registered type typeName.
func (r *BundleRegistry) Bind(bundle, identifier, typeName string) error {
	if err := validateKeys(bundle, identifier); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	factory, ok := r.types[typeName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSurfaceTypeNotRegistered, typeName)
	}
	return r.addLocked(bundle, identifier, bundleEntry{typeName: typeName, factory: factory})
}

func (r *BundleRegistry) addLocked(bundle, identifier string, entry bundleEntry) error {
	entries, ok := r.bundles[bundle]
	if !ok {
		entries = make(map[string]bundleEntry)
		r.bundles[bundle] = entries
	}
	if _, exists := entries[identifier]; exists {
		return fmt.Errorf("%w: %s/%s", ErrIdentifierAlreadyBound, bundle, identifier)
	}
	entries[identifier] = entry
	r.logger.Debug("Bundle entry registered", "bundle", bundle, "identifier", identifier, "type", entry.typeName)
	return nil
}

// Resolve returns the factory registered for bundle and identifier.
func (r *BundleRegistry) Resolve(bundle, identifier string) (SurfaceFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, ok := r.bundles[bundle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBundleNotFound, bundle)
	}
	entry, ok := entries[identifier]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrIdentifierNotFound, bundle, identifier)
	}
	return entry.factory, nil
}

// Bundles returns the names of all bundles, sorted.
func (r *BundleRegistry) Bundles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.bundles))
	for name := range r.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Identifiers returns the identifiers in bundle, sorted.
func (r *BundleRegistry) Identifiers(bundle string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, ok := r.bundles[bundle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBundleNotFound, bundle)
	}
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Types returns the registered surface type names, sorted.
func (r *BundleRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyManifest replaces every bundle the manifest declares. Bundles it does not mention are
// left untouched. The manifest is validated and all type names resolved before anything
// changes, so a failing manifest leaves the registry as it was.
func (r *BundleRegistry) ApplyManifest(ctx context.Context, manifest *Manifest) error {
	if err := manifest.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	replacement := make(map[string]map[string]bundleEntry, len(manifest.Bundles))
	for _, spec := range manifest.Bundles {
		entries := make(map[string]bundleEntry, len(spec.Surfaces))
		for _, surface := range spec.Surfaces {
			typeName := surface.TypeName()
			factory, ok := r.types[typeName]
			if !ok {
				r.mu.Unlock()
				return fmt.Errorf("%w: %s (bundle %s, identifier %s)", ErrSurfaceTypeNotRegistered, typeName, spec.Name, surface.Identifier)
			}
			entries[surface.Identifier] = bundleEntry{typeName: typeName, factory: factory}
		}
		replacement[spec.Name] = entries
	}
	for name, entries := range replacement {
		r.bundles[name] = entries
	}
	r.mu.Unlock()

	names := manifest.BundleNames()
	r.logger.Info("Bundle manifest applied", "bundles", names)
	if r.subject != nil {
		event := NewCloudEvent(EventTypeBundleReloaded, "voiper/bundles", map[string]any{"bundles": names}, nil)
		if err := r.subject.NotifyObservers(ctx, event); err != nil {
			r.logger.Debug("Failed to notify observers", "eventType", EventTypeBundleReloaded, "error", err)
		}
	}
	return nil
}

// LoadManifest reads the manifest at path and applies it.
func (r *BundleRegistry) LoadManifest(ctx context.Context, path string) error {
	manifest, err := ReadManifest(path)
	if err != nil {
		return err
	}
	if err := r.ApplyManifest(ctx, manifest); err != nil {
		return fmt.Errorf("apply manifest %s: %w", path, err)
	}
	return nil
}

func validateKeys(bundle, identifier string) error {
	if bundle == "" {
		return ErrEmptyBundleName
	}
	if identifier == "" {
		return fmt.Errorf("%w: bundle %s", ErrEmptyIdentifier, bundle)
	}
	return nil
}
