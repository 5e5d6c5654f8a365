package voiper

import (
	"fmt"

	"github.com/GoCodeAlone/voiper/feeders"
)

// Manifest declares bundles and the surface type behind each identifier. It is read from
// YAML, TOML or JSON:
//
//	bundles:
//	  - name: Onboarding
//	    surfaces:
//	      - identifier: Welcome
//	        type: WelcomeView
//	      - identifier: LoginView
type Manifest struct {
	Bundles []BundleSpec `yaml:"bundles" json:"bundles" toml:"bundles"`
}

// BundleSpec declares one bundle.
type BundleSpec struct {
	Name     string        `yaml:"name" json:"name" toml:"name"`
	Surfaces []SurfaceSpec `yaml:"surfaces" json:"surfaces" toml:"surfaces"`
}

// SurfaceSpec binds an identifier to a registered surface type. Type defaults to the
// identifier.
type SurfaceSpec struct {
	Identifier string `yaml:"identifier" json:"identifier" toml:"identifier"`
	Type       string `yaml:"type,omitempty" json:"type,omitempty" toml:"type,omitempty"`
}

// TypeName returns the registered type name the identifier is bound to.
func (s SurfaceSpec) TypeName() string {
	if s.Type == "" {
		return s.Identifier
	}
	return s.Type
}

// ReadManifest decodes the manifest file at path, choosing the format by extension.
func ReadManifest(path string) (*Manifest, error) {
	feeder, err := feeders.ForPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedManifestFormat, err)
	}

	manifest := &Manifest{}
	if err := feeder.Feed(manifest); err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return manifest, nil
}

// Validate checks that every bundle and identifier is named and unique.
func (m *Manifest) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil manifest", ErrManifestInvalid)
	}

	seenBundles := make(map[string]bool, len(m.Bundles))
	for i, bundle := range m.Bundles {
		if bundle.Name == "" {
			return fmt.Errorf("%w: bundle #%d: %w", ErrManifestInvalid, i, ErrEmptyBundleName)
		}
		if seenBundles[bundle.Name] {
			return fmt.Errorf("%w: bundle %s declared twice", ErrManifestInvalid, bundle.Name)
		}
		seenBundles[bundle.Name] = true

		seenIDs := make(map[string]bool, len(bundle.Surfaces))
		for j, surface := range bundle.Surfaces {
			if surface.Identifier == "" {
				return fmt.Errorf("%w: bundle %s surface #%d: %w", ErrManifestInvalid, bundle.Name, j, ErrEmptyIdentifier)
			}
			if seenIDs[surface.Identifier] {
				return fmt.Errorf("%w: %w: %s/%s", ErrManifestInvalid, ErrIdentifierAlreadyBound, bundle.Name, surface.Identifier)
			}
			seenIDs[surface.Identifier] = true
		}
	}
	return nil
}

// BundleNames returns the declared bundle names in declaration order.
func (m *Manifest) BundleNames() []string {
	names := make([]string, 0, len(m.Bundles))
	for _, bundle := range m.Bundles {
		names = append(names, bundle.Name)
	}
	return names
}
