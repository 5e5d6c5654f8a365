package voiper

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, opts ...RegistryOption) *BundleRegistry {
	t.Helper()
	registry := NewBundleRegistry(opts...)
	require.NoError(t, RegisterSurfaceType[loginView](registry))
	require.NoError(t, RegisterSurfaceType[onboardingView](registry))
	return registry
}

func TestBundleRegistry_RegisterAndResolve(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t)
	require.NoError(t, registry.Register("Main", "Login", func() Surface { return &loginView{} }))
	require.NoError(t, registry.Bind("Main", "Welcome", "onboardingView"))

	factory, err := registry.Resolve("Main", "Welcome")
	require.NoError(t, err)
	_, ok := factory().(*onboardingView)
	assert.True(t, ok)

	assert.Equal(t, []string{"Main"}, registry.Bundles())
	ids, err := registry.Identifiers("Main")
	require.NoError(t, err)
	assert.Equal(t, []string{"Login", "Welcome"}, ids)
	assert.Equal(t, []string{"loginView", "onboardingView"}, registry.Types())
}

func TestBundleRegistry_Errors(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t)
	require.NoError(t, registry.Bind("Main", "Login", "loginView"))

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate type", RegisterSurfaceType[loginView](registry), ErrSurfaceTypeAlreadyExists},
		{"empty type name", registry.RegisterType("", func() Surface { return &loginView{} }), ErrEmptyIdentifier},
		{"nil type factory", registry.RegisterType("Other", nil), ErrNilSurfaceFactory},
		{"unknown type", registry.Bind("Main", "Other", "missingView"), ErrSurfaceTypeNotRegistered},
		{"duplicate identifier", registry.Bind("Main", "Login", "loginView"), ErrIdentifierAlreadyBound},
		{"empty bundle", registry.Bind("", "Login", "loginView"), ErrEmptyBundleName},
		{"empty identifier", registry.Register("Main", "", func() Surface { return &loginView{} }), ErrEmptyIdentifier},
		{"nil factory", registry.Register("Main", "Nil", nil), ErrNilSurfaceFactory},
	}
	for _, tt := range tests {
		assert.ErrorIsf(t, tt.err, tt.want, tt.name)
	}

	_, err := registry.Resolve("Missing", "Login")
	assert.ErrorIs(t, err, ErrBundleNotFound)
	_, err = registry.Resolve("Main", "Missing")
	assert.ErrorIs(t, err, ErrIdentifierNotFound)
	_, err = registry.Identifiers("Missing")
	assert.ErrorIs(t, err, ErrBundleNotFound)
}

func TestBundleRegistry_ApplyManifest(t *testing.T) {
	t.Parallel()

	subject := NewObserverRegistry(nil)
	var reloaded []cloudevents.Event
	require.NoError(t, subject.RegisterObserver(NewFunctionalObserver("bundles", func(_ context.Context, event cloudevents.Event) error {
		reloaded = append(reloaded, event)
		return nil
	}), EventTypeBundleReloaded))

	registry := newTestRegistry(t, WithRegistrySubject(subject))
	require.NoError(t, registry.Bind("Untouched", "Login", "loginView"))
	require.NoError(t, registry.Bind("Onboarding", "Stale", "loginView"))

	err := registry.ApplyManifest(context.Background(), &Manifest{Bundles: []BundleSpec{{
		Name: "Onboarding",
		Surfaces: []SurfaceSpec{
			{Identifier: "Welcome", Type: "onboardingView"},
			{Identifier: "loginView"},
		},
	}}})
	require.NoError(t, err)

	ids, err := registry.Identifiers("Onboarding")
	require.NoError(t, err)
	assert.Equal(t, []string{"Welcome", "loginView"}, ids, "declared bundles are replaced")
	assert.Equal(t, []string{"Onboarding", "Untouched"}, registry.Bundles())

	require.Len(t, reloaded, 1)
	var data map[string]any
	require.NoError(t, reloaded[0].DataAs(&data))
	assert.Equal(t, []any{"Onboarding"}, data["bundles"])
}

func TestBundleRegistry_ApplyManifestIsAtomic(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t)
	require.NoError(t, registry.Bind("Onboarding", "Welcome", "onboardingView"))

	err := registry.ApplyManifest(context.Background(), &Manifest{Bundles: []BundleSpec{
		{Name: "Onboarding", Surfaces: []SurfaceSpec{{Identifier: "Login", Type: "loginView"}}},
		{Name: "Broken", Surfaces: []SurfaceSpec{{Identifier: "Missing", Type: "missingView"}}},
	}})
	assert.ErrorIs(t, err, ErrSurfaceTypeNotRegistered)

	ids, err := registry.Identifiers("Onboarding")
	require.NoError(t, err)
	assert.Equal(t, []string{"Welcome"}, ids)
	assert.Equal(t, []string{"Onboarding"}, registry.Bundles())
}

func TestBundleRegistry_LoadManifest(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bundles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`bundles:
  - name: Onboarding
    surfaces:
      - identifier: Welcome
        type: onboardingView
`), 0o600))

	registry := newTestRegistry(t)
	require.NoError(t, registry.LoadManifest(context.Background(), path))

	m := NewModule(Named[*onboardingView](registry), newLoginPresenter, newLoginInteractor, newLoginRouter)
	view := m.Assemble().Interactor(loginConfig{}).Create()
	assert.NotNil(t, view)

	err := registry.LoadManifest(context.Background(), filepath.Join(t.TempDir(), "bundles.ini"))
	assert.ErrorIs(t, err, ErrUnsupportedManifestFormat)
}

func TestBundleRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t)
	require.NoError(t, registry.Bind("Main", "Login", "loginView"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = registry.Resolve("Main", "Login")
				_ = registry.Bundles()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = registry.ApplyManifest(context.Background(), &Manifest{Bundles: []BundleSpec{
					{Name: "Main", Surfaces: []SurfaceSpec{{Identifier: "Login", Type: "loginView"}}},
				}})
			}
		}()
	}
	wg.Wait()

	_, err := registry.Resolve("Main", "Login")
	assert.NoError(t, err)
}
