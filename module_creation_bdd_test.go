package voiper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
)

// ModuleCreationBDDTestContext holds state for module creation BDD tests
type ModuleCreationBDDTestContext struct {
	counter    *constructionCounter
	registry   *BundleRegistry
	presenter  *loginPresenter
	createBare func() Surface
	createWith func(retryCount int) Surface
	embed      func() Surface
	surface    Surface
	fault      error
}

func (c *ModuleCreationBDDTestContext) capturePresenter(Unit) *loginPresenter {
	c.presenter = &loginPresenter{}
	return c.presenter
}

func (c *ModuleCreationBDDTestContext) aModuleWhoseRolesAllTakeNoConfiguration() error {
	m := NewModule(
		Default[loginView](),
		c.capturePresenter,
		NoConfig(func() *loginInteractor { return &loginInteractor{} }),
		newLoginRouter,
	)
	c.createBare = func() Surface { return m.Assemble().Create() }
	return nil
}

func (c *ModuleCreationBDDTestContext) aModuleWhoseInteractorTakesARetryCount() error {
	c.counter = &constructionCounter{}
	m := c.counter.module()
	c.createBare = func() Surface { return m.Assemble().Create() }
	c.createWith = func(retryCount int) Surface {
		return m.Assemble().Interactor(loginConfig{RetryCount: retryCount}).Create()
	}
	return nil
}

func (c *ModuleCreationBDDTestContext) anEmbeddableModuleWhosePresenterLacksItsParentControl() error {
	m := NewModule(
		Default[loginView](),
		func(Unit) *brokenEmbeddablePresenter { return &brokenEmbeddablePresenter{} },
		newLoginInteractor,
		newLoginRouter,
	)
	c.embed = func() Surface {
		view, _ := Embed[childControl](m.Assemble().Interactor(loginConfig{}))
		return view
	}
	return nil
}

func (c *ModuleCreationBDDTestContext) aBundleThatDoesNotContain(bundle, identifier string) error {
	c.registry = NewBundleRegistry()
	return c.registry.Register(bundle, identifier+"Legacy", func() Surface { return &loginView{} })
}

func (c *ModuleCreationBDDTestContext) aModuleWhoseSurfaceIsLookedUpAsIn(identifier, bundle string) error {
	m := NewModule(
		Named[*loginView](c.registry, InBundle(bundle), WithIdentifier(identifier)),
		c.capturePresenter,
		newLoginInteractor,
		newLoginRouter,
	)
	c.createWith = func(retryCount int) Surface {
		return m.Assemble().Interactor(loginConfig{RetryCount: retryCount}).Create()
	}
	return nil
}

// run calls create and keeps either the surface or the wiring fault.
func (c *ModuleCreationBDDTestContext) run(create func() Surface) (err error) {
	if create == nil {
		return errors.New("no module declared for this step")
	}
	defer func() {
		if rec := recover(); rec != nil {
			wiringErr, ok := rec.(*WiringError)
			if !ok {
				err = fmt.Errorf("unexpected panic: %v", rec)
				return
			}
			c.fault = wiringErr
		}
	}()
	c.surface = create()
	return nil
}

func (c *ModuleCreationBDDTestContext) iCreateTheModuleWithoutConfigurations() error {
	return c.run(c.createBare)
}

func (c *ModuleCreationBDDTestContext) iCreateTheModuleWithAnInteractorRetryCountOf(retryCount int) error {
	if c.createWith == nil {
		return errors.New("module takes no interactor configuration")
	}
	return c.run(func() Surface { return c.createWith(retryCount) })
}

func (c *ModuleCreationBDDTestContext) iEmbedTheModule() error {
	return c.run(c.embed)
}

func (c *ModuleCreationBDDTestContext) view() (*loginView, error) {
	if c.fault != nil {
		return nil, fmt.Errorf("creation faulted: %w", c.fault)
	}
	view, ok := c.surface.(*loginView)
	if !ok {
		return nil, fmt.Errorf("expected *loginView, got %T", c.surface)
	}
	return view, nil
}

func (c *ModuleCreationBDDTestContext) presenterOf() (*loginPresenter, error) {
	view, err := c.view()
	if err != nil {
		return nil, err
	}
	presenter, ok := view.PresenterHandle().(*loginPresenter)
	if !ok {
		return nil, fmt.Errorf("expected *loginPresenter, got %T", view.PresenterHandle())
	}
	return presenter, nil
}

func (c *ModuleCreationBDDTestContext) theSurfacesPresenterIsPresent() error {
	_, err := c.presenterOf()
	return err
}

func (c *ModuleCreationBDDTestContext) thePresentersInteractorAndRouterArePresent() error {
	presenter, err := c.presenterOf()
	if err != nil {
		return err
	}
	if presenter.InteractorHandle() == nil || presenter.RouterHandle() == nil {
		return errors.New("interactor or router not linked")
	}
	return nil
}

func (c *ModuleCreationBDDTestContext) theRouterNavigatesFromTheCreatedSurface() error {
	presenter, err := c.presenterOf()
	if err != nil {
		return err
	}
	view, _ := c.view()
	routed, ok := SurfaceAs[*loginView](presenter.RouterHandle())
	if !ok || routed != view {
		return errors.New("router does not reference the created surface")
	}
	return nil
}

func (c *ModuleCreationBDDTestContext) theInteractorReportsARetryCountOf(expected int) error {
	presenter, err := c.presenterOf()
	if err != nil {
		return err
	}
	interactor, ok := presenter.InteractorHandle().(*loginInteractor)
	if !ok {
		return fmt.Errorf("expected *loginInteractor, got %T", presenter.InteractorHandle())
	}
	if interactor.RetryCount() != expected {
		return fmt.Errorf("expected retry count %d, got %d", expected, interactor.RetryCount())
	}
	return nil
}

func (c *ModuleCreationBDDTestContext) everyConstructorRanExactlyOnce() error {
	if c.counter == nil {
		return errors.New("module is not counting constructions")
	}
	if got := c.counter.counts(); got != [4]int32{1, 1, 1, 1} {
		return fmt.Errorf("expected one construction per role, got %v", got)
	}
	return nil
}

func (c *ModuleCreationBDDTestContext) creationFailsWith(fragment string) error {
	if c.fault == nil {
		return errors.New("expected creation to fail")
	}
	if !strings.Contains(c.fault.Error(), fragment) {
		return fmt.Errorf("expected fault containing %q, got %q", fragment, c.fault.Error())
	}
	return nil
}

func (c *ModuleCreationBDDTestContext) noRoleWasLinked() error {
	if c.presenter == nil {
		return errors.New("presenter was never constructed")
	}
	if _, ok := c.presenter.ViewDelegateHandle(); ok {
		return errors.New("view delegate was linked")
	}
	if c.presenter.InteractorHandle() != nil || c.presenter.RouterHandle() != nil {
		return errors.New("presenter neighbours were linked")
	}
	return nil
}

// InitializeModuleCreationScenario registers the module creation steps
func InitializeModuleCreationScenario(ctx *godog.ScenarioContext) {
	bddCtx := &ModuleCreationBDDTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		*bddCtx = ModuleCreationBDDTestContext{}
		return ctx, nil
	})

	ctx.Step(`^a module whose roles all take no configuration$`, bddCtx.aModuleWhoseRolesAllTakeNoConfiguration)
	ctx.Step(`^a module whose interactor takes a retry count$`, bddCtx.aModuleWhoseInteractorTakesARetryCount)
	ctx.Step(`^an embeddable module whose presenter lacks its parent control$`, bddCtx.anEmbeddableModuleWhosePresenterLacksItsParentControl)
	ctx.Step(`^a bundle "([^"]*)" that does not contain "([^"]*)"$`, bddCtx.aBundleThatDoesNotContain)
	ctx.Step(`^a module whose surface is looked up as "([^"]*)" in "([^"]*)"$`, bddCtx.aModuleWhoseSurfaceIsLookedUpAsIn)
	ctx.Step(`^I create the module without configurations$`, bddCtx.iCreateTheModuleWithoutConfigurations)
	ctx.Step(`^I create the module with an interactor retry count of (\d+)$`, bddCtx.iCreateTheModuleWithAnInteractorRetryCountOf)
	ctx.Step(`^I embed the module$`, bddCtx.iEmbedTheModule)
	ctx.Step(`^the surface's presenter is present$`, bddCtx.theSurfacesPresenterIsPresent)
	ctx.Step(`^the presenter's interactor and router are present$`, bddCtx.thePresentersInteractorAndRouterArePresent)
	ctx.Step(`^the router navigates from the created surface$`, bddCtx.theRouterNavigatesFromTheCreatedSurface)
	ctx.Step(`^the interactor reports a retry count of (\d+)$`, bddCtx.theInteractorReportsARetryCountOf)
	ctx.Step(`^every constructor ran exactly once$`, bddCtx.everyConstructorRanExactlyOnce)
	ctx.Step(`^creation fails with "([^"]*)"$`, bddCtx.creationFailsWith)
	ctx.Step(`^no role was linked$`, bddCtx.noRoleWasLinked)
}

func TestModuleCreationBDDFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeModuleCreationScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/module_creation.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
