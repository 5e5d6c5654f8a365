package voiper

import "context"

// Assembly collects the configurations of one factory call. Every setter is typed by the
// module's configuration types; a role whose configuration type is Unit may be left unset
// and receives Unit{}.
type Assembly[V Surface, P Presenter, I Interactor, R Router, PC, IC, RC any] struct {
	module *Module[V, P, I, R, PC, IC, RC]

	presenter  PC
	interactor IC
	router     RC

	hasPresenter  bool
	hasInteractor bool
	hasRouter     bool
}

// Presenter sets the presenter configuration.
func (a *Assembly[V, P, I, R, PC, IC, RC]) Presenter(configuration PC) *Assembly[V, P, I, R, PC, IC, RC] {
	a.presenter = configuration
	a.hasPresenter = true
	return a
}

// Interactor sets the interactor configuration.
func (a *Assembly[V, P, I, R, PC, IC, RC]) Interactor(configuration IC) *Assembly[V, P, I, R, PC, IC, RC] {
	a.interactor = configuration
	a.hasInteractor = true
	return a
}

// Router sets the router configuration.
func (a *Assembly[V, P, I, R, PC, IC, RC]) Router(configuration RC) *Assembly[V, P, I, R, PC, IC, RC] {
	a.router = configuration
	a.hasRouter = true
	return a
}

// Create runs the factory with the collected configurations.
func (a *Assembly[V, P, I, R, PC, IC, RC]) Create() V {
	pc, ic, rc := a.configurations()
	return a.module.Create(pc, ic, rc)
}

// CreateContext runs the suspending factory with the collected configurations.
func (a *Assembly[V, P, I, R, PC, IC, RC]) CreateContext(ctx context.Context) (V, error) {
	pc, ic, rc := a.configurations()
	return a.module.CreateContext(ctx, pc, ic, rc)
}

// configurations returns the three configurations, panicking when a role that needs a real
// configuration was left out.
func (a *Assembly[V, P, I, R, PC, IC, RC]) configurations() (PC, IC, RC) {
	name := a.module.opts.name
	if !a.hasPresenter && !isUnit[PC]() {
		fault(name, "presenter", ErrConfigurationMissing, typeName[PC](), "nothing")
	}
	if !a.hasInteractor && !isUnit[IC]() {
		fault(name, "interactor", ErrConfigurationMissing, typeName[IC](), "nothing")
	}
	if !a.hasRouter && !isUnit[RC]() {
		fault(name, "router", ErrConfigurationMissing, typeName[RC](), "nothing")
	}
	return a.presenter, a.interactor, a.router
}
