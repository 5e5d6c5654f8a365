// Package voiper wires four-role modules: a display Surface, a Presenter, an Interactor holding
// business logic and a Router handling navigation.
//
// A module binds one concrete type to each role. The binding is checked by the compiler
// through type parameters, and a single factory constructs, configures and cross-links the
// four roles before returning the surface ready for use:
//
//	login := voiper.NewModule(
//		voiper.Default[LoginView](),
//		NewLoginPresenter,  // func(voiper.Unit) *LoginPresenter
//		NewLoginInteractor, // func(LoginConfig) *LoginInteractor
//		NewLoginRouter,     // func(voiper.Unit) *LoginRouter
//		voiper.WithName("login"),
//	)
//	view := login.Assemble().Interactor(LoginConfig{Retries: 3}).Create()
//
// The surface owns its presenter, the presenter owns its interactor and router, and both the
// presenter and the router see the surface through a weak reference.
//
// Wiring faults (a role that does not satisfy the type its neighbour declared, a missing
// bundle entry) are programming errors. They panic with a *WiringError instead of being
// returned, so every module should have a creation test.
package voiper

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Instantiator produces a fresh, unwired surface.
type Instantiator[V Surface] func() V

// Module binds concrete types to the four roles. V is the surface, P the presenter, I the
// interactor and R the router; PC, IC and RC are the configuration types of the three
// constructed roles. A Module is immutable and may be used from several goroutines.
type Module[V Surface, P Presenter, I Interactor, R Router, PC, IC, RC any] struct {
	surface    Instantiator[V]
	presenter  AsyncConstructor[PC, P]
	interactor AsyncConstructor[IC, I]
	router     AsyncConstructor[RC, R]
	async      bool
	opts       moduleOptions
	catalog    atomic.Pointer[Catalog]
}

// NewModule binds the four roles using blocking constructors. The type parameters are
// inferred from the arguments.
func NewModule[V Surface, P Presenter, I Interactor, R Router, PC, IC, RC any](
	surface Instantiator[V],
	presenter Constructor[PC, P],
	interactor Constructor[IC, I],
	router Constructor[RC, R],
	opts ...ModuleOption,
) *Module[V, P, I, R, PC, IC, RC] {
	return newModule(surface, Lift(presenter), Lift(interactor), Lift(router), false, opts)
}

// NewAsyncModule binds the four roles using suspending constructors.
func NewAsyncModule[V Surface, P Presenter, I Interactor, R Router, PC, IC, RC any](
	surface Instantiator[V],
	presenter AsyncConstructor[PC, P],
	interactor AsyncConstructor[IC, I],
	router AsyncConstructor[RC, R],
	opts ...ModuleOption,
) *Module[V, P, I, R, PC, IC, RC] {
	return newModule(surface, presenter, interactor, router, true, opts)
}

func newModule[V Surface, P Presenter, I Interactor, R Router, PC, IC, RC any](
	surface Instantiator[V],
	presenter AsyncConstructor[PC, P],
	interactor AsyncConstructor[IC, I],
	router AsyncConstructor[RC, R],
	async bool,
	opts []ModuleOption,
) *Module[V, P, I, R, PC, IC, RC] {
	o := defaultModuleOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = baseTypeName[V]()
	}

	m := &Module[V, P, I, R, PC, IC, RC]{
		surface:    surface,
		presenter:  presenter,
		interactor: interactor,
		router:     router,
		async:      async,
		opts:       o,
	}

	switch {
	case surface == nil:
		fault(o.name, "surface", ErrNilRole, typeName[Instantiator[V]](), "nil")
	case presenter == nil:
		fault(o.name, "presenter", ErrNilRole, typeName[AsyncConstructor[PC, P]](), "nil")
	case interactor == nil:
		fault(o.name, "interactor", ErrNilRole, typeName[AsyncConstructor[IC, I]](), "nil")
	case router == nil:
		fault(o.name, "router", ErrNilRole, typeName[AsyncConstructor[RC, R]](), "nil")
	}
	return m
}

// Name returns the module name.
func (m *Module[V, P, I, R, PC, IC, RC]) Name() string {
	return m.opts.name
}

// Descriptor returns the static shape of the module.
func (m *Module[V, P, I, R, PC, IC, RC]) Descriptor() Descriptor {
	return Descriptor{
		Name:                    m.opts.name,
		Surface:                 typeName[V](),
		Presenter:               typeName[P](),
		Interactor:              typeName[I](),
		Router:                  typeName[R](),
		PresenterConfiguration:  typeName[PC](),
		InteractorConfiguration: typeName[IC](),
		RouterConfiguration:     typeName[RC](),
		Async:                   m.async,
	}
}

func (m *Module[V, P, I, R, PC, IC, RC]) bindCatalog(c *Catalog) {
	m.catalog.Store(c)
}

// Create constructs and wires a module instance and returns its surface. A suspending
// constructor that fails makes Create panic; use CreateContext to receive the error instead.
func (m *Module[V, P, I, R, PC, IC, RC]) Create(presenter PC, interactor IC, router RC) V {
	v, err := m.assemble(context.Background(), presenter, interactor, router, nil)
	if err != nil {
		panic(m.constructionFault(err))
	}
	return v
}

// CreateContext is the suspending form of Create. Construction errors and cancellation of ctx
// are returned unchanged; no surface is instantiated when construction fails. Wiring faults
// still panic.
func (m *Module[V, P, I, R, PC, IC, RC]) CreateContext(ctx context.Context, presenter PC, interactor IC, router RC) (V, error) {
	return m.assemble(ctx, presenter, interactor, router, nil)
}

// Assemble starts a factory call in which configurations may be supplied one by one. Roles
// configured with Unit may be left out.
func (m *Module[V, P, I, R, PC, IC, RC]) Assemble() *Assembly[V, P, I, R, PC, IC, RC] {
	return &Assembly[V, P, I, R, PC, IC, RC]{module: m}
}

func (m *Module[V, P, I, R, PC, IC, RC]) constructionFault(err error) *WiringError {
	return &WiringError{Module: m.opts.name, Err: fmt.Errorf("%w: %w", ErrConstructionFailed, err)}
}

// assemble runs one factory call. check, when set, sees the verified surface before the
// assembly is recorded and published; a fault it returns fails the call.
func (m *Module[V, P, I, R, PC, IC, RC]) assemble(ctx context.Context, pc PC, ic IC, rc RC, check func(V) error) (V, error) {
	var zero V
	log := m.opts.logger
	instanceID := generateID()

	p, i, r, err := m.construct(ctx, pc, ic, rc)
	if err != nil {
		log.Error("Module construction failed", "module", m.opts.name, "instance", instanceID, "error", err)
		m.emit(ctx, EventTypeModuleFailed, instanceID, map[string]any{"error": err.Error()})
		return zero, err
	}
	constructed := []struct {
		role  string
		value any
		want  string
	}{
		{"presenter", p, typeName[P]()},
		{"interactor", i, typeName[I]()},
		{"router", r, typeName[R]()},
	}
	for _, c := range constructed {
		if isNil(c.value) {
			m.fail(ctx, instanceID, &WiringError{Role: c.role, Err: ErrNilRole, Want: c.want, Got: "nil"})
		}
		log.Debug("Role constructed", "module", m.opts.name, "instance", instanceID, "role", c.role, "type", fmt.Sprintf("%T", c.value))
	}

	v := m.instantiate(ctx, instanceID)
	if isNil(v) {
		m.fail(ctx, instanceID, &WiringError{Role: "surface", Err: ErrNilRole, Want: typeName[V](), Got: "nil"})
	}
	log.Debug("Surface instantiated", "module", m.opts.name, "instance", instanceID, "surface", fmt.Sprintf("%T", v))
	m.emit(ctx, EventTypeSurfaceInstantiated, instanceID, nil)

	m.wire(instanceID, v, p, i, r)

	for _, role := range []any{p, v} {
		if verifier, ok := role.(wiringVerifier); ok {
			if err := verifier.verifyWiring(); err != nil {
				m.fail(ctx, instanceID, err)
			}
		}
	}
	if check != nil {
		if err := check(v); err != nil {
			m.fail(ctx, instanceID, err)
		}
	}

	now := time.Now()
	if c := m.catalog.Load(); c != nil {
		c.recordAssembly(m.opts.name, now)
	}
	log.Info("Module assembled", "module", m.opts.name, "instance", instanceID)
	m.emit(ctx, EventTypeModuleAssembled, instanceID, nil)
	return v, nil
}

// instantiate runs the surface instantiator, attributing lookup faults to this module.
func (m *Module[V, P, I, R, PC, IC, RC]) instantiate(ctx context.Context, instanceID string) V {
	defer func() {
		if rec := recover(); rec != nil {
			if wiringErr, ok := rec.(*WiringError); ok {
				m.fail(ctx, instanceID, wiringErr)
			}
			panic(rec)
		}
	}()
	return m.surface()
}

// construct builds the presenter, interactor and router, each exactly once. It only returns
// values; nil roles are rejected by the caller. A constructor panic on the concurrent path is
// re-raised on the calling goroutine after the group has joined.
func (m *Module[V, P, I, R, PC, IC, RC]) construct(ctx context.Context, pc PC, ic IC, rc RC) (P, I, R, error) {
	var (
		p P
		i I
		r R
	)

	steps := []func(context.Context) error{
		func(ctx context.Context) (err error) {
			p, err = constructRole(ctx, "presenter", m.presenter, pc)
			return err
		},
		func(ctx context.Context) (err error) {
			i, err = constructRole(ctx, "interactor", m.interactor, ic)
			return err
		},
		func(ctx context.Context) (err error) {
			r, err = constructRole(ctx, "router", m.router, rc)
			return err
		},
	}

	if m.opts.concurrent {
		var (
			mu        sync.Mutex
			recovered any
		)
		g, gctx := errgroup.WithContext(ctx)
		for _, step := range steps {
			g.Go(func() (err error) {
				defer func() {
					if rec := recover(); rec != nil {
						mu.Lock()
						if recovered == nil {
							recovered = rec
						}
						mu.Unlock()
						err = fmt.Errorf("%w: constructor panicked", ErrConstructionFailed)
					}
				}()
				return step(gctx)
			})
		}
		err := g.Wait()
		if recovered != nil {
			panic(recovered)
		}
		if err != nil {
			return p, i, r, err
		}
		return p, i, r, nil
	}

	for _, step := range steps {
		if err := step(ctx); err != nil {
			return p, i, r, err
		}
	}
	return p, i, r, nil
}

func constructRole[C, T any](ctx context.Context, role string, fn AsyncConstructor[C, T], configuration C) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, fmt.Errorf("construct %s: %w", role, err)
	}

	value, err := fn(ctx, configuration)
	if err != nil {
		return zero, fmt.Errorf("construct %s: %w", role, err)
	}
	return value, nil
}

// wire performs the five links in their fixed order.
func (m *Module[V, P, I, R, PC, IC, RC]) wire(instanceID string, v V, p P, i I, r R) {
	log := m.opts.logger

	p.SetViewDelegate(v)
	log.Debug("Linked", "module", m.opts.name, "instance", instanceID, "link", "presenter.viewDelegate")
	p.SetRouter(r)
	log.Debug("Linked", "module", m.opts.name, "instance", instanceID, "link", "presenter.router")
	p.SetInteractor(i)
	log.Debug("Linked", "module", m.opts.name, "instance", instanceID, "link", "presenter.interactor")
	v.SetPresenter(p)
	log.Debug("Linked", "module", m.opts.name, "instance", instanceID, "link", "surface.presenter")
	r.SetSurface(v)
	log.Debug("Linked", "module", m.opts.name, "instance", instanceID, "link", "router.surface")
}

// fail logs and publishes a wiring fault, then panics with it.
func (m *Module[V, P, I, R, PC, IC, RC]) fail(ctx context.Context, instanceID string, err error) {
	var wiringErr *WiringError
	if !errors.As(err, &wiringErr) {
		wiringErr = &WiringError{Err: err}
	}
	if wiringErr.Module == "" {
		wiringErr.Module = m.opts.name
	}

	m.opts.logger.Error("Module wiring fault", "module", m.opts.name, "instance", instanceID, "error", wiringErr)
	m.emit(ctx, EventTypeModuleFailed, instanceID, map[string]any{"error": wiringErr.Error()})
	panic(wiringErr)
}

func (m *Module[V, P, I, R, PC, IC, RC]) emit(ctx context.Context, eventType, instanceID string, extra map[string]any) {
	subject := m.opts.subject
	if subject == nil {
		return
	}

	data := map[string]any{
		"module":  m.opts.name,
		"surface": typeName[V](),
	}
	if instanceID != "" {
		data["instanceId"] = instanceID
	}
	for k, v := range extra {
		data[k] = v
	}

	event := NewCloudEvent(eventType, "voiper/module/"+m.opts.name, data, map[string]any{"module": m.opts.name})
	if err := subject.NotifyObservers(ctx, event); err != nil {
		m.opts.logger.Debug("Failed to notify observers", "module", m.opts.name, "eventType", eventType, "error", err)
	}
}

// isNil reports whether v is a nil interface or a nil pointer, map, slice, func or channel.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
