package voiper

import (
	"fmt"
	"weak"
)

// Surface is the display role of a module. Concrete surfaces satisfy it by embedding
// SurfaceBase; the unexported anchor method keeps weak back-references uniform across all
// surface types.
type Surface interface {
	// SetPresenter hands the surface its presenter counterpart. The surface owns it.
	SetPresenter(presenter Presenter)

	// PresenterHandle returns the generic presenter handle, nil before wiring.
	PresenterHandle() Presenter

	surfaceAnchor() *surfaceAnchor
}

// Presenter is the presentation role. It receives generic handles to its three neighbours
// during wiring. Embed PresenterBase to satisfy it.
type Presenter interface {
	SetViewDelegate(surface Surface)
	SetInteractor(interactor Interactor)
	SetRouter(router Router)
}

// Interactor is the business-logic role. It has no required members; embed InteractorBase.
type Interactor interface {
	interactor()
}

// Router is the navigation role. It keeps a weak back-reference to the surface it navigates
// from. Embed RouterBase to satisfy it.
type Router interface {
	SetSurface(surface Surface)
	Surface() (Surface, bool)
}

// surfaceAnchor is the allocation-interior target of weak surface references.
type surfaceAnchor struct {
	self Surface
}

// SurfaceRef is a weak handle to a Surface. It never keeps the surface alive and reports
// absent once the surface has been collected.
type SurfaceRef struct {
	ptr weak.Pointer[surfaceAnchor]
}

// WeakSurface returns a weak handle to s. A nil surface yields an empty handle.
func WeakSurface(s Surface) SurfaceRef {
	if s == nil {
		return SurfaceRef{}
	}
	anchor := s.surfaceAnchor()
	anchor.self = s
	return SurfaceRef{ptr: weak.Make(anchor)}
}

// Get returns the referenced surface, or false when it is unset or already collected.
func (r SurfaceRef) Get() (Surface, bool) {
	anchor := r.ptr.Value()
	if anchor == nil || anchor.self == nil {
		return nil, false
	}
	return anchor.self, true
}

// SurfaceBase implements Surface. P is the presenter contract the surface talks to.
type SurfaceBase[P any] struct {
	anchor    surfaceAnchor
	presenter Presenter
}

func (s *SurfaceBase[P]) surfaceAnchor() *surfaceAnchor {
	return &s.anchor
}

// SetPresenter stores the presenter handle. The surface is the presenter's only strong owner.
func (s *SurfaceBase[P]) SetPresenter(presenter Presenter) {
	s.presenter = presenter
}

// PresenterHandle returns the generic presenter handle.
func (s *SurfaceBase[P]) PresenterHandle() Presenter {
	return s.presenter
}

// Presenter narrows the stored handle to P. It panics when the surface has not been wired or
// the presenter does not satisfy P.
func (s *SurfaceBase[P]) Presenter() P {
	return mustNarrow[P]("presenter", s.presenter)
}

func (s *SurfaceBase[P]) verifyWiring() error {
	return checkNarrow[P]("presenter", s.presenter)
}

// PresenterBase implements Presenter and stores the three neighbour handles. VD, I and R are
// the contracts this presenter expects its view delegate, interactor and router to satisfy.
type PresenterBase[VD, I, R any] struct {
	viewDelegate SurfaceRef
	interactor   Interactor
	router       Router
}

// SetViewDelegate stores a weak reference to the surface.
func (p *PresenterBase[VD, I, R]) SetViewDelegate(surface Surface) {
	p.viewDelegate = WeakSurface(surface)
}

// SetInteractor stores the interactor. The presenter owns it.
func (p *PresenterBase[VD, I, R]) SetInteractor(interactor Interactor) {
	p.interactor = interactor
}

// SetRouter stores the router. The presenter owns it.
func (p *PresenterBase[VD, I, R]) SetRouter(router Router) {
	p.router = router
}

// ViewDelegateHandle returns the generic view delegate handle.
func (p *PresenterBase[VD, I, R]) ViewDelegateHandle() (Surface, bool) {
	return p.viewDelegate.Get()
}

// InteractorHandle returns the generic interactor handle.
func (p *PresenterBase[VD, I, R]) InteractorHandle() Interactor {
	return p.interactor
}

// RouterHandle returns the generic router handle.
func (p *PresenterBase[VD, I, R]) RouterHandle() Router {
	return p.router
}

// ViewDelegate narrows the surface to VD. The result is absent when the surface has been
// torn down or does not satisfy VD, so callers racing teardown can simply skip the update.
func (p *PresenterBase[VD, I, R]) ViewDelegate() (VD, bool) {
	var zero VD
	surface, ok := p.viewDelegate.Get()
	if !ok {
		return zero, false
	}
	vd, ok := any(surface).(VD)
	if !ok {
		return zero, false
	}
	return vd, true
}

// Interactor narrows the interactor handle to I and panics if that is not possible.
func (p *PresenterBase[VD, I, R]) Interactor() I {
	return mustNarrow[I]("interactor", p.interactor)
}

// Router narrows the router handle to R and panics if that is not possible.
func (p *PresenterBase[VD, I, R]) Router() R {
	return mustNarrow[R]("router", p.router)
}

func (p *PresenterBase[VD, I, R]) verifyWiring() error {
	surface, ok := p.viewDelegate.Get()
	if !ok {
		return &WiringError{Role: "view delegate", Err: ErrRoleNotLinked, Want: typeName[VD]()}
	}
	if err := checkNarrow[VD]("view delegate", surface); err != nil {
		return err
	}
	if err := checkNarrow[I]("interactor", p.interactor); err != nil {
		return err
	}
	return checkNarrow[R]("router", p.router)
}

// InteractorBase implements the Interactor marker.
type InteractorBase struct{}

func (InteractorBase) interactor() {}

// RouterBase implements Router.
type RouterBase struct {
	surface SurfaceRef
}

// SetSurface stores a weak back-reference to the surface.
func (r *RouterBase) SetSurface(surface Surface) {
	r.surface = WeakSurface(surface)
}

// Surface returns the surface, or false once it has been collected.
func (r *RouterBase) Surface() (Surface, bool) {
	return r.surface.Get()
}

// SurfaceAs narrows a router's back-reference to V.
func SurfaceAs[V any](r Router) (V, bool) {
	var zero V
	if r == nil {
		return zero, false
	}
	surface, ok := r.Surface()
	if !ok {
		return zero, false
	}
	v, ok := any(surface).(V)
	return v, ok
}

// wiringVerifier is implemented by the role bases that hold handles needing narrowing.
type wiringVerifier interface {
	verifyWiring() error
}

func checkNarrow[T any](role string, handle any) error {
	if handle == nil {
		return &WiringError{Role: role, Err: ErrRoleNotLinked, Want: typeName[T]()}
	}
	if _, ok := handle.(T); !ok {
		return &WiringError{Role: role, Err: ErrNarrowingFailed, Want: typeName[T](), Got: fmt.Sprintf("%T", handle)}
	}
	return nil
}

func mustNarrow[T any](role string, handle any) T {
	if err := checkNarrow[T](role, handle); err != nil {
		panic(err)
	}
	return handle.(T)
}
