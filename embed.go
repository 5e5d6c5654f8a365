package voiper

import (
	"context"
	"fmt"
)

// ParentControllable is implemented by presenters that can be hosted as a child of another
// surface. C is the narrow view the parent uses to drive the child; presenters declare it by
// embedding EmbeddableBase[C] and must actually implement C.
type ParentControllable[C any] interface {
	parentControllable(C)
}

// EmbeddableBase declares the parent-controllable type of a presenter.
type EmbeddableBase[C any] struct{}

func (EmbeddableBase[C]) parentControllable(C) {}

// EmbeddablePresenter is a presenter that declares a parent-controllable view C.
type EmbeddablePresenter[C any] interface {
	Presenter
	ParentControllable[C]
}

// Embed runs the factory for a module whose presenter is embeddable and returns the surface
// together with the presenter narrowed to its parent-controllable view C. It panics with
// ErrParentControlMismatch when the presenter declared C but does not implement it; the call
// is then reported as failed and never as assembled.
func Embed[C any, V Surface, P EmbeddablePresenter[C], I Interactor, R Router, PC, IC, RC any](
	a *Assembly[V, P, I, R, PC, IC, RC],
) (V, C) {
	var control C
	m := a.module
	pc, ic, rc := a.configurations()
	v, err := m.assemble(context.Background(), pc, ic, rc, parentControl[C, V](m.opts.logger, m.opts.name, &control))
	if err != nil {
		panic(m.constructionFault(err))
	}
	return v, control
}

// EmbedContext is the suspending form of Embed.
func EmbedContext[C any, V Surface, P EmbeddablePresenter[C], I Interactor, R Router, PC, IC, RC any](
	ctx context.Context,
	a *Assembly[V, P, I, R, PC, IC, RC],
) (V, C, error) {
	var control C
	m := a.module
	pc, ic, rc := a.configurations()
	v, err := m.assemble(ctx, pc, ic, rc, parentControl[C, V](m.opts.logger, m.opts.name, &control))
	return v, control, err
}

// parentControl narrows the wired presenter to C and stores it in control.
func parentControl[C any, V Surface](log Logger, module string, control *C) func(V) error {
	return func(v V) error {
		handle := v.PresenterHandle()
		narrowed, ok := handle.(C)
		if !ok {
			return &WiringError{
				Role: "presenter",
				Err:  ErrParentControlMismatch,
				Want: typeName[C](),
				Got:  fmt.Sprintf("%T", handle),
			}
		}
		*control = narrowed
		log.Debug("Parent control narrowed", "module", module, "control", typeName[C]())
		return nil
	}
}
