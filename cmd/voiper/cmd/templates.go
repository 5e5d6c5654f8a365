package cmd

import "text/template"

var viewTemplate = template.Must(template.New("view").Parse(`package {{.PackageName}}

import "github.com/GoCodeAlone/voiper"

// ViewContract is what the presenter may call on the view.
type ViewContract interface {
	Show(state State)
}

// View is the {{.ModuleName}} surface.
type View struct {
	voiper.SurfaceBase[PresenterContract]

	// State is the last state shown.
	State State
}

// Show renders state.
func (v *View) Show(state State) {
	v.State = state
}
`))

var presenterTemplate = template.Must(template.New("presenter").Parse(`package {{.PackageName}}

import (
	"context"

	"github.com/GoCodeAlone/voiper"
)

// PresenterContract is what the view may call on its presenter.
type PresenterContract interface {
	Start()
	Dismiss()
}

// Presenter mediates between the view, the interactor and the router.
type Presenter struct {
	voiper.PresenterBase[ViewContract, InteractorContract, RouterContract]
{{- if .PresenterConfig}}

	config PresenterConfig
{{- end}}
}

{{if .Async -}}
// NewPresenter builds the presenter. It is not linked to anything yet.
func NewPresenter(ctx context.Context, config {{.PresenterConfigType}}) (*Presenter, error) {
	return &Presenter{ {{- if .PresenterConfig}}config: config{{end -}} }, nil
}
{{- else -}}
// NewPresenter builds the presenter. It is not linked to anything yet.
func NewPresenter(config {{.PresenterConfigType}}) *Presenter {
	return &Presenter{ {{- if .PresenterConfig}}config: config{{end -}} }
}
{{- end}}

// Start loads the initial state into the view.
func (p *Presenter) Start() {
	view, ok := p.ViewDelegate()
	if !ok {
		return
	}
	view.Show(p.Interactor().Load())
}

// Dismiss leaves the {{.ModuleName}} screen.
func (p *Presenter) Dismiss() {
	p.Router().Dismiss()
}
`))

var interactorTemplate = template.Must(template.New("interactor").Parse(`package {{.PackageName}}

import (
	"context"

	"github.com/GoCodeAlone/voiper"
)

// State is what the view shows.
type State struct {
	Message string
}

// InteractorContract is what the presenter may call on the interactor.
type InteractorContract interface {
	Load() State
}

// Interactor holds the {{.ModuleName}} business logic.
type Interactor struct {
	voiper.InteractorBase
{{- if .InteractorConfig}}

	config InteractorConfig
{{- end}}
}

{{if .Async -}}
// NewInteractor builds the interactor.
func NewInteractor(ctx context.Context, config {{.InteractorConfigType}}) (*Interactor, error) {
	return &Interactor{ {{- if .InteractorConfig}}config: config{{end -}} }, nil
}
{{- else -}}
// NewInteractor builds the interactor.
func NewInteractor(config {{.InteractorConfigType}}) *Interactor {
	return &Interactor{ {{- if .InteractorConfig}}config: config{{end -}} }
}
{{- end}}

// Load returns the initial state.
func (i *Interactor) Load() State {
	return State{Message: "{{.ModuleName}} ready"}
}
`))

var routerTemplate = template.Must(template.New("router").Parse(`package {{.PackageName}}

import (
	"context"

	"github.com/GoCodeAlone/voiper"
)

// RouterContract is what the presenter may call on the router.
type RouterContract interface {
	Dismiss()
}

// Router navigates away from the {{.ModuleName}} view.
type Router struct {
	voiper.RouterBase
{{- if .RouterConfig}}

	config RouterConfig
{{- end}}

	// Dismissed is set once the view was dismissed.
	Dismissed bool
}

{{if .Async -}}
// NewRouter builds the router.
func NewRouter(ctx context.Context, config {{.RouterConfigType}}) (*Router, error) {
	return &Router{ {{- if .RouterConfig}}config: config{{end -}} }, nil
}
{{- else -}}
// NewRouter builds the router.
func NewRouter(config {{.RouterConfigType}}) *Router {
	return &Router{ {{- if .RouterConfig}}config: config{{end -}} }
}
{{- end}}

// Dismiss leaves the view if it is still alive.
func (r *Router) Dismiss() {
	if _, ok := r.Surface(); ok {
		r.Dismissed = true
	}
}
`))

var configTemplate = template.Must(template.New("config").Parse(`package {{.PackageName}}
{{if .PresenterConfig}}
// PresenterConfig configures the presenter.
type PresenterConfig struct {
	Title string ` + "`yaml:\"title\" json:\"title\" toml:\"title\" env:\"TITLE\"`" + `
}
{{end}}
{{- if .InteractorConfig}}
// InteractorConfig configures the interactor.
type InteractorConfig struct {
	RetryCount int ` + "`yaml:\"retryCount\" json:\"retryCount\" toml:\"retryCount\" env:\"RETRY_COUNT\"`" + `
}
{{end}}
{{- if .RouterConfig}}
// RouterConfig configures the router.
type RouterConfig struct {
	BaseRoute string ` + "`yaml:\"baseRoute\" json:\"baseRoute\" toml:\"baseRoute\" env:\"BASE_ROUTE\"`" + `
}
{{end}}`))

var moduleTemplate = template.Must(template.New("module").Parse(`package {{.PackageName}}

import "github.com/GoCodeAlone/voiper"

// Module binds the {{.ModuleName}} roles.
type Module = voiper.Module[*View, *Presenter, *Interactor, *Router, {{.PresenterConfigType}}, {{.InteractorConfigType}}, {{.RouterConfigType}}]

// SurfaceType is the name the view is registered under in a bundle registry.
const SurfaceType = "{{.PackageName}}.View"

// NewModule declares the {{.ModuleName}} module.
func NewModule({{if .Bundle}}registry *voiper.BundleRegistry, {{end}}opts ...voiper.ModuleOption) *Module {
	return voiper.New{{if .Async}}Async{{end}}Module(
		{{if .Bundle}}voiper.Named[*View](registry, voiper.InBundle("{{.Bundle}}")){{else}}voiper.Default[View](){{end}},
		NewPresenter,
		NewInteractor,
		NewRouter,
		append([]voiper.ModuleOption{voiper.WithName("{{.PackageName}}")}, opts...)...,
	)
}
{{- if .Bundle}}

// RegisterSurface makes the view available to bundle manifests.
func RegisterSurface(registry *voiper.BundleRegistry) error {
	return registry.RegisterType(SurfaceType, func() voiper.Surface { return &View{} })
}
{{- end}}
`))

var moduleTestTemplate = template.Must(template.New("module_test").Parse(`package {{.PackageName}}

import (
	"context"
	"testing"

	"github.com/GoCodeAlone/voiper"
)

func TestModuleCreation(t *testing.T) {
{{- if .Bundle}}
	registry := voiper.NewBundleRegistry()
	if err := RegisterSurface(registry); err != nil {
		t.Fatal(err)
	}
	if err := registry.Bind("{{.Bundle}}", "View", SurfaceType); err != nil {
		t.Fatal(err)
	}
{{end}}
	assembly := NewModule({{if .Bundle}}registry{{end}}).Assemble()
{{- if .PresenterConfig}}.Presenter(PresenterConfig{}){{end}}
{{- if .InteractorConfig}}.Interactor(InteractorConfig{}){{end}}
{{- if .RouterConfig}}.Router(RouterConfig{}){{end}}
{{if .Async}}
	view, err := assembly.CreateContext(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
{{- else}}
	view := assembly.Create()
{{- end}}

	view.Presenter().Start()
	if view.State.Message == "" {
		t.Fatal("presenter did not load the initial state into the view")
	}

	presenter := view.PresenterHandle().(*Presenter)
	presenter.Dismiss()
	if !presenter.RouterHandle().(*Router).Dismissed {
		t.Fatal("router did not dismiss the view")
	}
}
`))
