package voiper

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// Contracts of the login test module.
type loginViewContract interface {
	ShowGreeting(greeting string)
}

type loginPresenterContract interface {
	Start()
}

type loginInteractorContract interface {
	Greeting() string
}

type loginRouterContract interface {
	Close()
}

type loginView struct {
	SurfaceBase[loginPresenterContract]
	shown []string
}

func (v *loginView) ShowGreeting(greeting string) {
	v.shown = append(v.shown, greeting)
}

type loginPresenter struct {
	PresenterBase[loginViewContract, loginInteractorContract, loginRouterContract]
}

func (p *loginPresenter) Start() {
	if view, ok := p.ViewDelegate(); ok {
		view.ShowGreeting(p.Interactor().Greeting())
	}
}

type loginConfig struct {
	Greeting   string `yaml:"greeting" json:"greeting" toml:"greeting" env:"GREETING"`
	RetryCount int    `yaml:"retryCount" json:"retryCount" toml:"retryCount" env:"RETRY_COUNT"`
}

type loginInteractor struct {
	InteractorBase
	config loginConfig
}

func (i *loginInteractor) Greeting() string {
	return i.config.Greeting
}

func (i *loginInteractor) RetryCount() int {
	return i.config.RetryCount
}

type loginRouter struct {
	RouterBase
	closed bool
}

func (r *loginRouter) Close() {
	r.closed = true
}

func newLoginPresenter(Unit) *loginPresenter { return &loginPresenter{} }

func newLoginInteractor(config loginConfig) *loginInteractor {
	return &loginInteractor{config: config}
}

func newLoginRouter(Unit) *loginRouter { return &loginRouter{} }

// plainInteractor satisfies Interactor but not loginInteractorContract.
type plainInteractor struct {
	InteractorBase
}

func newPlainInteractor(Unit) *plainInteractor { return &plainInteractor{} }

// auditedView expects a presenter that can also audit, which loginPresenter cannot.
type auditedView struct {
	SurfaceBase[interface {
		loginPresenterContract
		Audit() []string
	}]
}

func (v *auditedView) ShowGreeting(string) {}

// constructionCounter records how often each constructor ran and with which configuration.
type constructionCounter struct {
	mu         sync.Mutex
	presenter  atomic.Int32
	interactor atomic.Int32
	router     atomic.Int32
	surface    atomic.Int32
	configs    []loginConfig
}

func (c *constructionCounter) module(opts ...ModuleOption) *Module[*loginView, *loginPresenter, *loginInteractor, *loginRouter, Unit, loginConfig, Unit] {
	return NewModule(
		func() *loginView {
			c.surface.Add(1)
			return &loginView{}
		},
		func(u Unit) *loginPresenter {
			c.presenter.Add(1)
			return newLoginPresenter(u)
		},
		func(config loginConfig) *loginInteractor {
			c.interactor.Add(1)
			c.mu.Lock()
			c.configs = append(c.configs, config)
			c.mu.Unlock()
			return newLoginInteractor(config)
		},
		func(u Unit) *loginRouter {
			c.router.Add(1)
			return newLoginRouter(u)
		},
		opts...,
	)
}

func (c *constructionCounter) counts() [4]int32 {
	return [4]int32{c.surface.Load(), c.presenter.Load(), c.interactor.Load(), c.router.Load()}
}

// recordingLogger keeps every log entry for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

func (l *recordingLogger) log(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args) }

func (l *recordingLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if e.level == level {
			out = append(out, e.msg)
		}
	}
	return out
}

// links returns the "link" argument of every Linked entry in order.
func (l *recordingLogger) links() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if e.msg != "Linked" {
			continue
		}
		for i := 0; i+1 < len(e.args); i += 2 {
			if e.args[i] == "link" {
				out = append(out, fmt.Sprint(e.args[i+1]))
			}
		}
	}
	return out
}

// requireWiringFault runs fn and returns the *WiringError it panicked with.
func requireWiringFault(t *testing.T, fn func()) (wiringErr *WiringError) {
	t.Helper()
	defer func() {
		rec := recover()
		require.NotNil(t, rec, "expected a wiring fault")
		err, ok := rec.(*WiringError)
		require.Truef(t, ok, "panic value %T is not a *WiringError: %v", rec, rec)
		wiringErr = err
	}()
	fn()
	return nil
}
