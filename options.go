package voiper

// ModuleOption configures a Module descriptor.
type ModuleOption func(*moduleOptions)

type moduleOptions struct {
	name       string
	logger     Logger
	subject    Subject
	concurrent bool
}

func defaultModuleOptions() moduleOptions {
	return moduleOptions{logger: nopLogger{}}
}

// WithName sets the module name used in logs, events, faults and the catalog.
// Without it the surface type's name is used.
func WithName(name string) ModuleOption {
	return func(o *moduleOptions) { o.name = name }
}

// WithLogger sets the logger for the module's factory.
func WithLogger(logger Logger) ModuleOption {
	return func(o *moduleOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSubject makes the factory emit lifecycle CloudEvents to subject.
func WithSubject(subject Subject) ModuleOption {
	return func(o *moduleOptions) { o.subject = subject }
}

// WithConcurrentConstruction makes CreateContext build the presenter, interactor and router
// concurrently. Wiring still starts only after all three have been built.
func WithConcurrentConstruction() ModuleOption {
	return func(o *moduleOptions) { o.concurrent = true }
}
