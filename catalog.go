package voiper

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Descriptor is the static shape of a module: the four role bindings and the configuration
// type of each constructed role, plus assembly statistics.
type Descriptor struct {
	Name                    string     `json:"name" yaml:"name"`
	Surface                 string     `json:"surface" yaml:"surface"`
	Presenter               string     `json:"presenter" yaml:"presenter"`
	Interactor              string     `json:"interactor" yaml:"interactor"`
	Router                  string     `json:"router" yaml:"router"`
	PresenterConfiguration  string     `json:"presenterConfiguration" yaml:"presenterConfiguration"`
	InteractorConfiguration string     `json:"interactorConfiguration" yaml:"interactorConfiguration"`
	RouterConfiguration     string     `json:"routerConfiguration" yaml:"routerConfiguration"`
	Async                   bool       `json:"async" yaml:"async"`
	Assembled               int64      `json:"assembled" yaml:"assembled"`
	LastAssembledAt         *time.Time `json:"lastAssembledAt,omitempty" yaml:"lastAssembledAt,omitempty"`
}

// Catalog keeps the descriptors of named modules. It is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	modules map[string]*Descriptor
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{modules: make(map[string]*Descriptor)}
}

// Register adds a descriptor. Names must be unique.
func (c *Catalog) Register(d Descriptor) error {
	if d.Name == "" {
		return ErrModuleNameEmpty
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.modules[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrModuleAlreadyCataloged, d.Name)
	}
	c.modules[d.Name] = &d
	return nil
}

// Get returns a copy of the named descriptor.
func (c *Catalog) Get(name string) (Descriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.modules[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrModuleNotCataloged, name)
	}
	return *d, nil
}

// Descriptors returns copies of every descriptor ordered by name.
func (c *Catalog) Descriptors() []Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Descriptor, 0, len(c.modules))
	for _, d := range c.modules {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *Catalog) recordAssembly(name string, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d, ok := c.modules[name]; ok {
		d.Assembled++
		d.LastAssembledAt = &at
	}
}

// Describer is implemented by *Module. The unexported method lets the catalog keep the
// module's assembly statistics.
type Describer interface {
	Descriptor() Descriptor
	bindCatalog(c *Catalog)
}

// Add registers the module's descriptor and records every later assembly of it.
func (c *Catalog) Add(module Describer) error {
	if err := c.Register(module.Descriptor()); err != nil {
		return err
	}
	module.bindCatalog(c)
	return nil
}
