package voiper

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// Lifecycle event types emitted by module factories and bundle registries.
// Following CloudEvents specification reverse domain notation.
const (
	EventTypeModuleAssembled     = "com.voiper.module.assembled"
	EventTypeModuleFailed        = "com.voiper.module.failed"
	EventTypeSurfaceInstantiated = "com.voiper.surface.instantiated"
	EventTypeBundleReloaded      = "com.voiper.bundle.reloaded"
)

// Observer is notified of lifecycle events.
type Observer interface {
	// OnEvent is called for every event the observer subscribed to.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier used for registration tracking.
	ObserverID() string
}

// Subject dispatches events to registered observers.
type Subject interface {
	// RegisterObserver adds an observer. With no eventTypes the observer receives everything.
	RegisterObserver(observer Observer, eventTypes ...string) error

	// UnregisterObserver removes an observer. Unknown observers are ignored.
	UnregisterObserver(observer Observer) error

	// NotifyObservers sends event to every interested observer.
	NotifyObservers(ctx context.Context, event cloudevents.Event) error

	// GetObservers returns information about currently registered observers.
	GetObservers() []ObserverInfo
}

// ObserverInfo describes a registered observer.
type ObserverInfo struct {
	ID           string    `json:"id"`
	EventTypes   []string  `json:"eventTypes"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// FunctionalObserver adapts a function to the Observer interface.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver creates an observer backed by handler.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
	return &FunctionalObserver{id: id, handler: handler}
}

func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

func (f *FunctionalObserver) ObserverID() string {
	return f.id
}

type observerRegistration struct {
	observer     Observer
	eventTypes   map[string]bool
	registeredAt time.Time
	order        int
}

// ObserverRegistry is the default Subject. Observers are called synchronously, in
// registration order, on the goroutine that emitted the event; a failing or panicking
// observer is logged and does not stop delivery to the others.
type ObserverRegistry struct {
	mu        sync.RWMutex
	observers map[string]*observerRegistration
	next      int
	logger    Logger
}

// NewObserverRegistry creates an empty registry. A nil logger discards log output.
func NewObserverRegistry(logger Logger) *ObserverRegistry {
	if logger == nil {
		logger = nopLogger{}
	}
	return &ObserverRegistry{
		observers: make(map[string]*observerRegistration),
		logger:    logger,
	}
}

func (r *ObserverRegistry) RegisterObserver(observer Observer, eventTypes ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make(map[string]bool, len(eventTypes))
	for _, eventType := range eventTypes {
		types[eventType] = true
	}

	order := r.next
	if existing, ok := r.observers[observer.ObserverID()]; ok {
		order = existing.order
	} else {
		r.next++
	}

	r.observers[observer.ObserverID()] = &observerRegistration{
		observer:     observer,
		eventTypes:   types,
		registeredAt: time.Now(),
		order:        order,
	}
	r.logger.Debug("Observer registered", "observerID", observer.ObserverID(), "eventTypes", eventTypes)
	return nil
}

func (r *ObserverRegistry) UnregisterObserver(observer Observer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.observers[observer.ObserverID()]; ok {
		delete(r.observers, observer.ObserverID())
		r.logger.Debug("Observer unregistered", "observerID", observer.ObserverID())
	}
	return nil
}

func (r *ObserverRegistry) NotifyObservers(ctx context.Context, event cloudevents.Event) error {
	if event.Time().IsZero() {
		event.SetTime(time.Now())
	}
	if err := ValidateCloudEvent(event); err != nil {
		r.logger.Error("Invalid CloudEvent", "eventType", event.Type(), "error", err)
		return err
	}

	for _, registration := range r.interested(event.Type()) {
		r.deliver(ctx, registration, event)
	}
	return nil
}

func (r *ObserverRegistry) interested(eventType string) []*observerRegistration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := make([]*observerRegistration, 0, len(r.observers))
	for _, registration := range r.observers {
		if len(registration.eventTypes) > 0 && !registration.eventTypes[eventType] {
			continue
		}
		regs = append(regs, registration)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].order < regs[j].order })
	return regs
}

func (r *ObserverRegistry) deliver(ctx context.Context, registration *observerRegistration, event cloudevents.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Observer panicked", "observerID", registration.observer.ObserverID(), "event", event.Type(), "panic", rec)
		}
	}()

	if err := registration.observer.OnEvent(ctx, event); err != nil {
		r.logger.Error("Observer error", "observerID", registration.observer.ObserverID(), "event", event.Type(), "error", err)
	}
}

func (r *ObserverRegistry) GetObservers() []ObserverInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info := make([]ObserverInfo, 0, len(r.observers))
	for _, registration := range r.observers {
		types := make([]string, 0, len(registration.eventTypes))
		for eventType := range registration.eventTypes {
			types = append(types, eventType)
		}
		sort.Strings(types)
		info = append(info, ObserverInfo{
			ID:           registration.observer.ObserverID(),
			EventTypes:   types,
			RegisteredAt: registration.registeredAt,
		})
	}
	sort.Slice(info, func(i, j int) bool { return info[i].ID < info[j].ID })
	return info
}

// NewCloudEvent creates a CloudEvent with a UUIDv7 id, the given type and source, and data
// encoded as JSON. Metadata entries become CloudEvent extensions.
func NewCloudEvent(eventType, source string, data any, metadata map[string]any) cloudevents.Event {
	event := cloudevents.NewEvent()
	event.SetID(generateID())
	event.SetSource(source)
	event.SetType(eventType)
	event.SetTime(time.Now())
	event.SetSpecVersion(cloudevents.VersionV1)

	if data != nil {
		_ = event.SetData(cloudevents.ApplicationJSON, data)
	}
	for key, value := range metadata {
		event.SetExtension(key, value)
	}
	return event
}

// ValidateCloudEvent validates event against the CloudEvents specification.
func ValidateCloudEvent(event cloudevents.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("CloudEvent validation failed: %w", err)
	}
	return nil
}

// generateID returns a UUIDv7, falling back to v4.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}
