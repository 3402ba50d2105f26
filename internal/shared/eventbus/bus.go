/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package eventbus provides a decoupled in-process communication channel
// between feature modules.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// Event is the base interface for all domain events. Events are immutable
// value objects describing something that happened.
type Event interface {
	// EventName returns the unique name identifying this event type.
	EventName() string

	// EventTime returns when the event occurred.
	EventTime() time.Time

	// Subject returns the namespace/name of the resource that produced
	// this event.
	Subject() string
}

// Handler processes events of a specific type. Handlers should be
// idempotent as events may be delivered more than once.
type Handler func(ctx context.Context, event Event) error

// HandlerInfo contains metadata about a registered handler.
type HandlerInfo struct {
	Name    string
	Handler Handler
}

// Bus manages event publishing and subscriptions.
type Bus interface {
	// Publish sends an event to all registered handlers synchronously.
	// All handlers run even if some fail; errors are joined.
	Publish(ctx context.Context, event Event) error

	// PublishAsync sends an event without waiting for handlers to
	// complete. Errors are logged but not returned.
	PublishAsync(ctx context.Context, event Event)

	// Subscribe registers a named handler for a specific event type.
	Subscribe(eventName string, handlerName string, handler Handler)
}

// InMemoryBus is a synchronous in-process event bus. All modules of the
// operator run in one process, so no external broker is involved.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerInfo
	logger   logr.Logger
}

// BusOption configures the InMemoryBus.
type BusOption func(*InMemoryBus)

// WithLogger sets the logger for the bus.
func WithLogger(logger logr.Logger) BusOption {
	return func(b *InMemoryBus) {
		b.logger = logger
	}
}

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(opts ...BusOption) *InMemoryBus {
	bus := &InMemoryBus{
		handlers: make(map[string][]HandlerInfo),
		logger:   logr.Discard(),
	}
	for _, opt := range opts {
		opt(bus)
	}
	return bus
}

// Subscribe implements Bus.
func (b *InMemoryBus) Subscribe(eventName string, handlerName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], HandlerInfo{
		Name:    handlerName,
		Handler: handler,
	})
}

// Publish implements Bus.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := make([]HandlerInfo, len(b.handlers[event.EventName()]))
	copy(handlers, b.handlers[event.EventName()])
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.V(2).Info("No handlers registered for event",
			"event", event.EventName(), "subject", event.Subject())
		return nil
	}

	var errs []error
	for _, h := range handlers {
		if err := b.run(ctx, h, event); err != nil {
			errs = append(errs, fmt.Errorf("handler %s: %w", h.Name, err))
		}
	}
	return errors.Join(errs...)
}

// PublishAsync implements Bus.
func (b *InMemoryBus) PublishAsync(ctx context.Context, event Event) {
	go func() {
		if err := b.Publish(ctx, event); err != nil {
			b.logger.Error(err, "Async event publish failed",
				"event", event.EventName(), "subject", event.Subject())
		}
	}()
}

// run executes one handler, converting panics into errors so a bad
// subscriber cannot take down the publishing reconciler.
func (b *InMemoryBus) run(ctx context.Context, h HandlerInfo, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	start := time.Now()
	err = h.Handler(ctx, event)
	b.logger.V(2).Info("Handler executed",
		"event", event.EventName(),
		"handler", h.Name,
		"duration", time.Since(start))
	return err
}
