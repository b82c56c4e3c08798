package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted in step N are readable
// in step N+1. SwapBuffers() is called at step start by EventDispatchSystem.
// Dispatch visits event types in the order they were first seen, so handler
// side effects happen in a reproducible order.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]func(any)
	order    []reflect.Type
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

// Emit queues an event into the back buffer (will be readable next step).
func Emit[T any](b *Bus, event T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.track(t)
	b.back[t] = append(b.back[t], event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.track(t)
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

func (b *Bus) track(t reflect.Type) {
	if _, ok := b.back[t]; ok {
		return
	}
	if _, ok := b.handlers[t]; ok {
		return
	}
	b.back[t] = nil
	b.front[t] = nil
	b.order = append(b.order, t)
}

// SwapBuffers rotates back→front and clears the new back buffer.
// Called once at step start.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// Pending returns the number of events waiting in the back buffer.
func (b *Bus) Pending() int {
	n := 0
	for _, evs := range b.back {
		n += len(evs)
	}
	return n
}

// DispatchAll delivers all front-buffer events to their subscribed handlers.
func (b *Bus) DispatchAll() {
	for _, t := range b.order {
		events := b.front[t]
		handlers := b.handlers[t]
		for _, ev := range events {
			for _, h := range handlers {
				h(ev)
			}
		}
		b.front[t] = events[:0]
	}
}

// Flush swaps and dispatches in one call, for use outside the step loop
// (e.g. after recording stops).
func (b *Bus) Flush() {
	b.SwapBuffers()
	b.DispatchAll()
}
