package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted in tick N are delivered
// in tick N+1, when EventDispatchSystem calls SwapBuffers and DispatchAll.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer (readable next tick).
func Emit[T any](b *Bus, event T) {
	t := typeOf[T]()
	b.back[t] = append(b.back[t], event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// SwapBuffers rotates back→front and clears the new back buffer.
// Called once at tick start.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their handlers.
func (b *Bus) DispatchAll() {
	b.mu.Lock()
	handlers := b.handlers
	b.mu.Unlock()
	for t, events := range b.front {
		for _, ev := range events {
			for _, h := range handlers[t] {
				h(ev)
			}
		}
	}
}

// Pending returns how many events wait in the back buffer.
func (b *Bus) Pending() int {
	n := 0
	for _, evs := range b.back {
		n += len(evs)
	}
	return n
}
