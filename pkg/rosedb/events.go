package rosedb

import (
	"fmt"
	"log/slog"
	"sync"
)

const eventChange = "change"

func keyEvent(key string) string { return eventChange + ":" + key }

// Subscription removes the listener it was returned for. Calls after the
// first are no-ops.
type Subscription func()

type listener struct {
	id uint64
	fn func(any)
}

// eventBus is an ordered registry of listeners keyed by event name.
// Listeners run synchronously, in registration order, on the emitting
// goroutine. A panicking listener is logged and skipped.
type eventBus struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[string][]listener
	logger    *slog.Logger
}

func newEventBus(logger *slog.Logger) *eventBus {
	return &eventBus{
		listeners: make(map[string][]listener),
		logger:    logger,
	}
}

func (b *eventBus) subscribe(name string, fn func(any)) Subscription {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[name] = append(b.listeners[name], listener{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(name, id) })
	}
}

func (b *eventBus) remove(name string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ls := b.listeners[name]
	for i, l := range ls {
		if l.id != id {
			continue
		}
		// copy-on-write: an emit in progress keeps iterating its own slice
		next := make([]listener, 0, len(ls)-1)
		next = append(next, ls[:i]...)
		next = append(next, ls[i+1:]...)
		if len(next) == 0 {
			delete(b.listeners, name)
		} else {
			b.listeners[name] = next
		}
		return
	}
}

// count returns the number of listeners registered for name.
func (b *eventBus) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[name])
}

func (b *eventBus) emit(name string, payload any) {
	b.mu.Lock()
	ls := b.listeners[name]
	b.mu.Unlock()

	for _, l := range ls {
		b.call(name, l, payload)
	}
}

func (b *eventBus) call(name string, l listener, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("listener panicked", "event", name, "listener", l.id, "err", fmt.Sprint(r))
		}
	}()
	l.fn(payload)
}

// OnChange registers fn for every whole-mapping change.
func (b *eventBus) OnChange(fn func(ChangeEvent)) Subscription {
	return b.subscribe(eventChange, func(p any) { fn(p.(ChangeEvent)) })
}

// OnKeyChange registers fn for changes of a single key.
func (b *eventBus) OnKeyChange(key string, fn func(KeyChangeEvent)) Subscription {
	return b.subscribe(keyEvent(key), func(p any) { fn(p.(KeyChangeEvent)) })
}

// publish emits the key event (if any) before the whole-mapping event.
func (b *eventBus) publish(c change) {
	if c.keyed {
		b.emit(keyEvent(c.key.Key), c.key)
	}
	b.emit(eventChange, c.whole)
}
