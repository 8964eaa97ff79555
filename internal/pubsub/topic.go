package pubsub

import "sync"

// Topic fans a value out to registered listeners. Listeners are called
// synchronously, in registration order, on the publishing goroutine.
type Topic[T any] struct {
	mu        sync.Mutex
	nextID    uint64
	listeners []listener[T]
}

type listener[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe registers fn and returns the function that removes it.
// Calling the returned function more than once is harmless.
func (t *Topic[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.listeners = append(t.listeners, listener[T]{id: id, fn: fn})
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { t.remove(id) })
	}
}

func (t *Topic[T]) remove(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, l := range t.listeners {
		if l.id == id {
			t.listeners = append(t.listeners[:i:i], t.listeners[i+1:]...)
			return
		}
	}
}

// Publish delivers v to every listener registered at the time of the call.
func (t *Topic[T]) Publish(v T) {
	t.mu.Lock()
	ls := make([]listener[T], len(t.listeners))
	copy(ls, t.listeners)
	t.mu.Unlock()

	for _, l := range ls {
		l.fn(v)
	}
}

// Len reports the number of active listeners.
func (t *Topic[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.listeners)
}
