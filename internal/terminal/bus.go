// bus.go - Fan-out of handle events to subscribers
//
// Subscribers are called synchronously, in registration order, by whoever publishes.
// The registry publishes from Dispatch, so every subscriber runs on the control thread
// and observes each session's events in the order the handle emitted them. There is
// no replay: a late subscriber reads the session buffer for history.

package terminal

import "sync"

// Subscriber receives published events
type Subscriber func(Event)

// Bus is a typed publish/subscribe hub
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription
}

type subscription struct {
	id int
	fn Subscriber
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for every future event and returns a function that removes it
func (b *Bus) Subscribe(fn Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

// OnData subscribes to data events only
func (b *Bus) OnData(fn func(DataEvent)) (unsubscribe func()) {
	return b.Subscribe(func(ev Event) {
		if data, ok := ev.(DataEvent); ok {
			fn(data)
		}
	})
}

// OnExit subscribes to exit events only
func (b *Bus) OnExit(fn func(ExitEvent)) (unsubscribe func()) {
	return b.Subscribe(func(ev Event) {
		if exit, ok := ev.(ExitEvent); ok {
			fn(exit)
		}
	})
}

// OnError subscribes to handle I/O errors only
func (b *Bus) OnError(fn func(ErrorEvent)) (unsubscribe func()) {
	return b.Subscribe(func(ev Event) {
		if e, ok := ev.(ErrorEvent); ok {
			fn(e)
		}
	})
}

// Publish delivers ev to every current subscriber
func (b *Bus) Publish(ev Event) {
	// Copy so subscribers may (un)subscribe while being called
	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}

// Len returns the number of subscribers
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}
