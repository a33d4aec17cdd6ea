package emitter

import (
	"fmt"
	"sync"
)

// PanicHook receives the channel name and recovered value when a listener panics.
type PanicHook func(channel string, recovered any)

// Option configures a [Channel].
type Option func(*options)

type options struct {
	onPanic PanicHook
}

// WithPanicHook installs a hook that observes recovered listener panics.
func WithPanicHook(hook PanicHook) Option {
	return func(o *options) {
		o.onPanic = hook
	}
}

// Channel is a broadcast event stream identified by name. Every active listener
// receives every emitted event; filtering is the listener's job.
//
// Channel is safe for concurrent use.
type Channel[E any] struct {
	name    string
	onPanic PanicHook

	mu        sync.Mutex
	nextID    uint64
	listeners []*listener[E]
}

type listener[E any] struct {
	id      uint64
	handler func(E)
	owner   *Channel[E]
	once    sync.Once

	mu     sync.Mutex
	active bool
}

// New creates an empty channel.
func New[E any](name string, opts ...Option) *Channel[E] {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Channel[E]{
		name:    name,
		onPanic: o.onPanic,
	}
}

// Name returns the channel name.
func (c *Channel[E]) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// Subscribe registers handler. The listener is active when Subscribe returns, so an
// event emitted after this call is never missed.
func (c *Channel[E]) Subscribe(handler func(E)) Subscription {
	if c == nil || handler == nil {
		return noopSubscription{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	l := &listener[E]{
		id:      c.nextID,
		handler: handler,
		owner:   c,
		active:  true,
	}
	c.listeners = append(c.listeners, l)
	return l
}

// Emit delivers event to every active listener.
func (c *Channel[E]) Emit(event E) {
	if c == nil {
		return
	}

	c.mu.Lock()
	snapshot := make([]*listener[E], len(c.listeners))
	copy(snapshot, c.listeners)
	c.mu.Unlock()

	for _, l := range snapshot {
		c.deliver(l, event)
	}
}

func (c *Channel[E]) deliver(l *listener[E], event E) {
	if !l.isActive() {
		return
	}
	defer func() {
		if r := recover(); r != nil && c.onPanic != nil {
			c.onPanic(c.name, r)
		}
	}()
	l.handler(event)
}

// RemoveAll detaches every listener. Subscriptions returned earlier stay valid
// handles whose Remove is a no-op.
func (c *Channel[E]) RemoveAll() {
	if c == nil {
		return
	}

	c.mu.Lock()
	removed := c.listeners
	c.listeners = nil
	c.mu.Unlock()

	for _, l := range removed {
		l.deactivate()
	}
}

// Len reports the number of active listeners.
func (c *Channel[E]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

func (c *Channel[E]) String() string {
	return fmt.Sprintf("emitter.Channel(%s, listeners=%d)", c.Name(), c.Len())
}

func (c *Channel[E]) detach(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, l := range c.listeners {
		if l.id == id {
			c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
			return
		}
	}
}

// Remove detaches the listener from its channel. Safe to call any number of times.
func (l *listener[E]) Remove() {
	l.once.Do(func() {
		l.deactivate()
		l.owner.detach(l.id)
	})
}

// Active reports whether the listener still receives events.
func (l *listener[E]) Active() bool {
	return l.isActive()
}

func (l *listener[E]) isActive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

func (l *listener[E]) deactivate() {
	l.mu.Lock()
	l.active = false
	l.mu.Unlock()
}
