package emitter

import "sync"

// Subscription is the handle returned by [Channel.Subscribe].
//
// Remove is idempotent: removing twice, removing after [Channel.RemoveAll], or removing
// a single-shot listener that already fired are all no-ops.
type Subscription interface {
	Remove()
	Active() bool
}

type noopSubscription struct{}

func (noopSubscription) Remove()      {}
func (noopSubscription) Active() bool { return false }

// Once subscribes handler for the first delivered event only. The subscription
// removes itself before handler runs.
func Once[E any](c *Channel[E], handler func(E)) Subscription {
	if c == nil || handler == nil {
		return noopSubscription{}
	}

	var (
		mu    sync.Mutex
		sub   Subscription
		fired bool
	)
	ready := make(chan struct{})

	sub = c.Subscribe(func(event E) {
		<-ready
		mu.Lock()
		if fired {
			mu.Unlock()
			return
		}
		fired = true
		mu.Unlock()

		sub.Remove()
		handler(event)
	})
	close(ready)
	return sub
}
