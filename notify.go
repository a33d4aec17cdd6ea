package goHawcx

import (
	"sync"

	"github.com/MrEthical07/goHawcx/emitter"
)

// notifier delivers state snapshots to observers in the order they were queued.
// Callers queue with their own state lock held, so delivery order matches the order
// of state changes, and flush after releasing it. A push made while another
// goroutine is delivering (or from inside an observer) is delivered by that
// goroutine once the current observer returns.
type notifier[S any] struct {
	observers *emitter.Channel[S]

	mu       sync.Mutex
	queue    []S
	draining bool
}

func newNotifier[S any](name string) *notifier[S] {
	return &notifier[S]{observers: emitter.New[S](name)}
}

func (n *notifier[S]) push(s S) {
	n.mu.Lock()
	n.queue = append(n.queue, s)
	n.mu.Unlock()
}

func (n *notifier[S]) flush() {
	n.mu.Lock()
	if n.draining {
		n.mu.Unlock()
		return
	}
	n.draining = true
	for len(n.queue) > 0 {
		next := n.queue[0]
		n.queue = n.queue[1:]
		n.mu.Unlock()
		n.observers.Emit(next)
		n.mu.Lock()
	}
	n.draining = false
	n.mu.Unlock()
}

func (n *notifier[S]) subscribe(fn func(S)) emitter.Subscription {
	return n.observers.Subscribe(fn)
}

// close drops queued snapshots and every observer.
func (n *notifier[S]) close() {
	n.mu.Lock()
	n.queue = nil
	n.mu.Unlock()
	n.observers.RemoveAll()
}
