package correlate

import (
	"context"
	"errors"
	"sync"

	"github.com/MrEthical07/goHawcx/emitter"
)

// ErrNilCommand is returned by a flow started without a command.
var ErrNilCommand = errors.New("correlate: nil command")

// Settlement is the terminal outcome chosen by a Match function.
type Settlement[T any] struct {
	Value T
	Err   error
}

// Resolve builds a successful settlement.
func Resolve[T any](v T) Settlement[T] {
	return Settlement[T]{Value: v}
}

// Reject builds a failed settlement.
func Reject[T any](err error) Settlement[T] {
	return Settlement[T]{Err: err}
}

// Options wires a flow to its event source and command.
type Options[E, T any] struct {
	// Subscribe attaches handler to the event source. Required.
	Subscribe func(handler func(E)) emitter.Subscription
	// Command is dispatched on its own goroutine after the subscription is active.
	Command func(ctx context.Context) error
	// Match inspects an event and reports whether it is terminal.
	Match func(E) (Settlement[T], bool)
	// Observe runs for every event delivered while the flow is pending, before Match.
	// Events are handled one at a time in arrival order, so Observe never runs for
	// an event handled after a terminal event. An event emitted from inside Observe
	// is handled once Observe returns. Cancel or a command failure does not wait
	// for an Observe already running.
	Observe func(E)
	// OnSettle runs once, after the outcome is recorded and the subscription removed.
	OnSettle func(Settlement[T], Cause)
}

// Cause tells how a flow was settled.
type Cause int

const (
	// CauseEvent means a terminal event settled the flow.
	CauseEvent Cause = iota + 1
	// CauseCommand means the command itself failed.
	CauseCommand
	// CauseCancel means Cancel was called first.
	CauseCancel
)

func (c Cause) String() string {
	switch c {
	case CauseEvent:
		return "event"
	case CauseCommand:
		return "command"
	case CauseCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Flow is a pending correlation. It is exclusively owned by the caller of [Start].
type Flow[T any] struct {
	mu       sync.Mutex
	sub      emitter.Subscription
	settled  bool
	outcome  Settlement[T]
	cause    Cause
	done     chan struct{}
	onSettle func(Settlement[T], Cause)

	qmu      sync.Mutex
	queue    []func()
	draining bool
}

// Start subscribes, then dispatches the command, and returns the pending flow.
func Start[E, T any](ctx context.Context, opts Options[E, T]) *Flow[T] {
	if ctx == nil {
		ctx = context.Background()
	}

	f := &Flow[T]{
		done:     make(chan struct{}),
		onSettle: opts.OnSettle,
	}

	if opts.Command == nil {
		f.settle(Reject[T](ErrNilCommand), CauseCommand)
		return f
	}

	if opts.Subscribe != nil {
		sub := opts.Subscribe(func(event E) {
			f.serialize(func() {
				if f.Settled() {
					return
				}
				if opts.Observe != nil {
					opts.Observe(event)
				}
				if opts.Match == nil {
					return
				}
				if s, terminal := opts.Match(event); terminal {
					f.settle(s, CauseEvent)
				}
			})
		})
		f.attach(sub)
	}

	go func() {
		if err := opts.Command(ctx); err != nil {
			f.settle(Reject[T](err), CauseCommand)
		}
	}()

	return f
}

// serialize runs handle after every earlier queued handler. The goroutine that
// finds the queue idle drains it; others enqueue and return.
func (f *Flow[T]) serialize(handle func()) {
	f.qmu.Lock()
	f.queue = append(f.queue, handle)
	if f.draining {
		f.qmu.Unlock()
		return
	}
	f.draining = true
	for len(f.queue) > 0 {
		next := f.queue[0]
		f.queue = f.queue[1:]
		f.qmu.Unlock()
		next()
		f.qmu.Lock()
	}
	f.draining = false
	f.qmu.Unlock()
}

func (f *Flow[T]) attach(sub emitter.Subscription) {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		sub.Remove()
		return
	}
	f.sub = sub
	f.mu.Unlock()
}

// settle records the outcome if the flow is still pending. It reports whether this
// call won.
func (f *Flow[T]) settle(s Settlement[T], cause Cause) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	f.outcome = s
	f.cause = cause
	sub := f.sub
	f.sub = nil
	f.mu.Unlock()

	// Done closes last so a waiter observes the detached subscription and the
	// OnSettle side effects.
	defer close(f.done)
	if sub != nil {
		sub.Remove()
	}
	if f.onSettle != nil {
		f.onSettle(s, cause)
	}
	return true
}

// Cancel settles a pending flow with err and detaches it from the event source. It
// reports whether the flow was still pending; once settled it is a no-op.
func (f *Flow[T]) Cancel(err error) bool {
	if f == nil {
		return false
	}
	return f.settle(Reject[T](err), CauseCancel)
}

// Done is closed once the flow settles.
func (f *Flow[T]) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether an outcome has been recorded.
func (f *Flow[T]) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

// Subscribed reports whether the flow still holds its event subscription. It is
// false as soon as the flow settles.
func (f *Flow[T]) Subscribed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sub != nil
}

// Peek returns the outcome without blocking. ok is false while pending.
func (f *Flow[T]) Peek() (s Settlement[T], ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.settled {
		return s, false
	}
	return f.outcome, true
}

// Cause returns how the flow settled, or 0 while pending.
func (f *Flow[T]) Cause() Cause {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cause
}

// Wait blocks until the flow settles or ctx is done. A context error does not settle
// the flow.
func (f *Flow[T]) Wait(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-f.done:
		s, _ := f.Peek()
		return s.Value, s.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
