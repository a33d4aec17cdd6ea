package redisrelay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrNilClient is returned when a Relay or Publisher is built without Redis.
var ErrNilClient = errors.New("redisrelay: nil redis client")

// Dispatcher receives raw records by channel name. *goHawcx.Hub implements it.
type Dispatcher interface {
	Dispatch(channel string, raw []byte) error
}

// Relay forwards Redis pub/sub messages into a Dispatcher.
type Relay struct {
	rdb    redis.UniversalClient
	target Dispatcher
	opts   options

	ready     chan struct{}
	readyOnce sync.Once
}

// NewRelay builds a relay; nothing is subscribed until Run.
func NewRelay(rdb redis.UniversalClient, target Dispatcher, opts ...Option) (*Relay, error) {
	if rdb == nil {
		return nil, ErrNilClient
	}
	if target == nil {
		return nil, errors.New("redisrelay: nil dispatcher")
	}
	return &Relay{
		rdb:    rdb,
		target: target,
		opts:   buildOptions(opts),
		ready:  make(chan struct{}),
	}, nil
}

// Ready is closed once every channel subscription is confirmed by Redis.
func (r *Relay) Ready() <-chan struct{} {
	return r.ready
}

// Run subscribes and relays until ctx is done. It returns nil on cancellation and
// the subscription error otherwise. Records that fail to decode are logged and
// skipped.
func (r *Relay) Run(ctx context.Context) error {
	names := ChannelNames()
	subject := make([]string, len(names))
	for i, name := range names {
		subject[i] = r.opts.prefix + name
	}

	ps := r.rdb.Subscribe(ctx, subject...)
	defer ps.Close()

	for confirmed := 0; confirmed < len(subject); {
		msg, err := ps.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("redisrelay: subscribe: %w", err)
		}
		switch m := msg.(type) {
		case *redis.Subscription:
			confirmed++
		case *redis.Message:
			r.forward(m)
		}
	}
	r.readyOnce.Do(func() { close(r.ready) })
	r.opts.log.Debug("relay subscribed", zap.Strings("channels", subject))

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			r.forward(m)
		}
	}
}

func (r *Relay) forward(m *redis.Message) {
	name := strings.TrimPrefix(m.Channel, r.opts.prefix)
	if err := r.target.Dispatch(name, []byte(m.Payload)); err != nil {
		r.opts.log.Debug("relay skipped record", zap.String("channel", name), zap.Error(err))
	}
}
