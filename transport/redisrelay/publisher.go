package redisrelay

import (
	"context"
	"fmt"
	"time"

	goHawcx "github.com/MrEthical07/goHawcx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const emitTimeout = 2 * time.Second

// Publisher encodes events and publishes them on the engine channel names.
//
// The EmitAuth, EmitSession and EmitPush methods let a Publisher stand in for a
// Hub wherever events are produced; their errors are logged.
type Publisher struct {
	rdb  redis.UniversalClient
	opts options
}

// NewPublisher wraps rdb. Channel names get the configured prefix.
func NewPublisher(rdb redis.UniversalClient, opts ...Option) (*Publisher, error) {
	if rdb == nil {
		return nil, ErrNilClient
	}
	return &Publisher{rdb: rdb, opts: buildOptions(opts)}, nil
}

// Publish encodes event and publishes it on channel. It returns the number of
// subscribers that received it.
func (p *Publisher) Publish(ctx context.Context, channel string, event interface{ Type() string }) (int64, error) {
	data, err := goHawcx.MarshalEvent(event)
	if err != nil {
		return 0, err
	}
	n, err := p.rdb.Publish(ctx, p.opts.prefix+channel, data).Result()
	if err != nil {
		return 0, fmt.Errorf("redisrelay: publish %s: %w", channel, err)
	}
	return n, nil
}

func (p *Publisher) emit(channel string, event interface{ Type() string }) {
	ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
	defer cancel()
	if _, err := p.Publish(ctx, channel, event); err != nil {
		p.opts.log.Warn("publish failed", zap.String("channel", channel), zap.String("type", event.Type()), zap.Error(err))
	}
}

// EmitAuth publishes event on the auth channel. Failures are logged, not returned.
func (p *Publisher) EmitAuth(event goHawcx.AuthEvent) {
	p.emit(goHawcx.AuthChannelName, event)
}

// EmitSession is EmitAuth for the session channel.
func (p *Publisher) EmitSession(event goHawcx.SessionEvent) {
	p.emit(goHawcx.SessionChannelName, event)
}

// EmitPush is EmitAuth for the push channel.
func (p *Publisher) EmitPush(event goHawcx.PushEvent) {
	p.emit(goHawcx.PushChannelName, event)
}
