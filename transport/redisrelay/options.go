package redisrelay

import (
	goHawcx "github.com/MrEthical07/goHawcx"
	"go.uber.org/zap"
)

// Option configures a Relay or Publisher.
type Option func(*options)

type options struct {
	prefix string
	log    *zap.Logger
}

// WithPrefix prepends prefix to every channel name, e.g. "tenant-a:".
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	return o
}

// ChannelNames lists the engine channel names in subscription order.
func ChannelNames() []string {
	return []string{
		goHawcx.AuthChannelName,
		goHawcx.SessionChannelName,
		goHawcx.PushChannelName,
	}
}
