package goHawcx

import (
	"errors"
	"time"

	"github.com/MrEthical07/goHawcx/logger"
	"go.uber.org/zap"
)

// Builder assembles a Client. A Builder is single use.
type Builder struct {
	config Config
	bridge Bridge
	hub    *Hub
	log    *zap.Logger

	auditSink AuditSink
	clock     func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBridge sets the engine command surface. Required.
func (b *Builder) WithBridge(bridge Bridge) *Builder {
	b.bridge = bridge
	return b
}

// WithHub shares an existing Hub. Without one, Build creates a fresh Hub.
func (b *Builder) WithHub(hub *Hub) *Builder {
	b.hub = hub
	return b
}

// WithLogger sets the client logger. nil means a no-op logger.
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.log = log
	return b
}

// WithPlatform selects which push token command the client accepts.
func (b *Builder) WithPlatform(p Platform) *Builder {
	b.config.Platform = p
	return b
}

// WithAuditSink sets the sink and enables audit.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	if sink != nil {
		b.config.Audit.Enabled = true
	}
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the settle latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// withClock overrides time for latency tests.
func (b *Builder) withClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// Build validates the configuration and returns the client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.bridge == nil {
		return nil, ErrBridgeRequired
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.OrNop(b.log)
	metrics := NewMetrics(cfg.Metrics)

	hub := b.hub
	if hub == nil {
		hub = NewHub(log, metrics)
	} else {
		hub.attachMetrics(metrics)
	}

	now := b.clock
	if now == nil {
		now = time.Now
	}

	c := &Client{
		cfg:     cfg,
		bridge:  b.bridge,
		hub:     hub,
		log:     log.With(zap.String("platform", cfg.Platform.String())),
		metrics: metrics,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		now:     now,
	}

	b.built = true
	return c, nil
}
