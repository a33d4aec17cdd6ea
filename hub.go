package goHawcx

import (
	"fmt"
	"sync/atomic"

	"github.com/MrEthical07/goHawcx/emitter"
	"go.uber.org/zap"
)

// Hub owns the three engine event channels. Every component of one client shares a
// single Hub; tests build their own and emit into it directly.
type Hub struct {
	log     *zap.Logger
	metrics atomic.Pointer[Metrics]

	auth    *emitter.Channel[AuthEvent]
	session *emitter.Channel[SessionEvent]
	push    *emitter.Channel[PushEvent]
}

// NewHub creates the auth, session and push channels. log and metrics may be nil.
func NewHub(log *zap.Logger, metrics *Metrics) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{log: log.Named("hub")}
	if metrics != nil {
		h.metrics.Store(metrics)
	}

	hook := emitter.WithPanicHook(h.listenerPanicked)
	h.auth = emitter.New[AuthEvent](AuthChannelName, hook)
	h.session = emitter.New[SessionEvent](SessionChannelName, hook)
	h.push = emitter.New[PushEvent](PushChannelName, hook)
	return h
}

// attachMetrics installs m if the hub was created without metrics.
func (h *Hub) attachMetrics(m *Metrics) {
	if m == nil {
		return
	}
	h.metrics.CompareAndSwap(nil, m)
}

func (h *Hub) counters() *Metrics {
	return h.metrics.Load()
}

func (h *Hub) listenerPanicked(channel string, recovered any) {
	h.counters().Inc(MetricListenerPanic)
	h.log.Error("event listener panicked",
		zap.String("channel", channel),
		zap.String("panic", fmt.Sprint(recovered)),
	)
}

// Auth returns the auth event channel.
func (h *Hub) Auth() *emitter.Channel[AuthEvent] {
	return h.auth
}

// Session returns the web session event channel.
func (h *Hub) Session() *emitter.Channel[SessionEvent] {
	return h.session
}

// Push returns the push event channel.
func (h *Hub) Push() *emitter.Channel[PushEvent] {
	return h.push
}

// EmitAuth counts event and delivers it to every auth listener.
func (h *Hub) EmitAuth(event AuthEvent) {
	if event == nil {
		return
	}
	m := h.counters()
	switch event.(type) {
	case OTPRequired:
		m.Inc(MetricOTPRequired)
	case AuthorizationCode:
		m.Inc(MetricAuthorizationCode)
	case AdditionalVerificationRequired:
		m.Inc(MetricAdditionalVerification)
	}
	h.auth.Emit(event)
}

// EmitSession counts event and delivers it to every session listener.
func (h *Hub) EmitSession(event SessionEvent) {
	if event == nil {
		return
	}
	switch event.(type) {
	case SessionSuccess:
		h.counters().Inc(MetricSessionSuccess)
	case SessionFailure:
		h.counters().Inc(MetricSessionFailure)
	}
	h.session.Emit(event)
}

// EmitPush counts event and delivers it to every push listener.
func (h *Hub) EmitPush(event PushEvent) {
	if event == nil {
		return
	}
	switch event.(type) {
	case PushLoginRequest:
		h.counters().Inc(MetricPushLoginRequest)
	case PushFailure:
		h.counters().Inc(MetricPushFailure)
	}
	h.push.Emit(event)
}

// Dispatch decodes a raw engine record published on channel and emits it. Records
// that fail to decode are counted, logged and returned as errors; nothing is emitted.
func (h *Hub) Dispatch(channel string, raw []byte) error {
	var err error
	switch channel {
	case AuthChannelName:
		var event AuthEvent
		if event, err = DecodeAuthEvent(raw); err == nil {
			h.EmitAuth(event)
			return nil
		}
	case SessionChannelName:
		var event SessionEvent
		if event, err = DecodeSessionEvent(raw); err == nil {
			h.EmitSession(event)
			return nil
		}
	case PushChannelName:
		var event PushEvent
		if event, err = DecodePushEvent(raw); err == nil {
			h.EmitPush(event)
			return nil
		}
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}

	h.counters().Inc(MetricEventDecodeFailure)
	h.log.Warn("dropping engine event", zap.String("channel", channel), zap.Error(err))
	return err
}

// RemoveAllListeners detaches every listener from all three channels, including
// those held by pending invocations and state machines.
func (h *Hub) RemoveAllListeners() {
	h.auth.RemoveAll()
	h.session.RemoveAll()
	h.push.RemoveAll()
}
