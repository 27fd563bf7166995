package analytics

import (
	"context"
	"maps"

	"github.com/aretw0/leadchat/pkg/config"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ports"
	"github.com/benbjohnson/clock"
)

// Emitter stamps and forwards analytics events. A nil or disabled Emitter drops them.
type Emitter struct {
	sink    ports.EventSink
	enabled bool
	names   map[domain.EventType]string
	tags    map[string]string
	clock   clock.Clock
	visitor string
	session string
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithNames sets the wire name of each event type.
func WithNames(names map[domain.EventType]string) Option {
	return func(e *Emitter) { e.names = names }
}

// WithTags sets the custom tags attached to every event.
func WithTags(tags map[string]string) Option {
	return func(e *Emitter) { e.tags = tags }
}

// WithClock sets the clock used for timestamps.
func WithClock(c clock.Clock) Option {
	return func(e *Emitter) { e.clock = c }
}

// WithVisitor sets the visitor identifier.
func WithVisitor(id string) Option {
	return func(e *Emitter) { e.visitor = id }
}

// WithEnabled toggles emission.
func WithEnabled(enabled bool) Option {
	return func(e *Emitter) { e.enabled = enabled }
}

// NewEmitter creates an enabled Emitter over sink.
func NewEmitter(sink ports.EventSink, opts ...Option) *Emitter {
	e := &Emitter{
		sink:    sink,
		enabled: true,
		clock:   clock.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromConfig creates an Emitter honouring tracking.enabled, tracking.gtm and the custom tags.
func FromConfig(cfg config.Tracking, sink ports.EventSink, opts ...Option) *Emitter {
	base := []Option{
		WithEnabled(cfg.Enabled && cfg.Events.Enabled),
		WithNames(cfg.Events.Names),
		WithTags(cfg.CustomTags),
	}
	return NewEmitter(sink, append(base, opts...)...)
}

// ForSession returns a copy of e that stamps events with the session identifier.
func (e *Emitter) ForSession(id string) *Emitter {
	if e == nil {
		return nil
	}
	c := *e
	c.session = id
	return &c
}

// Enabled reports whether events reach the sink.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled && e.sink != nil
}

// Name returns the wire name of t.
func (e *Emitter) Name(t domain.EventType) string {
	if e != nil {
		if n, ok := e.names[t]; ok && n != "" {
			return n
		}
	}
	return string(t)
}

// Emit sends an event of type t with payload. The payload map is copied.
func (e *Emitter) Emit(ctx context.Context, t domain.EventType, payload map[string]any) {
	if !e.Enabled() {
		return
	}
	e.sink.Emit(ctx, domain.Event{
		Type:      t,
		Name:      e.Name(t),
		SessionID: e.session,
		VisitorID: e.visitor,
		Timestamp: e.clock.Now(),
		Payload:   maps.Clone(payload),
		Tags:      maps.Clone(e.tags),
	})
}
