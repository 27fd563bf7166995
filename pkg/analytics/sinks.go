package analytics

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ports"
)

// Multi forwards every event to each sink in order. Nil sinks are skipped.
func Multi(sinks ...ports.EventSink) ports.EventSink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type multi []ports.EventSink

func (m multi) Emit(ctx context.Context, ev domain.Event) {
	for _, s := range m {
		s.Emit(ctx, ev)
	}
}

// LogSink writes events to a logger at debug level.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Emit(ctx context.Context, ev domain.Event) {
	if s.Logger == nil {
		return
	}
	s.Logger.DebugContext(ctx, "analytics event",
		"event", ev.Name,
		"session_id", ev.SessionID,
		"visitor_id", ev.VisitorID,
		"payload", ev.Payload,
	)
}

// DataLayer collects events in the flattened shape pushed to a tag manager:
// the payload keys, then the custom tags, then event, visitorId and timestamp.
// When Out is set each object is also written to it as one JSON line.
type DataLayer struct {
	Out io.Writer

	mu      sync.Mutex
	entries []map[string]any
}

// NewDataLayer creates a DataLayer writing JSON lines to out (may be nil).
func NewDataLayer(out io.Writer) *DataLayer {
	return &DataLayer{Out: out}
}

func (d *DataLayer) Emit(_ context.Context, ev domain.Event) {
	obj := Flatten(ev)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, obj)
	if d.Out != nil {
		_ = json.NewEncoder(d.Out).Encode(obj)
	}
}

// Entries returns the collected objects, oldest first.
func (d *DataLayer) Entries() []map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]map[string]any, len(d.entries))
	copy(out, d.entries)
	return out
}

// Names returns the event names collected so far, oldest first.
func (d *DataLayer) Names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.entries))
	for _, e := range d.entries {
		name, _ := e["event"].(string)
		out = append(out, name)
	}
	return out
}

// Flatten merges ev into one object. Tags override payload keys of the same name.
func Flatten(ev domain.Event) map[string]any {
	obj := make(map[string]any, len(ev.Payload)+len(ev.Tags)+4)
	for k, v := range ev.Payload {
		obj[k] = v
	}
	for k, v := range ev.Tags {
		obj[k] = v
	}
	obj["event"] = ev.Name
	obj["visitorId"] = ev.VisitorID
	if ev.SessionID != "" {
		if _, ok := obj["sessionId"]; !ok {
			obj["sessionId"] = ev.SessionID
		}
	}
	obj["timestamp"] = ev.Timestamp.UTC().Format(time.RFC3339Nano)
	return obj
}
