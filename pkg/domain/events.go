package domain

import (
	"context"
	"time"
)

// EventType names an analytics event kind. The wire name is configurable.
type EventType string

const (
	EventWidgetOpen      EventType = "widgetOpen"
	EventWidgetClose     EventType = "widgetClose"
	EventMessageReceived EventType = "messageReceived"
	EventLeadCaptured    EventType = "leadCaptured"
	EventFieldFilled     EventType = "fieldFilled"
	EventRedirected      EventType = "redirected"
	EventVisitorReturned EventType = "visitorReturned"
)

// Event is one entry of the analytics stream.
type Event struct {
	Type      EventType         `json:"-"`
	Name      string            `json:"event"`
	SessionID string            `json:"session_id,omitempty"`
	VisitorID string            `json:"visitor_id"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   map[string]any    `json:"payload,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
}

// LifecycleHooks defines callbacks for session observability.
type LifecycleHooks struct {
	OnStep     func(ctx context.Context, cursor int, step Step)
	OnSuspend  func(ctx context.Context, status FlowStatus, field Field)
	OnHandoff  func(ctx context.Context, h Handoff)
	OnFinalize func(ctx context.Context, lead LeadRecord)
}
