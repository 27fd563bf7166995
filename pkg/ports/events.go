package ports

import (
	"context"

	"github.com/aretw0/leadchat/pkg/domain"
)

// EventSink receives analytics events. Implementations must not block the caller for long.
type EventSink interface {
	Emit(ctx context.Context, ev domain.Event)
}

// LeadSink is a best-effort destination for a finalized lead.
type LeadSink interface {
	// Name identifies the sink in logs and metrics.
	Name() string
	// Deliver sends the lead. A returned error is logged and never retried.
	Deliver(ctx context.Context, lead domain.LeadRecord) error
}
