package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/observability"
	"github.com/aretw0/leadchat/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds each sink delivery.
const DefaultTimeout = 10 * time.Second

// Result is the outcome of one sink delivery.
type Result struct {
	Sink     string
	Err      error
	Duration time.Duration
}

// Fanout dispatches leads to a fixed set of sinks.
type Fanout struct {
	sinks   []ports.LeadSink
	timeout time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures a Fanout.
type Option func(*Fanout)

// WithTimeout bounds each delivery. Zero or negative keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(f *Fanout) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fanout) { f.logger = logger }
}

// WithMetrics records each delivery on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(f *Fanout) { f.metrics = m }
}

// NewFanout creates a Fanout over sinks. Nil sinks are skipped.
func NewFanout(sinks []ports.LeadSink, opts ...Option) *Fanout {
	f := &Fanout{
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
	}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Sinks returns the sink names in dispatch order.
func (f *Fanout) Sinks() []string {
	names := make([]string, len(f.sinks))
	for i, s := range f.sinks {
		names[i] = s.Name()
	}
	return names
}

// Dispatch delivers lead to every sink concurrently and waits for all of them.
// The returned slice holds one Result per sink, in sink order.
func (f *Fanout) Dispatch(ctx context.Context, lead domain.LeadRecord) []Result {
	results := make([]Result, len(f.sinks))

	// Sinks report failures through results; the group never short-circuits.
	var g errgroup.Group
	for i, sink := range f.sinks {
		g.Go(func() error {
			results[i] = f.deliver(ctx, sink, lead.Clone())
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (f *Fanout) deliver(ctx context.Context, sink ports.LeadSink, lead domain.LeadRecord) (res Result) {
	res.Sink = sink.Name()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("sink panicked: %v", r)
		}
		res.Duration = time.Since(start)
		f.metrics.ObserveDelivery(res.Sink, res.Duration, res.Err)
		if res.Err != nil {
			f.logger.Error("lead delivery failed", "sink", res.Sink, "lead_id", lead.ID, "err", res.Err)
			return
		}
		f.logger.Debug("lead delivered", "sink", res.Sink, "lead_id", lead.ID, "duration", res.Duration)
	}()

	res.Err = sink.Deliver(ctx, lead)
	return res
}
