package leadchat

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"

	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/pkg/adapters/memory"
	"github.com/aretw0/leadchat/pkg/analytics"
	"github.com/aretw0/leadchat/pkg/config"
	"github.com/aretw0/leadchat/pkg/delivery"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/flow"
	"github.com/aretw0/leadchat/pkg/ledger"
	"github.com/aretw0/leadchat/pkg/observability"
	"github.com/aretw0/leadchat/pkg/persistence/middleware"
	"github.com/aretw0/leadchat/pkg/ports"
	"github.com/aretw0/leadchat/pkg/schedule"
	"github.com/aretw0/leadchat/pkg/tracking"
	"github.com/benbjohnson/clock"
)

// Widget is the high-level entry point of the library. It owns the ledger, the
// delivery sinks and the analytics stream shared by every session of one visitor.
type Widget struct {
	cfg      *config.Config
	backend  ports.Backend
	ledger   *ledger.Ledger
	visitors *ledger.Visitors
	backups  *ledger.BackupList
	fanout   *delivery.Fanout
	sink     ports.EventSink
	metrics  *observability.Metrics
	sched    *schedule.Scheduler
	clock    clock.Clock
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	httpClient  *http.Client
	emailSender delivery.EmailSender
	extraSinks  []ports.LeadSink
}

// Option defines a functional option for configuring the Widget.
type Option func(*Widget)

// WithBackend sets the storage behind the ledger (default: in-memory).
func WithBackend(b ports.Backend) Option {
	return func(w *Widget) { w.backend = b }
}

// WithClock sets the clock used for expiry, pacing and timestamps.
func WithClock(c clock.Clock) Option {
	return func(w *Widget) { w.clock = c }
}

// WithScheduler sets the scheduler pacing every session. It overrides WithClock for sessions.
func WithScheduler(s *schedule.Scheduler) Option {
	return func(w *Widget) { w.sched = s }
}

// WithEventSink sets the analytics destination.
func WithEventSink(s ports.EventSink) Option {
	return func(w *Widget) { w.sink = s }
}

// WithMetrics registers the Prometheus instruments. Events are counted too.
func WithMetrics(m *observability.Metrics) Option {
	return func(w *Widget) { w.metrics = m }
}

// WithLifecycleHooks registers observability hooks on every session.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Widget) { w.hooks = hooks }
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Widget) { w.logger = logger }
}

// WithHTTPClient sets the client used by the webhook and spreadsheet sinks.
func WithHTTPClient(c *http.Client) Option {
	return func(w *Widget) { w.httpClient = c }
}

// WithEmailSender replaces the Resend client of the e-mail sink.
func WithEmailSender(s delivery.EmailSender) Option {
	return func(w *Widget) { w.emailSender = s }
}

// WithSinks adds delivery sinks after the configured ones.
func WithSinks(sinks ...ports.LeadSink) Option {
	return func(w *Widget) { w.extraSinks = append(w.extraSinks, sinks...) }
}

// New validates cfg and wires the ledger, sinks and analytics.
// It returns domain.ErrConfigMissing for a nil cfg and a *config.ValidationError
// for an invalid one.
func New(cfg *config.Config, opts ...Option) (*Widget, error) {
	if cfg == nil {
		return nil, domain.ErrConfigMissing
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &Widget{cfg: cfg}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logging.NewNop()
	}
	if w.clock == nil {
		w.clock = clock.New()
	}
	if w.sched == nil {
		w.sched = schedule.New(schedule.WithClock(w.clock))
	}
	if w.backend == nil {
		w.backend = memory.NewStore()
	}

	if k := cfg.Advanced.EncryptionKey; k != "" {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("advanced.encryptionKey: %w", err)
		}
		w.backend = middleware.Wrap(w.backend, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}

	lopts := []ledger.Option{
		ledger.WithTTL(cfg.TTL()),
		ledger.WithClock(w.clock),
		ledger.WithLogger(w.logger),
	}
	if cfg.Advanced.StoragePrefix != "" {
		lopts = append(lopts, ledger.WithPrefix(cfg.Advanced.StoragePrefix))
	}
	w.ledger = ledger.New(w.backend, lopts...)
	w.visitors = ledger.NewVisitors(w.ledger)
	w.backups = ledger.NewBackupList(w.ledger, cfg.Integrations.Backup.Key, cfg.Advanced.MaxStoredLeads)

	sinks := []ports.EventSink{w.sink}
	if w.metrics != nil {
		sinks = append(sinks, w.metrics)
	}
	if cfg.Advanced.Debug {
		sinks = append(sinks, analytics.Redact(analytics.LogSink{Logger: w.logger}, analytics.DefaultRedactions...))
	}
	w.sink = analytics.Multi(sinks...)

	leadSinks := delivery.FromConfig(cfg, delivery.Deps{
		HTTPClient:  w.httpClient,
		Ledger:      w.ledger,
		EmailSender: w.emailSender,
	})
	w.fanout = delivery.NewFanout(append(leadSinks, w.extraSinks...),
		delivery.WithTimeout(cfg.Integrations.Timeout.Std()),
		delivery.WithLogger(w.logger),
		delivery.WithMetrics(w.metrics),
	)

	w.logger.Debug("widget ready", "sinks", w.fanout.Sinks(), "persistence", cfg.Tracking.Persistence.Enabled)
	return w, nil
}

// Config returns the validated configuration.
func (w *Widget) Config() *config.Config {
	return w.cfg
}

// Ledger returns the visitor ledger.
func (w *Widget) Ledger() *ledger.Ledger {
	return w.ledger
}

// Load handles a page load: it sweeps expired ledger entries, records the visit and
// returns a started session seeded with the page context. opts are applied after the
// widget defaults, so a host passes at least flow.WithRenderer.
func (w *Widget) Load(ctx context.Context, req tracking.PageRequest, opts ...flow.Option) (*flow.Session, error) {
	w.SweepLedger(ctx)

	visitorID := w.visitors.ID(ctx)
	events := w.emitter(visitorID)
	tracker := w.tracker(events)
	if w.cfg.Tracking.Enabled {
		tracker.TrackVisit(ctx, req)
	}
	snap := tracker.Snapshot(ctx, req)

	skeleton := domain.LeadRecord{
		VisitorID: visitorID,
		UTM:       maps.Clone(snap.UTM),
		Tags:      maps.Clone(w.cfg.Tracking.CustomTags),
		Tracking:  snap.Summary(),
		PageURL:   req.URL,
		PageTitle: req.Title,
		UserAgent: req.Device.UserAgent,
	}

	base := []flow.Option{
		flow.WithScheduler(w.sched),
		flow.WithEmitter(events),
		flow.WithVisitors(w.visitors),
		flow.WithTracker(tracker, req),
		flow.WithFanout(w.fanout),
		flow.WithMetrics(w.metrics),
		flow.WithHooks(w.hooks),
		flow.WithLogger(w.logger),
		flow.WithMobile(req.IsMobile()),
		flow.WithLead(skeleton),
	}
	sess, err := flow.NewSession(w.cfg, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	sess.Start()

	w.logger.Info("session loaded",
		"session_id", sess.ID(),
		"visitor_id", visitorID,
		"returning", snap.IsReturning,
		"converted", snap.HasConverted,
	)
	return sess, nil
}

func (w *Widget) emitter(visitorID string) *analytics.Emitter {
	return analytics.FromConfig(w.cfg.Tracking, w.sink,
		analytics.WithClock(w.clock),
		analytics.WithVisitor(visitorID),
	)
}

func (w *Widget) tracker(events *analytics.Emitter) *tracking.Aggregator {
	return tracking.NewAggregator(w.visitors, w.cfg.Tracking,
		tracking.WithEmitter(events),
		tracking.WithLogger(w.logger),
	)
}

// VisitorID returns the stable visitor identifier.
func (w *Widget) VisitorID(ctx context.Context) string {
	return w.visitors.ID(ctx)
}

// TrackingData returns the visitor snapshot merged with req.
func (w *Widget) TrackingData(ctx context.Context, req tracking.PageRequest) tracking.Snapshot {
	return w.tracker(nil).Snapshot(ctx, req)
}

// IsReturning reports whether the visitor loaded more than one page.
func (w *Widget) IsReturning(ctx context.Context) bool {
	return w.visitors.IsReturning(ctx)
}

// HasConverted reports whether the visitor ever completed the script.
func (w *Widget) HasConverted(ctx context.Context) bool {
	return w.visitors.HasConverted(ctx)
}

// CachedLead returns the last finalized lead of the visitor.
func (w *Widget) CachedLead(ctx context.Context) (domain.LeadRecord, bool) {
	return w.visitors.CachedLead(ctx)
}

// SweepLedger evicts every expired ledger entry and returns how many were removed.
func (w *Widget) SweepLedger(ctx context.Context) int {
	n := w.ledger.SweepExpired(ctx)
	w.metrics.Swept(n)
	if n > 0 {
		w.logger.Debug("ledger swept", "removed", n)
	}
	return n
}

// Backups returns the local lead backup list, oldest first.
func (w *Widget) Backups(ctx context.Context) []ledger.BackupEntry {
	return w.backups.Entries(ctx)
}
