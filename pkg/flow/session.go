package flow

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/pkg/adapters/memory"
	"github.com/aretw0/leadchat/pkg/analytics"
	"github.com/aretw0/leadchat/pkg/config"
	"github.com/aretw0/leadchat/pkg/delivery"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ledger"
	"github.com/aretw0/leadchat/pkg/observability"
	"github.com/aretw0/leadchat/pkg/ports"
	"github.com/aretw0/leadchat/pkg/schedule"
	"github.com/aretw0/leadchat/pkg/tracking"
	"github.com/benbjohnson/clock"
	"github.com/oklog/ulid/v2"
)

// DefaultDeclaration is recorded when privacy.consentDeclaration is empty.
const DefaultDeclaration = "Usuário aceitou os termos de privacidade e autorização de contato."

// Session is the controller of one chat. It owns the FlowState and the pending lead.
type Session struct {
	id       string
	cfg      *config.Config
	script   config.Script
	sched    *schedule.Scheduler
	clock    clock.Clock
	renderer ports.Renderer
	events   *analytics.Emitter
	visitors *ledger.Visitors
	tracker  *tracking.Aggregator
	page     tracking.PageRequest
	fanout   *delivery.Fanout
	metrics  *observability.Metrics
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	mobile   bool

	mu         sync.Mutex
	state      domain.FlowState
	lead       domain.LeadRecord
	saved      bool
	ended      bool
	notifier   *schedule.Notifier
	countdown  *schedule.Countdown
	lastChoice time.Time
	timers     []*clock.Timer

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session identifier.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithScheduler sets the scheduler pacing bot turns and timers.
func WithScheduler(sched *schedule.Scheduler) Option {
	return func(s *Session) { s.sched = sched }
}

// WithRenderer sets the host UI.
func WithRenderer(r ports.Renderer) Option {
	return func(s *Session) { s.renderer = r }
}

// WithEmitter sets the analytics emitter. It is scoped to the session automatically.
func WithEmitter(e *analytics.Emitter) Option {
	return func(s *Session) { s.events = e }
}

// WithVisitors sets the visitor ledger the finalized lead is cached in.
func WithVisitors(v *ledger.Visitors) Option {
	return func(s *Session) { s.visitors = v }
}

// WithTracker sets the aggregator and page used to stamp the tracking summary.
func WithTracker(a *tracking.Aggregator, page tracking.PageRequest) Option {
	return func(s *Session) {
		s.tracker = a
		s.page = page
	}
}

// WithFanout sets the delivery fan-out run in the background after finalization.
func WithFanout(f *delivery.Fanout) Option {
	return func(s *Session) { s.fanout = f }
}

// WithMetrics sets the Prometheus instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithHooks sets the lifecycle callbacks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(s *Session) { s.hooks = h }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithMobile selects the mobile hand-off: straight to the app channel.
func WithMobile(mobile bool) Option {
	return func(s *Session) { s.mobile = mobile }
}

// WithLead seeds the lead skeleton (page context, tags, tracking).
func WithLead(lead domain.LeadRecord) Option {
	return func(s *Session) { s.lead = lead.Clone() }
}

// NewSession creates a session over cfg. It returns domain.ErrConfigMissing for a nil cfg.
func NewSession(cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, domain.ErrConfigMissing
	}

	s := &Session{
		cfg:      cfg,
		script:   cfg.Messages.Flow,
		renderer: ports.NopRenderer{},
		logger:   logging.NewNop(),
		state:    domain.NewFlowState(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.sched == nil {
		s.sched = schedule.New()
	}
	s.clock = s.sched.Clock()
	if s.visitors == nil {
		lopts := []ledger.Option{ledger.WithClock(s.clock), ledger.WithTTL(cfg.TTL())}
		if cfg.Advanced.StoragePrefix != "" {
			lopts = append(lopts, ledger.WithPrefix(cfg.Advanced.StoragePrefix))
		}
		s.visitors = ledger.NewVisitors(ledger.New(memory.NewStore(), lopts...))
	}
	if s.id == "" {
		s.id = NewSessionID(s.clock.Now(), cfg.Advanced.SessionIDLength)
	}
	s.lead.ID = s.id
	s.events = s.events.ForSession(s.id)
	s.logger = s.logger.With("session_id", s.id)
	s.base, s.cancel = context.WithCancel(context.Background())

	if t := cfg.Timing; len(cfg.Messages.Notifications) > 0 {
		s.notifier = schedule.NewNotifier(s.clock, t.FirstNotification.Std(), t.SecondNotification.Std(), s.closed, s.notify)
	}

	s.metrics.SessionStarted()
	return s, nil
}

// NewSessionID returns the last n characters of a lower-cased ULID (its random part
// for n <= 16). n is clamped to [1, 26]; zero selects 16.
func NewSessionID(at time.Time, n int) string {
	id := strings.ToLower(ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String())
	switch {
	case n == 0:
		n = 16
	case n < 1:
		n = 1
	case n > len(id):
		n = len(id)
	}
	return id[len(id)-n:]
}

// ID returns the session identifier, which is also the lead identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns a copy of the flow state.
func (s *Session) State() domain.FlowState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Lead returns a copy of the pending lead.
func (s *Session) Lead() domain.LeadRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lead.Clone()
}

// Mobile reports whether the session hands off as a mobile client.
func (s *Session) Mobile() bool {
	return s.mobile
}

// Start arms the notification timers. They only fire while the chat is closed.
func (s *Session) Start() {
	if s.notifier != nil {
		s.notifier.Start()
	}
}

// Open shows the chat. It cancels both notification timers, stamps StartedAt once and,
// the first time, starts the flow after timing.openDelay. It returns once the flow
// suspends for input or consent, or terminates.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.notifier != nil {
		s.notifier.Cancel()
	}
	s.state.Open = true
	s.state.NotificationCount = 0
	if s.lead.StartedAt == nil {
		now := s.clock.Now()
		s.lead.StartedAt = &now
	}
	showConsent := s.cfg.ConsentRequired() && !s.state.ConsentGiven
	interrupted := s.state.Status == domain.StatusRunning && !s.state.Processing
	start := !s.state.Started || interrupted
	s.state.Started = true
	s.mu.Unlock()

	s.render(ctx, domain.RenderChatOpen, nil)
	s.events.Emit(ctx, domain.EventWidgetOpen, map[string]any{"sessionId": s.id})
	if showConsent {
		s.render(ctx, domain.RenderConsentShow, s.consentForm(false))
	}
	s.logger.Debug("chat opened")
	if !start {
		return nil
	}

	ctx, cancel := s.bind(ctx)
	defer cancel()
	if err := s.sched.Sleep(ctx, s.cfg.Timing.OpenDelay.Std()); err != nil {
		return err
	}
	s.advance(ctx)
	return nil
}

// Close hides the chat. It is refused with ErrChoicePending, and the choice nudged,
// while a channel choice is outstanding.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state.AwaitingChannelChoice {
		s.mu.Unlock()
		s.say(ctx, domain.RenderNudge, s.cfg.UI.ChoiceNudge)
		s.logger.Debug("close refused, awaiting channel choice")
		return ErrChoicePending
	}
	s.state.Open = false
	cursor := s.state.Cursor
	s.mu.Unlock()

	s.render(ctx, domain.RenderChatClose, nil)
	s.events.Emit(ctx, domain.EventWidgetClose, map[string]any{
		"sessionId": s.id,
		"flowIndex": cursor,
	})
	s.logger.Debug("chat closed")
	return nil
}

// Shutdown cancels every timer and in-flight pause, then waits for background
// deliveries. Later host events return ErrSessionClosed. Safe to call repeatedly.
func (s *Session) Shutdown() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	cd := s.countdown
	timers := s.timers
	s.timers = nil
	s.mu.Unlock()

	s.cancel()
	if s.notifier != nil {
		s.notifier.Cancel()
	}
	for _, t := range timers {
		t.Stop()
	}
	if cd != nil {
		cd.Stop()
		<-cd.Done()
	}
	s.wg.Wait()
	s.metrics.SessionEnded()
}

// bind derives a context that is also cancelled by Shutdown.
func (s *Session) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.base, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// live reports whether the session has not been shut down.
func (s *Session) live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.ended
}

// closed reports whether the chat surface is hidden. Used by the notifier.
func (s *Session) closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.state.Open && !s.ended
}

// notify shows staggered notification index while the chat is closed.
func (s *Session) notify(index int) {
	notes := s.cfg.Messages.Notifications
	if index < 0 || index >= len(notes) {
		return
	}

	s.mu.Lock()
	if s.state.Open || s.ended {
		s.mu.Unlock()
		return
	}
	s.state.NotificationCount = index + 1
	name := s.lead.Name
	s.mu.Unlock()

	text := Text(s.cfg, notes[index], name)
	s.say(s.base, domain.RenderBotMessage, text)
	s.render(s.base, domain.RenderNotification, domain.Notification{
		Text:   text,
		Unread: index + 1,
		At:     s.clock.Now(),
	})
	s.logger.Debug("notification shown", "index", index+1)
}

func (s *Session) render(ctx context.Context, kind string, payload any) {
	s.renderer.Render(ctx, domain.RenderCommand{Kind: kind, Payload: payload})
}

func (s *Session) say(ctx context.Context, kind, text string) {
	s.render(ctx, kind, domain.Message{Text: text, At: s.clock.Now()})
}

// text resolves tmpl against the current lead.
func (s *Session) text(tmpl string) string {
	s.mu.Lock()
	name := s.lead.Name
	s.mu.Unlock()
	return Text(s.cfg, tmpl, name)
}

func (s *Session) consentForm(checked bool) domain.ConsentForm {
	return domain.ConsentForm{
		Label:    s.cfg.Privacy.CheckboxLabel,
		LinkText: s.cfg.Privacy.LinkText,
		Checked:  checked,
	}
}
