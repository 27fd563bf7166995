package flow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/leadchat/pkg/adapters/memory"
	"github.com/aretw0/leadchat/pkg/analytics"
	"github.com/aretw0/leadchat/pkg/config"
	"github.com/aretw0/leadchat/pkg/delivery"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/flow"
	"github.com/aretw0/leadchat/pkg/ledger"
	"github.com/aretw0/leadchat/pkg/ports"
	"github.com/aretw0/leadchat/pkg/schedule"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// recorder is a host UI that keeps every render command.
type recorder struct {
	mu   sync.Mutex
	cmds []domain.RenderCommand
}

func (r *recorder) Render(_ context.Context, cmd domain.RenderCommand) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, cmd)
}

func (r *recorder) all(kind string) []domain.RenderCommand {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.RenderCommand
	for _, c := range r.cmds {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func (r *recorder) count(kind string) int {
	return len(r.all(kind))
}

func (r *recorder) texts(kind string) []string {
	var out []string
	for _, c := range r.all(kind) {
		if m, ok := c.Payload.(domain.Message); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (r *recorder) handoffs() []domain.Handoff {
	var out []domain.Handoff
	for _, c := range r.all(domain.RenderOpenURL) {
		out = append(out, c.Payload.(domain.Handoff))
	}
	return out
}

// instantConfig returns the reference configuration with every pause removed.
func instantConfig() *config.Config {
	cfg := config.Default()
	cfg.Timing = config.Timing{CountdownTick: config.Ms(1000)}
	cfg.Messages.Notifications = nil
	return cfg
}

type harness struct {
	sess     *flow.Session
	ui       *recorder
	mock     *clock.Mock
	visitors *ledger.Visitors
	backups  *ledger.BackupList
	events   *analytics.DataLayer
}

func newHarness(t *testing.T, cfg *config.Config, opts ...flow.Option) *harness {
	t.Helper()

	mock := clock.NewMock()
	mock.Set(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	l := ledger.New(memory.NewStore(), ledger.WithClock(mock))
	h := &harness{
		ui:       &recorder{},
		mock:     mock,
		visitors: ledger.NewVisitors(l),
		backups:  ledger.NewBackupList(l, "", 10),
		events:   analytics.NewDataLayer(nil),
	}

	base := []flow.Option{
		flow.WithID("sess-1"),
		flow.WithScheduler(schedule.New(schedule.WithClock(mock))),
		flow.WithRenderer(h.ui),
		flow.WithVisitors(h.visitors),
		flow.WithEmitter(analytics.FromConfig(cfg.Tracking, h.events, analytics.WithClock(mock))),
		flow.WithFanout(delivery.NewFanout([]ports.LeadSink{&delivery.BackupSink{List: h.backups}})),
	}
	sess, err := flow.NewSession(cfg, append(base, opts...)...)
	require.NoError(t, err)
	h.sess = sess
	t.Cleanup(sess.Shutdown)
	return h
}

func (h *harness) fill(t *testing.T, ctx context.Context) {
	t.Helper()
	require.NoError(t, h.sess.Open(ctx))
	require.NoError(t, h.sess.Submit(ctx, "Maria Silva"))
	require.NoError(t, h.sess.Submit(ctx, " Maria@Example.com "))
	require.NoError(t, h.sess.Submit(ctx, "(11) 99999-8888"))
}

func countNames(names []string, want string) int {
	n := 0
	for _, name := range names {
		if name == want {
			n++
		}
	}
	return n
}

func TestNewSession_RequiresConfig(t *testing.T) {
	_, err := flow.NewSession(nil)
	assert.ErrorIs(t, err, domain.ErrConfigMissing)
}

func TestNewSessionID(t *testing.T) {
	at := time.Now()
	assert.Len(t, flow.NewSessionID(at, 0), 16)
	assert.Len(t, flow.NewSessionID(at, 8), 8)
	assert.Len(t, flow.NewSessionID(at, 99), 26)
	assert.NotEqual(t, flow.NewSessionID(at, 16), flow.NewSessionID(at, 16))
}

func TestSession_OpenRunsUntilFirstInput(t *testing.T) {
	ctx := context.Background()
	cfg := instantConfig()
	h := newHarness(t, cfg)

	require.NoError(t, h.sess.Open(ctx))

	st := h.sess.State()
	assert.Equal(t, domain.StatusAwaitingInput, st.Status)
	assert.Equal(t, domain.FieldName, st.CurrentField)
	assert.Equal(t, 1, st.Cursor)
	assert.False(t, st.Processing)
	assert.Equal(t, []string{"Pra começar, como posso te chamar?"}, h.ui.texts(domain.RenderBotMessage))
	assert.Equal(t, 1, h.ui.count(domain.RenderConsentShow), "consent area is shown from the start")

	prompt := h.ui.all(domain.RenderInputEnable)[0].Payload.(domain.InputPrompt)
	assert.Equal(t, domain.FieldName, prompt.Field)
	assert.Equal(t, "Seu nome...", prompt.Placeholder)
	assert.NotNil(t, h.sess.Lead().StartedAt)

	// Opening again does not restart the script.
	require.NoError(t, h.sess.Open(ctx))
	assert.Len(t, h.ui.texts(domain.RenderBotMessage), 1)
	assert.Equal(t, 2, countNames(h.events.Names(), "whatsapp_widget_open"))
}

func TestSession_CompletesScriptOnce(t *testing.T) {
	ctx := context.Background()
	cfg := instantConfig()
	cfg.Privacy.Enabled = false
	cfg.Channel.DesktopBehavior = domain.PolicyApp
	h := newHarness(t, cfg)

	h.fill(t, ctx)

	st := h.sess.State()
	assert.Equal(t, domain.StatusTerminated, st.Status)
	assert.Equal(t, len(cfg.Messages.Flow), st.Cursor)
	assert.Contains(t, h.ui.texts(domain.RenderBotMessage), "Que bom te conhecer, Maria Silva! Me passa seu melhor e-mail?")
	assert.Equal(t, []string{"Maria Silva", "maria@example.com", "(11) 99999-8888"}, h.ui.texts(domain.RenderUserMessage))
	assert.Equal(t, 3, h.ui.count(domain.RenderReadReceipt))

	handoffs := h.ui.handoffs()
	require.Len(t, handoffs, 1)
	assert.Equal(t, domain.ChannelApp, handoffs[0].Channel)
	assert.Contains(t, handoffs[0].URL, "https://wa.me/5519991078220?text=")
	assert.Contains(t, handoffs[0].URL, "Maria%20Silva")

	// A second round of the same values is ignored.
	for _, v := range []string{"Maria Silva", "maria@example.com", "11999998888"} {
		assert.ErrorIs(t, h.sess.Submit(ctx, v), flow.ErrNotAwaitingInput)
	}

	h.sess.Shutdown()

	lead, ok := h.visitors.CachedLead(ctx)
	require.True(t, ok)
	assert.Equal(t, "sess-1", lead.ID)
	assert.Equal(t, "Maria Silva", lead.Name)
	assert.Equal(t, "maria@example.com", lead.Email)
	assert.Equal(t, "11999998888", lead.Phone)
	require.NotNil(t, lead.CompletedAt)
	assert.True(t, lead.CompletedAt.Equal(h.mock.Now()))
	assert.Equal(t, h.visitors.ID(ctx), lead.VisitorID)
	assert.True(t, h.visitors.HasConverted(ctx))

	assert.Len(t, h.backups.Entries(ctx), 1, "exactly one delivery")

	names := h.events.Names()
	assert.Equal(t, 1, countNames(names, "whatsapp_lead_captured"))
	assert.Equal(t, 3, countNames(names, "whatsapp_field_filled"))
	assert.Equal(t, 1, countNames(names, "whatsapp_redirect"))
}

func TestSession_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	cfg := instantConfig()
	h := newHarness(t, cfg)
	require.NoError(t, h.sess.Open(ctx))

	err := h.sess.Submit(ctx, "Jo3ão")
	require.ErrorIs(t, err, flow.ErrInvalidInput)
	var verr *flow.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, domain.FieldName, verr.Field)

	assert.Equal(t, []string{cfg.Messages.Validation[domain.FieldName]}, h.ui.texts(domain.RenderError))
	st := h.sess.State()
	assert.Equal(t, 1, st.Cursor, "a rejected value does not advance")
	assert.Equal(t, domain.FieldName, st.CurrentField)

	assert.ErrorIs(t, h.sess.Submit(ctx, "   "), flow.ErrNotAwaitingInput)

	require.NoError(t, h.sess.Submit(ctx, "João"))
	assert.Equal(t, domain.FieldEmail, h.sess.State().CurrentField)
}

func TestSession_ConsentGate(t *testing.T) {
	ctx := context.Background()
	cfg := instantConfig()
	cfg.Channel.DesktopBehavior = domain.PolicyWeb
	h := newHarness(t, cfg)

	h.fill(t, ctx)

	st := h.sess.State()
	assert.Equal(t, domain.StatusAwaitingConsent, st.Status)
	assert.Equal(t, domain.FieldConsent, st.CurrentField)
	assert.Empty(t, h.ui.handoffs(), "no hand-off before consent")
	assert.Contains(t, h.ui.texts(domain.RenderBotMessage), cfg.Privacy.ConfirmationMessage)

	assert.ErrorIs(t, h.sess.Submit(ctx, "ok"), flow.ErrConsentRequired)
	assert.Contains(t, h.ui.texts(domain.RenderError), cfg.Privacy.RequiredMessage)

	require.NoError(t, h.sess.SetConsent(ctx, true))

	assert.Equal(t, domain.StatusTerminated, h.sess.State().Status)
	handoffs := h.ui.handoffs()
	require.Len(t, handoffs, 1)
	assert.Equal(t, domain.ChannelWeb, handoffs[0].Channel)
	assert.Contains(t, handoffs[0].URL, "https://web.whatsapp.com/send?phone=5519991078220&text=")
	assert.Contains(t, h.ui.texts(domain.RenderUserMessage), cfg.UI.ConsentAccepted)
	assert.Equal(t, 3, countNames(h.events.Names(), "whatsapp_field_filled"), "fields are not re-validated")

	lead := h.sess.Lead()
	assert.True(t, lead.PrivacyAccepted)
	require.NotNil(t, lead.ConsentDeclaration)
	assert.Equal(t, cfg.Privacy.ConsentDeclaration, *lead.ConsentDeclaration)

	cached, ok := h.visitors.CachedLead(ctx)
	require.True(t, ok)
	assert.True(t, cached.PrivacyAccepted, "consent given after completion reaches the cached lead")
}

func TestSession_ConcurrentSubmitsAdvanceOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, instantConfig())
	require.NoError(t, h.sess.Open(ctx))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = h.sess.Submit(ctx, "Maria Silva")
		}()
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, flow.ErrNotAwaitingInput), errors.Is(err, flow.ErrInvalidInput):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, accepted, "exactly one submit is taken")
	assert.Equal(t, []string{"Maria Silva"}, h.ui.texts(domain.RenderUserMessage))
	assert.Equal(t, 1, countNames(h.events.Names(), "whatsapp_field_filled"))

	st := h.sess.State()
	assert.Equal(t, domain.FieldEmail, st.CurrentField)
	assert.False(t, st.Processing)
	assert.Equal(t, "Maria Silva", h.sess.Lead().Name)
}

func TestSession_ConsentDuringGateTypingSkipsTheGate(t *testing.T) {
	ctx := context.Background()
	cfg := instantConfig()
	cfg.Channel.DesktopBehavior = domain.PolicyWeb

	var (
		h          *harness
		armed      bool
		consentErr error
	)
	ui := ports.RendererFunc(func(ctx context.Context, cmd domain.RenderCommand) {
		h.ui.Render(ctx, cmd)
		if cmd.Kind == domain.RenderTypingShow && armed {
			armed = false
			consentErr = h.sess.SetConsent(ctx, true)
		}
	})
	h = newHarness(t, cfg, flow.WithRenderer(ui), flow.WithHooks(domain.LifecycleHooks{
		OnStep: func(_ context.Context, _ int, step domain.Step) {
			if _, ok := step.(domain.RedirectStep); ok {
				armed = true
			}
		},
	}))

	h.fill(t, ctx)
	require.NoError(t, consentErr)

	st := h.sess.State()
	assert.Equal(t, domain.StatusTerminated, st.Status)
	assert.Equal(t, domain.FieldNone, st.CurrentField)
	assert.Len(t, h.ui.handoffs(), 1, "the running pass hands off once")
	assert.NotContains(t, h.ui.texts(domain.RenderUserMessage), cfg.UI.ConsentAccepted,
		"consent given mid-pass does not start a second pass")
	assert.True(t, h.sess.Lead().PrivacyAccepted)
}

func TestSession_ConsentBeforeGateSkipsIt(t *testing.T) {
	ctx := context.Background()
	cfg := instantConfig()
	cfg.Channel.DesktopBehavior = domain.PolicyApp
	h := newHarness(t, cfg)

	require.NoError(t, h.sess.Open(ctx))
	require.NoError(t, h.sess.SetConsent(ctx, true))
	require.NoError(t, h.sess.Submit(ctx, "Maria Silva"))
	require.NoError(t, h.sess.Submit(ctx, "maria@example.com"))
	require.NoError(t, h.sess.Submit(ctx, "11999998888"))

	assert.Equal(t, domain.StatusTerminated, h.sess.State().Status)
	assert.Len(t, h.ui.handoffs(), 1)
	assert.NotContains(t, h.ui.texts(domain.RenderBotMessage), cfg.Privacy.ConfirmationMessage)
}

func TestSession_WithdrawConsentKeepsConversion(t *testing.T) {
	ctx := context.Background()
	cfg := instantConfig()
	h := newHarness(t, cfg)

	h.fill(t, ctx)
	require.NoError(t, h.sess.SetConsent(ctx, true))
	require.NoError(t, h.sess.SetConsent(ctx, false))

	lead := h.sess.Lead()
	assert.False(t, lead.PrivacyAccepted)
	assert.Nil(t, lead.PrivacyAcceptedAt)
	assert.Nil(t, lead.ConsentDeclaration)

	cached, ok := h.visitors.CachedLead(ctx)
	require.True(t, ok)
	assert.False(t, cached.PrivacyAccepted)
	assert.Nil(t, cached.ConsentDeclaration)
	assert.True(t, h.visitors.HasConverted(ctx))
}

func askConfig() *config.Config {
	cfg := instantConfig()
	cfg.Privacy.Enabled = false
	cfg.Channel.DesktopBehavior = domain.PolicyAsk
	cfg.Channel.AutoRedirectSeconds = 3
	return cfg
}

func TestSession_ChoiceBlocksCloseUntilClick(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, askConfig())

	h.fill(t, ctx)

	choices := h.ui.all(domain.RenderChannelChoice)
	require.Len(t, choices, 1)
	choice := choices[0].Payload.(domain.ChannelChoice)
	assert.Equal(t, 3, choice.Seconds)
	assert.Contains(t, choice.AppURL, "https://wa.me/")
	assert.Contains(t, choice.WebURL, "https://web.whatsapp.com/")
	assert.True(t, h.sess.State().AwaitingChannelChoice)

	assert.ErrorIs(t, h.sess.Close(ctx), flow.ErrChoicePending)
	assert.True(t, h.sess.State().Open, "session remains open")
	assert.Equal(t, 1, h.ui.count(domain.RenderNudge))

	require.NoError(t, h.sess.ChooseChannel(ctx, domain.ChannelWeb))
	assert.False(t, h.sess.State().AwaitingChannelChoice)
	assert.ErrorIs(t, h.sess.ChooseChannel(ctx, domain.ChannelApp), flow.ErrChoiceCooldown)

	require.NoError(t, h.sess.Close(ctx))
	assert.False(t, h.sess.State().Open)

	h.mock.Add(2 * time.Second)
	require.NoError(t, h.sess.ChooseChannel(ctx, domain.ChannelApp), "later clicks re-open")

	assert.Equal(t, 1, h.ui.count(domain.RenderChoiceResolved))
	handoffs := h.ui.handoffs()
	require.Len(t, handoffs, 2)
	assert.Equal(t, domain.ChannelWeb, handoffs[0].Channel)
	assert.Equal(t, domain.ChannelApp, handoffs[1].Channel)
}

func TestSession_ChoiceExpiresToApp(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, askConfig())

	h.fill(t, ctx)
	assert.ErrorIs(t, h.sess.Close(ctx), flow.ErrChoicePending)

	for i := 1; i <= 3; i++ {
		h.mock.Add(time.Second)
		require.Eventually(t, func() bool { return h.ui.count(domain.RenderCountdown) == i }, time.Second, time.Millisecond)
	}
	require.Eventually(t, func() bool { return len(h.ui.handoffs()) == 1 }, time.Second, time.Millisecond)

	assert.Equal(t, domain.ChannelApp, h.ui.handoffs()[0].Channel)
	assert.False(t, h.sess.State().AwaitingChannelChoice)
	require.NoError(t, h.sess.Close(ctx))

	require.NoError(t, h.sess.ChooseChannel(ctx, domain.ChannelWeb))
	assert.Equal(t, 1, h.ui.count(domain.RenderChoiceResolved), "expiry already resolved the choice")
}

func TestSession_MobileSkipsChoice(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, askConfig(), flow.WithMobile(true))

	h.fill(t, ctx)

	assert.Zero(t, h.ui.count(domain.RenderChannelChoice))
	handoffs := h.ui.handoffs()
	require.Len(t, handoffs, 1)
	assert.Equal(t, domain.ChannelApp, handoffs[0].Channel)
	require.NoError(t, h.sess.Close(ctx))
}

func TestSession_ChooseChannelErrors(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, askConfig())

	assert.ErrorIs(t, h.sess.ChooseChannel(ctx, domain.ChannelApp), flow.ErrNoChoicePending)
	assert.ErrorIs(t, h.sess.ChooseChannel(ctx, "sms"), flow.ErrUnknownChannel)
}

func TestSession_NotificationsWhileClosed(t *testing.T) {
	ctx := context.Background()
	cfg := instantConfig()
	cfg.Messages.Notifications = config.Default().Messages.Notifications
	cfg.Timing.FirstNotification = config.Ms(2000)
	cfg.Timing.SecondNotification = config.Ms(7000)
	h := newHarness(t, cfg)

	h.sess.Start()
	h.mock.Add(2 * time.Second)
	require.Eventually(t, func() bool { return h.ui.count(domain.RenderNotification) == 1 }, time.Second, time.Millisecond)

	n := h.ui.all(domain.RenderNotification)[0].Payload.(domain.Notification)
	assert.Equal(t, "Olá! Sou o João, estou fazendo seu primeiro atendimento 😊", n.Text)
	assert.Equal(t, 1, n.Unread)
	assert.Equal(t, 1, h.sess.State().NotificationCount)

	require.NoError(t, h.sess.Open(ctx))
	assert.Zero(t, h.sess.State().NotificationCount)

	h.mock.Add(10 * time.Second)
	assert.Never(t, func() bool { return h.ui.count(domain.RenderNotification) > 1 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestSession_Hooks(t *testing.T) {
	ctx := context.Background()
	cfg := instantConfig()
	cfg.Privacy.Enabled = false
	cfg.Channel.DesktopBehavior = domain.PolicyWeb

	var (
		steps     []int
		suspends  []domain.Field
		finalized []string
		handoffs  []domain.Channel
	)
	h := newHarness(t, cfg, flow.WithHooks(domain.LifecycleHooks{
		OnStep:     func(_ context.Context, cursor int, _ domain.Step) { steps = append(steps, cursor) },
		OnSuspend:  func(_ context.Context, _ domain.FlowStatus, f domain.Field) { suspends = append(suspends, f) },
		OnFinalize: func(_ context.Context, l domain.LeadRecord) { finalized = append(finalized, l.ID) },
		OnHandoff:  func(_ context.Context, hd domain.Handoff) { handoffs = append(handoffs, hd.Channel) },
	}))

	h.fill(t, ctx)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, steps)
	assert.Equal(t, []domain.Field{domain.FieldName, domain.FieldEmail, domain.FieldPhone}, suspends)
	assert.Equal(t, []string{"sess-1"}, finalized)
	assert.Equal(t, []domain.Channel{domain.ChannelWeb}, handoffs)
}

func TestSession_ShutdownStopsEverything(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	cfg := askConfig()
	cfg.Timing.ReadReceiptDelay = config.Ms(400)
	h := newHarness(t, cfg)

	h.fill(t, ctx)
	require.True(t, h.sess.State().AwaitingChannelChoice)

	h.sess.Shutdown()
	h.sess.Shutdown()

	assert.ErrorIs(t, h.sess.Open(ctx), flow.ErrSessionClosed)
	assert.ErrorIs(t, h.sess.Submit(ctx, "x"), flow.ErrSessionClosed)
	assert.ErrorIs(t, h.sess.SetConsent(ctx, true), flow.ErrSessionClosed)
	assert.ErrorIs(t, h.sess.ChooseChannel(ctx, domain.ChannelApp), flow.ErrSessionClosed)
	assert.ErrorIs(t, h.sess.Close(ctx), flow.ErrSessionClosed)

	h.mock.Add(time.Minute)
	assert.Zero(t, h.ui.count(domain.RenderReadReceipt), "pending read receipts are dropped")
	assert.Empty(t, h.ui.handoffs(), "the countdown never fires after shutdown")
}
