package flow

import (
	"context"
	"fmt"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/schedule"
)

// Hand-off methods reported in the redirected event and metrics.
const (
	MethodDirect = "direct"
	MethodAuto   = "auto"
	MethodClick  = "button_click"
)

// handOff terminates the flow and applies the hand-off policy: mobile sessions go
// straight to the app, others follow channel.desktopBehavior.
func (s *Session) handOff(ctx context.Context) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.state.Cursor++
	s.state.Status = domain.StatusTerminated
	s.state.Processing = false
	lead := s.lead.Clone()

	direct := domain.ChannelApp
	ask := false
	switch {
	case s.mobile:
	case s.cfg.Channel.DesktopBehavior == domain.PolicyWeb:
		direct = domain.ChannelWeb
	case s.cfg.Channel.DesktopBehavior == domain.PolicyApp:
	default:
		ask = true
	}
	var choice domain.ChannelChoice
	if ask {
		choice = s.offerLocked(lead)
	}
	s.mu.Unlock()

	if s.cfg.ConsentRequired() {
		s.render(ctx, domain.RenderConsentHide, nil)
	}
	if ask {
		s.render(ctx, domain.RenderChannelChoice, choice)
		s.logger.Debug("channel choice offered", "seconds", choice.Seconds)
		return
	}
	s.open(ctx, direct, lead, MethodDirect)
}

// offerLocked blocks closing and starts the choice countdown. Expiry picks the app.
func (s *Session) offerLocked(lead domain.LeadRecord) domain.ChannelChoice {
	seconds := s.cfg.Channel.AutoRedirectSeconds
	s.state.AwaitingChannelChoice = true
	s.countdown = schedule.NewCountdown(s.clock, seconds, s.cfg.Timing.CountdownTick.Std(),
		func(remaining int) {
			if s.live() {
				s.render(s.base, domain.RenderCountdown, remaining)
			}
		},
		s.expireChoice,
	)
	s.countdown.Start()

	return domain.ChannelChoice{
		Text:    s.cfg.UI.ChoicePrompt,
		AppURL:  HandoffURL(s.cfg, domain.ChannelApp, lead),
		WebURL:  HandoffURL(s.cfg, domain.ChannelWeb, lead),
		Seconds: seconds,
		Default: domain.ChannelApp,
	}
}

func (s *Session) expireChoice() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.state.AwaitingChannelChoice = false
	lead := s.lead.Clone()
	s.mu.Unlock()

	s.render(s.base, domain.RenderChoiceResolved, domain.ChannelApp)
	s.open(s.base, domain.ChannelApp, lead, MethodAuto)
}

// ChooseChannel handles a click on a channel button. The first click, or the countdown
// expiry, resolves the choice; later clicks re-open the URL. Clicks within
// channel.choiceCooldown of the previous click return ErrChoiceCooldown.
func (s *Session) ChooseChannel(ctx context.Context, ch domain.Channel) error {
	if ch != domain.ChannelApp && ch != domain.ChannelWeb {
		return fmt.Errorf("%w: %q", ErrUnknownChannel, ch)
	}

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.countdown == nil {
		s.mu.Unlock()
		return ErrNoChoicePending
	}
	now := s.clock.Now()
	if !s.lastChoice.IsZero() && now.Sub(s.lastChoice) < s.cfg.Channel.ChoiceCooldown.Std() {
		s.mu.Unlock()
		return ErrChoiceCooldown
	}
	s.lastChoice = now
	first := s.countdown.Resolve()
	if first {
		s.state.AwaitingChannelChoice = false
	}
	lead := s.lead.Clone()
	s.mu.Unlock()

	if first {
		s.render(ctx, domain.RenderChoiceResolved, ch)
	}
	s.open(ctx, ch, lead, MethodClick)
	return nil
}

// open issues the hand-off URL of ch.
func (s *Session) open(ctx context.Context, ch domain.Channel, lead domain.LeadRecord, method string) {
	h := domain.Handoff{Channel: ch, URL: HandoffURL(s.cfg, ch, lead)}
	s.render(ctx, domain.RenderOpenURL, h)
	s.events.Emit(ctx, domain.EventRedirected, map[string]any{
		"leadId":       lead.ID,
		"redirectType": string(ch),
		"method":       method,
	})
	s.metrics.HandedOff(ch, method)
	if s.hooks.OnHandoff != nil {
		s.hooks.OnHandoff(ctx, h)
	}
	s.logger.Info("handed off", "channel", ch, "method", method)
}
