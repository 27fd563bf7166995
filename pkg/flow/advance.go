package flow

import (
	"context"

	"github.com/aretw0/leadchat/pkg/domain"
)

// advance starts a pass unless one is already running or the flow is suspended or done.
func (s *Session) advance(ctx context.Context) {
	s.mu.Lock()
	if !s.claimLocked() {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.run(ctx)
}

// claimLocked marks the pass as running. It fails if a pass is active, a field or the
// consent is awaited, or the hand-off was issued.
func (s *Session) claimLocked() bool {
	if s.ended || s.state.Processing || s.state.CurrentField != domain.FieldNone ||
		s.state.Status == domain.StatusTerminated {
		return false
	}
	s.state.Processing = true
	s.state.Status = domain.StatusRunning
	return true
}

// release ends an interrupted pass. The status stays running so Open can resume it.
func (s *Session) release() {
	s.mu.Lock()
	s.state.Processing = false
	s.mu.Unlock()
}

// run advances the cursor until the flow suspends or terminates. The caller holds the pass.
func (s *Session) run(ctx context.Context) {
	for {
		s.mu.Lock()
		cursor := s.state.Cursor
		if s.ended || cursor >= len(s.script) {
			if !s.ended {
				s.state.Status = domain.StatusTerminated
			}
			s.state.Processing = false
			s.mu.Unlock()
			return
		}
		step := s.script[cursor]
		s.mu.Unlock()

		if s.hooks.OnStep != nil {
			s.hooks.OnStep(ctx, cursor, step)
		}

		switch st := step.(type) {
		case domain.BotStep:
			if err := s.botTurn(ctx, st, cursor); err != nil {
				s.logger.Debug("pass interrupted", "step", cursor, "err", err)
				s.release()
				return
			}
		case domain.InputStep:
			s.awaitInput(ctx, st)
			return
		case domain.RedirectStep:
			if err := s.redirect(ctx); err != nil {
				s.logger.Debug("pass interrupted", "step", cursor, "err", err)
				s.release()
			}
			return
		default:
			s.logger.Warn("skipping unknown step", "step", cursor)
			s.mu.Lock()
			s.state.Cursor++
			s.mu.Unlock()
		}
	}
}

func (s *Session) botTurn(ctx context.Context, st domain.BotStep, cursor int) error {
	if err := s.typeOut(ctx); err != nil {
		return err
	}
	s.say(ctx, domain.RenderBotMessage, s.text(st.Text))
	s.events.Emit(ctx, domain.EventMessageReceived, map[string]any{
		"messageType": "bot",
		"flowIndex":   cursor,
	})
	if err := s.sched.Sleep(ctx, s.cfg.Timing.MessageDelay.Std()); err != nil {
		return err
	}

	s.mu.Lock()
	s.state.Cursor++
	s.mu.Unlock()
	return nil
}

// typeOut shows the typing indicator for a randomized delay.
func (s *Session) typeOut(ctx context.Context) error {
	w := s.cfg.Timing.TypingDuration
	s.render(ctx, domain.RenderTypingShow, nil)
	err := s.sched.Sleep(ctx, s.sched.TypingDelay(w.Min.Std(), w.Max.Std()))
	s.render(ctx, domain.RenderTypingHide, nil)
	return err
}

func (s *Session) awaitInput(ctx context.Context, st domain.InputStep) {
	placeholder := st.Placeholder
	if placeholder == "" {
		placeholder = s.cfg.UI.InputPlaceholder
	}
	s.render(ctx, domain.RenderInputEnable, domain.InputPrompt{Field: st.Field, Placeholder: placeholder})

	s.mu.Lock()
	s.suspendLocked(domain.StatusAwaitingInput, st.Field)
	s.mu.Unlock()
	s.suspended(ctx, domain.StatusAwaitingInput, st.Field)
}

// suspendLocked ends the pass in an awaiting state.
func (s *Session) suspendLocked(status domain.FlowStatus, field domain.Field) {
	s.state.Status = status
	s.state.CurrentField = field
	s.state.Processing = false
}

func (s *Session) suspended(ctx context.Context, status domain.FlowStatus, field domain.Field) {
	s.logger.Debug("flow suspended", "status", status, "field", field)
	if s.hooks.OnSuspend != nil {
		s.hooks.OnSuspend(ctx, status, field)
	}
}

// redirect applies the consent gate, then hands off after timing.redirectDelay.
func (s *Session) redirect(ctx context.Context) error {
	if s.consentPending() {
		if err := s.typeOut(ctx); err != nil {
			return err
		}
		s.say(ctx, domain.RenderBotMessage, s.text(s.cfg.Privacy.ConfirmationMessage))

		// Consent may have arrived while typing.
		s.mu.Lock()
		gated := !s.state.ConsentGiven
		if gated {
			s.suspendLocked(domain.StatusAwaitingConsent, domain.FieldConsent)
		}
		s.mu.Unlock()
		if gated {
			s.render(ctx, domain.RenderConsentShow, s.consentForm(false))
			s.suspended(ctx, domain.StatusAwaitingConsent, domain.FieldConsent)
			return nil
		}
	}

	if err := s.sched.Sleep(ctx, s.cfg.Timing.RedirectDelay.Std()); err != nil {
		return err
	}
	s.handOff(ctx)
	return nil
}

func (s *Session) consentPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.ConsentRequired() && !s.state.ConsentGiven
}
