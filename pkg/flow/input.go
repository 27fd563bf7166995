package flow

import (
	"context"
	"encoding/json"
	"maps"
	"strings"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/tracking"
	"github.com/aretw0/leadchat/pkg/validate"
)

// Submit delivers a value typed by the visitor.
//
// At the consent gate it returns ErrConsentRequired until consent is given. A rejected
// value is re-prompted and returned as a *ValidationError without moving the cursor.
// An accepted value is normalized and stored, and the flow resumes; Submit returns once
// it suspends again. Completing the identity fields finalizes the lead exactly once.
func (s *Session) Submit(ctx context.Context, value string) error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return ErrSessionClosed
	}

	if s.state.CurrentField == domain.FieldConsent {
		given := s.state.ConsentGiven
		s.mu.Unlock()
		if given {
			return nil
		}
		s.say(ctx, domain.RenderError, s.cfg.Privacy.RequiredMessage)
		return ErrConsentRequired
	}

	value = strings.TrimSpace(value)
	step, ok := s.awaitedLocked()
	if value == "" || !ok {
		s.mu.Unlock()
		return ErrNotAwaitingInput
	}

	kind := step.Kind()
	if !validate.ByKind(kind, value) {
		s.mu.Unlock()
		msg := s.cfg.Messages.Validation[kind]
		s.say(ctx, domain.RenderError, msg)
		s.metrics.FieldRejected(kind)
		s.logger.Debug("input rejected", "field", step.Field)
		return &ValidationError{Field: step.Field, Kind: kind, Message: msg}
	}

	stored := validate.Normalize(kind, value)
	s.lead.SetValue(step.Field, stored)
	cursor := s.state.Cursor
	s.state.Cursor++
	s.state.CurrentField = domain.FieldNone
	s.state.Processing = true
	s.state.Status = domain.StatusRunning
	complete := !s.saved && s.lead.IsComplete()
	if complete {
		s.saved = true
	}
	s.mu.Unlock()

	s.render(ctx, domain.RenderInputDisable, nil)
	s.say(ctx, domain.RenderUserMessage, validate.Display(kind, stored))
	s.readReceipt(ctx)
	s.events.Emit(ctx, domain.EventFieldFilled, map[string]any{
		"field":     string(kind),
		"flowIndex": cursor,
	})
	s.logger.Debug("input accepted", "field", step.Field)

	if complete {
		s.finalize(ctx)
	}

	ctx, cancel := s.bind(ctx)
	defer cancel()
	if err := s.sched.Sleep(ctx, s.cfg.Timing.MessageDelay.Std()); err != nil {
		s.release()
		return err
	}
	s.run(ctx)
	return nil
}

// awaitedLocked returns the input step the flow is suspended on.
func (s *Session) awaitedLocked() (domain.InputStep, bool) {
	if s.state.Processing || s.state.Status != domain.StatusAwaitingInput ||
		!s.state.CurrentField.IsIdentity() || s.state.Cursor >= len(s.script) {
		return domain.InputStep{}, false
	}
	step, ok := s.script[s.state.Cursor].(domain.InputStep)
	return step, ok && step.Field == s.state.CurrentField
}

// readReceipt marks the last user bubble as read after timing.readReceiptDelay.
func (s *Session) readReceipt(ctx context.Context) {
	d := s.cfg.Timing.ReadReceiptDelay.Std()
	if d <= 0 {
		s.render(ctx, domain.RenderReadReceipt, nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.timers = append(s.timers, s.sched.AfterFunc(d, func() {
		if s.live() {
			s.render(s.base, domain.RenderReadReceipt, nil)
		}
	}))
}

// SetConsent records the consent checkbox. Checking it stores the accepted declaration
// verbatim and, at the consent gate, resumes the flow without re-validating fields.
// Unchecking it clears the flag, timestamp and declaration together; a lead already
// cached keeps its conversion.
func (s *Session) SetConsent(ctx context.Context, checked bool) error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return ErrSessionClosed
	}

	now := s.clock.Now()
	declaration := s.declaration()
	s.state.ConsentGiven = checked
	if checked {
		s.lead.AcceptConsent(now, declaration)
	} else {
		s.lead.ClearConsent()
	}
	saved, leadID := s.saved, s.lead.ID

	resume := checked && s.state.CurrentField == domain.FieldConsent && !s.state.Processing
	if resume {
		s.state.CurrentField = domain.FieldNone
		s.state.Processing = true
		s.state.Status = domain.StatusRunning
	}
	s.mu.Unlock()

	if saved && s.cfg.Tracking.Persistence.Enabled {
		if !s.visitors.RecordConsent(ctx, leadID, checked, now, declaration) {
			s.logger.Debug("consent not persisted", "accepted", checked)
		}
	}
	if checked {
		s.render(ctx, domain.RenderConsentConfirmed, nil)
		s.logger.Info("consent recorded")
	} else {
		s.render(ctx, domain.RenderConsentShow, s.consentForm(false))
		s.logger.Info("consent withdrawn")
	}
	if !resume {
		return nil
	}

	s.say(ctx, domain.RenderUserMessage, s.cfg.UI.ConsentAccepted)
	ctx, cancel := s.bind(ctx)
	defer cancel()
	if err := s.sched.Sleep(ctx, s.cfg.Timing.MessageDelay.Std()); err != nil {
		s.release()
		return err
	}
	s.run(ctx)
	return nil
}

func (s *Session) declaration() string {
	if d := s.cfg.Privacy.ConsentDeclaration; d != "" {
		return d
	}
	return DefaultDeclaration
}

// finalize stamps the completed lead, caches it in the ledger, reports it and starts
// the delivery fan-out in the background.
func (s *Session) finalize(ctx context.Context) {
	var snap *tracking.Snapshot
	if s.tracker != nil {
		sn := s.tracker.Snapshot(ctx, s.page)
		snap = &sn
	}
	visitorID := ""
	if snap != nil {
		visitorID = snap.VisitorID
	} else {
		visitorID = s.visitors.ID(ctx)
	}

	s.mu.Lock()
	now := s.clock.Now()
	s.lead.ID = s.id
	s.lead.CompletedAt = &now
	s.lead.VisitorID = visitorID
	if snap != nil {
		s.lead.UTM = maps.Clone(snap.UTM)
		s.lead.Tracking = snap.Summary()
	}
	if s.lead.UTM == nil {
		s.lead.UTM = map[string]string{}
	}
	lead := s.lead.Clone()
	s.mu.Unlock()

	if s.cfg.Tracking.Persistence.Enabled && !s.visitors.CacheLead(ctx, lead) {
		s.logger.Warn("lead not cached", "visitor_id", visitorID)
	}
	s.events.Emit(ctx, domain.EventLeadCaptured, leadPayload(lead))
	s.metrics.LeadCaptured()
	s.logger.Info("lead captured", "visitor_id", visitorID)
	if s.hooks.OnFinalize != nil {
		s.hooks.OnFinalize(ctx, lead)
	}

	if s.fanout == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.fanout.Dispatch(context.WithoutCancel(ctx), lead)
	}()
}

// leadPayload flattens the lead into the leadCaptured event payload.
func leadPayload(lead domain.LeadRecord) map[string]any {
	payload := map[string]any{}
	if b, err := json.Marshal(lead); err == nil {
		_ = json.Unmarshal(b, &payload)
	}
	payload["leadId"] = lead.ID
	return payload
}
