package domain

// StepType constants name the kinds of scripted steps.
const (
	// StepTypeBot posts a bot message after a typing pause (soft step).
	StepTypeBot = "bot"
	// StepTypeInput enables the input box and halts until the visitor submits (hard step).
	StepTypeInput = "input"
	// StepTypeRedirect applies the consent gate and hands the visitor off (sink step).
	StepTypeRedirect = "redirect"
)

// Field identifies which value the session is waiting for.
type Field string

const (
	FieldNone  Field = ""
	FieldName  Field = "name"
	FieldEmail Field = "email"
	FieldPhone Field = "phone"

	// FieldConsent is the sentinel used while the redirect step waits for consent.
	FieldConsent Field = "consent"
)

// IdentityFields are the fields that must be filled before a lead is finalized.
var IdentityFields = []Field{FieldName, FieldEmail, FieldPhone}

// IsIdentity reports whether f is one of the lead identity fields.
func (f Field) IsIdentity() bool {
	switch f {
	case FieldName, FieldEmail, FieldPhone:
		return true
	}
	return false
}

// Step is one immutable entry of the conversation script.
// It is a closed set: BotStep, InputStep and RedirectStep.
type Step interface {
	Type() string
	isStep()
}

// BotStep posts a templated message.
type BotStep struct {
	Text string `json:"text"`
}

// InputStep asks the visitor for a field value.
type InputStep struct {
	Field       Field  `json:"field"`
	Placeholder string `json:"placeholder"`
	// Validation names the validator applied to the value. Defaults to Field.
	Validation Field `json:"validation"`
}

// RedirectStep hands the visitor off to the messaging channel.
type RedirectStep struct{}

func (BotStep) Type() string      { return StepTypeBot }
func (InputStep) Type() string    { return StepTypeInput }
func (RedirectStep) Type() string { return StepTypeRedirect }

func (BotStep) isStep()      {}
func (InputStep) isStep()    {}
func (RedirectStep) isStep() {}

// Kind returns the validator kind for the step.
func (s InputStep) Kind() Field {
	if s.Validation != FieldNone {
		return s.Validation
	}
	return s.Field
}
