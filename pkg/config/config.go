package config

import (
	"github.com/aretw0/leadchat/pkg/domain"
)

// Config is the complete widget configuration.
type Config struct {
	Profile      Profile      `json:"profile" yaml:"profile"`
	Channel      Channel      `json:"channel" yaml:"channel"`
	Timing       Timing       `json:"timing" yaml:"timing"`
	Messages     Messages     `json:"messages" yaml:"messages"`
	UI           UI           `json:"ui" yaml:"ui"`
	Tracking     Tracking     `json:"tracking" yaml:"tracking"`
	Integrations Integrations `json:"integrations" yaml:"integrations"`
	Privacy      Privacy      `json:"privacy" yaml:"privacy"`
	Advanced     Advanced     `json:"advanced" yaml:"advanced"`
}

// Profile is the identity of the bot shown in the chat header and templates.
type Profile struct {
	Name          string `json:"name" yaml:"name" validate:"required"`
	Role          string `json:"role" yaml:"role"`
	Gender        string `json:"gender" yaml:"gender" validate:"omitempty,oneof=female male"`
	Status        string `json:"status" yaml:"status" validate:"omitempty,oneof=online offline"`
	StatusMessage string `json:"statusMessage" yaml:"statusMessage"`
}

// Channel configures the hand-off destination.
type Channel struct {
	// Number is the destination identifier (country code, no symbols).
	Number string `json:"number" yaml:"number" validate:"required,numeric"`
	// Message is the pre-filled text; {userName}, {userEmail} and {userPhone} are replaced.
	Message             string               `json:"defaultMessage" yaml:"defaultMessage"`
	DesktopBehavior     domain.HandoffPolicy `json:"desktopBehavior" yaml:"desktopBehavior" validate:"oneof=ask web app"`
	AutoRedirectSeconds int                  `json:"autoRedirectSeconds" yaml:"autoRedirectSeconds" validate:"min=1"`
	ChoiceCooldown      Duration             `json:"choiceCooldown" yaml:"choiceCooldown" validate:"min=0"`
	// AppURL and WebURL are templates with {number} and {text} tokens.
	AppURL string `json:"appUrl" yaml:"appUrl" validate:"required"`
	WebURL string `json:"webUrl" yaml:"webUrl" validate:"required"`
}

// TypingWindow is the range typing delays are drawn from.
type TypingWindow struct {
	Min Duration `json:"min" yaml:"min" validate:"min=0"`
	Max Duration `json:"max" yaml:"max" validate:"gtefield=Min"`
}

// Timing holds every pause of the conversation.
type Timing struct {
	FirstNotification  Duration     `json:"firstNotification" yaml:"firstNotification" validate:"min=0"`
	SecondNotification Duration     `json:"secondNotification" yaml:"secondNotification" validate:"min=0"`
	TypingDuration     TypingWindow `json:"typingDuration" yaml:"typingDuration"`
	MessageDelay       Duration     `json:"messageDelay" yaml:"messageDelay" validate:"min=0"`
	ReadReceiptDelay   Duration     `json:"readReceiptDelay" yaml:"readReceiptDelay" validate:"min=0"`
	RedirectDelay      Duration     `json:"redirectDelay" yaml:"redirectDelay" validate:"min=0"`
	OpenDelay          Duration     `json:"openDelay" yaml:"openDelay" validate:"min=0"`
	CountdownTick      Duration     `json:"countdownTick" yaml:"countdownTick" validate:"min=0"`
}

// Messages holds the chat texts and the step script.
type Messages struct {
	// Notifications are shown, staggered, while the chat is closed.
	Notifications []string `json:"notifications" yaml:"notifications" validate:"max=2"`
	Flow          Script   `json:"flow" yaml:"flow"`
	// Validation maps a validator kind to its re-prompt text.
	Validation map[domain.Field]string `json:"validation" yaml:"validation"`
}

// UI holds the fixed interface texts.
type UI struct {
	InputPlaceholder string `json:"inputPlaceholder" yaml:"inputPlaceholder"`
	SendButton       string `json:"sendButton" yaml:"sendButton"`
	Typing           string `json:"typing" yaml:"typing"`
	Online           string `json:"online" yaml:"online"`
	Offline          string `json:"offline" yaml:"offline"`
	FallbackName     string `json:"fallbackName" yaml:"fallbackName"`
	ConsentAccepted  string `json:"consentAccepted" yaml:"consentAccepted"`
	ChoicePrompt     string `json:"choicePrompt" yaml:"choicePrompt"`
	ChoiceNudge      string `json:"choiceNudge" yaml:"choiceNudge"`
}

// Tracking configures visit bookkeeping and analytics.
type Tracking struct {
	Enabled     bool              `json:"enabled" yaml:"enabled"`
	CaptureUTM  bool              `json:"captureUTM" yaml:"captureUTM"`
	UTMParams   []string          `json:"utmParams" yaml:"utmParams"`
	ExtraParams []string          `json:"extraParams" yaml:"extraParams"`
	Events      Events            `json:"gtm" yaml:"gtm"`
	CustomTags  map[string]string `json:"customTags" yaml:"customTags"`
	Persistence Persistence       `json:"persistence" yaml:"persistence"`
}

// Events configures the analytics stream and the wire name of each event.
type Events struct {
	Enabled bool                        `json:"enabled" yaml:"enabled"`
	Names   map[domain.EventType]string `json:"events" yaml:"events"`
}

// Name returns the wire name of t, falling back to the type itself.
func (e Events) Name(t domain.EventType) string {
	if n, ok := e.Names[t]; ok && n != "" {
		return n
	}
	return string(t)
}

// Persistence configures the visitor ledger.
type Persistence struct {
	Enabled            bool `json:"enabled" yaml:"enabled"`
	ExpirationDays     int  `json:"expirationDays" yaml:"expirationDays" validate:"min=0"`
	TrackVisits        bool `json:"trackVisits" yaml:"trackVisits"`
	TrackPages         bool `json:"trackPages" yaml:"trackPages"`
	RecognizeReturning bool `json:"recognizeReturning" yaml:"recognizeReturning"`
	MaxPages           int  `json:"maxPages" yaml:"maxPages" validate:"min=0"`
}

// Integrations lists the delivery sinks.
type Integrations struct {
	Webhook      Webhook `json:"webhook" yaml:"webhook"`
	GoogleSheets Sheets  `json:"googleSheets" yaml:"googleSheets"`
	Backup       Backup  `json:"localStorage" yaml:"localStorage"`
	Email        Email   `json:"email" yaml:"email"`
	// Timeout bounds each sink delivery.
	Timeout Duration `json:"timeout" yaml:"timeout" validate:"min=0"`
}

// Webhook posts the lead as JSON to an arbitrary endpoint.
type Webhook struct {
	Enabled bool              `json:"enabled" yaml:"enabled"`
	URL     string            `json:"url" yaml:"url" validate:"required_if=Enabled true,omitempty,url"`
	Method  string            `json:"method" yaml:"method" validate:"omitempty,oneof=POST PUT PATCH"`
	Headers map[string]string `json:"headers" yaml:"headers"`
}

// Sheets posts the lead to a spreadsheet script endpoint.
type Sheets struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	ScriptURL string `json:"scriptUrl" yaml:"scriptUrl" validate:"required_if=Enabled true,omitempty,url"`
}

// Backup keeps a capped local list of leads.
type Backup struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Key     string `json:"key" yaml:"key"`
}

// Email notifies a mailbox of every new lead through the Resend API.
type Email struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	APIKey  string   `json:"apiKey" yaml:"apiKey" validate:"required_if=Enabled true"`
	From    string   `json:"from" yaml:"from" validate:"required_if=Enabled true"`
	To      []string `json:"to" yaml:"to" validate:"required_if=Enabled true,dive,email"`
	Subject string   `json:"subject" yaml:"subject"`
}

// Privacy configures the consent gate.
type Privacy struct {
	Enabled             bool   `json:"enabled" yaml:"enabled"`
	CheckboxLabel       string `json:"checkboxLabel" yaml:"checkboxLabel"`
	LinkText            string `json:"linkText" yaml:"linkText"`
	RequiredMessage     string `json:"requiredMessage" yaml:"requiredMessage"`
	ConfirmationMessage string `json:"confirmationMessage" yaml:"confirmationMessage"`
	ConsentDeclaration  string `json:"consentDeclaration" yaml:"consentDeclaration" validate:"required_if=Enabled true"`
	ModalTitle          string `json:"modalTitle" yaml:"modalTitle"`
	ModalContent        string `json:"modalContent" yaml:"modalContent"`
}

// Advanced holds storage and diagnostics settings.
type Advanced struct {
	Debug           bool   `json:"debug" yaml:"debug"`
	StoragePrefix   string `json:"storagePrefix" yaml:"storagePrefix"`
	SessionIDLength int    `json:"sessionIdLength" yaml:"sessionIdLength" validate:"min=0,max=26"`
	MaxStoredLeads  int    `json:"maxStoredLeads" yaml:"maxStoredLeads" validate:"min=0"`
	// MaxInputSize bounds one typed answer in bytes in the terminal host.
	MaxInputSize int `json:"maxInputSize" yaml:"maxInputSize" validate:"min=0"`
	// EncryptionKey, when set, encrypts ledger values at rest (hex or base64, 32 bytes).
	EncryptionKey string `json:"encryptionKey,omitempty" yaml:"encryptionKey,omitempty"`
}
