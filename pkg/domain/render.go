package domain

import "time"

// RenderCommand represents a side-effect that the session requests the host UI to perform.
type RenderCommand struct {
	Kind    string // e.g., "bot_message", "input_enable"
	Payload any    // The data needed to perform the command
}

// Standard render command kinds.
const (
	// RenderBotMessage appends a bot bubble.
	// Payload: Message
	RenderBotMessage = "bot_message"

	// RenderUserMessage appends a user bubble.
	// Payload: Message
	RenderUserMessage = "user_message"

	// RenderTypingShow and RenderTypingHide toggle the typing indicator.
	// Payload: nil
	RenderTypingShow = "typing_show"
	RenderTypingHide = "typing_hide"

	// RenderReadReceipt marks the last user bubble as read.
	// Payload: nil
	RenderReadReceipt = "read_receipt"

	// RenderError shows a transient error bubble.
	// Payload: Message
	RenderError = "error"

	// RenderInputEnable enables the input box for a field.
	// Payload: InputPrompt
	RenderInputEnable = "input_enable"

	// RenderInputDisable disables the input box.
	// Payload: nil
	RenderInputDisable = "input_disable"

	// RenderConsentShow and RenderConsentHide toggle the consent form.
	// Payload: ConsentForm for show, nil for hide
	RenderConsentShow = "consent_show"
	RenderConsentHide = "consent_hide"

	// RenderConsentConfirmed replaces the consent form with its confirmed view.
	// Payload: nil
	RenderConsentConfirmed = "consent_confirmed"

	// RenderNotification shows a preview while the chat is closed.
	// Payload: Notification
	RenderNotification = "notification"

	// RenderChannelChoice presents the hand-off options.
	// Payload: ChannelChoice
	RenderChannelChoice = "channel_choice"

	// RenderCountdown reports the remaining seconds of the choice countdown.
	// Payload: int
	RenderCountdown = "countdown"

	// RenderChoiceResolved marks the channel choice as done.
	// Payload: Channel
	RenderChoiceResolved = "choice_resolved"

	// RenderNudge visually nudges the pending choice after a refused close.
	// Payload: Message
	RenderNudge = "nudge"

	// RenderOpenURL requests the host to open a hand-off URL.
	// Payload: Handoff
	RenderOpenURL = "open_url"

	// RenderChatOpen and RenderChatClose toggle the chat surface.
	// Payload: nil
	RenderChatOpen  = "chat_open"
	RenderChatClose = "chat_close"
)

// Message is a chat bubble.
type Message struct {
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// InputPrompt describes the input box state for an input step.
type InputPrompt struct {
	Field       Field  `json:"field"`
	Placeholder string `json:"placeholder"`
}

// ConsentForm carries the texts of the consent area.
type ConsentForm struct {
	Label    string `json:"label"`
	LinkText string `json:"linkText"`
	Checked  bool   `json:"checked"`
}

// Notification is one staggered preview shown while closed.
type Notification struct {
	Text   string    `json:"text"`
	Unread int       `json:"unread"`
	At     time.Time `json:"at"`
}

// ChannelChoice lists the hand-off options with their URLs.
type ChannelChoice struct {
	Text    string  `json:"text"`
	AppURL  string  `json:"appUrl"`
	WebURL  string  `json:"webUrl"`
	Seconds int     `json:"seconds"`
	Default Channel `json:"default"`
}

// Handoff is an issued redirect to a channel.
type Handoff struct {
	Channel Channel `json:"channel"`
	URL     string  `json:"url"`
}
