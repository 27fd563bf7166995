package domain

// FlowStatus defines the current mode of the interpreter.
type FlowStatus string

const (
	StatusIdle            FlowStatus = "idle"             // Session created, flow not started
	StatusRunning         FlowStatus = "running"          // A pass is advancing the cursor
	StatusAwaitingInput   FlowStatus = "awaiting_input"   // Suspended on an input step
	StatusAwaitingConsent FlowStatus = "awaiting_consent" // Suspended on the consent gate
	StatusTerminated      FlowStatus = "terminated"       // Hand-off issued
)

// Channel is a hand-off destination.
type Channel string

const (
	ChannelApp Channel = "app"
	ChannelWeb Channel = "web"
)

// HandoffPolicy selects how non-mobile visitors are handed off.
type HandoffPolicy string

const (
	PolicyAsk HandoffPolicy = "ask"
	PolicyWeb HandoffPolicy = "web"
	PolicyApp HandoffPolicy = "app"
)

// FlowState is the runtime snapshot of one chat session.
type FlowState struct {
	// Cursor is the index of the next step to run.
	Cursor int `json:"cursor"`

	// Status indicates if the interpreter is running, suspended or done.
	Status FlowStatus `json:"status"`

	// Processing is set while a pass advances the cursor. At most one pass runs at a time.
	Processing bool `json:"processing"`

	// CurrentField is the field awaiting input, FieldConsent at the gate, or FieldNone.
	CurrentField Field `json:"currentField"`

	// ConsentGiven is the session-local consent flag.
	ConsentGiven bool `json:"consentGiven"`

	// AwaitingChannelChoice blocks closing the chat while true.
	AwaitingChannelChoice bool `json:"awaitingChannelChoice"`

	// Started is set once the first pass has been scheduled.
	Started bool `json:"started"`

	// Open mirrors whether the chat surface is visible.
	Open bool `json:"open"`

	// NotificationCount is the number of staggered notifications shown while closed.
	NotificationCount int `json:"notificationCount"`
}

// NewFlowState creates a clean state at the beginning of the script.
func NewFlowState() FlowState {
	return FlowState{Status: StatusIdle}
}
