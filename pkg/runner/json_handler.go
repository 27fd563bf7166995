package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/aretw0/leadchat/pkg/domain"
)

// Event is one JSON line written by JSONHandler.
type Event struct {
	Kind    string `json:"kind"`
	Payload any    `json:"payload,omitempty"`
}

// KindSystem tags meta-messages in the JSON stream.
const KindSystem = "system"

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
type JSONHandler struct {
	Writer   io.Writer
	Encoder  *json.Encoder
	input    *linePump
	handoffs handoffs

	mu sync.Mutex
}

// JSONHandlerOption defines configuration for JSONHandler.
type JSONHandlerOption func(*JSONHandler)

// WithJSONMaxInputSize bounds one line of visitor input in bytes.
func WithJSONMaxInputSize(size int) JSONHandlerOption {
	return func(h *JSONHandler) {
		h.input.sanitizer.MaxSize = size
	}
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer, opts ...JSONHandlerOption) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &JSONHandler{
		Writer:   w,
		Encoder:  json.NewEncoder(w),
		input:    newLinePump(r),
		handoffs: newHandoffs(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Render writes cmd as a single JSON line.
func (h *JSONHandler) Render(_ context.Context, cmd domain.RenderCommand) {
	h.emit(Event{Kind: cmd.Kind, Payload: cmd.Payload})
	if hd, ok := cmd.Payload.(domain.Handoff); ok && cmd.Kind == domain.RenderOpenURL {
		h.handoffs.publish(hd)
	}
}

// Input reads a line holding either a JSON string or raw text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.input.next(ctx, func(err error) {
		h.emit(Event{Kind: domain.RenderError, Payload: domain.Message{Text: err.Error()}})
	})
	if err != nil {
		return "", err
	}
	var val string
	if err := json.Unmarshal([]byte(text), &val); err != nil {
		return text, nil
	}
	// Escapes inside the JSON string may carry what the raw line could not.
	clean, err := h.input.sanitizer.Clean(val)
	if err != nil {
		h.emit(Event{Kind: domain.RenderError, Payload: domain.Message{Text: err.Error()}})
		return "", nil
	}
	return clean, nil
}

// SystemOutput writes msg as a system event.
func (h *JSONHandler) SystemOutput(_ context.Context, msg string) error {
	return h.emit(Event{Kind: KindSystem, Payload: domain.Message{Text: msg}})
}

// Handoffs implements IOHandler.
func (h *JSONHandler) Handoffs() <-chan domain.Handoff {
	return h.handoffs
}

func (h *JSONHandler) emit(ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(ev)
}
