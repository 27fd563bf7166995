package runner

import (
	"context"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ports"
)

// IOHandler defines the strategy for interacting with the visitor.
// This allows switching between Text (terminal) and JSON (structured) modes.
type IOHandler interface {
	// Render draws one command emitted by the session. It may be called from
	// timer goroutines and must be safe for concurrent use.
	ports.Renderer

	// Input reads the next line from the visitor.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message that is not part of the conversation.
	SystemOutput(ctx context.Context, msg string) error

	// Handoffs delivers every hand-off the handler has drawn.
	Handoffs() <-chan domain.Handoff
}

// handoffs buffers drawn hand-offs for the runner. Sends never block.
type handoffs chan domain.Handoff

func newHandoffs() handoffs {
	return make(handoffs, 1)
}

func (h handoffs) publish(hd domain.Handoff) {
	select {
	case h <- hd:
	default:
	}
}
