package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/flow"
)

// ErrInterrupted is returned when a signal or the parent context stops the loop.
var ErrInterrupted = errors.New("interrupted")

// Chat is the part of flow.Session the runner drives.
type Chat interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	Submit(ctx context.Context, value string) error
	SetConsent(ctx context.Context, checked bool) error
	ChooseChannel(ctx context.Context, ch domain.Channel) error
	State() domain.FlowState
}

// Runner handles the interaction loop of one chat using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler on Stdin/Stdout is used.
	// The same handler must be the renderer of the session.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Privacy is the markdown shown by /privacy.
	Privacy string

	// StartClosed leaves the chat closed on start, so notifications can play.
	StartClosed bool

	handoff *domain.Handoff
}

// New creates a Runner configured by opts.
func New(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// Handoff returns the hand-off that ended the last Run, if any.
func (r *Runner) Handoff() (domain.Handoff, bool) {
	if r.handoff == nil {
		return domain.Handoff{}, false
	}
	return *r.handoff, true
}

// Run opens the chat and feeds it input until the visitor is handed off, quits or
// the input ends. When the input ends while a channel choice is pending, Run waits
// for the countdown to resolve it.
func (r *Runner) Run(ctx context.Context, chat Chat) error {
	h := r.resolveHandler()
	signals := NewSignalManager(ctx)
	defer signals.Stop()
	ctx = signals.Context()
	r.handoff = nil

	if !r.StartClosed {
		if err := chat.Open(ctx); err != nil {
			return fmt.Errorf("open chat: %w", err)
		}
	}

	for {
		line, hd, err := r.read(ctx, h)
		if hd != nil {
			r.handedOff(*hd)
			return nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return r.drain(ctx, chat, h)
			}
			signals.CheckRace()
			if ctx.Err() != nil {
				r.Logger.Debug("runner input cancelled", "err", ctx.Err())
				return ErrInterrupted
			}
			return fmt.Errorf("input error: %w", err)
		}
		if line == "" {
			continue
		}

		quit, err := r.dispatch(ctx, chat, h, line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r.Handler
}

// read returns the next line, or the hand-off that arrived first.
func (r *Runner) read(ctx context.Context, h IOHandler) (string, *domain.Handoff, error) {
	select {
	case hd := <-h.Handoffs():
		return "", &hd, nil
	default:
	}

	rctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan inputResult, 1)
	go func() {
		text, err := h.Input(rctx)
		done <- inputResult{text: text, err: err}
	}()

	select {
	case hd := <-h.Handoffs():
		cancel()
		<-done
		return "", &hd, nil
	case res := <-done:
		return res.text, nil, res.err
	}
}

// drain waits for a pending channel choice to resolve after the input ended.
func (r *Runner) drain(ctx context.Context, chat Chat, h IOHandler) error {
	if !chat.State().AwaitingChannelChoice {
		select {
		case hd := <-h.Handoffs():
			r.handedOff(hd)
		default:
		}
		return nil
	}
	r.Logger.Debug("input ended, waiting for the channel choice")
	select {
	case hd := <-h.Handoffs():
		r.handedOff(hd)
		return nil
	case <-ctx.Done():
		return ErrInterrupted
	}
}

func (r *Runner) handedOff(hd domain.Handoff) {
	r.handoff = &hd
	r.Logger.Debug("runner finished with hand-off", "channel", hd.Channel)
}

// dispatch maps one line to a chat event. It reports whether the visitor quit.
func (r *Runner) dispatch(ctx context.Context, chat Chat, h IOHandler, line string) (bool, error) {
	var err error
	switch ParseCommand(line) {
	case CommandQuit:
		return true, nil
	case CommandHelp:
		return false, h.SystemOutput(ctx, helpText)
	case CommandPrivacy:
		if r.Privacy == "" {
			return false, h.SystemOutput(ctx, "no privacy policy configured")
		}
		return false, h.SystemOutput(ctx, r.Privacy)
	case CommandUnknown:
		return false, h.SystemOutput(ctx, fmt.Sprintf("unknown command %q, try /help", line))
	case CommandConsent:
		err = chat.SetConsent(ctx, !chat.State().ConsentGiven)
	case CommandApp:
		err = chat.ChooseChannel(ctx, domain.ChannelApp)
	case CommandWeb:
		err = chat.ChooseChannel(ctx, domain.ChannelWeb)
	case CommandOpen:
		err = chat.Open(ctx)
	case CommandClose:
		err = chat.Close(ctx)
	default:
		err = chat.Submit(ctx, line)
	}
	return false, r.report(ctx, h, err)
}

// report turns recoverable session errors into system messages. Errors the session
// already drew for the visitor are dropped.
func (r *Runner) report(ctx context.Context, h IOHandler, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, flow.ErrInvalidInput),
		errors.Is(err, flow.ErrConsentRequired),
		errors.Is(err, flow.ErrChoicePending):
		r.Logger.Debug("input refused", "err", err)
		return nil
	case errors.Is(err, flow.ErrNotAwaitingInput):
		return h.SystemOutput(ctx, "no question is pending right now")
	case errors.Is(err, flow.ErrNoChoicePending):
		return h.SystemOutput(ctx, "there is no channel to choose yet")
	case errors.Is(err, flow.ErrChoiceCooldown):
		return h.SystemOutput(ctx, "please wait a moment before choosing again")
	default:
		return err
	}
}
