package runner

import (
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithPrivacy sets the markdown shown by /privacy.
func WithPrivacy(markdown string) Option {
	return func(r *Runner) {
		r.Privacy = markdown
	}
}

// WithStartClosed leaves the chat closed until the visitor types /open.
func WithStartClosed(closed bool) Option {
	return func(r *Runner) {
		r.StartClosed = closed
	}
}
