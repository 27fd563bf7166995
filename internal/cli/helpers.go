package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/leadchat"
	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/pkg/config"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/runner"
)

// LoadConfig reads the widget configuration, or returns the reference
// configuration when path is empty.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// NewWidget wires a Widget to the backend selected by storage. The flag key, when
// set, overrides advanced.encryptionKey. The returned closer releases the backend.
func NewWidget(cfg *config.Config, storage StorageOptions, logger *slog.Logger, opts ...leadchat.Option) (*leadchat.Widget, io.Closer, error) {
	if storage.EncryptionKey != "" {
		cfg.Advanced.EncryptionKey = storage.EncryptionKey
	}
	backend, closer, err := OpenBackend(storage)
	if err != nil {
		return nil, nil, err
	}
	base := []leadchat.Option{
		leadchat.WithBackend(backend),
		leadchat.WithLogger(logger),
	}
	w, err := leadchat.New(cfg, append(base, opts...)...)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return w, closer, nil
}

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout chat UI).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func handleExecutionError(err error) error {
	if errors.Is(err, runner.ErrInterrupted) || errors.Is(err, context.Canceled) {
		return nil // Exit 0 for interruptions
	}
	return err
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, cursor int, step domain.Step) {
			logger.Debug("Enter Step", "cursor", cursor, "type", step.Type())
		},
		OnSuspend: func(ctx context.Context, status domain.FlowStatus, field domain.Field) {
			logger.Debug("Suspend", "status", status, "field", field)
		},
		OnFinalize: func(ctx context.Context, lead domain.LeadRecord) {
			logger.Debug("Lead Finalized", "lead_id", lead.ID)
		},
		OnHandoff: func(ctx context.Context, h domain.Handoff) {
			logger.Debug("Handoff", "channel", h.Channel)
		},
	}
}
