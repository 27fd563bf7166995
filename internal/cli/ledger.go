package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/leadchat"
)

// LedgerOptions configures the ledger inspection commands.
type LedgerOptions struct {
	ConfigPath string
	Debug      bool
	Storage    StorageOptions
}

// entryView is the printable form of a ledger entry.
type entryView struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"createdAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Expired   bool            `json:"expired"`
}

func openLedger(opts LedgerOptions) (*leadchat.Widget, io.Closer, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	return NewWidget(cfg, opts.Storage, createLogger(opts.Debug))
}

// ShowLedger prints every entry under the configured prefix as indented JSON.
// Expired entries are listed, not evicted.
func ShowLedger(ctx context.Context, opts LedgerOptions, out io.Writer) error {
	w, closer, err := openLedger(opts)
	if err != nil {
		return err
	}
	defer closer.Close()

	entries, err := w.Ledger().Entries(ctx)
	if err != nil {
		return fmt.Errorf("failed to list ledger: %w", err)
	}
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, entryView{
			Key:       e.Key,
			Value:     e.Value,
			CreatedAt: e.CreatedAt.UTC(),
			ExpiresAt: e.ExpiresAt.UTC(),
			Expired:   e.Expired,
		})
	}
	return writeJSON(out, views)
}

// SweepLedger evicts expired entries and reports how many were removed.
func SweepLedger(ctx context.Context, opts LedgerOptions, out io.Writer) error {
	w, closer, err := openLedger(opts)
	if err != nil {
		return err
	}
	defer closer.Close()

	n := w.SweepLedger(ctx)
	printSystemMessage(out, "Removed %d expired entries.", n)
	return nil
}

// ListBackups prints the local lead backup list as indented JSON.
func ListBackups(ctx context.Context, opts LedgerOptions, out io.Writer) error {
	w, closer, err := openLedger(opts)
	if err != nil {
		return err
	}
	defer closer.Close()

	return writeJSON(out, w.Backups(ctx))
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
