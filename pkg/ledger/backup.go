package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aretw0/leadchat/pkg/domain"
)

// DefaultMaxStoredLeads caps the backup list length.
const DefaultMaxStoredLeads = 100

// BackupEntry is one lead kept in the local backup list.
type BackupEntry struct {
	domain.LeadRecord
	SavedAt time.Time `json:"savedAt"`
}

// BackupList is a capped, append-only list of leads stored under an unprefixed key.
// It shares the degraded mode of its Ledger.
type BackupList struct {
	ledger *Ledger
	key    string
	max    int
}

// NewBackupList creates a backup list stored under key, trimmed to max entries.
func NewBackupList(l *Ledger, key string, max int) *BackupList {
	if key == "" {
		key = domain.DefaultBackupKey
	}
	if max <= 0 {
		max = DefaultMaxStoredLeads
	}
	return &BackupList{ledger: l, key: key, max: max}
}

// Key returns the backend key of the list.
func (b *BackupList) Key() string {
	return b.key
}

// Append stores lead with a savedAt stamp, discarding the oldest entries past the cap.
// It reports whether the list was written.
func (b *BackupList) Append(ctx context.Context, lead domain.LeadRecord) bool {
	if b.ledger.Degraded() {
		return false
	}

	entries, ok := b.read(ctx)
	if !ok {
		return false
	}
	entries = append(entries, BackupEntry{LeadRecord: lead.Clone(), SavedAt: b.ledger.clock.Now()})
	if len(entries) > b.max {
		entries = entries[len(entries)-b.max:]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		b.ledger.logger.Error("backup list not serializable", "key", b.key, "err", err)
		return false
	}
	if err := b.ledger.backend.Set(ctx, b.key, string(data)); err != nil {
		b.ledger.degrade(err)
		return false
	}
	return true
}

// Entries returns the stored list, oldest first.
func (b *BackupList) Entries(ctx context.Context) []BackupEntry {
	if b.ledger.Degraded() {
		return nil
	}
	entries, _ := b.read(ctx)
	return entries
}

// read loads the list. A corrupt list is replaced by an empty one.
func (b *BackupList) read(ctx context.Context) ([]BackupEntry, bool) {
	raw, err := b.ledger.backend.Get(ctx, b.key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []BackupEntry{}, true
		}
		b.ledger.degrade(err)
		return nil, false
	}

	var entries []BackupEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		b.ledger.logger.Warn("corrupt backup list reset", "key", b.key, "err", err)
		return []BackupEntry{}, true
	}
	return entries, true
}
