package domain

import "time"

// Ledger keys used by the visitor bookkeeping. They are stored under the ledger prefix.
const (
	KeyVisitorID   = "visitor_id"
	KeyVisitorData = "visitor_data"
)

// DefaultBackupKey is the unprefixed key of the local lead backup list.
const DefaultBackupKey = "whatsapp_widget_leads"

// DefaultTTL is the reference expiration of ledger entries (90 days).
const DefaultTTL = 90 * 24 * time.Hour
