package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/oklog/ulid/v2"
)

// Visitors keeps the visitor identity and the VisitorRecord in the ledger.
type Visitors struct {
	ledger *Ledger

	mu sync.Mutex
	// fallback holds the identity while the ledger is degraded.
	fallback string
}

// NewVisitors creates the visitor bookkeeping over l.
func NewVisitors(l *Ledger) *Visitors {
	return &Visitors{ledger: l}
}

// Ledger returns the underlying ledger.
func (v *Visitors) Ledger() *Ledger {
	return v.ledger
}

// ID returns the visitor identifier, creating and storing it on a miss.
// The ledger is read on every call so an expired identity is replaced. Only while
// persistence is degraded is the identity kept in memory for the rest of the process.
func (v *Visitors) ID(ctx context.Context) string {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.ledger.Degraded() && v.fallback != "" {
		return v.fallback
	}

	var id string
	if v.ledger.Get(ctx, domain.KeyVisitorID, &id) && id != "" {
		v.fallback = id
		return id
	}

	id = NewVisitorID(v.ledger.clock.Now())
	v.ledger.Set(ctx, domain.KeyVisitorID, id, 0)
	v.fallback = id
	return id
}

// NewVisitorID returns a fresh visitor identifier of the form v_<ULID>.
func NewVisitorID(at time.Time) string {
	return "v_" + ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String()
}

// Record returns the stored visitor record, or an empty one on a miss.
func (v *Visitors) Record(ctx context.Context) domain.VisitorRecord {
	var rec domain.VisitorRecord
	if !v.ledger.Get(ctx, domain.KeyVisitorData, &rec) {
		return domain.NewVisitorRecord()
	}
	rec.Normalize()
	return rec
}

// Save stores rec, replacing the previous record.
func (v *Visitors) Save(ctx context.Context, rec domain.VisitorRecord) bool {
	return v.ledger.Set(ctx, domain.KeyVisitorData, rec, 0)
}

// Update applies fn to the stored record (or an empty one) and writes it back.
func (v *Visitors) Update(ctx context.Context, fn func(rec *domain.VisitorRecord)) (domain.VisitorRecord, bool) {
	rec := domain.NewVisitorRecord()
	ok := v.ledger.Update(ctx, domain.KeyVisitorData, &rec, func(bool) {
		rec.Normalize()
		fn(&rec)
	}, 0)
	return rec, ok
}

// CacheLead stores lead as the visitor's last lead and marks the visitor converted.
func (v *Visitors) CacheLead(ctx context.Context, lead domain.LeadRecord) bool {
	now := v.ledger.clock.Now()
	_, ok := v.Update(ctx, func(rec *domain.VisitorRecord) {
		cached := lead.Clone()
		rec.LeadData = &cached
		rec.Converted = true
		rec.ConvertedAt = &now
	})
	return ok
}

// RecordConsent merges a consent change into the cached lead with id leadID.
// Acceptance stores flag, timestamp and declaration together; revocation clears all three.
// The conversion flag is left untouched. It reports whether a cached lead was updated.
func (v *Visitors) RecordConsent(ctx context.Context, leadID string, accepted bool, at time.Time, declaration string) bool {
	rec := v.Record(ctx)
	if rec.LeadData == nil || rec.LeadData.ID != leadID {
		return false
	}

	_, ok := v.Update(ctx, func(rec *domain.VisitorRecord) {
		if rec.LeadData == nil || rec.LeadData.ID != leadID {
			return
		}
		if accepted {
			rec.LeadData.AcceptConsent(at, declaration)
		} else {
			rec.LeadData.ClearConsent()
		}
	})
	return ok
}

// IsReturning reports whether the visitor has more than one tracked visit.
func (v *Visitors) IsReturning(ctx context.Context) bool {
	return v.Record(ctx).IsReturning()
}

// HasConverted reports whether the visitor has completed a lead.
func (v *Visitors) HasConverted(ctx context.Context) bool {
	return v.Record(ctx).Converted
}

// CachedLead returns the last finalized lead, if any.
func (v *Visitors) CachedLead(ctx context.Context) (domain.LeadRecord, bool) {
	rec := v.Record(ctx)
	if rec.LeadData == nil {
		return domain.LeadRecord{}, false
	}
	return *rec.LeadData, true
}
