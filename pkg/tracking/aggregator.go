package tracking

import (
	"context"
	"log/slog"
	"maps"

	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/pkg/analytics"
	"github.com/aretw0/leadchat/pkg/config"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ledger"
)

// Aggregator records visits in the ledger and merges them with the current page.
type Aggregator struct {
	visitors *ledger.Visitors
	cfg      config.Tracking
	events   *analytics.Emitter
	logger   *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithEmitter sets the analytics emitter used for the returning-visitor event.
func WithEmitter(e *analytics.Emitter) Option {
	return func(a *Aggregator) { a.events = e }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// NewAggregator creates an Aggregator over visitors.
func NewAggregator(visitors *ledger.Visitors, cfg config.Tracking, opts ...Option) *Aggregator {
	a := &Aggregator{
		visitors: visitors,
		cfg:      cfg,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Visitors returns the visitor bookkeeping.
func (a *Aggregator) Visitors() *ledger.Visitors {
	return a.visitors
}

// Params returns the UTM and extra parameters present in req.
// UTM parameters are only captured when tracking.captureUTM is set.
func (a *Aggregator) Params(req PageRequest) (utm, extra map[string]string) {
	utm = map[string]string{}
	if a.cfg.CaptureUTM {
		utm = req.params(a.cfg.UTMParams)
	}
	return utm, req.params(a.cfg.ExtraParams)
}

// TrackVisit records the page load in the visitor record and returns the result.
// It is a no-op returning the stored record when persistence is disabled.
func (a *Aggregator) TrackVisit(ctx context.Context, req PageRequest) domain.VisitorRecord {
	p := a.cfg.Persistence
	if !p.Enabled {
		return a.visitors.Record(ctx)
	}

	visitorID := a.visitors.ID(ctx)
	now := a.visitors.Ledger().Now()
	utm, extra := a.Params(req)

	rec, ok := a.visitors.Update(ctx, func(rec *domain.VisitorRecord) {
		if rec.FirstVisit == nil {
			first := now
			rec.FirstVisit = &first
			rec.Referrer = req.Referrer
			device := req.Device
			device.IsMobile = req.IsMobile()
			rec.Device = &device
		}

		if p.TrackVisits {
			last := now
			rec.LastVisit = &last
			rec.VisitCount++
		}

		mergeFirstWins(rec.UTM, utm)
		if len(utm) > 0 {
			rec.LastUTM = maps.Clone(utm)
		}
		mergeFirstWins(rec.ExtraParams, extra)

		if p.TrackPages {
			appendPage(rec, domain.PageVisit{
				URL:       req.URL,
				Path:      req.Path,
				Title:     req.Title,
				VisitedAt: now,
			}, p.MaxPages)
		}
	})
	if !ok {
		a.logger.Debug("visit not persisted", "visitor_id", visitorID)
	}

	if rec.IsReturning() && p.RecognizeReturning {
		a.events.Emit(ctx, domain.EventVisitorReturned, map[string]any{
			"visitorId":    visitorID,
			"visitCount":   rec.VisitCount,
			"firstVisit":   rec.FirstVisit,
			"hasConverted": rec.Converted,
		})
		a.logger.Debug("returning visitor", "visitor_id", visitorID, "visits", rec.VisitCount)
	}
	if rec.Converted {
		a.logger.Debug("visitor already converted", "visitor_id", visitorID, "converted_at", rec.ConvertedAt)
	}
	return rec
}

// Snapshot merges the stored visitor record with req. Stored parameters win over
// the ones in the current URL.
func (a *Aggregator) Snapshot(ctx context.Context, req PageRequest) Snapshot {
	rec := a.visitors.Record(ctx)
	utm, extra := a.Params(req)

	s := Snapshot{
		VisitorID:    a.visitors.ID(ctx),
		FirstVisit:   rec.FirstVisit,
		LastVisit:    rec.LastVisit,
		VisitCount:   rec.VisitCount,
		IsReturning:  rec.IsReturning(),
		HasConverted: rec.Converted,
		ConvertedAt:  rec.ConvertedAt,
		UTM:          mergeStoredWins(rec.UTM, utm),
		CurrentUTM:   utm,
		ExtraParams:  mergeStoredWins(rec.ExtraParams, extra),
		Referrer:     rec.Referrer,
		Device:       rec.Device,
		PagesVisited: len(rec.Pages),
		CachedLead:   rec.LeadData,
	}
	if !a.cfg.CaptureUTM {
		s.UTM = map[string]string{}
	}
	if s.Device == nil {
		device := req.Device
		device.IsMobile = req.IsMobile()
		s.Device = &device
	}
	if s.Referrer == "" {
		s.Referrer = req.Referrer
	}
	return s
}

func mergeFirstWins(dst, src map[string]string) {
	for k, v := range src {
		if v == "" {
			continue
		}
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}

func mergeStoredWins(stored, current map[string]string) map[string]string {
	out := make(map[string]string, len(stored)+len(current))
	mergeFirstWins(out, stored)
	mergeFirstWins(out, current)
	return out
}

func appendPage(rec *domain.VisitorRecord, page domain.PageVisit, max int) {
	if max <= 0 {
		max = domain.MaxPages
	}
	if last, ok := rec.LastPage(); ok && last.Path == page.Path {
		return
	}
	rec.Pages = append(rec.Pages, page)
	if len(rec.Pages) > max {
		rec.Pages = rec.Pages[len(rec.Pages)-max:]
	}
}
