package tracking

import (
	"maps"
	"time"

	"github.com/aretw0/leadchat/pkg/domain"
)

// Snapshot is the read-only view of a visitor on the current page.
type Snapshot struct {
	VisitorID    string             `json:"visitorId"`
	FirstVisit   *time.Time         `json:"firstVisit"`
	LastVisit    *time.Time         `json:"lastVisit"`
	VisitCount   int                `json:"visitCount"`
	IsReturning  bool               `json:"isReturning"`
	HasConverted bool               `json:"hasConverted"`
	ConvertedAt  *time.Time         `json:"convertedAt,omitempty"`
	UTM          map[string]string  `json:"utm"`
	CurrentUTM   map[string]string  `json:"currentUtm"`
	ExtraParams  map[string]string  `json:"extraParams"`
	Referrer     string             `json:"referrer,omitempty"`
	Device       *domain.Device     `json:"device,omitempty"`
	PagesVisited int                `json:"pagesVisited"`
	CachedLead   *domain.LeadRecord `json:"cachedLeadData,omitempty"`
}

// Summary returns the part of the snapshot attached to a lead.
func (s Snapshot) Summary() domain.TrackingSummary {
	sum := domain.TrackingSummary{
		FirstVisit:   s.FirstVisit,
		LastVisit:    s.LastVisit,
		VisitCount:   s.VisitCount,
		IsReturning:  s.IsReturning,
		PagesVisited: s.PagesVisited,
		Referrer:     s.Referrer,
		ExtraParams:  maps.Clone(s.ExtraParams),
	}
	if s.Device != nil {
		d := *s.Device
		sum.Device = &d
	}
	return sum
}
