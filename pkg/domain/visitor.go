package domain

import "time"

// MaxPages is the default cap of the per-visitor page history.
const MaxPages = 50

// PageVisit is one entry of the visitor page history.
type PageVisit struct {
	URL       string    `json:"url"`
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	VisitedAt time.Time `json:"visitedAt"`
}

// Device describes the client that loaded the page.
type Device struct {
	UserAgent    string `json:"userAgent"`
	Language     string `json:"language"`
	Platform     string `json:"platform"`
	ScreenWidth  int    `json:"screenWidth"`
	ScreenHeight int    `json:"screenHeight"`
	IsMobile     bool   `json:"isMobile"`
}

// VisitorRecord is the ledger entry kept for one browser profile.
type VisitorRecord struct {
	FirstVisit  *time.Time        `json:"firstVisit"`
	LastVisit   *time.Time        `json:"lastVisit"`
	VisitCount  int               `json:"visitCount"`
	Pages       []PageVisit       `json:"pages"`
	UTM         map[string]string `json:"utm"`
	LastUTM     map[string]string `json:"lastUtm,omitempty"`
	ExtraParams map[string]string `json:"extraParams"`
	LeadData    *LeadRecord       `json:"leadData"`
	Converted   bool              `json:"converted"`
	ConvertedAt *time.Time        `json:"convertedAt,omitempty"`
	Device      *Device           `json:"device"`
	Referrer    string            `json:"referrer,omitempty"`
}

// NewVisitorRecord returns the record used when the ledger holds none.
func NewVisitorRecord() VisitorRecord {
	return VisitorRecord{
		Pages:       []PageVisit{},
		UTM:         map[string]string{},
		ExtraParams: map[string]string{},
	}
}

// Normalize fills nil collections left by older or hand-edited entries.
func (v *VisitorRecord) Normalize() {
	if v.Pages == nil {
		v.Pages = []PageVisit{}
	}
	if v.UTM == nil {
		v.UTM = map[string]string{}
	}
	if v.ExtraParams == nil {
		v.ExtraParams = map[string]string{}
	}
}

// IsReturning reports whether the visitor has loaded more than one page.
func (v VisitorRecord) IsReturning() bool {
	return v.VisitCount > 1
}

// LastPage returns the most recent page visit, if any.
func (v VisitorRecord) LastPage() (PageVisit, bool) {
	if len(v.Pages) == 0 {
		return PageVisit{}, false
	}
	return v.Pages[len(v.Pages)-1], true
}
