package domain

import "time"

// TrackingSummary is the visit context attached to a lead.
type TrackingSummary struct {
	FirstVisit   *time.Time        `json:"firstVisit"`
	LastVisit    *time.Time        `json:"lastVisit,omitempty"`
	VisitCount   int               `json:"visitCount"`
	IsReturning  bool              `json:"isReturning"`
	PagesVisited int               `json:"pagesVisited"`
	Referrer     string            `json:"referrer,omitempty"`
	Device       *Device           `json:"device,omitempty"`
	ExtraParams  map[string]string `json:"extraParams"`
}

// LeadRecord is the contact data collected by one chat session.
type LeadRecord struct {
	ID        string            `json:"id"`
	VisitorID string            `json:"visitorId"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone"`
	UTM       map[string]string `json:"utm"`
	Tags      map[string]string `json:"tags,omitempty"`
	Tracking  TrackingSummary   `json:"tracking"`

	StartedAt   *time.Time `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`

	PageURL   string `json:"pageUrl"`
	PageTitle string `json:"pageTitle"`
	UserAgent string `json:"userAgent"`

	PrivacyAccepted    bool       `json:"privacyAccepted"`
	PrivacyAcceptedAt  *time.Time `json:"privacyAcceptedAt"`
	ConsentDeclaration *string    `json:"consentDeclaration"`
}

// IsComplete reports whether all identity fields are present.
func (l LeadRecord) IsComplete() bool {
	return l.Name != "" && l.Email != "" && l.Phone != ""
}

// Value returns the stored value of an identity field.
func (l LeadRecord) Value(f Field) string {
	switch f {
	case FieldName:
		return l.Name
	case FieldEmail:
		return l.Email
	case FieldPhone:
		return l.Phone
	}
	return ""
}

// SetValue stores an identity field. Unknown fields are ignored.
func (l *LeadRecord) SetValue(f Field, v string) {
	switch f {
	case FieldName:
		l.Name = v
	case FieldEmail:
		l.Email = v
	case FieldPhone:
		l.Phone = v
	}
}

// AcceptConsent records consent together with the accepted declaration.
func (l *LeadRecord) AcceptConsent(at time.Time, declaration string) {
	l.PrivacyAccepted = true
	l.PrivacyAcceptedAt = &at
	l.ConsentDeclaration = &declaration
}

// ClearConsent drops the consent flag, timestamp and declaration together.
func (l *LeadRecord) ClearConsent() {
	l.PrivacyAccepted = false
	l.PrivacyAcceptedAt = nil
	l.ConsentDeclaration = nil
}

// Clone returns a copy that shares no maps or pointers with l.
func (l LeadRecord) Clone() LeadRecord {
	out := l
	out.UTM = cloneStrings(l.UTM)
	out.Tags = cloneStrings(l.Tags)
	out.Tracking.ExtraParams = cloneStrings(l.Tracking.ExtraParams)
	if l.Tracking.Device != nil {
		d := *l.Tracking.Device
		out.Tracking.Device = &d
	}
	out.StartedAt = cloneTime(l.StartedAt)
	out.CompletedAt = cloneTime(l.CompletedAt)
	out.Tracking.FirstVisit = cloneTime(l.Tracking.FirstVisit)
	out.Tracking.LastVisit = cloneTime(l.Tracking.LastVisit)
	out.PrivacyAcceptedAt = cloneTime(l.PrivacyAcceptedAt)
	if l.ConsentDeclaration != nil {
		s := *l.ConsentDeclaration
		out.ConsentDeclaration = &s
	}
	return out
}

func cloneStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
