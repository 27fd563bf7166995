package tracking

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/aretw0/leadchat/pkg/domain"
)

// MobileMaxWidth is the largest viewport width treated as mobile.
const MobileMaxWidth = 768

var mobileAgent = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)

// DetectMobile reports whether a client is a mobile form factor, either by its
// user agent or by a viewport no wider than MobileMaxWidth. A zero width is unknown.
func DetectMobile(userAgent string, viewportWidth int) bool {
	if mobileAgent.MatchString(userAgent) {
		return true
	}
	return viewportWidth > 0 && viewportWidth <= MobileMaxWidth
}

// PageRequest describes the page load that hosts a chat.
type PageRequest struct {
	URL           string
	Path          string
	Title         string
	Referrer      string
	Query         url.Values
	Device        domain.Device
	ViewportWidth int
}

// NewPageRequest parses rawURL into a PageRequest.
func NewPageRequest(rawURL string) (PageRequest, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return PageRequest{}, fmt.Errorf("invalid page url: %w", err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return PageRequest{
		URL:   rawURL,
		Path:  path,
		Query: u.Query(),
	}, nil
}

// IsMobile reports whether the request comes from a mobile form factor.
func (r PageRequest) IsMobile() bool {
	return r.Device.IsMobile || DetectMobile(r.Device.UserAgent, r.ViewportWidth)
}

// params returns the non-empty values of names in the query string.
func (r PageRequest) params(names []string) map[string]string {
	out := map[string]string{}
	for _, name := range names {
		if v := r.Query.Get(name); v != "" {
			out[name] = v
		}
	}
	return out
}
