package analytics

import (
	"context"
	"regexp"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

// DefaultRedactions match the payload keys that carry contact data.
var DefaultRedactions = []string{`(?i)^email$`, `(?i)^phone$`, `(?i)^name$`}

type redactSink struct {
	next     ports.EventSink
	patterns []*regexp.Regexp
}

// Redact wraps next so that payload values whose key matches one of the
// patterns are masked. Nested maps are masked recursively. The caller's
// event is never modified.
func Redact(next ports.EventSink, patternStrings ...string) ports.EventSink {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return &redactSink{next: next, patterns: patterns}
}

func (r *redactSink) Emit(ctx context.Context, ev domain.Event) {
	if len(ev.Payload) > 0 {
		ev.Payload = deepCopyMap(ev.Payload)
		maskMap(ev.Payload, r.patterns)
	}
	r.next.Emit(ctx, ev)
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(sub)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if sub, ok := v.(map[string]any); ok && !masked {
			maskMap(sub, patterns)
		}
	}
}
