package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ports"
	"github.com/benbjohnson/clock"
)

// DefaultPrefix namespaces ledger keys in the backend.
const DefaultPrefix = "wwl_"

// envelope is the stored form of every ledger value.
type envelope struct {
	Value     json.RawMessage `json:"value"`
	Expiry    int64           `json:"expiry"`
	CreatedAt int64           `json:"createdAt"`
}

// Ledger is an expiring key-value store over a ports.Backend.
// Safe for concurrent use. A Get followed by a Set is not atomic across processes.
type Ledger struct {
	backend ports.Backend
	prefix  string
	ttl     time.Duration
	clock   clock.Clock
	logger  *slog.Logger

	degraded atomic.Bool
	warnOnce sync.Once
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPrefix sets the key namespace.
func WithPrefix(prefix string) Option {
	return func(l *Ledger) { l.prefix = prefix }
}

// WithTTL sets the default time-to-live applied when Set receives ttl <= 0.
func WithTTL(ttl time.Duration) Option {
	return func(l *Ledger) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithClock sets the clock used for expiry computations.
func WithClock(c clock.Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// New creates a Ledger over backend.
func New(backend ports.Backend, opts ...Option) *Ledger {
	l := &Ledger{
		backend: backend,
		prefix:  DefaultPrefix,
		ttl:     domain.DefaultTTL,
		clock:   clock.New(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Degraded reports whether a backend failure has disabled persistence.
func (l *Ledger) Degraded() bool {
	return l.degraded.Load()
}

// Now returns the ledger clock reading.
func (l *Ledger) Now() time.Time {
	return l.clock.Now()
}

// Prefix returns the key namespace.
func (l *Ledger) Prefix() string {
	return l.prefix
}

// Set stores value under key for ttl (the default TTL when ttl <= 0).
// It reports whether the value was written.
func (l *Ledger) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if l.Degraded() {
		return false
	}
	if ttl <= 0 {
		ttl = l.ttl
	}

	raw, err := json.Marshal(value)
	if err != nil {
		l.logger.Error("ledger value not serializable", "key", key, "err", err)
		return false
	}

	now := l.clock.Now()
	data, err := json.Marshal(envelope{
		Value:     raw,
		Expiry:    now.Add(ttl).UnixMilli(),
		CreatedAt: now.UnixMilli(),
	})
	if err != nil {
		l.logger.Error("ledger envelope not serializable", "key", key, "err", err)
		return false
	}

	if err := l.backend.Set(ctx, l.prefix+key, string(data)); err != nil {
		l.degrade(err)
		return false
	}
	return true
}

// Get decodes the live value under key into dst and reports whether it was present.
// Expired and corrupt entries are removed and reported absent; dst is left untouched.
func (l *Ledger) Get(ctx context.Context, key string, dst any) bool {
	if l.Degraded() {
		return false
	}

	raw, err := l.backend.Get(ctx, l.prefix+key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			l.degrade(err)
		}
		return false
	}

	env, ok := decode(raw)
	if !ok {
		l.logger.Warn("corrupt ledger entry removed", "key", key)
		l.Remove(ctx, key)
		return false
	}
	if l.expired(env) {
		l.logger.Debug("expired ledger entry removed", "key", key)
		l.Remove(ctx, key)
		return false
	}

	// Decode into a fresh value so a partly decoded entry never reaches dst.
	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		l.logger.Error("ledger get needs a non-nil pointer", "key", key)
		return false
	}
	fresh := reflect.New(target.Elem().Type())
	if err := json.Unmarshal(env.Value, fresh.Interface()); err != nil {
		l.logger.Warn("ledger value does not match target, removed", "key", key, "err", err)
		l.Remove(ctx, key)
		return false
	}
	target.Elem().Set(fresh.Elem())
	return true
}

// Remove deletes key and reports whether the backend accepted the removal.
func (l *Ledger) Remove(ctx context.Context, key string) bool {
	if l.Degraded() {
		return false
	}
	if err := l.backend.Remove(ctx, l.prefix+key); err != nil {
		l.degrade(err)
		return false
	}
	return true
}

// Update performs one read-modify-write of key: dst is loaded (when present),
// fn mutates it and the result is stored for ttl.
func (l *Ledger) Update(ctx context.Context, key string, dst any, fn func(found bool), ttl time.Duration) bool {
	found := l.Get(ctx, key, dst)
	fn(found)
	return l.Set(ctx, key, dst, ttl)
}

// SweepExpired evicts every expired or corrupt entry under the prefix.
// It returns the number of evicted entries.
func (l *Ledger) SweepExpired(ctx context.Context) int {
	if l.Degraded() {
		return 0
	}

	keys, err := l.backend.Keys(ctx)
	if err != nil {
		l.degrade(err)
		return 0
	}

	evicted := 0
	for _, full := range keys {
		if !strings.HasPrefix(full, l.prefix) {
			continue
		}
		raw, err := l.backend.Get(ctx, full)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			l.degrade(err)
			return evicted
		}
		env, ok := decode(raw)
		if ok && !l.expired(env) {
			continue
		}
		if err := l.backend.Remove(ctx, full); err != nil {
			l.degrade(err)
			return evicted
		}
		evicted++
	}

	if evicted > 0 {
		l.logger.Debug("ledger sweep", "evicted", evicted)
	}
	return evicted
}

// Entry is a decoded ledger entry as seen by inspection tools.
type Entry struct {
	Key       string
	Value     json.RawMessage
	ExpiresAt time.Time
	CreatedAt time.Time
	Expired   bool
}

// Entries lists every decodable entry under the prefix without evicting anything.
func (l *Ledger) Entries(ctx context.Context) ([]Entry, error) {
	keys, err := l.backend.Keys(ctx)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, full := range keys {
		if !strings.HasPrefix(full, l.prefix) {
			continue
		}
		raw, err := l.backend.Get(ctx, full)
		if err != nil {
			continue
		}
		env, ok := decode(raw)
		if !ok {
			continue
		}
		out = append(out, Entry{
			Key:       strings.TrimPrefix(full, l.prefix),
			Value:     env.Value,
			ExpiresAt: time.UnixMilli(env.Expiry),
			CreatedAt: time.UnixMilli(env.CreatedAt),
			Expired:   l.expired(env),
		})
	}
	return out, nil
}

func (l *Ledger) expired(env envelope) bool {
	return l.clock.Now().UnixMilli() > env.Expiry
}

func (l *Ledger) degrade(err error) {
	l.degraded.Store(true)
	l.warnOnce.Do(func() {
		l.logger.Warn("ledger backend failed, persistence disabled", "err", err)
	})
}

func decode(raw string) (envelope, bool) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return envelope{}, false
	}
	if len(env.Value) == 0 || env.Expiry == 0 {
		return envelope{}, false
	}
	return env, true
}
