package delivery_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/leadchat/pkg/adapters/memory"
	"github.com/aretw0/leadchat/pkg/config"
	"github.com/aretw0/leadchat/pkg/delivery"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ledger"
	"github.com/aretw0/leadchat/pkg/observability"
	"github.com/aretw0/leadchat/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/resendlabs/resend-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLead() domain.LeadRecord {
	return domain.LeadRecord{
		ID:        "s_1",
		VisitorID: "v_1",
		Name:      "Maria Silva",
		Email:     "maria@example.com",
		Phone:     "11999998888",
		UTM:       map[string]string{"utm_source": "google"},
	}
}

type funcSink struct {
	name string
	fn   func(ctx context.Context, lead domain.LeadRecord) error
}

func (s funcSink) Name() string { return s.name }

func (s funcSink) Deliver(ctx context.Context, lead domain.LeadRecord) error {
	return s.fn(ctx, lead)
}

func TestFanout_IndependentFailures(t *testing.T) {
	var delivered atomic.Int32
	ok := funcSink{name: "ok", fn: func(context.Context, domain.LeadRecord) error {
		delivered.Add(1)
		return nil
	}}
	failing := funcSink{name: "failing", fn: func(context.Context, domain.LeadRecord) error {
		return errors.New("boom")
	}}
	panicking := funcSink{name: "panicking", fn: func(context.Context, domain.LeadRecord) error {
		panic("unexpected")
	}}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("test", reg)
	f := delivery.NewFanout([]ports.LeadSink{failing, nil, panicking, ok}, delivery.WithMetrics(metrics))

	assert.Equal(t, []string{"failing", "panicking", "ok"}, f.Sinks())

	results := f.Dispatch(context.Background(), sampleLead())
	require.Len(t, results, 3)
	assert.Equal(t, "failing", results[0].Sink)
	assert.EqualError(t, results[0].Err, "boom")
	assert.ErrorContains(t, results[1].Err, "sink panicked")
	assert.NoError(t, results[2].Err)
	assert.Equal(t, int32(1), delivered.Load())

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SinkDeliveries.WithLabelValues("ok", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SinkDeliveries.WithLabelValues("failing", "error")))
}

func TestFanout_RunsConcurrently(t *testing.T) {
	release := make(chan struct{})
	var started atomic.Int32
	blocking := func(name string) ports.LeadSink {
		return funcSink{name: name, fn: func(ctx context.Context, _ domain.LeadRecord) error {
			started.Add(1)
			select {
			case <-release:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}}
	}

	f := delivery.NewFanout([]ports.LeadSink{blocking("a"), blocking("b")})
	done := make(chan []delivery.Result)
	go func() { done <- f.Dispatch(context.Background(), sampleLead()) }()

	require.Eventually(t, func() bool { return started.Load() == 2 }, time.Second, 5*time.Millisecond,
		"both sinks start before either finishes")
	close(release)

	results := <-done
	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[1].Err)
}

func TestFanout_Timeout(t *testing.T) {
	slow := funcSink{name: "slow", fn: func(ctx context.Context, _ domain.LeadRecord) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	results := delivery.NewFanout([]ports.LeadSink{slow}, delivery.WithTimeout(20*time.Millisecond)).
		Dispatch(context.Background(), sampleLead())
	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
}

func TestFanout_SinksGetIsolatedCopies(t *testing.T) {
	mutating := funcSink{name: "mutating", fn: func(_ context.Context, lead domain.LeadRecord) error {
		lead.UTM["utm_source"] = "changed"
		return nil
	}}
	lead := sampleLead()
	delivery.NewFanout([]ports.LeadSink{mutating}).Dispatch(context.Background(), lead)
	assert.Equal(t, "google", lead.UTM["utm_source"])
}

func TestWebhookSink(t *testing.T) {
	var gotMethod, gotHeader string
	var gotLead domain.LeadRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Token")
		_ = json.NewDecoder(r.Body).Decode(&gotLead)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sink := delivery.NewWebhookSink(config.Webhook{
		Enabled: true,
		URL:     srv.URL,
		Method:  http.MethodPut,
		Headers: map[string]string{"Content-Type": "application/json", "X-Token": "abc"},
	}, srv.Client())

	require.NoError(t, sink.Deliver(context.Background(), sampleLead()))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "abc", gotHeader)
	assert.Equal(t, "maria@example.com", gotLead.Email)
}

func TestWebhookSink_Non2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := (&delivery.WebhookSink{URL: srv.URL}).Deliver(context.Background(), sampleLead())
	var statusErr *delivery.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "nope", statusErr.Body)
}

func TestSheetsSink(t *testing.T) {
	var contentType string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	sink := delivery.NewSheetsSink(config.Sheets{Enabled: true, ScriptURL: srv.URL}, nil)
	require.NoError(t, sink.Deliver(context.Background(), sampleLead()))
	assert.Contains(t, contentType, "text/plain")
	assert.Contains(t, string(body), `"name":"Maria Silva"`)
}

func TestBackupSink(t *testing.T) {
	ctx := context.Background()
	l := ledger.New(memory.NewStore())
	list := ledger.NewBackupList(l, "", 2)
	sink := &delivery.BackupSink{List: list}

	for _, id := range []string{"a", "b", "c"} {
		lead := sampleLead()
		lead.ID = id
		require.NoError(t, sink.Deliver(ctx, lead))
	}
	entries := list.Entries(ctx)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ID)

	degraded := &delivery.BackupSink{List: ledger.NewBackupList(ledger.New(memory.NewStore(memory.WithQuota(1))), "", 0)}
	assert.ErrorIs(t, degraded.Deliver(ctx, sampleLead()), delivery.ErrBackupNotStored)
}

type fakeSender struct {
	req *resend.SendEmailRequest
	err error
}

func (f *fakeSender) Send(req *resend.SendEmailRequest) (resend.SendEmailResponse, error) {
	f.req = req
	return resend.SendEmailResponse{}, f.err
}

func TestEmailSink(t *testing.T) {
	sender := &fakeSender{}
	sink := delivery.NewEmailSink(config.Email{
		Enabled: true,
		From:    "bot@example.com",
		To:      []string{"sales@example.com"},
		Subject: "Novo lead: {userName}",
	}, sender)

	require.NoError(t, sink.Deliver(context.Background(), sampleLead()))
	require.NotNil(t, sender.req)
	assert.Equal(t, "Novo lead: Maria Silva", sender.req.Subject)
	assert.Equal(t, []string{"sales@example.com"}, sender.req.To)
	assert.Contains(t, sender.req.Html, "(11) 99999-8888")
	assert.Contains(t, sender.req.Html, "utm_source")

	sender.err = errors.New("rate limited")
	assert.ErrorContains(t, sink.Deliver(context.Background(), sampleLead()), "rate limited")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sink.Deliver(ctx, sampleLead()), context.Canceled)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	l := ledger.New(memory.NewStore())

	names := func(sinks []ports.LeadSink) []string {
		var out []string
		for _, s := range sinks {
			out = append(out, s.Name())
		}
		return out
	}

	assert.Equal(t, []string{"local_backup"}, names(delivery.FromConfig(cfg, delivery.Deps{Ledger: l})))

	cfg.Integrations.Webhook.Enabled = true
	cfg.Integrations.Webhook.URL = "https://hooks.example.com/lead"
	cfg.Integrations.GoogleSheets = config.Sheets{Enabled: true, ScriptURL: "https://script.example.com/exec"}
	cfg.Integrations.Email = config.Email{Enabled: true, APIKey: "re_test", From: "a@example.com", To: []string{"b@example.com"}}
	assert.Equal(t,
		[]string{"webhook", "google_sheets", "local_backup", "email"},
		names(delivery.FromConfig(cfg, delivery.Deps{Ledger: l, EmailSender: &fakeSender{}})))
}
