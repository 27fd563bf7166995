package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aretw0/leadchat/pkg/config"
	"github.com/aretw0/leadchat/pkg/domain"
)

// StatusError reports a non-2xx response from an HTTP sink.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// WebhookSink sends the lead as a JSON body to an arbitrary endpoint.
type WebhookSink struct {
	URL     string
	Method  string
	Headers map[string]string
	Client  *http.Client
}

// NewWebhookSink builds a WebhookSink from configuration. A nil client uses http.DefaultClient.
func NewWebhookSink(cfg config.Webhook, client *http.Client) *WebhookSink {
	return &WebhookSink{URL: cfg.URL, Method: cfg.Method, Headers: cfg.Headers, Client: client}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Deliver(ctx context.Context, lead domain.LeadRecord) error {
	method := s.Method
	if method == "" {
		method = http.MethodPost
	}
	headers := s.Headers
	if len(headers) == 0 {
		headers = map[string]string{"Content-Type": "application/json"}
	}
	return sendJSON(ctx, s.Client, method, s.URL, headers, lead)
}

// SheetsSink posts the lead to a spreadsheet script endpoint.
// The body is JSON sent as text/plain, which script endpoints accept without a preflight.
type SheetsSink struct {
	ScriptURL string
	Client    *http.Client
}

// NewSheetsSink builds a SheetsSink from configuration. A nil client uses http.DefaultClient.
func NewSheetsSink(cfg config.Sheets, client *http.Client) *SheetsSink {
	return &SheetsSink{ScriptURL: cfg.ScriptURL, Client: client}
}

func (s *SheetsSink) Name() string { return "google_sheets" }

func (s *SheetsSink) Deliver(ctx context.Context, lead domain.LeadRecord) error {
	return sendJSON(ctx, s.Client, http.MethodPost, s.ScriptURL,
		map[string]string{"Content-Type": "text/plain;charset=utf-8"}, lead)
}

func sendJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, v any) error {
	if client == nil {
		client = http.DefaultClient
	}

	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
