package cli_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/leadchat/internal/cli"
	"github.com/aretw0/leadchat/pkg/config"
	"github.com/aretw0/leadchat/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// instantConfig removes every pause and hands off straight to the web channel.
const instantConfig = `
channel:
  desktopBehavior: web
timing:
  firstNotification: 0
  secondNotification: 0
  typingDuration:
    min: 0
    max: 0
  messageDelay: 0
  readReceiptDelay: 0
  redirectDelay: 0
  openDelay: 0
  countdownTick: 1s
messages:
  notifications: []
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "widget.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpenBackend(t *testing.T) {
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	for _, opts := range []cli.StorageOptions{
		{},
		{Backend: cli.BackendMemory},
		{Backend: cli.BackendFile, Path: filepath.Join(dir, "ledger.json")},
		{Backend: cli.BackendSQLite, Path: filepath.Join(dir, "ledger.db")},
		{Backend: cli.BackendRedis, RedisAddr: mr.Addr()},
	} {
		t.Run(opts.Backend, func(t *testing.T) {
			ctx := context.Background()
			backend, closer, err := cli.OpenBackend(opts)
			require.NoError(t, err)
			defer closer.Close()

			require.NoError(t, backend.Set(ctx, "k", "v"))
			got, err := backend.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v", got)
		})
	}
}

func TestOpenBackend_Errors(t *testing.T) {
	_, _, err := cli.OpenBackend(cli.StorageOptions{Backend: "etcd"})
	assert.ErrorContains(t, err, `unknown backend "etcd"`)

	_, _, err = cli.OpenBackend(cli.StorageOptions{Backend: cli.BackendRedis})
	assert.ErrorContains(t, err, "--redis-addr")
}

func TestDiagnosticsRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(cli.MetricsNamespace, reg)
	m.LeadCaptured()

	srv := httptest.NewServer(cli.NewDiagnosticsRouter(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "leadchat_leads_captured_total 1")
}

func TestValidateConfig(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, err := cli.ValidateConfig("", out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Script (")
	assert.Contains(t, out.String(), "input    email")
	assert.Contains(t, out.String(), "redirect")
	assert.Contains(t, out.String(), "Sinks: [local_backup]")
	assert.NotNil(t, cfg)

	_, err = cli.ValidateConfig(writeConfig(t, "channel:\n  number: abc\n"), io.Discard)
	var verr *config.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRunSession_EndToEnd(t *testing.T) {
	ctx := context.Background()
	storage := cli.StorageOptions{Backend: cli.BackendFile, Path: filepath.Join(t.TempDir(), "ledger.json")}
	cfgPath := writeConfig(t, instantConfig)

	in := strings.NewReader("Maria Silva\nmaria@example.com\n(11) 99999-8888\n/consent\n")
	out := &bytes.Buffer{}
	err := cli.RunSession(ctx, cli.RunOptions{
		ConfigPath: cfgPath,
		Quiet:      true,
		Storage:    storage,
		URL:        "https://example.com/?utm_source=cli",
	}, in, out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "> Maria Silva")
	assert.Contains(t, out.String(), "-> https://web.whatsapp.com/send?phone=")

	backups := &bytes.Buffer{}
	require.NoError(t, cli.ListBackups(ctx, cli.LedgerOptions{ConfigPath: cfgPath, Storage: storage}, backups))
	assert.Contains(t, backups.String(), "maria@example.com")
	assert.Contains(t, backups.String(), `"utm_source": "cli"`)

	entries := &bytes.Buffer{}
	require.NoError(t, cli.ShowLedger(ctx, cli.LedgerOptions{ConfigPath: cfgPath, Storage: storage}, entries))
	assert.Contains(t, entries.String(), `"key": "visitor_data"`)

	swept := &bytes.Buffer{}
	require.NoError(t, cli.SweepLedger(ctx, cli.LedgerOptions{ConfigPath: cfgPath, Storage: storage}, swept))
	assert.Contains(t, swept.String(), "Removed 0 expired entries.")
}

func TestRunSession_QuitEarly(t *testing.T) {
	out := &bytes.Buffer{}
	err := cli.RunSession(context.Background(), cli.RunOptions{
		ConfigPath: writeConfig(t, instantConfig),
		JSON:       true,
	}, strings.NewReader("quit\n"), out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `{"kind":"chat_open"}`)
}
